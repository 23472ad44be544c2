package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zeptools/docoverlay/refnum"
)

func newCounterCmd(a *app) *cobra.Command {
	counter := &cobra.Command{
		Use:   "counter",
		Short: "Inspect reference counters",
	}
	var kind string
	peek := &cobra.Command{
		Use:   "peek",
		Short: "Show the last serial of a document kind without advancing it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validate.Var(kind, "oneof=offer certificate"); err != nil {
				return fmt.Errorf("invalid --kind %q: %w", kind, err)
			}
			ctx := cmd.Context()
			if err := a.setup(ctx); err != nil {
				return err
			}
			defer a.cleanup()

			peeker, ok := a.core.CounterStore.(refnum.Peeker)
			if !ok {
				return errors.New("counter backend cannot be inspected")
			}
			key := a.core.Counter.OfferKey
			if kind == "certificate" {
				key = a.core.Counter.CertificateKey
			}
			c, found, err := peeker.Peek(ctx, key)
			if err != nil {
				return err
			}
			if !found {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: unused\n", key)
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %s\n", key, c.Month, refnum.FormatSerial(c.Serial))
			return err
		},
	}
	peek.Flags().StringVar(&kind, "kind", "offer", "document kind: offer or certificate")
	counter.AddCommand(peek)
	return counter
}
