package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTemplatesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the PDF templates of the templates dir",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.setup(cmd.Context()); err != nil {
				return err
			}
			defer a.cleanup()
			if err := a.core.PrepareTemplateStore(); err != nil {
				return err
			}
			store := a.core.TemplateStore
			for _, key := range store.Keys() {
				t, _ := store.Get(key)
				size := t.Size()
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d pages\t%.0fx%.0f pt %s\n",
					key, t.PageCount, size.Width, size.Height, size.Orientation()); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
