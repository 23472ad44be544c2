package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/zeptools/docoverlay/conf"
)

type app struct {
	appRoot string
	verbose bool
	core    *conf.Core
}

var validate = validator.New()

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "docoverlay",
		Short: "Render offer letters and certificates onto PDF templates",
		Long: `docoverlay draws a reference number, recipient details and justified body
text onto page 1 of a PDF template and keeps the remaining pages as they are.

Configuration is read from <app-root>/config/.core.json; secrets may be set in
<app-root>/.env.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if !a.verbose {
				log.SetOutput(io.Discard)
			} else {
				log.SetOutput(cmd.ErrOrStderr())
			}
		},
	}
	root.PersistentFlags().StringVar(&a.appRoot, "app-root", ".", "application root holding config/ and templates/")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Verbose output")

	root.AddCommand(newOfferCmd(a), newCertificateCmd(a), newCounterCmd(a), newTemplatesCmd(a))
	return root
}

// setup loads the configuration and opens the counter store.
func (a *app) setup(ctx context.Context) error {
	a.core = &conf.Core{}
	if err := a.core.BaseInit(a.appRoot); err != nil {
		return err
	}
	return a.core.PrepareCounterStore(ctx)
}

func (a *app) cleanup() {
	if a.core != nil {
		a.core.ResourceCleanUp()
	}
}

// template reads path when given, otherwise the named template of the templates dir.
func (a *app) template(path string, key string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	if err := a.core.PrepareTemplateStore(); err != nil {
		return nil, err
	}
	return a.core.Template(key)
}

// save writes pdf to out, or to the configured output dir named after reference.
func (a *app) save(cmd *cobra.Command, out string, reference string, pdf []byte) error {
	if out == "" {
		out = a.core.OutputPath(reference)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(out, pdf, 0o644); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", reference, out)
	return err
}
