package main

import (
	"github.com/spf13/cobra"

	"github.com/zeptools/docoverlay/overlay"
)

type certificateFlags struct {
	Name     string `validate:"required"`
	Template string
	Out      string
}

func newCertificateCmd(a *app) *cobra.Command {
	f := &certificateFlags{}
	cmd := &cobra.Command{
		Use:   "certificate",
		Short: "Generate a completion certificate",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validate.Struct(f); err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := a.setup(ctx); err != nil {
				return err
			}
			defer a.cleanup()

			template, err := a.template(f.Template, "certificate")
			if err != nil {
				return err
			}
			r, err := a.core.NewRenderer()
			if err != nil {
				return err
			}
			out, err := r.RenderCertificate(ctx, overlay.CertificateInput{Name: f.Name, Template: template})
			if err != nil {
				return err
			}
			return a.save(cmd, f.Out, out.Reference, out.PDF)
		},
	}
	cmd.Flags().StringVar(&f.Name, "name", "", "name printed on the certificate")
	cmd.Flags().StringVar(&f.Template, "template", "", "template PDF (default: certificate.pdf of the templates dir)")
	cmd.Flags().StringVarP(&f.Out, "out", "o", "", "output file (default: <output_dir>/<reference>.pdf)")
	return cmd
}
