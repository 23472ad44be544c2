package main

import (
	"github.com/spf13/cobra"

	"github.com/zeptools/docoverlay/overlay"
)

type offerFlags struct {
	Name       string `validate:"required"`
	USN        string `validate:"required"`
	College    string `validate:"required"`
	Email      string `validate:"required,email"`
	Role       string `validate:"required"`
	Duration   string
	InternType string `validate:"required"`
	Template   string
	Out        string
}

func newOfferCmd(a *app) *cobra.Command {
	f := &offerFlags{}
	cmd := &cobra.Command{
		Use:   "offer",
		Short: "Generate an internship offer letter",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validate.Struct(f); err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := a.setup(ctx); err != nil {
				return err
			}
			defer a.cleanup()

			template, err := a.template(f.Template, "offer")
			if err != nil {
				return err
			}
			r, err := a.core.NewRenderer()
			if err != nil {
				return err
			}
			out, err := r.RenderOffer(ctx, overlay.OfferInput{
				Name:        f.Name,
				USN:         f.USN,
				Institution: f.College,
				Email:       f.Email,
				Role:        f.Role,
				Duration:    f.Duration,
				InternType:  f.InternType,
				Template:    template,
			})
			if err != nil {
				return err
			}
			return a.save(cmd, f.Out, out.Reference, out.PDF)
		},
	}
	cmd.Flags().StringVar(&f.Name, "name", "", "candidate name")
	cmd.Flags().StringVar(&f.USN, "usn", "", "university seat number")
	cmd.Flags().StringVar(&f.College, "college", "", "institution name")
	cmd.Flags().StringVar(&f.Email, "email", "", "candidate email")
	cmd.Flags().StringVar(&f.Role, "role", "", "internship role")
	cmd.Flags().StringVar(&f.Duration, "duration", overlay.DefaultDuration, "internship duration")
	cmd.Flags().StringVar(&f.InternType, "intern-type", "", "internship type, e.g. \"remote internship\"")
	cmd.Flags().StringVar(&f.Template, "template", "", "template PDF (default: offer.pdf of the templates dir)")
	cmd.Flags().StringVarP(&f.Out, "out", "o", "", "output file (default: <output_dir>/<reference>.pdf)")
	return cmd
}
