package overlay

import (
	"context"

	"github.com/zeptools/docoverlay/style"
)

type CertificateInput struct {
	Name     string
	Template []byte
}

// RenderCertificate centres in.Name in italic on page 1 of in.Template.
func (r *Renderer) RenderCertificate(ctx context.Context, in CertificateInput) (*Output, error) {
	now := r.now()
	tpl, canvas, err := r.prepare(in.Template, r.Certificates, r.Layout.CertificateFontSize)
	if err != nil {
		return nil, err
	}
	reference, err := r.allocate(ctx, r.Certificates, r.CertificateRef, now)
	if err != nil {
		return nil, err
	}
	r.drawCertificate(canvas, in)
	return r.finish(tpl, canvas, reference)
}

func (r *Renderer) drawCertificate(canvas Canvas, in CertificateInput) {
	size := canvas.PaperSize()
	canvas.SetFontSize(r.Layout.CertificateFontSize)
	w := canvas.Width(in.Name, style.Italic)
	canvas.DrawWord((size.Width-w)/2, size.Height*r.Layout.CertificateY, in.Name, style.Italic)
}
