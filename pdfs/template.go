package pdfs

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

var (
	ErrEmptyTemplate = errors.New("template is empty")
	ErrNoPages       = errors.New("template has no pages")
)

// Template is an inspected, read-only source document.
type Template struct {
	Name      string
	Data      []byte
	PageCount int
	Width     float64 // page 1, in pt
	Height    float64 // page 1, in pt
}

// Size is the paper size of page 1.
func (t *Template) Size() PaperSize {
	return CustomSize(t.Width, t.Height)
}

var disableConfigDirOnce sync.Once

// newConf returns a pdfcpu configuration that never touches the user config dir
// and writes classic xref tables.
func newConf() *model.Configuration {
	disableConfigDirOnce.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false
	return conf
}

// ReadContext parses and validates b with the package's pdfcpu configuration.
func ReadContext(b []byte) (*model.Context, error) {
	ctx, err := api.ReadContext(bytes.NewReader(b), newConf())
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	if err = api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("validate template: %w", err)
	}
	return ctx, nil
}

// InspectTemplate parses b and reports its page count and the size of page 1.
func InspectTemplate(b []byte) (*Template, error) {
	if len(b) == 0 {
		return nil, ErrEmptyTemplate
	}
	ctx, err := ReadContext(b)
	if err != nil {
		return nil, err
	}
	if ctx.PageCount < 1 {
		return nil, ErrNoPages
	}
	dims, err := ctx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("read page size: %w", err)
	}
	if len(dims) == 0 || dims[0].Width <= 0 || dims[0].Height <= 0 {
		return nil, ErrNoPages
	}
	return &Template{
		Data:      b,
		PageCount: ctx.PageCount,
		Width:     dims[0].Width,
		Height:    dims[0].Height,
	}, nil
}

// Parameter names are spelled out; pdfcpu rejects ambiguous prefixes such as "sc".
const stampDesc = "scalefactor:1 abs, position:bl, rotation:0"

// StampFirstPage draws page 1 of overlay on top of page 1 of t. Other pages are
// copied unchanged. overlay must have the size of t's first page.
func StampFirstPage(t *Template, overlay []byte) ([]byte, error) {
	wm, err := api.PDFWatermarkForReadSeeker(bytes.NewReader(overlay), 1, stampDesc, true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("prepare overlay stamp: %w", err)
	}
	var out bytes.Buffer
	if err = api.AddWatermarks(bytes.NewReader(t.Data), &out, []string{"1"}, wm, newConf()); err != nil {
		return nil, fmt.Errorf("stamp page 1: %w", err)
	}
	return out.Bytes(), nil
}
