// Package overlay draws generated text onto the first page of a PDF template.
//
// A render inspects the template, opens a transparent page the size of
// template page 1, takes the next reference number of the document category,
// draws onto the page and stamps it onto template page 1. Remaining template pages are copied as is.
package overlay

import (
	"context"
	"log"
	"time"

	"github.com/zeptools/docoverlay/fonts"
	"github.com/zeptools/docoverlay/layout"
	"github.com/zeptools/docoverlay/pdfs"
	"github.com/zeptools/docoverlay/pdfs/fpdf"
	"github.com/zeptools/docoverlay/refnum"
)

// Layout holds the page geometry in pt.
type Layout struct {
	Left         float64 `json:"left"`
	Right        float64 `json:"right"`
	Top          float64 `json:"top"` // distance from the top edge to the first baseline
	LineHeight   float64 `json:"line_height"`
	ParagraphGap float64 `json:"paragraph_gap"`
	FontSize     float64 `json:"font_size"`

	CertificateFontSize float64 `json:"certificate_font_size"`
	CertificateY        float64 `json:"certificate_y"` // baseline as a fraction of the page height
}

func DefaultLayout() Layout {
	return Layout{
		Left:                30,
		Right:               30,
		Top:                 275,
		LineHeight:          15,
		ParagraphGap:        12,
		FontSize:            12,
		CertificateFontSize: 33,
		CertificateY:        0.46,
	}
}

// CompanyInfo is the issuing organisation as printed in the letter.
type CompanyInfo struct {
	Name           string `json:"name"`       // e.g. "Swizosoft (OPC) Private Limited"
	ShortName      string `json:"short_name"` // e.g. "Swizosoft"
	Signatory      string `json:"signatory"`
	SignatoryTitle string `json:"signatory_title"`
}

func DefaultCompany() CompanyInfo {
	return CompanyInfo{
		Name:           "Swizosoft (OPC) Private Limited",
		ShortName:      "Swizosoft",
		Signatory:      "Mr. Aditya Madhukar Bhat",
		SignatoryTitle: "Director, Swizosoft (OPC) Private Limited",
	}
}

// Canvas is the overlay page: a PDF writer that also measures and draws styled words.
type Canvas interface {
	pdfs.Writer
	layout.Metrics
	layout.Drawer
	SetFontSize(size float64)
}

// CanvasFactory starts an empty one-page canvas.
type CanvasFactory func(size pdfs.PaperSize, fs fonts.FontSet, fontSize float64) Canvas

func NewFPDFCanvas(size pdfs.PaperSize, fs fonts.FontSet, fontSize float64) Canvas {
	return fpdf.New(size, fs, fontSize)
}

type Renderer struct {
	Fonts        fonts.FontSet
	Offers       *refnum.Generator
	Certificates *refnum.Generator

	OfferRef       refnum.Reference
	CertificateRef refnum.Reference
	Company        CompanyInfo
	Layout         Layout

	Now       func() time.Time // defaults to time.Now
	NewCanvas CanvasFactory    // defaults to NewFPDFCanvas
}

// NewRenderer returns a Renderer with the default layout, company and reference formats.
func NewRenderer(fs fonts.FontSet, offers, certificates *refnum.Generator) *Renderer {
	return &Renderer{
		Fonts:          fs,
		Offers:         offers,
		Certificates:   certificates,
		OfferRef:       refnum.OfferReference,
		CertificateRef: refnum.CertificateReference,
		Company:        DefaultCompany(),
		Layout:         DefaultLayout(),
	}
}

// Output is a finished document.
type Output struct {
	PDF       []byte
	Reference string
}

func (r *Renderer) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Renderer) newCanvas(size pdfs.PaperSize, fontSize float64) Canvas {
	if r.NewCanvas != nil {
		return r.NewCanvas(size, r.Fonts, fontSize)
	}
	return NewFPDFCanvas(size, r.Fonts, fontSize)
}

// prepare inspects the template and opens a canvas the size of its first page.
// Nothing is allocated, so a failure here leaves the counter untouched.
func (r *Renderer) prepare(template []byte, gen *refnum.Generator, fontSize float64) (*pdfs.Template, Canvas, error) {
	tpl, err := pdfs.InspectTemplate(template)
	if err != nil {
		return nil, nil, &TemplateError{Message: "cannot read template", Cause: err}
	}
	if gen == nil {
		return nil, nil, &RenderError{Message: "no reference generator configured"}
	}
	canvas := r.newCanvas(tpl.Size(), fontSize)
	if err = canvas.Err(); err != nil {
		return nil, nil, &RenderError{Message: "open canvas", Cause: err}
	}
	return tpl, canvas, nil
}

// allocate takes the next serial of the current month from gen.
func (r *Renderer) allocate(ctx context.Context, gen *refnum.Generator, ref refnum.Reference, now time.Time) (string, error) {
	serial, err := gen.Next(ctx, refnum.MonthCode(now))
	if err != nil {
		return "", err
	}
	return ref.Format(now, serial), nil
}

// finish closes the canvas and stamps it onto template page 1.
func (r *Renderer) finish(tpl *pdfs.Template, canvas Canvas, reference string) (*Output, error) {
	if err := canvas.Err(); err != nil {
		return nil, &RenderError{Message: "draw overlay", Cause: err}
	}
	overlayPDF, err := canvas.ProduceBytes()
	if err != nil {
		return nil, &RenderError{Message: "produce overlay", Cause: err}
	}
	merged, err := pdfs.StampFirstPage(tpl, overlayPDF)
	if err != nil {
		return nil, &RenderError{Message: "merge overlay", Cause: err}
	}
	log.Printf("[INFO][OVERLAY] rendered %s (%d pages, %d bytes)", reference, tpl.PageCount, len(merged))
	return &Output{PDF: merged, Reference: reference}, nil
}
