// Package pdftest builds small PDF fixtures and inspects page text and content for tests.
package pdftest

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/zeptools/docoverlay/pdfs"
)

// Document renders one page per entry of pages, each with its text near the
// top-left corner, on pages of width x height pt.
func Document(t testing.TB, width, height float64, pages ...string) []byte {
	t.Helper()
	orientation, size := "P", gofpdf.SizeType{Wd: width, Ht: height}
	if width > height {
		orientation, size = "L", gofpdf.SizeType{Wd: height, Ht: width}
	}
	doc := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "pt",
		Size:           size,
	})
	doc.SetAutoPageBreak(false, 0)
	doc.SetFont("Helvetica", "", 14)
	for _, text := range pages {
		doc.AddPage()
		doc.Text(40, 60, text)
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("build fixture: %v", err)
	}
	return buf.Bytes()
}

// NumPage returns the page count as seen by an independent reader.
func NumPage(t testing.TB, b []byte) int {
	t.Helper()
	r, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		t.Fatalf("open pdf: %v", err)
	}
	return r.NumPage()
}

// PageText returns the plain text of page n (1-based) with whitespace runs collapsed.
func PageText(t testing.TB, b []byte, n int) string {
	t.Helper()
	r, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		t.Fatalf("open pdf: %v", err)
	}
	p := r.Page(n)
	if p.V.IsNull() {
		t.Fatalf("page %d not found", n)
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		t.Fatalf("extract page %d: %v", n, err)
	}
	return strings.Join(strings.Fields(text), " ")
}

func readContext(t testing.TB, b []byte) *model.Context {
	t.Helper()
	ctx, err := pdfs.ReadContext(b)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	return ctx
}

// PageContent returns the decoded content stream of page n.
func PageContent(t testing.TB, b []byte, n int) []byte {
	t.Helper()
	ctx := readContext(t, b)
	d, _, _, err := ctx.PageDict(n, false)
	if err != nil {
		t.Fatalf("page %d: %v", n, err)
	}
	content, err := ctx.PageContent(d)
	if err != nil && !errors.Is(err, model.ErrNoContent) {
		t.Fatalf("page %d content: %v", n, err)
	}
	return content
}

// Forms returns the decoded content of every form XObject reachable from the
// resources of page n, nested forms included.
func Forms(t testing.TB, b []byte, n int) [][]byte {
	t.Helper()
	ctx := readContext(t, b)
	d, _, inherited, err := ctx.PageDict(n, false)
	if err != nil {
		t.Fatalf("page %d: %v", n, err)
	}
	res, err := ctx.DereferenceDict(d["Resources"])
	if err != nil {
		t.Fatalf("page %d resources: %v", n, err)
	}
	if res == nil && inherited != nil {
		res = inherited.Resources
	}

	var forms [][]byte
	seen := make(map[int]bool)
	var walk func(res types.Dict, depth int)
	walk = func(res types.Dict, depth int) {
		if res == nil || depth > 8 {
			return
		}
		xobjects, err := ctx.DereferenceDict(res["XObject"])
		if err != nil {
			t.Fatalf("xobjects: %v", err)
		}
		for _, o := range xobjects {
			if ref, ok := o.(types.IndirectRef); ok {
				if seen[ref.ObjectNumber.Value()] {
					continue
				}
				seen[ref.ObjectNumber.Value()] = true
			}
			sd, _, err := ctx.DereferenceStreamDict(o)
			if err != nil {
				t.Fatalf("xobject: %v", err)
			}
			if sd == nil {
				continue
			}
			if st := sd.Subtype(); st == nil || *st != "Form" {
				continue
			}
			if err = sd.Decode(); err != nil {
				t.Fatalf("decode form: %v", err)
			}
			forms = append(forms, sd.Content)
			sub, err := ctx.DereferenceDict(sd.Dict["Resources"])
			if err != nil {
				t.Fatalf("form resources: %v", err)
			}
			walk(sub, depth+1)
		}
	}
	walk(res, 0)
	return forms
}

// FormsContain reports whether any form XObject drawn on page n contains marker.
func FormsContain(t testing.TB, b []byte, n int, marker string) bool {
	t.Helper()
	for _, form := range Forms(t, b, n) {
		if bytes.Contains(form, []byte(marker)) {
			return true
		}
	}
	return false
}
