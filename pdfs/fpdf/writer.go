// Package fpdf implements pdfs.Writer on top of gofpdf. It also serves as the
// font metrics and word drawer of the layout engine.
package fpdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/jung-kurt/gofpdf"

	"github.com/zeptools/docoverlay/fonts"
	"github.com/zeptools/docoverlay/layout"
	"github.com/zeptools/docoverlay/pdfs"
	"github.com/zeptools/docoverlay/rw"
	"github.com/zeptools/docoverlay/style"
)

type Writer struct {
	pdf      *gofpdf.Fpdf
	size     pdfs.PaperSize
	fonts    fonts.FontSet
	fontSize float64

	// UTF-8 families registered from TrueType data; the rest are core fonts.
	utf8Families map[string]bool
	translate    func(string) string
	cp1252       func(string) string
}

// Ensure fpdf.Writer implements the interfaces
var (
	_ pdfs.Writer    = (*Writer)(nil)
	_ layout.Metrics = (*Writer)(nil)
	_ layout.Drawer  = (*Writer)(nil)
)

// New starts a one-page document of the given size with fs registered.
// The body face at fontSize is selected.
func New(size pdfs.PaperSize, fs fonts.FontSet, fontSize float64) *Writer {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: size.Orientation(),
		UnitStr:        "pt",
		Size:           portraitSize(size),
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	w := &Writer{
		pdf:          pdf,
		size:         size,
		fonts:        fs,
		fontSize:     fontSize,
		utf8Families: make(map[string]bool),
		cp1252:       pdf.UnicodeTranslatorFromDescriptor(""),
	}
	for _, s := range []style.Style{style.Body, style.Bold, style.Italic} {
		face := fs.Face(s)
		if face.Builtin() {
			continue
		}
		if err := w.addUTF8Face(face); err != nil {
			log.Printf("[WARN][FPDF] %v; using built-in %s %s", err, fonts.BuiltinFamily, s)
			w.fonts.Set(s, fonts.Builtin().Face(s))
			continue
		}
		w.utf8Families[face.Family] = true
	}
	w.AddBlankPage()
	w.useFace(style.Body)
	return w
}

// addUTF8Face registers face with gofpdf. gofpdf panics or silently skips the
// font on some malformed files; both leave the document usable with core fonts.
func (w *Writer) addUTF8Face(face fonts.Face) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("register font %s %q: %v", face.Family, face.Style, r)
		}
	}()
	w.pdf.AddUTF8FontFromBytes(face.Family, face.Style, face.Data)
	if err = w.pdf.Error(); err != nil {
		w.pdf.ClearError()
		return fmt.Errorf("register font %s %q: %w", face.Family, face.Style, err)
	}
	if w.pdf.GetFontDesc(face.Family, face.Style) == (gofpdf.FontDescType{}) {
		return fmt.Errorf("register font %s %q: %w", face.Family, face.Style, errFontRejected)
	}
	return nil
}

var errFontRejected = errors.New("font data rejected")

// Fonts returns the faces in use, with rejected custom faces replaced by built-in ones.
func (w *Writer) Fonts() fonts.FontSet {
	return w.fonts
}

// portraitSize is size with the short edge as width; the orientation turns it.
func portraitSize(size pdfs.PaperSize) gofpdf.SizeType {
	if size.Width > size.Height {
		return gofpdf.SizeType{Wd: size.Height, Ht: size.Width}
	}
	return gofpdf.SizeType{Wd: size.Width, Ht: size.Height}
}

func (w *Writer) PaperSize() pdfs.PaperSize {
	return w.size
}

func (w *Writer) AddBlankPage() {
	w.pdf.AddPage()
}

func (w *Writer) SetFont(family string, style string, size float64) {
	w.pdf.SetFont(family, style, size)
	if w.utf8Families[family] {
		w.translate = nil
	} else {
		w.translate = w.cp1252
	}
}

// SetFontSize changes the size used by the style-based methods.
func (w *Writer) SetFontSize(size float64) {
	w.fontSize = size
	w.pdf.SetFontSize(size)
}

func (w *Writer) StringWidth(text string) float64 {
	return w.pdf.GetStringWidth(w.encode(text))
}

func (w *Writer) Text(x float64, y float64, text string) {
	w.pdf.Text(x, w.size.Height-y, w.encode(text))
}

func (w *Writer) Line(x1 float64, y1 float64, x2 float64, y2 float64) {
	w.pdf.Line(x1, w.size.Height-y1, x2, w.size.Height-y2)
}

func (w *Writer) SetStrokeGray(gray float64, width float64) {
	v := int(gray*255 + 0.5)
	w.pdf.SetDrawColor(v, v, v)
	w.pdf.SetLineWidth(width)
}

// Width measures text in the face of s at the current font size.
func (w *Writer) Width(text string, s style.Style) float64 {
	w.useFace(s)
	return w.StringWidth(text)
}

// DrawWord draws text in the face of s with its baseline at y.
func (w *Writer) DrawWord(x, y float64, text string, s style.Style) {
	w.useFace(s)
	w.Text(x, y, text)
}

func (w *Writer) Err() error {
	return w.pdf.Error()
}

func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	cw := rw.NewCountWriter(out)
	err := w.pdf.Output(cw)
	return cw.BytesWritten(), err
}

func (w *Writer) ProduceBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := w.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (w *Writer) useFace(s style.Style) {
	face := w.fonts.Face(s)
	w.SetFont(face.Family, face.Style, w.fontSize)
}

func (w *Writer) encode(text string) string {
	if w.translate == nil {
		return text
	}
	return w.translate(text)
}
