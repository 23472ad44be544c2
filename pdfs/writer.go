package pdfs

import "io"

// Writer is a minimal, stream-style, append-only PDF writer. No page navigation.
// Coordinates are in pt with the origin at the bottom-left corner of the page.
type Writer interface {
	PaperSize() PaperSize

	AddBlankPage()

	SetFont(family string, style string, size float64)
	StringWidth(text string) float64

	Text(x float64, y float64, text string)
	Line(x1 float64, y1 float64, x2 float64, y2 float64)
	SetStrokeGray(gray float64, width float64) // gray in [0,1], width in pt

	// Err reports the first drawing error, if any. Later calls are no-ops once set.
	Err() error

	WriteTo(w io.Writer) (int64, error)
	ProduceBytes() ([]byte, error)
}
