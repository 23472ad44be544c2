package pdfs

type PaperSize struct {
	Name   string
	Width  float64 // in `pt` (1" = 72pts)
	Height float64 // in `pt`
}

var (
	LetterSize = PaperSize{Name: "Letter", Width: 612, Height: 792}         // 8.5" x 11"
	A4Size     = PaperSize{Name: "A4", Width: 595.27559, Height: 841.88976} // 210mm x 297mm
)

// CustomSize is a page of arbitrary size, e.g. the first page of a template.
func CustomSize(width, height float64) PaperSize {
	return PaperSize{Name: "Custom", Width: width, Height: height}
}

// Orientation is "L" for landscape pages and "P" otherwise.
func (p PaperSize) Orientation() string {
	if p.Width > p.Height {
		return "L"
	}
	return "P"
}
