package fpdf

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/zeptools/docoverlay/fonts"
	"github.com/zeptools/docoverlay/pdfs"
	"github.com/zeptools/docoverlay/pdfs/pdftest"
	"github.com/zeptools/docoverlay/style"
)

func TestWriter_StyleMetrics(t *testing.T) {
	w := New(pdfs.A4Size, fonts.Builtin(), 12)
	body := w.Width("Congratulations", style.Body)
	bold := w.Width("Congratulations", style.Bold)
	assert.Greater(t, body, 0.0)
	assert.Greater(t, bold, body)

	w.SetFontSize(24)
	assert.InDelta(t, 2*body, w.Width("Congratulations", style.Body), 0.001)
}

func TestWriter_NonASCII(t *testing.T) {
	w := New(pdfs.A4Size, fonts.Builtin(), 12)
	// The em dash exists in the core font encoding.
	assert.Greater(t, w.Width("—", style.Body), 0.0)
	w.DrawWord(30, 500, "sessions —", style.Body)
	require.NoError(t, w.Err())
}

func TestWriter_ProduceBytes(t *testing.T) {
	w := New(pdfs.LetterSize, fonts.Builtin(), 12)
	w.DrawWord(30, 700, "Ref. No.: SZS/OFFR/2026/OCT/001", style.Bold)
	w.SetStrokeGray(0.75, 1)
	w.Line(30, 600, 582, 600)
	require.NoError(t, w.Err())
	assert.Equal(t, pdfs.LetterSize, w.PaperSize())

	b, err := w.ProduceBytes()
	require.NoError(t, err)
	tpl, err := pdfs.InspectTemplate(b)
	require.NoError(t, err)
	assert.Equal(t, 1, tpl.PageCount)
	assert.InDelta(t, pdfs.LetterSize.Width, tpl.Width, 0.01)
	assert.InDelta(t, pdfs.LetterSize.Height, tpl.Height, 0.01)
	assert.Contains(t, pdftest.PageText(t, b, 1), "SZS/OFFR/2026/OCT/001")
}

func TestWriter_WriteTo(t *testing.T) {
	w := New(pdfs.CustomSize(200, 100), fonts.Builtin(), 12)
	w.Text(10, 50, "hello")
	var buf bytes.Buffer
	n, err := w.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWriter_Landscape(t *testing.T) {
	size := pdfs.CustomSize(842, 595)
	w := New(size, fonts.Builtin(), 12)
	w.Text(20, 20, "landscape")
	b, err := w.ProduceBytes()
	require.NoError(t, err)
	tpl, err := pdfs.InspectTemplate(b)
	require.NoError(t, err)
	assert.InDelta(t, 842, tpl.Width, 0.01)
	assert.InDelta(t, 595, tpl.Height, 0.01)
}

func TestWriter_CustomFaces(t *testing.T) {
	fs := fonts.Builtin()
	fs.Set(style.Body, fonts.Face{Family: fonts.CustomFamily, Style: "", Data: goregular.TTF})
	fs.Set(style.Bold, fonts.Face{Family: fonts.CustomFamily, Style: "B", Data: gobold.TTF})

	w := New(pdfs.A4Size, fs, 12)
	require.NoError(t, w.Err())
	assert.Equal(t, fs, w.Fonts())
	assert.Greater(t, w.Width("Ünïcode", style.Body), 0.0)
	w.DrawWord(30, 700, "Ünïcode", style.Body)
	w.DrawWord(30, 680, "bold", style.Bold)
	w.DrawWord(30, 660, "italic", style.Italic)
	require.NoError(t, w.Err())
	_, err := w.ProduceBytes()
	require.NoError(t, err)
}

func TestWriter_MalformedFaceFallsBack(t *testing.T) {
	truncated := append([]byte{0x00, 0x01, 0x00, 0x00}, make([]byte, 28)...)
	fs := fonts.Builtin()
	fs.Set(style.Body, fonts.Face{Family: fonts.CustomFamily, Style: "", Data: truncated})
	fs.Set(style.Italic, fonts.Face{Family: fonts.CustomFamily, Style: "I", Data: []byte("garbage")})

	var w *Writer
	require.NotPanics(t, func() { w = New(pdfs.A4Size, fs, 12) })
	require.NoError(t, w.Err())
	assert.Equal(t, fonts.Builtin(), w.Fonts())

	w.DrawWord(30, 700, "Ref. No.: SZS/OFFR/2026/OCT/001", style.Body)
	w.DrawWord(30, 680, "real-time", style.Italic)
	require.NoError(t, w.Err())
	b, err := w.ProduceBytes()
	require.NoError(t, err)
	assert.Contains(t, pdftest.PageText(t, b, 1), "SZS/OFFR/2026/OCT/001")
}
