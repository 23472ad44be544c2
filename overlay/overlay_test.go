package overlay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeptools/docoverlay/fonts"
	"github.com/zeptools/docoverlay/pdfs"
	"github.com/zeptools/docoverlay/pdfs/fpdf"
	"github.com/zeptools/docoverlay/pdfs/pdftest"
	"github.com/zeptools/docoverlay/refnum"
	"github.com/zeptools/docoverlay/style"
)

type drawn struct {
	X, Y  float64
	Text  string
	Style style.Style
}

type recordingCanvas struct {
	*fpdf.Writer
	draws []drawn
}

func (c *recordingCanvas) DrawWord(x, y float64, text string, s style.Style) {
	c.draws = append(c.draws, drawn{X: x, Y: y, Text: text, Style: s})
	c.Writer.DrawWord(x, y, text, s)
}

func (c *recordingCanvas) find(text string) []drawn {
	var out []drawn
	for _, d := range c.draws {
		if d.Text == text {
			out = append(out, d)
		}
	}
	return out
}

var renderDay = time.Date(2026, time.October, 19, 9, 30, 0, 0, time.UTC)

func newTestRenderer(store refnum.Store) (*Renderer, **recordingCanvas) {
	r := NewRenderer(
		fonts.Builtin(),
		&refnum.Generator{Store: store, Key: "offer_serial"},
		&refnum.Generator{Store: store, Key: "certificate_serial"},
	)
	r.Now = func() time.Time { return renderDay }
	var last *recordingCanvas
	r.NewCanvas = func(size pdfs.PaperSize, fs fonts.FontSet, fontSize float64) Canvas {
		last = &recordingCanvas{Writer: fpdf.New(size, fs, fontSize)}
		return last
	}
	return r, &last
}

func sampleOffer(template []byte) OfferInput {
	return OfferInput{
		Name:        "Asha Rao",
		USN:         "4SZ21CS001",
		Institution: "Sahyadri College of Engineering",
		Email:       "asha@example.com",
		Role:        "Frontend Developer",
		InternType:  "remote internship",
		Template:    template,
	}
}

func twoPageA4(t *testing.T) []byte {
	return pdftest.Document(t, pdfs.A4Size.Width, pdfs.A4Size.Height, "TEMPLATE PAGE ONE", "TEMPLATE PAGE TWO")
}

func TestRenderOffer(t *testing.T) {
	template := twoPageA4(t)
	r, last := newTestRenderer(refnum.NewMemStore())

	out, err := r.RenderOffer(context.Background(), sampleOffer(template))
	require.NoError(t, err)
	assert.Equal(t, "SZS/OFFR/2026/OCT/001", out.Reference)

	assert.Equal(t, 2, pdftest.NumPage(t, out.PDF))
	assert.Contains(t, pdftest.PageText(t, out.PDF, 1), "TEMPLATE PAGE ONE")
	assert.Equal(t, pdftest.PageText(t, template, 2), pdftest.PageText(t, out.PDF, 2))

	assert.Contains(t, string(pdftest.PageContent(t, out.PDF, 1)), "(TEMPLATE PAGE ONE)")
	assert.True(t, pdftest.FormsContain(t, out.PDF, 1, "(Ref. No.: SZS/OFFR/2026/OCT/001)"))
	assert.True(t, pdftest.FormsContain(t, out.PDF, 1, "(Date: 19th Oct 2026)"))
	assert.Equal(t, pdftest.PageContent(t, template, 2), pdftest.PageContent(t, out.PDF, 2))

	merged, err := pdfs.InspectTemplate(out.PDF)
	require.NoError(t, err)
	assert.InDelta(t, pdfs.A4Size.Height, merged.Height, 0.01)

	canvas := *last
	require.NotNil(t, canvas)
	w, h := pdfs.A4Size.Width, pdfs.A4Size.Height
	metrics := fpdf.New(pdfs.A4Size, fonts.Builtin(), 12)

	require.GreaterOrEqual(t, len(canvas.draws), 10)
	ref := canvas.draws[0]
	assert.Equal(t, "Ref. No.: SZS/OFFR/2026/OCT/001", ref.Text)
	assert.Equal(t, style.Bold, ref.Style)
	assert.Equal(t, 30.0, ref.X)
	assert.InDelta(t, h-275, ref.Y, 0.01)

	date := canvas.draws[1]
	assert.Equal(t, "Date: 19th Oct 2026", date.Text)
	assert.Equal(t, ref.Y, date.Y)
	assert.InDelta(t, w-30, date.X+metrics.Width(date.Text, style.Bold), 0.01)

	title := canvas.draws[2]
	assert.Equal(t, OfferTitle, title.Text)
	assert.InDelta(t, ref.Y-40, title.Y, 0.001)
	assert.InDelta(t, w/2, title.X+metrics.Width(OfferTitle, style.Bold)/2, 0.01)

	recipient := canvas.find("Asha Rao (4SZ21CS001)")
	require.Len(t, recipient, 1)
	assert.InDelta(t, ref.Y-110, recipient[0].Y, 0.001)
	assert.Len(t, canvas.find("Dear Asha Rao,"), 1)
	assert.Len(t, canvas.find(SubjectPrefix), 1)
}

func TestRenderOffer_EmphasisAndSignature(t *testing.T) {
	r, last := newTestRenderer(refnum.NewMemStore())
	_, err := r.RenderOffer(context.Background(), sampleOffer(twoPageA4(t)))
	require.NoError(t, err)
	canvas := *last

	styleOf := func(word string) style.Style {
		found := canvas.find(word)
		require.NotEmpty(t, found, word)
		return found[0].Style
	}
	assert.Equal(t, style.Body, styleOf("Congratulations!"))
	assert.Equal(t, style.Body, styleOf("pleased"))
	assert.Equal(t, style.Bold, styleOf("Frontend"))
	assert.Equal(t, style.Bold, styleOf("Developer"))
	assert.Equal(t, style.Bold, styleOf("months."))
	assert.Equal(t, style.Bold, styleOf("industry-ready"))
	assert.Equal(t, style.Italic, styleOf("real-time"))
	assert.Equal(t, style.Italic, styleOf("execution"))
	assert.Equal(t, style.Body, styleOf("classroom"))

	journey := canvas.find("journey.")
	require.Len(t, journey, 1)
	n := len(canvas.draws)
	signatory, title := canvas.draws[n-2], canvas.draws[n-1]
	assert.Equal(t, DefaultCompany().Signatory, signatory.Text)
	assert.Equal(t, DefaultCompany().SignatoryTitle, title.Text)
	assert.Equal(t, style.Bold, signatory.Style)
	assert.InDelta(t, journey[0].Y-15-12-10, signatory.Y, 0.001)
	assert.InDelta(t, signatory.Y-18, title.Y, 0.001)
}

func TestRenderOffer_SerialsAdvance(t *testing.T) {
	template := twoPageA4(t)
	r, _ := newTestRenderer(refnum.NewMemStore())
	for _, want := range []string{"SZS/OFFR/2026/OCT/001", "SZS/OFFR/2026/OCT/002"} {
		out, err := r.RenderOffer(context.Background(), sampleOffer(template))
		require.NoError(t, err)
		assert.Equal(t, want, out.Reference)
	}
}

func TestRenderOffer_AdaptsToTemplateSize(t *testing.T) {
	template := pdftest.Document(t, pdfs.LetterSize.Width, pdfs.LetterSize.Height, "LETTER")
	r, last := newTestRenderer(refnum.NewMemStore())
	out, err := r.RenderOffer(context.Background(), sampleOffer(template))
	require.NoError(t, err)
	assert.Equal(t, 1, pdftest.NumPage(t, out.PDF))

	canvas := *last
	assert.InDelta(t, pdfs.LetterSize.Width, canvas.PaperSize().Width, 0.01)
	assert.InDelta(t, pdfs.LetterSize.Height-275, canvas.draws[0].Y, 0.01)
}

func TestRenderOffer_BadTemplateConsumesNoSerial(t *testing.T) {
	store := refnum.NewMemStore()
	r, _ := newTestRenderer(store)

	for _, template := range [][]byte{nil, []byte("not a pdf")} {
		out, err := r.RenderOffer(context.Background(), sampleOffer(template))
		assert.Nil(t, out)
		var tplErr *TemplateError
		require.ErrorAs(t, err, &tplErr)
	}
	_, found, err := store.Peek(context.Background(), "offer_serial")
	require.NoError(t, err)
	assert.False(t, found)
}

type brokenCanvas struct {
	*fpdf.Writer
}

func (brokenCanvas) Err() error {
	return errors.New("font registration failed")
}

func TestRender_CanvasFailureConsumesNoSerial(t *testing.T) {
	store := refnum.NewMemStore()
	r, _ := newTestRenderer(store)
	r.NewCanvas = func(size pdfs.PaperSize, fs fonts.FontSet, fontSize float64) Canvas {
		return brokenCanvas{Writer: fpdf.New(size, fs, fontSize)}
	}

	_, err := r.RenderOffer(context.Background(), sampleOffer(twoPageA4(t)))
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, "open canvas", renderErr.Message)

	size := pdfs.CustomSize(842, 595)
	_, err = r.RenderCertificate(context.Background(), CertificateInput{Name: "X", Template: pdftest.Document(t, size.Width, size.Height, "C")})
	require.ErrorAs(t, err, &renderErr)

	for _, key := range []string{"offer_serial", "certificate_serial"} {
		_, found, err := store.Peek(context.Background(), key)
		require.NoError(t, err)
		assert.False(t, found, key)
	}
}

func TestRenderOffer_MalformedCustomFont(t *testing.T) {
	fs := fonts.Builtin()
	fs.Set(style.Body, fonts.Face{
		Family: fonts.CustomFamily,
		Data:   append([]byte{0x00, 0x01, 0x00, 0x00}, make([]byte, 28)...),
	})
	store := refnum.NewMemStore()
	r := NewRenderer(fs,
		&refnum.Generator{Store: store, Key: "offer_serial"},
		&refnum.Generator{Store: store, Key: "certificate_serial"},
	)
	r.Now = func() time.Time { return renderDay }

	var out *Output
	var err error
	require.NotPanics(t, func() {
		out, err = r.RenderOffer(context.Background(), sampleOffer(twoPageA4(t)))
	})
	require.NoError(t, err)
	assert.Equal(t, "SZS/OFFR/2026/OCT/001", out.Reference)
	assert.True(t, pdftest.FormsContain(t, out.PDF, 1, "(Ref. No.: SZS/OFFR/2026/OCT/001)"))
}

func TestRenderOffer_CorruptCounter(t *testing.T) {
	store := refnum.NewMemStore()
	store.Set("offer_serial", refnum.Counter{Month: "October", Serial: 3})
	r, _ := newTestRenderer(store)

	_, err := r.RenderOffer(context.Background(), sampleOffer(twoPageA4(t)))
	var stateErr *refnum.CounterStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, "offer_serial", stateErr.Key)
}

func TestDrawOffer_OverlayText(t *testing.T) {
	r, _ := newTestRenderer(refnum.NewMemStore())
	canvas := fpdf.New(pdfs.A4Size, fonts.Builtin(), 12)
	r.drawOffer(canvas, sampleOffer(nil), "SZS/OFFR/2026/OCT/007", renderDay)
	require.NoError(t, canvas.Err())

	b, err := canvas.ProduceBytes()
	require.NoError(t, err)
	text := pdftest.PageText(t, b, 1)
	assert.Contains(t, text, "Ref. No.: SZS/OFFR/2026/OCT/007")
	assert.Contains(t, text, "Date: 19th Oct 2026")
	assert.Contains(t, text, OfferTitle)
	assert.Contains(t, text, "Sahyadri College of Engineering")
}

func TestOfferInput_Defaults(t *testing.T) {
	in := OfferInput{Name: "Ravi"}
	assert.Equal(t, DefaultDuration, in.duration())
	assert.Equal(t, "Ravi", in.recipient())
	in.Duration = " 6 months "
	in.USN = "1AB"
	assert.Equal(t, "6 months", in.duration())
	assert.Equal(t, "Ravi (1AB)", in.recipient())
}

func TestOfferRules_CompanyFragments(t *testing.T) {
	r, _ := newTestRenderer(refnum.NewMemStore())
	rules := r.offerRules(sampleOffer(nil))
	words := style.Classify("Welcome to Team Swizosoft (OPC) Private Limited", rules, ItalicPhrase)
	require.Len(t, words, 7)
	assert.Equal(t, style.Body, words[0].Style)
	assert.Equal(t, style.Body, words[1].Style)
	for _, w := range words[2:] {
		assert.Equal(t, style.Bold, w.Style, w.Text)
	}
	words = style.Classify("(OPC) Private Limited", rules, ItalicPhrase)
	for _, w := range words {
		assert.Equal(t, style.Bold, w.Style, w.Text)
	}

	// no gap after the parenthesis
	words = style.Classify("Welcome to (OPC)Private Limited", rules, ItalicPhrase)
	require.Len(t, words, 4)
	assert.Equal(t, style.Body, words[0].Style)
	assert.Equal(t, style.Body, words[1].Style)
	assert.Equal(t, style.Bold, words[2].Style)
	assert.Equal(t, style.Bold, words[3].Style)

	// the other gaps still need whitespace
	words = style.Classify("(OPC) PrivateLimited", rules, ItalicPhrase)
	for _, w := range words {
		assert.Equal(t, style.Body, w.Style, w.Text)
	}
}

func TestLegalSuffixRule(t *testing.T) {
	rule := legalSuffixRule("(OPC) Private Limited")
	for text, want := range map[string]bool{
		"(OPC) Private Limited":  true,
		"(opc)private  limited":  true,
		"(OPC)\tPrivate Limited": true,
		"(OPC) PrivateLimited":   false,
		"OPC Private Limited":    false,
	} {
		_, _, ok := rule.Match(text, 0)
		assert.Equal(t, want, ok, text)
	}

	_, _, ok := legalSuffixRule("").Match("anything", 0)
	assert.False(t, ok)
}

func TestRenderCertificate(t *testing.T) {
	store := refnum.NewMemStore()
	r, last := newTestRenderer(store)

	_, err := r.RenderOffer(context.Background(), sampleOffer(twoPageA4(t)))
	require.NoError(t, err)

	size := pdfs.CustomSize(842, 595)
	template := pdftest.Document(t, size.Width, size.Height, "CERTIFICATE OF COMPLETION")
	out, err := r.RenderCertificate(context.Background(), CertificateInput{Name: "Asha Rao", Template: template})
	require.NoError(t, err)
	assert.Equal(t, "SZS_CERT_2026_OCT_001", out.Reference)
	assert.Equal(t, 1, pdftest.NumPage(t, out.PDF))
	assert.Contains(t, pdftest.PageText(t, out.PDF, 1), "CERTIFICATE OF COMPLETION")

	canvas := *last
	require.Len(t, canvas.draws, 1)
	d := canvas.draws[0]
	assert.Equal(t, "Asha Rao", d.Text)
	assert.Equal(t, style.Italic, d.Style)
	assert.InDelta(t, 595*0.46, d.Y, 0.001)

	width := fpdf.New(size, fonts.Builtin(), 33).Width("Asha Rao", style.Italic)
	assert.InDelta(t, (842-width)/2, d.X, 0.001)
}

func TestRenderCertificate_BadTemplate(t *testing.T) {
	store := refnum.NewMemStore()
	r, _ := newTestRenderer(store)
	_, err := r.RenderCertificate(context.Background(), CertificateInput{Name: "X", Template: []byte("%PDF-broken")})
	var tplErr *TemplateError
	require.ErrorAs(t, err, &tplErr)
	_, found, _ := store.Peek(context.Background(), "certificate_serial")
	assert.False(t, found)
}

func TestFormatDate(t *testing.T) {
	cases := map[int]string{
		1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 11: "11th", 12: "12th", 13: "13th",
		21: "21st", 22: "22nd", 23: "23rd", 30: "30th", 31: "31st",
	}
	for day, prefix := range cases {
		d := time.Date(2026, time.January, day, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, prefix+" Jan 2026", FormatDate(d))
	}
	assert.Equal(t, "19th Oct 2026", FormatDate(renderDay))
}
