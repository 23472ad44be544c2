package pdfs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeptools/docoverlay/pdfs"
	"github.com/zeptools/docoverlay/pdfs/pdftest"
)

func TestPaperSize(t *testing.T) {
	assert.InDelta(t, 841.89, pdfs.A4Size.Height, 0.01)
	assert.Equal(t, "P", pdfs.A4Size.Orientation())
	assert.Equal(t, "L", pdfs.CustomSize(842, 595).Orientation())
}

func TestInspectTemplate(t *testing.T) {
	b := pdftest.Document(t, pdfs.A4Size.Width, pdfs.A4Size.Height, "TEMPLATE PAGE ONE", "TEMPLATE PAGE TWO")
	tpl, err := pdfs.InspectTemplate(b)
	require.NoError(t, err)
	assert.Equal(t, 2, tpl.PageCount)
	assert.InDelta(t, pdfs.A4Size.Width, tpl.Width, 0.01)
	assert.InDelta(t, pdfs.A4Size.Height, tpl.Height, 0.01)
	assert.Equal(t, "P", tpl.Size().Orientation())
}

func TestInspectTemplate_Invalid(t *testing.T) {
	_, err := pdfs.InspectTemplate(nil)
	assert.ErrorIs(t, err, pdfs.ErrEmptyTemplate)

	_, err = pdfs.InspectTemplate([]byte("definitely not a pdf document"))
	assert.Error(t, err)
}

func TestStampFirstPage(t *testing.T) {
	w, h := pdfs.LetterSize.Width, pdfs.LetterSize.Height
	tpl, err := pdfs.InspectTemplate(pdftest.Document(t, w, h, "TEMPLATE PAGE ONE", "TEMPLATE PAGE TWO"))
	require.NoError(t, err)
	overlay := pdftest.Document(t, w, h, "OVERLAY TEXT")

	out, err := pdfs.StampFirstPage(tpl, overlay)
	require.NoError(t, err)

	merged, err := pdfs.InspectTemplate(out)
	require.NoError(t, err)
	assert.Equal(t, 2, merged.PageCount)
	assert.InDelta(t, w, merged.Width, 0.01)
	assert.InDelta(t, h, merged.Height, 0.01)

	assert.Equal(t, 2, pdftest.NumPage(t, out))
	assert.Contains(t, pdftest.PageText(t, out, 1), "TEMPLATE PAGE ONE")
	assert.Equal(t, pdftest.PageText(t, tpl.Data, 2), pdftest.PageText(t, out, 2))

	// page 1 keeps its own marks and draws the overlay page as a form
	assert.Empty(t, pdftest.Forms(t, tpl.Data, 1))
	page1 := pdftest.PageContent(t, out, 1)
	assert.Contains(t, string(page1), "(TEMPLATE PAGE ONE)")
	assert.Contains(t, string(page1), " Do ")
	assert.True(t, pdftest.FormsContain(t, out, 1, "(OVERLAY TEXT)"))

	// page 2 is untouched
	page2 := pdftest.PageContent(t, out, 2)
	assert.Equal(t, pdftest.PageContent(t, tpl.Data, 2), page2)
	assert.NotContains(t, string(page2), " Do ")
}

func TestStampFirstPage_BadOverlay(t *testing.T) {
	tpl, err := pdfs.InspectTemplate(pdftest.Document(t, 300, 400, "ONLY"))
	require.NoError(t, err)
	_, err = pdfs.StampFirstPage(tpl, []byte("garbage"))
	assert.Error(t, err)
}

func TestLoadTemplateDir(t *testing.T) {
	root := t.TempDir()
	doc := pdftest.Document(t, 300, 400, "X")
	write := func(rel string, data []byte) {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, data, 0o644))
	}
	write("offer.pdf", doc)
	write("2026/certificate.pdf", doc)
	write(".drafts/offer.pdf", doc)
	write(".hidden.pdf", doc)
	write("notes.txt", []byte("ignored"))

	store, err := pdfs.LoadTemplateDir(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026/certificate", "offer"}, store.Keys())
	tpl, ok := store.Get("offer")
	require.True(t, ok)
	assert.Equal(t, "offer", tpl.Name)
	assert.Equal(t, 1, tpl.PageCount)
}

func TestLoadTemplateDir_BrokenFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "broken.pdf"), []byte("nope"), 0o644))
	_, err := pdfs.LoadTemplateDir(root)
	assert.ErrorContains(t, err, "broken.pdf")
}
