package refnum

import (
	"strconv"
	"strings"
	"time"
)

// MonthCode returns the upper-case 3-letter month of t, e.g. "OCT".
func MonthCode(t time.Time) string {
	return strings.ToUpper(t.Format("Jan"))
}

// Reference formats human-readable ids such as "SZS/OFFR/2026/OCT/001".
type Reference struct {
	Prefix   string `json:"prefix"`
	Category string `json:"category"`
	Sep      string `json:"sep"`
}

var (
	OfferReference       = Reference{Prefix: "SZS", Category: "OFFR", Sep: "/"}
	CertificateReference = Reference{Prefix: "SZS", Category: "CERT", Sep: "_"}
)

// Format joins the non-empty parts with Sep: prefix, category, year, month, serial.
func (r Reference) Format(t time.Time, serial string) string {
	parts := make([]string, 0, 5)
	for _, p := range []string{r.Prefix, r.Category, strconv.Itoa(t.Year()), MonthCode(t), serial} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, r.Sep)
}

// FileName is the file-safe name of a generated document.
func FileName(ref string) string {
	return strings.ReplaceAll(ref, "/", "_") + ".pdf"
}
