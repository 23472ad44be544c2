package overlay

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/zeptools/docoverlay/layout"
	"github.com/zeptools/docoverlay/style"
)

const (
	OfferTitle      = "INTERNSHIP OFFER LETTER"
	SubjectPrefix   = "Subject: Offer of Internship for the Role of "
	ItalicPhrase    = "real-time project execution"
	DefaultDuration = "3 months"
)

type OfferInput struct {
	Name        string
	USN         string // optional identifier printed after the name
	Institution string
	Email       string
	Role        string
	Duration    string // DefaultDuration when empty
	InternType  string
	Template    []byte
}

func (in OfferInput) duration() string {
	if d := strings.TrimSpace(in.Duration); d != "" {
		return d
	}
	return DefaultDuration
}

func (in OfferInput) recipient() string {
	if in.USN == "" {
		return in.Name
	}
	return fmt.Sprintf("%s (%s)", in.Name, in.USN)
}

// RenderOffer produces an internship offer letter on top of in.Template.
func (r *Renderer) RenderOffer(ctx context.Context, in OfferInput) (*Output, error) {
	now := r.now()
	tpl, canvas, err := r.prepare(in.Template, r.Offers, r.Layout.FontSize)
	if err != nil {
		return nil, err
	}
	reference, err := r.allocate(ctx, r.Offers, r.OfferRef, now)
	if err != nil {
		return nil, err
	}
	r.drawOffer(canvas, in, reference, now)
	return r.finish(tpl, canvas, reference)
}

func (r *Renderer) drawOffer(canvas Canvas, in OfferInput, reference string, now time.Time) {
	l := r.Layout
	size := canvas.PaperSize()
	c := layout.NewCursor(size.Width, size.Height, l.Left, l.Right, l.Top)

	// header
	canvas.DrawWord(l.Left, c.Y, "Ref. No.: "+reference, style.Bold)
	date := "Date: " + FormatDate(now)
	canvas.DrawWord(size.Width-l.Right-canvas.Width(date, style.Bold), c.Y, date, style.Bold)

	c.Y -= 40
	canvas.DrawWord((size.Width-canvas.Width(OfferTitle, style.Bold))/2, c.Y, OfferTitle, style.Bold)

	// recipient
	c.Y -= 50
	canvas.DrawWord(l.Left, c.Y, "To,", style.Bold)
	c.Y -= 20
	canvas.DrawWord(l.Left, c.Y, in.recipient(), style.Body)
	c.Y -= 15
	canvas.DrawWord(l.Left, c.Y, in.Institution, style.Body)
	c.Y -= 15
	canvas.DrawWord(l.Left, c.Y, in.Email, style.Body)
	c.Y -= 8
	canvas.SetStrokeGray(0.75, 1)
	canvas.Line(l.Left, c.Y, size.Width-l.Left, c.Y)
	c.Y -= 25

	// subject
	canvas.DrawWord(l.Left, c.Y, SubjectPrefix, style.Bold)
	canvas.DrawWord(l.Left+canvas.Width(SubjectPrefix, style.Bold), c.Y, in.Role, style.Bold)
	c.Y -= 30

	canvas.DrawWord(l.Left, c.Y, fmt.Sprintf("Dear %s,", in.Name), style.Body)
	c.Y -= 30

	engine := &layout.Engine{
		Metrics:      canvas,
		Drawer:       canvas,
		LineHeight:   l.LineHeight,
		ParagraphGap: l.ParagraphGap,
	}
	rules := r.offerRules(in)
	for _, p := range r.offerParagraphs(in) {
		engine.Flow(c, p, rules, ItalicPhrase)
	}

	// signature, relative to where the body ended
	c.Y -= 10
	canvas.DrawWord(l.Left, c.Y, r.Company.Signatory, style.Bold)
	c.Y -= 18
	canvas.DrawWord(l.Left, c.Y, r.Company.SignatoryTitle, style.Bold)
}

func (r *Renderer) offerParagraphs(in OfferInput) []string {
	company := r.Company.Name
	return []string{
		"Congratulations!",
		fmt.Sprintf("We are pleased to offer you the position of %s at %s for a period of %s.",
			in.Role, company, in.duration()),
		fmt.Sprintf("This internship is a %s designed to help students gain hands-on project\n"+
			" experience and develop industry-ready skills in their respective domains. You will be assigned "+
			"project-based tasks to work on from your own location, under the guidance of our mentors and "+
			"coordinators.", in.InternType),
		"Our goal is to ensure that you learn through real-time project execution rather than classroom " +
			"sessions — allowing you to experience how actual software projects are managed in the IT industry.",
		fmt.Sprintf("We are not so excited to have you join Team %s, and we look forward to your "+
			"active contribution, learning, and growth throughout this journey.", company),
	}
}

var (
	handsOnExperience = style.MustPattern(`hands-on\s+project\s+experience`, style.Bold)
	industryReady     = style.MustPattern(`industry-ready\s+skills`, style.Bold)
	gainHandsOn       = style.MustPattern(`gain\s+hands-on\s+project`, style.Bold)
)

// offerRules lists the bold phrases of the letter in priority order.
func (r *Renderer) offerRules(in OfferInput) []style.EmphasisRule {
	company := r.Company
	legalSuffix := strings.TrimSpace(strings.TrimPrefix(company.Name, company.ShortName))
	return []style.EmphasisRule{
		style.Literal(in.Role, style.Bold),
		style.Literal(in.duration(), style.Bold),
		handsOnExperience,
		industryReady,
		style.Literal("Team "+company.Name, style.Bold),
		style.Literal(company.Name, style.Bold),
		style.Literal(in.InternType, style.Bold),
		gainHandsOn,
		style.Literal(company.ShortName, style.Bold),
		legalSuffixRule(legalSuffix),
	}
}

// legalSuffixRule matches suffix like style.Literal, except that a word ending
// in ")" may touch the next one, as in "(OPC)Private Limited".
func legalSuffixRule(suffix string) style.EmphasisRule {
	fields := strings.Fields(suffix)
	if len(fields) == 0 {
		return style.Literal(suffix, style.Bold)
	}
	var expr strings.Builder
	for i, f := range fields {
		if i > 0 {
			if strings.HasSuffix(fields[i-1], ")") {
				expr.WriteString(`\s*`)
			} else {
				expr.WriteString(`\s+`)
			}
		}
		expr.WriteString(regexp.QuoteMeta(f))
	}
	rule, err := style.Pattern(expr.String(), style.Bold)
	if err != nil {
		return style.Literal(suffix, style.Bold)
	}
	return rule
}
