package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/shini4i/gsbwifi/internal/portal"
	"github.com/shini4i/gsbwifi/internal/quota"
)

var (
	colorSuccess = lipgloss.Color("2")
	colorError   = lipgloss.Color("1")
	colorWarning = lipgloss.Color("3")
	colorFaint   = lipgloss.Color("8")
)

// printer renders results for one writer. Colors are dropped automatically
// when the writer is not a terminal.
type printer struct {
	w        io.Writer
	success  lipgloss.Style
	failure  lipgloss.Style
	warning  lipgloss.Style
	details  lipgloss.Style
	greeting lipgloss.Style
}

func newPrinter(w io.Writer) *printer {
	r := lipgloss.NewRenderer(w)
	return &printer{
		w:        w,
		success:  r.NewStyle().Bold(true).Foreground(colorSuccess),
		failure:  r.NewStyle().Bold(true).Foreground(colorError),
		warning:  r.NewStyle().Foreground(colorWarning),
		details:  r.NewStyle().Foreground(colorFaint).PaddingLeft(2),
		greeting: r.NewStyle().Bold(true),
	}
}

func (p *printer) line(s string) {
	_, _ = fmt.Fprintln(p.w, s)
}

// result prints the headline prominently and the details as secondary text.
// A failed result has no headline; its details are the failure reason.
func (p *printer) result(r portal.Result) {
	if !r.Success {
		p.fail(r.Details)
		return
	}
	p.line(p.success.Render("✔ " + r.Headline))
	p.detailLines(r.Details)
}

func (p *printer) detailLines(details string) {
	for _, l := range strings.Split(details, "\n") {
		if strings.TrimSpace(l) == "" {
			continue
		}
		if strings.HasPrefix(l, "Not: ") {
			p.line(p.warning.PaddingLeft(2).Render(l))
			continue
		}
		p.line(p.details.Render(l))
	}
}

func (p *printer) status(st portal.Status) {
	if !st.LoggedIn {
		p.line(p.failure.Render("✘ " + st.Headline))
		return
	}
	if st.Greeting != "" {
		p.line(p.greeting.Render("Sayın " + st.Greeting))
	}
	p.line(p.success.Render("✔ " + st.Headline))
	p.detailLines(st.Details)
	if usage, ok := quota.ParseUsage(st.Fields); ok {
		p.line(p.details.Render(usage.String()))
	}
}

func (p *printer) fail(reason string) {
	p.line(p.failure.Render("✘ " + reason))
}
