package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shieldscan/shieldscan/pkg/finding"
	"github.com/shieldscan/shieldscan/pkg/sqli"
	"github.com/shieldscan/shieldscan/pkg/ui"
)

// Console writes r as styled text, one section per category.
func Console(r *finding.Report, w io.Writer) error {
	var b strings.Builder

	fmt.Fprintln(&b, ui.TitleStyle.Render("Scan report"))
	ui.PrintOption(&b, "Target", ui.URLStyle.Render(ui.SanitizeString(r.Target)))
	ui.PrintOption(&b, "Host", ui.SanitizeString(r.Host))
	ui.PrintOption(&b, "Scan ID", r.ID)
	ui.PrintOption(&b, "Duration", (time.Duration(r.DurationMS) * time.Millisecond).String())

	for _, res := range r.Results {
		fmt.Fprintln(&b, ui.SectionStyle.Render(Title(res.Category)))
		if len(res.Findings) == 0 {
			fmt.Fprintln(&b, ui.SubtitleStyle.PaddingLeft(2).Render("(none)"))
			continue
		}
		for _, f := range res.Findings {
			fmt.Fprintln(&b, styleLine(res, f))
		}
	}

	fmt.Fprintln(&b)
	summary := fmt.Sprintf("%d findings in %d categories", r.Count(), len(r.Results))
	switch {
	case r.Vulnerable():
		summary += ", " + ui.VulnerableStyle.UnsetPaddingLeft().Render("SQL injection found")
	default:
		summary += ", " + ui.CleanStyle.UnsetPaddingLeft().Render("no SQL injection found")
	}
	if failed := r.Failures(); len(failed) > 0 {
		names := make([]string, len(failed))
		for i, c := range failed {
			names[i] = string(c)
		}
		summary += ", " + ui.FailedStyle.UnsetPaddingLeft().Render("failed: "+strings.Join(names, ", "))
	}
	fmt.Fprintln(&b, summary)

	_, err := io.WriteString(w, b.String())
	return err
}

// styleLine picks the style for one finding. Finding text can carry bytes
// from the scanned host, so it is sanitized before styling.
func styleLine(res finding.Result, f finding.Finding) string {
	line := ui.SanitizeString(string(f))
	switch {
	case strings.HasPrefix(line, finding.VulnerablePrefix):
		return ui.VulnerableStyle.Render(ui.Icon("✗ ", "! ") + line)
	case line == sqli.MsgClean:
		return ui.CleanStyle.Render(ui.Icon("✓ ", "") + line)
	case res.Failed():
		return ui.FailedStyle.Render(line)
	default:
		return ui.FindingStyle.Render(line)
	}
}
