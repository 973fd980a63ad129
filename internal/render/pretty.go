package render

import (
	"bytes"
	"fmt"
	"strings"
)

// PrettyFormatter renders a colorized, boxed summary of a Result for
// interactive terminals.
type PrettyFormatter struct{}

func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")
	w.WriteString(f.formatChanges(r))
	w.WriteString(f.formatFooter(r))
	return nil
}

func (f *PrettyFormatter) formatHeader(r *Result) string {
	lines := []string{
		fmt.Sprintf("%s %s", LabelStyle.Render("Root:"), ValueStyle.Render(r.Root)),
		fmt.Sprintf("%s %s  %s %s",
			LabelStyle.Render("Command:"), ValueStyle.Render(r.Command),
			LabelStyle.Render("Policy:"), ValueStyle.Render(r.Policy)),
	}
	return HeaderBox.Render(strings.Join(lines, "\n"))
}

func (f *PrettyFormatter) formatChanges(r *Result) string {
	if len(r.Changes) == 0 {
		return LabelStyle.Render("  no changes\n")
	}

	var sb strings.Builder
	for _, c := range r.Changes {
		style := styleForKind(c.Kind)
		code := style.Render(padRight(kindCode(c.Kind), 2))
		sb.WriteString(fmt.Sprintf("  %s %s\n", code, PathStyle.Render(c.Path)))
	}
	return sb.String()
}

func (f *PrettyFormatter) formatFooter(r *Result) string {
	parts := []string{
		fmt.Sprintf("%s %s", LabelStyle.Render("Changes:"), ValueStyle.Render(fmt.Sprintf("%d", len(r.Changes)))),
		fmt.Sprintf("%s %s", LabelStyle.Render("Fingerprint:"), ValueStyle.Render(r.Fingerprint)),
	}
	if len(r.Directories) > 0 {
		written := 0
		for _, d := range r.Directories {
			if d.Outcome == "written" {
				written++
			}
		}
		parts = append(parts, fmt.Sprintf("%s %s",
			LabelStyle.Render("Manifests written:"), ValueStyle.Render(fmt.Sprintf("%d/%d", written, len(r.Directories)))))
	}
	return FooterBox.Render(strings.Join(parts, "  "))
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func init() {
	Register("pretty", func() Formatter { return &PrettyFormatter{} })
}

var _ Formatter = (*PrettyFormatter)(nil)
