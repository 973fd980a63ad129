package render

import (
	"bytes"
	"fmt"
	"text/tabwriter"
)

// PlainFormatter renders a simple change list in space-aligned columns, one
// line per change, suitable for scripting and piping. No colors, no box
// drawing.
type PlainFormatter struct{}

func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	fmt.Fprintf(w, "root: %s\n", r.Root)
	fmt.Fprintf(w, "policy: %s\n", r.Policy)
	fmt.Fprintf(w, "fingerprint: %s\n", r.Fingerprint)

	if len(r.Changes) == 0 {
		w.WriteString("no changes\n")
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
		fmt.Fprintln(tw, "CODE\tKIND\tPATH")
		for _, c := range r.Changes {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", kindCode(c.Kind), c.Kind, c.Path)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	for _, d := range r.Directories {
		fmt.Fprintf(w, "%s: %s\n", d.Dir, d.Outcome)
	}
	return nil
}

func init() {
	Register("plain", func() Formatter { return &PlainFormatter{} })
}

var _ Formatter = (*PlainFormatter)(nil)
