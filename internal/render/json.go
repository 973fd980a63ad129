package render

import (
	"bytes"
	"encoding/json"
)

// JSONFormatter renders a Result as a single indented JSON document.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

func init() {
	Register("json", func() Formatter { return &JSONFormatter{} })
}

var _ Formatter = (*JSONFormatter)(nil)
