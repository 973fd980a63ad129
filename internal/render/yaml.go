package render

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter renders a Result as YAML, same field set as JSONFormatter.
type YAMLFormatter struct{}

func (f *YAMLFormatter) Format(w *bytes.Buffer, r *Result) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(r); err != nil {
		return err
	}
	return encoder.Close()
}

func init() {
	Register("yaml", func() Formatter { return &YAMLFormatter{} })
}

var _ Formatter = (*YAMLFormatter)(nil)
