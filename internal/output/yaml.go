package output

import (
	"context"
	"io"

	"github.com/Zuo-Peng/chatlens/internal/analyze"
	"gopkg.in/yaml.v3"
)

// YAMLFormatter formats summaries as YAML.
type YAMLFormatter struct {
	opts FormatOptions
}

// NewYAMLFormatter creates a new YAML formatter with the given options.
func NewYAMLFormatter(opts FormatOptions) *YAMLFormatter {
	return &YAMLFormatter{opts: opts}
}

// Name returns the format name.
func (f *YAMLFormatter) Name() string {
	return "yaml"
}

// Format renders the summary as YAML.
func (f *YAMLFormatter) Format(ctx context.Context, s *analyze.Summary, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if f.opts.Quiet {
		return encoder.Encode(briefOf(s))
	}
	return encoder.Encode(s)
}
