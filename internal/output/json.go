package output

import (
	"context"
	"encoding/json"
	"io"

	"github.com/Zuo-Peng/chatlens/internal/analyze"
)

// JSONFormatter formats summaries as JSON.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a new JSON formatter with the given options.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Format renders the summary as JSON.
func (f *JSONFormatter) Format(ctx context.Context, s *analyze.Summary, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if f.opts.Quiet {
		return encoder.Encode(briefOf(s))
	}
	return encoder.Encode(s)
}
