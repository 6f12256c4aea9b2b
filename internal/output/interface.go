// Package output writes chat summaries for the analyze command.
package output

import (
	"context"
	"fmt"
	"io"

	"github.com/Zuo-Peng/chatlens/internal/analyze"
)

// Formatter renders a summary in a specific format.
type Formatter interface {
	// Format renders the summary to the given writer.
	Format(ctx context.Context, s *analyze.Summary, w io.Writer) error

	// Name returns the format name (text, json, yaml).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Quiet limits output to the statistics and insights.
	Quiet bool

	// Color enables ANSI styling in text output.
	Color bool

	// Width is the text output width; 0 uses the default.
	Width int
}

// Formats lists the accepted format names.
var Formats = []string{"text", "json", "yaml"}

// New returns the formatter called name.
func New(name string, opts FormatOptions) (Formatter, error) {
	switch name {
	case "text", "":
		return NewTextFormatter(opts), nil
	case "json":
		return NewJSONFormatter(opts), nil
	case "yaml", "yml":
		return NewYAMLFormatter(opts), nil
	}
	return nil, fmt.Errorf("unknown output format %q (want text, json or yaml)", name)
}

// brief is the quiet-mode payload of the structured formats.
type brief struct {
	User     string           `json:"user" yaml:"user"`
	From     string           `json:"from" yaml:"from"`
	To       string           `json:"to" yaml:"to"`
	Stats    analyze.Stats    `json:"stats" yaml:"stats"`
	Insights analyze.Insights `json:"insights" yaml:"insights"`
}

func briefOf(s *analyze.Summary) brief {
	return brief{User: s.User, From: s.From, To: s.To, Stats: s.Stats, Insights: s.Insights}
}
