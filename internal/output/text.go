package output

import (
	"context"
	"fmt"
	"io"

	"github.com/Zuo-Peng/chatlens/internal/analyze"
	"github.com/Zuo-Peng/chatlens/internal/render"
)

// TextFormatter formats summaries as terminal text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the summary as text.
func (f *TextFormatter) Format(ctx context.Context, s *analyze.Summary, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(s, w)
	}
	_, err := io.WriteString(w, render.Summary(s, render.SummaryOptions{Width: f.opts.Width, Color: f.opts.Color}))
	return err
}

func (f *TextFormatter) formatQuiet(s *analyze.Summary, w io.Writer) error {
	fmt.Fprintf(w, "%s: %d messages, %d words, %d media, %d links (%s to %s)\n",
		s.User, s.Stats.Messages, s.Stats.Words, s.Stats.Media, s.Stats.Links, s.From, s.To)
	for _, l := range s.Insights.Lines() {
		if _, err := fmt.Fprintf(w, "  * %s\n", l); err != nil {
			return err
		}
	}
	return nil
}
