package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Zuo-Peng/chatlens/internal/analyze"
	"github.com/Zuo-Peng/chatlens/internal/chart"
	"github.com/Zuo-Peng/chatlens/internal/config"
	"github.com/Zuo-Peng/chatlens/internal/filter"
	"github.com/Zuo-Peng/chatlens/internal/index"
	"github.com/Zuo-Peng/chatlens/internal/parse"
	"github.com/Zuo-Peng/chatlens/internal/report"
	"github.com/Zuo-Peng/chatlens/internal/scan"
	"github.com/Zuo-Peng/chatlens/internal/sentiment"
	"github.com/Zuo-Peng/chatlens/internal/stopwords"
	"github.com/spf13/cobra"
)

// selection holds the --user/--from/--to flags of analyze and report.
type selection struct {
	user string
	from string
	to   string
}

func (s *selection) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.user, "user", parse.Overall, "User to analyze ("+parse.Overall+" = everyone)")
	cmd.Flags().StringVar(&s.from, "from", "", "First day to include (YYYY-MM-DD, default first day of the chat)")
	cmd.Flags().StringVar(&s.to, "to", "", "Last day to include (YYYY-MM-DD, default last day of the chat)")
}

// apply narrows msgs to the requested days, bounded by the chat's own range.
func (s *selection) apply(msgs []parse.Message) ([]parse.Message, error) {
	var from, to time.Time
	var err error
	if s.from != "" {
		if from, err = time.Parse("2006-01-02", s.from); err != nil {
			return nil, fmt.Errorf("invalid --from %q (want YYYY-MM-DD)", s.from)
		}
	}
	if s.to != "" {
		if to, err = time.Parse("2006-01-02", s.to); err != nil {
			return nil, fmt.Errorf("invalid --to %q (want YYYY-MM-DD)", s.to)
		}
	}
	from, to, err = filter.Clamp(msgs, from, to)
	if err != nil {
		return nil, err
	}
	return filter.ByDateRange(msgs, from, to), nil
}

func newAnalyzer(cfg *config.Config) (*analyze.Analyzer, error) {
	stop, err := stopwords.Load(cfg.StopWords)
	if err != nil {
		return nil, err
	}
	scorer, err := sentiment.Load(cfg.Lexicon)
	if err != nil {
		return nil, err
	}
	return analyze.New(analyze.Options{
		StopWords:        stop,
		Scorer:           scorer,
		MediaPlaceholder: cfg.MediaPlaceholder,
		TopWords:         cfg.TopWords,
	}), nil
}

func newCharts(cfg *config.Config) (*chart.Renderer, error) {
	return chart.NewRenderer(cfg.ChartFont)
}

func reportOptions(cfg *config.Config) report.Options {
	return report.Options{FontPath: cfg.ChartFont}
}

// loadChat resolves arg as an export file on disk or, failing that, as an
// indexed chat key.
func loadChat(cfg *config.Config, arg string) (string, []parse.Message, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		msgs, err := parse.ParseFile(arg)
		if err != nil {
			return "", nil, err
		}
		return scan.ChatName(arg), msgs, nil
	}

	db, err := index.OpenDB(cfg.DBPath)
	if err != nil {
		return "", nil, fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	chat, err := db.GetChat(arg)
	if err != nil {
		return "", nil, fmt.Errorf("get chat: %w", err)
	}
	if chat == nil {
		return "", nil, fmt.Errorf("no export file or indexed chat named %q (see 'chatlens list')", arg)
	}
	msgs, err := db.LoadMessages(chat.ChatKey)
	if err != nil {
		return "", nil, fmt.Errorf("load messages: %w", err)
	}
	return chat.Name, msgs, nil
}

// describe turns the typed errors into messages for the terminal.
func describe(err error) string {
	var pe *parse.ParseError
	switch {
	case errors.Is(err, parse.ErrNoHeaders):
		return "not a chat export: no \"D/M/YY, H:MM AM - \" timestamp lines found"
	case errors.As(err, &pe):
		return fmt.Sprintf("not a valid chat export: %v", pe)
	case errors.Is(err, analyze.ErrEmpty), errors.Is(err, filter.ErrNoMessages):
		return "no messages match the selected user and date range"
	}
	return err.Error()
}
