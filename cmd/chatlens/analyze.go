package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Zuo-Peng/chatlens/internal/config"
	"github.com/Zuo-Peng/chatlens/internal/output"
	"github.com/Zuo-Peng/chatlens/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func analyzeCmd() *cobra.Command {
	var sel selection
	var format string
	var plain, quiet bool

	cmd := &cobra.Command{
		Use:   "analyze <export file | chat key>",
		Short: "Show statistics, activity, words, emoji and sentiment for a chat",
		Long: `Run every analysis over a chat. The argument is an export file or the key
of an indexed chat.

On a terminal with text output an interactive dashboard opens, with a user
picker, clipboard copy of the insights (C-y) and PDF export (C-r). Use --plain
for a static report.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			name, msgs, err := loadChat(cfg, args[0])
			if err != nil {
				return err
			}
			msgs, err = sel.apply(msgs)
			if err != nil {
				return err
			}
			a, err := newAnalyzer(cfg)
			if err != nil {
				return err
			}

			fd := int(os.Stdout.Fd())
			tty := term.IsTerminal(fd)
			if tty && !plain && !quiet && (format == "" || format == "text") {
				charts, err := newCharts(cfg)
				if err != nil {
					return err
				}
				return tui.RunDashboard(name, msgs, tui.DashboardOptions{
					Analyzer:   a,
					Charts:     charts,
					Report:     reportOptions(cfg),
					ReportPath: config.DefaultReportName,
				})
			}

			f, err := output.New(format, output.FormatOptions{
				Quiet: quiet,
				Color: tty,
				Width: terminalWidth(fd),
			})
			if err != nil {
				return err
			}
			s, err := a.Summarize(msgs, sel.user)
			if err != nil {
				return err
			}
			return f.Format(context.Background(), s, os.Stdout)
		},
	}

	sel.register(cmd)
	cmd.Flags().StringVarP(&format, "output", "o", "text", fmt.Sprintf("Output format %v", output.Formats))
	cmd.Flags().BoolVar(&plain, "plain", false, "Print the text report instead of opening the dashboard")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only statistics and insights")

	return cmd
}

// terminalWidth is the width of fd, or 0 when it is not a terminal.
func terminalWidth(fd int) int {
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}
