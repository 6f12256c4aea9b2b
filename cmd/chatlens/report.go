package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Zuo-Peng/chatlens/internal/config"
	"github.com/Zuo-Peng/chatlens/internal/report"
	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	var sel selection
	var out, chartsDir string

	cmd := &cobra.Command{
		Use:   "report <export file | chat key>",
		Short: "Write the PDF analysis report for a chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			_, msgs, err := loadChat(cfg, args[0])
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
			s, err := a.Summarize(msgs, sel.user)
			if err != nil {
				return err
			}

			charts, err := newCharts(cfg)
			if err != nil {
				return err
			}
			images, err := charts.All(s)
			if err != nil {
				return fmt.Errorf("render charts: %w", err)
			}

			if chartsDir != "" {
				if err := os.MkdirAll(chartsDir, 0o755); err != nil {
					return err
				}
				for _, img := range images {
					path := filepath.Join(chartsDir, img.Name+".png")
					if err := os.WriteFile(path, img.PNG, 0o644); err != nil {
						return fmt.Errorf("write chart: %w", err)
					}
				}
				fmt.Fprintf(os.Stderr, "Wrote %d charts to %s\n", len(images), chartsDir)
			}

			if err := report.WriteFile(out, s, images, reportOptions(cfg)); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Report written to %s\n", out)
			return nil
		},
	}

	sel.register(cmd)
	cmd.Flags().StringVar(&out, "out", config.DefaultReportName, "PDF output path")
	cmd.Flags().StringVar(&chartsDir, "charts-dir", "", "Also write every chart as a PNG into this directory")

	return cmd
}
