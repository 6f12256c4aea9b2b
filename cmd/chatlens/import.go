package main

import (
	"fmt"
	"os"

	"github.com/Zuo-Peng/chatlens/internal/config"
	"github.com/Zuo-Peng/chatlens/internal/index"
	"github.com/Zuo-Peng/chatlens/internal/scan"
	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [paths or globs...]",
		Short: "Parse chat exports and store them in the index",
		Long: `Parse chat exports and store them in the index.

Without arguments the export root is scanned for **/*.txt; chats whose files
disappeared from it are removed. Unchanged files (same mtime and size) are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			var stats index.Stats
			if len(args) == 0 {
				fmt.Fprintf(os.Stderr, "Scanning %s...\n", cfg.ExportRoot)
				stats, err = index.ImportAll(db, cfg.ExportRoot)
				if err != nil {
					return fmt.Errorf("import: %w", err)
				}
			} else {
				files, err := scan.Expand(args)
				if err != nil {
					return err
				}
				if len(files) == 0 {
					return fmt.Errorf("no files match %v", args)
				}
				stats = index.ImportFiles(db, files)
			}

			fmt.Fprintf(os.Stderr, "Done. %s\n", stats)
			return nil
		},
	}
}
