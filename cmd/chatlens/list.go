package main

import (
	"fmt"
	"os"

	"github.com/Zuo-Peng/chatlens/internal/config"
	"github.com/Zuo-Peng/chatlens/internal/index"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List indexed chats, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			chats, err := db.ListChats()
			if err != nil {
				return err
			}
			if len(chats) == 0 {
				fmt.Fprintln(os.Stderr, "No chats indexed. Run 'chatlens import' first.")
				return nil
			}

			keyW := 0
			for _, c := range chats {
				keyW = max(keyW, runewidth.StringWidth(c.ChatKey))
			}
			for _, c := range chats {
				fmt.Printf("%s  %7d msgs  %2d users  %s .. %s  %s\n",
					runewidth.FillRight(c.ChatKey, keyW),
					c.MessageCount,
					c.UserCount,
					c.FirstDate, c.LastDate,
					c.Name,
				)
			}
			return nil
		},
	}
}
