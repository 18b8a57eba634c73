package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dtnitsch/whatif/internal/articles"
	"github.com/dtnitsch/whatif/internal/common"
	"github.com/dtnitsch/whatif/internal/offline"
	"github.com/dtnitsch/whatif/internal/runs"
	"github.com/dtnitsch/whatif/internal/update"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		stop()
		os.Exit(1)
	}
}

func newApp() *cli.App {
	listFlags := []cli.Flag{
		&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: common.FormatTable, Usage: "Output format: table, json or yaml"},
		&cli.StringFlag{Name: "fields", Usage: "Comma separated fields for json/yaml output (e.g. number,title)"},
	}

	return &cli.App{
		Name:  "whatif",
		Usage: "Sync, read and download what if? articles for offline reading",
		Flags: common.GlobalFlags(),
		Commands: []*cli.Command{
			{
				Name:   "sync",
				Usage:  "Add new articles from the archive index",
				Action: update.SyncAction,
			},
			{
				Name:  "list",
				Usage: "List known articles",
				Flags: append([]cli.Flag{
					&cli.BoolFlag{Name: "favorites", Usage: "Only favorites"},
					&cli.BoolFlag{Name: "unread", Usage: "Only unread articles"},
					&cli.BoolFlag{Name: "watch", Usage: "Reprint the list on every change until interrupted"},
				}, listFlags...),
				Action: articles.ListAction,
			},
			{
				Name:      "search",
				Usage:     "Search article titles",
				ArgsUsage: "<query>",
				Flags:     listFlags,
				Action:    articles.SearchAction,
			},
			{
				Name:      "read",
				Usage:     "Print an article and mark it read",
				ArgsUsage: "<number>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "text", Aliases: []string{"t"}, Usage: "Plain text instead of HTML"},
				},
				Action: articles.ReadAction,
			},
			{
				Name:      "favorite",
				Usage:     "Add an article to favorites",
				ArgsUsage: "<number>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "off", Usage: "Remove from favorites instead"},
				},
				Action: articles.FavoriteAction,
			},
			{
				Name:      "mark-read",
				Usage:     "Mark an article, or every article, read",
				ArgsUsage: "<number>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "unread", Usage: "Mark unread instead"},
					&cli.BoolFlag{Name: "all", Usage: "Apply to every article"},
				},
				Action: articles.MarkReadAction,
			},
			{
				Name:      "download",
				Usage:     "Download one article for offline reading",
				ArgsUsage: "<number>",
				Action:    offline.DownloadAction,
			},
			{
				Name:   "download-all",
				Usage:  "Sync, then download every article for offline reading",
				Action: update.DownloadAllAction,
			},
			{
				Name:   "download-overview",
				Usage:  "Download the archive thumbnails",
				Action: update.DownloadOverviewAction,
			},
			{
				Name:   "delete-offline",
				Usage:  "Delete every downloaded article (favorites and read flags are kept)",
				Action: offline.DeleteAction,
			},
			{
				Name:  "runs",
				Usage: "List recent syncs and downloads",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "Number of runs to show"},
				},
				Action: runs.RunsAction,
			},
		},
	}
}
