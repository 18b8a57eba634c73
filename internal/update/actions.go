package update

import (
	"fmt"
	"os"

	"github.com/dtnitsch/whatif/internal/common"
	"github.com/dtnitsch/whatif/models"
	"github.com/urfave/cli/v2"
)

// SyncAction pulls new entries from the archive index into the database.
func SyncAction(c *cli.Context) error {
	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	res := env.Repo.UpdateDatabase(c.Context)
	if res.Status == models.StatusFailed {
		env.Logger.Error("Sync failed", "error", res.Err)
		return fmt.Errorf("sync failed: %w", res.Err)
	}

	fmt.Printf("Sync %s: %d known, %d listed, %d new\n", res.Status, res.Known, res.Listed, len(res.Inserted))
	for _, f := range res.Fetches {
		if f.Status != models.StatusSuccess {
			fmt.Printf("  #%d %s (%d/%d images)\n", f.Number, f.Status, f.ImagesStored, f.ImagesTotal)
		}
	}
	return nil
}

// DownloadAllAction syncs, then stores every article for offline reading.
func DownloadAllAction(c *cli.Context) error {
	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	last := common.ShowProgress(os.Stderr, env.Repo.DownloadAllArticles(c.Context))
	fmt.Println(common.Summary("articles", last))
	if err := c.Context.Err(); err != nil {
		return fmt.Errorf("download interrupted: %w", err)
	}
	return nil
}

// DownloadOverviewAction stores the archive thumbnails.
func DownloadOverviewAction(c *cli.Context) error {
	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	last := common.ShowProgress(os.Stderr, env.Repo.DownloadArchiveImages(c.Context))
	fmt.Println(common.Summary("overview images", last))
	if err := c.Context.Err(); err != nil {
		return fmt.Errorf("download interrupted: %w", err)
	}
	return nil
}
