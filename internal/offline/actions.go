package offline

import (
	"fmt"

	"github.com/dtnitsch/whatif/internal/common"
	"github.com/dtnitsch/whatif/models"
	"github.com/urfave/cli/v2"
)

// DownloadAction stores a single article and its illustrations.
func DownloadAction(c *cli.Context) error {
	number, err := common.ArticleNumber(c)
	if err != nil {
		return err
	}

	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	res := env.Repo.DownloadArticle(c.Context, number)
	switch res.Status {
	case models.StatusFailed:
		return fmt.Errorf("failed to download article %d: %w", number, res.Err)
	case models.StatusPartial:
		fmt.Printf("Article %d downloaded, %d/%d images stored\n", number, res.ImagesStored, res.ImagesTotal)
		for _, imgErr := range res.ImageErrors {
			fmt.Printf("  - %s\n", imgErr)
		}
	default:
		fmt.Printf("Article %d downloaded (%d images) to %s\n", number, res.ImagesTotal, env.Repo.Storage().ArticleDir(number))
	}
	return nil
}

// DeleteAction removes every downloaded article. The article list, favorites
// and read flags stay in the database.
func DeleteAction(c *cli.Context) error {
	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.Repo.DeleteAllOfflineArticles(); err != nil {
		return err
	}
	fmt.Printf("Deleted offline articles in %s\n", env.Repo.Storage().OfflineBase())
	return nil
}
