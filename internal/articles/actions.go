package articles

import (
	"fmt"
	"os"
	"strings"

	"github.com/dtnitsch/whatif/internal/common"
	"github.com/dtnitsch/whatif/models"
	"github.com/dtnitsch/whatif/pkg/archive"
	"github.com/dtnitsch/whatif/pkg/textview"
	"github.com/urfave/cli/v2"
)

func ListAction(c *cli.Context) error {
	if c.Bool("favorites") && c.Bool("unread") {
		return fmt.Errorf("cannot use both --favorites and --unread")
	}

	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	if c.Bool("watch") {
		return watch(c, env)
	}

	var list []models.Article
	switch {
	case c.Bool("favorites"):
		list, err = env.Repo.Favorites(c.Context)
	case c.Bool("unread"):
		list, err = env.Repo.Unread(c.Context)
	default:
		list, err = env.Repo.List(c.Context)
	}
	if err != nil {
		return fmt.Errorf("failed to list articles: %w", err)
	}
	return common.PrintArticles(os.Stdout, list, c.String("format"), c.String("fields"))
}

// watch reprints the full list on every database change until interrupted.
func watch(c *cli.Context, env *common.Env) error {
	for list := range env.Repo.Articles(c.Context) {
		if err := common.PrintArticles(os.Stdout, list, c.String("format"), c.String("fields")); err != nil {
			return err
		}
	}
	return nil
}

func SearchAction(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("missing search query")
	}

	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	list, err := env.Repo.Search(c.Context, query)
	if err != nil {
		return fmt.Errorf("failed to search articles: %w", err)
	}
	return common.PrintArticles(os.Stdout, list, c.String("format"), c.String("fields"))
}

// ReadAction prints an article, marking it read. The default output is the
// rendered HTML; --text prints a plain-text view with numbered footnotes.
func ReadAction(c *cli.Context) error {
	number, err := common.ArticleNumber(c)
	if err != nil {
		return err
	}

	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	loaded, err := env.Repo.LoadArticle(c.Context, number)
	if err != nil {
		if models.IsLocalIO(err) {
			fmt.Fprintf(os.Stderr, "Article %d is not downloaded. Run: whatif download %d\n", number, number)
		}
		return err
	}

	if !c.Bool("text") {
		fmt.Println(loaded.HTML)
		return nil
	}

	view, err := textview.Extract(loaded, archive.ArticleURL(env.Config.BaseURL, number))
	if err != nil {
		return err
	}
	fmt.Print(view.String())
	return nil
}

func FavoriteAction(c *cli.Context) error {
	number, err := common.ArticleNumber(c)
	if err != nil {
		return err
	}

	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	favorite := !c.Bool("off")
	if err := env.Repo.SetFavorite(c.Context, number, favorite); err != nil {
		return err
	}
	if favorite {
		fmt.Printf("Article %d added to favorites\n", number)
	} else {
		fmt.Printf("Article %d removed from favorites\n", number)
	}
	return nil
}

// MarkReadAction sets the read flag of one article, or of all with --all.
func MarkReadAction(c *cli.Context) error {
	read := !c.Bool("unread")
	all := c.Bool("all")

	var number int
	if !all {
		n, err := common.ArticleNumber(c)
		if err != nil {
			return err
		}
		number = n
	}

	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	state := "read"
	if !read {
		state = "unread"
	}

	switch {
	case all && read:
		err = env.Repo.SetAllRead(c.Context)
	case all:
		err = env.Repo.SetAllUnread(c.Context)
	default:
		err = env.Repo.SetRead(c.Context, number, read)
	}
	if err != nil {
		return err
	}

	if all {
		fmt.Printf("All articles marked %s\n", state)
	} else {
		fmt.Printf("Article %d marked %s\n", number, state)
	}
	return nil
}
