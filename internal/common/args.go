package common

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"
)

// ArticleNumber parses the first positional argument as an article number.
func ArticleNumber(c *cli.Context) (int, error) {
	if c.NArg() == 0 {
		return 0, fmt.Errorf("missing article number")
	}
	n, err := strconv.Atoi(c.Args().First())
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid article number: %s", c.Args().First())
	}
	return n, nil
}
