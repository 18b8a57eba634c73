package runs

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dtnitsch/whatif/internal/common"
	"github.com/dtnitsch/whatif/pkg/db"
	"github.com/urfave/cli/v2"
)

// RunsAction lists recent syncs and batch downloads.
func RunsAction(c *cli.Context) error {
	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	runs, err := env.DB.ListRuns(c.Context, c.Int("limit"))
	if err != nil {
		return err
	}
	PrintRuns(os.Stdout, runs)
	return nil
}

func PrintRuns(w io.Writer, runs []db.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found")
		return
	}

	fmt.Fprintf(w, "%-6s %-18s %-20s %-10s %-8s %-8s %-8s %s\n",
		"ID", "Kind", "Started", "Status", "Total", "Success", "Failed", "Error")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, r := range runs {
		fmt.Fprintf(w, "%-6d %-18s %-20s %-10s %-8d %-8d %-8d %s\n",
			r.RunID,
			r.Kind,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Status,
			r.TotalCount,
			r.SuccessCount,
			r.FailedCount,
			r.ErrorMessage,
		)
	}

	fmt.Fprintf(w, "\nTotal: %d runs\n", len(runs))
}
