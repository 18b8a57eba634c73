package common

import (
	"fmt"
	"io"
	"strings"

	"github.com/dtnitsch/whatif/models"
	"github.com/dtnitsch/whatif/pkg/batch"
)

// ShowProgress prints each event as "completed/total" on a single line of w
// and clears the line once the stream closes. It returns the last event.
func ShowProgress(w io.Writer, progress <-chan models.Progress) models.Progress {
	width := 0
	last := batch.Collect(progress, func(p models.Progress) {
		s := p.String()
		if len(s) > width {
			width = len(s)
		}
		fmt.Fprintf(w, "\r%s", s)
	})
	if width > 0 {
		fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", width))
	}
	return last
}

// Summary describes a finished batch in one line.
func Summary(what string, p models.Progress) string {
	if p.Total == 0 {
		return fmt.Sprintf("No %s to download", what)
	}
	if p.Failed > 0 {
		return fmt.Sprintf("Downloaded %d/%d %s (%d failed)", p.Completed-p.Failed, p.Total, what, p.Failed)
	}
	return fmt.Sprintf("Downloaded %d/%d %s", p.Completed, p.Total, what)
}
