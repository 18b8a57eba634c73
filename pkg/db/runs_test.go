package db

import (
	"context"
	"errors"
	"testing"

	"github.com/dtnitsch/whatif/models"
)

func TestRuns(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	first, err := db.StartRun(ctx, RunSync)
	if err != nil {
		t.Fatalf("StartRun() error = %v", err)
	}
	if err := db.FinishRun(ctx, first, models.StatusFailed, 0, 0, 0, errors.New("archive unreachable")); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}

	second, err := db.StartRun(ctx, RunDownloadAll)
	if err != nil {
		t.Fatalf("StartRun() error = %v", err)
	}
	if err := db.FinishRun(ctx, second, models.StatusPartial, 10, 9, 1, nil); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}

	runs, err := db.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("ListRuns() returned %d runs, want 2", len(runs))
	}

	latest := runs[0]
	if latest.RunID != second || latest.Kind != RunDownloadAll {
		t.Errorf("latest run = %+v, want id %d kind %s", latest, second, RunDownloadAll)
	}
	if latest.TotalCount != 10 || latest.SuccessCount != 9 || latest.FailedCount != 1 {
		t.Errorf("latest counts = %d/%d/%d, want 10/9/1", latest.TotalCount, latest.SuccessCount, latest.FailedCount)
	}
	if latest.FinishedAt == nil {
		t.Error("latest.FinishedAt is nil")
	}
	if runs[1].ErrorMessage != "archive unreachable" {
		t.Errorf("runs[1].ErrorMessage = %q", runs[1].ErrorMessage)
	}
}
