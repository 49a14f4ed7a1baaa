package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/favilink/favilink/internal/model"
)

// setupTestLog creates a temporary resolution log for testing.
func setupTestLog(t *testing.T) *ResolutionLog {
	t.Helper()

	rl, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open resolution log: %v", err)
	}
	t.Cleanup(func() { _ = rl.Close() })
	return rl
}

func sampleResolution(hostname, tier string) *model.Resolution {
	return &model.Resolution{
		Hostname:  hostname,
		Key:       "/static/images/external-favicons/" + hostname + ".png",
		Tier:      tier,
		Value:     "https://cdn/" + hostname + ".svg",
		Duration:  42 * time.Millisecond,
		Timestamp: time.Now(),
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		rl, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open: %v", err)
		}
		defer rl.Close()

		if _, err := os.Stat(filepath.Join(dbDir, "favilink.db")); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
	})

	t.Run("CreateIfNotExists=false requires an existing database", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
		if err == nil {
			t.Error("expected error for missing database")
		}
	})
}

func TestRecord(t *testing.T) {
	t.Parallel()

	t.Run("round-trips a resolution", func(t *testing.T) {
		t.Parallel()

		rl := setupTestLog(t)
		ctx := context.Background()

		if err := rl.Record(ctx, sampleResolution("golang.org", model.TierCDNSVG)); err != nil {
			t.Fatalf("failed to record: %v", err)
		}

		got, err := rl.GetResolution(ctx, "golang.org")
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if got == nil {
			t.Fatal("resolution not found")
		}
		if got.Tier != model.TierCDNSVG {
			t.Errorf("tier = %q", got.Tier)
		}
		if got.Duration != 42*time.Millisecond {
			t.Errorf("duration = %v", got.Duration)
		}
		if got.Timestamp.IsZero() {
			t.Error("timestamp not parsed")
		}
	})

	t.Run("re-recording a hostname updates in place", func(t *testing.T) {
		t.Parallel()

		rl := setupTestLog(t)
		ctx := context.Background()

		if err := rl.Record(ctx, sampleResolution("golang.org", model.TierDownload)); err != nil {
			t.Fatalf("failed to record: %v", err)
		}
		if err := rl.Record(ctx, sampleResolution("golang.org", model.TierCache)); err != nil {
			t.Fatalf("failed to re-record: %v", err)
		}

		all, err := rl.ListResolutions(ctx, "")
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(all) != 1 {
			t.Fatalf("rows = %d, want 1", len(all))
		}
		if all[0].Tier != model.TierCache {
			t.Errorf("tier = %q, want updated value", all[0].Tier)
		}
	})

	t.Run("unknown hostname yields nil without error", func(t *testing.T) {
		t.Parallel()

		rl := setupTestLog(t)
		got, err := rl.GetResolution(context.Background(), "nowhere.test")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Errorf("got = %+v, want nil", got)
		}
	})
}

func TestListResolutions(t *testing.T) {
	t.Parallel()

	t.Run("tier filter narrows the result", func(t *testing.T) {
		t.Parallel()

		rl := setupTestLog(t)
		ctx := context.Background()
		for _, r := range []*model.Resolution{
			sampleResolution("a.org", model.TierCDNSVG),
			sampleResolution("b.org", model.TierFailed),
			sampleResolution("c.org", model.TierCDNSVG),
		} {
			if err := rl.Record(ctx, r); err != nil {
				t.Fatalf("failed to record: %v", err)
			}
		}

		got, err := rl.ListResolutions(ctx, model.TierCDNSVG)
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("rows = %d, want 2", len(got))
		}
	})
}

func TestCountByTier(t *testing.T) {
	t.Parallel()

	t.Run("groups hostnames by deciding tier", func(t *testing.T) {
		t.Parallel()

		rl := setupTestLog(t)
		ctx := context.Background()
		for _, r := range []*model.Resolution{
			sampleResolution("a.org", model.TierCDNSVG),
			sampleResolution("b.org", model.TierCDNSVG),
			sampleResolution("c.org", model.TierFailed),
		} {
			if err := rl.Record(ctx, r); err != nil {
				t.Fatalf("failed to record: %v", err)
			}
		}

		counts, err := rl.CountByTier(ctx)
		if err != nil {
			t.Fatalf("failed to count: %v", err)
		}
		if counts[model.TierCDNSVG] != 2 || counts[model.TierFailed] != 1 {
			t.Errorf("counts = %v", counts)
		}
	})
}

func TestRecentFailures(t *testing.T) {
	t.Parallel()

	t.Run("returns only failures inside the window", func(t *testing.T) {
		t.Parallel()

		rl := setupTestLog(t)
		ctx := context.Background()
		if err := rl.Record(ctx, sampleResolution("dead.org", model.TierFailed)); err != nil {
			t.Fatalf("failed to record: %v", err)
		}
		if err := rl.Record(ctx, sampleResolution("fine.org", model.TierCache)); err != nil {
			t.Fatalf("failed to record: %v", err)
		}

		got, err := rl.RecentFailures(ctx, time.Hour)
		if err != nil {
			t.Fatalf("failed to query: %v", err)
		}
		if len(got) != 1 || got[0].Hostname != "dead.org" {
			t.Errorf("failures = %+v", got)
		}
	})
}
