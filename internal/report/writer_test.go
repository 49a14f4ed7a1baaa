package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/favilink/favilink/internal/model"
)

func sampleReport() *model.UsageReport {
	return &model.UsageReport{
		SiteDir:     "/site",
		GeneratedAt: time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC),
		Entries: []model.UsageEntry{
			{Key: "/icons/often_com", Value: "https://cdn/often_com.svg", Count: 9, Included: true},
			{Key: "/icons/rare_org", Value: "/icons/rare_org.png", Count: 1, Included: false},
			{Key: "/icons/dead_net", Value: "", Count: 7, Included: false},
		},
		TierCounts: map[string]int{"cdn_svg": 1, "failed": 1},
	}
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("shows only included favicons by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(sampleReport()); err != nil {
			t.Fatalf("failed to write: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "/icons/often_com") {
			t.Errorf("included favicon missing: %s", out)
		}
		if strings.Contains(out, "/icons/rare_org") {
			t.Errorf("gated-out favicon shown without verbose: %s", out)
		}
		if !strings.Contains(out, "Shown after gating:     1") {
			t.Errorf("summary counts wrong: %s", out)
		}
	})

	t.Run("verbose marks gated-out favicons", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(sampleReport()); err != nil {
			t.Fatalf("failed to write: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "-     1  /icons/rare_org") {
			t.Errorf("gated-out marker missing: %s", out)
		}
	})

	t.Run("tier breakdown appears when present", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(sampleReport()); err != nil {
			t.Fatalf("failed to write: %v", err)
		}
		if !strings.Contains(buf.String(), "cdn_svg") {
			t.Errorf("tier breakdown missing: %s", buf.String())
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("renders header, usage table, and tier section", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(sampleReport()); err != nil {
			t.Fatalf("failed to write: %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"# Favicon Usage Report",
			"## Usage",
			"`/icons/often_com`",
			"(unresolved)",
			"## Resolution Tiers",
			"Cdn Svg",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("tier section omitted without tier counts", func(t *testing.T) {
		t.Parallel()

		r := sampleReport()
		r.TierCounts = nil

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(r); err != nil {
			t.Fatalf("failed to write: %v", err)
		}
		if strings.Contains(buf.String(), "Resolution Tiers") {
			t.Error("tier section present without tier counts")
		}
	})
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to every destination", func(t *testing.T) {
		t.Parallel()

		var a, b bytes.Buffer
		mw := NewMultiWriter(NewSimpleWriter(&a), NewSimpleWriter(&b))
		if _, err := mw.Write(sampleReport()); err != nil {
			t.Fatalf("failed to write: %v", err)
		}
		if a.Len() == 0 || b.Len() == 0 {
			t.Error("one destination received nothing")
		}
	})
}
