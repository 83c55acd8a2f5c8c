package main

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/anthropics/kodex/internal/store"
)

func withTestDataDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	prevData, prevDocs, prevLogger := flagDataDir, flagDocumentsDir, rootLogger
	flagDataDir = dir
	flagDocumentsDir = filepath.Join(dir, "Documents")
	rootLogger = zap.NewNop()
	t.Cleanup(func() {
		flagDataDir, flagDocumentsDir, rootLogger = prevData, prevDocs, prevLogger
	})
}

func TestAddListRemoveRoundTrip(t *testing.T) {
	withTestDataDir(t)

	if rc := run([]string{"add", "--name", "btw", "--replacement", "by the way"}); rc != 0 {
		t.Fatalf("add exit code = %d", rc)
	}

	s, err := openStore()
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	rows, err := s.ListHotstrings(0, false)
	if err != nil {
		t.Fatalf("ListHotstrings: %v", err)
	}
	s.Close()
	if len(rows) != 1 || rows[0].Name != "btw" {
		t.Fatalf("rows = %+v", rows)
	}

	if rc := run([]string{"remove", "--id", "1"}); rc != 0 {
		t.Fatalf("remove exit code = %d", rc)
	}

	s, err = openStore()
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	rows, err = s.ListHotstrings(0, false)
	s.Close()
	if err != nil {
		t.Fatalf("ListHotstrings: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected hotstring removed, got %+v", rows)
	}
}

func TestAddRequiresNameAndReplacement(t *testing.T) {
	withTestDataDir(t)
	if rc := run([]string{"add"}); rc == 0 {
		t.Fatal("expected non-zero exit for missing required flags")
	}
}

func TestBundleCreateToggleDelete(t *testing.T) {
	withTestDataDir(t)

	if rc := run([]string{"bundle-create", "scratch"}); rc != 0 {
		t.Fatalf("bundle-create exit code = %d", rc)
	}
	if rc := run([]string{"bundle-toggle", "scratch", "--enabled=false"}); rc != 0 {
		t.Fatalf("bundle-toggle exit code = %d", rc)
	}

	s, err := openStore()
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	b, err := s.GetBundleByName("scratch")
	s.Close()
	if err != nil {
		t.Fatalf("GetBundleByName: %v", err)
	}
	if b.Enabled {
		t.Fatal("expected bundle disabled after toggle")
	}

	if rc := run([]string{"bundle-delete", "scratch"}); rc != 0 {
		t.Fatalf("bundle-delete exit code = %d", rc)
	}
}

func TestMigrateReturnsUsageError(t *testing.T) {
	withTestDataDir(t)
	if rc := run([]string{"migrate"}); rc == 0 {
		t.Fatal("expected migrate to fail, it is not implemented")
	}
}

func TestStatsReportsZeroedCountersOnFreshStore(t *testing.T) {
	withTestDataDir(t)
	if rc := run([]string{"stats"}); rc != 0 {
		t.Fatalf("stats exit code = %d", rc)
	}
}

func TestExportThenImportBundleRoundTrips(t *testing.T) {
	withTestDataDir(t)

	if rc := run([]string{"add", "--name", "omw", "--replacement", "on my way"}); rc != 0 {
		t.Fatalf("add exit code = %d", rc)
	}

	out := filepath.Join(flagDataDir, "default.kodex")
	if rc := run([]string{"export-bundle", store.DefaultBundleName, "--out", out}); rc != 0 {
		t.Fatalf("export-bundle exit code = %d", rc)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("expected export file: %v", err)
	}

	if rc := run([]string{"import-bundle", out, "--bundle", "imported"}); rc != 0 {
		t.Fatalf("import-bundle exit code = %d", rc)
	}

	s, err := openStore()
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	b, err := s.GetBundleByName("imported")
	if err != nil {
		t.Fatalf("GetBundleByName: %v", err)
	}
	rows, err := s.ListHotstrings(b.ID, false)
	s.Close()
	if err != nil {
		t.Fatalf("ListHotstrings: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "omw" {
		t.Fatalf("rows = %+v", rows)
	}
}
