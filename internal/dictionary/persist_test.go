package dictionary

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dict.tsv")

	d := New([]string{"join"}, DefaultRuleset())
	d.Observe("function")
	d.Observe("function")

	if err := Save(path, d); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read saved dictionary: %v", err)
	}
	if !strings.HasPrefix(string(contents), dictHeader+"\n") {
		t.Fatalf("missing header line: %q", contents)
	}
	if !strings.Contains(string(contents), "function\t2\t") {
		t.Fatalf("missing learned entry: %q", contents)
	}

	loaded := New([]string{"join"}, DefaultRuleset())
	result, err := Load(path, loaded)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if result.LoadedEntries != 1 {
		t.Fatalf("expected 1 loaded entry, got %d", result.LoadedEntries)
	}
	if !loaded.Contains("function") {
		t.Fatalf("expected loaded dictionary to contain function")
	}
}

func TestLoadIgnoresCorruptLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dict.tsv")

	contents := dictHeader + "\n" +
		"good\t2\t0.7\n" +
		"badline-missing-fields\n" +
		"negative\t-1\t0.9\n" +
		"alsogood\t3\t0.8\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	d := New(nil, DefaultRuleset())
	result, err := Load(path, d)
	if err != nil {
		t.Fatalf("Load should not error on a partially corrupt file: %v", err)
	}
	if result.LoadedEntries != 2 {
		t.Fatalf("expected 2 valid entries loaded, got %d", result.LoadedEntries)
	}
	if result.IgnoredLines != 2 {
		t.Fatalf("expected 2 ignored lines, got %d", result.IgnoredLines)
	}
	if !d.Contains("good") || !d.Contains("alsogood") {
		t.Fatalf("expected valid entries to load")
	}
	if d.Contains("negative") {
		t.Fatalf("entry with negative count must be rejected")
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	d := New(nil, DefaultRuleset())
	result, err := Load(filepath.Join(t.TempDir(), "missing.tsv"), d)
	if err != nil {
		t.Fatalf("missing dictionary file should not error: %v", err)
	}
	if result.LoadedEntries != 0 {
		t.Fatalf("expected no entries loaded")
	}
}
