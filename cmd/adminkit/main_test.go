package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"adminkit/internal/config"
	"adminkit/internal/store"
	"adminkit/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

type noopProgram struct {
	err error
}

func (p noopProgram) Run() (tea.Model, error) { return nil, p.err }

func TestParseFlagsOnlyOverridesExplicitFlags(t *testing.T) {
	t.Cleanup(config.ResetForTesting(t))

	opts, err := parseFlags([]string{"--store", "memory", "--auto-refresh-seconds=-5"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseFlags returned error: %v", err)
	}
	if len(opts.overrides) != 2 {
		t.Fatalf("expected 2 overrides, got %v", opts.overrides)
	}
	if got := opts.overrides[config.KeyStoreDriver]; got != "memory" {
		t.Fatalf("expected store override, got %v", got)
	}
	if got := opts.overrides[config.KeyAutoRefreshSeconds]; got != 0 {
		t.Fatalf("expected negative refresh to clamp to 0, got %v", got)
	}
	if _, ok := opts.overrides[config.KeyOutputFormat]; ok {
		t.Fatal("unset flags must not override config")
	}
}

func TestParseFlagsRejectsUnknown(t *testing.T) {
	t.Cleanup(config.ResetForTesting(t))
	if _, err := parseFlags([]string{"--nope"}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected unknown flag to fail")
	}
}

func TestRunPrintsVersion(t *testing.T) {
	t.Cleanup(config.ResetForTesting(t))
	var out bytes.Buffer
	if err := run([]string{"--version"}, &out); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if !strings.HasPrefix(out.String(), "adminkit version ") {
		t.Fatalf("unexpected version output: %q", out.String())
	}
}

func memorySettings() config.Settings {
	return config.Settings{
		StoreDriver:    store.DriverMemory,
		Collections:    []string{"posts"},
		OutputFormat:   "plain",
		SuccessMessage: "Deleted.",
		ToastTTL:       time.Second,
	}
}

func TestRunProgramSeedsMemoryStoreAndCloses(t *testing.T) {
	var opened store.Store
	open := func(ctx context.Context, driver, path string) (store.Store, error) {
		s, err := store.Open(ctx, driver, path)
		opened = s
		return s, err
	}
	var gotApp *ui.App
	err := runProgram(memorySettings(), open, func(app *ui.App) programRunner {
		gotApp = app
		return noopProgram{}
	})
	if err != nil {
		t.Fatalf("runProgram returned error: %v", err)
	}
	if gotApp == nil {
		t.Fatal("expected program factory to receive the app")
	}
	n, err := opened.Count(context.Background(), "posts")
	if err != nil || n == 0 {
		t.Fatalf("expected seeded posts, got %d (%v)", n, err)
	}
}

func TestRunProgramPropagatesErrors(t *testing.T) {
	failing := func(context.Context, string, string) (store.Store, error) {
		return nil, errors.New("disk full")
	}
	if err := runProgram(memorySettings(), failing, nil); err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected open error, got %v", err)
	}

	mock := store.NewMockStore()
	open := func(context.Context, string, string) (store.Store, error) { return mock, nil }
	settings := memorySettings()
	settings.StoreDriver = store.DriverSQLite
	err := runProgram(settings, open, func(*ui.App) programRunner {
		return noopProgram{err: errors.New("tty gone")}
	})
	if err == nil || !strings.Contains(err.Error(), "run UI: tty gone") {
		t.Fatalf("expected run error, got %v", err)
	}
	if !mock.Closed {
		t.Fatal("expected store to be closed")
	}
}
