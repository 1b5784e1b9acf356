package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"adminkit/internal/config"
	"adminkit/internal/debug"
	"adminkit/internal/store"
	"adminkit/internal/ui"
	"adminkit/internal/ui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// flagKeys maps command-line flags to the config keys they override.
var flagKeys = map[string]string{
	"db-path":              config.KeyDatabasePath,
	"store":                config.KeyStoreDriver,
	"auto-refresh-seconds": config.KeyAutoRefreshSeconds,
	"output-format":        config.KeyOutputFormat,
	"debug":                config.KeyDebug,
	"seed":                 config.KeySeed,
}

type cliOptions struct {
	version   bool
	overrides map[string]any
}

// parseFlags parses args against defaults taken from config. Only flags that
// were explicitly set become overrides.
func parseFlags(args []string, output io.Writer) (cliOptions, error) {
	fs := flag.NewFlagSet("adminkit", flag.ContinueOnError)
	fs.SetOutput(output)

	versionFlag := fs.Bool("version", false, "Print version information and exit")
	dbPath := fs.String("db-path", config.GetString(config.KeyDatabasePath), "Path to the SQLite database file")
	driver := fs.String("store", config.GetString(config.KeyStoreDriver), "Record store backend (sqlite, memory)")
	autoRefresh := fs.Int("auto-refresh-seconds", config.GetInt(config.KeyAutoRefreshSeconds), "Auto-refresh interval in seconds (0 disables auto refresh)")
	outputFormat := fs.String("output-format", config.GetString(config.KeyOutputFormat), "Preview markdown style (rich, light, plain)")
	debugFlag := fs.Bool("debug", config.GetBool(config.KeyDebug), "Write a debug log to ~/.adminkit/debug.log")
	seed := fs.Bool("seed", config.GetBool(config.KeySeed), "Insert sample records into empty collections")
	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	values := map[string]any{
		"db-path":              strings.TrimSpace(*dbPath),
		"store":                strings.TrimSpace(*driver),
		"auto-refresh-seconds": sanitizeAutoRefreshSeconds(*autoRefresh),
		"output-format":        strings.TrimSpace(*outputFormat),
		"debug":                *debugFlag,
		"seed":                 *seed,
	}
	opts := cliOptions{version: *versionFlag, overrides: map[string]any{}}
	fs.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			opts.overrides[key] = values[f.Name]
		}
	})
	return opts, nil
}

func sanitizeAutoRefreshSeconds(seconds int) int {
	if seconds < 0 {
		return 0
	}
	return seconds
}

func run(args []string, stdout io.Writer) error {
	if err := config.Initialize(); err != nil {
		return fmt.Errorf("initialize config: %w", err)
	}
	opts, err := parseFlags(args, stdout)
	if err != nil {
		return err
	}
	if opts.version {
		printVersion(stdout)
		return nil
	}
	if err := config.ApplyOverrides(opts.overrides); err != nil {
		return err
	}
	settings, err := config.Load()
	if err != nil {
		return err
	}

	if settings.Debug {
		if err := debug.Init(true); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: debug log unavailable: %v\n", err)
		}
		defer debug.Close()
	}
	if settings.Theme != "" && !theme.Set(settings.Theme) {
		debug.Logger().Warn("unknown theme, using default", zap.String("theme", settings.Theme))
	}

	return runProgram(settings, store.Open, func(app *ui.App) programRunner {
		return tea.NewProgram(app, tea.WithAltScreen())
	})
}

type programRunner interface {
	Run() (tea.Model, error)
}

type programFactory func(*ui.App) programRunner

type storeOpener func(ctx context.Context, driver, path string) (store.Store, error)

func runProgram(settings config.Settings, open storeOpener, factory programFactory) error {
	ctx := context.Background()
	s, err := open(ctx, settings.StoreDriver, settings.DatabasePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		_ = s.Close()
	}()

	if settings.Seed || settings.StoreDriver == store.DriverMemory {
		n, err := store.Seed(ctx, s, settings.Collections)
		if err != nil {
			return fmt.Errorf("seed store: %w", err)
		}
		debug.Logger().Info("seed complete", zap.Int("created", n))
	}

	app, err := ui.NewApp(ui.Config{
		Store:           s,
		Collections:     settings.Collections,
		RefreshInterval: settings.AutoRefresh,
		AutoRefresh:     settings.AutoRefresh > 0,
		OutputFormat:    settings.OutputFormat,
		SuccessMessage:  settings.SuccessMessage,
		ToastTTL:        settings.ToastTTL,
		Version:         Version,
		StoreLabel:      storeLabel(settings),
	})
	if err != nil {
		return fmt.Errorf("initialize UI: %w", err)
	}
	defer app.Close()

	if factory == nil {
		return fmt.Errorf("program factory is nil")
	}
	prog := factory(app)
	if prog == nil {
		return fmt.Errorf("program is nil")
	}
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("run UI: %w", err)
	}
	return nil
}

func storeLabel(settings config.Settings) string {
	if settings.StoreDriver == store.DriverMemory {
		return "memory store"
	}
	return "sqlite: " + settings.DatabasePath
}
