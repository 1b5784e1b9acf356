// Package config loads adminkit settings from defaults, YAML files, the
// environment and command-line overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	appErrors "adminkit/internal/errors"

	"github.com/spf13/viper"
)

const (
	KeyStoreDriver        = "store.driver"
	KeyDatabasePath       = "database.path"
	KeyCollections        = "collections"
	KeyAutoRefreshSeconds = "auto-refresh-seconds"
	KeyOutputFormat       = "output.format"
	KeyTheme              = "theme"
	KeySuccessMessage     = "confirm.success-message"
	KeyToastSeconds       = "toast.seconds"
	KeyDebug              = "debug"
	KeySeed               = "seed"
)

const (
	// DefaultAutoRefreshSeconds is the default auto-refresh interval in seconds.
	DefaultAutoRefreshSeconds = 10
	DefaultToastSeconds       = 5
	DefaultSuccessMessage     = "Deleted."

	configDirName  = ".adminkit"
	configFileName = "config.yaml"
	envPrefix      = "AK"
)

// DefaultCollections are administered when none are configured.
var DefaultCollections = []string{"products", "posts", "banners"}

type initSettings struct {
	workingDir        string
	projectConfigPath string
	userConfigPath    string
}

// Option configures Initialize behaviour.
type Option func(*initSettings)

// WithWorkingDir overrides the directory used for project config discovery.
func WithWorkingDir(dir string) Option {
	return func(cfg *initSettings) {
		cfg.workingDir = dir
	}
}

// WithProjectConfig explicitly sets the project config path instead of discovery.
func WithProjectConfig(path string) Option {
	return func(cfg *initSettings) {
		cfg.projectConfigPath = path
	}
}

// WithUserConfig overrides the default user config path.
func WithUserConfig(path string) Option {
	return func(cfg *initSettings) {
		cfg.userConfigPath = path
	}
}

var (
	configOnce sync.Once
	configMu   sync.RWMutex
	configInst *viper.Viper
	initErr    error

	// userConfigPathOverride redirects SaveTheme in tests.
	userConfigPathOverride string
)

// Initialize loads configuration using the precedence:
// defaults < user config < project config < environment variables < overrides.
func Initialize(opts ...Option) error {
	configOnce.Do(func() {
		settings := initSettings{}
		for _, opt := range opts {
			opt(&settings)
		}
		initErr = configure(&settings)
	})
	return initErr
}

// ApplyOverrides injects values typically coming from CLI flags.
func ApplyOverrides(overrides map[string]any) error {
	if len(overrides) == 0 {
		return nil
	}
	v, err := getViper()
	if err != nil {
		return err
	}
	configMu.Lock()
	defer configMu.Unlock()
	for k, val := range overrides {
		v.Set(k, val)
	}
	return nil
}

// GetString fetches a string configuration value, initializing on demand.
func GetString(key string) string {
	v, err := getViper()
	if err != nil {
		return ""
	}
	configMu.RLock()
	defer configMu.RUnlock()
	return v.GetString(key)
}

// GetBool fetches a bool configuration value, initializing on demand.
func GetBool(key string) bool {
	v, err := getViper()
	if err != nil {
		return false
	}
	configMu.RLock()
	defer configMu.RUnlock()
	return v.GetBool(key)
}

// GetInt fetches an integer configuration value, initializing on demand.
func GetInt(key string) int {
	v, err := getViper()
	if err != nil {
		return 0
	}
	configMu.RLock()
	defer configMu.RUnlock()
	return v.GetInt(key)
}

// GetStringSlice fetches a list value. A comma separated string is split.
func GetStringSlice(key string) []string {
	v, err := getViper()
	if err != nil {
		return nil
	}
	configMu.RLock()
	defer configMu.RUnlock()
	var out []string
	for _, item := range v.GetStringSlice(key) {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Set updates a configuration key at runtime, initializing on demand.
func Set(key string, value any) error {
	return ApplyOverrides(map[string]any{key: value})
}

// Settings is a typed snapshot of the values the console consumes.
type Settings struct {
	StoreDriver    string
	DatabasePath   string
	Collections    []string
	AutoRefresh    time.Duration
	OutputFormat   string
	Theme          string
	SuccessMessage string
	ToastTTL       time.Duration
	Debug          bool
	Seed           bool
}

// Load returns the current Settings with empty values replaced by defaults.
func Load() (Settings, error) {
	if _, err := getViper(); err != nil {
		return Settings{}, err
	}
	s := Settings{
		StoreDriver:    strings.ToLower(strings.TrimSpace(GetString(KeyStoreDriver))),
		DatabasePath:   strings.TrimSpace(GetString(KeyDatabasePath)),
		Collections:    GetStringSlice(KeyCollections),
		AutoRefresh:    time.Duration(GetInt(KeyAutoRefreshSeconds)) * time.Second,
		OutputFormat:   strings.ToLower(strings.TrimSpace(GetString(KeyOutputFormat))),
		Theme:          GetString(KeyTheme),
		SuccessMessage: GetString(KeySuccessMessage),
		ToastTTL:       time.Duration(GetInt(KeyToastSeconds)) * time.Second,
		Debug:          GetBool(KeyDebug),
		Seed:           GetBool(KeySeed),
	}
	if s.DatabasePath == "" && s.StoreDriver != "memory" {
		path, err := DefaultDatabasePath()
		if err != nil {
			return Settings{}, err
		}
		s.DatabasePath = path
	}
	if len(s.Collections) == 0 {
		s.Collections = append([]string(nil), DefaultCollections...)
	}
	if s.AutoRefresh < 0 {
		s.AutoRefresh = 0
	}
	if s.ToastTTL <= 0 {
		s.ToastTTL = DefaultToastSeconds * time.Second
	}
	if s.SuccessMessage == "" {
		s.SuccessMessage = DefaultSuccessMessage
	}
	switch s.OutputFormat {
	case "rich", "light", "plain":
	default:
		return Settings{}, appErrors.New(appErrors.CodeConfigurationError,
			fmt.Sprintf("invalid %s %q (want rich, light or plain)", KeyOutputFormat, s.OutputFormat), nil)
	}
	return s, nil
}

// DefaultDatabasePath is ~/.adminkit/adminkit.db.
func DefaultDatabasePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", appErrors.New(appErrors.CodeConfigurationError, "determine user home", err)
	}
	return filepath.Join(home, configDirName, "adminkit.db"), nil
}

func configure(settings *initSettings) error {
	workingDir := strings.TrimSpace(settings.workingDir)
	if workingDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("determine working directory: %w", err)
		}
		workingDir = wd
	}

	userConfigPath := strings.TrimSpace(settings.userConfigPath)
	if userConfigPath == "" {
		path, err := defaultUserConfigPath()
		if err != nil {
			return err
		}
		userConfigPath = path
	}

	projectConfigPath := strings.TrimSpace(settings.projectConfigPath)
	if projectConfigPath == "" {
		path, err := findProjectConfig(workingDir)
		if err != nil {
			return err
		}
		projectConfigPath = path
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := mergeConfigFile(v, userConfigPath); err != nil {
		return appErrors.New(appErrors.CodeConfigurationError, "load user config: "+err.Error(), err)
	}
	if err := mergeConfigFile(v, projectConfigPath); err != nil {
		return appErrors.New(appErrors.CodeConfigurationError, "load project config: "+err.Error(), err)
	}

	configMu.Lock()
	defer configMu.Unlock()
	configInst = v
	return nil
}

func mergeConfigFile(v *viper.Viper, path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", path)
	}
	//nolint:gosec // G304: config files are chosen by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine user home: %w", err)
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

// findProjectConfig walks up from startDir looking for .adminkit/config.yaml.
func findProjectConfig(startDir string) (string, error) {
	if strings.TrimSpace(startDir) == "" {
		return "", nil
	}
	dir := startDir
	for {
		candidate := filepath.Join(dir, configDirName, configFileName)
		info, err := os.Stat(candidate)
		if err == nil {
			if info.IsDir() {
				return "", fmt.Errorf("config path %s is a directory", candidate)
			}
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyStoreDriver, "sqlite")
	v.SetDefault(KeyDatabasePath, "")
	v.SetDefault(KeyCollections, DefaultCollections)
	v.SetDefault(KeyAutoRefreshSeconds, DefaultAutoRefreshSeconds)
	v.SetDefault(KeyOutputFormat, "rich")
	v.SetDefault(KeyTheme, "tokyonight")
	v.SetDefault(KeySuccessMessage, DefaultSuccessMessage)
	v.SetDefault(KeyToastSeconds, DefaultToastSeconds)
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeySeed, false)
}

func getViper() (*viper.Viper, error) {
	if err := Initialize(); err != nil {
		return nil, err
	}
	configMu.RLock()
	defer configMu.RUnlock()
	if configInst == nil {
		return nil, appErrors.New(appErrors.CodeConfigurationError, "configuration not initialized", nil)
	}
	return configInst, nil
}

func reset() {
	configMu.Lock()
	defer configMu.Unlock()
	configInst = nil
	initErr = nil
	configOnce = sync.Once{}
	userConfigPathOverride = ""
}

// ResetForTesting clears package state for tests in other packages and
// initializes from an empty temp directory. The returned func resets again.
func ResetForTesting(t interface{ TempDir() string }) func() {
	reset()
	tmp := t.TempDir()
	userConfigPathOverride = filepath.Join(tmp, "user", configFileName)
	_ = Initialize(WithWorkingDir(tmp), WithUserConfig(userConfigPathOverride))
	return reset
}

// SaveTheme persists the theme name. A project config is updated when one
// exists; otherwise the user config is written, creating its directory.
func SaveTheme(themeName string) error {
	targetPath, err := findWritableConfigPath()
	if err != nil {
		return fmt.Errorf("find config path: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(targetPath)
	_ = v.ReadInConfig()

	v.Set(KeyTheme, themeName)

	//nolint:gosec // G301: user config directory needs standard permissions
	if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := v.WriteConfigAs(targetPath); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return Set(KeyTheme, themeName)
}

// findWritableConfigPath returns the project config if it exists, otherwise
// the user config path.
func findWritableConfigPath() (string, error) {
	if userConfigPathOverride != "" {
		return userConfigPathOverride, nil
	}
	if wd, err := os.Getwd(); err == nil {
		if projectPath, err := findProjectConfig(wd); err == nil && projectPath != "" {
			return projectPath, nil
		}
	}
	return defaultUserConfigPath()
}
