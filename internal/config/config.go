package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	AppName               = "taskcards"
	DefaultConfigFileName = "config.toml"
	DefaultLogName        = "taskcards.log"
	EnvConfigPath         = "TASKCARDS_CONFIG"
)

type Keymap struct {
	Quit           string `toml:"quit"`
	Add            string `toml:"add"`
	Up             string `toml:"up"`
	Down           string `toml:"down"`
	Left           string `toml:"left"`
	Right          string `toml:"right"`
	Toggle         string `toml:"toggle"`
	Delete         string `toml:"delete"`
	Menu           string `toml:"menu"`
	PriorityUp     string `toml:"priority_up"`
	SortCycle      string `toml:"sort_cycle"`
	SortNone       string `toml:"sort_none"`
	SortImportance string `toml:"sort_importance"`
	SortDeadline   string `toml:"sort_deadline"`
	SortName       string `toml:"sort_name"`
	Confirm        string `toml:"confirm"`
	Cancel         string `toml:"cancel"`
	NextField      string `toml:"next_field"`
	PrevField      string `toml:"prev_field"`
}

type Config struct {
	LogPath      string `toml:"log_path"`
	LogLevel     string `toml:"log_level"`
	DefaultSort  string `toml:"default_sort"`
	Seed         bool   `toml:"seed"`
	ImageTimeout string `toml:"image_timeout"`
	Keys         Keymap `toml:"keys"`

	// MaxImageBytes caps attachment size; zero keeps the built-in limit.
	MaxImageBytes int64 `toml:"max_image_bytes"`
}

// DecodeTimeout parses ImageTimeout. Empty or invalid values mean no timeout.
func (c Config) DecodeTimeout() time.Duration {
	if c.ImageTimeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.ImageTimeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// ResolveConfigPath prefers $TASKCARDS_CONFIG, then the user config dir, then
// the working directory.
func ResolveConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, AppName, DefaultConfigFileName)
}

func defaultLogPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return DefaultLogName
	}
	return filepath.Join(dir, AppName, DefaultLogName)
}

func LoadOrCreate(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Keys = fillKeys(cfg.Keys, defaultKeys())
	return cfg, nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func Default() Config {
	return Config{
		LogPath:     defaultLogPath(),
		LogLevel:    "info",
		DefaultSort: "none",
		Seed:        true,
		Keys:        defaultKeys(),
	}
}

func defaultKeys() Keymap {
	return Keymap{
		Quit:           "q",
		Add:            "a",
		Up:             "k",
		Down:           "j",
		Left:           "h",
		Right:          "l",
		Toggle:         " ",
		Delete:         "d",
		Menu:           "m",
		PriorityUp:     "+",
		SortCycle:      "s",
		SortNone:       "0",
		SortImportance: "1",
		SortDeadline:   "2",
		SortName:       "3",
		Confirm:        "enter",
		Cancel:         "esc",
		NextField:      "tab",
		PrevField:      "shift+tab",
	}
}

// fillKeys restores bindings left blank in an older config file.
func fillKeys(k, def Keymap) Keymap {
	pick := func(v, d string) string {
		if v == "" {
			return d
		}
		return v
	}
	return Keymap{
		Quit:           pick(k.Quit, def.Quit),
		Add:            pick(k.Add, def.Add),
		Up:             pick(k.Up, def.Up),
		Down:           pick(k.Down, def.Down),
		Left:           pick(k.Left, def.Left),
		Right:          pick(k.Right, def.Right),
		Toggle:         pick(k.Toggle, def.Toggle),
		Delete:         pick(k.Delete, def.Delete),
		Menu:           pick(k.Menu, def.Menu),
		PriorityUp:     pick(k.PriorityUp, def.PriorityUp),
		SortCycle:      pick(k.SortCycle, def.SortCycle),
		SortNone:       pick(k.SortNone, def.SortNone),
		SortImportance: pick(k.SortImportance, def.SortImportance),
		SortDeadline:   pick(k.SortDeadline, def.SortDeadline),
		SortName:       pick(k.SortName, def.SortName),
		Confirm:        pick(k.Confirm, def.Confirm),
		Cancel:         pick(k.Cancel, def.Cancel),
		NextField:      pick(k.NextField, def.NextField),
		PrevField:      pick(k.PrevField, def.PrevField),
	}
}
