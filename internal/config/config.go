package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "todo.db"
	DefaultAssetsDir      = "assets"
	DefaultLogName        = "aerodo.log"
	DefaultOrder          = "priority,created_at"

	// ConfigEnv overrides the config file location.
	ConfigEnv = "AERODO_CONFIG"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

type Keymap struct {
	Quit      string `toml:"quit"`
	Up        string `toml:"up"`
	Down      string `toml:"down"`
	View      string `toml:"view"`
	Toggle    string `toml:"toggle"`
	Delete    string `toml:"delete"`
	NextFocus string `toml:"next_focus"`
	PrevFocus string `toml:"prev_focus"`
	Save      string `toml:"save"`
	Remove    string `toml:"remove_selected"`
	Theme     string `toml:"theme"`
	Order     string `toml:"order"`
	Export    string `toml:"export"`
	Refresh   string `toml:"refresh"`
	Confirm   string `toml:"confirm"`
	Cancel    string `toml:"cancel"`
}

type Config struct {
	DBPath       string `toml:"db_path"`
	AssetsDir    string `toml:"assets_dir"`
	LogPath      string `toml:"log_path"`
	Theme        string `toml:"theme"`
	DefaultOrder string `toml:"default_order"`
	Keys         Keymap `toml:"keys"`
}

// Dark reports whether the dark palette is selected.
func (c Config) Dark() bool {
	return strings.EqualFold(strings.TrimSpace(c.Theme), ThemeDark)
}

// ResolveConfigPath honours AERODO_CONFIG, which may also come from a .env
// file in the working directory, and falls back to config.toml.
func ResolveConfigPath() string {
	_ = godotenv.Load(".env")
	if p := strings.TrimSpace(os.Getenv(ConfigEnv)); p != "" {
		return p
	}
	return DefaultConfigFileName
}

func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := Save(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBName
	}
	if cfg.AssetsDir == "" {
		cfg.AssetsDir = DefaultAssetsDir
	}
	if cfg.LogPath == "" {
		cfg.LogPath = DefaultLogName
	}
	if cfg.Dark() {
		cfg.Theme = ThemeDark
	} else {
		cfg.Theme = ThemeLight
	}
	return cfg, nil
}

func Save(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		DBPath:       DefaultDBName,
		AssetsDir:    DefaultAssetsDir,
		LogPath:      DefaultLogName,
		Theme:        ThemeLight,
		DefaultOrder: DefaultOrder,
		Keys: Keymap{
			Quit:      "ctrl+q",
			Up:        "up",
			Down:      "down",
			View:      "enter",
			Toggle:    " ",
			Delete:    "d",
			NextFocus: "tab",
			PrevFocus: "shift+tab",
			Save:      "ctrl+s",
			Remove:    "ctrl+d",
			Theme:     "ctrl+t",
			Order:     "ctrl+o",
			Export:    "ctrl+e",
			Refresh:   "ctrl+r",
			Confirm:   "enter",
			Cancel:    "esc",
		},
	}
}
