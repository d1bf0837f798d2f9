package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/adrg/xdg"

	"gomoku/game"
)

var (
	cfgFile = "gomoku/config.json"
)

type InvalidConfig struct {
	err string
}

func (e *InvalidConfig) Error() string {
	return fmt.Sprintf("Config error: %s", e.err)
}

// Config holds the board and search settings shared by the play, serve
// and experiment commands.
type Config struct {
	BoardSize      int     `json:"board_size"`
	Goroutines     int     `json:"goroutines"`
	Iterations     int     `json:"iterations"`
	MaxTimeSeconds float64 `json:"max_time_seconds"`
	Verbose        bool    `json:"verbose"`
	ListenAddr     string  `json:"listen_addr"`
}

var DefaultConfig = Config{
	BoardSize:      game.DefaultBoardSize,
	Goroutines:     8,
	Iterations:     10000,
	MaxTimeSeconds: 0,
	Verbose:        false,
	ListenAddr:     ":8080",
}

// InitConfig loads the user's config file on top of the defaults. A
// missing file is not an error.
func InitConfig() (*Config, error) {
	config := DefaultConfig
	absPath, err := xdg.SearchConfigFile(cfgFile)
	if err == nil {
		if err := readCfgFile(absPath, &config); err != nil {
			return nil, err
		}
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) Validate() error {
	if c.BoardSize < game.MinBoardSize || c.BoardSize > game.MaxBoardSize {
		return &InvalidConfig{fmt.Sprintf("board size must be between %d and %d", game.MinBoardSize, game.MaxBoardSize)}
	}
	if c.Goroutines < 1 {
		return &InvalidConfig{"need at least one goroutine"}
	}
	if c.Iterations <= 0 && c.MaxTimeSeconds <= 0 {
		return &InvalidConfig{"an iteration or time budget is required"}
	}
	return nil
}

// MaxTime converts the configured seconds into a duration, zero meaning
// no time limit.
func (c *Config) MaxTime() time.Duration {
	if c.MaxTimeSeconds <= 0 {
		return 0
	}
	return time.Duration(c.MaxTimeSeconds * float64(time.Second))
}

// Save writes the config to the user's XDG config directory.
func (c *Config) Save() error {
	absPath, err := xdg.ConfigFile(cfgFile)
	if err != nil {
		return err
	}
	return saveCfgFile(absPath, c, 0664)
}

func saveCfgFile(filePath string, a interface{}, perm fs.FileMode) error {
	jsonData, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, jsonData, perm)
}

func readCfgFile(filePath string, a interface{}) error {
	configReader, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", filePath, err)
	}
	if err := json.Unmarshal(configReader, &a); err != nil {
		return &InvalidConfig{fmt.Sprintf("parsing %s: %v", filePath, err)}
	}
	return nil
}
