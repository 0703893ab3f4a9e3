// internal/config/config.go
//
// Runtime configuration and the .twinboard directory. Every project that
// runs twinboard gets a .twinboard/ folder with a commented config.yaml
// created on first launch; environment variables override the server
// endpoints for quick switching between a real backend and the stub.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppDir is the name of the directory created in each project.
const AppDir = ".twinboard"

const defaultConfigYAML = `# twinboard configuration
version: 1

# Remote compute endpoints. Run "twinboard stubd" for a local backend.
server_url: http://localhost:8000
chat_url: ws://localhost:8000/ws/chat
training_url: ws://localhost:8000/ws/training

# Optional roster override; omit to use the built-in seed workers.
# roster_file: workers.yaml

scroll:
  # Edge band width and max scroll speed, in rows per tick.
  edge_rows: 4
  speed_rows: 3

simulation:
  # Floors so each what-if step stays visible regardless of latency.
  step_dwell_ms: 900
  analyze_dwell_ms: 1200

chat:
  # Single post-mount safety-net reconnect delay.
  reconnect_delay_ms: 3000
`

// ScrollSettings tunes the drag auto-scroll loop.
type ScrollSettings struct {
	EdgeRows  int     `yaml:"edge_rows"`
	SpeedRows float64 `yaml:"speed_rows"`
}

// SimulationSettings holds the pipeline dwell floors.
type SimulationSettings struct {
	StepDwellMs    int `yaml:"step_dwell_ms"`
	AnalyzeDwellMs int `yaml:"analyze_dwell_ms"`
}

// ChatSettings holds transport tuning.
type ChatSettings struct {
	ReconnectDelayMs int `yaml:"reconnect_delay_ms"`
}

// Settings models .twinboard/config.yaml.
type Settings struct {
	Version     int                `yaml:"version"`
	ServerURL   string             `yaml:"server_url"`
	ChatURL     string             `yaml:"chat_url"`
	TrainingURL string             `yaml:"training_url"`
	RosterFile  string             `yaml:"roster_file,omitempty"`
	Scroll      ScrollSettings     `yaml:"scroll"`
	Simulation  SimulationSettings `yaml:"simulation"`
	Chat        ChatSettings       `yaml:"chat"`
}

// Config is the resolved runtime configuration.
type Config struct {
	// ProjectDir is where the user launched twinboard from.
	ProjectDir string

	// AppProjectDir is ProjectDir/.twinboard.
	AppProjectDir string

	Settings Settings
}

func defaultSettings() Settings {
	return Settings{
		Version:     1,
		ServerURL:   "http://localhost:8000",
		ChatURL:     "ws://localhost:8000/ws/chat",
		TrainingURL: "ws://localhost:8000/ws/training",
		Scroll:      ScrollSettings{EdgeRows: 4, SpeedRows: 3},
		Simulation:  SimulationSettings{StepDwellMs: 900, AnalyzeDwellMs: 1200},
		Chat:        ChatSettings{ReconnectDelayMs: 3000},
	}
}

// InitDir creates the .twinboard directory structure and a default
// config.yaml if none exists. Called on startup.
func InitDir(projectDir string) error {
	appDir := filepath.Join(projectDir, AppDir)
	for _, dir := range []string{appDir, filepath.Join(appDir, "logs")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	path := filepath.Join(appDir, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// New loads configuration for the project directory: defaults, then
// config.yaml, then environment overrides.
func New(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:    projectDir,
		AppProjectDir: filepath.Join(projectDir, AppDir),
		Settings:      defaultSettings(),
	}
	if err := cfg.loadFile(); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigPath returns the on-disk location of the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.AppProjectDir, "config.yaml")
}

// LogPath returns the session journal location.
func (c *Config) LogPath() string {
	return filepath.Join(c.AppProjectDir, "logs", "session.log")
}

// RosterPath resolves the roster override relative to the project dir, or
// returns "" when the built-in seed roster applies.
func (c *Config) RosterPath() string {
	file := strings.TrimSpace(c.Settings.RosterFile)
	if file == "" {
		return ""
	}
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(c.ProjectDir, file)
}

// StepDwell returns the minimum visible duration of one pipeline step.
func (c *Config) StepDwell() time.Duration {
	return time.Duration(c.Settings.Simulation.StepDwellMs) * time.Millisecond
}

// AnalyzeDwell returns the fixed analyzing-phase duration.
func (c *Config) AnalyzeDwell() time.Duration {
	return time.Duration(c.Settings.Simulation.AnalyzeDwellMs) * time.Millisecond
}

// ReconnectDelay returns the chat safety-net reconnect delay.
func (c *Config) ReconnectDelay() time.Duration {
	return time.Duration(c.Settings.Chat.ReconnectDelayMs) * time.Millisecond
}

func (c *Config) loadFile() error {
	data, err := os.ReadFile(c.ConfigPath())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", c.ConfigPath(), err)
	}
	if err := yaml.Unmarshal(data, &c.Settings); err != nil {
		return fmt.Errorf("parse %s: %w", c.ConfigPath(), err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("TWINBOARD_SERVER_URL")); v != "" {
		c.Settings.ServerURL = v
	}
	if v := strings.TrimSpace(os.Getenv("TWINBOARD_CHAT_URL")); v != "" {
		c.Settings.ChatURL = v
	}
	if v := strings.TrimSpace(os.Getenv("TWINBOARD_TRAINING_URL")); v != "" {
		c.Settings.TrainingURL = v
	}
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Settings.ServerURL) == "" {
		return fmt.Errorf("config: server_url is required")
	}
	if c.Settings.Scroll.EdgeRows < 1 {
		return fmt.Errorf("config: scroll.edge_rows must be at least 1")
	}
	if c.Settings.Scroll.SpeedRows <= 0 {
		return fmt.Errorf("config: scroll.speed_rows must be positive")
	}
	if c.Settings.Simulation.StepDwellMs < 0 || c.Settings.Simulation.AnalyzeDwellMs < 0 {
		return fmt.Errorf("config: simulation dwell times must not be negative")
	}
	return nil
}
