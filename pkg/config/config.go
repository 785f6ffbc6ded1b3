// Package config builds the single immutable configuration structure for a
// process. Environment variables win over the optional YAML site profile,
// which wins over defaults. Nothing reads the environment after startup; the
// Config value is threaded into whatever needs it.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	DefaultEntryURL    = "https://book.brightcarpetcare.com/services"
	DefaultListenAddr  = ":8080"
	DefaultArtifactDir = ".bookpilot/artifacts"
	DefaultLogsDir     = ".bookpilot/logs"
	DefaultProfilePath = "bookpilot.yml"
)

// Config is immutable after Load returns.
type Config struct {
	// Browser provisioning.
	Headless        bool
	SlowMoMS        int
	KeepBrowserOpen bool
	RemoteWS        string
	StealthArgs     []string
	UserAgent       string

	// Run input and artifacts.
	EntryURL    string
	Payload     string
	PayloadFile string
	ArtifactDir string
	LogsDir     string

	// HTTP front end and webhook relay.
	ListenAddr    string
	RunnerURL     string
	WebhookSecret string

	// Coarse timing overrides, in milliseconds. Zero means default.
	MainMenuTimeoutMS int
	IdleSettleMS      int
}

// Profile is the optional YAML site profile. It carries the values that
// describe the target site rather than this deployment.
type Profile struct {
	EntryURL          string   `yaml:"entry_url"`
	StealthArgs       []string `yaml:"stealth_args"`
	UserAgent         string   `yaml:"user_agent"`
	SlowMoMS          int      `yaml:"slow_mo_ms"`
	MainMenuTimeoutMS int      `yaml:"main_menu_timeout_ms"`
	IdleSettleMS      int      `yaml:"idle_settle_ms"`
}

// Load builds the Config from the profile at path (skipped if absent) and
// the process environment.
func Load(profilePath string) (Config, error) {
	cfg := Config{
		Headless:    true,
		EntryURL:    DefaultEntryURL,
		ListenAddr:  DefaultListenAddr,
		ArtifactDir: DefaultArtifactDir,
		LogsDir:     DefaultLogsDir,
	}

	if profilePath == "" {
		profilePath = DefaultProfilePath
	}
	if _, err := os.Stat(profilePath); err == nil {
		profile, err := loadProfile(profilePath)
		if err != nil {
			return Config{}, err
		}
		applyProfile(&cfg, profile)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func loadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading site profile %q: %w", path, err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing site profile %q: %w", path, err)
	}
	return &p, nil
}

func applyProfile(cfg *Config, p *Profile) {
	if p.EntryURL != "" {
		cfg.EntryURL = p.EntryURL
	}
	if len(p.StealthArgs) > 0 {
		cfg.StealthArgs = p.StealthArgs
	}
	if p.UserAgent != "" {
		cfg.UserAgent = p.UserAgent
	}
	if p.SlowMoMS > 0 {
		cfg.SlowMoMS = p.SlowMoMS
	}
	if p.MainMenuTimeoutMS > 0 {
		cfg.MainMenuTimeoutMS = p.MainMenuTimeoutMS
	}
	if p.IdleSettleMS > 0 {
		cfg.IdleSettleMS = p.IdleSettleMS
	}
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("BOOKPILOT_HEADLESS"); ok {
		cfg.Headless = parseBool(v, cfg.Headless)
	}
	if v, ok := os.LookupEnv("BOOKPILOT_SLOWMO_MS"); ok {
		cfg.SlowMoMS = parseInt(v, cfg.SlowMoMS)
	}
	if v, ok := os.LookupEnv("BOOKPILOT_KEEP_BROWSER_OPEN"); ok {
		cfg.KeepBrowserOpen = parseBool(v, cfg.KeepBrowserOpen)
	}
	if v := os.Getenv("BOOKPILOT_REMOTE_WS"); v != "" {
		cfg.RemoteWS = v
	}
	if v := os.Getenv("BOOKPILOT_ENTRY_URL"); v != "" {
		cfg.EntryURL = v
	}
	if v := os.Getenv("BOOKPILOT_PAYLOAD"); v != "" {
		cfg.Payload = v
	}
	if v := os.Getenv("BOOKPILOT_PAYLOAD_FILE"); v != "" {
		cfg.PayloadFile = v
	}
	if v := os.Getenv("BOOKPILOT_ARTIFACT_DIR"); v != "" {
		cfg.ArtifactDir = v
	}
	if v := os.Getenv("BOOKPILOT_LOGS_DIR"); v != "" {
		cfg.LogsDir = v
	}
	if v := os.Getenv("BOOKPILOT_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("BOOKPILOT_RUNNER_URL"); v != "" {
		cfg.RunnerURL = v
	}
	if v := os.Getenv("BOOKPILOT_WEBHOOK_SECRET"); v != "" {
		cfg.WebhookSecret = v
	}
}

func parseBool(s string, fallback bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return b
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
