// Package config resolves the harvester's settings from built-in defaults, an optional json5
// file (plus its .local override), a .env file and the process environment, in increasing
// priority.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"storefront-harvester/internal/browser"
	"storefront-harvester/internal/fetch"
	"storefront-harvester/internal/history"
	"storefront-harvester/internal/pipeline"
	"storefront-harvester/internal/scrapers/detail"
	"storefront-harvester/internal/storefront"
	"storefront-harvester/lib/configutil"

	"github.com/joho/godotenv"
)

const DefaultPath = "harvester.json5"

const DefaultSchedule = "@every 6h"

type StorefrontConfig struct {
	Target  string `json:"target"`
	Limit   int    `json:"limit"`
	OutFile string `json:"out_file"`
	// Enrich overrides whether product pages are visited, unset uses the storefront's default.
	Enrich *bool `json:"enrich"`
	// PauseMs is the pause between product page visits, unset uses 1200ms.
	PauseMs *int `json:"pause_ms"`
}

type BrowserConfig struct {
	RemoteURL            string `json:"remote_url"`
	Bin                  string `json:"bin"`
	NavigationTimeoutSec int    `json:"navigation_timeout_sec"`
	SettleMs             *int   `json:"settle_ms"`
}

type HTTPConfig struct {
	TimeoutSec        int     `json:"timeout_sec"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	Cloudflare        bool    `json:"cloudflare"`
	DumpDir           string  `json:"dump_dir"`
}

type Config struct {
	Storefronts map[string]StorefrontConfig `json:"storefronts"`
	Browser     BrowserConfig               `json:"browser"`
	HTTP        HTTPConfig                  `json:"http"`
	Schedule    string                      `json:"schedule"`
	// HistoryDB is the sqlite file runs are archived in, empty disables the archive.
	HistoryDB   string `json:"history_db"`
	HistoryKeep int    `json:"history_keep"`

	// OutFile comes from OUT_FILE and replaces the out file of whichever storefront is run.
	OutFile string `json:"-"`
}

// Load resolves the configuration, path may not exist.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath
	}

	dotenv := filepath.Join(filepath.Dir(path), ".env")
	err := godotenv.Load(dotenv)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", dotenv, err)
	}

	var cfg Config
	err = configutil.MergeInto(&cfg, path)
	if err != nil {
		return Config{}, err
	}
	if cfg.Storefronts == nil {
		cfg.Storefronts = map[string]StorefrontConfig{}
	}
	for name := range cfg.Storefronts {
		if _, ok := storefront.Lookup(name); !ok {
			slog.Warn("ignoring unknown storefront in config", "storefront", name, "known", storefront.Names())
			delete(cfg.Storefronts, name)
		}
	}

	applyEnv(&cfg)
	fillDefaults(&cfg)
	return cfg, nil
}

type storefrontEnv struct {
	profile storefront.Profile
	target  string
	limit   string
}

var storefrontEnvs = []storefrontEnv{
	{profile: storefront.Kofi, target: "KOFI_USERNAME", limit: "KOFI_LIMIT"},
	{profile: storefront.ACGGoods, target: "ACG_STORE_SLUG", limit: "ACG_LIMIT"},
}

func applyEnv(cfg *Config) {
	for _, env := range storefrontEnvs {
		sf := cfg.Storefronts[env.profile.Name]
		if v := strings.TrimSpace(os.Getenv(env.target)); v != "" {
			sf.Target = v
		}
		// a blank limit is unset, it doesn't reset the file's limit to the default
		if v := strings.TrimSpace(os.Getenv(env.limit)); v != "" {
			sf.Limit = parseLimit(v, env.profile.DefaultLimit)
		}
		cfg.Storefronts[env.profile.Name] = sf
	}

	if v := strings.TrimSpace(os.Getenv("OUT_FILE")); v != "" {
		cfg.OutFile = v
	}
	if v := strings.TrimSpace(os.Getenv("HARVEST_SCHEDULE")); v != "" {
		cfg.Schedule = v
	}
	if v := strings.TrimSpace(os.Getenv("HARVEST_HISTORY_DB")); v != "" {
		cfg.HistoryDB = v
	}
	if v := strings.TrimSpace(os.Getenv("BROWSER_REMOTE_URL")); v != "" {
		cfg.Browser.RemoteURL = v
	}
	if v := strings.TrimSpace(os.Getenv("BROWSER_BIN")); v != "" {
		cfg.Browser.Bin = v
	}
	if v := strings.TrimSpace(os.Getenv("HTTP_DUMP_DIR")); v != "" {
		cfg.HTTP.DumpDir = v
	}
}

// parseLimit reads a leading integer the way the storefront scripts always have ("12abc" is
// 12), anything else falls back to def.
func parseLimit(s string, def int) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || end == 0 && (s[end] == '-' || s[end] == '+')) {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n == 0 {
		return def
	}
	return n
}

func fillDefaults(cfg *Config) {
	for _, name := range storefront.Names() {
		profile, _ := storefront.Lookup(name)
		sf := cfg.Storefronts[name]
		if sf.Target == "" {
			sf.Target = profile.DefaultTarget
		}
		if sf.Limit == 0 {
			sf.Limit = profile.DefaultLimit
		}
		if sf.OutFile == "" {
			sf.OutFile = profile.DefaultOutFile
		}
		cfg.Storefronts[name] = sf
	}

	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	if cfg.HistoryKeep == 0 {
		cfg.HistoryKeep = history.DefaultKeep
	}
	if cfg.HTTP.TimeoutSec <= 0 {
		cfg.HTTP.TimeoutSec = int(fetch.DefaultTimeout / time.Second)
	}
	if cfg.HTTP.RequestsPerSecond == 0 {
		cfg.HTTP.RequestsPerSecond = fetch.DefaultOptions().RequestsPerSecond
	}
	if cfg.Browser.NavigationTimeoutSec <= 0 {
		cfg.Browser.NavigationTimeoutSec = int(browser.DefaultNavigationTimeout / time.Second)
	}
}

// Storefront returns the settings of a known storefront.
func (c Config) Storefront(name string) StorefrontConfig {
	return c.Storefronts[name]
}

// OutFileFor is where a single run of the storefront writes its snapshot.
func (c Config) OutFileFor(name string) string {
	if c.OutFile != "" {
		return c.OutFile
	}
	return c.Storefronts[name].OutFile
}

func (c Config) PipelineOptions(profile storefront.Profile) pipeline.Options {
	sf := c.Storefronts[profile.Name]
	opts := pipeline.DefaultOptions(profile)
	opts.Target = sf.Target
	opts.Limit = sf.Limit
	if sf.Enrich != nil {
		opts.Enrich = *sf.Enrich
	}
	opts.Pause = detail.DefaultPause
	if sf.PauseMs != nil {
		opts.Pause = time.Duration(*sf.PauseMs) * time.Millisecond
	}
	return opts
}

func (c Config) FetchOptions() fetch.Options {
	opts := fetch.DefaultOptions()
	opts.Timeout = time.Duration(c.HTTP.TimeoutSec) * time.Second
	opts.RequestsPerSecond = c.HTTP.RequestsPerSecond
	opts.Cloudflare = c.HTTP.Cloudflare
	opts.DumpDir = c.HTTP.DumpDir
	return opts
}

func (c Config) BrowserOptions() browser.Options {
	opts := browser.DefaultOptions()
	opts.RemoteURL = c.Browser.RemoteURL
	opts.Bin = c.Browser.Bin
	opts.NavigationTimeout = time.Duration(c.Browser.NavigationTimeoutSec) * time.Second
	if c.Browser.SettleMs != nil {
		opts.Settle = time.Duration(*c.Browser.SettleMs) * time.Millisecond
	}
	return opts
}
