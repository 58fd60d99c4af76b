// Package config loads regrade.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"regrade/internal/checker"
	"regrade/internal/region"
	"regrade/internal/sanitize"
	"regrade/internal/similarity"
)

var (
	// ErrNotFound indicates that an explicitly requested config file is missing.
	ErrNotFound = errors.New("config not found")
	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("invalid config")
)

// Question id sources for batch mode.
const (
	QuestionFromStem = "stem"
	QuestionFromDir  = "dir"
)

// Config mirrors regrade.toml.
type Config struct {
	Sentinels region.Sentinels          `toml:"sentinels"`
	Sanitize  SanitizeConfig            `toml:"sanitize"`
	Batch     BatchConfig               `toml:"batch"`
	Checkers  CheckersConfig            `toml:"checkers"`
	Store     StoreConfig               `toml:"store"`
	Questions map[string]QuestionConfig `toml:"questions,omitempty"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

// SanitizeConfig is the [sanitize] section.
type SanitizeConfig struct {
	Strategy sanitize.Strategy `toml:"strategy"`
	NoFold   bool              `toml:"no_fold"`
	NoJoin   bool              `toml:"no_join"`
}

// BatchConfig is the [batch] section.
type BatchConfig struct {
	Jobs         int    `toml:"jobs"` // 0 = GOMAXPROCS
	QuestionFrom string `toml:"question_from"`
	Cache        bool   `toml:"cache"`
	CacheDir     string `toml:"cache_dir,omitempty"`
}

// CheckersConfig is the [checkers] table.
type CheckersConfig struct {
	Lint     CheckerConfig `toml:"lint"`
	DeadCode CheckerConfig `toml:"deadcode"`
}

// CheckerConfig configures one external tool.
type CheckerConfig struct {
	Enabled   bool          `toml:"enabled"`
	Bin       string        `toml:"bin,omitempty"`
	Codes     []string      `toml:"codes,omitempty"`
	Whitelist string        `toml:"whitelist,omitempty"`
	Timeout   time.Duration `toml:"timeout"`
}

// StoreConfig is the [store] section.
type StoreConfig struct {
	DSN string `toml:"dsn"`
}

// QuestionConfig is one [questions.<id>] table.
type QuestionConfig struct {
	// Legit is the [lo, hi] range of legitimate edits in lines.
	Legit []int `toml:"legit"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Sentinels: region.DefaultSentinels(),
		Sanitize:  SanitizeConfig{Strategy: sanitize.StrategyBoth},
		Batch: BatchConfig{
			QuestionFrom: QuestionFromStem,
			Cache:        true,
		},
		Checkers: CheckersConfig{
			Lint: CheckerConfig{
				Enabled: true,
				Bin:     "pylint",
				Codes:   append([]string(nil), checker.DefaultLintCodes...),
				Timeout: checker.DefaultTimeout,
			},
			DeadCode: CheckerConfig{
				Enabled: true,
				Bin:     "vulture",
				Timeout: checker.DefaultTimeout,
			},
		},
	}
}

// Load decodes path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, err
	}
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("%s: %w: unknown keys %s", path, ErrInvalid, strings.Join(keys, ", "))
	}
	// явно заданный пустой список кодов не должен молча включать дефолтные
	if meta.IsDefined("checkers", "lint", "codes") && len(cfg.Checkers.Lint.Codes) == 0 {
		return nil, fmt.Errorf("%s: %w: [checkers.lint].codes is empty", path, ErrInvalid)
	}
	cfg.Path = path
	cfg.resolvePaths()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Resolve loads the explicit path if given, otherwise the nearest
// regrade.toml above startDir, otherwise the defaults.
func Resolve(explicit, startDir string) (*Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// resolvePaths makes the whitelist relative to the config file.
func (c *Config) resolvePaths() {
	wl := c.Checkers.DeadCode.Whitelist
	if wl == "" || filepath.IsAbs(wl) || c.Path == "" {
		return
	}
	c.Checkers.DeadCode.Whitelist = filepath.Join(filepath.Dir(c.Path), wl)
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	s := c.Sentinels.OrDefault()
	if s.Begin == s.End {
		return fmt.Errorf("%w: begin and end sentinels are both %q", ErrInvalid, s.Begin)
	}
	if strings.Contains(s.Begin, s.End) || strings.Contains(s.End, s.Begin) {
		return fmt.Errorf("%w: sentinels %q and %q overlap", ErrInvalid, s.Begin, s.End)
	}
	if c.Batch.Jobs < 0 {
		return fmt.Errorf("%w: [batch].jobs must be >= 0, got %d", ErrInvalid, c.Batch.Jobs)
	}
	switch c.Batch.QuestionFrom {
	case "", QuestionFromStem, QuestionFromDir:
	default:
		return fmt.Errorf("%w: [batch].question_from must be %q or %q, got %q",
			ErrInvalid, QuestionFromStem, QuestionFromDir, c.Batch.QuestionFrom)
	}
	for name, cc := range map[string]CheckerConfig{"lint": c.Checkers.Lint, "deadcode": c.Checkers.DeadCode} {
		if cc.Timeout < 0 {
			return fmt.Errorf("%w: [checkers.%s].timeout must not be negative", ErrInvalid, name)
		}
	}
	if wl := c.Checkers.DeadCode.Whitelist; wl != "" && c.Checkers.DeadCode.Enabled {
		if _, err := os.Stat(wl); err != nil {
			return fmt.Errorf("%w: [checkers.deadcode].whitelist: %w", ErrInvalid, err)
		}
	}
	for id := range c.Questions {
		if _, err := c.Calibration(id); err != nil {
			return err
		}
	}
	return nil
}

// Calibration returns the legit range of question id, or nil when the
// question is not calibrated.
func (c *Config) Calibration(id string) (*similarity.Calibration, error) {
	q, ok := c.Questions[id]
	if !ok || q.Legit == nil {
		return nil, nil
	}
	if len(q.Legit) != 2 {
		return nil, fmt.Errorf("%w: [questions.%s].legit must be [lo, hi], got %d values", ErrInvalid, id, len(q.Legit))
	}
	cal := similarity.Calibration{Lo: q.Legit[0], Hi: q.Legit[1]}
	if err := cal.Validate(); err != nil {
		return nil, fmt.Errorf("%w: [questions.%s]: %w", ErrInvalid, id, err)
	}
	return &cal, nil
}

// SanitizeOptions builds the pipeline options.
func (c *Config) SanitizeOptions() sanitize.Options {
	return sanitize.Options{
		Strategy:  c.Sanitize.Strategy,
		NoFold:    c.Sanitize.NoFold,
		NoJoin:    c.Sanitize.NoJoin,
		Sentinels: c.Sentinels.OrDefault(),
	}
}

// LintChecker returns the configured lint checker, or nil when disabled.
func (c *Config) LintChecker() checker.Checker {
	lc := c.Checkers.Lint
	if !lc.Enabled {
		return nil
	}
	return checker.NewLint(checker.LintOptions{Bin: lc.Bin, Codes: lc.Codes, Timeout: lc.Timeout})
}

// DeadCodeChecker returns the configured dead-code checker, or nil when disabled.
func (c *Config) DeadCodeChecker() checker.Checker {
	dc := c.Checkers.DeadCode
	if !dc.Enabled {
		return nil
	}
	return checker.NewDeadCode(checker.DeadCodeOptions{Bin: dc.Bin, Whitelist: dc.Whitelist, Timeout: dc.Timeout})
}
