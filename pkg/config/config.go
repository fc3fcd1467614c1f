// Package config holds the preprocessor settings read from book.toml.
//
// mdBook passes the table [preprocessor.<name>] to the preprocessor inside
// its JSON context; the standalone render command reads the same table from
// book.toml directly. Both decode into [Config]:
//
//	[preprocessor.graphviz]
//	info-string = "dot process"
//	output-to-file = false
//	arguments = ["-Tsvg"]
//	timeout = "30s"
//
//	[preprocessor.graphviz.theme]
//	fg = { placeholder = "#010101" }
//
// After decoding, call [Config.SetDefaults] with the preprocessor's
// [Preset], apply environment overrides and [Config.Validate].
package config

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/mdbook-svg/pkg/errors"
	"github.com/matzehuels/mdbook-svg/pkg/theme"
)

// =============================================================================
// Default Values
// =============================================================================

// Backends.
const (
	BackendProcess = "process"
	BackendNative  = "native"
)

const (
	// DefaultTimeout bounds one external render.
	DefaultTimeout = 30 * time.Second

	// DefaultCSSPath is where copy-css = true writes the stylesheet,
	// relative to the book root.
	DefaultCSSPath = "css/svg.css"

	// DefaultCache keeps rendered diagrams in memory for one run.
	DefaultCache = "memory"
)

// Preset holds the defaults that differ between preprocessors.
type Preset struct {
	Name       string   // table name under [preprocessor]
	InfoString string   // default marker
	Backend    string   // default backend
	Executable string   // default executable for the process backend
	Arguments  []string // default arguments for the process backend
}

// Presets for the shipped preprocessors.
var (
	Graphviz = Preset{
		Name:       "graphviz",
		InfoString: "dot process",
		Backend:    BackendProcess,
		Executable: "dot",
		Arguments:  []string{"-Tsvg"},
	}
	D2 = Preset{
		Name:       "d2",
		InfoString: "d2",
		Backend:    BackendNative,
	}
)

// =============================================================================
// Config
// =============================================================================

// Config is the decoded [preprocessor.<name>] table.
type Config struct {
	InfoString   string   `json:"info-string,omitempty" toml:"info-string"`
	OutputToFile bool     `json:"output-to-file,omitempty" toml:"output-to-file"`
	LinkToFile   bool     `json:"link-to-file,omitempty" toml:"link-to-file"`
	CopyCSS      CSSPath  `json:"copy-css,omitempty" toml:"copy-css"`
	Backend      string   `json:"backend,omitempty" toml:"backend"`
	Executable   string   `json:"executable,omitempty" toml:"executable"`
	Arguments    []string `json:"arguments,omitempty" toml:"arguments"`
	Timeout      Duration `json:"timeout,omitempty" toml:"timeout"`
	Workers      int      `json:"workers,omitempty" toml:"workers"`

	Theme theme.Mapping `json:"theme,omitempty" toml:"theme"`

	Cache    string `json:"cache,omitempty" toml:"cache"`
	CacheDir string `json:"cache-dir,omitempty" toml:"cache-dir"`

	D2 D2Options `json:"d2" toml:"d2"`

	// Ordering hints read by mdBook itself.
	After  []string `json:"after,omitempty" toml:"after"`
	Before []string `json:"before,omitempty" toml:"before"`
}

// D2Options configure the native d2 engine.
type D2Options struct {
	ThemeID     int64  `json:"theme-id,omitempty" toml:"theme-id"`
	DarkThemeID *int64 `json:"dark-theme-id,omitempty" toml:"dark-theme-id"`
	Layout      string `json:"layout,omitempty" toml:"layout"`
	Pad         *int64 `json:"pad,omitempty" toml:"pad"`
	Sketch      bool   `json:"sketch,omitempty" toml:"sketch"`
}

// DefaultD2Pad is the padding around a rendered d2 board.
const DefaultD2Pad int64 = 100

// Decode reads a preprocessor table from JSON. A missing table (nil or
// "null") yields the zero Config.
func Decode(raw json.RawMessage) (Config, error) {
	var c Config
	if len(raw) == 0 || string(raw) == "null" {
		return c, nil
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return c, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode preprocessor config")
	}
	return c, nil
}

// SetDefaults fills unset fields from p.
func (c *Config) SetDefaults(p Preset) {
	if c.InfoString == "" {
		c.InfoString = p.InfoString
	}
	if c.Backend == "" {
		c.Backend = p.Backend
	}
	if c.Executable == "" {
		c.Executable = p.Executable
	}
	if c.Arguments == nil {
		c.Arguments = append([]string(nil), p.Arguments...)
	}
	if c.Timeout == 0 {
		c.Timeout = Duration(DefaultTimeout)
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Cache == "" {
		c.Cache = DefaultCache
	}
	if c.D2.Layout == "" {
		c.D2.Layout = "dagre"
	}
	if c.D2.Pad == nil {
		pad := DefaultD2Pad
		c.D2.Pad = &pad
	}
}

// ApplyEnv overrides fields from environment variables read through getenv:
// MDBOOK_SVG_CACHE and MDBOOK_SVG_WORKERS.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv("MDBOOK_SVG_CACHE")); v != "" {
		c.Cache = v
	}
	if v := strings.TrimSpace(getenv("MDBOOK_SVG_WORKERS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return errors.New(errors.ErrCodeInvalidConfig, "MDBOOK_SVG_WORKERS must be a positive integer, got %q", v)
		}
		c.Workers = n
	}
	return nil
}

// Validate checks the config after defaults are applied.
func (c *Config) Validate() error {
	if err := errors.ValidateMarker(c.InfoString); err != nil {
		return err
	}
	switch c.Backend {
	case BackendProcess:
		if c.Executable == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "backend %q needs an executable", c.Backend)
		}
	case BackendNative:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "invalid backend: %q (must be one of: %s, %s)",
			c.Backend, BackendProcess, BackendNative)
	}
	if c.Timeout < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "timeout must not be negative")
	}
	if c.LinkToFile && !c.OutputToFile {
		return errors.New(errors.ErrCodeInvalidConfig, "link-to-file requires output-to-file")
	}
	if c.CopyCSS.Path != "" {
		if err := errors.ValidateChapterPath(c.CopyCSS.Path); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "copy-css")
		}
	}
	switch c.D2.Layout {
	case "dagre", "elk":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "invalid d2.layout: %q (must be one of: dagre, elk)", c.D2.Layout)
	}
	if _, err := theme.New(c.Theme); err != nil {
		return err
	}
	return nil
}

// HasOrderingHint reports whether the preprocessor is configured to run
// after name.
func (c *Config) HasOrderingHint(name string) bool {
	for _, a := range c.After {
		if a == name {
			return true
		}
	}
	return false
}

// String summarizes the settings that shape the output, for logs.
func (c Config) String() string {
	mode := "inline"
	if c.OutputToFile {
		mode = "file"
	}
	return fmt.Sprintf("marker=%q backend=%s mode=%s workers=%d cache=%s", c.InfoString, c.Backend, mode, c.Workers, c.Cache)
}
