// Package config resolves the settings of a repair run from defaults, an
// optional configuration file and command-line flags, in that order of
// precedence.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/roach88/rsrepair/internal/reconcile"
)

//go:embed schema.cue
var schemaSource string

// Defaults.
const (
	DefaultDB       = "rsrepair.db"
	DefaultStrategy = reconcile.StrategyAsk
	DefaultFallback = "skip"
	DefaultFormat   = "text"
)

// ValidFormats are the accepted --format values.
var ValidFormats = []string{"text", "json"}

// File is a decoded configuration file. Nil fields were not set.
type File struct {
	DB       *string `json:"db,omitempty"`
	Strategy *string `json:"strategy,omitempty"`
	Fallback *string `json:"fallback,omitempty"`
	DryRun   *bool   `json:"dry_run,omitempty"`
	Verbose  *bool   `json:"verbose,omitempty"`
	Format   *string `json:"format,omitempty"`
}

// Load reads a .yaml, .yml or .toml configuration file and validates it
// against the configuration schema.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	f, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes configuration data. ext selects the syntax: ".yaml", ".yml"
// or ".toml".
func Parse(data []byte, ext string) (*File, error) {
	raw := map[string]any{}
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse YAML: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, fmt.Errorf("parse TOML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension %q: use .yaml, .yml or .toml", ext)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return validate(raw)
}

// validate unifies raw with #Config. The definition is closed, so unknown
// keys are rejected along with out-of-range values.
func validate(raw map[string]any) (*File, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	value := def.Unify(ctx.Encode(raw))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("invalid config: %s", cueerrors.Details(err, nil))
	}

	var f File
	if err := value.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &f, nil
}

// Overrides are the flags given explicitly on the command line. Nil fields
// were not given and leave the file value or default in place.
type Overrides struct {
	DB       *string
	Strategy *string
	Fallback *string
	DryRun   *bool
	NoDryRun *bool
	Verbose  *bool
	Format   *string
}

// Settings are the resolved run settings.
type Settings struct {
	DB           string
	StrategyName string

	// Strategy is nil for the ask strategy.
	Strategy *reconcile.Strategy
	Fallback reconcile.Fallback

	// DryRun defaults to true; only --no-dryrun or dry_run: false turns it off.
	DryRun  bool
	Verbose bool
	Format  string
}

// Resolve applies f (which may be nil) and then o over the defaults.
func Resolve(f *File, o Overrides) (Settings, error) {
	if o.DryRun != nil && *o.DryRun && o.NoDryRun != nil && *o.NoDryRun {
		return Settings{}, fmt.Errorf("--dry-run and --no-dryrun cannot be used together")
	}

	db, strategy, fallback, format := DefaultDB, DefaultStrategy, DefaultFallback, DefaultFormat
	dryRun, verbose := true, false
	if f != nil {
		set(&db, f.DB)
		set(&strategy, f.Strategy)
		set(&fallback, f.Fallback)
		set(&dryRun, f.DryRun)
		set(&verbose, f.Verbose)
		set(&format, f.Format)
	}
	set(&db, o.DB)
	set(&strategy, o.Strategy)
	set(&fallback, o.Fallback)
	set(&dryRun, o.DryRun)
	if o.NoDryRun != nil && *o.NoDryRun {
		dryRun = false
	}
	set(&verbose, o.Verbose)
	set(&format, o.Format)

	if db == "" {
		return Settings{}, fmt.Errorf("database path must not be empty")
	}
	if !isValidFormat(format) {
		return Settings{}, fmt.Errorf("invalid format %q: must be one of %v", format, ValidFormats)
	}
	fb, err := reconcile.ParseFallback(fallback)
	if err != nil {
		return Settings{}, err
	}
	s, err := reconcile.ParseStrategy(strategy, fb)
	if err != nil {
		return Settings{}, err
	}

	return Settings{
		DB:           db,
		StrategyName: strategy,
		Strategy:     s,
		Fallback:     fb,
		DryRun:       dryRun,
		Verbose:      verbose,
		Format:       format,
	}, nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
