package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dlhxzb/mini-lsm/pkg/lsm"
)

// validate is a package-level singleton, matching the teacher's
// convention of a single shared *validator.Validate rather than one
// per call.
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// FileConfig is the on-disk shape of an engine configuration file:
// the storage root plus the Options the engine is opened with. Field
// names follow Options but with snake_case yaml tags and validation
// bounds a human-edited file should respect.
type FileConfig struct {
	Path               string `yaml:"path" validate:"required"`
	BlockSize          int    `yaml:"block_size" validate:"omitempty,min=256"`
	MemTableSizeLimit  int    `yaml:"memtable_size_limit" validate:"omitempty,min=1024"`
	BlockCacheCapacity int    `yaml:"block_cache_capacity" validate:"omitempty,min=1"`
	EnableCompression  bool   `yaml:"enable_compression"`
	BloomBitsPerKey    uint   `yaml:"bloom_bits_per_key" validate:"omitempty,max=30"`
}

// DefaultFileConfig returns the configuration used when a caller
// supplies no file, mirroring lsm.DefaultOptions.
func DefaultFileConfig(path string) FileConfig {
	defaults := lsm.DefaultOptions()
	return FileConfig{
		Path:               path,
		BlockSize:          defaults.BlockSize,
		MemTableSizeLimit:  defaults.MemTableSizeLimit,
		BlockCacheCapacity: defaults.BlockCacheCapacity,
		EnableCompression:  defaults.EnableCompression,
		BloomBitsPerKey:    defaults.BloomBitsPerKey,
	}
}

// Validate checks FileConfig against its struct tags; no cross-field
// checks are made.
func (c *FileConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ToOptions converts a validated FileConfig into lsm.Options.
func (c FileConfig) ToOptions() lsm.Options {
	return lsm.Options{
		BlockSize:          c.BlockSize,
		MemTableSizeLimit:  c.MemTableSizeLimit,
		BlockCacheCapacity: c.BlockCacheCapacity,
		EnableCompression:  c.EnableCompression,
		BloomBitsPerKey:    c.BloomBitsPerKey,
	}
}

// Load reads path as YAML into a FileConfig, validates it, and
// returns the equivalent lsm.Options plus the storage root it names.
func Load(path string) (storagePath string, options lsm.Options, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", lsm.Options{}, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := DefaultFileConfig("")
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return "", lsm.Options{}, fmt.Errorf("config: parse %q: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return "", lsm.Options{}, fmt.Errorf("config: invalid %q: %w", path, err)
	}

	return cfg.Path, cfg.ToOptions(), nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if ok := asValidationErrors(err, &verrs); !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("config: %v", msgs)
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	*target = verrs
	return true
}
