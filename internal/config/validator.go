package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"

	dserrors "github.com/standardbeagle/dsrefs/internal/errors"
	"github.com/standardbeagle/dsrefs/internal/search"
)

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults
// Returns an error if validation fails
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validateProjectConfig(&cfg.Project); err != nil {
		return dserrors.NewConfigError("project", cfg.Project.Root, err)
	}

	if err := v.validateIndexConfig(&cfg.Index); err != nil {
		return dserrors.NewConfigError("index", "", err)
	}

	if err := v.validateSearchConfig(&cfg.Search); err != nil {
		return dserrors.NewConfigError("search", "", err)
	}

	v.setSmartDefaults(cfg)
	return nil
}

// validateProjectConfig validates project configuration
func (v *Validator) validateProjectConfig(project *Project) error {
	if project.Root == "" {
		return errors.New("project root cannot be empty")
	}
	return nil
}

// validateIndexConfig validates index configuration
func (v *Validator) validateIndexConfig(index *Index) error {
	if index.MaxFileSize <= 0 {
		return fmt.Errorf("MaxFileSize must be positive, got %d", index.MaxFileSize)
	}

	if index.MaxFileSize > 100*1024*1024 {
		return fmt.Errorf("MaxFileSize should not exceed 100MB, got %d", index.MaxFileSize)
	}

	if index.MaxFileCount <= 0 {
		return fmt.Errorf("MaxFileCount must be positive, got %d", index.MaxFileCount)
	}

	// Workers: 0 means auto-detect (will be set by smart defaults)
	if index.Workers < 0 {
		return fmt.Errorf("Workers cannot be negative, got %d", index.Workers)
	}

	if index.WatchDebounceMs < 0 {
		return fmt.Errorf("WatchDebounceMs cannot be negative, got %d", index.WatchDebounceMs)
	}

	return nil
}

// validateSearchConfig checks the query defaults parse
func (v *Validator) validateSearchConfig(s *Search) error {
	if s.LimitTo != "" {
		if _, err := search.ParseLimitTo(s.LimitTo); err != nil {
			return err
		}
	}
	if s.SearchFor != "" {
		if _, err := search.ParseSearchFor(s.SearchFor); err != nil {
			return err
		}
	}
	return nil
}

// setSmartDefaults applies smart defaults based on system capabilities
func (v *Validator) setSmartDefaults(cfg *Config) {
	if cfg.Project.Name == "" {
		cfg.Project.Name = filepath.Base(cfg.Project.Root)
	}

	// Use cores-1 to leave headroom for the system, minimum of 1
	if cfg.Index.Workers == 0 {
		cfg.Index.Workers = max(1, runtime.NumCPU()-1)
	}

	if cfg.Index.WatchDebounceMs == 0 {
		cfg.Index.WatchDebounceMs = DefaultWatchDebounceMs
	}

	if cfg.Search.LimitTo == "" {
		cfg.Search.LimitTo = "references"
	}
	if cfg.Search.SearchFor == "" {
		cfg.Search.SearchFor = "unknown"
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	validator := NewValidator()
	return validator.ValidateAndSetDefaults(cfg)
}
