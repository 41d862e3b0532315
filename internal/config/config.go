package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/standardbeagle/dsrefs/internal/types"
)

// Config file names looked up in the project root, in order.
const (
	KDLFileName  = ".dsrefs.kdl"
	TOMLFileName = ".dsrefs.toml"
)

// DefaultWatchDebounceMs is the quiet period before a watch re-runs a search
const DefaultWatchDebounceMs = 300

type Config struct {
	Version   int       `toml:"version"`
	Project   Project   `toml:"project"`
	Workspace Workspace `toml:"workspace"`
	Index     Index     `toml:"index"`
	Search    Search    `toml:"search"`
	Debug     Debug     `toml:"debug"`
	// Include limits the search scope to bundles whose path relative to the
	// project root matches; empty means every discovered bundle.
	Include []string `toml:"include"`
	// Exclude drops paths from bundle discovery and source indexing.
	Exclude []string `toml:"exclude"`
}

type Project struct {
	Root string `toml:"root"`
	Name string `toml:"name"`
}

// Workspace says where bundles are found.
type Workspace struct {
	Bundles []string `toml:"bundles"` // discovery patterns relative to the root
	Exclude []string `toml:"exclude"`
}

// Index controls the Java source index the resolver reads.
type Index struct {
	Sources            []string `toml:"sources"` // source folders or source jars; default the root
	Include            []string `toml:"include"`
	Exclude            []string `toml:"exclude"`
	Workers            int      `toml:"workers"` // 0 = auto-detect
	PlatformTypes      bool     `toml:"platform_types"`
	MaxFileSize        int64    `toml:"max_file_size"`
	MaxFileCount       int      `toml:"max_file_count"`
	RespectGitignore   bool     `toml:"respect_gitignore"`
	DetectBuildOutputs bool     `toml:"detect_build_outputs"`
	WatchDebounceMs    int      `toml:"watch_debounce_ms"`
}

// Search holds query defaults; command line flags override them.
type Search struct {
	CaseSensitive bool   `toml:"case_sensitive"`
	LimitTo       string `toml:"limit_to"`
	SearchFor     string `toml:"search_for"`
}

// Debug enables trace options, see the debug package.
type Debug struct {
	Trace   []string `toml:"trace"`
	LogFile bool     `toml:"log_file"`
}

// Default returns the configuration used when no file is found.
func Default(root string) *Config {
	return &Config{
		Version: 1,
		Project: Project{Root: root},
		Index: Index{
			PlatformTypes:      true,
			MaxFileSize:        types.DefaultMaxFileSize,
			MaxFileCount:       types.DefaultMaxFileCount,
			RespectGitignore:   true,
			DetectBuildOutputs: true,
			WatchDebounceMs:    DefaultWatchDebounceMs,
		},
		Search: Search{
			LimitTo:   "references",
			SearchFor: "unknown",
		},
		Include: []string{},
		Exclude: []string{},
	}
}

func Load(path string) (*Config, error) {
	return LoadWithRoot(path, "")
}

// LoadWithRoot loads the configuration for a project. An explicit path wins;
// otherwise .dsrefs.kdl then .dsrefs.toml are looked up in rootDir. A global
// ~/.dsrefs.kdl is merged underneath the project file. The result is
// validated and has defaults applied.
func LoadWithRoot(path string, rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}
	absDir, err := filepath.Abs(searchDir)
	if err != nil {
		absDir = searchDir
	}

	var baseConfig *Config
	if homeDir, err := os.UserHomeDir(); err == nil && filepath.Clean(homeDir) != absDir {
		if globalCfg, err := LoadKDL(homeDir); err == nil && globalCfg != nil {
			baseConfig = globalCfg
		}
	}

	var projectConfig *Config
	if path != "" {
		projectConfig, err = loadFile(path)
	} else {
		projectConfig, err = loadProject(absDir)
	}
	if err != nil {
		return nil, err
	}

	var cfg *Config
	switch {
	case baseConfig != nil && projectConfig != nil:
		cfg = mergeConfigs(baseConfig, projectConfig)
	case projectConfig != nil:
		cfg = projectConfig
	case baseConfig != nil:
		baseConfig.Project.Root = absDir
		cfg = baseConfig
	default:
		cfg = Default(absDir)
	}

	if cfg.Index.DetectBuildOutputs {
		cfg.EnrichExclusionsWithBuildArtifacts()
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadProject(dir string) (*Config, error) {
	if cfg, err := LoadKDL(dir); err != nil || cfg != nil {
		return cfg, err
	}
	return LoadTOML(dir)
}

// loadFile reads an explicitly named config file, picking the format by
// extension.
func loadFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg *Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		cfg, err = parseTOML(content)
	default:
		cfg, err = parseKDL(string(content))
	}
	if err != nil {
		return nil, err
	}
	resolveRoot(cfg, filepath.Dir(path))
	return cfg, nil
}

// resolveRoot makes the project root absolute, relative to the directory
// holding the config file.
func resolveRoot(cfg *Config, configDir string) {
	if cfg.Project.Root == "" {
		cfg.Project.Root = configDir
	} else if !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Join(configDir, cfg.Project.Root)
	}
	if abs, err := filepath.Abs(cfg.Project.Root); err == nil {
		cfg.Project.Root = abs
	}
	cfg.Project.Root = filepath.Clean(cfg.Project.Root)
}

// mergeConfigs merges a base config with a project config
// Project config takes precedence, but base exclusions are preserved
func mergeConfigs(base, project *Config) *Config {
	merged := *project

	if len(base.Exclude) > 0 {
		merged.Exclude = DeduplicatePatterns(append(append([]string(nil), base.Exclude...), project.Exclude...))
	}
	if len(base.Index.Exclude) > 0 {
		merged.Index.Exclude = DeduplicatePatterns(append(append([]string(nil), base.Index.Exclude...), project.Index.Exclude...))
	}

	// Inclusions and trace options: project overrides base completely if specified
	if len(project.Include) == 0 && len(base.Include) > 0 {
		merged.Include = base.Include
	}
	if len(project.Debug.Trace) == 0 && len(base.Debug.Trace) > 0 {
		merged.Debug.Trace = base.Debug.Trace
	}

	return &merged
}

// SourceRoots returns the absolute source roots to index.
func (c *Config) SourceRoots() []string {
	if len(c.Index.Sources) == 0 {
		return []string{c.Project.Root}
	}
	out := make([]string, 0, len(c.Index.Sources))
	for _, s := range c.Index.Sources {
		if !filepath.IsAbs(s) {
			s = filepath.Join(c.Project.Root, s)
		}
		out = append(out, filepath.Clean(s))
	}
	return out
}

// BundleExclude returns the exclusions applied to bundle discovery.
func (c *Config) BundleExclude() []string {
	return DeduplicatePatterns(append(append([]string(nil), c.Exclude...), c.Workspace.Exclude...))
}

// SourceExclude returns the exclusions applied to source indexing.
func (c *Config) SourceExclude() []string {
	return DeduplicatePatterns(append(append([]string(nil), c.Exclude...), c.Index.Exclude...))
}

// EnrichExclusionsWithBuildArtifacts detects build output directories from
// Java build files and excludes them from source indexing
func (c *Config) EnrichExclusionsWithBuildArtifacts() {
	if c.Project.Root == "" {
		return
	}

	detector := NewBuildArtifactDetector(c.Project.Root)
	if detected := detector.DetectOutputDirectories(); len(detected) > 0 {
		c.Index.Exclude = DeduplicatePatterns(append(c.Index.Exclude, detected...))
	}
}
