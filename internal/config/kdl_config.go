package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL attempts to load configuration from the .dsrefs.kdl file in projectRoot
func LoadKDL(projectRoot string) (*Config, error) {
	kdlPath := filepath.Join(projectRoot, KDLFileName)

	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil // No KDL config found, use defaults
	}

	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %v", KDLFileName, err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, err
	}

	// Relative roots are relative to the directory containing the config file
	resolveRoot(cfg, projectRoot)
	return cfg, nil
}

// parseKDL reads a configuration document on top of the defaults:
//
//	project { root "."; name "demo" }
//	workspace { bundles "**/META-INF/MANIFEST.MF" "plugins/*.jar"; exclude "target/**" }
//	index { sources "src" "lib/api-sources.jar"; workers 4; max_file_size "2MB" }
//	search { case_sensitive false; limit_to "references"; search_for "method" }
//	include "bundles/**"
//	exclude { "**/old/**" }
//	debug { trace "search" "resolver" }
func parseKDL(content string) (*Config, error) {
	cfg := Default("")

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "version":
			if v, ok := firstIntArg(n); ok {
				cfg.Version = v
			}
		case "project":
			for _, cn := range n.Children { // project { root "." name "foo" }
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "workspace":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "bundles":
					cfg.Workspace.Bundles = append(cfg.Workspace.Bundles, collectStringArgs(cn)...)
				case "exclude":
					cfg.Workspace.Exclude = append(cfg.Workspace.Exclude, collectStringArgs(cn)...)
				}
			}
		case "index":
			parseIndexNode(cfg, n)
		case "search":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "case_sensitive":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Search.CaseSensitive = b
					}
				case "limit_to":
					if s, ok := firstStringArg(cn); ok {
						cfg.Search.LimitTo = s
					}
				case "search_for":
					if s, ok := firstStringArg(cn); ok {
						cfg.Search.SearchFor = s
					}
				}
			}
		case "debug":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "trace":
					cfg.Debug.Trace = append(cfg.Debug.Trace, collectStringArgs(cn)...)
				case "log_file":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Debug.LogFile = b
					}
				}
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			cfg.Exclude = append(cfg.Exclude, collectStringArgs(n)...)
		default:
			log.Printf("WARNING: unknown section '%s' in KDL config", nodeName(n))
		}
	}

	return cfg, nil
}

func parseIndexNode(cfg *Config, n *document.Node) {
	for _, cn := range n.Children {
		switch name := nodeName(cn); name {
		case "sources":
			cfg.Index.Sources = append(cfg.Index.Sources, collectStringArgs(cn)...)
		case "include":
			cfg.Index.Include = append(cfg.Index.Include, collectStringArgs(cn)...)
		case "exclude":
			cfg.Index.Exclude = append(cfg.Index.Exclude, collectStringArgs(cn)...)
		case "max_file_size":
			if v, ok := firstIntArg(cn); ok {
				cfg.Index.MaxFileSize = int64(v)
			}
			if s, ok := firstStringArg(cn); ok {
				if sz, err := parseSize(s); err == nil {
					cfg.Index.MaxFileSize = sz
				} else {
					log.Printf("WARNING: invalid size '%s' for '%s' in KDL config", s, name)
				}
			}
		default:
			if s, ok := firstScalarArg(cn); ok {
				parseIndexSection(cfg, name, s)
			}
		}
	}
}

// Helper functions leveraging kdl-go document model
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}
func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}
func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

// firstScalarArg renders the first argument as text whatever its KDL type
func firstScalarArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	switch v := n.Arguments[0].Value.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatInt(int64(v), 10), true
	default:
		log.Printf("WARNING: invalid value for '%s' in KDL config, got %T", nodeName(n), v)
		return "", false
	}
}
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	// First try to collect from arguments (for inline format)
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	// If no arguments, collect from children (for block format like exclude { "pattern" })
	// In KDL block format, strings are child nodes where the node name is the string value
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}

	return out
}
func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

// parseIndexSection applies one scalar index setting
func parseIndexSection(cfg *Config, key, value string) {
	switch key {
	case "workers":
		if n, err := strconv.Atoi(value); err == nil {
			cfg.Index.Workers = n
		}
	case "max_file_count":
		if count, err := strconv.Atoi(value); err == nil {
			cfg.Index.MaxFileCount = count
		}
	case "watch_debounce_ms":
		if ms, err := strconv.Atoi(value); err == nil {
			cfg.Index.WatchDebounceMs = ms
		}
	case "platform_types":
		cfg.Index.PlatformTypes = parseBool(value)
	case "respect_gitignore":
		cfg.Index.RespectGitignore = parseBool(value)
	case "detect_build_outputs":
		cfg.Index.DetectBuildOutputs = parseBool(value)
	default:
		log.Printf("WARNING: unknown index setting '%s' in KDL config", key)
	}
}

// parseSize handles size strings like "10MB", "500KB", "1GB"
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		multiplier = 1
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	num, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return 0, err
	}

	return num * multiplier, nil
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "yes" || s == "1" || s == "on"
}
