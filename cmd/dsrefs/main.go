package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/standardbeagle/dsrefs/internal/config"
	"github.com/standardbeagle/dsrefs/internal/debug"
	"github.com/standardbeagle/dsrefs/internal/version"

	"github.com/urfave/cli/v2"
)

var Version = version.Version // Use centralized version management

func init() {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintln(c.App.Writer, version.FullInfo())
	}
}

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	rootFlag := c.String("root")
	if rootFlag != "" {
		// Convert to absolute path to ensure consistent path handling
		absRoot, err := filepath.Abs(rootFlag)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path %q: %w", rootFlag, err)
		}
		rootFlag = absRoot
	}

	var (
		cfg *config.Config
		err error
	)
	if configPath := c.String("config"); configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadWithRoot("", rootFlag)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if rootFlag != "" {
		cfg.Project.Root = rootFlag
	}
	if bundles := c.StringSlice("bundle"); len(bundles) > 0 {
		cfg.Workspace.Bundles = bundles
	}
	if sources := c.StringSlice("source"); len(sources) > 0 {
		cfg.Index.Sources = sources
	}
	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Exclude = append(cfg.Exclude, excludeFlags...)
	}
	if trace := c.StringSlice("trace"); len(trace) > 0 {
		cfg.Debug.Trace = append(cfg.Debug.Trace, trace...)
	}
	return cfg, nil
}

// setupDebug routes debug and trace output. The returned func closes a debug
// log file when one was opened.
func setupDebug(c *cli.Context, cfg *config.Config) func() {
	if !c.Bool("verbose") && len(cfg.Debug.Trace) == 0 && !cfg.Debug.LogFile {
		return func() {}
	}
	debug.EnableDebug = "true"
	debug.SetTraceOptions(cfg.Debug.Trace)

	if cfg.Debug.LogFile {
		path, err := debug.InitDebugLogFile()
		if err == nil {
			fmt.Fprintf(c.App.ErrWriter, "Debug log: %s\n", path)
			return func() { _ = debug.CloseDebugLog() }
		}
		log.Printf("WARNING: %v", err)
	}
	debug.SetDebugOutput(c.App.ErrWriter)
	return func() { debug.SetDebugOutput(nil) }
}

var queryFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "limit-to",
		Aliases: []string{"l"},
		Usage:   "references, all, declarations or implementors (default from config)",
	},
	&cli.BoolFlag{
		Name:    "case-sensitive",
		Aliases: []string{"s"},
		Usage:   "Match patterns case-sensitively",
	},
	&cli.BoolFlag{
		Name:    "json",
		Aliases: []string{"j"},
		Usage:   "Output as JSON",
	},
}

func newApp() *cli.App {
	return &cli.App{
		Name:                   "dsrefs",
		Usage:                  "Find Java classes and methods referenced from OSGi Declarative Services descriptors",
		Version:                Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (default: .dsrefs.kdl or .dsrefs.toml in the root)",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "bundle",
				Usage: "Bundle discovery patterns relative to the root (e.g., --bundle 'plugins/*.jar')",
			},
			&cli.StringSliceFlag{
				Name:  "source",
				Usage: "Java source folders or source jars to index (default: the root)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Limit the search scope to bundles matching glob patterns",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude paths matching glob patterns (e.g., --exclude '**/attic/**')",
			},
			&cli.StringSliceFlag{
				Name:  "trace",
				Usage: "Enable trace options (search, resolver, hierarchy, all)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Show debug information on stderr",
			},
			&cli.BoolFlag{
				Name:  "absolute",
				Usage: "Print absolute resource paths instead of paths relative to the root",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "search",
				Aliases:   []string{"s"},
				Usage:     "Search descriptors for a class or method name pattern",
				ArgsUsage: "<pattern>",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "search-for",
						Aliases: []string{"f"},
						Usage:   "type, class, interface, method, ... or unknown (default from config)",
					},
				}, queryFlags...),
				Action: searchCommand,
			},
			{
				Name:      "refs",
				Usage:     "Find descriptor references to a Java element",
				ArgsUsage: "<pkg.Type | pkg.Type#method(Params)>",
				Flags:     queryFlags,
				Action:    refsCommand,
			},
			{
				Name:  "resolve",
				Usage: "Show which method every component callback resolves to",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output as JSON",
					},
					&cli.BoolFlag{
						Name:  "unresolved",
						Usage: "Only list components with unresolved callbacks",
					},
					&cli.BoolFlag{
						Name:  "strict",
						Usage: "Exit with status 2 when a callback does not resolve",
					},
				},
				Action: resolveCommand,
			},
			{
				Name:      "watch",
				Aliases:   []string{"w"},
				Usage:     "Re-run a pattern search whenever bundles or sources change",
				ArgsUsage: "<pattern>",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "search-for",
						Aliases: []string{"f"},
						Usage:   "type, class, interface, method, ... or unknown (default from config)",
					},
				}, queryFlags...),
				Action: watchCommand,
			},
			{
				Name:  "config",
				Usage: "Show the effective configuration",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfigWithOverrides(c)
					if err != nil {
						return err
					}
					return writeJSON(c.App.Writer, cfg)
				},
			},
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		var unresolved *unresolvedError
		if errors.As(err, &unresolved) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
