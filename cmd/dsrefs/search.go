package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/standardbeagle/dsrefs/internal/config"
	"github.com/standardbeagle/dsrefs/internal/search"
	"github.com/standardbeagle/dsrefs/internal/types"
	"github.com/standardbeagle/dsrefs/pkg/pathutil"

	"github.com/urfave/cli/v2"
)

// queryFromFlags fills the query settings shared by search, refs and watch;
// flags win over the config defaults.
func queryFromFlags(c *cli.Context, cfg *config.Config) (search.Query, error) {
	var q search.Query

	limit := cfg.Search.LimitTo
	if c.IsSet("limit-to") {
		limit = c.String("limit-to")
	}
	l, err := search.ParseLimitTo(limit)
	if err != nil {
		return q, err
	}
	q.LimitTo = l

	kind := cfg.Search.SearchFor
	if c.IsSet("search-for") {
		kind = c.String("search-for")
	}
	if kind != "" {
		sf, err := search.ParseSearchFor(kind)
		if err != nil {
			return q, err
		}
		q.SearchFor = sf
	}

	q.CaseSensitive = cfg.Search.CaseSensitive || c.Bool("case-sensitive")
	return q, nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return errors.New("usage: dsrefs search <pattern>")
	}
	return runQuery(c, func(ws *workspace, q *search.Query) error {
		q.Pattern = c.Args().First()
		return nil
	})
}

func refsCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return errors.New("usage: dsrefs refs <pkg.Type | pkg.Type#method(Params)>")
	}
	return runQuery(c, func(ws *workspace, q *search.Query) error {
		el, err := search.ParseElement(ws.index, c.Args().First())
		if err != nil {
			return err
		}
		q.Element = el
		return nil
	})
}

// runQuery loads the workspace, lets prepare fill in the query target and
// prints the matches
func runQuery(c *cli.Context, prepare func(*workspace, *search.Query) error) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	defer setupDebug(c, cfg)()

	q, err := queryFromFlags(c, cfg)
	if err != nil {
		return err
	}

	ws, err := openWorkspace(c.Context, cfg, nil)
	if err != nil {
		return err
	}
	if err := prepare(ws, &q); err != nil {
		return err
	}
	q.Scope = ws.scope

	_, err = runSearch(c, ws, q, c.Bool("json"))
	return err
}

// runSearch executes q and writes its matches; text output is streamed
// as matches are reported
func runSearch(c *cli.Context, ws *workspace, q search.Query, asJSON bool) (int, error) {
	start := time.Now()
	out := c.App.Writer
	progress := progressFor(c.Bool("verbose"), func(location string) {
		fmt.Fprintf(c.App.ErrWriter, "Searching %s\n", location)
	})

	root := displayRoot(c, ws)

	var req search.Requestor
	collector := &search.Collector{}
	if asJSON {
		req = collector
	} else {
		req = search.RequestorFunc(func(m types.Match) {
			collector.ReportMatch(m)
			m.Resource = pathutil.ToRelative(m.Resource, root)
			printMatch(out, m)
		})
	}

	if err := ws.engine.Search(c.Context, q, req, progress); err != nil {
		return collector.Len(), err
	}

	if asJSON {
		matches := pathutil.RelativeMatches(collector.Matches(), root)
		if matches == nil {
			matches = []types.Match{}
		}
		return len(matches), writeJSON(out, matches)
	}
	fmt.Fprintf(c.App.ErrWriter, "%d matches for %s in %d bundles (%.1fms)\n",
		collector.Len(), q, ws.scope.Len(), float64(time.Since(start).Microseconds())/1000.0)
	return collector.Len(), nil
}

// displayRoot is the directory printed resources are made relative to, empty
// when --absolute is set
func displayRoot(c *cli.Context, ws *workspace) string {
	if c.Bool("absolute") {
		return ""
	}
	return ws.cfg.Project.Root
}

func printMatch(w io.Writer, m types.Match) {
	if m.Target != "" {
		fmt.Fprintf(w, "%s  -> %s\n", m, m.Target)
		return
	}
	fmt.Fprintln(w, m)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
