package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	dserrors "github.com/standardbeagle/dsrefs/internal/errors"
	"github.com/standardbeagle/dsrefs/internal/search"
	"github.com/standardbeagle/dsrefs/pkg/pathutil"

	"github.com/urfave/cli/v2"
)

// unresolvedError is returned by resolve --strict
type unresolvedError struct {
	count   int
	skipped int
}

func (e *unresolvedError) Error() string {
	if e.skipped > 0 {
		return fmt.Sprintf("%d callbacks did not resolve, %d bundles or descriptors skipped", e.count, e.skipped)
	}
	return fmt.Sprintf("%d callbacks did not resolve", e.count)
}

func resolveCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	defer setupDebug(c, cfg)()

	ws, err := openWorkspace(c.Context, cfg, nil)
	if err != nil {
		return err
	}

	progress := progressFor(c.Bool("verbose"), func(location string) {
		fmt.Fprintf(c.App.ErrWriter, "Resolving %s\n", location)
	})
	reports, err := ws.engine.Resolve(c.Context, ws.scope, progress)
	if err != nil {
		return err
	}

	reports = pathutil.RelativeReports(reports, displayRoot(c, ws))

	unresolved := 0
	shown := reports[:0:0]
	for _, r := range reports {
		n := r.Unresolved()
		unresolved += n
		if !c.Bool("unresolved") || n > 0 {
			shown = append(shown, r)
		}
	}

	if c.Bool("json") {
		if shown == nil {
			shown = []search.ComponentReport{}
		}
		if err := writeJSON(c.App.Writer, shown); err != nil {
			return err
		}
	} else {
		for _, r := range shown {
			printReport(c.App.Writer, r)
		}
		fmt.Fprintf(c.App.ErrWriter, "%d components, %d unresolved callbacks\n", len(reports), unresolved)
	}

	if !c.Bool("strict") {
		return nil
	}
	skipped := skippedErrors(ws.engine.Skipped())
	for _, err := range skipped {
		fmt.Fprintf(c.App.ErrWriter, "skipped: %v\n", err)
	}
	if unresolved > 0 || len(skipped) > 0 {
		return &unresolvedError{count: unresolved, skipped: len(skipped)}
	}
	return nil
}

// skippedErrors flattens the engine's skip report
func skippedErrors(err error) []error {
	var multi *dserrors.MultiError
	if errors.As(err, &multi) {
		return multi.Errors
	}
	if err != nil {
		return []error{err}
	}
	return nil
}

func printReport(w io.Writer, r search.ComponentReport) {
	name := r.Name
	if name == "" {
		name = "<unnamed>"
	}
	fmt.Fprintf(w, "%s [%s] %s\n", name, r.Bundle, r.Resource)

	if !r.Found {
		fmt.Fprintf(w, "  implementation %s not found", r.Implementation)
		if len(r.Suggestions) > 0 {
			fmt.Fprintf(w, " (did you mean %s?)", strings.Join(r.Suggestions, ", "))
		}
		fmt.Fprintln(w)
	} else {
		fmt.Fprintf(w, "  implementation %s\n", r.Implementation)
	}

	for _, cb := range r.Callbacks {
		label := cb.Kind
		if cb.Reference != "" {
			label += " " + cb.Reference
		}
		declared := ""
		if !cb.Declared {
			declared = " (default)"
		}
		if cb.Resolved == "" {
			fmt.Fprintf(w, "  %-10s %s%s at %d:%d -> unresolved\n", label, cb.Method, declared, cb.Line, cb.Column)
			continue
		}
		fmt.Fprintf(w, "  %-10s %s%s at %d:%d -> %s [rank %d, %s]\n",
			label, cb.Method, declared, cb.Line, cb.Column, cb.Resolved, cb.Rank, cb.Rule)
	}
}
