package bundle

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Manifest holds the main section headers of a jar manifest.
// Lookups ignore case as header names do.
type Manifest map[string]string

// Get returns the header value and whether it was present.
func (m Manifest) Get(name string) (string, bool) {
	v, ok := m[strings.ToLower(name)]
	return v, ok
}

// ParseManifest reads "Name: value" headers up to the first blank line.
// Lines starting with a space continue the previous header value.
func ParseManifest(r io.Reader) (Manifest, error) {
	m := make(Manifest)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)

	var name string
	var value strings.Builder
	flush := func() {
		if name != "" {
			m[strings.ToLower(name)] = value.String()
		}
		name = ""
		value.Reset()
	}

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if line == "" {
			if len(m) > 0 || name != "" {
				break
			}
			continue
		}
		if strings.HasPrefix(line, " ") {
			if name == "" {
				return nil, fmt.Errorf("line %d: continuation without header", lineNo)
			}
			value.WriteString(line[1:])
			continue
		}

		flush()
		key, val, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("line %d: invalid header %q", lineNo, line)
		}
		name = strings.TrimSpace(key)
		value.WriteString(strings.TrimPrefix(val, " "))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return m, nil
}
