package bundle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseManifest(t *testing.T) {
	src := "Manifest-Version: 1.0\r\n" +
		"Bundle-SymbolicName: com.example.greeter;singleton:=true\r\n" +
		"Service-Component: OSGI-INF/greeter.xml, OSGI-INF/lo\r\n" +
		" gger.xml\r\n" +
		"bundle-version: 1.2.3\r\n" +
		"\r\n" +
		"Name: com/example/Foo.class\r\n" +
		"SHA-256-Digest: abc\r\n"

	m, err := ParseManifest(strings.NewReader(src))
	require.NoError(t, err)

	v, ok := m.Get("Service-Component")
	require.True(t, ok)
	assert.Equal(t, "OSGI-INF/greeter.xml, OSGI-INF/logger.xml", v)

	v, ok = m.Get("Bundle-Version")
	assert.True(t, ok)
	assert.Equal(t, "1.2.3", v)

	_, ok = m.Get("SHA-256-Digest")
	assert.False(t, ok, "per-entry sections are not part of the main section")
}

func TestParseManifest_Errors(t *testing.T) {
	_, err := ParseManifest(strings.NewReader(" continued\n"))
	assert.Error(t, err)

	_, err = ParseManifest(strings.NewReader("no colon here\n"))
	assert.Error(t, err)
}

func TestParseManifest_LeadingBlankLines(t *testing.T) {
	m, err := ParseManifest(strings.NewReader("\ufeff\n\nBundle-SymbolicName: a\n"))
	require.NoError(t, err)
	v, _ := m.Get(HeaderSymbolicName)
	assert.Equal(t, "a", v)
}
