package bundle

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/dsrefs/internal/debug"
	"github.com/standardbeagle/dsrefs/internal/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func writeJar(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func descriptorPaths(ds []Descriptor) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Path
	}
	return out
}

func TestOpen_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ManifestPath),
		"Bundle-SymbolicName: com.example.greeter; singleton:=true\n"+
			"Bundle-Version: 1.0.0\n"+
			"Service-Component: OSGI-INF/b.xml ,OSGI-INF/*.xml,, /OSGI-INF/a.xml, OSGI-INF/missing.xml, OSGI-INF/none/*.xml\n")
	writeFile(t, filepath.Join(dir, "OSGI-INF/a.xml"), "<component/>")
	writeFile(t, filepath.Join(dir, "OSGI-INF/b.xml"), "<component/>")
	writeFile(t, filepath.Join(dir, "OSGI-INF/notes.txt"), "x")
	writeFile(t, filepath.Join(dir, "OSGI-INF/sub/c.xml"), "<component/>")

	b, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, "com.example.greeter", b.SymbolicName)
	assert.Equal(t, "1.0.0", b.Version)
	assert.False(t, b.IsArchive())

	assert.Equal(t, []string{"OSGI-INF/b.xml", "OSGI-INF/*.xml", "/OSGI-INF/a.xml", "OSGI-INF/missing.xml", "OSGI-INF/none/*.xml"}, b.ServiceComponents())

	ds, err := b.Descriptors()
	require.NoError(t, err)
	assert.Equal(t, []string{"OSGI-INF/b.xml", "OSGI-INF/a.xml"}, descriptorPaths(ds))
	assert.Equal(t, filepath.Join(dir, "OSGI-INF", "b.xml"), ds[0].Resource)

	content, err := ds[1].Read()
	require.NoError(t, err)
	assert.Equal(t, "<component/>", string(content))

	// a manifest path opens its bundle
	b2, err := Open(filepath.Join(dir, ManifestPath))
	require.NoError(t, err)
	assert.Equal(t, dir, b2.Location)
}

func TestOpen_Jar(t *testing.T) {
	jar := filepath.Join(t.TempDir(), "greeter.jar")
	writeJar(t, jar, map[string]string{
		ManifestPath:               "Bundle-SymbolicName: com.example.jar\nService-Component: OSGI-INF/comp-*.xml, OSGI-INF/extra.xml\n",
		"OSGI-INF/comp-one.xml":    "<component name='one'/>",
		"OSGI-INF/comp-two.xml":    "<component name='two'/>",
		"OSGI-INF/other.xml":       "<component/>",
		"OSGI-INF/deep/comp-x.xml": "<component/>",
	})

	b, err := Open(jar)
	require.NoError(t, err)
	assert.True(t, b.IsArchive())

	ds, err := b.Descriptors()
	require.NoError(t, err)
	assert.Equal(t, []string{"OSGI-INF/comp-one.xml", "OSGI-INF/comp-two.xml"}, descriptorPaths(ds))
	assert.Equal(t, jar+"!/OSGI-INF/comp-one.xml", ds[0].Resource)

	content, err := ds[1].Read()
	require.NoError(t, err)
	assert.Equal(t, "<component name='two'/>", string(content))
}

func TestOpen_NotBundle(t *testing.T) {
	plain := t.TempDir()
	_, err := Open(plain)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNotBundle)

	noName := t.TempDir()
	writeFile(t, filepath.Join(noName, ManifestPath), "Manifest-Version: 1.0\n")
	_, err = Open(noName)
	assert.ErrorIs(t, err, errors.ErrNotBundle)

	jar := filepath.Join(t.TempDir(), "lib.jar")
	writeJar(t, jar, map[string]string{"a/B.class": "x"})
	_, err = Open(jar)
	assert.ErrorIs(t, err, errors.ErrNotBundle)

	_, err = Open(filepath.Join(plain, "missing"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, errors.ErrNotBundle)
}

func TestDescriptors_NoHeader(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ManifestPath), "Bundle-SymbolicName: a\n")

	b, err := Open(dir)
	require.NoError(t, err)
	assert.Nil(t, b.ServiceComponents())

	ds, err := b.Descriptors()
	require.NoError(t, err)
	assert.Empty(t, ds)
}

func TestDescriptors_FilenameFilterIsLiteralExceptStar(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ManifestPath), "Bundle-SymbolicName: a\nService-Component: OSGI-INF/[ab]?*.xml\n")
	writeFile(t, filepath.Join(dir, "OSGI-INF/[ab]?-1.xml"), "<component/>")
	writeFile(t, filepath.Join(dir, "OSGI-INF/a1.xml"), "<component/>")

	b, err := Open(dir)
	require.NoError(t, err)
	ds, err := b.Descriptors()
	require.NoError(t, err)
	assert.Equal(t, []string{"OSGI-INF/[ab]?-1.xml"}, descriptorPaths(ds))
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "bundles/a/META-INF/MANIFEST.MF"), "Bundle-SymbolicName: a\n")
	writeFile(t, filepath.Join(root, "bundles/b/META-INF/MANIFEST.MF"), "Bundle-SymbolicName: b\n")
	writeFile(t, filepath.Join(root, "target/c/META-INF/MANIFEST.MF"), "Bundle-SymbolicName: c\n")
	writeJar(t, filepath.Join(root, "lib/d.jar"), map[string]string{ManifestPath: "Bundle-SymbolicName: d\n"})

	got, err := Discover(root, nil, []string{"target/**"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "bundles/a"),
		filepath.Join(root, "bundles/b"),
		filepath.Join(root, "lib/d.jar"),
	}, got)

	got, err = Discover(root, []string{"lib/*.jar"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "lib/d.jar")}, got)

	_, err = Discover(filepath.Join(root, "missing"), nil, nil)
	assert.Error(t, err)
}

func TestDiscoverWith(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a/META-INF/MANIFEST.MF"), "Bundle-SymbolicName: a\n")
	writeFile(t, filepath.Join(root, "ignored/b/META-INF/MANIFEST.MF"), "Bundle-SymbolicName: b\n")

	var visited []string
	got, err := DiscoverWith(root, nil, func(rel string, isDir bool) bool {
		if isDir {
			visited = append(visited, rel)
		}
		return rel == "ignored"
	})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a")}, got)
	assert.NotContains(t, visited, "ignored/b")

	got, err = DiscoverWith(root, nil, nil)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

// captureTrace routes search trace output to a buffer for the test
func captureTrace(t *testing.T) *bytes.Buffer {
	t.Helper()
	t.Setenv(debug.TraceEnv, "")
	original := debug.EnableDebug
	var buf bytes.Buffer
	debug.EnableDebug = "true"
	debug.SetDebugOutput(&buf)
	debug.SetTraceOptions([]string{"search"})
	t.Cleanup(func() {
		debug.EnableDebug = original
		debug.SetDebugOutput(nil)
		debug.SetTraceOptions(nil)
	})
	return &buf
}

func TestDescriptors_MissingFolderTraced(t *testing.T) {
	buf := captureTrace(t)
	header := "Bundle-SymbolicName: a\nService-Component: OSGI-INF/missing/*.xml, OSGI-INF/a.xml\n"

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ManifestPath), header)
	writeFile(t, filepath.Join(dir, "OSGI-INF/a.xml"), "<component/>")

	b, err := Open(dir)
	require.NoError(t, err)
	ds, err := b.Descriptors()
	require.NoError(t, err)
	assert.Equal(t, []string{"OSGI-INF/a.xml"}, descriptorPaths(ds))
	assert.Contains(t, buf.String(), "Descriptor folder does not exist: "+filepath.Join(dir, "OSGI-INF", "missing")+": ")

	buf.Reset()
	jar := filepath.Join(t.TempDir(), "a.jar")
	writeJar(t, jar, map[string]string{ManifestPath: header, "OSGI-INF/a.xml": "<component/>"})

	b, err = Open(jar)
	require.NoError(t, err)
	ds, err = b.Descriptors()
	require.NoError(t, err)
	assert.Equal(t, []string{"OSGI-INF/a.xml"}, descriptorPaths(ds))
	assert.Contains(t, buf.String(), "Descriptor folder does not exist: "+jar+"!/OSGI-INF/missing: file does not exist")
}
