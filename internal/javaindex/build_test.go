package javaindex

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/dsrefs/internal/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func writeSourceJar(t *testing.T, path string, entries map[string]string) {
	t.Helper()
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

func TestBuild(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "bundle.a/src/com/a/Base.java"), "package com.a;\npublic abstract class Base {}\n")
	writeFile(t, filepath.Join(root, "bundle.a/src/com/a/Impl.java"), "package com.a;\npublic class Impl extends Base {}\n")
	// identical copy is indexed once
	writeFile(t, filepath.Join(root, "bundle.a/bin/com/a/Impl.java"), "package com.a;\npublic class Impl extends Base {}\n")
	writeFile(t, filepath.Join(root, "target/gen/Generated.java"), "package gen;\nclass Generated {}\n")
	writeFile(t, filepath.Join(root, "README.md"), "not java")

	jar := filepath.Join(t.TempDir(), "api-sources.jar")
	writeSourceJar(t, jar, map[string]string{
		"com/api/Service.java": "package com.api;\npublic interface Service {}\n",
		"META-INF/MANIFEST.MF": "Manifest-Version: 1.0\n",
	})

	idx, err := Build(context.Background(), Options{
		Roots:         []string{root, jar, filepath.Join(root, "missing")},
		Exclude:       []string{"target/**"},
		Workers:       2,
		PlatformTypes: true,
	})
	require.NoError(t, err)

	require.Len(t, idx.LookupType("com.a.Impl"), 1)
	require.Len(t, idx.LookupType("com.a.Base"), 1)
	assert.Empty(t, idx.LookupType("gen.Generated"))

	service := idx.LookupType("com.api.Service")
	require.Len(t, service, 1)
	assert.Equal(t, jar+"!/com/api/Service.java", service[0].Location.Path)
	assert.NotEmpty(t, idx.LookupType("org.osgi.service.component.ComponentContext"))
}

func TestBuild_Canceled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "A.java"), "class A {}\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Build(ctx, Options{Roots: []string{root}})
	require.Error(t, err)
	assert.True(t, errors.IsCanceled(err))
}

func TestIsSourceRoot(t *testing.T) {
	dir := t.TempDir()
	jar := filepath.Join(dir, "x.jar")
	writeSourceJar(t, jar, map[string]string{"A.java": "class A {}"})

	assert.True(t, IsSourceRoot(dir))
	assert.True(t, IsSourceRoot(jar))
	assert.False(t, IsSourceRoot(filepath.Join(dir, "nope")))
}

func TestBuild_Ignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src/A.java"), "class A {}\n")
	writeFile(t, filepath.Join(root, "gen/B.java"), "class B {}\n")
	writeFile(t, filepath.Join(root, "src/C.java"), "class C {}\n")

	idx, err := Build(context.Background(), Options{
		Roots: []string{root},
		Ignore: func(path string, isDir bool) bool {
			return (isDir && filepath.Base(path) == "gen") || filepath.Base(path) == "C.java"
		},
	})
	require.NoError(t, err)

	assert.Len(t, idx.LookupType("A"), 1)
	assert.Empty(t, idx.LookupType("B"))
	assert.Empty(t, idx.LookupType("C"))
}

func TestBuild_SkipsBinarySources(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src/A.java"), "class A {}\n")
	blob := "\xCA\xFE\xBA\xBE" + strings.Repeat("class X {}\n", 200)
	writeFile(t, filepath.Join(root, "src/B.java"), blob)
	jar := filepath.Join(t.TempDir(), "src.jar")
	writeSourceJar(t, jar, map[string]string{"c/C.java": "PK\x03\x04" + strings.Repeat("class C {}\n", 200)})

	idx, err := Build(context.Background(), Options{
		Roots:                 []string{root, jar},
		ValidationThresholdKB: 1,
	})
	require.NoError(t, err)

	assert.Len(t, idx.LookupType("A"), 1)
	assert.Empty(t, idx.LookupType("X"))
	assert.Empty(t, idx.LookupType("C"))
}
