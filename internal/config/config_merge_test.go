package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Unit tests for config merging logic

func TestMergeConfigs_ExclusionsMerge(t *testing.T) {
	base := &Config{
		Exclude: []string{"**/attic/**", "**/real_projects/**"},
		Index:   Index{Exclude: []string{"**/generated/**"}},
	}
	project := &Config{
		Exclude: []string{"**/attic/**", "**/tmp/**"},
		Index:   Index{Exclude: []string{"**/bin/**"}},
	}

	merged := mergeConfigs(base, project)

	assert.Equal(t, []string{"**/attic/**", "**/real_projects/**", "**/tmp/**"}, merged.Exclude)
	assert.Equal(t, []string{"**/generated/**", "**/bin/**"}, merged.Index.Exclude)
}

func TestMergeConfigs_ProjectOverrides(t *testing.T) {
	base := &Config{
		Include: []string{"global/**"},
		Debug:   Debug{Trace: []string{"search"}},
		Index:   Index{Workers: 8},
	}
	project := &Config{
		Project: Project{Name: "demo"},
		Index:   Index{Workers: 2},
	}

	merged := mergeConfigs(base, project)

	assert.Equal(t, "demo", merged.Project.Name)
	assert.Equal(t, 2, merged.Index.Workers)
	assert.Equal(t, []string{"global/**"}, merged.Include, "base inclusions used when project has none")
	assert.Equal(t, []string{"search"}, merged.Debug.Trace)

	project.Include = []string{"local/**"}
	merged = mergeConfigs(base, project)
	assert.Equal(t, []string{"local/**"}, merged.Include)
}

func TestLoadWithRoot_GlobalAndProjectConfigMerge(t *testing.T) {
	tmpHome := t.TempDir()
	tmpProject := t.TempDir()

	globalConfig := `
exclude {
    "**/real_projects/**"
}
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpHome, KDLFileName), []byte(globalConfig), 0644))

	projectConfig := `
project {
    root "."
    name "test-project"
}
index {
    max_file_size "10MB"
}
exclude {
    "**/attic/**"
}
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpProject, KDLFileName), []byte(projectConfig), 0644))
	t.Setenv("HOME", tmpHome)

	cfg, err := LoadWithRoot("", tmpProject)
	require.NoError(t, err)

	assert.Contains(t, cfg.Exclude, "**/real_projects/**", "Should include global exclusion")
	assert.Contains(t, cfg.Exclude, "**/attic/**", "Should include project exclusion")
	assert.Equal(t, int64(10*1024*1024), cfg.Index.MaxFileSize)
	assert.Equal(t, "test-project", cfg.Project.Name)
	assert.Equal(t, tmpProject, cfg.Project.Root)
}

func TestLoadWithRoot_GlobalConfigOnly(t *testing.T) {
	tmpHome := t.TempDir()
	tmpProject := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpHome, KDLFileName), []byte("exclude \"**/attic/**\"\n"), 0644))
	t.Setenv("HOME", tmpHome)

	cfg, err := LoadWithRoot("", tmpProject)
	require.NoError(t, err)

	assert.Contains(t, cfg.Exclude, "**/attic/**")
	assert.Equal(t, tmpProject, cfg.Project.Root, "global config never moves the project root")
}

func TestLoadWithRoot_DefaultConfigFallback(t *testing.T) {
	tmpProject := t.TempDir()
	t.Setenv("HOME", "/nonexistent")

	cfg, err := LoadWithRoot("", tmpProject)
	require.NoError(t, err)

	assert.Equal(t, tmpProject, cfg.Project.Root)
	assert.Equal(t, filepath.Base(tmpProject), cfg.Project.Name)
	assert.Empty(t, cfg.Include)
	assert.Positive(t, cfg.Index.Workers)
}

func TestLoadWithRoot_DetectsBuildOutputs(t *testing.T) {
	tmpProject := t.TempDir()
	t.Setenv("HOME", "/nonexistent")
	require.NoError(t, os.WriteFile(filepath.Join(tmpProject, "build.gradle"), []byte("plugins { id 'java' }\n"), 0644))

	cfg, err := LoadWithRoot("", tmpProject)
	require.NoError(t, err)
	assert.Contains(t, cfg.Index.Exclude, "**/build/**")
	assert.Contains(t, cfg.SourceExclude(), "**/build/**")
	assert.NotContains(t, cfg.BundleExclude(), "**/build/**")
}

func TestLoadWithRoot_InvalidConfig(t *testing.T) {
	tmpProject := t.TempDir()
	t.Setenv("HOME", "/nonexistent")
	require.NoError(t, os.WriteFile(filepath.Join(tmpProject, KDLFileName), []byte("search {\n    limit_to \"everything\"\n}\n"), 0644))

	_, err := LoadWithRoot("", tmpProject)
	assert.Error(t, err)
}

func TestSourceRoots(t *testing.T) {
	cfg := Default("/work")
	assert.Equal(t, []string{"/work"}, cfg.SourceRoots())

	cfg.Index.Sources = []string{"src", "/opt/api-sources.jar"}
	assert.Equal(t, []string{filepath.Join("/work", "src"), "/opt/api-sources.jar"}, cfg.SourceRoots())
}
