// Build artifact detection from Java build configuration files
// Reads pom.xml, build.gradle, PDE build.properties and Eclipse .classpath to find output directories
package config

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
)

// BuildArtifactDetector finds Java build output directories. Output folders
// hold compiled classes and copied descriptors that would otherwise be indexed
// or discovered twice.
type BuildArtifactDetector struct {
	projectRoot string
}

// NewBuildArtifactDetector creates a new build artifact detector
func NewBuildArtifactDetector(projectRoot string) *BuildArtifactDetector {
	return &BuildArtifactDetector{projectRoot: projectRoot}
}

// DetectOutputDirectories scans for build configuration files and extracts output directories
// Returns glob patterns to exclude (e.g., "**/bin/**", "**/target/**")
func (bad *BuildArtifactDetector) DetectOutputDirectories() []string {
	var patterns []string

	patterns = append(patterns, bad.detectMavenOutputs()...)
	patterns = append(patterns, bad.detectGradleOutputs()...)
	patterns = append(patterns, bad.detectPDEOutputs()...)
	patterns = append(patterns, bad.detectEclipseOutputs()...)

	return DeduplicatePatterns(patterns)
}

type pomBuild struct {
	Directory       string `xml:"build>directory"`
	OutputDirectory string `xml:"build>outputDirectory"`
}

// detectMavenOutputs reads <build><directory> from pom.xml, default target
func (bad *BuildArtifactDetector) detectMavenOutputs() []string {
	data, err := os.ReadFile(filepath.Join(bad.projectRoot, "pom.xml"))
	if err != nil {
		return nil
	}

	var pom pomBuild
	if xml.Unmarshal(data, &pom) != nil {
		return []string{dirPattern("target")}
	}

	var patterns []string
	for _, dir := range []string{pom.Directory, pom.OutputDirectory} {
		if p := dirPattern(mavenPath(dir)); p != "" {
			patterns = append(patterns, p)
		}
	}
	if pom.Directory == "" {
		patterns = append(patterns, dirPattern("target"))
	}
	return patterns
}

// mavenPath strips the ${project.basedir} style prefixes Maven paths carry
func mavenPath(dir string) string {
	for _, prefix := range []string{"${project.basedir}/", "${basedir}/", "${project.build.directory}/"} {
		dir = strings.TrimPrefix(dir, prefix)
	}
	if strings.Contains(dir, "${") {
		return ""
	}
	return dir
}

// detectGradleOutputs reports build/ when a Gradle build script exists
func (bad *BuildArtifactDetector) detectGradleOutputs() []string {
	for _, name := range []string{"build.gradle", "build.gradle.kts", "settings.gradle", "settings.gradle.kts"} {
		if _, err := os.Stat(filepath.Join(bad.projectRoot, name)); err == nil {
			return []string{dirPattern("build")}
		}
	}
	return nil
}

// detectPDEOutputs reads output.<library> entries from a PDE build.properties
func (bad *BuildArtifactDetector) detectPDEOutputs() []string {
	data, err := os.ReadFile(filepath.Join(bad.projectRoot, "build.properties"))
	if err != nil {
		return nil
	}

	var patterns []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "output.") {
			continue
		}
		_, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		for _, dir := range strings.Split(value, ",") {
			if p := dirPattern(dir); p != "" {
				patterns = append(patterns, p)
			}
		}
	}
	return patterns
}

type eclipseClasspath struct {
	Entries []struct {
		Kind   string `xml:"kind,attr"`
		Path   string `xml:"path,attr"`
		Output string `xml:"output,attr"`
	} `xml:"classpathentry"`
}

// detectEclipseOutputs reads the output folders of an Eclipse .classpath
func (bad *BuildArtifactDetector) detectEclipseOutputs() []string {
	data, err := os.ReadFile(filepath.Join(bad.projectRoot, ".classpath"))
	if err != nil {
		return nil
	}

	var cp eclipseClasspath
	if xml.Unmarshal(data, &cp) != nil {
		return nil
	}

	var patterns []string
	for _, e := range cp.Entries {
		if e.Kind == "output" {
			patterns = append(patterns, dirPattern(e.Path))
		}
		if e.Output != "" {
			patterns = append(patterns, dirPattern(e.Output))
		}
	}
	return patterns
}

// dirPattern turns a relative output folder into an exclusion glob
func dirPattern(dir string) string {
	dir = strings.Trim(strings.TrimSpace(filepath.ToSlash(dir)), "/")
	dir = strings.TrimPrefix(dir, "./")
	if dir == "" || dir == "." || strings.HasPrefix(dir, "..") {
		return ""
	}
	return "**/" + dir + "/**"
}

// DeduplicatePatterns removes duplicate exclusion patterns
func DeduplicatePatterns(patterns []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(patterns))

	for _, pattern := range patterns {
		if pattern == "" || seen[pattern] {
			continue
		}
		seen[pattern] = true
		result = append(result, pattern)
	}

	return result
}
