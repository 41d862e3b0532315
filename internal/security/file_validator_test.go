package security

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// largeJava pads a Java class past the 1KB test threshold
func largeJava() []byte {
	var b strings.Builder
	b.WriteString("package com.example;\n\npublic class Big {\n")
	for b.Len() < 4096 {
		b.WriteString("    private int field;\n")
	}
	b.WriteString("}\n")
	return []byte(b.String())
}

func writeTempFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

// TestFileValidator validates the source file validator
func TestFileValidator(t *testing.T) {
	validator := NewFileValidator(1)

	t.Run("ValidJavaFile", func(t *testing.T) {
		path := writeTempFile(t, "Big.java", largeJava())
		assert.NoError(t, validator.ValidateLargeFile(path), "Valid Java file should pass validation")
	})

	t.Run("SmallFileSkipped", func(t *testing.T) {
		path := writeTempFile(t, "Small.java", []byte{0xCA, 0xFE, 0xBA, 0xBE})
		assert.NoError(t, validator.ValidateLargeFile(path), "Small files are not validated")
	})

	t.Run("ClassFileDisguised", func(t *testing.T) {
		content := append([]byte{0xCA, 0xFE, 0xBA, 0xBE}, largeJava()...)
		path := writeTempFile(t, "Big.java", content)
		err := validator.ValidateLargeFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "class file")
	})

	t.Run("BinaryData", func(t *testing.T) {
		content := make([]byte, 4096)
		for i := range content {
			content[i] = byte(i % 8)
		}
		path := writeTempFile(t, "Blob.java", content)
		err := validator.ValidateLargeFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "binary")
	})

	t.Run("NoJavaPatterns", func(t *testing.T) {
		content := []byte(strings.Repeat("lorem ipsum dolor sit amet\n", 200))
		path := writeTempFile(t, "Notes.java", content)
		err := validator.ValidateLargeFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no Java patterns")
	})

	t.Run("MissingFile", func(t *testing.T) {
		assert.Error(t, validator.ValidateLargeFile(filepath.Join(t.TempDir(), "missing.java")))
	})
}

func TestValidateContent(t *testing.T) {
	validator := NewFileValidator(1)

	assert.NoError(t, validator.ValidateContent(largeJava()))
	assert.NoError(t, validator.ValidateContent([]byte("PK\x03\x04")), "below threshold")
	assert.Error(t, validator.ValidateContent(append([]byte("PK\x03\x04"), largeJava()...)))
}
