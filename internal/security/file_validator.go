// Package security screens large source files before they are parsed.
package security

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// DefaultThresholdKB is the size above which sources are screened
const DefaultThresholdKB = 100

// FileValidator validates large files before loading them fully
// Prevents memory bloat from binaries and generated blobs saved as .java

type FileValidator struct {
	ValidationThreshold int64 // Files larger than this are validated first
	HeaderSize          int64 // Size of header to read for validation
}

func NewFileValidator(thresholdKB int64) *FileValidator {
	return &FileValidator{
		ValidationThreshold: thresholdKB * 1024,
		HeaderSize:          64 * 1024, // 64KB header
	}
}

// ValidateLargeFile reads only the header of a file on disk and validates it
// is Java source. Small files are not checked.
func (fv *FileValidator) ValidateLargeFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	// Skip validation for small files
	if info.Size() <= fv.ValidationThreshold {
		return nil
	}

	header := make([]byte, fv.HeaderSize)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return fmt.Errorf("failed to read header: %w", err)
	}
	return fv.validateHeader(header[:n])
}

// ValidateContent applies the same checks to content already in memory, such
// as an archive entry.
func (fv *FileValidator) ValidateContent(content []byte) error {
	if int64(len(content)) <= fv.ValidationThreshold {
		return nil
	}
	if int64(len(content)) > fv.HeaderSize {
		content = content[:fv.HeaderSize]
	}
	return fv.validateHeader(content)
}

func (fv *FileValidator) validateHeader(header []byte) error {
	// 1. Check magic bytes (file signatures)
	if err := fv.checkMagicBytes(header); err != nil {
		return err
	}

	// 2. Check for binary data
	if fv.isBinaryData(header) {
		return errors.New("file appears to be binary (source extension on binary file)")
	}

	// 3. Java patterns
	return fv.validateJavaFile(header)
}

// binarySignatures are file signatures that never start Java source
var binarySignatures = []struct {
	name  string
	magic []byte
}{
	{"class file", []byte{0xCA, 0xFE, 0xBA, 0xBE}},
	{"zip archive", []byte{0x50, 0x4B, 0x03, 0x04}},
	{"png image", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	{"jpeg image", []byte{0xFF, 0xD8, 0xFF}},
	{"gif image", []byte{0x47, 0x49, 0x46, 0x38}},
	{"pdf document", []byte{0x25, 0x50, 0x44, 0x46, 0x2D}},
	{"executable", []byte{0x7F, 0x45, 0x4C, 0x46}},
}

// checkMagicBytes rejects content carrying a known binary signature
func (fv *FileValidator) checkMagicBytes(header []byte) error {
	for _, sig := range binarySignatures {
		if bytes.HasPrefix(header, sig.magic) {
			return fmt.Errorf("content is a %s (file may be disguised)", sig.name)
		}
	}
	return nil
}

// isBinaryData checks if file contains binary data
func (fv *FileValidator) isBinaryData(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	// Count non-printable characters
	nonPrintable := 0
	for _, b := range data {
		// Control characters (0-31 except tab, LF, CR)
		// and DEL (127)
		if b < 9 || (b > 13 && b < 32) || b == 127 {
			nonPrintable++
		}
	}

	// If more than 30% non-printable, consider binary
	ratio := float64(nonPrintable) / float64(len(data))
	return ratio > 0.3
}

// validateJavaFile checks for Java patterns
func (fv *FileValidator) validateJavaFile(header []byte) error {
	javaPatterns := [][]byte{
		[]byte("package "),
		[]byte("import "),
		[]byte("class "),
		[]byte("interface "),
		[]byte("enum "),
		[]byte("record "),
		[]byte("@interface"),
		[]byte("public "),
		[]byte("private "),
		[]byte("protected "),
	}

	for _, pattern := range javaPatterns {
		if bytes.Contains(header, pattern) {
			return nil
		}
	}

	return errors.New("no Java patterns found (package, import, class, etc.)")
}
