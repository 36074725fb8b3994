//go:build !windows
// +build !windows

// Package xos provides atomic file output for release archives.
// A release is written to a temp file and renamed over the target only once
// it is complete, so readers never observe a truncated archive.
package xos

import (
	"os"

	"github.com/google/renameio/v2"
)

// PendingFile is a file that becomes visible at its target path only after
// CloseAtomically succeeds. Call Cleanup to discard it; Cleanup after a
// successful CloseAtomically is a no-op.
type PendingFile struct {
	tempFile *renameio.PendingFile
}

// NewPendingFile creates a pending file for filename with the given mode.
func NewPendingFile(filename string, perm os.FileMode) (*PendingFile, error) {
	t, err := renameio.TempFile("", filename)
	if err != nil {
		return nil, err
	}
	if err := t.Chmod(perm); err != nil {
		_ = t.Cleanup()
		return nil, err
	}
	return &PendingFile{tempFile: t}, nil
}

// Write writes data to the pending file.
func (p *PendingFile) Write(data []byte) (int, error) {
	return p.tempFile.Write(data)
}

// CloseAtomically syncs the temp file and renames it over the target.
func (p *PendingFile) CloseAtomically() error {
	return p.tempFile.CloseAtomicallyReplace()
}

// Cleanup discards the pending file.
func (p *PendingFile) Cleanup() {
	_ = p.tempFile.Cleanup()
}

// Exists reports whether a regular file or directory exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
