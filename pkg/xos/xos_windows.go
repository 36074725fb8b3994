//go:build windows
// +build windows

// Package xos provides atomic file output for release archives.
// On Windows the temp file lives next to the target, since a rename across
// volumes is not atomic.
package xos

import (
	"os"
	"path/filepath"
)

// PendingFile is a file that becomes visible at its target path only after
// CloseAtomically succeeds.
type PendingFile struct {
	tempFile *os.File
	tempName string
	path     string
	perm     os.FileMode
	done     bool
}

// NewPendingFile creates a pending file for filename with the given mode.
func NewPendingFile(filename string, perm os.FileMode) (*PendingFile, error) {
	tempFile, err := os.CreateTemp(filepath.Dir(filename), ".tmp-*")
	if err != nil {
		return nil, err
	}
	return &PendingFile{
		tempFile: tempFile,
		tempName: tempFile.Name(),
		path:     filename,
		perm:     perm,
	}, nil
}

// Write writes data to the pending file.
func (p *PendingFile) Write(data []byte) (int, error) {
	return p.tempFile.Write(data)
}

// CloseAtomically syncs the temp file and renames it over the target.
func (p *PendingFile) CloseAtomically() error {
	if err := p.tempFile.Sync(); err != nil {
		p.Cleanup()
		return err
	}

	if err := p.tempFile.Close(); err != nil {
		p.Cleanup()
		return err
	}

	if err := os.Chmod(p.tempName, p.perm); err != nil {
		p.Cleanup()
		return err
	}

	// Remove target if exists
	if _, err := os.Stat(p.path); err == nil {
		if err := os.Remove(p.path); err != nil {
			p.Cleanup()
			return err
		}
	}

	if err := os.Rename(p.tempName, p.path); err != nil {
		p.Cleanup()
		return err
	}
	p.done = true
	return nil
}

// Cleanup discards the pending file.
func (p *PendingFile) Cleanup() {
	if p.done {
		return
	}
	p.tempFile.Close()
	os.Remove(p.tempName)
}

// Exists reports whether a regular file or directory exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
