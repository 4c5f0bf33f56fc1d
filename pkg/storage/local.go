package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const valueExt = ".val"

// Local is a filesystem-based store holding one file per key
type Local struct {
	rootPath string
}

// NewLocal creates a store rooted at rootPath, creating the directory if needed
func NewLocal(rootPath string) (*Local, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", absPath)
	}

	return &Local{rootPath: absPath}, nil
}

// Keys are base64url-encoded so any key maps to a portable file name
func (l *Local) fileFor(key string) string {
	return filepath.Join(l.rootPath, base64.RawURLEncoding.EncodeToString([]byte(key))+valueExt)
}

// Get reads the file for key
func (l *Local) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ValidateKey(key); err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(l.fileFor(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read value: %w", err)
	}
	return data, true, nil
}

// Set writes the value to a temporary file and renames it into place
func (l *Local) Set(ctx context.Context, key string, value []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(l.rootPath, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tmp.Name(), l.fileFor(key)); err != nil {
		return fmt.Errorf("failed to store value: %w", err)
	}
	return nil
}

// Delete removes the file for key
func (l *Local) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	err := os.Remove(l.fileFor(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete: %w", err)
	}
	return nil
}

// Keys lists the stored keys, skipping files the store did not write
func (l *Local) Keys(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		// Check context cancellation
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, valueExt) {
			continue
		}
		key, err := base64.RawURLEncoding.DecodeString(strings.TrimSuffix(name, valueExt))
		if err != nil {
			continue
		}
		keys = append(keys, string(key))
	}
	return keys, nil
}

// Close releases resources (no-op for local filesystem)
func (l *Local) Close() error {
	return nil
}
