package output

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// WriteMask saves an image diff mask as PNG, creating parent directories
func WriteMask(path string, mask image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create mask directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create mask file: %w", err)
	}

	if err := png.Encode(file, mask); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode mask: %w", err)
	}

	return file.Close()
}
