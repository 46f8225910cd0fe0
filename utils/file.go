// utils/file.go
package utils

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// uploadDir is the local fallback store for achievement icons, used when R2
// is not configured (see r2.go). Served by the app under /uploads.
const uploadDir = "uploads"

// EnsureUploadDir creates the local icon directory if it doesn't exist.
func EnsureUploadDir() error {
	return os.MkdirAll(uploadDir, os.ModePerm)
}

// SaveFile writes an uploaded multipart file to destPath, creating parent
// directories as needed (icon keys contain a subdirectory, e.g.
// "achievements/first-entry.png").
func SaveFile(fileHeader *multipart.FileHeader, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), os.ModePerm); err != nil {
		return err
	}

	src, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

// GetUploadPath returns the on-disk path for an icon key inside the local
// upload directory.
func GetUploadPath(key string) string {
	return filepath.Join(uploadDir, key)
}
