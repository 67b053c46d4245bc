package utils

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// UploadDir is where avatars land when R2 is not configured. Served by the
// app under /uploads.
const UploadDir = "uploads"

// EnsureUploadDir creates the local uploads directory if it doesn't exist.
func EnsureUploadDir() error {
	return os.MkdirAll(UploadDir, os.ModePerm)
}

// SaveFile writes an uploaded multipart file to destPath.
func SaveFile(fileHeader *multipart.FileHeader, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), os.ModePerm); err != nil {
		return err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, file)
	return err
}

// GetUploadPath returns the on-disk path for a file in the uploads directory.
func GetUploadPath(filename string) string {
	return filepath.Join(UploadDir, filename)
}
