package services

import (
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"
)

const (
	MaxUploadSize = 10 * 1024 * 1024 // 10MB
	MimeTypePDF   = "application/pdf"
	MimeTypeText  = "text/plain"
)

var (
	// ErrUnsupportedFileType is returned for anything other than PDF or plain text
	ErrUnsupportedFileType = errors.New("please upload a PDF or text file")
	// ErrFileTooLarge is returned for uploads above MaxUploadSize
	ErrFileTooLarge = errors.New("file size exceeds maximum allowed size of 10MB")
)

// ValidateDocumentUpload checks size and type of an uploaded case document
func ValidateDocumentUpload(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxUploadSize {
		return ErrFileTooLarge
	}
	if _, err := resolveDocumentType(fileHeader.Filename, fileHeader.Header.Get("Content-Type")); err != nil {
		return err
	}
	return nil
}

// resolveDocumentType returns the canonical media type of a case document.
// The declared content type wins; the extension is used when none was sent.
func resolveDocumentType(filename, declared string) (string, error) {
	mediaType := ""
	if declared != "" {
		mt, _, err := mime.ParseMediaType(declared)
		if err != nil {
			return "", fmt.Errorf("invalid content type %q: %w", declared, err)
		}
		mediaType = strings.ToLower(mt)
	}

	if mediaType == "" || mediaType == "application/octet-stream" {
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".pdf":
			mediaType = MimeTypePDF
		case ".txt":
			mediaType = MimeTypeText
		}
	}

	switch mediaType {
	case MimeTypePDF, MimeTypeText:
		return mediaType, nil
	}
	return "", ErrUnsupportedFileType
}
