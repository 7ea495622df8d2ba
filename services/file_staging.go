package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"unicode/utf8"
)

// Extraction describes what could be read out of a staged document
type Extraction string

const (
	// ExtractionText means the document text was read into StagedFile.Text
	ExtractionText Extraction = "text"
	// ExtractionUnsupported means only file metadata is available
	ExtractionUnsupported Extraction = "unsupported"
)

// StagedFile is a document held in memory until its case has been created
type StagedFile struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
	Extraction  Extraction
	Text        string
}

// StageFile reads a document and extracts its text when it is plain text.
// PDFs are kept as-is with ExtractionUnsupported; no text is invented for them.
func StageFile(name, contentType string, r io.Reader) (*StagedFile, error) {
	mediaType, err := resolveDocumentType(name, contentType)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if len(data) > MaxUploadSize {
		return nil, ErrFileTooLarge
	}

	staged := &StagedFile{
		Name:        filepath.Base(name),
		ContentType: mediaType,
		Size:        int64(len(data)),
		Data:        data,
		Extraction:  ExtractionUnsupported,
	}

	switch mediaType {
	case MimeTypeText:
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("text file is not valid UTF-8")
		}
		staged.Text = string(data)
		staged.Extraction = ExtractionText
	case MimeTypePDF:
		// PDF files start with %PDF
		if !bytes.HasPrefix(data, []byte("%PDF")) {
			return nil, fmt.Errorf("file is not a valid PDF")
		}
	}

	return staged, nil
}

// StageUpload stages a multipart upload
func StageUpload(fileHeader *multipart.FileHeader) (*StagedFile, error) {
	if err := ValidateDocumentUpload(fileHeader); err != nil {
		return nil, err
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	return StageFile(fileHeader.Filename, fileHeader.Header.Get("Content-Type"), src)
}

// ApplyToForm copies extracted text into the form's full text when the
// admin has not typed one
func (f *StagedFile) ApplyToForm(fullText string) string {
	if f == nil || f.Extraction != ExtractionText || fullText != "" {
		return fullText
	}
	return f.Text
}
