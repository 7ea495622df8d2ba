package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageFile(t *testing.T) {
	t.Run("plain text is extracted", func(t *testing.T) {
		staged, err := StageFile("notes/judgment.txt", "text/plain; charset=utf-8", strings.NewReader("The appeal is allowed."))
		require.NoError(t, err)
		assert.Equal(t, "judgment.txt", staged.Name)
		assert.Equal(t, MimeTypeText, staged.ContentType)
		assert.Equal(t, ExtractionText, staged.Extraction)
		assert.Equal(t, "The appeal is allowed.", staged.Text)
		assert.Equal(t, int64(22), staged.Size)
	})

	t.Run("pdf keeps metadata only", func(t *testing.T) {
		staged, err := StageFile("judgment.pdf", MimeTypePDF, strings.NewReader("%PDF-1.7 binary"))
		require.NoError(t, err)
		assert.Equal(t, ExtractionUnsupported, staged.Extraction)
		assert.Empty(t, staged.Text)
		assert.Equal(t, []byte("%PDF-1.7 binary"), staged.Data)
	})

	t.Run("pdf without signature is rejected", func(t *testing.T) {
		_, err := StageFile("judgment.pdf", MimeTypePDF, strings.NewReader("plain words"))
		assert.Error(t, err)
	})

	t.Run("invalid utf-8 text is rejected", func(t *testing.T) {
		_, err := StageFile("judgment.txt", MimeTypeText, bytes.NewReader([]byte{0xff, 0xfe, 0xfd}))
		assert.Error(t, err)
	})

	t.Run("other types are rejected", func(t *testing.T) {
		_, err := StageFile("scan.png", "image/png", strings.NewReader("png"))
		assert.ErrorIs(t, err, ErrUnsupportedFileType)
	})

	t.Run("oversized input is rejected", func(t *testing.T) {
		_, err := StageFile("big.txt", MimeTypeText, bytes.NewReader(bytes.Repeat([]byte("a"), MaxUploadSize+1)))
		assert.ErrorIs(t, err, ErrFileTooLarge)
	})
}

func TestStageUpload(t *testing.T) {
	fh := createMockFileHeader(t, "order.txt", []byte("Order text"), "")
	staged, err := StageUpload(fh)
	require.NoError(t, err)
	assert.Equal(t, ExtractionText, staged.Extraction)
	assert.Equal(t, "Order text", staged.Text)
}

func TestStagedFileApplyToForm(t *testing.T) {
	text := &StagedFile{Extraction: ExtractionText, Text: "extracted"}
	pdf := &StagedFile{Extraction: ExtractionUnsupported}

	assert.Equal(t, "extracted", text.ApplyToForm(""))
	assert.Equal(t, "typed", text.ApplyToForm("typed"))
	assert.Equal(t, "", pdf.ApplyToForm(""))

	var none *StagedFile
	assert.Equal(t, "typed", none.ApplyToForm("typed"))
}
