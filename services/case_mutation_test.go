package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"case_law_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestParseCitations(t *testing.T) {
	assert.Equal(t, models.StringList{"a", "b", "c"}, ParseCitations("a, b ,c,"))
	assert.Nil(t, ParseCitations(""))
	assert.Nil(t, ParseCitations(" , ,  "))
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, models.CaseStatusLandmark, NormalizeStatus(" Landmark "))
	assert.Equal(t, models.CaseStatusPrecedent, NormalizeStatus("precedent"))
	assert.Equal(t, models.CaseStatusRecent, NormalizeStatus(""))
	assert.Equal(t, models.CaseStatusRecent, NormalizeStatus("overruled"))

	// Capitalised spreadsheet values keep their meaning instead of becoming recent
	assert.Equal(t, models.CaseStatusLandmark, NormalizeStatus("LANDMARK"))
	assert.Equal(t, models.CaseStatusPrecedent, NormalizeStatus("Precedent"))
}

func TestValidateCaseForm(t *testing.T) {
	assert.NoError(t, ValidateCaseForm(validForm()))

	form := validForm()
	form.Title = "   "
	form.Date = ""
	err := ValidateCaseForm(form)
	require.ErrorIs(t, err, ErrValidation)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"title", "date"}, verr.Fields)

	form = validForm()
	form.Date = "24/04/1973"
	assert.ErrorIs(t, ValidateCaseForm(form), ErrValidation)
}

func TestCreateCase(t *testing.T) {
	db := setupTestDB(t)
	bus := NewResultSetBus()
	svc := NewCaseMutationService(db, bus, nil)
	ctx := context.Background()

	t.Run("stores mapped record and bumps generation", func(t *testing.T) {
		before := bus.Generation()
		form := validForm()
		form.Summary = "  Basic structure & amendment  "

		created, err := svc.CreateCase(ctx, form)
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, models.CaseStatusLandmark, created.Status)
		assert.Equal(t, models.StringList{"AIR 1973 SC 1461", "(1973) 4 SCC 225"}, created.Citations)
		require.NotNil(t, created.Summary)
		assert.Equal(t, "Basic structure & amendment", *created.Summary)
		assert.Nil(t, created.FullText)
		assert.Equal(t, before+1, bus.Generation())

		var stored models.Case
		require.NoError(t, db.First(&stored, "id = ?", created.ID).Error)
		assert.Equal(t, created.Citations, stored.Citations)
	})

	t.Run("empty citations and status are stored as null and recent", func(t *testing.T) {
		form := validForm()
		form.Citations = " , "
		form.Status = ""

		created, err := svc.CreateCase(ctx, form)
		require.NoError(t, err)
		assert.Equal(t, models.CaseStatusRecent, created.Status)

		var raw *string
		require.NoError(t, db.Raw("SELECT citations FROM cases WHERE id = ?", created.ID).Scan(&raw).Error)
		assert.Nil(t, raw)
	})

	t.Run("invalid form never reaches the store", func(t *testing.T) {
		var before int64
		db.Model(&models.Case{}).Count(&before)
		gen := bus.Generation()

		form := validForm()
		form.Court = ""
		_, err := svc.CreateCase(ctx, form)
		assert.ErrorIs(t, err, ErrValidation)

		var after int64
		db.Model(&models.Case{}).Count(&after)
		assert.Equal(t, before, after)
		assert.Equal(t, gen, bus.Generation())
	})

	t.Run("angle brackets and entities are stored as typed", func(t *testing.T) {
		form := validForm()
		form.Title = "<Doe> v. Roe"
		form.Summary = "literal &lt;script&gt; text"

		created, err := svc.CreateCase(ctx, form)
		require.NoError(t, err)

		var stored models.Case
		require.NoError(t, db.First(&stored, "id = ?", created.ID).Error)
		assert.Equal(t, "<Doe> v. Roe", stored.Title)
		require.NotNil(t, stored.Summary)
		assert.Equal(t, "literal &lt;script&gt; text", *stored.Summary)
	})

	t.Run("bracketed title alone is a valid title", func(t *testing.T) {
		form := validForm()
		form.Title = "<Doe>"

		created, err := svc.CreateCase(ctx, form)
		require.NoError(t, err)
		assert.Equal(t, "<Doe>", created.Title)
	})
}

func TestCreateCaseStoreFailure(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCaseMutationService(db, nil, nil)
	require.NoError(t, db.Migrator().DropTable(&models.Case{}))

	_, err := svc.CreateCase(context.Background(), validForm())
	assert.ErrorIs(t, err, ErrCreateFailed)
	assert.False(t, errors.Is(err, ErrUpdateFailed))
}

func TestUpdateCase(t *testing.T) {
	db := setupTestDB(t)
	bus := NewResultSetBus()
	svc := NewCaseMutationService(db, bus, nil)
	ctx := context.Background()

	created, err := svc.CreateCase(ctx, validForm())
	require.NoError(t, err)
	require.NoError(t, svc.AttachFileMetadata(ctx, created.ID, "k/doc.pdf", "doc.pdf", MimeTypePDF))

	t.Run("overwrites editable fields and keeps file columns", func(t *testing.T) {
		form := validForm()
		form.Title = "Kesavananda Bharati (revised)"
		form.Summary = ""
		form.Citations = "AIR 1973 SC 1461"
		form.Status = "precedent"

		updated, err := svc.UpdateCase(ctx, created.ID, form)
		require.NoError(t, err)
		assert.Equal(t, "Kesavananda Bharati (revised)", updated.Title)
		assert.Nil(t, updated.Summary)
		assert.Equal(t, models.StringList{"AIR 1973 SC 1461"}, updated.Citations)
		assert.Equal(t, models.CaseStatusPrecedent, updated.Status)
		require.NotNil(t, updated.FilePath)
		assert.Equal(t, "k/doc.pdf", *updated.FilePath)
	})

	t.Run("unknown id fails without creating anything", func(t *testing.T) {
		var before int64
		db.Model(&models.Case{}).Count(&before)

		_, err := svc.UpdateCase(ctx, "does-not-exist", validForm())
		assert.ErrorIs(t, err, ErrUpdateFailed)
		assert.ErrorIs(t, err, ErrCaseNotFound)

		var after int64
		db.Model(&models.Case{}).Count(&after)
		assert.Equal(t, before, after)
	})
}

func TestAttachFileMetadata(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCaseMutationService(db, nil, nil)
	ctx := context.Background()

	created, err := svc.CreateCase(ctx, validForm())
	require.NoError(t, err)

	require.NoError(t, svc.AttachFileMetadata(ctx, created.ID, created.ID+"/x.txt", "x.txt", MimeTypeText))

	var stored models.Case
	require.NoError(t, db.First(&stored, "id = ?", created.ID).Error)
	assert.True(t, stored.HasDocument())
	assert.Equal(t, "x.txt", *stored.FileName)
	assert.Equal(t, created.Title, stored.Title)

	err = svc.AttachFileMetadata(ctx, "missing", "p", "n", MimeTypeText)
	assert.ErrorIs(t, err, ErrFileAttachFailed)
}

func TestCreateCaseWithDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("stores document under the new case id", func(t *testing.T) {
		db := setupTestDB(t)
		dir := t.TempDir()
		svc := NewCaseMutationService(db, nil, NewLocalStorage(dir))

		staged, err := StageFile("Judgment.TXT", MimeTypeText, strings.NewReader("full judgment"))
		require.NoError(t, err)

		created, warnings, err := svc.CreateCaseWithDocument(ctx, validForm(), staged)
		require.NoError(t, err)
		assert.Empty(t, warnings)
		require.NotNil(t, created.FilePath)
		assert.True(t, strings.HasPrefix(*created.FilePath, created.ID+"/"+created.ID+"-"))
		assert.True(t, strings.HasSuffix(*created.FilePath, ".txt"))
		assert.Equal(t, filepath.Base(*created.FilePath), *created.FileName)
		assert.Equal(t, MimeTypeText, *created.FileType)

		data, err := os.ReadFile(filepath.Join(dir, *created.FilePath))
		require.NoError(t, err)
		assert.Equal(t, "full judgment", string(data))
	})

	t.Run("no document is a plain create", func(t *testing.T) {
		svc := NewCaseMutationService(setupTestDB(t), nil, nil)
		created, warnings, err := svc.CreateCaseWithDocument(ctx, validForm(), nil)
		require.NoError(t, err)
		assert.Empty(t, warnings)
		assert.False(t, created.HasDocument())
	})

	t.Run("upload failure keeps the case and warns", func(t *testing.T) {
		db := setupTestDB(t)
		storage := new(MockStorage)
		storage.On("IsConfigured").Return(true)
		storage.On("UploadReader", mock.Anything, mock.Anything, mock.AnythingOfType("string"), MimeTypePDF, int64(8)).
			Return(nil, errors.New("bucket unavailable"))
		svc := NewCaseMutationService(db, nil, storage)

		staged, err := StageFile("j.pdf", MimeTypePDF, strings.NewReader("%PDF-1.4"))
		require.NoError(t, err)

		created, warnings, err := svc.CreateCaseWithDocument(ctx, validForm(), staged)
		require.NoError(t, err)
		assert.Equal(t, []string{DocumentAttachWarning}, warnings)

		var stored models.Case
		require.NoError(t, db.First(&stored, "id = ?", created.ID).Error)
		assert.False(t, stored.HasDocument())
		storage.AssertExpectations(t)
	})

	t.Run("unconfigured storage warns", func(t *testing.T) {
		storage := new(MockStorage)
		storage.On("IsConfigured").Return(false)
		svc := NewCaseMutationService(setupTestDB(t), nil, storage)

		staged := &StagedFile{Name: "a.txt", ContentType: MimeTypeText, Data: []byte("a"), Size: 1}
		_, warnings, err := svc.CreateCaseWithDocument(ctx, validForm(), staged)
		require.NoError(t, err)
		assert.Equal(t, []string{DocumentAttachWarning}, warnings)
		storage.AssertNotCalled(t, "UploadReader", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("create failure never uploads", func(t *testing.T) {
		storage := new(MockStorage)
		svc := NewCaseMutationService(setupTestDB(t), nil, storage)

		form := validForm()
		form.Date = "soon"
		staged := &StagedFile{Name: "a.txt", ContentType: MimeTypeText, Data: []byte("a"), Size: 1}
		_, _, err := svc.CreateCaseWithDocument(ctx, form, staged)
		assert.ErrorIs(t, err, ErrValidation)
		storage.AssertNotCalled(t, "IsConfigured")
	})
}

func TestAttachDocumentRemovesOrphan(t *testing.T) {
	db := setupTestDB(t)
	storage := new(MockStorage)
	storage.On("IsConfigured").Return(true)
	storage.On("UploadReader", mock.Anything, mock.Anything, mock.Anything, MimeTypeText, int64(1)).
		Return(&StorageResult{Key: "gone/gone-1.txt"}, nil)
	storage.On("Delete", mock.Anything, "gone/gone-1.txt").Return(nil)
	svc := NewCaseMutationService(db, nil, storage)

	// The case row does not exist, so the metadata write affects nothing
	c := &models.Case{ID: "gone"}
	staged := &StagedFile{Name: "a.txt", ContentType: MimeTypeText, Data: []byte("a"), Size: 1}
	err := svc.attachDocument(context.Background(), c, staged)

	assert.ErrorIs(t, err, ErrFileAttachFailed)
	assert.Nil(t, c.FilePath)
	storage.AssertExpectations(t)
}
