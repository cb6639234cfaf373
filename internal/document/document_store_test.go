package document

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestStore_UploadRejections(t *testing.T) {
	// Rejections happen before any database access, so a nil gorm handle is
	// safe here.
	s := NewStore(nil, nil, 1024)
	ctx := context.Background()
	companyID := uuid.NewString()

	t.Run("Empty payload", func(t *testing.T) {
		_, err := s.Upload(ctx, companyID, nil, "letter.pdf", "application/pdf")
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("Oversized payload", func(t *testing.T) {
		_, err := s.Upload(ctx, companyID, make([]byte, 2048), "letter.pdf", "application/pdf")
		assert.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("Non PDF payload", func(t *testing.T) {
		_, err := s.Upload(ctx, companyID, []byte("hello"), "letter.docx", "application/msword")
		assert.ErrorIs(t, err, ErrUnsupported)
	})

	t.Run("MIME check is case insensitive", func(t *testing.T) {
		// Passes the content checks, then fails on the malformed company id
		// before touching the database.
		_, err := s.Upload(ctx, "not-a-uuid", []byte("%PDF-1.4"), "letter.pdf", "Application/PDF")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnsupported)
	})
}

func TestIDFromURL(t *testing.T) {
	id := uuid.NewString()

	t.Run("Resolves a stored reference", func(t *testing.T) {
		got, ok := IDFromURL(URLPrefix + id)
		assert.True(t, ok)
		assert.Equal(t, id, got)
	})

	t.Run("Resolves an absolute URL", func(t *testing.T) {
		got, ok := IDFromURL("https://hr.example.com" + URLPrefix + id)
		assert.True(t, ok)
		assert.Equal(t, id, got)
	})

	t.Run("Rejects foreign paths", func(t *testing.T) {
		_, ok := IDFromURL("https://elsewhere.example.com/files/" + id)
		assert.False(t, ok)
	})

	t.Run("Rejects garbage ids", func(t *testing.T) {
		_, ok := IDFromURL(URLPrefix + "not-a-uuid")
		assert.False(t, ok)
	})
}
