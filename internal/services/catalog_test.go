package services

import (
	"context"
	"testing"
	"time"

	"github.com/gahan/book-inventory-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestCatalogService(db *gorm.DB) *CatalogService {
	return NewCatalogService(db, NewRatingService(db))
}

func TestGetAuthorPage(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestCatalogService(db)
	ratingSvc := NewRatingService(db)
	ctx := context.Background()

	author := seedAuthor(t, db, "Frank Herbert")
	publisher := seedPublisher(t, db, "Chilton Books")

	older := seedBook(t, db, "Dune", author.ID, publisher.ID)
	require.NoError(t, db.Model(&models.Book{}).Where("id = ?", older.ID).
		Update("published_date", time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC)).Error)
	newer := seedBook(t, db, "Dune Messiah", author.ID, publisher.ID)
	require.NoError(t, db.Model(&models.Book{}).Where("id = ?", newer.ID).
		Update("published_date", time.Date(1969, 10, 1, 0, 0, 0, 0, time.UTC)).Error)

	user := seedUser(t, db, "alice", true)
	_, err := ratingSvc.RateBook(ctx, user.ID, older.ID, 4)
	require.NoError(t, err)

	page, err := svc.GetAuthorPage(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, "Frank Herbert", page.Author.Name)
	require.NotNil(t, page.AverageRating)
	assert.Equal(t, 4.0, *page.AverageRating)

	// Books ordered newest publication first
	require.Len(t, page.Books, 2)
	assert.Equal(t, newer.ID, page.Books[0].ID)
	assert.Equal(t, older.ID, page.Books[1].ID)
	require.NotNil(t, page.Books[1].UserRating)
	assert.Equal(t, 4.0, *page.Books[1].UserRating)
	assert.Nil(t, page.Books[0].UserRating)
}

func TestGetAuthorPageNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestCatalogService(db)

	_, err := svc.GetAuthorPage(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrAuthorNotFound)
}

func TestGetPublisherPage(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestCatalogService(db)
	ratingSvc := NewRatingService(db)
	ctx := context.Background()

	herbert := seedAuthor(t, db, "Frank Herbert")
	asimov := seedAuthor(t, db, "Isaac Asimov")
	publisher := seedPublisher(t, db, "Chilton Books")
	dune := seedBook(t, db, "Dune", herbert.ID, publisher.ID)
	foundation := seedBook(t, db, "Foundation", asimov.ID, publisher.ID)

	alice := seedUser(t, db, "alice", true)
	bob := seedUser(t, db, "bob", true)
	_, err := ratingSvc.RateBook(ctx, alice.ID, dune.ID, 5)
	require.NoError(t, err)
	_, err = ratingSvc.RateBook(ctx, bob.ID, foundation.ID, 4)
	require.NoError(t, err)

	page, err := svc.GetPublisherPage(ctx, publisher.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chilton Books", page.Publisher.Name)
	require.NotNil(t, page.AverageRating)
	assert.Equal(t, 4.5, *page.AverageRating)
	assert.Len(t, page.Books, 2)
}

func TestGetPublisherPageNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestCatalogService(db)

	_, err := svc.GetPublisherPage(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrPublisherNotFound)
}
