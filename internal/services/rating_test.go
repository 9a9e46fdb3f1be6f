package services

import (
	"context"
	"testing"
	"time"

	"github.com/gahan/book-inventory-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Author{},
		&models.Publisher{},
		&models.Book{},
		&models.BookRating{},
		&models.BookImage{},
		&models.RefreshToken{},
	)
	require.NoError(t, err)

	return db
}

func seedAuthor(t *testing.T, db *gorm.DB, name string) models.Author {
	author := models.Author{Name: name, Country: "US"}
	require.NoError(t, db.Create(&author).Error)
	return author
}

func seedPublisher(t *testing.T, db *gorm.DB, name string) models.Publisher {
	publisher := models.Publisher{Name: name, Country: "US"}
	require.NoError(t, db.Create(&publisher).Error)
	return publisher
}

func seedBook(t *testing.T, db *gorm.DB, name string, authorID, publisherID uint) models.Book {
	book := models.Book{
		Name:          name,
		AuthorID:      authorID,
		PublisherID:   publisherID,
		PublishedDate: time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC),
		Price:         9.99,
		Availability:  true,
	}
	require.NoError(t, db.Create(&book).Error)
	return book
}

func seedUser(t *testing.T, db *gorm.DB, username string, active bool) models.User {
	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
		IsActive: active,
	}
	require.NoError(t, db.Create(&user).Error)
	if active {
		require.NoError(t, db.Model(&user).Update("is_active", true).Error)
	}
	return user
}

func TestBookAverageRatingRounding(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRatingService(db)
	ctx := context.Background()

	author := seedAuthor(t, db, "Frank Herbert")
	publisher := seedPublisher(t, db, "Chilton Books")
	book := seedBook(t, db, "Dune", author.ID, publisher.ID)

	for i, stars := range []int{4, 5, 5} {
		user := seedUser(t, db, []string{"alice", "bob", "carol"}[i], true)
		_, err := svc.RateBook(ctx, user.ID, book.ID, stars)
		require.NoError(t, err)
	}

	avg, err := svc.BookAverageRating(ctx, book.ID)
	require.NoError(t, err)
	require.NotNil(t, avg)
	// mean 4.666... rounds to 4.7
	assert.Equal(t, 4.7, *avg)
}

func TestBookAverageRatingNoRatings(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRatingService(db)

	author := seedAuthor(t, db, "Frank Herbert")
	publisher := seedPublisher(t, db, "Chilton Books")
	book := seedBook(t, db, "Dune", author.ID, publisher.ID)

	avg, err := svc.BookAverageRating(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Nil(t, avg, "a book with zero ratings must report no rating, not zero")
}

func TestRateBookDuplicateRejected(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRatingService(db)
	ctx := context.Background()

	author := seedAuthor(t, db, "Frank Herbert")
	publisher := seedPublisher(t, db, "Chilton Books")
	book := seedBook(t, db, "Dune", author.ID, publisher.ID)
	user := seedUser(t, db, "alice", true)

	_, err := svc.RateBook(ctx, user.ID, book.ID, 5)
	require.NoError(t, err)

	_, err = svc.RateBook(ctx, user.ID, book.ID, 3)
	assert.ErrorIs(t, err, ErrAlreadyRated)

	var count int64
	db.Model(&models.BookRating{}).Where("user_id = ? AND book_id = ?", user.ID, book.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRateBookValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRatingService(db)
	ctx := context.Background()

	author := seedAuthor(t, db, "Frank Herbert")
	publisher := seedPublisher(t, db, "Chilton Books")
	book := seedBook(t, db, "Dune", author.ID, publisher.ID)
	user := seedUser(t, db, "alice", true)

	_, err := svc.RateBook(ctx, user.ID, book.ID, 0)
	assert.Error(t, err)

	_, err = svc.RateBook(ctx, user.ID, book.ID, 6)
	assert.Error(t, err)

	_, err = svc.RateBook(ctx, user.ID, 9999, 4)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestAuthorAverageRatingSpansBooks(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRatingService(db)
	ctx := context.Background()

	author := seedAuthor(t, db, "Frank Herbert")
	publisher := seedPublisher(t, db, "Chilton Books")
	dune := seedBook(t, db, "Dune", author.ID, publisher.ID)
	messiah := seedBook(t, db, "Dune Messiah", author.ID, publisher.ID)

	alice := seedUser(t, db, "alice", true)
	bob := seedUser(t, db, "bob", true)

	_, err := svc.RateBook(ctx, alice.ID, dune.ID, 5)
	require.NoError(t, err)
	_, err = svc.RateBook(ctx, bob.ID, messiah.ID, 2)
	require.NoError(t, err)

	avg, err := svc.AuthorAverageRating(ctx, author.ID)
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.Equal(t, 3.5, *avg)
}

func TestPublisherAverageRatingSpansBooks(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRatingService(db)
	ctx := context.Background()

	herbert := seedAuthor(t, db, "Frank Herbert")
	asimov := seedAuthor(t, db, "Isaac Asimov")
	publisher := seedPublisher(t, db, "Chilton Books")
	dune := seedBook(t, db, "Dune", herbert.ID, publisher.ID)
	foundation := seedBook(t, db, "Foundation", asimov.ID, publisher.ID)

	alice := seedUser(t, db, "alice", true)
	bob := seedUser(t, db, "bob", true)

	_, err := svc.RateBook(ctx, alice.ID, dune.ID, 4)
	require.NoError(t, err)
	_, err = svc.RateBook(ctx, bob.ID, foundation.ID, 5)
	require.NoError(t, err)

	avg, err := svc.PublisherAverageRating(ctx, publisher.ID)
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.Equal(t, 4.5, *avg)

	otherPublisher := seedPublisher(t, db, "Gnome Press")
	avg, err = svc.PublisherAverageRating(ctx, otherPublisher.ID)
	require.NoError(t, err)
	assert.Nil(t, avg)
}
