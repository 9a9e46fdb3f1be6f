package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gahan/book-inventory-backend/internal/models"
	"github.com/gahan/book-inventory-backend/internal/utils"
	"gorm.io/gorm"
)

var ErrAlreadyRated = errors.New("you have already rated this book")

type RatingService struct {
	db *gorm.DB
}

func NewRatingService(db *gorm.DB) *RatingService {
	return &RatingService{db: db}
}

// RateBook inserts the rating in a single statement. The unique index on
// (user_id, book_id) is the duplicate check; a violation means this user
// already rated this book.
func (s *RatingService) RateBook(ctx context.Context, userID, bookID uint, rating int) (*models.BookRating, error) {
	if !utils.IsValidRating(rating) {
		return nil, errors.New("rating must be between 1 and 5")
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	if err := s.db.WithContext(ctx).First(&models.Book{}, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("%w: failed to fetch book: %v", ErrDatabaseQuery, err)
	}

	bookRating := models.BookRating{
		UserID: userID,
		BookID: bookID,
		Rating: rating,
	}

	if err := s.db.WithContext(ctx).Create(&bookRating).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyRated
		}
		return nil, fmt.Errorf("%w: failed to create rating: %v", ErrDatabaseQuery, err)
	}

	return &bookRating, nil
}

// BookAverageRating returns the mean of the book's ratings rounded to one
// decimal, or nil when the book has no ratings yet.
func (s *RatingService) BookAverageRating(ctx context.Context, bookID uint) (*float64, error) {
	query := "SELECT ROUND(AVG(rating), 1) FROM book_ratings WHERE book_id = ?"
	return s.averageRating(ctx, query, bookID)
}

// AuthorAverageRating aggregates over every rating of every book by the
// author.
func (s *RatingService) AuthorAverageRating(ctx context.Context, authorID uint) (*float64, error) {
	query := `SELECT ROUND(AVG(book_ratings.rating), 1)
		FROM book_ratings
		JOIN books ON books.id = book_ratings.book_id
		WHERE books.author_id = ?`
	return s.averageRating(ctx, query, authorID)
}

// PublisherAverageRating aggregates over every rating of every book the
// publisher published.
func (s *RatingService) PublisherAverageRating(ctx context.Context, publisherID uint) (*float64, error) {
	query := `SELECT ROUND(AVG(book_ratings.rating), 1)
		FROM book_ratings
		JOIN books ON books.id = book_ratings.book_id
		WHERE books.publisher_id = ?`
	return s.averageRating(ctx, query, publisherID)
}

func (s *RatingService) averageRating(ctx context.Context, query string, id uint) (*float64, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	var avg sql.NullFloat64
	row := s.db.WithContext(ctx).Raw(query, id).Row()
	if err := row.Scan(&avg); err != nil {
		return nil, fmt.Errorf("%w: failed to compute average rating: %v", ErrDatabaseQuery, err)
	}

	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}
