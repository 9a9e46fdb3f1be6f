package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/gahan/book-inventory-backend/internal/models"
	"gorm.io/gorm"
)

// CatalogService serves the author and publisher pages: the entity, its
// aggregate rating across all of its books, and the books themselves
// annotated the same way.
type CatalogService struct {
	db            *gorm.DB
	ratingService *RatingService
}

func NewCatalogService(db *gorm.DB, ratingService *RatingService) *CatalogService {
	return &CatalogService{db: db, ratingService: ratingService}
}

type AuthorPage struct {
	Author        models.Author           `json:"author"`
	AverageRating *float64                `json:"average_rating"`
	Books         []models.BookWithRating `json:"books"`
}

type PublisherPage struct {
	Publisher     models.Publisher        `json:"publisher"`
	AverageRating *float64                `json:"average_rating"`
	Books         []models.BookWithRating `json:"books"`
}

func (s *CatalogService) GetAuthorPage(ctx context.Context, authorID uint) (*AuthorPage, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	var author models.Author
	if err := s.db.WithContext(ctx).First(&author, authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuthorNotFound
		}
		return nil, fmt.Errorf("%w: failed to fetch author: %v", ErrDatabaseQuery, err)
	}

	books, err := s.annotatedBooks(ctx, "books.author_id = ?", authorID)
	if err != nil {
		return nil, err
	}

	avg, err := s.ratingService.AuthorAverageRating(ctx, authorID)
	if err != nil {
		return nil, err
	}

	return &AuthorPage{
		Author:        author,
		AverageRating: avg,
		Books:         books,
	}, nil
}

func (s *CatalogService) GetPublisherPage(ctx context.Context, publisherID uint) (*PublisherPage, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	var publisher models.Publisher
	if err := s.db.WithContext(ctx).First(&publisher, publisherID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPublisherNotFound
		}
		return nil, fmt.Errorf("%w: failed to fetch publisher: %v", ErrDatabaseQuery, err)
	}

	books, err := s.annotatedBooks(ctx, "books.publisher_id = ?", publisherID)
	if err != nil {
		return nil, err
	}

	avg, err := s.ratingService.PublisherAverageRating(ctx, publisherID)
	if err != nil {
		return nil, err
	}

	return &PublisherPage{
		Publisher:     publisher,
		AverageRating: avg,
		Books:         books,
	}, nil
}

func (s *CatalogService) annotatedBooks(ctx context.Context, condition string, id uint) ([]models.BookWithRating, error) {
	books := make([]models.BookWithRating, 0)
	err := s.db.WithContext(ctx).Model(&models.Book{}).
		Select("books.*, "+avgRatingColumn).
		Where(condition, id).
		Order("published_date DESC").
		Find(&books).Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch books: %v", ErrDatabaseQuery, err)
	}
	return books, nil
}
