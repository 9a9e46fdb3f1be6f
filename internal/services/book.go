package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gahan/book-inventory-backend/internal/models"
	"gorm.io/gorm"
)

const (
	QueryTimeout = 30 * time.Second

	// PublishedDateLayout is the wire format for published_date fields.
	PublishedDateLayout = "2006-01-02"

	// avgRatingColumn annotates each book row with its aggregate rating,
	// rounded to one decimal. AVG over zero rows is NULL, so books without
	// ratings report no rating rather than zero.
	avgRatingColumn = "(SELECT ROUND(AVG(rating), 1) FROM book_ratings WHERE book_ratings.book_id = books.id) AS user_rating"
)

var (
	ErrBookNotFound      = errors.New("book not found")
	ErrAuthorNotFound    = errors.New("author not found")
	ErrPublisherNotFound = errors.New("publisher not found")
	ErrNoSearchCriteria  = errors.New("no search criteria provided")
	ErrDatabaseQuery     = errors.New("database query failed")
)

type BookService struct {
	db *gorm.DB
}

func NewBookService(db *gorm.DB) *BookService {
	if db == nil {
		panic("database connection cannot be nil")
	}
	return &BookService{
		db: db,
	}
}

// SearchFilter holds the optional search criteria. Only supplied fields
// become query predicates; a request with every field empty is rejected
// instead of returning the unfiltered collection.
type SearchFilter struct {
	ID        uint   `form:"id"`
	Name      string `form:"name"`
	Author    string `form:"author"`
	Publisher string `form:"publication"`
}

func (f *SearchFilter) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Author = strings.TrimSpace(f.Author)
	f.Publisher = strings.TrimSpace(f.Publisher)
}

func (f *SearchFilter) Empty() bool {
	return f.ID == 0 && f.Name == "" && f.Author == "" && f.Publisher == ""
}

// ListBooks returns all books annotated with their average rating,
// best-rated first.
func (s *BookService) ListBooks(ctx context.Context) ([]models.BookWithRating, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	books := make([]models.BookWithRating, 0)
	err := s.db.WithContext(ctx).Model(&models.Book{}).
		Select("books.*, " + avgRatingColumn).
		Order("user_rating DESC").
		Find(&books).Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list books: %v", ErrDatabaseQuery, err)
	}

	return books, nil
}

// SearchBooks applies the conjunction of the supplied filters. Text
// filters match case-insensitive substrings.
func (s *BookService) SearchBooks(ctx context.Context, filter SearchFilter) ([]models.BookWithRating, error) {
	filter.Normalize()
	if filter.Empty() {
		return nil, ErrNoSearchCriteria
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	query := s.db.WithContext(ctx).Model(&models.Book{}).
		Select("books.*, " + avgRatingColumn).
		Joins("JOIN authors ON authors.id = books.author_id").
		Joins("JOIN publishers ON publishers.id = books.publisher_id")

	if filter.ID != 0 {
		query = query.Where("books.id = ?", filter.ID)
	}
	if filter.Name != "" {
		query = query.Where("LOWER(books.name) LIKE ?", "%"+strings.ToLower(filter.Name)+"%")
	}
	if filter.Author != "" {
		query = query.Where("LOWER(authors.name) LIKE ?", "%"+strings.ToLower(filter.Author)+"%")
	}
	if filter.Publisher != "" {
		query = query.Where("LOWER(publishers.name) LIKE ?", "%"+strings.ToLower(filter.Publisher)+"%")
	}

	books := make([]models.BookWithRating, 0)
	if err := query.Find(&books).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to search books: %v", ErrDatabaseQuery, err)
	}

	return books, nil
}

func (s *BookService) GetBook(ctx context.Context, id uint) (*models.Book, error) {
	if id == 0 {
		return nil, ErrBookNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	var book models.Book
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Publisher").
		Preload("Cover").
		First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("%w: failed to fetch book: %v", ErrDatabaseQuery, err)
	}

	return &book, nil
}

func (s *BookService) CreateBook(ctx context.Context, req models.CreateBookRequest) (*models.Book, error) {
	publishedDate, err := time.Parse(PublishedDateLayout, req.PublishedDate)
	if err != nil {
		return nil, fmt.Errorf("invalid published_date, expected %s", PublishedDateLayout)
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	if err := s.db.WithContext(ctx).First(&models.Author{}, req.AuthorID).Error; err != nil {
		return nil, ErrAuthorNotFound
	}
	if err := s.db.WithContext(ctx).First(&models.Publisher{}, req.PublisherID).Error; err != nil {
		return nil, ErrPublisherNotFound
	}

	book := models.Book{
		Name:          strings.TrimSpace(req.Name),
		AuthorID:      req.AuthorID,
		PublisherID:   req.PublisherID,
		PublishedDate: publishedDate,
		Price:         req.Price,
		Availability:  true,
	}
	if req.Availability != nil {
		book.Availability = *req.Availability
	}

	if err := s.db.WithContext(ctx).Create(&book).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to create book: %v", ErrDatabaseQuery, err)
	}

	s.db.WithContext(ctx).Preload("Author").Preload("Publisher").First(&book, book.ID)
	return &book, nil
}

func (s *BookService) UpdateBook(ctx context.Context, id uint, req models.UpdateBookRequest) (*models.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	var book models.Book
	if err := s.db.WithContext(ctx).First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("%w: failed to fetch book: %v", ErrDatabaseQuery, err)
	}

	updateData := make(map[string]interface{})
	if req.Name != nil {
		updateData["name"] = strings.TrimSpace(*req.Name)
	}
	if req.AuthorID != nil {
		if err := s.db.WithContext(ctx).First(&models.Author{}, *req.AuthorID).Error; err != nil {
			return nil, ErrAuthorNotFound
		}
		updateData["author_id"] = *req.AuthorID
	}
	if req.PublisherID != nil {
		if err := s.db.WithContext(ctx).First(&models.Publisher{}, *req.PublisherID).Error; err != nil {
			return nil, ErrPublisherNotFound
		}
		updateData["publisher_id"] = *req.PublisherID
	}
	if req.PublishedDate != nil {
		publishedDate, err := time.Parse(PublishedDateLayout, *req.PublishedDate)
		if err != nil {
			return nil, fmt.Errorf("invalid published_date, expected %s", PublishedDateLayout)
		}
		updateData["published_date"] = publishedDate
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, errors.New("price cannot be negative")
		}
		updateData["price"] = *req.Price
	}
	if req.Availability != nil {
		updateData["availability"] = *req.Availability
	}

	if len(updateData) > 0 {
		if err := s.db.WithContext(ctx).Model(&book).Updates(updateData).Error; err != nil {
			return nil, fmt.Errorf("%w: failed to update book: %v", ErrDatabaseQuery, err)
		}
	}

	s.db.WithContext(ctx).Preload("Author").Preload("Publisher").First(&book, book.ID)
	return &book, nil
}

// DeleteBook removes the book and its ratings, returning the deleted name
// so the handler can build the confirmation message from the same request.
func (s *BookService) DeleteBook(ctx context.Context, id uint) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	var book models.Book
	if err := s.db.WithContext(ctx).First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrBookNotFound
		}
		return "", fmt.Errorf("%w: failed to fetch book: %v", ErrDatabaseQuery, err)
	}

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Where("book_id = ?", book.ID).Delete(&models.BookRating{}).Error; err != nil {
		tx.Rollback()
		return "", fmt.Errorf("%w: failed to delete book ratings: %v", ErrDatabaseQuery, err)
	}
	if err := tx.Where("book_id = ?", book.ID).Delete(&models.BookImage{}).Error; err != nil {
		tx.Rollback()
		return "", fmt.Errorf("%w: failed to delete book cover: %v", ErrDatabaseQuery, err)
	}
	if err := tx.Delete(&book).Error; err != nil {
		tx.Rollback()
		return "", fmt.Errorf("%w: failed to delete book: %v", ErrDatabaseQuery, err)
	}

	if err := tx.Commit().Error; err != nil {
		return "", fmt.Errorf("%w: failed to commit delete: %v", ErrDatabaseQuery, err)
	}

	return book.Name, nil
}

// SetAvailability loads the book once and uses that row for both the
// update and the confirmation, so a bad id fails before any write and the
// message never races a concurrent delete.
func (s *BookService) SetAvailability(ctx context.Context, id uint, available bool) (*models.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	var book models.Book
	if err := s.db.WithContext(ctx).First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("%w: failed to fetch book: %v", ErrDatabaseQuery, err)
	}

	if err := s.db.WithContext(ctx).Model(&book).Update("availability", available).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to update availability: %v", ErrDatabaseQuery, err)
	}

	book.Availability = available
	return &book, nil
}
