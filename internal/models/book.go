package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Book struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	Name          string     `json:"name" gorm:"not null"`
	AuthorID      uint       `json:"author_id" gorm:"not null;index"`
	PublisherID   uint       `json:"publisher_id" gorm:"not null;index"`
	PublishedDate time.Time  `json:"published_date"`
	Price         float64    `json:"price"`
	// No column default: an explicit false on create must not be
	// silently replaced, so the application sets the initial value.
	Availability  bool       `json:"availability"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Relations
	Author    Author       `json:"author,omitempty"`
	Publisher Publisher    `json:"publisher,omitempty"`
	Ratings   []BookRating `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Cover     *BookImage   `json:"cover,omitempty" gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
}

type Author struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Country   string    `json:"country"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Books []Book `json:"books,omitempty"`
}

type Publisher struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Country   string    `json:"country"`
	Website   string    `json:"website"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Books []Book `json:"books,omitempty"`
}

// BookImage is an S3-backed cover record. A book holds at most one cover.
type BookImage struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	BookID      uint      `json:"book_id" gorm:"not null;uniqueIndex"`
	FileName    string    `json:"file_name" gorm:"not null"`
	S3Key       string    `json:"s3_key" gorm:"not null;unique"`
	S3URL       string    `json:"s3_url" gorm:"not null"`
	ContentType string    `json:"content_type" gorm:"not null"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (i *BookImage) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Request structs for API
type CreateBookRequest struct {
	Name          string  `json:"name" binding:"required"`
	AuthorID      uint    `json:"author_id" binding:"required"`
	PublisherID   uint    `json:"publisher_id" binding:"required"`
	PublishedDate string  `json:"published_date" binding:"required"`
	Price         float64 `json:"price" binding:"gte=0"`
	Availability  *bool   `json:"availability,omitempty"`
}

type UpdateBookRequest struct {
	Name          *string  `json:"name,omitempty"`
	AuthorID      *uint    `json:"author_id,omitempty"`
	PublisherID   *uint    `json:"publisher_id,omitempty"`
	PublishedDate *string  `json:"published_date,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	Availability  *bool    `json:"availability,omitempty"`
}

// BookWithRating carries the on-demand aggregate for listings.
type BookWithRating struct {
	Book
	UserRating *float64 `json:"user_rating"`
}
