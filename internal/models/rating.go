package models

import (
	"time"
)

// BookRating is a single 1-5 vote. The composite unique index makes the
// insert the only duplicate check: a second submission for the same
// (user, book) pair fails at the database, not in application code.
type BookRating struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_book"`
	BookID    uint      `json:"book_id" gorm:"not null;uniqueIndex:idx_user_book"`
	Rating    int       `json:"rating" gorm:"check:rating >= 1 AND rating <= 5"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User User `json:"user,omitempty"`
	Book Book `json:"-"`
}

func (BookRating) TableName() string {
	return "book_ratings"
}
