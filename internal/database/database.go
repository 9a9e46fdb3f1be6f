package database

import (
	"github.com/gahan/book-inventory-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Init(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
		// Unique violations must surface as gorm.ErrDuplicatedKey so the
		// rating insert can report "already rated" without a prior read.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// Auto migrate schemas
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
	if err != nil {
		return nil, err
	}

	return db, nil
}
