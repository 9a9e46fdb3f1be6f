package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gahan/book-inventory-backend/internal/config"
	"github.com/gahan/book-inventory-backend/internal/models"
	"github.com/gahan/book-inventory-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxCoverSize = 10 * 1024 * 1024 // 10MB

var ErrCoverNotFound = errors.New("book has no cover")

// CoverService stores book cover images in S3 and tracks them as
// BookImage rows. A book holds at most one cover; setting a new one
// replaces the old object.
type CoverService struct {
	db         *gorm.DB
	client     *s3.S3
	bucketName string
	region     string
}

func NewCoverService(db *gorm.DB, cfg *config.Config) *CoverService {
	sess := session.Must(session.NewSession(&aws.Config{
		Region: aws.String(cfg.S3Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		),
	}))

	return &CoverService{
		db:         db,
		client:     s3.New(sess),
		bucketName: cfg.S3BucketName,
		region:     cfg.S3Region,
	}
}

func (s *CoverService) SetBookCover(ctx context.Context, bookID uint, file multipart.File, header *multipart.FileHeader) (*models.BookImage, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	var book models.Book
	if err := s.db.WithContext(ctx).First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("%w: failed to fetch book: %v", ErrDatabaseQuery, err)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = contentTypeFromExtension(header.Filename)
	}
	if !isValidImageType(contentType) {
		return nil, fmt.Errorf("invalid file type: %s", contentType)
	}
	if header.Size > maxCoverSize {
		return nil, fmt.Errorf("file size too large: %d bytes (max: %d bytes)", header.Size, maxCoverSize)
	}

	fileExt := filepath.Ext(header.Filename)
	key := fmt.Sprintf("books/covers/%d/%s%s", bookID, uuid.New().String(), fileExt)

	buffer := bytes.NewBuffer(nil)
	if _, err := io.Copy(buffer, file); err != nil {
		return nil, fmt.Errorf("failed to read file: %v", err)
	}

	_, err := s.client.PutObject(&s3.PutObjectInput{
		Bucket:       aws.String(s.bucketName),
		Key:          aws.String(key),
		Body:         bytes.NewReader(buffer.Bytes()),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("max-age=31536000"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %v", err)
	}

	image := models.BookImage{
		BookID:      bookID,
		FileName:    header.Filename,
		S3Key:       key,
		S3URL:       fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucketName, s.region, key),
		ContentType: contentType,
		Size:        header.Size,
	}

	// Replace any previous cover, cleaning up the old object afterwards
	var oldCover models.BookImage
	hadOld := s.db.WithContext(ctx).Where("book_id = ?", bookID).First(&oldCover).Error == nil

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if hadOld {
		if err := tx.Delete(&oldCover).Error; err != nil {
			tx.Rollback()
			s.deleteObject(key)
			return nil, fmt.Errorf("%w: failed to replace cover: %v", ErrDatabaseQuery, err)
		}
	}
	if err := tx.Create(&image).Error; err != nil {
		tx.Rollback()
		s.deleteObject(key)
		return nil, fmt.Errorf("%w: failed to record cover: %v", ErrDatabaseQuery, err)
	}
	if err := tx.Commit().Error; err != nil {
		s.deleteObject(key)
		return nil, fmt.Errorf("%w: failed to commit cover: %v", ErrDatabaseQuery, err)
	}

	if hadOld {
		if err := s.deleteObject(oldCover.S3Key); err != nil {
			logger.Warn("Failed to delete old cover from S3: ", err)
		}
	}

	return &image, nil
}

func (s *CoverService) RemoveBookCover(ctx context.Context, bookID uint) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	var cover models.BookImage
	if err := s.db.WithContext(ctx).Where("book_id = ?", bookID).First(&cover).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCoverNotFound
		}
		return fmt.Errorf("%w: failed to fetch cover: %v", ErrDatabaseQuery, err)
	}

	if err := s.db.WithContext(ctx).Delete(&cover).Error; err != nil {
		return fmt.Errorf("%w: failed to delete cover record: %v", ErrDatabaseQuery, err)
	}

	if err := s.deleteObject(cover.S3Key); err != nil {
		logger.Warn("Failed to delete cover from S3: ", err)
	}

	return nil
}

func (s *CoverService) deleteObject(key string) error {
	if key == "" {
		return nil
	}

	_, err := s.client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	return err
}

func isValidImageType(contentType string) bool {
	validTypes := []string{"image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp"}
	for _, validType := range validTypes {
		if strings.EqualFold(contentType, validType) {
			return true
		}
	}
	return false
}

func contentTypeFromExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return ""
	}
}
