package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gahan/book-inventory-backend/internal/models"
	"github.com/gahan/book-inventory-backend/internal/services"
	"github.com/gahan/book-inventory-backend/internal/utils"
	"github.com/gin-gonic/gin"
)

type BookHandler struct {
	bookService   *services.BookService
	ratingService *services.RatingService
	coverService  *services.CoverService
}

func NewBookHandler(bookService *services.BookService, ratingService *services.RatingService, coverService *services.CoverService) *BookHandler {
	return &BookHandler{
		bookService:   bookService,
		ratingService: ratingService,
		coverService:  coverService,
	}
}

// ListBooks is the home listing: every book annotated with its average
// rating, best-rated first.
func (h *BookHandler) ListBooks(c *gin.Context) {
	books, err := h.bookService.ListBooks(c.Request.Context())
	if err != nil {
		utils.SendInternalError(c, "Failed to retrieve books", err)
		return
	}

	utils.SendSuccess(c, "Books retrieved successfully", books)
}

func (h *BookHandler) SearchBooks(c *gin.Context) {
	var filter services.SearchFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.SendValidationError(c, "Invalid search parameters")
		return
	}

	books, err := h.bookService.SearchBooks(c.Request.Context(), filter)
	if err != nil {
		if errors.Is(err, services.ErrNoSearchCriteria) {
			utils.SendValidationError(c, "No match found: provide at least one search criteria")
			return
		}
		utils.SendInternalError(c, "Search failed", err)
		return
	}

	utils.SendSuccess(c, "Search completed successfully", books)
}

// GetBook is the product page: the book plus the book, author and
// publisher aggregate ratings.
func (h *BookHandler) GetBook(c *gin.Context) {
	bookID, err := strconv.ParseUint(c.Param("book_id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid book ID")
		return
	}

	book, err := h.bookService.GetBook(c.Request.Context(), uint(bookID))
	if err != nil {
		if errors.Is(err, services.ErrBookNotFound) {
			utils.SendNotFound(c, "Book not found")
			return
		}
		utils.SendInternalError(c, "Failed to retrieve book", err)
		return
	}

	bookRating, err := h.ratingService.BookAverageRating(c.Request.Context(), book.ID)
	if err != nil {
		utils.SendInternalError(c, "Failed to compute book rating", err)
		return
	}
	authorRating, err := h.ratingService.AuthorAverageRating(c.Request.Context(), book.AuthorID)
	if err != nil {
		utils.SendInternalError(c, "Failed to compute author rating", err)
		return
	}
	publisherRating, err := h.ratingService.PublisherAverageRating(c.Request.Context(), book.PublisherID)
	if err != nil {
		utils.SendInternalError(c, "Failed to compute publisher rating", err)
		return
	}

	utils.SendSuccess(c, "Book retrieved successfully", gin.H{
		"book":             book,
		"user_rating":      bookRating,
		"author_rating":    authorRating,
		"publisher_rating": publisherRating,
	})
}

func (h *BookHandler) CreateBook(c *gin.Context) {
	var req models.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	book, err := h.bookService.CreateBook(c.Request.Context(), req)
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, "Failed to create book", err)
		return
	}

	message := fmt.Sprintf("Book '%s' was added to inventory successfully!", book.Name)
	utils.SendCreated(c, message, book)
}

func (h *BookHandler) UpdateBook(c *gin.Context) {
	bookID, err := strconv.ParseUint(c.Param("book_id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid book ID")
		return
	}

	var req models.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	book, err := h.bookService.UpdateBook(c.Request.Context(), uint(bookID), req)
	if err != nil {
		if errors.Is(err, services.ErrBookNotFound) {
			utils.SendNotFound(c, "Book not found")
			return
		}
		utils.SendError(c, http.StatusBadRequest, "Failed to update book", err)
		return
	}

	message := fmt.Sprintf("Detail of '%s' successfully updated!", book.Name)
	utils.SendSuccess(c, message, book)
}

func (h *BookHandler) DeleteBook(c *gin.Context) {
	bookID, err := strconv.ParseUint(c.Param("book_id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid book ID")
		return
	}

	name, err := h.bookService.DeleteBook(c.Request.Context(), uint(bookID))
	if err != nil {
		if errors.Is(err, services.ErrBookNotFound) {
			utils.SendNotFound(c, "Book not found")
			return
		}
		utils.SendInternalError(c, "Failed to delete book", err)
		return
	}

	message := fmt.Sprintf("Book: %s deleted successfully", name)
	utils.SendSuccess(c, message, nil)
}

// ToggleAvailability flips the in-stock flag. switch_status must parse as
// a boolean; anything else is a validation error rather than an implicit
// false.
func (h *BookHandler) ToggleAvailability(c *gin.Context) {
	switchID, err := strconv.ParseUint(c.Query("switch_id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid switch_id")
		return
	}

	switchStatus, err := strconv.ParseBool(c.Query("switch_status"))
	if err != nil {
		utils.SendValidationError(c, "switch_status must be true or false")
		return
	}

	book, err := h.bookService.SetAvailability(c.Request.Context(), uint(switchID), switchStatus)
	if err != nil {
		if errors.Is(err, services.ErrBookNotFound) {
			utils.SendNotFound(c, "Book not found")
			return
		}
		utils.SendInternalError(c, "Failed to update availability", err)
		return
	}

	message := fmt.Sprintf("Book: %s id: %d new availability: %t", book.Name, book.ID, book.Availability)
	utils.SendSuccess(c, message, book)
}

func (h *BookHandler) RateBook(c *gin.Context) {
	userID := c.GetUint("user_id")

	bookID, err := strconv.ParseUint(c.Param("book_id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid book ID")
		return
	}

	var req struct {
		Rating int `json:"rating" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	rating, err := h.ratingService.RateBook(c.Request.Context(), userID, uint(bookID), req.Rating)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyRated) {
			utils.SendConflict(c, "You have already rated this book")
			return
		}
		if errors.Is(err, services.ErrBookNotFound) {
			utils.SendNotFound(c, "Book not found")
			return
		}
		utils.SendError(c, http.StatusBadRequest, "Failed to rate book", err)
		return
	}

	utils.SendCreated(c, "Rating submitted successfully", rating)
}

func (h *BookHandler) UploadCover(c *gin.Context) {
	bookID, err := strconv.ParseUint(c.Param("book_id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid book ID")
		return
	}

	fileHeader, err := c.FormFile("cover")
	if err != nil {
		utils.SendValidationError(c, "cover file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.SendInternalError(c, "Failed to open uploaded file", err)
		return
	}
	defer file.Close()

	cover, err := h.coverService.SetBookCover(c.Request.Context(), uint(bookID), file, fileHeader)
	if err != nil {
		if errors.Is(err, services.ErrBookNotFound) {
			utils.SendNotFound(c, "Book not found")
			return
		}
		utils.SendError(c, http.StatusBadRequest, "Failed to upload cover", err)
		return
	}

	utils.SendCreated(c, "Cover uploaded successfully", cover)
}

func (h *BookHandler) DeleteCover(c *gin.Context) {
	bookID, err := strconv.ParseUint(c.Param("book_id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid book ID")
		return
	}

	if err := h.coverService.RemoveBookCover(c.Request.Context(), uint(bookID)); err != nil {
		if errors.Is(err, services.ErrCoverNotFound) {
			utils.SendNotFound(c, "Book has no cover")
			return
		}
		utils.SendInternalError(c, "Failed to delete cover", err)
		return
	}

	utils.SendSuccess(c, "Cover deleted successfully", nil)
}
