package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gahan/book-inventory-backend/internal/models"
	"github.com/gahan/book-inventory-backend/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResourceHandler exposes the uniform REST surface: plain
// list/retrieve/create/update/delete per collection, no business rules.
// Associations are never written through this layer.
type ResourceHandler struct {
	db *gorm.DB
}

func NewResourceHandler(db *gorm.DB) *ResourceHandler {
	return &ResourceHandler{db: db}
}

// Register mounts every collection under the given group.
func (h *ResourceHandler) Register(rg *gin.RouterGroup) {
	registerResource[models.Group](rg, h.db, "/groups", "")
	registerResource[models.Author](rg, h.db, "/authors", "")
	registerResource[models.Publisher](rg, h.db, "/publishers", "")
	registerResource[models.Book](rg, h.db, "/books", "")

	// Users need a create path that accepts a password; everything else is
	// uniform. Listed newest-first.
	users := rg.Group("/users")
	users.GET("", listResource[models.User](h.db, "date_joined DESC"))
	users.GET("/:id", getResource[models.User](h.db))
	users.POST("", h.createUser)
	users.PUT("/:id", updateResource[models.User](h.db))
	users.DELETE("/:id", deleteResource[models.User](h.db))
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	IsActive bool   `json:"is_active"`
}

func (h *ResourceHandler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	user := models.User{
		Username: utils.SanitizeString(req.Username),
		Email:    utils.SanitizeString(req.Email),
		Password: req.Password,
		IsActive: req.IsActive,
	}

	if err := h.db.Omit(clause.Associations).Create(&user).Error; err != nil {
		utils.SendError(c, http.StatusBadRequest, "Failed to create user", err)
		return
	}

	utils.SendCreated(c, "Resource created successfully", user)
}

func registerResource[T any](rg *gin.RouterGroup, db *gorm.DB, path, order string) {
	group := rg.Group(path)
	group.GET("", listResource[T](db, order))
	group.GET("/:id", getResource[T](db))
	group.POST("", createResource[T](db))
	group.PUT("/:id", updateResource[T](db))
	group.DELETE("/:id", deleteResource[T](db))
}

func listResource[T any](db *gorm.DB, order string) gin.HandlerFunc {
	return func(c *gin.Context) {
		items := make([]T, 0)
		query := db
		if order != "" {
			query = query.Order(order)
		}
		if err := query.Find(&items).Error; err != nil {
			utils.SendInternalError(c, "Failed to list resources", err)
			return
		}
		utils.SendSuccess(c, "Resources retrieved successfully", items)
	}
}

func getResource[T any](db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			utils.SendValidationError(c, "Invalid resource ID")
			return
		}

		var item T
		if err := db.First(&item, uint(id)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.SendNotFound(c, "Resource not found")
				return
			}
			utils.SendInternalError(c, "Failed to fetch resource", err)
			return
		}
		utils.SendSuccess(c, "Resource retrieved successfully", item)
	}
}

func createResource[T any](db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var item T
		if err := c.ShouldBindJSON(&item); err != nil {
			utils.SendValidationError(c, "Invalid request data")
			return
		}
		if err := db.Omit(clause.Associations).Create(&item).Error; err != nil {
			utils.SendError(c, http.StatusBadRequest, "Failed to create resource", err)
			return
		}
		utils.SendCreated(c, "Resource created successfully", item)
	}
}

// updateResource applies the non-zero fields of the payload; zero fields
// are left untouched.
func updateResource[T any](db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			utils.SendValidationError(c, "Invalid resource ID")
			return
		}

		var existing T
		if err := db.First(&existing, uint(id)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.SendNotFound(c, "Resource not found")
				return
			}
			utils.SendInternalError(c, "Failed to fetch resource", err)
			return
		}

		var patch T
		if err := c.ShouldBindJSON(&patch); err != nil {
			utils.SendValidationError(c, "Invalid request data")
			return
		}

		if err := db.Model(&existing).Omit(clause.Associations).Updates(patch).Error; err != nil {
			utils.SendError(c, http.StatusBadRequest, "Failed to update resource", err)
			return
		}
		utils.SendSuccess(c, "Resource updated successfully", existing)
	}
}

func deleteResource[T any](db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			utils.SendValidationError(c, "Invalid resource ID")
			return
		}

		var item T
		if err := db.First(&item, uint(id)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.SendNotFound(c, "Resource not found")
				return
			}
			utils.SendInternalError(c, "Failed to fetch resource", err)
			return
		}

		if err := db.Delete(&item).Error; err != nil {
			utils.SendInternalError(c, "Failed to delete resource", err)
			return
		}
		utils.SendSuccess(c, "Resource deleted successfully", nil)
	}
}
