package handlers

import (
	"errors"
	"strconv"

	"github.com/gahan/book-inventory-backend/internal/services"
	"github.com/gahan/book-inventory-backend/internal/utils"
	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogService *services.CatalogService
}

func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) GetAuthor(c *gin.Context) {
	authorID, err := strconv.ParseUint(c.Param("author_id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid author ID")
		return
	}

	page, err := h.catalogService.GetAuthorPage(c.Request.Context(), uint(authorID))
	if err != nil {
		if errors.Is(err, services.ErrAuthorNotFound) {
			utils.SendNotFound(c, "No author exists for this reference")
			return
		}
		utils.SendInternalError(c, "Failed to retrieve author", err)
		return
	}

	utils.SendSuccess(c, "Author retrieved successfully", page)
}

func (h *CatalogHandler) GetPublisher(c *gin.Context) {
	publisherID, err := strconv.ParseUint(c.Param("publisher_id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid publisher ID")
		return
	}

	page, err := h.catalogService.GetPublisherPage(c.Request.Context(), uint(publisherID))
	if err != nil {
		if errors.Is(err, services.ErrPublisherNotFound) {
			utils.SendNotFound(c, "No publisher exists for this reference")
			return
		}
		utils.SendInternalError(c, "Failed to retrieve publisher", err)
		return
	}

	utils.SendSuccess(c, "Publisher retrieved successfully", page)
}
