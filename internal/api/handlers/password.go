package handlers

import (
	"net/http"

	"github.com/gahan/book-inventory-backend/internal/services"
	"github.com/gahan/book-inventory-backend/internal/utils"
	"github.com/gin-gonic/gin"
)

type PasswordHandler struct {
	authService *services.AuthService
}

func NewPasswordHandler(authService *services.AuthService) *PasswordHandler {
	return &PasswordHandler{
		authService: authService,
	}
}

func (h *PasswordHandler) ChangePassword(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		utils.SendUnauthorized(c, "Unauthorized")
		return
	}

	var req services.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	if err := h.authService.ChangePassword(userID, req); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Failed to change password", err)
		return
	}

	utils.SendSuccess(c, "Your password was changed successfully", nil)
}
