package routes

import (
	"github.com/gahan/book-inventory-backend/internal/api/handlers"
	"github.com/gahan/book-inventory-backend/internal/api/middleware"
	"github.com/gahan/book-inventory-backend/internal/config"
	"github.com/gahan/book-inventory-backend/internal/services"
	"github.com/gahan/book-inventory-backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) {
	// Middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RateLimitMiddleware(cfg))

	// Initialize services
	emailService := services.NewEmailService(cfg)
	authService := services.NewAuthService(db, cfg, emailService)
	bookService := services.NewBookService(db)
	ratingService := services.NewRatingService(db)
	catalogService := services.NewCatalogService(db, ratingService)
	coverService := services.NewCoverService(db, cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	passwordHandler := handlers.NewPasswordHandler(authService)
	bookHandler := handlers.NewBookHandler(bookService, ratingService, coverService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	resourceHandler := handlers.NewResourceHandler(db)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "message": "Server is running"})
	})

	// API routes
	api := router.Group("/api/v1")

	// Auth routes (public)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.GET("/activate/:user_id/:token", authHandler.Activate)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", middleware.AuthMiddleware(cfg), authHandler.Logout)
		auth.POST("/refresh-token", authHandler.RefreshToken)
		auth.GET("/profile", middleware.AuthMiddleware(cfg), authHandler.GetProfile)
	}

	// Password routes
	passwordGroup := api.Group("/password")
	{
		passwordGroup.POST("/change", middleware.AuthMiddleware(cfg), passwordHandler.ChangePassword) // Requires authentication
	}

	// Book routes
	books := api.Group("/books")
	{
		books.GET("", middleware.AuthMiddleware(cfg), bookHandler.ListBooks)
		books.GET("/search", bookHandler.SearchBooks)
		books.GET("/availability", bookHandler.ToggleAvailability)
		books.GET("/:book_id", bookHandler.GetBook)
		books.POST("", middleware.AuthMiddleware(cfg), bookHandler.CreateBook)
		books.PUT("/:book_id", middleware.AuthMiddleware(cfg), bookHandler.UpdateBook)
		books.DELETE("/:book_id", middleware.AuthMiddleware(cfg), bookHandler.DeleteBook)
		books.POST("/:book_id/rating", middleware.AuthMiddleware(cfg), bookHandler.RateBook)
		books.POST("/:book_id/cover", middleware.AuthMiddleware(cfg), bookHandler.UploadCover)
		books.DELETE("/:book_id/cover", middleware.AuthMiddleware(cfg), bookHandler.DeleteCover)
	}

	// Author and publisher pages
	api.GET("/authors/:author_id", catalogHandler.GetAuthor)
	api.GET("/publishers/:publisher_id", catalogHandler.GetPublisher)

	// Uniform REST resources
	rest := api.Group("/rest", middleware.AuthMiddleware(cfg))
	resourceHandler.Register(rest)

	logger.Info("Routes initialized successfully")
}
