package main

import (
	"log"
	"net/http"

	controller "github.com/homeward-labs/docgate/controller"
	"github.com/homeward-labs/docgate/initializers"
	middleware "github.com/homeward-labs/docgate/middleware"
	service "github.com/homeward-labs/docgate/service"

	"github.com/gin-gonic/gin"
)

func init() {
	if err := initializers.LoadEnv(); err != nil {
		log.Printf("[WARN] No .env file loaded: %s", err)
	}
	if err := initializers.ConnectDB(); err != nil {
		log.Fatalf("[CRITICAL] Failed to initialize database connection: %s", err)
	}
	if err := initializers.Migrate(); err != nil {
		log.Fatalf("[CRITICAL] Failed to run database migrations: %s", err)
	}
}

func main() {
	docService, err := service.NewDocumentService(initializers.DB)
	if err != nil {
		log.Fatalf("Failed to initialize document service: %s", err)
	}

	docController := controller.NewDocumentController(docService)

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())

	// Global rate limiter for most routes
	router.Use(middleware.GlobalRateLimiter.Limit())

	// Uploads and policy changes get stricter rate limiting
	router.POST("/documents/upload",
		middleware.StrictRateLimiter.Limit(),
		docController.UploadDocument)
	router.POST("/documents/:id/reupload",
		middleware.StrictRateLimiter.Limit(),
		docController.ReuploadDocument)

	// Requirement template and overlays
	router.POST("/definitions",
		middleware.StrictRateLimiter.Limit(),
		docController.AddDocumentDefinition)
	router.GET("/phases/:phaseId/definitions", docController.GetPhaseDefinitions)
	router.PUT("/overlays",
		middleware.StrictRateLimiter.Limit(),
		docController.UpsertOverlay)
	router.GET("/phases/:phaseId/requirements", docController.GetEffectiveRequirements)
	router.POST("/phases/:phaseId/requirements/applicable", docController.GetApplicableRequirements)
	router.GET("/phases/:phaseId/overlays/validate", docController.ValidateOverlayConfig)

	// Review lifecycle
	router.POST("/documents/:id/reviews", docController.CreateReviews)
	router.GET("/documents/:id/reviews", docController.GetReviewSummary)
	router.GET("/documents/:id/reviews/can-review", docController.CanReview)
	router.POST("/documents/:id/reviews/submit", docController.SubmitReview)
	router.POST("/documents/:id/reviews/waive",
		middleware.StrictRateLimiter.Limit(),
		docController.WaiveReview)
	router.GET("/reviews/pending", docController.GetDocumentsPendingReview)

	// Directory lookup
	router.GET("/organization-types/resolve", docController.ResolveOrganizationType)

	// Healthcheck endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Other endpoints
	router.GET("/search", docController.SearchDocuments)
	router.GET("/dashboard", docController.GetAllDocuments)

	router.Run(":8080")
}
