package api

import (
	"github.com/gin-gonic/gin"

	"github.com/puran2003gupta/ragassist/internal/api/middleware"
	"github.com/puran2003gupta/ragassist/internal/service"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	APIKey       string
	AllowOrigins []string
}

// SetupRouter sets up the Gin router
func SetupRouter(
	askService *service.AskService,
	ingestService *service.IngestService,
	cfg RouterConfig,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.AllowOrigins))

	h := NewHandler(askService, ingestService)

	r.GET("/", h.Health)

	r.POST("/ask", h.Ask)
	r.GET("/ask", h.AskCompat)

	r.POST("/save_chat", h.SaveChat)
	r.GET("/load_chat", h.LoadChat)
	r.GET("/list_chats", h.ListChats)
	r.DELETE("/delete_chat", h.DeleteChat)

	// Ingestion requires the admin API key when one is configured.
	ingest := r.Group("/", middleware.Auth(cfg.APIKey))
	{
		ingest.POST("/ingest_pdf", h.IngestPDF)
		ingest.POST("/ingest_url", h.IngestURL)
	}

	return r
}
