package http

import (
	"github.com/gin-gonic/gin"

	appsvc "ragchat/internal/app"
	"ragchat/internal/bootstrap"
	"ragchat/internal/transport/http/handler"
	"ragchat/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App, ragService *appsvc.RAGService, docService *appsvc.DocumentService) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.RequestID())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	ragHandler := handler.NewRAGHandler(ragService, app.Config.RAG.MaxUploadMB)
	docHandler := handler.NewDocumentHandler(docService)

	v1 := router.Group("/api/v1/rag")
	v1.POST("/documents", ragHandler.Upload)
	v1.GET("/documents", docHandler.List)
	v1.PATCH("/documents/:id", docHandler.Update)
	v1.DELETE("/documents/:id", docHandler.Delete)
	v1.POST("/ask", ragHandler.Ask)
	v1.POST("/summarize", ragHandler.Summarize)
	v1.POST("/similarity", ragHandler.CheckSimilarity)

	return router
}
