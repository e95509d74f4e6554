package httpserver

import "github.com/gin-gonic/gin"

// registerRoutes wires the widget and dashboard endpoints.
func registerRoutes(router *gin.Engine, h *handlers) {
	router.GET("/healthz", h.handleHealth)

	api := router.Group("/api")
	{
		api.POST("/chat", h.handleChat)

		api.GET("/conversations", h.handleListConversations)
		api.POST("/conversations", h.handleCreateConversation)
		api.DELETE("/conversations", h.handleClearConversations)

		api.GET("/conversations/:id", h.handleGetConversation)
		api.POST("/conversations/:id", h.handleUpdateConversation)
		api.DELETE("/conversations/:id", h.handleDeleteConversation)
		api.POST("/conversations/:id/analyze", h.handleAnalyzeConversation)
	}
}
