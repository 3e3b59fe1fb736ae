package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// registerRoutes sets up all console routes on the Gin router.
func registerRoutes(router *gin.Engine, db *gorm.DB) {
	api := router.Group("/api")

	// Conversations.
	api.GET("/chats", handleChatList(db))
	api.GET("/chats/:phone", handleChatOverview(db))
	api.GET("/chats/:phone/sessions/:ticket", handleSessionView(db))

	// Message ingestion and sending.
	api.POST("/inbound", handleInbound(db))
	api.POST("/messages", handleSend(db))

	// Session lifecycle.
	api.POST("/sessions/:ticket/close", handleCloseSession(db))

	// Customers.
	api.GET("/customers", handleCustomerList(db))
	api.PUT("/customers/:phone", handleCustomerUpsert(db))

	// Auto-reply rules.
	api.GET("/autoreply", handleRuleList(db))
	api.POST("/autoreply", handleRuleCreate(db))
	api.DELETE("/autoreply/:id", handleRuleDelete(db))
	api.GET("/autoreply/match", handleRuleMatch(db))

	// Office hours.
	api.GET("/officehours/:tag", handleOfficeHoursGet(db))
	api.PUT("/officehours/:tag", handleOfficeHoursSet(db))

	// Templates.
	api.GET("/templates", handleTemplateList(db))
	api.POST("/templates", handleTemplateCreate(db))
	api.DELETE("/templates/:id", handleTemplateDelete(db))

	// Flows.
	api.GET("/flows", handleFlowList(db))
	api.POST("/flows", handleFlowCreate(db))
	api.DELETE("/flows/:id", handleFlowDelete(db))
	api.GET("/flows/:id/steps", handleStepList(db))
	api.PUT("/flows/:id/steps", handleStepSave(db))
}

// fail maps store/domain errors onto HTTP statuses: validation errors are the
// client's fault, missing rows are 404, the rest is 500.
func fail(c *gin.Context, err error) {
	msg := err.Error()
	status := http.StatusInternalServerError
	switch {
	case strings.Contains(msg, "not found"):
		status = http.StatusNotFound
	case strings.Contains(msg, "is required"),
		strings.Contains(msg, "already"),
		strings.Contains(msg, "hours:"),
		strings.Contains(msg, "before start"):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": msg})
}
