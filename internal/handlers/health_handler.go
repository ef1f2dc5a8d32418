package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/bufete-api/internal/policy"
	"github.com/sjperalta/bufete-api/internal/services"
)

type HealthHandler struct {
	svcs *services.Services
}

func NewHealthHandler(svcs *services.Services) *HealthHandler {
	return &HealthHandler{svcs: svcs}
}

// @Summary Health Check
// @Description Checks if the API is running and how many records each log holds
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "bufete-api",
		"version": "1.0.0",
		"records": gin.H{
			policy.DomainAudit:       h.svcs.Audit.Len(),
			policy.DomainExpenses:    h.svcs.Expense.Len(),
			policy.DomainTimeEntries: h.svcs.TimeEntry.Len(),
		},
	})
}
