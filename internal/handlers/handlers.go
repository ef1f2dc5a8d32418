package handlers

import (
	"errors"
	"net/http"
	"strconv"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/sjperalta/bufete-api/internal/middleware"
	"github.com/sjperalta/bufete-api/internal/models"
	"github.com/sjperalta/bufete-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health    *HealthHandler
	Audit     *AuditHandler
	Expense   *ExpenseHandler
	TimeEntry *TimeEntryHandler
	Role      *RoleHandler
	Job       *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(svcs),
		Audit:     NewAuditHandler(svcs.Audit, svcs.Export),
		Expense:   NewExpenseHandler(svcs.Expense),
		TimeEntry: NewTimeEntryHandler(svcs.TimeEntry),
		Role:      NewRoleHandler(svcs.Roles),
		Job:       NewJobHandler(svcs.Job),
	}
}

// currentActor returns the authenticated actor or writes a 401
func currentActor(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No autenticado"})
		return models.Actor{}, false
	}
	return actor, true
}

// pageParam reads ?page. Anything unparsable asks for page 1; the query
// clamps out of range values.
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		return 1
	}
	return page
}

// respondError maps service errors onto HTTP responses
func respondError(c *gin.Context, err error) {
	var (
		unknownRole   *services.UnknownRoleError
		invalidFilter *services.InvalidFilterValueError
	)
	switch {
	case errors.As(err, &unknownRole):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "code": "unknown_role", "role": unknownRole.Role})
	case errors.As(err, &invalidFilter):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_filter", "field": invalidFilter.Field})
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_record"})
	case errors.Is(err, services.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "duplicate"})
	case errors.Is(err, services.ErrExportDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "code": "export_denied"})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "code": "forbidden"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno del servidor"})
	}
}
