package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/bufete-api/internal/services"
)

type ExpenseHandler struct {
	expenseService *services.ExpenseService
}

func NewExpenseHandler(expenseService *services.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// @Summary List Expenses
// @Description Returns the case expenses the caller's role may see
// @Tags Expenses
// @Produce json
// @Param q query string false "Free text"
// @Param category query string false "Category or 'all'"
// @Param status query string false "Status or 'all'"
// @Param case_ref query string false "Case reference"
// @Param start_date query string false "First day (YYYY-MM-DD)"
// @Param end_date query string false "Last day (YYYY-MM-DD)"
// @Param page query int false "Page number" default(1)
// @Success 200 {object} services.ExpenseQueryResult
// @Security BearerAuth
// @Router /expenses [get]
func (h *ExpenseHandler) Index(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var in services.ExpenseFilterInput
	if err := c.ShouldBindQuery(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	filter, err := services.ParseExpenseFilter(in, h.expenseService.Location())
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.expenseService.Query(c.Request.Context(), actor, filter, pageParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Register Expense
// @Description Registers an expense incurred by the caller
// @Tags Expenses
// @Accept json
// @Produce json
// @Param expense body services.ExpenseInput true "Expense"
// @Success 201 {object} models.Expense
// @Security BearerAuth
// @Router /expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var in services.ExpenseInput
	if err := bindEnvelope(c, "expense", &in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	expense, err := h.expenseService.Create(c.Request.Context(), actor, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

type TimeEntryHandler struct {
	timeEntryService *services.TimeEntryService
}

func NewTimeEntryHandler(timeEntryService *services.TimeEntryService) *TimeEntryHandler {
	return &TimeEntryHandler{timeEntryService: timeEntryService}
}

// @Summary List Time Entries
// @Description Returns the time entries the caller's role may see
// @Tags Time
// @Produce json
// @Param q query string false "Free text"
// @Param billable query string false "true, false or 'all'"
// @Param case_ref query string false "Case reference"
// @Param start_date query string false "First day (YYYY-MM-DD)"
// @Param end_date query string false "Last day (YYYY-MM-DD)"
// @Param page query int false "Page number" default(1)
// @Success 200 {object} services.TimeEntryQueryResult
// @Security BearerAuth
// @Router /time_entries [get]
func (h *TimeEntryHandler) Index(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var in services.TimeEntryFilterInput
	if err := c.ShouldBindQuery(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	filter, err := services.ParseTimeEntryFilter(in, h.timeEntryService.Location())
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.timeEntryService.Query(c.Request.Context(), actor, filter, pageParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Log Time
// @Description Logs worked time for the caller
// @Tags Time
// @Accept json
// @Produce json
// @Param entry body services.TimeEntryInput true "Time entry"
// @Success 201 {object} models.TimeEntry
// @Security BearerAuth
// @Router /time_entries [post]
func (h *TimeEntryHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var in services.TimeEntryInput
	if err := bindEnvelope(c, "time_entry", &in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.timeEntryService.Create(c.Request.Context(), actor, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}
