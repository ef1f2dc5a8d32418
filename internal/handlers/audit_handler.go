package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/bufete-api/internal/services"
)

type AuditHandler struct {
	auditService  *services.AuditService
	exportService *services.ExportService
}

func NewAuditHandler(auditService *services.AuditService, exportService *services.ExportService) *AuditHandler {
	return &AuditHandler{auditService: auditService, exportService: exportService}
}

// @Summary List Activity Log
// @Description Returns the page of audit records the caller's role may see, with statistics over the whole filtered set
// @Tags Audit
// @Produce json
// @Param q query string false "Free text over description, actor, entity and id"
// @Param action query string false "Action or 'all'"
// @Param module query string false "Module or 'all'"
// @Param severity query string false "Severity or 'all'"
// @Param start_date query string false "First day (YYYY-MM-DD)"
// @Param end_date query string false "Last day, inclusive (YYYY-MM-DD)"
// @Param page query int false "Page number" default(1)
// @Success 200 {object} services.AuditQueryResult
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Security BearerAuth
// @Router /audits [get]
func (h *AuditHandler) Index(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var in services.AuditFilterInput
	if err := c.ShouldBindQuery(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	session := h.auditService.NewSession(actor)
	if err := session.ApplyFilter(ctx, in); err != nil {
		respondError(c, err)
		return
	}
	if err := session.GoToPage(ctx, pageParam(c)); err != nil {
		respondError(c, err)
		return
	}

	result, err := session.Resolve(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Export Activity Log
// @Description Exports every audit record matching the filters (not only one page)
// @Tags Audit
// @Produce text/csv,application/pdf,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv, xlsx or pdf" default(csv)
// @Param q query string false "Free text"
// @Param action query string false "Action"
// @Param module query string false "Module"
// @Param severity query string false "Severity"
// @Param start_date query string false "First day (YYYY-MM-DD)"
// @Param end_date query string false "Last day (YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 403 {object} map[string]interface{}
// @Security BearerAuth
// @Router /audits/export [get]
func (h *AuditHandler) Export(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var in services.AuditFilterInput
	if err := c.ShouldBindQuery(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	filter, err := services.ParseAuditFilter(in, h.auditService.Location())
	if err != nil {
		respondError(c, err)
		return
	}

	file, err := h.exportService.ExportAudit(c.Request.Context(), actor, filter, c.Query("format"), c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", file.Filename))
	if file.ArchivePath != "" {
		c.Header("X-Archive-Path", file.ArchivePath)
	}
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// @Summary Record Activity
// @Description Appends an audit record. Reserved for administrators and the internal system actor.
// @Tags Audit
// @Accept json
// @Produce json
// @Param audit body services.AuditRecordInput true "Audit record"
// @Success 201 {object} models.AuditRecord
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Security BearerAuth
// @Router /audits [post]
func (h *AuditHandler) Create(c *gin.Context) {
	var in services.AuditRecordInput
	if err := bindEnvelope(c, "audit", &in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if in.IPAddress == "" {
		in.IPAddress = c.ClientIP()
	}

	record, err := h.auditService.Append(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}
