package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/sjperalta/bufete-api/internal/models"
	"github.com/sjperalta/bufete-api/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

var exportColumns = []string{"ID", "Fecha", "Usuario", "Rol", "Acción", "Módulo", "Severidad", "Descripción", "Entidad", "IP"}

// ExportFile is a rendered export ready to be sent
type ExportFile struct {
	Data        []byte
	Filename    string
	ContentType string
	Rows        int
	// ArchivePath is where the archived copy was stored, empty when archiving is off
	ArchivePath string
}

// ExportArchive keeps a copy of every export
type ExportArchive interface {
	Save(data []byte, filename, subDir string, at time.Time) (string, error)
}

type ExportService struct {
	auditSvc *AuditService
	archive  ExportArchive
}

// NewExportService creates the export service. archive may be nil.
func NewExportService(auditSvc *AuditService, archive ExportArchive) *ExportService {
	return &ExportService{auditSvc: auditSvc, archive: archive}
}

// ExportAudit renders every record the actor can see under filter, not just
// one page. The export itself is written to the activity log.
func (s *ExportService) ExportAudit(ctx context.Context, actor models.Actor, filter AuditFilter, format, ip string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatXLSX && format != FormatPDF {
		return nil, &InvalidFilterValueError{Field: "format", Value: format}
	}

	ok, err := s.auditSvc.Exportable(actor.Role)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrExportDenied
	}

	res, err := s.auditSvc.Query(ctx, actor, filter, 1)
	if err != nil {
		return nil, err
	}

	loc := s.auditSvc.Location()
	now := s.auditSvc.opts.Now()
	var file *ExportFile
	switch format {
	case FormatCSV:
		file, err = s.auditCSV(res.Visible, loc, now)
	case FormatXLSX:
		file, err = s.auditXLSX(res.Visible, res.Stats, loc, now)
	case FormatPDF:
		file, err = s.auditPDF(res.Visible, res.Stats, loc, now)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render %s export: %w", format, err)
	}

	if s.archive != nil {
		path, err := s.archive.Save(file.Data, file.Filename, "auditoria", now)
		if err != nil {
			logger.Error("Failed to archive audit export", "actor", actor.ID, "error", err)
		} else {
			file.ArchivePath = path
		}
	}

	description := fmt.Sprintf("Exportó %d registros de auditoría en formato %s", file.Rows, strings.ToUpper(format))
	if _, err := s.auditSvc.Append(ctx, AuditRecordInput{
		ActorID:     actor.ID,
		ActorName:   actor.Name,
		ActorRole:   string(actor.Role),
		Action:      string(models.ActionExport),
		Module:      string(models.ModuleReports),
		Description: description,
		EntityType:  "exportacion",
		EntityName:  file.Filename,
		IPAddress:   ip,
		Details:     file.ArchivePath,
	}); err != nil {
		logger.Error("Failed to log audit export", "actor", actor.ID, "error", err)
	}
	return file, nil
}

func auditRow(r models.AuditRecord, loc *time.Location) []string {
	return []string{
		r.ID,
		r.Timestamp.In(loc).Format("2006-01-02 15:04:05"),
		r.ActorName,
		string(r.ActorRole),
		string(r.Action),
		string(r.Module),
		string(r.Severity),
		r.Description,
		r.EntityName,
		r.IPAddress,
	}
}

func exportFilename(now time.Time, ext string) string {
	return fmt.Sprintf("auditoria_%s.%s", now.Format("2006-01-02"), ext)
}

func (s *ExportService) auditCSV(records []models.AuditRecord, loc *time.Location, now time.Time) (*ExportFile, error) {
	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	if err := writer.Write(exportColumns); err != nil {
		return nil, err
	}
	for _, r := range records {
		if err := writer.Write(auditRow(r, loc)); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return &ExportFile{
		Data:        buf.Bytes(),
		Filename:    exportFilename(now, FormatCSV),
		ContentType: "text/csv; charset=utf-8",
		Rows:        len(records),
	}, nil
}

func (s *ExportService) auditXLSX(records []models.AuditRecord, stats AuditStats, loc *time.Location, now time.Time) (*ExportFile, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Auditoria"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, col)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
	_ = f.SetCellStyle(sheet, "A1", lastHeader, headerStyle)

	for i, r := range records {
		for j, v := range auditRow(r, loc) {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	summary := "Resumen"
	if _, err := f.NewSheet(summary); err != nil {
		return nil, err
	}
	_ = f.SetCellValue(summary, "A1", "Total")
	_ = f.SetCellValue(summary, "B1", stats.Total)
	_ = f.SetCellValue(summary, "A2", "Hoy")
	_ = f.SetCellValue(summary, "B2", stats.Today)
	for i, sev := range models.AllSeverities() {
		_ = f.SetCellValue(summary, fmt.Sprintf("A%d", i+4), string(sev))
		_ = f.SetCellValue(summary, fmt.Sprintf("B%d", i+4), stats.BySeverity[sev])
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}

	return &ExportFile{
		Data:        buf.Bytes(),
		Filename:    exportFilename(now, FormatXLSX),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Rows:        len(records),
	}, nil
}

func (s *ExportService) auditPDF(records []models.AuditRecord, stats AuditStats, loc *time.Location, now time.Time) (*ExportFile, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, tr("Registro de auditoría"))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(60, 8, tr(fmt.Sprintf("Generado: %s", now.In(loc).Format("2006-01-02 15:04"))))
	pdf.Ln(6)
	pdf.Cell(60, 8, fmt.Sprintf("Total: %d   Hoy: %d", stats.Total, stats.Today))
	pdf.Ln(10)

	widths := []float64{42, 50, 26, 28, 70, 61}
	headers := []string{"Fecha", "Usuario", "Acción", "Módulo", "Descripción", "Entidad"}

	pdf.SetFont("Arial", "B", 9)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, r := range records {
		row := []string{
			r.Timestamp.In(loc).Format("2006-01-02 15:04"),
			r.ActorName,
			string(r.Action),
			string(r.Module),
			truncate(r.Description, 48),
			truncate(r.EntityName, 40),
		}
		for i, v := range row {
			pdf.CellFormat(widths[i], 6, tr(v), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, err
	}

	return &ExportFile{
		Data:        buf.Bytes(),
		Filename:    exportFilename(now, FormatPDF),
		ContentType: "application/pdf",
		Rows:        len(records),
	}, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
