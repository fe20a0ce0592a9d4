package ginserver

import (
	"fmt"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"healthtrack/internal/app/commands"
	"healthtrack/internal/app/dto"
	reportsapp "healthtrack/internal/app/handlers/reports"
	"healthtrack/internal/app/queries"
	"healthtrack/internal/domain/metrics"
	domainreports "healthtrack/internal/domain/reports"
)

type ReportHTTP interface {
	Evaluate(c *gin.Context)
	Submit(c *gin.Context)
	List(c *gin.Context)
	Export(c *gin.Context)
	Archive(c *gin.Context)
	Delete(c *gin.Context)
	Clear(c *gin.Context)
}

// ReportHandler serves the JSON report API. Every operation is scoped to the
// signed-in user, or to the guest scope without a session.
type ReportHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h ReportHandler) Evaluate(c *gin.Context) {
	var in metrics.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	result, err := queries.Ask[reportsapp.EvaluateMetricsQuery, dto.Evaluation](c.Request.Context(), h.Queries, reportsapp.EvaluateMetricsQuery{Input: in})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReportHandler) Submit(c *gin.Context) {
	var in metrics.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	cmd := reportsapp.SubmitMetricsCommand{
		Owner:      ownerOf(c),
		Input:      in,
		RequestKey: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[reportsapp.SubmitMetricsCommand, *reportsapp.SubmitMetricsResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	status := http.StatusOK
	if result.Saved {
		status = http.StatusCreated
		c.Header("Location", fmt.Sprintf("/api/v1/reports/%d", result.ReportID))
	}
	c.JSON(status, result)
}

func (h ReportHandler) List(c *gin.Context) {
	result, err := queries.Ask[reportsapp.ListReportsQuery, dto.ReportCollection](c.Request.Context(), h.Queries, reportsapp.ListReportsQuery{Owner: ownerOf(c)})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReportHandler) Export(c *gin.Context) {
	file, err := queries.Ask[reportsapp.ExportReportsQuery, reportsapp.ExportFile](c.Request.Context(), h.Queries, reportsapp.ExportReportsQuery{Owner: ownerOf(c)})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	writeExport(c, file)
}

func (h ReportHandler) Archive(c *gin.Context) {
	result, err := commands.Dispatch[reportsapp.ArchiveExportCommand, *reportsapp.ArchiveExportResult](c.Request.Context(), h.Commands, reportsapp.ArchiveExportCommand{Owner: ownerOf(c)})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ReportHandler) Delete(c *gin.Context) {
	id, err := domainreports.ParseID(c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	cmd := reportsapp.DeleteReportCommand{ID: id, Owner: ownerOf(c)}
	if _, err := commands.Dispatch[reportsapp.DeleteReportCommand, *reportsapp.DeleteReportResult](c.Request.Context(), h.Commands, cmd); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h ReportHandler) Clear(c *gin.Context) {
	result, err := commands.Dispatch[reportsapp.ClearReportsCommand, *reportsapp.ClearReportsResult](c.Request.Context(), h.Commands, reportsapp.ClearReportsCommand{Owner: ownerOf(c)})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func writeExport(c *gin.Context, file reportsapp.ExportFile) {
	c.Header("Content-Disposition", "attachment; filename="+file.FileName)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

var _ ReportHTTP = ReportHandler{}
