package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/procuresmart/backend-go/internal/domain"
	"github.com/andresuchdata/procuresmart/backend-go/internal/report"
	"github.com/andresuchdata/procuresmart/backend-go/internal/service"
)

const defaultMaxUploadBytes = 20 << 20

type AnalysisHandler struct {
	analysisService *service.AnalysisService
	maxUploadBytes  int64
}

func NewAnalysisHandler(analysisService *service.AnalysisService, maxUploadMB int64) *AnalysisHandler {
	maxBytes := maxUploadMB << 20
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	return &AnalysisHandler{analysisService: analysisService, maxUploadBytes: maxBytes}
}

type recordsRequest struct {
	ProjectionDays int                     `json:"projectionDays"`
	Records        []domain.MaterialRecord `json:"records"`
	Narrative      bool                    `json:"narrative"`
	MinPriority    string                  `json:"minPriority"`
}

type objectsRequest struct {
	Keys           []string `json:"keys"`
	ProjectionDays int      `json:"projectionDays"`
	Narrative      bool     `json:"narrative"`
}

// UploadAnalysis handles POST /analysis/upload
func (h *AnalysisHandler) UploadAnalysis(c *gin.Context) {
	rep, ok := h.analyzeUpload(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rep)
}

// ExportAnalysis handles POST /analysis/upload/export?format=csv|xlsx
func (h *AnalysisHandler) ExportAnalysis(c *gin.Context) {
	format, err := report.ParseFormat(c.DefaultQuery("format", "csv"))
	if err != nil || format == report.FormatTable {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be one of csv, xlsx or json"})
		return
	}

	rep, ok := h.analyzeUpload(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, *rep, format); err != nil {
		log.Error().Err(err).Str("format", string(format)).Msg("failed to render report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render report"})
		return
	}

	filename := report.FileName(rep.Source, format)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (h *AnalysisHandler) analyzeUpload(c *gin.Context) (*domain.Report, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("file exceeds %d bytes", h.maxUploadBytes)})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return nil, false
	}

	req, err := h.requestFromForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	floor, err := report.ParseMinPriority(formOrQuery(c, "min_priority"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file"})
		return nil, false
	}
	defer file.Close()

	rep, err := h.analysisService.AnalyzeFile(c.Request.Context(), fileHeader.Filename, file, req)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	filtered := report.FilterPriority(*rep, floor)
	return &filtered, true
}

// AnalyzeRecords handles POST /analysis/records
func (h *AnalysisHandler) AnalyzeRecords(c *gin.Context) {
	var body recordsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	floor, err := report.ParseMinPriority(body.MinPriority)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rep, err := h.analysisService.AnalyzeRecords(c.Request.Context(), body.Records, service.Request{
		ProjectionDays: body.ProjectionDays,
		Narrative:      body.Narrative,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report.FilterPriority(*rep, floor))
}

// ListObjects handles GET /sources/objects
func (h *AnalysisHandler) ListObjects(c *gin.Context) {
	objects, err := h.analysisService.ListObjects(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, objects)
}

// AnalyzeObjects handles POST /analysis/objects
func (h *AnalysisHandler) AnalyzeObjects(c *gin.Context) {
	var body objectsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if body.ProjectionDays < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "projectionDays must be a positive integer"})
		return
	}

	reports, err := h.analysisService.AnalyzeObjects(c.Request.Context(), body.Keys, service.Request{
		ProjectionDays: body.ProjectionDays,
		Narrative:      body.Narrative,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// ListDriveFiles handles GET /sources/drive/files
func (h *AnalysisHandler) ListDriveFiles(c *gin.Context) {
	files, err := h.analysisService.ListDriveFiles(c.Request.Context(), c.Query("folder_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

// AnalyzeDriveFile handles POST /analysis/drive/:fileId
func (h *AnalysisHandler) AnalyzeDriveFile(c *gin.Context) {
	fileID := strings.TrimSpace(c.Param("fileId"))
	if fileID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fileId is required"})
		return
	}

	req, err := h.requestFromForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	floor, err := report.ParseMinPriority(formOrQuery(c, "min_priority"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rep, err := h.analysisService.AnalyzeDriveFile(c.Request.Context(), fileID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report.FilterPriority(*rep, floor))
}

// GetLayout handles GET /layout
func (h *AnalysisHandler) GetLayout(c *gin.Context) {
	layout := h.analysisService.Layout()
	c.JSON(http.StatusOK, gin.H{
		"layout":                layout.Describe(),
		"columns":               layout.Columns(),
		"preferredSheet":        layout.PreferredSheet,
		"headerRows":            layout.HeaderRows,
		"defaultProjectionDays": h.analysisService.DefaultProjectionDays(),
	})
}

// requestFromForm reads projection_days and narrative from the form or query string.
func (h *AnalysisHandler) requestFromForm(c *gin.Context) (service.Request, error) {
	var req service.Request

	days, err := parseProjectionDays(formOrQuery(c, "projection_days"))
	if err != nil {
		return req, err
	}
	req.ProjectionDays = days

	if raw := formOrQuery(c, "narrative"); raw != "" {
		narrative, err := strconv.ParseBool(raw)
		if err != nil {
			return req, fmt.Errorf("narrative must be true or false")
		}
		req.Narrative = narrative
	}
	return req, nil
}

func formOrQuery(c *gin.Context, key string) string {
	if v := strings.TrimSpace(c.PostForm(key)); v != "" {
		return v
	}
	return strings.TrimSpace(c.Query(key))
}

// parseProjectionDays returns zero for an empty value, selecting the default.
func parseProjectionDays(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	days, err := strconv.Atoi(value)
	if err != nil || days <= 0 {
		return 0, fmt.Errorf("projection_days must be a positive integer")
	}
	return days, nil
}

func (h *AnalysisHandler) fail(c *gin.Context, err error) {
	var (
		ingestErr *domain.IngestionError
		srcErr    *service.SourceError
	)

	switch {
	case errors.As(err, &ingestErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "failed to read spreadsheet",
			"details": err.Error(),
			"layout":  ingestErr.Layout,
		})
	case errors.Is(err, domain.ErrInvalidRecord):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSourceNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.As(err, &srcErr):
		log.Error().Err(err).Str("source", srcErr.Source).Msg("upstream source failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream source failed", "details": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("analysis failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
	}
}
