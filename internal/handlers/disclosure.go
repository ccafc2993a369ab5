// internal/handlers/disclosure.go
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/patentops/disclosure-api/internal/extraction"
	"github.com/patentops/disclosure-api/internal/models"
	"github.com/patentops/disclosure-api/internal/services"
	"github.com/patentops/disclosure-api/internal/utils"
)

type DisclosureHandler struct {
	disclosureService *services.DisclosureService
	exportService     *services.ExportService
	extractionTimeout time.Duration
}

func NewDisclosureHandler(disclosureService *services.DisclosureService, exportService *services.ExportService, extractionTimeout time.Duration) *DisclosureHandler {
	return &DisclosureHandler{
		disclosureService: disclosureService,
		exportService:     exportService,
		extractionTimeout: extractionTimeout,
	}
}

// POST /disclosures/upload
func (h *DisclosureHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "No file uploaded", err.Error())
		return
	}

	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		utils.BadRequestResponse(c, "Only PDF files are accepted", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.BadRequestResponse(c, "Failed to read uploaded file", err.Error())
		return
	}
	defer file.Close()

	pdfBytes, err := io.ReadAll(file)
	if err != nil {
		utils.BadRequestResponse(c, "Failed to read uploaded file", err.Error())
		return
	}

	// Extraction is the slow leg of ingestion; bound it so a stuck document
	// cannot pin the request forever. Nothing is persisted on expiry.
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.extractionTimeout)
	defer cancel()

	disclosure, err := h.disclosureService.Ingest(ctx, fileHeader.Filename, pdfBytes)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":    "Disclosure created successfully",
		"disclosure": disclosure,
	})
}

// GET /disclosures
func (h *DisclosureHandler) List(c *gin.Context) {
	search, status, ok := h.parseFilters(c)
	if !ok {
		return
	}

	disclosures, err := h.disclosureService.List(c.Request.Context(), search, status)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"disclosures": disclosures,
	})
}

// GET /disclosures/:id
func (h *DisclosureHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	disclosure, err := h.disclosureService.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"disclosure": disclosure,
	})
}

// PATCH /disclosures/:id
func (h *DisclosureHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req services.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	disclosure, err := h.disclosureService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":    "Disclosure updated successfully",
		"disclosure": disclosure,
	})
}

// DELETE /disclosures/:id
func (h *DisclosureHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.disclosureService.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "Disclosure deleted successfully",
	})
}

// GET /disclosures/export/csv
func (h *DisclosureHandler) ExportCSV(c *gin.Context) {
	search, status, ok := h.parseFilters(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="disclosures.csv"`)
	c.Status(http.StatusOK)

	if err := h.exportService.ExportCSV(c.Request.Context(), c.Writer, search, status); err != nil {
		// Headers are gone by now; the truncated stream is the signal.
		logrus.WithError(err).Error("CSV export failed mid-stream")
		c.Error(err)
	}
}

// GET /disclosures/:id/pdf
func (h *DisclosureHandler) DownloadPDF(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	data, filename, err := h.disclosureService.DownloadPDF(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Data(http.StatusOK, "application/pdf", data)
}

func (h *DisclosureHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid disclosure ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *DisclosureHandler) parseFilters(c *gin.Context) (string, *models.DisclosureStatus, bool) {
	search := c.Query("search")

	var status *models.DisclosureStatus
	if raw := c.Query("status"); raw != "" {
		parsed, err := models.ParseStatus(raw)
		if err != nil {
			utils.BadRequestResponse(c, err.Error(), nil)
			return "", nil, false
		}
		status = &parsed
	}

	return search, status, true
}

func (h *DisclosureHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, "Disclosure not found")
	case errors.Is(err, services.ErrPDFUnavailable):
		utils.NotFoundResponse(c, "PDF not available for this disclosure")
	case errors.Is(err, extraction.ErrUnreadableDocument):
		utils.BadRequestResponse(c, err.Error(), nil)
	case errors.Is(err, extraction.ErrExtractionTimeout):
		utils.TimeoutResponse(c, "Extraction timed out; please resubmit the document")
	case errors.Is(err, services.ErrValidation):
		utils.BadRequestResponse(c, err.Error(), nil)
	case errors.Is(err, services.ErrDocketConflict):
		utils.ConflictResponse(c, "Failed to allocate a unique docket number")
	case errors.Is(err, services.ErrStorageUnavailable):
		utils.InternalErrorResponse(c, "Blob storage unavailable")
	default:
		logrus.WithError(err).Error("Unhandled service error")
		utils.InternalErrorResponse(c, "")
	}
}
