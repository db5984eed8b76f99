package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gsmp/mentorship-backend/internal/importer"
	"github.com/gsmp/mentorship-backend/internal/response"
	"github.com/gsmp/mentorship-backend/internal/service"
	"github.com/rs/zerolog"
)

// ImportHandler handles bulk student import.
type ImportHandler struct {
	imports *service.StudentImportService
	log     zerolog.Logger
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(imports *service.StudentImportService, log zerolog.Logger) *ImportHandler {
	return &ImportHandler{imports: imports, log: log}
}

// ImportStudents godoc
// POST /api/v1/admin/students/import
// Multipart: file (.csv or .xlsx) and an optional expiry such as "72h"
// after which the temporary passwords stop working.
func (h *ImportHandler) ImportStudents(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}

	var expiry time.Duration
	if raw := c.PostForm("expiry"); raw != "" {
		expiry, err = time.ParseDuration(raw)
		if err != nil || expiry < 0 {
			failValidation(c, map[string]string{"expiry": "expiry must be a duration such as 72h"})
			return
		}
	}

	f, err := header.Open()
	if err != nil {
		fail(c, h.log, err)
		return
	}
	defer f.Close()

	rows, err := importer.Parse(header.Filename, f)
	if err != nil {
		if errors.Is(err, importer.ErrUnsupportedFormat) {
			fail(c, h.log, err)
			return
		}
		failValidation(c, map[string]string{"file": err.Error()})
		return
	}

	report, err := h.imports.Import(c.Request.Context(), rows, expiry)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, report)
}
