package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bkcnorm/internal/csvexport"
	"bkcnorm/internal/domain"
	"bkcnorm/internal/service"
)

const defaultMaxBodyBytes = 10 << 20

var exportContentTypes = map[string]string{
	service.FormatCSV:  "text/csv; charset=utf-8",
	service.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// BookingHandler handles booking normalization endpoints.
type BookingHandler struct {
	bookingService service.BookingService
	maxBodyBytes   int64
}

// NewBookingHandler creates a new BookingHandler. Request bodies larger than
// maxBodyBytes are rejected; 0 means 10 MB.
func NewBookingHandler(bookingService service.BookingService, maxBodyBytes int64) *BookingHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &BookingHandler{bookingService: bookingService, maxBodyBytes: maxBodyBytes}
}

// Normalize handles POST /api/v1/bookings/normalize.
// The body is one extraction object, optionally wrapped in Markdown fences.
func (h *BookingHandler) Normalize(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}

	result, err := h.bookingService.Normalize(c.Request.Context(), body)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}

// NormalizeBatch handles POST /api/v1/bookings/normalize/batch.
// The body is a JSON array; each element is an extraction object or a string
// holding raw extraction model output.
func (h *BookingHandler) NormalizeBatch(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}
	raws, err := splitBatch(body)
	if err != nil {
		HandleError(c, err)
		return
	}

	items, err := h.bookingService.NormalizeBatch(c.Request.Context(), raws)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, items)
}

// Export handles POST /api/v1/bookings/export?format=csv|xlsx&name=...
// The body is the same array NormalizeBatch accepts; records that fail to
// parse are left out of the file.
func (h *BookingHandler) Export(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", service.FormatCSV))
	contentType, known := exportContentTypes[format]
	if !known {
		HandleError(c, fmt.Errorf("%w: %q", domain.ErrUnsupportedExportFormat, format))
		return
	}

	body, ok := h.readBody(c)
	if !ok {
		return
	}
	raws, err := splitBatch(body)
	if err != nil {
		HandleError(c, err)
		return
	}

	ctx := c.Request.Context()
	items, err := h.bookingService.NormalizeBatch(ctx, raws)
	if err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.bookingService.Export(ctx, service.Results(items), format, &buf); err != nil {
		HandleError(c, err)
		return
	}

	filename := csvexport.BuildFilename(c.DefaultQuery("name", "bookings"), format)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// Columns handles GET /api/v1/bookings/columns.
func (h *BookingHandler) Columns(c *gin.Context) {
	RespondOK(c, gin.H{"columns": h.bookingService.Columns()})
}

func (h *BookingHandler) readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondError(c, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "request body too large")
			return nil, false
		}
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "unable to read request body")
		return nil, false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "request body is empty")
		return nil, false
	}
	return body, true
}

func splitBatch(body []byte) ([][]byte, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(body, &elems); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidBatch, err)
	}
	raws := make([][]byte, len(elems))
	for i, elem := range elems {
		var text string
		if len(elem) > 0 && elem[0] == '"' && json.Unmarshal(elem, &text) == nil {
			raws[i] = []byte(text)
			continue
		}
		raws[i] = elem
	}
	return raws, nil
}
