package server

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"

	"github.com/etnz/ledgerdiff"
	"github.com/etnz/ledgerdiff/logger"
	"github.com/etnz/ledgerdiff/renderer"
	"github.com/etnz/ledgerdiff/xlsx"
)

// Response formats of the compare endpoint.
const (
	FormatJSON     = "json"
	FormatXLSX     = "xlsx"
	FormatMarkdown = "md"
	FormatHTML     = "html"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// compareRequest holds the form fields of a compare request.
type compareRequest struct {
	Format   string `validate:"omitempty,oneof=json xlsx md html"`
	Sheet    string `validate:"max=31"`
	Currency string `validate:"omitempty,iso4217"`
}

func (s *Server) compare(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := http.StatusOK
	defer func() { s.metrics.observe(status, time.Since(start).Seconds()) }()

	fail := func(e *APIError) {
		status = e.StatusCode
		render.Render(w, r, e)
	}
	log := logger.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.Server.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(NewAPIError(http.StatusRequestEntityTooLarge, CodePayloadTooLarge, fmt.Sprintf("Upload exceeds %d bytes", tooLarge.Limit)))
			return
		}
		fail(newAPIErrorWithDetails(http.StatusBadRequest, CodeInvalidRequest, "Invalid multipart form", err.Error()))
		return
	}
	defer r.MultipartForm.RemoveAll()

	req := compareRequest{
		Format:   strings.ToLower(r.FormValue("format")),
		Sheet:    r.FormValue("sheet"),
		Currency: strings.ToUpper(r.FormValue("currency")),
	}
	if err := s.validate.Struct(req); err != nil {
		fail(newAPIErrorWithDetails(http.StatusBadRequest, CodeInvalidRequest, "Request validation failed", err.Error()))
		return
	}
	if req.Format == "" {
		req.Format = FormatJSON
	}

	previous, apiErr := readUpload(r, "previous")
	if apiErr != nil {
		fail(apiErr)
		return
	}
	current, apiErr := readUpload(r, "current")
	if apiErr != nil {
		fail(apiErr)
		return
	}

	opts := s.cfg.Options()
	if req.Sheet != "" {
		opts.Sheet = req.Sheet
	}
	if req.Currency != "" {
		opts.Currency = req.Currency
	}

	report, err := ledgerdiff.Compare(r.Context(), previous, current, opts)
	if err != nil {
		apiErr := comparisonError(err)
		if apiErr.StatusCode >= 500 {
			log.Error().Err(err).Msg("comparison failed")
		} else {
			log.Info().Err(err).Msg("comparison rejected")
		}
		fail(apiErr)
		return
	}
	s.metrics.count(len(report.Settled), len(report.New), len(report.Movements))
	log.Info().Str("report_id", report.ID).Str("format", req.Format).Msg("comparison done")

	switch req.Format {
	case FormatXLSX:
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "reconciliation-"+report.ID+".xlsx"))
		if err := xlsx.WriteReport(w, report); err != nil {
			// headers are gone already.
			log.Error().Err(err).Msg("writing workbook")
			status = http.StatusInternalServerError
		}
	case FormatMarkdown:
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(renderer.ReportMarkdown(report, renderer.ReportRenderOptions{})))
	case FormatHTML:
		html, err := renderer.HTML(renderer.ReportMarkdown(report, renderer.ReportRenderOptions{}))
		if err != nil {
			log.Error().Err(err).Msg("rendering html")
			fail(NewAPIError(http.StatusInternalServerError, CodeInternal, "Internal server error"))
			return
		}
		render.HTML(w, r, html)
	default:
		render.JSON(w, r, report)
	}
}

// readUpload reads the workbook uploaded in the form field.
func readUpload(r *http.Request, field string) (*ledgerdiff.Workbook, *APIError) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, NewAPIError(http.StatusBadRequest, CodeMissingFile, fmt.Sprintf("Missing %q file", field))
	}
	if err != nil {
		return nil, newAPIErrorWithDetails(http.StatusBadRequest, CodeInvalidRequest, "Invalid upload", err.Error())
	}
	defer file.Close()

	wb, err := readWorkbook(file, header)
	if err != nil {
		return nil, newAPIErrorWithDetails(http.StatusBadRequest, CodeUnreadableFile, fmt.Sprintf("Cannot read %q file", field), err.Error())
	}
	return wb, nil
}

func readWorkbook(file multipart.File, header *multipart.FileHeader) (*ledgerdiff.Workbook, error) {
	return xlsx.ReadWorkbookFrom(file, header.Filename)
}
