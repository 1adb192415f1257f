package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/etnz/ledgerdiff/config"
	"github.com/etnz/ledgerdiff/logger"
)

const (
	mayCSV = "Code,Name,AcType Desc,Branch Name,Balance,Limit\n" +
		"A,Alice,Savings,North,100,1\n" +
		"B,Bob,Current,South,50,1\n" +
		"C,Carol,Savings,North,0,0\n"
	juneCSV = "Code,Name,AcType Desc,Branch Name,Balance,Limit\n" +
		"A,Alice,Savings,North,120,1\n" +
		"D,Dan,Current,East,30,1\n"
)

func newTestServer(t *testing.T, log zerolog.Logger) *Server {
	t.Helper()
	cfg := &config.Config{Server: config.ServerConfig{Addr: ":0", MaxUploadBytes: 1 << 20}}
	return New(cfg, log)
}

// upload builds a multipart compare request. Empty contents are left out.
func upload(t *testing.T, fields map[string]string, files map[string][2]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, v := range fields {
		require.NoError(t, mw.WriteField(name, v))
	}
	for field, file := range files {
		fw, err := mw.CreateFormFile(field, file[0])
		require.NoError(t, err)
		_, err = io.WriteString(fw, file[1])
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/compare", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func bothFiles() map[string][2]string {
	return map[string][2]string{
		"previous": {"may.csv", mayCSV},
		"current":  {"june.csv", juneCSV},
	}
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) APIError {
	t.Helper()
	var e APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e), rec.Body.String())
	return e
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, zerolog.Nop())

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCompare_JSON(t *testing.T) {
	s := newTestServer(t, zerolog.Nop())

	rec := serve(s, upload(t, nil, bothFiles()))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var report struct {
		ID        string `json:"id"`
		Previous  string `json:"previous"`
		Waterfall struct {
			Rows []struct {
				Description string `json:"description"`
				Amount      struct {
					Amount string `json:"amount"`
				} `json:"amount"`
				Count *int `json:"accountCount"`
			} `json:"rows"`
		} `json:"waterfall"`
		ByBranch *struct {
			Rows []struct {
				Group string `json:"group"`
			} `json:"rows"`
		} `json:"byBranch"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "may.csv", report.Previous)
	require.Len(t, report.Waterfall.Rows, 6)
	amounts := make([]string, 0, 6)
	for _, row := range report.Waterfall.Rows {
		amounts = append(amounts, row.Amount.Amount)
	}
	assert.Equal(t, []string{"150", "-50", "30", "20", "150", "150"}, amounts)
	assert.Nil(t, report.Waterfall.Rows[4].Count)
	require.NotNil(t, report.ByBranch)
	assert.Len(t, report.ByBranch.Rows, 3)
}

func TestCompare_Formats(t *testing.T) {
	s := newTestServer(t, zerolog.Nop())

	t.Run("xlsx", func(t *testing.T) {
		rec := serve(s, upload(t, map[string]string{"format": "xlsx"}, bothFiles()))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")

		f, err := excelize.OpenReader(rec.Body)
		require.NoError(t, err)
		defer f.Close()
		assert.Contains(t, f.GetSheetList(), "Waterfall")
	})

	t.Run("markdown", func(t *testing.T) {
		rec := serve(s, upload(t, map[string]string{"format": "MD"}, bothFiles()))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), "# Ledger Reconciliation")
	})

	t.Run("html", func(t *testing.T) {
		rec := serve(s, upload(t, map[string]string{"format": "html"}, bothFiles()))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, rec.Body.String(), "<table>")
	})
}

func TestCompare_Errors(t *testing.T) {
	noLimit := "Code,AcType Desc,Balance\nA,Savings,1\n"
	tests := []struct {
		name   string
		fields map[string]string
		files  map[string][2]string
		status int
		code   string
	}{
		{
			name:   "missing file",
			files:  map[string][2]string{"previous": {"may.csv", mayCSV}},
			status: http.StatusBadRequest,
			code:   CodeMissingFile,
		},
		{
			name:   "bad format",
			fields: map[string]string{"format": "pdf"},
			files:  bothFiles(),
			status: http.StatusBadRequest,
			code:   CodeInvalidRequest,
		},
		{
			name:   "bad currency",
			fields: map[string]string{"currency": "euro"},
			files:  bothFiles(),
			status: http.StatusBadRequest,
			code:   CodeInvalidRequest,
		},
		{
			name:   "unreadable workbook",
			files:  map[string][2]string{"previous": {"may.xlsx", "not a zip"}, "current": {"june.csv", juneCSV}},
			status: http.StatusBadRequest,
			code:   CodeUnreadableFile,
		},
		{
			name:   "missing column",
			files:  map[string][2]string{"previous": {"may.csv", noLimit}, "current": {"june.csv", juneCSV}},
			status: http.StatusUnprocessableEntity,
			code:   CodeMissingColumn,
		},
		{
			name:   "invalid cell",
			files:  map[string][2]string{"previous": {"may.csv", mayCSV + "E,Eve,Savings,North,ten,1\n"}, "current": {"june.csv", juneCSV}},
			status: http.StatusUnprocessableEntity,
			code:   CodeInvalidCell,
		},
		{
			name:   "empty workbook",
			files:  map[string][2]string{"previous": {"may.csv", "\n\n"}, "current": {"june.csv", juneCSV}},
			status: http.StatusUnprocessableEntity,
			code:   CodeEmptyWorkbook,
		},
		{
			name:   "unknown sheet",
			fields: map[string]string{"sheet": "Ledger"},
			files:  bothFiles(),
			status: http.StatusUnprocessableEntity,
			code:   CodeSheetNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, zerolog.Nop())

			rec := serve(s, upload(t, tt.fields, tt.files))

			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			e := decodeError(t, rec)
			assert.Equal(t, tt.status, e.StatusCode)
			assert.Equal(t, tt.code, e.ErrorCode)
		})
	}
}

func TestCompare_TooLarge(t *testing.T) {
	s := newTestServer(t, zerolog.Nop())
	s.cfg.Server.MaxUploadBytes = 64

	rec := serve(s, upload(t, nil, bothFiles()))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
	assert.Equal(t, CodePayloadTooLarge, decodeError(t, rec).ErrorCode)
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t, zerolog.Nop())
	serve(s, upload(t, nil, bothFiles()))
	serve(s, upload(t, map[string]string{"format": "pdf"}, bothFiles()))

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `ledgerdiff_comparisons_total{outcome="ok"} 1`)
	assert.Contains(t, body, `ledgerdiff_comparisons_total{outcome="rejected"} 1`)
	assert.Contains(t, body, `ledgerdiff_accounts_total{partition="settled"} 1`)
	assert.Contains(t, body, "ledgerdiff_comparison_duration_seconds_count 2")
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t, zerolog.Nop())

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, CodeNotFound, decodeError(t, rec).ErrorCode)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	s := newTestServer(t, logger.NewWithWriter(&buf))

	serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &line), buf.String())
	assert.Equal(t, "HTTP request", line["message"])
	assert.Equal(t, float64(http.StatusOK), line["status"])
	assert.Equal(t, "/healthz", line["path"])
	assert.NotEmpty(t, line["request_id"])
	assert.Equal(t, "server", line["component"])
}
