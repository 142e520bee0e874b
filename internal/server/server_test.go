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
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shirly8/sift/internal/cache"
	"github.com/Shirly8/sift/internal/model"
	"github.com/Shirly8/sift/internal/rules"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer() *Server {
	return New(Config{Addr: ":0"}, rules.New(), cache.NewMemory())
}

const goodCSV = `date,merchant,amount
2025-01-05,NETFLIX.COM,15.99
2025-02-10,STARBUCKS COFFEE,8.50
2025-03-15,LOBLAWS #1050,120.00
2025-04-20,UBER *EATS,32.75
2025-06-25,SHELL GAS STATION,54.10
`

func multipartCSV(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestHealth(t *testing.T) {
	srv := newTestServer()

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestUpload(t *testing.T) {
	srv := newTestServer()

	body, contentType := multipartCSV(t, "statement.csv", goodCSV)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		SessionID    string  `json:"session_id"`
		Transactions int     `json:"transactions"`
		Quality      float64 `json:"quality"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, 5, resp.Transactions)
	assert.GreaterOrEqual(t, resp.Quality, 0.5)

	_, err := srv.store.Get(resp.SessionID)
	assert.NoError(t, err)
}

func TestUpload_MissingColumns(t *testing.T) {
	srv := newTestServer()

	body, contentType := multipartCSV(t, "statement.csv", "foo,bar\n1,2\n")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "column")
}

func TestUpload_NoFile(t *testing.T) {
	srv := newTestServer()

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/upload", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze_UnknownSession(t *testing.T) {
	srv := newTestServer()

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analyze/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalyze_ConcurrentRunConflicts(t *testing.T) {
	srv := newTestServer()
	session := srv.store.Create(sampleTxns(), 1.0)
	require.NoError(t, session.StartRun())

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analyze/"+session.ID, nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAnalyze_StreamsToTerminalEvent(t *testing.T) {
	srv := newTestServer()
	session := srv.store.Create(sampleTxns(), 1.0)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/analyze/" + session.ID)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(raw)

	assert.Contains(t, body, "Categorizing transactions")
	assert.Contains(t, body, "Profiling your transactions")
	assert.Equal(t, 1, strings.Count(body, `"done":true`))

	// the run released the session for a follow-up analysis
	require.Eventually(t, func() bool {
		return session.StartRun() == nil
	}, 5*time.Second, 10*time.Millisecond)
	session.FinishRun()
}

func TestCorrectCategory(t *testing.T) {
	srv := newTestServer()
	session := srv.store.Create(sampleTxns(), 1.0)

	payload := `{"session_id":"` + session.ID + `","merchant":"MYSTERY SHOP #42","category":"Dining"}`
	req := httptest.NewRequest(http.MethodPost, "/api/correct-category", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Merchant string `json:"merchant"`
		Updated  int    `json:"updated"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "MYSTERY SHOP", resp.Merchant)
	assert.Equal(t, 1, resp.Updated)

	for _, txn := range session.Snapshot() {
		if txn.NormalizedMerchant == "MYSTERY SHOP" {
			assert.Equal(t, "Dining", txn.Category)
			assert.Equal(t, cache.UserVerifiedConfidence, txn.Confidence)
			assert.Equal(t, model.SourceCache, txn.Source)
		}
	}
}

func TestCorrectCategory_Validation(t *testing.T) {
	srv := newTestServer()
	session := srv.store.Create(sampleTxns(), 1.0)

	tests := []struct {
		name    string
		payload string
		status  int
	}{
		{"missing fields", `{"merchant":"X"}`, http.StatusBadRequest},
		{"unknown session", `{"session_id":"nope","merchant":"X","category":"Dining"}`, http.StatusNotFound},
		{"invalid category", `{"session_id":"` + session.ID + `","merchant":"X","category":"NotAThing"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/correct-category", strings.NewReader(tt.payload))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			srv.Router().ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestParseStatement_CSV(t *testing.T) {
	csv := `date,merchant,amount
2025-03-15,LOBLAWS,120.00
2025-01-05,NETFLIX.COM,15.99
2025-01-05,NETFLIX.COM,15.99
`
	txns, err := ParseStatement("export.csv", strings.NewReader(csv))
	require.NoError(t, err)

	// deduplicated and sorted by date
	require.Len(t, txns, 2)
	assert.True(t, txns[0].Date.Before(txns[1].Date))
}

func TestParseStatement_Empty(t *testing.T) {
	_, err := ParseStatement("export.csv", strings.NewReader("date,merchant,amount\n"))
	assert.Error(t, err)
}

func sampleTxns() []model.Transaction {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	mk := func(t time.Time, merchant string, amount float64) model.Transaction {
		return model.Transaction{
			Date:               t,
			RawMerchant:        merchant,
			NormalizedMerchant: merchant,
			Amount:             amount,
		}
	}
	return []model.Transaction{
		mk(day(2025, time.January, 5), "NETFLIX", 15.99),
		mk(day(2025, time.February, 10), "MYSTERY SHOP", 42.00),
		mk(day(2025, time.March, 15), "LOBLAWS", 120.00),
	}
}
