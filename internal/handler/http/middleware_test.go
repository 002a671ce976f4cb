package http

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-offline-keeper/internal/logger"
	"github.com/MKhiriev/go-offline-keeper/internal/utils"
	"github.com/MKhiriev/go-offline-keeper/models"
)

// ── withTraceID ──────────────────────────────────────────────────────────────

func TestWithTraceID(t *testing.T) {
	h := &Handler{logger: logger.Nop()}

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = utils.GetTraceIDFromContext(r.Context())
	})

	t.Run("caller id is kept", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(traceIDHeader, "trace-42")
		rec := httptest.NewRecorder()

		h.withTraceID(next).ServeHTTP(rec, req)

		assert.Equal(t, "trace-42", seen)
		assert.Equal(t, "trace-42", rec.Header().Get(traceIDHeader))
	})

	t.Run("missing id is generated", func(t *testing.T) {
		rec := httptest.NewRecorder()

		h.withTraceID(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Len(t, seen, 36)
		assert.Equal(t, seen, rec.Header().Get(traceIDHeader))
	})
}

// ── withLogging ──────────────────────────────────────────────────────────────

func TestWithLogging(t *testing.T) {
	var buf bytes.Buffer
	h := &Handler{logger: &logger.Logger{Logger: zerolog.New(&buf)}}

	router := chi.NewRouter()
	router.Use(h.withTraceID, h.withLogging)
	router.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, "boom", http.StatusInternalServerError)
	})

	req := httptest.NewRequest(http.MethodGet, "/items/7?x=1", nil)
	req.Header.Set(traceIDHeader, "t-1")
	router.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "t-1", line["trace_id"])
	assert.Equal(t, "/items/{id}", line["route"])
	assert.Equal(t, "/items/7?x=1", line["uri"])
	assert.Equal(t, float64(http.StatusInternalServerError), line["status"])
	assert.Positive(t, line["size"])
}

func TestResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	lw := &responseWriter{ResponseWriter: rec}

	assert.Equal(t, http.StatusOK, lw.statusCode())

	n, err := lw.Write([]byte("hello"))
	require.NoError(t, err)
	lw.WriteHeader(http.StatusTeapot) // ignored after the first write

	assert.Equal(t, 5, n)
	assert.Equal(t, 5, lw.size)
	assert.Equal(t, http.StatusOK, lw.statusCode())
	assert.Same(t, rec, lw.Unwrap())
}

// ── withGZip ─────────────────────────────────────────────────────────────────

func TestWithGZip_CompressesResponse(t *testing.T) {
	handler := withGZip(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// accept-encoding is consumed by the middleware
		assert.Empty(t, r.Header.Get("Accept-Encoding"))
		utils.WriteJSON(w, map[string]string{"status": "ok"}, http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestWithGZip_NoContentIsNotCompressed(t *testing.T) {
	handler := withGZip(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Zero(t, rec.Body.Len())
}

func TestWithGZip_HeaderOnly(t *testing.T) {
	handler := withGZip(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
}

func TestWithGZip_DecodesRequestBody(t *testing.T) {
	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	_, err := zw.Write([]byte(`{"table":"invoices"}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	var got []byte
	handler := withGZip(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = io.ReadAll(r.Body)
		_ = r.Body.Close()
	}))

	req := httptest.NewRequest(http.MethodPost, "/", &compressed)
	req.Header.Set("Content-Encoding", "gzip")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.JSONEq(t, `{"table":"invoices"}`, string(got))
}

func TestWithGZip_InvalidRequestBody(t *testing.T) {
	called := false
	handler := withGZip(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("not gzip"))
	req.Header.Set("Content-Encoding", "gzip")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ── withCompany ──────────────────────────────────────────────────────────────

func TestWithCompany(t *testing.T) {
	h := &Handler{defaultCompanyID: "acme"}

	tests := []struct {
		name   string
		target string
		header string
		want   string
	}{
		{name: "query wins", target: "/?company_id=globex", header: "initech", want: "globex"},
		{name: "header", target: "/", header: "initech", want: "initech"},
		{name: "default", target: "/", want: "acme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = companyFromRequest(r)
			})

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set(companyIDHeader, tt.header)
			}
			h.withCompany(next).ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.want, got)
		})
	}
}

// ── filterFromQuery ──────────────────────────────────────────────────────────

func TestFilterFromQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    models.Filter
		wantErr bool
	}{
		{name: "empty", query: "", want: models.Filter{}},
		{
			name:  "ids repeated and comma separated",
			query: "id=1,2&id=3",
			want:  models.Filter{IDs: []string{"1", "2", "3"}},
		},
		{
			name:  "order and limit",
			query: "order=label&desc=true&limit=5",
			want:  models.Filter{OrderBy: "label", Descending: true, Limit: 5},
		},
		{
			name:  "fields",
			query: "field.status=draft&company_id=acme",
			want:  models.Filter{Fields: map[string]any{"status": "draft"}},
		},
		{name: "bad limit", query: "limit=x", wantErr: true},
		{name: "bad desc", query: "desc=sometimes", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			got, err := filterFromQuery(q)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidQuery)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
