package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thywilljoshua/poster-to-web/internal/convert"
	"github.com/thywilljoshua/poster-to-web/internal/poster"
	"github.com/thywilljoshua/poster-to-web/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	log, _ := test.NewNullLogger()
	st, err := store.Open(filepath.Join(t.TempDir(), "api.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return New(Config{Store: st, Logger: log}), st
}

func seed(t *testing.T, st *store.Store) string {
	t.Helper()
	doc := poster.Template()
	require.NoError(t, doc.SetDetail(poster.IDTitle, "Widget Therapy in Adults"))
	rec := store.Record{Source: "seed.pdf", Status: "extracted", Document: doc}
	require.NoError(t, st.Save(context.Background(), &rec))
	return rec.ID
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeRecord(t *testing.T, w *httptest.ResponseRecorder) store.Record {
	t.Helper()
	var rec store.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	w := do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"healthy": true}`, w.Body.String())
}

func multipartUpload(t *testing.T, name string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadUnsupportedFileGivesTemplate(t *testing.T) {
	s, st := newTestServer(t)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, multipartUpload(t, "notes.txt", []byte("just some notes")))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res uploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, convert.StatusTemplate, res.Status)
	assert.Contains(t, res.Reason, "unsupported input type")
	assert.Len(t, res.Document.ContentSections(), 4)

	rec, err := st.Get(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", rec.Source)
	assert.Equal(t, "template", rec.Status)
}

func TestUploadUsesExtractor(t *testing.T) {
	log, _ := test.NewNullLogger()
	st, err := store.Open(filepath.Join(t.TempDir(), "api.db"), log)
	require.NoError(t, err)
	defer st.Close()

	var gotPath string
	s := New(Config{Store: st, Logger: log, Extract: func(_ context.Context, path string) (convert.Result, error) {
		gotPath = path
		doc := poster.Template()
		doc.SetDetail(poster.IDTitle, "Extracted")
		return convert.Result{Document: doc, Status: convert.StatusExtracted, Stats: doc.Stats()}, nil
	}})

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, multipartUpload(t, "poster.pdf", []byte("%PDF-1.4")))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "poster.pdf", filepath.Base(gotPath))

	var res uploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "Extracted", res.Document.Title)
	assert.Equal(t, 1, res.Stats.HeaderFields)
}

func TestUploadErrors(t *testing.T) {
	s, _ := newTestServer(t)
	w := do(t, s, http.MethodPost, "/documents", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	log, _ := test.NewNullLogger()
	st, err := store.Open(filepath.Join(t.TempDir(), "api.db"), log)
	require.NoError(t, err)
	defer st.Close()
	failing := New(Config{Store: st, Logger: log, Extract: func(context.Context, string) (convert.Result, error) {
		return convert.Result{}, errors.New("disk full")
	}})
	w = httptest.NewRecorder()
	failing.Handler().ServeHTTP(w, multipartUpload(t, "poster.pdf", []byte("%PDF-1.4")))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestListGetDelete(t *testing.T) {
	s, st := newTestServer(t)

	w := do(t, s, http.MethodGet, "/documents", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	id := seed(t, st)
	w = do(t, s, http.MethodGet, "/documents", nil)
	var list []store.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Widget Therapy in Adults", list[0].Title)

	w = do(t, s, http.MethodGet, "/documents/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Widget Therapy in Adults", decodeRecord(t, w).Document.Title)

	w = do(t, s, http.MethodDelete, "/documents/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, s, http.MethodGet, "/documents/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, s, http.MethodDelete, "/documents/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEditSections(t *testing.T) {
	s, st := newTestServer(t)
	id := seed(t, st)
	base := "/documents/" + id

	w := do(t, s, http.MethodPatch, base+"/sections/"+poster.IDAuthors, map[string]string{"content": "Jane Doe, John Smith"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Jane Doe, John Smith", decodeRecord(t, w).Document.Authors)

	w = do(t, s, http.MethodPost, base+"/sections", addRequest{Title: "Funding", Content: "Widget Foundation"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	content := decodeRecord(t, w).Document.ContentSections()
	require.Len(t, content, 5)
	added := content[4]
	assert.Equal(t, "Funding", added.Title)
	assert.True(t, strings.HasPrefix(added.ID, "section-"))

	w = do(t, s, http.MethodPost, base+"/sections/"+added.ID+"/move", map[string]int{"index": 0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, added.ID, decodeRecord(t, w).Document.ContentSections()[0].ID)

	ids := []string{}
	for _, sec := range decodeRecord(t, w).Document.ContentSections() {
		ids = append([]string{sec.ID}, ids...)
	}
	w = do(t, s, http.MethodPut, base+"/order", orderRequest{IDs: ids})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decodeRecord(t, w).Document.ContentSections()
	assert.Equal(t, added.ID, got[len(got)-1].ID)

	w = do(t, s, http.MethodDelete, base+"/sections/"+added.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeRecord(t, w).Document.ContentSections(), 4)

	w = do(t, s, http.MethodPost, base+"/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeRecord(t, w).Document.Title)
}

func TestEditErrors(t *testing.T) {
	s, st := newTestServer(t)
	id := seed(t, st)
	base := "/documents/" + id
	doc, err := st.Get(context.Background(), id)
	require.NoError(t, err)
	first := doc.Document.ContentSections()[0]
	second := doc.Document.ContentSections()[1]

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown document", http.MethodPost, "/documents/nope/reset", nil, http.StatusNotFound},
		{"unknown section", http.MethodPatch, base + "/sections/nope", map[string]string{"content": "x"}, http.StatusNotFound},
		{"remove detail", http.MethodDelete, base + "/sections/" + poster.IDTitle, nil, http.StatusUnprocessableEntity},
		{"move detail", http.MethodPost, base + "/sections/" + poster.IDAbstract + "/move", map[string]int{"index": 0}, http.StatusUnprocessableEntity},
		{"duplicate title", http.MethodPatch, base + "/sections/" + first.ID, map[string]string{"title": second.Title}, http.StatusUnprocessableEntity},
		{"duplicate add", http.MethodPost, base + "/sections", addRequest{Title: first.Title}, http.StatusUnprocessableEntity},
		{"move out of range", http.MethodPost, base + "/sections/" + first.ID + "/move", map[string]int{"index": 9}, http.StatusUnprocessableEntity},
		{"move without index", http.MethodPost, base + "/sections/" + first.ID + "/move", map[string]string{}, http.StatusBadRequest},
		{"partial order", http.MethodPut, base + "/order", orderRequest{IDs: []string{first.ID}}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}

	// Failed edits leave the stored document untouched.
	after, err := st.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, doc.Document, after.Document)
}

func TestExport(t *testing.T) {
	s, st := newTestServer(t)
	id := seed(t, st)

	w := do(t, s, http.MethodGet, "/documents/"+id+"/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "poster-website.html")
	assert.Contains(t, w.Body.String(), "<h1>Widget Therapy in Adults</h1>")

	w = do(t, s, http.MethodGet, "/documents/"+id+"/export?format=react&scheme=nature", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"primaryColor": "#f39c12"`)

	w = do(t, s, http.MethodGet, "/documents/"+id+"/export?format=yaml", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "title: Widget Therapy in Adults")

	for _, q := range []string{"format=pptx", "format=mdx", "layout=grid"} {
		w = do(t, s, http.MethodGet, "/documents/"+id+"/export?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}

	w = do(t, s, http.MethodGet, "/documents/nope/export", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
