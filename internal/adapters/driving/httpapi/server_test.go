package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeQA implements driving.QAService and driving.AnalysisService.
type fakeQA struct {
	sessions  map[string]string
	uploads   []domain.Upload
	uploadErr error
	askErr    error
	asked     []string
	findings  []domain.RiskFinding
}

func newFakeQA() *fakeQA {
	return &fakeQA{sessions: make(map[string]string)}
}

func (f *fakeQA) Ask(_ context.Context, url string, questions []string) ([]string, error) {
	if f.askErr != nil {
		return nil, f.askErr
	}
	f.asked = append(f.asked, url)
	return answersFor(url, questions), nil
}

func (f *fakeQA) Upload(_ context.Context, token string, upload domain.Upload) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads = append(f.uploads, upload)
	if token == "" {
		token = fmt.Sprintf("token-%d", len(f.uploads))
	}
	f.sessions[token] = "doc"
	return token, nil
}

func (f *fakeQA) AskSession(_ context.Context, token string, questions []string) ([]string, error) {
	if _, ok := f.sessions[token]; !ok {
		return nil, domain.ErrNoSession
	}
	return answersFor(token, questions), nil
}

func (f *fakeQA) CacheStats(_ context.Context) domain.CacheStats {
	return domain.CacheStats{CachedDocuments: len(f.asked), Documents: f.asked, ActiveSessions: len(f.sessions)}
}

func (f *fakeQA) Summarize(_ context.Context, token string) (string, error) {
	if _, ok := f.sessions[token]; !ok {
		return "", domain.ErrNoSession
	}
	return "short summary", nil
}

func (f *fakeQA) ScanRisks(_ context.Context, token string) ([]domain.RiskFinding, error) {
	if _, ok := f.sessions[token]; !ok {
		return nil, domain.ErrNoSession
	}
	return f.findings, nil
}

func (f *fakeQA) SummarizeSource(_ context.Context, _ string) (string, error) {
	return "short summary", nil
}

func (f *fakeQA) ScanSource(_ context.Context, _ string) ([]domain.RiskFinding, error) {
	return f.findings, nil
}

func answersFor(prefix string, questions []string) []string {
	answers := make([]string, len(questions))
	for i, q := range questions {
		answers[i] = prefix + ":" + q
	}
	return answers
}

func newTestServer(qa *fakeQA, token string) *Server {
	return New(qa, qa, Config{BearerToken: token})
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, m := range mutate {
		m(req)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func withBearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withSession(token string) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: token}) }
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func multipartUpload(t *testing.T, fields map[string]string, file []byte, fileType string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="policy.txt"`)
		h.Set("Content-Type", fileType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestHealth_NoAuthRequired(t *testing.T) {
	srv := newTestServer(newFakeQA(), "secret")

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "healthy"}`, rec.Body.String())
}

func TestBearerAuth(t *testing.T) {
	srv := newTestServer(newFakeQA(), "secret")
	body := askRequest{Documents: "https://example.com/a.pdf", Questions: []string{"q"}}

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/ask", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authenticated", decode[errorResponse](t, rec).Detail)

	rec = doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/ask", body, withBearer("wrong"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid authentication token", decode[errorResponse](t, rec).Detail)

	rec = doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/ask", body, withBearer("secret"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBearerAuth_DisabledWithoutToken(t *testing.T) {
	srv := newTestServer(newFakeQA(), "")

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/cache/stats", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAsk(t *testing.T) {
	qa := newFakeQA()
	srv := newTestServer(qa, "")

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/ask",
		askRequest{Documents: "https://example.com/a.pdf", Questions: []string{"one", "two"}})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[answersResponse](t, rec)
	assert.Equal(t, []string{"https://example.com/a.pdf:one", "https://example.com/a.pdf:two"}, resp.Answers)
}

func TestAsk_ValidationAndErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		err    error
		status int
	}{
		{name: "missing documents", body: map[string]any{"questions": []string{"q"}}, status: http.StatusBadRequest},
		{name: "unsupported", body: askRequest{Documents: "u", Questions: []string{"q"}},
			err: domain.ErrUnsupportedContentType, status: http.StatusUnsupportedMediaType},
		{name: "extraction", body: askRequest{Documents: "u", Questions: []string{"q"}},
			err: fmt.Errorf("%w: %w", domain.ErrExtractionFailure, domain.ErrFetchFailure), status: http.StatusUnprocessableEntity},
		{name: "empty", body: askRequest{Documents: "u", Questions: []string{"q"}},
			err: domain.ErrEmptyContent, status: http.StatusBadRequest},
		{name: "indexing", body: askRequest{Documents: "u", Questions: []string{"q"}},
			err: domain.ErrIndexingFailure, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qa := newFakeQA()
			qa.askErr = tt.err
			srv := newTestServer(qa, "")

			rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/ask", tt.body)

			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, decode[errorResponse](t, rec).Detail)
		})
	}
}

func TestUpload_URLSetsCookie(t *testing.T) {
	qa := newFakeQA()
	srv := newTestServer(qa, "")
	body, contentType := multipartUpload(t, map[string]string{"url": "https://example.com/a.txt"}, nil, "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[uploadResponse](t, rec)
	assert.Equal(t, "token-1", resp.SessionID)
	assert.Equal(t, "Document processed and session is active.", resp.Message)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.Equal(t, "token-1", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	require.Len(t, qa.uploads, 1)
	assert.Equal(t, "https://example.com/a.txt", qa.uploads[0].URL)
}

func TestUpload_FileReusesSession(t *testing.T) {
	qa := newFakeQA()
	qa.sessions["existing"] = "doc"
	srv := newTestServer(qa, "")
	body, contentType := multipartUpload(t, nil, []byte("policy text"), "text/plain")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
	req.Header.Set("Content-Type", contentType)
	withSession("existing")(req)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "existing", decode[uploadResponse](t, rec).SessionID)

	require.Len(t, qa.uploads, 1)
	raw := qa.uploads[0].Raw
	require.NotNil(t, raw)
	assert.Equal(t, "policy.txt", raw.Source)
	assert.Equal(t, "text/plain", raw.MIMEType)
	assert.Equal(t, []byte("policy text"), raw.Content)
}

func TestUpload_RequiresExactlyOneSource(t *testing.T) {
	for name, tc := range map[string]struct {
		fields map[string]string
		file   []byte
	}{
		"neither": {},
		"both":    {fields: map[string]string{"url": "https://example.com/a.txt"}, file: []byte("x")},
	} {
		t.Run(name, func(t *testing.T) {
			qa := newFakeQA()
			srv := newTestServer(qa, "")
			body, contentType := multipartUpload(t, tc.fields, tc.file, "text/plain")

			req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode[errorResponse](t, rec).Detail, "Provide either a URL or a file")
			assert.Empty(t, qa.uploads)
		})
	}
}

func TestRun(t *testing.T) {
	qa := newFakeQA()
	qa.sessions["tok"] = "doc"
	srv := newTestServer(qa, "")

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/run",
		questionsRequest{Questions: []string{"a"}}, withSession("tok"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"tok:a"}, decode[answersResponse](t, rec).Answers)
}

func TestSessionRoutes_NoSession(t *testing.T) {
	srv := newTestServer(newFakeQA(), "")

	for _, path := range []string{"/api/v1/run", "/api/v1/summarize", "/api/v1/risks"} {
		t.Run(path, func(t *testing.T) {
			rec := doJSON(t, srv.Handler(), http.MethodPost, path, questionsRequest{Questions: []string{"q"}})

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, noSessionMessage, decode[errorResponse](t, rec).Detail)
		})
	}
}

func TestSummarizeAndRisks(t *testing.T) {
	qa := newFakeQA()
	qa.sessions["tok"] = "doc"
	qa.findings = []domain.RiskFinding{{Category: "Indemnification", Quote: "You indemnify us.", Explanation: "Shifts losses."}}
	srv := newTestServer(qa, "")

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/summarize", nil, withSession("tok"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "short summary", decode[summaryResponse](t, rec).Summary)

	rec = doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/risks", nil, withSession("tok"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"findings": [{"category": "Indemnification", "quote": "You indemnify us.", "explanation": "Shifts losses."}]}`,
		rec.Body.String())
}

func TestRisks_EmptyFindingsIsArray(t *testing.T) {
	qa := newFakeQA()
	qa.sessions["tok"] = "doc"
	srv := newTestServer(qa, "")

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/risks", nil, withSession("tok"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"findings": []}`, rec.Body.String())
}

func TestCacheStats(t *testing.T) {
	qa := newFakeQA()
	srv := newTestServer(qa, "")

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/cache/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"cached_documents": 0, "documents": [], "active_sessions": 0}`, rec.Body.String())
}

func TestCORS_Preflight(t *testing.T) {
	srv := newTestServer(newFakeQA(), "secret")

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/ask", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "POST"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.ErrInvalidInput))
	assert.Equal(t, http.StatusBadRequest, statusFor(fmt.Errorf("wrap: %w", domain.ErrNoSession)))
	assert.Equal(t, http.StatusInternalServerError, statusFor(fmt.Errorf("boom")))
}

func TestNew_Defaults(t *testing.T) {
	srv := New(newFakeQA(), newFakeQA(), Config{})

	assert.Equal(t, DefaultAddr, srv.Addr())
	assert.Equal(t, int64(DefaultMaxUploadBytes), srv.cfg.MaxUploadBytes)
}
