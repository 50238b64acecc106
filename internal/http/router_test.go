package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DBS-Coding/Back-End/internal/config"
	"github.com/DBS-Coding/Back-End/internal/repo"
)

func init() { gin.SetMode(gin.TestMode) }

func testConfig() config.Config {
	return config.Config{
		Port:              "0",
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      5 * time.Second,
		IdleTimeout:       5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		MaxHeaderBytes:    1 << 20,
		GinMode:           gin.TestMode,
		LogLevel:          "error",
		DBTimeout:         5 * time.Second,
		AdminKey:          "wipe-key",
		RateRPS:           1000,
		RateBurst:         1000,
		OTEL:              config.OTELConfig{ServiceName: "test"},
	}
}

func newTestServer(t *testing.T, cfg config.Config) *gin.Engine {
	t.Helper()

	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "router_test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	r := gin.New()
	RegisterRoutes(r, db, cfg)
	return r
}

type envelope struct {
	Code    int             `json:"code"`
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, r *gin.Engine, method, path, body string, hdr map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Code != http.StatusNotModified && w.Body.Len() > 0 &&
		strings.Contains(w.Header().Get("Content-Type"), "json") {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func TestRouter_HealthAndRoot(t *testing.T) {
	r := newTestServer(t, testConfig())

	w, _ := do(t, r, http.MethodGet, "/", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("root status = %d", w.Code)
	}

	w, env := do(t, r, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK || env.Status != "success" {
		t.Fatalf("health: status=%d env=%+v", w.Code, env)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("request id header missing")
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	r := newTestServer(t, testConfig())

	w, _ := do(t, r, http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", w.Code)
	}
}

func TestRouter_NoRouteAndNoMethodEnvelopes(t *testing.T) {
	r := newTestServer(t, testConfig())

	w, env := do(t, r, http.MethodGet, "/definitely/not/here", "", nil)
	if w.Code != http.StatusNotFound || env.Status != "error" || env.Code != http.StatusNotFound {
		t.Fatalf("no-route: status=%d env=%+v", w.Code, env)
	}

	w, env = do(t, r, http.MethodPatch, "/chatbot/tags", "", nil)
	if w.Code != http.StatusMethodNotAllowed || env.Status != "error" {
		t.Fatalf("no-method: status=%d env=%+v", w.Code, env)
	}
}

func TestRouter_FullKnowledgeBaseFlow(t *testing.T) {
	r := newTestServer(t, testConfig())

	const body = `{"nama":"soekarno","tag":"greeting","input":["halo kawan"],"responses":["Halo!"]}`

	// Merge (resolve-or-create).
	w, env := do(t, r, http.MethodPost, "/chatbot/tags", body, nil)
	if w.Code != http.StatusCreated || env.Status != "success" {
		t.Fatalf("merge: status=%d env=%+v", w.Code, env)
	}

	// Strict create on the same name must conflict.
	w, env = do(t, r, http.MethodPost, "/chatbot/create", body, nil)
	if w.Code != http.StatusConflict || env.Status != "error" {
		t.Fatalf("strict create: status=%d env=%+v", w.Code, env)
	}

	// List with ETag handshake.
	w, env = do(t, r, http.MethodGet, "/chatbot/tags", "", nil)
	if w.Code != http.StatusOK || env.Status != "success" {
		t.Fatalf("list: status=%d env=%+v", w.Code, env)
	}
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("ETag missing on list response")
	}
	w, _ = do(t, r, http.MethodGet, "/chatbot/tags", "", map[string]string{"If-None-Match": etag})
	if w.Code != http.StatusNotModified {
		t.Fatalf("conditional list: status=%d", w.Code)
	}

	// Owner search via the literal "nama" first segment.
	w, env = do(t, r, http.MethodGet, "/chatbot/tags/nama/soekarno", "", nil)
	if w.Code != http.StatusOK || env.Message != "Chatbots retrieved by name" {
		t.Fatalf("search: status=%d env=%+v", w.Code, env)
	}

	// Match.
	w, env = do(t, r, http.MethodPost, "/chatbot/process", `{"input":"halo"}`, nil)
	if w.Code != http.StatusOK || env.Status != "success" {
		t.Fatalf("process: status=%d env=%+v", w.Code, env)
	}
	var reply struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(env.Data, &reply); err != nil || reply.Response != "Halo!" {
		t.Fatalf("process data: %s err=%v", env.Data, err)
	}

	// Bulk delete, wrong then right key.
	w, _ = do(t, r, http.MethodDelete, "/chatbot/all/not-the-key", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong key: status=%d", w.Code)
	}
	w, env = do(t, r, http.MethodDelete, "/chatbot/all/wipe-key", "", nil)
	if w.Code != http.StatusOK || env.Status != "success" {
		t.Fatalf("bulk delete: status=%d env=%+v", w.Code, env)
	}

	// Store is empty again.
	_, env = do(t, r, http.MethodGet, "/chatbot/tags", "", nil)
	var items []json.RawMessage
	if err := json.Unmarshal(env.Data, &items); err != nil || len(items) != 0 {
		t.Fatalf("expected empty list, data=%s err=%v", env.Data, err)
	}
}

func TestRouter_BearerGuardOnWrites(t *testing.T) {
	cfg := testConfig()
	cfg.APIToken = "api-token"
	r := newTestServer(t, cfg)

	const body = `{"tag":"guarded","input":["a"],"responses":["b"]}`

	// Reads stay open.
	w, _ := do(t, r, http.MethodGet, "/chatbot/tags", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("unauthenticated read: status=%d", w.Code)
	}

	// Writes require the bearer token.
	w, env := do(t, r, http.MethodPost, "/chatbot/tags", body, nil)
	if w.Code != http.StatusUnauthorized || env.Status != "error" {
		t.Fatalf("unauthenticated write: status=%d env=%+v", w.Code, env)
	}
	w, _ = do(t, r, http.MethodPost, "/chatbot/tags", body,
		map[string]string{"Authorization": "Bearer api-token"})
	if w.Code != http.StatusCreated {
		t.Fatalf("authenticated write: status=%d", w.Code)
	}
}

func TestRouter_CORSWildcardByDefault(t *testing.T) {
	r := newTestServer(t, testConfig())

	w, _ := do(t, r, http.MethodGet, "/health", "", nil)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("ACAO = %q, want *", got)
	}
}
