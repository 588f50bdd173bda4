package itests

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"northwind/internal"
	"northwind/internal/config"
	"northwind/internal/db"
	"northwind/internal/handler"
	"northwind/internal/report"
	"northwind/internal/repository"
	"northwind/internal/schema"
)

var (
	testBaseURL string
	testPool    *pgxpool.Pool
	testReg     *schema.Registry
)

func TestMain(m *testing.M) {
	cfg := config.LoadConfig()
	// аутентификация и Redis в интеграционных тестах выключены
	cfg.Auth.Enabled = false

	testDSN, teardownDB, err := SetupAndTeardownTestDB(cfg.PostgresDSN)
	if err != nil {
		if errors.Is(err, ErrNoDatabase) {
			println("⚠️ postgres unreachable, skipping integration tests:", err.Error())
			os.Exit(0)
		}
		println("setup test DB failed:", err.Error())
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := db.NewPostgres(ctx, testDSN, cfg.Pool)
	if err != nil {
		println("❌ pool init failed:", err.Error())
		_ = teardownDB()
		os.Exit(1)
	}
	testPool = pool

	if err := seedFixtures(ctx, pool); err != nil {
		println("❌ seed failed:", err.Error())
		pool.Close()
		_ = teardownDB()
		os.Exit(1)
	}
	println("✅ fixtures seeded")

	root, err := internal.FindRepoRoot()
	if err != nil {
		println("❌ findRepoRoot failed:", err.Error())
		pool.Close()
		_ = teardownDB()
		os.Exit(1)
	}
	reg, err := schema.Load(filepath.Join(root, "db"))
	if err != nil {
		println("❌ schema load failed:", err.Error())
		pool.Close()
		_ = teardownDB()
		os.Exit(1)
	}
	testReg = reg

	gin.SetMode(gin.TestMode)
	store := repository.NewStore(pool, reg)
	reports := report.NewService(store.Reports, nil, 0)
	srv := httptest.NewServer(handler.NewRouter(cfg, reg, store, reports, nil, nil))
	testBaseURL = srv.URL
	println("🚀 HTTP started at", testBaseURL)

	code := m.Run()

	srv.Close()
	pool.Close()
	if err := teardownDB(); err != nil {
		println("⚠️ drop test DB failed:", err.Error())
	}
	os.Exit(code)
}

// successEnvelope is the generic success response; Data stays raw so
// each test decodes its own item type.
type successEnvelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Pagination *struct {
		Page  int   `json:"page"`
		Limit int   `json:"limit"`
		Total int64 `json:"total"`
		Pages int64 `json:"pages"`
	} `json:"pagination"`
}

type errorEnvelope struct {
	Success bool `json:"success"`
	Error   struct {
		Message    string `json:"message"`
		StatusCode int    `json:"statusCode"`
		Errors     []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"errors"`
		Field string `json:"field"`
	} `json:"error"`
}

func httpDo(t *testing.T, method, path, body string) (int, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewReader([]byte(body))
	}
	req, err := http.NewRequest(method, testBaseURL+path, rdr)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data
}

func getOK(t *testing.T, path string, dst any) *successEnvelope {
	t.Helper()
	status, body := httpDo(t, http.MethodGet, path, "")
	if status != http.StatusOK {
		t.Fatalf("GET %s: status %d, body %s", path, status, body)
	}
	return decodeSuccess(t, body, dst)
}

func decodeSuccess(t *testing.T, body []byte, dst any) *successEnvelope {
	t.Helper()
	var env successEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, body)
	}
	if !env.Success {
		t.Fatalf("success=false in %s", body)
	}
	if dst != nil {
		if err := json.Unmarshal(env.Data, dst); err != nil {
			t.Fatalf("decode data: %v (data %s)", err, env.Data)
		}
	}
	return &env
}

func decodeError(t *testing.T, body []byte) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode error envelope: %v (body %s)", err, body)
	}
	if env.Success {
		t.Fatalf("success=true in error body %s", body)
	}
	return env
}

func countRows(t *testing.T, table string) int64 {
	t.Helper()
	var n int64
	if err := testPool.QueryRow(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
