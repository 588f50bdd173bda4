package itests

import (
	"encoding/json"
	"net/http"
	"testing"
)

// The harness runs without redis, so the probe reports it as disabled
// rather than down.
func TestHealthEndpoint(t *testing.T) {
	status, body := httpDo(t, http.MethodGet, "/health", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", status, body)
	}

	var got map[string]string
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("unmarshal health body: %v", err)
	}
	if got["status"] != "ok" || got["postgres"] != "up" || got["redis"] != "disabled" {
		t.Errorf("health = %v, want ok/up/disabled", got)
	}
}
