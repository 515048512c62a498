package sim

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gridpilot/gridpilot/internal/engine"
	"github.com/gridpilot/gridpilot/internal/grid"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServerEndToEndWithEngine(t *testing.T) {
	srv := httptest.NewServer(New(testLogger(), WithStepDelay(0)))
	defer srv.Close()

	eng, err := engine.New(engine.Params{BaseURL: srv.URL, HTTPClient: srv.Client(), Logger: testLogger()})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	defer eng.Close()

	snap, err := eng.Execute(context.Background(), engine.Request{
		Instruction: "go right 3 then down 2",
		Goal:        grid.Coord{X: 3, Y: 2},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if snap.Status != engine.StatusSuccess {
		t.Fatalf("status = %s, message = %q", snap.Status, snap.Message)
	}
	if len(snap.Trail) != 6 {
		t.Fatalf("trail = %v", snap.Trail)
	}
	if snap.Stats == nil || !snap.Stats.Success {
		t.Fatalf("stats = %+v", snap.Stats)
	}
}

func TestServerBlockedRunEndToEnd(t *testing.T) {
	srv := httptest.NewServer(New(testLogger(), WithStepDelay(0)))
	defer srv.Close()

	eng, err := engine.New(engine.Params{BaseURL: srv.URL, HTTPClient: srv.Client(), Logger: testLogger()})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	defer eng.Close()

	snap, err := eng.Execute(context.Background(), engine.Request{
		Instruction: "right 5",
		Goal:        grid.Coord{X: 5, Y: 0},
		Blocked:     []grid.Coord{{X: 2, Y: 0}},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if snap.Status != engine.StatusBlocked {
		t.Fatalf("status = %s", snap.Status)
	}
	if snap.Stats == nil || snap.Stats.Success {
		t.Fatalf("stats = %+v", snap.Stats)
	}
}

func TestServerRejectsBadRequests(t *testing.T) {
	srv := httptest.NewServer(New(testLogger(), WithStepDelay(0)))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/plan", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if len(body) == 0 {
		t.Fatalf("error body must carry text for the client to surface")
	}
}

func TestServerRejectsOffGridGoal(t *testing.T) {
	srv := httptest.NewServer(New(testLogger(), WithStepDelay(0)))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/plan", "application/json",
		strings.NewReader(`{"goal":[40,2],"blocked":[],"instruction":"go","runId":"r"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestServerAPIKeyMiddleware(t *testing.T) {
	srv := httptest.NewServer(New(testLogger(), WithStepDelay(0), WithAPIKey("sekrit")))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/plan", "application/json",
		strings.NewReader(`{"goal":[1,0],"blocked":[],"instruction":"right 1","runId":"r"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("missing key should be rejected, status = %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/plan",
		strings.NewReader(`{"goal":[1,0],"blocked":[],"instruction":"right 1","runId":"r"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Gridpilot-API-Key", "sekrit")
	authed, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post with key: %v", err)
	}
	defer authed.Body.Close()
	if authed.StatusCode != http.StatusOK {
		t.Fatalf("valid key rejected, status = %d", authed.StatusCode)
	}

	health, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	health.Body.Close()
	if health.StatusCode != http.StatusOK {
		t.Fatalf("healthz must bypass the api key, status = %d", health.StatusCode)
	}
}
