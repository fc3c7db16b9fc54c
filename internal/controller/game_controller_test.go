package controller

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/benbeisheim/chessrules/internal/middleware"
	"github.com/benbeisheim/chessrules/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/google/go-cmp/cmp"
)

func newTestApp() *fiber.App {
	gameService := service.NewGameService(service.NewGameManager(service.Options{}))
	app := fiber.New()
	NewGameController(gameService).Routes(app.Group("/api/game", middleware.EnsurePlayerID()))
	return app
}

func call(t *testing.T, app *fiber.App, method, path, player, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if player != "" {
		req.Header.Set("X-Player-ID", player)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("%s %s: decoding body: %v", method, path, err)
	}
	return resp.StatusCode, out
}

func createGame(t *testing.T, app *fiber.App) string {
	t.Helper()
	status, body := call(t, app, http.MethodPost, "/api/game/create", "alice", "")
	if status != fiber.StatusOK {
		t.Fatalf("create status = %d; body %v", status, body)
	}
	return body["game_id"].(string)
}

func TestGameRoutes(t *testing.T) {
	app := newTestApp()
	gameID := createGame(t, app)
	base := "/api/game/" + gameID

	status, body := call(t, app, http.MethodPost, "/api/game/join/"+gameID, "alice", "")
	if status != fiber.StatusOK || body["color"] != "white" {
		t.Fatalf("join alice = %d %v", status, body)
	}
	status, body = call(t, app, http.MethodPost, "/api/game/join/"+gameID, "bob", "")
	if status != fiber.StatusOK || body["color"] != "black" {
		t.Fatalf("join bob = %d %v", status, body)
	}

	status, body = call(t, app, http.MethodGet, base+"/moves", "alice", "")
	if status != fiber.StatusOK {
		t.Fatalf("moves status = %d", status)
	}
	if n := len(body["moves"].([]any)); n != 20 {
		t.Errorf("got %d legal moves; want 20", n)
	}

	status, body = call(t, app, http.MethodPost, base+"/move", "alice", `{"from":"e2","to":"e4"}`)
	if status != fiber.StatusOK {
		t.Fatalf("move status = %d; body %v", status, body)
	}
	if diff := cmp.Diff([]any{"e4"}, body["moveHistory"]); diff != "" {
		t.Errorf("moveHistory mismatch (-want +got):\n%s", diff)
	}
	if body["toMove"] != "black" {
		t.Errorf("toMove = %v; want black", body["toMove"])
	}

	status, body = call(t, app, http.MethodGet, base+"/archive", "bob", "")
	if status != fiber.StatusOK || len(body["moves"].([]any)) != 1 {
		t.Errorf("archive = %d %v", status, body)
	}

	status, body = call(t, app, http.MethodPost, base+"/undo", "bob", "")
	if status != fiber.StatusOK || body["toMove"] != "white" {
		t.Errorf("undo = %d %v", status, body)
	}

	status, body = call(t, app, http.MethodGet, base, "carol", "")
	if status != fiber.StatusOK || body["fen"] == "" {
		t.Errorf("state = %d %v", status, body)
	}
}

func TestGameRouteErrors(t *testing.T) {
	app := newTestApp()
	gameID := createGame(t, app)
	base := "/api/game/" + gameID
	call(t, app, http.MethodPost, "/api/game/join/"+gameID, "alice", "")
	call(t, app, http.MethodPost, "/api/game/join/"+gameID, "bob", "")

	tests := []struct {
		name   string
		method string
		path   string
		player string
		body   string
		want   int
	}{
		{"no player id", http.MethodGet, base, "", "", fiber.StatusUnauthorized},
		{"unknown game", http.MethodGet, "/api/game/nope", "alice", "", fiber.StatusNotFound},
		{"game full", http.MethodPost, "/api/game/join/" + gameID, "carol", "", fiber.StatusConflict},
		{"bad body", http.MethodPost, base + "/move", "alice", `{`, fiber.StatusBadRequest},
		{"bad square", http.MethodPost, base + "/move", "alice", `{"from":"z9","to":"e4"}`, fiber.StatusBadRequest},
		{"illegal move", http.MethodPost, base + "/move", "alice", `{"from":"e2","to":"e5"}`, fiber.StatusUnprocessableEntity},
		{"out of turn", http.MethodPost, base + "/move", "bob", `{"from":"e7","to":"e5"}`, fiber.StatusConflict},
		{"stranger move", http.MethodPost, base + "/move", "carol", `{"from":"e2","to":"e4"}`, fiber.StatusForbidden},
		{"nothing to undo", http.MethodPost, base + "/undo", "alice", "", fiber.StatusConflict},
		{"rematch mid-game", http.MethodPost, base + "/rematch", "alice", "", fiber.StatusConflict},
		{"leave without queue", http.MethodPost, "/api/game/matchmaking/leave", "alice", "", fiber.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, app, tt.method, tt.path, tt.player, tt.body)
			if status != tt.want {
				t.Errorf("status = %d; want %d (body %v)", status, tt.want, body)
			}
			if _, ok := body["error"]; !ok {
				t.Errorf("body %v has no error", body)
			}
		})
	}
}

func TestMatchmakingRoutes(t *testing.T) {
	app := newTestApp()

	status, body := call(t, app, http.MethodPost, "/api/game/matchmaking/join", "alice", "")
	if status != fiber.StatusOK || body["status"] != "queued" {
		t.Fatalf("join = %d %v", status, body)
	}
	status, _ = call(t, app, http.MethodPost, "/api/game/matchmaking/join", "alice", "")
	if status != fiber.StatusConflict {
		t.Errorf("second join status = %d; want 409", status)
	}
	status, body = call(t, app, http.MethodPost, "/api/game/matchmaking/leave", "alice", "")
	if status != fiber.StatusOK || body["status"] != "left" {
		t.Errorf("leave = %d %v", status, body)
	}
}
