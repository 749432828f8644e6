package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/bakeboard/internal/adapters/http/api"
	"github.com/okian/bakeboard/internal/adapters/repository"
	service "github.com/okian/bakeboard/internal/app"
	"github.com/okian/bakeboard/internal/domain/model"
	"github.com/okian/bakeboard/internal/domain/transfer"
	"github.com/okian/bakeboard/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// newTestServer stands up the full stack: sqlite store, service, hub, and
// the HTTP mux, with the hub running until the test ends.
func newTestServer(t *testing.T) (*httptest.Server, *service.Service) {
	t.Helper()
	store, err := repository.Open(filepath.Join(t.TempDir(), "api.sqlite3"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	svc := service.New(store)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start service: %v", err)
	}
	go func() { _ = svc.Run(ctx) }()

	mux := http.NewServeMux()
	api.NewServer(svc).Register(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, svc
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func addParticipant(t *testing.T, base, name string) int64 {
	t.Helper()
	resp, out := doJSON(t, http.MethodPost, base+"/api/participants", map[string]any{"name": name})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add participant: status %d", resp.StatusCode)
	}
	return int64(out["id"].(float64))
}

func TestStateEndpoint(t *testing.T) {
	Convey("Given a running API", t, func() {
		ts, _ := newTestServer(t)

		Convey("When GET /api/state is requested", func() {
			resp, out := doJSON(t, http.MethodGet, ts.URL+"/api/state", nil)

			Convey("Then the snapshot carries seeded settings and empty collections", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				cfg := out["settings"].(map[string]any)
				So(cfg["competition_name"], ShouldEqual, "2025 Holiday Bakeoff")
				So(cfg["voting_open"], ShouldEqual, true)
				So(out["participants"], ShouldBeEmpty)
				So(out["leaderboard"], ShouldBeEmpty)
			})
		})

		Convey("When a non-GET method is used", func() {
			resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/state", nil)
			So(resp.StatusCode, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestParticipantEndpoints(t *testing.T) {
	Convey("Given a running API", t, func() {
		ts, _ := newTestServer(t)

		Convey("When a participant is created", func() {
			resp, out := doJSON(t, http.MethodPost, ts.URL+"/api/participants", map[string]any{"name": "Alice"})

			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(out["name"], ShouldEqual, "Alice")
			So(out["active"], ShouldEqual, true)
			id := int64(out["id"].(float64))

			Convey("And its active flag can be patched", func() {
				resp, _ := doJSON(t, http.MethodPatch, fmt.Sprintf("%s/api/participants/%d", ts.URL, id), map[string]any{"active": false})
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})

			Convey("And a dessert can be attached", func() {
				resp, _ := doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/participants/%d/dessert", ts.URL, id), map[string]any{
					"dessert_name": "Gingerbread House",
					"category":     "showpiece",
				})
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				_, state := doJSON(t, http.MethodGet, ts.URL+"/api/state", nil)
				desserts := state["desserts"].([]any)
				So(desserts, ShouldHaveLength, 1)
			})

			Convey("And it can be deleted", func() {
				resp, _ := doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/participants/%d", ts.URL, id), nil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When the body has no name", func() {
			resp, out := doJSON(t, http.MethodPost, ts.URL+"/api/participants", map[string]any{"active": true})
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			So(out["code"], ShouldEqual, "validation_failed")
		})

		Convey("When patching an unknown id", func() {
			resp, out := doJSON(t, http.MethodPatch, ts.URL+"/api/participants/9999", map[string]any{"active": false})
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			So(out["code"], ShouldEqual, "unknown_participant")
		})

		Convey("When the id is not numeric", func() {
			resp, _ := doJSON(t, http.MethodDelete, ts.URL+"/api/participants/abc", nil)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestScoreEndpoints(t *testing.T) {
	Convey("Given an API with one participant", t, func() {
		ts, _ := newTestServer(t)
		id := addParticipant(t, ts.URL, "Bob")

		score := map[string]any{
			"participant_id": id,
			"judge_name":     "judge-1",
			"criteria":       map[string]float64{"taste": 9, "presentation": 8},
		}

		Convey("When a score is submitted", func() {
			resp, out := doJSON(t, http.MethodPost, ts.URL+"/api/scores", score)

			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(out["status"], ShouldEqual, "ok")
			scoreID := int64(out["score_id"].(float64))

			Convey("And a duplicate by the same judge is a conflict", func() {
				resp, out := doJSON(t, http.MethodPost, ts.URL+"/api/scores", score)
				So(resp.StatusCode, ShouldEqual, http.StatusConflict)
				So(out["code"], ShouldEqual, "duplicate_vote")
			})

			Convey("And the score can be deleted", func() {
				resp, _ := doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/scores/%d", ts.URL, scoreID), nil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})

			Convey("And deleting it twice is a 404", func() {
				doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/scores/%d", ts.URL, scoreID), nil)
				resp, out := doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/scores/%d", ts.URL, scoreID), nil)
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
				So(out["code"], ShouldEqual, "not_found")
			})
		})

		Convey("When the participant is unknown", func() {
			bad := map[string]any{"participant_id": 9999, "judge_name": "judge-1", "criteria": map[string]float64{"taste": 5}}
			resp, out := doJSON(t, http.MethodPost, ts.URL+"/api/scores", bad)
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			So(out["code"], ShouldEqual, "unknown_participant")
		})

		Convey("When voting is closed", func() {
			resp, _ := doJSON(t, http.MethodPut, ts.URL+"/api/settings", map[string]any{"voting_open": false})
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			resp, out := doJSON(t, http.MethodPost, ts.URL+"/api/scores", score)
			So(resp.StatusCode, ShouldEqual, http.StatusConflict)
			So(out["code"], ShouldEqual, "voting_closed")
		})

		Convey("When required fields are missing", func() {
			resp, out := doJSON(t, http.MethodPost, ts.URL+"/api/scores", map[string]any{"judge_name": "judge-1"})
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			So(out["code"], ShouldEqual, "validation_failed")
		})
	})
}

func TestSettingsEndpoint(t *testing.T) {
	Convey("Given a running API", t, func() {
		ts, _ := newTestServer(t)

		Convey("When settings are updated in bulk", func() {
			resp, out := doJSON(t, http.MethodPut, ts.URL+"/api/settings", map[string]any{
				"competition_name": "Spring Pie-Off",
				"voting_open":      "no",
				"banner_color":     "green",
			})

			Convey("Then the response reflects coercion and passthrough", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(out["competition_name"], ShouldEqual, "Spring Pie-Off")
				So(out["voting_open"], ShouldEqual, false)
				So(out["banner_color"], ShouldEqual, "green")
			})
		})

		Convey("When the body is empty", func() {
			resp, _ := doJSON(t, http.MethodPut, ts.URL+"/api/settings", map[string]any{})
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestTransferEndpoints(t *testing.T) {
	Convey("Given an API with state", t, func() {
		ts, _ := newTestServer(t)
		id := addParticipant(t, ts.URL, "Carol")
		resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/scores", map[string]any{
			"participant_id": id,
			"judge_name":     "judge-1",
			"criteria":       map[string]float64{"taste": 7},
		})
		So(resp.StatusCode, ShouldEqual, http.StatusOK)

		Convey("When exported and re-imported into a fresh server", func() {
			resp, err := http.Get(ts.URL + "/api/export")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(resp.Header.Get("Content-Disposition"), ShouldContainSubstring, "attachment")

			var payload transfer.Payload
			So(json.NewDecoder(resp.Body).Decode(&payload), ShouldBeNil)
			So(payload.Participants, ShouldHaveLength, 1)

			ts2, _ := newTestServer(t)
			resp2, out := doJSON(t, http.MethodPost, ts2.URL+"/api/import?mode=replace", payload)

			Convey("Then the report accounts for every section", func() {
				So(resp2.StatusCode, ShouldEqual, http.StatusOK)
				So(out["mode"], ShouldEqual, transfer.ModeReplace)
				So(out["participants"], ShouldEqual, 1)
				So(out["scores"], ShouldEqual, 1)

				_, state := doJSON(t, http.MethodGet, ts2.URL+"/api/state", nil)
				So(state["participants"], ShouldHaveLength, 1)
				So(state["scores"], ShouldHaveLength, 1)
			})
		})

		Convey("When the import body is not JSON", func() {
			resp, err := http.Post(ts.URL+"/api/import", "application/json", strings.NewReader("not json"))
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestInternalErrorsAreOpaque(t *testing.T) {
	Convey("Given an API whose store has failed", t, func() {
		store, err := repository.Open(filepath.Join(t.TempDir(), "dead.sqlite3"))
		So(err, ShouldBeNil)

		svc := service.New(store)
		So(svc.Start(context.Background()), ShouldBeNil)

		mux := http.NewServeMux()
		api.NewServer(svc).Register(mux)
		ts := httptest.NewServer(mux)
		t.Cleanup(ts.Close)

		So(store.Close(), ShouldBeNil)

		Convey("When a read hits the dead store", func() {
			resp, out := doJSON(t, http.MethodGet, ts.URL+"/api/state", nil)

			Convey("Then the client sees only the generic failure", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusInternalServerError)
				So(out["code"], ShouldEqual, "internal_error")
				So(out["message"], ShouldEqual, http.StatusText(http.StatusInternalServerError))
			})
		})
	})
}

func TestHealthEndpoint(t *testing.T) {
	Convey("Given a running API", t, func() {
		ts, _ := newTestServer(t)

		resp, out := doJSON(t, http.MethodGet, ts.URL+"/healthz", nil)
		So(resp.StatusCode, ShouldEqual, http.StatusOK)
		So(out["status"], ShouldEqual, "ok")
	})
}

func TestWebsocketObserver(t *testing.T) {
	Convey("Given a running API with the hub live", t, func() {
		ts, _ := newTestServer(t)
		wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		So(err, ShouldBeNil)
		defer conn.Close()

		Convey("Then the current snapshot arrives on connect", func() {
			_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			var snap model.Snapshot
			So(conn.ReadJSON(&snap), ShouldBeNil)
			So(snap.Settings.CompetitionName, ShouldEqual, "2025 Holiday Bakeoff")

			Convey("And a mutation pushes a fresh one", func() {
				addParticipant(t, ts.URL, "Dana")

				_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
				var next model.Snapshot
				So(conn.ReadJSON(&next), ShouldBeNil)
				So(next.Participants, ShouldHaveLength, 1)
				So(next.Participants[0].Name, ShouldEqual, "Dana")
			})
		})
	})
}
