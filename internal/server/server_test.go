package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/cardspace/pkg/engine"
	"github.com/matzehuels/cardspace/pkg/entity"
	"github.com/matzehuels/cardspace/pkg/observability"
)

const dataset = `{
	"E1": {"title": "E1", "seitou": "自民", "tubohantei": "あり", "tuboURL": "https://a.example"},
	"E2": {"title": "E2", "seitou": "公明"},
	"P": {"title": "P", "childrenInfo": {"cards": ["E1", "E2"]}}
}`

type harness struct {
	srv       *httptest.Server
	store     *entity.Store
	persisted int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{}
	quiet := log.New(io.Discard)
	h.store = entity.NewStore(entity.WithLogger(quiet), entity.WithPersist(func() { h.persisted++ }))
	if err := h.store.Import([]byte(dataset)); err != nil {
		t.Fatal(err)
	}

	cfg := engine.DefaultConfig()
	cfg.Seed = 3
	e := engine.New(h.store, engine.WithConfig(cfg), engine.WithLogger(quiet))
	e.Init("")

	loop := engine.NewLoop(e, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = loop.Run(ctx)
		close(done)
	}()

	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	if err != nil {
		t.Fatal(err)
	}
	m.Install()

	h.srv = httptest.NewServer(New(loop, WithLogger(quiet), WithGatherer(reg)).Handler())
	t.Cleanup(func() {
		h.srv.Close()
		cancel()
		<-done
		observability.Reset()
	})
	return h
}

func (h *harness) call(t *testing.T, method, path, body string) (int, []byte) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, h.srv.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := h.srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, data
}

func (h *harness) scene(t *testing.T) sceneView {
	t.Helper()
	code, body := h.call(t, http.MethodGet, "/api/scene?objects=false", "")
	if code != http.StatusOK {
		t.Fatalf("GET /api/scene = %d %s", code, body)
	}
	var v sceneView
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestStatusCodes(t *testing.T) {
	h := newHarness(t)
	tests := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/api/entities", "", http.StatusOK},
		{http.MethodGet, "/api/entities/E1", "", http.StatusOK},
		{http.MethodGet, "/api/entities/nope", "", http.StatusNotFound},
		{http.MethodGet, "/api/entities/nope/links", "", http.StatusNotFound},
		{http.MethodGet, "/api/entities/%20", "", http.StatusBadRequest},
		{http.MethodPost, "/api/mode/alphabetic", "", http.StatusNoContent},
		{http.MethodPost, "/api/mode/free", "", http.StatusBadRequest},
		{http.MethodPost, "/api/mode/sideways", "", http.StatusBadRequest},
		{http.MethodPost, "/api/recolor/issue", "", http.StatusNoContent},
		{http.MethodPost, "/api/recolor/rainbow", "", http.StatusBadRequest},
		{http.MethodPost, "/api/frames/zimin/select", "", http.StatusNoContent},
		{http.MethodPost, "/api/frames/nope/select", "", http.StatusNotFound},
		{http.MethodPost, "/api/pointer/click", `{"x": 1, "y": 1}`, http.StatusNoContent},
		{http.MethodPost, "/api/pointer/wiggle", `{}`, http.StatusBadRequest},
		{http.MethodPost, "/api/pointer/down", `{`, http.StatusBadRequest},
		{http.MethodPost, "/api/keys/ArrowUp", "", http.StatusNoContent},
		{http.MethodPost, "/api/keys/Escape", "", http.StatusBadRequest},
		{http.MethodPut, "/api/entities/E1/edit", `{"color": "zz"}`, http.StatusBadRequest},
		{http.MethodPut, "/api/entities/nope/edit", `{}`, http.StatusNotFound},
		{http.MethodDelete, "/api/entities/nope", "", http.StatusNotFound},
		{http.MethodPost, "/api/import", `[1, 2]`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			if code, body := h.call(t, tt.method, tt.path, tt.body); code != tt.want {
				t.Errorf("status = %d, want %d (%s)", code, tt.want, body)
			}
		})
	}
}

func TestErrorBody(t *testing.T) {
	h := newHarness(t)
	_, body := h.call(t, http.MethodGet, "/api/entities/nope", "")
	var e errorBody
	if err := json.Unmarshal(body, &e); err != nil {
		t.Fatal(err)
	}
	if e.Error != "MISSING_ENTITY" || !strings.Contains(e.Message, "nope") {
		t.Errorf("error body = %+v", e)
	}
}

func TestGetEntity(t *testing.T) {
	h := newHarness(t)
	_, body := h.call(t, http.MethodGet, "/api/entities/P", "")
	var got struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		Kind     string `json:"type"`
		Children struct {
			Cards []string `json:"cards"`
		} `json:"childrenInfo"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != "P" || got.Kind != "folder" || len(got.Children.Cards) != 2 {
		t.Errorf("entity = %+v", got)
	}

	_, body = h.call(t, http.MethodGet, "/api/entities/E1/links", "")
	var links linksView
	if err := json.Unmarshal(body, &links); err != nil {
		t.Fatal(err)
	}
	if len(links.Links) != engine.MaxLinks || links.Links[0] != "https://a.example" {
		t.Errorf("links = %v", links.Links)
	}
}

func TestModeAndFocus(t *testing.T) {
	h := newHarness(t)
	h.call(t, http.MethodPost, "/api/mode/category", "")
	if v := h.scene(t); v.ActiveMode != string(entity.ModeCategory) || len(v.Frames) == 0 {
		t.Errorf("after category: mode %q, %d frames", v.ActiveMode, len(v.Frames))
	}

	h.call(t, http.MethodPost, "/api/focus/E2", "")
	if v := h.scene(t); !v.Panel.Open || v.Panel.ID != "E2" {
		t.Errorf("panel after focus = %+v", v.Panel)
	}
}

func TestEditAndDelete(t *testing.T) {
	h := newHarness(t)
	if code, body := h.call(t, http.MethodPut, "/api/entities/E2/edit", `{"color": "#112233", "type": "img"}`); code != http.StatusNoContent {
		t.Fatalf("edit = %d %s", code, body)
	}
	if code, _ := h.call(t, http.MethodDelete, "/api/entities/E1", ""); code != http.StatusNoContent {
		t.Fatalf("delete = %d", code)
	}

	_, body := h.call(t, http.MethodGet, "/api/entities", "")
	var list []entitySummary
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("entities = %+v", list)
	}
	for _, s := range list {
		if s.ID == "P" && s.Children != 1 {
			t.Errorf("P children = %d after delete, want 1", s.Children)
		}
		if s.ID == "E2" && s.Kind != entity.KindImage {
			t.Errorf("E2 kind = %q", s.Kind)
		}
	}
	if h.persisted == 0 {
		t.Error("no persistence requested")
	}
}

func TestCreate(t *testing.T) {
	h := newHarness(t)
	code, body := h.call(t, http.MethodPost, "/api/entities", `{"title": "new"}`)
	if code != http.StatusCreated {
		t.Fatalf("create = %d %s", code, body)
	}
	var got map[string]string
	_ = json.Unmarshal(body, &got)
	if code, _ := h.call(t, http.MethodGet, "/api/entities/"+got["id"], ""); code != http.StatusOK {
		t.Errorf("created entity not found: %d", code)
	}
}

func TestExportImport(t *testing.T) {
	h := newHarness(t)
	code, exported := h.call(t, http.MethodGet, "/api/export", "")
	if code != http.StatusOK {
		t.Fatalf("export = %d", code)
	}

	code, body := h.call(t, http.MethodPost, "/api/import", `{"X": {"title": "X"}}`)
	if code != http.StatusOK || !strings.Contains(string(body), `"entities":1`) {
		t.Fatalf("import = %d %s", code, body)
	}
	if code, _ := h.call(t, http.MethodGet, "/api/entities/E1", ""); code != http.StatusNotFound {
		t.Errorf("E1 survived import: %d", code)
	}

	if code, _ := h.call(t, http.MethodPost, "/api/import", string(exported)); code != http.StatusOK {
		t.Errorf("re-import = %d", code)
	}
	if h.store.Len() != 3 {
		t.Errorf("store has %d entities after round trip", h.store.Len())
	}
}

func TestMetrics(t *testing.T) {
	h := newHarness(t)
	h.call(t, http.MethodPost, "/api/mode/theme", "")
	code, body := h.call(t, http.MethodGet, "/metrics", "")
	if code != http.StatusOK {
		t.Fatalf("metrics = %d", code)
	}
	if !strings.Contains(string(body), `cardspace_mode_switches_total{mode="theme"} 1`) {
		t.Errorf("mode switch not counted:\n%s", body)
	}
}

func TestLoopStopped(t *testing.T) {
	quiet := log.New(io.Discard)
	e := engine.New(entity.NewStore(entity.WithLogger(quiet)), engine.WithLogger(quiet))
	loop := engine.NewLoop(e, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = loop.Run(ctx)

	srv := httptest.NewServer(New(loop, WithLogger(quiet)).Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL + "/api/scene")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}
