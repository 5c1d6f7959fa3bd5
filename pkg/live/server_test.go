package live

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/inplace/pkg/app"
	"github.com/vango-dev/inplace/pkg/instrument"
	"github.com/vango-dev/inplace/pkg/reconcile"
	"github.com/vango-dev/inplace/pkg/snapshot"
)

func newServer(t *testing.T, opts ...Option) (*Server, *httptest.Server, *bytes.Buffer) {
	t.Helper()
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	opts = append([]Option{WithLogger(logger), WithTracer(instrument.NoopTracer())}, opts...)
	srv, err := New(app.DefaultState(), opts...)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		srv.closeClients()
		ts.Close()
	})
	return srv, ts, logs
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func post(t *testing.T, url string, v any) (int, []byte) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, body
}

func value(s string) *string { return &s }

func TestPage(t *testing.T) {
	_, ts, _ := newServer(t)

	status, body := get(t, ts.URL+"/")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	for _, want := range []string{`<div id="main"><div class="app"><table>`, `new WebSocket`, `<input name="city"/>`} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}

	status, fragment := get(t, ts.URL+"/fragment")
	if status != http.StatusOK || !strings.HasPrefix(fragment, `<div class="app">`) {
		t.Errorf("fragment = %d %q", status, fragment)
	}
}

func TestEventChangesState(t *testing.T) {
	_, ts, _ := newServer(t)

	status, body := post(t, ts.URL+"/events", Event{Name: "name", Type: "change", Value: value("Ann")})
	if status != http.StatusOK {
		t.Fatalf("status = %d: %s", status, body)
	}
	var res struct {
		Updates []struct {
			Source  string `json:"source"`
			Patches []struct {
				Op    string `json:"op"`
				Value string `json:"value"`
			} `json:"patches"`
		} `json:"updates"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if len(res.Updates) != 1 || res.Updates[0].Source != "App" {
		t.Fatalf("updates = %+v", res.Updates)
	}
	patches := res.Updates[0].Patches
	if len(patches) != 1 || patches[0].Op != "SetText" || patches[0].Value != "Ann   " {
		t.Errorf("patches = %+v", patches)
	}

	_, state := get(t, ts.URL+"/state")
	if !strings.Contains(state, `"name":"Ann"`) {
		t.Errorf("state = %s", state)
	}
	_, fragment := get(t, ts.URL+"/fragment")
	if !strings.Contains(fragment, "<div>Ann   </div>") {
		t.Errorf("fragment not patched: %s", fragment)
	}
}

func TestEventByPath(t *testing.T) {
	srv, ts, logs := newServer(t)

	// The app root holds the table then the form; the button is the ninth
	// element of the form.
	status, body := post(t, ts.URL+"/events", Event{Path: []int{1, 8}, Type: "click"})
	if status != http.StatusOK {
		t.Fatalf("status = %d: %s", status, body)
	}
	if !strings.Contains(string(body), `"updates":[]`) {
		t.Errorf("click should not reconcile: %s", body)
	}
	if !strings.Contains(logs.String(), "msg=form") {
		t.Errorf("button click not logged:\n%s", logs.String())
	}

	res, err := srv.Apply(Event{Path: []int{1, 2}, Value: value("Boston")})
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if len(res.Updates) != 1 {
		t.Errorf("updates = %d, want 1", len(res.Updates))
	}
	if got := srv.App().FormData().String("city"); got != "Boston" {
		t.Errorf("city = %q", got)
	}
}

func TestEventErrors(t *testing.T) {
	_, ts, _ := newServer(t)

	tests := []struct {
		name     string
		body     any
		wantCode int
		wantErr  string
	}{
		{"no target", Event{Type: "change"}, http.StatusBadRequest, "E080"},
		{"missing path", Event{Path: []int{9, 9}, Type: "click"}, http.StatusBadRequest, "E080"},
		{"unhandled event", Event{Path: []int{0, 0, 0, 0}, Type: "click"}, http.StatusUnprocessableEntity, "E005"},
		{"bad json", "not an event", http.StatusBadRequest, "E080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := post(t, ts.URL+"/events", tt.body)
			if status != tt.wantCode {
				t.Errorf("status = %d, want %d", status, tt.wantCode)
			}
			var e errorBody
			json.Unmarshal(body, &e)
			if e.Code != tt.wantErr {
				t.Errorf("code = %q, want %q (%s)", e.Code, tt.wantErr, body)
			}
		})
	}
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial error: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON error: %v", err)
	}
	return msg
}

func TestWebSocket(t *testing.T) {
	reg := prometheus.NewRegistry()
	srv, ts, _ := newServer(t, WithMetrics(instrument.NewMetrics(instrument.WithRegistry(reg))))

	conn := dial(t, ts)
	init := read(t, conn)
	if init.Type != MessageInit || init.Session == "" || !strings.HasPrefix(init.HTML, `<div class="app">`) {
		t.Fatalf("init = %+v", init)
	}
	other := dial(t, ts)
	read(t, other)

	if err := conn.WriteJSON(Event{Name: "state", Value: value("WI")}); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}

	for _, c := range []*websocket.Conn{conn, other} {
		msg := read(t, c)
		if msg.Type != MessagePatch || msg.Update == nil {
			t.Fatalf("message = %+v", msg)
		}
		if msg.Update.Source != "App" || len(msg.Update.Patches) != 1 {
			t.Fatalf("update = %+v", msg.Update)
		}
		if p := msg.Update.Patches[0]; p.Op != reconcile.PatchSetText || p.Value != "  WI " {
			t.Errorf("patch = %+v", p)
		}
		if !strings.Contains(msg.HTML, "<div>  WI </div>") {
			t.Errorf("html not patched: %s", msg.HTML)
		}
	}

	if err := conn.WriteJSON(Event{Type: "change"}); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}
	if msg := read(t, conn); msg.Type != MessageError || !strings.Contains(msg.Error, "E080") {
		t.Errorf("error message = %+v", msg)
	}

	if srv.Clients() != 2 {
		t.Errorf("Clients() = %d, want 2", srv.Clients())
	}
	_, metrics := get(t, ts.URL+"/metrics")
	for _, want := range []string{"inplace_live_sessions 2", `inplace_events_total{event="change",status="ok"} 1`} {
		if !strings.Contains(metrics, want) {
			t.Errorf("metrics missing %q", want)
		}
	}

	other.Close()
	deadline := time.Now().Add(5 * time.Second)
	for srv.Clients() != 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if srv.Clients() != 1 {
		t.Errorf("Clients() after close = %d, want 1", srv.Clients())
	}
}

func TestMutate(t *testing.T) {
	srv, _, _ := newServer(t)

	res := srv.Mutate(func(a *app.App) {
		a.Rows().Append(app.NewUser("Kim", "Austin", "TX", "33"))
	})

	var ops []string
	for _, u := range res.Updates {
		for _, p := range u.Patches {
			ops = append(ops, p.Op.String())
		}
	}
	// One reconciliation per notification: the element, then the length.
	if len(res.Updates) != 2 {
		t.Errorf("updates = %d, want 2", len(res.Updates))
	}
	if diff := cmp.Diff([]string{"InsertNode"}, ops); diff != "" {
		t.Errorf("ops mismatch (-want +got):\n%s", diff)
	}
	markup, _ := srv.Markup()
	if !strings.Contains(markup, "<td>Kim</td>") {
		t.Errorf("appended row missing: %s", markup)
	}
}

func TestMetricsDisabled(t *testing.T) {
	_, ts, _ := newServer(t)
	if status, _ := get(t, ts.URL+"/metrics"); status != http.StatusNotFound {
		t.Errorf("/metrics status = %d, want 404", status)
	}
}

func TestSnapshots(t *testing.T) {
	store, err := snapshot.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	srv, ts, _ := newServer(t, WithStore(store))

	if _, err := srv.Apply(Event{Name: "name", Value: value("Ann")}); err != nil {
		t.Fatalf("Apply error: %v", err)
	}

	status, body := post(t, ts.URL+"/snapshots", saveRequest{Name: "after-name"})
	if status != http.StatusCreated {
		t.Fatalf("status = %d: %s", status, body)
	}
	var saved saveResponse
	if err := json.Unmarshal(body, &saved); err != nil || saved.ID == "" {
		t.Fatalf("save response = %s, %v", body, err)
	}

	_, list := get(t, ts.URL+"/snapshots")
	var metas []snapshot.Meta
	if err := json.Unmarshal([]byte(list), &metas); err != nil {
		t.Fatalf("list = %s: %v", list, err)
	}
	var names []string
	for _, m := range metas {
		names = append(names, m.Name)
	}
	if diff := cmp.Diff([]string{"after-name"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}

	markup, err := srv.Markup()
	if err != nil {
		t.Fatalf("Markup error: %v", err)
	}
	status, stored := get(t, ts.URL+"/snapshots/"+saved.ID)
	if status != http.StatusOK || stored != markup {
		t.Errorf("stored = %d %q, want %q", status, stored, markup)
	}

	snap, err := store.Load(context.Background(), saved.ID)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	form, _ := snap.State["formData"].(map[string]any)
	if form["name"] != "Ann" {
		t.Errorf("stored state = %v", snap.State)
	}

	if status, _ := get(t, ts.URL+"/snapshots/"+"missing"); status != http.StatusNotFound {
		t.Errorf("missing snapshot status = %d", status)
	}
}

func TestShutdownClosesClients(t *testing.T) {
	srv, ts, _ := newServer(t)
	conn := dial(t, ts)
	read(t, conn)

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown error: %v", err)
	}
	if srv.Clients() != 0 {
		t.Errorf("Clients() = %d, want 0", srv.Clients())
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("read after shutdown = %v, want normal closure", err)
	}
}
