package monitor

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/SmitUplenchwar2687/Tempo/internal/clock"
	"github.com/SmitUplenchwar2687/Tempo/internal/machine"
	"github.com/SmitUplenchwar2687/Tempo/internal/stddev"
	"github.com/SmitUplenchwar2687/Tempo/internal/trace"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type fixedSource struct {
	mu   sync.Mutex
	snap machine.Snapshot
}

func (f *fixedSource) Snapshot() machine.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func startTestServer(t *testing.T, src StateSource, hub *Hub) (string, func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	srv := New(ln.Addr().String(), src, clock.NewVirtualClock(epoch), hub)
	go srv.StartOnListener(ln)
	baseURL := "http://" + ln.Addr().String()
	return baseURL, func() {
		srv.Shutdown(nil)
	}
}

func TestServer_Root(t *testing.T) {
	baseURL, cleanup := startTestServer(t, &fixedSource{}, nil)
	defer cleanup()

	resp, err := http.Get(baseURL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	if body["service"] != "tempo" {
		t.Errorf("service = %q, want %q", body["service"], "tempo")
	}
	if body["time"] != epoch.Format(time.RFC3339) {
		t.Errorf("time = %q, want virtual clock time", body["time"])
	}
}

func TestServer_Health(t *testing.T) {
	baseURL, cleanup := startTestServer(t, &fixedSource{}, nil)
	defer cleanup()

	resp, err := http.Get(baseURL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestServer_NotFound(t *testing.T) {
	baseURL, cleanup := startTestServer(t, &fixedSource{}, nil)
	defer cleanup()

	resp, err := http.Get(baseURL + "/nonexistent")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestServer_State(t *testing.T) {
	src := &fixedSource{snap: machine.Snapshot{
		Board: stddev.State{ICCS: stddev.CSRIE, TXCS: stddev.CSRDone, TODR: 0x10000064},
		Units: 5000,
		Ticks: 1,
	}}
	baseURL, cleanup := startTestServer(t, src, nil)
	defer cleanup()

	resp, err := http.Get(baseURL + "/api/state")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var got machine.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Units != 5000 || got.Ticks != 1 {
		t.Errorf("units/ticks = %d/%d, want 5000/1", got.Units, got.Ticks)
	}
	if got.Board.TODR != 0x10000064 || got.Board.ICCS != stddev.CSRIE {
		t.Errorf("board = %+v", got.Board)
	}
}

func TestServer_StateRejectsPost(t *testing.T) {
	baseURL, cleanup := startTestServer(t, &fixedSource{}, nil)
	defer cleanup()

	resp, err := http.Post(baseURL+"/api/state", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestServer_Dashboard(t *testing.T) {
	baseURL, cleanup := startTestServer(t, &fixedSource{}, nil)
	defer cleanup()

	resp, err := http.Get(baseURL + "/dashboard/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		t.Errorf("Content-Type = %q, want text/html", resp.Header.Get("Content-Type"))
	}
}

func TestServer_NoFeedWithoutHub(t *testing.T) {
	baseURL, cleanup := startTestServer(t, &fixedSource{}, nil)
	defer cleanup()

	resp, err := http.Get(baseURL + "/ws")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func waitClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.ClientCount() == n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("ClientCount() = %d, want %d", h.ClientCount(), n)
}

func TestHub_BroadcastReachesClient(t *testing.T) {
	hub := NewHub()
	baseURL, cleanup := startTestServer(t, &fixedSource{}, hub)
	defer cleanup()

	wsURL := "ws" + strings.TrimPrefix(baseURL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	waitClients(t, hub, 1)

	hub.Broadcast(trace.Event{Time: epoch, At: 42, Device: stddev.DeviceOutput, Kind: stddev.KindTransmit, Value: 'A'})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got trace.Event
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatal(err)
	}
	if got.At != 42 || got.Device != stddev.DeviceOutput || got.Value != 'A' {
		t.Errorf("event = %+v", got)
	}
}

func TestHub_ClientDisconnect(t *testing.T) {
	hub := NewHub()
	baseURL, cleanup := startTestServer(t, &fixedSource{}, hub)
	defer cleanup()

	wsURL := "ws" + strings.TrimPrefix(baseURL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	waitClients(t, hub, 1)

	conn.Close()
	waitClients(t, hub, 0)

	// No clients left; must not block or panic.
	hub.Broadcast(trace.Event{Device: stddev.DeviceClock, Kind: stddev.KindRecalibrate})
}
