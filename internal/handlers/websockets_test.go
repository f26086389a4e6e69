package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"trafficsense/internal/metrics"
	"trafficsense/internal/models"
	"trafficsense/internal/services/classifier"
	"trafficsense/internal/services/dashboard"
	"trafficsense/internal/services/websocket"

	gorilla "github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type viewerSetup struct {
	hub     *websocket.HubService
	reader  *dashboard.Reader
	metrics *metrics.Collector
	url     string
	cancel  context.CancelFunc
	stopped chan struct{}
}

func setupViewer(t *testing.T) *viewerSetup {
	t.Helper()
	collectorSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count":15}`))
	}))
	t.Cleanup(collectorSrv.Close)

	m := metrics.NewCollector()
	log := quietLogger()
	hub := websocket.NewHubService(m, log)
	c, err := classifier.New(5, 12)
	if err != nil {
		t.Fatalf("classifier.New failed: %v", err)
	}
	reader := dashboard.NewReader(dashboard.Options{
		CollectorURL:  collectorSrv.URL,
		CountLogPath:  filepath.Join(t.TempDir(), "vehicle_counts_log.csv"),
		HistoryWindow: 30,
		Timeout:       time.Second,
	}, c, hub, m, log)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	srv := httptest.NewServer(ViewWebsocketHandler(hub, reader, log))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})

	return &viewerSetup{
		hub:     hub,
		reader:  reader,
		metrics: m,
		url:     "ws" + strings.TrimPrefix(srv.URL, "http"),
		cancel:  cancel,
		stopped: stopped,
	}
}

func waitForViewers(t *testing.T, m *metrics.Collector, want float64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for testutil.ToFloat64(m.Viewers) != want {
		if time.Now().After(deadline) {
			t.Fatalf("Expected %v viewers, got %v", want, testutil.ToFloat64(m.Viewers))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func readSnapshot(t *testing.T, conn *gorilla.Conn) models.Snapshot {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	var snap models.Snapshot
	if err := json.Unmarshal(msg, &snap); err != nil {
		t.Fatalf("Message is not a snapshot: %v (%s)", err, msg)
	}
	return snap
}

func TestViewWebsocket_InitialSnapshotAndBroadcasts(t *testing.T) {
	v := setupViewer(t)

	conn, _, err := gorilla.DefaultDialer.Dial(v.url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	if snap := readSnapshot(t, conn); snap.Count != 0 || snap.Status.Class != models.Clear {
		t.Errorf("Initial snapshot = %d / %s, expected 0 / Clear", snap.Count, snap.Status.Label)
	}
	waitForViewers(t, v.metrics, 1)

	v.reader.Refresh(context.Background())
	if snap := readSnapshot(t, conn); snap.Count != 15 || snap.Status.Class != models.TrafficJam || snap.History == nil {
		t.Errorf("Unexpected refreshed snapshot %+v", snap)
	}

	v.hub.Broadcast([]byte(`{"count":42}`))
	if snap := readSnapshot(t, conn); snap.Count != 42 {
		t.Errorf("Expected broadcast count 42, got %d", snap.Count)
	}

	conn.Close()
	waitForViewers(t, v.metrics, 0)
	if v.hub.GetClientCount() != 0 {
		t.Errorf("Expected no clients after disconnect, got %d", v.hub.GetClientCount())
	}
}

func TestViewWebsocket_AfterHubShutdown(t *testing.T) {
	v := setupViewer(t)

	conn, _, err := gorilla.DefaultDialer.Dial(v.url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()
	readSnapshot(t, conn)
	waitForViewers(t, v.metrics, 1)

	v.cancel()
	select {
	case <-v.stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Hub did not stop")
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("Expected the connection to be closed on shutdown")
	}

	// A viewer arriving after shutdown gets its snapshot and is then disconnected.
	late, _, err := gorilla.DefaultDialer.Dial(v.url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer late.Close()
	readSnapshot(t, late)
	late.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := late.ReadMessage(); err == nil {
		t.Error("Expected the late viewer to be disconnected")
	}
}
