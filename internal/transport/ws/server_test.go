package ws

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/physbox/internal/config"
	"github.com/san-kum/physbox/internal/sandbox"
)

type harness struct {
	session *sandbox.Session
	server  *Server
	http    *httptest.Server
	frames  chan struct{}
	cancel  context.CancelFunc
	done    chan struct{}
}

func newHarness(t *testing.T, staticDir string) *harness {
	t.Helper()
	log.SetOutput(io.Discard)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	s := sandbox.New(config.DefaultConfig(), sandbox.NewManualClock())
	srv := NewServer(s, staticDir)
	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{
		session: s,
		server:  srv,
		http:    httptest.NewServer(srv.Handler()),
		frames:  make(chan struct{}),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go func() {
		defer close(h.done)
		s.Run(ctx, h.frames)
	}()
	t.Cleanup(func() {
		h.cancel()
		<-h.done
		h.http.Close()
	})
	return h
}

func (h *harness) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(h.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket server: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (h *harness) frame() {
	h.frames <- struct{}{}
}

// readUntil reads messages until one of type typ arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		var msg map[string]interface{}
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("bad message %s: %v", data, err)
		}
		if msg["type"] == typ {
			return msg
		}
	}
}

func meshCount(msg map[string]interface{}) int {
	sc := msg["scene"].(map[string]interface{})
	return len(sc["meshes"].([]interface{}))
}

func TestSceneOnConnect(t *testing.T) {
	h := newHarness(t, "")
	conn := h.dial(t)

	msg := readUntil(t, conn, TypeScene)
	if meshCount(msg) != 1 {
		t.Errorf("expected only the floor mesh, got %d", meshCount(msg))
	}
	if msg["gravity"].(float64) != -9.82 {
		t.Errorf("expected gravity -9.82, got %v", msg["gravity"])
	}
}

func TestCreateAndReset(t *testing.T) {
	h := newHarness(t, "")
	conn := h.dial(t)
	readUntil(t, conn, TypeScene)

	conn.WriteJSON(ClientMessage{Type: TypeCreateBox})
	info := readUntil(t, conn, TypeInfo)
	if info["objects"].(float64) != 1 {
		t.Errorf("expected 1 object, got %v", info["objects"])
	}

	conn.WriteJSON(ClientMessage{Type: TypeCreateSphere})
	readUntil(t, conn, TypeInfo)

	h.frame()
	sc := readUntil(t, conn, TypeScene)
	if meshCount(sc) != 3 {
		t.Errorf("expected 3 meshes after spawning, got %d", meshCount(sc))
	}

	h.frame()
	upd := readUntil(t, conn, TypeUpdate)
	if len(upd["objects"].([]interface{})) != 3 {
		t.Errorf("expected 3 transforms, got %v", upd["objects"])
	}

	conn.WriteJSON(ClientMessage{Type: TypeReset})
	info = readUntil(t, conn, TypeInfo)
	if info["objects"].(float64) != 0 {
		t.Errorf("expected 0 objects after reset, got %v", info["objects"])
	}
}

func TestSetGravity(t *testing.T) {
	h := newHarness(t, "")
	conn := h.dial(t)
	readUntil(t, conn, TypeScene)

	g := -40.0
	conn.WriteJSON(ClientMessage{Type: TypeSetGravity, Value: &g})
	info := readUntil(t, conn, TypeInfo)
	if info["gravity"].(float64) != -20 {
		t.Errorf("expected clamped gravity -20, got %v", info["gravity"])
	}

	conn.WriteJSON(ClientMessage{Type: TypeSetGravity})
	errMsg := readUntil(t, conn, TypeError)
	if !strings.Contains(errMsg["message"].(string), "value") {
		t.Errorf("unexpected error: %v", errMsg["message"])
	}
}

func TestPingAndUnknown(t *testing.T) {
	h := newHarness(t, "")
	conn := h.dial(t)

	conn.WriteJSON(ClientMessage{Type: TypePing, ClientTime: 12.5})
	pong := readUntil(t, conn, TypePong)
	if pong["clientTime"].(float64) != 12.5 {
		t.Errorf("expected clientTime echoed, got %v", pong["clientTime"])
	}

	conn.WriteJSON(map[string]string{"type": "explode"})
	errMsg := readUntil(t, conn, TypeError)
	if !strings.Contains(errMsg["message"].(string), "unknown command") {
		t.Errorf("unexpected error: %v", errMsg["message"])
	}
}

func TestSoundBroadcast(t *testing.T) {
	h := newHarness(t, "")
	conn := h.dial(t)
	readUntil(t, conn, TypeScene)

	h.server.Rewind()
	h.server.SetVolume(0.42)
	h.server.Play()

	msg := readUntil(t, conn, TypeSound)
	if msg["volume"].(float64) != 0.42 {
		t.Errorf("expected volume 0.42, got %v", msg["volume"])
	}
	if msg["restart"] != true {
		t.Error("expected restart after rewind")
	}
	if msg["asset"] != "/sounds/hit.mp3" {
		t.Errorf("unexpected asset %v", msg["asset"])
	}
}

func TestResize(t *testing.T) {
	h := newHarness(t, "")
	conn := h.dial(t)
	readUntil(t, conn, TypeScene)

	conn.WriteJSON(ClientMessage{Type: TypeResize, Width: 1000, Height: 500, Ratio: 3})
	conn.WriteJSON(ClientMessage{Type: TypeCreateBox})
	readUntil(t, conn, TypeInfo)

	h.frame()
	sc := readUntil(t, conn, TypeScene)
	cam := sc["scene"].(map[string]interface{})["camera"].(map[string]interface{})
	if cam["aspect"].(float64) != 2 {
		t.Errorf("expected aspect 2, got %v", cam["aspect"])
	}
}

func TestHandleUnknown(t *testing.T) {
	s := sandbox.New(config.DefaultConfig(), sandbox.NewManualClock())
	srv := NewServer(s, "")
	if err := srv.Handle(nil, ClientMessage{Type: "nope"}); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("expected ErrUnknownCommand, got %v", err)
	}
	if err := srv.Handle(nil, ClientMessage{Type: TypeResize}); !errors.Is(err, ErrBadCommand) {
		t.Errorf("expected ErrBadCommand, got %v", err)
	}
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>physbox</html>"), 0644)
	h := newHarness(t, dir)

	resp, err := h.http.Client().Get(h.http.URL + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "physbox") {
		t.Errorf("unexpected body %q", body)
	}
}
