// Package ws serves the sandbox to browsers over a websocket.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/physbox/internal/sandbox"
	"github.com/san-kum/physbox/internal/scene"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadCommand     = errors.New("malformed command")
)

// orbitScale converts client drag pixels to radians.
const orbitScale = 0.005

// Server renders the session to every connected browser and plays impact
// sounds there. It is the session's Renderer and its audio.Player.
type Server struct {
	session   *sandbox.Session
	upgrader  websocket.Upgrader
	handlers  map[string]func(*SafeWriter, ClientMessage) error
	static    http.Handler
	clients   map[*SafeWriter]bool
	clientsMu sync.Mutex

	soundAsset string
	soundMu    sync.Mutex
	volume     float64
	rewound    bool

	// Only touched on the session goroutine.
	lastRevision int
}

func NewServer(s *sandbox.Session, staticDir string) *Server {
	srv := &Server{
		session: s,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		handlers:     make(map[string]func(*SafeWriter, ClientMessage) error),
		clients:      make(map[*SafeWriter]bool),
		soundAsset:   "/" + s.Config().Sound.Asset,
		volume:       1,
		lastRevision: -1,
	}
	if staticDir != "" {
		srv.static = http.FileServer(http.Dir(staticDir))
	}
	srv.registerHandlers()
	s.SetRenderer(srv)
	s.SetPlayer(srv)
	return srv
}

func (srv *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.handleWS)
	if srv.static != nil {
		mux.Handle("/", srv.static)
	}
	return mux
}

// ListenAndServe serves until ctx is done.
func (srv *Server) ListenAndServe(ctx context.Context, addr string) error {
	hs := &http.Server{Addr: addr, Handler: srv.Handler()}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[WS] listening on %s", addr)
		errCh <- hs.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.closeAll()
		return hs.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (srv *Server) registerHandlers() {
	submit := func(cmd sandbox.Command) func(*SafeWriter, ClientMessage) error {
		return func(*SafeWriter, ClientMessage) error {
			srv.session.Submit(func(s *sandbox.Session) {
				cmd(s)
				srv.broadcast(srv.info(s))
			})
			return nil
		}
	}

	srv.handlers[TypeCreateBox] = submit(func(s *sandbox.Session) { s.CreateRandomBox() })
	srv.handlers[TypeCreateSphere] = submit(func(s *sandbox.Session) { s.CreateRandomSphere() })
	srv.handlers[TypeReset] = submit(func(s *sandbox.Session) { s.ResetAll() })

	srv.handlers[TypeSetGravity] = func(w *SafeWriter, msg ClientMessage) error {
		if msg.Value == nil {
			return fmt.Errorf("%w: set_gravity needs a value", ErrBadCommand)
		}
		g := *msg.Value
		return submit(func(s *sandbox.Session) { s.SetGravity(g) })(w, msg)
	}

	srv.handlers[TypeResize] = func(w *SafeWriter, msg ClientMessage) error {
		if msg.Width <= 0 || msg.Height <= 0 {
			return fmt.Errorf("%w: resize needs a positive width and height", ErrBadCommand)
		}
		ratio := msg.Ratio
		if ratio <= 0 {
			ratio = 1
		}
		srv.session.Submit(func(s *sandbox.Session) { s.Resize(msg.Width, msg.Height, ratio) })
		return nil
	}

	srv.handlers[TypeOrbit] = func(w *SafeWriter, msg ClientMessage) error {
		srv.session.Submit(func(s *sandbox.Session) {
			if o := s.Orbit(); o != nil {
				o.Rotate(-msg.DX*orbitScale, -msg.DY*orbitScale)
			}
		})
		return nil
	}

	srv.handlers[TypePing] = func(w *SafeWriter, msg ClientMessage) error {
		return w.WriteJSON(PongMessage{
			Type:       TypePong,
			ClientTime: msg.ClientTime,
			ServerTime: float64(time.Now().UnixMilli()) / 1000,
		})
	}
}

// Handle dispatches one decoded client message.
func (srv *Server) Handle(w *SafeWriter, msg ClientMessage) error {
	h, ok := srv.handlers[msg.Type]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, msg.Type)
	}
	return h(w, msg)
}

func (srv *Server) handleWS(rw http.ResponseWriter, r *http.Request) {
	conn, err := srv.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		log.Printf("[WS] upgrade failed: %v", err)
		return
	}
	w := NewSafeWriter(conn)
	srv.addClient(w)
	log.Printf("[WS] client connected: %s", r.RemoteAddr)

	srv.session.Submit(func(s *sandbox.Session) {
		if err := w.WriteJSON(srv.sceneMessage(s)); err != nil {
			log.Printf("[WS] initial scene: %v", err)
		}
	})

	defer func() {
		srv.removeClient(w)
		w.Close()
		log.Printf("[WS] client disconnected: %s", r.RemoteAddr)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] read: %v", err)
			}
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			err = fmt.Errorf("%w: %v", ErrBadCommand, err)
			w.WriteJSON(ErrorMessage{Type: TypeError, Message: err.Error()})
			continue
		}
		if err := srv.Handle(w, msg); err != nil {
			w.WriteJSON(ErrorMessage{Type: TypeError, Message: err.Error()})
		}
	}
}

// Render sends the full scene after structural changes and transforms on
// every other frame.
func (srv *Server) Render(sc *scene.Scene, c *scene.Camera) {
	if srv.numClients() == 0 {
		return
	}
	if sc.Revision() != srv.lastRevision {
		srv.lastRevision = sc.Revision()
		srv.broadcast(srv.sceneMessage(srv.session))
		return
	}
	srv.broadcast(UpdateMessage{
		Type:    TypeUpdate,
		Frame:   srv.session.FrameIndex(),
		Objects: sc.Transforms(),
		Camera:  c.Position,
	})
}

func (srv *Server) Rewind() {
	srv.soundMu.Lock()
	srv.rewound = true
	srv.soundMu.Unlock()
}

func (srv *Server) SetVolume(v float64) {
	srv.soundMu.Lock()
	srv.volume = v
	srv.soundMu.Unlock()
}

func (srv *Server) Play() {
	srv.soundMu.Lock()
	msg := SoundMessage{Type: TypeSound, Asset: srv.soundAsset, Volume: srv.volume, Restart: srv.rewound}
	srv.rewound = false
	srv.soundMu.Unlock()
	srv.broadcast(msg)
}

func (srv *Server) sceneMessage(s *sandbox.Session) SceneMessage {
	return SceneMessage{
		Type:    TypeScene,
		Scene:   s.Scene.Snapshot(s.Camera),
		Gravity: s.Gravity(),
	}
}

func (srv *Server) info(s *sandbox.Session) InfoMessage {
	return InfoMessage{
		Type:    TypeInfo,
		Objects: s.Registry.Len(),
		Gravity: s.Gravity(),
		Sounds:  s.Sounds(),
	}
}

func (srv *Server) addClient(w *SafeWriter) {
	srv.clientsMu.Lock()
	srv.clients[w] = true
	srv.clientsMu.Unlock()
}

func (srv *Server) removeClient(w *SafeWriter) {
	srv.clientsMu.Lock()
	delete(srv.clients, w)
	srv.clientsMu.Unlock()
}

func (srv *Server) numClients() int {
	srv.clientsMu.Lock()
	defer srv.clientsMu.Unlock()
	return len(srv.clients)
}

func (srv *Server) broadcast(v interface{}) {
	srv.clientsMu.Lock()
	clients := make([]*SafeWriter, 0, len(srv.clients))
	for w := range srv.clients {
		clients = append(clients, w)
	}
	srv.clientsMu.Unlock()

	for _, w := range clients {
		if err := w.WriteJSON(v); err != nil {
			log.Printf("[WS] write failed, dropping client: %v", err)
			srv.removeClient(w)
			w.Close()
		}
	}
}

func (srv *Server) closeAll() {
	srv.clientsMu.Lock()
	defer srv.clientsMu.Unlock()
	for w := range srv.clients {
		w.Close()
		delete(srv.clients, w)
	}
}
