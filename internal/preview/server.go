// Package preview serves the rendered document to a browser and pushes every
// new render over a websocket.
package preview

import (
	"context"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 8
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 65536,
}

type Options struct {
	Title  string
	CSS    string
	Logger *slog.Logger
}

// Server fans the latest sanitized HTML out to connected browsers. Clients
// that cannot keep up are disconnected rather than slowing down Publish.
type Server struct {
	title  string
	css    string
	logger *slog.Logger

	mu      sync.Mutex
	latest  string
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan string
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

func New(opts Options) *Server {
	if opts.Title == "" {
		opts.Title = "mdw preview"
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		title:   opts.Title,
		css:     opts.CSS,
		logger:  opts.Logger,
		clients: make(map[*client]struct{}),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// Publish replaces the current page content and pushes it to every client.
func (s *Server) Publish(html string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest = html
	for c := range s.clients {
		select {
		case c.send <- html:
		default:
			s.logger.Debug("dropping slow preview client", "remote", c.conn.RemoteAddr().String())
			delete(s.clients, c)
			c.close()
		}
	}
}

func (s *Server) Latest() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("preview server listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.closeClients()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		delete(s.clients, c)
		c.close()
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := pageTemplate.Execute(w, pageData{
		Title: s.title,
		CSS:   template.CSS(s.css),
		Body:  template.HTML(s.Latest()),
	})
	if err != nil {
		s.logger.Warn("failed to write preview page", "error", err)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan string, sendBuffer)}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	c.send <- s.latest
	s.mu.Unlock()
	s.logger.Debug("preview client connected", "remote", conn.RemoteAddr().String())

	// Drain incoming frames so close and ping control messages are handled.
	go func() {
		defer s.remove(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	s.writeLoop(c)
}

func (s *Server) writeLoop(c *client) {
	defer c.conn.Close()
	for html := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, []byte(html)); err != nil {
			s.remove(c)
			return
		}
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (s *Server) remove(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		c.close()
	}
}
