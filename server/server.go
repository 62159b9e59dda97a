// Package server exposes the editor to host processes over HTTP: a small
// JSON API for the document and edit operations, plus a websocket feed that
// streams applied transactions to reconciler clients.
package server

import (
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"notectl/document"
	"notectl/editor"
	"notectl/state"
)

// Server wires one editor instance to HTTP and websocket clients.
//
// The editor itself is single-threaded: transactions apply synchronously on
// the calling goroutine. Gin serves each request on its own goroutine, so
// edMu serializes every editor touch, covering a whole handler so a
// transaction is always built against the snapshot it applies to.
type Server struct {
	ed   *editor.Editor
	edMu sync.Mutex

	log      zerolog.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

// New creates a server over an editor and subscribes to its changes.
func New(ed *editor.Editor) *Server {
	s := &Server{
		ed: ed,
		log: zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().Timestamp().Str("sub", "server").Logger(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]bool),
	}
	ed.OnChange(s.broadcast)
	return s
}

// Router builds the gin engine.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	api := r.Group("/api")
	api.GET("/document", s.getDocument)
	api.PUT("/document", s.putDocument)
	api.POST("/ops", s.postOps)
	api.GET("/history", s.getHistory)
	r.GET("/ws", s.serveWS)
	return r
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	s.log.Info().Str("addr", addr).Msg("listening")
	return s.Router().Run(addr)
}

func (s *Server) getDocument(c *gin.Context) {
	s.edMu.Lock()
	doc := s.ed.State().Doc
	s.edMu.Unlock()
	c.JSON(http.StatusOK, doc)
}

func (s *Server) putDocument(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	doc, err := document.Decode(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.edMu.Lock()
	s.ed.LoadDocument(doc)
	next := s.ed.State().Doc
	s.edMu.Unlock()
	c.JSON(http.StatusOK, next)
}

func (s *Server) getHistory(c *gin.Context) {
	s.edMu.Lock()
	undo, redo := s.ed.History().Depths()
	s.edMu.Unlock()
	c.JSON(http.StatusOK, gin.H{"undo": undo, "redo": redo})
}

func (s *Server) postOps(c *gin.Context) {
	var ops []opJSON
	if err := c.ShouldBindJSON(&ops); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.edMu.Lock()
	tr, err := buildTransaction(s.ed.State(), ops)
	if err != nil {
		s.edMu.Unlock()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !s.ed.Dispatch(tr) {
		s.edMu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"error": "dispatch ignored"})
		return
	}
	doc := s.ed.State().Doc
	s.edMu.Unlock()
	c.JSON(http.StatusOK, gin.H{"steps": len(tr.Steps), "doc": doc})
}

func (s *Server) serveWS(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	s.mu.Lock()
	s.conns[conn] = true
	s.mu.Unlock()
	// Reads only detect the close; clients push edits over /api/ops.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.mu.Lock()
				delete(s.conns, conn)
				s.mu.Unlock()
				conn.Close()
				return
			}
		}
	}()
}

type changeEvent struct {
	Origin string             `json:"origin"`
	Steps  int                `json:"steps"`
	Doc    *document.Document `json:"doc"`
}

func (s *Server) broadcast(_, next *state.EditorState, tr *state.Transaction) {
	event := changeEvent{Origin: string(tr.Meta.Origin), Steps: len(tr.Steps), Doc: next.Doc}
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		if err := conn.WriteJSON(event); err != nil {
			s.log.Debug().Err(err).Msg("dropping websocket client")
			delete(s.conns, conn)
			conn.Close()
		}
	}
}
