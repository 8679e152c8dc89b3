package telemock

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/maxbolgarin/abstract"
	"github.com/maxbolgarin/contem"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/servex/v2"
	"github.com/panjf2000/ants/v2"
)

// webMonitor is a small browser-facing server for watching a test session
// live: it serves history and status snapshots over REST and pushes every
// new history entry to connected websockets.
type webMonitor struct {
	srv *servex.Server
	s   *Server
	log Logger

	upgrader websocket.Upgrader
	conns    *abstract.SafeMap[string, *websocket.Conn]

	// pool has exactly one worker so broadcasts stay ordered and a single
	// goroutine owns all websocket writes.
	pool *ants.Pool
}

func startWebMonitor(ctx contem.Context, s *Server) (*webMonitor, error) {
	pool, err := ants.NewPool(1, ants.WithPreAlloc(true))
	if err != nil {
		return nil, errm.Wrap(err, "create pool")
	}
	ctx.AddFunc(pool.Release)

	m := &webMonitor{
		s:     s,
		log:   s.log,
		conns: abstract.NewSafeMap[string, *websocket.Conn](),
		pool:  pool,
		upgrader: websocket.Upgrader{
			// The monitor is a local development tool, any page may connect.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	srv, err := servex.NewServer(
		servex.WithNoRequestLog(),
		servex.WithHealthEndpoint(),
		servex.WithLogger(s.log),
	)
	if err != nil {
		return nil, errm.Wrap(err, "create servex server")
	}
	m.srv = srv

	srv.GET("/api/history", m.handleHistory)
	srv.GET("/api/status", m.handleStatus)
	srv.GET("/ws", m.handleWS)

	if err := srv.StartHTTP(s.cfg.Web.Listen); err != nil {
		return nil, errm.Wrap(err, "start http")
	}
	ctx.Add(srv.Shutdown)

	s.history.observe(m.broadcast)

	s.log.Info("web monitor is listening", "listen", s.cfg.Web.Listen)
	return m, nil
}

func (m *webMonitor) handleHistory(w http.ResponseWriter, r *http.Request) {
	m.writeJSON(w, m.s.History())
}

func (m *webMonitor) handleStatus(w http.ResponseWriter, r *http.Request) {
	m.writeJSON(w, map[string]any{
		"bot":             m.s.BotUser(),
		"pending_updates": m.s.PendingUpdates(),
		"history_size":    m.s.history.size(),
	})
}

func (m *webMonitor) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	id := abstract.GetRandomString(12)
	m.conns.Set(id, conn)
	m.log.Debug("websocket client connected", "id", id)

	// Drain the read side until the client goes away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				m.dropConn(id, conn)
				return
			}
		}
	}()
}

func (m *webMonitor) broadcast(entry HistoryEntry) {
	err := m.pool.Submit(func() {
		m.conns.Range(func(id string, conn *websocket.Conn) bool {
			if err := conn.WriteJSON(entry); err != nil {
				m.dropConn(id, conn)
			}
			return true
		})
	})
	if err != nil {
		m.log.Warn("cannot submit broadcast", "error", err)
	}
}

func (m *webMonitor) dropConn(id string, conn *websocket.Conn) {
	m.conns.Delete(id)
	_ = conn.Close()
}

func (m *webMonitor) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		m.log.Warn("cannot write monitor response", "error", err)
	}
}
