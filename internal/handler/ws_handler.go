package handler

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/lms-admin-mock/internal/access"
	"github.com/stemsi/lms-admin-mock/internal/middleware"
	"github.com/stemsi/lms-admin-mock/internal/response"
	"github.com/stemsi/lms-admin-mock/internal/service"
	ws "github.com/stemsi/lms-admin-mock/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams collection change events.
type WSHandler struct {
	hub      *service.EventHub
	gate     *access.Gate
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(hub *service.EventHub, gate *access.Gate, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		hub:      hub,
		gate:     gate,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// collectionFilter is shared by the read and write loops of one connection.
type collectionFilter struct {
	mu    sync.RWMutex
	names map[string]struct{}
}

func (f *collectionFilter) set(names []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(names) == 0 {
		f.names = nil
		return
	}
	f.names = make(map[string]struct{}, len(names))
	for _, n := range names {
		f.names[n] = struct{}{}
	}
}

// allows matches either the full storage key or the collection name after
// the namespace prefix.
func (f *collectionFilter) allows(key string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.names == nil {
		return true
	}
	if _, ok := f.names[key]; ok {
		return true
	}
	if i := strings.LastIndexByte(key, ':'); i >= 0 {
		_, ok := f.names[key[i+1:]]
		return ok
	}
	return false
}

// ChangeFeed godoc
// WS /ws/v1/events?token=...
// Pushes a "change" event after every write to any collection. Clients can
// narrow the feed with {"action":"subscribe","collections":[...]}.
func (h *WSHandler) ChangeFeed(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("user_id", claims.UserID).
		Str("role", string(claims.Role)).
		Logger()
	wsLog.Info().Msg("Change feed connected")

	events, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()

	filter := &collectionFilter{}
	replies := make(chan interface{}, 4)
	stop := make(chan struct{})
	readerDone := make(chan struct{})
	defer close(stop)

	go h.readLoop(conn, wsLog, filter, replies, stop, readerDone)

	if err := ws.WriteTyped(conn, ws.HelloResponse{
		Event:      ws.EventHello,
		Role:       claims.Role,
		Manageable: h.gate.Manageable(claims.Role),
	}); err != nil {
		return
	}

	ticker := time.NewTicker(ws.PingPeriod)
	defer ticker.Stop()

	for {
		var err error
		select {
		case <-readerDone:
			wsLog.Debug().Msg("Change feed closed")
			return

		case ev, ok := <-events:
			if !ok {
				_ = ws.WriteError(conn, "change feed closed by server")
				return
			}
			if !filter.allows(ev.Collection) {
				continue
			}
			err = ws.WriteTyped(conn, ws.ChangeResponse{Event: ws.EventChange, Change: ev})

		case msg := <-replies:
			err = ws.WriteTyped(conn, msg)

		case <-ticker.C:
			err = ws.WritePing(conn)
		}

		if err != nil {
			wsLog.Debug().Err(err).Msg("Write failed, closing feed")
			return
		}
	}
}

// readLoop handles client actions. gorilla connections allow one concurrent
// writer, so replies go back to the write loop through replies.
func (h *WSHandler) readLoop(conn *websocket.Conn, wsLog zerolog.Logger, filter *collectionFilter, replies chan<- interface{}, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ws.KeepAlive(conn)

	reply := func(v interface{}) {
		select {
		case replies <- v:
		case <-stop:
		}
	}

	for {
		var req ws.Request
		if err := ws.ReadJSON(conn, &req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			}
			return
		}

		switch req.Action {
		case ws.ActionPing:
			reply(ws.PongResponse{Event: ws.EventPong})
		case ws.ActionSubscribe:
			filter.set(req.Collections)
			collections := req.Collections
			if collections == nil {
				collections = []string{}
			}
			reply(ws.SubscribedResponse{Event: ws.EventSubscribed, Collections: collections})
		default:
			wsLog.Warn().Str("action", string(req.Action)).Msg("Unknown action")
			reply(ws.ErrorResponse{Event: ws.EventError, Error: "unknown action: " + string(req.Action)})
		}
	}
}
