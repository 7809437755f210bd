package httpserver

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/openverdict/tribunal/internal/events"
	"github.com/openverdict/tribunal/internal/ledger"
	"go.uber.org/zap"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 54 * time.Second
)

// EventFeed streams ledger events to websocket clients. Each connection gets
// its own bus subscription; a client that cannot keep up is disconnected
// rather than allowed to stall the bus.
type EventFeed struct {
	bus      *events.Bus
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewEventFeed creates a websocket event feed over the bus.
func NewEventFeed(bus *events.Bus, logger *zap.Logger) *EventFeed {
	return &EventFeed{
		bus: bus,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The feed carries public market history only.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Handle upgrades the connection and streams events until the client leaves.
func (f *EventFeed) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn("websocket-upgrade-failed", zap.Error(err))
		return
	}

	ch, unsubscribe := f.bus.Subscribe()

	f.logger.Info("event-feed-client-connected",
		zap.String("remote", conn.RemoteAddr().String()))

	go f.readLoop(conn, unsubscribe)
	f.writeLoop(conn, ch)
}

// readLoop drains client frames so pongs are processed, and tears the
// subscription down when the client goes away.
func (f *EventFeed) readLoop(conn *websocket.Conn, unsubscribe func()) {
	defer unsubscribe()
	defer conn.Close()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (f *EventFeed) writeLoop(conn *websocket.Conn, ch <-chan ledger.Event) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	defer conn.Close()

	for {
		select {
		case event, ok := <-ch:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
					time.Now().Add(wsWriteWait))
				return
			}

			payload, err := json.Marshal(event)
			if err != nil {
				f.logger.Error("event-marshal-failed", zap.Error(err))
				continue
			}

			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				f.logger.Debug("event-feed-client-gone", zap.Error(err))
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
