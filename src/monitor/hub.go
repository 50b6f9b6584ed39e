package monitor

import (
	"net/http"

	"trading-server/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub loop
// -----------------------------------------------------------------------------

// runHub owns the client set: registration, teardown and quote fan-out all
// happen on this goroutine, so the set needs no locking of its own.
func (s *MonitorServer) runHub() {
	for {
		select {
		case <-s.done:
			for client := range s.clients {
				s.dropClient(client)
			}
			return

		case client := <-s.register:
			s.stateMutex.Lock()
			s.clients[client] = struct{}{}
			s.stateMutex.Unlock()

			// Prime the new client with the current book.
			s.stateMutex.RLock()
			for _, q := range s.quotes {
				select {
				case client.send <- newWsQuote(q):
				default:
				}
			}
			s.stateMutex.RUnlock()

		case client := <-s.unregister:
			s.dropClient(client)

		case quote := <-s.broadcast:
			s.stateMutex.Lock()
			s.quotes[models.UnpackSymbol(quote.Symbol)] = quote
			s.stateMutex.Unlock()

			msg := newWsQuote(quote)
			for client := range s.clients {
				select {
				case client.send <- msg:
				default:
					// Client too slow; prune it rather than stall the hub.
					s.dropClient(client)
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------

func (s *MonitorServer) dropClient(client *Client) {
	s.stateMutex.Lock()
	defer s.stateMutex.Unlock()
	if _, ok := s.clients[client]; ok {
		delete(s.clients, client)
		close(client.send)
	}
}

// -----------------------------------------------------------------------------
// Broadcast — the IDataExchanger entry point used by the market data service.
// -----------------------------------------------------------------------------

// Broadcast queues a snapshot for fan-out. Non-blocking: if the hub is that
// far behind, the freshest data wins and this update is dropped.
func (s *MonitorServer) Broadcast(data models.MarketData) {
	select {
	case s.broadcast <- data:
	default:
		s.Logger.Warning("monitor broadcast queue full, dropping update for %s", models.UnpackSymbol(data.Symbol))
	}
}

// -----------------------------------------------------------------------------
// WebSocket upgrade
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *MonitorServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered so the hub loop never blocks on one client.
		send: make(chan wsQuote, 256),
	}

	s.register <- client

	go client.writePump()
	go client.readPump()
}
