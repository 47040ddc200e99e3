package livefeed

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"beauty-api/internal/domain"
)

const (
	sendBuffer   = 16
	writeTimeout = 5 * time.Second
)

// Message es el JSON que se envía a los suscriptores del ranking en vivo.
type Message struct {
	Type  string              `json:"t"`
	Entry *domain.RankedEntry `json:"entry,omitempty"`
}

// Client representa una conexión abierta.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
}

// WritePump escribe lo que llega por Send hasta que se cierre el canal o el contexto.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.Send:
			if !ok {
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.Conn.Write(wctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// Hub reparte las nuevas entradas del ranking a todas las conexiones.
type Hub struct {
	logger *zap.Logger

	mu      sync.RWMutex
	clients map[string]*Client
	origins []string
}

func NewHub(logger *zap.Logger, allowedOrigins ...string) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:  logger,
		clients: make(map[string]*Client),
		origins: allowedOrigins,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
}

// Unregister quita el cliente y cierra su canal.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		close(c.Send)
		delete(h.clients, id)
	}
}

// Close suelta todas las conexiones; se usa al apagar el servidor.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		close(c.Send)
		delete(h.clients, id)
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// PublishEntry no bloquea: si el buffer de un cliente está lleno se descarta el mensaje.
func (h *Hub) PublishEntry(entry domain.RankedEntry) {
	h.broadcast(Message{Type: "entry", Entry: &entry})
}

func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("livefeed marshal failed", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, c := range h.clients {
		select {
		case c.Send <- data:
		default:
			h.logger.Debug("livefeed client lagging, message dropped", zap.String("client_id", id))
		}
	}
}

// ServeHTTP acepta la conexión y la mantiene hasta que el cliente se desconecta.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.origins})
	if err != nil {
		h.logger.Warn("livefeed accept failed", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	client := &Client{ID: uuid.NewString(), Conn: conn, Send: make(chan []byte, sendBuffer)}
	h.Register(client)
	defer h.Unregister(client.ID)

	// Los clientes sólo escuchan; CloseRead cancela ctx cuando cierran.
	ctx := conn.CloseRead(r.Context())

	hello, _ := json.Marshal(Message{Type: "hello"})
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	err = conn.Write(wctx, websocket.MessageText, hello)
	cancel()
	if err != nil {
		return
	}

	client.WritePump(ctx)
	conn.Close(websocket.StatusNormalClosure, "")
}
