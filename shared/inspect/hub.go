package inspect

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	broadcastBuffer = 64
	writeTimeout    = time.Second
)

// Hub gerencia as conexões WebSocket dos inspetores.
type Hub struct {
	clients    map[*websocket.Conn]*sync.Mutex
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mu         sync.Mutex

	upgrader websocket.Upgrader
	done     chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
	server   *http.Server

	// OnCommand recebe os comandos de toggle enviados pelos inspetores.
	// É chamado na goroutine de leitura da conexão.
	OnCommand func(ToggleCommand)
}

// NewHub cria o hub e inicia seu loop.
func NewHub() *Hub {
	h := &Hub{
		clients:    make(map[*websocket.Conn]*sync.Mutex),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	h.wg.Add(1)
	go h.run()
	return h
}

func (h *Hub) run() {
	defer h.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Hub] Recuperado de pânico fatal: %v", r)
		}
	}()

	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for c := range h.clients {
				c.Close()
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = &sync.Mutex{}
			h.mu.Unlock()
			log.Printf("[Hub] Inspetor registrado: %s", client.RemoteAddr())
		case client := <-h.unregister:
			h.mu.Lock()
			if lock, ok := h.clients[client]; ok {
				lock.Lock()
				delete(h.clients, client)
				client.Close()
				lock.Unlock()
				log.Printf("[Hub] Inspetor desregistrado: %s", client.RemoteAddr())
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.send(message)
		}
	}
}

func (h *Hub) send(message []byte) {
	type clientEntry struct {
		conn *websocket.Conn
		lock *sync.Mutex
	}
	h.mu.Lock()
	targets := make([]clientEntry, 0, len(h.clients))
	for c, l := range h.clients {
		targets = append(targets, clientEntry{c, l})
	}
	h.mu.Unlock()

	for _, target := range targets {
		target.lock.Lock()
		target.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		err := target.conn.WriteMessage(websocket.BinaryMessage, message)
		target.lock.Unlock()
		if err != nil {
			log.Printf("[Hub] Erro ao enviar para inspetor %s: %v", target.conn.RemoteAddr(), err)
			target.conn.Close()
			h.mu.Lock()
			delete(h.clients, target.conn)
			h.mu.Unlock()
		}
	}
}

// Clients retorna quantos inspetores estão conectados.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish envia as estatísticas a todos os inspetores. Nunca bloqueia o
// frame: se o buffer estiver cheio a amostra é descartada.
func (h *Hub) Publish(stats FrameStats) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.broadcast <- stats.Marshal():
		return true
	default:
		return false
	}
}

// Handler retorna o handler HTTP com o endpoint /ws.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.serveWs)
	return mux
}

func (h *Hub) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Hub] Erro no upgrade do WebSocket: %v", err)
		return
	}
	select {
	case h.register <- conn:
	case <-h.done:
		conn.Close()
		return
	}

	go func() {
		defer func() {
			select {
			case h.unregister <- conn:
			case <-h.done:
			}
		}()
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var cmd ToggleCommand
			if err := cmd.Unmarshal(message); err != nil {
				log.Printf("[Hub] Comando inválido: %v", err)
				continue
			}
			if h.OnCommand != nil {
				h.OnCommand(cmd)
			}
		}
	}()
}

// ListenAndServe serve o hub em addr até Close.
func (h *Hub) ListenAndServe(addr string) error {
	h.mu.Lock()
	h.server = &http.Server{Addr: addr, Handler: h.Handler(), ReadHeaderTimeout: 5 * time.Second}
	srv := h.server
	h.mu.Unlock()

	log.Printf("[Hub] Inspetor escutando em %s/ws", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close derruba o servidor e todas as conexões.
func (h *Hub) Close() error {
	var err error
	h.once.Do(func() {
		h.mu.Lock()
		srv := h.server
		h.mu.Unlock()
		if srv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			err = srv.Shutdown(ctx)
			cancel()
		}
		close(h.done)
		h.wg.Wait()
	})
	return err
}
