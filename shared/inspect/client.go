package inspect

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client é o lado do inspetor: recebe FrameStats e envia comandos de toggle.
type Client struct {
	conn      *websocket.Conn
	url       string
	connected bool
	mu        sync.RWMutex
	writeMu   sync.Mutex
	done      chan struct{}

	// OnStats é chamado na goroutine de leitura a cada amostra recebida.
	OnStats func(FrameStats)
	// OnClose é chamado uma vez quando a conexão cai.
	OnClose func(error)
}

// NewClient cria um cliente para url (ex.: ws://127.0.0.1:8090/ws).
func NewClient(url string) *Client {
	return &Client{url: url, done: make(chan struct{})}
}

// Connect tenta conectar até retries vezes, esperando wait entre tentativas.
func (c *Client) Connect(retries int, wait time.Duration) error {
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}

	var (
		conn *websocket.Conn
		err  error
	)
	for i := 0; i < max(retries, 1); i++ {
		conn, _, err = dialer.Dial(c.url, nil)
		if err == nil {
			break
		}
		log.Printf("[Inspect] Tentativa %d/%d em %s falhou: %v", i+1, retries, c.url, err)
		time.Sleep(wait)
	}
	if err != nil {
		return fmt.Errorf("falha ao conectar em %s: %w", c.url, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readLoop()
	return nil
}

// IsConnected informa se a conexão está ativa.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Done é fechado quando a conexão cai.
func (c *Client) Done() <-chan struct{} { return c.done }

// SendToggle pede ao cliente gráfico que ligue ou desligue um passe.
func (c *Client) SendToggle(name string, enabled bool) error {
	if !c.IsConnected() {
		return fmt.Errorf("inspetor não conectado")
	}
	cmd := ToggleCommand{Name: name, Enabled: enabled}

	c.writeMu.Lock()
	err := c.conn.WriteMessage(websocket.BinaryMessage, cmd.Marshal())
	c.writeMu.Unlock()
	if err != nil {
		log.Printf("[Inspect] Erro ao enviar comando: %v", err)
	}
	return err
}

// Close encerra a conexão; a goroutine de leitura termina em seguida.
func (c *Client) Close() error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (c *Client) readLoop() {
	var readErr error
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		c.conn.Close()
		close(c.done)
		if c.OnClose != nil {
			c.OnClose(readErr)
		}
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			readErr = err
			return
		}
		var stats FrameStats
		if err := stats.Unmarshal(message); err != nil {
			log.Printf("[Inspect] Amostra inválida: %v", err)
			continue
		}
		if c.OnStats != nil {
			c.OnStats(stats)
		}
	}
}
