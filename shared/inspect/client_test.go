package inspect

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientRoundTrip(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	commands := make(chan ToggleCommand, 1)
	hub.OnCommand = func(c ToggleCommand) { commands <- c }
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	client := NewClient("ws" + strings.TrimPrefix(srv.URL, "http") + "/ws")
	stats := make(chan FrameStats, 1)
	client.OnStats = func(s FrameStats) { stats <- s }
	require.NoError(t, client.Connect(1, 0))
	assert.True(t, client.IsConnected())
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.True(t, hub.Publish(FrameStats{Frame: 42, Passes: 4}))
	select {
	case s := <-stats:
		assert.Equal(t, FrameStats{Frame: 42, Passes: 4}, s)
	case <-time.After(2 * time.Second):
		t.Fatal("amostra não recebida")
	}

	require.NoError(t, client.SendToggle("bloom", true))
	select {
	case c := <-commands:
		assert.Equal(t, ToggleCommand{Name: "bloom", Enabled: true}, c)
	case <-time.After(2 * time.Second):
		t.Fatal("comando não recebido")
	}

	require.NoError(t, client.Close())
	select {
	case <-client.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("leitura não terminou")
	}
	assert.False(t, client.IsConnected())
	assert.Error(t, client.SendToggle("bloom", false))
}

func TestClientConnectFails(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	srv.Close()

	client := NewClient(url)
	assert.Error(t, client.Connect(2, time.Millisecond))
	assert.False(t, client.IsConnected())
}
