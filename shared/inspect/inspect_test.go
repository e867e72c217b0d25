package inspect

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestFrameStatsRoundTrip(t *testing.T) {
	in := FrameStats{
		Frame:            1234567,
		FrameMicros:      16667,
		Regions:          420,
		SolidDraws:       380,
		TranslucentDraws: 12,
		Passes:           5,
		TrackedEntities:  33,
		LightDescriptors: 4,
		PipelineReloads:  2,
	}
	var out FrameStats
	require.NoError(t, out.Unmarshal(in.Marshal()))
	assert.Equal(t, in, out)
}

func TestUnmarshalSkipsUnknownFields(t *testing.T) {
	b := (&ToggleCommand{Name: "bloom", Enabled: true}).Marshal()
	b = protowire.AppendTag(b, 99, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte("futuro"))

	var cmd ToggleCommand
	require.NoError(t, cmd.Unmarshal(b))
	assert.Equal(t, ToggleCommand{Name: "bloom", Enabled: true}, cmd)

	assert.Error(t, cmd.Unmarshal([]byte{0x0a, 0x05, 'a'}), "string truncada")
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestHubBroadcastsStats(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.True(t, hub.Publish(FrameStats{Frame: 7, Regions: 3}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, kind)
	var got FrameStats
	require.NoError(t, got.Unmarshal(data))
	assert.Equal(t, FrameStats{Frame: 7, Regions: 3}, got)
}

func TestHubReceivesCommands(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	commands := make(chan ToggleCommand, 1)
	hub.OnCommand = func(c ToggleCommand) { commands <- c }
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, (&ToggleCommand{Name: "shadows"}).Marshal()))

	select {
	case c := <-commands:
		assert.Equal(t, ToggleCommand{Name: "shadows", Enabled: false}, c)
	case <-time.After(2 * time.Second):
		t.Fatal("comando não recebido")
	}

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestPublishAfterCloseIsDropped(t *testing.T) {
	hub := NewHub()
	require.NoError(t, hub.Close())
	require.NoError(t, hub.Close())
	assert.False(t, hub.Publish(FrameStats{Frame: 1}))
}
