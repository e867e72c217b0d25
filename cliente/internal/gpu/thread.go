package gpu

import (
	"bytes"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
)

// RenderThread guarda a identidade da goroutine dona do contexto gráfico.
// A goroutine que chama Claim deve ter feito runtime.LockOSThread antes,
// pois o contexto OpenGL pertence à thread do SO.
type RenderThread struct {
	owner   atomic.Uint64
	enabled atomic.Bool
}

// NewRenderThread cria um guarda com a verificação habilitada.
func NewRenderThread() *RenderThread {
	t := &RenderThread{}
	t.enabled.Store(true)
	return t
}

// Claim marca a goroutine atual como thread de renderização.
func (t *RenderThread) Claim() {
	t.owner.Store(goroutineID())
}

// SetEnabled liga ou desliga a verificação (custa um runtime.Stack por chamada).
func (t *RenderThread) SetEnabled(on bool) {
	t.enabled.Store(on)
}

// IsCurrent informa se a goroutine atual é a thread de renderização.
func (t *RenderThread) IsCurrent() bool {
	owner := t.owner.Load()
	return owner != 0 && owner == goroutineID()
}

// Assert entra em pânico se op for chamada fora da thread de renderização.
// Nil ou desabilitado não verifica nada.
func (t *RenderThread) Assert(op string) {
	if t == nil || !t.enabled.Load() {
		return
	}
	if !t.IsCurrent() {
		panic(fmt.Sprintf("gpu: %s chamado fora da thread de renderização", op))
	}
}

var goroutinePrefix = []byte("goroutine ")

func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := bytes.TrimPrefix(buf[:n], goroutinePrefix)
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}
	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
