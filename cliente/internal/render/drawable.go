package render

import (
	"fmt"
	"sync/atomic"

	"Luminar/cliente/internal/gpu"
	"Luminar/shared/util"
)

// PassCategory separa a geometria de uma região por tipo de passe.
type PassCategory int

const (
	PassSolid PassCategory = iota
	PassTranslucent
	passCategoryCount
)

func (c PassCategory) String() string {
	if c == PassTranslucent {
		return "translucent"
	}
	return "solid"
}

// RenderState é a etiqueta de estado GPU associada a uma geometria.
type RenderState struct {
	Pass  PassCategory
	Depth gpu.DepthTest
	Decal gpu.DecalOffset
	Fog   gpu.FogMode
}

// DefaultState retorna o estado padrão de uma categoria.
func DefaultState(cat PassCategory) RenderState {
	return RenderState{Pass: cat, Depth: gpu.DepthLessEqual, Fog: gpu.FogLinear}
}

// DrawableRegionState é o dono do buffer de vértices na GPU.
// Imutável depois de construído; Close libera a GPU exatamente uma vez.
type DrawableRegionState struct {
	dev         gpu.Device
	thread      *gpu.RenderThread
	state       RenderState
	format      gpu.VertexFormat
	vertexCount int32
	buffer      uint32
	closed      atomic.Bool
}

// RenderState retorna a etiqueta de estado.
func (s *DrawableRegionState) RenderState() RenderState { return s.state }

// VertexCount retorna o número de vértices do buffer.
func (s *DrawableRegionState) VertexCount() int32 { return s.vertexCount }

// Buffer retorna o id do buffer na GPU (0 depois de fechado).
func (s *DrawableRegionState) Buffer() uint32 {
	if s.closed.Load() {
		return 0
	}
	return s.buffer
}

// Closed informa se o estado já foi fechado.
func (s *DrawableRegionState) Closed() bool { return s.closed.Load() }

// Close libera o buffer. Chamadas repetidas não fazem nada.
func (s *DrawableRegionState) Close() {
	s.thread.Assert("DrawableRegionState.Close")
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.dev.DeleteBuffer(s.buffer)
}

// DrawableRegion embrulha um DrawableRegionState com a origem da região e a
// contagem de retenção dupla: uma referência é da região dona, as demais são
// das draw lists em uso.
type DrawableRegion struct {
	state   atomic.Pointer[DrawableRegionState]
	origin  int64
	retains atomic.Int32
	empty   bool
}

// EmptyDrawable é o sentinela para geometria sem vértices. Ignora retenções.
var EmptyDrawable = &DrawableRegion{empty: true}

// Pack envia os vértices do TransferBuffer para a GPU e retorna um
// DrawableRegion com contagem 1, ou EmptyDrawable se não houver vértices.
func Pack(dev gpu.Device, thread *gpu.RenderThread, state RenderState, format gpu.VertexFormat, tb *TransferBuffer, origin util.BlockPos) *DrawableRegion {
	if tb == nil || format.Stride <= 0 || tb.Len() < format.Stride {
		return EmptyDrawable
	}
	thread.Assert("render.Pack")

	data := tb.Bytes()
	count := len(data) / format.Stride
	data = data[:count*format.Stride]

	buffer := dev.GenBuffer()
	dev.BindBuffer(gpu.ArrayBuffer, buffer)
	dev.BufferData(gpu.ArrayBuffer, len(data), data, gpu.StaticDraw)
	dev.BindBuffer(gpu.ArrayBuffer, 0)

	d := &DrawableRegion{origin: origin.Pack()}
	d.state.Store(&DrawableRegionState{
		dev:         dev,
		thread:      thread,
		state:       state,
		format:      format,
		vertexCount: int32(count),
		buffer:      buffer,
	})
	d.retains.Store(1)
	return d
}

// IsEmpty informa se é o sentinela vazio.
func (d *DrawableRegion) IsEmpty() bool { return d.empty }

// State retorna o estado ou nil depois da liberação.
func (d *DrawableRegion) State() *DrawableRegionState { return d.state.Load() }

// PackedOrigin retorna a origem empacotada.
func (d *DrawableRegion) PackedOrigin() int64 { return d.origin }

// Origin retorna a origem da região no mundo.
func (d *DrawableRegion) Origin() util.BlockPos { return util.UnpackBlockPos(d.origin) }

// Retains retorna a contagem atual.
func (d *DrawableRegion) Retains() int32 { return d.retains.Load() }

// IsReleased informa se a contagem já chegou a zero.
func (d *DrawableRegion) IsReleased() bool {
	return !d.empty && d.retains.Load() <= 0
}

// RetainFromDrawList adiciona a referência de uma draw list.
// Reter uma região já liberada é erro de programação.
func (d *DrawableRegion) RetainFromDrawList() {
	if d.empty {
		return
	}
	for {
		n := d.retains.Load()
		if n < 1 {
			panic(fmt.Sprintf("render: retained a released region %s", d.Origin()))
		}
		if d.retains.CompareAndSwap(n, n+1) {
			return
		}
	}
}

// ReleaseFromRegion solta a referência da região dona.
func (d *DrawableRegion) ReleaseFromRegion() {
	d.release()
}

// ReleaseFromDrawList solta a referência de uma draw list.
func (d *DrawableRegion) ReleaseFromDrawList() {
	d.release()
}

func (d *DrawableRegion) release() {
	if d.empty {
		return
	}
	n := d.retains.Add(-1)
	if n < 0 {
		panic(fmt.Sprintf("render: double release of region %s", d.Origin()))
	}
	if n == 0 {
		if s := d.state.Swap(nil); s != nil {
			s.Close()
		}
	}
}
