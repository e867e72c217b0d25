package gpuimage

import (
	"encoding/binary"
	"fmt"
	"sync"

	"Luminar/cliente/internal/gpu"
)

// FreeSlot marca um slot livre no LookupImage.
const FreeSlot int32 = -1

// LookupImage é um array de int32 com capacidade fixa e slots reciclados.
// Operações de slot são serializadas por um mutex; qualquer mudança marca a
// imagem inteira para reenvio no próximo Upload.
type LookupImage struct {
	dev    gpu.Device
	thread *gpu.RenderThread

	mu     sync.Mutex
	values []int32
	cursor int
	used   int
	dirty  bool

	scratch []byte
	buffer  uint32
	texture uint32
}

// NewLookupImage cria uma imagem com todos os slots livres.
func NewLookupImage(dev gpu.Device, thread *gpu.RenderThread, capacity int) *LookupImage {
	if capacity <= 0 {
		panic(fmt.Sprintf("gpuimage: capacidade inválida %d", capacity))
	}
	img := &LookupImage{
		dev:     dev,
		thread:  thread,
		values:  make([]int32, capacity),
		scratch: make([]byte, capacity*4),
		dirty:   true,
	}
	for i := range img.values {
		img.values[i] = FreeSlot
	}
	return img
}

// CreateIndexForValue ocupa o próximo slot livre a partir do cursor
// circular. Panic se a imagem estiver cheia.
func (img *LookupImage) CreateIndexForValue(v int32) int {
	if v == FreeSlot {
		panic("gpuimage: valor -1 é reservado para slots livres")
	}
	img.mu.Lock()
	defer img.mu.Unlock()

	if img.used == len(img.values) {
		panic(fmt.Sprintf("gpuimage: lookup image cheia (%d slots)", len(img.values)))
	}
	for {
		i := img.cursor
		img.cursor = (img.cursor + 1) % len(img.values)
		if img.values[i] == FreeSlot {
			img.values[i] = v
			img.used++
			img.dirty = true
			return i
		}
	}
}

// ReleaseIndex libera o slot i.
func (img *LookupImage) ReleaseIndex(i int) {
	img.mu.Lock()
	defer img.mu.Unlock()

	img.mustBeLive(i)
	img.values[i] = FreeSlot
	img.used--
	img.dirty = true
}

// ChangeValueForIndex sobrescreve o valor de um slot ocupado.
func (img *LookupImage) ChangeValueForIndex(i int, v int32) {
	if v == FreeSlot {
		panic("gpuimage: valor -1 é reservado para slots livres")
	}
	img.mu.Lock()
	defer img.mu.Unlock()

	img.mustBeLive(i)
	if img.values[i] != v {
		img.values[i] = v
		img.dirty = true
	}
}

func (img *LookupImage) mustBeLive(i int) {
	if i < 0 || i >= len(img.values) {
		panic(fmt.Sprintf("gpuimage: slot %d fora da capacidade %d", i, len(img.values)))
	}
	if img.values[i] == FreeSlot {
		panic(fmt.Sprintf("gpuimage: slot %d não está ocupado", i))
	}
}

// Value retorna o valor do slot i, ou false se ele estiver livre.
func (img *LookupImage) Value(i int) (int32, bool) {
	img.mu.Lock()
	defer img.mu.Unlock()
	if i < 0 || i >= len(img.values) || img.values[i] == FreeSlot {
		return FreeSlot, false
	}
	return img.values[i], true
}

// Used retorna quantos slots estão ocupados.
func (img *LookupImage) Used() int {
	img.mu.Lock()
	defer img.mu.Unlock()
	return img.used
}

// Capacity retorna o número fixo de slots.
func (img *LookupImage) Capacity() int {
	return len(img.values)
}

// TextureID retorna a buffer texture, ou 0 antes do primeiro upload.
func (img *LookupImage) TextureID() uint32 {
	return img.texture
}

// Upload reenvia a imagem inteira se algo mudou. Retorna true quando o
// buffer foi criado nesta chamada.
func (img *LookupImage) Upload() bool {
	img.thread.Assert("LookupImage.Upload")

	img.mu.Lock()
	if !img.dirty {
		img.mu.Unlock()
		return false
	}
	for i, v := range img.values {
		binary.LittleEndian.PutUint32(img.scratch[i*4:], uint32(v))
	}
	img.dirty = false
	img.mu.Unlock()

	created := false
	if img.buffer == 0 {
		img.buffer = img.dev.GenBuffer()
		img.dev.BindBuffer(gpu.TextureBuffer, img.buffer)
		img.dev.BufferData(gpu.TextureBuffer, len(img.scratch), img.scratch, gpu.DynamicDraw)
		img.texture = img.dev.GenTexture()
		img.dev.BindTexture(gpu.TextureBufferTarget, img.texture)
		img.dev.TexBuffer(gpu.FormatR32I, img.buffer)
		img.dev.BindTexture(gpu.TextureBufferTarget, 0)
		created = true
	} else {
		img.dev.BindBuffer(gpu.TextureBuffer, img.buffer)
		img.dev.BufferSubData(gpu.TextureBuffer, 0, img.scratch)
	}
	img.dev.BindBuffer(gpu.TextureBuffer, 0)
	return created
}

// Clear libera todos os slots e os objetos GPU.
func (img *LookupImage) Clear() {
	img.thread.Assert("LookupImage.Clear")

	img.mu.Lock()
	for i := range img.values {
		img.values[i] = FreeSlot
	}
	img.cursor, img.used = 0, 0
	img.dirty = true
	img.mu.Unlock()

	if img.buffer != 0 {
		img.dev.DeleteBuffer(img.buffer)
	}
	if img.texture != 0 {
		img.dev.DeleteTexture(img.texture)
	}
	img.buffer, img.texture = 0, 0
}
