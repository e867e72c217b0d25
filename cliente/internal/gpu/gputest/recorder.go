// Package gputest fornece um gpu.Device em memória que grava as chamadas.
package gputest

import (
	"fmt"
	"strings"
	"sync"

	"Luminar/cliente/internal/gpu"

	"github.com/go-gl/mathgl/mgl32"
)

// Recorder implementa gpu.Device gravando cada chamada como texto
// ("BindFramebuffer(3)") e simulando o conteúdo dos buffers.
type Recorder struct {
	mu       sync.Mutex
	calls    []string
	nextID   uint32
	buffers  map[uint32][]byte
	bound    map[gpu.BufferTarget]uint32
	textures map[uint32]bool
	deleted  map[uint32]int
	mapped   map[gpu.BufferTarget]bool

	// Incomplete faz FramebufferComplete retornar false.
	Incomplete bool
}

// NewRecorder cria um gravador vazio.
func NewRecorder() *Recorder {
	return &Recorder{
		buffers:  make(map[uint32][]byte),
		bound:    make(map[gpu.BufferTarget]uint32),
		textures: make(map[uint32]bool),
		deleted:  make(map[uint32]int),
		mapped:   make(map[gpu.BufferTarget]bool),
	}
}

func (r *Recorder) record(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *Recorder) genID() uint32 {
	r.nextID++
	return r.nextID
}

// Calls retorna uma cópia das chamadas gravadas.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

// Reset descarta as chamadas gravadas, mantendo os objetos vivos.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = r.calls[:0]
}

// Count conta as chamadas que começam com prefix.
func (r *Recorder) Count(prefix string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// Buffer retorna uma cópia do conteúdo atual do buffer.
func (r *Recorder) Buffer(id uint32) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	data := r.buffers[id]
	out := make([]byte, len(data))
	copy(out, data)
	return out
}

// LiveBuffers retorna quantos buffers existem e não foram deletados.
func (r *Recorder) LiveBuffers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buffers)
}

// Deletions retorna quantas vezes o objeto id foi deletado.
func (r *Recorder) Deletions(id uint32) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deleted[id]
}

func (r *Recorder) GenBuffer() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.genID()
	r.buffers[id] = nil
	r.record("GenBuffer() = %d", id)
	return id
}

func (r *Recorder) DeleteBuffer(id uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.buffers, id)
	r.deleted[id]++
	r.record("DeleteBuffer(%d)", id)
}

func (r *Recorder) BindBuffer(target gpu.BufferTarget, id uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bound[target] = id
	r.record("BindBuffer(%d, %d)", target, id)
}

func (r *Recorder) BufferData(target gpu.BufferTarget, size int, data []byte, usage gpu.Usage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	buf := make([]byte, size)
	copy(buf, data)
	r.buffers[r.bound[target]] = buf
	r.record("BufferData(%d, %d)", target, size)
}

func (r *Recorder) BufferSubData(target gpu.BufferTarget, offset int, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copy(r.buffers[r.bound[target]][offset:], data)
	r.record("BufferSubData(%d, %d, %d)", target, offset, len(data))
}

func (r *Recorder) MapBufferRange(target gpu.BufferTarget, offset, length int, access gpu.MapAccess) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mapped[target] = true
	r.record("MapBufferRange(%d, %d, %d, %d)", target, offset, length, access)
	buf := r.buffers[r.bound[target]]
	return buf[offset : offset+length : offset+length]
}

func (r *Recorder) FlushMappedBufferRange(target gpu.BufferTarget, offset, length int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("FlushMappedBufferRange(%d, %d, %d)", target, offset, length)
}

func (r *Recorder) UnmapBuffer(target gpu.BufferTarget) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	ok := r.mapped[target]
	delete(r.mapped, target)
	r.record("UnmapBuffer(%d)", target)
	return ok
}

func (r *Recorder) CopyBufferSubData(read, write gpu.BufferTarget, readOffset, writeOffset, size int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	src := r.buffers[r.bound[read]]
	dst := r.buffers[r.bound[write]]
	copy(dst[writeOffset:writeOffset+size], src[readOffset:readOffset+size])
	r.record("CopyBufferSubData(%d, %d, %d, %d, %d)", read, write, readOffset, writeOffset, size)
}

func (r *Recorder) GenTexture() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.genID()
	r.textures[id] = true
	r.record("GenTexture() = %d", id)
	return id
}

func (r *Recorder) DeleteTexture(id uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.textures, id)
	r.deleted[id]++
	r.record("DeleteTexture(%d)", id)
}

func (r *Recorder) ActiveTexture(unit int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("ActiveTexture(%d)", unit)
}

func (r *Recorder) BindTexture(target gpu.TextureTarget, id uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("BindTexture(%d, %d)", target, id)
}

func (r *Recorder) TexBuffer(format gpu.Format, buffer uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("TexBuffer(%d, %d)", format, buffer)
}

func (r *Recorder) TexStorage(target gpu.TextureTarget, levels int32, format gpu.Format, width, height, layers int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("TexStorage(%d, %d, %d, %d, %d, %d)", target, levels, format, width, height, layers)
}

func (r *Recorder) GenFramebuffer() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.genID()
	r.record("GenFramebuffer() = %d", id)
	return id
}

func (r *Recorder) DeleteFramebuffer(id uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted[id]++
	r.record("DeleteFramebuffer(%d)", id)
}

func (r *Recorder) BindFramebuffer(id uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("BindFramebuffer(%d)", id)
}

func (r *Recorder) FramebufferTexture(attachment int, texture uint32, level, layer int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("FramebufferTexture(%d, %d, %d, %d)", attachment, texture, level, layer)
}

func (r *Recorder) FramebufferDepthTexture(texture uint32, level, layer int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("FramebufferDepthTexture(%d, %d, %d)", texture, level, layer)
}

func (r *Recorder) DrawBuffers(count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("DrawBuffers(%d)", count)
}

func (r *Recorder) FramebufferComplete() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("FramebufferComplete()")
	return !r.Incomplete
}

func (r *Recorder) Viewport(x, y, width, height int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("Viewport(%d, %d, %d, %d)", x, y, width, height)
}

func (r *Recorder) ClearColor(cr, cg, cb, ca float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("ClearColor(%g, %g, %g, %g)", cr, cg, cb, ca)
}

func (r *Recorder) ClearDepth(depth float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("ClearDepth(%g)", depth)
}

func (r *Recorder) ClearBufferColor(drawBuffer int, rgba [4]float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("ClearBufferColor(%d, %g, %g, %g, %g)", drawBuffer, rgba[0], rgba[1], rgba[2], rgba[3])
}

func (r *Recorder) Clear(mask gpu.ClearMask) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("Clear(%d)", mask)
}

func (r *Recorder) UseProgram(id uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("UseProgram(%d)", id)
}

// UniformLocation devolve uma localização estável derivada do nome.
func (r *Recorder) UniformLocation(program uint32, name string) int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var h int32
	for _, c := range name {
		h = h*31 + c
	}
	if h < 0 {
		h = -h
	}
	return h%1000 + 1
}

func (r *Recorder) Uniform1i(location int32, v int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("Uniform1i(%d, %d)", location, v)
}

func (r *Recorder) Uniform2f(location int32, x, y float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("Uniform2f(%d, %g, %g)", location, x, y)
}

func (r *Recorder) Uniform3f(location int32, x, y, z float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("Uniform3f(%d, %g, %g, %g)", location, x, y, z)
}

func (r *Recorder) UniformMatrix4(location int32, m mgl32.Mat4) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("UniformMatrix4(%d)", location)
}

func (r *Recorder) Enable(c gpu.Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("Enable(%d)", c)
}

func (r *Recorder) Disable(c gpu.Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("Disable(%d)", c)
}

func (r *Recorder) DepthFunc(f gpu.DepthFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("DepthFunc(%d)", f)
}

func (r *Recorder) PolygonOffset(factor, units float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("PolygonOffset(%g, %g)", factor, units)
}

func (r *Recorder) BindVertexBuffer(id uint32, format gpu.VertexFormat) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("BindVertexBuffer(%d, %d)", id, format.Stride)
}

func (r *Recorder) DrawArrays(mode gpu.Primitive, first, count int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("DrawArrays(%d, %d, %d)", mode, first, count)
}

var _ gpu.Device = (*Recorder)(nil)
