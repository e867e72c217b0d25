// Package gpu define a camada fina de binding com a API gráfica nativa.
// Todo o resto do cliente fala com a GPU exclusivamente através de Device,
// o que permite gravar as chamadas em testes (ver gputest.Recorder).
package gpu

import "github.com/go-gl/mathgl/mgl32"

// BufferTarget identifica o ponto de bind de um buffer.
type BufferTarget int

const (
	ArrayBuffer BufferTarget = iota
	TextureBuffer
	CopyReadBuffer
	CopyWriteBuffer
)

// Usage é a dica de uso passada ao alocar um buffer.
type Usage int

const (
	StaticDraw Usage = iota
	DynamicDraw
	StreamDraw
)

// MapAccess são as flags de mapeamento de um intervalo de buffer.
type MapAccess uint32

const (
	MapWrite MapAccess = 1 << iota
	MapInvalidateRange
	MapInvalidateBuffer
	MapFlushExplicit
	MapUnsynchronized
)

// TextureTarget identifica o tipo de textura no bind.
type TextureTarget int

const (
	Texture2D TextureTarget = iota
	Texture2DArray
	TextureBufferTarget
)

// Format é o formato interno de texels.
type Format int

const (
	FormatRGBA8 Format = iota
	FormatRGBA16F
	FormatR32I
	FormatRGBA32F
	FormatDepth32F
)

// ParseFormat converte o nome usado nas definições de pipeline.
func ParseFormat(name string) (Format, bool) {
	switch name {
	case "", "rgba8":
		return FormatRGBA8, true
	case "rgba16f":
		return FormatRGBA16F, true
	case "r32i":
		return FormatR32I, true
	case "rgba32f":
		return FormatRGBA32F, true
	case "depth32f", "depth":
		return FormatDepth32F, true
	}
	return FormatRGBA8, false
}

// IsDepth informa se o formato é de profundidade.
func (f Format) IsDepth() bool {
	return f == FormatDepth32F
}

// ClearMask seleciona quais buffers do framebuffer são limpos.
type ClearMask uint32

const (
	ClearColor ClearMask = 1 << iota
	ClearDepth
)

// Capability é um estado fixo habilitável (glEnable/glDisable).
type Capability int

const (
	CapDepthTest Capability = iota
	CapPolygonOffsetFill
	CapBlend
)

// DepthFunc é a função de comparação do teste de profundidade.
type DepthFunc int

const (
	DepthFuncAlways DepthFunc = iota
	DepthFuncEqual
	DepthFuncLessEqual
)

// Primitive é o tipo de primitiva desenhada.
type Primitive int

const (
	Triangles Primitive = iota
)

// AttribType é o tipo dos componentes de um atributo de vértice.
type AttribType int

const (
	AttribFloat AttribType = iota
	AttribUnsignedByte
	AttribUnsignedShort
)

// VertexAttribute descreve um atributo dentro de um vértice entrelaçado.
type VertexAttribute struct {
	Location   uint32
	Components int32
	Type       AttribType
	Normalized bool
	Offset     int
}

// VertexFormat descreve o layout dos vértices codificados externamente.
type VertexFormat struct {
	Stride     int
	Attributes []VertexAttribute
}

// Device é a camada fina sobre a API gráfica. Todas as chamadas devem partir
// da thread de renderização.
type Device interface {
	GenBuffer() uint32
	DeleteBuffer(id uint32)
	BindBuffer(target BufferTarget, id uint32)
	BufferData(target BufferTarget, size int, data []byte, usage Usage)
	BufferSubData(target BufferTarget, offset int, data []byte)
	MapBufferRange(target BufferTarget, offset, length int, access MapAccess) []byte
	FlushMappedBufferRange(target BufferTarget, offset, length int)
	UnmapBuffer(target BufferTarget) bool
	CopyBufferSubData(read, write BufferTarget, readOffset, writeOffset, size int)

	GenTexture() uint32
	DeleteTexture(id uint32)
	ActiveTexture(unit int)
	BindTexture(target TextureTarget, id uint32)
	TexBuffer(format Format, buffer uint32)
	TexStorage(target TextureTarget, levels int32, format Format, width, height, layers int32)

	GenFramebuffer() uint32
	DeleteFramebuffer(id uint32)
	BindFramebuffer(id uint32)
	FramebufferTexture(attachment int, texture uint32, level int32, layer int32)
	FramebufferDepthTexture(texture uint32, level int32, layer int32)
	DrawBuffers(count int)
	FramebufferComplete() bool

	Viewport(x, y, width, height int32)
	ClearColor(r, g, b, a float32)
	ClearDepth(depth float32)
	Clear(mask ClearMask)
	ClearBufferColor(drawBuffer int, rgba [4]float32)

	UseProgram(id uint32)
	UniformLocation(program uint32, name string) int32
	Uniform1i(location int32, v int32)
	Uniform2f(location int32, x, y float32)
	Uniform3f(location int32, x, y, z float32)
	UniformMatrix4(location int32, m mgl32.Mat4)

	Enable(c Capability)
	Disable(c Capability)
	DepthFunc(f DepthFunc)
	PolygonOffset(factor, units float32)

	BindVertexBuffer(id uint32, format VertexFormat)
	DrawArrays(mode Primitive, first, count int32)
}
