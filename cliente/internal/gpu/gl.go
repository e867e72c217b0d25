package gpu

import (
	"fmt"
	"log"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// GLDevice implementa Device sobre OpenGL 4.1 core via go-gl.
// Requer um contexto corrente na thread do SO (criado pela janela raylib).
type GLDevice struct {
	vao      uint32
	uniforms map[uniformKey]int32
}

type uniformKey struct {
	program uint32
	name    string
}

// NewGLDevice carrega os ponteiros de função do contexto corrente.
func NewGLDevice() (*GLDevice, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("falha ao inicializar OpenGL: %w", err)
	}
	log.Printf("[GPU] OpenGL %s (%s)", gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.RENDERER)))

	d := &GLDevice{uniforms: make(map[uniformKey]int32)}
	gl.GenVertexArrays(1, &d.vao)
	return d, nil
}

func bufferTarget(t BufferTarget) uint32 {
	switch t {
	case TextureBuffer:
		return gl.TEXTURE_BUFFER
	case CopyReadBuffer:
		return gl.COPY_READ_BUFFER
	case CopyWriteBuffer:
		return gl.COPY_WRITE_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func usage(u Usage) uint32 {
	switch u {
	case DynamicDraw:
		return gl.DYNAMIC_DRAW
	case StreamDraw:
		return gl.STREAM_DRAW
	}
	return gl.STATIC_DRAW
}

func textureTarget(t TextureTarget) uint32 {
	switch t {
	case Texture2DArray:
		return gl.TEXTURE_2D_ARRAY
	case TextureBufferTarget:
		return gl.TEXTURE_BUFFER
	}
	return gl.TEXTURE_2D
}

// formatInfo retorna internal format, format e tipo para alocação.
func formatInfo(f Format) (internal int32, format, xtype uint32) {
	switch f {
	case FormatRGBA16F:
		return gl.RGBA16F, gl.RGBA, gl.FLOAT
	case FormatR32I:
		return gl.R32I, gl.RED_INTEGER, gl.INT
	case FormatRGBA32F:
		return gl.RGBA32F, gl.RGBA, gl.FLOAT
	case FormatDepth32F:
		return gl.DEPTH_COMPONENT32F, gl.DEPTH_COMPONENT, gl.FLOAT
	}
	return gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE
}

func ptr(data []byte) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return gl.Ptr(data)
}

func (d *GLDevice) GenBuffer() uint32 {
	var id uint32
	gl.GenBuffers(1, &id)
	return id
}

func (d *GLDevice) DeleteBuffer(id uint32) {
	gl.DeleteBuffers(1, &id)
}

func (d *GLDevice) BindBuffer(target BufferTarget, id uint32) {
	gl.BindBuffer(bufferTarget(target), id)
}

func (d *GLDevice) BufferData(target BufferTarget, size int, data []byte, u Usage) {
	gl.BufferData(bufferTarget(target), size, ptr(data), usage(u))
}

func (d *GLDevice) BufferSubData(target BufferTarget, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	gl.BufferSubData(bufferTarget(target), offset, len(data), gl.Ptr(data))
}

func (d *GLDevice) MapBufferRange(target BufferTarget, offset, length int, access MapAccess) []byte {
	var bits uint32
	if access&MapWrite != 0 {
		bits |= gl.MAP_WRITE_BIT
	}
	if access&MapInvalidateRange != 0 {
		bits |= gl.MAP_INVALIDATE_RANGE_BIT
	}
	if access&MapInvalidateBuffer != 0 {
		bits |= gl.MAP_INVALIDATE_BUFFER_BIT
	}
	if access&MapFlushExplicit != 0 {
		bits |= gl.MAP_FLUSH_EXPLICIT_BIT
	}
	if access&MapUnsynchronized != 0 {
		bits |= gl.MAP_UNSYNCHRONIZED_BIT
	}
	p := gl.MapBufferRange(bufferTarget(target), offset, length, bits)
	if p == nil {
		return nil
	}
	return unsafe.Slice((*byte)(p), length)
}

func (d *GLDevice) FlushMappedBufferRange(target BufferTarget, offset, length int) {
	gl.FlushMappedBufferRange(bufferTarget(target), offset, length)
}

func (d *GLDevice) UnmapBuffer(target BufferTarget) bool {
	return gl.UnmapBuffer(bufferTarget(target))
}

func (d *GLDevice) CopyBufferSubData(read, write BufferTarget, readOffset, writeOffset, size int) {
	gl.CopyBufferSubData(bufferTarget(read), bufferTarget(write), readOffset, writeOffset, size)
}

func (d *GLDevice) GenTexture() uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	return id
}

func (d *GLDevice) DeleteTexture(id uint32) {
	gl.DeleteTextures(1, &id)
}

func (d *GLDevice) ActiveTexture(unit int) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
}

func (d *GLDevice) BindTexture(target TextureTarget, id uint32) {
	gl.BindTexture(textureTarget(target), id)
}

func (d *GLDevice) TexBuffer(format Format, buffer uint32) {
	internal, _, _ := formatInfo(format)
	gl.TexBuffer(gl.TEXTURE_BUFFER, uint32(internal), buffer)
}

// TexStorage aloca todos os níveis da textura ligada. GL 4.1 não tem
// glTexStorage, então cada nível é alocado com TexImage.
func (d *GLDevice) TexStorage(target TextureTarget, levels int32, format Format, width, height, layers int32) {
	internal, pixFormat, xtype := formatInfo(format)
	t := textureTarget(target)
	for level := int32(0); level < levels; level++ {
		w := max(width>>level, 1)
		h := max(height>>level, 1)
		if target == Texture2DArray {
			gl.TexImage3D(t, level, internal, w, h, layers, 0, pixFormat, xtype, nil)
		} else {
			gl.TexImage2D(t, level, internal, w, h, 0, pixFormat, xtype, nil)
		}
	}
	gl.TexParameteri(t, gl.TEXTURE_MAX_LEVEL, levels-1)
	gl.TexParameteri(t, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(t, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(t, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(t, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
}

func (d *GLDevice) GenFramebuffer() uint32 {
	var id uint32
	gl.GenFramebuffers(1, &id)
	return id
}

func (d *GLDevice) DeleteFramebuffer(id uint32) {
	gl.DeleteFramebuffers(1, &id)
}

func (d *GLDevice) BindFramebuffer(id uint32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, id)
}

// FramebufferTexture anexa uma textura de cor. layer < 0 indica textura 2D simples.
func (d *GLDevice) FramebufferTexture(attachment int, texture uint32, level, layer int32) {
	att := gl.COLOR_ATTACHMENT0 + uint32(attachment)
	if layer < 0 {
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, att, gl.TEXTURE_2D, texture, level)
		return
	}
	gl.FramebufferTextureLayer(gl.FRAMEBUFFER, att, texture, level, layer)
}

func (d *GLDevice) FramebufferDepthTexture(texture uint32, level, layer int32) {
	if layer < 0 {
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, texture, level)
		return
	}
	gl.FramebufferTextureLayer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, texture, level, layer)
}

func (d *GLDevice) DrawBuffers(count int) {
	if count == 0 {
		none := uint32(gl.NONE)
		gl.DrawBuffers(1, &none)
		return
	}
	bufs := make([]uint32, count)
	for i := range bufs {
		bufs[i] = gl.COLOR_ATTACHMENT0 + uint32(i)
	}
	gl.DrawBuffers(int32(count), &bufs[0])
}

func (d *GLDevice) FramebufferComplete() bool {
	return gl.CheckFramebufferStatus(gl.FRAMEBUFFER) == gl.FRAMEBUFFER_COMPLETE
}

func (d *GLDevice) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}

func (d *GLDevice) ClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}

func (d *GLDevice) ClearDepth(depth float32) {
	gl.ClearDepth(float64(depth))
}

func (d *GLDevice) ClearBufferColor(drawBuffer int, rgba [4]float32) {
	gl.ClearBufferfv(gl.COLOR, int32(drawBuffer), &rgba[0])
}

func (d *GLDevice) Clear(mask ClearMask) {
	var bits uint32
	if mask&ClearColor != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&ClearDepth != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	gl.Clear(bits)
}

func (d *GLDevice) UseProgram(id uint32) {
	gl.UseProgram(id)
}

// UniformLocation consulta e memoriza a localização por programa.
func (d *GLDevice) UniformLocation(program uint32, name string) int32 {
	key := uniformKey{program, name}
	if loc, ok := d.uniforms[key]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(program, gl.Str(name+"\x00"))
	d.uniforms[key] = loc
	return loc
}

// ForgetUniforms descarta as localizações memorizadas. Necessário ao
// recompilar programas, pois o GL reaproveita IDs.
func (d *GLDevice) ForgetUniforms() {
	clear(d.uniforms)
}

func (d *GLDevice) Uniform1i(location int32, v int32) {
	gl.Uniform1i(location, v)
}

func (d *GLDevice) Uniform2f(location int32, x, y float32) {
	gl.Uniform2f(location, x, y)
}

func (d *GLDevice) Uniform3f(location int32, x, y, z float32) {
	gl.Uniform3f(location, x, y, z)
}

func (d *GLDevice) UniformMatrix4(location int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

func capability(c Capability) uint32 {
	switch c {
	case CapPolygonOffsetFill:
		return gl.POLYGON_OFFSET_FILL
	case CapBlend:
		return gl.BLEND
	}
	return gl.DEPTH_TEST
}

func (d *GLDevice) Enable(c Capability) {
	gl.Enable(capability(c))
}

func (d *GLDevice) Disable(c Capability) {
	gl.Disable(capability(c))
}

func (d *GLDevice) DepthFunc(f DepthFunc) {
	switch f {
	case DepthFuncEqual:
		gl.DepthFunc(gl.EQUAL)
	case DepthFuncLessEqual:
		gl.DepthFunc(gl.LEQUAL)
	default:
		gl.DepthFunc(gl.ALWAYS)
	}
}

func (d *GLDevice) PolygonOffset(factor, units float32) {
	gl.PolygonOffset(factor, units)
}

func attribType(t AttribType) uint32 {
	switch t {
	case AttribUnsignedByte:
		return gl.UNSIGNED_BYTE
	case AttribUnsignedShort:
		return gl.UNSIGNED_SHORT
	}
	return gl.FLOAT
}

// BindVertexBuffer liga o VAO compartilhado e aponta os atributos para o buffer.
func (d *GLDevice) BindVertexBuffer(id uint32, format VertexFormat) {
	gl.BindVertexArray(d.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, id)
	for _, a := range format.Attributes {
		gl.EnableVertexAttribArray(a.Location)
		gl.VertexAttribPointerWithOffset(a.Location, a.Components, attribType(a.Type), a.Normalized, int32(format.Stride), uintptr(a.Offset))
	}
}

// DrawArrays garante o VAO ligado: passes de tela cheia não ligam buffer e o
// perfil core não desenha sem VAO.
func (d *GLDevice) DrawArrays(mode Primitive, first, count int32) {
	gl.BindVertexArray(d.vao)
	gl.DrawArrays(gl.TRIANGLES, first, count)
}

// Close libera o VAO compartilhado.
func (d *GLDevice) Close() {
	if d.vao != 0 {
		gl.DeleteVertexArrays(1, &d.vao)
		d.vao = 0
	}
}

var _ Device = (*GLDevice)(nil)
