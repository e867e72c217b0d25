package pipeline

import (
	"Luminar/cliente/internal/gpu"

	"github.com/go-gl/mathgl/mgl32"
)

// FullScreenVertices é o número de vértices do quad de tela cheia.
const FullScreenVertices = 6

// TextureSource fornece o ID atual de uma textura que pode ser recriada
// entre frames (imagens de luz, imagens do pipeline).
type TextureSource interface {
	TextureID() uint32
}

// Frame é o contexto de execução de um passe.
type Frame struct {
	Width, Height int32
}

// Pass é um passo do pipeline.
type Pass interface {
	Name() string
	Toggle() string
	Run(ctx *gpu.StateContext, frame Frame)
}

type passBase struct {
	name   string
	toggle string
	fb     *framebuffer
}

func (p *passBase) Name() string   { return p.name }
func (p *passBase) Toggle() string { return p.toggle }

// ClearPass limpa os anexos de um framebuffer.
type ClearPass struct {
	passBase
}

func (p *ClearPass) Run(ctx *gpu.StateContext, frame Frame) {
	if !p.fb.valid() {
		return
	}
	dev := ctx.Device()
	w, h := p.fb.size(frame)
	dev.BindFramebuffer(p.fb.id)
	dev.Viewport(0, 0, w, h)
	for i, a := range p.fb.colors {
		dev.ClearBufferColor(i, a.def.ClearColor)
	}
	if p.fb.depth != nil {
		depth := float32(1)
		if p.fb.depth.def.ClearDepth != nil {
			depth = *p.fb.depth.def.ClearDepth
		}
		// A escrita de profundidade só acontece com o teste ligado.
		ctx.SetDepthTest(gpu.DepthAlways)
		dev.ClearDepth(depth)
		dev.Clear(gpu.ClearDepth)
	}
}

// SceneDrawer desenha a geometria do mundo no framebuffer já ligado.
type SceneDrawer interface {
	DrawScene(ctx *gpu.StateContext, frame Frame)
}

// ScenePass entrega o framebuffer ao SceneDrawer.
type ScenePass struct {
	passBase
	drawer SceneDrawer
}

func (p *ScenePass) Run(ctx *gpu.StateContext, frame Frame) {
	if !p.fb.valid() || p.drawer == nil {
		return
	}
	dev := ctx.Device()
	w, h := p.fb.size(frame)
	dev.BindFramebuffer(p.fb.id)
	dev.Viewport(0, 0, w, h)
	p.drawer.DrawScene(ctx, Frame{Width: w, Height: h})
}

type sampler struct {
	location int32
	target   gpu.TextureTarget
	source   TextureSource
}

type programUniforms struct {
	lod, layer, frameSize, projection, fogMode int32
}

// ProgramPass desenha um quad de tela cheia com um programa.
type ProgramPass struct {
	passBase
	program  uint32
	samplers []sampler
	uniforms programUniforms

	width, height int32
	lod, layer    int32
}

// OutputSize retorna o tamanho de saída do passe já deslocado pelo LOD.
func (p *ProgramPass) OutputSize(frame Frame) (int32, int32) {
	w, h := frame.Width, frame.Height
	if p.width > 0 {
		w = p.width
	}
	if p.height > 0 {
		h = p.height
	}
	return max(w>>p.lod, 1), max(h>>p.lod, 1)
}

func (p *ProgramPass) Run(ctx *gpu.StateContext, frame Frame) {
	if !p.fb.valid() || p.program == 0 {
		return
	}
	dev := ctx.Device()
	w, h := p.OutputSize(frame)

	dev.BindFramebuffer(p.fb.id)
	dev.Viewport(0, 0, w, h)
	for unit, s := range p.samplers {
		dev.ActiveTexture(unit)
		dev.BindTexture(s.target, s.source.TextureID())
	}
	dev.UseProgram(p.program)
	for unit, s := range p.samplers {
		if s.location >= 0 {
			dev.Uniform1i(s.location, int32(unit))
		}
	}

	u := p.uniforms
	if u.lod >= 0 {
		dev.Uniform1i(u.lod, p.lod)
	}
	if u.layer >= 0 {
		dev.Uniform1i(u.layer, p.layer)
	}
	if u.frameSize >= 0 {
		dev.Uniform2f(u.frameSize, float32(w), float32(h))
	}
	if u.projection >= 0 {
		dev.UniformMatrix4(u.projection, mgl32.Ortho2D(0, float32(w), 0, float32(h)))
	}
	if u.fogMode >= 0 {
		dev.Uniform1i(u.fogMode, int32(ctx.Fog()))
	}

	ctx.SetDepthTest(gpu.DepthNone)
	ctx.SetDecalOffset(gpu.DecalNone)
	dev.DrawArrays(gpu.Triangles, 0, FullScreenVertices)
	if len(p.samplers) > 0 {
		dev.ActiveTexture(0)
	}
}
