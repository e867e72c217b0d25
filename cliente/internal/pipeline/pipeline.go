package pipeline

import (
	"fmt"
	"log"

	"Luminar/cliente/internal/gpu"
)

// Resources fornece o que o pipeline não cria: programas compilados e
// texturas externas. Se também implementar SceneDrawer, é usado pelos passes
// do tipo scene.
type Resources interface {
	Program(name string) (uint32, bool)
	Texture(name string) (TextureSource, bool)
}

// Toggles responde se um passe com toggle está ligado.
type Toggles interface {
	Enabled(name string) bool
}

// Pipeline é a forma carregada de uma Definition. Todos os métodos rodam na
// thread de renderização.
type Pipeline struct {
	dev     gpu.Device
	thread  *gpu.RenderThread
	toggles Toggles

	images       []*image
	imageByName  map[string]*image
	framebuffers []*framebuffer
	fbByName     map[string]*framebuffer
	passes       []Pass

	frame Frame
}

// Load cria as imagens e framebuffers e resolve, uma única vez, o
// framebuffer, o programa e os samplers de cada passe.
func Load(dev gpu.Device, thread *gpu.RenderThread, def *Definition, res Resources, toggles Toggles, width, height int32) (*Pipeline, error) {
	thread.Assert("pipeline.Load")
	if err := def.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		dev:         dev,
		thread:      thread,
		toggles:     toggles,
		imageByName: make(map[string]*image, len(def.Images)),
		fbByName:    make(map[string]*framebuffer, len(def.Framebuffers)),
		frame:       Frame{Width: max(width, 1), Height: max(height, 1)},
	}

	for _, d := range def.Images {
		img := newImage(d)
		img.create(dev, p.frame.Width, p.frame.Height)
		p.images = append(p.images, img)
		p.imageByName[d.Name] = img
	}
	p.fbByName[ScreenFramebuffer] = newScreenFramebuffer()
	for _, d := range def.Framebuffers {
		fb := newFramebuffer(d, p.imageByName)
		fb.build(dev)
		p.framebuffers = append(p.framebuffers, fb)
		p.fbByName[d.Name] = fb
	}

	for i, d := range def.Passes {
		pass, err := p.resolvePass(i, d, res)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.passes = append(p.passes, pass)
	}
	log.Printf("[Pipeline] Carregado: %d imagens, %d framebuffers, %d passes", len(p.images), len(p.framebuffers), len(p.passes))
	return p, nil
}

func (p *Pipeline) resolvePass(i int, d PassDefinition, res Resources) (Pass, error) {
	base := passBase{name: d.Name, toggle: d.Toggle, fb: p.fbByName[d.Framebuffer]}
	if base.name == "" {
		base.name = fmt.Sprintf("%s#%d", d.Kind, i)
	}
	if d.Framebuffer == "" {
		log.Printf("[Pipeline] Passe %s sem framebuffer; será ignorado", base.name)
	}

	switch d.Kind {
	case KindClear:
		return &ClearPass{passBase: base}, nil
	case KindScene:
		drawer, _ := res.(SceneDrawer)
		if drawer == nil {
			log.Printf("[Pipeline] Passe %s sem SceneDrawer; será ignorado", base.name)
		}
		return &ScenePass{passBase: base, drawer: drawer}, nil
	}

	pass := &ProgramPass{
		passBase: base,
		width:    d.Width,
		height:   d.Height,
		lod:      d.Lod,
		layer:    d.Layer,
	}
	program, ok := res.Program(d.Program)
	if !ok {
		log.Printf("[Pipeline] Programa %q do passe %s não encontrado; passe ignorado", d.Program, base.name)
		return pass, nil
	}
	pass.program = program
	pass.uniforms = programUniforms{
		lod:        p.dev.UniformLocation(program, "lod"),
		layer:      p.dev.UniformLocation(program, "layer"),
		frameSize:  p.dev.UniformLocation(program, "frameSize"),
		projection: p.dev.UniformLocation(program, "projection"),
		fogMode:    p.dev.UniformLocation(program, "fogMode"),
	}

	for _, s := range d.Samplers {
		smp := sampler{location: p.dev.UniformLocation(program, s.Uniform)}
		if s.External {
			src, ok := res.Texture(s.Image)
			if !ok {
				return nil, fmt.Errorf("passe %s: textura externa %q não existe", base.name, s.Image)
			}
			smp.target, smp.source = gpu.TextureBufferTarget, src
		} else {
			img := p.imageByName[s.Image]
			smp.target, smp.source = img.target, img
		}
		pass.samplers = append(pass.samplers, smp)
	}
	return pass, nil
}

// Frame retorna o tamanho atual do frame.
func (p *Pipeline) Frame() Frame { return p.frame }

// Passes retorna os passes na ordem de execução.
func (p *Pipeline) Passes() []Pass { return p.passes }

// Framebuffer retorna o ID de um framebuffer válido pelo nome.
func (p *Pipeline) Framebuffer(name string) (uint32, bool) {
	fb, ok := p.fbByName[name]
	if !ok || !fb.valid() {
		return 0, false
	}
	return fb.id, true
}

// Image retorna a textura de uma imagem do pipeline.
func (p *Pipeline) Image(name string) (uint32, bool) {
	img, ok := p.imageByName[name]
	if !ok {
		return 0, false
	}
	return img.texture, true
}

// Resize recria as imagens do tamanho do frame e todos os framebuffers.
func (p *Pipeline) Resize(width, height int32) {
	p.thread.Assert("Pipeline.Resize")
	width, height = max(width, 1), max(height, 1)
	if width == p.frame.Width && height == p.frame.Height {
		return
	}
	p.frame = Frame{Width: width, Height: height}

	for _, fb := range p.framebuffers {
		fb.destroy(p.dev)
	}
	for _, img := range p.images {
		if img.def.FrameSized() {
			img.destroy(p.dev)
			img.create(p.dev, width, height)
		}
	}
	for _, fb := range p.framebuffers {
		fb.build(p.dev)
	}
	log.Printf("[Pipeline] Redimensionado para %dx%d", width, height)
}

// Execute roda os passes ligados em ordem e retorna quantos rodaram.
// Passes desligados não emitem nenhuma chamada.
func (p *Pipeline) Execute(ctx *gpu.StateContext) int {
	p.thread.Assert("Pipeline.Execute")
	ran := 0
	for _, pass := range p.passes {
		if t := pass.Toggle(); t != "" && p.toggles != nil && !p.toggles.Enabled(t) {
			continue
		}
		pass.Run(ctx, p.frame)
		ran++
	}
	if ran > 0 {
		p.dev.BindFramebuffer(0)
	}
	return ran
}

// Close apaga framebuffers e imagens.
func (p *Pipeline) Close() {
	p.thread.Assert("Pipeline.Close")
	for _, fb := range p.framebuffers {
		fb.destroy(p.dev)
	}
	for _, img := range p.images {
		img.destroy(p.dev)
	}
	p.passes = nil
}
