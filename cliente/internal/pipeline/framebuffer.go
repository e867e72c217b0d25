package pipeline

import (
	"log"

	"Luminar/cliente/internal/gpu"
)

// image é uma textura criada pelo pipeline.
type image struct {
	def     ImageDefinition
	format  gpu.Format
	target  gpu.TextureTarget
	texture uint32
	width   int32
	height  int32
}

func newImage(def ImageDefinition) *image {
	format, _ := gpu.ParseFormat(def.Format)
	target := gpu.Texture2D
	if def.Layers > 1 {
		target = gpu.Texture2DArray
	}
	return &image{def: def, format: format, target: target}
}

func (img *image) create(dev gpu.Device, frameW, frameH int32) {
	img.width, img.height = img.def.Width, img.def.Height
	if img.def.FrameSized() {
		img.width, img.height = frameW, frameH
	}
	img.texture = dev.GenTexture()
	dev.BindTexture(img.target, img.texture)
	dev.TexStorage(img.target, max(img.def.Levels, 1), img.format, img.width, img.height, max(img.def.Layers, 1))
	dev.BindTexture(img.target, 0)
}

func (img *image) destroy(dev gpu.Device) {
	if img.texture != 0 {
		dev.DeleteTexture(img.texture)
		img.texture = 0
	}
}

// TextureID implementa TextureSource.
func (img *image) TextureID() uint32 { return img.texture }

// layerArg converte a camada configurada no argumento de anexo: -1 para
// texturas 2D simples.
func (img *image) layerArg(layer int32) int32 {
	if img.target == gpu.Texture2DArray {
		return layer
	}
	return -1
}

type attachment struct {
	def   Attachment
	image *image
}

// framebuffer é um framebuffer resolvido. id == 0 marca um framebuffer
// inválido, exceto para a tela; passes que usam um inválido não fazem nada.
type framebuffer struct {
	name   string
	screen bool
	colors []attachment
	depth  *attachment
	id     uint32
	width  int32
	height int32
}

func newFramebuffer(def FramebufferDefinition, images map[string]*image) *framebuffer {
	fb := &framebuffer{name: def.Name}
	for _, a := range def.Colors {
		fb.colors = append(fb.colors, attachment{def: a, image: images[a.Image]})
	}
	if def.Depth != nil {
		fb.depth = &attachment{def: *def.Depth, image: images[def.Depth.Image]}
	}
	return fb
}

func newScreenFramebuffer() *framebuffer {
	return &framebuffer{name: ScreenFramebuffer, screen: true}
}

func (fb *framebuffer) build(dev gpu.Device) {
	if fb.screen {
		return
	}
	fb.id = dev.GenFramebuffer()
	dev.BindFramebuffer(fb.id)
	for i, a := range fb.colors {
		dev.FramebufferTexture(i, a.image.texture, a.def.Level, a.image.layerArg(a.def.Layer))
	}
	if fb.depth != nil {
		dev.FramebufferDepthTexture(fb.depth.image.texture, fb.depth.def.Level, fb.depth.image.layerArg(fb.depth.def.Layer))
	}
	dev.DrawBuffers(len(fb.colors))
	complete := dev.FramebufferComplete()
	dev.BindFramebuffer(0)

	if !complete {
		log.Printf("[Pipeline] Framebuffer %q incompleto; passes que o usam serão ignorados", fb.name)
		dev.DeleteFramebuffer(fb.id)
		fb.id = 0
		return
	}

	first := fb.depth
	if len(fb.colors) > 0 {
		first = &fb.colors[0]
	}
	if first != nil {
		fb.width = max(first.image.width>>first.def.Level, 1)
		fb.height = max(first.image.height>>first.def.Level, 1)
	}
}

func (fb *framebuffer) destroy(dev gpu.Device) {
	if !fb.screen && fb.id != 0 {
		dev.DeleteFramebuffer(fb.id)
		fb.id = 0
	}
}

func (fb *framebuffer) valid() bool {
	return fb != nil && (fb.screen || fb.id != 0)
}

// size retorna o tamanho de desenho; a tela acompanha o frame.
func (fb *framebuffer) size(frame Frame) (int32, int32) {
	if fb.screen {
		return frame.Width, frame.Height
	}
	return fb.width, fb.height
}
