// Package pipeline carrega e executa o pipeline de passes configurável:
// imagens, framebuffers e a sequência de passes clear/program por frame.
package pipeline

import (
	"errors"
	"fmt"
	"os"

	"Luminar/cliente/internal/gpu"

	"gopkg.in/yaml.v3"
)

const (
	KindClear   = "clear"
	KindProgram = "program"
	KindScene   = "scene"

	// ScreenFramebuffer é o framebuffer da janela; não precisa ser declarado.
	ScreenFramebuffer = "screen"
)

// Definition é a forma declarativa de um pipeline.
type Definition struct {
	Images       []ImageDefinition       `yaml:"images"`
	Framebuffers []FramebufferDefinition `yaml:"framebuffers"`
	Passes       []PassDefinition        `yaml:"passes"`
}

// ImageDefinition descreve uma textura do pipeline. Largura e altura zero
// acompanham o tamanho do frame.
type ImageDefinition struct {
	Name   string `yaml:"name"`
	Format string `yaml:"format"`
	Width  int32  `yaml:"width"`
	Height int32  `yaml:"height"`
	Layers int32  `yaml:"layers"`
	Levels int32  `yaml:"levels"`
}

// FrameSized informa se a imagem acompanha o tamanho do frame.
func (d ImageDefinition) FrameSized() bool {
	return d.Width == 0 || d.Height == 0
}

// Attachment liga uma imagem (nível/camada) a um framebuffer.
type Attachment struct {
	Image      string     `yaml:"image"`
	Level      int32      `yaml:"level"`
	Layer      int32      `yaml:"layer"`
	ClearColor [4]float32 `yaml:"clearColor"`
	ClearDepth *float32   `yaml:"clearDepth"`
}

type FramebufferDefinition struct {
	Name   string       `yaml:"name"`
	Colors []Attachment `yaml:"colors"`
	Depth  *Attachment  `yaml:"depth"`
}

// SamplerDefinition liga uma imagem a um uniform sampler. Imagens externas
// (ex.: as imagens de luz) vêm de Resources.
type SamplerDefinition struct {
	Uniform  string `yaml:"uniform"`
	Image    string `yaml:"image"`
	External bool   `yaml:"external"`
}

// PassDefinition descreve um passe. Width/Height zero usam o tamanho do
// frame; Toggle vazio significa sempre ligado.
type PassDefinition struct {
	Name        string              `yaml:"name"`
	Kind        string              `yaml:"kind"`
	Framebuffer string              `yaml:"framebuffer"`
	Program     string              `yaml:"program"`
	Samplers    []SamplerDefinition `yaml:"samplers"`
	Width       int32               `yaml:"width"`
	Height      int32               `yaml:"height"`
	Lod         int32               `yaml:"lod"`
	Layer       int32               `yaml:"layer"`
	Toggle      string              `yaml:"toggle"`
}

// LoadDefinition lê e valida um pipeline em YAML.
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler %s: %w", path, err)
	}
	def, err := ParseDefinition(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// ParseDefinition decodifica e valida um pipeline em YAML.
func ParseDefinition(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, err
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate reporta todos os nomes duplicados, tipos desconhecidos e
// referências pendentes.
func (d *Definition) Validate() error {
	var errs []error

	images := make(map[string]ImageDefinition, len(d.Images))
	for _, img := range d.Images {
		if img.Name == "" {
			errs = append(errs, errors.New("imagem sem nome"))
			continue
		}
		if _, dup := images[img.Name]; dup {
			errs = append(errs, fmt.Errorf("imagem %q duplicada", img.Name))
		}
		if _, ok := gpu.ParseFormat(img.Format); !ok {
			errs = append(errs, fmt.Errorf("imagem %q: formato desconhecido %q", img.Name, img.Format))
		}
		images[img.Name] = img
	}

	checkAttachment := func(fb string, a Attachment, depth bool) {
		img, ok := images[a.Image]
		if !ok {
			errs = append(errs, fmt.Errorf("framebuffer %q: imagem %q não existe", fb, a.Image))
			return
		}
		format, _ := gpu.ParseFormat(img.Format)
		if format.IsDepth() != depth {
			errs = append(errs, fmt.Errorf("framebuffer %q: imagem %q no anexo errado", fb, a.Image))
		}
		if levels := max(img.Levels, 1); a.Level < 0 || a.Level >= levels {
			errs = append(errs, fmt.Errorf("framebuffer %q: nível %d fora de %q", fb, a.Level, a.Image))
		}
		if layers := max(img.Layers, 1); a.Layer < 0 || a.Layer >= layers {
			errs = append(errs, fmt.Errorf("framebuffer %q: camada %d fora de %q", fb, a.Layer, a.Image))
		}
	}

	framebuffers := make(map[string]bool, len(d.Framebuffers))
	for _, fb := range d.Framebuffers {
		if fb.Name == ScreenFramebuffer {
			errs = append(errs, fmt.Errorf("framebuffer %q é reservado", fb.Name))
		}
		if framebuffers[fb.Name] {
			errs = append(errs, fmt.Errorf("framebuffer %q duplicado", fb.Name))
		}
		framebuffers[fb.Name] = true
		for _, a := range fb.Colors {
			checkAttachment(fb.Name, a, false)
		}
		if fb.Depth != nil {
			checkAttachment(fb.Name, *fb.Depth, true)
		}
	}

	for i, p := range d.Passes {
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		switch p.Kind {
		case KindClear, KindScene:
		case KindProgram:
			if p.Program == "" {
				errs = append(errs, fmt.Errorf("passe %s: programa não informado", name))
			}
		default:
			errs = append(errs, fmt.Errorf("passe %s: tipo desconhecido %q", name, p.Kind))
		}
		if p.Framebuffer != "" && p.Framebuffer != ScreenFramebuffer && !framebuffers[p.Framebuffer] {
			errs = append(errs, fmt.Errorf("passe %s: framebuffer %q não existe", name, p.Framebuffer))
		}
		if p.Lod < 0 {
			errs = append(errs, fmt.Errorf("passe %s: lod negativo", name))
		}
		for _, s := range p.Samplers {
			if s.External {
				continue
			}
			if _, ok := images[s.Image]; !ok {
				errs = append(errs, fmt.Errorf("passe %s: sampler %q usa imagem inexistente %q", name, s.Uniform, s.Image))
			}
		}
	}
	return errors.Join(errs...)
}
