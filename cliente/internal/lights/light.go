// Package lights rastreia entidades que emitem luz e publica seus
// descritores para os passes de iluminação.
package lights

import (
	"encoding/binary"
	"math"
	"sync"

	"Luminar/cliente/internal/gpu"
	"Luminar/cliente/internal/gpuimage"
)

// Light descreve uma fonte de luz pontual.
type Light struct {
	Red       float32 `json:"red"`
	Green     float32 `json:"green"`
	Blue      float32 `json:"blue"`
	Intensity float32 `json:"intensity"`
	Radius    float32 `json:"radius"`
}

// Emits informa se a luz contribui para a iluminação.
func (l Light) Emits() bool {
	return l.Intensity > 0 && l.Radius > 0
}

// Descriptor é o índice de uma Light na imagem de descritores.
type Descriptor int32

// NoLight é o registro reservado de quem não emite luz.
const NoLight Descriptor = 0

// LightStride é o tamanho de um descritor na GPU: dois texels RGBA32F.
const LightStride = 32

type lightEncoder struct{}

func (lightEncoder) Stride() int { return LightStride }

func (lightEncoder) Encode(dst []byte, l Light) {
	for i, f := range [...]float32{l.Red, l.Green, l.Blue, l.Intensity, l.Radius} {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
	}
	clear(dst[20:LightStride])
}

// Registry deduplica Lights na imagem de descritores. Descriptor pode ser
// chamado de qualquer goroutine.
type Registry struct {
	mu    sync.Mutex
	known map[Light]Descriptor
	image *gpuimage.IndexedImage[Light]
}

// NewRegistry cria o registro com o descritor NoLight já reservado.
func NewRegistry(dev gpu.Device, thread *gpu.RenderThread) *Registry {
	r := &Registry{
		known: make(map[Light]Descriptor),
		image: gpuimage.NewIndexedImage[Light](dev, thread, lightEncoder{}, gpu.FormatRGBA32F),
	}
	r.image.Add(Light{})
	return r
}

// Descriptor retorna o descritor de l, publicando-o na primeira vez.
func (r *Registry) Descriptor(l Light) Descriptor {
	if !l.Emits() {
		return NoLight
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.known[l]; ok {
		return d
	}
	d := Descriptor(r.image.Add(l))
	r.known[l] = d
	return d
}

// Light retorna a luz publicada para d.
func (r *Registry) Light(d Descriptor) (Light, bool) {
	return r.image.Get(int(d))
}

// Len retorna o número de descritores, incluindo NoLight.
func (r *Registry) Len() int {
	return r.image.Len()
}

// Upload envia os descritores novos; true indica que a textura mudou.
func (r *Registry) Upload() bool {
	return r.image.Upload()
}

// TextureID retorna a buffer texture dos descritores.
func (r *Registry) TextureID() uint32 {
	return r.image.TextureID()
}

// Clear descarta todos os descritores. Descritores antigos ficam inválidos.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.image.Clear()
	clear(r.known)
	r.image.Add(Light{})
}
