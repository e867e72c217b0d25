// Package gpuimage mantém arrays de registros residentes na GPU, expostos aos
// shaders como buffer textures.
package gpuimage

import (
	"fmt"
	"log"
	"runtime"
	"sync/atomic"

	"Luminar/cliente/internal/gpu"
)

const (
	// PageSize é o número de elementos por página do IndexedImage.
	PageSize = 65536
	// MaxPages limita o crescimento do IndexedImage.
	MaxPages = 4096

	pageRetryWarn       = 1024
	initialCapacity     = 1024
	indexedUploadAccess = gpu.MapWrite | gpu.MapInvalidateRange | gpu.MapFlushExplicit | gpu.MapUnsynchronized
)

// Encoder serializa um elemento em exatamente Stride() bytes.
type Encoder[T any] interface {
	Stride() int
	Encode(dst []byte, v T)
}

type slot[T any] struct {
	value T
	ready atomic.Bool
}

type page[T any] struct {
	slots [PageSize]slot[T]
}

// IndexedImage é um array somente-de-acréscimo. Add pode ser chamado de
// qualquer goroutine; Upload, Clear e o resto só na thread de renderização.
type IndexedImage[T any] struct {
	dev     gpu.Device
	thread  *gpu.RenderThread
	encoder Encoder[T]
	format  gpu.Format

	next     atomic.Int64
	lastPage atomic.Int32
	pages    [MaxPages]atomic.Pointer[page[T]]

	// Estado da thread de renderização.
	uploaded int
	capacity int
	buffer   uint32
	texture  uint32
}

// NewIndexedImage cria uma imagem vazia; nenhum objeto GPU é alocado até o
// primeiro Upload com elementos.
func NewIndexedImage[T any](dev gpu.Device, thread *gpu.RenderThread, encoder Encoder[T], format gpu.Format) *IndexedImage[T] {
	img := &IndexedImage[T]{dev: dev, thread: thread, encoder: encoder, format: format}
	img.lastPage.Store(-1)
	return img
}

// Add publica v e retorna seu índice, estável enquanto a imagem viver.
func (img *IndexedImage[T]) Add(v T) int {
	idx := img.next.Add(1) - 1
	p := int(idx / PageSize)
	if p >= MaxPages {
		panic(fmt.Sprintf("gpuimage: indexed image excedeu %d páginas", MaxPages))
	}
	s := &img.page(p).slots[idx%PageSize]
	s.value = v
	s.ready.Store(true)
	return int(idx)
}

// page retorna a página p, alocando-a se necessário. Quem vence o CAS em
// lastPage aloca a página seguinte; os demais esperam ela ser publicada.
func (img *IndexedImage[T]) page(p int) *page[T] {
	retries := 0
	for {
		if pg := img.pages[p].Load(); pg != nil {
			return pg
		}
		last := img.lastPage.Load()
		if int(last) < p && img.lastPage.CompareAndSwap(last, last+1) {
			img.pages[last+1].Store(new(page[T]))
			continue
		}
		retries++
		if retries == pageRetryWarn+1 {
			log.Printf("[IndexedImage] Aguardando página %d há %d tentativas (última alocada: %d)", p, retries, img.lastPage.Load())
		}
		runtime.Gosched()
	}
}

// Len retorna quantos índices já foram reservados.
func (img *IndexedImage[T]) Len() int {
	return int(img.next.Load())
}

// Get retorna o elemento i se ele já foi publicado.
func (img *IndexedImage[T]) Get(i int) (T, bool) {
	var zero T
	if i < 0 || i >= img.Len() {
		return zero, false
	}
	pg := img.pages[i/PageSize].Load()
	if pg == nil {
		return zero, false
	}
	s := &pg.slots[i%PageSize]
	if !s.ready.Load() {
		return zero, false
	}
	return s.value, true
}

// Uploaded retorna quantos elementos já estão na GPU.
func (img *IndexedImage[T]) Uploaded() int {
	return img.uploaded
}

// TextureID retorna a buffer texture, ou 0 antes do primeiro upload.
func (img *IndexedImage[T]) TextureID() uint32 {
	return img.texture
}

// readable retorna o fim da sequência contígua de elementos publicados a
// partir de start.
func (img *IndexedImage[T]) readable(start int) int {
	end := start
	limit := img.Len()
	for end < limit {
		pg := img.pages[end/PageSize].Load()
		if pg == nil || !pg.slots[end%PageSize].ready.Load() {
			break
		}
		end++
	}
	return end
}

// Upload envia os elementos publicados desde o último upload. Retorna true
// quando o buffer foi (re)criado e os bindings de textura precisam ser
// atualizados.
func (img *IndexedImage[T]) Upload() bool {
	img.thread.Assert("IndexedImage.Upload")

	start := img.uploaded
	end := img.readable(start)
	if end == start {
		return false
	}

	recreated := img.reserve(end)
	stride := img.encoder.Stride()
	length := (end - start) * stride

	img.dev.BindBuffer(gpu.TextureBuffer, img.buffer)
	dst := img.dev.MapBufferRange(gpu.TextureBuffer, start*stride, length, indexedUploadAccess)
	if dst == nil {
		log.Printf("[IndexedImage] Falha ao mapear %d bytes; upload adiado", length)
		img.dev.BindBuffer(gpu.TextureBuffer, 0)
		return recreated
	}
	for i := start; i < end; i++ {
		v, _ := img.Get(i)
		off := (i - start) * stride
		img.encoder.Encode(dst[off:off+stride], v)
	}
	img.dev.FlushMappedBufferRange(gpu.TextureBuffer, 0, length)
	img.dev.UnmapBuffer(gpu.TextureBuffer)
	img.dev.BindBuffer(gpu.TextureBuffer, 0)

	img.uploaded = end
	return recreated
}

// reserve garante capacidade para n elementos, dobrando o buffer e copiando o
// conteúdo já enviado quando necessário.
func (img *IndexedImage[T]) reserve(n int) bool {
	if img.buffer != 0 && n <= img.capacity {
		return false
	}
	capacity := max(img.capacity, initialCapacity)
	for capacity < n {
		capacity *= 2
	}
	stride := img.encoder.Stride()

	buffer := img.dev.GenBuffer()
	img.dev.BindBuffer(gpu.TextureBuffer, buffer)
	img.dev.BufferData(gpu.TextureBuffer, capacity*stride, nil, gpu.DynamicDraw)
	img.dev.BindBuffer(gpu.TextureBuffer, 0)

	if img.buffer != 0 {
		if img.uploaded > 0 {
			img.dev.BindBuffer(gpu.CopyReadBuffer, img.buffer)
			img.dev.BindBuffer(gpu.CopyWriteBuffer, buffer)
			img.dev.CopyBufferSubData(gpu.CopyReadBuffer, gpu.CopyWriteBuffer, 0, 0, img.uploaded*stride)
			img.dev.BindBuffer(gpu.CopyReadBuffer, 0)
			img.dev.BindBuffer(gpu.CopyWriteBuffer, 0)
		}
		img.dev.DeleteBuffer(img.buffer)
	}
	img.buffer = buffer
	img.capacity = capacity

	if img.texture == 0 {
		img.texture = img.dev.GenTexture()
	}
	img.dev.BindTexture(gpu.TextureBufferTarget, img.texture)
	img.dev.TexBuffer(img.format, img.buffer)
	img.dev.BindTexture(gpu.TextureBufferTarget, 0)
	return true
}

// Clear descarta os elementos e os objetos GPU. Não pode concorrer com Add.
func (img *IndexedImage[T]) Clear() {
	img.thread.Assert("IndexedImage.Clear")

	for p := int32(0); p <= img.lastPage.Load(); p++ {
		img.pages[p].Store(nil)
	}
	img.lastPage.Store(-1)
	img.next.Store(0)

	if img.buffer != 0 {
		img.dev.DeleteBuffer(img.buffer)
	}
	if img.texture != 0 {
		img.dev.DeleteTexture(img.texture)
	}
	img.buffer, img.texture = 0, 0
	img.uploaded, img.capacity = 0, 0
}
