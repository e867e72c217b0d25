package gpuimage

import (
	"encoding/binary"
	"fmt"
	"sort"
	"sync"
	"testing"

	"Luminar/cliente/internal/gpu"
	"Luminar/cliente/internal/gpu/gputest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type uint32Encoder struct{}

func (uint32Encoder) Stride() int { return 4 }

func (uint32Encoder) Encode(dst []byte, v uint32) {
	binary.LittleEndian.PutUint32(dst, v)
}

func newEnv() (*gputest.Recorder, *gpu.RenderThread) {
	thread := gpu.NewRenderThread()
	thread.Claim()
	return gputest.NewRecorder(), thread
}

func TestIndexedImageConcurrentAdd(t *testing.T) {
	rec, thread := newEnv()
	img := NewIndexedImage[uint32](rec, thread, uint32Encoder{}, gpu.FormatR32I)

	const writers, perWriter = 8, 20000
	results := make([][]int, writers)
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				idx := img.Add(uint32(w*perWriter + i))
				results[w] = append(results[w], idx)
			}
		}(w)
	}
	wg.Wait()

	var all []int
	for _, r := range results {
		all = append(all, r...)
	}
	sort.Ints(all)
	require.Len(t, all, writers*perWriter)
	for i, idx := range all {
		require.Equal(t, i, idx)
	}

	// Cada índice guarda o valor de quem o reservou.
	for w, r := range results {
		for i, idx := range r {
			v, ok := img.Get(idx)
			require.True(t, ok)
			require.Equal(t, uint32(w*perWriter+i), v)
		}
	}
}

func TestIndexedImageUpload(t *testing.T) {
	rec, thread := newEnv()
	img := NewIndexedImage[uint32](rec, thread, uint32Encoder{}, gpu.FormatR32I)

	assert.False(t, img.Upload())
	assert.Empty(t, rec.Calls())

	for i := uint32(0); i < 3; i++ {
		img.Add(i + 10)
	}
	assert.True(t, img.Upload())
	assert.Equal(t, 3, img.Uploaded())
	assert.NotZero(t, img.TextureID())
	access := gpu.MapWrite | gpu.MapInvalidateRange | gpu.MapFlushExplicit | gpu.MapUnsynchronized
	assert.Contains(t, rec.Calls(), "MapBufferRange(1, 0, 12, "+fmt.Sprint(int(access))+")")

	buf := rec.Buffer(1)
	assert.Equal(t, uint32(11), binary.LittleEndian.Uint32(buf[4:]))

	rec.Reset()
	assert.False(t, img.Upload(), "sem novos elementos")
	assert.Empty(t, rec.Calls())

	img.Add(99)
	assert.False(t, img.Upload(), "cabe no buffer atual")
	assert.Equal(t, []string{
		"BindBuffer(1, 1)",
		"MapBufferRange(1, 12, 4, " + fmt.Sprint(int(access)) + ")",
		"FlushMappedBufferRange(1, 0, 4)",
		"UnmapBuffer(1)",
		"BindBuffer(1, 0)",
	}, rec.Calls())
}

func TestIndexedImageGrowCopiesContents(t *testing.T) {
	rec, thread := newEnv()
	img := NewIndexedImage[uint32](rec, thread, uint32Encoder{}, gpu.FormatR32I)

	for i := 0; i < initialCapacity; i++ {
		img.Add(uint32(i))
	}
	require.True(t, img.Upload())
	first := img.TextureID()

	img.Add(7777)
	rec.Reset()
	assert.True(t, img.Upload())
	assert.Equal(t, first, img.TextureID(), "a textura é reaproveitada")
	assert.Equal(t, 1, rec.Count("CopyBufferSubData"))
	assert.Equal(t, 1, rec.Count("DeleteBuffer"))
	assert.Equal(t, 1, rec.LiveBuffers())
	assert.Equal(t, 1, rec.Count("BufferData(1, "+fmt.Sprint(2*initialCapacity*4)+")"))
}

func TestIndexedImageUploadStopsAtUnpublished(t *testing.T) {
	rec, thread := newEnv()
	img := NewIndexedImage[uint32](rec, thread, uint32Encoder{}, gpu.FormatR32I)

	img.Add(1)
	img.Add(2)
	// Simula um escritor que reservou o índice 2 mas ainda não publicou.
	img.next.Add(1)
	img.Add(4)

	img.Upload()
	assert.Equal(t, 2, img.Uploaded())
	_, ok := img.Get(2)
	assert.False(t, ok)
	v, ok := img.Get(3)
	assert.True(t, ok)
	assert.Equal(t, uint32(4), v)
}

func TestIndexedImageClear(t *testing.T) {
	rec, thread := newEnv()
	img := NewIndexedImage[uint32](rec, thread, uint32Encoder{}, gpu.FormatR32I)
	img.Add(5)
	img.Upload()

	img.Clear()
	assert.Zero(t, img.Len())
	assert.Zero(t, img.Uploaded())
	assert.Zero(t, img.TextureID())
	assert.Zero(t, rec.LiveBuffers())
	_, ok := img.Get(0)
	assert.False(t, ok)

	assert.Equal(t, 0, img.Add(6))
	assert.True(t, img.Upload())
}

func TestLookupImageSlots(t *testing.T) {
	rec, thread := newEnv()
	img := NewLookupImage(rec, thread, 3)

	a := img.CreateIndexForValue(10)
	b := img.CreateIndexForValue(20)
	assert.Equal(t, []int{0, 1}, []int{a, b})

	img.ReleaseIndex(a)
	v, ok := img.Value(a)
	assert.False(t, ok)
	assert.Equal(t, FreeSlot, v)

	// O cursor só volta ao slot liberado depois de dar a volta.
	assert.Equal(t, 2, img.CreateIndexForValue(30))
	assert.Equal(t, 0, img.CreateIndexForValue(40))
	assert.Equal(t, 3, img.Used())

	assert.PanicsWithValue(t, "gpuimage: lookup image cheia (3 slots)", func() { img.CreateIndexForValue(50) })
	assert.Equal(t, 3, img.Used())
}

func TestLookupImageFreeSlotMisuse(t *testing.T) {
	rec, thread := newEnv()
	img := NewLookupImage(rec, thread, 2)

	assert.Panics(t, func() { img.ReleaseIndex(0) })
	assert.Panics(t, func() { img.ChangeValueForIndex(1, 3) })
	assert.Panics(t, func() { img.ReleaseIndex(5) })
	assert.Panics(t, func() { img.CreateIndexForValue(FreeSlot) })
}

func TestLookupImageUploadWhenDirty(t *testing.T) {
	rec, thread := newEnv()
	img := NewLookupImage(rec, thread, 4)

	assert.True(t, img.Upload(), "o primeiro upload cria o buffer")
	buf := rec.Buffer(1)
	require.Len(t, buf, 16)
	assert.Equal(t, uint32(0xFFFFFFFF), binary.LittleEndian.Uint32(buf))

	rec.Reset()
	assert.False(t, img.Upload())
	assert.Empty(t, rec.Calls())

	i := img.CreateIndexForValue(7)
	img.ChangeValueForIndex(i, 9)
	assert.False(t, img.Upload())
	assert.Equal(t, []string{
		"BindBuffer(1, 1)",
		"BufferSubData(1, 0, 16)",
		"BindBuffer(1, 0)",
	}, rec.Calls())
	assert.Equal(t, uint32(9), binary.LittleEndian.Uint32(rec.Buffer(1)))

	rec.Reset()
	img.ChangeValueForIndex(i, 9)
	img.Upload()
	assert.Empty(t, rec.Calls(), "valor igual não suja a imagem")
}

func TestLookupImageClear(t *testing.T) {
	rec, thread := newEnv()
	img := NewLookupImage(rec, thread, 2)
	img.CreateIndexForValue(1)
	img.Upload()

	img.Clear()
	assert.Zero(t, img.Used())
	assert.Zero(t, img.TextureID())
	assert.Zero(t, rec.LiveBuffers())
	assert.Equal(t, 0, img.CreateIndexForValue(3))
}
