package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"Luminar/cliente/internal/gpu"
	"Luminar/cliente/internal/gpu/gputest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPipeline = `
images:
  - name: color
    format: rgba16f
  - name: depth
    format: depth32f
  - name: shadow
    format: depth32f
    width: 1024
    height: 1024
    layers: 4
framebuffers:
  - name: scene
    colors:
      - image: color
        clearColor: [0.5, 0.25, 0, 1]
    depth:
      image: depth
  - name: shadow1
    depth:
      image: shadow
      layer: 1
passes:
  - name: clear-scene
    kind: clear
    framebuffer: scene
    toggle: clear
  - name: lighting
    kind: program
    framebuffer: scene
    program: light
    lod: 1
    toggle: lighting
    samplers:
      - uniform: lightDescriptors
        image: lights
        external: true
`

type fakeTexture uint32

func (t fakeTexture) TextureID() uint32 { return uint32(t) }

type fakeResources struct {
	programs map[string]uint32
	textures map[string]TextureSource
}

func (r fakeResources) Program(name string) (uint32, bool) {
	id, ok := r.programs[name]
	return id, ok
}

func (r fakeResources) Texture(name string) (TextureSource, bool) {
	t, ok := r.textures[name]
	return t, ok
}

type fakeToggles map[string]bool

func (t fakeToggles) Enabled(name string) bool {
	on, ok := t[name]
	return !ok || on
}

var testResources = fakeResources{
	programs: map[string]uint32{"light": 900},
	textures: map[string]TextureSource{"lights": fakeTexture(42)},
}

func loadTest(t *testing.T, toggles Toggles) (*Pipeline, *gputest.Recorder, *gpu.RenderThread) {
	t.Helper()
	thread := gpu.NewRenderThread()
	thread.Claim()
	rec := gputest.NewRecorder()
	def, err := ParseDefinition([]byte(testPipeline))
	require.NoError(t, err)
	p, err := Load(rec, thread, def, testResources, toggles, 800, 600)
	require.NoError(t, err)
	return p, rec, thread
}

func TestDisabledPassesIssueNoCalls(t *testing.T) {
	p, rec, _ := loadTest(t, fakeToggles{"clear": false, "lighting": false})
	rec.Reset()

	assert.Zero(t, p.Execute(gpu.NewStateContext(rec)))
	assert.Empty(t, rec.Calls())
}

func TestProgramPassSequence(t *testing.T) {
	p, rec, _ := loadTest(t, fakeToggles{"clear": false})
	fb, ok := p.Framebuffer("scene")
	require.True(t, ok)
	loc := func(name string) int32 { return rec.UniformLocation(900, name) }
	rec.Reset()

	assert.Equal(t, 1, p.Execute(gpu.NewStateContext(rec)))
	assert.Equal(t, []string{
		fmt.Sprintf("BindFramebuffer(%d)", fb),
		"Viewport(0, 0, 400, 300)",
		"ActiveTexture(0)",
		fmt.Sprintf("BindTexture(%d, 42)", gpu.TextureBufferTarget),
		"UseProgram(900)",
		fmt.Sprintf("Uniform1i(%d, 0)", loc("lightDescriptors")),
		fmt.Sprintf("Uniform1i(%d, 1)", loc("lod")),
		fmt.Sprintf("Uniform1i(%d, 0)", loc("layer")),
		fmt.Sprintf("Uniform2f(%d, 400, 300)", loc("frameSize")),
		fmt.Sprintf("UniformMatrix4(%d)", loc("projection")),
		fmt.Sprintf("Uniform1i(%d, 0)", loc("fogMode")),
		"DrawArrays(0, 0, 6)",
		"ActiveTexture(0)",
		"BindFramebuffer(0)",
	}, rec.Calls())
}

func TestClearPassSequence(t *testing.T) {
	p, rec, _ := loadTest(t, fakeToggles{"lighting": false})
	fb, _ := p.Framebuffer("scene")
	rec.Reset()

	assert.Equal(t, 1, p.Execute(gpu.NewStateContext(rec)))
	assert.Equal(t, []string{
		fmt.Sprintf("BindFramebuffer(%d)", fb),
		"Viewport(0, 0, 800, 600)",
		"ClearBufferColor(0, 0.5, 0.25, 0, 1)",
		"Enable(0)",
		"DepthFunc(0)",
		"ClearDepth(1)",
		"Clear(2)",
		"BindFramebuffer(0)",
	}, rec.Calls())
}

func TestLoadCreatesLayeredAttachments(t *testing.T) {
	p, rec, _ := loadTest(t, nil)
	shadow, ok := p.Image("shadow")
	require.True(t, ok)

	assert.Contains(t, rec.Calls(), fmt.Sprintf("TexStorage(%d, 1, %d, 1024, 1024, 4)", gpu.Texture2DArray, gpu.FormatDepth32F))
	assert.Contains(t, rec.Calls(), fmt.Sprintf("FramebufferDepthTexture(%d, 0, 1)", shadow))
	assert.Contains(t, rec.Calls(), "DrawBuffers(0)")
}

func TestIncompleteFramebufferSkipsPass(t *testing.T) {
	thread := gpu.NewRenderThread()
	thread.Claim()
	rec := gputest.NewRecorder()
	rec.Incomplete = true
	def, err := ParseDefinition([]byte(testPipeline))
	require.NoError(t, err)

	p, err := Load(rec, thread, def, testResources, nil, 800, 600)
	require.NoError(t, err)
	_, ok := p.Framebuffer("scene")
	assert.False(t, ok)

	rec.Reset()
	assert.Equal(t, 2, p.Execute(gpu.NewStateContext(rec)))
	assert.Equal(t, []string{"BindFramebuffer(0)"}, rec.Calls())
}

func TestMissingProgramIsNoOp(t *testing.T) {
	thread := gpu.NewRenderThread()
	thread.Claim()
	rec := gputest.NewRecorder()
	def, err := ParseDefinition([]byte(testPipeline))
	require.NoError(t, err)

	p, err := Load(rec, thread, def, fakeResources{}, fakeToggles{"clear": false}, 800, 600)
	require.NoError(t, err)
	rec.Reset()
	p.Execute(gpu.NewStateContext(rec))
	assert.Equal(t, []string{"BindFramebuffer(0)"}, rec.Calls())
}

func TestMissingExternalTextureFailsLoad(t *testing.T) {
	thread := gpu.NewRenderThread()
	thread.Claim()
	rec := gputest.NewRecorder()
	def, err := ParseDefinition([]byte(testPipeline))
	require.NoError(t, err)

	res := fakeResources{programs: testResources.programs}
	_, err = Load(rec, thread, def, res, nil, 800, 600)
	assert.ErrorContains(t, err, `"lights"`)
	assert.Zero(t, rec.Count("GenTexture")-rec.Count("DeleteTexture"), "imagens criadas são liberadas")
}

func TestResizeRebuildsFrameSizedImages(t *testing.T) {
	p, rec, _ := loadTest(t, fakeToggles{"clear": false})
	shadow, _ := p.Image("shadow")
	color, _ := p.Image("color")
	rec.Reset()

	p.Resize(800, 600)
	assert.Empty(t, rec.Calls(), "mesmo tamanho")

	p.Resize(1920, 1080)
	newColor, _ := p.Image("color")
	newShadow, _ := p.Image("shadow")
	assert.NotEqual(t, color, newColor)
	assert.Equal(t, shadow, newShadow)
	assert.Equal(t, 1, rec.Deletions(color))
	assert.Equal(t, Frame{Width: 1920, Height: 1080}, p.Frame())

	rec.Reset()
	p.Execute(gpu.NewStateContext(rec))
	assert.Contains(t, rec.Calls(), "Viewport(0, 0, 960, 540)")
}

func TestValidate(t *testing.T) {
	def := &Definition{
		Images: []ImageDefinition{
			{Name: "color", Format: "rgba8"},
			{Name: "color", Format: "weird"},
		},
		Framebuffers: []FramebufferDefinition{
			{Name: "fb", Colors: []Attachment{{Image: "missing"}}, Depth: &Attachment{Image: "color"}},
		},
		Passes: []PassDefinition{
			{Name: "a", Kind: "blit", Framebuffer: "fb"},
			{Name: "b", Kind: KindProgram, Framebuffer: "nope"},
			{Name: "c", Kind: KindProgram, Program: "x", Samplers: []SamplerDefinition{{Uniform: "s", Image: "ghost"}}},
		},
	}
	err := def.Validate()
	require.Error(t, err)
	for _, want := range []string{
		`imagem "color" duplicada`,
		`formato desconhecido "weird"`,
		`imagem "missing" não existe`,
		`imagem "color" no anexo errado`,
		`tipo desconhecido "blit"`,
		`framebuffer "nope" não existe`,
		"programa não informado",
		`imagem inexistente "ghost"`,
	} {
		assert.ErrorContains(t, err, want)
	}

	ok, err := ParseDefinition([]byte(testPipeline))
	require.NoError(t, err)
	assert.NoError(t, ok.Validate())
}

func writeDefinition(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestManagerReload(t *testing.T) {
	thread := gpu.NewRenderThread()
	thread.Claim()
	rec := gputest.NewRecorder()
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	writeDefinition(t, path, testPipeline)

	m := NewManager(rec, thread, path, testResources, nil, 640, 480)
	var reloaded []*Pipeline
	m.OnReload = func(p *Pipeline) { reloaded = append(reloaded, p) }

	changed, err := m.ReloadIfDirty()
	require.NoError(t, err)
	assert.True(t, changed)
	first := m.Current()
	require.NotNil(t, first)

	changed, err = m.ReloadIfDirty()
	assert.NoError(t, err)
	assert.False(t, changed)

	// Definição quebrada mantém o pipeline anterior.
	writeDefinition(t, path, "passes:\n  - kind: nope\n")
	m.MarkDirty()
	_, err = m.ReloadIfDirty()
	assert.Error(t, err)
	assert.Same(t, first, m.Current())

	writeDefinition(t, path, testPipeline)
	require.NoError(t, m.Reload())
	assert.NotSame(t, first, m.Current())
	assert.Len(t, reloaded, 2)
	assert.Equal(t, int64(2), m.Reloads())

	m.Resize(100, 50)
	assert.Equal(t, Frame{Width: 100, Height: 50}, m.Current().Frame())
	m.Close()
	assert.Nil(t, m.Current())
	assert.Zero(t, m.Execute(gpu.NewStateContext(rec)))
}

func TestManagerReloadWithSwapsResourcesOnlyOnSuccess(t *testing.T) {
	thread := gpu.NewRenderThread()
	thread.Claim()
	rec := gputest.NewRecorder()
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	writeDefinition(t, path, testPipeline)

	m := NewManager(rec, thread, path, testResources, nil, 640, 480)
	require.NoError(t, m.Reload())
	first := m.Current()
	assert.Equal(t, []uint32{900}, programIDs(first))

	recompiled := fakeResources{
		programs: map[string]uint32{"light": 901},
		textures: testResources.textures,
	}

	// Definição quebrada: o pipeline antigo segue com os programas antigos.
	writeDefinition(t, path, "passes:\n  - kind: nope\n")
	assert.Error(t, m.ReloadWith(recompiled))
	assert.Same(t, first, m.Current())
	assert.Equal(t, []uint32{900}, programIDs(m.Current()))

	writeDefinition(t, path, testPipeline)
	require.NoError(t, m.ReloadWith(recompiled))
	assert.Equal(t, []uint32{901}, programIDs(m.Current()))

	// Recarregamentos seguintes usam o conjunto novo.
	require.NoError(t, m.Reload())
	assert.Equal(t, []uint32{901}, programIDs(m.Current()))
	m.Close()
}

func programIDs(p *Pipeline) []uint32 {
	var ids []uint32
	for _, pass := range p.Passes() {
		if pp, ok := pass.(*ProgramPass); ok {
			ids = append(ids, pp.program)
		}
	}
	return ids
}

func TestOutputSizeOverridesEachAxis(t *testing.T) {
	frame := Frame{Width: 800, Height: 600}
	cases := []struct {
		name          string
		pass          ProgramPass
		width, height int32
	}{
		{"frame", ProgramPass{}, 800, 600},
		{"only width", ProgramPass{width: 256}, 256, 600},
		{"only height", ProgramPass{height: 128}, 800, 128},
		{"both with lod", ProgramPass{width: 256, height: 128, lod: 1}, 128, 64},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w, h := c.pass.OutputSize(frame)
			assert.Equal(t, c.width, w)
			assert.Equal(t, c.height, h)
		})
	}
}

func TestWatcherMarksDirty(t *testing.T) {
	thread := gpu.NewRenderThread()
	thread.Claim()
	rec := gputest.NewRecorder()
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	writeDefinition(t, path, testPipeline)

	m := NewManager(rec, thread, path, testResources, nil, 640, 480)
	_, err := m.ReloadIfDirty()
	require.NoError(t, err)

	w, err := Watch(m)
	require.NoError(t, err)
	defer w.Close()

	// Outros arquivos do diretório são ignorados.
	writeDefinition(t, filepath.Join(filepath.Dir(path), "other.yaml"), "x")
	time.Sleep(50 * time.Millisecond)
	assert.False(t, m.dirty.Load())

	writeDefinition(t, path, testPipeline)
	assert.Eventually(t, m.dirty.Load, 2*time.Second, 10*time.Millisecond)

	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

type sceneResources struct {
	fakeResources
	frames []Frame
}

func (r *sceneResources) DrawScene(ctx *gpu.StateContext, frame Frame) {
	ctx.Device().DrawArrays(gpu.Triangles, 0, 3)
	r.frames = append(r.frames, frame)
}

func TestScenePassAndScreenFramebuffer(t *testing.T) {
	thread := gpu.NewRenderThread()
	thread.Claim()
	rec := gputest.NewRecorder()
	def, err := ParseDefinition([]byte(`
images:
  - name: color
    format: rgba8
framebuffers:
  - name: scene
    colors:
      - image: color
passes:
  - name: world
    kind: scene
    framebuffer: scene
  - name: present
    kind: program
    framebuffer: screen
    program: light
    samplers:
      - uniform: sceneColor
        image: color
`))
	require.NoError(t, err)
	res := &sceneResources{fakeResources: testResources}
	p, err := Load(rec, thread, def, res, nil, 320, 200)
	require.NoError(t, err)

	scene, _ := p.Framebuffer("scene")
	screen, ok := p.Framebuffer(ScreenFramebuffer)
	require.True(t, ok)
	assert.Zero(t, screen)
	color, _ := p.Image("color")
	rec.Reset()

	assert.Equal(t, 2, p.Execute(gpu.NewStateContext(rec)))
	assert.Equal(t, []Frame{{Width: 320, Height: 200}}, res.frames)
	calls := rec.Calls()
	require.GreaterOrEqual(t, len(calls), 7)
	assert.Equal(t, []string{
		fmt.Sprintf("BindFramebuffer(%d)", scene),
		"Viewport(0, 0, 320, 200)",
		"DrawArrays(0, 0, 3)",
		"BindFramebuffer(0)",
		"Viewport(0, 0, 320, 200)",
		"ActiveTexture(0)",
		fmt.Sprintf("BindTexture(%d, %d)", gpu.Texture2D, color),
	}, calls[:7])
}

func TestScenePassWithoutDrawerIsNoOp(t *testing.T) {
	thread := gpu.NewRenderThread()
	thread.Claim()
	rec := gputest.NewRecorder()
	def := &Definition{Passes: []PassDefinition{{Name: "world", Kind: KindScene, Framebuffer: ScreenFramebuffer}}}
	p, err := Load(rec, thread, def, testResources, nil, 64, 64)
	require.NoError(t, err)
	rec.Reset()

	assert.Equal(t, 1, p.Execute(gpu.NewStateContext(rec)))
	assert.Equal(t, []string{"BindFramebuffer(0)"}, rec.Calls())
}

func TestScreenNameIsReserved(t *testing.T) {
	def := &Definition{Framebuffers: []FramebufferDefinition{{Name: ScreenFramebuffer}}}
	assert.ErrorContains(t, def.Validate(), `framebuffer "screen" é reservado`)
}

func TestShippedPipelineLoads(t *testing.T) {
	def, err := LoadDefinition(filepath.Join("..", "..", "..", "assets", "pipeline.yaml"))
	require.NoError(t, err)

	thread := gpu.NewRenderThread()
	thread.Claim()
	rec := gputest.NewRecorder()
	res := &sceneResources{fakeResources: fakeResources{
		programs: map[string]uint32{"bloom": 10, "composite": 11, "entity_strip": 12},
		textures: map[string]TextureSource{"lightDescriptors": fakeTexture(1), "entityLights": fakeTexture(2)},
	}}
	p, err := Load(rec, thread, def, res, fakeToggles{"bloom": false, "entityDebug": false}, 1280, 720)
	require.NoError(t, err)

	names := make([]string, 0, len(p.Passes()))
	for _, pass := range p.Passes() {
		names = append(names, pass.Name())
	}
	assert.Equal(t, []string{"clear-scene", "world", "clear-bloom", "bloom", "composite", "entity-strip"}, names)
	assert.Equal(t, 4, p.Execute(gpu.NewStateContext(rec)))
	assert.Len(t, res.frames, 1)
}
