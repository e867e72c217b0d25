package app

import (
	"log"
	"maps"
	"os"
	"path/filepath"

	"Luminar/cliente/internal/gpu"
	"Luminar/cliente/internal/pipeline"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Nomes das texturas externas disponíveis aos passes do pipeline.
const (
	TextureLightDescriptors = "lightDescriptors"
	TextureEntityLights     = "entityLights"
)

// resources compila os programas pedidos pelo pipeline e expõe as texturas
// que o pipeline não cria. Programas vêm de <dir>/<nome>.vs e .fs; sem
// arquivos, usa o código embutido.
type resources struct {
	dir      string
	drawer   pipeline.SceneDrawer
	programs map[string]rl.Shader
	textures map[string]pipeline.TextureSource
}

func newResources(dir string, drawer pipeline.SceneDrawer) *resources {
	return &resources{
		dir:      dir,
		drawer:   drawer,
		programs: make(map[string]rl.Shader),
		textures: make(map[string]pipeline.TextureSource),
	}
}

// AddTexture registra uma textura externa.
func (r *resources) AddTexture(name string, src pipeline.TextureSource) {
	r.textures[name] = src
}

func (r *resources) Texture(name string) (pipeline.TextureSource, bool) {
	src, ok := r.textures[name]
	return src, ok
}

// Program compila (uma vez) e retorna o ID do programa.
func (r *resources) Program(name string) (uint32, bool) {
	if s, ok := r.programs[name]; ok {
		return s.ID, true
	}

	var shader rl.Shader
	vsPath := filepath.Join(r.dir, name+".vs")
	fsPath := filepath.Join(r.dir, name+".fs")
	if fileExists(vsPath) && fileExists(fsPath) {
		shader = rl.LoadShader(vsPath, fsPath)
	} else if src, ok := builtinPrograms[name]; ok {
		shader = rl.LoadShaderFromMemory(src.vertex, src.fragment)
	} else {
		return 0, false
	}

	// raylib devolve o shader padrão quando a compilação falha.
	if shader.ID == 0 || shader.ID == rl.GetShaderIdDefault() {
		log.Printf("[Shaders] Falha ao compilar programa %s", name)
		return 0, false
	}
	log.Printf("[Shaders] Programa %s compilado (id %d)", name, shader.ID)
	r.programs[name] = shader
	return shader.ID, true
}

// DrawScene repassa o passe de cena para quem desenha o mundo.
func (r *resources) DrawScene(ctx *gpu.StateContext, frame pipeline.Frame) {
	if r.drawer != nil {
		r.drawer.DrawScene(ctx, frame)
	}
}

// fork cria um conjunto vazio de programas com as mesmas texturas; o
// chamador decide quando trocar e liberar o anterior.
func (r *resources) fork() *resources {
	next := newResources(r.dir, r.drawer)
	maps.Copy(next.textures, r.textures)
	log.Println("[Shaders] Recompilando programas")
	return next
}

// Close libera os programas.
func (r *resources) Close() {
	for name, s := range r.programs {
		rl.UnloadShader(s)
		delete(r.programs, name)
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
