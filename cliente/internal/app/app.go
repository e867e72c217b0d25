package app

import (
	"fmt"
	"log"
	"runtime"

	"Luminar/cliente/internal/camera"
	"Luminar/cliente/internal/gpu"
	"Luminar/cliente/internal/gpuimage"
	"Luminar/cliente/internal/lights"
	"Luminar/cliente/internal/meshing"
	"Luminar/cliente/internal/pipeline"
	"Luminar/cliente/internal/render"
	"Luminar/cliente/internal/world"
	"Luminar/shared/config"
	"Luminar/shared/inspect"
	"Luminar/shared/settings"
	"Luminar/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// AppState representa os estados possíveis da aplicação.
type AppState int

const (
	StateViewing AppState = iota // Visualizando o mundo
	StatePaused                  // Pausado (simulação parada)
)

// App é a aplicação principal do Luminar.
type App struct {
	Config *config.Config
	State  AppState

	Cam *camera.CameraController

	// GPU
	thread *gpu.RenderThread
	dev    *gpu.GLDevice
	ctx    *gpu.StateContext

	// Geometria
	pool        *render.TransferPool
	regions     *render.RegionStore
	resultStore *meshing.ResultStore
	mesher      *meshing.RegionMesher
	requested   map[util.RegionCoord]int64

	// Luzes
	world    *world.World
	catalog  *lights.Catalog
	registry *lights.Registry
	lookup   *gpuimage.LookupImage
	tracker  *lights.Tracker

	// Pipeline
	settings  *settings.Store
	resources *resources
	manager   *pipeline.Manager
	watcher   *pipeline.Watcher
	terrain   terrainUniforms

	hub *inspect.Hub

	frameCount uint64
	simTime    float64
	frame      frameCounters
}

// frameCounters acumula o que o HUD e o inspetor mostram do último frame.
type frameCounters struct {
	micros           int64
	solidDraws       int
	translucentDraws int
	passes           int
	uploads          int
}

// New cria uma nova instância da aplicação.
func New(cfg *config.Config) *App {
	return &App{
		Config:    cfg,
		State:     StateViewing,
		requested: make(map[util.RegionCoord]int64),
	}
}

// Run abre a janela, inicializa os sistemas e roda o loop principal.
// Deve ser chamado da goroutine presa à thread principal do SO.
func (a *App) Run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Erro fatal recuperado: %v", r)
			panic(r)
		}
	}()

	rl.SetConfigFlags(rl.FlagMsaa4xHint | rl.FlagWindowResizable)
	rl.InitWindow(a.Config.WindowWidth, a.Config.WindowHeight, a.Config.WindowTitle)
	rl.SetTraceLogLevel(rl.LogWarning)
	defer rl.CloseWindow()

	if a.Config.Fullscreen {
		rl.ToggleFullscreen()
	}
	rl.SetTargetFPS(a.Config.TargetFPS)
	rl.SetExitKey(0)

	log.Println("[Luminar] Janela inicializada com sucesso")
	log.Printf("[Luminar] Resolução: %dx%d", a.Config.WindowWidth, a.Config.WindowHeight)

	if err := a.init(); err != nil {
		a.shutdown()
		return err
	}

	for !rl.WindowShouldClose() {
		a.update()
		a.draw()
	}

	a.shutdown()
	return nil
}

// init cria os sistemas. Tudo que toca a GPU fica preso a esta goroutine.
func (a *App) init() error {
	a.thread = gpu.NewRenderThread()
	a.thread.SetEnabled(a.Config.RenderThreadChecks)
	a.thread.Claim()

	dev, err := gpu.NewGLDevice()
	if err != nil {
		return err
	}
	a.dev = dev
	a.ctx = gpu.NewStateContext(dev)

	a.Cam = camera.New(a.Config.FOV)
	a.Cam.MoveSpeed = a.Config.CameraSpeed * 5
	a.Cam.ZoomSpeed = a.Config.ZoomSpeed

	store, err := settings.Open(a.Config.SettingsPath)
	if err != nil {
		return fmt.Errorf("falha ao abrir configurações de passes: %w", err)
	}
	a.settings = store

	a.initLights()
	a.initGeometry()

	a.resources = newResources(a.Config.ShaderDir, a)
	a.resources.AddTexture(TextureLightDescriptors, a.registry)
	a.resources.AddTexture(TextureEntityLights, a.lookup)
	a.initTerrainProgram()

	w, h := a.frameSize()
	a.manager = pipeline.NewManager(a.dev, a.thread, a.Config.PipelinePath, a.resources, a.settings, w, h)
	a.manager.OnReload = func(p *pipeline.Pipeline) {
		a.ctx.Reset()
		// Recarregar recursos reinicia o rastreamento das luzes das entidades.
		a.tracker.Reset()
		log.Printf("[App] Pipeline ativo com %d passes", len(p.Passes()))
	}
	if _, err := a.manager.ReloadIfDirty(); err != nil {
		return fmt.Errorf("falha ao carregar pipeline %s: %w", a.Config.PipelinePath, err)
	}
	if a.Config.WatchPipeline {
		if a.watcher, err = pipeline.Watch(a.manager); err != nil {
			log.Printf("[App] Observação do pipeline desativada: %v", err)
		}
	}

	if a.Config.InspectorAddr != "" {
		a.hub = inspect.NewHub()
		a.hub.OnCommand = func(cmd inspect.ToggleCommand) {
			if err := a.settings.Set(cmd.Name, cmd.Enabled); err == nil {
				log.Printf("[Inspect] Passe %s -> %v", cmd.Name, cmd.Enabled)
			}
		}
		go func() {
			if err := a.hub.ListenAndServe(a.Config.InspectorAddr); err != nil {
				log.Printf("[Inspect] Servidor encerrado: %v", err)
			}
		}()
	}
	return nil
}

func (a *App) initLights() {
	catalog, err := lights.LoadCatalog(a.Config.LightCatalogPath)
	if err != nil {
		log.Printf("[Lights] Catálogo indisponível (%v); entidades ficarão sem luz", err)
		catalog = lights.NewCatalog(nil)
	}
	a.catalog = catalog
	a.registry = lights.NewRegistry(a.dev, a.thread)
	a.lookup = gpuimage.NewLookupImage(a.dev, a.thread, a.Config.LookupCapacity)

	a.world = world.New(1)
	a.tracker = lights.NewTracker(a.world, a.catalog, a.registry, a.world.Lights, a.lookup)
	a.spawnDemoEntities()
}

// spawnDemoEntities povoa o mundo com algumas fontes de luz em órbita.
func (a *App) spawnDemoEntities() {
	a.world.Spawn("ITEM:TORCH:NONE", mgl32.Vec3{0, 0, 0}, 6, 0.6)
	a.world.Spawn("ITEM:TORCH:NONE", mgl32.Vec3{24, 0, -12}, 10, -0.4)
	a.world.Spawn("MOB:BLAZE:NONE", mgl32.Vec3{-20, 0, 18}, 14, 0.3)
	a.world.Spawn("ITEM:GLOWSTONE:NONE", mgl32.Vec3{-8, 0, -30}, 0, 0)
	a.world.Spawn("MOB:COW:NONE", mgl32.Vec3{12, 0, 20}, 8, 0.2)
}

func (a *App) initGeometry() {
	workers := a.Config.MesherThreads
	if workers <= 0 {
		workers = max(runtime.NumCPU()-1, 1)
	}
	a.pool = render.NewTransferPool(a.thread)
	a.regions = render.NewRegionStore(a.dev, a.thread, a.pool, meshing.TerrainFormat)
	a.resultStore = meshing.NewResultStore()

	log.Printf("[App] Iniciando Mesher com %d workers (CPU Cores: %d)", workers, runtime.NumCPU())
	a.mesher = meshing.NewRegionMesher(workers, a.world, a.resultStore)
}

// frameSize retorna o tamanho atual do framebuffer da janela.
func (a *App) frameSize() (int32, int32) {
	return int32(rl.GetRenderWidth()), int32(rl.GetRenderHeight())
}

// update atualiza a lógica a cada frame.
func (a *App) update() {
	a.frameCount++
	dt := rl.GetFrameTime()

	a.updateCamera(dt)
	a.updateInput()
	if a.State == StateViewing {
		a.simTime += float64(dt)
		a.world.Step(a.simTime)
	}
	a.updateLights()
	a.updateRegions()
	a.processMesherResults()
}

// shutdown libera os sistemas na ordem inversa da criação.
func (a *App) shutdown() {
	log.Println("[App] Finalizando aplicação...")

	if a.hub != nil {
		a.hub.Close()
	}
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.mesher != nil {
		a.mesher.Stop()
	}
	if a.manager != nil {
		a.manager.Close()
	}
	if a.resources != nil {
		a.resources.Close()
	}
	if a.regions != nil {
		a.regions.Close()
	}
	if a.registry != nil {
		a.registry.Clear()
	}
	if a.lookup != nil {
		a.lookup.Clear()
	}
	if a.dev != nil {
		a.dev.Close()
	}
	if a.settings != nil {
		if err := a.settings.Close(); err != nil {
			log.Printf("[App] Erro ao fechar configurações de passes: %v", err)
		}
	}

	if err := a.Config.Save(); err != nil {
		log.Printf("[Luminar] Erro ao salvar configurações: %v", err)
	}
}
