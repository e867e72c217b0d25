package app

import (
	"log"

	"Luminar/cliente/internal/camera"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// toggleKeys liga teclas de função às chaves de passe persistidas.
var toggleKeys = []struct {
	key  int32
	name string
}{
	{rl.KeyF1, "bloom"},
	{rl.KeyF2, "entityDebug"},
}

// updateCamera atualiza a câmera baseado no input.
func (a *App) updateCamera(dt float32) {
	a.Cam.HandleInput(dt)
	a.Cam.Update(dt)

	if rl.IsKeyPressed(rl.KeyP) {
		if a.Cam.Mode == camera.ModePerspective {
			a.Cam.SetMode(camera.ModeOrthographic)
			log.Println("[Camera] Modo Ortográfico")
		} else {
			a.Cam.SetMode(camera.ModePerspective)
			log.Println("[Camera] Modo Perspectiva")
		}
	}
}

// updateInput processa entradas de teclado gerais.
func (a *App) updateInput() {
	if rl.IsKeyPressed(rl.KeyF3) {
		a.Config.ShowDebugInfo = !a.Config.ShowDebugInfo
	}

	for _, t := range toggleKeys {
		if rl.IsKeyPressed(t.key) {
			on, err := a.settings.Toggle(t.name)
			if err == nil {
				log.Printf("[App] Passe %s -> %v", t.name, on)
			}
		}
	}

	// F5 recompila os programas e recarrega o pipeline do disco.
	if rl.IsKeyPressed(rl.KeyF5) {
		a.reloadPipeline()
	}

	// R reinicia luzes e geometria (reconstruídas nos próximos frames).
	if rl.IsKeyPressed(rl.KeyR) {
		a.fullReset()
	}

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeyEscape) {
		if a.State == StateViewing {
			a.State = StatePaused
			log.Println("[App] Simulação Pausada")
		} else {
			a.State = StateViewing
			log.Println("[App] Retomando Simulação")
		}
	}
}

// reloadPipeline recompila os programas num conjunto novo e recarrega o
// pipeline com ele. Os programas antigos só são descartados depois que o
// pipeline novo carregou; em caso de erro tudo continua como estava.
func (a *App) reloadPipeline() {
	next := a.resources.fork()
	if err := a.manager.ReloadWith(next); err != nil {
		next.Close()
		log.Printf("[App] Recarregamento abortado, programas atuais mantidos: %v", err)
		return
	}
	a.resources.Close()
	a.resources = next
	a.dev.ForgetUniforms()
	a.initTerrainProgram()
}

// fullReset esquece o rastreamento de luzes e as malhas em cache. As regiões
// carregadas ficam na tela até os resultados novos as substituírem.
func (a *App) fullReset() {
	a.tracker.Reset()
	a.resultStore.Clear()
	clear(a.requested)
	log.Println("[App] Luzes e geometria reiniciadas")
}
