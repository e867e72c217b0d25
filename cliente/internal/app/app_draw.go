package app

import (
	"fmt"
	"log"
	"time"

	"Luminar/cliente/internal/gpu"
	"Luminar/cliente/internal/pipeline"
	"Luminar/cliente/internal/render"
	"Luminar/shared/inspect"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ProgramTerrain é o programa que desenha a geometria das regiões.
const ProgramTerrain = "terrain"

type terrainUniforms struct {
	program          uint32
	viewProjection   int32
	regionOrigin     int32
	lightDescriptors int32
}

// initTerrainProgram resolve o programa de terreno e seus uniforms.
func (a *App) initTerrainProgram() {
	id, ok := a.resources.Program(ProgramTerrain)
	if !ok {
		log.Printf("[Render] Programa %s indisponível; terreno não será desenhado", ProgramTerrain)
		a.terrain = terrainUniforms{}
		return
	}
	a.terrain = terrainUniforms{
		program:          id,
		viewProjection:   a.dev.UniformLocation(id, "viewProjection"),
		regionOrigin:     a.dev.UniformLocation(id, "regionOrigin"),
		lightDescriptors: a.dev.UniformLocation(id, "lightDescriptors"),
	}
}

// DrawScene desenha as regiões visíveis no framebuffer ligado pelo passe de
// cena: sólidas da mais próxima para a mais distante, depois translúcidas
// no sentido inverso.
func (a *App) DrawScene(ctx *gpu.StateContext, frame pipeline.Frame) {
	u := a.terrain
	if u.program == 0 {
		return
	}
	dev := ctx.Device()
	aspect := float32(frame.Width) / float32(max(frame.Height, 1))

	dev.UseProgram(u.program)
	if u.viewProjection >= 0 {
		dev.UniformMatrix4(u.viewProjection, a.Cam.ViewProjection(aspect))
	}
	dev.ActiveTexture(0)
	dev.BindTexture(gpu.TextureBufferTarget, a.registry.TextureID())
	if u.lightDescriptors >= 0 {
		dev.Uniform1i(u.lightDescriptors, 0)
	}

	visible := a.regions.Visible(a.Cam.Eye(), a.Config.DrawDistance)
	solid := render.BuildDrawList(visible, false)
	translucent := render.BuildDrawList(visible, true)
	a.frame.solidDraws = solid.Draw(ctx, a.thread, u.regionOrigin)
	a.frame.translucentDraws = translucent.Draw(ctx, a.thread, u.regionOrigin)
	solid.Release()
	translucent.Release()

	dev.BindTexture(gpu.TextureBufferTarget, 0)
	dev.UseProgram(0)
}

// draw renderiza o frame: pipeline (que chama DrawScene) e depois o HUD.
func (a *App) draw() {
	start := time.Now()

	if _, err := a.manager.ReloadIfDirty(); err != nil {
		log.Printf("[Render] Pipeline mantido após erro: %v", err)
	}
	if rl.IsWindowResized() {
		w, h := a.frameSize()
		a.manager.Resize(w, h)
	}

	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(20, 20, 28, 255))
	// O lote pendente do raylib precisa sair antes das chamadas diretas.
	rl.DrawRenderBatchActive()

	a.frame.solidDraws, a.frame.translucentDraws = 0, 0
	a.frame.passes = a.manager.Execute(a.ctx)
	a.ctx.Reset()

	a.drawHUD()
	if a.State == StatePaused {
		a.drawPauseBanner()
	}
	rl.EndDrawing()

	a.frame.micros = time.Since(start).Microseconds()
	a.publishStats()
}

// publishStats envia o resumo do frame aos inspetores conectados.
func (a *App) publishStats() {
	if a.hub == nil || a.hub.Clients() == 0 {
		return
	}
	a.hub.Publish(inspect.FrameStats{
		Frame:            a.frameCount,
		FrameMicros:      a.frame.micros,
		Regions:          int32(a.regions.Len()),
		SolidDraws:       int32(a.frame.solidDraws),
		TranslucentDraws: int32(a.frame.translucentDraws),
		Passes:           int32(a.frame.passes),
		TrackedEntities:  int32(a.tracker.Tracked()),
		LightDescriptors: int32(a.registry.Len()),
		PendingMeshes:    int32(a.mesher.Pending()),
		PipelineReloads:  a.manager.Reloads(),
	})
}

// drawHUD desenha a interface sobreposta.
func (a *App) drawHUD() {
	if !a.Config.ShowDebugInfo {
		return
	}

	width := int32(340)
	height := int32(250)
	x := int32(rl.GetScreenWidth()) - width - 10
	y := int32(10)

	rl.DrawRectangle(x, y, width, height, rl.NewColor(0, 0, 0, 180))
	rl.DrawRectangleLines(x, y, width, height, rl.NewColor(50, 50, 50, 255))

	fps := rl.GetFPS()
	fpsColor := rl.Green
	if fps < 30 {
		fpsColor = rl.Red
	} else if fps < 50 {
		fpsColor = rl.Yellow
	}
	rl.DrawText(fmt.Sprintf("FPS: %d", fps), x+10, y+10, 20, fpsColor)
	rl.DrawText(fmt.Sprintf("%.2f ms", float64(a.frame.micros)/1000), x+215, y+10, 20, rl.SkyBlue)

	rl.DrawLine(x+10, y+35, x+width-10, y+35, rl.NewColor(100, 100, 100, 100))

	rl.DrawText("GEOMETRIA", x+10, y+45, 12, rl.Gray)
	rl.DrawText(fmt.Sprintf("Regiões: %d | Pendentes: %d", a.regions.Len(), a.mesher.Pending()), x+10, y+60, 16, rl.White)
	rl.DrawText(fmt.Sprintf("Draws: %d sólidos, %d translúcidos", a.frame.solidDraws, a.frame.translucentDraws), x+10, y+80, 14, rl.LightGray)

	rl.DrawLine(x+10, y+100, x+width-10, y+100, rl.NewColor(100, 100, 100, 100))

	rl.DrawText("LUZES", x+10, y+110, 12, rl.Gray)
	rl.DrawText(fmt.Sprintf("Entidades: %d | Descritores: %d", a.tracker.Tracked(), a.registry.Len()), x+10, y+125, 14, rl.LightGray)
	rl.DrawText(fmt.Sprintf("Slots: %d/%d | Posições: %d", a.lookup.Used(), a.lookup.Capacity(), a.world.Lights.Len()), x+10, y+140, 14, rl.LightGray)

	rl.DrawLine(x+10, y+160, x+width-10, y+160, rl.NewColor(100, 100, 100, 100))

	rl.DrawText("PIPELINE", x+10, y+170, 12, rl.Gray)
	rl.DrawText(fmt.Sprintf("Passes: %d | Recarregamentos: %d", a.frame.passes, a.manager.Reloads()), x+10, y+185, 14, rl.LightGray)
	rl.DrawText(a.toggleSummary(), x+10, y+205, 14, rl.SkyBlue)
	rl.DrawText("F1: Bloom | F2: Faixa | F5: Recarregar | P: Projeção", x+10, y+225, 12, rl.Gray)

	title := "Luminar v0.1.0"
	titleWidth := rl.MeasureText(title, 18)
	rl.DrawText(title,
		int32(rl.GetScreenWidth())-titleWidth-20, int32(rl.GetScreenHeight())-30,
		18, rl.NewColor(200, 200, 200, 150))
}

func (a *App) toggleSummary() string {
	s := ""
	for _, t := range toggleKeys {
		mark := "off"
		if a.settings.Enabled(t.name) {
			mark = "on"
		}
		s += fmt.Sprintf("%s:%s ", t.name, mark)
	}
	return s
}

// drawPauseBanner indica que a simulação está parada.
func (a *App) drawPauseBanner() {
	text := "PAUSADO (ESC)"
	w := rl.MeasureText(text, 24)
	rl.DrawText(text, (int32(rl.GetScreenWidth())-w)/2, 20, 24, rl.Gold)
}
