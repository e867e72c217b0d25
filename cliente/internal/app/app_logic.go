package app

import (
	"log"
	"time"

	"Luminar/cliente/internal/meshing"
	"Luminar/shared/util"
)

// regionCheckInterval é de quantos em quantos frames as regiões são revisadas.
const regionCheckInterval = 15

// uploadBudget limita o tempo gasto subindo malhas por frame.
const uploadBudget = 4 * time.Millisecond

// verticalRegions é quantas camadas de região acima de y=0 são pedidas.
const verticalRegions = 2

// updateLights aplica as mudanças das entidades e sobe as imagens de luz.
func (a *App) updateLights() {
	a.tracker.Update()
	if a.registry.Upload() {
		log.Printf("[Lights] Imagem de descritores recriada (%d descritores)", a.registry.Len())
	}
	a.lookup.Upload()
}

// updateRegions pede ao mesher as regiões dentro do raio cuja versão mudou
// e descarta as que saíram dele.
func (a *App) updateRegions() {
	if a.frameCount%regionCheckInterval != 1 {
		return
	}
	center := a.Cam.CurrentLookAt
	radius := a.Config.DrawDistance
	r := int32(radius)/util.RegionSize + 1
	base := util.RegionOf(util.BlockPosOf(center))

	for dx := -r; dx <= r; dx++ {
		for dz := -r; dz <= r; dz++ {
			for dy := int32(-1); dy < verticalRegions; dy++ {
				coord := util.RegionCoord{
					X: base.X + dx*util.RegionSize,
					Y: dy * util.RegionSize,
					Z: base.Z + dz*util.RegionSize,
				}
				if util.DistSq(coord.Center(), center) > radius*radius {
					continue
				}
				a.requestRegion(coord)
			}
		}
	}

	limit := radius * radius
	for coord := range a.requested {
		if util.DistSq(coord.Center(), center) > limit {
			delete(a.requested, coord)
			a.resultStore.Forget(coord)
		}
	}
	a.regions.PurgeOutside(center, radius)
}

// requestRegion enfileira a região se a versão pedida estiver desatualizada.
func (a *App) requestRegion(coord util.RegionCoord) {
	version := a.world.Version(coord)
	if a.requested[coord] == version {
		return
	}
	if a.mesher.Enqueue(meshing.Request{Origin: coord, MTime: version}) {
		a.requested[coord] = version
	}
}

// processMesherResults consome resultados e envia para a GPU dentro do
// orçamento de tempo do frame.
func (a *App) processMesherResults() {
	a.regions.ProcessPurge()

	start := time.Now()
	a.frame.uploads = 0
	for time.Since(start) < uploadBudget {
		select {
		case res := <-a.mesher.Results():
			// Regiões que saíram do raio enquanto eram geradas são ignoradas.
			if _, ok := a.requested[res.Origin]; !ok {
				continue
			}
			a.regions.Upload(res)
			a.frame.uploads++
		default:
			return
		}
	}
}
