// Package world é o mundo de demonstração do Luminar: um relevo procedural
// codificado em quads para o mesher e algumas entidades que carregam luz.
package world

import (
	"math"
	"sync"

	"Luminar/cliente/internal/lights"
	"Luminar/cliente/internal/meshing"
	"Luminar/shared/util"
)

const (
	// WaterLevel é a altura da superfície da água.
	WaterLevel = 6
	// SkyLight é o valor do canal de luz do céu em faces expostas.
	SkyLight = 15

	baseHeight = 8
)

// World guarda as versões das regiões e as luzes virtuais. EncodeRegion roda
// nas goroutines do mesher; o resto, na thread principal.
type World struct {
	seed float64

	mu       sync.RWMutex
	versions map[util.RegionCoord]int64

	Lights *lights.VirtualLightMap

	entities []*Entity
	nextID   int64
}

// New cria um mundo. A semente desloca o padrão do relevo.
func New(seed int64) *World {
	w := &World{
		seed:     float64(seed%1000) * 0.37,
		versions: make(map[util.RegionCoord]int64),
	}
	w.Lights = lights.NewVirtualLightMap(w.Touch)
	return w
}

// Height retorna a altura do bloco de superfície da coluna (x, z).
func (w *World) Height(x, z int32) int32 {
	fx, fz := float64(x)+w.seed, float64(z)-w.seed
	h := math.Sin(fx*0.07)*4 + math.Cos(fz*0.05)*5 + math.Sin((fx+fz)*0.021)*3
	return baseHeight + int32(math.Floor(h))
}

// Version retorna a versão atual dos dados da região. Começa em 1.
func (w *World) Version(coord util.RegionCoord) int64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.versions[coord] + 1
}

// Touch invalida a região de pos e a de baixo: a face superior de um bloco
// lê a luz do bloco acima, que pode cair na região vizinha.
func (w *World) Touch(pos util.BlockPos) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.versions[util.RegionOf(pos)]++
	below := util.RegionOf(pos.Add(util.NewBlockPos(0, -1, 0)))
	if below != util.RegionOf(pos) {
		w.versions[below]++
	}
}

// lightAt retorna o primeiro descritor presente em pos.
func (w *World) lightAt(pos util.BlockPos) uint16 {
	ds := w.Lights.LightAt(pos)
	if len(ds) == 0 {
		return uint16(lights.NoLight)
	}
	return uint16(ds[0])
}

func surfaceColor(h int32) [4]uint8 {
	switch {
	case h <= WaterLevel:
		return [4]uint8{194, 178, 128, 255} // areia
	case h >= baseHeight+8:
		return [4]uint8{128, 128, 128, 255} // rocha
	}
	return [4]uint8{86, 152, 64, 255}
}

var waterColor = [4]uint8{40, 90, 180, 160}

// EncodeRegion emite a face superior de cada coluna, as laterais expostas e a
// superfície da água, com posições relativas à origem da região.
func (w *World) EncodeRegion(origin util.RegionCoord, buf *meshing.MeshBuffer) error {
	top := origin.Y + util.RegionSize
	for lx := int32(0); lx < util.RegionSize; lx++ {
		for lz := int32(0); lz < util.RegionSize; lz++ {
			x, z := origin.X+lx, origin.Z+lz
			h := w.Height(x, z)
			fx, fz := float32(lx), float32(lz)

			if h >= origin.Y && h < top {
				y := float32(h + 1 - origin.Y)
				l := [2]uint16{w.lightAt(util.NewBlockPos(x, h+1, z)), SkyLight}
				c := surfaceColor(h)
				buf.AddQuad(false,
					vertex(fx, y, fz, c, 0, 0, l),
					vertex(fx, y, fz+1, c, 0, 1, l),
					vertex(fx+1, y, fz+1, c, 1, 1, l),
					vertex(fx+1, y, fz, c, 1, 0, l),
				)
			}
			w.encodeSides(origin, buf, x, z, h)

			if h+1 < WaterLevel && WaterLevel-1 >= origin.Y && WaterLevel-1 < top {
				y := float32(WaterLevel - origin.Y)
				l := [2]uint16{uint16(lights.NoLight), SkyLight}
				buf.AddQuad(true,
					vertex(fx, y, fz, waterColor, 0, 0, l),
					vertex(fx, y, fz+1, waterColor, 0, 1, l),
					vertex(fx+1, y, fz+1, waterColor, 1, 1, l),
					vertex(fx+1, y, fz, waterColor, 1, 0, l),
				)
			}
		}
	}
	return nil
}

type side struct {
	dx, dz int32
	// cantos da face em coordenadas locais da coluna
	ax, az, bx, bz float32
}

var sides = [4]side{
	{dx: 1, ax: 1, az: 0, bx: 1, bz: 1},
	{dx: -1, ax: 0, az: 1, bx: 0, bz: 0},
	{dz: 1, ax: 1, az: 1, bx: 0, bz: 1},
	{dz: -1, ax: 0, az: 0, bx: 1, bz: 0},
}

// encodeSides emite as faces laterais dos blocos da coluna que ficam acima
// da coluna vizinha.
func (w *World) encodeSides(origin util.RegionCoord, buf *meshing.MeshBuffer, x, z, h int32) {
	lx, lz := float32(x-origin.X), float32(z-origin.Z)
	for _, s := range sides {
		nh := w.Height(x+s.dx, z+s.dz)
		lo := max(nh+1, origin.Y)
		hi := min(h, origin.Y+util.RegionSize-1)
		for y := lo; y <= hi; y++ {
			fy := float32(y - origin.Y)
			l := [2]uint16{w.lightAt(util.NewBlockPos(x+s.dx, y, z+s.dz)), SkyLight / 2}
			c := [4]uint8{120, 96, 72, 255}
			buf.AddQuad(false,
				vertex(lx+s.ax, fy+1, lz+s.az, c, 0, 0, l),
				vertex(lx+s.ax, fy, lz+s.az, c, 0, 1, l),
				vertex(lx+s.bx, fy, lz+s.bz, c, 1, 1, l),
				vertex(lx+s.bx, fy+1, lz+s.bz, c, 1, 0, l),
			)
		}
	}
}

func vertex(x, y, z float32, c [4]uint8, u, v float32, l [2]uint16) meshing.Vertex {
	return meshing.Vertex{Pos: [3]float32{x, y, z}, Color: c, UV: [2]float32{u, v}, Light: l}
}
