package util

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// BlockPos representa a posição inteira de um bloco no mundo.
// X = leste/oeste, Y = vertical, Z = norte/sul
type BlockPos struct {
	X, Y, Z int32
}

// NewBlockPos cria uma nova posição de bloco.
func NewBlockPos(x, y, z int32) BlockPos {
	return BlockPos{X: x, Y: y, Z: z}
}

// BlockPosOf converte uma posição contínua do mundo para o bloco que a contém.
func BlockPosOf(v mgl32.Vec3) BlockPos {
	return BlockPos{
		X: int32(math.Floor(float64(v.X()))),
		Y: int32(math.Floor(float64(v.Y()))),
		Z: int32(math.Floor(float64(v.Z()))),
	}
}

// Add soma duas posições.
func (p BlockPos) Add(other BlockPos) BlockPos {
	return BlockPos{X: p.X + other.X, Y: p.Y + other.Y, Z: p.Z + other.Z}
}

// String retorna a representação em string da posição.
func (p BlockPos) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z)
}

// Layout do empacotamento: 26 bits X, 12 bits Y, 26 bits Z (complemento de dois).
const (
	packBitsXZ = 26
	packBitsY  = 12
	packMaskXZ = 1<<packBitsXZ - 1
	packMaskY  = 1<<packBitsY - 1
	packShiftX = packBitsY + packBitsXZ
	packShiftZ = packBitsY
)

// Pack empacota a posição em um único int64.
func (p BlockPos) Pack() int64 {
	return (int64(p.X)&packMaskXZ)<<packShiftX | (int64(p.Z)&packMaskXZ)<<packShiftZ | int64(p.Y)&packMaskY
}

// UnpackBlockPos desfaz Pack, restaurando o sinal de cada componente.
func UnpackBlockPos(packed int64) BlockPos {
	return BlockPos{
		X: int32(packed << (64 - packShiftX - packBitsXZ) >> (64 - packBitsXZ)),
		Y: int32(packed << (64 - packBitsY) >> (64 - packBitsY)),
		Z: int32(packed << (64 - packShiftZ - packBitsXZ) >> (64 - packBitsXZ)),
	}
}

// RegionSize é a aresta, em blocos, de uma região renderizável (cubo 16x16x16).
const RegionSize = 16

// RegionCoord identifica uma região pela posição do seu canto mínimo.
type RegionCoord struct {
	X, Y, Z int32
}

// RegionOf retorna a região que contém o bloco.
func RegionOf(p BlockPos) RegionCoord {
	return RegionCoord{
		X: floorDiv(p.X, RegionSize) * RegionSize,
		Y: floorDiv(p.Y, RegionSize) * RegionSize,
		Z: floorDiv(p.Z, RegionSize) * RegionSize,
	}
}

// Origin retorna o bloco de origem da região.
func (c RegionCoord) Origin() BlockPos {
	return BlockPos{X: c.X, Y: c.Y, Z: c.Z}
}

// Center retorna o centro da região em coordenadas do mundo.
func (c RegionCoord) Center() mgl32.Vec3 {
	const half = RegionSize / 2
	return mgl32.Vec3{float32(c.X + half), float32(c.Y + half), float32(c.Z + half)}
}

// String retorna a representação em string da região.
func (c RegionCoord) String() string {
	return fmt.Sprintf("R(%d, %d, %d)", c.X, c.Y, c.Z)
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Pack empacota a origem da região (ver BlockPos.Pack).
func (c RegionCoord) Pack() int64 {
	return c.Origin().Pack()
}
