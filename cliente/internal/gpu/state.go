package gpu

// DepthTest é o modo de teste de profundidade de um material.
type DepthTest int

const (
	DepthNone DepthTest = iota
	DepthAlways
	DepthEqual
	DepthLessEqual
)

func (d DepthTest) activate(dev Device) {
	switch d {
	case DepthAlways:
		dev.Enable(CapDepthTest)
		dev.DepthFunc(DepthFuncAlways)
	case DepthEqual:
		dev.Enable(CapDepthTest)
		dev.DepthFunc(DepthFuncEqual)
	case DepthLessEqual:
		dev.Enable(CapDepthTest)
		dev.DepthFunc(DepthFuncLessEqual)
	}
}

func (d DepthTest) deactivate(dev Device) {
	if d != DepthNone {
		dev.Disable(CapDepthTest)
	}
}

// DecalOffset é o deslocamento de profundidade usado por decalques.
type DecalOffset int

const (
	DecalNone DecalOffset = iota
	DecalPolygon
	DecalView
)

func (d DecalOffset) activate(dev Device) {
	switch d {
	case DecalPolygon:
		dev.Enable(CapPolygonOffsetFill)
		dev.PolygonOffset(-1, -10)
	case DecalView:
		// O deslocamento em view-space é aplicado pelo shader; aqui só um leve bias.
		dev.Enable(CapPolygonOffsetFill)
		dev.PolygonOffset(-0.5, -1)
	}
}

func (d DecalOffset) deactivate(dev Device) {
	if d != DecalNone {
		dev.PolygonOffset(0, 0)
		dev.Disable(CapPolygonOffsetFill)
	}
}

// FogMode é o modo de neblina. Neblina é calculada no shader, então ativar um
// modo só muda o valor exposto no uniform "fogMode" dos programas.
type FogMode int

const (
	FogNone FogMode = iota
	FogLinear
	FogExp
)

// StateContext guarda o valor ativo de cada categoria de estado fixo e só
// conversa com o Device quando o valor muda.
type StateContext struct {
	dev   Device
	depth DepthTest
	decal DecalOffset
	fog   FogMode
}

// NewStateContext cria um contexto com tudo desativado.
func NewStateContext(dev Device) *StateContext {
	return &StateContext{dev: dev}
}

// Device retorna o dispositivo associado.
func (c *StateContext) Device() Device {
	return c.dev
}

// SetDepthTest troca o modo de profundidade ativo.
func (c *StateContext) SetDepthTest(d DepthTest) {
	if c.depth == d {
		return
	}
	c.depth.deactivate(c.dev)
	d.activate(c.dev)
	c.depth = d
}

// SetDecalOffset troca o modo de decalque ativo.
func (c *StateContext) SetDecalOffset(d DecalOffset) {
	if c.decal == d {
		return
	}
	c.decal.deactivate(c.dev)
	d.activate(c.dev)
	c.decal = d
}

// SetFog troca o modo de neblina ativo.
func (c *StateContext) SetFog(f FogMode) {
	c.fog = f
}

// DepthTest retorna o modo de profundidade ativo.
func (c *StateContext) DepthTest() DepthTest { return c.depth }

// DecalOffset retorna o modo de decalque ativo.
func (c *StateContext) DecalOffset() DecalOffset { return c.decal }

// Fog retorna o modo de neblina ativo.
func (c *StateContext) Fog() FogMode { return c.fog }

// Reset desativa todas as categorias. Chamado ao fim do frame e em reloads.
func (c *StateContext) Reset() {
	c.SetDepthTest(DepthNone)
	c.SetDecalOffset(DecalNone)
	c.fog = FogNone
}
