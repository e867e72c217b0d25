// Package inspect publica estatísticas de frame para ferramentas externas
// via WebSocket e recebe delas comandos de toggle de passes.
package inspect

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// FrameStats é o resumo de um frame enviado aos inspetores.
type FrameStats struct {
	Frame            uint64
	FrameMicros      int64
	Regions          int32
	SolidDraws       int32
	TranslucentDraws int32
	Passes           int32
	TrackedEntities  int32
	LightDescriptors int32
	PendingMeshes    int32
	PipelineReloads  int64
}

func (s *FrameStats) Marshal() []byte {
	var b []byte
	b = appendVarint(b, 1, s.Frame)
	b = appendVarint(b, 2, uint64(s.FrameMicros))
	b = appendVarint(b, 3, uint64(s.Regions))
	b = appendVarint(b, 4, uint64(s.SolidDraws))
	b = appendVarint(b, 5, uint64(s.TranslucentDraws))
	b = appendVarint(b, 6, uint64(s.Passes))
	b = appendVarint(b, 7, uint64(s.TrackedEntities))
	b = appendVarint(b, 8, uint64(s.LightDescriptors))
	b = appendVarint(b, 9, uint64(s.PendingMeshes))
	b = appendVarint(b, 10, uint64(s.PipelineReloads))
	return b
}

func (s *FrameStats) Unmarshal(data []byte) error {
	return consumeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ != protowire.VarintType {
			return skipField(num, typ, b)
		}
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}
		switch num {
		case 1:
			s.Frame = v
		case 2:
			s.FrameMicros = int64(v)
		case 3:
			s.Regions = int32(v)
		case 4:
			s.SolidDraws = int32(v)
		case 5:
			s.TranslucentDraws = int32(v)
		case 6:
			s.Passes = int32(v)
		case 7:
			s.TrackedEntities = int32(v)
		case 8:
			s.LightDescriptors = int32(v)
		case 9:
			s.PendingMeshes = int32(v)
		case 10:
			s.PipelineReloads = int64(v)
		}
		return n, nil
	})
}

// ToggleCommand liga ou desliga uma chave de passe.
type ToggleCommand struct {
	Name    string
	Enabled bool
}

func (c *ToggleCommand) Marshal() []byte {
	var b []byte
	if c.Name != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, c.Name)
	}
	return appendVarint(b, 2, protowire.EncodeBool(c.Enabled))
}

func (c *ToggleCommand) Unmarshal(data []byte) error {
	return consumeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			c.Name = v
			return n, nil
		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			c.Enabled = protowire.DecodeBool(v)
			return n, nil
		}
		return skipField(num, typ, b)
	})
}

// appendVarint omite zeros, como o proto3.
func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func skipField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	return n, nil
}

func consumeFields(data []byte, field func(protowire.Number, protowire.Type, []byte) (int, error)) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("tag inválida: %w", protowire.ParseError(n))
		}
		data = data[n:]
		m, err := field(num, typ, data)
		if err != nil {
			return fmt.Errorf("campo %d: %w", num, err)
		}
		data = data[m:]
	}
	return nil
}
