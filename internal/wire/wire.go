// Package wire encodes and decodes the websocket messages described in
// proto/contagion.proto. The bindings are written directly against
// encoding/protowire, so the schema file stays the single source of truth
// without generated code in the tree.
package wire

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Frame is one live snapshot of a running simulation.
type Frame struct {
	Time   float64
	X      []float64
	Y      []float64
	Health []uint32

	Susceptible uint32
	Infected    uint32
	Recovered   uint32
}

// Control adjusts a live run.
type Control struct {
	Paused bool
	Reset  bool
}

// MarshalFrame serialises f to protobuf wire format.
func MarshalFrame(f *Frame) []byte {
	b := make([]byte, 0, 16+16*len(f.X)+2*len(f.Health))
	b = protowire.AppendTag(b, 1, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(f.Time))
	b = appendPackedDoubles(b, 2, f.X)
	b = appendPackedDoubles(b, 3, f.Y)
	b = appendPackedUint32s(b, 4, f.Health)
	b = protowire.AppendTag(b, 5, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(f.Susceptible))
	b = protowire.AppendTag(b, 6, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(f.Infected))
	b = protowire.AppendTag(b, 7, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(f.Recovered))
	return b
}

// UnmarshalFrame parses a Frame from protobuf wire format, skipping unknown
// fields.
func UnmarshalFrame(b []byte) (*Frame, error) {
	f := &Frame{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("frame: malformed tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == 1 && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return nil, fmt.Errorf("frame: time: %w", protowire.ParseError(n))
			}
			f.Time = math.Float64frombits(v)
			b = b[n:]
		case num == 2 && typ == protowire.BytesType:
			vals, n, err := consumePackedDoubles(b)
			if err != nil {
				return nil, fmt.Errorf("frame: x: %w", err)
			}
			f.X = vals
			b = b[n:]
		case num == 3 && typ == protowire.BytesType:
			vals, n, err := consumePackedDoubles(b)
			if err != nil {
				return nil, fmt.Errorf("frame: y: %w", err)
			}
			f.Y = vals
			b = b[n:]
		case num == 4 && typ == protowire.BytesType:
			vals, n, err := consumePackedUint32s(b)
			if err != nil {
				return nil, fmt.Errorf("frame: health: %w", err)
			}
			f.Health = vals
			b = b[n:]
		case num >= 5 && num <= 7 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("frame: count field %d: %w", num, protowire.ParseError(n))
			}
			switch num {
			case 5:
				f.Susceptible = uint32(v)
			case 6:
				f.Infected = uint32(v)
			case 7:
				f.Recovered = uint32(v)
			}
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("frame: field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return f, nil
}

// MarshalControl serialises c to protobuf wire format.
func MarshalControl(c *Control) []byte {
	var b []byte
	if c.Paused {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	if c.Reset {
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	return b
}

// UnmarshalControl parses a Control from protobuf wire format.
func UnmarshalControl(b []byte) (*Control, error) {
	c := &Control{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("control: malformed tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		if typ == protowire.VarintType && (num == 1 || num == 2) {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("control: field %d: %w", num, protowire.ParseError(n))
			}
			if num == 1 {
				c.Paused = v != 0
			} else {
				c.Reset = v != 0
			}
			b = b[n:]
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return nil, fmt.Errorf("control: field %d: %w", num, protowire.ParseError(n))
		}
		b = b[n:]
	}
	return c, nil
}

func appendPackedDoubles(b []byte, num protowire.Number, vals []float64) []byte {
	if len(vals) == 0 {
		return b
	}
	payload := make([]byte, 0, 8*len(vals))
	for _, v := range vals {
		payload = protowire.AppendFixed64(payload, math.Float64bits(v))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, payload)
}

func consumePackedDoubles(b []byte) ([]float64, int, error) {
	payload, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}
	vals := make([]float64, 0, len(payload)/8)
	for len(payload) > 0 {
		v, m := protowire.ConsumeFixed64(payload)
		if m < 0 {
			return nil, 0, protowire.ParseError(m)
		}
		vals = append(vals, math.Float64frombits(v))
		payload = payload[m:]
	}
	return vals, n, nil
}

func appendPackedUint32s(b []byte, num protowire.Number, vals []uint32) []byte {
	if len(vals) == 0 {
		return b
	}
	var payload []byte
	for _, v := range vals {
		payload = protowire.AppendVarint(payload, uint64(v))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, payload)
}

func consumePackedUint32s(b []byte) ([]uint32, int, error) {
	payload, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}
	var vals []uint32
	for len(payload) > 0 {
		v, m := protowire.ConsumeVarint(payload)
		if m < 0 {
			return nil, 0, protowire.ParseError(m)
		}
		vals = append(vals, uint32(v))
		payload = payload[m:]
	}
	return vals, n, nil
}
