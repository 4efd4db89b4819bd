package wire

import (
	"reflect"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	in := &Frame{
		Time:        12.5,
		X:           []float64{0, 1.5, 9.75},
		Y:           []float64{10, 0.25, 3},
		Health:      []uint32{0, 1, 2},
		Susceptible: 1,
		Infected:    1,
		Recovered:   1,
	}

	out, err := UnmarshalFrame(MarshalFrame(in))
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch:\n in=%+v\nout=%+v", in, out)
	}
}

func TestFrameRoundTripEmptyPopulation(t *testing.T) {
	in := &Frame{Time: 0.5}
	out, err := UnmarshalFrame(MarshalFrame(in))
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if out.Time != 0.5 || len(out.X) != 0 || len(out.Health) != 0 {
		t.Fatalf("unexpected frame: %+v", out)
	}
}

func TestControlRoundTrip(t *testing.T) {
	cases := []Control{
		{},
		{Paused: true},
		{Reset: true},
		{Paused: true, Reset: true},
	}
	for _, in := range cases {
		out, err := UnmarshalControl(MarshalControl(&in))
		if err != nil {
			t.Fatalf("unmarshal %+v failed: %v", in, err)
		}
		if *out != in {
			t.Fatalf("round trip mismatch: in=%+v out=%+v", in, *out)
		}
	}
}

func TestUnmarshalFrameRejectsTruncatedPayload(t *testing.T) {
	full := MarshalFrame(&Frame{Time: 1, X: []float64{1, 2, 3}})
	if _, err := UnmarshalFrame(full[:len(full)-3]); err == nil {
		t.Fatal("expected error for truncated payload")
	}
}

func TestUnmarshalSkipsUnknownFields(t *testing.T) {
	// Field 99 should be skipped, not rejected.
	b := MarshalFrame(&Frame{Time: 2})
	b = append(b, 0x98, 0x06, 0x01) // tag 99 varint, value 1
	out, err := UnmarshalFrame(b)
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if out.Time != 2 {
		t.Fatalf("expected time 2, got %v", out.Time)
	}
}
