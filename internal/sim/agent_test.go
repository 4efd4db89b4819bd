package sim

import (
	"math"
	"testing"
)

func TestMoveReflectsOffUpperWall(t *testing.T) {
	// Starting at L-eps with vx*dt > eps must clamp to the wall and flip vx.
	a := Agent{X: 9.9, Y: 5, VX: 2, VY: 0}
	a.Move(0.1, 10)

	if a.X != 10 {
		t.Fatalf("expected X clamped to 10, got %v", a.X)
	}
	if a.VX != -2 {
		t.Fatalf("expected VX flipped to -2, got %v", a.VX)
	}
	if a.Y != 5 || a.VY != 0 {
		t.Fatalf("expected Y axis untouched, got Y=%v VY=%v", a.Y, a.VY)
	}
}

func TestMoveReflectsOffLowerWall(t *testing.T) {
	a := Agent{X: 0.05, Y: 5, VX: -2, VY: 0}
	a.Move(0.1, 10)

	if a.X != 0 {
		t.Fatalf("expected X clamped to 0, got %v", a.X)
	}
	if a.VX != 2 {
		t.Fatalf("expected VX flipped to 2, got %v", a.VX)
	}
}

func TestMoveCornerReflectsBothAxes(t *testing.T) {
	a := Agent{X: 9.95, Y: 9.9, VX: 1, VY: 2}
	a.Move(0.1, 10)

	if a.X != 10 || a.Y != 10 {
		t.Fatalf("expected clamp to corner (10,10), got (%v,%v)", a.X, a.Y)
	}
	if a.VX != -1 || a.VY != -2 {
		t.Fatalf("expected both components flipped, got VX=%v VY=%v", a.VX, a.VY)
	}
}

func TestMoveInsideDomainKeepsVelocity(t *testing.T) {
	a := Agent{X: 5, Y: 5, VX: 1, VY: -1}
	a.Move(0.1, 10)

	if a.X != 5.1 || a.Y != 4.9 {
		t.Fatalf("expected plain Euler step, got (%v,%v)", a.X, a.Y)
	}
	if a.VX != 1 || a.VY != -1 {
		t.Fatalf("expected velocity unchanged, got VX=%v VY=%v", a.VX, a.VY)
	}
}

func TestDistanceTo(t *testing.T) {
	a := Agent{X: 0, Y: 0}
	b := Agent{X: 3, Y: 4}
	if got := a.DistanceTo(b); math.Abs(got-5) > 1e-12 {
		t.Fatalf("expected distance 5, got %v", got)
	}
}
