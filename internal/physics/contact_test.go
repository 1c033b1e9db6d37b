package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestSphereSphereContact(t *testing.T) {
	a := newBall(nil, 0.5, mgl64.Vec3{0, 0, 0})
	b := newBall(nil, 0.5, mgl64.Vec3{0.8, 0, 0})
	a.Velocity = mgl64.Vec3{2, 0, 0}

	cs := collide(a, b)
	if len(cs) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(cs))
	}
	c := cs[0]
	if !c.Normal.ApproxEqualThreshold(mgl64.Vec3{1, 0, 0}, 1e-9) {
		t.Errorf("expected normal +X, got %v", c.Normal)
	}
	if math.Abs(c.Depth-0.2) > 1e-9 {
		t.Errorf("expected depth 0.2, got %f", c.Depth)
	}
	if math.Abs(c.ImpactVelocityAlongNormal()-2) > 1e-9 {
		t.Errorf("expected impact 2, got %f", c.ImpactVelocityAlongNormal())
	}
}

func TestSphereSphereSeparated(t *testing.T) {
	a := newBall(nil, 0.5, mgl64.Vec3{0, 0, 0})
	b := newBall(nil, 0.5, mgl64.Vec3{1.5, 0, 0})
	if cs := collide(a, b); len(cs) != 0 {
		t.Errorf("expected no contacts, got %d", len(cs))
	}
}

func TestSpherePlaneEitherOrder(t *testing.T) {
	floor := newFloor(nil)
	ball := newBall(nil, 0.5, mgl64.Vec3{0, 0.4, 0})

	for _, cs := range [][]*Contact{collide(ball, floor), collide(floor, ball)} {
		if len(cs) != 1 {
			t.Fatalf("expected 1 contact, got %d", len(cs))
		}
		c := cs[0]
		if c.A != ball {
			t.Error("expected sphere as body A")
		}
		if !c.Normal.ApproxEqualThreshold(mgl64.Vec3{0, -1, 0}, 1e-9) {
			t.Errorf("expected normal -Y, got %v", c.Normal)
		}
		if math.Abs(c.Depth-0.1) > 1e-9 {
			t.Errorf("expected depth 0.1, got %f", c.Depth)
		}
	}
}

func TestBoxPlaneCorners(t *testing.T) {
	floor := newFloor(nil)
	box := NewBody(BodyOptions{
		Mass:     1,
		Shape:    &Box{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}},
		Position: mgl64.Vec3{0, 0.45, 0},
	})

	cs := collide(box, floor)
	if len(cs) != 4 {
		t.Fatalf("expected 4 corner contacts, got %d", len(cs))
	}
	for _, c := range cs {
		if math.Abs(c.Depth-0.05) > 1e-9 {
			t.Errorf("expected depth 0.05, got %f", c.Depth)
		}
	}
}

func TestSphereBoxFaceAndInside(t *testing.T) {
	box := NewBody(BodyOptions{
		Mass:  1,
		Shape: &Box{HalfExtents: mgl64.Vec3{1, 1, 1}},
	})
	ball := newBall(nil, 0.5, mgl64.Vec3{0, 1.3, 0})

	cs := collide(ball, box)
	if len(cs) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(cs))
	}
	if !cs[0].Normal.ApproxEqualThreshold(mgl64.Vec3{0, 1, 0}, 1e-9) {
		t.Errorf("expected normal +Y from box to sphere, got %v", cs[0].Normal)
	}
	if math.Abs(cs[0].Depth-0.2) > 1e-9 {
		t.Errorf("expected depth 0.2, got %f", cs[0].Depth)
	}

	ball.Position = mgl64.Vec3{0.9, 0, 0}
	cs = collide(box, ball)
	if len(cs) != 1 {
		t.Fatalf("expected 1 contact for center inside box, got %d", len(cs))
	}
	if !cs[0].Normal.ApproxEqualThreshold(mgl64.Vec3{1, 0, 0}, 1e-9) {
		t.Errorf("expected normal +X, got %v", cs[0].Normal)
	}
}

func TestBoxBoxStacked(t *testing.T) {
	lower := NewBody(BodyOptions{Mass: 1, Shape: &Box{HalfExtents: mgl64.Vec3{1, 0.5, 1}}})
	upper := NewBody(BodyOptions{
		Mass:     1,
		Shape:    &Box{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}},
		Position: mgl64.Vec3{0, 0.95, 0},
	})

	cs := collide(lower, upper)
	if len(cs) != 4 {
		t.Fatalf("expected 4 contacts from the upper box corners, got %d", len(cs))
	}
	for _, c := range cs {
		if c.A != lower || c.B != upper {
			t.Error("expected contacts from lower to upper")
		}
		if !c.Normal.ApproxEqualThreshold(mgl64.Vec3{0, 1, 0}, 1e-9) {
			t.Errorf("expected normal +Y, got %v", c.Normal)
		}
	}
}

func newBox(half, pos mgl64.Vec3, q mgl64.Quat) *Body {
	return NewBody(BodyOptions{
		Mass:       1,
		Shape:      &Box{HalfExtents: half},
		Position:   pos,
		Quaternion: q,
	})
}

func TestBoxBoxFlushFaces(t *testing.T) {
	half := mgl64.Vec3{0.5, 0.5, 0.5}
	lower := newBox(half, mgl64.Vec3{0, 0.5, 0}, mgl64.QuatIdent())
	upper := newBox(half, mgl64.Vec3{0, 1.5, 0}, mgl64.QuatIdent())

	cs := collide(lower, upper)
	if len(cs) != 4 {
		t.Fatalf("expected 4 contacts for boxes touching face to face, got %d", len(cs))
	}
	for _, c := range cs {
		if !c.Normal.ApproxEqualThreshold(mgl64.Vec3{0, 1, 0}, 1e-9) {
			t.Errorf("expected normal +Y, got %v", c.Normal)
		}
		if c.Depth != 0 {
			t.Errorf("expected zero depth, got %f", c.Depth)
		}
	}
}

func TestBoxBoxCrossedBars(t *testing.T) {
	lower := newBox(mgl64.Vec3{0.75, 0.1, 0.1}, mgl64.Vec3{0, 0.1, 0}, mgl64.QuatIdent())
	upper := newBox(mgl64.Vec3{0.1, 0.1, 0.75}, mgl64.Vec3{0, 0.29, 0}, mgl64.QuatIdent())

	cs := collide(upper, lower)
	if len(cs) != 4 {
		t.Fatalf("expected 4 contacts on the crossing square, got %d", len(cs))
	}
	for _, c := range cs {
		if c.A != upper || c.B != lower {
			t.Error("expected contacts in call order")
		}
		if !c.Normal.ApproxEqualThreshold(mgl64.Vec3{0, -1, 0}, 1e-9) {
			t.Errorf("expected normal -Y from upper to lower, got %v", c.Normal)
		}
		if math.Abs(c.Depth-0.01) > 1e-9 {
			t.Errorf("expected depth 0.01, got %f", c.Depth)
		}
		p := upper.Position.Add(c.RA)
		if math.Abs(p.X()) > 0.1+1e-9 || math.Abs(p.Z()) > 0.1+1e-9 {
			t.Errorf("contact point %v outside the crossing square", p)
		}
	}
}

func TestBoxBoxEdgeOnEdge(t *testing.T) {
	half := mgl64.Vec3{0.5, 0.5, 0.5}
	lower := newBox(half, mgl64.Vec3{}, mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 0, 1}))
	upper := newBox(half, mgl64.Vec3{0, math.Sqrt2 - 0.05, 0}, mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{1, 0, 0}))

	cs := collide(lower, upper)
	if len(cs) != 1 {
		t.Fatalf("expected 1 edge contact, got %d", len(cs))
	}
	c := cs[0]
	if !c.Normal.ApproxEqualThreshold(mgl64.Vec3{0, 1, 0}, 1e-9) {
		t.Errorf("expected normal +Y, got %v", c.Normal)
	}
	if math.Abs(c.Depth-0.05) > 1e-9 {
		t.Errorf("expected depth 0.05, got %f", c.Depth)
	}
	if p := lower.Position.Add(c.RA); !p.ApproxEqualThreshold(mgl64.Vec3{0, math.Sqrt2 / 2, 0}, 1e-9) {
		t.Errorf("expected contact on the lower ridge, got %v", p)
	}
}

func TestBoxBoxSeparated(t *testing.T) {
	half := mgl64.Vec3{0.5, 0.5, 0.5}
	a := newBox(half, mgl64.Vec3{}, mgl64.QuatIdent())
	b := newBox(half, mgl64.Vec3{1.8, 0, 0}, mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 1, 0}))
	if cs := collide(a, b); len(cs) != 0 {
		t.Errorf("expected no contacts, got %d", len(cs))
	}
}

func TestSweepAndPrunePairs(t *testing.T) {
	floor := newFloor(nil)
	a := newBall(nil, 0.5, mgl64.Vec3{0, 3, 0})
	b := newBall(nil, 0.5, mgl64.Vec3{0.5, 3, 0})
	c := newBall(nil, 0.5, mgl64.Vec3{10, 3, 0})

	var sap sweepAndPrune
	pairs := sap.pairs([]*Body{a, b, c, floor})

	// floor pairs with each ball, plus a-b
	if len(pairs) != 4 {
		t.Errorf("expected 4 candidate pairs, got %d", len(pairs))
	}
}
