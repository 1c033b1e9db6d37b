package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Contact is one point of contact between A and B. Normal is a unit vector
// pointing from A towards B; RA and RB are the contact point relative to each
// body's center.
type Contact struct {
	A, B   *Body
	Normal mgl64.Vec3
	RA, RB mgl64.Vec3
	Depth  float64

	friction    float64
	restitution float64
	bias        float64
	massNormal  float64
	tangents    [2]mgl64.Vec3
	massTangent [2]float64
	lambdaN     float64
	lambdaT     [2]float64
}

// ImpactVelocityAlongNormal returns the closing speed of the two bodies at
// the contact point, measured along the normal. Positive means approaching.
func (c *Contact) ImpactVelocityAlongNormal() float64 {
	va := c.A.Velocity.Add(c.A.AngularVelocity.Cross(c.RA))
	vb := c.B.Velocity.Add(c.B.AngularVelocity.Cross(c.RB))
	return c.Normal.Dot(va.Sub(vb))
}

// relativeVelocity is vB - vA at the contact point.
func (c *Contact) relativeVelocity() mgl64.Vec3 {
	va := c.A.Velocity.Add(c.A.AngularVelocity.Cross(c.RA))
	vb := c.B.Velocity.Add(c.B.AngularVelocity.Cross(c.RB))
	return vb.Sub(va)
}

// collide runs the narrowphase test for a candidate pair.
func collide(a, b *Body) []*Contact {
	ka, kb := a.Shape.Kind(), b.Shape.Kind()
	switch {
	case ka == ShapeSphere && kb == ShapeSphere:
		return sphereSphere(a, b)
	case ka == ShapeSphere && kb == ShapePlane:
		return spherePlane(a, b)
	case ka == ShapePlane && kb == ShapeSphere:
		return spherePlane(b, a)
	case ka == ShapeBox && kb == ShapePlane:
		return boxPlane(a, b)
	case ka == ShapePlane && kb == ShapeBox:
		return boxPlane(b, a)
	case ka == ShapeSphere && kb == ShapeBox:
		return sphereBox(a, b)
	case ka == ShapeBox && kb == ShapeSphere:
		return sphereBox(b, a)
	case ka == ShapeBox && kb == ShapeBox:
		return boxBox(a, b)
	}
	return nil
}

func sphereSphere(a, b *Body) []*Contact {
	ra := a.Shape.(*Sphere).Radius
	rb := b.Shape.(*Sphere).Radius
	d := b.Position.Sub(a.Position)
	dist := d.Len()
	if dist >= ra+rb {
		return nil
	}
	n := mgl64.Vec3{0, 1, 0}
	if dist > 1e-9 {
		n = d.Mul(1 / dist)
	}
	return []*Contact{{
		A:      a,
		B:      b,
		Normal: n,
		RA:     n.Mul(ra),
		RB:     n.Mul(-rb),
		Depth:  ra + rb - dist,
	}}
}

func spherePlane(s, p *Body) []*Contact {
	r := s.Shape.(*Sphere).Radius
	np := p.Shape.(*Plane).Normal(p.Quaternion)
	d := s.Position.Sub(p.Position).Dot(np)
	if d >= r {
		return nil
	}
	onPlane := s.Position.Sub(np.Mul(d))
	return []*Contact{{
		A:      s,
		B:      p,
		Normal: np.Mul(-1),
		RA:     np.Mul(-r),
		RB:     onPlane.Sub(p.Position),
		Depth:  r - d,
	}}
}

func boxPlane(bx, p *Body) []*Contact {
	np := p.Shape.(*Plane).Normal(p.Quaternion)
	var out []*Contact
	for _, v := range bx.Shape.(*Box).Vertices(bx.Position, bx.Quaternion) {
		d := v.Sub(p.Position).Dot(np)
		if d >= 0 {
			continue
		}
		out = append(out, &Contact{
			A:      bx,
			B:      p,
			Normal: np.Mul(-1),
			RA:     v.Sub(bx.Position),
			RB:     v.Sub(np.Mul(d)).Sub(p.Position),
			Depth:  -d,
		})
	}
	return out
}

func sphereBox(s, bx *Body) []*Contact {
	r := s.Shape.(*Sphere).Radius
	h := bx.Shape.(*Box).HalfExtents
	inv := bx.Quaternion.Conjugate()
	local := inv.Rotate(s.Position.Sub(bx.Position))

	var closest mgl64.Vec3
	for i := 0; i < 3; i++ {
		closest[i] = mgl64.Clamp(local[i], -h[i], h[i])
	}
	diff := local.Sub(closest)
	dist := diff.Len()
	if dist >= r {
		return nil
	}

	var nLocal mgl64.Vec3
	var depth float64
	if dist > 1e-9 {
		nLocal = diff.Mul(1 / dist)
		depth = r - dist
	} else {
		axis, pen := 0, math.Inf(1)
		for i := 0; i < 3; i++ {
			if p := h[i] - math.Abs(local[i]); p < pen {
				axis, pen = i, p
			}
		}
		sign := 1.0
		if local[axis] < 0 {
			sign = -1
		}
		nLocal[axis] = sign
		closest[axis] = sign * h[axis]
		depth = r + pen
	}

	n := bx.Quaternion.Rotate(nLocal)
	return []*Contact{{
		A:      bx,
		B:      s,
		Normal: n,
		RA:     bx.Quaternion.Rotate(closest),
		RB:     n.Mul(-r),
		Depth:  depth,
	}}
}

// Face axes win over edge axes unless the edge overlap is clearly smaller,
// so resting stacks keep a stable face manifold.
const (
	axisRelTolerance = 0.95
	faceAbsTolerance = 0.001
	edgeAbsTolerance = 0.01
)

// obb is a box in world space: center, unit axes and half extents.
type obb struct {
	center mgl64.Vec3
	axes   [3]mgl64.Vec3
	half   mgl64.Vec3
}

func obbOf(b *Body) obb {
	r := b.Quaternion.Mat4().Mat3()
	return obb{
		center: b.Position,
		axes:   [3]mgl64.Vec3{r.Col(0), r.Col(1), r.Col(2)},
		half:   b.Shape.(*Box).HalfExtents,
	}
}

// radius is the half length of the box projected onto the unit axis l.
func (o obb) radius(l mgl64.Vec3) float64 {
	return o.half[0]*math.Abs(o.axes[0].Dot(l)) +
		o.half[1]*math.Abs(o.axes[1].Dot(l)) +
		o.half[2]*math.Abs(o.axes[2].Dot(l))
}

type satAxis struct {
	kind    int // 0: face of a, 1: face of b, 2: edge pair
	i, j    int
	normal  mgl64.Vec3
	overlap float64
}

// boxBox runs a separating axis test over the 15 candidate axes. Face
// contacts are clipped to a manifold of up to eight points; edge contacts
// produce the closest points of the two edges. Normals point from a to b.
func boxBox(a, b *Body) []*Contact {
	oa, ob := obbOf(a), obbOf(b)
	d := ob.center.Sub(oa.center)

	test := func(l mgl64.Vec3) (mgl64.Vec3, float64, bool) {
		overlap := oa.radius(l) + ob.radius(l) - math.Abs(d.Dot(l))
		if overlap < 0 {
			return l, overlap, false
		}
		if d.Dot(l) < 0 {
			l = l.Mul(-1)
		}
		return l, overlap, true
	}

	faceA := satAxis{overlap: math.Inf(1)}
	for i := 0; i < 3; i++ {
		n, o, ok := test(oa.axes[i])
		if !ok {
			return nil
		}
		if o < faceA.overlap {
			faceA = satAxis{kind: 0, i: i, normal: n, overlap: o}
		}
	}
	faceB := satAxis{overlap: math.Inf(1)}
	for j := 0; j < 3; j++ {
		n, o, ok := test(ob.axes[j])
		if !ok {
			return nil
		}
		if o < faceB.overlap {
			faceB = satAxis{kind: 1, i: j, normal: n, overlap: o}
		}
	}
	edge := satAxis{overlap: math.Inf(1)}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			l := oa.axes[i].Cross(ob.axes[j])
			ln := l.Len()
			if ln < 1e-6 {
				continue
			}
			n, o, ok := test(l.Mul(1 / ln))
			if !ok {
				return nil
			}
			if o < edge.overlap {
				edge = satAxis{kind: 2, i: i, j: j, normal: n, overlap: o}
			}
		}
	}

	best := faceA
	if faceB.overlap < axisRelTolerance*faceA.overlap-faceAbsTolerance {
		best = faceB
	}
	if edge.overlap < axisRelTolerance*best.overlap-edgeAbsTolerance {
		return edgeContact(a, b, oa, ob, edge)
	}
	if best.kind == 0 {
		return faceContacts(a, b, oa, ob, best.i, best.normal, false)
	}
	// b's face is the reference; clip a's face against it and keep the
	// normal pointing from a to b.
	return faceContacts(b, a, ob, oa, best.i, best.normal.Mul(-1), true)
}

// faceContacts clips the incident face of inc against the side planes of
// the reference face ref.axes[axis] facing along n. When swapped, ref is the
// pair's B body and the contacts are flipped back to A/B order.
func faceContacts(ref, inc *Body, oRef, oInc obb, axis int, n mgl64.Vec3, swapped bool) []*Contact {
	refNormal := oRef.axes[axis]
	if refNormal.Dot(n) < 0 {
		refNormal = refNormal.Mul(-1)
	}
	refCenter := oRef.center.Add(refNormal.Mul(oRef.half[axis]))

	// incident face: the face of inc most opposed to the reference normal
	k, best := 0, 0.0
	for i := 0; i < 3; i++ {
		if dp := math.Abs(oInc.axes[i].Dot(refNormal)); dp > best {
			k, best = i, dp
		}
	}
	incNormal := oInc.axes[k]
	if incNormal.Dot(refNormal) > 0 {
		incNormal = incNormal.Mul(-1)
	}
	k1, k2 := (k+1)%3, (k+2)%3
	fc := oInc.center.Add(incNormal.Mul(oInc.half[k]))
	u := oInc.axes[k1].Mul(oInc.half[k1])
	v := oInc.axes[k2].Mul(oInc.half[k2])
	poly := []mgl64.Vec3{
		fc.Add(u).Add(v),
		fc.Sub(u).Add(v),
		fc.Sub(u).Sub(v),
		fc.Add(u).Sub(v),
	}

	r1, r2 := (axis+1)%3, (axis+2)%3
	for _, side := range []struct {
		dir  mgl64.Vec3
		half float64
	}{
		{oRef.axes[r1], oRef.half[r1]},
		{oRef.axes[r1].Mul(-1), oRef.half[r1]},
		{oRef.axes[r2], oRef.half[r2]},
		{oRef.axes[r2].Mul(-1), oRef.half[r2]},
	} {
		poly = clipPolygon(poly, side.dir, side.dir.Dot(oRef.center)+side.half)
		if len(poly) == 0 {
			return nil
		}
	}

	var out []*Contact
	for _, p := range poly {
		sep := p.Sub(refCenter).Dot(refNormal)
		if sep > 1e-9 {
			continue
		}
		onRef := p.Sub(refNormal.Mul(sep))
		c := &Contact{Depth: math.Max(-sep, 0)}
		if swapped {
			c.A, c.B = inc, ref
			c.Normal = refNormal.Mul(-1)
			c.RA = p.Sub(inc.Position)
			c.RB = onRef.Sub(ref.Position)
		} else {
			c.A, c.B = ref, inc
			c.Normal = refNormal
			c.RA = onRef.Sub(ref.Position)
			c.RB = p.Sub(inc.Position)
		}
		out = append(out, c)
	}
	return out
}

// clipPolygon keeps the part of poly with dir·p <= offset.
func clipPolygon(poly []mgl64.Vec3, dir mgl64.Vec3, offset float64) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, 0, len(poly)+1)
	for i, p := range poly {
		q := poly[(i+1)%len(poly)]
		dp := dir.Dot(p) - offset
		dq := dir.Dot(q) - offset
		if dp <= 0 {
			out = append(out, p)
		}
		if (dp < 0 && dq > 0) || (dp > 0 && dq < 0) {
			t := dp / (dp - dq)
			out = append(out, p.Add(q.Sub(p).Mul(t)))
		}
	}
	return out
}

// edgeContact reports the closest points of the two edges that define the
// separating axis.
func edgeContact(a, b *Body, oa, ob obb, ax satAxis) []*Contact {
	n := ax.normal
	pa := oa.center
	for k := 0; k < 3; k++ {
		if k == ax.i {
			continue
		}
		s := 1.0
		if oa.axes[k].Dot(n) < 0 {
			s = -1
		}
		pa = pa.Add(oa.axes[k].Mul(s * oa.half[k]))
	}
	pb := ob.center
	for k := 0; k < 3; k++ {
		if k == ax.j {
			continue
		}
		s := 1.0
		if ob.axes[k].Dot(n) > 0 {
			s = -1
		}
		pb = pb.Add(ob.axes[k].Mul(s * ob.half[k]))
	}

	da, db := oa.axes[ax.i], ob.axes[ax.j]
	r := pa.Sub(pb)
	bb := da.Dot(db)
	c := da.Dot(r)
	f := db.Dot(r)
	denom := 1 - bb*bb
	var s float64
	if denom > 1e-9 {
		s = (bb*f - c) / denom
	}
	s = mgl64.Clamp(s, -oa.half[ax.i], oa.half[ax.i])
	t := mgl64.Clamp(f+s*bb, -ob.half[ax.j], ob.half[ax.j])

	qa := pa.Add(da.Mul(s))
	qb := pb.Add(db.Mul(t))
	return []*Contact{{
		A:      a,
		B:      b,
		Normal: n,
		RA:     qa.Sub(a.Position),
		RB:     qb.Sub(b.Position),
		Depth:  ax.overlap,
	}}
}
