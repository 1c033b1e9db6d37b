package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// Penetration allowed before positional correction kicks in.
	contactSlop = 0.005
	// Fraction of the remaining penetration removed per step.
	baumgarte = 0.2
	// Closing speeds below this do not bounce.
	restitutionThreshold = 0.5
)

func solveInvMass(b *Body) float64 {
	if b.IsStatic() || b.IsSleeping() {
		return 0
	}
	return b.invMass
}

func solveInvInertia(b *Body) mgl64.Mat3 {
	if b.IsStatic() || b.IsSleeping() {
		return mgl64.Mat3{}
	}
	return b.invInertiaWorld()
}

// effectiveMass returns 1/(J M^-1 J^T) for an impulse along dir.
func effectiveMass(c *Contact, dir mgl64.Vec3, iA, iB mgl64.Mat3) float64 {
	raXd := c.RA.Cross(dir)
	rbXd := c.RB.Cross(dir)
	k := solveInvMass(c.A) + solveInvMass(c.B) +
		dir.Dot(iA.Mul3x1(raXd).Cross(c.RA)) +
		dir.Dot(iB.Mul3x1(rbXd).Cross(c.RB))
	if k <= 0 {
		return 0
	}
	return 1 / k
}

func applyImpulse(b *Body, inv mgl64.Mat3, r, p mgl64.Vec3) {
	if b.IsStatic() || b.IsSleeping() {
		return
	}
	b.Velocity = b.Velocity.Add(p.Mul(b.invMass))
	b.AngularVelocity = b.AngularVelocity.Add(inv.Mul3x1(r.Cross(p)))
}

type solver struct {
	iterations int
}

func (s *solver) solve(contacts []*Contact, dt float64) {
	if len(contacts) == 0 {
		return
	}
	inertia := make(map[*Body]mgl64.Mat3)
	invI := func(b *Body) mgl64.Mat3 {
		m, ok := inertia[b]
		if !ok {
			m = solveInvInertia(b)
			inertia[b] = m
		}
		return m
	}

	for _, c := range contacts {
		iA, iB := invI(c.A), invI(c.B)
		c.massNormal = effectiveMass(c, c.Normal, iA, iB)

		dv := c.relativeVelocity()
		vn := dv.Dot(c.Normal)

		var restBias float64
		if -vn > restitutionThreshold {
			restBias = -c.restitution * vn
		}
		posBias := baumgarte / dt * math.Max(c.Depth-contactSlop, 0)
		c.bias = math.Max(restBias, posBias)

		c.tangents = tangentBasis(c.Normal, dv.Sub(c.Normal.Mul(vn)))
		for i, t := range c.tangents {
			c.massTangent[i] = effectiveMass(c, t, iA, iB)
		}
		c.lambdaN = 0
		c.lambdaT = [2]float64{}
	}

	for it := 0; it < s.iterations; it++ {
		for _, c := range contacts {
			iA, iB := invI(c.A), invI(c.B)

			vn := c.relativeVelocity().Dot(c.Normal)
			lambda := c.massNormal * (-vn + c.bias)
			prev := c.lambdaN
			c.lambdaN = math.Max(prev+lambda, 0)
			lambda = c.lambdaN - prev
			p := c.Normal.Mul(lambda)
			applyImpulse(c.A, iA, c.RA, p.Mul(-1))
			applyImpulse(c.B, iB, c.RB, p)

			maxF := c.friction * c.lambdaN
			for i, t := range c.tangents {
				vt := c.relativeVelocity().Dot(t)
				lt := -vt * c.massTangent[i]
				prevT := c.lambdaT[i]
				c.lambdaT[i] = mgl64.Clamp(prevT+lt, -maxF, maxF)
				lt = c.lambdaT[i] - prevT
				pt := t.Mul(lt)
				applyImpulse(c.A, iA, c.RA, pt.Mul(-1))
				applyImpulse(c.B, iB, c.RB, pt)
			}
		}
	}
}

// tangentBasis returns two unit vectors orthogonal to n, the first aligned
// with the sliding direction when there is one.
func tangentBasis(n, slide mgl64.Vec3) [2]mgl64.Vec3 {
	var t1 mgl64.Vec3
	if slide.Len() > 1e-6 {
		t1 = slide.Normalize()
	} else if math.Abs(n.X()) < 0.9 {
		t1 = n.Cross(mgl64.Vec3{1, 0, 0}).Normalize()
	} else {
		t1 = n.Cross(mgl64.Vec3{0, 1, 0}).Normalize()
	}
	return [2]mgl64.Vec3{t1, n.Cross(t1)}
}
