package physics

// Material tags bodies so the world can look up the ContactMaterial used
// when two of them touch.
type Material struct {
	Name string
}

func NewMaterial(name string) *Material {
	return &Material{Name: name}
}

// ContactMaterial holds the friction and restitution used between two
// materials. The pair is unordered.
type ContactMaterial struct {
	A, B        *Material
	Friction    float64
	Restitution float64
}

// NewContactMaterial pairs a and b with the given friction coefficient
// and restitution.
func NewContactMaterial(a, b *Material, friction, restitution float64) *ContactMaterial {
	return &ContactMaterial{A: a, B: b, Friction: friction, Restitution: restitution}
}

type materialPair struct {
	a, b *Material
}

func pairOf(a, b *Material) materialPair {
	if b != nil && (a == nil || a.Name > b.Name) {
		a, b = b, a
	}
	return materialPair{a: a, b: b}
}
