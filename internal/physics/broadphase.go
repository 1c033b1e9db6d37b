package physics

import "sort"

type pair struct {
	a, b *Body
}

// sweepAndPrune sorts bodies by their AABB minimum on X and only tests
// pairs whose X intervals overlap. Planes have infinite bounds and end up
// paired with everything.
type sweepAndPrune struct {
	entries []sapEntry
}

type sapEntry struct {
	body *Body
	box  AABB
}

func (s *sweepAndPrune) pairs(bodies []*Body) []pair {
	s.entries = s.entries[:0]
	for _, b := range bodies {
		s.entries = append(s.entries, sapEntry{body: b, box: b.AABB()})
	}
	sort.SliceStable(s.entries, func(i, j int) bool {
		return s.entries[i].box.Min.X() < s.entries[j].box.Min.X()
	})

	var out []pair
	for i := 0; i < len(s.entries); i++ {
		ei := s.entries[i]
		for j := i + 1; j < len(s.entries); j++ {
			ej := s.entries[j]
			if ej.box.Min.X() > ei.box.Max.X() {
				break
			}
			if !needsTest(ei.body, ej.body) {
				continue
			}
			if ei.box.Overlaps(ej.box) {
				out = append(out, pair{a: ei.body, b: ej.body})
			}
		}
	}
	return out
}

// needsTest skips pairs where neither body can move.
func needsTest(a, b *Body) bool {
	aInert := a.IsStatic() || a.IsSleeping()
	bInert := b.IsStatic() || b.IsSleeping()
	return !(aInert && bInert)
}
