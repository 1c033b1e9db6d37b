package metrics

// Settle records the first time every sampled body was asleep. It reports
// -1 until that happens.
type Settle struct {
	name    string
	at      float64
	settled bool
}

func NewSettle() *Settle {
	return &Settle{name: "settle_time", at: -1}
}

func (s *Settle) Name() string { return s.name }

func (s *Settle) Observe(sample Sample) {
	if s.settled || len(sample.Bodies) == 0 {
		return
	}
	for _, b := range sample.Bodies {
		if !b.IsStatic() && !b.IsSleeping() {
			return
		}
	}
	s.settled = true
	s.at = sample.Time
}

func (s *Settle) Value() float64 { return s.at }

func (s *Settle) Settled() bool { return s.settled }

func (s *Settle) Reset() {
	s.at = -1
	s.settled = false
}

// Impacts counts sounds played since the last reset.
type Impacts struct {
	name string
	base int
	last int
}

func NewImpacts() *Impacts {
	return &Impacts{name: "impacts"}
}

func (m *Impacts) Name() string { return m.name }

func (m *Impacts) Observe(s Sample) {
	m.last = s.Sounds
}

func (m *Impacts) Value() float64 { return float64(m.last - m.base) }

func (m *Impacts) Reset() {
	m.base = m.last
}
