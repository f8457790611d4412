package sim

// Health tracks hit points clamped to [0, max].
type Health struct {
	points float64
	max    float64
}

func NewHealth(max float64) *Health {
	if max < 0 {
		max = 0
	}
	return &Health{points: max, max: max}
}

func (h *Health) Points() float64 { return h.points }

func (h *Health) Max() float64 { return h.max }

func (h *Health) Dead() bool { return h.points <= 0 }

// Damage removes amount points and returns the remaining points. Negative
// amounts are ignored.
func (h *Health) Damage(amount float64) float64 {
	if amount > 0 {
		h.points = max(0, h.points-amount)
	}
	return h.points
}

// Heal adds amount points and returns the new total. Negative amounts are
// ignored.
func (h *Health) Heal(amount float64) float64 {
	if amount > 0 {
		h.points = min(h.max, h.points+amount)
	}
	return h.points
}

// Reset restores full health.
func (h *Health) Reset() { h.points = h.max }
