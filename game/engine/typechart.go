package engine

// TypeChart maps an element to the elements it is strong against
type TypeChart map[ElementType][]ElementType

// DefaultTypeChart is the built-in effectiveness table
var DefaultTypeChart = TypeChart{
	Normal:   {},
	Fire:     {Grass, Ice},
	Water:    {Fire, Rock},
	Grass:    {Water, Rock},
	Electric: {Water},
	Ice:      {Grass, Dragon},
	Fighting: {Normal, Ice, Rock},
	Psychic:  {Fighting},
	Rock:     {Fire, Ice},
	Ghost:    {Psychic, Ghost},
	Dragon:   {Dragon},
}

const (
	SuperEffective   = 2.0
	NotVeryEffective = 0.5
	NeutralEffective = 1.0
)

// StrongAgainst reports whether attacker is listed as strong against defender
func (c TypeChart) StrongAgainst(attacker, defender ElementType) bool {
	for _, t := range c[attacker] {
		if t == defender {
			return true
		}
	}
	return false
}

// Multiplier returns the damage factor for attacker hitting defender.
// The super-effective check runs first, so a pair listed both ways yields 2.0.
func (c TypeChart) Multiplier(attacker, defender ElementType) float64 {
	if c.StrongAgainst(attacker, defender) {
		return SuperEffective
	}
	if c.StrongAgainst(defender, attacker) {
		return NotVeryEffective
	}
	return NeutralEffective
}

// CalculateDamage scales base damage by the type multiplier
func (c TypeChart) CalculateDamage(attacker, defender ElementType, base float64) float64 {
	return base * c.Multiplier(attacker, defender)
}

// IsSlowing reports whether hits from this element apply the freeze effect
func IsSlowing(t ElementType) bool {
	return t == Water || t == Ice
}

// elementColors is the renderer palette keyed by element
var elementColors = map[ElementType]string{
	Fire:     "#ef4444",
	Water:    "#3b82f6",
	Grass:    "#22c55e",
	Electric: "#facc15",
	Ice:      "#67e8f9",
	Fighting: "#ea580c",
	Psychic:  "#ec4899",
	Rock:     "#78716c",
	Ghost:    "#4338ca",
	Dragon:   "#7c3aed",
}

// ElementColor returns a hex color for renderers, gray for Normal or unknown types
func ElementColor(t ElementType) string {
	if c, ok := elementColors[t]; ok {
		return c
	}
	return "#a3a3a3"
}
