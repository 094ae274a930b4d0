package engine

// DefaultPath is the winding route of the built-in 12x12 map
var DefaultPath = []Coordinate{
	{0, 1}, {1, 1}, {2, 1}, {3, 1},
	{3, 2}, {3, 3}, {2, 3}, {1, 3},
	{1, 4}, {1, 5}, {1, 6}, {2, 6},
	{3, 6}, {4, 6}, {5, 6}, {6, 6},
	{6, 5}, {6, 4}, {7, 4}, {8, 4},
	{9, 4}, {9, 5}, {9, 6}, {9, 7},
	{9, 8}, {8, 8}, {7, 8}, {6, 8},
	{5, 8}, {4, 8}, {4, 9}, {4, 10},
	{5, 10}, {6, 10}, {7, 10}, {8, 10},
	{9, 10}, {10, 10}, {11, 10},
}

// DefaultTowers is the built-in tower catalog keyed by placement key
var DefaultTowers = map[string]TowerConfig{
	// Starters
	"CHARMANDER": {Name: "Charmander", Type: Fire, Cost: 50, Damage: 20, Range: 2.5, AttackSpeed: 800, Color: "#ef4444", Description: "High damage, effective against Grass."},
	"SQUIRTLE":   {Name: "Squirtle", Type: Water, Cost: 60, Damage: 10, Range: 3, AttackSpeed: 1000, Color: "#3b82f6", Description: "Slows enemies, effective against Fire."},
	"BULBASAUR":  {Name: "Bulbasaur", Type: Grass, Cost: 45, Damage: 15, Range: 3.5, AttackSpeed: 1200, Color: "#22c55e", Description: "Long range, effective against Water."},
	"PIKACHU":    {Name: "Pikachu", Type: Electric, Cost: 100, Damage: 12, Range: 2.5, AttackSpeed: 400, Color: "#facc15", Description: "Very fast attack speed."},

	// Normal
	"PIDGEY":  {Name: "Pidgey", Type: Normal, Cost: 30, Damage: 8, Range: 4, AttackSpeed: 900, Color: "#a8a29e", Description: "Cheap, long range scout."},
	"RATTATA": {Name: "Rattata", Type: Normal, Cost: 25, Damage: 10, Range: 2, AttackSpeed: 700, Color: "#d8b4fe", Description: "Very cheap, short range."},
	"MEOWTH":  {Name: "Meowth", Type: Normal, Cost: 120, Damage: 15, Range: 2.5, AttackSpeed: 600, Color: "#fde68a", Description: "Pay Day: Decent speed and damage."},
	"SNORLAX": {Name: "Snorlax", Type: Normal, Cost: 400, Damage: 100, Range: 2, AttackSpeed: 2000, Color: "#1e3a8a", Description: "Massive damage, very slow attack."},
	"EEVEE":   {Name: "Eevee", Type: Normal, Cost: 80, Damage: 18, Range: 3, AttackSpeed: 800, Color: "#fdba74", Description: "Balanced adaptability."},

	// Fire
	"VULPIX":    {Name: "Vulpix", Type: Fire, Cost: 90, Damage: 25, Range: 3, AttackSpeed: 900, Color: "#f87171", Description: "Burns targets effectively."},
	"ARCANINE":  {Name: "Arcanine", Type: Fire, Cost: 350, Damage: 60, Range: 2.5, AttackSpeed: 500, Color: "#f97316", Description: "Legendary speed and power."},
	"MAGMAR":    {Name: "Magmar", Type: Fire, Cost: 200, Damage: 45, Range: 3, AttackSpeed: 1100, Color: "#dc2626", Description: "Heavy fire damage."},
	"CHARIZARD": {Name: "Charizard", Type: Fire, Cost: 600, Damage: 150, Range: 4, AttackSpeed: 1500, Color: "#ea580c", Description: "Ultimate Fire power."},

	// Water and Ice
	"PSYDUCK":  {Name: "Psyduck", Type: Water, Cost: 70, Damage: 15, Range: 3, AttackSpeed: 900, Color: "#22d3ee", Description: "Confusingly effective."},
	"GYARADOS": {Name: "Gyarados", Type: Water, Cost: 500, Damage: 90, Range: 4.5, AttackSpeed: 1200, Color: "#1d4ed8", Description: "Rampaging destruction."},
	"STARMIE":  {Name: "Starmie", Type: Water, Cost: 220, Damage: 30, Range: 3.5, AttackSpeed: 400, Color: "#7c3aed", Description: "Rapid spin attacks."},
	"LAPRAS":   {Name: "Lapras", Type: Ice, Cost: 300, Damage: 40, Range: 4, AttackSpeed: 1300, Color: "#06b6d4", Description: "Ice beam freezes enemies."},
	"JYNX":     {Name: "Jynx", Type: Ice, Cost: 210, Damage: 50, Range: 3, AttackSpeed: 1100, Color: "#a21caf", Description: "Freezing kisses."},
	"ARTICUNO": {Name: "Articuno", Type: Ice, Cost: 700, Damage: 180, Range: 5, AttackSpeed: 1500, Color: "#7dd3fc", Description: "Legendary Ice Bird."},

	// Grass
	"ODDISH":    {Name: "Oddish", Type: Grass, Cost: 40, Damage: 12, Range: 3, AttackSpeed: 1000, Color: "#15803d", Description: "Basic grass support."},
	"EXEGGUTOR": {Name: "Exeggutor", Type: Grass, Cost: 250, Damage: 55, Range: 3.5, AttackSpeed: 1400, Color: "#a16207", Description: "Psychic grass power."},
	"SCYTHER":   {Name: "Scyther", Type: Grass, Cost: 180, Damage: 35, Range: 1.5, AttackSpeed: 300, Color: "#4ade80", Description: "Extremely fast melee cuts."},

	// Electric
	"MAGNEMITE":  {Name: "Magnemite", Type: Electric, Cost: 110, Damage: 20, Range: 3.5, AttackSpeed: 800, Color: "#9ca3af", Description: "Consistent electric shocks."},
	"ELECTABUZZ": {Name: "Electabuzz", Type: Electric, Cost: 230, Damage: 40, Range: 3, AttackSpeed: 600, Color: "#eab308", Description: "Thunder puncher."},
	"JOLTEON":    {Name: "Jolteon", Type: Electric, Cost: 280, Damage: 25, Range: 3, AttackSpeed: 200, Color: "#fde047", Description: "Lightning fast attacks."},

	// Psychic
	"ABRA":     {Name: "Abra", Type: Psychic, Cost: 150, Damage: 35, Range: 5, AttackSpeed: 1500, Color: "#f472b6", Description: "Long range psychic blasts."},
	"ALAKAZAM": {Name: "Alakazam", Type: Psychic, Cost: 450, Damage: 120, Range: 4, AttackSpeed: 1000, Color: "#db2777", Description: "Master of psychic power."},
	"MEWTWO":   {Name: "Mewtwo", Type: Psychic, Cost: 1000, Damage: 300, Range: 5, AttackSpeed: 1200, Color: "#e9d5ff", Description: "The ultimate genetic Pokemon."},

	// Fighting and Rock
	"MACHOP":    {Name: "Machop", Type: Fighting, Cost: 60, Damage: 18, Range: 1.5, AttackSpeed: 700, Color: "#c2410c", Description: "Strong melee punches."},
	"HITMONLEE": {Name: "Hitmonlee", Type: Fighting, Cost: 190, Damage: 45, Range: 2, AttackSpeed: 800, Color: "#92400e", Description: "The Kicking Demon."},
	"GEODUDE":   {Name: "Geodude", Type: Rock, Cost: 50, Damage: 25, Range: 2, AttackSpeed: 1500, Color: "#78716c", Description: "Slow but hits hard."},
	"ONIX":      {Name: "Onix", Type: Rock, Cost: 160, Damage: 30, Range: 4, AttackSpeed: 1800, Color: "#57534e", Description: "Large range rock throws."},

	// Ghost and Dragon
	"GASTLY":    {Name: "Gastly", Type: Ghost, Cost: 130, Damage: 20, Range: 3.5, AttackSpeed: 900, Color: "#312e81", Description: "Spooky spectral attacks."},
	"GENGAR":    {Name: "Gengar", Type: Ghost, Cost: 380, Damage: 85, Range: 3, AttackSpeed: 700, Color: "#6b21a8", Description: "Shadow ball barrage."},
	"DRATINI":   {Name: "Dratini", Type: Dragon, Cost: 200, Damage: 30, Range: 3, AttackSpeed: 800, Color: "#818cf8", Description: "Small dragon rage."},
	"DRAGONITE": {Name: "Dragonite", Type: Dragon, Cost: 800, Damage: 200, Range: 4, AttackSpeed: 1000, Color: "#fed7aa", Description: "Hyper Beam destruction."},
}

// DefaultGameConfig returns a fresh copy of the built-in "classic" map
func DefaultGameConfig() *GameConfig {
	towers := make(map[string]TowerConfig, len(DefaultTowers))
	for k, v := range DefaultTowers {
		towers[k] = v
	}
	chart := make(map[ElementType][]ElementType, len(DefaultTypeChart))
	for k, v := range DefaultTypeChart {
		chart[k] = append([]ElementType{}, v...)
	}

	return &GameConfig{
		Name:         "classic",
		Description:  "A winding route across a 12x12 meadow with the full 36 tower roster.",
		GridSize:     12,
		InitialMoney: DefaultInitialMoney,
		InitialLives: DefaultInitialLives,
		Path:         append([]Coordinate(nil), DefaultPath...),
		Towers:       towers,
		TypeChart:    chart,
		Rules:        Rules{}.WithDefaults(),
	}
}
