// Package hierarchy resolves a member's flat set of role tags into one numeric
// rank. Every permission gate in the moderation pipeline goes through here.
package hierarchy

const (
	LevelLider       = "lider"
	LevelAdmin       = "admin"
	LevelGestao      = "gestao"
	LevelProdutor    = "produtor"
	LevelAvaliador   = "avaliador"
	LevelColaborador = "colaborador"
	LevelMembro      = "membro"
)

// Weights is the fixed ordered rank enumeration. Membro is the floor.
var Weights = map[string]int{
	LevelLider:       7,
	LevelAdmin:       6,
	LevelGestao:      5,
	LevelProdutor:    4,
	LevelAvaliador:   3,
	LevelColaborador: 2,
	LevelMembro:      1,
}

// Rank returns the maximum configured weight among tags. Unknown tags weigh
// zero and are never an error; a member with no recognized tag ranks as membro.
func Rank(tags []string) int {
	highest := 0
	for _, tag := range tags {
		if weight, ok := Weights[tag]; ok && weight > highest {
			highest = weight
		}
	}
	if highest == 0 {
		return Weights[LevelMembro]
	}
	return highest
}

// Weight looks up the configured weight for a named level, zero when unknown.
func Weight(level string) int {
	return Weights[level]
}

// HasRankAtLeast reports whether the tags resolve to a rank at or above the
// named level. Unknown levels gate nothing.
func HasRankAtLeast(tags []string, level string) bool {
	return Rank(tags) >= Weights[level]
}

// TagsAtOrAbove lists the level names whose weight is at or above the given
// threshold. Storage layers use it to count qualified members.
func TagsAtOrAbove(threshold int) []string {
	levels := make([]string, 0, len(Weights))
	for level, weight := range Weights {
		if weight >= threshold {
			levels = append(levels, level)
		}
	}
	return levels
}

// HasTag reports direct membership of a single tag, independent of rank.
func HasTag(tags []string, tag string) bool {
	for _, candidate := range tags {
		if candidate == tag {
			return true
		}
	}
	return false
}
