package progression

import (
	"github.com/mroth/weightedrand/v2"
)

// LevelMix picks the level a stage question is drawn from: mostly the
// player's level with some review of the two levels below.
type LevelMix struct {
	chooser *weightedrand.Chooser[int, int]
}

func NewLevelMix() (*LevelMix, error) {
	chooser, err := weightedrand.NewChooser(
		weightedrand.NewChoice(0, 70),
		weightedrand.NewChoice(1, 20),
		weightedrand.NewChoice(2, 10),
	)
	if err != nil {
		return nil, err
	}

	return &LevelMix{chooser}, nil
}

func (m *LevelMix) Pick(level int) int {
	picked := level - m.chooser.Pick()
	if picked < MinLevel {
		return MinLevel
	}
	return picked
}

// Plan returns how many questions to draw from each level for a stage of n.
func (m *LevelMix) Plan(level, n int) map[int]int {
	plan := make(map[int]int)
	for i := 0; i < n; i++ {
		plan[m.Pick(level)]++
	}
	return plan
}
