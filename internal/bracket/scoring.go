package bracket

// Weights holds the point value of a correct pick per round, indexed by
// round-1. Rounds 5 and 6 are the semifinals and championship.
type Weights [6]int

// DefaultWeights doubles the point value each round.
var DefaultWeights = Weights{1, 2, 4, 8, 16, 32}

// WeightsFrom builds a weight table from a configured 6-entry list,
// falling back to DefaultWeights on a malformed list.
func WeightsFrom(values []int) Weights {
	if len(values) != len(DefaultWeights) {
		return DefaultWeights
	}
	var w Weights
	copy(w[:], values)
	return w
}

// Pick outcomes reported by Validate, one per slot.
const (
	PickPending byte = 0
	PickHit     byte = 1
	PickMiss    byte = 2
)

// Score computes a prediction's point total against the realized
// results. A slot scores weights[round-1] when the predicted side
// matches the decided winner's side; undecided matches contribute
// nothing. The computation is a pure function of its inputs.
func Score(t *Tournament, p Prediction, w Weights) int {
	points, _, _ := tally(t, p, w)
	return points
}

// Validate reports the per-slot outcome of every pick alongside the
// point total and the number of correct picks.
func Validate(t *Tournament, p Prediction, w Weights) (results [PredictionSize]byte, points, correct int) {
	points, correct, results = tally(t, p, w)
	return results, points, correct
}

func tally(t *Tournament, p Prediction, w Weights) (points, correct int, results [PredictionSize]byte) {
	score := func(m *Match, slot, round int) {
		if !m.Decided() {
			return
		}
		realized := byte(0)
		if m.WinnerIsAway() {
			realized = 1
		}
		if p[slot] == realized {
			results[slot] = PickHit
			points += w[round-1]
			correct++
		} else {
			results[slot] = PickMiss
		}
	}
	for g := range t.Regions {
		region := &t.Regions[g]
		for i := range region.Round1 {
			score(&region.Round1[i], regionSlot(g, 1, i), 1)
		}
		for i := range region.Round2 {
			score(&region.Round2[i], regionSlot(g, 2, i), 2)
		}
		for i := range region.Round3 {
			score(&region.Round3[i], regionSlot(g, 3, i), 3)
		}
		score(&region.Round4, regionSlot(g, 4, 0), 4)
	}
	for i := range t.FinalFour.Semifinals {
		score(&t.FinalFour.Semifinals[i], semifinalSlot+i, 5)
	}
	score(&t.FinalFour.Championship, championshipSlot, 6)
	return points, correct, results
}
