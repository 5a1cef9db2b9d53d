package bracket

// PredictionSize is the number of wagered match slots: 32 round 1 picks,
// 16 round 2, 8 round 3, 4 round 4, 2 semifinals and the championship.
// First Four play-ins are not wagered on.
const PredictionSize = 63

// Prediction is a bettor's full set of picks, one byte per slot in a
// fixed traversal order. 0 picks the home (lower feeder) side, 1 the
// away (upper feeder) side. Slots 0-31 are round 1 region-major in the
// tournament's region order, 32-47 round 2, 48-55 round 3, 56-59 round
// 4, 60-61 the semifinals and 62 the championship.
type Prediction [PredictionSize]byte

// ParsePrediction validates and copies a raw pick sequence.
func ParsePrediction(picks []byte) (Prediction, error) {
	var p Prediction
	if len(picks) != PredictionSize {
		return p, ErrInvalidPrediction
	}
	for i, pick := range picks {
		if pick > 1 {
			return p, ErrInvalidPrediction
		}
		p[i] = pick
	}
	return p, nil
}

// Bytes returns the prediction as a storable byte slice.
func (p Prediction) Bytes() []byte {
	out := make([]byte, PredictionSize)
	copy(out, p[:])
	return out
}

// regionSlot maps (region position, round, match index) to a slot.
func regionSlot(region, round, index int) int {
	switch round {
	case 1:
		return region*8 + index
	case 2:
		return 32 + region*4 + index
	case 3:
		return 48 + region*2 + index
	default:
		return 56 + region
	}
}

const (
	semifinalSlot    = 60
	championshipSlot = 62
)
