package service

// PrizePolicy decides how a pool's pot is split among its top-scoring
// entries. The exact formula is deployment configuration, not engine
// logic, so it is injected into the settlement engine.
type PrizePolicy interface {
	// Share returns the amount awarded to one winning entry given the
	// pool pot and the number of tied winners. first marks the earliest
	// placed winner, which receives any indivisible remainder.
	Share(pot, winners int64, first bool) int64
}

// WinnerTakeAll splits the entire pot equally among the entries tied at
// the pool's top score.
type WinnerTakeAll struct{}

func (WinnerTakeAll) Share(pot, winners int64, first bool) int64 {
	if winners == 0 {
		return 0
	}
	share := pot / winners
	if first {
		share += pot % winners
	}
	return share
}
