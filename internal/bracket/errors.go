package bracket

import "errors"

// Validation errors: rejected before any state mutation.
var (
	ErrInvalidTeamCount  = errors.New("region requires 16 distinct teams")
	ErrUnknownTeam       = errors.New("team is not part of this match")
	ErrUnknownRegion     = errors.New("unknown region")
	ErrMatchNotFound     = errors.New("match not found")
	ErrInvalidPrediction = errors.New("prediction must contain 63 picks of 0 or 1")
)

// State conflicts: callers polling a feed treat these as "already done".
var (
	ErrAlreadyInitialized    = errors.New("already initialized")
	ErrAlreadyDecided        = errors.New("match already decided")
	ErrRoundNotOpen          = errors.New("round not open for this match")
	ErrRoundNotComplete      = errors.New("current round has undecided matches")
	ErrBetsClosed            = errors.New("betting is closed")
	ErrFirstFourPending      = errors.New("referenced first four match is undecided")
	ErrTournamentNotComplete = errors.New("tournament is not complete")
)
