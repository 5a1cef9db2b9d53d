package bracket

// Match is the smallest bracket unit: two teams, a final score and a
// winner once decided. Winner and scores are immutable after decision.
type Match struct {
	Home      string `json:"home"`
	Away      string `json:"away"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
	Winner    string `json:"winner"`
}

// Ready reports whether both participants are known.
func (m *Match) Ready() bool {
	return m.Home != "" && m.Away != ""
}

// Decided reports whether the match has a winner.
func (m *Match) Decided() bool {
	return m.Winner != ""
}

// WinnerIsAway reports the realized side of a decided match.
// Home corresponds to pick 0, away to pick 1.
func (m *Match) WinnerIsAway() bool {
	return m.Decided() && m.Winner == m.Away
}

func (m *Match) decide(winner string, homeScore, awayScore int) error {
	if !m.Ready() {
		return ErrRoundNotOpen
	}
	if m.Decided() {
		return ErrAlreadyDecided
	}
	if winner != m.Home && winner != m.Away {
		return ErrUnknownTeam
	}
	m.HomeScore = homeScore
	m.AwayScore = awayScore
	m.Winner = winner
	return nil
}
