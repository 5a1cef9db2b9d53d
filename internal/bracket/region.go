package bracket

// RegionName identifies one of the four 16-team sub-brackets.
type RegionName string

const (
	West    RegionName = "WEST"
	Midwest RegionName = "MIDWEST"
	South   RegionName = "SOUTH"
	East    RegionName = "EAST"
)

// DefaultRegionOrder is the traversal order used for prediction slots
// and Final Four seeding unless a deployment configures otherwise.
var DefaultRegionOrder = [4]RegionName{West, Midwest, South, East}

// ParseRegionOrder validates a configured traversal order: exactly the
// four region names, each once.
func ParseRegionOrder(names []string) ([4]RegionName, error) {
	var order [4]RegionName
	if len(names) != 4 {
		return order, ErrUnknownRegion
	}
	seen := make(map[RegionName]bool, 4)
	for i, name := range names {
		region := RegionName(name)
		switch region {
		case West, Midwest, South, East:
		default:
			return order, ErrUnknownRegion
		}
		if seen[region] {
			return order, ErrUnknownRegion
		}
		seen[region] = true
		order[i] = region
	}
	return order, nil
}

// Region is a 16-team single elimination sub-bracket with four rounds
// (8, 4, 2, 1 matches) producing one regional champion.
type Region struct {
	Name     RegionName `json:"name"`
	Teams    [16]string `json:"teams"`
	Round1   [8]Match   `json:"round1"`
	Round2   [4]Match   `json:"round2"`
	Round3   [2]Match   `json:"round3"`
	Round4   Match      `json:"round4"`
	Champion string     `json:"champion"`
}

// Initialized reports whether the region's teams have been seeded.
// Teams are either all empty or all populated.
func (r *Region) Initialized() bool {
	return r.Teams[0] != ""
}

func (r *Region) init(teams [16]string) error {
	if r.Initialized() {
		return ErrAlreadyInitialized
	}
	seen := make(map[string]bool, 16)
	for _, team := range teams {
		if team == "" || seen[team] {
			return ErrInvalidTeamCount
		}
		seen[team] = true
	}
	r.Teams = teams
	for i := range r.Round1 {
		r.Round1[i].Home = teams[2*i]
		r.Round1[i].Away = teams[2*i+1]
	}
	return nil
}

// match returns the addressable match for a regional round (1..4).
func (r *Region) match(round, index int) (*Match, error) {
	switch round {
	case 1:
		if index < 0 || index >= len(r.Round1) {
			return nil, ErrMatchNotFound
		}
		return &r.Round1[index], nil
	case 2:
		if index < 0 || index >= len(r.Round2) {
			return nil, ErrMatchNotFound
		}
		return &r.Round2[index], nil
	case 3:
		if index < 0 || index >= len(r.Round3) {
			return nil, ErrMatchNotFound
		}
		return &r.Round3[index], nil
	case 4:
		if index != 0 {
			return nil, ErrMatchNotFound
		}
		return &r.Round4, nil
	default:
		return nil, ErrMatchNotFound
	}
}

// decideMatch records a result and propagates the winner into the next
// round's slot: round r match i feeds round r+1 match i/2, home side for
// even i, away side for odd i. Deciding the round 4 match sets the
// regional champion.
func (r *Region) decideMatch(winner string, round, index, homeScore, awayScore int) error {
	m, err := r.match(round, index)
	if err != nil {
		return err
	}
	if err := m.decide(winner, homeScore, awayScore); err != nil {
		return err
	}
	if round == 4 {
		r.Champion = winner
		return nil
	}
	next, err := r.match(round+1, index/2)
	if err != nil {
		return err
	}
	if index%2 == 0 {
		next.Home = winner
	} else {
		next.Away = winner
	}
	return nil
}

// roundDecided reports whether every match of a regional round has a winner.
func (r *Region) roundDecided(round int) bool {
	switch round {
	case 1:
		for i := range r.Round1 {
			if !r.Round1[i].Decided() {
				return false
			}
		}
	case 2:
		for i := range r.Round2 {
			if !r.Round2[i].Decided() {
				return false
			}
		}
	case 3:
		for i := range r.Round3 {
			if !r.Round3[i].Decided() {
				return false
			}
		}
	case 4:
		return r.Round4.Decided()
	}
	return true
}
