// Package operator drives feed results into the tournament engine. It
// is written to be re-run on a polling schedule: state conflicts from
// results that were already pushed are logged and skipped, so every
// pass is idempotent.
package operator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/openbracket/madpool/internal/bracket"
	"github.com/openbracket/madpool/internal/feed"
	"github.com/openbracket/madpool/internal/service"
)

type Syncer struct {
	feed           *feed.Client
	games          *service.GameService
	closeThreshold time.Duration
	now            func() time.Time
	log            *slog.Logger
}

func NewSyncer(feedClient *feed.Client, games *service.GameService, closeThreshold time.Duration, now func() time.Time, log *slog.Logger) *Syncer {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &Syncer{feed: feedClient, games: games, closeThreshold: closeThreshold, now: now, log: log}
}

// benign reports conflicts that repeated polling is expected to hit.
func benign(err error) bool {
	return errors.Is(err, bracket.ErrAlreadyDecided) ||
		errors.Is(err, bracket.ErrAlreadyInitialized) ||
		errors.Is(err, bracket.ErrBetsClosed) ||
		errors.Is(err, bracket.ErrRoundNotComplete) ||
		errors.Is(err, bracket.ErrRoundNotOpen) ||
		errors.Is(err, bracket.ErrFirstFourPending)
}

func (s *Syncer) apply(op string, err error) error {
	if err == nil || benign(err) {
		if err != nil {
			s.log.Debug("skipping", "op", op, "reason", err)
		}
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// SyncAll runs one full pass: play-ins, regional rounds, Final Four and
// championship, advancing rounds as they complete.
func (s *Syncer) SyncAll(ctx context.Context, year int) error {
	b, err := s.feed.Bracket(ctx, year)
	if err != nil {
		return err
	}
	if err := s.syncFirstFour(ctx, year, b); err != nil {
		return err
	}
	for round := 1; round <= 4; round++ {
		if err := s.syncRegionalRound(ctx, year, round, b); err != nil {
			return err
		}
	}
	if err := s.syncFinalFour(ctx, year, b); err != nil {
		return err
	}
	return s.syncChampionship(ctx, year, b)
}

func sortGames(games []feed.Game) {
	sort.Slice(games, func(i, j int) bool { return games[i].Number() < games[j].Number() })
}

func (s *Syncer) syncFirstFour(ctx context.Context, year int, b *feed.Bracket) error {
	games, err := b.FlatRound(feed.RoundFirstFour)
	if err != nil {
		return err
	}
	var playIns []feed.Game
	for _, g := range games {
		if strings.Contains(g.Title, "First Four") {
			playIns = append(playIns, g)
		}
	}
	sortGames(playIns)
	for _, g := range playIns {
		code := fmt.Sprintf("FFG%d", g.Number())
		if err := s.apply("init "+code, s.games.InitFirstFourMatch(ctx, year, code, g.Home.Alias, g.Away.Alias)); err != nil {
			return err
		}
		if !g.Decided() {
			continue
		}
		err := s.games.DetermineFirstFourWinner(ctx, year, code, g.WinnerAlias(), g.HomePoints, g.AwayPoints)
		if err := s.apply("decide "+code, err); err != nil {
			return err
		}
	}
	return nil
}

func (s *Syncer) syncRegionalRound(ctx context.Context, year, round int, b *feed.Bracket) error {
	brackets, err := b.RegionalRound(round)
	if err != nil {
		return err
	}
	for _, regionGames := range brackets {
		region, ok := feed.RegionName(regionGames.Bracket.Name)
		if !ok {
			return fmt.Errorf("unknown feed region %q", regionGames.Bracket.Name)
		}
		games := regionGames.Games
		sortGames(games)

		if round == 1 {
			if err := s.maybeCloseBets(ctx, year, games); err != nil {
				return err
			}
			if err := s.maybeInitRegion(ctx, year, region, games); err != nil {
				return err
			}
		}

		for i, g := range games {
			if !g.Decided() {
				continue
			}
			var err error
			if round == 4 {
				err = s.games.DetermineFinalRegionWinner(ctx, year, region, g.WinnerAlias(), g.HomePoints, g.AwayPoints)
			} else {
				err = s.games.DetermineMatchWinner(ctx, year, region, g.WinnerAlias(), round, i, g.HomePoints, g.AwayPoints)
			}
			op := fmt.Sprintf("%s round %d game %d", region, round, i+1)
			if err := s.apply(op, err); err != nil {
				return err
			}
		}
	}
	return s.apply("advance round", s.games.AdvanceRound(ctx, year))
}

// maybeInitRegion seeds a region once every participant is known. Teams
// are taken in game order, home then away, so adjacent pairs are the
// round 1 opponents.
func (s *Syncer) maybeInitRegion(ctx context.Context, year int, region bracket.RegionName, games []feed.Game) error {
	if len(games) != 8 {
		return nil
	}
	var teams [16]string
	for i, g := range games {
		if g.Home.Alias == "TBD" || g.Away.Alias == "TBD" {
			s.log.Info("region has TBD teams, skipping initialization", "region", region)
			return nil
		}
		teams[2*i] = g.Home.Alias
		teams[2*i+1] = g.Away.Alias
	}
	return s.apply(fmt.Sprintf("init region %s", region), s.games.InitRegion(ctx, year, region, teams))
}

// maybeCloseBets closes the betting window when the earliest scheduled
// round 1 game is within the configured threshold of now.
func (s *Syncer) maybeCloseBets(ctx context.Context, year int, games []feed.Game) error {
	var earliest time.Time
	for _, g := range games {
		if g.Scheduled.IsZero() {
			continue
		}
		if earliest.IsZero() || g.Scheduled.Before(earliest) {
			earliest = g.Scheduled
		}
	}
	if earliest.IsZero() {
		return nil
	}
	if earliest.Sub(s.now()) > s.closeThreshold {
		return nil
	}
	s.log.Info("first game within threshold, closing bets", "year", year, "starts", earliest)
	return s.apply("close bets", s.games.CloseBets(ctx, year))
}

func (s *Syncer) syncFinalFour(ctx context.Context, year int, b *feed.Bracket) error {
	games, err := b.FlatRound(feed.RoundFinalFour)
	if err != nil {
		return err
	}
	sortGames(games)
	for i, g := range games {
		if i > 1 {
			break
		}
		if !g.Decided() {
			continue
		}
		err := s.games.DetermineFinalFourWinner(ctx, year, i, g.WinnerAlias(), g.HomePoints, g.AwayPoints)
		if err := s.apply(fmt.Sprintf("semifinal %d", i+1), err); err != nil {
			return err
		}
	}
	return s.apply("advance round", s.games.AdvanceRound(ctx, year))
}

func (s *Syncer) syncChampionship(ctx context.Context, year int, b *feed.Bracket) error {
	games, err := b.FlatRound(feed.RoundChampionship)
	if err != nil {
		return err
	}
	if len(games) == 0 || !games[0].Decided() {
		return nil
	}
	g := games[0]
	err = s.games.DetermineChampion(ctx, year, g.WinnerAlias(), g.HomePoints, g.AwayPoints)
	if err := s.apply("championship", err); err != nil {
		return err
	}
	return s.apply("advance round", s.games.AdvanceRound(ctx, year))
}
