// Package feed fetches live tournament results from the sports-data
// provider.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Bracket fetches the nested round/bracket/game payload for a year.
func (c *Client) Bracket(ctx context.Context, year int) (*Bracket, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("year", strconv.Itoa(year))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	var b Bracket
	if err := json.NewDecoder(resp.Body).Decode(&b); err != nil {
		return nil, fmt.Errorf("failed to decode feed response: %w", err)
	}
	return &b, nil
}

// RegionalRound returns the bracketed games of a regional round (1..4).
func (b *Bracket) RegionalRound(round int) ([]RegionGames, error) {
	if round < 1 || round > 4 || round >= len(b.Rounds) {
		return nil, fmt.Errorf("feed has no regional round %d", round)
	}
	return b.Rounds[round].Bracketed, nil
}

// FlatRound returns the flat game list of the First Four, Final Four or
// championship round.
func (b *Bracket) FlatRound(round int) ([]Game, error) {
	if round >= len(b.Rounds) {
		return nil, fmt.Errorf("feed has no round %d", round)
	}
	r := b.Rounds[round]
	if len(r.Games) > 0 {
		return r.Games, nil
	}
	// First Four games arrive nested under brackets on some feeds.
	var games []Game
	for _, bracketed := range r.Bracketed {
		games = append(games, bracketed.Games...)
	}
	return games, nil
}
