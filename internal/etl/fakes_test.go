package etl_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"

	"github.com/okian/wolfwise/internal/adapters/nbalive"
	"github.com/okian/wolfwise/internal/adapters/reference"
	"github.com/okian/wolfwise/internal/adapters/statsapi"
	"github.com/okian/wolfwise/internal/domain/frame"
	"github.com/okian/wolfwise/internal/domain/model"
)

var errSource = errors.New("source down")

type fakeLive struct {
	today    string
	todayErr error
	boxErr   error
	pbpErr   error
	noAway   bool
}

func (f *fakeLive) TodaysGame(context.Context, string) (string, error) { return f.today, f.todayErr }

func (f *fakeLive) Boxscore(_ context.Context, _ string) (*nbalive.Boxscore, error) {
	if f.boxErr != nil {
		return nil, f.boxErr
	}
	var box nbalive.Boxscore
	if err := readJSON("../adapters/nbalive/testdata/boxscore.json", &box); err != nil {
		return nil, err
	}
	if f.noAway {
		box.Game.AwayTeam.TeamTricode = ""
	}
	return &box, nil
}

func (f *fakeLive) PlayByPlay(_ context.Context, _ string) (*nbalive.PlayByPlay, error) {
	if f.pbpErr != nil {
		return nil, f.pbpErr
	}
	var pbp nbalive.PlayByPlay
	return &pbp, readJSON("../adapters/nbalive/testdata/playbyplay.json", &pbp)
}

func readJSON(path string, v any) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

type fakeStats struct {
	mu          sync.Mutex
	lineups     map[int]*frame.Frame
	players     func(q statsapi.PlayerStatsQuery) (*frame.Frame, error)
	hustle      map[string]*frame.Frame
	logs        *frame.Frame
	recent      string
	lineupCalls []statsapi.LineupsQuery
	playerCalls []statsapi.PlayerStatsQuery
}

func (f *fakeStats) LeagueDashLineups(_ context.Context, q statsapi.LineupsQuery) (*frame.Frame, error) {
	f.mu.Lock()
	f.lineupCalls = append(f.lineupCalls, q)
	f.mu.Unlock()
	if fr, ok := f.lineups[q.GroupQuantity]; ok {
		return clone(fr), nil
	}
	return nil, errSource
}

func (f *fakeStats) LeagueDashPlayerStats(_ context.Context, q statsapi.PlayerStatsQuery) (*frame.Frame, error) {
	f.mu.Lock()
	f.playerCalls = append(f.playerCalls, q)
	f.mu.Unlock()
	if f.players == nil {
		return nil, errSource
	}
	return f.players(q)
}

func (f *fakeStats) LeagueHustleStatsPlayer(_ context.Context, q statsapi.HustleQuery) (*frame.Frame, error) {
	if fr, ok := f.hustle[q.PerMode]; ok {
		return clone(fr), nil
	}
	return nil, errSource
}

func (f *fakeStats) TeamGameLogs(context.Context, statsapi.TeamGameLogsQuery) (*frame.Frame, error) {
	if f.logs == nil {
		return nil, errSource
	}
	return f.logs, nil
}

func (f *fakeStats) MostRecentGame(context.Context, string) (string, error) { return f.recent, nil }

type fakeRecords struct {
	pages map[string][]reference.Record
}

func (f *fakeRecords) Records(_ context.Context, p reference.Page) ([]reference.Record, error) {
	recs, ok := f.pages[p.URL]
	if !ok {
		return nil, errSource
	}
	return recs, nil
}

type fakePublisher struct {
	mu    sync.Mutex
	games map[string][]model.LineupSnapshot
	err   error
}

func (p *fakePublisher) Store(_ context.Context, gameID string, snaps []model.LineupSnapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.games == nil {
		p.games = make(map[string][]model.LineupSnapshot)
	}
	p.games[gameID] = snaps
	return p.err
}

type fakeJob struct {
	name string
	err  error
	runs int
}

func (j *fakeJob) Name() string { return j.name }

func (j *fakeJob) Run(context.Context) error {
	j.runs++
	return j.err
}

// clone copies a canned frame; collectors reshape what they are given.
func clone(f *frame.Frame) *frame.Frame {
	return f.Select(f.Columns...)
}
