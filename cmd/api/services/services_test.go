package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gomodule/redigo/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"roast-board/cmd/api/clients/rosterclient"
	"roast-board/config"
	"roast-board/eventbus"
	"roast-board/events"
	"roast-board/generator"
	"roast-board/models"
	"roast-board/repositories"
	"roast-board/store"
	"roast-board/sweeper"
)

// Monday of ISO week 2025-11.
var monday = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

type fakeRoster struct {
	mu          sync.Mutex
	teams       []rosterclient.Team
	players     []rosterclient.Player
	details     rosterclient.PlayerDetails
	rosterErr   error
	teamsErr    error
	detailsErr  error
	rosterCalls int
}

func (f *fakeRoster) Teams(context.Context, string) ([]rosterclient.Team, error) {
	return f.teams, f.teamsErr
}

func (f *fakeRoster) Roster(context.Context, string, string) ([]rosterclient.Player, error) {
	f.mu.Lock()
	f.rosterCalls++
	f.mu.Unlock()
	return f.players, f.rosterErr
}

func (f *fakeRoster) PlayerDetails(context.Context, string, string) (rosterclient.PlayerDetails, error) {
	return f.details, f.detailsErr
}

type fakeNews struct {
	headlines []string
	err       error
}

func (f *fakeNews) Headlines(context.Context, string) ([]string, error) {
	return f.headlines, f.err
}

type fakeGenerator struct {
	candidates []string
	err        error
	subjects   []generator.Subject
}

func (f *fakeGenerator) Generate(_ context.Context, s generator.Subject) (*generator.Result, error) {
	f.subjects = append(f.subjects, s)
	if f.err != nil {
		return nil, f.err
	}
	return &generator.Result{
		Candidates: f.candidates,
		Log: &generator.RequestLog{
			Prompt:     "prompt",
			Response:   "response",
			ModelName:  "gemini-test",
			TokenUsage: generator.TokenUsage{InputTokens: 10, OutputTokens: 20, TotalTokens: 30},
		},
	}, nil
}

type fakeLogs struct {
	entries []models.GenerationLog
	err     error
}

func (f *fakeLogs) Insert(_ context.Context, l models.GenerationLog) (*mongo.InsertOneResult, error) {
	f.entries = append(f.entries, l)
	return &mongo.InsertOneResult{}, f.err
}

type recordingBus struct {
	eventbus.NoopBus
	mu     sync.Mutex
	topics []string
	events []events.RoastEvent
	err    error
}

func (b *recordingBus) Publish(_ context.Context, topic string, e eventbus.Event) error {
	if b.err != nil {
		return b.err
	}
	payload, err := eventbus.DecodeJSON[events.RoastEvent](e)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.topics = append(b.topics, topic)
	b.events = append(b.events, payload)
	return nil
}

type fixture struct {
	svc    *RoastService
	mr     *miniredis.Miniredis
	roster *fakeRoster
	news   *fakeNews
	gen    *fakeGenerator
	logs   *fakeLogs
	bus    *recordingBus
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	pool := &redis.Pool{
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", addr)
		},
	}
	t.Cleanup(func() { _ = pool.Close() })
	st := store.NewRedisStore(pool)

	f := &fixture{
		mr: mr,
		roster: &fakeRoster{
			teams: []rosterclient.Team{{ID: "12", Name: "Kansas City Chiefs"}},
			players: []rosterclient.Player{
				{ID: "3139477", Name: "Patrick Mahomes", Position: "QB", JerseyNumber: 15, TeamID: "12", Stats: map[string]any{"age": 29}},
				{ID: "15847", Name: "Travis Kelce", Position: "TE", JerseyNumber: 87, TeamID: "12"},
			},
			details: rosterclient.PlayerDetails{Hometown: "Tyler, TX", College: "Texas Tech", Stats: map[string]any{"passingYards": 3928}},
		},
		news: &fakeNews{headlines: []string{"one", "two", "three", "four"}},
		gen:  &fakeGenerator{candidates: []string{"first", "second", "third"}},
		logs: &fakeLogs{},
		bus:  &recordingBus{},
		now:  monday,
	}

	clock := func() time.Time { return f.now }
	repo := repositories.NewRoastRepository(st, repositories.RoastRepositoryOptions{GlobalPoolLimit: 100, Now: clock})
	catalog := NewCatalogService(st, f.roster, f.news, config.RetentionConfig{
		TeamsTTL:  24 * time.Hour,
		RosterTTL: time.Hour,
		PlayerTTL: 30 * time.Minute,
		NewsTTL:   30 * time.Minute,
	})
	f.svc = NewRoastService(repo, catalog, f.gen, f.logs, f.bus, sweeper.New(st), RoastServiceOptions{})
	f.svc.pick = func(int) int { return 1 }
	f.svc.now = clock
	return f
}

func generateInput(client string) GenerateInput {
	return GenerateInput{PlayerID: "3139477", TeamID: "12", Sport: "nfl", ClientID: client}
}

func TestGenerateCreatesRoast(t *testing.T) {
	f := newFixture(t)

	roast, created, err := f.svc.Generate(context.Background(), generateInput("c1"))
	require.NoError(t, err)

	assert.True(t, created)
	assert.Equal(t, "second", roast.Text)
	assert.Equal(t, "2025-11", roast.WeekID)
	assert.Equal(t, models.PlayerSnapshot{Name: "Patrick Mahomes", Position: "QB", Team: "Kansas City Chiefs", JerseyNumber: 15}, roast.Player)

	require.Len(t, f.gen.subjects, 1)
	subject := f.gen.subjects[0]
	assert.Equal(t, "Kansas City Chiefs", subject.Team)
	assert.Equal(t, "Texas Tech", subject.College)
	assert.Equal(t, "Tyler, TX", subject.Hometown)
	assert.Equal(t, []string{"one", "two", "three"}, subject.News)
	assert.Equal(t, 29, subject.Stats["age"])
	assert.Equal(t, 3928, subject.Stats["passingYards"])

	require.Len(t, f.logs.entries, 1)
	assert.Equal(t, roast.ID, f.logs.entries[0].RoastID)
	assert.Equal(t, int64(30), f.logs.entries[0].TotalTokens)
	assert.Nil(t, f.logs.entries[0].ErrorMessage)

	require.Len(t, f.bus.events, 1)
	assert.Equal(t, events.RoastCreated, f.bus.events[0].Type)
	assert.Equal(t, roast.ID, f.bus.events[0].RoastID)
	assert.Equal(t, eventbus.TopicRoastEvents.Base(), f.bus.topics[0])
}

func TestGenerateDefaultsSport(t *testing.T) {
	f := newFixture(t)
	in := generateInput("c1")
	in.Sport = ""

	roast, _, err := f.svc.Generate(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "nfl", roast.Sport)
}

func TestGenerateWithoutClientReusesCurrentRoast(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, created, err := f.svc.Generate(ctx, generateInput(""))
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := f.svc.Generate(ctx, generateInput(""))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Len(t, f.gen.subjects, 1)

	// A client always gets a fresh roast.
	fresh, created, err := f.svc.Generate(ctx, generateInput("c1"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, fresh.ID)
}

func TestGenerateValidation(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.Generate(context.Background(), GenerateInput{Sport: "cricket", ClientID: "bad client"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrValidation))

	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Errors, 4)
	assert.Empty(t, f.gen.subjects)
}

func TestGenerateUnknownPlayer(t *testing.T) {
	f := newFixture(t)
	in := generateInput("c1")
	in.PlayerID = "nobody"

	_, _, err := f.svc.Generate(context.Background(), in)
	assert.True(t, errors.Is(err, models.ErrNotFound))
	assert.Empty(t, f.gen.subjects)
}

func TestGenerateRosterFailure(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want error
	}{
		{name: "timeout", err: fmt.Errorf("%w: roster", models.ErrUpstreamTimeout), want: models.ErrUpstreamTimeout},
		{name: "deadline", err: context.DeadlineExceeded, want: models.ErrUpstreamTimeout},
		{name: "other", err: errors.New("bad gateway"), want: models.ErrGenerationFailed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.roster.rosterErr = tc.err

			_, _, err := f.svc.Generate(context.Background(), generateInput("c1"))
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestGenerateToleratesOptionalSources(t *testing.T) {
	f := newFixture(t)
	f.roster.teamsErr = errors.New("down")
	f.roster.detailsErr = errors.New("down")
	f.news.err = errors.New("down")

	roast, _, err := f.svc.Generate(context.Background(), generateInput("c1"))
	require.NoError(t, err)

	assert.Equal(t, "Unknown Team", roast.Player.Team)
	subject := f.gen.subjects[0]
	assert.Empty(t, subject.News)
	assert.Empty(t, subject.Hometown)
}

func TestGenerateGeneratorFailure(t *testing.T) {
	f := newFixture(t)
	f.gen.err = fmt.Errorf("%w: empty answer", models.ErrGenerationFailed)

	_, _, err := f.svc.Generate(context.Background(), generateInput("c1"))
	assert.True(t, errors.Is(err, models.ErrGenerationFailed))

	require.Len(t, f.logs.entries, 1)
	require.NotNil(t, f.logs.entries[0].ErrorMessage)
	assert.Empty(t, f.logs.entries[0].RoastID)
	assert.Empty(t, f.bus.events)
	for _, key := range f.mr.Keys() {
		assert.True(t, strings.HasPrefix(key, "cache:"), key)
	}
}

func TestGenerateWithoutCandidates(t *testing.T) {
	f := newFixture(t)
	f.gen.candidates = nil
	f.svc.pick = rand.IntN

	var err error
	assert.NotPanics(t, func() {
		_, _, err = f.svc.Generate(context.Background(), generateInput("c1"))
	})
	assert.ErrorIs(t, err, models.ErrGenerationFailed)

	require.Len(t, f.logs.entries, 1)
	require.NotNil(t, f.logs.entries[0].ErrorMessage)
	assert.Contains(t, *f.logs.entries[0].ErrorMessage, "no candidates")
	assert.Equal(t, "gemini-test", f.logs.entries[0].ModelName)
	assert.Empty(t, f.bus.events)
	for _, key := range f.mr.Keys() {
		assert.True(t, strings.HasPrefix(key, "cache:"), key)
	}
}

func TestGenerateSideEffectFailuresAreTolerated(t *testing.T) {
	f := newFixture(t)
	f.logs.err = errors.New("mongo down")
	f.bus.err = errors.New("kafka down")

	roast, created, err := f.svc.Generate(context.Background(), generateInput("c1"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, roast.ID)
}

func TestCatalogCachesRoster(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.Generate(ctx, generateInput("c1"))
	require.NoError(t, err)
	_, _, err = f.svc.Generate(ctx, generateInput("c2"))
	require.NoError(t, err)

	assert.Equal(t, 1, f.roster.rosterCalls)
	assert.True(t, f.mr.Exists("cache:roster:nfl:12"))
	assert.True(t, f.mr.Exists("cache:teams:nfl"))
	assert.True(t, f.mr.Exists("cache:news:3139477"))
	assert.Equal(t, time.Hour, f.mr.TTL("cache:roster:nfl:12"))
}

func TestVote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	roast, _, err := f.svc.Generate(ctx, generateInput("c1"))
	require.NoError(t, err)

	res, err := f.svc.Vote(ctx, roast.ID, "upvote", "c2")
	require.NoError(t, err)
	assert.Equal(t, models.VoteResult{Upvotes: 1}, res)

	_, err = f.svc.Vote(ctx, roast.ID, "down", "c2")
	assert.True(t, errors.Is(err, models.ErrAlreadyVoted))

	require.Len(t, f.bus.events, 2)
	voted := f.bus.events[1]
	assert.Equal(t, events.RoastVoted, voted.Type)
	assert.Equal(t, "3139477", voted.PlayerID)
	assert.Equal(t, "2025-11", voted.WeekID)
	assert.Equal(t, "up", voted.Direction)
}

func TestVoteRejectsDirection(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Vote(context.Background(), "3139477-2025-11-abc", "sideways", "c1")
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestListAndTop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		r, _, err := f.svc.Generate(ctx, generateInput("c1"))
		require.NoError(t, err)
		ids = append(ids, r.ID)
		f.now = f.now.Add(time.Minute)
	}

	list, err := f.svc.ListForPlayer(ctx, "3139477", "")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, ids[2], list[0].ID)

	_, err = f.svc.Vote(ctx, ids[0], "up", "c9")
	require.NoError(t, err)

	top, err := f.svc.TopForPlayer(ctx, "3139477")
	require.NoError(t, err)
	require.NotEmpty(t, top)
	assert.Equal(t, ids[0], top[0].ID)

	week, err := f.svc.TopOfWeek(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, week)
	assert.Equal(t, ids[0], week[0].ID)

	got, err := f.svc.Get(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, ids[1], got.ID)
}

func TestSweepUsesServiceClock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.Generate(ctx, generateInput("c1"))
	require.NoError(t, err)

	res, err := f.svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Deleted)

	f.now = f.now.Add(14 * 24 * time.Hour)
	res, err = f.svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Positive(t, res.Deleted)
}
