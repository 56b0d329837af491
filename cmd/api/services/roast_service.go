package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"roast-board/cmd/api/clients/rosterclient"
	"roast-board/eventbus"
	"roast-board/events"
	"roast-board/generator"
	"roast-board/keyspace"
	"roast-board/logger"
	"roast-board/models"
	"roast-board/repositories"
	"roast-board/sweeper"
)

const (
	DefaultSport   = "nfl"
	DefaultTopN    = 3
	DefaultRecentN = 2

	headlineCount  = 3
	publishTimeout = 5 * time.Second
)

// GenerationLogWriter persists one record per generation call.
type GenerationLogWriter interface {
	Insert(ctx context.Context, log models.GenerationLog) (*mongo.InsertOneResult, error)
}

type RoastServiceOptions struct {
	// StoreTimeout bounds each store-only operation.
	StoreTimeout time.Duration
	// GenerateTimeout bounds the whole generation flow.
	GenerateTimeout time.Duration
	TopN            int
	RecentN         int
}

type RoastService struct {
	roasts  *repositories.RoastRepository
	catalog *CatalogService
	gen     generator.Generator
	logs    GenerationLogWriter
	bus     eventbus.EventBus
	sweeper *sweeper.Sweeper
	opts    RoastServiceOptions

	pick func(n int) int
	now  func() time.Time
}

// NewRoastService wires the roast flows. logs may be nil; bus nil means
// events are dropped.
func NewRoastService(
	roasts *repositories.RoastRepository,
	catalog *CatalogService,
	gen generator.Generator,
	logs GenerationLogWriter,
	bus eventbus.EventBus,
	sw *sweeper.Sweeper,
	opts RoastServiceOptions,
) *RoastService {
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 3 * time.Second
	}
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = 45 * time.Second
	}
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	if opts.RecentN <= 0 {
		opts.RecentN = DefaultRecentN
	}
	if bus == nil {
		bus = eventbus.NoopBus{}
	}
	return &RoastService{
		roasts:  roasts,
		catalog: catalog,
		gen:     gen,
		logs:    logs,
		bus:     bus,
		sweeper: sw,
		opts:    opts,
		pick:    rand.IntN,
		now:     time.Now,
	}
}

type GenerateInput struct {
	PlayerID string
	TeamID   string
	Sport    string
	ClientID string
}

// Generate returns a roast for the player. Without a client id an existing
// roast of the current week is returned as is (created=false); otherwise a
// new one is generated and stored.
func (s *RoastService) Generate(ctx context.Context, in GenerateInput) (*models.Roast, bool, error) {
	if in.Sport == "" {
		in.Sport = DefaultSport
	}
	verr := &models.ValidationError{}
	if !keyspace.ValidIdentifier(in.PlayerID) {
		verr.Add("player_id", "is required")
	}
	if !keyspace.ValidIdentifier(in.TeamID) {
		verr.Add("team_id", "is required")
	}
	if !rosterclient.SupportedSport(in.Sport) {
		verr.Add("sport", "must be one of nfl, nba, mlb, nhl")
	}
	if in.ClientID != "" && !keyspace.ValidIdentifier(in.ClientID) {
		verr.Add("client_id", "must not contain ':' or spaces")
	}
	if err := verr.OrNil(); err != nil {
		return nil, false, err
	}

	if in.ClientID == "" {
		existing, err := s.currentRoast(ctx, in.PlayerID)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return nil, false, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.GenerateTimeout)
	defer cancel()

	subject, player, err := s.loadSubject(ctx, in)
	if err != nil {
		return nil, false, err
	}

	requestedAt := time.Now()
	result, genErr := s.gen.Generate(ctx, subject)
	if genErr != nil {
		s.writeGenerationLog(ctx, in.PlayerID, "", nil, genErr, requestedAt)
		return nil, false, genErr
	}
	if result == nil || len(result.Candidates) == 0 {
		err := fmt.Errorf("%w: no candidates", models.ErrGenerationFailed)
		s.writeGenerationLog(ctx, in.PlayerID, "", result, err, requestedAt)
		return nil, false, err
	}

	text :=result.Candidates[s.pick(len(result.Candidates))]
	roast, err := s.roasts.Create(ctx, models.NewRoast{
		PlayerID: in.PlayerID,
		TeamID:   in.TeamID,
		Sport:    in.Sport,
		ClientID: in.ClientID,
		Text:     text,
		Player:   player,
	})
	if err != nil {
		return nil, false, err
	}

	s.writeGenerationLog(ctx, in.PlayerID, roast.ID, result, nil, requestedAt)
	s.publish(ctx, events.NewRoastCreated(*roast))

	logger.InfoWithFields("roast generated", logger.Fields{
		"roast_id":  roast.ID,
		"player_id": roast.PlayerID,
		"week_id":   roast.WeekID,
		"client":    in.ClientID != "",
	})
	return roast, true, nil
}

func (s *RoastService) currentRoast(ctx context.Context, playerID string) (*models.Roast, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()
	return s.roasts.CurrentForSubject(ctx, playerID)
}

// loadSubject gathers the prompt material. The roster lookup is required;
// team name, details and headlines degrade to defaults.
func (s *RoastService) loadSubject(ctx context.Context, in GenerateInput) (generator.Subject, models.PlayerSnapshot, error) {
	var (
		player    *rosterclient.Player
		headlines []string
		teamName  = "Unknown Team"
		details   rosterclient.PlayerDetails
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		roster, err := s.catalog.ListPlayers(gctx, in.Sport, in.TeamID)
		if err != nil {
			return upstream("load roster", err)
		}
		for i := range roster {
			if roster[i].ID == in.PlayerID {
				player = &roster[i]
				break
			}
		}
		if player == nil {
			return fmt.Errorf("player %s on team %s: %w", in.PlayerID, in.TeamID, models.ErrNotFound)
		}
		news, err := s.catalog.Headlines(gctx, in.PlayerID, player.Name)
		if err != nil {
			logger.Log.Warnf("headlines for %s unavailable: %v", in.PlayerID, err)
			return nil
		}
		headlines = news[:min(len(news), headlineCount)]
		return nil
	})
	g.Go(func() error {
		teams, err := s.catalog.ListTeams(gctx, in.Sport)
		if err != nil {
			logger.Log.Warnf("teams for %s unavailable: %v", in.Sport, err)
			return nil
		}
		for _, t := range teams {
			if t.ID == in.TeamID {
				teamName = t.Name
				break
			}
		}
		return nil
	})
	g.Go(func() error {
		d, err := s.catalog.PlayerDetails(gctx, in.Sport, in.PlayerID)
		if err != nil {
			logger.Log.Warnf("details for %s unavailable: %v", in.PlayerID, err)
			return nil
		}
		details = d
		return nil
	})
	if err := g.Wait(); err != nil {
		return generator.Subject{}, models.PlayerSnapshot{}, err
	}

	stats := make(map[string]any, len(player.Stats)+len(details.Stats))
	for k, v := range player.Stats {
		stats[k] = v
	}
	for k, v := range details.Stats {
		stats[k] = v
	}
	college := details.College
	if college == "" {
		college = player.College
	}

	subject := generator.Subject{
		Name:     player.Name,
		Position: player.Position,
		Team:     teamName,
		Bio:      details.Bio,
		Hometown: details.Hometown,
		College:  college,
		Stats:    stats,
		News:     headlines,
	}
	snapshot := models.PlayerSnapshot{
		Name:         player.Name,
		Position:     player.Position,
		Team:         teamName,
		JerseyNumber: player.JerseyNumber,
	}
	return subject, snapshot, nil
}

// upstream keeps timeouts and validation errors as they are and reports
// every other provider failure as a failed generation.
func upstream(op string, err error) error {
	if errors.Is(err, models.ErrUpstreamTimeout) || errors.Is(err, models.ErrValidation) || errors.Is(err, models.ErrNotFound) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", models.ErrUpstreamTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %v", models.ErrGenerationFailed, op, err)
}

func (s *RoastService) writeGenerationLog(ctx context.Context, playerID, roastID string, result *generator.Result, genErr error, requestedAt time.Time) {
	if s.logs == nil {
		return
	}
	entry := models.GenerationLog{
		RoastID:     roastID,
		PlayerID:    playerID,
		RequestedAt: requestedAt,
		CompletedAt: time.Now(),
		DurationMs:  time.Since(requestedAt).Milliseconds(),
	}
	if genErr != nil {
		msg := genErr.Error()
		entry.ErrorMessage = &msg
	}
	if result != nil && result.Log != nil {
		entry.ModelName = result.Log.ModelName
		entry.ModelVersion = result.Log.ModelVersion
		entry.InputTokens = result.Log.TokenUsage.InputTokens
		entry.OutputTokens = result.Log.TokenUsage.OutputTokens
		entry.TotalTokens = result.Log.TokenUsage.TotalTokens
		entry.InputPrompt = result.Log.Prompt
		entry.OutputResponse = result.Log.Response
		entry.Candidates = result.Candidates
	}

	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.StoreTimeout)
	defer cancel()
	if _, err := s.logs.Insert(logCtx, entry); err != nil {
		logger.Log.Warnf("failed to store generation log for %s: %v", playerID, err)
	}
}

func (s *RoastService) publish(ctx context.Context, e events.RoastEvent) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := events.Publish(pubCtx, s.bus, e); err != nil {
		logger.Log.Warnf("failed to publish %s for %s: %v", e.Type, e.RoastID, err)
	}
}

func (s *RoastService) Get(ctx context.Context, id string) (*models.Roast, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()
	return s.roasts.Get(ctx, id)
}

// Vote applies a vote; direction accepts up/down and upvote/downvote.
func (s *RoastService) Vote(ctx context.Context, id, direction, clientID string) (models.VoteResult, error) {
	dir, ok := models.ParseVoteDirection(direction)
	if !ok {
		return models.VoteResult{}, models.NewValidationError("vote_type", "must be up or down")
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()
	res, err := s.roasts.Vote(storeCtx, id, dir, strings.TrimSpace(clientID))
	if err != nil {
		return models.VoteResult{}, err
	}

	playerID, week, _, _ := keyspace.ParseRoastID(id)
	s.publish(ctx, events.NewRoastVoted(id, playerID, week, dir, res, s.now()))
	return res, nil
}

func (s *RoastService) ListForPlayer(ctx context.Context, playerID, clientID string) ([]models.Roast, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()
	return s.roasts.ListForSubject(ctx, playerID, clientID)
}

func (s *RoastService) TopForPlayer(ctx context.Context, playerID string) ([]models.Roast, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()
	return s.roasts.TopForSubject(ctx, playerID, s.opts.TopN, s.opts.RecentN)
}

func (s *RoastService) TopOfWeek(ctx context.Context) ([]models.Roast, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()
	return s.roasts.TopOfWeek(ctx, s.opts.TopN, s.opts.RecentN)
}

// Sweep runs the retention sweep for the current time.
func (s *RoastService) Sweep(ctx context.Context) (sweeper.Result, error) {
	return s.sweeper.Sweep(ctx, s.now())
}
