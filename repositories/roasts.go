package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"roast-board/bucket"
	"roast-board/keyspace"
	"roast-board/logger"
	"roast-board/models"
	"roast-board/ranking"
	"roast-board/store"
)

const (
	voteFieldUp   = "up"
	voteFieldDown = "down"

	// resolveParallelism bounds concurrent record fetches while resolving an
	// index.
	resolveParallelism = 8
)

// RoastRepositoryOptions configures expiry windows and the clock.
type RoastRepositoryOptions struct {
	RecordTTL    time.Duration
	VoteGuardTTL time.Duration
	TopViewTTL   time.Duration
	// GlobalPoolLimit caps how many of the newest ids of the weekly global
	// index are considered by TopOfWeek. 0 means no cap.
	GlobalPoolLimit int
	Now             func() time.Time
}

// RoastRepository owns roast records and every index derived from them.
// Records and indexes are written by separate calls; readers drop ids whose
// record has gone.
type RoastRepository struct {
	store     store.Store
	opts      RoastRepositoryOptions
	newSuffix func() string
}

func NewRoastRepository(st store.Store, opts RoastRepositoryOptions) *RoastRepository {
	if opts.RecordTTL <= 0 {
		opts.RecordTTL = 7 * 24 * time.Hour
	}
	if opts.VoteGuardTTL <= 0 {
		opts.VoteGuardTTL = 7 * 24 * time.Hour
	}
	if opts.TopViewTTL <= 0 {
		opts.TopViewTTL = 5 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &RoastRepository{
		store: st,
		opts:  opts,
		newSuffix: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")
		},
	}
}

// CurrentWeek is the bucket id of the repository clock.
func (r *RoastRepository) CurrentWeek() string {
	return bucket.ID(r.opts.Now())
}

// Create stores a new roast in the current week and registers it in the
// subject, global and (when a client id is given) client indexes.
func (r *RoastRepository) Create(ctx context.Context, in models.NewRoast) (*models.Roast, error) {
	verr := &models.ValidationError{}
	if !keyspace.ValidIdentifier(in.PlayerID) {
		verr.Add("player_id", "is required and must not contain ':' or spaces")
	}
	if strings.TrimSpace(in.TeamID) == "" {
		verr.Add("team_id", "is required")
	}
	if in.ClientID != "" && !keyspace.ValidIdentifier(in.ClientID) {
		verr.Add("client_id", "must not contain ':' or spaces")
	}
	if strings.TrimSpace(in.Text) == "" {
		verr.Add("text", "is required")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	now := r.opts.Now().UTC()
	week := bucket.ID(now)
	suffix := r.newSuffix()
	roast := models.Roast{
		ID:            keyspace.RoastID(in.PlayerID, week, suffix),
		SchemaVersion: models.RoastSchemaVersion,
		PlayerID:      in.PlayerID,
		TeamID:        in.TeamID,
		Sport:         in.Sport,
		Text:          in.Text,
		CreatedAt:     now,
		WeekID:        week,
		Player:        in.Player,
	}

	data, err := json.Marshal(roast)
	if err != nil {
		return nil, fmt.Errorf("marshal roast: %w", err)
	}

	ttl := r.opts.RecordTTL
	recordKey := keyspace.Record(week, in.PlayerID, suffix)
	if err := r.store.SetWithExpiry(ctx, recordKey, string(data), ttl); err != nil {
		return nil, err
	}

	votesKey := keyspace.Votes(recordKey)
	for _, field := range []string{voteFieldUp, voteFieldDown} {
		if _, err := r.store.HIncrBy(ctx, votesKey, field, 0); err != nil {
			return nil, err
		}
	}
	if err := r.store.Expire(ctx, votesKey, ttl); err != nil {
		return nil, err
	}

	subjectKey := keyspace.SubjectIndex(in.PlayerID, week)
	if err := r.store.SAdd(ctx, subjectKey, roast.ID); err != nil {
		return nil, err
	}
	if err := r.store.Expire(ctx, subjectKey, ttl); err != nil {
		return nil, err
	}

	globalKey := keyspace.GlobalIndex(week)
	if err := r.store.LPush(ctx, globalKey, roast.ID); err != nil {
		return nil, err
	}
	if err := r.store.Expire(ctx, globalKey, ttl); err != nil {
		return nil, err
	}

	if in.ClientID != "" {
		clientKey := keyspace.ClientIndex(in.ClientID, in.PlayerID)
		if err := r.store.LPush(ctx, clientKey, roast.ID); err != nil {
			return nil, err
		}
		if err := r.store.Expire(ctx, clientKey, ttl); err != nil {
			return nil, err
		}
	}

	// a new roast changes the recency half of the top view
	r.invalidateTopView(ctx, in.PlayerID, week)

	return &roast, nil
}

// Get loads a single roast with its current counters.
func (r *RoastRepository) Get(ctx context.Context, id string) (*models.Roast, error) {
	if strings.TrimSpace(id) == "" {
		return nil, models.NewValidationError("id", "is required")
	}
	roast, found, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("roast %s: %w", id, models.ErrNotFound)
	}
	return roast, nil
}

// Vote applies one up or down vote. With a client id the vote guard is
// claimed first with set-if-absent, so a repeated vote from the same client
// fails with models.ErrAlreadyVoted and changes nothing. Counters are bumped
// atomically in the store. Once the increment succeeds the vote stands: if
// the follow-up read of both counters fails, the result carries the new value
// of the voted counter and zero for the other one.
func (r *RoastRepository) Vote(ctx context.Context, id string, dir models.VoteDirection, clientID string) (models.VoteResult, error) {
	verr := &models.ValidationError{}
	if strings.TrimSpace(id) == "" {
		verr.Add("id", "is required")
	}
	if dir != models.VoteUp && dir != models.VoteDown {
		verr.Add("direction", "must be up or down")
	}
	if clientID != "" && !keyspace.ValidIdentifier(clientID) {
		verr.Add("client_id", "must not contain ':' or spaces")
	}
	if err := verr.OrNil(); err != nil {
		return models.VoteResult{}, err
	}

	recordKey, ok := keyspace.RecordForID(id)
	if !ok {
		return models.VoteResult{}, fmt.Errorf("roast %s: %w", id, models.ErrNotFound)
	}
	if _, found, err := r.store.Get(ctx, recordKey); err != nil {
		return models.VoteResult{}, err
	} else if !found {
		return models.VoteResult{}, fmt.Errorf("roast %s: %w", id, models.ErrNotFound)
	}

	guardKey := ""
	if clientID != "" {
		guardKey = keyspace.VoteGuard(clientID, id)
		claimed, err := r.store.SetNX(ctx, guardKey, string(dir), r.opts.VoteGuardTTL)
		if err != nil {
			return models.VoteResult{}, err
		}
		if !claimed {
			return models.VoteResult{}, fmt.Errorf("roast %s by client %s: %w", id, clientID, models.ErrAlreadyVoted)
		}
	}

	field := voteFieldUp
	if dir == models.VoteDown {
		field = voteFieldDown
	}
	votesKey := keyspace.Votes(recordKey)
	count, err := r.store.HIncrBy(ctx, votesKey, field, 1)
	if err != nil {
		if guardKey != "" {
			// release the guard so the client can retry
			if _, delErr := r.store.Delete(context.WithoutCancel(ctx), guardKey); delErr != nil {
				logger.Log.Warnf("failed to release vote guard %s: %v", guardKey, delErr)
			}
		}
		return models.VoteResult{}, err
	}

	var up, down int64
	if counters, err := r.store.HGetAll(ctx, votesKey); err != nil {
		logger.Log.Warnf("failed to read vote counters %s: %v", votesKey, err)
		if dir == models.VoteUp {
			up = count
		} else {
			down = count
		}
	} else {
		up, down = parseCounters(counters)
	}

	playerID, week, _, _ := keyspace.ParseRoastID(id)
	r.invalidateTopView(ctx, playerID, week)

	return models.VoteResult{Upvotes: up, Downvotes: down}, nil
}

// ListForSubject returns the roasts of a player, newest first. With a client
// id it reads the client's own list across weeks, otherwise the player's set
// for the current week. Ids whose record is gone are skipped.
func (r *RoastRepository) ListForSubject(ctx context.Context, playerID, clientID string) ([]models.Roast, error) {
	verr := &models.ValidationError{}
	if !keyspace.ValidIdentifier(playerID) {
		verr.Add("player_id", "is required and must not contain ':' or spaces")
	}
	if clientID != "" && !keyspace.ValidIdentifier(clientID) {
		verr.Add("client_id", "must not contain ':' or spaces")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	var (
		ids []string
		err error
	)
	if clientID != "" {
		ids, err = r.store.LRange(ctx, keyspace.ClientIndex(clientID, playerID), 0, -1)
	} else {
		ids, err = r.store.SMembers(ctx, keyspace.SubjectIndex(playerID, r.CurrentWeek()))
	}
	if err != nil {
		return nil, err
	}

	roasts, err := r.resolve(ctx, ids)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(roasts)
	return roasts, nil
}

// CurrentForSubject returns the newest roast of the player in the current
// week, or models.ErrNotFound.
func (r *RoastRepository) CurrentForSubject(ctx context.Context, playerID string) (*models.Roast, error) {
	roasts, err := r.ListForSubject(ctx, playerID, "")
	if err != nil {
		return nil, err
	}
	if len(roasts) == 0 {
		return nil, fmt.Errorf("current roast for %s: %w", playerID, models.ErrNotFound)
	}
	return &roasts[0], nil
}

type topView struct {
	TopN    int      `json:"top_n"`
	RecentN int      `json:"recent_n"`
	IDs     []string `json:"ids"`
}

// TopForSubject returns the ranked roasts of a player for the current week.
// The ranked id list is cached under the top view key until a vote or a new
// roast invalidates it, or its short TTL runs out; records are always
// re-read so counters are current.
func (r *RoastRepository) TopForSubject(ctx context.Context, playerID string, topN, recentN int) ([]models.Roast, error) {
	if !keyspace.ValidIdentifier(playerID) {
		return nil, models.NewValidationError("player_id", "is required and must not contain ':' or spaces")
	}

	week := r.CurrentWeek()
	viewKey := keyspace.TopView(playerID, week)

	raw, found, err := r.store.Get(ctx, viewKey)
	if err != nil {
		return nil, err
	}
	if found {
		var view topView
		if err := json.Unmarshal([]byte(raw), &view); err == nil && view.TopN == topN && view.RecentN == recentN {
			return r.resolve(ctx, view.IDs)
		}
	}

	ids, err := r.store.SMembers(ctx, keyspace.SubjectIndex(playerID, week))
	if err != nil {
		return nil, err
	}
	pool, err := r.resolve(ctx, ids)
	if err != nil {
		return nil, err
	}
	// set members come back unordered; fix the input order so ties rank
	// deterministically
	sortNewestFirst(pool)
	ranked := ranking.Rank(pool, topN, recentN)

	view := topView{TopN: topN, RecentN: recentN, IDs: make([]string, 0, len(ranked))}
	for _, roast := range ranked {
		view.IDs = append(view.IDs, roast.ID)
	}
	data, err := json.Marshal(view)
	if err != nil {
		return nil, fmt.Errorf("marshal top view: %w", err)
	}
	if err := r.store.SetWithExpiry(ctx, viewKey, string(data), r.opts.TopViewTTL); err != nil {
		return nil, err
	}
	return ranked, nil
}

// TopOfWeek ranks roasts across all players for the current week.
func (r *RoastRepository) TopOfWeek(ctx context.Context, topN, recentN int) ([]models.Roast, error) {
	end := -1
	if r.opts.GlobalPoolLimit > 0 {
		end = r.opts.GlobalPoolLimit - 1
	}
	ids, err := r.store.LRange(ctx, keyspace.GlobalIndex(r.CurrentWeek()), 0, end)
	if err != nil {
		return nil, err
	}
	pool, err := r.resolve(ctx, ids)
	if err != nil {
		return nil, err
	}
	return ranking.Rank(pool, topN, recentN), nil
}

// load reads one record and overlays its counters. found is false when the
// id is malformed or the record is gone.
func (r *RoastRepository) load(ctx context.Context, id string) (*models.Roast, bool, error) {
	recordKey, ok := keyspace.RecordForID(id)
	if !ok {
		return nil, false, nil
	}
	raw, found, err := r.store.Get(ctx, recordKey)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	var roast models.Roast
	if err := json.Unmarshal([]byte(raw), &roast); err != nil {
		logger.Log.Warnf("skipping unreadable roast record %s: %v", recordKey, err)
		return nil, false, nil
	}

	counters, err := r.store.HGetAll(ctx, keyspace.Votes(recordKey))
	if err != nil {
		return nil, false, err
	}
	roast.Upvotes, roast.Downvotes = parseCounters(counters)
	return &roast, true, nil
}

// resolve loads ids in index order, dropping the ones that no longer resolve.
func (r *RoastRepository) resolve(ctx context.Context, ids []string) ([]models.Roast, error) {
	slots := make([]*models.Roast, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveParallelism)
	for i, id := range ids {
		g.Go(func() error {
			roast, found, err := r.load(gctx, id)
			if err != nil {
				return err
			}
			if found {
				slots[i] = roast
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]models.Roast, 0, len(ids))
	for _, roast := range slots {
		if roast != nil {
			out = append(out, *roast)
		}
	}
	return out, nil
}

func (r *RoastRepository) invalidateTopView(ctx context.Context, playerID, week string) {
	if playerID == "" {
		return
	}
	if _, err := r.store.Delete(ctx, keyspace.TopView(playerID, week)); err != nil {
		logger.Log.Warnf("failed to invalidate top view for %s/%s: %v", playerID, week, err)
	}
}

func parseCounters(m map[string]string) (up, down int64) {
	up, _ = strconv.ParseInt(m[voteFieldUp], 10, 64)
	down, _ = strconv.ParseInt(m[voteFieldDown], 10, 64)
	return up, down
}

func sortNewestFirst(roasts []models.Roast) {
	slices.SortStableFunc(roasts, func(a, b models.Roast) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
