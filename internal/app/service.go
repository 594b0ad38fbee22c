// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	recordqueue "github.com/runindex/runindex/internal/adapters/ingest/queue"
	workerpool "github.com/runindex/runindex/internal/adapters/ingest/worker"
	"github.com/runindex/runindex/internal/adapters/repository"
	"github.com/runindex/runindex/internal/adapters/snapshot"
	"github.com/runindex/runindex/internal/domain/leaderboard"
	"github.com/runindex/runindex/internal/domain/model"
	"github.com/runindex/runindex/internal/domain/progress"
	"github.com/runindex/runindex/internal/domain/tables"
	"github.com/runindex/runindex/pkg/extid"
	"github.com/runindex/runindex/pkg/logger"
	"github.com/runindex/runindex/pkg/metrics"
)

// enqueueBackoff is how long the loader waits for workers to drain a full
// queue before retrying.
const enqueueBackoff = 5 * time.Millisecond

// Board is one resolved leaderboard: the scope rows plus the ranked entries.
type Board struct {
	Game     model.Game
	Category model.Category
	Level    *model.Level
	Entries  []leaderboard.Entry
}

// GameDetail is one game with its category and level listings.
type GameDetail struct {
	Game       model.Game
	Categories []model.Category
	Levels     []model.Level
}

// Progression is one player's improvement history within a category.
type Progression struct {
	Game     model.Game
	Category model.Category
	User     model.User
	Entries  []progress.Entry
}

// Service owns the ingest pipeline and the swappable database handle, and
// implements the query dependencies of the HTTP API.
type Service struct {
	mu sync.RWMutex

	// Core components
	handle *repository.Handle

	// Configuration
	snapshotDir string
	workerCount int
	queueSize   int
	duplicates  repository.DuplicatePolicy

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSnapshotDir sets the directory holding the snapshot files.
func WithSnapshotDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.snapshotDir = dir
		}
	}
}

// WithWorkerCount sets the number of ingest worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the ingest queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDuplicatePolicy sets the policy applied to slug-collision groups.
func WithDuplicatePolicy(policy repository.DuplicatePolicy) Option {
	return func(s *Service) {
		if policy != nil {
			s.duplicates = policy
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// DuplicatePolicyByName resolves a configured policy name.
// Accepts "drop_all" and "keep_earliest".
func DuplicatePolicyByName(name string) (repository.DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "drop_all":
		return repository.DropAllDuplicates, nil
	case "keep_earliest":
		return repository.KeepEarliestCreated, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPolicy, name)
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		handle:      repository.NewHandle(),
		snapshotDir: "snapshot",
		workerCount: runtime.NumCPU() * 2,
		queueSize:   100000,
		duplicates:  repository.DropAllDuplicates,
		logger:      nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start imports the snapshot and publishes the first database.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting mirror service...",
		logger.String("snapshotDir", s.snapshotDir),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
	)

	if err := s.importLocked(ctx); err != nil {
		return err
	}

	s.started = true
	return nil
}

// Stop marks the service stopped. The live database stays readable so that
// in-flight queries drain cleanly.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "mirror service stopped")
}

// Refresh re-imports the snapshot directory and atomically swaps in the
// freshly built database.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.importLocked(ctx)
}

// importLocked runs one full snapshot import. Caller holds s.mu.
func (s *Service) importLocked(ctx context.Context) error {
	start := time.Now()
	batchID := uuid.NewString()

	s.logger.Info(ctx, "snapshot import started", logger.String("batchID", batchID))

	q := recordqueue.NewInMemoryQueue(
		recordqueue.WithCapacity(s.queueSize),
		recordqueue.WithBufferSize(s.queueSize),
	)
	sink := newTablesSink()
	pool := workerpool.NewPool(s.workerCount, q, sink)
	pool.Start(ctx)

	loadErr := snapshot.LoadAll(ctx, s.snapshotDir, func(kind model.Kind, line []byte) error {
		for !q.Enqueue(ctx, recordqueue.Record{Kind: kind, Line: line}) {
			if err := ctx.Err(); err != nil {
				return err
			}
			if q.IsClosed() {
				return recordqueue.ErrClosed
			}
			// Queue full; let workers drain
			time.Sleep(enqueueBackoff)
		}
		return nil
	})
	_ = q.Close()
	pool.Wait()

	if loadErr != nil {
		return fmt.Errorf("load snapshot: %w", loadErr)
	}

	staged := sink.tables()
	db, err := repository.BuildClean(staged, repository.WithDuplicatePolicy(s.duplicates))
	if err != nil {
		return fmt.Errorf("build database: %w", err)
	}

	previous := s.handle.Swap(db)

	metrics.IncrementImports()
	metrics.RecordImportDuration(float64(time.Since(start).Milliseconds()))
	metrics.UpdateImportLastUnix(float64(time.Now().Unix()))

	s.logger.Info(ctx, "snapshot import finished",
		logger.String("batchID", batchID),
		logger.Duration("took", time.Since(start)),
		logger.Bool("replaced", previous != nil),
		logger.Any("rows", db.Counts()),
	)
	return nil
}

// db returns the live database or ErrNotReady.
func (s *Service) db() (*repository.Database, error) {
	db := s.handle.Current()
	if db == nil {
		return nil, ErrNotReady
	}
	return db, nil
}

// Leaderboard resolves a board by slugs. levelSlug is empty for full-game
// boards. includeObsolete keeps superseded runs in the ranking.
func (s *Service) Leaderboard(ctx context.Context, gameSlug, categorySlug, levelSlug string, includeObsolete bool) (*Board, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	game, ok := db.GameBySlug(gameSlug)
	if !ok {
		return nil, fmt.Errorf("game %q: %w", gameSlug, ErrNotFound)
	}

	scope := repository.Scope{GameID: game.ID}
	board := &Board{Game: game}

	if levelSlug == "" {
		category, ok := db.GameCategoryBySlug(game.ID, categorySlug)
		if !ok {
			return nil, fmt.Errorf("category %q: %w", categorySlug, ErrNotFound)
		}
		scope.CategoryID = category.ID
		board.Category = category
	} else {
		level, ok := db.LevelBySlug(game.ID, levelSlug)
		if !ok {
			return nil, fmt.Errorf("level %q: %w", levelSlug, ErrNotFound)
		}
		category, ok := db.LevelCategoryBySlug(game.ID, categorySlug)
		if !ok {
			return nil, fmt.Errorf("category %q: %w", categorySlug, ErrNotFound)
		}
		scope.CategoryID = category.ID
		scope.LevelID = level.ID
		board.Category = category
		board.Level = &level
	}

	board.Entries = leaderboard.Rank(&board.Game, db.RunsForScope(scope), includeObsolete)
	return board, nil
}

// Progress computes a player's improvement history within a category.
func (s *Service) Progress(ctx context.Context, gameSlug, categorySlug, userSlug string) (*Progression, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	game, ok := db.GameBySlug(gameSlug)
	if !ok {
		return nil, fmt.Errorf("game %q: %w", gameSlug, ErrNotFound)
	}
	user, ok := db.UserBySlug(userSlug)
	if !ok {
		return nil, fmt.Errorf("user %q: %w", userSlug, ErrNotFound)
	}
	category, ok := db.GameCategoryBySlug(game.ID, categorySlug)
	if !ok {
		category, ok = db.LevelCategoryBySlug(game.ID, categorySlug)
	}
	if !ok {
		return nil, fmt.Errorf("category %q: %w", categorySlug, ErrNotFound)
	}

	var runs []model.Run
	for _, run := range db.RunsForCategory(category.ID) {
		for _, p := range run.Players {
			if p.UserID == user.ID {
				runs = append(runs, run)
				break
			}
		}
	}

	boards := func(levelID uint64) []leaderboard.Entry {
		scope := repository.Scope{GameID: game.ID, CategoryID: category.ID, LevelID: levelID}
		return leaderboard.Rank(&game, db.RunsForScope(scope), false)
	}

	return &Progression{
		Game:     game,
		Category: category,
		User:     user,
		Entries:  progress.History(&game, runs, boards),
	}, nil
}

// GameBySlug resolves a game with its category and level listings.
func (s *Service) GameBySlug(ctx context.Context, gameSlug string) (*GameDetail, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	game, ok := db.GameBySlug(gameSlug)
	if !ok {
		return nil, fmt.Errorf("game %q: %w", gameSlug, ErrNotFound)
	}
	return &GameDetail{
		Game:       game,
		Categories: db.CategoriesForGame(game.ID),
		Levels:     db.LevelsForGame(game.ID),
	}, nil
}

// Games lists all games ordered by name.
func (s *Service) Games(ctx context.Context) ([]model.Game, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	return db.Games(), nil
}

// Node resolves an external token to the row it names.
func (s *Service) Node(ctx context.Context, token string) (string, any, error) {
	db, err := s.db()
	if err != nil {
		return "", nil, err
	}

	id, kind, err := extid.Parse(token)
	if err != nil {
		return "", nil, err
	}

	var (
		row any
		ok  bool
	)
	switch kind {
	case extid.KindGame:
		row, ok = db.GameByID(id)
	case extid.KindCategory:
		row, ok = db.CategoryByID(id)
	case extid.KindLevel:
		row, ok = db.LevelByID(id)
	case extid.KindUser:
		row, ok = db.UserByID(id)
	case extid.KindRun:
		row, ok = db.RunByID(id)
	}
	if !ok {
		return "", nil, fmt.Errorf("token %q: %w", token, ErrNotFound)
	}
	return kind.String(), row, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"snapshotDir": s.snapshotDir,
	}

	if db := s.handle.Current(); db != nil {
		stats["rows"] = db.Counts()
		stats["watermark"] = db.Watermark().UTC().Format(time.RFC3339)
	}

	return stats
}

// tablesSink collects normalized rows into staging tables under a mutex so
// that concurrent workers can share it.
type tablesSink struct {
	mu sync.Mutex
	t  *tables.Tables
}

func newTablesSink() *tablesSink {
	return &tablesSink{t: tables.New()}
}

func (s *tablesSink) PutGame(_ context.Context, game model.Game, categories []model.Category, levels []model.Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t.PutGame(game)
	for _, c := range categories {
		s.t.PutCategory(c)
	}
	for _, l := range levels {
		s.t.PutLevel(l)
	}
	return nil
}

func (s *tablesSink) PutUser(_ context.Context, user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t.PutUser(user)
	return nil
}

func (s *tablesSink) PutRun(_ context.Context, run model.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t.PutRun(run)
	return nil
}

// tables hands the staged tables to the build step, after all workers have
// stopped writing.
func (s *tablesSink) tables() *tables.Tables {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t
}
