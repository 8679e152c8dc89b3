// Package telemock is a local, in-process emulator of the Telegram Bot API.
// It accepts the same HTTP calls a real bot framework issues, synthesizes
// plausible responses and lets a test harness inject synthetic inbound
// activity (user messages, button clicks, inline queries) that the bot
// retrieves through the usual getUpdates long poll.
package telemock

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/maxbolgarin/contem"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"github.com/maypok86/otter"
)

type (
	// Logger is the minimal logging surface telemock needs.
	Logger interface {
		Debug(msg string, args ...any)
		Info(msg string, args ...any)
		Warn(msg string, args ...any)
		Error(msg string, args ...any)
	}

	// SenderPicker chooses which group member a message comes from when the
	// caller did not name one. The default picks uniformly at random; tests
	// substitute a deterministic policy.
	SenderPicker func(members []User) User

	// Options bundles everything a Server can be constructed with.
	Options struct {
		Config     Config
		Logger     Logger
		Archiver   HistoryArchiver
		PickSender SenderPicker
		Metrics    MetricsConfig
	}
)

// HistoryArchiver receives every history entry for long-term storage
// outside the process, e.g. in MongoDB. Archive is called asynchronously
// and must be safe for concurrent use.
type HistoryArchiver interface {
	Archive(ctx context.Context, entry HistoryEntry) error
	Entries(ctx context.Context) ([]HistoryEntry, error)
}

const inlineCacheCapacity = 1000

// Server is one independent emulator instance. All mutable state (the id
// counters, the update queue, the history log, groups, the inline results
// cache) lives in its fields, so any number of servers can coexist in one
// process. Every method is safe for concurrent use.
type Server struct {
	cfg Config
	log Logger

	seq     *sequence
	queue   *updateQueue
	history *historyLog

	groupsMu    sync.Mutex
	groups      map[int64]*group
	nextGroupID int64

	inlineCache otter.Cache[string, []any]

	webhookMu  sync.Mutex
	webhookURL string

	archiver   HistoryArchiver
	pickSender SenderPicker
	metrics    *metrics

	api   *apiServer
	web   *webMonitor
	sched gocron.Scheduler
}

// New creates a Server. It does not listen on anything: use the instance
// directly from tests, mount Handler on a listener of your own, or call
// Start for the full HTTP surface.
func New(optsRaw ...Options) (*Server, error) {
	opts, err := prepareOpts(optsRaw...)
	if err != nil {
		return nil, errm.Wrap(err, "prepare opts")
	}

	cache, err := otter.MustBuilder[string, []any](inlineCacheCapacity).Build()
	if err != nil {
		return nil, errm.Wrap(err, "build inline cache")
	}

	s := &Server{
		cfg:     opts.Config,
		log:     opts.Logger,
		seq:     newSequence(),
		queue:   newUpdateQueue(),
		history: newHistoryLog(),

		groups:      make(map[int64]*group),
		nextGroupID: groupIDStart,

		inlineCache: cache,

		archiver:   opts.Archiver,
		pickSender: opts.PickSender,
		metrics:    newMetrics(opts.Metrics),
	}

	if s.archiver != nil {
		s.history.observe(s.archiveEntry)
	}

	return s, nil
}

// Start brings up the bot API listener plus the optional web monitor and
// history autosave job. Shutdown hooks are registered on ctx.
func (s *Server) Start(ctx contem.Context) error {
	api, err := startAPIServer(ctx, s)
	if err != nil {
		return errm.Wrap(err, "start api server")
	}
	s.api = api

	s.log.Info("telemock is listening",
		"listen", s.cfg.Listen,
		"base_url", "http://"+s.cfg.Listen+"/bot<TOKEN>")

	if s.cfg.Web.Enabled {
		web, err := startWebMonitor(ctx, s)
		if err != nil {
			return errm.Wrap(err, "start web monitor")
		}
		s.web = web
	}

	if s.cfg.History.Save {
		if err := s.startAutosave(ctx); err != nil {
			return errm.Wrap(err, "start autosave")
		}
	}

	return nil
}

// Config returns the effective (prepared) configuration.
func (s *Server) Config() Config {
	return s.cfg
}

// BotUser returns the fixed synthetic bot identity.
func (s *Server) BotUser() User {
	return s.cfg.bot()
}

// TestUser returns the default synthetic user identity.
func (s *Server) TestUser() User {
	return s.cfg.testUser()
}

// PendingUpdates reports how many updates sit in the queue right now.
func (s *Server) PendingUpdates() int {
	return s.queue.len()
}

func (s *Server) startAutosave(ctx contem.Context) error {
	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return errm.Wrap(err, "new scheduler")
	}

	_, err = sched.NewJob(
		gocron.DurationJob(s.cfg.History.SaveInterval),
		gocron.NewTask(func() {
			if err := s.SaveHistory(s.cfg.History.File); err != nil {
				s.log.Error("history autosave failed", "error", err, "file", s.cfg.History.File)
			}
		}),
		gocron.WithName("history-autosave"),
	)
	if err != nil {
		return errm.Wrap(err, "new job")
	}

	sched.Start()
	s.sched = sched
	ctx.AddFunc(func() {
		if err := sched.Shutdown(); err != nil {
			s.log.Warn("scheduler shutdown", "error", err)
		}
	})

	s.log.Debug("history autosave enabled",
		"file", s.cfg.History.File, "interval", s.cfg.History.SaveInterval)

	return nil
}

func (s *Server) archiveEntry(entry HistoryEntry) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.archiver.Archive(ctx, entry); err != nil {
			s.log.Warn("cannot archive history entry", "error", err)
			return
		}
		s.metrics.incArchived()
	}()
}

func (s *Server) now() int64 {
	return time.Now().Unix()
}

func prepareOpts(optsRaw ...Options) (Options, error) {
	opts := lang.First(optsRaw)

	err := opts.Config.prepareAndValidate()
	if err != nil {
		return opts, errm.Wrap(err, "prepare and validate config")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.PickSender == nil {
		opts.PickSender = func(members []User) User {
			return members[rand.Intn(len(members))]
		}
	}

	return opts, nil
}

// NoopLogger discards everything.
type NoopLogger struct{}

func (NoopLogger) Debug(msg string, fields ...any) {}
func (NoopLogger) Info(msg string, fields ...any)  {}
func (NoopLogger) Warn(msg string, fields ...any)  {}
func (NoopLogger) Error(msg string, fields ...any) {}
