package warnings

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sumezulike/Referee/pkg/logger"
)

// MemberLister enumerates the guilds and members the sweep has to cover
type MemberLister interface {
	GuildIDs() []string
	MemberIDs(guildID string) ([]string, error)
}

// Scheduler drives reconciliation at two cadences: point checks right after
// a warning changes, and a periodic sweep over every member to heal drift
// from missed events, manual role edits or rejoins.
type Scheduler struct {
	store      Store
	reconciler *Reconciler
	members    MemberLister
	interval   time.Duration

	// locksMu guards locks; each guild gets its own mutex so a point check
	// and a sweep never reconcile the same member concurrently. Keying by
	// guild keeps the map bounded by the number of guilds.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	stop      chan struct{}
	done      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewScheduler creates a Scheduler sweeping at the given interval
func NewScheduler(store Store, reconciler *Reconciler, members MemberLister, interval time.Duration) *Scheduler {
	return &Scheduler{
		store:      store,
		reconciler: reconciler,
		members:    members,
		interval:   interval,
		locks:      make(map[string]*sync.Mutex),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start launches the background sweep loop. Each cycle runs to completion and
// then sleeps for the configured interval, so sweeps never overlap.
func (s *Scheduler) Start() {
	s.startOnce.Do(func() {
		go func() {
			defer close(s.done)

			logger.System(fmt.Sprintf("Reconciliation sweep running every %s", s.interval), "Scheduler")
			for {
				select {
				case <-s.stop:
					return
				default:
				}

				s.Sweep()

				select {
				case <-s.stop:
					return
				case <-time.After(s.interval):
				}
			}
		}()
	})
}

// Stop terminates the sweep loop and waits for the current cycle to finish
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		<-s.done
	})
}

// CheckMember reconciles a single member against the store right now
func (s *Scheduler) CheckMember(ctx context.Context, guildID, userID string) error {
	lock := s.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()

	active, err := s.store.ListActive(ctx, userID)
	if err != nil {
		return fmt.Errorf("listing active warnings for %s: %w", userID, err)
	}

	return s.reconciler.Reconcile(guildID, userID, len(active) > 0)
}

// Sweep reconciles every member of every guild. One member's failure never
// aborts the rest of the batch.
func (s *Scheduler) Sweep() {
	for _, guildID := range s.members.GuildIDs() {
		s.sweepGuild(guildID)
	}
}

// sweepGuild reconciles all members of a single guild
func (s *Scheduler) sweepGuild(guildID string) {
	memberIDs, err := s.members.MemberIDs(guildID)
	if err != nil {
		logger.Warn(fmt.Sprintf("Could not list members of guild %s: %v", guildID, err), "Scheduler")
		return
	}

	ctx := context.Background()
	for _, userID := range memberIDs {
		if err := s.CheckMember(ctx, guildID, userID); err != nil {
			logger.Warn(fmt.Sprintf("Sweep skipped %s in guild %s: %v", userID, guildID, err), "Scheduler")
		}
	}
}

// guildLock returns the mutex serializing reconciliation within one guild
func (s *Scheduler) guildLock(guildID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.locks[guildID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[guildID] = lock
	}
	return lock
}
