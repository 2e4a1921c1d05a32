package store

import (
	"sync"
	"time"

	"github.com/roylee0704/gron"

	"fmd/internal/providers"
	"fmd/internal/store/interfaces"
	"fmd/internal/structures"
)

// SessionPruner is implemented by the auth layer; the scheduler only needs
// to tick it.
type SessionPruner interface {
	PruneSessions(now time.Time) int
}

// Scheduler owns the daemon's periodic work: persisting the tree snapshot
// and expiring stale sessions. Jobs share opsMu so a shutdown persist never
// races a timer-driven one.
type Scheduler struct {
	config  *structures.Config
	logger  providers.Logger
	manager *SnapshotManager
	pruner  SessionPruner
	cron    *gron.Cron
	opsMu   sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()
	saveInterval := s.config.Persistence.SaveInterval
	sessionTTL := s.config.Auth.SessionTTL

	s.cron.AddFunc(gron.Every(saveInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		err := s.manager.SaveToFile(s.config.Persistence.FilePath)
		if err != nil {
			s.logger.Errorf(providers.TypeStore, "Error while persisting data: %s", err)
			return
		}
		s.logger.Infof(providers.TypeStore, "Persisted data to file %s", s.config.Persistence.FilePath)
	})

	s.cron.AddFunc(gron.Every(sessionTTL), func() {
		pruned := s.pruner.PruneSessions(time.Now())
		if pruned > 0 {
			s.logger.Infof(providers.TypeAuth, "Pruned %d expired sessions", pruned)
		}
	})

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	return s.manager.LoadFromFile(s.config.Persistence.FilePath)
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeStore, "Persisting store snapshot to file...")
	err := s.manager.SaveToFile(s.config.Persistence.FilePath)
	if err != nil {
		s.logger.Errorf(providers.TypeStore, "Error while persisting data: %s", err)
		return err
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, manager *SnapshotManager, pruner SessionPruner) interfaces.SchedulerInterface {
	return &Scheduler{
		config:  config,
		logger:  logger,
		manager: manager,
		pruner:  pruner,
	}
}
