package maintenance

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clarity/internal/common"
	"github.com/ternarybob/clarity/internal/interfaces"
)

// Service runs scheduled background maintenance. Currently the only job
// is pruning old PRD snapshots beyond the retention cap.
type Service struct {
	projects  interfaces.ProjectStorage
	prdStore  interfaces.PRDStorage
	logger    arbor.ILogger
	config    common.MaintenanceConfig
	retention int
	cron      *cron.Cron
}

// NewService creates a maintenance service
func NewService(projects interfaces.ProjectStorage, prdStore interfaces.PRDStorage, config common.MaintenanceConfig, retention int, logger arbor.ILogger) *Service {
	return &Service{
		projects:  projects,
		prdStore:  prdStore,
		logger:    logger,
		config:    config,
		retention: retention,
	}
}

// Start registers the cron schedule and begins running jobs. Disabled
// configuration is a no-op.
func (s *Service) Start() error {
	if !s.config.Enabled {
		s.logger.Info().Msg("Maintenance disabled")
		return nil
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.config.Schedule, s.runOnce); err != nil {
		return fmt.Errorf("invalid maintenance schedule %q: %w", s.config.Schedule, err)
	}
	s.cron.Start()

	s.logger.Info().
		Str("schedule", s.config.Schedule).
		Int("snapshot_retention", s.retention).
		Msg("Maintenance scheduled")
	return nil
}

// Stop halts the scheduler, waiting for a running job to finish
func (s *Service) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
}

func (s *Service) runOnce() {
	pruned, err := s.PruneSnapshots()
	if err != nil {
		s.logger.Warn().Err(err).Msg("Snapshot pruning failed")
		return
	}
	s.logger.Info().Int("pruned", pruned).Msg("Snapshot pruning complete")
}

// PruneSnapshots deletes each project's oldest snapshots beyond the
// retention cap. Returns the number of snapshots deleted.
func (s *Service) PruneSnapshots() (int, error) {
	if s.retention <= 0 {
		return 0, nil
	}

	projects, err := s.projects.ListProjects()
	if err != nil {
		return 0, fmt.Errorf("failed to list projects: %w", err)
	}

	pruned := 0
	for _, project := range projects {
		snapshots, err := s.prdStore.ListSnapshots(project.ID)
		if err != nil {
			s.logger.Warn().Err(err).Str("project_id", project.ID).Msg("Failed to list snapshots for pruning")
			continue
		}

		// ListSnapshots is newest first; everything past the cap goes
		for _, snapshot := range snapshots[min(s.retention, len(snapshots)):] {
			if err := s.prdStore.DeleteSnapshot(snapshot.ID); err != nil {
				s.logger.Warn().Err(err).Str("snapshot_id", snapshot.ID).Msg("Failed to delete snapshot")
				continue
			}
			pruned++
		}
	}

	return pruned, nil
}
