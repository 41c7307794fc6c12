// Package digests runs the nightly job that writes a daily run digest
// for every active project.
package digests

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tencoder/tencoder-api/internal/projects/domain"
	"github.com/tencoder/tencoder-api/internal/projects/repository"
)

const jobTimeout = 5 * time.Minute

type Scheduler struct {
	digests *repository.DigestRepository
	cron    *cron.Cron
}

func NewScheduler(digests *repository.DigestRepository) *Scheduler {
	return &Scheduler{digests: digests}
}

// Start schedules the nightly digest run at 12:00 AM.
func (s *Scheduler) Start() error {
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc("0 0 0 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule nightly digest: %w", err)
	}

	c.Start()
	s.cron = c
	log.Println("digest scheduler started (nightly at 12:00AM)")
	return nil
}

// Stop halts scheduling and waits for a running job to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// RunOnce writes one daily digest per active project. A failing
// project is logged and skipped so one bad row cannot starve the rest.
func (s *Scheduler) RunOnce(ctx context.Context) {
	ids, err := s.digests.ActiveProjectIDs(ctx)
	if err != nil {
		log.Printf("[warn] operation=daily_digest list projects failed: %v", err)
		return
	}

	for _, projectID := range ids {
		if err := s.digestProject(ctx, projectID); err != nil {
			log.Printf("[warn] operation=daily_digest project_id=%s failed: %v", projectID, err)
		}
	}
}

func (s *Scheduler) digestProject(ctx context.Context, projectID string) error {
	byStatus, err := s.digests.TaskTitlesByStatus(ctx, projectID)
	if err != nil {
		return err
	}

	d := &domain.Digest{
		ProjectID:      projectID,
		DigestType:     domain.DigestDaily,
		CompletedTasks: byStatus[domain.StatusDone],
		NewTasks:       byStatus[domain.StatusTodo],
		Blockers:       byStatus[domain.StatusOutOfDate],
		Insights:       summarize(byStatus),
	}

	_, err = s.digests.Insert(ctx, d)
	return err
}

func summarize(byStatus map[string][]string) []string {
	total := 0
	for _, titles := range byStatus {
		total += len(titles)
	}
	if total == 0 {
		return []string{"No tasks tracked yet"}
	}

	done := len(byStatus[domain.StatusDone])
	inProgress := len(byStatus[domain.StatusInProgress])
	stale := len(byStatus[domain.StatusOutOfDate])

	out := []string{fmt.Sprintf("%d of %d tasks done, %d in progress", done, total, inProgress)}
	if stale > 0 {
		out = append(out, fmt.Sprintf("%d tasks are out of date and need review", stale))
	}
	return out
}
