// Package scheduler runs the periodic maintenance jobs of the application.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/example/lembra/internal/database"
)

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler  *gocron.Scheduler
	cards      *database.CardRepository
	categories *database.CategoryRepository
	log        *logrus.Logger
}

// New creates a new scheduler instance
func New(log *logrus.Logger) *Scheduler {
	return &Scheduler{
		scheduler:  gocron.NewScheduler(time.UTC),
		cards:      database.NewCardRepository(),
		categories: database.NewCategoryRepository(),
		log:        log,
	}
}

// Start begins running all scheduled tasks in the background
func (s *Scheduler) Start(interval time.Duration) error {
	if _, err := s.scheduler.Every(interval).Do(s.reconcileWordCounts); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// reconcileWordCounts repairs drift between each category's cached word
// count and the true number of owned cards. The cached count is advisory
// and only refreshed by callers on membership changes, so drift is expected
// after failed requests or concurrent edits.
func (s *Scheduler) reconcileWordCounts() {
	ctx := context.Background()
	categories, err := s.categories.GetAll(ctx)
	if err != nil {
		s.log.WithError(err).Warn("word count reconciliation failed")
		return
	}
	for _, category := range categories {
		count, err := s.cards.CountByCategory(ctx, category.ID)
		if err != nil {
			s.log.WithError(err).Warnf("failed to count cards for category %s", category.ID)
			continue
		}
		if count == category.WordCount {
			continue
		}
		s.log.Infof("category %q word count drifted (%d cached, %d actual)", category.Name, category.WordCount, count)
		if err := s.categories.UpdateWordCount(ctx, category.ID, count); err != nil {
			s.log.WithError(err).Warnf("failed to refresh word count for category %s", category.ID)
		}
	}
}
