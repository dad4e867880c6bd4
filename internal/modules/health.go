package modules

import (
	"log/slog"
	"time"

	"github.com/opdeck/opdeck/internal/mirror"
	"github.com/opdeck/opdeck/internal/models"
	"github.com/opdeck/opdeck/internal/storage"
)

// HealthService manages the health metric log.
type HealthService struct {
	mirror *mirror.Mirror[models.HealthMetric]
	notify Notifier
	now    func() time.Time
}

func newHealthService(store *storage.Store, logger *slog.Logger, notify Notifier, onErr mirror.CommitErrorHandler) *HealthService {
	col := storage.NewCollection[models.HealthMetric](store, models.CollectionHealth)
	return &HealthService{
		mirror: mirror.New(col, logger, mirror.WithCommitErrorHandler[models.HealthMetric](onErr)),
		notify: notify,
		now:    time.Now,
	}
}

func seedMetrics(now time.Time) []models.HealthMetric {
	today := now.Format("2006-01-02")
	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")
	return []models.HealthMetric{
		{ID: "1", Type: models.MetricSleep, Value: models.Numeric(7.5, "hrs"), Date: today, Timestamp: now.UnixMilli()},
		{ID: "2", Type: models.MetricWater, Value: models.Numeric(2100, "ml"), Date: today, Timestamp: now.UnixMilli()},
		{ID: "3", Type: models.MetricSteps, Value: models.Numeric(8432, "steps"), Date: today, Timestamp: now.UnixMilli()},
		{ID: "4", Type: models.MetricWeight, Value: models.Numeric(72.5, "kg"), Date: yesterday, Timestamp: now.Add(-24 * time.Hour).UnixMilli()},
		{ID: "5", Type: models.MetricMood, Value: models.Categorical("Good"), Date: today, Timestamp: now.UnixMilli()},
	}
}

func (s *HealthService) init() { s.mirror.Init(seedMetrics(s.now())) }

// List returns a snapshot of all metrics.
func (s *HealthService) List() []models.HealthMetric { return s.mirror.Snapshot() }

// Log records a metric reading stamped with the current time.
func (s *HealthService) Log(typ models.MetricType, value models.MetricValue, date string) (models.HealthMetric, error) {
	now := s.now()
	if date == "" {
		date = now.Format("2006-01-02")
	}
	metric := models.HealthMetric{
		ID:        models.NewID(),
		Type:      typ,
		Value:     value,
		Date:      date,
		Timestamp: now.UnixMilli(),
	}
	err := s.mirror.Apply(func(metrics []models.HealthMetric) []models.HealthMetric {
		return append([]models.HealthMetric{metric}, metrics...)
	})
	s.notify(models.CollectionHealth, "created", metric.ID)
	return metric, err
}

// Latest returns the most recent reading of the given type.
func (s *HealthService) Latest(typ models.MetricType) (models.HealthMetric, bool) {
	var best models.HealthMetric
	found := false
	for _, m := range s.mirror.Snapshot() {
		if m.Type != typ {
			continue
		}
		if !found || m.Timestamp > best.Timestamp {
			best = m
			found = true
		}
	}
	return best, found
}

// Remove deletes a metric entry.
func (s *HealthService) Remove(id string) error {
	err := s.mirror.Apply(func(metrics []models.HealthMetric) []models.HealthMetric {
		kept := metrics[:0]
		for _, m := range metrics {
			if m.ID != id {
				kept = append(kept, m)
			}
		}
		return kept
	})
	s.notify(models.CollectionHealth, "deleted", id)
	return err
}
