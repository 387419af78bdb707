package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"matifood/internal/domain"
	"matifood/internal/metrics"
	"matifood/internal/validate"
)

const maxEventProperties = 20

// AnalyticsService counts and logs client events. Nothing is stored.
type AnalyticsService struct {
	Metrics *metrics.Metrics
	Log     *zap.Logger
	Now     func() time.Time
}

func NewAnalyticsService(m *metrics.Metrics, log *zap.Logger) *AnalyticsService {
	if m == nil {
		m = metrics.New()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AnalyticsService{Metrics: m, Log: log, Now: time.Now}
}

func (s *AnalyticsService) Track(_ context.Context, name string, props map[string]any) (domain.AnalyticsEvent, error) {
	ev, ok := validate.EventName(name)
	if !ok {
		return domain.AnalyticsEvent{}, invalid("Invalid event name")
	}
	if len(props) > maxEventProperties {
		return domain.AnalyticsEvent{}, invalid("Too many event properties")
	}
	e := domain.AnalyticsEvent{
		ID:         uuid.NewString(),
		Name:       ev,
		Properties: props,
		Timestamp:  s.Now().UTC(),
	}
	s.Metrics.Events.WithLabelValues(ev).Inc()
	s.Log.Info("analytics.event", zap.String("id", e.ID), zap.String("event", ev), zap.Int("props", len(props)))
	return e, nil
}
