package services

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"matifood/internal/catalog"
	"matifood/internal/domain"
)

const (
	minHappyFamilies  = 50000
	countriesServed   = 25
	organicPercentage = 100
	yearsOfExperience = 25
)

// StatsService reports the figures shown on the landing page. Brand figures
// are fixed; the counters are live for this process.
type StatsService struct {
	Catalog    *catalog.Catalog
	Newsletter *NewsletterService
	Log        *zap.Logger

	contacts atomic.Int64
}

func NewStatsService(c *catalog.Catalog, nl *NewsletterService, log *zap.Logger) *StatsService {
	if log == nil {
		log = zap.NewNop()
	}
	return &StatsService{Catalog: c, Newsletter: nl, Log: log}
}

func (s *StatsService) RecordContact() { s.contacts.Add(1) }

func (s *StatsService) Stats(ctx context.Context) domain.SiteStats {
	var subs int64
	if s.Newsletter != nil {
		n, err := s.Newsletter.Count(ctx)
		if err != nil {
			s.Log.Warn("stats.subscribers.fail", zap.Error(err))
		}
		subs = n
	}
	contacts := s.contacts.Load()
	return domain.SiteStats{
		HappyFamilies:     max(subs+contacts, minHappyFamilies),
		Countries:         countriesServed,
		OrganicPercentage: organicPercentage,
		ProductsAvailable: s.Catalog.ProductCount(),
		TotalReviews:      s.Catalog.TestimonialCount(),
		Contacts:          contacts,
		Subscribers:       subs,
		AverageRating:     s.Catalog.AverageRating(),
		YearsOfExperience: yearsOfExperience,
	}
}
