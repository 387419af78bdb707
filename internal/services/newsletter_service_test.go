package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matifood/internal/catalog"
	"matifood/internal/domain"
	"matifood/internal/mail"
	"matifood/internal/services"
)

type welcomeCounter struct{ sent []string }

func (w *welcomeCounter) Welcome(_ context.Context, s domain.Subscription) (string, error) {
	w.sent = append(w.sent, s.Email)
	return "id", nil
}

func TestNewsletterSubscribeIsIdempotent(t *testing.T) {
	w := &welcomeCounter{}
	svc := services.NewNewsletterService(mail.NewMemoryList(), w, nil, nil)
	ctx := context.Background()

	sub, created, err := svc.Subscribe(ctx, "Ana@example.com", "Ana")
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, sub.Subscribed)

	_, created, err = svc.Subscribe(ctx, "Ana@example.com", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, []string{"Ana@example.com"}, w.sent)

	require.NoError(t, svc.Unsubscribe(ctx, "ana@example.com"))
	n, _ := svc.Count(ctx)
	assert.Equal(t, int64(0), n)

	// resubscribing an unsubscribed address does not send another welcome
	_, created, err = svc.Subscribe(ctx, "ana@example.com", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, w.sent, 1)
}

func TestNewsletterValidation(t *testing.T) {
	svc := services.NewNewsletterService(mail.NewMemoryList(), nil, nil, nil)
	_, _, err := svc.Subscribe(context.Background(), "bogus", "")
	assert.True(t, errors.Is(err, services.ErrInvalidInput))
	assert.True(t, errors.Is(svc.Unsubscribe(context.Background(), "nobody@example.com"), mail.ErrNotSubscribed))
}

func TestStatsFloorAndCatalogFigures(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	nl := services.NewNewsletterService(mail.NewMemoryList(), nil, nil, nil)
	stats := services.NewStatsService(cat, nl, nil)

	_, _, err = nl.Subscribe(context.Background(), "a@example.com", "")
	require.NoError(t, err)
	stats.RecordContact()

	s := stats.Stats(context.Background())
	assert.Equal(t, int64(50000), s.HappyFamilies)
	assert.Equal(t, 8, s.ProductsAvailable)
	assert.Equal(t, 4, s.TotalReviews)
	assert.Equal(t, int64(1), s.Subscribers)
	assert.Equal(t, int64(1), s.Contacts)
	assert.InDelta(t, 4.8, s.AverageRating, 0.001)
}

func TestAnalyticsTrack(t *testing.T) {
	svc := services.NewAnalyticsService(nil, nil)
	ev, err := svc.Track(context.Background(), "Products.View", map[string]any{"id": "4"})
	require.NoError(t, err)
	assert.Equal(t, "products.view", ev.Name)
	assert.Len(t, ev.ID, 36)

	_, err = svc.Track(context.Background(), "", nil)
	assert.True(t, errors.Is(err, services.ErrInvalidInput))

	props := map[string]any{}
	for i := 0; i < 21; i++ {
		props[string(rune('a'+i))] = i
	}
	_, err = svc.Track(context.Background(), "x", props)
	assert.Error(t, err)
}
