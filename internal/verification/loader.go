package verification

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/singleflight"
)

// OnceLoader requests the challenge script at most once per process.
// Concurrent callers share a single in-flight request; a failed request is
// not remembered, so a later call may try again.
type OnceLoader struct {
	fetch    func(ctx context.Context) error
	group    singleflight.Group
	loaded   atomic.Bool
	requests atomic.Int64
}

func NewOnceLoader(fetch func(ctx context.Context) error) *OnceLoader {
	return &OnceLoader{fetch: fetch}
}

func (l *OnceLoader) Load(ctx context.Context) error {
	if l.loaded.Load() {
		return nil
	}
	// the shared request must not die with the first caller's context
	flightCtx := context.WithoutCancel(ctx)
	ch := l.group.DoChan("script", func() (any, error) {
		if l.loaded.Load() {
			return nil, nil
		}
		l.requests.Add(1)
		if err := l.fetch(flightCtx); err != nil {
			return nil, err
		}
		l.loaded.Store(true)
		return nil, nil
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

func (l *OnceLoader) Loaded() bool { return l.loaded.Load() }

// Requests is the number of times the script was actually requested.
func (l *OnceLoader) Requests() int64 { return l.requests.Load() }

// HTTPScriptFetch checks that the script URL answers with a 2xx.
func HTTPScriptFetch(client *resty.Client, url string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		resp, err := client.R().SetContext(ctx).Get(url)
		if err != nil {
			return fmt.Errorf("fetch challenge script: %w", err)
		}
		if !resp.IsSuccess() {
			return fmt.Errorf("fetch challenge script: status %d", resp.StatusCode())
		}
		return nil
	}
}
