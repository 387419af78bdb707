package verification_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"matifood/internal/verification"
)

type ownerRecorder struct {
	mu       sync.Mutex
	tokens   []string
	expired  int
	failures []error
}

func (o *ownerRecorder) callbacks() verification.Callbacks {
	return verification.Callbacks{
		OnVerify: func(tok string) {
			o.mu.Lock()
			defer o.mu.Unlock()
			o.tokens = append(o.tokens, tok)
		},
		OnExpired: func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			o.expired++
		},
		OnError: func(err error) {
			o.mu.Lock()
			defer o.mu.Unlock()
			o.failures = append(o.failures, err)
		},
	}
}

func readyLoader() *verification.OnceLoader {
	return verification.NewOnceLoader(func(context.Context) error { return nil })
}

type panickyAPI struct{}

func (panickyAPI) Render(string, string, verification.Callbacks) (verification.WidgetID, error) {
	panic("grecaptcha is not defined")
}
func (panickyAPI) Reset(verification.WidgetID) error { return nil }

type brokenResetAPI struct{ *verification.TokenChallenge }

func (brokenResetAPI) Reset(verification.WidgetID) error { return errors.New("reset exploded") }

func TestWidgetLifecycle(t *testing.T) {
	owner := &ownerRecorder{}
	api := verification.NewTokenChallenge("tok-123")
	loader := readyLoader()
	w := verification.NewWidget(loader, api, "site-key", "contact-captcha", owner.callbacks(), nil)

	assert.Equal(t, verification.StateUnloaded, w.State())
	require.NoError(t, w.Mount(context.Background()))
	assert.Equal(t, verification.StateReady, w.State())

	// re-render attempts while active are no-ops
	require.NoError(t, w.Mount(context.Background()))
	assert.Equal(t, 1, w.Renders())
	assert.Equal(t, 1, api.Renders())
	assert.Equal(t, int64(1), loader.Requests())

	require.NoError(t, api.Solve())
	assert.Equal(t, verification.StateVerified, w.State())
	assert.Equal(t, []string{"tok-123"}, owner.tokens)

	require.NoError(t, api.Expire())
	assert.Equal(t, verification.StateExpired, w.State())
	assert.Equal(t, 1, owner.expired)

	w.Reset()
	assert.Equal(t, verification.StateReady, w.State())
	assert.Equal(t, 1, api.Resets())

	w.Unmount()
	assert.Equal(t, verification.StateUnloaded, w.State())
	assert.Equal(t, 2, api.Resets())

	// callbacks after unmount are ignored
	require.NoError(t, api.Solve())
	assert.Len(t, owner.tokens, 1)
}

func TestWidgetLoadFailureIsTerminalForMount(t *testing.T) {
	owner := &ownerRecorder{}
	var fail atomic.Bool
	fail.Store(true)
	loader := verification.NewOnceLoader(func(context.Context) error {
		if fail.Load() {
			return errors.New("dns failure")
		}
		return nil
	})
	api := verification.NewTokenChallenge("tok")
	w := verification.NewWidget(loader, api, "k", "c", owner.callbacks(), nil)

	err := w.Mount(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, verification.ErrUnavailable))
	assert.Equal(t, verification.StateError, w.State())
	require.Len(t, owner.failures, 1)

	fail.Store(false)
	err = w.Mount(context.Background())
	assert.True(t, errors.Is(err, verification.ErrUnavailable))
	assert.Equal(t, int64(1), loader.Requests())
	assert.Equal(t, 0, api.Renders())

	w.Unmount()
	require.NoError(t, w.Mount(context.Background()))
	assert.Equal(t, verification.StateReady, w.State())
	assert.Equal(t, int64(2), loader.Requests())
}

func TestWidgetRenderPanicDoesNotEscape(t *testing.T) {
	owner := &ownerRecorder{}
	w := verification.NewWidget(readyLoader(), panickyAPI{}, "k", "c", owner.callbacks(), nil)

	var err error
	require.NotPanics(t, func() { err = w.Mount(context.Background()) })
	assert.True(t, errors.Is(err, verification.ErrUnavailable))
	assert.Equal(t, verification.StateError, w.State())
	assert.Equal(t, 0, w.Renders())
}

func TestWidgetUnmountSwallowsResetFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	api := brokenResetAPI{verification.NewTokenChallenge("tok")}
	w := verification.NewWidget(readyLoader(), api, "k", "c", verification.Callbacks{}, zap.New(core))

	require.NoError(t, w.Mount(context.Background()))
	require.NotPanics(t, w.Unmount)
	assert.Equal(t, verification.StateUnloaded, w.State())
	assert.Equal(t, 1, logs.FilterMessage("verification.widget.reset.fail").Len())
}

func TestConcurrentMountsRenderOnce(t *testing.T) {
	release := make(chan struct{})
	var fetches atomic.Int32
	loader := verification.NewOnceLoader(func(context.Context) error {
		fetches.Add(1)
		<-release
		return nil
	})
	api := verification.NewTokenChallenge("tok")
	first := verification.NewWidget(loader, api, "k", "a", verification.Callbacks{}, nil)
	second := verification.NewWidget(loader, api, "k", "b", verification.Callbacks{}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); _ = first.Mount(context.Background()) }()
		go func() { defer wg.Done(); _ = second.Mount(context.Background()) }()
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), fetches.Load())
	assert.Equal(t, 1, first.Renders())
	assert.Equal(t, 1, second.Renders())
	assert.Equal(t, 2, api.Renders())
}
