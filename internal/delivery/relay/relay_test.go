package relay

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRelayUsecase struct {
	mu      sync.Mutex
	backlog int
	calls   int
	failAt  int
}

func (f *fakeRelayUsecase) RelayBatch(_ context.Context, limit int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.failAt > 0 && f.calls == f.failAt {
		return 0, errors.New("broker down")
	}
	n := min(limit, f.backlog)
	f.backlog -= n

	return n, nil
}

func (f *fakeRelayUsecase) snapshot() (backlog, calls int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.backlog, f.calls
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRelay_DrainsBacklogAndStops(t *testing.T) {
	uc := &fakeRelayUsecase{backlog: 25}
	r := newRelay(uc, 10*time.Millisecond, 10, discardLogger())

	go func() { _ = r.Serve(context.Background()) }()

	require.Eventually(t, func() bool {
		backlog, _ := uc.snapshot()

		return backlog == 0
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, r.stop(context.Background()))

	select {
	case <-r.doneCh:
	default:
		t.Fatal("relay did not stop")
	}
}

func TestRelay_KeepsPollingAfterFailure(t *testing.T) {
	uc := &fakeRelayUsecase{backlog: 5, failAt: 1}
	r := newRelay(uc, 5*time.Millisecond, 10, discardLogger())

	go func() { _ = r.Serve(context.Background()) }()
	defer func() { _ = r.stop(context.Background()) }()

	assert.Eventually(t, func() bool {
		backlog, calls := uc.snapshot()

		return backlog == 0 && calls >= 2
	}, time.Second, 5*time.Millisecond)
}
