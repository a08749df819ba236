package scheduler

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/platform/logging"
)

func TestSchedule_InvalidSpec(t *testing.T) {
	s := New(logging.Discard())

	err := s.Schedule("not a cron line", "sweep", func(context.Context) {})
	assert.ErrorContains(t, err, "sweep")

	err = s.Schedule("0 9 * * * *", "six fields", func(context.Context) {})
	assert.Error(t, err)

	assert.NoError(t, s.Schedule("0 9 * * *", "daily", func(context.Context) {}))
}

func TestScheduler_RunsJobs(t *testing.T) {
	s := New(logging.Discard())
	ran := make(chan string, 4)

	require.NoError(t, s.Schedule("@every 1s", "panics", func(context.Context) { panic("boom") }))
	require.NoError(t, s.Schedule("@every 1s", "tick", func(ctx context.Context) {
		id := logging.RequestIDFrom(ctx)
		select {
		case ran <- id:
		default:
		}
	}))

	s.Start()
	select {
	case id := <-ran:
		assert.NotEmpty(t, id, "each run gets an id")
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunNow_SharesChainAndStopWaits(t *testing.T) {
	out := &syncBuffer{}
	s := New(logging.New("dev", out))

	var runs atomic.Int32
	started := make(chan string, 1)
	release := make(chan struct{})
	require.NoError(t, s.Schedule("@daily", "sweep", func(ctx context.Context) {
		runs.Add(1)
		started <- logging.RequestIDFrom(ctx)
		<-release
	}))

	require.NoError(t, s.RunNow("sweep"))
	select {
	case id := <-started:
		assert.NotEmpty(t, id)
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}

	// a second run while the first is in progress is skipped
	require.NoError(t, s.RunNow("sweep"))
	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "cron: skip")
	}, 2*time.Second, 10*time.Millisecond)

	short, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Stop(short), context.DeadlineExceeded, "stop waits for the manual run")

	close(release)
	ctx, cancel2 := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel2()
	assert.NoError(t, s.Stop(ctx))
	assert.Equal(t, int32(1), runs.Load())

	assert.Error(t, s.RunNow("sweep"), "no runs after stop")
}

func TestRunNow_Errors(t *testing.T) {
	s := New(logging.Discard())

	assert.ErrorContains(t, s.RunNow("missing"), "no such job")

	require.NoError(t, s.Schedule("@daily", "sweep", func(context.Context) {}))
	assert.ErrorContains(t, s.Schedule("@hourly", "sweep", func(context.Context) {}), "already registered")
}
