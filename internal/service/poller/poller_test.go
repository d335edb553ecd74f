package poller

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	dsvc "IndexForge/internal/domain/service"
	applogger "IndexForge/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTarget struct {
	name  string
	err   error
	calls int32
}

func (f *fakeTarget) Name() string { return f.name }

func (f *fakeTarget) Warm(context.Context) error {
	atomic.AddInt32(&f.calls, 1)
	return f.err
}

func TestWarmAllRunsEveryTarget(t *testing.T) {
	first := &fakeTarget{name: "index"}
	second := &fakeTarget{name: "compare"}

	p, err := New("@every 1h", []dsvc.Warmable{first, second}, applogger.Nop())
	require.NoError(t, err)

	p.warmAll()

	assert.Equal(t, int32(1), atomic.LoadInt32(&first.calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&second.calls))
}

func TestWarmAllContinuesPastFailures(t *testing.T) {
	failing := &fakeTarget{name: "index", err: fmt.Errorf("provider down")}
	healthy := &fakeTarget{name: "compare"}

	p, err := New("@every 1h", []dsvc.Warmable{failing, healthy}, applogger.Nop())
	require.NoError(t, err)

	p.warmAll()

	assert.Equal(t, int32(1), atomic.LoadInt32(&healthy.calls), "a failed target must not stop the pass")
}

func TestNewRejectsBadSchedule(t *testing.T) {
	_, err := New("every now and then", nil, applogger.Nop())
	assert.Error(t, err)
}
