package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	xhttp "IndexForge/pkg/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy() Policy {
	return Policy{
		Attempts:  4,
		BaseDelay: time.Millisecond,
		MaxDelay:  5 * time.Millisecond,
		Timeout:   time.Second,
	}
}

func TestFetchRetriesTransientThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"ok":1}`))
	}))
	defer srv.Close()

	client := New(Config{Name: "test", Policy: testPolicy()}, nil, nil)

	payload, err := client.Fetch(context.Background(), &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    srv.URL,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":1}`, string(payload))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchApplicationFailureAborts(t *testing.T) {
	var calls int32
	body := strings.Repeat("x", 1000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(body))
	}))
	defer srv.Close()

	client := New(Config{Name: "test", Policy: testPolicy()}, nil, nil)

	_, err := client.Fetch(context.Background(), &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    srv.URL,
	})
	require.Error(t, err)

	fe, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindApplication, fe.Kind)
	assert.Equal(t, http.StatusInternalServerError, fe.Status)
	assert.Len(t, fe.BodyPreview, previewLimit)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "application failures must not retry")
}

func TestFetchTransportFailureAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := New(Config{Name: "test", Policy: testPolicy()}, nil, nil)

	start := time.Now()
	_, err := client.Fetch(context.Background(), &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    url,
	})
	require.Error(t, err)

	fe, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindTransport, fe.Kind)
	assert.Zero(t, fe.Status)
	assert.Less(t, time.Since(start), 500*time.Millisecond, "transport failures must not burn the attempt budget")
}

func TestFetchBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := New(Config{
		Name:     "test",
		Policy:   testPolicy(),
		Breaker:  true,
		Failures: 2,
		Cooldown: time.Minute,
	}, nil, nil)

	opts := &xhttp.RequestOptions{Method: xhttp.MethodGet, URL: srv.URL}
	for i := 0; i < 2; i++ {
		_, err := client.Fetch(context.Background(), opts)
		require.Error(t, err)
	}
	before := atomic.LoadInt32(&calls)

	_, err := client.Fetch(context.Background(), opts)
	require.Error(t, err)
	fe, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindTransport, fe.Kind)
	assert.Equal(t, before, atomic.LoadInt32(&calls), "open breaker must not reach the network")
}

func TestDelayDoublesFromBaseAndCaps(t *testing.T) {
	p := Policy{
		Attempts:  5,
		BaseDelay: 100 * time.Millisecond,
		MaxDelay:  400 * time.Millisecond,
		Timeout:   time.Second,
	}

	assert.Equal(t, 100*time.Millisecond, p.Delay(0))
	assert.Equal(t, 200*time.Millisecond, p.Delay(1))
	assert.Equal(t, 400*time.Millisecond, p.Delay(2))
	assert.Equal(t, 400*time.Millisecond, p.Delay(3))
	assert.Equal(t, 400*time.Millisecond, p.Delay(40), "large attempts must not overflow the shift")
}

func TestClassifyStatus(t *testing.T) {
	for _, status := range []int{429, 502, 503, 504} {
		assert.Equal(t, KindTransient, classifyStatus(status), "status %d", status)
	}
	for _, status := range []int{400, 401, 403, 404, 418, 500} {
		assert.Equal(t, KindApplication, classifyStatus(status), "status %d", status)
	}
}
