package alert

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("disabled returns nil", func(t *testing.T) {
		n, err := New(Config{})
		require.NoError(t, err)
		assert.Nil(t, n)
	})

	t.Run("bad webhook url", func(t *testing.T) {
		_, err := New(Config{Webhook: "ftp://example.com/hook"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not http(s)")
	})

	t.Run("email without host", func(t *testing.T) {
		_, err := New(Config{Email: EmailConfig{To: "ops@example.com", From: "qrseal@example.com"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "host is required")
	})

	t.Run("email without from", func(t *testing.T) {
		_, err := New(Config{Email: EmailConfig{To: "ops@example.com", Host: "smtp.example.com"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "from address is required")
	})

	t.Run("bad template", func(t *testing.T) {
		_, err := New(Config{Webhook: "https://example.com/hook", Template: "{{.Kind"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse alert template")
	})

	t.Run("both channels with defaults", func(t *testing.T) {
		n, err := New(Config{Webhook: "https://example.com/hook",
			Email: EmailConfig{To: "ops@example.com", From: "qrseal@example.com", Host: "smtp.example.com"}})
		require.NoError(t, err)
		require.NotNil(t, n)
		require.Len(t, n.channels, 2)
		assert.Equal(t, "webhook", n.channels[0].name)
		assert.Equal(t, "email", n.channels[1].name)
		assert.Contains(t, n.channels[1].destination, "mailto:ops@example.com?")
		assert.Equal(t, 10*time.Minute, n.Cooldown)
		assert.Equal(t, 3, n.Retries)
	})
}

func TestNotifier_Render(t *testing.T) {
	n, err := New(Config{Webhook: "https://example.com/hook"})
	require.NoError(t, err)

	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	text, err := n.Render(Event{Kind: "tampered", ID: "3f2a9c1e-0000", ShortID: "3F2A9C", Client: "abc", Time: ts})
	require.NoError(t, err)
	assert.Equal(t, "tampered code detected, short id 3F2A9C (3f2a9c1e-0000), client abc, 2024-05-01T12:00:00Z", text)

	text, err = n.Render(Event{Kind: "tampered", Client: "abc", Time: ts})
	require.NoError(t, err)
	assert.Equal(t, "tampered code detected, client abc, 2024-05-01T12:00:00Z", text)

	n, err = New(Config{Webhook: "https://example.com/hook", Template: "ALERT {{.ShortID}}"})
	require.NoError(t, err)
	text, err = n.Render(Event{ShortID: "ABCDEF"})
	require.NoError(t, err)
	assert.Equal(t, "ALERT ABCDEF", text)
}

func TestNotifier_SendWebhook(t *testing.T) {
	var mu sync.Mutex
	var bodies []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.Header.Get("X-Token"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		mu.Lock()
		bodies = append(bodies, string(body))
		mu.Unlock()
	}))
	defer ts.Close()

	n, err := New(Config{Webhook: ts.URL, Headers: []string{"X-Token:secret"}, RetryDelay: time.Millisecond})
	require.NoError(t, err)

	require.NoError(t, n.Send(context.Background(), Event{Kind: "tampered", ID: "id-1", ShortID: "AAAAAA", Client: "c1"}))
	require.NoError(t, n.Send(context.Background(), Event{Kind: "tampered", ID: "id-1", ShortID: "AAAAAA", Client: "c2"}))
	require.NoError(t, n.Send(context.Background(), Event{Kind: "tampered", ID: "id-2", ShortID: "BBBBBB", Client: "c1"}))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, bodies, 2, "repeated alert for id-1 suppressed")
	assert.Contains(t, bodies[0], "short id AAAAAA")
	assert.Contains(t, bodies[1], "short id BBBBBB")
}

type fakeSender struct {
	calls atomic.Int32
	fails int32
}

func (f *fakeSender) Send(_ context.Context, _, _ string) error {
	if f.calls.Add(1) <= f.fails {
		return errors.New("temporary failure")
	}
	return nil
}

func TestNotifier_SendRetries(t *testing.T) {
	n, err := New(Config{Webhook: "https://example.com/hook", Retries: 3, RetryDelay: time.Millisecond})
	require.NoError(t, err)

	flaky := &fakeSender{fails: 2}
	n.channels = []channel{{name: "flaky", sender: flaky, destination: "x"}}
	require.NoError(t, n.Send(context.Background(), Event{Kind: "tampered", ID: "id-1"}))
	assert.Equal(t, int32(3), flaky.calls.Load())

	broken := &fakeSender{fails: 100}
	ok := &fakeSender{}
	n.channels = []channel{{name: "broken", sender: broken, destination: "x"}, {name: "ok", sender: ok, destination: "y"}}
	err = n.Send(context.Background(), Event{Kind: "tampered", ID: "id-2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.GreaterOrEqual(t, broken.calls.Load(), int32(3))
	assert.Equal(t, int32(1), ok.calls.Load(), "other channels still notified")
}

func TestNotifier_SendFailedNotSuppressed(t *testing.T) {
	n, err := New(Config{Webhook: "https://example.com/hook", Retries: 1, RetryDelay: time.Millisecond})
	require.NoError(t, err)

	down := &fakeSender{fails: 1}
	n.channels = []channel{{name: "down", sender: down, destination: "x"}}
	ev := Event{Kind: "tampered", ID: "id-3"}

	require.Error(t, n.Send(context.Background(), ev))
	require.NoError(t, n.Send(context.Background(), ev), "failed alert doesn't start cooldown")
	assert.Equal(t, int32(2), down.calls.Load())

	require.NoError(t, n.Send(context.Background(), ev))
	assert.Equal(t, int32(2), down.calls.Load(), "delivered alert starts cooldown")
}

func TestDedupKey(t *testing.T) {
	assert.Equal(t, "tampered:id", dedupKey(Event{Kind: "tampered", ID: "id", ShortID: "S"}))
	assert.Equal(t, "tampered:S", dedupKey(Event{Kind: "tampered", ShortID: "S"}))
	assert.Equal(t, "tampered:client:c", dedupKey(Event{Kind: "tampered", Client: "c"}))
}
