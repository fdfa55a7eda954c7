package goroutine

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type captureLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (l *captureLogger) Errorf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, fmt.Sprintf(format, args...))
}

func TestSafeGo_RecoversPanic(t *testing.T) {
	log := &captureLogger{}
	rh := NewRecoveryHandler(log)

	rh.SafeGo(func() { panic("boom") })
	rh.Wait()

	assert.Len(t, log.msgs, 1)
	assert.Contains(t, log.msgs[0], "boom")
}

func TestSafeGoWithContext_DetachesCancellation(t *testing.T) {
	rh := NewRecoveryHandler(&captureLogger{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ctxErr error
	rh.SafeGoWithContext(ctx, func(c context.Context) {
		ctxErr = c.Err()
	})
	rh.Wait()

	assert.NoError(t, ctxErr)
}
