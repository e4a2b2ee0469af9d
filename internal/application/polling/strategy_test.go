package polling

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestExponentialBackoffStrategy(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	t.Run("성공 시 기본 간격 반환", func(t *testing.T) {
		strategy := NewExponentialBackoffStrategy(30*time.Second, 300*time.Second, 2.0, logger)

		assert.Equal(t, 30*time.Second, strategy.NextInterval(true))
		assert.Equal(t, 30*time.Second, strategy.NextInterval(true))
	})

	t.Run("실패 시 지수 백오프", func(t *testing.T) {
		strategy := NewExponentialBackoffStrategy(30*time.Second, 300*time.Second, 2.0, logger)

		expected := []time.Duration{30, 60, 120, 240, 300, 300}
		for i, want := range expected {
			assert.Equal(t, want*time.Second, strategy.NextInterval(false), "실패 %d회", i+1)
		}
	})

	t.Run("성공하면 백오프 리셋", func(t *testing.T) {
		strategy := NewExponentialBackoffStrategy(10*time.Second, 100*time.Second, 3.0, logger)

		strategy.NextInterval(false)
		assert.Equal(t, 30*time.Second, strategy.NextInterval(false))
		assert.Equal(t, 10*time.Second, strategy.NextInterval(true))
		assert.Equal(t, 10*time.Second, strategy.NextInterval(false))
	})

	t.Run("잘못된 배수는 2로 보정", func(t *testing.T) {
		strategy := NewExponentialBackoffStrategy(time.Second, time.Minute, 0.5, logger)

		strategy.NextInterval(false)
		assert.Equal(t, 2*time.Second, strategy.NextInterval(false))
	})
}

func TestFixedIntervalStrategy(t *testing.T) {
	strategy := NewFixedIntervalStrategy(15 * time.Second)
	assert.Equal(t, 15*time.Second, strategy.NextInterval(true))
	assert.Equal(t, 15*time.Second, strategy.NextInterval(false))
	strategy.Reset()
	assert.Equal(t, 15*time.Second, strategy.NextInterval(false))
}

func TestPollingController_Start(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	t.Run("즉시 실행 후 반복하고 취소되면 종료", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var calls int32
		controller := NewPollingController(NewFixedIntervalStrategy(5*time.Millisecond), logger)

		done := make(chan error, 1)
		go func() {
			done <- controller.Start(ctx, func(ctx context.Context) error {
				if atomic.AddInt32(&calls, 1) >= 3 {
					cancel()
				}
				return errors.New("실패해도 계속")
			})
		}()

		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(2 * time.Second):
			t.Fatal("폴링이 종료되지 않음")
		}
		assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(3))
	})
}
