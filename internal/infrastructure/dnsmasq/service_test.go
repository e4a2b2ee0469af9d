package dnsmasq

import (
	"context"
	"testing"
	"time"

	"debinterface-agent/internal/domain/errors"
	"debinterface-agent/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockCommandExecutor는 CommandExecutor의 목 구현체입니다
type MockCommandExecutor struct {
	mock.Mock
}

func (m *MockCommandExecutor) Execute(ctx context.Context, command string, args ...string) ([]byte, error) {
	callArgs := m.Called(ctx, command, args)
	return callArgs.Get(0).([]byte), callArgs.Error(1)
}

func (m *MockCommandExecutor) ExecuteWithTimeout(ctx context.Context, timeout time.Duration, command string, args ...string) ([]byte, error) {
	callArgs := m.Called(ctx, timeout, command, args)
	return callArgs.Get(0).([]byte), callArgs.Error(1)
}

var fastRetry = utils.RetryConfig{
	MaxAttempts:  2,
	InitialDelay: time.Millisecond,
	MaxDelay:     time.Millisecond,
	Multiplier:   1,
}

func TestServiceController_Control(t *testing.T) {
	tests := []struct {
		name       string
		action     string
		setupMock  func(m *MockCommandExecutor)
		wantOK     bool
		wantOutput string
	}{
		{
			name:   "재시작 성공",
			action: ActionRestart,
			setupMock: func(m *MockCommandExecutor) {
				m.On("ExecuteWithTimeout", mock.Anything, 5*time.Second, "/etc/init.d/dnsmasq", []string{"restart"}).
					Return([]byte("Restarting DNS forwarder and DHCP server: dnsmasq.\n"), nil).Once()
			},
			wantOK:     true,
			wantOutput: "Restarting DNS forwarder and DHCP server: dnsmasq.",
		},
		{
			name:   "한 번 실패 후 성공",
			action: ActionStart,
			setupMock: func(m *MockCommandExecutor) {
				m.On("ExecuteWithTimeout", mock.Anything, 5*time.Second, "/etc/init.d/dnsmasq", []string{"start"}).
					Return([]byte(""), errors.NewSystemError("busy", nil)).Once()
				m.On("ExecuteWithTimeout", mock.Anything, 5*time.Second, "/etc/init.d/dnsmasq", []string{"start"}).
					Return([]byte("ok"), nil).Once()
			},
			wantOK:     true,
			wantOutput: "ok",
		},
		{
			name:   "계속 실패하면 출력과 함께 실패",
			action: ActionStop,
			setupMock: func(m *MockCommandExecutor) {
				m.On("ExecuteWithTimeout", mock.Anything, 5*time.Second, "/etc/init.d/dnsmasq", []string{"stop"}).
					Return([]byte("dnsmasq: not running\n"), errors.NewSystemError("exit 1", nil)).Times(2)
			},
			wantOK:     false,
			wantOutput: "dnsmasq: not running",
		},
		{
			name:       "허용되지 않은 동작",
			action:     "reload",
			setupMock:  func(m *MockCommandExecutor) {},
			wantOK:     false,
			wantOutput: InvalidActionMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor := new(MockCommandExecutor)
			tt.setupMock(executor)

			controller := NewServiceController(executor, testLogger(), "", 5*time.Second, fastRetry)
			ok, output := controller.Control(context.Background(), tt.action)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantOutput, output)
			executor.AssertExpectations(t)
		})
	}
}

func TestServiceController_CustomScript(t *testing.T) {
	executor := new(MockCommandExecutor)
	executor.On("ExecuteWithTimeout", mock.Anything, 30*time.Second, "/usr/local/bin/dnsmasq-ctl", []string{"restart"}).
		Return([]byte(""), errors.NewTimeoutError("timeout")).Once()

	controller := NewServiceController(executor, testLogger(), "/usr/local/bin/dnsmasq-ctl", 0, utils.RetryConfig{MaxAttempts: 1})
	ok, output := controller.Control(context.Background(), ActionRestart)

	assert.False(t, ok)
	assert.Contains(t, output, "timeout")
	executor.AssertExpectations(t)
}
