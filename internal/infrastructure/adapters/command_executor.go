package adapters

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"debinterface-agent/internal/domain/errors"
	"debinterface-agent/internal/domain/interfaces"
)

// RealCommandExecutor는 실제 시스템 명령을 실행하는 CommandExecutor 구현체입니다
type RealCommandExecutor struct{}

// NewRealCommandExecutor는 새로운 RealCommandExecutor를 생성합니다
func NewRealCommandExecutor() interfaces.CommandExecutor {
	return &RealCommandExecutor{}
}

// Execute는 명령을 실행하고 stdout 을 반환합니다.
// 실패한 경우에도 stdout 과 stderr 를 합친 출력을 함께 반환하여 호출자가 원인을 보고할 수 있게 합니다.
func (e *RealCommandExecutor) Execute(ctx context.Context, command string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, command, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		output := append(stdout.Bytes(), stderr.Bytes()...)
		return output, errors.NewSystemError(
			fmt.Sprintf("명령 실행 실패: %s %s", command, strings.Join(args, " ")),
			fmt.Errorf("%w, stderr: %s", err, stderr.String()),
		)
	}

	return stdout.Bytes(), nil
}

// ExecuteWithTimeout은 타임아웃을 적용하여 명령을 실행합니다
func (e *RealCommandExecutor) ExecuteWithTimeout(ctx context.Context, timeout time.Duration, command string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	output, err := e.Execute(ctx, command, args...)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return output, errors.NewTimeoutError(
				fmt.Sprintf("명령 실행 시간 초과: %s %s (timeout: %v)", command, strings.Join(args, " "), timeout),
			)
		}
		return output, err
	}

	return output, nil
}
