package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"debinterface-agent/internal/domain/errors"
	"debinterface-agent/internal/infrastructure/adapters"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock은 호출될 때마다 1초씩 증가하는 Clock 입니다
type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestBackupService(t *testing.T, keep int) (*BackupService, string) {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	dir := filepath.Join(t.TempDir(), "backups")
	clock := &stepClock{now: time.Date(2025, 1, 8, 15, 4, 5, 0, time.UTC)}
	return NewBackupService(adapters.NewRealFileSystem(), clock, logger, dir, keep), dir
}

func TestBackupService_CreateAndRestore(t *testing.T) {
	ctx := context.Background()
	svc, dir := newTestBackupService(t, 0)
	configPath := filepath.Join(t.TempDir(), "interfaces")

	t.Run("원본이 없으면 백업하지 않음", func(t *testing.T) {
		require.NoError(t, svc.CreateBackup(ctx, "interfaces", configPath))
		assert.False(t, svc.HasBackup(ctx, "interfaces"))
	})

	t.Run("백업 후 최신 백업으로 복원", func(t *testing.T) {
		require.NoError(t, os.WriteFile(configPath, []byte("auto lo\n"), 0644))
		require.NoError(t, svc.CreateBackup(ctx, "interfaces", configPath))
		require.NoError(t, os.WriteFile(configPath, []byte("auto eth0\n"), 0644))
		require.NoError(t, svc.CreateBackup(ctx, "interfaces", configPath))
		assert.True(t, svc.HasBackup(ctx, "interfaces"))

		require.NoError(t, os.WriteFile(configPath, []byte("broken"), 0644))
		require.NoError(t, svc.RestoreLatestBackup(ctx, "interfaces", configPath))

		data, err := os.ReadFile(configPath)
		require.NoError(t, err)
		assert.Equal(t, "auto eth0\n", string(data))

		files, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, files, 2)
		assert.Equal(t, "interfaces_20250108_150406.000", files[0].Name())
	})

	t.Run("백업이 없으면 NotFound", func(t *testing.T) {
		err := svc.RestoreLatestBackup(ctx, "dhcp-range", configPath)
		require.Error(t, err)
		assert.True(t, errors.IsNotFoundError(err))
	})
}

func TestBackupService_Retention(t *testing.T) {
	ctx := context.Background()
	svc, dir := newTestBackupService(t, 2)
	configPath := filepath.Join(t.TempDir(), "interfaces")
	require.NoError(t, os.WriteFile(configPath, []byte("auto lo\n"), 0644))

	for i := 0; i < 4; i++ {
		require.NoError(t, svc.CreateBackup(ctx, "interfaces", configPath))
	}

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "interfaces_20250108_150408.000", files[0].Name())
	assert.Equal(t, "interfaces_20250108_150409.000", files[1].Name())
}

func TestBackupService_SameInstantBackups(t *testing.T) {
	ctx := context.Background()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	dir := filepath.Join(t.TempDir(), "backups")
	clock := adapters.FixedClock{At: time.Date(2025, 1, 8, 15, 4, 5, 120*int(time.Millisecond), time.UTC)}
	svc := NewBackupService(adapters.NewRealFileSystem(), clock, logger, dir, 0)
	configPath := filepath.Join(t.TempDir(), "interfaces")

	// 같은 시각에 연속 편집해도 이전 백업을 덮어쓰지 않음
	for _, content := range []string{"auto lo\n", "auto eth0\n", "auto wlan0\n"} {
		require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
		require.NoError(t, svc.CreateBackup(ctx, "interfaces", configPath))
	}

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "interfaces_20250108_150405.120", files[0].Name())
	assert.Equal(t, "interfaces_20250108_150405.120-001", files[1].Name())
	assert.Equal(t, "interfaces_20250108_150405.120-002", files[2].Name())

	require.NoError(t, os.WriteFile(configPath, []byte("broken"), 0644))
	require.NoError(t, svc.RestoreLatestBackup(ctx, "interfaces", configPath))
	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, "auto wlan0\n", string(data))
}
