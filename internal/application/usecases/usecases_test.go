package usecases

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"debinterface-agent/internal/domain/entities"
	domainErrors "debinterface-agent/internal/domain/errors"
	"debinterface-agent/internal/domain/services"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock 구현체들
type MockDesiredRangeRepository struct {
	mock.Mock
}

func (m *MockDesiredRangeRepository) GetDesiredRanges(ctx context.Context, nodeName string) ([]entities.RangeDescriptor, error) {
	args := m.Called(ctx, nodeName)
	return args.Get(0).([]entities.RangeDescriptor), args.Error(1)
}

func (m *MockDesiredRangeRepository) UpdateSyncStatus(ctx context.Context, id int, status entities.SyncStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type MockRangeStore struct {
	mock.Mock
}

func (m *MockRangeStore) Read(path ...string) error {
	args := m.Called(path)
	return args.Error(0)
}

func (m *MockRangeStore) Clear() {
	m.Called()
}

func (m *MockRangeStore) Ranges() []entities.DHCPRange {
	args := m.Called()
	return args.Get(0).([]entities.DHCPRange)
}

func (m *MockRangeStore) GetItfRange(name string) (entities.DHCPRange, bool) {
	args := m.Called(name)
	return args.Get(0).(entities.DHCPRange), args.Bool(1)
}

func (m *MockRangeStore) CheckRange(desired entities.RangeDescriptor) error {
	args := m.Called(desired)
	return args.Error(0)
}

func (m *MockRangeStore) UpdateRange(desired entities.RangeDescriptor) bool {
	args := m.Called(desired)
	return args.Bool(0)
}

func (m *MockRangeStore) Write(path ...string) error {
	args := m.Called(path)
	return args.Error(0)
}

func (m *MockRangeStore) Restore() error {
	args := m.Called()
	return args.Error(0)
}

type MockAdapterReader struct {
	mock.Mock
}

func (m *MockAdapterReader) Parse(path string) ([]*entities.NetworkAdapter, error) {
	args := m.Called(path)
	return args.Get(0).([]*entities.NetworkAdapter), args.Error(1)
}

type MockServiceController struct {
	mock.Mock
}

func (m *MockServiceController) Control(ctx context.Context, action string) (bool, string) {
	args := m.Called(ctx, action)
	return args.Bool(0), args.String(1)
}

type MockFileSystem struct {
	mock.Mock
}

func (m *MockFileSystem) ReadFile(path string) ([]byte, error) {
	args := m.Called(path)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockFileSystem) WriteFile(path string, data []byte, perm os.FileMode) error {
	args := m.Called(path, data, perm)
	return args.Error(0)
}

func (m *MockFileSystem) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	args := m.Called(path, data, perm)
	return args.Error(0)
}

func (m *MockFileSystem) CopyFile(src, dst string) error {
	args := m.Called(src, dst)
	return args.Error(0)
}

func (m *MockFileSystem) Exists(path string) bool {
	args := m.Called(path)
	return args.Bool(0)
}

func (m *MockFileSystem) MkdirAll(path string, perm os.FileMode) error {
	args := m.Called(path, perm)
	return args.Error(0)
}

func (m *MockFileSystem) Remove(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

func (m *MockFileSystem) ListFiles(path string) ([]string, error) {
	args := m.Called(path)
	return args.Get(0).([]string), args.Error(1)
}

const (
	testInterfacesFile = "/etc/network/interfaces"
	testRangeFile      = "/etc/dnsmasq.d/dhcp-range.conf"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newAdapter(t *testing.T, options map[string]any) *entities.NetworkAdapter {
	t.Helper()
	adapter, err := entities.NewNetworkAdapter(options)
	require.NoError(t, err)
	return adapter
}

type reconcileMocks struct {
	repo    *MockDesiredRangeRepository
	store   *MockRangeStore
	reader  *MockAdapterReader
	service *MockServiceController
	fs      *MockFileSystem
}

func newReconcileUseCase() (*ReconcileRangesUseCase, reconcileMocks) {
	m := reconcileMocks{
		repo:    new(MockDesiredRangeRepository),
		store:   new(MockRangeStore),
		reader:  new(MockAdapterReader),
		service: new(MockServiceController),
		fs:      new(MockFileSystem),
	}
	uc := NewReconcileRangesUseCase(
		m.repo, m.store, m.reader, m.service,
		services.NewRangePlanner(), m.fs,
		ReconcilePaths{InterfacesFile: testInterfacesFile, RangeFile: testRangeFile},
		testLogger(),
	)
	return uc, m
}

func (m reconcileMocks) assertAll(t *testing.T) {
	m.repo.AssertExpectations(t)
	m.store.AssertExpectations(t)
	m.reader.AssertExpectations(t)
	m.service.AssertExpectations(t)
	m.fs.AssertExpectations(t)
}

func TestReconcileRangesUseCase_Execute(t *testing.T) {
	wlan0 := entities.RangeDescriptor{ID: 1, NodeName: "node1", Name: "wlan0", ConnType: "ap"}
	eth1 := entities.RangeDescriptor{ID: 2, NodeName: "node1", Name: "eth1", ConnType: "lan", Status: entities.SyncApplied}

	tests := []struct {
		name        string
		setupMocks  func(t *testing.T, m reconcileMocks)
		wantErr     bool
		wantChanged int
		wantFailed  int
		wantRestart bool
	}{
		{
			name: "처리할 descriptor 없음",
			setupMocks: func(t *testing.T, m reconcileMocks) {
				m.repo.On("GetDesiredRanges", mock.Anything, "node1").Return([]entities.RangeDescriptor{}, nil)
			},
		},
		{
			name: "DB 조회 실패",
			setupMocks: func(t *testing.T, m reconcileMocks) {
				m.repo.On("GetDesiredRanges", mock.Anything, "node1").
					Return([]entities.RangeDescriptor{}, errors.New("connection refused"))
			},
			wantErr: true,
		},
		{
			name: "어댑터 네트워크로 범위를 채워 기록 후 재시작",
			setupMocks: func(t *testing.T, m reconcileMocks) {
				m.repo.On("GetDesiredRanges", mock.Anything, "node1").Return([]entities.RangeDescriptor{wlan0}, nil)
				m.fs.On("Exists", testRangeFile).Return(true)
				m.store.On("Read", []string{testRangeFile}).Return(nil)
				m.reader.On("Parse", testInterfacesFile).Return([]*entities.NetworkAdapter{
					newAdapter(t, map[string]any{
						"name": "wlan0", "addrFam": "inet", "source": "static",
						"address": "192.168.50.1", "netmask": "255.255.255.0",
					}),
				}, nil)

				filled := wlan0
				filled.RangeIPStart = "192.168.50.11"
				filled.RangeIPEnd = "192.168.50.250"
				m.store.On("CheckRange", filled).Return(nil)
				m.store.On("UpdateRange", filled).Return(true)
				m.store.On("Ranges").Return([]entities.DHCPRange{{Interface: "wlan0"}})
				m.store.On("Write", []string(nil)).Return(nil)
				m.service.On("Control", mock.Anything, "restart").Return(true, "ok")
				m.repo.On("UpdateSyncStatus", mock.Anything, 1, entities.SyncApplied).Return(nil)
			},
			wantChanged: 1,
			wantRestart: true,
		},
		{
			name: "범위 파일이 없으면 빈 상태에서 시작",
			setupMocks: func(t *testing.T, m reconcileMocks) {
				m.repo.On("GetDesiredRanges", mock.Anything, "node1").Return([]entities.RangeDescriptor{eth1}, nil)
				m.fs.On("Exists", testRangeFile).Return(false)
				m.store.On("Clear").Return()
				m.reader.On("Parse", testInterfacesFile).Return([]*entities.NetworkAdapter{}, nil)
				m.store.On("CheckRange", eth1).Return(nil)
				m.store.On("UpdateRange", eth1).Return(false)
			},
		},
		{
			name: "interfaces 파싱 실패해도 계속 진행",
			setupMocks: func(t *testing.T, m reconcileMocks) {
				m.repo.On("GetDesiredRanges", mock.Anything, "node1").Return([]entities.RangeDescriptor{wlan0}, nil)
				m.fs.On("Exists", testRangeFile).Return(true)
				m.store.On("Read", []string{testRangeFile}).Return(nil)
				m.reader.On("Parse", testInterfacesFile).
					Return([]*entities.NetworkAdapter{}, domainErrors.NewParseError("bad", nil))
				m.store.On("CheckRange", wlan0).Return(nil)
				m.store.On("UpdateRange", wlan0).Return(false)
				m.repo.On("UpdateSyncStatus", mock.Anything, 1, entities.SyncApplied).Return(nil)
			},
		},
		{
			name: "유효하지 않은 descriptor 는 실패 처리",
			setupMocks: func(t *testing.T, m reconcileMocks) {
				bad := entities.RangeDescriptor{ID: 9, NodeName: "node1", Name: "this-name-is-way-too-long", ConnType: "ap"}
				m.repo.On("GetDesiredRanges", mock.Anything, "node1").Return([]entities.RangeDescriptor{bad}, nil)
				m.fs.On("Exists", testRangeFile).Return(true)
				m.store.On("Read", []string{testRangeFile}).Return(nil)
				m.reader.On("Parse", testInterfacesFile).Return([]*entities.NetworkAdapter{}, nil)
				m.repo.On("UpdateSyncStatus", mock.Anything, 9, entities.SyncFailed).Return(nil)
			},
			wantFailed: 1,
		},
		{
			name: "잘못된 경계의 descriptor 만 실패 처리",
			setupMocks: func(t *testing.T, m reconcileMocks) {
				inverted := entities.RangeDescriptor{
					ID: 5, NodeName: "node1", Name: "wlan1", ConnType: "ap",
					RangeIPStart: "10.9.9.250", RangeIPEnd: "10.9.9.11",
				}
				m.repo.On("GetDesiredRanges", mock.Anything, "node1").
					Return([]entities.RangeDescriptor{inverted, wlan0}, nil)
				m.fs.On("Exists", testRangeFile).Return(true)
				m.store.On("Read", []string{testRangeFile}).Return(nil)
				m.reader.On("Parse", testInterfacesFile).Return([]*entities.NetworkAdapter{}, nil)
				m.store.On("CheckRange", inverted).Return(domainErrors.NewRangeError("wlan1: 10.9.9.250 > 10.9.9.11", nil))
				m.repo.On("UpdateSyncStatus", mock.Anything, 5, entities.SyncFailed).Return(nil)
				m.store.On("CheckRange", wlan0).Return(nil)
				m.store.On("UpdateRange", wlan0).Return(true)
				m.store.On("Ranges").Return([]entities.DHCPRange{{Interface: "wlan0"}})
				m.store.On("Write", []string(nil)).Return(nil)
				m.service.On("Control", mock.Anything, "restart").Return(true, "ok")
				m.repo.On("UpdateSyncStatus", mock.Anything, 1, entities.SyncApplied).Return(nil)
			},
			wantChanged: 1,
			wantFailed:  1,
			wantRestart: true,
		},
		{
			name: "범위 파일 기록 실패",
			setupMocks: func(t *testing.T, m reconcileMocks) {
				m.repo.On("GetDesiredRanges", mock.Anything, "node1").Return([]entities.RangeDescriptor{wlan0}, nil)
				m.fs.On("Exists", testRangeFile).Return(true)
				m.store.On("Read", []string{testRangeFile}).Return(nil)
				m.reader.On("Parse", testInterfacesFile).Return([]*entities.NetworkAdapter{}, nil)
				m.store.On("CheckRange", wlan0).Return(nil)
				m.store.On("UpdateRange", wlan0).Return(true)
				m.store.On("Ranges").Return([]entities.DHCPRange{})
				m.store.On("Write", []string(nil)).Return(domainErrors.NewRangeError("invalid", nil))
				m.repo.On("UpdateSyncStatus", mock.Anything, 1, entities.SyncFailed).Return(nil)
			},
			wantErr:     true,
			wantChanged: 1,
			wantFailed:  1,
		},
		{
			name: "재시작 실패 시 백업 복구",
			setupMocks: func(t *testing.T, m reconcileMocks) {
				m.repo.On("GetDesiredRanges", mock.Anything, "node1").Return([]entities.RangeDescriptor{wlan0}, nil)
				m.fs.On("Exists", testRangeFile).Return(true)
				m.store.On("Read", []string{testRangeFile}).Return(nil)
				m.reader.On("Parse", testInterfacesFile).Return([]*entities.NetworkAdapter{}, nil)
				m.store.On("CheckRange", wlan0).Return(nil)
				m.store.On("UpdateRange", wlan0).Return(true)
				m.store.On("Ranges").Return([]entities.DHCPRange{{Interface: "wlan0"}})
				m.store.On("Write", []string(nil)).Return(nil)
				m.service.On("Control", mock.Anything, "restart").Return(false, "failed!").Once()
				m.store.On("Restore").Return(nil)
				m.service.On("Control", mock.Anything, "restart").Return(true, "ok").Once()
				m.repo.On("UpdateSyncStatus", mock.Anything, 1, entities.SyncFailed).Return(nil)
			},
			wantErr:     true,
			wantChanged: 1,
			wantFailed:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, m := newReconcileUseCase()
			tt.setupMocks(t, m)

			output, err := uc.Execute(context.Background(), ReconcileRangesInput{NodeName: "node1"})

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			if output != nil {
				assert.Equal(t, tt.wantChanged, output.ChangedCount)
				assert.Equal(t, tt.wantFailed, output.FailedCount)
				assert.Equal(t, tt.wantRestart, output.Restarted)
			}
			m.assertAll(t)
		})
	}
}

func TestReconcileRangesUseCase_SkipsStatusUpdateWhenUnchanged(t *testing.T) {
	uc, m := newReconcileUseCase()
	applied := entities.RangeDescriptor{ID: 3, NodeName: "node1", Name: "wlan1", ConnType: "ap", Status: entities.SyncApplied}

	m.repo.On("GetDesiredRanges", mock.Anything, "node1").Return([]entities.RangeDescriptor{applied}, nil)
	m.fs.On("Exists", testRangeFile).Return(true)
	m.store.On("Read", []string{testRangeFile}).Return(nil)
	m.reader.On("Parse", testInterfacesFile).Return([]*entities.NetworkAdapter{}, nil)
	m.store.On("CheckRange", applied).Return(nil)
	m.store.On("UpdateRange", applied).Return(false)

	output, err := uc.Execute(context.Background(), ReconcileRangesInput{NodeName: "node1"})

	require.NoError(t, err)
	assert.Equal(t, 1, output.TotalCount)
	assert.Zero(t, output.ChangedCount)
	m.repo.AssertNotCalled(t, "UpdateSyncStatus", mock.Anything, mock.Anything, mock.Anything)
	m.service.AssertNotCalled(t, "Control", mock.Anything, mock.Anything)
}

func TestValidateInterfacesUseCase_Execute(t *testing.T) {
	t.Run("유효/무효 어댑터 분류", func(t *testing.T) {
		reader := new(MockAdapterReader)
		valid := newAdapter(t, map[string]any{
			"name": "eth0", "addrFam": "inet", "source": "dhcp",
		})
		invalid := newAdapter(t, map[string]any{
			"name": "wlan0", "addrFam": "inet", "source": "static",
		})
		reader.On("Parse", testInterfacesFile).Return([]*entities.NetworkAdapter{valid, invalid}, nil)

		uc := NewValidateInterfacesUseCase(reader, testInterfacesFile, testLogger())
		output, err := uc.Execute(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []string{"eth0"}, output.Valid)
		require.Len(t, output.Invalid, 1)
		assert.Equal(t, "wlan0", output.Invalid[0].Name)
		assert.True(t, domainErrors.IsLogicError(output.Invalid[0].Err))
		reader.AssertExpectations(t)
	})

	t.Run("파싱 실패", func(t *testing.T) {
		reader := new(MockAdapterReader)
		reader.On("Parse", testInterfacesFile).
			Return([]*entities.NetworkAdapter{}, errors.New("no such file"))

		uc := NewValidateInterfacesUseCase(reader, testInterfacesFile, testLogger())
		output, err := uc.Execute(context.Background())

		require.Error(t, err)
		assert.Nil(t, output)
		assert.True(t, domainErrors.IsParseError(err))
	})
}
