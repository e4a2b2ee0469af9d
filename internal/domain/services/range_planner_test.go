package services

import (
	"testing"

	"debinterface-agent/internal/domain/entities"
	"debinterface-agent/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangePlanner_DefaultBounds(t *testing.T) {
	tests := []struct {
		name      string
		address   string
		netmask   string
		wantStart string
		wantEnd   string
		wantErr   bool
	}{
		{"/24 네트워크", "10.1.10.1", "255.255.255.0", "10.1.10.11", "10.1.10.250", false},
		{"/16 네트워크", "172.16.5.1", "255.255.0.0", "172.16.0.11", "172.16.255.250", false},
		{"/28 네트워크는 전체 사용", "192.168.0.17", "255.255.255.240", "192.168.0.17", "192.168.0.30", false},
		{"/30 네트워크", "192.168.0.1", "255.255.255.252", "192.168.0.1", "192.168.0.2", false},
		{"/31 네트워크는 너무 작음", "192.168.0.1", "255.255.255.254", "", "", true},
		{"잘못된 주소", "fdjfdd", "255.255.255.0", "", "", true},
		{"연속되지 않은 넷마스크", "10.0.0.1", "255.0.255.0", "", "", true},
	}

	planner := NewRangePlanner()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := planner.DefaultBounds(tt.address, tt.netmask)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestRangePlanner_Fill(t *testing.T) {
	planner := NewRangePlanner()
	adapter, err := entities.NewNetworkAdapter(map[string]any{
		"name":    "wlan0",
		"source":  "static",
		"address": "10.1.30.1",
		"netmask": "255.255.255.0",
	})
	require.NoError(t, err)

	t.Run("빈 경계 채우기", func(t *testing.T) {
		got, err := planner.Fill(entities.RangeDescriptor{Name: "wlan0", ConnType: "ap", RangeIPEnd: "10.1.30.100"}, adapter)
		require.NoError(t, err)
		assert.Equal(t, "10.1.30.11", got.RangeIPStart)
		assert.Equal(t, "10.1.30.100", got.RangeIPEnd)
	})

	t.Run("AP 가 아니면 그대로", func(t *testing.T) {
		in := entities.RangeDescriptor{Name: "wlan0", ConnType: "client"}
		got, err := planner.Fill(in, adapter)
		require.NoError(t, err)
		assert.Equal(t, in, got)
	})

	t.Run("어댑터 없음", func(t *testing.T) {
		in := entities.RangeDescriptor{Name: "wlan0", ConnType: "ap"}
		got, err := planner.Fill(in, nil)
		require.NoError(t, err)
		assert.Equal(t, in, got)
	})
}

func TestRangePlanner_Contains(t *testing.T) {
	planner := NewRangePlanner()

	ok, err := planner.Contains("10.1.10.1", "255.255.255.0", "10.1.10.200")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = planner.Contains("10.1.10.1", "255.255.255.0", "10.1.11.1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = planner.Contains("10.1.10.1", "255.255.255.0", "bad")
	assert.Error(t, err)
}
