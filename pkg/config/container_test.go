package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainerSection_Defaults(t *testing.T) {
	s := NewContainerSection()

	assert.True(t, s.RecreateOnFailure())
	assert.False(t, s.RetainOpen())
	assert.Equal(t, 5*time.Second, s.CloseTimeout())
	assert.Equal(t, 100*time.Millisecond, s.ReapInterval())
	assert.Equal(t, 200*time.Millisecond, s.SlowCloseThreshold())
	assert.NoError(t, s.Validate())
}

func TestContainerSection_SetData(t *testing.T) {
	tests := []struct {
		name    string
		data    map[string]interface{}
		wantErr bool
		check   func(t *testing.T, s *ContainerSection)
	}{
		{
			name: "duration strings",
			data: map[string]interface{}{"close_timeout": "1500ms", "reap_interval": "50ms"},
			check: func(t *testing.T, s *ContainerSection) {
				assert.Equal(t, 1500*time.Millisecond, s.CloseTimeout())
				assert.Equal(t, 50*time.Millisecond, s.ReapInterval())
			},
		},
		{
			name: "durations as JSON numbers",
			data: map[string]interface{}{"close_timeout": float64(time.Second)},
			check: func(t *testing.T, s *ContainerSection) {
				assert.Equal(t, time.Second, s.CloseTimeout())
			},
		},
		{
			name: "booleans",
			data: map[string]interface{}{"recreate_on_failure": false, "retain_open": true},
			check: func(t *testing.T, s *ContainerSection) {
				assert.False(t, s.RecreateOnFailure())
				assert.True(t, s.RetainOpen())
			},
		},
		{
			name: "unknown keys are ignored",
			data: map[string]interface{}{"future_setting": 42},
			check: func(t *testing.T, s *ContainerSection) {
				assert.Equal(t, DefaultCloseTimeout, s.CloseTimeout())
			},
		},
		{
			name:    "wrong bool type",
			data:    map[string]interface{}{"retain_open": "yes"},
			wantErr: true,
		},
		{
			name:    "bad duration",
			data:    map[string]interface{}{"close_timeout": "later"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewContainerSection()
			err := s.SetData(tt.data)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}

func TestContainerSection_Validate(t *testing.T) {
	s := NewContainerSection()
	s.SetCloseTimeout(0)
	assert.Error(t, s.Validate())

	s.Reset()
	s.SetReapInterval(time.Millisecond)
	assert.Error(t, s.Validate())

	s.Reset()
	require.NoError(t, s.SetData(map[string]interface{}{"slow_close_threshold": "10s"}))
	assert.Error(t, s.Validate(), "slow threshold above close timeout")
}

func TestContainerSection_DataRoundTrip(t *testing.T) {
	s := NewContainerSection()
	s.SetRetainOpen(true)
	s.SetCloseTimeout(3 * time.Second)

	other := NewContainerSection()
	require.NoError(t, other.SetData(s.Data()))

	assert.True(t, other.RetainOpen())
	assert.Equal(t, 3*time.Second, other.CloseTimeout())
}
