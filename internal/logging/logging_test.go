package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			config: *NewDefaultConfig(),
		},
		{
			name:   "console format",
			config: Config{Level: "debug", Format: "console"},
		},
		{
			name:    "unknown format",
			config:  Config{Level: "info", Format: "logfmt"},
			wantErr: true,
		},
		{
			name:    "unknown level",
			config:  Config{Level: "verbose", Format: "json"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(NewDefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, logger)

	_, err = NewLogger(&Config{Level: "nope", Format: "json"})
	assert.Error(t, err)
}
