package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend is rejected",
			config:  Config{DataDir: "/tmp/diary"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend is rejected",
			config:  Config{Backend: "postgres", DataDir: "/tmp/diary"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:   "sqlite with data dir",
			config: Config{Backend: BackendSQLite, DataDir: "/tmp/diary"},
		},
		{
			name:   "sqlite without data dir is valid at config level",
			config: Config{Backend: BackendSQLite},
		},
		{
			name:   "log level does not affect validation",
			config: Config{Backend: BackendSQLite, LogLevel: "debug"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
