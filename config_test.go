package main

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		required bool
		want     func(c *Config)
		wantErr  string
	}{
		{
			name: "missing optional file",
			want: func(c *Config) {},
		},
		{
			name:     "missing required file",
			required: true,
			wantErr:  "unable to read configuration file",
		},
		{
			name: "overrides",
			content: `
snapshot_path: /var/lib/currconv/rates.xml
attempts: 3
retry_backoff: 250ms
refresh_interval: 30m
http_port: ":8080"
log_level: debug
no_color: true
`,
			want: func(c *Config) {
				c.SnapshotPath = "/var/lib/currconv/rates.xml"
				c.Attempts = 3
				c.RetryBackoff = 250 * time.Millisecond
				c.RefreshInterval = 30 * time.Minute
				c.HTTPPort = ":8080"
				c.LogLevel = "debug"
				c.NoColor = true
			},
		},
		{name: "broken yaml", content: "attempts: [", wantErr: "unable to parse configuration file"},
		{name: "no attempts", content: "attempts: 0", wantErr: "attempts must be at least 1"},
		{name: "bad level", content: "log_level: loud", wantErr: `invalid log_level "loud"`},
		{name: "negative rate", content: "requests_per_second: -1", wantErr: "requests_per_second"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			if tt.content != "" {
				require.NoError(t, afero.WriteFile(fsys, defaultConfigFile, []byte(tt.content), 0o644))
			}

			cfg, err := LoadConfig(fsys, defaultConfigFile, tt.required)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)

			want := DefaultConfig()
			tt.want(&want)
			assert.Equal(t, want, cfg)
		})
	}
}

func TestConfig_ForexOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RequestsPerSecond = 2

	opts := cfg.ForexOptions()
	assert.Equal(t, cfg.RatesURL, opts.URL)
	assert.Equal(t, 5, opts.Attempts)
	assert.Equal(t, time.Second, opts.Backoff)
	assert.Equal(t, 2.0, opts.RatePerSecond)
}
