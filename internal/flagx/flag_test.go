package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value",
			args:    []string{"-a", "http://vault:8080", "-x", "1"},
			allowed: []string{"-a"},
			want:    []string{"-a", "http://vault:8080"},
		},
		{
			name:    "equals form",
			args:    []string{"-b=s3", "-a", "http://vault:8080"},
			allowed: []string{"-b"},
			want:    []string{"-b=s3"},
		},
		{
			name:    "unknown flags and positionals ignored",
			args:    []string{"-x", "1", "--y=2", "upload"},
			allowed: []string{"-a"},
			want:    []string{},
		},
		{
			name:    "flag without value at end",
			args:    []string{"-a"},
			allowed: []string{"-a"},
			want:    []string{"-a"},
		},
		{
			name:    "next dash token is not a value",
			args:    []string{"-c", "-a", "host"},
			allowed: []string{"-c", "-a"},
			want:    []string{"-c", "-a", "host"},
		},
		{
			name:    "repeated flag kept in order",
			args:    []string{"-o", "one", "-o", "two"},
			allowed: []string{"-o"},
			want:    []string{"-o", "one", "-o", "two"},
		},
		{
			name:    "empty args",
			args:    []string{},
			allowed: []string{"-a"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigFile(t *testing.T) {
	t.Run("short", func(t *testing.T) {
		assert.Equal(t, "/etc/cv.json", ConfigFile([]string{"-c", "/etc/cv.json"}))
	})
	t.Run("long", func(t *testing.T) {
		assert.Equal(t, "/etc/cv.json", ConfigFile([]string{"-config=/etc/cv.json", "-a", "x"}))
	})
	t.Run("absent", func(t *testing.T) {
		assert.Empty(t, ConfigFile([]string{"-a", "x"}))
	})
	t.Run("last wins", func(t *testing.T) {
		assert.Equal(t, "2.json", ConfigFile([]string{"-c", "1.json", "-config", "2.json"}))
	})
}

func TestEnvFile(t *testing.T) {
	assert.Equal(t, ".env.local", EnvFile([]string{"-a", "x", "-env", ".env.local"}))
	assert.Empty(t, EnvFile(nil))
}
