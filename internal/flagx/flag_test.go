package flagx

import (
	"testing"

	"github.com/google/go-cmp/cmp"
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
			args:    []string{"-c", "conf.json", "-u", "https://x.supabase.co"},
			allowed: []string{"-c"},
			want:    []string{"-c", "conf.json"},
		},
		{
			name:    "joined value",
			args:    []string{"-config=alt.json", "-s", "memory"},
			allowed: []string{"-config"},
			want:    []string{"-config=alt.json"},
		},
		{
			name:    "order preserved across allowed flags",
			args:    []string{"-s", "memory", "-x", "1", "-u", "http://localhost:9999"},
			allowed: []string{"-u", "-s"},
			want:    []string{"-s", "memory", "-u", "http://localhost:9999"},
		},
		{
			name:    "positional arguments dropped",
			args:    []string{"login", "-s", "memory", "extra"},
			allowed: []string{"-s"},
			want:    []string{"-s", "memory"},
		},
		{
			name:    "flag without value",
			args:    []string{"-c"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "next flag is not taken as value",
			args:    []string{"-c", "-config=alt.json"},
			allowed: []string{"-c", "-config"},
			want:    []string{"-c", "-config=alt.json"},
		},
		{
			name:    "value starting with dash in joined form",
			args:    []string{"-config=-odd.json"},
			allowed: []string{"-config"},
			want:    []string{"-config=-odd.json"},
		},
		{
			name:    "repeated flag kept",
			args:    []string{"-l", "debug", "-l", "warn"},
			allowed: []string{"-l"},
			want:    []string{"-l", "debug", "-l", "warn"},
		},
		{
			name:    "nothing allowed",
			args:    []string{"-x", "1", "-y=2"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "empty",
			args:    nil,
			allowed: []string{"-c"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowed)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("FilterArgs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConfigPath(t *testing.T) {
	assert.Equal(t, "a.json", ConfigPath([]string{"-c", "a.json", "-s", "memory"}))
	assert.Equal(t, "b.json", ConfigPath([]string{"-u", "http://x", "-config=b.json"}))
	assert.Equal(t, "", ConfigPath([]string{"-s", "memory"}))
	assert.Equal(t, "", ConfigPath(nil))
}
