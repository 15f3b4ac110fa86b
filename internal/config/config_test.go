package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Pipeline.Validation.MinConfidence != 0.99 {
		t.Errorf("MinConfidence = %v, want 0.99", cfg.Pipeline.Validation.MinConfidence)
	}
	if cfg.Pipeline.Validation.MinFaceSize != 70 {
		t.Errorf("MinFaceSize = %d, want 70", cfg.Pipeline.Validation.MinFaceSize)
	}
	if cfg.Pipeline.Validation.BlurThreshold != 55.0 {
		t.Errorf("BlurThreshold = %v, want 55", cfg.Pipeline.Validation.BlurThreshold)
	}
	if cfg.Pipeline.Recognition.Threshold != 0.35 {
		t.Errorf("Recognition.Threshold = %v, want 0.35", cfg.Pipeline.Recognition.Threshold)
	}
	if cfg.Pipeline.Quota.MaxTotalImages != 40 {
		t.Errorf("MaxTotalImages = %d, want 40", cfg.Pipeline.Quota.MaxTotalImages)
	}
	if cfg.Pipeline.Quota.MaxDailyImages != 3 {
		t.Errorf("MaxDailyImages = %d, want 3", cfg.Pipeline.Quota.MaxDailyImages)
	}
	if cfg.Pipeline.Sync.BatchSize != 30 {
		t.Errorf("Sync.BatchSize = %d, want 30", cfg.Pipeline.Sync.BatchSize)
	}
}

func TestParseClients(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]string
	}{
		{
			name: "empty",
			raw:  "",
			want: map[string]string{},
		},
		{
			name: "two clients",
			raw:  `{"token-a": "example.com", "token-b": "other.org"}`,
			want: map[string]string{"token-a": "example.com", "token-b": "other.org"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseClients(tt.raw)
			if len(got) != len(tt.want) {
				t.Fatalf("parseClients() returned %d entries, want %d", len(got), len(tt.want))
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("parseClients()[%q] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("FACEGATE_TEST_INT", "12")
	if got := envInt("FACEGATE_TEST_INT", 5); got != 12 {
		t.Errorf("envInt() = %d, want 12", got)
	}
	t.Setenv("FACEGATE_TEST_INT", "garbage")
	if got := envInt("FACEGATE_TEST_INT", 5); got != 5 {
		t.Errorf("envInt() with invalid value = %d, want default 5", got)
	}
	if got := envInt("FACEGATE_TEST_INT_UNSET", 7); got != 7 {
		t.Errorf("envInt() with unset var = %d, want default 7", got)
	}
}
