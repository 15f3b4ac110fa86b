package notify

import (
	"testing"
	"time"
)

func TestAdmissionDate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"2026-08-30", "2026-08-30"},
		{"2026-08-30T14:05:00Z", "2026-08-30"},
		{"2026-08-30 14:05:00", "2026-08-30"},
		{"30.08.2026", "2026-08-30"},
		{"2026/08/30", "2026-08-30"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := PendingImage{Date: tt.raw}.AdmissionDate()
			if got != tt.want {
				t.Errorf("AdmissionDate(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestAdmissionDateFallback(t *testing.T) {
	got := PendingImage{Date: "not a date"}.AdmissionDate()
	if got != time.Now().Format("2006-01-02") {
		t.Errorf("fallback = %q, want today", got)
	}
}

func TestNewClientDisabled(t *testing.T) {
	client, err := NewClient("", "token")
	if err != nil {
		t.Fatal(err)
	}
	if client != nil {
		t.Error("empty URL must disable the client")
	}
}
