package script

import (
	"testing"
	"time"
)

func TestParseTimeLimit(t *testing.T) {
	tests := []struct {
		in     string
		want   time.Duration
		wantOK bool
	}{
		{"1 min", time.Minute, true},
		{"<= 30 mins", 30 * time.Minute, true},
		{"<= 30mins", 30 * time.Minute, true},
		{"20", 20 * time.Minute, true},
		{"90s", 90 * time.Second, true},
		{"1.5 hours", 90 * time.Minute, true},
		{"5 phút", 5 * time.Minute, true},
		{"", 0, false},
		{"asap", 0, false},
		{"0 min", 0, false},
		{"3 fortnights", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseTimeLimit(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseTimeLimit(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestStageTarget(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	want := map[string]time.Duration{
		"intro":    time.Minute,
		"kyc":      30 * time.Minute,
		"platform": 20 * time.Minute,
		"close":    15 * time.Minute,
	}
	for _, s := range c.Stages() {
		got, ok := s.Target()
		if !ok || got != want[s.ID] {
			t.Errorf("%s target = (%v, %v), want %v", s.ID, got, ok, want[s.ID])
		}
	}
}
