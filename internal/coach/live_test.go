package coach

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/config"
	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/script"
)

// TestLiveCoach sends one real query using the user's configuration.
// Skipped unless TELEFLOW_LIVE_COACH is set and a key is configured.
func TestLiveCoach(t *testing.T) {
	if os.Getenv("TELEFLOW_LIVE_COACH") == "" {
		t.Skip("set TELEFLOW_LIVE_COACH=1 to query the real backend")
	}
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	svc := New(cfg.Coach, nil)
	if !svc.Configured() {
		t.Skip("no coaching API key configured")
	}

	r := svc.Query(context.Background(), "Introduction", "The customer says they are busy.", script.LocaleEN)
	if r.Status == StatusFailed {
		t.Fatalf("query failed: %v", r.Err)
	}
	fmt.Printf("%s [%s]: %s\n", svc.Backend(), r.Status, r.Message(script.LocaleEN))
}
