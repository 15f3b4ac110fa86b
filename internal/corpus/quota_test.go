package corpus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// newTestLedger creates a ledger over temp staging/production dirs and a
// helper for dropping fixture files into either tier.
func newTestLedger(t *testing.T) (*Ledger, func(tier, domain, name string)) {
	t.Helper()
	staging := filepath.Join(t.TempDir(), "staging")
	production := filepath.Join(t.TempDir(), "production")

	ledger := &Ledger{
		StagingDir:    staging,
		ProductionDir: production,
		MaxTotal:      40,
		MaxDaily:      3,
	}

	write := func(tier, domain, name string) {
		t.Helper()
		root := staging
		if tier == "production" {
			root = production
		}
		dir := filepath.Join(root, domain)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), []byte("img"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return ledger, write
}

func TestLedgerCountsAcrossTiers(t *testing.T) {
	ledger, write := newTestLedger(t)

	write("staging", "example.com", "John_Doe_2025-03-25_1.jpg")
	write("staging", "example.com", "John_Doe_2025-03-26_2.jpg")
	write("production", "example.com", "John_Doe_2025-03-25_3.jpg")
	// Different person and different domain must not count.
	write("staging", "example.com", "Jane_Doe_2025-03-25_4.jpg")
	write("staging", "other.org", "John_Doe_2025-03-25_5.jpg")
	// Sidecars and other non-image files must not count.
	write("staging", "example.com", "John_Doe_2025-03-25_1.jpg.json")

	if got := ledger.CountTotal("John Doe", "example.com"); got != 3 {
		t.Errorf("CountTotal = %d, want 3", got)
	}
	if got := ledger.CountOnDate("John Doe", "example.com", "2025-03-25"); got != 2 {
		t.Errorf("CountOnDate = %d, want 2", got)
	}
}

func TestLedgerMissingDomainFolder(t *testing.T) {
	ledger, _ := newTestLedger(t)
	if got := ledger.CountTotal("John Doe", "nowhere.net"); got != 0 {
		t.Errorf("CountTotal for missing folder = %d, want 0", got)
	}
	if err := ledger.Check("John Doe", "nowhere.net", "2025-03-25"); err != nil {
		t.Errorf("Check for missing folder = %v, want nil", err)
	}
}

func TestLedgerPersonLimit(t *testing.T) {
	ledger, write := newTestLedger(t)

	// 40 images split across both tiers, spread over dates so the daily
	// cap is not what triggers.
	for i := 0; i < 40; i++ {
		tier := "staging"
		if i%2 == 0 {
			tier = "production"
		}
		name := fmt.Sprintf("John_Doe_2025-01-%02d_%d.jpg", i%28+1, i)
		write(tier, "example.com", name)
	}

	err := ledger.Check("John Doe", "example.com", "2025-06-01")
	if !errors.Is(err, ErrPersonLimit) {
		t.Errorf("Check = %v, want ErrPersonLimit", err)
	}
}

func TestLedgerDailyLimit(t *testing.T) {
	ledger, write := newTestLedger(t)

	for i := 0; i < 3; i++ {
		write("staging", "example.com", fmt.Sprintf("John_Doe_2025-03-25_%d.jpg", i))
	}

	err := ledger.Check("John Doe", "example.com", "2025-03-25")
	if !errors.Is(err, ErrDailyLimit) {
		t.Errorf("Check = %v, want ErrDailyLimit", err)
	}

	// Other dates remain admissible.
	if err := ledger.Check("John Doe", "example.com", "2025-03-26"); err != nil {
		t.Errorf("Check for other date = %v, want nil", err)
	}
}

func TestLedgerTotalCheckedBeforeDaily(t *testing.T) {
	ledger, write := newTestLedger(t)
	ledger.MaxTotal = 3

	for i := 0; i < 3; i++ {
		write("staging", "example.com", fmt.Sprintf("John_Doe_2025-03-25_%d.jpg", i))
	}

	// Both limits are violated; the total limit must win.
	err := ledger.Check("John Doe", "example.com", "2025-03-25")
	if !errors.Is(err, ErrPersonLimit) {
		t.Errorf("Check = %v, want ErrPersonLimit", err)
	}
}
