package cache

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/openverdict/tribunal/internal/testutil"
	"github.com/openverdict/tribunal/pkg/types"
	"go.uber.org/zap"
)

func newTranscriptCache(t *testing.T) *RistrettoCache {
	t.Helper()

	c, err := NewRistrettoCache(&RistrettoConfig{
		NumCounters: 1000,
		MaxCost:     100,
		BufferItems: 64,
		Logger:      zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewRistrettoCache() error = %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

// archivedTranscript builds a transcript the way the archive caches them:
// keyed by content hash.
func archivedTranscript(t *testing.T, id string) (*types.TrialTranscript, string) {
	t.Helper()

	verdict := types.SideYes
	transcript := &types.TrialTranscript{
		ID:          id,
		Question:    *testutil.CreateTestQuestion("q-1", "Did the merger close before Q3?"),
		Evidence:    *testutil.CreateTestBundle("report-a", "report-b"),
		ArgumentYes: testutil.CreateTestArgument(types.SideYes, "report-a"),
		ArgumentNo:  testutil.CreateTestArgument(types.SideNo, "report-b"),
		Ruling:      testutil.CreateTestRuling(types.SideYes, 78, 45),
		Decision:    types.SettlementDecision{Action: types.ActionResolve, Verdict: &verdict, Margin: 33},
		ExecutedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	hash, err := transcript.Hash()
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	return transcript, "transcript:" + hash.Hex()
}

func TestRistrettoCacheTranscriptRoundTrip(t *testing.T) {
	c := newTranscriptCache(t)

	transcript, key := archivedTranscript(t, "trial-1")

	if !c.Set(key, transcript, time.Hour) {
		t.Fatal("Set() should admit into an empty cache")
	}
	c.Wait()

	value, found := c.Get(key)
	if !found {
		t.Fatal("Get() should find the cached transcript")
	}
	got, ok := value.(*types.TrialTranscript)
	if !ok {
		t.Fatalf("cached value is %T, want *types.TrialTranscript", value)
	}
	if got.ID != transcript.ID {
		t.Errorf("transcript id = %q, want %q", got.ID, transcript.ID)
	}
	if got.Ruling.ScoreYes != 78 {
		t.Errorf("ruling score yes = %v, want 78", got.Ruling.ScoreYes)
	}
}

func TestRistrettoCacheMiss(t *testing.T) {
	c := newTranscriptCache(t)

	key := "transcript:" + common.HexToHash("0x1").Hex()
	if _, found := c.Get(key); found {
		t.Error("Get() on an empty cache should miss")
	}
}

func TestRistrettoCacheDelete(t *testing.T) {
	c := newTranscriptCache(t)

	transcript, key := archivedTranscript(t, "trial-2")
	c.Set(key, transcript, time.Hour)
	c.Wait()

	if _, found := c.Get(key); !found {
		t.Fatal("transcript should be cached before delete")
	}

	c.Delete(key)

	if _, found := c.Get(key); found {
		t.Error("transcript should be gone after delete")
	}
}

func TestRistrettoCacheTTLExpiry(t *testing.T) {
	c := newTranscriptCache(t)

	transcript, key := archivedTranscript(t, "trial-3")
	c.Set(key, transcript, 150*time.Millisecond)
	c.Wait()

	if _, found := c.Get(key); !found {
		t.Fatal("transcript should be cached before the TTL elapses")
	}

	time.Sleep(250 * time.Millisecond)

	if _, found := c.Get(key); found {
		t.Error("transcript should be expired after the TTL")
	}
}

func TestRistrettoCacheClear(t *testing.T) {
	c := newTranscriptCache(t)

	first, firstKey := archivedTranscript(t, "trial-4")
	second, secondKey := archivedTranscript(t, "trial-5")
	c.Set(firstKey, first, time.Hour)
	c.Set(secondKey, second, time.Hour)
	c.Wait()

	_, foundFirst := c.Get(firstKey)
	_, foundSecond := c.Get(secondKey)
	if !foundFirst || !foundSecond {
		t.Skipf("admission declined an entry (first=%v second=%v)", foundFirst, foundSecond)
	}

	c.Clear()

	if _, found := c.Get(firstKey); found {
		t.Error("first transcript should be gone after clear")
	}
	if _, found := c.Get(secondKey); found {
		t.Error("second transcript should be gone after clear")
	}
}
