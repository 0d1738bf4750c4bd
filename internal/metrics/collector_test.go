package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type fakeCacheStats struct {
	entries int
	bytes   int64
}

func (f *fakeCacheStats) Stats() (int, int64) {
	return f.entries, f.bytes
}

func TestCollectorStartStop(t *testing.T) {
	c := NewCollector(&fakeCacheStats{entries: 3, bytes: 1024}, "", 10*time.Millisecond)
	c.Start()
	time.Sleep(30 * time.Millisecond)
	c.Stop()
	// Stop must not panic and the loop must exit; a second Stop would
	// panic on a closed channel, which is why there is exactly one.
}

func TestCollectDBSizes(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "vidpress.db")
	if err := os.WriteFile(dbPath, []byte("0123456789"), 0o644); err != nil {
		t.Fatalf("failed to write fake db: %v", err)
	}

	c := NewCollector(nil, dbPath, time.Minute)
	c.collect() // must tolerate missing -wal and -shm files
}
