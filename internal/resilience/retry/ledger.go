package retry

import (
	"sync"
	"time"
)

// AttemptRecord holds retry accounting for one operation key.
type AttemptRecord struct {
	Attempts      int
	LastAttemptAt time.Time
}

// Ledger tracks attempts per operation key for the lifetime of the client
// process. One ledger is shared by every call site going through the same
// executor, so throttling applies across the whole class of calls.
type Ledger struct {
	mu      sync.Mutex
	records map[string]AttemptRecord
	now     func() time.Time
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		records: make(map[string]AttemptRecord),
		now:     time.Now,
	}
}

// Record increments the attempt count for key and stamps the attempt time.
func (l *Ledger) Record(key string) AttemptRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec := l.records[key]
	rec.Attempts++
	rec.LastAttemptAt = l.now()
	l.records[key] = rec
	return rec
}

// Clear removes the record for key. Called after a successful attempt so a
// later call is never throttled by stale history.
func (l *Ledger) Clear(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.records, key)
}

// Get returns the current record for key.
func (l *Ledger) Get(key string) (AttemptRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[key]
	return rec, ok
}

// ThrottleWait returns how much longer callers must wait before key may be
// attempted again; zero means not throttled. A key is throttled once its
// attempts have reached the retry budget and the backoff window since the
// last attempt has not yet elapsed. A fully elapsed window resets the record
// lazily, so the next call proceeds with fresh accounting.
func (l *Ledger) ThrottleWait(key string, cfg NetworkConfig) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[key]
	if !ok || rec.Attempts < cfg.MaxRetries {
		return 0
	}

	wait := Delay(rec.Attempts, cfg)
	elapsed := l.now().Sub(rec.LastAttemptAt)
	if elapsed >= wait {
		delete(l.records, key)
		return 0
	}
	return wait - elapsed
}
