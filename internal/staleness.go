package perftop

// StalenessEntry is the freshness state of one entity.
type StalenessEntry struct {
	Counter   int
	Timestamp int64
}

// Stale reports whether the entity missed STALE_ITERATIONS updates in a row.
func (e StalenessEntry) Stale() bool {
	return e.Counter >= STALE_ITERATIONS
}

// StalenessTracker counts, per entity, how many polls in a row returned the
// same timestamp. It belongs to exactly one widget loop.
type StalenessTracker struct {
	evict   bool
	entries map[string]StalenessEntry
	log     Logger
	stats   *Stats
}

// NewStalenessTracker creates a tracker. Without evict, stale entities are
// tracked and logged but kept.
func NewStalenessTracker(evict bool, log Logger, stats *Stats) *StalenessTracker {
	return &StalenessTracker{
		evict:   evict,
		entries: map[string]StalenessEntry{},
		log:     log,
		stats:   stats,
	}
}

// Observe records a poll of key reporting timestamp ts.
func (s *StalenessTracker) Observe(key string, ts int64) StalenessEntry {
	entry, ok := s.entries[key]
	if !ok || ts > entry.Timestamp {
		entry = StalenessEntry{Counter: 0, Timestamp: ts}
	} else {
		entry.Counter++
	}
	s.entries[key] = entry
	return entry
}

func (s *StalenessTracker) entry(key string) (StalenessEntry, bool) {
	entry, ok := s.entries[key]
	return entry, ok
}

// Prune observes every entity in t and returns t without the stale ones.
func (s *StalenessTracker) Prune(t MetricTable) MetricTable {
	out := make(MetricTable, len(t))
	for _, name := range t.Names() {
		record := t[name]
		entry := s.Observe(name, record.Timestamp)
		if entry.Stale() && s.evict {
			s.log.Warn("%v", s.staleError(name, entry))
			s.stats.eviction()
			continue
		}
		out[name] = record
	}
	return out
}

// Check observes a single keyed record, as RCA widgets have one entity each.
// The record is only reported as stale when eviction is enabled.
func (s *StalenessTracker) Check(key string, record MetricRecord) error {
	entry := s.Observe(key, record.Timestamp)
	if !entry.Stale() {
		return nil
	}
	if !s.evict {
		s.log.Debug("Data %s has not been updated for %d iterations", key, entry.Counter)
		return nil
	}
	s.stats.eviction()
	return s.staleError(key, entry)
}

func (s *StalenessTracker) staleError(key string, entry StalenessEntry) error {
	return newError(ErrStale, "Data for node '%s' has not been updated for %d iterations. Last updated timestamp was %d. Removing the data from the dashboard.",
		key, entry.Counter, entry.Timestamp)
}
