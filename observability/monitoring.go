package observability

import (
	"runtime"
	"sync/atomic"
)

// RelayStatsSnapshot aggregates the relay gauges for logging and the
// heartbeat worker.
type RelayStatsSnapshot struct {
	MessagesRelayed uint64 `json:"messages_relayed"`
	CopiesDelivered uint64 `json:"copies_delivered"`
	CopiesDropped   uint64 `json:"copies_dropped"`
	AuthFailures    uint64 `json:"auth_failures"`
	MalformedFrames uint64 `json:"malformed_frames"`
	LiveConnections int64  `json:"live_connections"`
	AllocMemMb      uint64 `json:"alloc_mem_mb"`
	NumGC           uint32 `json:"num_gc"`
}

// RelayStats tracks relay activity with atomic counters so every
// connection goroutine can report without contending on a lock.
type RelayStats struct {
	relayed   uint64
	delivered uint64
	dropped   uint64
	authFails uint64
	malformed uint64
	live      int64
}

func NewRelayStats() *RelayStats {
	return &RelayStats{}
}

func (s *RelayStats) IncrRelayed()             { atomic.AddUint64(&s.relayed, 1) }
func (s *RelayStats) IncrDelivered(n uint64)   { atomic.AddUint64(&s.delivered, n) }
func (s *RelayStats) IncrDropped()             { atomic.AddUint64(&s.dropped, 1) }
func (s *RelayStats) IncrAuthFailures()        { atomic.AddUint64(&s.authFails, 1) }
func (s *RelayStats) IncrMalformedFrames()     { atomic.AddUint64(&s.malformed, 1) }
func (s *RelayStats) SetLiveConnections(n int) { atomic.StoreInt64(&s.live, int64(n)) }

// GetLatest returns a consistent-enough snapshot for logging. Counters
// are read individually; exactness across fields is not required here.
func (s *RelayStats) GetLatest() RelayStatsSnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return RelayStatsSnapshot{
		MessagesRelayed: atomic.LoadUint64(&s.relayed),
		CopiesDelivered: atomic.LoadUint64(&s.delivered),
		CopiesDropped:   atomic.LoadUint64(&s.dropped),
		AuthFailures:    atomic.LoadUint64(&s.authFails),
		MalformedFrames: atomic.LoadUint64(&s.malformed),
		LiveConnections: atomic.LoadInt64(&s.live),
		AllocMemMb:      m.Alloc / 1024 / 1024,
		NumGC:           m.NumGC,
	}
}
