package async

import "sync/atomic"

// Sequence hands out monotonically increasing request tokens. A response
// is worth rendering only while its token is still the latest one.
type Sequence struct {
	n atomic.Uint64
}

func (s *Sequence) Next() uint64 { return s.n.Add(1) }

func (s *Sequence) IsCurrent(token uint64) bool { return s.n.Load() == token }
