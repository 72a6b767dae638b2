package monitoring

import (
	"sync"

	"github.com/rs/xid"
)

// A ProgressBar reports the progress of a long replay on the web dashboard.
type ProgressBar struct {
	lock sync.Mutex

	ID       string `json:"id"`
	Name     string `json:"name"`
	Total    uint64 `json:"total"`
	Finished uint64 `json:"finished"`
}

// CreateProgressBar adds a new bar to the dashboard.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:    xid.New().String(),
		Name:  name,
		Total: total,
	}

	m.progressLock.Lock()
	defer m.progressLock.Unlock()

	m.progress = append(m.progress, bar)

	return bar
}

// CompleteProgressBar removes a bar from the dashboard.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressLock.Lock()
	defer m.progressLock.Unlock()

	bars := make([]*ProgressBar, 0, len(m.progress))
	for _, b := range m.progress {
		if b != pb {
			bars = append(bars, b)
		}
	}

	m.progress = bars
}

// Increment adds n to the finished count.
func (pb *ProgressBar) Increment(n uint64) {
	pb.lock.Lock()
	defer pb.lock.Unlock()

	pb.Finished += n
}
