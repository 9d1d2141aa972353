package engine

import "time"

// History keeps the most recent samples of one poller. It is not safe for
// concurrent use; the owning Poller guards it with its own lock.
type History struct {
	samples []Sample
	next    int
	full    bool
}

// NewHistory returns a History holding at most size samples.
func NewHistory(size int) *History {
	if size <= 0 {
		size = 1
	}
	return &History{samples: make([]Sample, size)}
}

// Add records s, dropping the oldest sample once the history is full.
func (h *History) Add(s Sample) {
	h.samples[h.next] = s
	h.next++
	if h.next == len(h.samples) {
		h.next = 0
		h.full = true
	}
}

// Len reports how many samples are held.
func (h *History) Len() int {
	if h.full {
		return len(h.samples)
	}
	return h.next
}

// Samples returns the held samples, oldest first.
func (h *History) Samples() []Sample {
	if !h.full {
		return append([]Sample(nil), h.samples[:h.next]...)
	}
	out := make([]Sample, 0, len(h.samples))
	out = append(out, h.samples[h.next:]...)
	return append(out, h.samples[:h.next]...)
}

// Last returns the newest sample.
func (h *History) Last() (Sample, bool) {
	if h.Len() == 0 {
		return Sample{}, false
	}
	i := h.next - 1
	if i < 0 {
		i = len(h.samples) - 1
	}
	return h.samples[i], true
}

// Since returns when the newest state was first seen in an unbroken run of
// samples. It is the zero time for an empty history.
func (h *History) Since() time.Time {
	all := h.Samples()
	if len(all) == 0 {
		return time.Time{}
	}
	last := all[len(all)-1]
	since := last.At
	for i := len(all) - 2; i >= 0 && all[i].State == last.State; i-- {
		since = all[i].At
	}
	return since
}
