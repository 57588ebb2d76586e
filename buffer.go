package max30100

// Sample is one reading of both photodetector channels.
type Sample struct {
	IR  uint16
	Red uint16
}

// SampleBuffer is a circular buffer of samples. head is the slot of the most
// recently written sample and tail the slot of the most recently consumed one,
// so the oldest unread sample sits right after tail. One slot always separates
// head from tail, which leaves room for Cap()-1 unread samples.
//
// A SampleBuffer is not safe for concurrent use.
type SampleBuffer struct {
	ir  []uint16
	red []uint16

	head int
	tail int

	// written is set by the first add.
	written bool

	// overruns counts samples made unreachable by writes that lapped the
	// buffer.
	overruns int
}

// NewSampleBuffer returns an empty buffer with the given number of slots. The
// capacity is raised to 2 if lower.
func NewSampleBuffer(capacity int) *SampleBuffer {
	if capacity < 2 {
		capacity = 2
	}
	return &SampleBuffer{
		ir:  make([]uint16, capacity),
		red: make([]uint16, capacity),
	}
}

// Cap returns the number of slots.
func (b *SampleBuffer) Cap() int {
	return len(b.ir)
}

// Available returns how many samples have not been consumed yet.
func (b *SampleBuffer) Available() int {
	n := b.head - b.tail
	if n < 0 {
		n += len(b.ir)
	}
	return n
}

// add advances head and stores s there. Writing into a full buffer puts head
// on tail, which drops the Cap()-1 unread samples and s itself; all of them
// are counted as overruns.
func (b *SampleBuffer) add(s Sample) {
	if b.Available() == len(b.ir)-1 {
		b.overruns += len(b.ir)
	}
	b.head++
	b.head %= len(b.ir)

	b.ir[b.head] = s.IR
	b.red[b.head] = s.Red
	b.written = true
}

// Next consumes the oldest sample. It does nothing on an empty buffer.
func (b *SampleBuffer) Next() {
	if b.Available() > 0 {
		b.tail++
		b.tail %= len(b.ir)
	}
}

// Oldest returns the oldest unread sample without consuming it.
func (b *SampleBuffer) Oldest() (Sample, bool) {
	if b.Available() == 0 {
		return Sample{}, false
	}
	i := (b.tail + 1) % len(b.ir)
	return Sample{IR: b.ir[i], Red: b.red[i]}, true
}

// Latest returns the most recently written sample. It reports false until the
// first sample arrives.
func (b *SampleBuffer) Latest() (Sample, bool) {
	if !b.written {
		return Sample{}, false
	}
	return Sample{IR: b.ir[b.head], Red: b.red[b.head]}, true
}

// Overruns returns how many samples were lost because a write lapped a full
// buffer. One lap loses Cap() samples: the unread ones and the lapping write.
func (b *SampleBuffer) Overruns() int {
	return b.overruns
}

// Reset empties the buffer and clears the overrun count.
func (b *SampleBuffer) Reset() {
	b.head = 0
	b.tail = 0
	b.written = false
	b.overruns = 0
}
