// logbuf is a bounded, ordered and thread-safe record of timestamped status lines.
// Producers only append, readers take snapshots. When full, the oldest entries
// are evicted first.
package logbuf

import (
	"sync"
	"time"

	"github.com/SyntropyNet/nwswitch/internal/env"
)

// Entry is immutable once appended
type Entry struct {
	Seq  uint64
	Time time.Time
	Text string
}

// String formats entry the way it is displayed: "15:04:05 text"
func (e Entry) String() string {
	return e.Time.Format(env.TimeFormat) + " " + e.Text
}

// Buffer is a fixed size circular buffer of log entries
type Buffer struct {
	mu      sync.RWMutex
	entries []Entry
	head    int // index of the oldest entry
	size    int
	seq     uint64
	now     func() time.Time
}

// New allocates a buffer. Non positive capacity falls back to the default size.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = env.DefaultLogBufferSize
	}
	return &Buffer{
		entries: make([]Entry, capacity),
		now:     time.Now,
	}
}

// Append timestamps text with current wall clock time (second precision)
// and stores it, evicting the oldest entry when the buffer is full.
func (b *Buffer) Append(text string) Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	entry := Entry{
		Seq:  b.seq,
		Time: b.now().Truncate(time.Second),
		Text: text,
	}

	capacity := len(b.entries)
	if b.size < capacity {
		b.entries[(b.head+b.size)%capacity] = entry
		b.size++
	} else {
		// overwrite the oldest and move head forward
		b.entries[b.head] = entry
		b.head = (b.head + 1) % capacity
	}

	return entry
}

// Snapshot returns up to n most recent entries in original order.
// n <= 0 returns all entries.
func (b *Buffer) Snapshot(n int) []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n <= 0 || n > b.size {
		n = b.size
	}
	return b.tail(n)
}

// Since returns all entries with sequence number greater than seq.
// Entries already evicted are silently skipped.
func (b *Buffer) Since(seq uint64) []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if seq >= b.seq {
		return nil
	}
	n := b.seq - seq
	if n > uint64(b.size) {
		n = uint64(b.size)
	}
	return b.tail(int(n))
}

// tail copies n newest entries. Must be called with lock held.
func (b *Buffer) tail(n int) []Entry {
	res := make([]Entry, n)
	capacity := len(b.entries)
	start := b.head + b.size - n
	for i := 0; i < n; i++ {
		res[i] = b.entries[(start+i)%capacity]
	}
	return res
}

// Len returns current entries count
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// Cap returns buffer capacity
func (b *Buffer) Cap() int {
	return len(b.entries)
}

// LastSeq returns sequence number of the newest entry (0 if empty)
func (b *Buffer) LastSeq() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.seq
}
