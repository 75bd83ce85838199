package logbuf

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(entries []Entry) []string {
	res := make([]string, 0, len(entries))
	for _, e := range entries {
		res = append(res, e.Text)
	}
	return res
}

func TestEvictionIsFIFO(t *testing.T) {
	const capacity = 8
	const extra = 5

	buf := New(capacity)
	for i := 0; i < capacity+extra; i++ {
		buf.Append(fmt.Sprintf("line %d", i))
		require.LessOrEqual(t, buf.Len(), capacity)
	}

	want := []string{}
	for i := extra; i < capacity+extra; i++ {
		want = append(want, fmt.Sprintf("line %d", i))
	}
	assert.Equal(t, want, texts(buf.Snapshot(0)))
	assert.Equal(t, capacity, buf.Len())
	assert.Equal(t, capacity, buf.Cap())
}

func TestSnapshotSuffix(t *testing.T) {
	buf := New(4)
	assert.Empty(t, buf.Snapshot(3))

	buf.Append("a")
	buf.Append("b")
	assert.Equal(t, []string{"a", "b"}, texts(buf.Snapshot(10)))

	buf.Append("c")
	buf.Append("d")
	buf.Append("e")
	assert.Equal(t, []string{"d", "e"}, texts(buf.Snapshot(2)))
	assert.Equal(t, []string{"b", "c", "d", "e"}, texts(buf.Snapshot(0)))

	// snapshot is not destructive
	assert.Equal(t, 4, buf.Len())
}

func TestSince(t *testing.T) {
	buf := New(3)
	first := buf.Append("a")
	buf.Append("b")

	assert.Equal(t, []string{"b"}, texts(buf.Since(first.Seq)))
	assert.Equal(t, []string{"a", "b"}, texts(buf.Since(0)))
	assert.Nil(t, buf.Since(buf.LastSeq()))

	buf.Append("c")
	buf.Append("d")
	buf.Append("e")
	// "a" and "b" were evicted, only retained entries are returned
	assert.Equal(t, []string{"c", "d", "e"}, texts(buf.Since(first.Seq)))
	assert.Equal(t, uint64(5), buf.LastSeq())
}

func TestEntryFormat(t *testing.T) {
	buf := New(2)
	buf.now = func() time.Time {
		return time.Date(2023, 6, 7, 14, 5, 9, 700000000, time.Local)
	}

	e := buf.Append("echo: On Wi-Fi")
	assert.Equal(t, 0, e.Time.Nanosecond())
	assert.Equal(t, "14:05:09 echo: On Wi-Fi", e.String())
}

func TestDefaultCapacity(t *testing.T) {
	assert.Equal(t, 256, New(0).Cap())
	assert.Equal(t, 256, New(-1).Cap())
}

func TestConcurrentAppendAndRead(t *testing.T) {
	const producers = 4
	const perProducer = 500
	const capacity = 64

	buf := New(capacity)
	wg := sync.WaitGroup{}
	stop := make(chan struct{})

	// reader checks entries stay ordered while producers append
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			select {
			case <-stop:
				return
			default:
			}
			snap := buf.Snapshot(0)
			if len(snap) > capacity {
				t.Errorf("snapshot exceeds capacity: %d", len(snap))
				return
			}
			for i := 1; i < len(snap); i++ {
				if snap[i].Seq != snap[i-1].Seq+1 {
					t.Errorf("snapshot out of order at %d", i)
					return
				}
			}
		}
	}()

	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				buf.Append(fmt.Sprintf("producer %d line %d", p, i))
			}
		}(p)
	}
	wg.Wait()
	close(stop)
	<-readerDone

	assert.Equal(t, capacity, buf.Len())
	assert.Equal(t, uint64(producers*perProducer), buf.LastSeq())
	for _, line := range texts(buf.Snapshot(0)) {
		assert.True(t, strings.HasPrefix(line, "producer "))
	}
}
