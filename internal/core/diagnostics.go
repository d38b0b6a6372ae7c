package core

import (
	"maps"
	"sync"
)

// DropReason names a class of non-fatal data loss.
type DropReason string

const (
	AlignmentMiss   DropReason = "alignment_miss"
	ChunkOverrun    DropReason = "chunk_overrun"
	MalformedLine   DropReason = "malformed_line"
	UnknownDocument DropReason = "unknown_document"
)

type DropEvent struct {
	Reason DropReason
	DocID  string
	Start  int
	Stop   int
	Detail string
}

// Diagnostics collects drop events so that callers can assert on them without
// scraping logs. A nil *Diagnostics discards everything.
type Diagnostics struct {
	mu     sync.Mutex
	counts map[DropReason]int
	events []DropEvent
}

func NewDiagnostics() *Diagnostics {
	return &Diagnostics{counts: make(map[DropReason]int)}
}

func (d *Diagnostics) Record(event DropEvent) {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.counts[event.Reason]++
	d.events = append(d.events, event)
}

// Add bumps the count for reason by n without keeping individual events. It
// is used for drops that are only reported in aggregate, such as malformed
// lines counted by the annotation parser.
func (d *Diagnostics) Add(reason DropReason, n int) {
	if d == nil || n <= 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.counts[reason] += n
}

func (d *Diagnostics) Count(reason DropReason) int {
	if d == nil {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.counts[reason]
}

func (d *Diagnostics) Counts() map[DropReason]int {
	if d == nil {
		return map[DropReason]int{}
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	return maps.Clone(d.counts)
}

func (d *Diagnostics) Events() []DropEvent {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]DropEvent(nil), d.events...)
}
