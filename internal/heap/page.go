// Package heap implements the per-worker bump-page allocator and the
// stop-the-world signal coordination that backs the combinator graph: a
// per-worker bump Page, a mutex-guarded dump pool, and an atomic run
// flag the pool package clears to request a GC safepoint. Go has no
// true thread-locals, so each worker's page lives in a goroutine-id-
// keyed map guarded by a deadlock.Mutex, looked up by goid instead of by
// OS thread.
package heap

import (
	"sync/atomic"

	"github.com/petermattis/goid"
	"github.com/sasha-s/go-deadlock"

	"nrm/internal/term"
)

// PageSize is the bump-page capacity in term slots.
const PageSize = 65536

// Watermark is the dump-pool depth that requests a GC safepoint.
const Watermark = 32

// Page is a contiguous buffer of term slots filled linearly by Alloc.
// A Page with no slots is the permitted sentinel used when a goroutine is
// exiting and has nothing more to allocate.
type Page struct {
	slots []term.Term
	index int
}

func newPage(size int) *Page {
	if size == 0 {
		return &Page{}
	}
	return &Page{slots: make([]term.Term, size)}
}

func (p *Page) full() bool { return p.index >= len(p.slots) }

var (
	pagesMu deadlock.Mutex
	pages   = make(map[int64]*Page)

	dumpMu   deadlock.Mutex
	dumpPool []*Page

	runFlag atomic.Bool
)

func init() {
	runFlag.Store(true)
}

// Running reports whether workers should keep reducing.
func Running() bool { return runFlag.Load() }

// SetRunning sets the cooperative run flag. Clearing it requests every
// worker to finish its current step, hit the bottom of its loop, and enter
// the GC shutdown handshake.
func SetRunning(v bool) { runFlag.Store(v) }

// currentPage returns (creating if absent) the calling goroutine's page.
func currentPage() *Page {
	id := goid.Get()
	pagesMu.Lock()
	defer pagesMu.Unlock()
	p, ok := pages[id]
	if !ok {
		p = newPage(PageSize)
		pages[id] = p
	}
	return p
}

// Alloc writes t into the calling goroutine's bump page, retiring the page
// to the dump pool and requesting GC at the watermark. Install this as
// the term package's allocator via term.SetAllocator(heap.Alloc) at
// process startup.
func Alloc(t term.Term) term.Ref {
	for {
		id := goid.Get()
		pagesMu.Lock()
		p, ok := pages[id]
		if !ok {
			p = newPage(PageSize)
			pages[id] = p
		}
		if !p.full() {
			p.slots[p.index] = t
			ref := &p.slots[p.index]
			p.index++
			pagesMu.Unlock()
			return ref
		}
		pagesMu.Unlock()
		retirePage(id)
	}
}

// retirePage swaps the calling goroutine's page for a fresh one and pushes
// the old (full) page into the dump pool, requesting a GC safepoint once
// the pool reaches Watermark.
func retirePage(id int64) {
	pagesMu.Lock()
	old := pages[id]
	pages[id] = newPage(PageSize)
	pagesMu.Unlock()

	dumpMu.Lock()
	dumpPool = append(dumpPool, old)
	stop := len(dumpPool) >= Watermark
	dumpMu.Unlock()

	if stop {
		SetRunning(false)
	}
}

// DumpPage retires the calling goroutine's page to the dump pool and
// replaces it with the size-0 sentinel, used when a worker goroutine is
// exiting the pool.
func DumpPage() {
	id := goid.Get()
	pagesMu.Lock()
	old, ok := pages[id]
	if !ok {
		old = newPage(0)
	}
	pages[id] = newPage(0)
	pagesMu.Unlock()

	dumpMu.Lock()
	dumpPool = append(dumpPool, old)
	dumpMu.Unlock()
}

// DrainDump removes and returns every page currently in the dump pool,
// releasing them to the caller and, transitively, the garbage collector.
func DrainDump() []*Page {
	dumpMu.Lock()
	defer dumpMu.Unlock()
	drained := dumpPool
	dumpPool = nil
	return drained
}

// ForgetGoroutine drops the page table entry for the calling goroutine
// without dumping it. Nothing in this repository calls it: the pool's
// workers dump their page with DumpPage instead.
func ForgetGoroutine() {
	id := goid.Get()
	pagesMu.Lock()
	delete(pages, id)
	pagesMu.Unlock()
}
