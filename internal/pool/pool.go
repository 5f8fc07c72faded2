// Package pool implements the task queue, worker pool, and stop-the-world
// GC handshake: a FIFO queue of reduction tasks drained by a fixed pool
// of worker goroutines, each running a bounded time-slice per pop, with
// the last worker to notice the run flag drop performing the collection
// and relaunching the pool before it exits.
package pool

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/petermattis/goid"
	"github.com/sasha-s/go-deadlock"
	"github.com/segmentio/ksuid"

	"nrm/internal/dict"
	"nrm/internal/heap"
	"nrm/internal/machine"
	"nrm/internal/term"
)

// debugEnabled gates the Fprintf(os.Stderr, ...) runtime trace lines
// below, toggled by cmd/nrm's -debug flag via SetDebug. Go has no
// build-tag analogue for a debug-only trace macro, so a runtime flag
// does the same job.
var debugEnabled atomic.Bool

// SetDebug toggles the worker-pool/GC trace lines cmd/nrm's -debug flag
// controls.
func SetDebug(v bool) { debugEnabled.Store(v) }

func debugf(format string, args ...any) {
	if debugEnabled.Load() {
		fmt.Fprintf(os.Stderr, "[pool] "+format+"\n", args...)
	}
}

// ThreadMax is the fixed worker-pool size.
const ThreadMax = 8

// pollInterval is how long an idle worker sleeps between empty queue
// polls.
const pollInterval = 10 * time.Millisecond

// timeslice is the bounded number of reduction steps a worker performs
// per queue pop before re-enqueuing an unfinished task.
const timeslice = 1024

// Result is what a completed Job produces.
type Result struct {
	Value term.Ref
	Err   *machine.RuntimeError
}

// Job wraps a reduction Task with a log-friendly identifier and a
// completion channel. The ksuid is used only for log lines; it is
// never compared for equality by the scheduler or the machine.
type Job struct {
	ID   ksuid.KSUID
	task *machine.Task
	Done chan Result
}

// Pool owns the shared FIFO queue and the dictionary the workers
// consult for free-variable lookup.
type Pool struct {
	dict *dict.Dict

	mu    deadlock.Mutex
	queue []*Job

	live atomic.Int64
}

// New creates a Pool bound to d. d's Lookup satisfies internal/machine's
// Dictionary interface directly — Pool never imports internal/machine's
// interface by name, it just needs *dict.Dict's method set.
func New(d *dict.Dict) *Pool {
	return &Pool{dict: d}
}

// Submit enqueues t as a new task and returns a Job the caller may wait
// on via Job.Done.
func (p *Pool) Submit(t term.Ref) *Job {
	j := &Job{ID: ksuid.New(), task: machine.NewTask(t), Done: make(chan Result, 1)}
	p.mu.Lock()
	p.queue = append(p.queue, j)
	p.mu.Unlock()
	return j
}

func (p *Pool) fetch() *Job {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) == 0 {
		return nil
	}
	j := p.queue[0]
	p.queue = p.queue[1:]
	return j
}

func (p *Pool) send(j *Job) {
	p.mu.Lock()
	p.queue = append(p.queue, j)
	p.mu.Unlock()
}

// drain empties the queue and returns its contents, for GC relocation.
func (p *Pool) drain() []*Job {
	p.mu.Lock()
	defer p.mu.Unlock()
	drained := p.queue
	p.queue = nil
	return drained
}

// Run evaluates t: first synchronously for a short budget (so trivial
// expressions return without ever touching the queue), then, if
// unfinished, hands it to the worker pool and blocks for the result.
func (p *Pool) Run(t term.Ref) (term.Ref, *machine.RuntimeError) {
	quick := machine.NewTask(t)
	if res, done, err := quick.Eval(p.dict, 256); done || err != nil {
		return res, err
	}
	j := &Job{ID: ksuid.New(), task: quick, Done: make(chan Result, 1)}
	p.send(j)
	r := <-j.Done
	return r.Value, r.Err
}

// Start launches ThreadMax worker goroutines and marks the pool running.
// Workers call Start again themselves as the final step of the GC
// handshake (see workerLoop), relaunching the pool after a collection.
func (p *Pool) Start() {
	heap.SetRunning(true)
	p.live.Add(ThreadMax)
	for i := 0; i < ThreadMax; i++ {
		go p.workerLoop()
	}
	debugf("spawned %d workers", ThreadMax)
}

func (p *Pool) workerLoop() {
	debugf("worker %d running", goid.Get())
	for heap.Running() {
		j := p.fetch()
		if j == nil {
			time.Sleep(pollInterval)
			continue
		}
		res, done, err := j.task.Eval(p.dict, timeslice)
		if done || err != nil {
			j.Done <- Result{Value: res, Err: err}
		} else {
			debugf("worker %d re-queued task %s", goid.Get(), j.ID)
			p.send(j)
		}
	}
	heap.DumpPage()
	remaining := p.workerExited()
	debugf("worker %d exiting, %d still live", goid.Get(), remaining)
	if remaining == 0 {
		p.runGC()
		p.Start()
	}
	heap.DumpPage()
}

// workerExited decrements the live-worker counter and returns the
// post-decrement count. The counter is a plain atomic.Int64 rather than
// a deadlock-checked mutex: unlike the dump pool or dictionary, it
// guards no composite structure.
func (p *Pool) workerExited() int64 {
	return p.live.Add(-1)
}

// runGC drains the dump pool, deep-copies every queued task and every
// dictionary entry onto fresh pages, then lets the drained pages (now
// unreferenced) fall to Go's garbage collector.
func (p *Pool) runGC() {
	debugf("GC starting")
	heap.DrainDump()
	jobs := p.drain()
	for _, j := range jobs {
		relocateTask(j.task)
		p.send(j)
	}
	p.dict.Copy()
	debugf("GC finished, %d tasks relocated", len(jobs))
}

// relocateTask deep-copies a task's with/stack/ret onto the current
// worker's fresh, post-GC page.
func relocateTask(t *machine.Task) {
	t.SetWith(term.Copy(t.With()))
	for i, v := range t.Stack() {
		t.SetStackEntry(i, term.Copy(v))
	}
	if ret, ok := t.Ret(); ok {
		t.SetRet(term.Copy(ret))
	}
}

// WorkerID is a debug helper pairing a worker's real goroutine id with
// its ksuid-tagged job.
func WorkerID() int64 { return goid.Get() }
