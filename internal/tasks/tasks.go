// Package tasks runs deferred work (ip bookkeeping, websocket fan-out) on a
// bounded pool of workers so request handlers never block on it.
package tasks

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/14ChannelBBS/Qua/internal/logger"
)

type Task func(ctx context.Context) error

// Pool executes submitted tasks on a fixed number of workers. A panicking
// task takes down neither its worker nor the process.
type Pool struct {
	queue  chan Task
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	closed bool
}

func NewPool(workers, queueSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		queue:  make(chan Task, queueSize),
		ctx:    ctx,
		cancel: cancel,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for task := range p.queue {
		p.run(id, task)
	}
}

func (p *Pool) run(id int, task Task) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("background task panicked",
				"worker", id, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
		}
	}()
	if err := task(p.ctx); err != nil {
		logger.Log.Error("background task failed", "worker", id, "error", err)
	}
}

// Submit enqueues a task. It returns false when the queue is full or the
// pool is shutting down; callers treat that as best-effort loss.
func (p *Pool) Submit(task Task) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	select {
	case p.queue <- task:
		return true
	default:
		logger.Log.Warn("background task queue full, dropping task")
		return false
	}
}

// Shutdown stops accepting tasks, drains queued ones and waits for workers
// to exit. In-flight tasks observe a cancelled context.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
}
