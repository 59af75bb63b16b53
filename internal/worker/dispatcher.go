package worker

import (
	"container/list"
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrDispatcherBusy   = errors.New("dispatcher queue full")
	ErrDispatcherClosed = errors.New("dispatcher closed")
)

type clientQueue struct {
	jobs     []Job
	enqueued bool
}

// Dispatcher hands jobs to an elastic worker pool, taking turns between clients.
type Dispatcher struct {
	pool     *jobChannelPool
	jobQueue chan Job // interface for outer jobs get in the dispatcher
	quit     chan struct{}

	submitMu sync.RWMutex
	closed   bool
	pending  sync.WaitGroup

	mu        sync.Mutex
	queues    map[string]*clientQueue // job queue for each client
	ready     *list.List              // LRU queue storing client IDs
	positions map[string]*list.Element
}

func NewDispatcher(minWorkers, maxWorkers, queueSize int, idleTimeout time.Duration) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	d := &Dispatcher{
		pool:      newJobChannelPool(minWorkers, maxWorkers, idleTimeout),
		jobQueue:  make(chan Job, queueSize),
		quit:      make(chan struct{}),
		queues:    make(map[string]*clientQueue),
		ready:     list.New(),
		positions: make(map[string]*list.Element),
	}

	for i := 0; i < minWorkers; i++ {
		d.pool.spawnWorker()
	}

	go d.run()
	return d
}

// Submit queues a job without blocking.
func (d *Dispatcher) Submit(job Job) error {
	if job.Task == nil {
		return errors.New("job task required")
	}
	d.submitMu.RLock()
	defer d.submitMu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}

	job.Type = Exec
	d.pending.Add(1)
	job.done = d.pending.Done
	select {
	case d.jobQueue <- job:
		debugLog("[dispatcher] queued job %s for client %s", job.Name, job.clientID())
		return nil
	default:
		d.pending.Done()
		return ErrDispatcherBusy
	}
}

// Close stops accepting jobs and waits for queued ones to finish or ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.submitMu.Lock()
	if d.closed {
		d.submitMu.Unlock()
		return nil
	}
	d.closed = true
	d.submitMu.Unlock()

	drained := make(chan struct{})
	go func() {
		d.pending.Wait()
		close(drained)
	}()

	var err error
	select {
	case <-drained:
	case <-ctx.Done():
		err = ctx.Err()
	}
	close(d.quit)
	d.pool.close()
	return err
}

// Workers returns the number of live workers.
func (d *Dispatcher) Workers() int {
	return d.pool.size()
}

func (d *Dispatcher) run() {
	for {
		// dispatch one job of client in the front of LRU queue
		if !d.dispatchOne() {
			select {
			case job := <-d.jobQueue:
				d.enqueueJob(job)
			case <-d.quit:
				return
			}
			continue
		}
		d.drainQueue()
	}
}

// drainQueue moves every waiting job into the per-client queues so turns are
// taken over all of them
func (d *Dispatcher) drainQueue() {
	for {
		select {
		case job := <-d.jobQueue:
			d.enqueueJob(job)
		default:
			return
		}
	}
}

func (d *Dispatcher) enqueueJob(job Job) {
	clientID := job.clientID()

	d.mu.Lock()
	defer d.mu.Unlock()

	q := d.queues[clientID]
	if q == nil {
		q = &clientQueue{}
		d.queues[clientID] = q
	}
	q.jobs = append(q.jobs, job)
	if q.enqueued {
		// client already enqueue, skip
		return
	}
	q.enqueued = true
	d.positions[clientID] = d.ready.PushBack(clientID)
}

// nextJob pops the first job of the client in front and sends the client to the back
func (d *Dispatcher) nextJob() (Job, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	elem := d.ready.Front()
	if elem == nil {
		return Job{}, false
	}
	clientID := elem.Value.(string)
	q := d.queues[clientID]
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	if len(q.jobs) == 0 {
		// last job of this client, it quits the queue
		q.enqueued = false
		d.ready.Remove(elem)
		delete(d.positions, clientID)
		delete(d.queues, clientID)
	} else {
		d.ready.MoveToBack(elem)
	}
	return job, true
}

func (d *Dispatcher) dispatchOne() bool {
	job, ok := d.nextJob()
	if !ok {
		return false
	}
	workerChan := d.pool.acquire()
	debugLog("[dispatcher] assign job %s for client %s to worker-%d", job.Name, job.clientID(), d.pool.workerID(workerChan))
	workerChan <- job
	return true
}
