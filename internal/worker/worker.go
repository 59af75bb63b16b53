package worker

import (
	"context"
	"log"
	"time"
)

const jobTimeout = 30 * time.Second

type Worker struct {
	id         int
	pool       *jobChannelPool
	jobChannel chan Job
}

func NewWorker(id int, pool *jobChannelPool) *Worker {
	return &Worker{
		id:         id,
		pool:       pool,
		jobChannel: make(chan Job),
	}
}

func (w *Worker) Start() {
	go func() {
		if !w.pool.Release(w.jobChannel) {
			return
		}
		for job := range w.jobChannel {
			if job.Type == Stop {
				w.pool.retire(w.jobChannel)
				debugLog("[worker-%d] stopped", w.id)
				return
			}
			w.execute(job)
			if !w.pool.Release(w.jobChannel) {
				debugLog("[worker-%d] pool closed", w.id)
				return
			}
		}
	}()
}

func (w *Worker) execute(job Job) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("worker-%d job %s panic: %v", w.id, job.Name, r)
		}
		if job.done != nil {
			job.done()
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	start := time.Now()
	if err := job.Task(ctx); err != nil {
		log.Printf("worker-%d job %s for %s failed: %v", w.id, job.Name, job.clientID(), err)
		return
	}
	debugLog("[worker-%d] job %s for %s done in %s", w.id, job.Name, job.clientID(), time.Since(start))
}
