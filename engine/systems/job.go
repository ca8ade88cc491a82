package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/lumen/engine/core"
)

/**
 * @brief Describes a job to be run on a worker goroutine.
 */
type JobTask struct {
	Name string
	/** @brief Invoked on the worker. Required. */
	OnStart func(params interface{}) (interface{}, error)
	/** @brief Invoked with the result when OnStart succeeds. Optional. */
	OnComplete func(result interface{})
	/** @brief Invoked with the error when OnStart fails. Optional. */
	OnFailure func(err error)
	/** @brief Passed to OnStart. */
	InputParams interface{}
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	wg         sync.WaitGroup

	// jobs submitted but not yet finished
	inflight sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")
var ErrJobSystemClosed = fmt.Errorf("job system is shut down")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan JobTask, channelSize),
	}

	js.start()

	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				js.run(job)
			}
		}()
	}
}

func (js *JobSystem) run(job JobTask) {
	defer js.inflight.Done()
	if job.OnStart == nil {
		core.LogWarn("job %q has no entry point", job.Name)
		return
	}
	result, err := job.OnStart(job.InputParams)
	if err != nil {
		core.LogError("job %q failed: %s", job.Name, err.Error())
		if job.OnFailure != nil {
			job.OnFailure(err)
		}
		return
	}
	if job.OnComplete != nil {
		job.OnComplete(result)
	}
}

/**
 * @brief Shuts the job system down. Queued jobs are drained first.
 */
func (js *JobSystem) Shutdown() error {
	js.mu.Lock()
	if js.closed {
		js.mu.Unlock()
		return nil
	}
	js.closed = true
	close(js.jobQueue)
	js.mu.Unlock()
	js.wg.Wait()
	return nil
}

// Wait blocks until every submitted job has finished.
func (js *JobSystem) Wait() {
	js.inflight.Wait()
}

// AddWorkNonBlocking queues the job from a new goroutine and returns immediately.
func (js *JobSystem) AddWorkNonBlocking(jt JobTask) {
	js.inflight.Add(1)
	go func() {
		if err := js.enqueue(jt); err != nil {
			js.inflight.Done()
		}
	}()
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while
 * the queue is full.
 */
func (js *JobSystem) Submit(jt JobTask) error {
	js.inflight.Add(1)
	if err := js.enqueue(jt); err != nil {
		js.inflight.Done()
		return err
	}
	return nil
}

func (js *JobSystem) enqueue(jt JobTask) error {
	js.mu.RLock()
	defer js.mu.RUnlock()
	if js.closed {
		core.LogWarn("job %q submitted after shutdown", jt.Name)
		return ErrJobSystemClosed
	}
	js.jobQueue <- jt
	return nil
}
