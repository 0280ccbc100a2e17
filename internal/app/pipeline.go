package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

type retryKey struct{}

// IsRetry reports whether the current work call repeats a failed one.
func IsRetry(ctx context.Context) bool {
	retry, _ := ctx.Value(retryKey{}).(bool)
	return retry
}

// PipelineStage runs work whenever it is queued. Queueing while work is
// pending is a no-op, work returning false is retried after retryDelay.
type PipelineStage struct {
	name       string
	setup      func(context.Context)
	work       func(context.Context) bool
	retryDelay time.Duration

	pending   atomic.Bool
	isWorking atomic.Bool
	launch    chan struct{}

	ctx         context.Context
	cancelFunc  context.CancelFunc
	active      bool
	activeMutex sync.Mutex // guards closing launch
}

func NewStage(
	name string, setup func(context.Context), work func(context.Context) bool,
	retryDelay time.Duration, initialQueue bool,
) *PipelineStage {
	if setup == nil {
		setup = func(context.Context) {}
	}
	ctx, cancel := context.WithCancel(context.Background())
	stage := &PipelineStage{
		name: name, setup: setup, work: work, retryDelay: retryDelay,
		launch: make(chan struct{}, 1), ctx: ctx, cancelFunc: cancel, active: true,
	}
	if initialQueue {
		stage.QueueWork()
	}
	return stage
}

func (s *PipelineStage) QueueWork() {
	s.activeMutex.Lock()
	defer s.activeMutex.Unlock()
	if !s.active {
		return
	}
	if s.pending.CompareAndSwap(false, true) {
		log.Debugf("Queued pipeline stage '%s'", s.name)
		s.launch <- struct{}{}
	}
}

func (s *PipelineStage) execute() {
	retry := false
	for {
		ctx := context.WithValue(s.ctx, retryKey{}, retry)
		if s.work(ctx) || ctx.Err() != nil {
			return
		}
		retry = true
		log.Warnf("Pipeline stage '%s' failed, retrying in %v", s.name, s.retryDelay)
		select {
		case <-time.After(s.retryDelay):
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *PipelineStage) Run(waitGroup *sync.WaitGroup) {
	defer waitGroup.Done()
	s.setup(s.ctx)
	for range s.launch {
		log.Debugf("Executing pipeline stage '%s'...", s.name)
		s.pending.Store(false)
		s.isWorking.Store(true)
		s.execute()
		s.isWorking.Store(false)
		log.Debugf("Done executing pipeline stage '%s'", s.name)
	}
}

func (s *PipelineStage) Working() bool {
	return s.isWorking.Load()
}

func (s *PipelineStage) close() {
	s.activeMutex.Lock()
	defer s.activeMutex.Unlock()
	if s.active {
		s.active = false
		close(s.launch)
	}
}

// Stop lets queued work finish, Run returns afterwards.
func (s *PipelineStage) Stop() {
	s.close()
}

func (s *PipelineStage) ForceStop() {
	s.close()
	s.cancelFunc()
}
