package spool

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

type Watcher struct {
	directory string
	jobs      chan *Job
	watcher   *fsnotify.Watcher
	stopped   chan struct{}

	queued      map[string]bool
	queuedMutex sync.Mutex
}

func NewWatcher(directory string, jobs chan *Job) (*Watcher, error) {
	if err := os.MkdirAll(directory, 0755); err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(directory); err != nil {
		watcher.Close()
		return nil, err
	}
	return &Watcher{
		directory: directory,
		jobs:      jobs,
		watcher:   watcher,
		stopped:   make(chan struct{}),
		queued:    make(map[string]bool),
	}, nil
}

// Release forgets a finished job so a file of the same name is picked up again.
func (w *Watcher) Release(job *Job) {
	w.queuedMutex.Lock()
	delete(w.queued, job.Path)
	w.queuedMutex.Unlock()
}

func (w *Watcher) enqueue(path string) {
	if !isJobFile(path) {
		return
	}
	w.queuedMutex.Lock()
	if w.queued[path] {
		w.queuedMutex.Unlock()
		return
	}
	job, err := ReadJob(path)
	if err != nil {
		// likely still being written, the next write event retries
		w.queuedMutex.Unlock()
		log.Debugf("Skipping spool file %v: %v", path, err)
		return
	}
	w.queued[path] = true
	w.queuedMutex.Unlock()
	log.Infof("Queued spool job %v", filepath.Base(path))
	w.jobs <- job
}

// scan queues the jobs left over from before the watcher started
func (w *Watcher) scan() {
	entries, err := os.ReadDir(w.directory)
	if err != nil {
		log.Errorf("Error listing spool directory: %v", err)
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			w.enqueue(filepath.Join(w.directory, entry.Name()))
		}
	}
}

func (w *Watcher) Run(waitGroup *sync.WaitGroup) {
	defer waitGroup.Done()
	defer close(w.stopped)
	log.Infof("Watching spool directory %v", w.directory)
	w.scan()
	for {
		select {
		case evt, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if evt.Has(fsnotify.Create) || evt.Has(fsnotify.Write) {
				w.enqueue(evt.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Errorf("Spool watcher error: %v", err)
		}
	}
}

// Stop closes the watcher and waits for Run to return, no job is sent
// afterwards.
func (w *Watcher) Stop() {
	if err := w.watcher.Close(); err != nil {
		log.Errorf("Error closing spool watcher: %v", err)
	}
	<-w.stopped
}
