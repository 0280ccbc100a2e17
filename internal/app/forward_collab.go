package app

import (
	"context"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	cfg "github.com/arne314/forward-collab/internal/config"
	"github.com/arne314/forward-collab/internal/db"
	"github.com/arne314/forward-collab/internal/download"
	"github.com/arne314/forward-collab/internal/matrix"
	"github.com/arne314/forward-collab/internal/multimsg"
	"github.com/arne314/forward-collab/internal/spool"
)

// forwardPoster is the part of matrix.MatrixHandler the pipeline uses.
type forwardPoster interface {
	Enabled() bool
	PostForward(forward *db.Forward) (bool, string)
}

type ForwardCollab struct {
	Config        *cfg.Config
	dbHandler     *db.DbHandler
	matrixHandler forwardPoster
	decoder       *multimsg.Decoder
	downloader    *download.Downloader
	watcher       *spool.Watcher

	jobs                    chan *spool.Job
	MatrixNotificationStage *PipelineStage
}

func (fc *ForwardCollab) Setup(dbHandler *db.DbHandler, matrixHandler *matrix.MatrixHandler) {
	fc.dbHandler = dbHandler
	fc.matrixHandler = matrixHandler
	fc.decoder = multimsg.NewDecoder(fc.Config.Decoder.MaxDepth)
	fc.downloader = download.NewDownloader(fc.Config.Download, fc.decoder)
	fc.jobs = make(chan *spool.Job, 100)

	waitGroup := &sync.WaitGroup{}
	waitGroup.Add(1)
	go matrixHandler.Setup(fc, waitGroup)
	waitGroup.Wait()

	if dir := fc.Config.Spool.Directory; dir != "" && !fc.Config.Once.Enabled {
		watcher, err := spool.NewWatcher(dir, fc.jobs)
		if err != nil {
			log.Fatalf("Error watching spool directory %v: %v", dir, err)
		}
		fc.watcher = watcher
	}
	fc.setupMatrixNotificationsStage()
}

// implement matrix.Actions
func (fc *ForwardCollab) SearchForwards(ctx context.Context, query string) []*db.Forward {
	return fc.dbHandler.SearchForwards(ctx, query)
}

func (fc *ForwardCollab) GetForward(ctx context.Context, id uuid.UUID) *db.Forward {
	return fc.dbHandler.GetForward(ctx, id)
}

func (fc *ForwardCollab) handleJobs(waitGroup *sync.WaitGroup) {
	defer waitGroup.Done()
	ctx := context.Background()
	for job := range fc.jobs {
		forward, err := fc.ProcessJob(ctx, job)
		failed := err != nil
		if !failed && !fc.dbHandler.AddForward(ctx, forward) {
			failed = true
		}
		if err := job.Complete(failed); err != nil {
			log.Errorf("Error completing spool job %v: %v", job.Path, err)
		}
		if fc.watcher != nil {
			fc.watcher.Release(job)
		}
		if !failed {
			fc.MatrixNotificationStage.QueueWork()
		}
	}
}

// RunOnce decodes the payload given on the command line, archives it and
// posts it when matrix is configured.
func (fc *ForwardCollab) RunOnce(ctx context.Context) bool {
	once := fc.Config.Once
	job := &spool.Job{PayloadFile: once.PayloadFile, SessionKey: once.SessionKey, Root: once.Root}
	forward, err := fc.ProcessJob(ctx, job)
	if err != nil {
		return false
	}
	if !fc.dbHandler.AddForward(ctx, forward) {
		return false
	}
	log.Infof("Archived forward %v:\n%s", forward.ID, forwardPreview(forward))
	if fc.matrixHandler.Enabled() {
		return fc.postForwards(ctx)
	}
	return true
}

func (fc *ForwardCollab) Run(waitGroup *sync.WaitGroup) {
	defer waitGroup.Done()
	wg := &sync.WaitGroup{}
	wg.Add(1)
	go fc.MatrixNotificationStage.Run(wg)
	if fc.watcher != nil {
		wg.Add(1)
		go fc.watcher.Run(wg)
	}

	jobsDone := &sync.WaitGroup{}
	jobsDone.Add(1)
	go fc.handleJobs(jobsDone)
	jobsDone.Wait()
	// no more work is queued once the job channel is closed
	fc.MatrixNotificationStage.Stop()
	wg.Wait()
}

func (fc *ForwardCollab) Stop() {
	if fc.watcher != nil {
		fc.watcher.Stop()
	}
	close(fc.jobs)
	if fc.MatrixNotificationStage.Working() {
		log.Info("Interrupting matrix notifications, unposted forwards are posted on the next start")
	}
	fc.MatrixNotificationStage.ForceStop()
}
