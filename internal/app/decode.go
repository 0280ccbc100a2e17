package app

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/arne314/forward-collab/internal/db"
	"github.com/arne314/forward-collab/internal/message"
	"github.com/arne314/forward-collab/internal/metrics"
	"github.com/arne314/forward-collab/internal/multimsg"
	"github.com/arne314/forward-collab/internal/spool"
)

func rootName(job *spool.Job) string {
	if job.Root != "" {
		return job.Root
	}
	return multimsg.DefaultRootName
}

func recordFailure(job *spool.Job, err error) error {
	metrics.DecodeFailures.WithLabelValues(multimsg.Kind(err)).Inc()
	log.Errorf("Error decoding forward of %v: %v", job.Path, err)
	return err
}

// itemTable produces the decoded items of a job, downloading the envelope
// when the job only carries the apply-down response.
func (fc *ForwardCollab) itemTable(ctx context.Context, job *spool.Job) (multimsg.ItemTable, error) {
	if job.Downloads() {
		raw, err := job.LoadApplyDown()
		if err != nil {
			return nil, err
		}
		rsp, err := fc.decoder.UnwrapApplyDown(raw)
		if err != nil {
			return nil, err
		}
		if job.ResID == "" {
			job.ResID = string(rsp.MsgResid)
		}
		return fc.downloader.FetchItems(ctx, rsp)
	}
	key, err := job.Key()
	if err != nil {
		return nil, err
	}
	payload, err := job.LoadPayload()
	if err != nil {
		return nil, err
	}
	return fc.decoder.DecodeEnvelope(payload, key)
}

// ProcessJob decodes and resolves one job into an archivable forward.
// Nothing is written on failure.
func (fc *ForwardCollab) ProcessJob(ctx context.Context, job *spool.Job) (*db.Forward, error) {
	start := time.Now()
	table, err := fc.itemTable(ctx, job)
	if err != nil {
		return nil, recordFailure(job, err)
	}
	metrics.EnvelopesDecoded.Inc()
	log.Debugf("Items of %v: %v", job.Path, table.Names())

	root := rootName(job)
	nodes, err := fc.decoder.Resolve(root, table)
	if err != nil {
		return nil, recordFailure(job, err)
	}
	metrics.DecodeDuration.Observe(time.Since(start).Seconds())

	forward := db.NewForward(job.ResID, root, nodes)
	metrics.ForwardDepth.Observe(float64(forward.Depth))
	log.Infof(
		"Decoded forward %v with %v messages in %v items, depth %v",
		forward.ID, forward.Messages, len(table), forward.Depth,
	)
	return forward, nil
}

func forwardPreview(forward *db.Forward) string {
	return message.PlainText(forward.Nodes)
}
