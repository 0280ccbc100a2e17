package db

import (
	"context"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	config "github.com/arne314/forward-collab/internal/config"
	"github.com/arne314/forward-collab/internal/metrics"
	"github.com/arne314/forward-collab/internal/textprocessor"
)

// DbHandler wraps the configured archive and logs instead of returning errors.
type DbHandler struct {
	archive Archive
}

func Open(ctx context.Context, cfg *config.Config) (Archive, error) {
	if cfg.Archive.Driver == "postgres" {
		return NewPostgresArchive(ctx, cfg.DatabaseUrl)
	}
	return NewSQLiteArchive(ctx, cfg.Archive.SQLitePath)
}

func (dh *DbHandler) Setup(cfg *config.Config) {
	ctx := context.Background()
	archive, err := Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to %v archive: %v", cfg.Archive.Driver, err)
		return
	}
	dh.archive = archive
	unposted, err := archive.ListUnposted(ctx, 1000)
	if err != nil {
		log.Errorf("Error counting unposted forwards: %v", err)
	}
	log.Infof("Connected to %v archive with %v unposted forwards", cfg.Archive.Driver, len(unposted))
}

// SetArchive replaces the archive, used by tests and one-shot runs.
func (dh *DbHandler) SetArchive(archive Archive) {
	dh.archive = archive
}

func (dh *DbHandler) AddForward(ctx context.Context, forward *Forward) bool {
	if err := dh.archive.SaveForward(ctx, forward); err != nil {
		log.Errorf("Error adding forward %v to db: %v", forward.ID, err)
		return false
	}
	metrics.ForwardsArchived.Inc()
	return true
}

func (dh *DbHandler) GetForward(ctx context.Context, id uuid.UUID) *Forward {
	forward, err := dh.archive.GetForward(ctx, id)
	if err != nil {
		log.Errorf("Error loading forward %v: %v", id, err)
		return nil
	}
	return forward
}

// GetMatrixReadyForwards returns forwards not yet posted, oldest first.
// ok is false when the archive could not be read.
func (dh *DbHandler) GetMatrixReadyForwards(ctx context.Context) ([]*Forward, bool) {
	forwards, err := dh.archive.ListUnposted(ctx, 50)
	if err != nil {
		log.Errorf("Error listing unposted forwards: %v", err)
		return nil, false
	}
	return forwards, true
}

func (dh *DbHandler) UpdateForwardMatrixId(ctx context.Context, id uuid.UUID, eventId string) bool {
	if err := dh.archive.MarkPosted(ctx, id, eventId); err != nil {
		log.Errorf("Error updating matrix id of forward %v: %v", id, err)
		return false
	}
	return true
}

func (dh *DbHandler) SearchForwards(ctx context.Context, query string) []*Forward {
	if textprocessor.SearchQuery(query) == "" {
		return nil
	}
	forwards, err := dh.archive.SearchForwards(ctx, query, 20)
	if err != nil {
		log.Errorf("Error searching forwards for %q: %v", query, err)
		return nil
	}
	return forwards
}

func (dh *DbHandler) Stop(waitGroup *sync.WaitGroup) {
	defer waitGroup.Done()
	if dh.archive != nil {
		dh.archive.Close()
	}
}
