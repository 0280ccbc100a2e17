package matrix

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	config "github.com/arne314/forward-collab/internal/config"
	"github.com/arne314/forward-collab/internal/db"
	"github.com/arne314/forward-collab/internal/metrics"
)

type MatrixHandler struct {
	client   *MatrixClient
	commands *CommandHandler
	Config   *config.MatrixConfig
}

func (mh *MatrixHandler) Setup(actions Actions, wg *sync.WaitGroup) {
	defer wg.Done()
	if !mh.Enabled() {
		log.Info("Matrix is not configured, forwards will only be archived")
		return
	}
	mh.client = &MatrixClient{Config: mh.Config}
	mh.commands = &CommandHandler{Actions: actions, client: mh.client}
	mh.client.Login(context.Background(), mh.commands.ProcessMessage)
	go mh.client.Sync()
}

func (mh *MatrixHandler) Enabled() bool {
	return mh.Config != nil && mh.Config.Enabled()
}

// PostForward posts the rendered forward into the configured room and
// returns the event id.
func (mh *MatrixHandler) PostForward(forward *db.Forward) (bool, string) {
	if mh.client == nil {
		return false, ""
	}
	text, html := RenderForward(forward.Nodes)
	ok, eventId := mh.client.SendRoomMessage(mh.Config.Room, text, html)
	if ok {
		metrics.ForwardsPosted.Inc()
		log.Infof("Posted forward %v with %v messages", forward.ID, forward.Messages)
	}
	return ok, eventId
}

func (mh *MatrixHandler) Stop(waitGroup *sync.WaitGroup) {
	defer waitGroup.Done()
	if mh.client != nil {
		mh.client.Stop()
	}
}
