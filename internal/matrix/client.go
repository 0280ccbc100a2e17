package matrix

import (
	"context"

	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"
	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/crypto/cryptohelper"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	config "github.com/arne314/forward-collab/internal/config"
)

type MatrixClient struct {
	Config       *config.MatrixConfig
	client       *mautrix.Client
	cryptoHelper *cryptohelper.CryptoHelper
}

func (mc *MatrixClient) Login(ctx context.Context, onMessage func(context.Context, *event.Event)) {
	client, err := mautrix.NewClient(mc.Config.HomeServer, "", "")
	if err != nil {
		log.Fatalf("Invalid matrix config: %v", err)
	}
	mc.client = client
	syncer := client.Syncer.(*mautrix.DefaultSyncer)

	// listen for commands
	syncer.OnEventType(event.EventMessage, func(ctx context.Context, evt *event.Event) {
		if evt.Sender == client.UserID || evt.RoomID.String() != mc.Config.Room {
			return
		}
		onMessage(ctx, evt)
	})

	// accept invites to the configured room
	syncer.OnEventType(event.StateMember, func(ctx context.Context, evt *event.Event) {
		if evt.GetStateKey() == client.UserID.String() &&
			evt.Content.AsMember().Membership == event.MembershipInvite &&
			evt.RoomID.String() == mc.Config.Room {
			if _, err := client.JoinRoomByID(ctx, evt.RoomID); err != nil {
				log.Errorf("Error joining room: %v", err)
			}
		}
	})

	// session login, crypto state lives in a sqlite db
	cryptoHelper, err := cryptohelper.NewCryptoHelper(client, []byte("forward-collab"), mc.Config.SessionDb)
	if err != nil {
		log.Fatalf("Error setting up cryptohelper: %v", err)
	}
	cryptoHelper.LoginAs = &mautrix.ReqLogin{
		Type: mautrix.AuthTypePassword,
		Identifier: mautrix.UserIdentifier{
			Type: mautrix.IdentifierTypeUser,
			User: mc.Config.Username,
		},
		Password: mc.Config.Password,
	}
	if err := cryptoHelper.Init(ctx); err != nil {
		log.Fatalf("Error setting up cryptohelper: %v", err)
	}
	client.Crypto = cryptoHelper
	mc.cryptoHelper = cryptoHelper
	log.Info("Logged into matrix")
}

func (mc *MatrixClient) messageContent(text, html string) *event.MessageEventContent {
	return &event.MessageEventContent{
		MsgType:       event.MsgText,
		Body:          text,
		Format:        event.FormatHTML,
		FormattedBody: html,
	}
}

func (mc *MatrixClient) SendRoomMessage(roomId string, text string, html string) (bool, string) {
	resp, err := mc.client.SendMessageEvent(
		context.Background(), id.RoomID(roomId), event.EventMessage, mc.messageContent(text, html),
	)
	if err != nil {
		log.Errorf("Error sending message to matrix: %v", err)
		return false, ""
	}
	return true, resp.EventID.String()
}

func (mc *MatrixClient) SendThreadMessage(roomId string, threadId string, text string, html string) (bool, string) {
	content := mc.messageContent(text, html)
	content.RelatesTo = &event.RelatesTo{
		EventID: id.EventID(threadId),
		Type:    event.RelThread,
	}
	resp, err := mc.client.SendMessageEvent(context.Background(), id.RoomID(roomId), event.EventMessage, content)
	if err != nil {
		log.Errorf("Error responding to thread on matrix: %v", err)
		return false, ""
	}
	return true, resp.EventID.String()
}

func (mc *MatrixClient) ReactToMessage(roomId string, messageId string, reaction string) string {
	resp, err := mc.client.SendReaction(context.Background(), id.RoomID(roomId), id.EventID(messageId), reaction)
	if err != nil {
		log.Errorf("Error reacting to message %v: %v", messageId, err)
		return ""
	}
	return resp.EventID.String()
}

func (mc *MatrixClient) RedactMessage(roomId string, messageId string) bool {
	_, err := mc.client.RedactEvent(context.Background(), id.RoomID(roomId), id.EventID(messageId))
	if err != nil {
		log.Errorf("Error redacting message %v: %v", messageId, err)
		return false
	}
	return true
}

func (mc *MatrixClient) Sync() {
	if err := mc.client.Sync(); err != nil {
		log.Errorf("Error syncing with matrix server: %v", err)
	}
}

func (mc *MatrixClient) Stop() {
	mc.client.StopSync()
	if mc.cryptoHelper != nil {
		if err := mc.cryptoHelper.Close(); err != nil {
			log.Errorf("Error closing crypto store: %v", err)
		}
	}
	log.Info("Stopped matrix sync")
}
