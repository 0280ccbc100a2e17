package matrix

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"maunium.net/go/mautrix/event"

	"github.com/arne314/forward-collab/internal/db"
	"github.com/arne314/forward-collab/internal/textprocessor"
)

type Actions interface {
	SearchForwards(ctx context.Context, query string) []*db.Forward
	GetForward(ctx context.Context, id uuid.UUID) *db.Forward
}

type CommandState int

const (
	Default CommandState = iota
	Pending
	Done
	Error
)

var (
	commands              = []string{"search", "s", "show", "help"}
	commandRegex          = regexp.MustCompile(`(?s)^\s*!\s*([a-zA-Z]+)\s*(.*)\s*$`)
	CommandStateReactions = []string{"👀", "⏳", "✅", "❌"}
	commandMutex          sync.Mutex
)

// parseCommand splits "!name args" into a known lowercase command name and
// its trimmed argument.
func parseCommand(body string) (string, string, bool) {
	parsed := commandRegex.FindStringSubmatch(body)
	if parsed == nil {
		return "", "", false
	}
	name := strings.ToLower(parsed[1])
	for _, c := range commands {
		if c == name {
			return name, strings.TrimSpace(parsed[2]), true
		}
	}
	return "", "", false
}

// searchable rejects queries without anything left to match after
// normalization, they would list the whole archive.
func searchable(query string) bool {
	return textprocessor.SearchQuery(query) != ""
}

func formatSearchResults(query string, forwards []*db.Forward) (string, string) {
	builder := NewTextHtmlBuilder()
	if len(forwards) == 0 {
		builder.Write(formatBold(fmt.Sprintf("No forwards match \"%s\"", query)))
		return builder.String()
	}
	builder.WriteLine(formatBold(fmt.Sprintf("%d forwards match \"%s\"", len(forwards), query)))
	for i, f := range forwards {
		line := fmt.Sprintf("%s - %d messages, %s", f.ID, f.Messages, formatTime(f.CreatedAt))
		builder.Write(line, formatHtml(line))
		if i < len(forwards)-1 {
			builder.NewLine()
		}
	}
	return builder.String()
}

const helpText = "!search <text> lists archived forwards containing text, !show <id> posts one of them"

type Command struct {
	Name      string
	Arg       string
	roomId    string
	messageId string
	reaction  string

	client  *MatrixClient
	actions Actions
}

func (c *Command) reportState(state CommandState) {
	if c.reaction != "" {
		c.client.RedactMessage(c.roomId, c.reaction)
	}
	c.reaction = c.client.ReactToMessage(c.roomId, c.messageId, CommandStateReactions[state])
	log.Infof("Command state of %v changed to %v", c.Name, CommandStateReactions[state])
}

func (c *Command) reply(text, html string) bool {
	ok, _ := c.client.SendThreadMessage(c.roomId, c.messageId, text, html)
	return ok
}

func (c *Command) Run(ctx context.Context) {
	commandMutex.Lock()
	defer commandMutex.Unlock()
	log.Infof("Handling command %v...", c.Name)
	c.reportState(Pending)

	ok := false
	switch c.Name {
	case "search", "s":
		if searchable(c.Arg) {
			ok = c.reply(formatSearchResults(c.Arg, c.actions.SearchForwards(ctx, c.Arg)))
		}
	case "show":
		if id, err := uuid.Parse(c.Arg); err == nil {
			if forward := c.actions.GetForward(ctx, id); forward != nil {
				ok = c.reply(RenderForward(forward.Nodes))
			}
		}
	case "help":
		ok = c.reply(helpText, formatHtml(helpText))
	}

	if ok {
		c.reportState(Done)
	} else {
		c.reportState(Error)
	}
	log.Infof("Done handling command %v", c.Name)
}

type CommandHandler struct {
	Actions Actions
	client  *MatrixClient
}

func (ch *CommandHandler) ProcessMessage(ctx context.Context, evt *event.Event) {
	content := evt.Content.AsMessage()
	if content.NewContent != nil { // edits never trigger
		return
	}
	name, arg, ok := parseCommand(content.Body)
	if !ok {
		return
	}
	go (&Command{
		Name: name, Arg: arg,
		roomId: evt.RoomID.String(), messageId: evt.ID.String(),
		client: ch.client, actions: ch.Actions,
	}).Run(ctx)
}
