package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arne314/forward-collab/internal/message"
	"github.com/arne314/forward-collab/internal/textprocessor"
)

// Forward is one archived, fully resolved forward tree.
type Forward struct {
	ID            uuid.UUID
	ResID         string
	Root          string
	Nodes         []message.ForwardMessage
	Messages      int
	Depth         int
	SearchText    string
	CreatedAt     time.Time
	MatrixEventID string // empty until posted
}

type Archive interface {
	Close()
	Ping(ctx context.Context) error
	SaveForward(ctx context.Context, forward *Forward) error
	// nil, nil when id is unknown
	GetForward(ctx context.Context, id uuid.UUID) (*Forward, error)
	ListUnposted(ctx context.Context, limit int) ([]*Forward, error)
	MarkPosted(ctx context.Context, id uuid.UUID, eventId string) error
	SearchForwards(ctx context.Context, query string, limit int) ([]*Forward, error)
}

// NewForward prepares a resolved tree for archiving.
func NewForward(resId string, root string, nodes []message.ForwardMessage) *Forward {
	return &Forward{
		ID:         uuid.New(),
		ResID:      resId,
		Root:       root,
		Nodes:      nodes,
		Messages:   message.Count(nodes),
		Depth:      message.Depth(nodes),
		SearchText: searchText(nodes),
		CreatedAt:  time.Now().UTC(),
	}
}

func searchText(nodes []message.ForwardMessage) string {
	parts := []string{}
	message.Walk(nodes, func(node message.ForwardMessage, _ int) {
		switch n := node.(type) {
		case *message.MessageNode:
			parts = append(parts, n.SenderName+" "+n.Elements.String())
		case *message.ForwardNode:
			parts = append(parts, n.SenderName)
		}
	})
	return textprocessor.SearchText(parts...)
}

// likePattern turns a search query into a substring LIKE pattern. Normalized
// queries carry no punctuation, so no LIKE wildcard survives.
func likePattern(query string) string {
	return "%" + textprocessor.SearchQuery(query) + "%"
}

func encodeTree(f *Forward) ([]byte, error) {
	tree, err := message.MarshalForest(f.Nodes)
	if err != nil {
		return nil, fmt.Errorf("encoding forward %v: %w", f.ID, err)
	}
	return tree, nil
}

func decodeTree(f *Forward, tree []byte) error {
	nodes, err := message.UnmarshalForest(tree)
	if err != nil {
		return fmt.Errorf("decoding forward %v: %w", f.ID, err)
	}
	f.Nodes = nodes
	return nil
}
