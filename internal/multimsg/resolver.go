package multimsg

import (
	"fmt"
	"unicode/utf8"

	"github.com/arne314/forward-collab/internal/message"
	"github.com/arne314/forward-collab/internal/pb"
)

// message type of group chat messages, only those carry a usable group card
const groupMessageType = 82

func senderName(head *pb.MsgHead) (string, error) {
	if head.GroupInfo != nil && head.MsgType == groupMessageType {
		card := head.GroupInfo.GroupCard
		if !utf8.Valid(card) {
			return "", fmt.Errorf("%w: group card of %v is not utf-8", ErrInvalidText, head.FromUin)
		}
		return string(card), nil
	}
	return head.FromNick, nil
}

func elementsOf(msg *pb.Msg) []*pb.Elem {
	if msg.Body == nil || msg.Body.RichText == nil {
		return nil
	}
	return msg.Body.RichText.Elems
}

// Resolve builds the forward tree of the item called name. Nested forward
// cards are followed within the same table; any failure aborts the whole
// resolution.
func (d *Decoder) Resolve(name string, table ItemTable) ([]message.ForwardMessage, error) {
	return d.resolve(name, table, 0)
}

func (d *Decoder) resolve(name string, table ItemTable, depth int) ([]message.ForwardMessage, error) {
	if depth >= d.maxDepth() {
		return nil, fmt.Errorf("%w: exceeded %d levels at %q", ErrTooDeep, d.maxDepth(), name)
	}
	item, ok := table[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q does not exist in item table", ErrMissingReference, name)
	}
	msgs := item.Messages()
	nodes := make([]message.ForwardMessage, 0, len(msgs))

iterMessages:
	for _, msg := range msgs {
		head := msg.Head
		if head == nil {
			head = &pb.MsgHead{}
		}
		sender, err := senderName(head)
		if err != nil {
			return nil, err
		}
		// converted up front, a broken element fails even outside forward cards
		chain, err := message.NewChain(elementsOf(msg))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIO, err)
		}
		header := message.Header{SenderID: head.FromUin, Time: head.MsgTime, SenderName: sender}

		for _, elem := range chain {
			markup, ok := message.ForwardMarkup(elem)
			if !ok {
				continue
			}
			ref, ok := d.Extractor.Find(markup)
			if !ok {
				return nil, fmt.Errorf("%w: filename in forward card of item %q", ErrEmptyField, name)
			}
			children, err := d.resolve(ref, table, depth+1)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, &message.ForwardNode{Header: header, Nodes: children})
			continue iterMessages
		}
		nodes = append(nodes, &message.MessageNode{Header: header, Elements: chain})
	}
	return nodes, nil
}
