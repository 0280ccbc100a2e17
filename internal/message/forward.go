// Package message models resolved forwarded conversations: a forest whose
// leaves are messages and whose inner nodes are nested forwards.
package message

import (
	"fmt"
	"strings"
	"time"
)

type Header struct {
	SenderID   int64
	Time       int32 // unix seconds
	SenderName string
}

func (h Header) Timestamp() time.Time {
	return time.Unix(int64(h.Time), 0).UTC()
}

// ForwardMessage is either a *MessageNode or a *ForwardNode.
type ForwardMessage interface {
	Head() Header
	forwardMessage()
}

type MessageNode struct {
	Header
	Elements Chain
}

type ForwardNode struct {
	Header
	Nodes []ForwardMessage
}

func (n *MessageNode) Head() Header { return n.Header }
func (n *ForwardNode) Head() Header { return n.Header }
func (*MessageNode) forwardMessage() {}
func (*ForwardNode) forwardMessage() {}

// Walk visits nodes depth first, depth starts at 0.
func Walk(nodes []ForwardMessage, visit func(node ForwardMessage, depth int)) {
	var walk func(nodes []ForwardMessage, depth int)
	walk = func(nodes []ForwardMessage, depth int) {
		for _, node := range nodes {
			visit(node, depth)
			if f, ok := node.(*ForwardNode); ok {
				walk(f.Nodes, depth+1)
			}
		}
	}
	walk(nodes, 0)
}

// Count returns the number of message leaves.
func Count(nodes []ForwardMessage) (messages int) {
	Walk(nodes, func(node ForwardMessage, _ int) {
		if _, ok := node.(*MessageNode); ok {
			messages++
		}
	})
	return
}

// Depth returns the nesting depth, 0 for an empty forest.
func Depth(nodes []ForwardMessage) (depth int) {
	Walk(nodes, func(_ ForwardMessage, d int) {
		depth = max(depth, d+1)
	})
	return
}

// PlainText flattens a forest into "sender: content" lines.
func PlainText(nodes []ForwardMessage) string {
	sb := strings.Builder{}
	Walk(nodes, func(node ForwardMessage, depth int) {
		sb.WriteString(strings.Repeat("  ", depth))
		switch n := node.(type) {
		case *MessageNode:
			sb.WriteString(fmt.Sprintf("%s: %s\n", n.SenderName, n.Elements))
		case *ForwardNode:
			sb.WriteString(fmt.Sprintf("%s: [forwarded %d messages]\n", n.SenderName, len(n.Nodes)))
		}
	})
	return sb.String()
}
