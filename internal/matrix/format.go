package matrix

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/arne314/forward-collab/internal/message"
)

// rendering stops adding messages once either rendition exceeds this
const maxRenderLen = 30000

type TextHtmlBuilder struct {
	textBuilder *strings.Builder
	htmlBuilder *strings.Builder
}

func NewTextHtmlBuilder() *TextHtmlBuilder {
	return &TextHtmlBuilder{
		textBuilder: new(strings.Builder),
		htmlBuilder: new(strings.Builder),
	}
}

func (t *TextHtmlBuilder) Write(text, html string) {
	t.textBuilder.WriteString(text)
	t.htmlBuilder.WriteString(html)
}

func (t *TextHtmlBuilder) WriteLine(text, html string) {
	t.Write(text, html)
	t.NewLine()
}

func (t *TextHtmlBuilder) NewLine() {
	t.Write("\n", "<br>")
}

func (t *TextHtmlBuilder) MaxLen() int {
	return max(t.textBuilder.Len(), t.htmlBuilder.Len())
}

func (t *TextHtmlBuilder) String() (string, string) {
	return t.textBuilder.String(), t.htmlBuilder.String()
}

func wrapHtmlStrong(s string) string {
	return fmt.Sprintf("<strong>%s</strong>", s)
}

func formatBold(message string) (string, string) {
	return message, wrapHtmlStrong(html.EscapeString(message))
}

func formatHtml(text string) string {
	return strings.ReplaceAll(html.EscapeString(text), "\n", "<br>")
}

func formatTime(timestamp time.Time) string {
	return timestamp.UTC().Format("2006-01-02 15:04")
}

// formatSender renders "name (time): " in both forms
func formatSender(h message.Header) (string, string) {
	name := h.SenderName
	if name == "" {
		name = fmt.Sprint(h.SenderID)
	}
	at := formatTime(h.Timestamp())
	return fmt.Sprintf("%s (%s): ", name, at),
		fmt.Sprintf("%s (%s): ", wrapHtmlStrong(html.EscapeString(name)), at)
}

func formatElement(e message.Element) (string, string) {
	switch e := e.(type) {
	case *message.GroupImage:
		return e.String(), fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(e.Url), e.String())
	case *message.FriendImage:
		return e.String(), fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(e.Url), e.String())
	}
	return e.String(), formatHtml(e.String())
}

func formatChain(chain message.Chain) (string, string) {
	builder := NewTextHtmlBuilder()
	for _, e := range chain {
		builder.Write(formatElement(e))
	}
	return builder.String()
}

type forwardRenderer struct {
	builder *TextHtmlBuilder
	omitted int
}

func (r *forwardRenderer) render(nodes []message.ForwardMessage, depth int) {
	prefix := strings.Repeat("> ", depth)
	for _, node := range nodes {
		if r.omitted > 0 || r.builder.MaxLen() > maxRenderLen {
			r.omitted += max(message.Count([]message.ForwardMessage{node}), 1)
			continue
		}
		senderText, senderHtml := formatSender(node.Head())
		switch n := node.(type) {
		case *message.MessageNode:
			text, content := formatChain(n.Elements)
			r.builder.WriteLine(prefix+senderText+strings.ReplaceAll(text, "\n", "\n"+prefix), senderHtml+content)
		case *message.ForwardNode:
			note := fmt.Sprintf("forwarded %d messages", message.Count(n.Nodes))
			r.builder.Write(prefix+senderText+note+"\n", senderHtml+note+"<blockquote>")
			r.render(n.Nodes, depth+1)
			r.builder.Write("", "</blockquote>")
		}
	}
}

// RenderForward renders a resolved forest as plain text and matrix html.
// Nested forwards are quoted, text with "> " and html with blockquotes.
func RenderForward(nodes []message.ForwardMessage) (string, string) {
	r := &forwardRenderer{builder: NewTextHtmlBuilder()}
	r.builder.WriteLine(formatBold(fmt.Sprintf("Forwarded chat history (%d messages)", message.Count(nodes))))
	r.render(nodes, 0)
	if r.omitted > 0 {
		warning := fmt.Sprintf("%v additional messages are not shown here.", r.omitted)
		r.builder.Write(warning, warning)
	}
	return r.builder.String()
}
