package matrix

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/arne314/forward-collab/internal/db"
	"github.com/arne314/forward-collab/internal/message"
)

func TestRenderForward(t *testing.T) {
	nodes := []message.ForwardMessage{
		&message.MessageNode{
			Header: message.Header{SenderID: 1, Time: 1700000000, SenderName: "Alice"},
			Elements: message.Chain{
				&message.Text{Content: "hi <b>"},
				&message.GroupImage{Url: "https://gchat.qpic.cn/x?a=1&b=2"},
			},
		},
		&message.ForwardNode{
			Header: message.Header{SenderID: 2, Time: 1700000060, SenderName: "Bob"},
			Nodes: []message.ForwardMessage{
				&message.MessageNode{
					Header:   message.Header{SenderID: 3, Time: 1700000030},
					Elements: message.Chain{&message.Text{Content: "line1\nline2"}},
				},
			},
		},
	}
	wantText := "Forwarded chat history (2 messages)\n" +
		"Alice (2023-11-14 22:13): hi <b>[image]\n" +
		"Bob (2023-11-14 22:14): forwarded 1 messages\n" +
		"> 3 (2023-11-14 22:13): line1\n> line2\n"
	wantHtml := "<strong>Forwarded chat history (2 messages)</strong><br>" +
		"<strong>Alice</strong> (2023-11-14 22:13): hi &lt;b&gt;<a href=\"https://gchat.qpic.cn/x?a=1&amp;b=2\">[image]</a><br>" +
		"<strong>Bob</strong> (2023-11-14 22:14): forwarded 1 messages<blockquote>" +
		"<strong>3</strong> (2023-11-14 22:13): line1<br>line2<br>" +
		"</blockquote>"

	text, html := RenderForward(nodes)
	if text != wantText {
		t.Errorf("RenderForward() text = %q, want %q", text, wantText)
	}
	if html != wantHtml {
		t.Errorf("RenderForward() html = %q, want %q", html, wantHtml)
	}
}

func TestRenderForward_truncates(t *testing.T) {
	nodes := make([]message.ForwardMessage, 40)
	for i := range nodes {
		nodes[i] = &message.MessageNode{
			Header:   message.Header{SenderID: int64(i), SenderName: "u"},
			Elements: message.Chain{&message.Text{Content: strings.Repeat("x", 1000)}},
		}
	}
	text, html := RenderForward(nodes)
	if !strings.HasSuffix(text, "additional messages are not shown here.") {
		t.Errorf("RenderForward() did not note omitted messages")
	}
	if len(html) > maxRenderLen+2000 {
		t.Errorf("RenderForward() html length = %v", len(html))
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		body     string
		wantName string
		wantArg  string
		wantOk   bool
	}{
		{"!search hello world", "search", "hello world", true},
		{"  ! S  cats ", "s", "cats", true},
		{"!show 1f0c", "show", "1f0c", true},
		{"!help", "help", "", true},
		{"!unknown x", "", "", false},
		{"search hello", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			name, arg, ok := parseCommand(tt.body)
			if name != tt.wantName || arg != tt.wantArg || ok != tt.wantOk {
				t.Errorf("parseCommand() = %q, %q, %v, want %q, %q, %v", name, arg, ok, tt.wantName, tt.wantArg, tt.wantOk)
			}
		})
	}
}

func TestSearchable(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"cats", true},
		{"  Hello, World! ", true},
		{"", false},
		{"???", false},
		{" !.. ", false},
	}
	for _, tt := range tests {
		if got := searchable(tt.query); got != tt.want {
			t.Errorf("searchable(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestFormatSearchResults(t *testing.T) {
	text, _ := formatSearchResults("cats", nil)
	if text != "No forwards match \"cats\"" {
		t.Errorf("formatSearchResults() = %q", text)
	}
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	created := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	text, html := formatSearchResults("cats", []*db.Forward{{ID: id, Messages: 3, CreatedAt: created}})
	wantText := "1 forwards match \"cats\"\n6ba7b810-9dad-11d1-80b4-00c04fd430c8 - 3 messages, 2024-05-01 12:30"
	if text != wantText {
		t.Errorf("formatSearchResults() = %q, want %q", text, wantText)
	}
	if !strings.HasPrefix(html, "<strong>1 forwards match &#34;cats&#34;</strong><br>") {
		t.Errorf("formatSearchResults() html = %q", html)
	}
}
