package db

import (
	"context"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/arne314/forward-collab/internal/message"
)

func openTestArchive(t *testing.T) *SQLiteArchive {
	t.Helper()
	archive, err := NewSQLiteArchive(context.Background(), filepath.Join(t.TempDir(), "archive", "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteArchive() error = %v", err)
	}
	t.Cleanup(archive.Close)
	return archive
}

func sampleForest(text string) []message.ForwardMessage {
	return []message.ForwardMessage{
		&message.MessageNode{
			Header:   message.Header{SenderID: 1, Time: 1700000000, SenderName: "Alice"},
			Elements: message.Chain{&message.Text{Content: text}, &message.Face{Index: 2}},
		},
		&message.ForwardNode{
			Header: message.Header{SenderID: 2, Time: 1700000100, SenderName: "Bob"},
			Nodes: []message.ForwardMessage{
				&message.MessageNode{
					Header:   message.Header{SenderID: 3, Time: 1700000050, SenderName: "Carol"},
					Elements: message.Chain{&message.Text{Content: "nested"}},
				},
			},
		},
	}
}

func TestNewForward(t *testing.T) {
	f := NewForward("res", "MultiMsg", sampleForest("Hello World"))
	if f.Messages != 2 || f.Depth != 2 {
		t.Errorf("NewForward() messages = %v, depth = %v", f.Messages, f.Depth)
	}
	want := "alice hello worldface2\nbob\ncarol nested"
	if f.SearchText != want {
		t.Errorf("NewForward() search text = %q, want %q", f.SearchText, want)
	}
}

func TestLikePattern(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"Hello", "%hello%"},
		{"100% sure", `%100 sure%`},
		{"snake_case", `%snakecase%`},
	}
	for _, tt := range tests {
		if got := likePattern(tt.query); got != tt.want {
			t.Errorf("likePattern(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

func TestSQLiteArchive(t *testing.T) {
	ctx := context.Background()
	archive := openTestArchive(t)

	first := NewForward("res-1", "MultiMsg", sampleForest("Hello World"))
	first.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	second := NewForward("", "inner", sampleForest("Goodbye"))
	second.CreatedAt = first.CreatedAt.Add(time.Hour)
	for _, f := range []*Forward{second, first} {
		if err := archive.SaveForward(ctx, f); err != nil {
			t.Fatalf("SaveForward() error = %v", err)
		}
	}

	got, err := archive.GetForward(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetForward() error = %v", err)
	}
	if !reflect.DeepEqual(got, first) {
		t.Errorf("GetForward() = %+v, want %+v", got, first)
	}
	if missing, err := archive.GetForward(ctx, uuid.New()); missing != nil || err != nil {
		t.Errorf("GetForward(unknown) = %v, %v", missing, err)
	}

	unposted, err := archive.ListUnposted(ctx, 10)
	if err != nil || len(unposted) != 2 || unposted[0].ID != first.ID {
		t.Fatalf("ListUnposted() = %v, %v", unposted, err)
	}
	if err := archive.MarkPosted(ctx, first.ID, "$event"); err != nil {
		t.Fatalf("MarkPosted() error = %v", err)
	}
	unposted, _ = archive.ListUnposted(ctx, 10)
	if len(unposted) != 1 || unposted[0].ID != second.ID {
		t.Errorf("ListUnposted() after MarkPosted = %v", unposted)
	}
	if posted, _ := archive.GetForward(ctx, first.ID); posted.MatrixEventID != "$event" {
		t.Errorf("MatrixEventID = %q, want %q", posted.MatrixEventID, "$event")
	}

	searches := []struct {
		query string
		want  []uuid.UUID
	}{
		{"HELLO", []uuid.UUID{first.ID}},
		{"nested", []uuid.UUID{second.ID, first.ID}},
		{"carol nested", []uuid.UUID{second.ID, first.ID}},
		{"world bob", nil},
		{"%", []uuid.UUID{second.ID, first.ID}},
	}
	for _, tt := range searches {
		found, err := archive.SearchForwards(ctx, tt.query, 10)
		if err != nil {
			t.Fatalf("SearchForwards(%q) error = %v", tt.query, err)
		}
		ids := []uuid.UUID{}
		for _, f := range found {
			ids = append(ids, f.ID)
		}
		if len(ids) != len(tt.want) || (len(ids) > 0 && !reflect.DeepEqual(ids, tt.want)) {
			t.Errorf("SearchForwards(%q) = %v, want %v", tt.query, ids, tt.want)
		}
	}
}

func TestDbHandler(t *testing.T) {
	ctx := context.Background()
	dh := &DbHandler{}
	dh.SetArchive(openTestArchive(t))

	f := NewForward("", "MultiMsg", sampleForest("hi"))
	if !dh.AddForward(ctx, f) {
		t.Fatalf("AddForward() = false")
	}
	if dh.AddForward(ctx, f) {
		t.Errorf("AddForward() of a duplicate id = true")
	}
	if ready, ok := dh.GetMatrixReadyForwards(ctx); !ok || len(ready) != 1 {
		t.Errorf("GetMatrixReadyForwards() = %v, %v", ready, ok)
	}
	if !dh.UpdateForwardMatrixId(ctx, f.ID, "$e") {
		t.Errorf("UpdateForwardMatrixId() = false")
	}
	if ready, _ := dh.GetMatrixReadyForwards(ctx); len(ready) != 0 {
		t.Errorf("UpdateForwardMatrixId() did not mark the forward")
	}
	if found := dh.SearchForwards(ctx, "hi"); len(found) != 1 {
		t.Errorf("SearchForwards() = %v", found)
	}
	if found := dh.SearchForwards(ctx, "???"); found != nil {
		t.Errorf("SearchForwards() of punctuation = %v, want nil", found)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	dh.Stop(&wg)
	wg.Wait()
}
