package multimsg

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/arne314/forward-collab/internal/message"
	"github.com/arne314/forward-collab/internal/pb"
)

func TestDecoder_Resolve_leaves(t *testing.T) {
	table := tableOf(item("A",
		record(1, "u1", textElem("hello"), &pb.Elem{Face: &pb.Face{Index: 1}}),
		record(2, "u2"),
		record(3, "u3", &pb.Elem{RichMsg: &pb.RichMsg{ServiceId: 1, Template1: []byte{0, '<', '/', '>'}}}),
	))
	nodes, err := NewDecoder(0).Resolve("A", table)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	msgs := table["A"].Messages()
	if len(nodes) != len(msgs) {
		t.Fatalf("Resolve() got %d nodes, want %d", len(nodes), len(msgs))
	}
	for i, node := range nodes {
		leaf, ok := node.(*message.MessageNode)
		if !ok {
			t.Fatalf("Resolve()[%d] is %T, want leaf", i, node)
		}
		want, _ := message.NewChain(msgs[i].Body.RichText.Elems)
		if !reflect.DeepEqual(leaf.Elements, want) {
			t.Errorf("Resolve()[%d] elements = %v, want %v", i, leaf.Elements, want)
		}
		if leaf.SenderID != msgs[i].Head.FromUin || leaf.Time != msgs[i].Head.MsgTime {
			t.Errorf("Resolve()[%d] header = %+v", i, leaf.Header)
		}
	}
}

func TestDecoder_Resolve_lightAppScenario(t *testing.T) {
	table := tableOf(
		item("A", record(1, "u1", jsonForward("B"))),
		item("B", record(2, "u2", textElem("hi"))),
	)
	nodes, err := NewDecoder(0).Resolve("A", table)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := []message.ForwardMessage{
		&message.ForwardNode{
			Header: message.Header{SenderID: 1, Time: 1700000001, SenderName: "u1"},
			Nodes: []message.ForwardMessage{
				&message.MessageNode{
					Header:   message.Header{SenderID: 2, Time: 1700000002, SenderName: "u2"},
					Elements: message.Chain{&message.Text{Content: "hi"}},
				},
			},
		},
	}
	if !reflect.DeepEqual(nodes, want) {
		t.Errorf("Resolve() = %v, want %v", message.PlainText(nodes), message.PlainText(want))
	}
}

func TestDecoder_Resolve_nestedEqualsDirect(t *testing.T) {
	table := tableOf(
		item("root", record(1, "u1", textElem("before")), record(2, "u2", xmlForward("second")), record(3, "u3", textElem("after"))),
		item("second", record(4, "u4", textElem("x")), record(5, "u5", jsonForward("third"))),
		item("third", record(6, "u6", textElem("deep"))),
	)
	d := NewDecoder(0)
	nodes, err := d.Resolve("root", table)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("Resolve() got %d nodes, want 3", len(nodes))
	}
	forward, ok := nodes[1].(*message.ForwardNode)
	if !ok {
		t.Fatalf("Resolve()[1] is %T, want forward", nodes[1])
	}
	direct, err := d.Resolve("second", table)
	if err != nil {
		t.Fatalf("Resolve(second) error = %v", err)
	}
	if !reflect.DeepEqual(forward.Nodes, direct) {
		t.Errorf("nested nodes = %v, want %v", message.PlainText(forward.Nodes), message.PlainText(direct))
	}
	if got := message.Depth(nodes); got != 3 {
		t.Errorf("Depth() = %v, want 3", got)
	}
}

func TestDecoder_Resolve_sharedReferenceIsNotDeduplicated(t *testing.T) {
	table := tableOf(
		item("root", record(1, "u1", xmlForward("shared")), record(2, "u2", jsonForward("shared"))),
		item("shared", record(3, "u3", textElem("same"))),
	)
	nodes, err := NewDecoder(0).Resolve("root", table)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	first := nodes[0].(*message.ForwardNode).Nodes
	second := nodes[1].(*message.ForwardNode).Nodes
	if !reflect.DeepEqual(first, second) {
		t.Errorf("subtrees differ: %v vs %v", message.PlainText(first), message.PlainText(second))
	}
	if first[0] == second[0] {
		t.Errorf("subtrees share nodes")
	}
}

func TestDecoder_Resolve_firstCardWins(t *testing.T) {
	table := tableOf(
		item("root", record(1, "u1", textElem("see"), xmlForward("one"), xmlForward("two"))),
		item("one", record(2, "u2", textElem("from one"))),
	)
	nodes, err := NewDecoder(0).Resolve("root", table)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("Resolve() got %d nodes, want 1", len(nodes))
	}
	forward := nodes[0].(*message.ForwardNode)
	if forward.Nodes[0].Head().SenderName != "u2" {
		t.Errorf("Resolve() followed the wrong card: %v", message.PlainText(nodes))
	}
}

func TestDecoder_Resolve_senderName(t *testing.T) {
	plainGroupInfo := record(3, "nick3")
	plainGroupInfo.Head.GroupInfo = &pb.GroupInfo{GroupCard: []byte("unused card")}
	tests := []struct {
		name string
		msg  *pb.Msg
		want string
	}{
		{"nick", record(1, "nick1"), "nick1"},
		{"group_card", groupRecord(2, "nick2", []byte("Card Name")), "Card Name"},
		{"group_info_without_group_type", plainGroupInfo, "nick3"},
		{"empty_card", groupRecord(4, "nick4", nil), ""},
		{"missing_head", &pb.Msg{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, err := NewDecoder(0).Resolve("A", tableOf(item("A", tt.msg)))
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got := nodes[0].Head().SenderName; got != tt.want {
				t.Errorf("SenderName = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecoder_Resolve_errors(t *testing.T) {
	noMarker := &pb.Elem{RichMsg: &pb.RichMsg{ServiceId: 35, Template1: []byte("\x00<msg serviceID=\"35\" brief=\"[Chat history]\"/>")}}
	brokenTemplate := &pb.Elem{RichMsg: &pb.RichMsg{ServiceId: 35, Template1: []byte{1, 0x00, 0x01}}}
	brokenPlainCard := &pb.Elem{RichMsg: &pb.RichMsg{ServiceId: 14, Template1: []byte{1, 0x00, 0x01}}}
	brokenLightApp := &pb.Elem{LightApp: &pb.LightAppElem{Data: []byte{1, 0x00, 0x01}}}

	tests := []struct {
		name  string
		table ItemTable
		root  string
		want  error
	}{
		{"missing_root", tableOf(item("A")), "Z", ErrMissingReference},
		{
			"missing_nested",
			tableOf(item("A", record(1, "u1", xmlForward("gone")))),
			"A", ErrMissingReference,
		},
		{
			"card_without_marker",
			tableOf(item("A", record(1, "u1", textElem("x"), noMarker))),
			"A", ErrEmptyField,
		},
		{
			"invalid_group_card",
			tableOf(item("A", groupRecord(1, "u1", []byte{0xff, 0xfe}, textElem("x")))),
			"A", ErrInvalidText,
		},
		{
			"broken_template",
			tableOf(item("A", record(1, "u1", brokenTemplate))),
			"A", ErrIO,
		},
		{
			// every element is converted, not only forward cards
			"broken_plain_card",
			tableOf(item("A", record(1, "u1", textElem("x"), brokenPlainCard))),
			"A", ErrIO,
		},
		{
			"broken_light_app",
			tableOf(item("A", record(1, "u1", brokenLightApp))),
			"A", ErrIO,
		},
		{
			"broken_plain_card_before_forward",
			tableOf(
				item("A", record(1, "u1", brokenPlainCard, xmlForward("B"))),
				item("B", record(2, "u2", textElem("fine"))),
			),
			"A", ErrIO,
		},
		{
			"broken_child_aborts_parent",
			tableOf(
				item("A", record(1, "u1", textElem("fine")), record(2, "u2", xmlForward("B"))),
				item("B", record(3, "u3", noMarker)),
			),
			"A", ErrEmptyField,
		},
		{
			"self_reference",
			tableOf(item("A", record(1, "u1", xmlForward("A")))),
			"A", ErrTooDeep,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, err := NewDecoder(0).Resolve(tt.root, tt.table)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Resolve() error = %v, want %v", err, tt.want)
			}
			if nodes != nil {
				t.Errorf("Resolve() returned a partial tree")
			}
		})
	}
}

func TestDecoder_Resolve_missingKeyIsNamed(t *testing.T) {
	_, err := NewDecoder(0).Resolve("no-such-item", tableOf(item("A")))
	if err == nil || !strings.Contains(err.Error(), `"no-such-item"`) {
		t.Errorf("Resolve() error = %v, want it to name the key", err)
	}
}

func TestDecoder_Resolve_maxDepth(t *testing.T) {
	table := tableOf(
		item("l0", record(1, "u", xmlForward("l1"))),
		item("l1", record(1, "u", xmlForward("l2"))),
		item("l2", record(1, "u", textElem("bottom"))),
	)
	tests := []struct {
		maxDepth int
		want     error
	}{
		{0, nil},
		{3, nil},
		{2, ErrTooDeep},
		{1, ErrTooDeep},
	}
	for _, tt := range tests {
		d := NewDecoder(tt.maxDepth)
		if _, err := d.Resolve("l0", table); !errors.Is(err, tt.want) {
			t.Errorf("Resolve() with max depth %d error = %v, want %v", tt.maxDepth, err, tt.want)
		}
	}
}

func TestDecoder_Resolve_concurrent(t *testing.T) {
	table := tableOf(
		item("root", record(1, "u1", xmlForward("child")), record(2, "u2", textElem("x"))),
		item("child", record(3, "u3", textElem("y"))),
	)
	d := NewDecoder(0)
	want, err := d.Resolve("root", table)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	var wg sync.WaitGroup
	results := make([][]message.ForwardMessage, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = d.Resolve("root", table)
		}(i)
	}
	wg.Wait()
	for i, got := range results {
		if !reflect.DeepEqual(got, want) {
			t.Errorf("concurrent Resolve() #%d = %v", i, message.PlainText(got))
		}
	}
}
