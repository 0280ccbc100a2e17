package multimsg

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/arne314/forward-collab/internal/pb"
	"github.com/arne314/forward-collab/internal/tea"
)

var testKey = []byte("forward-collab!!")

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

// frame wraps an already encrypted body into the envelope layout
func frame(header []byte, encrypted []byte) []byte {
	buf := []byte{envelopeMarker}
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(header)))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(encrypted)))
	buf = append(buf, header...)
	return append(buf, encrypted...)
}

func encrypt(t *testing.T, plain []byte) []byte {
	t.Helper()
	c, err := tea.NewCipher(testKey)
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}
	return c.Encrypt(plain)
}

func buildEnvelope(t *testing.T, transmit *pb.PbMultiMsgTransmit) []byte {
	t.Helper()
	body := &pb.LongRspBody{
		Subcmd:     2,
		MsgDownRsp: []*pb.LongMsgDownRsp{{MsgResid: []byte("resid"), MsgContent: gzipBytes(t, transmit.Marshal())}},
	}
	return frame([]byte("im-msg-head"), encrypt(t, body.Marshal()))
}

func record(uin int64, nick string, elems ...*pb.Elem) *pb.Msg {
	return &pb.Msg{
		Head: &pb.MsgHead{FromUin: uin, FromNick: nick, MsgTime: int32(1700000000 + uin), MsgType: 166},
		Body: &pb.MsgBody{RichText: &pb.RichText{Elems: elems}},
	}
}

func groupRecord(uin int64, nick string, card []byte, elems ...*pb.Elem) *pb.Msg {
	msg := record(uin, nick, elems...)
	msg.Head.MsgType = groupMessageType
	msg.Head.GroupInfo = &pb.GroupInfo{GroupCode: 10000, GroupCard: card}
	return msg
}

func textElem(s string) *pb.Elem {
	return &pb.Elem{Text: &pb.Text{Str: s}}
}

func xmlForward(ref string) *pb.Elem {
	template := fmt.Sprintf(
		`<?xml version='1.0' encoding='UTF-8' standalone='yes' ?><msg serviceID="35" templateID="1" action="viewMultiMsg" brief="[Chat history]" m_resid="res-%s" m_fileName="%s" tSum="2" sourceMsgId="0" url="" flag="3" adverSign="0" multiMsgFlag="0"></msg>`,
		ref, ref,
	)
	return &pb.Elem{RichMsg: &pb.RichMsg{ServiceId: 35, Template1: append([]byte{0}, template...)}}
}

func jsonForward(ref string) *pb.Elem {
	content := fmt.Sprintf(
		`{"app":"com.tencent.multimsg","desc":"[Chat history]","view":"contact","meta":{"detail":"{\"news\":[{\"text\":\"u2: hi\"}],\"resid\":\"res\",\"filename\":\"%s\"}"}}`,
		ref,
	)
	return &pb.Elem{LightApp: &pb.LightAppElem{Data: append([]byte{0}, content...)}}
}

func item(name string, msgs ...*pb.Msg) *pb.PbMultiMsgItem {
	return &pb.PbMultiMsgItem{FileName: name, Buffer: &pb.PbMultiMsgNew{Msg: msgs}}
}

func tableOf(items ...*pb.PbMultiMsgItem) ItemTable {
	table := make(ItemTable, len(items))
	for _, it := range items {
		table[it.FileName] = it
	}
	return table
}
