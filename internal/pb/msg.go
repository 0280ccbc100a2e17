package pb

import "google.golang.org/protobuf/encoding/protowire"

type Msg struct {
	Head *MsgHead
	Body *MsgBody
}

func (m *Msg) Unmarshal(b []byte) error {
	return unmarshalFields(b, nil, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return messageField(typ, b, func(v *MsgHead) { m.Head = v })
		case 3:
			return messageField(typ, b, func(v *MsgBody) { m.Body = v })
		}
		return 0, nil
	})
}

func (m *Msg) Marshal() []byte {
	var b []byte
	if m.Head != nil {
		b = appendMessage(b, 1, m.Head)
	}
	if m.Body != nil {
		b = appendMessage(b, 3, m.Body)
	}
	return b
}

type MsgHead struct {
	FromUin   int64
	ToUin     int64
	MsgType   int32
	MsgSeq    int32
	MsgTime   int32
	MsgUid    int64
	GroupInfo *GroupInfo
	FromNick  string
}

func (m *MsgHead) Unmarshal(b []byte) error {
	return unmarshalFields(b, nil, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return varint(typ, b, func(v uint64) { m.FromUin = int64(v) })
		case 2:
			return varint(typ, b, func(v uint64) { m.ToUin = int64(v) })
		case 3:
			return varint(typ, b, func(v uint64) { m.MsgType = int32(v) })
		case 5:
			return varint(typ, b, func(v uint64) { m.MsgSeq = int32(v) })
		case 6:
			return varint(typ, b, func(v uint64) { m.MsgTime = int32(v) })
		case 7:
			return varint(typ, b, func(v uint64) { m.MsgUid = int64(v) })
		case 9:
			return messageField(typ, b, func(v *GroupInfo) { m.GroupInfo = v })
		case 14:
			return stringField(typ, b, func(v string) { m.FromNick = v })
		}
		return 0, nil
	})
}

func (m *MsgHead) Marshal() []byte {
	b := appendVarint(nil, 1, uint64(m.FromUin))
	b = appendVarint(b, 2, uint64(m.ToUin))
	b = appendVarint(b, 3, uint64(int64(m.MsgType)))
	b = appendVarint(b, 5, uint64(int64(m.MsgSeq)))
	b = appendVarint(b, 6, uint64(int64(m.MsgTime)))
	b = appendVarint(b, 7, uint64(m.MsgUid))
	if m.GroupInfo != nil {
		b = appendMessage(b, 9, m.GroupInfo)
	}
	return appendString(b, 14, m.FromNick)
}

type GroupInfo struct {
	GroupCode int64
	GroupCard []byte // not guaranteed to be valid utf-8
	GroupName []byte
}

func (m *GroupInfo) Unmarshal(b []byte) error {
	return unmarshalFields(b, nil, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return varint(typ, b, func(v uint64) { m.GroupCode = int64(v) })
		case 4:
			return byteField(typ, b, func(v []byte) { m.GroupCard = v })
		case 8:
			return byteField(typ, b, func(v []byte) { m.GroupName = v })
		}
		return 0, nil
	})
}

func (m *GroupInfo) Marshal() []byte {
	b := appendVarint(nil, 1, uint64(m.GroupCode))
	b = appendBytes(b, 4, m.GroupCard)
	return appendBytes(b, 8, m.GroupName)
}

type MsgBody struct {
	RichText *RichText
}

func (m *MsgBody) Unmarshal(b []byte) error {
	return unmarshalFields(b, nil, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return messageField(typ, b, func(v *RichText) { m.RichText = v })
		}
		return 0, nil
	})
}

func (m *MsgBody) Marshal() []byte {
	if m.RichText == nil {
		return nil
	}
	return appendMessage(nil, 1, m.RichText)
}

type RichText struct {
	Elems []*Elem
}

func (m *RichText) Unmarshal(b []byte) error {
	return unmarshalFields(b, nil, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 2 {
			return messageField(typ, b, func(v *Elem) { m.Elems = append(m.Elems, v) })
		}
		return 0, nil
	})
}

func (m *RichText) Marshal() []byte {
	var b []byte
	for _, e := range m.Elems {
		b = appendMessage(b, 2, e)
	}
	return b
}

// PbMultiMsgTransmit is the inflated content of a multi-message blob.
type PbMultiMsgTransmit struct {
	Msg        []*Msg
	PbItemList []*PbMultiMsgItem
}

func (m *PbMultiMsgTransmit) Unmarshal(b []byte) error {
	return unmarshalFields(b, nil, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return messageField(typ, b, func(v *Msg) { m.Msg = append(m.Msg, v) })
		case 2:
			return messageField(typ, b, func(v *PbMultiMsgItem) { m.PbItemList = append(m.PbItemList, v) })
		}
		return 0, nil
	})
}

func (m *PbMultiMsgTransmit) Marshal() []byte {
	var b []byte
	for _, msg := range m.Msg {
		b = appendMessage(b, 1, msg)
	}
	for _, item := range m.PbItemList {
		b = appendMessage(b, 2, item)
	}
	return b
}

type PbMultiMsgItem struct {
	FileName string
	Buffer   *PbMultiMsgNew
}

// Messages returns the item's records, nil when the buffer is absent.
func (m *PbMultiMsgItem) Messages() []*Msg {
	if m == nil || m.Buffer == nil {
		return nil
	}
	return m.Buffer.Msg
}

func (m *PbMultiMsgItem) Unmarshal(b []byte) error {
	return unmarshalFields(b, nil, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return stringField(typ, b, func(v string) { m.FileName = v })
		case 2:
			return messageField(typ, b, func(v *PbMultiMsgNew) { m.Buffer = v })
		}
		return 0, nil
	})
}

func (m *PbMultiMsgItem) Marshal() []byte {
	b := appendString(nil, 1, m.FileName)
	if m.Buffer != nil {
		b = appendMessage(b, 2, m.Buffer)
	}
	return b
}

type PbMultiMsgNew struct {
	Msg []*Msg
}

func (m *PbMultiMsgNew) Unmarshal(b []byte) error {
	return unmarshalFields(b, nil, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return messageField(typ, b, func(v *Msg) { m.Msg = append(m.Msg, v) })
		}
		return 0, nil
	})
}

func (m *PbMultiMsgNew) Marshal() []byte {
	var b []byte
	for _, msg := range m.Msg {
		b = appendMessage(b, 1, msg)
	}
	return b
}
