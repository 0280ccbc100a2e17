package pb

import "google.golang.org/protobuf/encoding/protowire"

// LongRspBody is the decrypted body of a long message download.
type LongRspBody struct {
	Subcmd     int32
	MsgDownRsp []*LongMsgDownRsp
}

func (m *LongRspBody) Unmarshal(b []byte) error {
	return unmarshalFields(b, nil, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return varint(typ, b, func(v uint64) { m.Subcmd = int32(v) })
		case 3:
			return messageField(typ, b, func(v *LongMsgDownRsp) { m.MsgDownRsp = append(m.MsgDownRsp, v) })
		}
		return 0, nil
	})
}

func (m *LongRspBody) Marshal() []byte {
	b := appendVarint(nil, 1, uint64(int64(m.Subcmd)))
	for _, rsp := range m.MsgDownRsp {
		b = appendMessage(b, 3, rsp)
	}
	return b
}

type LongMsgDownRsp struct {
	Result     int32
	MsgResid   []byte
	MsgContent []byte // gzip
}

func (m *LongMsgDownRsp) Unmarshal(b []byte) error {
	return unmarshalFields(b, nil, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return varint(typ, b, func(v uint64) { m.Result = int32(v) })
		case 2:
			return byteField(typ, b, func(v []byte) { m.MsgResid = v })
		case 3:
			return byteField(typ, b, func(v []byte) { m.MsgContent = v })
		}
		return 0, nil
	})
}

func (m *LongMsgDownRsp) Marshal() []byte {
	b := appendVarint(nil, 1, uint64(int64(m.Result)))
	b = appendBytes(b, 2, m.MsgResid)
	return appendBytes(b, 3, m.MsgContent)
}

// MultiRspBody wraps the apply-up and apply-down acknowledgements.
type MultiRspBody struct {
	Subcmd               int32
	MultimsgApplyupRsp   []*MultiMsgApplyUpRsp
	MultimsgApplydownRsp []*MultiMsgApplyDownRsp
}

func (m *MultiRspBody) Unmarshal(b []byte) error {
	return unmarshalFields(b, nil, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return varint(typ, b, func(v uint64) { m.Subcmd = int32(v) })
		case 2:
			return messageField(typ, b, func(v *MultiMsgApplyUpRsp) {
				m.MultimsgApplyupRsp = append(m.MultimsgApplyupRsp, v)
			})
		case 3:
			return messageField(typ, b, func(v *MultiMsgApplyDownRsp) {
				m.MultimsgApplydownRsp = append(m.MultimsgApplydownRsp, v)
			})
		}
		return 0, nil
	})
}

func (m *MultiRspBody) Marshal() []byte {
	b := appendVarint(nil, 1, uint64(int64(m.Subcmd)))
	for _, rsp := range m.MultimsgApplyupRsp {
		b = appendMessage(b, 2, rsp)
	}
	for _, rsp := range m.MultimsgApplydownRsp {
		b = appendMessage(b, 3, rsp)
	}
	return b
}

type MultiMsgApplyUpRsp struct {
	Result    int32
	MsgResid  string
	MsgUkey   []byte
	UpIp      []uint32
	UpPort    []uint32
	BlockSize int64
	UpOffset  int64
	ApplyId   int32
	MsgKey    []byte
	MsgSig    []byte
}

func (m *MultiMsgApplyUpRsp) Unmarshal(b []byte) error {
	return unmarshalFields(b, nil, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return varint(typ, b, func(v uint64) { m.Result = int32(v) })
		case 2:
			return stringField(typ, b, func(v string) { m.MsgResid = v })
		case 3:
			return byteField(typ, b, func(v []byte) { m.MsgUkey = v })
		case 4:
			return repeatedVarint(typ, b, func(v uint64) { m.UpIp = append(m.UpIp, uint32(v)) })
		case 5:
			return repeatedVarint(typ, b, func(v uint64) { m.UpPort = append(m.UpPort, uint32(v)) })
		case 6:
			return varint(typ, b, func(v uint64) { m.BlockSize = int64(v) })
		case 7:
			return varint(typ, b, func(v uint64) { m.UpOffset = int64(v) })
		case 8:
			return varint(typ, b, func(v uint64) { m.ApplyId = int32(v) })
		case 9:
			return byteField(typ, b, func(v []byte) { m.MsgKey = v })
		case 10:
			return byteField(typ, b, func(v []byte) { m.MsgSig = v })
		}
		return 0, nil
	})
}

func (m *MultiMsgApplyUpRsp) Marshal() []byte {
	b := appendVarint(nil, 1, uint64(int64(m.Result)))
	b = appendString(b, 2, m.MsgResid)
	b = appendBytes(b, 3, m.MsgUkey)
	b = appendPacked(b, 4, m.UpIp)
	b = appendPacked(b, 5, m.UpPort)
	b = appendVarint(b, 6, uint64(m.BlockSize))
	b = appendVarint(b, 7, uint64(m.UpOffset))
	b = appendVarint(b, 8, uint64(int64(m.ApplyId)))
	b = appendBytes(b, 9, m.MsgKey)
	return appendBytes(b, 10, m.MsgSig)
}

type MultiMsgApplyDownRsp struct {
	Result        int32
	ThumbDownPara []byte // request path of the blob
	MsgKey        []byte // session key of the envelope
	DownIp        []uint32
	DownPort      []uint32
	MsgResid      []byte
}

func (m *MultiMsgApplyDownRsp) Unmarshal(b []byte) error {
	return unmarshalFields(b, nil, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return varint(typ, b, func(v uint64) { m.Result = int32(v) })
		case 2:
			return byteField(typ, b, func(v []byte) { m.ThumbDownPara = v })
		case 3:
			return byteField(typ, b, func(v []byte) { m.MsgKey = v })
		case 4:
			return repeatedVarint(typ, b, func(v uint64) { m.DownIp = append(m.DownIp, uint32(v)) })
		case 5:
			return repeatedVarint(typ, b, func(v uint64) { m.DownPort = append(m.DownPort, uint32(v)) })
		case 6:
			return byteField(typ, b, func(v []byte) { m.MsgResid = v })
		}
		return 0, nil
	})
}

func (m *MultiMsgApplyDownRsp) Marshal() []byte {
	b := appendVarint(nil, 1, uint64(int64(m.Result)))
	b = appendBytes(b, 2, m.ThumbDownPara)
	b = appendBytes(b, 3, m.MsgKey)
	b = appendPacked(b, 4, m.DownIp)
	b = appendPacked(b, 5, m.DownPort)
	return appendBytes(b, 6, m.MsgResid)
}
