package pb

import "google.golang.org/protobuf/encoding/protowire"

// Elem is one rich-text element. Exactly one of the typed fields is set for
// the element kinds this package knows; anything else stays in Unknown.
type Elem struct {
	Text           *Text
	Face           *Face
	NotOnlineImage *NotOnlineImage
	CustomFace     *CustomFace
	RichMsg        *RichMsg
	LightApp       *LightAppElem

	Unknown []byte
}

func (m *Elem) Unmarshal(b []byte) error {
	return unmarshalFields(b, &m.Unknown, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return messageField(typ, b, func(v *Text) { m.Text = v })
		case 2:
			return messageField(typ, b, func(v *Face) { m.Face = v })
		case 4:
			return messageField(typ, b, func(v *NotOnlineImage) { m.NotOnlineImage = v })
		case 8:
			return messageField(typ, b, func(v *CustomFace) { m.CustomFace = v })
		case 12:
			return messageField(typ, b, func(v *RichMsg) { m.RichMsg = v })
		case 51:
			return messageField(typ, b, func(v *LightAppElem) { m.LightApp = v })
		}
		return 0, nil
	})
}

func (m *Elem) Marshal() []byte {
	var b []byte
	if m.Text != nil {
		b = appendMessage(b, 1, m.Text)
	}
	if m.Face != nil {
		b = appendMessage(b, 2, m.Face)
	}
	if m.NotOnlineImage != nil {
		b = appendMessage(b, 4, m.NotOnlineImage)
	}
	if m.CustomFace != nil {
		b = appendMessage(b, 8, m.CustomFace)
	}
	if m.RichMsg != nil {
		b = appendMessage(b, 12, m.RichMsg)
	}
	if m.LightApp != nil {
		b = appendMessage(b, 51, m.LightApp)
	}
	return append(b, m.Unknown...)
}

type Text struct {
	Str  string
	Link string
}

func (m *Text) Unmarshal(b []byte) error {
	return unmarshalFields(b, nil, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return stringField(typ, b, func(v string) { m.Str = v })
		case 2:
			return stringField(typ, b, func(v string) { m.Link = v })
		}
		return 0, nil
	})
}

func (m *Text) Marshal() []byte {
	b := appendString(nil, 1, m.Str)
	return appendString(b, 2, m.Link)
}

type Face struct {
	Index int32
}

func (m *Face) Unmarshal(b []byte) error {
	return unmarshalFields(b, nil, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return varint(typ, b, func(v uint64) { m.Index = int32(v) })
		}
		return 0, nil
	})
}

func (m *Face) Marshal() []byte {
	return appendVarint(nil, 1, uint64(int64(m.Index)))
}

// NotOnlineImage is an image sent in a private chat.
type NotOnlineImage struct {
	FilePath     string
	FileLen      uint32
	DownloadPath string
	PicMd5       []byte
	PicHeight    uint32
	PicWidth     uint32
	ResId        string
	OrigUrl      string
}

func (m *NotOnlineImage) Unmarshal(b []byte) error {
	return unmarshalFields(b, nil, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return stringField(typ, b, func(v string) { m.FilePath = v })
		case 2:
			return varint(typ, b, func(v uint64) { m.FileLen = uint32(v) })
		case 3:
			return stringField(typ, b, func(v string) { m.DownloadPath = v })
		case 7:
			return byteField(typ, b, func(v []byte) { m.PicMd5 = v })
		case 8:
			return varint(typ, b, func(v uint64) { m.PicHeight = uint32(v) })
		case 9:
			return varint(typ, b, func(v uint64) { m.PicWidth = uint32(v) })
		case 10:
			return stringField(typ, b, func(v string) { m.ResId = v })
		case 15:
			return stringField(typ, b, func(v string) { m.OrigUrl = v })
		}
		return 0, nil
	})
}

func (m *NotOnlineImage) Marshal() []byte {
	b := appendString(nil, 1, m.FilePath)
	b = appendVarint(b, 2, uint64(m.FileLen))
	b = appendString(b, 3, m.DownloadPath)
	b = appendBytes(b, 7, m.PicMd5)
	b = appendVarint(b, 8, uint64(m.PicHeight))
	b = appendVarint(b, 9, uint64(m.PicWidth))
	b = appendString(b, 10, m.ResId)
	return appendString(b, 15, m.OrigUrl)
}

// CustomFace is an image sent in a group chat.
type CustomFace struct {
	FilePath string
	FileId   int32
	Md5      []byte
	OrigUrl  string
	Width    int32
	Height   int32
	Size     int32
}

func (m *CustomFace) Unmarshal(b []byte) error {
	return unmarshalFields(b, nil, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 2:
			return stringField(typ, b, func(v string) { m.FilePath = v })
		case 7:
			return varint(typ, b, func(v uint64) { m.FileId = int32(v) })
		case 13:
			return byteField(typ, b, func(v []byte) { m.Md5 = v })
		case 16:
			return stringField(typ, b, func(v string) { m.OrigUrl = v })
		case 22:
			return varint(typ, b, func(v uint64) { m.Width = int32(v) })
		case 23:
			return varint(typ, b, func(v uint64) { m.Height = int32(v) })
		case 25:
			return varint(typ, b, func(v uint64) { m.Size = int32(v) })
		}
		return 0, nil
	})
}

func (m *CustomFace) Marshal() []byte {
	b := appendString(nil, 2, m.FilePath)
	b = appendVarint(b, 7, uint64(int64(m.FileId)))
	b = appendBytes(b, 13, m.Md5)
	b = appendString(b, 16, m.OrigUrl)
	b = appendVarint(b, 22, uint64(int64(m.Width)))
	b = appendVarint(b, 23, uint64(int64(m.Height)))
	return appendVarint(b, 25, uint64(int64(m.Size)))
}

// RichMsg carries xml (service 35 for forwards) or json card markup.
// Template1 starts with a format byte, see message.DecodeTemplate.
type RichMsg struct {
	Template1 []byte
	ServiceId int32
	MsgResid  []byte
}

func (m *RichMsg) Unmarshal(b []byte) error {
	return unmarshalFields(b, nil, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return byteField(typ, b, func(v []byte) { m.Template1 = v })
		case 2:
			return varint(typ, b, func(v uint64) { m.ServiceId = int32(v) })
		case 3:
			return byteField(typ, b, func(v []byte) { m.MsgResid = v })
		}
		return 0, nil
	})
}

func (m *RichMsg) Marshal() []byte {
	b := appendBytes(nil, 1, m.Template1)
	b = appendVarint(b, 2, uint64(int64(m.ServiceId)))
	return appendBytes(b, 3, m.MsgResid)
}

// LightAppElem carries mini-app json markup with the same format byte.
type LightAppElem struct {
	Data     []byte
	MsgResid []byte
}

func (m *LightAppElem) Unmarshal(b []byte) error {
	return unmarshalFields(b, nil, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return byteField(typ, b, func(v []byte) { m.Data = v })
		case 2:
			return byteField(typ, b, func(v []byte) { m.MsgResid = v })
		}
		return 0, nil
	})
}

func (m *LightAppElem) Marshal() []byte {
	b := appendBytes(nil, 1, m.Data)
	return appendBytes(b, 2, m.MsgResid)
}
