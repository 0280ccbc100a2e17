package message

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zlib"

	"github.com/arne314/forward-collab/internal/pb"
)

type ElemType string

const (
	TextElem        ElemType = "text"
	FaceElem        ElemType = "face"
	GroupImageElem  ElemType = "group_image"
	FriendImageElem ElemType = "friend_image"
	RichMsgElem     ElemType = "rich_msg"
	LightAppElem    ElemType = "light_app"
	UnknownElem     ElemType = "unknown"

	// service id of xml forward cards
	ForwardServiceID = 35
	// light app json of forward cards starts with this
	ForwardAppMarker = `{"app":"com.tencent.multimsg"`
)

type Element interface {
	Type() ElemType
	// plain text rendition for previews and search
	String() string
}

type Text struct {
	Content string
}

type Face struct {
	Index int32
}

type GroupImage struct {
	FilePath string
	Md5      []byte
	Url      string
	Width    int32
	Height   int32
	Size     int32
}

type FriendImage struct {
	FilePath string
	Md5      []byte
	Url      string
	Width    uint32
	Height   uint32
	Size     uint32
}

// RichMsg is an xml or json card, Template is already inflated.
type RichMsg struct {
	ServiceID int32
	Template  string
}

// LightApp is a mini-app card, Content is already inflated.
type LightApp struct {
	Content string
}

// Unknown keeps an element this package does not model, wire encoded.
type Unknown struct {
	Raw []byte
}

func (*Text) Type() ElemType        { return TextElem }
func (*Face) Type() ElemType        { return FaceElem }
func (*GroupImage) Type() ElemType  { return GroupImageElem }
func (*FriendImage) Type() ElemType { return FriendImageElem }
func (*RichMsg) Type() ElemType     { return RichMsgElem }
func (*LightApp) Type() ElemType    { return LightAppElem }
func (*Unknown) Type() ElemType     { return UnknownElem }

func (e *Text) String() string        { return e.Content }
func (e *Face) String() string        { return fmt.Sprintf("[face:%d]", e.Index) }
func (e *GroupImage) String() string  { return "[image]" }
func (e *FriendImage) String() string { return "[image]" }
func (e *RichMsg) String() string     { return "[card]" }
func (e *LightApp) String() string    { return "[app]" }
func (e *Unknown) String() string     { return "[unsupported]" }

// ForwardMarkup returns the markup of e when e is shaped like a forward card.
func ForwardMarkup(e Element) (string, bool) {
	switch e := e.(type) {
	case *RichMsg:
		if e.ServiceID == ForwardServiceID {
			return e.Template, true
		}
	case *LightApp:
		if strings.Contains(e.Content, ForwardAppMarker) {
			return e.Content, true
		}
	}
	return "", false
}

// DecodeTemplate strips the format byte of card markup: 0 is raw text,
// 1 is a zlib stream. Anything else is taken verbatim.
func DecodeTemplate(b []byte) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	switch b[0] {
	case 0:
		return string(b[1:]), nil
	case 1:
		r, err := zlib.NewReader(bytes.NewReader(b[1:]))
		if err != nil {
			return "", err
		}
		defer r.Close()
		inflated, err := io.ReadAll(r)
		if err != nil {
			return "", err
		}
		return string(inflated), nil
	}
	return string(b), nil
}

func groupImageUrl(f *pb.CustomFace) string {
	if f.OrigUrl != "" {
		return "https://gchat.qpic.cn" + f.OrigUrl
	}
	return fmt.Sprintf(
		"https://gchat.qpic.cn/gchatpic_new/0/0-0-%s/0?term=2",
		strings.ToUpper(hex.EncodeToString(f.Md5)),
	)
}

func friendImageUrl(i *pb.NotOnlineImage) string {
	if i.OrigUrl != "" {
		return "https://c2cpicdw.qpic.cn" + i.OrigUrl
	}
	return "https://c2cpicdw.qpic.cn/offpic_new/0/" + i.ResId + "/0?term=2"
}

// NewElement converts one wire element.
func NewElement(elem *pb.Elem) (Element, error) {
	switch {
	case elem.Text != nil:
		return &Text{Content: elem.Text.Str}, nil
	case elem.Face != nil:
		return &Face{Index: elem.Face.Index}, nil
	case elem.CustomFace != nil:
		f := elem.CustomFace
		return &GroupImage{
			FilePath: f.FilePath, Md5: f.Md5, Url: groupImageUrl(f),
			Width: f.Width, Height: f.Height, Size: f.Size,
		}, nil
	case elem.NotOnlineImage != nil:
		i := elem.NotOnlineImage
		return &FriendImage{
			FilePath: i.FilePath, Md5: i.PicMd5, Url: friendImageUrl(i),
			Width: i.PicWidth, Height: i.PicHeight, Size: i.FileLen,
		}, nil
	case elem.RichMsg != nil:
		template, err := DecodeTemplate(elem.RichMsg.Template1)
		if err != nil {
			return nil, fmt.Errorf("inflating rich message template: %w", err)
		}
		return &RichMsg{ServiceID: elem.RichMsg.ServiceId, Template: template}, nil
	case elem.LightApp != nil:
		content, err := DecodeTemplate(elem.LightApp.Data)
		if err != nil {
			return nil, fmt.Errorf("inflating light app content: %w", err)
		}
		return &LightApp{Content: content}, nil
	}
	return &Unknown{Raw: elem.Marshal()}, nil
}
