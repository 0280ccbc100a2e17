package message

import (
	"encoding/json"
	"fmt"
)

type elementJSON struct {
	Type      ElemType `json:"type"`
	Text      string   `json:"text,omitempty"`
	Index     int32    `json:"index,omitempty"`
	FilePath  string   `json:"file_path,omitempty"`
	Md5       []byte   `json:"md5,omitempty"`
	Url       string   `json:"url,omitempty"`
	Width     int64    `json:"width,omitempty"`
	Height    int64    `json:"height,omitempty"`
	Size      int64    `json:"size,omitempty"`
	ServiceID int32    `json:"service_id,omitempty"`
	Raw       []byte   `json:"raw,omitempty"`
}

type nodeJSON struct {
	Forward    bool          `json:"forward"`
	SenderID   int64         `json:"sender_id"`
	Time       int32         `json:"time"`
	SenderName string        `json:"sender_name"`
	Elements   []elementJSON `json:"elements,omitempty"`
	Nodes      []nodeJSON    `json:"nodes,omitempty"`
}

func encodeElement(e Element) elementJSON {
	res := elementJSON{Type: e.Type()}
	switch e := e.(type) {
	case *Text:
		res.Text = e.Content
	case *Face:
		res.Index = e.Index
	case *GroupImage:
		res.FilePath, res.Md5, res.Url = e.FilePath, e.Md5, e.Url
		res.Width, res.Height, res.Size = int64(e.Width), int64(e.Height), int64(e.Size)
	case *FriendImage:
		res.FilePath, res.Md5, res.Url = e.FilePath, e.Md5, e.Url
		res.Width, res.Height, res.Size = int64(e.Width), int64(e.Height), int64(e.Size)
	case *RichMsg:
		res.ServiceID, res.Text = e.ServiceID, e.Template
	case *LightApp:
		res.Text = e.Content
	case *Unknown:
		res.Raw = e.Raw
	}
	return res
}

func decodeElement(e elementJSON) (Element, error) {
	switch e.Type {
	case TextElem:
		return &Text{Content: e.Text}, nil
	case FaceElem:
		return &Face{Index: e.Index}, nil
	case GroupImageElem:
		return &GroupImage{
			FilePath: e.FilePath, Md5: e.Md5, Url: e.Url,
			Width: int32(e.Width), Height: int32(e.Height), Size: int32(e.Size),
		}, nil
	case FriendImageElem:
		return &FriendImage{
			FilePath: e.FilePath, Md5: e.Md5, Url: e.Url,
			Width: uint32(e.Width), Height: uint32(e.Height), Size: uint32(e.Size),
		}, nil
	case RichMsgElem:
		return &RichMsg{ServiceID: e.ServiceID, Template: e.Text}, nil
	case LightAppElem:
		return &LightApp{Content: e.Text}, nil
	case UnknownElem:
		return &Unknown{Raw: e.Raw}, nil
	}
	return nil, fmt.Errorf("unknown element type %q", e.Type)
}

func encodeNodes(nodes []ForwardMessage) []nodeJSON {
	res := make([]nodeJSON, len(nodes))
	for i, node := range nodes {
		h := node.Head()
		res[i] = nodeJSON{SenderID: h.SenderID, Time: h.Time, SenderName: h.SenderName}
		switch n := node.(type) {
		case *MessageNode:
			res[i].Elements = make([]elementJSON, len(n.Elements))
			for j, e := range n.Elements {
				res[i].Elements[j] = encodeElement(e)
			}
		case *ForwardNode:
			res[i].Forward = true
			res[i].Nodes = encodeNodes(n.Nodes)
		}
	}
	return res
}

func decodeNodes(nodes []nodeJSON) ([]ForwardMessage, error) {
	res := make([]ForwardMessage, len(nodes))
	for i, n := range nodes {
		h := Header{SenderID: n.SenderID, Time: n.Time, SenderName: n.SenderName}
		if n.Forward {
			children, err := decodeNodes(n.Nodes)
			if err != nil {
				return nil, err
			}
			res[i] = &ForwardNode{Header: h, Nodes: children}
			continue
		}
		chain := make(Chain, len(n.Elements))
		for j, e := range n.Elements {
			elem, err := decodeElement(e)
			if err != nil {
				return nil, err
			}
			chain[j] = elem
		}
		res[i] = &MessageNode{Header: h, Elements: chain}
	}
	return res, nil
}

// MarshalForest encodes a resolved forest for storage.
func MarshalForest(nodes []ForwardMessage) ([]byte, error) {
	return json.Marshal(encodeNodes(nodes))
}

func UnmarshalForest(data []byte) ([]ForwardMessage, error) {
	var nodes []nodeJSON
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, err
	}
	return decodeNodes(nodes)
}
