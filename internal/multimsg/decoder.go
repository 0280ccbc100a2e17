// Package multimsg decodes multi-message envelopes (forwarded chat history)
// into a table of named items and resolves items into forward trees.
package multimsg

import (
	"slices"

	"github.com/arne314/forward-collab/internal/pb"
	"github.com/arne314/forward-collab/internal/textprocessor"
)

const (
	// conventional name of the outermost item
	DefaultRootName = "MultiMsg"
	DefaultMaxDepth = 32
)

// Codec is the part of the platform schema the decoder depends on.
type Codec interface {
	DecodeLongRspBody(b []byte) (*pb.LongRspBody, error)
	DecodeMultiMsgTransmit(b []byte) (*pb.PbMultiMsgTransmit, error)
	DecodeMultiRspBody(b []byte) (*pb.MultiRspBody, error)
}

// ItemTable maps item names to their item. It must not be modified once
// decoded, concurrent resolutions share it.
type ItemTable map[string]*pb.PbMultiMsgItem

func (t ItemTable) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

type Decoder struct {
	Codec     Codec
	Extractor *textprocessor.Extractor
	MaxDepth  int // <= 0 means DefaultMaxDepth
}

func NewDecoder(maxDepth int) *Decoder {
	return &Decoder{
		Codec:     pb.Codec{},
		Extractor: textprocessor.DefaultExtractor,
		MaxDepth:  maxDepth,
	}
}

func (d *Decoder) maxDepth() int {
	if d.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return d.MaxDepth
}
