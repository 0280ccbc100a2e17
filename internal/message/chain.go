package message

import (
	"strings"

	"github.com/arne314/forward-collab/internal/pb"
)

// Chain is the ordered content of one message. Conversion never drops or
// reorders elements.
type Chain []Element

func NewChain(elems []*pb.Elem) (Chain, error) {
	chain := make(Chain, 0, len(elems))
	for _, e := range elems {
		if e == nil {
			continue
		}
		converted, err := NewElement(e)
		if err != nil {
			return nil, err
		}
		chain = append(chain, converted)
	}
	return chain, nil
}

func (c Chain) String() string {
	sb := strings.Builder{}
	for _, e := range c {
		sb.WriteString(e.String())
	}
	return sb.String()
}
