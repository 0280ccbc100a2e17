package multimsg

import (
	"fmt"

	"github.com/arne314/forward-collab/internal/pb"
)

// UnwrapApplyDown returns the acknowledgement of a download request.
func (d *Decoder) UnwrapApplyDown(payload []byte) (*pb.MultiMsgApplyDownRsp, error) {
	body, err := d.Codec.DecodeMultiRspBody(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: multi response: %v", ErrSchemaDecode, err)
	}
	if len(body.MultimsgApplydownRsp) == 0 {
		return nil, fmt.Errorf("%w: multimsg_applydown_rsp", ErrEmptyField)
	}
	return body.MultimsgApplydownRsp[0], nil
}

// UnwrapApplyUp returns the acknowledgement of an upload request.
func (d *Decoder) UnwrapApplyUp(payload []byte) (*pb.MultiMsgApplyUpRsp, error) {
	body, err := d.Codec.DecodeMultiRspBody(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: multi response: %v", ErrSchemaDecode, err)
	}
	if len(body.MultimsgApplyupRsp) == 0 {
		return nil, fmt.Errorf("%w: multimsg_applyup_rsp", ErrEmptyField)
	}
	return body.MultimsgApplyupRsp[0], nil
}
