package pb

// Codec decodes the top level messages used by the multi-message decoder.
type Codec struct{}

func (Codec) DecodeLongRspBody(b []byte) (*LongRspBody, error) {
	m := &LongRspBody{}
	return m, m.Unmarshal(b)
}

func (Codec) DecodeMultiMsgTransmit(b []byte) (*PbMultiMsgTransmit, error) {
	m := &PbMultiMsgTransmit{}
	return m, m.Unmarshal(b)
}

func (Codec) DecodeMultiRspBody(b []byte) (*MultiRspBody, error) {
	m := &MultiRspBody{}
	return m, m.Unmarshal(b)
}
