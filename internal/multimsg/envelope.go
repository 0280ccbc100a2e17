package multimsg

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	log "github.com/sirupsen/logrus"

	"github.com/arne314/forward-collab/internal/tea"
)

const (
	envelopeMarker = 40
	envelopeHead   = 1 + 4 + 4
)

// at most this many bytes are quoted in framing errors
const quoteLimit = 32

func quote(b []byte) []byte {
	if len(b) > quoteLimit {
		return b[:quoteLimit]
	}
	return b
}

// DecodeEnvelope decrypts and inflates a multi-message blob:
// marker byte, header length, data length, skipped header, TEA encrypted
// long message response whose first download holds the gzipped items.
func (d *Decoder) DecodeEnvelope(payload []byte, sessionKey []byte) (ItemTable, error) {
	if len(payload) == 0 || payload[0] != envelopeMarker {
		return nil, fmt.Errorf("%w: unexpected body data %x", ErrMalformedFraming, quote(payload))
	}
	if len(payload) < envelopeHead {
		return nil, fmt.Errorf("%w: truncated lengths %x", ErrMalformedFraming, payload)
	}
	headLen := int32(binary.BigEndian.Uint32(payload[1:5]))
	dataLen := int32(binary.BigEndian.Uint32(payload[5:9]))
	rest := payload[envelopeHead:]
	if headLen < 0 || dataLen < 0 || int64(headLen)+int64(dataLen) > int64(len(rest)) {
		return nil, fmt.Errorf(
			"%w: header length %d and data length %d exceed %d remaining bytes",
			ErrMalformedFraming, headLen, dataLen, len(rest),
		)
	}
	encrypted := rest[headLen : headLen+dataLen]

	decrypted, err := tea.Decrypt(encrypted, sessionKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailure, err)
	}
	body, err := d.Codec.DecodeLongRspBody(decrypted)
	if err != nil {
		return nil, fmt.Errorf("%w: long message response: %v", ErrSchemaDecode, err)
	}
	if len(body.MsgDownRsp) == 0 {
		return nil, fmt.Errorf("%w: msg_down_rsp", ErrEmptyField)
	}
	inflated, err := gunzip(body.MsgDownRsp[0].MsgContent)
	if err != nil {
		return nil, fmt.Errorf("%w: inflating msg_content: %v", ErrIO, err)
	}
	transmit, err := d.Codec.DecodeMultiMsgTransmit(inflated)
	if err != nil {
		return nil, fmt.Errorf("%w: multi-message transmit: %v", ErrSchemaDecode, err)
	}

	table := make(ItemTable, len(transmit.PbItemList))
	for _, item := range transmit.PbItemList {
		table[item.FileName] = item // last one wins
	}
	log.Debugf("Decoded multi-message envelope with %v items", len(table))
	return table, nil
}

func gunzip(compressed []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
