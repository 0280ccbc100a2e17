// Package pb holds the subset of the platform's protobuf schema that the
// multi-message decoder reads. Messages are decoded with protowire directly;
// every message also marshals itself so tests can build fixtures.
package pb

import (
	"bytes"

	"google.golang.org/protobuf/encoding/protowire"
)

// fieldHandler consumes the value of one field and returns the number of
// bytes read. Returning 0 marks the field as unknown.
type fieldHandler func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

func unmarshalFields(b []byte, unknown *[]byte, handle fieldHandler) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		tag := b[:n]
		b = b[n:]
		n, err := handle(num, typ, b)
		if err != nil {
			return err
		}
		if n == 0 {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			if unknown != nil {
				*unknown = append(*unknown, tag...)
				*unknown = append(*unknown, b[:n]...)
			}
		}
		b = b[n:]
	}
	return nil
}

func varint(typ protowire.Type, b []byte, set func(uint64)) (int, error) {
	if typ != protowire.VarintType {
		return 0, nil
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	set(v)
	return n, nil
}

// repeated varints may arrive packed or one per tag
func repeatedVarint(typ protowire.Type, b []byte, add func(uint64)) (int, error) {
	if typ == protowire.VarintType {
		return varint(typ, b, add)
	}
	if typ != protowire.BytesType {
		return 0, nil
	}
	packed, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	for len(packed) > 0 {
		v, m := protowire.ConsumeVarint(packed)
		if m < 0 {
			return 0, protowire.ParseError(m)
		}
		add(v)
		packed = packed[m:]
	}
	return n, nil
}

func byteField(typ protowire.Type, b []byte, set func([]byte)) (int, error) {
	if typ != protowire.BytesType {
		return 0, nil
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	set(bytes.Clone(v))
	return n, nil
}

func stringField(typ protowire.Type, b []byte, set func(string)) (int, error) {
	return byteField(typ, b, func(v []byte) { set(string(v)) })
}

type message interface {
	Unmarshal(b []byte) error
	Marshal() []byte
}

func messageField[T any, P interface {
	*T
	message
}](typ protowire.Type, b []byte, set func(P)) (int, error) {
	if typ != protowire.BytesType {
		return 0, nil
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	m := P(new(T))
	if err := m.Unmarshal(v); err != nil {
		return 0, err
	}
	set(m)
	return n, nil
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	return appendBytes(b, num, []byte(v))
}

// present messages are written even when empty
func appendMessage(b []byte, num protowire.Number, m message) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, m.Marshal())
}

func appendPacked(b []byte, num protowire.Number, vs []uint32) []byte {
	if len(vs) == 0 {
		return b
	}
	var packed []byte
	for _, v := range vs {
		packed = protowire.AppendVarint(packed, uint64(v))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, packed)
}
