// Package tea implements the 16 round TEA variant the platform uses to
// encrypt session payloads: big-endian blocks chained in a two-register
// feedback mode with a random salted header and a zero tail.
package tea

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
)

const (
	BlockSize = 8
	KeySize   = 16
	delta     = 0x9e3779b9
	rounds    = 16
	sumStart  = 0xe3779b90 // delta * rounds mod 2^32
)

var (
	ErrKeySize   = errors.New("tea: key must be 16 bytes")
	ErrLength    = errors.New("tea: ciphertext length invalid")
	ErrCorrupted = errors.New("tea: ciphertext corrupted")
)

type Cipher struct {
	key [4]uint32
}

func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrKeySize
	}
	c := &Cipher{}
	for i := range c.key {
		c.key[i] = binary.BigEndian.Uint32(key[i*4:])
	}
	return c, nil
}

func (c *Cipher) encipher(n uint64) uint64 {
	v0, v1 := uint32(n>>32), uint32(n)
	var sum uint32
	for range rounds {
		sum += delta
		v0 += ((v1 << 4) + c.key[0]) ^ (v1 + sum) ^ ((v1 >> 5) + c.key[1])
		v1 += ((v0 << 4) + c.key[2]) ^ (v0 + sum) ^ ((v0 >> 5) + c.key[3])
	}
	return uint64(v0)<<32 | uint64(v1)
}

func (c *Cipher) decipher(n uint64) uint64 {
	v0, v1 := uint32(n>>32), uint32(n)
	sum := uint32(sumStart)
	for range rounds {
		v1 -= ((v0 << 4) + c.key[2]) ^ (v0 + sum) ^ ((v0 >> 5) + c.key[3])
		v0 -= ((v1 << 4) + c.key[0]) ^ (v1 + sum) ^ ((v1 >> 5) + c.key[1])
		sum -= delta
	}
	return uint64(v0)<<32 | uint64(v1)
}

// Encrypt pads src with a salted header and seven zero bytes and encrypts it.
func (c *Cipher) Encrypt(src []byte) []byte {
	fill := 10 - (len(src)+1)%8
	dst := make([]byte, fill+len(src)+7)
	rand.Read(dst[1:fill])
	dst[0] = byte(fill-3) | 0xf8
	copy(dst[fill:], src)

	var prevCipher, prevHolder uint64
	for i := 0; i < len(dst); i += BlockSize {
		holder := binary.BigEndian.Uint64(dst[i:]) ^ prevCipher
		prevCipher = c.encipher(holder) ^ prevHolder
		prevHolder = holder
		binary.BigEndian.PutUint64(dst[i:], prevCipher)
	}
	return dst
}

// Decrypt reverses Encrypt and verifies the padding.
func (c *Cipher) Decrypt(src []byte) ([]byte, error) {
	if len(src) < 2*BlockSize || len(src)%BlockSize != 0 {
		return nil, ErrLength
	}
	dst := make([]byte, len(src))
	var prevCipher, prevHolder uint64
	for i := 0; i < len(src); i += BlockSize {
		block := binary.BigEndian.Uint64(src[i:])
		holder := c.decipher(block ^ prevHolder)
		binary.BigEndian.PutUint64(dst[i:], holder^prevCipher)
		prevCipher, prevHolder = block, holder
	}
	start := int(dst[0]&7) + 3
	end := len(dst) - 7
	if start > end {
		return nil, ErrCorrupted
	}
	for _, b := range dst[end:] {
		if b != 0 {
			return nil, ErrCorrupted
		}
	}
	return dst[start:end], nil
}

// Decrypt is a shorthand for NewCipher followed by Cipher.Decrypt.
func Decrypt(src, key []byte) ([]byte, error) {
	c, err := NewCipher(key)
	if err != nil {
		return nil, err
	}
	return c.Decrypt(src)
}
