// Package wire implements the TLV packet framing carried over the
// TLS-wrapped command channel: an 8-byte header (length, type) followed
// by a payload that is opaque to this package.
package wire

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed on-wire size of a TlvHeader.
const HeaderSize = 8

// Well-known packet types that bypass the session cipher regardless of
// whether one is attached.
const (
	PlainRequest  uint32 = 0x00000000
	PlainResponse uint32 = 0x00000001
)

// TlvHeader is the 8-byte header preceding every packet's payload.
// Length is transmitted big-endian and counts the header itself, so
// PayloadLength is always Length-HeaderSize. Type is also transmitted
// big-endian; beyond the plaintext-type check this package gives it no
// meaning.
type TlvHeader struct {
	Length uint32
	Type   uint32
}

// Packet is a decoded TLV frame: header plus payload bytes. Index is
// carried through unexamined — callers that thread packets through a
// TLV sub-index (nested request/response TLVs) can stash it here
// without this package caring about its shape.
type Packet struct {
	Header  TlvHeader
	Payload []byte
	Index   any

	// RequestID is the packet's request-id TLV, if any. Empty means
	// none has been attached yet.
	RequestID string
}

// NewPacket builds a packet with a freshly computed header for typ and
// payload. Length is derived, never supplied by the caller.
func NewPacket(typ uint32, payload []byte) *Packet {
	return &Packet{
		Header: TlvHeader{
			Length: uint32(HeaderSize + len(payload)),
			Type:   typ,
		},
		Payload: payload,
	}
}

// Type returns the packet's type field.
func (p *Packet) Type() uint32 { return p.Header.Type }

// IsPlain reports whether typ is one of the well-known types that
// always travel unencrypted.
func IsPlain(typ uint32) bool {
	return typ == PlainRequest || typ == PlainResponse
}

// EncodeHeader renders h onto the wire: Length and Type both big-endian.
func EncodeHeader(h TlvHeader) [HeaderSize]byte {
	var buf [HeaderSize]byte
	binary.BigEndian.PutUint32(buf[0:4], h.Length)
	binary.BigEndian.PutUint32(buf[4:8], h.Type)
	return buf
}

// DecodeHeader parses an 8-byte wire header. It returns an error if
// buf is short or Length is smaller than HeaderSize (a packet cannot
// have a negative payload).
func DecodeHeader(buf []byte) (TlvHeader, error) {
	if len(buf) < HeaderSize {
		return TlvHeader{}, fmt.Errorf("wire: short header: %d bytes", len(buf))
	}
	h := TlvHeader{
		Length: binary.BigEndian.Uint32(buf[0:4]),
		Type:   binary.BigEndian.Uint32(buf[4:8]),
	}
	if h.Length < HeaderSize {
		return TlvHeader{}, fmt.Errorf("wire: header length %d below minimum %d", h.Length, HeaderSize)
	}
	return h, nil
}

// PayloadLength returns the number of payload bytes h's Length implies.
func (h TlvHeader) PayloadLength() uint32 {
	return h.Length - HeaderSize
}

// RequestIDLen is the fixed size of a request-id TLV: 31 printable
// characters plus a trailing NUL.
const RequestIDLen = 32

// requestIDTag marks a nested request-id TLV at the front of a
// packet's (decrypted) payload, per the glossary's "outer header
// frames one packet carrying nested TLVs as its payload": tag byte,
// length byte, then the RequestIDLen-byte value. 0xFE falls outside
// the printable-ASCII range request ids are drawn from, so it can't
// collide with a payload that happens to start with id-shaped bytes.
const requestIDTag = 0xFE

// embedRequestID returns payload with p's request-id TLV prefixed
// onto it, generating an id first if p doesn't have one yet.
func (p *Packet) embedRequestID() ([]byte, error) {
	if err := p.EnsureRequestID(); err != nil {
		return nil, err
	}
	out := make([]byte, 0, 2+RequestIDLen+len(p.Payload))
	out = append(out, requestIDTag, byte(RequestIDLen))
	out = append(out, p.RequestID...)
	out = append(out, p.Payload...)
	return out, nil
}

// extractRequestID peels a leading request-id TLV off payload, if the
// sentinel tag and length are present, returning the id and whatever
// bytes remain. Absent the sentinel, it returns payload unchanged.
func extractRequestID(payload []byte) (id string, rest []byte) {
	if len(payload) < 2+RequestIDLen || payload[0] != requestIDTag || payload[1] != RequestIDLen {
		return "", payload
	}
	return string(payload[2 : 2+RequestIDLen]), payload[2+RequestIDLen:]
}

// EnsureRequestID attaches a fresh request-id TLV to p if it doesn't
// already have one. Calling it twice on the same packet is a no-op the
// second time, matching transmit's idempotent-injection contract.
func (p *Packet) EnsureRequestID() error {
	if p.RequestID != "" {
		return nil
	}
	id, err := NewRequestID()
	if err != nil {
		return err
	}
	p.RequestID = id
	return nil
}

// NewRequestID generates a 31-character printable-ASCII identifier
// (bytes in [0x21, 0x7E]) followed by a trailing NUL, matching the
// wire's string-TLV convention for request ids.
func NewRequestID() (string, error) {
	const printableLo, printableHi = 0x21, 0x7E
	const span = printableHi - printableLo + 1

	raw := make([]byte, 31)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("wire: generate request id: %w", err)
	}
	for i, b := range raw {
		raw[i] = printableLo + b%span
	}
	return string(raw) + "\x00", nil
}
