package wire

import (
	"fmt"
	"io"

	rerrors "rtcore/internal/errors"
)

// Cipher is the minimal payload-encryption contract a session cipher
// must satisfy to plug into frame I/O. It mirrors the reference
// CryptoContext collaborator: encrypt/decrypt each take ownership of
// their input and return a fresh buffer.
type Cipher interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

// ReadPacket reads exactly one TLV frame from r, decrypting the
// payload with cipher when one is supplied and the packet's type is
// not one of the plaintext-only types.
func ReadPacket(r io.Reader, cipher Cipher) (*Packet, error) {
	var hdrBuf [HeaderSize]byte
	if _, err := io.ReadFull(r, hdrBuf[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, rerrors.ErrPeerClosed
		}
		return nil, fmt.Errorf("wire: read header: %w", err)
	}
	header, err := DecodeHeader(hdrBuf[:])
	if err != nil {
		return nil, err
	}

	payloadLen := header.PayloadLength()
	payload := make([]byte, payloadLen)
	if payloadLen > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, rerrors.ErrPeerClosed
			}
			return nil, fmt.Errorf("wire: read payload: %w", err)
		}
	}

	if cipher != nil && !IsPlain(header.Type) {
		plain, err := cipher.Decrypt(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", rerrors.ErrDecryptFailed, err)
		}
		payload = plain
	}

	requestID, payload := extractRequestID(payload)

	return &Packet{Header: header, Payload: payload, RequestID: requestID}, nil
}

// WritePacket writes one TLV frame to w. If p has no request-id TLV,
// one is generated and attached first; the id travels as a nested TLV
// prefixed onto the payload (spec §4.4 step 1). If cipher is non-nil
// and the packet's type is not plaintext-only, the payload (id TLV
// included) is encrypted in place and the header's length field is
// recomputed from the ciphertext length before the header is written.
func WritePacket(w io.Writer, p *Packet, cipher Cipher) error {
	payload, err := p.embedRequestID()
	if err != nil {
		return err
	}

	if cipher != nil && !IsPlain(p.Header.Type) {
		enc, err := cipher.Encrypt(payload)
		if err != nil {
			return fmt.Errorf("wire: encrypt payload: %w", err)
		}
		payload = enc
	}
	p.Header.Length = uint32(HeaderSize + len(payload))

	hdrBuf := EncodeHeader(p.Header)
	if _, err := w.Write(hdrBuf[:]); err != nil {
		return fmt.Errorf("wire: write header: %w", err)
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return fmt.Errorf("wire: write payload: %w", err)
		}
	}
	return nil
}
