package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// MaxFrameSize caps a frame payload. Control messages are tiny; a larger
// declared length is a protocol violation, not a large message.
const MaxFrameSize = 64 * 1024

// Conn frames and unframes protocol values over one bidirectional byte
// stream. It is exclusively owned by whichever call is using it and carries
// no buffering of its own: every read blocks until satisfied or the stream
// ends.
type Conn struct {
	rw io.ReadWriter
}

// New wraps a byte stream in a protocol codec.
func New(rw io.ReadWriter) *Conn {
	return &Conn{rw: rw}
}

// Read passes through to the underlying stream. File payloads bypass
// framing entirely, so the transfer layer reads raw bytes here.
func (c *Conn) Read(p []byte) (int, error) { return c.rw.Read(p) }

// Write passes through to the underlying stream.
func (c *Conn) Write(p []byte) (int, error) { return c.rw.Write(p) }

// WriteUint32 sends a raw little-endian uint32 with no length prefix.
func (c *Conn) WriteUint32(v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	if _, err := c.rw.Write(buf[:]); err != nil {
		return fmt.Errorf("write uint32: %w", err)
	}
	return nil
}

// ReadUint32 reads a raw little-endian uint32.
func (c *Conn) ReadUint32() (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(c.rw, buf[:]); err != nil {
		return 0, readError("uint32", err)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// WriteString sends text as one frame of UTF-8 bytes.
func (c *Conn) WriteString(s string) error {
	if err := c.writeFrame([]byte(s)); err != nil {
		return fmt.Errorf("write string: %w", err)
	}
	return nil
}

// ReadString reads one frame and decodes it as UTF-8 text.
func (c *Conn) ReadString() (string, error) {
	payload, err := c.readFrame()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(payload) {
		return "", &ProtocolError{
			Kind: ErrorDecode,
			Msg:  "string payload is not valid UTF-8",
		}
	}
	return string(payload), nil
}

// WriteRequest sends a request as one frame.
func (c *Conn) WriteRequest(r Request) error {
	if err := c.writeFrame(r.Encode()); err != nil {
		return fmt.Errorf("write request: %w", err)
	}
	return nil
}

// ReadRequest reads one frame and decodes a request. A cleanly closed
// stream before the first length byte returns io.EOF.
func (c *Conn) ReadRequest() (Request, error) {
	payload, err := c.readFrame()
	if err != nil {
		return Request{}, err
	}
	return DecodeRequest(payload)
}

// WriteResult sends a result as one frame.
func (c *Conn) WriteResult(r Result) error {
	if err := c.writeFrame(r.Encode()); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

// ReadResult reads one frame and decodes a result.
func (c *Conn) ReadResult() (Result, error) {
	payload, err := c.readFrame()
	if err != nil {
		return 0, err
	}
	return DecodeResult(payload)
}

// writeFrame sends a uint32 length prefix followed by the payload.
func (c *Conn) writeFrame(payload []byte) error {
	if len(payload) > MaxFrameSize {
		return &ProtocolError{
			Kind: ErrorTooLarge,
			Msg:  fmt.Sprintf("frame payload %d exceeds maximum %d", len(payload), MaxFrameSize),
		}
	}
	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(len(payload)))
	if _, err := c.rw.Write(prefix[:]); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := c.rw.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

// readFrame reads a uint32 length prefix and exactly that many payload
// bytes.
//
// Errors:
//   - io.EOF: stream ended cleanly before the length prefix
//   - *ProtocolError ErrorTruncated: stream ended inside the frame
//   - *ProtocolError ErrorTooLarge: declared length exceeds MaxFrameSize
func (c *Conn) readFrame() ([]byte, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(c.rw, prefix[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, &ProtocolError{
			Kind: ErrorTruncated,
			Msg:  "short read of frame length",
			Err:  err,
		}
	}

	length := binary.LittleEndian.Uint32(prefix[:])
	if length > MaxFrameSize {
		return nil, &ProtocolError{
			Kind: ErrorTooLarge,
			Msg:  fmt.Sprintf("declared frame length %d exceeds maximum %d", length, MaxFrameSize),
		}
	}

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(c.rw, payload); err != nil {
			return nil, &ProtocolError{
				Kind: ErrorTruncated,
				Msg:  fmt.Sprintf("short read of %d-byte frame payload", length),
				Err:  err,
			}
		}
	}
	return payload, nil
}

// readError maps a raw read failure: a stream that ends mid-value is a
// protocol truncation, anything else is passed through as I/O failure.
func readError(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &ProtocolError{
			Kind: ErrorTruncated,
			Msg:  "short read of " + what,
			Err:  err,
		}
	}
	return fmt.Errorf("read %s: %w", what, err)
}
