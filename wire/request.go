// Package wire implements the parity wire protocol per PROTOCOL.md.
//
// Every discrete value crosses the wire as a length-prefixed frame; raw
// uint32 counts are the single exception. Tagged unions encode as a uint32
// tag followed by the variant payload. Tags are pinned constants; the
// variant order in this file is the wire contract.
package wire

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// RequestTag selects a Request variant. Values are part of the wire format.
type RequestTag uint32

const (
	TagDisconnect          RequestTag = 0
	TagGetFileCount        RequestTag = 1
	TagDownloadFileByIndex RequestTag = 2
	TagDownloadFileByName  RequestTag = 3
	TagDownloadAllFiles    RequestTag = 4
)

// Request is the single message a client sends on a connection.
// Exactly one of the payload fields is meaningful, selected by Tag.
type Request struct {
	Tag RequestTag

	// Index is the payload of DownloadFileByIndex.
	Index uint64
	// Name is the payload of DownloadFileByName.
	Name string
}

// Disconnect asks the server to close the connection immediately.
func Disconnect() Request { return Request{Tag: TagDisconnect} }

// GetFileCount asks for the number of servable files under the parity root.
func GetFileCount() Request { return Request{Tag: TagGetFileCount} }

// DownloadFileByIndex asks for the file at position index in the server's
// directory scan. The index is only meaningful against the scan the server
// performs for this same request.
func DownloadFileByIndex(index uint64) Request {
	return Request{Tag: TagDownloadFileByIndex, Index: index}
}

// DownloadFileByName asks for the named file under the parity root.
func DownloadFileByName(name string) Request {
	return Request{Tag: TagDownloadFileByName, Name: name}
}

// DownloadAllFiles asks for every servable file, one at a time, with a
// per-file acknowledgment from the client.
func DownloadAllFiles() Request { return Request{Tag: TagDownloadAllFiles} }

// Encode serializes the request payload (tag + variant data, no frame
// length prefix).
func (r Request) Encode() []byte {
	buf := make([]byte, 4, 4+payloadSize(r))
	binary.LittleEndian.PutUint32(buf, uint32(r.Tag))

	switch r.Tag {
	case TagDownloadFileByIndex:
		buf = binary.LittleEndian.AppendUint64(buf, r.Index)
	case TagDownloadFileByName:
		buf = binary.LittleEndian.AppendUint64(buf, uint64(len(r.Name)))
		buf = append(buf, r.Name...)
	}
	return buf
}

func payloadSize(r Request) int {
	switch r.Tag {
	case TagDownloadFileByIndex:
		return 8
	case TagDownloadFileByName:
		return 8 + len(r.Name)
	default:
		return 0
	}
}

// DecodeRequest parses a request payload. The payload must be consumed
// exactly: trailing bytes, short variant data, unknown tags, and invalid
// UTF-8 names are all decode errors.
func DecodeRequest(payload []byte) (Request, error) {
	if len(payload) < 4 {
		return Request{}, &ProtocolError{
			Kind: ErrorDecode,
			Msg:  fmt.Sprintf("request payload too short: %d bytes", len(payload)),
		}
	}

	tag := RequestTag(binary.LittleEndian.Uint32(payload))
	rest := payload[4:]

	switch tag {
	case TagDisconnect, TagGetFileCount, TagDownloadAllFiles:
		if len(rest) != 0 {
			return Request{}, trailingBytes(tag, len(rest))
		}
		return Request{Tag: tag}, nil

	case TagDownloadFileByIndex:
		if len(rest) != 8 {
			return Request{}, &ProtocolError{
				Kind: ErrorDecode,
				Msg:  fmt.Sprintf("request tag %d: want 8 payload bytes, have %d", tag, len(rest)),
			}
		}
		return Request{Tag: tag, Index: binary.LittleEndian.Uint64(rest)}, nil

	case TagDownloadFileByName:
		if len(rest) < 8 {
			return Request{}, &ProtocolError{
				Kind: ErrorDecode,
				Msg:  fmt.Sprintf("request tag %d: truncated name length", tag),
			}
		}
		nameLen := binary.LittleEndian.Uint64(rest)
		rest = rest[8:]
		if uint64(len(rest)) != nameLen {
			return Request{}, &ProtocolError{
				Kind: ErrorDecode,
				Msg:  fmt.Sprintf("request tag %d: name length %d does not match %d payload bytes", tag, nameLen, len(rest)),
			}
		}
		if !utf8.Valid(rest) {
			return Request{}, &ProtocolError{
				Kind: ErrorDecode,
				Msg:  "request name is not valid UTF-8",
			}
		}
		return Request{Tag: tag, Name: string(rest)}, nil

	default:
		return Request{}, &ProtocolError{
			Kind: ErrorDecode,
			Msg:  fmt.Sprintf("unknown request tag %d", tag),
		}
	}
}

func trailingBytes(tag RequestTag, n int) error {
	return &ProtocolError{
		Kind: ErrorDecode,
		Msg:  fmt.Sprintf("request tag %d: %d trailing bytes", tag, n),
	}
}

// Result is the server's first reply to most requests, and the client's
// per-file acknowledgment during DownloadAllFiles. Values are pinned wire
// tags.
type Result uint32

const (
	ResultOk                 Result = 0
	ResultUnauthorizedAccess Result = 1
	ResultIndexOutOfBounds   Result = 2
)

// Err converts a rejection into an error; Ok maps to nil.
func (r Result) Err() error {
	if r == ResultOk {
		return nil
	}
	return &RejectionError{Result: r}
}

// Encode serializes the result payload (tag only, no frame length prefix).
func (r Result) Encode() []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(r))
	return buf
}

// DecodeResult parses a result payload.
func DecodeResult(payload []byte) (Result, error) {
	if len(payload) != 4 {
		return 0, &ProtocolError{
			Kind: ErrorDecode,
			Msg:  fmt.Sprintf("result payload: want 4 bytes, have %d", len(payload)),
		}
	}
	r := Result(binary.LittleEndian.Uint32(payload))
	switch r {
	case ResultOk, ResultUnauthorizedAccess, ResultIndexOutOfBounds:
		return r, nil
	default:
		return 0, &ProtocolError{
			Kind: ErrorDecode,
			Msg:  fmt.Sprintf("unknown result tag %d", uint32(r)),
		}
	}
}
