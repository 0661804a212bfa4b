package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"strings"
	"testing"
)

func protocolKind(t *testing.T, err error) ErrorKind {
	t.Helper()
	var pe *ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v (%T), want *ProtocolError", err, err)
	}
	return pe.Kind
}

func TestConn_Uint32RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)

	for _, v := range []uint32{0, 1, 42, 1<<32 - 1} {
		if err := c.WriteUint32(v); err != nil {
			t.Fatalf("WriteUint32(%d) failed: %v", v, err)
		}
		got, err := c.ReadUint32()
		if err != nil {
			t.Fatalf("ReadUint32 failed: %v", err)
		}
		if got != v {
			t.Errorf("ReadUint32 = %d, want %d", got, v)
		}
	}
}

func TestConn_Uint32IsRaw(t *testing.T) {
	// Counts ride unframed: exactly four bytes, no length prefix.
	var buf bytes.Buffer
	c := New(&buf)
	if err := c.WriteUint32(3); err != nil {
		t.Fatalf("WriteUint32 failed: %v", err)
	}
	if buf.Len() != 4 {
		t.Errorf("wrote %d bytes, want 4", buf.Len())
	}
	if got := binary.LittleEndian.Uint32(buf.Bytes()); got != 3 {
		t.Errorf("encoded value = %d, want 3", got)
	}
}

func TestConn_StringRoundTrip(t *testing.T) {
	tests := []string{"", "a", "report.pdf", "résumé.txt"}
	for _, s := range tests {
		var buf bytes.Buffer
		c := New(&buf)
		if err := c.WriteString(s); err != nil {
			t.Fatalf("WriteString(%q) failed: %v", s, err)
		}
		got, err := c.ReadString()
		if err != nil {
			t.Fatalf("ReadString failed: %v", err)
		}
		if got != s {
			t.Errorf("ReadString = %q, want %q", got, s)
		}
	}
}

func TestConn_RequestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)

	want := DownloadFileByName("chunk.dat")
	if err := c.WriteRequest(want); err != nil {
		t.Fatalf("WriteRequest failed: %v", err)
	}
	got, err := c.ReadRequest()
	if err != nil {
		t.Fatalf("ReadRequest failed: %v", err)
	}
	if got != want {
		t.Errorf("ReadRequest = %+v, want %+v", got, want)
	}
}

func TestConn_ResultRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)

	if err := c.WriteResult(ResultIndexOutOfBounds); err != nil {
		t.Fatalf("WriteResult failed: %v", err)
	}
	got, err := c.ReadResult()
	if err != nil {
		t.Fatalf("ReadResult failed: %v", err)
	}
	if got != ResultIndexOutOfBounds {
		t.Errorf("ReadResult = %v, want %v", got, ResultIndexOutOfBounds)
	}
}

func TestConn_ReadRequest_CleanEOF(t *testing.T) {
	c := New(bytes.NewBuffer(nil))
	if _, err := c.ReadRequest(); !errors.Is(err, io.EOF) {
		t.Errorf("error = %v, want io.EOF", err)
	}
}

func TestConn_ReadRequest_TruncatedPrefix(t *testing.T) {
	c := New(bytes.NewBuffer([]byte{0x04, 0x00}))
	_, err := c.ReadRequest()
	if kind := protocolKind(t, err); kind != ErrorTruncated {
		t.Errorf("kind = %v, want ErrorTruncated", kind)
	}
}

func TestConn_ReadRequest_TruncatedPayload(t *testing.T) {
	// Declares eight payload bytes but supplies two.
	frame := binary.LittleEndian.AppendUint32(nil, 8)
	frame = append(frame, 0x01, 0x02)

	c := New(bytes.NewBuffer(frame))
	_, err := c.ReadRequest()
	if kind := protocolKind(t, err); kind != ErrorTruncated {
		t.Errorf("kind = %v, want ErrorTruncated", kind)
	}
}

func TestConn_ReadRequest_TooLarge(t *testing.T) {
	frame := binary.LittleEndian.AppendUint32(nil, MaxFrameSize+1)

	c := New(bytes.NewBuffer(frame))
	_, err := c.ReadRequest()
	if kind := protocolKind(t, err); kind != ErrorTooLarge {
		t.Errorf("kind = %v, want ErrorTooLarge", kind)
	}
}

func TestConn_WriteString_TooLarge(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)
	err := c.WriteString(strings.Repeat("x", MaxFrameSize+1))
	if kind := protocolKind(t, err); kind != ErrorTooLarge {
		t.Errorf("kind = %v, want ErrorTooLarge", kind)
	}
}

func TestConn_ReadString_InvalidUTF8(t *testing.T) {
	frame := binary.LittleEndian.AppendUint32(nil, 2)
	frame = append(frame, 0xFF, 0xFE)

	c := New(bytes.NewBuffer(frame))
	_, err := c.ReadString()
	if kind := protocolKind(t, err); kind != ErrorDecode {
		t.Errorf("kind = %v, want ErrorDecode", kind)
	}
}

func TestConn_ReadUint32_Truncated(t *testing.T) {
	c := New(bytes.NewBuffer([]byte{0x01}))
	_, err := c.ReadUint32()
	if kind := protocolKind(t, err); kind != ErrorTruncated {
		t.Errorf("kind = %v, want ErrorTruncated", kind)
	}
}
