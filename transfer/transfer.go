// Package transfer streams file payloads per PROTOCOL.md.
//
// A file payload is a raw little-endian uint32 byte length followed by
// exactly that many bytes, with no chunk framing: the receiver stops on the
// byte count alone. Both directions stream through a fixed-size buffer, so
// memory use is O(chunk) regardless of file size.
package transfer

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/justapithecus/parity/catalog"
	"github.com/justapithecus/parity/iox"
)

// chunkSize is the streaming buffer size for both directions.
const chunkSize = 64 * 1024

// Send writes the entry's byte length as a raw uint32, then copies the
// file's bytes from disk onto w in bounded chunks. The declared length is
// the receiver's only framing: a source file that comes up short of the
// length recorded at enumeration time is an error, not a short payload.
func Send(w io.Writer, entry catalog.Entry) error {
	file, err := os.Open(entry.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", entry.Name, err)
	}
	defer iox.DiscardClose(file)

	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], entry.Length)
	if _, err := w.Write(prefix[:]); err != nil {
		return fmt.Errorf("write length of %s: %w", entry.Name, err)
	}

	buf := make([]byte, chunkSize)
	n, err := io.CopyBuffer(w, io.LimitReader(file, int64(entry.Length)), buf)
	if err != nil {
		return fmt.Errorf("send %s: %w", entry.Name, err)
	}
	if n != int64(entry.Length) {
		return fmt.Errorf("send %s: file shorter than declared length: %d of %d bytes", entry.Name, n, entry.Length)
	}
	return nil
}

// Receive reads exactly length bytes from r into a newly created file at
// dest, in bounded chunks. A failure mid-stream leaves the partial
// destination file on disk; there is no cleanup or rollback, matching the
// no-resume design of the protocol.
func Receive(r io.Reader, length uint32, dest string) error {
	file, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer iox.DiscardClose(file)

	buf := make([]byte, chunkSize)
	n, err := io.CopyBuffer(file, io.LimitReader(r, int64(length)), buf)
	if err != nil {
		return fmt.Errorf("receive %s: %w", dest, err)
	}
	if n != int64(length) {
		return fmt.Errorf("receive %s: stream ended at %d of %d bytes", dest, n, length)
	}
	return nil
}
