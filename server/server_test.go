package server

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/justapithecus/parity/client"
	"github.com/justapithecus/parity/log"
	"github.com/justapithecus/parity/wire"
)

func testLogger() *log.Logger {
	return log.NewLogger("test", "").WithOutput(io.Discard)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

// exchange runs one full request cycle over an in-memory pipe: the
// dispatcher on one end, the client driver on the other.
func exchange(t *testing.T, root, downloadDir string, req wire.Request) (*client.Report, error, error) {
	t.Helper()

	serverConn, clientConn := net.Pipe()
	srvErr := make(chan error, 1)
	go func() {
		err := RunRequest(serverConn, root, testLogger())
		serverConn.Close()
		srvErr <- err
	}()

	report, err := client.IssueRequest(clientConn, req, downloadDir, testLogger())
	clientConn.Close()
	return report, err, <-srvErr
}

func TestRunRequest_Disconnect(t *testing.T) {
	root := t.TempDir()
	report, err, srvErr := exchange(t, root, t.TempDir(), wire.Disconnect())
	if err != nil {
		t.Fatalf("client error: %v", err)
	}
	if srvErr != nil {
		t.Fatalf("server error: %v", srvErr)
	}
	if report.Count != 0 || len(report.Files) != 0 {
		t.Errorf("report = %+v, want empty", report)
	}
}

func TestRunRequest_GetFileCount(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "alpha")
	writeFile(t, root, "b.txt", "bravo")
	if err := os.Mkdir(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	report, err, srvErr := exchange(t, root, t.TempDir(), wire.GetFileCount())
	if err != nil {
		t.Fatalf("client error: %v", err)
	}
	if srvErr != nil {
		t.Fatalf("server error: %v", srvErr)
	}
	if report.Count != 2 {
		t.Errorf("Count = %d, want 2", report.Count)
	}
}

func TestRunRequest_DownloadByIndex(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "only.bin", "payload")
	downloadDir := t.TempDir()

	report, err, srvErr := exchange(t, root, downloadDir, wire.DownloadFileByIndex(0))
	if err != nil {
		t.Fatalf("client error: %v", err)
	}
	if srvErr != nil {
		t.Fatalf("server error: %v", srvErr)
	}
	if len(report.Files) != 1 {
		t.Fatalf("len(Files) = %d, want 1", len(report.Files))
	}

	got, readErr := os.ReadFile(report.Files[0].Path)
	if readErr != nil {
		t.Fatalf("read download: %v", readErr)
	}
	if string(got) != "payload" {
		t.Errorf("content = %q, want %q", got, "payload")
	}
}

func TestRunRequest_DownloadByIndex_OutOfBounds(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "only.bin", "payload")

	_, err, srvErr := exchange(t, root, t.TempDir(), wire.DownloadFileByIndex(1))
	var rejection *wire.RejectionError
	if !errors.As(err, &rejection) {
		t.Fatalf("client error = %v, want *RejectionError", err)
	}
	if rejection.Result != wire.ResultIndexOutOfBounds {
		t.Errorf("result = %v, want ResultIndexOutOfBounds", rejection.Result)
	}
	if srvErr == nil {
		t.Error("server error = nil, want the resolution failure")
	}
}

func TestRunRequest_DownloadByName(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "named.txt", "by name")
	downloadDir := t.TempDir()

	report, err, srvErr := exchange(t, root, downloadDir, wire.DownloadFileByName("named.txt"))
	if err != nil {
		t.Fatalf("client error: %v", err)
	}
	if srvErr != nil {
		t.Fatalf("server error: %v", srvErr)
	}
	if len(report.Files) != 1 || report.Files[0].Name != "named.txt" {
		t.Fatalf("report files = %+v, want named.txt", report.Files)
	}

	got, readErr := os.ReadFile(filepath.Join(downloadDir, "named.txt"))
	if readErr != nil {
		t.Fatalf("read download: %v", readErr)
	}
	if string(got) != "by name" {
		t.Errorf("content = %q, want %q", got, "by name")
	}
}

func TestRunRequest_DownloadByName_Traversal(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "root")
	if err := os.Mkdir(root, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, parent, "secret.txt", "secret")

	_, err, _ := exchange(t, root, t.TempDir(), wire.DownloadFileByName("../secret.txt"))
	var rejection *wire.RejectionError
	if !errors.As(err, &rejection) {
		t.Fatalf("client error = %v, want *RejectionError", err)
	}
	if rejection.Result != wire.ResultUnauthorizedAccess {
		t.Errorf("result = %v, want ResultUnauthorizedAccess", rejection.Result)
	}
}

func TestRunRequest_DownloadAll(t *testing.T) {
	root := t.TempDir()
	contents := map[string]string{
		"a.txt": "alpha",
		"b.txt": "bravo",
		"c.txt": "charlie",
	}
	for name, content := range contents {
		writeFile(t, root, name, content)
	}
	downloadDir := t.TempDir()

	report, err, srvErr := exchange(t, root, downloadDir, wire.DownloadAllFiles())
	if err != nil {
		t.Fatalf("client error: %v", err)
	}
	if srvErr != nil {
		t.Fatalf("server error: %v", srvErr)
	}
	if report.Count != 3 || len(report.Files) != 3 {
		t.Fatalf("report = %+v, want 3 files", report)
	}

	for name, content := range contents {
		got, readErr := os.ReadFile(filepath.Join(downloadDir, name))
		if readErr != nil {
			t.Fatalf("read %s: %v", name, readErr)
		}
		if string(got) != content {
			t.Errorf("%s content = %q, want %q", name, got, content)
		}
	}
}

// TestRunRequest_DownloadAll_BlocksOnAck drives the wire protocol by hand
// to observe the pacing: after one file payload the dispatcher must not
// emit the next file name until the acknowledgment arrives.
func TestRunRequest_DownloadAll_BlocksOnAck(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "first.bin", "one")
	writeFile(t, root, "second.bin", "two")

	serverConn, clientConn := net.Pipe()
	defer clientConn.Close()
	go func() {
		_ = RunRequest(serverConn, root, testLogger())
		serverConn.Close()
	}()

	wc := wire.New(clientConn)
	if err := wc.WriteRequest(wire.DownloadAllFiles()); err != nil {
		t.Fatalf("write request: %v", err)
	}
	if result, err := wc.ReadResult(); err != nil || result != wire.ResultOk {
		t.Fatalf("leading result = %v, %v", result, err)
	}
	count, err := wc.ReadUint32()
	if err != nil || count != 2 {
		t.Fatalf("count = %d, %v", count, err)
	}

	// Consume the first file fully: name, length, payload.
	if _, err := wc.ReadString(); err != nil {
		t.Fatalf("first name: %v", err)
	}
	length, err := wc.ReadUint32()
	if err != nil {
		t.Fatalf("first length: %v", err)
	}
	if _, err := io.CopyN(io.Discard, wc, int64(length)); err != nil {
		t.Fatalf("first payload: %v", err)
	}

	// No ack sent yet: nothing of the second file may arrive.
	if err := clientConn.SetReadDeadline(time.Now().Add(50 * time.Millisecond)); err != nil {
		t.Fatalf("set deadline: %v", err)
	}
	one := make([]byte, 1)
	if _, err := clientConn.Read(one); !errors.Is(err, os.ErrDeadlineExceeded) {
		t.Fatalf("read before ack = %v, want deadline exceeded", err)
	}
	if err := clientConn.SetReadDeadline(time.Time{}); err != nil {
		t.Fatalf("clear deadline: %v", err)
	}

	// Ack releases the second file.
	if err := wc.WriteResult(wire.ResultOk); err != nil {
		t.Fatalf("write ack: %v", err)
	}
	name, err := wc.ReadString()
	if err != nil {
		t.Fatalf("second name: %v", err)
	}
	if name != "second.bin" && name != "first.bin" {
		t.Errorf("second name = %q, want a catalog entry", name)
	}
}

func TestRunRequest_MalformedRequest(t *testing.T) {
	root := t.TempDir()
	serverConn, clientConn := net.Pipe()
	defer clientConn.Close()

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- RunRequest(serverConn, root, testLogger())
		serverConn.Close()
	}()

	// A frame carrying an unknown tag.
	frame := binary.LittleEndian.AppendUint32(nil, 4)
	frame = binary.LittleEndian.AppendUint32(frame, 99)
	if _, err := clientConn.Write(frame); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := <-srvErr; !wire.IsProtocolError(err) {
		t.Errorf("server error = %v, want *ProtocolError", err)
	}
}

func TestServe_SequentialConnections(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "alpha")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- Serve(ln, root, testLogger())
	}()

	// The count is idempotent across connections.
	for i := 0; i < 2; i++ {
		conn, err := net.Dial("tcp", ln.Addr().String())
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		report, err := client.IssueRequest(conn, wire.GetFileCount(), "", testLogger())
		conn.Close()
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if report.Count != 1 {
			t.Errorf("request %d count = %d, want 1", i, report.Count)
		}
	}

	ln.Close()
	if err := <-done; err != nil {
		t.Errorf("Serve returned %v after close, want nil", err)
	}
}

func TestServe_SurvivesFailingConnection(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "alpha")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	go func() {
		_ = Serve(ln, root, testLogger())
	}()

	// A garbage request terminates its connection but not the loop.
	bad, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	garbage := binary.LittleEndian.AppendUint32(nil, 4)
	garbage = binary.LittleEndian.AppendUint32(garbage, 99)
	if _, err := bad.Write(garbage); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	// Wait for the server to drop the connection.
	if _, err := bad.Read(make([]byte, 1)); err == nil {
		t.Error("read after garbage succeeded, want closed connection")
	}
	bad.Close()

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial after failure: %v", err)
	}
	defer conn.Close()
	report, err := client.IssueRequest(conn, wire.GetFileCount(), "", testLogger())
	if err != nil {
		t.Fatalf("request after failure: %v", err)
	}
	if report.Count != 1 {
		t.Errorf("count = %d, want 1", report.Count)
	}
}

// Guard against accidental buffering in the codec passthrough: the raw
// Read/Write on a Conn must reach the underlying stream directly.
func TestConnPassthrough(t *testing.T) {
	var buf bytes.Buffer
	wc := wire.New(&buf)
	if _, err := wc.Write([]byte("raw")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.String() != "raw" {
		t.Errorf("buffer = %q, want %q", buf.String(), "raw")
	}
}
