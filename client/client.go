// Package client implements the request driver: it issues one request over
// an established connection and consumes the matching reply sequence,
// materializing downloaded files on local disk.
//
// The driver is the symmetric reader to the server's dispatcher. Any failing step, whether
// codec, I/O, or a rejection result, terminates the whole call;
// files already written stay on disk.
package client

import (
	"fmt"
	"net"
	"path/filepath"
	"strings"

	"github.com/justapithecus/parity/log"
	"github.com/justapithecus/parity/transfer"
	"github.com/justapithecus/parity/wire"
)

// ReceivedFile describes one file materialized by the driver.
type ReceivedFile struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Length uint32 `json:"length"`
}

// Report is the structured outcome of one request, for the CLI layer to
// render. Fields are populated per request variant: Count for
// GetFileCount and DownloadAllFiles, Files for the download variants.
type Report struct {
	Count uint32         `json:"count"`
	Files []ReceivedFile `json:"files,omitempty"`
}

// IssueRequest sends req on conn and executes the reply-consumption
// sequence for that request. Downloaded files land under downloadDir,
// named by their basename only: a server-supplied name that is empty,
// absolute, or contains a path separator or ".." is rejected rather than
// joined onto local paths.
func IssueRequest(conn net.Conn, req wire.Request, downloadDir string, logger *log.Logger) (*Report, error) {
	wc := wire.New(conn)

	if err := wc.WriteRequest(req); err != nil {
		return nil, err
	}

	switch req.Tag {
	case wire.TagDisconnect:
		return &Report{}, nil

	case wire.TagGetFileCount:
		if err := readOk(wc); err != nil {
			return nil, err
		}
		count, err := wc.ReadUint32()
		if err != nil {
			return nil, err
		}
		return &Report{Count: count}, nil

	case wire.TagDownloadFileByIndex:
		if err := readOk(wc); err != nil {
			return nil, err
		}
		name, err := wc.ReadString()
		if err != nil {
			return nil, err
		}
		file, err := receiveOne(wc, name, downloadDir, logger)
		if err != nil {
			return nil, err
		}
		return &Report{Count: 1, Files: []ReceivedFile{file}}, nil

	case wire.TagDownloadFileByName:
		if err := readOk(wc); err != nil {
			return nil, err
		}
		// The server does not echo the name; the request carries it.
		file, err := receiveOne(wc, req.Name, downloadDir, logger)
		if err != nil {
			return nil, err
		}
		return &Report{Count: 1, Files: []ReceivedFile{file}}, nil

	case wire.TagDownloadAllFiles:
		if err := readOk(wc); err != nil {
			return nil, err
		}
		count, err := wc.ReadUint32()
		if err != nil {
			return nil, err
		}
		report := &Report{Count: count, Files: make([]ReceivedFile, 0, count)}
		for i := uint32(0); i < count; i++ {
			name, err := wc.ReadString()
			if err != nil {
				return nil, err
			}
			file, err := receiveOne(wc, name, downloadDir, logger)
			if err != nil {
				return nil, err
			}
			report.Files = append(report.Files, file)
			// Pacing ack: the server blocks on this before the next entry.
			if err := wc.WriteResult(wire.ResultOk); err != nil {
				return nil, err
			}
		}
		return report, nil

	default:
		return nil, fmt.Errorf("client: unknown request tag %d", req.Tag)
	}
}

// readOk reads the leading result and converts a rejection into an error.
func readOk(wc *wire.Conn) error {
	result, err := wc.ReadResult()
	if err != nil {
		return err
	}
	return result.Err()
}

// receiveOne reads one file payload (raw uint32 length + bytes) to disk.
func receiveOne(wc *wire.Conn, name, downloadDir string, logger *log.Logger) (ReceivedFile, error) {
	if err := validateName(name); err != nil {
		return ReceivedFile{}, err
	}

	length, err := wc.ReadUint32()
	if err != nil {
		return ReceivedFile{}, err
	}

	dest := filepath.Join(downloadDir, name)
	if err := transfer.Receive(wc, length, dest); err != nil {
		return ReceivedFile{}, err
	}

	logger.Info("file received", map[string]any{
		"name":  name,
		"bytes": length,
	})
	return ReceivedFile{Name: name, Path: dest, Length: length}, nil
}

// validateName rejects file names that would escape the download
// directory. The server is not trusted to send plain basenames.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("client: empty file name")
	}
	if name == "." || name == ".." || strings.Contains(name, "..") {
		return fmt.Errorf("client: unsafe file name %q", name)
	}
	if strings.ContainsRune(name, '/') || strings.ContainsRune(name, '\\') {
		return fmt.Errorf("client: file name %q contains a path separator", name)
	}
	if filepath.IsAbs(name) {
		return fmt.Errorf("client: file name %q is absolute", name)
	}
	return nil
}
