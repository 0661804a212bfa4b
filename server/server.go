// Package server implements the per-connection request dispatcher and the
// accept loop around it.
//
// One dispatcher invocation handles exactly one request, then the
// connection ends: there is no pipelining and no keep-alive. The accept
// loop is strictly sequential: at most one client is served at a time, and
// later clients queue at the transport level. A failing connection is
// logged and never halts the loop.
package server

import (
	"errors"
	"net"

	"github.com/justapithecus/parity/catalog"
	"github.com/justapithecus/parity/iox"
	"github.com/justapithecus/parity/log"
	"github.com/justapithecus/parity/transfer"
	"github.com/justapithecus/parity/wire"
)

// Serve accepts connections on ln and runs each through RunRequest to
// completion before accepting the next. It returns nil when ln is closed;
// any other accept failure is returned as-is.
func Serve(ln net.Listener, parityRoot string, logger *log.Logger) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		logger.Info("connection established", map[string]any{
			"peer": conn.RemoteAddr().String(),
		})

		if err := RunRequest(conn, parityRoot, logger); err != nil {
			logger.Error("connection terminated", map[string]any{
				"peer":  conn.RemoteAddr().String(),
				"error": err.Error(),
			})
		} else {
			logger.Info("connection terminated", map[string]any{
				"peer": conn.RemoteAddr().String(),
			})
		}
		iox.DiscardClose(conn)
	}
}

// RunRequest reads one request from conn, executes it against the parity
// root, and writes the matching reply sequence. The connection is left for
// the caller to close regardless of outcome.
//
// A rejection reply (IndexOutOfBounds, UnauthorizedAccess) is final: it is
// the one and only reply for that outcome, and RunRequest returns
// immediately after sending it.
func RunRequest(conn net.Conn, parityRoot string, logger *log.Logger) error {
	wc := wire.New(conn)

	req, err := wc.ReadRequest()
	if err != nil {
		return err
	}

	switch req.Tag {
	case wire.TagDisconnect:
		// Nothing to reply; the caller closes the socket.
		return nil

	case wire.TagGetFileCount:
		entries, err := catalog.Scan(parityRoot)
		if err != nil {
			return err
		}
		if err := wc.WriteResult(wire.ResultOk); err != nil {
			return err
		}
		return wc.WriteUint32(uint32(len(entries)))

	case wire.TagDownloadFileByIndex:
		entry, err := catalog.ResolveByIndex(parityRoot, req.Index)
		if errors.Is(err, catalog.ErrIndexOutOfBounds) {
			if werr := wc.WriteResult(wire.ResultIndexOutOfBounds); werr != nil {
				return werr
			}
			return err
		}
		if err != nil {
			return err
		}
		if err := wc.WriteResult(wire.ResultOk); err != nil {
			return err
		}
		if err := wc.WriteString(entry.Name); err != nil {
			return err
		}
		return transfer.Send(wc, entry)

	case wire.TagDownloadFileByName:
		entry, err := catalog.ResolveByName(parityRoot, req.Name)
		if errors.Is(err, catalog.ErrOutsideRoot) {
			if werr := wc.WriteResult(wire.ResultUnauthorizedAccess); werr != nil {
				return werr
			}
			return err
		}
		if err != nil {
			return err
		}
		if err := wc.WriteResult(wire.ResultOk); err != nil {
			return err
		}
		// The name is not echoed; the client asked for it by name.
		return transfer.Send(wc, entry)

	case wire.TagDownloadAllFiles:
		entries, err := catalog.Scan(parityRoot)
		if err != nil {
			return err
		}
		if err := wc.WriteResult(wire.ResultOk); err != nil {
			return err
		}
		if err := wc.WriteUint32(uint32(len(entries))); err != nil {
			return err
		}
		for _, entry := range entries {
			if err := wc.WriteString(entry.Name); err != nil {
				return err
			}
			if err := transfer.Send(wc, entry); err != nil {
				return err
			}
			// Flow control: block until the client acknowledges the file,
			// so the stream never runs ahead of the client's disk writes.
			if _, err := wc.ReadResult(); err != nil {
				return err
			}
			logger.Debug("file sent", map[string]any{
				"name":  entry.Name,
				"bytes": entry.Length,
			})
		}
		return nil

	default:
		// DecodeRequest pins the tag set; this is unreachable for any
		// request that decoded successfully.
		return &wire.ProtocolError{Kind: wire.ErrorDecode, Msg: "unhandled request tag"}
	}
}
