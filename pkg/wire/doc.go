/*
Package wire implements the message framing shared by both rsbar sockets.

Messages are arbitrary byte sequences terminated by a single NUL byte.
There is no length prefix and no escaping, so payloads must not contain
embedded NUL. The same codec frames call requests, subscription requests
and event deliveries.

# Architecture

	sender                          receiver
	──────                          ────────
	payload bytes  ──▶  socket  ──▶ buffered read
	'\0'                            split on '\0'
	flush                           drop delimiter
	                                UTF-8 string out

	one write may carry many frames:
	"volume/setVolume/10\0volume/setVolume/20\0"
	         │                    │
	         ▼                    ▼
	   ReadMessage #1       ReadMessage #2

# Core Components

Reader:
  - Wraps any io.Reader in a buffered scanner for '\0'
  - ReadMessage returns exactly one payload per call, however the bytes
    arrived on the wire
  - Clean EOF before any byte is io.EOF; EOF inside an unterminated
    frame is io.ErrUnexpectedEOF, so a truncated peer is distinguishable
    from a finished one

Writer:
  - WriteMessage writes payload + delimiter and flushes
  - Rejects payloads containing the delimiter with ErrEmbeddedNUL before
    touching the stream

Frame properties:
  - Empty payloads (a bare '\0') are legal and decode as ""
  - Payloads may contain any other byte, including '\n' (the time topic
    uses one)

# Usage

	w := wire.NewWriter(conn)
	if err := w.WriteMessage("volume/setVolume/42"); err != nil { ... }

	r := wire.NewReader(conn)
	for {
		msg, err := r.ReadMessage()
		if err != nil {
			break // EOF or I/O error
		}
		handle(msg)
	}

# Integration Points

  - pkg/api: both socket handlers read and write through this codec
  - cmd/rsbard: the call and subscribe subcommands speak the same frames
    from the client side

# Design Notes

The protocol version is pinned: no request ids, no error responses, no
length framing. Compatible implementations must match these bytes
exactly, which is why the codec lives in its own package instead of
being inlined where it is used.

# See Also

  - pkg/api - connection handling around the codec
*/
package wire
