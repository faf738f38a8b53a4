package main

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/JamesWelchman/narcissus"
)

type helloResponse struct {
	SessionID string `json:"sessionId"`
	Bufsize   int    `json:"bufsize"`
}

type subscribeRequest struct {
	UpdateIntervalMillis uint32 `json:"updateIntervalMillis"`
}

type frameNotification struct {
	Ts   uint64 `json:"ts"`
	Size int    `json:"size"`
}

// session is one client connection: its own Receiver clone, its own
// read/write state, its own session ID. new_session_id in session.rs
// read 4 bytes off /dev/random; this port uses uuid.New() instead.
type session struct {
	conn      net.Conn
	sessionID string
	recv      *narcissus.Receiver
	logger    *slog.Logger

	updateInterval time.Duration
}

func newSession(conn net.Conn, recv *narcissus.Receiver, logger *slog.Logger) *session {
	return &session{
		conn:      conn,
		sessionID: uuid.New().String(),
		recv:      recv,
		logger:    logger,
	}
}

func (s *session) writeMsg(mt msgType, body any) error {
	payload, err := marshalBody(body)
	if err != nil {
		return fmt.Errorf("session: marshal body: %w", err)
	}
	h := encodeHeader(header{version: protocolVersion, msgType: mt, msgLen: uint32(len(payload))})
	if _, err := s.conn.Write(h[:]); err != nil {
		return fmt.Errorf("session: write header: %w", err)
	}
	if len(payload) > 0 {
		if _, err := s.conn.Write(payload); err != nil {
			return fmt.Errorf("session: write body: %w", err)
		}
	}
	return nil
}

func (s *session) sayHello(bufsize int) error {
	return s.writeMsg(msgHello, helloResponse{SessionID: s.sessionID, Bufsize: bufsize})
}

// readLoop blocks reading framed messages until the connection closes
// or the client sends Shutdown. It mirrors tick_read_header then
// tick_read_body from session.rs, collapsed into one blocking loop
// since Go's net.Conn doesn't need the original's non-blocking poll
// state machine.
func (s *session) readLoop(helloTimeout time.Duration) error {
	s.conn.SetReadDeadline(time.Now().Add(helloTimeout))
	for {
		var raw [headerLen]byte
		if _, err := io.ReadFull(s.conn, raw[:]); err != nil {
			return err
		}
		h, err := parseHeader(raw)
		if err != nil {
			return err
		}
		if h.msgLen > maxBodyLen {
			return errBodyTooLarge
		}

		var body []byte
		if h.msgLen > 0 {
			body = make([]byte, h.msgLen)
			if _, err := io.ReadFull(s.conn, body); err != nil {
				return err
			}
		}

		switch h.msgType {
		case msgHeartbeat:
			// Nothing to do beyond having read the message; arrival
			// alone resets the idea of "alive" for whatever deadline
			// the caller maintains on the connection.
		case msgShutdown:
			return io.EOF
		case msgSubscribe:
			var req subscribeRequest
			if err := unmarshalBody(body, &req); err != nil {
				return fmt.Errorf("session: bad subscribe body: %w", err)
			}
			s.updateInterval = time.Duration(req.UpdateIntervalMillis) * time.Millisecond
		}
	}
}

// streamLoop periodically borrows the latest frame and, if it's new
// since the last tick, notifies the client. It never sends a frame
// that hasn't changed, and never blocks waiting for one to arrive.
func (s *session) streamLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	var lastTs uint64
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if s.updateInterval == 0 {
				continue
			}

			view, err := s.recv.Borrow()
			if err != nil {
				if err == narcissus.ErrNoFrameYet {
					continue
				}
				s.logger.Info("stream loop stopping", "session_id", s.sessionID, "reason", err)
				return
			}
			ts, size := view.Ts, len(view.Data)
			view.Release()

			if ts == lastTs {
				continue
			}
			lastTs = ts

			if err := s.writeMsg(msgFrame, frameNotification{Ts: ts, Size: size}); err != nil {
				s.logger.Warn("write frame notification failed", "session_id", s.sessionID, "error", err)
				return
			}
		}
	}
}
