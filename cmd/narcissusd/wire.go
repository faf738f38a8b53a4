package main

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/sugawarayuuta/sonnet"
)

// msgType mirrors session.rs's single-byte message tags.
type msgType uint8

const (
	msgHello     msgType = 'A'
	msgShutdown  msgType = 'Z'
	msgHeartbeat msgType = 'H'
	msgSubscribe msgType = 'S'
	msgFrame     msgType = 'F'
)

const (
	headerLen       = 10
	protocolVersion uint8 = 0
)

// header is the 10-byte frame prefix: version, msgType, a little-endian
// msgLen, and a little-endian msgID. The body, if any, is msgLen bytes
// of JSON immediately following.
type header struct {
	version uint8
	msgType msgType
	msgLen  uint32
	msgID   uint32
}

func parseHeader(raw [headerLen]byte) (header, error) {
	if raw[0] != protocolVersion {
		return header{}, fmt.Errorf("wire: unsupported version %d", raw[0])
	}
	h := header{
		version: raw[0],
		msgType: msgType(raw[1]),
		msgLen:  binary.LittleEndian.Uint32(raw[2:6]),
		msgID:   binary.LittleEndian.Uint32(raw[6:10]),
	}
	switch h.msgType {
	case msgHello, msgShutdown, msgHeartbeat, msgSubscribe, msgFrame:
	default:
		return header{}, fmt.Errorf("wire: invalid message type %q", raw[1])
	}
	return h, nil
}

func encodeHeader(h header) [headerLen]byte {
	var raw [headerLen]byte
	raw[0] = h.version
	raw[1] = byte(h.msgType)
	binary.LittleEndian.PutUint32(raw[2:6], h.msgLen)
	binary.LittleEndian.PutUint32(raw[6:10], h.msgID)
	return raw
}

var errBodyTooLarge = errors.New("wire: body exceeds maximum message size")

const maxBodyLen = 1 << 20

func marshalBody(v any) ([]byte, error) {
	return sonnet.Marshal(v)
}

func unmarshalBody(data []byte, v any) error {
	return sonnet.Unmarshal(data, v)
}
