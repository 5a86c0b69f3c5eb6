package ratpfs

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

var ErrShortPacket = errors.New("short packet")

type Op uint8

func (o Op) String() string {
	switch o {
	case INVALID:
		return "invalid"
	case MOUNT_CALL:
		return "mount_call"
	case MOUNT_RETURN:
		return "mount_return"
	case READDIR_CALL:
		return "readdir_call"
	case READDIR_RETURN:
		return "readdir_return"
	case STAT_CALL:
		return "stat_call"
	case STAT_RETURN:
		return "stat_return"
	case OPEN_CALL:
		return "open_call"
	case OPEN_RETURN:
		return "open_return"
	case READ_CALL:
		return "read_call"
	case READ_RETURN:
		return "read_return"
	case WRITE_CALL:
		return "write_call"
	case WRITE_RETURN:
		return "write_return"
	case CLOSE_CALL:
		return "close_call"
	case CLOSE_RETURN:
		return "close_return"
	case TRUNCATE_CALL:
		return "truncate_call"
	case TRUNCATE_RETURN:
		return "truncate_return"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(o))
	}
}

// Return is the op answering a call.
func (o Op) Return() Op {
	if o == INVALID || o%2 == 0 {
		return INVALID
	}
	return o + 1
}

type Kind uint8

// Packet is the payload of fs and fs_return messages: one op octet and its parameters.
type Packet struct {
	Op      Op
	Payload []byte
}

func New(data []byte) (*Packet, error) {
	if len(data) < 1 {
		return nil, errors.Wrap(ErrShortPacket, "missing op")
	}
	payload := make([]byte, len(data)-1)
	copy(payload, data[1:])
	return &Packet{Op: Op(data[0]), Payload: payload}, nil
}

func Build(op Op, payload []byte) *Packet {
	return &Packet{Op: op, Payload: payload}
}

func (p *Packet) Serialize() []byte {
	return append([]byte{uint8(p.Op)}, p.Payload...)
}

func (p *Packet) String() string {
	return fmt.Sprintf("RatpFSPacket(%s, %d bytes)", p.Op, len(p.Payload))
}

func need(payload []byte, n int, what string) error {
	if len(payload) < n {
		return errors.Wrapf(ErrShortPacket, "%s needs %d bytes, got %d", what, n, len(payload))
	}
	return nil
}

type StatReturn struct {
	Kind Kind
	Size uint32 // errno when Kind is NOT_FOUND
}

func (s *StatReturn) Encode() []byte {
	buf := make([]byte, 5)
	buf[0] = uint8(s.Kind)
	binary.BigEndian.PutUint32(buf[1:], s.Size)
	return buf
}

func DecodeStatReturn(payload []byte) (*StatReturn, error) {
	if err := need(payload, 5, "stat return"); err != nil {
		return nil, err
	}
	return &StatReturn{Kind: Kind(payload[0]), Size: binary.BigEndian.Uint32(payload[1:5])}, nil
}

type OpenCall struct {
	Flags uint32
	Path  string
}

func (o *OpenCall) Encode() []byte {
	buf := make([]byte, 4, 4+len(o.Path))
	binary.BigEndian.PutUint32(buf, o.Flags)
	return append(buf, o.Path...)
}

func DecodeOpenCall(payload []byte) (*OpenCall, error) {
	if err := need(payload, 4, "open call"); err != nil {
		return nil, err
	}
	return &OpenCall{Flags: binary.BigEndian.Uint32(payload[:4]), Path: string(payload[4:])}, nil
}

type OpenReturn struct {
	Handle uint32 // 0 on failure
	Size   uint32 // errno on failure
}

func (o *OpenReturn) Encode() []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint32(buf[0:4], o.Handle)
	binary.BigEndian.PutUint32(buf[4:8], o.Size)
	return buf
}

func DecodeOpenReturn(payload []byte) (*OpenReturn, error) {
	if err := need(payload, 8, "open return"); err != nil {
		return nil, err
	}
	return &OpenReturn{Handle: binary.BigEndian.Uint32(payload[0:4]), Size: binary.BigEndian.Uint32(payload[4:8])}, nil
}

type ReadCall struct {
	Handle uint32
	Pos    uint32
	Size   uint32
}

func (r *ReadCall) Encode() []byte {
	buf := make([]byte, 12)
	binary.BigEndian.PutUint32(buf[0:4], r.Handle)
	binary.BigEndian.PutUint32(buf[4:8], r.Pos)
	binary.BigEndian.PutUint32(buf[8:12], r.Size)
	return buf
}

func DecodeReadCall(payload []byte) (*ReadCall, error) {
	if err := need(payload, 12, "read call"); err != nil {
		return nil, err
	}
	return &ReadCall{
		Handle: binary.BigEndian.Uint32(payload[0:4]),
		Pos:    binary.BigEndian.Uint32(payload[4:8]),
		Size:   binary.BigEndian.Uint32(payload[8:12]),
	}, nil
}

type WriteCall struct {
	Handle uint32
	Pos    uint32
	Data   []byte
}

func (w *WriteCall) Encode() []byte {
	buf := make([]byte, 8, 8+len(w.Data))
	binary.BigEndian.PutUint32(buf[0:4], w.Handle)
	binary.BigEndian.PutUint32(buf[4:8], w.Pos)
	return append(buf, w.Data...)
}

func DecodeWriteCall(payload []byte) (*WriteCall, error) {
	if err := need(payload, 8, "write call"); err != nil {
		return nil, err
	}
	return &WriteCall{
		Handle: binary.BigEndian.Uint32(payload[0:4]),
		Pos:    binary.BigEndian.Uint32(payload[4:8]),
		Data:   payload[8:],
	}, nil
}

type CloseCall struct {
	Handle uint32
}

func (c *CloseCall) Encode() []byte {
	return binary.BigEndian.AppendUint32(nil, c.Handle)
}

func DecodeCloseCall(payload []byte) (*CloseCall, error) {
	if err := need(payload, 4, "close call"); err != nil {
		return nil, err
	}
	return &CloseCall{Handle: binary.BigEndian.Uint32(payload[0:4])}, nil
}

type TruncateCall struct {
	Handle uint32
	Size   uint32
}

func (t *TruncateCall) Encode() []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint32(buf[0:4], t.Handle)
	binary.BigEndian.PutUint32(buf[4:8], t.Size)
	return buf
}

func DecodeTruncateCall(payload []byte) (*TruncateCall, error) {
	if err := need(payload, 8, "truncate call"); err != nil {
		return nil, err
	}
	return &TruncateCall{Handle: binary.BigEndian.Uint32(payload[0:4]), Size: binary.BigEndian.Uint32(payload[4:8])}, nil
}

// EncodeNames joins directory entries, each terminated by a NUL.
func EncodeNames(names []string) []byte {
	var buf bytes.Buffer
	for _, name := range names {
		buf.WriteString(name)
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

func DecodeNames(payload []byte) []string {
	var names []string
	for _, name := range bytes.Split(payload, []byte{0}) {
		if len(name) > 0 {
			names = append(names, string(name))
		}
	}
	return names
}
