package ratp

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/terassyi/goratp/util"
)

// document https://www.rfc-editor.org/rfc/rfc916

var (
	// ErrInvalidHeader is a framing error. The reader drops one byte and resynchronizes.
	ErrInvalidHeader = errors.New("invalid header")
	// ErrInvalidPayload is a payload checksum mismatch. The segment is consumed and dropped.
	ErrInvalidPayload = errors.New("invalid payload")
)

type Header struct {
	Synch    uint8       // 8bits
	Control  ControlFlag // 8bits
	Length   uint8       // 8bits
	Checksum uint8       // 8bits
}

type Segment struct {
	Header Header
	Data   []byte
}

type ControlFlag uint8

func (f ControlFlag) String() string {
	var flags []string
	if f.Syn() {
		flags = append(flags, "syn")
	}
	if f.Ack() {
		flags = append(flags, "ack")
	}
	if f.Fin() {
		flags = append(flags, "fin")
	}
	if f.Rst() {
		flags = append(flags, "rst")
	}
	flags = append(flags, fmt.Sprintf("sn=%d", f.Sn()), fmt.Sprintf("an=%d", f.An()))
	if f.Eor() {
		flags = append(flags, "eor")
	}
	if f.So() {
		flags = append(flags, "so")
	}
	return strings.Join(flags, "|")
}

func (f ControlFlag) Syn() bool {
	return SYN&f != 0
}

func (f ControlFlag) Ack() bool {
	return ACK&f != 0
}

func (f ControlFlag) Fin() bool {
	return FIN&f != 0
}

func (f ControlFlag) Rst() bool {
	return RST&f != 0
}

func (f ControlFlag) Eor() bool {
	return EOR&f != 0
}

func (f ControlFlag) So() bool {
	return SO&f != 0
}

func (f ControlFlag) Sn() uint8 {
	if SN&f != 0 {
		return 1
	}
	return 0
}

func (f ControlFlag) An() uint8 {
	if AN&f != 0 {
		return 1
	}
	return 0
}

// WithSn returns f with the SN bit set to sn modulo 2.
func (f ControlFlag) WithSn(sn uint8) ControlFlag {
	if sn%2 == 1 {
		return f | SN
	}
	return f &^ SN
}

// WithAn returns f with the AN bit set to an modulo 2.
func (f ControlFlag) WithAn(an uint8) ControlFlag {
	if an%2 == 1 {
		return f | AN
	}
	return f &^ AN
}

// HasPayload reports whether Length payload bytes and a CRC follow the header on the wire.
// SYN, RST and FIN carry the MDL in the length field, SO carries the data byte itself.
func (h *Header) HasPayload() bool {
	if h.Control&(SO|SYN|RST|FIN) != 0 {
		return false
	}
	return h.Length > 0
}

// HasData reports whether the segment delivers user data.
func (h *Header) HasData() bool {
	if h.Control.So() {
		return true
	}
	return h.HasPayload()
}

// DecodeHeader validates the synch octet and the header checksum of data[:4].
func DecodeHeader(data []byte) (*Header, error) {
	if len(data) < HeaderLength {
		return nil, errors.Wrapf(ErrInvalidHeader, "short header (%d bytes)", len(data))
	}
	h := &Header{
		Synch:    data[0],
		Control:  ControlFlag(data[1]),
		Length:   data[2],
		Checksum: data[3],
	}
	if h.Synch != Synch {
		return nil, errors.Wrapf(ErrInvalidHeader, "invalid synch octet (%02x != %02x)", h.Synch, Synch)
	}
	if !util.HeaderChecksumOk(uint8(h.Control), h.Length, h.Checksum) {
		return nil, errors.Wrapf(ErrInvalidHeader, "invalid checksum octet (%02x)", uint8(h.Control)+h.Length+h.Checksum)
	}
	return h, nil
}

// DecodePayload verifies length data bytes followed by their big-endian CRC.
// data must hold at least length+2 bytes; the caller consumes exactly that many
// whether or not the checksum matches.
func DecodePayload(data []byte, length uint8) ([]byte, error) {
	n := int(length)
	if len(data) < n+ChecksumLength {
		return nil, errors.Wrapf(ErrInvalidPayload, "short payload (%d < %d)", len(data), n+ChecksumLength)
	}
	expect := util.Crc16(data[:n])
	actual := binary.BigEndian.Uint16(data[n : n+ChecksumLength])
	if expect != actual {
		return nil, errors.Wrapf(ErrInvalidPayload, "bad checksum (%04x != %04x)", actual, expect)
	}
	payload := make([]byte, n)
	copy(payload, data[:n])
	return payload, nil
}

// New decodes one complete segment from data.
func New(data []byte) (*Segment, error) {
	h, err := DecodeHeader(data)
	if err != nil {
		return nil, err
	}
	seg := &Segment{Header: *h}
	if h.HasPayload() {
		payload, err := DecodePayload(data[HeaderLength:], h.Length)
		if err != nil {
			return nil, err
		}
		seg.Data = payload
	}
	return seg, nil
}

// Build creates a segment. When data is not empty the length field is derived from it.
// Build panics if data is longer than MaxDataLength; callers fragment first.
func Build(control ControlFlag, length uint8, data []byte) *Segment {
	if len(data) > MaxDataLength {
		panic(fmt.Sprintf("ratp: %d bytes of data exceed a segment", len(data)))
	}
	if len(data) > 0 {
		length = uint8(len(data))
	}
	return &Segment{
		Header: Header{
			Synch:    Synch,
			Control:  control,
			Length:   length,
			Checksum: util.HeaderChecksum(uint8(control), length),
		},
		Data: data,
	}
}

// Serialize encodes the header and, when present, the payload and its CRC.
// Both checksums are recomputed.
func (s *Segment) Serialize() []byte {
	s.Header.Synch = Synch
	s.Header.Checksum = util.HeaderChecksum(uint8(s.Header.Control), s.Header.Length)
	size := HeaderLength
	if s.Header.HasPayload() {
		size += int(s.Header.Length) + ChecksumLength
	}
	buf := make([]byte, size)
	buf[0] = s.Header.Synch
	buf[1] = uint8(s.Header.Control)
	buf[2] = s.Header.Length
	buf[3] = s.Header.Checksum
	if s.Header.HasPayload() {
		end := HeaderLength + int(s.Header.Length)
		copy(buf[HeaderLength:end], s.Data)
		binary.BigEndian.PutUint16(buf[end:], util.Crc16(buf[HeaderLength:end]))
	}
	return buf
}

// Payload returns the user data carried by the segment.
func (s *Segment) Payload() []byte {
	if s.Header.Control.So() {
		return []byte{s.Header.Length}
	}
	if s.Header.HasPayload() {
		return s.Data
	}
	return nil
}

// Occupied reports whether the segment has to be acknowledged, i.e. it
// takes the retransmission slot.
func (s *Segment) Occupied() bool {
	return s.Header.HasData() || s.Header.Control&(SYN|RST|FIN) != 0
}

func (s *Segment) String() string {
	return fmt.Sprintf("<%s len=%d>", s.Header.Control.String(), s.Header.Length)
}
