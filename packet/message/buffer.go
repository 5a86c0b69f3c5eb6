package message

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// encoder writes the fixed fields of a payload. Variable-length fields
// added with putBytes are laid out contiguously after the fixed fields and
// referenced by a (size, offset) pair, offset relative to the end of the
// fixed fields. A payload using that area starts with its buffer offset:
// the envelope length plus the size of all fixed fields.
type encoder struct {
	fixed  []byte
	buffer []byte
}

func newEncoder() *encoder {
	return &encoder{}
}

// newBufferEncoder starts a payload whose fixed fields, buffer offset
// included, take fixedSize bytes.
func newBufferEncoder(fixedSize int) *encoder {
	e := &encoder{fixed: make([]byte, 0, fixedSize)}
	e.putUint16(uint16(envelopeLength + fixedSize))
	return e
}

func (e *encoder) putUint8(v uint8) {
	e.fixed = append(e.fixed, v)
}

func (e *encoder) putUint16(v uint16) {
	e.fixed = binary.BigEndian.AppendUint16(e.fixed, v)
}

func (e *encoder) putUint32(v uint32) {
	e.fixed = binary.BigEndian.AppendUint32(e.fixed, v)
}

func (e *encoder) putBytes(data []byte) {
	e.putUint16(uint16(len(data)))
	e.putUint16(uint16(len(e.buffer)))
	e.buffer = append(e.buffer, data...)
}

func (e *encoder) bytes() []byte {
	out := make([]byte, 0, len(e.fixed)+len(e.buffer))
	out = append(out, e.fixed...)
	return append(out, e.buffer...)
}

// decoder reads a payload written by encoder. The first error sticks.
type decoder struct {
	data  []byte
	pos   int
	start int
	err   error
}

func newDecoder(data []byte) *decoder {
	return &decoder{data: data, start: len(data)}
}

func newBufferDecoder(data []byte) *decoder {
	d := &decoder{data: data, start: len(data)}
	offset := int(d.getUint16())
	if d.err != nil {
		return d
	}
	start := offset - envelopeLength
	if start < 2 || start > len(data) {
		d.err = errors.Wrapf(ErrBufferOutOfRange, "buffer offset %d with %d bytes of payload", offset, len(data))
		return d
	}
	d.start = start
	return d
}

func (d *decoder) next(n int) []byte {
	if d.err != nil {
		return nil
	}
	if d.pos+n > d.start {
		d.err = errors.Wrapf(ErrShortMessage, "field at %d needs %d bytes, fixed fields end at %d", d.pos, n, d.start)
		return nil
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b
}

func (d *decoder) getUint8() uint8 {
	b := d.next(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (d *decoder) getUint16() uint16 {
	b := d.next(2)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

func (d *decoder) getUint32() uint32 {
	b := d.next(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func (d *decoder) getBytes() []byte {
	size := int(d.getUint16())
	offset := int(d.getUint16())
	if d.err != nil {
		return nil
	}
	lo := d.start + offset
	hi := lo + size
	if hi > len(d.data) {
		d.err = errors.Wrapf(ErrBufferOutOfRange, "field [%d:%d] beyond %d bytes", lo, hi, len(d.data))
		return nil
	}
	b := make([]byte, size)
	copy(b, d.data[lo:hi])
	return b
}

// rest returns everything after the fixed fields read so far.
func (d *decoder) rest() []byte {
	if d.err != nil {
		return nil
	}
	b := make([]byte, len(d.data)-d.pos)
	copy(b, d.data[d.pos:])
	return b
}
