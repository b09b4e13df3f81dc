// Package serialization encodes pskt documents and finalized transactions
// in the protocol buffers wire format, so cosigners can exchange them over
// any byte channel.
//
// Messages are hand-encoded with protowire. Field numbers are stable: new
// fields get new numbers and decoders skip fields they do not know.
package serialization

import (
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// ErrMalformed is returned when a message cannot be decoded
var ErrMalformed = errors.New("malformed message")

type field struct {
	number protowire.Number
	typ    protowire.Type
	varint uint64
	bytes  []byte
}

// parseFields splits message into its fields. Fields of wire types this
// package never writes are skipped.
func parseFields(message []byte) ([]field, error) {
	var fields []field
	for len(message) > 0 {
		number, typ, n := protowire.ConsumeTag(message)
		if n < 0 {
			return nil, errors.Wrapf(ErrMalformed, "invalid tag: %s", protowire.ParseError(n))
		}
		message = message[n:]

		parsed := field{number: number, typ: typ}
		switch typ {
		case protowire.VarintType:
			parsed.varint, n = protowire.ConsumeVarint(message)
		case protowire.BytesType:
			parsed.bytes, n = protowire.ConsumeBytes(message)
		default:
			n = protowire.ConsumeFieldValue(number, typ, message)
		}
		if n < 0 {
			return nil, errors.Wrapf(ErrMalformed, "invalid value of field %d: %s", number, protowire.ParseError(n))
		}
		message = message[n:]

		if typ == protowire.VarintType || typ == protowire.BytesType {
			fields = append(fields, parsed)
		}
	}
	return fields, nil
}

func (f *field) uint64() (uint64, error) {
	if f.typ != protowire.VarintType {
		return 0, errors.Wrapf(ErrMalformed, "field %d is not a varint", f.number)
	}
	return f.varint, nil
}

func (f *field) uint32() (uint32, error) {
	value, err := f.uint64()
	if err != nil {
		return 0, err
	}
	if value > 0xffffffff {
		return 0, errors.Wrapf(ErrMalformed, "field %d overflows 32 bits", f.number)
	}
	return uint32(value), nil
}

func (f *field) uint16() (uint16, error) {
	value, err := f.uint64()
	if err != nil {
		return 0, err
	}
	if value > 0xffff {
		return 0, errors.Wrapf(ErrMalformed, "field %d overflows 16 bits", f.number)
	}
	return uint16(value), nil
}

func (f *field) uint8() (uint8, error) {
	value, err := f.uint64()
	if err != nil {
		return 0, err
	}
	if value > 0xff {
		return 0, errors.Wrapf(ErrMalformed, "field %d overflows 8 bits", f.number)
	}
	return uint8(value), nil
}

func (f *field) bool() (bool, error) {
	value, err := f.uint64()
	if err != nil {
		return false, err
	}
	return value != 0, nil
}

// copyBytes returns a copy of the field's bytes that does not alias the
// decoded message.
func (f *field) copyBytes() ([]byte, error) {
	if f.typ != protowire.BytesType {
		return nil, errors.Wrapf(ErrMalformed, "field %d is not length delimited", f.number)
	}
	return append([]byte{}, f.bytes...), nil
}

func (f *field) message() ([]field, error) {
	if f.typ != protowire.BytesType {
		return nil, errors.Wrapf(ErrMalformed, "field %d is not a message", f.number)
	}
	return parseFields(f.bytes)
}

func appendVarint(b []byte, number protowire.Number, value uint64) []byte {
	b = protowire.AppendTag(b, number, protowire.VarintType)
	return protowire.AppendVarint(b, value)
}

func appendBool(b []byte, number protowire.Number, value bool) []byte {
	return appendVarint(b, number, protowire.EncodeBool(value))
}

func appendBytes(b []byte, number protowire.Number, value []byte) []byte {
	b = protowire.AppendTag(b, number, protowire.BytesType)
	return protowire.AppendBytes(b, value)
}
