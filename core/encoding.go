/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package core

// Implement encoders for the stream filters that appear on content
// streams and embedded font programs. Currently supported:
// - Raw (Identity)
// - FlateDecode
// - ASCII Hex
// - ASCII85
//
// Image-stream filters (DCT/CCITTFax/JBIG2/JPX/LZW/RunLength) are out of
// scope: a text-replacement tool never touches image XObjects.

import (
	"bytes"
	"compress/zlib"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/herryqg/pdf-parser/common"
)

// Stream encoding filter names.
const (
	StreamEncodingFilterNameFlate    = "FlateDecode"
	StreamEncodingFilterNameASCIIHex = "ASCIIHexDecode"
	StreamEncodingFilterNameASCII85  = "ASCII85Decode"
	StreamEncodingFilterNameRaw      = "Raw"
)

// ErrUnsupportedEncodingParameters is returned when an encoder is asked
// to produce output with parameters it cannot support.
var ErrUnsupportedEncodingParameters = errors.New("pdf: unsupported encoding parameters")

// StreamEncoder represents the interface for all PDF stream encoders.
type StreamEncoder interface {
	GetFilterName() string
	MakeStreamDict() *PdfObjectDictionary

	EncodeBytes(data []byte) ([]byte, error)
	DecodeBytes(encoded []byte) ([]byte, error)
	DecodeStream(streamObj *PdfObjectStream) ([]byte, error)
}

// FlateEncoder represents Flate (zlib/deflate) encoding. Predictors are
// not supported: content streams and font programs are never
// column-predicted the way sample-based image streams are.
type FlateEncoder struct{}

// NewFlateEncoder makes a new flate encoder.
func NewFlateEncoder() *FlateEncoder {
	return &FlateEncoder{}
}

// GetFilterName returns the name of the encoding filter.
func (enc *FlateEncoder) GetFilterName() string {
	return StreamEncodingFilterNameFlate
}

// MakeStreamDict makes a new instance of an encoding dictionary for a stream object.
func (enc *FlateEncoder) MakeStreamDict() *PdfObjectDictionary {
	dict := MakeDict()
	dict.Set("Filter", MakeName(enc.GetFilterName()))
	return dict
}

// newFlateEncoderFromStream rejects any DecodeParms requiring a
// predictor, since nothing in this module's domain produces those.
func newFlateEncoderFromStream(streamObj *PdfObjectStream, decodeParams *PdfObjectDictionary) (*FlateEncoder, error) {
	encoder := NewFlateEncoder()

	encDict := streamObj.PdfObjectDictionary
	if encDict == nil {
		return encoder, nil
	}

	if decodeParams == nil {
		obj := TraceToDirectObject(encDict.Get("DecodeParms"))
		switch t := obj.(type) {
		case *PdfObjectArray:
			if t.Len() != 1 {
				return nil, errors.New("pdf: DecodeParms array length != 1")
			}
			obj = TraceToDirectObject(t.Get(0))
			if d, ok := obj.(*PdfObjectDictionary); ok {
				decodeParams = d
			}
		case *PdfObjectDictionary:
			decodeParams = t
		case *PdfObjectNull, nil:
		default:
			return nil, fmt.Errorf("invalid DecodeParms (%T)", obj)
		}
	}
	if decodeParams == nil {
		return encoder, nil
	}
	if predictor, ok := decodeParams.Get("Predictor").(*PdfObjectInteger); ok && int(*predictor) > 1 {
		return nil, fmt.Errorf("pdf: predictor %d not supported for content/font streams", int(*predictor))
	}
	return encoder, nil
}

// DecodeBytes decodes a slice of Flate encoded bytes and returns the result.
func (enc *FlateEncoder) DecodeBytes(encoded []byte) ([]byte, error) {
	if len(encoded) == 0 {
		return []byte{}, nil
	}
	r, err := zlib.NewReader(bytes.NewReader(encoded))
	if err != nil {
		common.Log.Debug("flate decode error: %v", err)
		return nil, err
	}
	defer r.Close()

	var outBuf bytes.Buffer
	if _, err := outBuf.ReadFrom(r); err != nil {
		return nil, err
	}
	return outBuf.Bytes(), nil
}

// DecodeStream decodes a FlateEncoded stream object and gives back decoded bytes.
func (enc *FlateEncoder) DecodeStream(streamObj *PdfObjectStream) ([]byte, error) {
	return enc.DecodeBytes(streamObj.Stream)
}

// EncodeBytes flate-compresses data.
func (enc *FlateEncoder) EncodeBytes(data []byte) ([]byte, error) {
	var b bytes.Buffer
	w := zlib.NewWriter(&b)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// ASCIIHexEncoder implements ASCII hex encoder/decoder.
type ASCIIHexEncoder struct{}

// NewASCIIHexEncoder makes a new ASCII hex encoder.
func NewASCIIHexEncoder() *ASCIIHexEncoder {
	return &ASCIIHexEncoder{}
}

// GetFilterName returns the name of the encoding filter.
func (enc *ASCIIHexEncoder) GetFilterName() string {
	return StreamEncodingFilterNameASCIIHex
}

// MakeStreamDict makes a new instance of an encoding dictionary for a stream object.
func (enc *ASCIIHexEncoder) MakeStreamDict() *PdfObjectDictionary {
	dict := MakeDict()
	dict.Set("Filter", MakeName(enc.GetFilterName()))
	return dict
}

// DecodeBytes decodes a slice of ASCII hex encoded bytes and returns the result.
func (enc *ASCIIHexEncoder) DecodeBytes(encoded []byte) ([]byte, error) {
	bufReader := bytes.NewReader(encoded)
	var inb []byte
	for {
		b, err := bufReader.ReadByte()
		if err != nil {
			return nil, err
		}
		if b == '>' {
			break
		}
		if IsWhiteSpace(b) {
			continue
		}
		if (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F') || (b >= '0' && b <= '9') {
			inb = append(inb, b)
		} else {
			return nil, fmt.Errorf("invalid ascii hex character (%c)", b)
		}
	}
	if len(inb)%2 == 1 {
		inb = append(inb, '0')
	}
	outb := make([]byte, hex.DecodedLen(len(inb)))
	if _, err := hex.Decode(outb, inb); err != nil {
		return nil, err
	}
	return outb, nil
}

// DecodeStream implements ASCII hex decoding.
func (enc *ASCIIHexEncoder) DecodeStream(streamObj *PdfObjectStream) ([]byte, error) {
	return enc.DecodeBytes(streamObj.Stream)
}

// EncodeBytes ASCII hex encodes the passed in slice of bytes.
func (enc *ASCIIHexEncoder) EncodeBytes(data []byte) ([]byte, error) {
	var encoded bytes.Buffer
	for _, b := range data {
		fmt.Fprintf(&encoded, "%.2X ", b)
	}
	encoded.WriteByte('>')
	return encoded.Bytes(), nil
}

// ASCII85Encoder implements ASCII85 encoder/decoder.
type ASCII85Encoder struct{}

// NewASCII85Encoder makes a new ASCII85 encoder.
func NewASCII85Encoder() *ASCII85Encoder {
	return &ASCII85Encoder{}
}

// GetFilterName returns the name of the encoding filter.
func (enc *ASCII85Encoder) GetFilterName() string {
	return StreamEncodingFilterNameASCII85
}

// MakeStreamDict makes a new instance of an encoding dictionary for a stream object.
func (enc *ASCII85Encoder) MakeStreamDict() *PdfObjectDictionary {
	dict := MakeDict()
	dict.Set("Filter", MakeName(enc.GetFilterName()))
	return dict
}

// DecodeBytes decodes byte array with ASCII85 (5 ASCII chars -> 4 raw bytes).
func (enc *ASCII85Encoder) DecodeBytes(encoded []byte) ([]byte, error) {
	var decoded []byte
	i := 0
	eod := false

	for i < len(encoded) && !eod {
		codes := [5]byte{0, 0, 0, 0, 0}
		spaces := 0
		j := 0
		toWrite := 4
		for j < 5+spaces {
			if i+j == len(encoded) {
				break
			}
			code := encoded[i+j]
			if IsWhiteSpace(code) {
				spaces++
				j++
				continue
			} else if code == '~' && i+j+1 < len(encoded) && encoded[i+j+1] == '>' {
				toWrite = (j - spaces) - 1
				if toWrite < 0 {
					toWrite = 0
				}
				eod = true
				break
			} else if code >= '!' && code <= 'u' {
				code -= '!'
			} else if code == 'z' && j-spaces == 0 {
				toWrite = 4
				j++
				break
			} else {
				return nil, errors.New("pdf: invalid ascii85 code encountered")
			}
			codes[j-spaces] = code
			j++
		}
		i += j

		for m := toWrite + 1; m < 5; m++ {
			codes[m] = 84
		}

		value := uint32(codes[0])*85*85*85*85 + uint32(codes[1])*85*85*85 + uint32(codes[2])*85*85 + uint32(codes[3])*85 + uint32(codes[4])

		decodedBytes := []byte{
			byte((value >> 24) & 0xff),
			byte((value >> 16) & 0xff),
			byte((value >> 8) & 0xff),
			byte(value & 0xff),
		}
		decoded = append(decoded, decodedBytes[:toWrite]...)
	}

	return decoded, nil
}

// DecodeStream implements ASCII85 stream decoding.
func (enc *ASCII85Encoder) DecodeStream(streamObj *PdfObjectStream) ([]byte, error) {
	return enc.DecodeBytes(streamObj.Stream)
}

// base256Tobase85 converts a base-256 number to 5 base-85 digits.
// 85^5 = 4437053125 > 256^4 = 4294967296, so 5 digits always suffice.
func (enc *ASCII85Encoder) base256Tobase85(base256val uint32) [5]byte {
	base85 := [5]byte{0, 0, 0, 0, 0}
	remainder := base256val
	for i := 0; i < 5; i++ {
		divider := uint32(1)
		for j := 0; j < 4-i; j++ {
			divider *= 85
		}
		val := remainder / divider
		remainder = remainder % divider
		base85[i] = byte(val)
	}
	return base85
}

// EncodeBytes encodes data into ASCII85 encoded format.
func (enc *ASCII85Encoder) EncodeBytes(data []byte) ([]byte, error) {
	var encoded bytes.Buffer
	for i := 0; i < len(data); i += 4 {
		b1 := data[i]
		n := 1

		b2 := byte(0)
		if i+1 < len(data) {
			b2 = data[i+1]
			n++
		}
		b3 := byte(0)
		if i+2 < len(data) {
			b3 = data[i+2]
			n++
		}
		b4 := byte(0)
		if i+3 < len(data) {
			b4 = data[i+3]
			n++
		}

		base256 := (uint32(b1) << 24) | (uint32(b2) << 16) | (uint32(b3) << 8) | uint32(b4)
		if base256 == 0 {
			encoded.WriteByte('z')
		} else {
			base85vals := enc.base256Tobase85(base256)
			for _, val := range base85vals[:n+1] {
				encoded.WriteByte(val + '!')
			}
		}
	}
	encoded.WriteString("~>")
	return encoded.Bytes(), nil
}

// RawEncoder implements Raw encoder/decoder (no encoding, pass through).
type RawEncoder struct{}

// NewRawEncoder returns a new instance of RawEncoder.
func NewRawEncoder() *RawEncoder {
	return &RawEncoder{}
}

// GetFilterName returns the name of the encoding filter.
func (enc *RawEncoder) GetFilterName() string {
	return StreamEncodingFilterNameRaw
}

// MakeStreamDict makes a new instance of an encoding dictionary for a stream object.
func (enc *RawEncoder) MakeStreamDict() *PdfObjectDictionary {
	return MakeDict()
}

// DecodeBytes returns the passed in slice of bytes unchanged.
func (enc *RawEncoder) DecodeBytes(encoded []byte) ([]byte, error) {
	return encoded, nil
}

// DecodeStream returns the passed in stream's bytes unchanged.
func (enc *RawEncoder) DecodeStream(streamObj *PdfObjectStream) ([]byte, error) {
	return streamObj.Stream, nil
}

// EncodeBytes returns the passed in slice of bytes unchanged.
func (enc *RawEncoder) EncodeBytes(data []byte) ([]byte, error) {
	return data, nil
}
