/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package core

import (
	"fmt"

	"github.com/herryqg/pdf-parser/common"
)

// NewEncoderFromStream creates a StreamEncoder based on the stream's
// dictionary /Filter entry. A single filter (Flate, ASCIIHex or ASCII85,
// as a name or a one-element array) is supported; filter chains and any
// other filter are reported rather than silently passed through.
func NewEncoderFromStream(streamObj *PdfObjectStream) (StreamEncoder, error) {
	filterObj := TraceToDirectObject(streamObj.PdfObjectDictionary.Get("Filter"))
	if filterObj == nil || IsNullObject(filterObj) {
		return NewRawEncoder(), nil
	}

	method, ok := filterObj.(*PdfObjectName)
	if !ok {
		array, ok := filterObj.(*PdfObjectArray)
		if !ok {
			return nil, fmt.Errorf("filter not a Name or Array object")
		}
		if array.Len() == 0 {
			return NewRawEncoder(), nil
		}
		if array.Len() != 1 {
			return nil, fmt.Errorf("filter chains of length %d are not supported", array.Len())
		}
		filterObj = array.Get(0)
		method, ok = filterObj.(*PdfObjectName)
		if !ok {
			return nil, fmt.Errorf("filter array member not a Name object")
		}
	}

	switch *method {
	case StreamEncodingFilterNameFlate:
		return newFlateEncoderFromStream(streamObj, nil)
	case StreamEncodingFilterNameASCIIHex:
		return NewASCIIHexEncoder(), nil
	case StreamEncodingFilterNameASCII85, "A85":
		return NewASCII85Encoder(), nil
	}
	common.Log.Debug("ERROR: unsupported encoding method %q", *method)
	return nil, fmt.Errorf("unsupported encoding method (%s)", *method)
}

// DecodeStream decodes the stream data and returns the decoded bytes.
func DecodeStream(streamObj *PdfObjectStream) ([]byte, error) {
	encoder, err := NewEncoderFromStream(streamObj)
	if err != nil {
		common.Log.Debug("ERROR: stream decoding failed: %v", err)
		return nil, err
	}
	decoded, err := encoder.DecodeStream(streamObj)
	if err != nil {
		common.Log.Debug("ERROR: stream decoding failed: %v", err)
		return nil, err
	}
	return decoded, nil
}

// EncodeStream re-encodes streamObj.Stream (currently raw) using the
// filter named in its own dictionary, and updates /Length to match.
func EncodeStream(streamObj *PdfObjectStream) error {
	encoder, err := NewEncoderFromStream(streamObj)
	if err != nil {
		common.Log.Debug("stream decoding failed: %v", err)
		return err
	}

	encoded, err := encoder.EncodeBytes(streamObj.Stream)
	if err != nil {
		common.Log.Debug("stream encoding failed: %v", err)
		return err
	}

	streamObj.Stream = encoded
	streamObj.PdfObjectDictionary.Set("Length", MakeInteger(int64(len(encoded))))
	return nil
}
