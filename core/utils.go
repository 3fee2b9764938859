/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package core

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"reflect"
	"sort"
	"strconv"

	"github.com/herryqg/pdf-parser/common"
)

const traceMaxDepth = 20

// checkBounds verifies slice[a:b] is valid for a slice of length sliceLen.
func checkBounds(sliceLen, a, b int) error {
	if a < 0 || a > sliceLen {
		return errors.New("slice index a out of bounds")
	}
	if b < a {
		return errors.New("invalid slice index b < a")
	}
	if b > sliceLen {
		return errors.New("slice index b out of bounds")
	}
	return nil
}

// TraceToDirectObject resolves indirect objects to their direct content,
// recursing through PdfIndirectObject wrappers only (references are
// resolved by the Document before objects reach this layer).
func TraceToDirectObject(obj PdfObject) PdfObject {
	iobj, isIndirect := obj.(*PdfIndirectObject)
	depth := 0
	for isIndirect {
		obj = iobj.PdfObject
		iobj, isIndirect = obj.(*PdfIndirectObject)
		depth++
		if depth > traceMaxDepth {
			common.Log.Error("Trace depth level beyond %d - error!", traceMaxDepth)
			return MakeNull()
		}
	}
	return obj
}

// EqualObjects reports whether obj1 and obj2 have the same contents.
func EqualObjects(obj1, obj2 PdfObject) bool {
	return equalObjects(obj1, obj2, 0)
}

func equalObjects(obj1, obj2 PdfObject, depth int) bool {
	if depth > traceMaxDepth {
		common.Log.Error("Trace depth level beyond %d - error!", traceMaxDepth)
		return false
	}
	if obj1 == nil && obj2 == nil {
		return true
	} else if obj1 == nil || obj2 == nil {
		return false
	}
	if reflect.TypeOf(obj1) != reflect.TypeOf(obj2) {
		return false
	}

	switch t1 := obj1.(type) {
	case *PdfObjectNull:
		return true
	case *PdfObjectReference:
		return *t1 == *(obj2.(*PdfObjectReference))
	case *PdfObjectName:
		return *t1 == *(obj2.(*PdfObjectName))
	case *PdfObjectString:
		return t1.val == obj2.(*PdfObjectString).val
	case *PdfObjectInteger:
		return *t1 == *(obj2.(*PdfObjectInteger))
	case *PdfObjectBool:
		return *t1 == *(obj2.(*PdfObjectBool))
	case *PdfObjectFloat:
		return *t1 == *(obj2.(*PdfObjectFloat))
	case *PdfIndirectObject:
		return equalObjects(TraceToDirectObject(obj1), TraceToDirectObject(obj2), depth+1)
	case *PdfObjectArray:
		t2 := obj2.(*PdfObjectArray)
		if len(t1.vec) != len(t2.vec) {
			return false
		}
		for i, o1 := range t1.vec {
			if !equalObjects(o1, t2.vec[i], depth+1) {
				return false
			}
		}
		return true
	case *PdfObjectDictionary:
		t2 := obj2.(*PdfObjectDictionary)
		if len(t1.dict) != len(t2.dict) {
			return false
		}
		for k, o1 := range t1.dict {
			o2, ok := t2.dict[k]
			if !ok || !equalObjects(o1, o2, depth+1) {
				return false
			}
		}
		return true
	case *PdfObjectStream:
		t2 := obj2.(*PdfObjectStream)
		return bytes.Equal(t1.Stream, t2.Stream) && equalObjects(t1.PdfObjectDictionary, t2.PdfObjectDictionary, depth+1)
	default:
		common.Log.Error("ERROR: Unknown type: %T - should never happen!", obj1)
	}
	return false
}

// ParseNumber parses a numeric object (integer or real) from a buffered
// stream, per PDF spec 7.3.3. Supports the non-conforming-but-common
// exponential notation some writers emit.
func ParseNumber(buf *bufio.Reader) (PdfObject, error) {
	isFloat := false
	allowSigns := true
	var r bytes.Buffer
	for {
		bb, err := buf.Peek(1)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch {
		case allowSigns && (bb[0] == '-' || bb[0] == '+'):
			b, _ := buf.ReadByte()
			r.WriteByte(b)
			allowSigns = false
		case IsDecimalDigit(bb[0]):
			b, _ := buf.ReadByte()
			r.WriteByte(b)
		case bb[0] == '.':
			b, _ := buf.ReadByte()
			r.WriteByte(b)
			isFloat = true
		case bb[0] == 'e' || bb[0] == 'E':
			b, _ := buf.ReadByte()
			r.WriteByte(b)
			isFloat = true
			allowSigns = true
		default:
			return finishNumber(r.String(), isFloat), nil
		}
	}
	return finishNumber(r.String(), isFloat), nil
}

func finishNumber(s string, isFloat bool) PdfObject {
	if isFloat {
		fVal, err := strconv.ParseFloat(s, 64)
		if err != nil {
			common.Log.Debug("error parsing float %q: %v; using 0.0", s, err)
			fVal = 0.0
		}
		objFloat := PdfObjectFloat(fVal)
		return &objFloat
	}
	intVal, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		common.Log.Debug("error parsing int %q: %v; using 0", s, err)
		intVal = 0
	}
	objInt := PdfObjectInteger(intVal)
	return &objInt
}

func sortedObjectNumbers(m map[int64]PdfObject) []int64 {
	nums := make([]int64, 0, len(m))
	for n := range m {
		nums = append(nums, n)
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })
	return nums
}
