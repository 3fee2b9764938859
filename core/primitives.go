/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package core implements the tagged PDF object model (the "PDF Object
// Store" leaf of the replacement pipeline): the primitive object types
// every other package exchanges, a parser that turns file bytes into a
// graph of those objects, and the per-object WriteString serialization
// that model.Document.Save uses to write the graph back to a PDF file.
package core

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// PdfObject is the interface every primitive PDF object implements. PDF
// objects are one of {null, bool, int, real, name, string, array,
// dictionary, stream, reference} (spec.md §9 "Tagged PDF values").
type PdfObject interface {
	// String returns a human-readable representation, for debugging/logging.
	String() string
	// WriteString returns the exact bytes the object is written as in a PDF file.
	WriteString() string
}

// PdfObjectBool represents the PDF boolean object.
type PdfObjectBool bool

// PdfObjectInteger represents the PDF integer numeric object.
type PdfObjectInteger int64

// PdfObjectFloat represents the PDF real numeric object.
type PdfObjectFloat float64

// PdfObjectString represents the PDF string object, in either literal
// "(...)" or hexadecimal "<...>" form.
type PdfObjectString struct {
	val   string
	isHex bool
}

// PdfObjectName represents the PDF name object, e.g. /TT0.
type PdfObjectName string

// PdfObjectArray represents the PDF array object.
type PdfObjectArray struct {
	vec []PdfObject
}

// PdfObjectDictionary represents the PDF dictionary object: an
// insertion-order-preserving mapping from name to value.
type PdfObjectDictionary struct {
	dict map[PdfObjectName]PdfObject
	keys []PdfObjectName
}

// PdfObjectNull represents the PDF null object.
type PdfObjectNull struct{}

// PdfObjectReference represents an indirect reference "N G R".
type PdfObjectReference struct {
	ObjectNumber     int64
	GenerationNumber int64
}

// PdfIndirectObject represents a numbered top-level object in the file
// body whose value is a direct object other than a stream.
type PdfIndirectObject struct {
	ObjectNumber     int64
	GenerationNumber int64
	PdfObject        PdfObject
}

// PdfObjectStream represents a numbered top-level stream object: a
// dictionary plus raw (possibly filter-encoded) byte content.
type PdfObjectStream struct {
	ObjectNumber     int64
	GenerationNumber int64
	*PdfObjectDictionary
	Stream []byte
}

// MakeDict creates an empty PdfObjectDictionary.
func MakeDict() *PdfObjectDictionary {
	return &PdfObjectDictionary{dict: map[PdfObjectName]PdfObject{}, keys: []PdfObjectName{}}
}

// MakeName creates a PdfObjectName from a string.
func MakeName(s string) *PdfObjectName {
	name := PdfObjectName(s)
	return &name
}

// MakeInteger creates a PdfObjectInteger from an int64.
func MakeInteger(val int64) *PdfObjectInteger {
	num := PdfObjectInteger(val)
	return &num
}

// MakeBool creates a PdfObjectBool.
func MakeBool(val bool) *PdfObjectBool {
	b := PdfObjectBool(val)
	return &b
}

// MakeArray creates a PdfObjectArray from a list of objects.
func MakeArray(objects ...PdfObject) *PdfObjectArray {
	return &PdfObjectArray{vec: append([]PdfObject{}, objects...)}
}

// MakeArrayFromIntegers creates a PdfObjectArray of PdfObjectInteger.
func MakeArrayFromIntegers(vals []int) *PdfObjectArray {
	arr := MakeArray()
	for _, v := range vals {
		arr.Append(MakeInteger(int64(v)))
	}
	return arr
}

// MakeArrayFromFloats creates a PdfObjectArray of PdfObjectFloat.
func MakeArrayFromFloats(vals []float64) *PdfObjectArray {
	arr := MakeArray()
	for _, v := range vals {
		arr.Append(MakeFloat(v))
	}
	return arr
}

// MakeFloat creates a PdfObjectFloat from a float64.
func MakeFloat(val float64) *PdfObjectFloat {
	num := PdfObjectFloat(val)
	return &num
}

// MakeString creates a literal PdfObjectString. `s` holds raw bytes, not
// necessarily valid UTF-8 (PDF strings are byte strings).
func MakeString(s string) *PdfObjectString {
	return &PdfObjectString{val: s}
}

// MakeStringFromBytes creates a literal PdfObjectString from raw bytes.
func MakeStringFromBytes(data []byte) *PdfObjectString {
	return MakeString(string(data))
}

// MakeHexString creates a PdfObjectString that writes in "<...>" form.
func MakeHexString(s string) *PdfObjectString {
	return &PdfObjectString{val: s, isHex: true}
}

// MakeNull creates a PdfObjectNull.
func MakeNull() *PdfObjectNull {
	return &PdfObjectNull{}
}

// MakeIndirectObject wraps a direct object as a (not yet numbered)
// indirect object.
func MakeIndirectObject(obj PdfObject) *PdfIndirectObject {
	return &PdfIndirectObject{PdfObject: obj}
}

// MakeStream creates a PdfObjectStream with the given contents, encoded
// with `encoder` (raw/unfiltered if nil).
func MakeStream(contents []byte, encoder StreamEncoder) (*PdfObjectStream, error) {
	if encoder == nil {
		encoder = NewRawEncoder()
	}
	stream := &PdfObjectStream{PdfObjectDictionary: encoder.MakeStreamDict()}
	encoded, err := encoder.EncodeBytes(contents)
	if err != nil {
		return nil, err
	}
	stream.PdfObjectDictionary.Set("Length", MakeInteger(int64(len(encoded))))
	stream.Stream = encoded
	return stream, nil
}

// String returns "true" or "false".
func (b *PdfObjectBool) String() string { return b.WriteString() }

// WriteString outputs the boolean as written to a PDF file.
func (b *PdfObjectBool) WriteString() string {
	if *b {
		return "true"
	}
	return "false"
}

func (n *PdfObjectInteger) String() string { return fmt.Sprintf("%d", int64(*n)) }

// WriteString outputs the integer as written to a PDF file.
func (n *PdfObjectInteger) WriteString() string { return strconv.FormatInt(int64(*n), 10) }

func (f *PdfObjectFloat) String() string { return fmt.Sprintf("%f", float64(*f)) }

// WriteString outputs the float as written to a PDF file.
func (f *PdfObjectFloat) WriteString() string {
	return strconv.FormatFloat(float64(*f), 'f', -1, 64)
}

// String returns the raw string content.
func (str *PdfObjectString) String() string { return str.val }

// Str returns the raw string content. Defined alongside String to make
// clear this is the underlying bytes, not a debug representation.
func (str *PdfObjectString) Str() string { return str.val }

// Bytes returns the string's content as raw bytes.
func (str *PdfObjectString) Bytes() []byte { return []byte(str.val) }

// IsHex reports whether the string writes in hexadecimal "<...>" form.
func (str *PdfObjectString) IsHex() bool { return str.isHex }

// WriteString outputs the string as written to a PDF file, escaping PDF
// literal-string metacharacters as needed.
func (str *PdfObjectString) WriteString() string {
	var out bytes.Buffer
	if str.isHex {
		out.WriteString("<")
		out.WriteString(hex.EncodeToString(str.Bytes()))
		out.WriteString(">")
		return out.String()
	}

	escapes := map[byte]string{
		'\n': `\n`, '\r': `\r`, '\t': `\t`, '\b': `\b`, '\f': `\f`,
		'(': `\(`, ')': `\)`, '\\': `\\`,
	}
	out.WriteString("(")
	for i := 0; i < len(str.val); i++ {
		c := str.val[i]
		if esc, ok := escapes[c]; ok {
			out.WriteString(esc)
		} else if c < 0x20 || c > 0x7e {
			fmt.Fprintf(&out, `\%03o`, c)
		} else {
			out.WriteByte(c)
		}
	}
	out.WriteString(")")
	return out.String()
}

// String returns the name without its leading slash.
func (name *PdfObjectName) String() string { return string(*name) }

// WriteString outputs the name as written to a PDF file, escaping
// delimiters and non-printable bytes as "#xx".
func (name *PdfObjectName) WriteString() string {
	var out bytes.Buffer
	out.WriteString("/")
	for i := 0; i < len(*name); i++ {
		c := (*name)[i]
		if !IsPrintable(c) || c == '#' || IsDelimiter(c) {
			fmt.Fprintf(&out, "#%.2x", c)
		} else {
			out.WriteByte(c)
		}
	}
	return out.String()
}

// Elements returns the array's elements.
func (array *PdfObjectArray) Elements() []PdfObject {
	if array == nil {
		return nil
	}
	return array.vec
}

// Len returns the number of elements in the array.
func (array *PdfObjectArray) Len() int {
	if array == nil {
		return 0
	}
	return len(array.vec)
}

// Get returns the i-th element, or nil if out of range.
func (array *PdfObjectArray) Get(i int) PdfObject {
	if array == nil || i < 0 || i >= len(array.vec) {
		return nil
	}
	return array.vec[i]
}

// Append appends objects to the array.
func (array *PdfObjectArray) Append(objects ...PdfObject) {
	array.vec = append(array.vec, objects...)
}

// ToFloat64Array converts every element to a float64, failing if any
// element is not numeric.
func (array *PdfObjectArray) ToFloat64Array() ([]float64, error) {
	vals := make([]float64, 0, array.Len())
	for _, obj := range array.Elements() {
		v, err := GetNumberAsFloat(obj)
		if err != nil {
			return nil, ErrTypeError
		}
		vals = append(vals, v)
	}
	return vals, nil
}

// String describes the array for debugging.
func (array *PdfObjectArray) String() string {
	var parts []string
	for _, o := range array.Elements() {
		parts = append(parts, o.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// WriteString outputs the array as written to a PDF file.
func (array *PdfObjectArray) WriteString() string {
	var b strings.Builder
	b.WriteString("[")
	for i, o := range array.Elements() {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(o.WriteString())
	}
	b.WriteString("]")
	return b.String()
}

// GetNumberAsFloat returns obj's numeric value, erroring if it is
// neither PdfObjectInteger nor PdfObjectFloat.
func GetNumberAsFloat(obj PdfObject) (float64, error) {
	switch t := obj.(type) {
	case *PdfObjectFloat:
		return float64(*t), nil
	case *PdfObjectInteger:
		return float64(*t), nil
	}
	return 0, ErrNotANumber
}

// IsNullObject reports whether obj is a PdfObjectNull.
func IsNullObject(obj PdfObject) bool {
	_, isNull := obj.(*PdfObjectNull)
	return isNull
}

// Merge copies every key/value from `another` into d, overwriting on
// key collision. Returns d for chaining.
func (d *PdfObjectDictionary) Merge(another *PdfObjectDictionary) *PdfObjectDictionary {
	if another != nil {
		for _, key := range another.Keys() {
			d.Set(key, another.Get(key))
		}
	}
	return d
}

// String describes the dictionary for debugging.
func (d *PdfObjectDictionary) String() string {
	var b strings.Builder
	b.WriteString("Dict(")
	for _, k := range d.keys {
		fmt.Fprintf(&b, "%q: %s, ", string(k), d.dict[k].String())
	}
	b.WriteString(")")
	return b.String()
}

// WriteString outputs the dictionary as written to a PDF file.
func (d *PdfObjectDictionary) WriteString() string {
	var b strings.Builder
	b.WriteString("<<")
	for _, k := range d.keys {
		b.WriteString(k.WriteString())
		b.WriteString(" ")
		b.WriteString(d.dict[k].WriteString())
		b.WriteString(" ")
	}
	b.WriteString(">>")
	return b.String()
}

// Set sets key -> val, overwriting any existing entry but preserving
// its original position.
func (d *PdfObjectDictionary) Set(key PdfObjectName, val PdfObject) {
	if _, found := d.dict[key]; !found {
		d.keys = append(d.keys, key)
	}
	d.dict[key] = val
}

// Get returns the value for key, or nil if unset.
func (d *PdfObjectDictionary) Get(key PdfObjectName) PdfObject {
	return d.dict[key]
}

// Keys returns the dictionary's keys in insertion order.
func (d *PdfObjectDictionary) Keys() []PdfObjectName {
	if d == nil {
		return nil
	}
	return d.keys
}

// Remove deletes key from the dictionary, if present.
func (d *PdfObjectDictionary) Remove(key PdfObjectName) {
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			delete(d.dict, key)
			return
		}
	}
}

// String describes the reference for debugging.
func (ref *PdfObjectReference) String() string {
	return fmt.Sprintf("Ref(%d %d)", ref.ObjectNumber, ref.GenerationNumber)
}

// WriteString outputs the reference as written to a PDF file.
func (ref *PdfObjectReference) WriteString() string {
	return fmt.Sprintf("%d %d R", ref.ObjectNumber, ref.GenerationNumber)
}

// String describes the indirect object for debugging.
func (ind *PdfIndirectObject) String() string {
	return fmt.Sprintf("IObject:%d", ind.ObjectNumber)
}

// WriteString outputs a reference to the indirect object (the object
// body itself is written separately by the Writer).
func (ind *PdfIndirectObject) WriteString() string {
	return fmt.Sprintf("%d %d R", ind.ObjectNumber, ind.GenerationNumber)
}

// String describes the stream object for debugging.
func (stream *PdfObjectStream) String() string {
	return fmt.Sprintf("Stream %d: %s", stream.ObjectNumber, stream.PdfObjectDictionary)
}

// WriteString outputs a reference to the stream object.
func (stream *PdfObjectStream) WriteString() string {
	return fmt.Sprintf("%d %d R", stream.ObjectNumber, stream.GenerationNumber)
}

// String returns "null".
func (null *PdfObjectNull) String() string { return "null" }

// WriteString outputs the null object.
func (null *PdfObjectNull) WriteString() string { return "null" }

var (
	// ErrTypeError is returned when a PdfObject has an unexpected concrete type.
	ErrTypeError = errors.New("pdf: type check error")
	// ErrNotANumber is returned when a numeric value was expected.
	ErrNotANumber = errors.New("pdf: not a number")
	// ErrRangeError is returned when a numeric or index value is out of range.
	ErrRangeError = errors.New("pdf: range check error")
)

// GetBoolVal returns the value of a *PdfObjectBool; any other object,
// indirect objects included, yields (false, false).
func GetBoolVal(obj PdfObject) (bool, bool) {
	b, ok := obj.(*PdfObjectBool)
	if !ok {
		return false, false
	}
	return bool(*b), true
}

// GetIntVal returns a PdfObject's int value.
func GetIntVal(obj PdfObject) (int, bool) {
	n, ok := obj.(*PdfObjectInteger)
	if !ok {
		return 0, false
	}
	return int(*n), true
}

// GetStringVal returns a PdfObjectString's content.
func GetStringVal(obj PdfObject) (string, bool) {
	s, ok := obj.(*PdfObjectString)
	if !ok {
		return "", false
	}
	return s.Str(), true
}

// GetNameVal returns a PdfObjectName's content.
func GetNameVal(obj PdfObject) (string, bool) {
	n, ok := obj.(*PdfObjectName)
	if !ok {
		return "", false
	}
	return string(*n), true
}

// GetArray type-asserts obj as a *PdfObjectArray.
func GetArray(obj PdfObject) (*PdfObjectArray, bool) {
	a, ok := obj.(*PdfObjectArray)
	return a, ok
}

// GetDict type-asserts obj as a *PdfObjectDictionary.
func GetDict(obj PdfObject) (*PdfObjectDictionary, bool) {
	d, ok := obj.(*PdfObjectDictionary)
	return d, ok
}

// GetStream type-asserts obj as a *PdfObjectStream.
func GetStream(obj PdfObject) (*PdfObjectStream, bool) {
	s, ok := obj.(*PdfObjectStream)
	return s, ok
}

