/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package core

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/herryqg/pdf-parser/common"
)

var rePdfVersion = regexp.MustCompile(`%PDF-(\d)\.(\d)`)
var reEOF = regexp.MustCompile("%%EOF?")
var reXrefTable = regexp.MustCompile(`\s*xref\s*`)
var reStartXref = regexp.MustCompile(`startx?ref\s*(\d+)`)
var reNumeric = regexp.MustCompile(`^[\+-.]*([0-9.]+)`)
var reExponential = regexp.MustCompile(`^[\+-.]*([0-9.]+)[eE][\+-.]*([0-9.]+)`)
var reReference = regexp.MustCompile(`^\s*[-]*(\d+)\s+(\d+)\s+R`)
var reIndirectObject = regexp.MustCompile(`(\d+)\s+(\d+)\s+obj`)
var reXrefSubsection = regexp.MustCompile(`(\d+)\s+(\d+)\s*$`)
var reXrefEntry = regexp.MustCompile(`(\d+)\s+(\d+)\s+([nf])\s*$`)

// XrefObject locates one object's body within the file by byte offset.
// Object streams and cross-reference streams (PDF 1.5+ compressed
// xrefs) are not represented: a classic cross-reference table is all
// this module's target documents ever carry.
type XrefObject struct {
	ObjectNumber int
	Offset       int64
	Generation   int
}

// XrefTable is the parsed classic cross-reference table.
type XrefTable struct {
	ObjectMap map[int]XrefObject
}

// ErrEncrypted is returned by NewParser when the document's trailer carries
// an /Encrypt entry. Decrypting and re-encrypting a PDF is out of scope;
// encrypted input is always rejected rather than silently mis-handled.
var ErrEncrypted = errors.New("pdf: document is encrypted, unsupported")

// Version represents a version of a PDF standard.
type Version struct {
	Major int
	Minor int
}

// String returns the PDF version as "major.minor".
func (v Version) String() string { return fmt.Sprintf("%d.%d", v.Major, v.Minor) }

// PdfParser parses a PDF file and provides access to its object graph by
// object number.
type PdfParser struct {
	version Version

	rs       io.ReadSeeker
	reader   *bufio.Reader
	fileSize int64
	xrefs    XrefTable
	trailer  *PdfObjectDictionary

	objCache map[int]PdfObject
}

// PdfVersion returns the version of the PDF file.
func (parser *PdfParser) PdfVersion() Version { return parser.version }

// GetTrailer returns the PDF's trailer dictionary.
func (parser *PdfParser) GetTrailer() *PdfObjectDictionary { return parser.trailer }

// GetXrefTable returns the PDF's cross-reference table.
func (parser *PdfParser) GetXrefTable() XrefTable { return parser.xrefs }

func (parser *PdfParser) skipSpaces() (int, error) {
	cnt := 0
	for {
		b, err := parser.reader.ReadByte()
		if err != nil {
			return cnt, err
		}
		if IsWhiteSpace(b) {
			cnt++
		} else {
			parser.reader.UnreadByte()
			break
		}
	}
	return cnt, nil
}

func (parser *PdfParser) skipComments() error {
	if _, err := parser.skipSpaces(); err != nil {
		return err
	}
	isFirst := true
	for {
		bb, err := parser.reader.Peek(1)
		if err != nil {
			return err
		}
		if isFirst && bb[0] != '%' {
			return nil
		}
		isFirst = false
		if bb[0] != '\r' && bb[0] != '\n' {
			parser.reader.ReadByte()
		} else {
			break
		}
	}
	return parser.skipComments()
}

func (parser *PdfParser) readComment() (string, error) {
	var r bytes.Buffer
	if _, err := parser.skipSpaces(); err != nil {
		return r.String(), err
	}
	isFirst := true
	for {
		bb, err := parser.reader.Peek(1)
		if err != nil {
			return r.String(), err
		}
		if isFirst && bb[0] != '%' {
			return r.String(), errors.New("comment should start with %")
		}
		isFirst = false
		if bb[0] != '\r' && bb[0] != '\n' {
			b, _ := parser.reader.ReadByte()
			r.WriteByte(b)
		} else {
			break
		}
	}
	return r.String(), nil
}

func (parser *PdfParser) readTextLine() (string, error) {
	var r bytes.Buffer
	for {
		bb, err := parser.reader.Peek(1)
		if err != nil {
			return r.String(), err
		}
		if bb[0] != '\r' && bb[0] != '\n' {
			b, _ := parser.reader.ReadByte()
			r.WriteByte(b)
		} else {
			break
		}
	}
	return r.String(), nil
}

func (parser *PdfParser) parseName() (PdfObjectName, error) {
	var r bytes.Buffer
	nameStarted := false
	for {
		bb, err := parser.reader.Peek(1)
		if err == io.EOF {
			break
		}
		if err != nil {
			return PdfObjectName(r.String()), err
		}

		if !nameStarted {
			if bb[0] == '/' {
				nameStarted = true
				parser.reader.ReadByte()
			} else if bb[0] == '%' {
				parser.readComment()
				parser.skipSpaces()
			} else {
				return PdfObjectName(r.String()), fmt.Errorf("invalid name: (%c)", bb[0])
			}
		} else {
			if IsWhiteSpace(bb[0]) {
				break
			} else if IsDelimiter(bb[0]) {
				break
			} else if bb[0] == '#' {
				hexcode, err := parser.reader.Peek(3)
				if err != nil {
					return PdfObjectName(r.String()), err
				}
				code, err := hex.DecodeString(string(hexcode[1:3]))
				if err != nil {
					r.WriteByte('#')
					parser.reader.Discard(1)
					continue
				}
				parser.reader.Discard(3)
				r.Write(code)
			} else {
				b, _ := parser.reader.ReadByte()
				r.WriteByte(b)
			}
		}
	}
	return PdfObjectName(r.String()), nil
}

func (parser *PdfParser) parseNumber() (PdfObject, error) {
	return ParseNumber(parser.reader)
}

func (parser *PdfParser) parseString() (*PdfObjectString, error) {
	parser.reader.ReadByte()

	var r bytes.Buffer
	count := 1
	for {
		bb, err := parser.reader.Peek(1)
		if err != nil {
			return MakeString(r.String()), err
		}

		if bb[0] == '\\' {
			parser.reader.ReadByte()
			b, err := parser.reader.ReadByte()
			if err != nil {
				return MakeString(r.String()), err
			}

			if IsOctalDigit(b) {
				bb, err := parser.reader.Peek(2)
				if err != nil {
					return MakeString(r.String()), err
				}
				var numeric []byte
				numeric = append(numeric, b)
				for _, val := range bb {
					if IsOctalDigit(val) {
						numeric = append(numeric, val)
					} else {
						break
					}
				}
				parser.reader.Discard(len(numeric) - 1)
				code, err := strconv.ParseUint(string(numeric), 8, 32)
				if err != nil {
					return MakeString(r.String()), err
				}
				r.WriteByte(byte(code))
				continue
			}

			switch b {
			case 'n':
				r.WriteRune('\n')
			case 'r':
				r.WriteRune('\r')
			case 't':
				r.WriteRune('\t')
			case 'b':
				r.WriteRune('\b')
			case 'f':
				r.WriteRune('\f')
			case '(':
				r.WriteRune('(')
			case ')':
				r.WriteRune(')')
			case '\\':
				r.WriteRune('\\')
			}
			continue
		} else if bb[0] == '(' {
			count++
		} else if bb[0] == ')' {
			count--
			if count == 0 {
				parser.reader.ReadByte()
				break
			}
		}

		b, _ := parser.reader.ReadByte()
		r.WriteByte(b)
	}

	return MakeString(r.String()), nil
}

func (parser *PdfParser) parseHexString() (*PdfObjectString, error) {
	parser.reader.ReadByte()

	var r bytes.Buffer
	for {
		bb, err := parser.reader.Peek(1)
		if err != nil {
			return MakeString(""), err
		}
		if bb[0] == '>' {
			parser.reader.ReadByte()
			break
		}
		b, _ := parser.reader.ReadByte()
		if !IsWhiteSpace(b) {
			r.WriteByte(b)
		}
	}

	if r.Len()%2 == 1 {
		r.WriteRune('0')
	}
	buf, _ := hex.DecodeString(r.String())
	return MakeHexString(string(buf)), nil
}

func (parser *PdfParser) parseArray() (*PdfObjectArray, error) {
	arr := MakeArray()
	parser.reader.ReadByte()

	for {
		parser.skipSpaces()
		bb, err := parser.reader.Peek(1)
		if err != nil {
			return arr, err
		}
		if bb[0] == ']' {
			parser.reader.ReadByte()
			break
		}
		obj, err := parser.parseObject()
		if err != nil {
			return arr, err
		}
		arr.Append(obj)
	}
	return arr, nil
}

func (parser *PdfParser) parseBool() (PdfObjectBool, error) {
	bb, err := parser.reader.Peek(4)
	if err == nil && len(bb) >= 4 && string(bb[:4]) == "true" {
		parser.reader.Discard(4)
		return PdfObjectBool(true), nil
	}
	bb, err = parser.reader.Peek(5)
	if err == nil && len(bb) >= 5 && string(bb[:5]) == "false" {
		parser.reader.Discard(5)
		return PdfObjectBool(false), nil
	}
	return PdfObjectBool(false), errors.New("unexpected boolean string")
}

func parseReference(refStr string) (PdfObjectReference, error) {
	result := reReference.FindStringSubmatch(refStr)
	if len(result) < 3 {
		return PdfObjectReference{}, errors.New("unable to parse reference")
	}
	objNum, _ := strconv.Atoi(result[1])
	genNum, _ := strconv.Atoi(result[2])
	return PdfObjectReference{ObjectNumber: int64(objNum), GenerationNumber: int64(genNum)}, nil
}

func (parser *PdfParser) parseNull() (PdfObjectNull, error) {
	_, err := parser.reader.Discard(4)
	return PdfObjectNull{}, err
}

// parseObject detects the signature at the current file position and
// parses the corresponding direct object.
func (parser *PdfParser) parseObject() (PdfObject, error) {
	parser.skipSpaces()
	for {
		bb, err := parser.reader.Peek(2)
		if err != nil {
			if err != io.EOF || len(bb) == 0 {
				return nil, err
			}
			if len(bb) == 1 {
				bb = append(bb, ' ')
			}
		}

		switch {
		case bb[0] == '/':
			name, err := parser.parseName()
			return &name, err
		case bb[0] == '(':
			return parser.parseString()
		case bb[0] == '[':
			return parser.parseArray()
		case bb[0] == '<' && bb[1] == '<':
			return parser.ParseDict()
		case bb[0] == '<':
			return parser.parseHexString()
		case bb[0] == '%':
			parser.readComment()
			parser.skipSpaces()
			continue
		default:
			peek, _ := parser.reader.Peek(15)
			peekStr := string(peek)

			if len(peekStr) > 3 && peekStr[:4] == "null" {
				null, err := parser.parseNull()
				return &null, err
			} else if len(peekStr) > 4 && peekStr[:5] == "false" {
				b, err := parser.parseBool()
				return &b, err
			} else if len(peekStr) > 3 && peekStr[:4] == "true" {
				b, err := parser.parseBool()
				return &b, err
			}

			if result := reReference.FindStringSubmatch(peekStr); len(result) > 1 {
				bb, _ := parser.reader.ReadBytes('R')
				ref, err := parseReference(string(bb))
				return &ref, err
			}
			if result := reNumeric.FindStringSubmatch(peekStr); len(result) > 1 {
				return parser.parseNumber()
			}
			if result := reExponential.FindStringSubmatch(peekStr); len(result) > 1 {
				return parser.parseNumber()
			}
			return nil, fmt.Errorf("object parsing error - unexpected pattern %q", peekStr)
		}
	}
}

// ParseDict reads a dictionary object enclosed in "<<" and ">>".
func (parser *PdfParser) ParseDict() (*PdfObjectDictionary, error) {
	dict := MakeDict()

	c, _ := parser.reader.ReadByte()
	if c != '<' {
		return nil, errors.New("invalid dict")
	}
	c, _ = parser.reader.ReadByte()
	if c != '<' {
		return nil, errors.New("invalid dict")
	}

	for {
		parser.skipSpaces()
		parser.skipComments()

		bb, err := parser.reader.Peek(2)
		if err != nil {
			return nil, err
		}
		if bb[0] == '>' && bb[1] == '>' {
			parser.reader.ReadByte()
			parser.reader.ReadByte()
			break
		}

		keyName, err := parser.parseName()
		if err != nil {
			return nil, err
		}

		if len(keyName) > 4 && keyName[len(keyName)-4:] == "null" {
			newKey := keyName[0 : len(keyName)-4]
			parser.skipSpaces()
			bb, _ := parser.reader.Peek(1)
			if bb[0] == '/' {
				dict.Set(newKey, MakeNull())
				continue
			}
		}

		parser.skipSpaces()
		val, err := parser.parseObject()
		if err != nil {
			return nil, err
		}
		dict.Set(keyName, val)
	}

	return dict, nil
}

func (parser *PdfParser) parsePdfVersion() (int, int, error) {
	b := make([]byte, 20)
	parser.rs.Seek(0, io.SeekStart)
	parser.rs.Read(b)

	match := rePdfVersion.FindStringSubmatch(string(b))
	if len(match) < 3 {
		return 0, 0, errors.New("pdf: version marker not found")
	}
	major, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, 0, err
	}
	minor, err := strconv.Atoi(match[2])
	if err != nil {
		return 0, 0, err
	}
	parser.rs.Seek(0, io.SeekStart)
	parser.reader = bufio.NewReader(parser.rs)
	return major, minor, nil
}

// parseXrefTable parses a classic "xref" section and its trailing
// "trailer" dictionary.
func (parser *PdfParser) parseXrefTable() (*PdfObjectDictionary, error) {
	var trailer *PdfObjectDictionary

	txt, err := parser.readTextLine()
	if err != nil {
		return nil, err
	}
	_ = txt

	curObjNum := -1
	insideSubsection := false
	unmatchedContent := ""
	for {
		parser.skipSpaces()
		if _, err := parser.reader.Peek(1); err != nil {
			return nil, err
		}

		txt, err = parser.readTextLine()
		if err != nil {
			return nil, err
		}

		result1 := reXrefSubsection.FindStringSubmatch(txt)
		if len(result1) == 0 {
			tryMatch := len(unmatchedContent) > 0
			unmatchedContent += txt + "\n"
			if tryMatch {
				result1 = reXrefSubsection.FindStringSubmatch(unmatchedContent)
			}
		}
		if len(result1) == 3 {
			first, _ := strconv.Atoi(result1[1])
			curObjNum = first
			insideSubsection = true
			unmatchedContent = ""
			continue
		}

		result2 := reXrefEntry.FindStringSubmatch(txt)
		if len(result2) == 4 {
			if !insideSubsection {
				return nil, errors.New("xref invalid format")
			}
			first, _ := strconv.ParseInt(result2[1], 10, 64)
			gen, _ := strconv.Atoi(result2[2])
			third := result2[3]
			unmatchedContent = ""

			if strings.ToLower(third) == "n" && first > 1 {
				x, ok := parser.xrefs.ObjectMap[curObjNum]
				if !ok || gen > x.Generation {
					parser.xrefs.ObjectMap[curObjNum] = XrefObject{
						ObjectNumber: curObjNum, Offset: first, Generation: gen,
					}
				}
			}
			curObjNum++
			continue
		}

		if len(txt) > 6 && txt[:7] == "trailer" {
			if len(txt) > 9 {
				offset := parser.currentOffset()
				parser.setOffset(offset - int64(len(txt)) + 7)
			}
			parser.skipSpaces()
			parser.skipComments()
			trailer, err = parser.ParseDict()
			if err != nil {
				return nil, err
			}
			break
		}

		if txt == "%%EOF" {
			return nil, errors.New("end of file - trailer not found")
		}
	}

	return trailer, nil
}

func (parser *PdfParser) currentOffset() int64 {
	offset, _ := parser.rs.Seek(0, io.SeekCurrent)
	return offset - int64(parser.reader.Buffered())
}

func (parser *PdfParser) setOffset(offset int64) {
	parser.rs.Seek(offset, io.SeekStart)
	parser.reader = bufio.NewReader(parser.rs)
}

// seekToEOFMarker scans backward from the end of the file for "%%EOF".
func (parser *PdfParser) seekToEOFMarker(fSize int64) error {
	var offset int64
	var buflen int64 = 2048

	for offset < fSize-4 {
		if fSize <= buflen+offset {
			buflen = fSize - offset
		}
		if _, err := parser.rs.Seek(-offset-buflen, io.SeekEnd); err != nil {
			return err
		}
		b1 := make([]byte, buflen)
		parser.rs.Read(b1)
		ind := reEOF.FindAllStringIndex(string(b1), -1)
		if ind != nil {
			lastInd := ind[len(ind)-1]
			parser.rs.Seek(-offset-buflen+int64(lastInd[0]), io.SeekEnd)
			return nil
		}
		offset += buflen - 4
	}
	return errors.New("pdf: %%EOF marker not found")
}

// loadXrefs locates "startxref" from the tail of the file and parses
// the classic xref table (and any chained "Prev" tables) it points to.
func (parser *PdfParser) loadXrefs() (*PdfObjectDictionary, error) {
	parser.xrefs.ObjectMap = make(map[int]XrefObject)

	fSize, err := parser.rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	parser.fileSize = fSize

	if err := parser.seekToEOFMarker(fSize); err != nil {
		return nil, err
	}

	curOffset, err := parser.rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	var numBytes int64 = 64
	offset := curOffset - numBytes
	if offset < 0 {
		offset = 0
	}
	if _, err := parser.rs.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	b2 := make([]byte, numBytes)
	if _, err := parser.rs.Read(b2); err != nil {
		return nil, err
	}

	result := reStartXref.FindStringSubmatch(string(b2))
	if len(result) < 2 {
		return nil, errors.New("pdf: startxref not found")
	}
	offsetXref, _ := strconv.ParseInt(result[1], 10, 64)
	if offsetXref > fSize {
		return nil, errors.New("pdf: xref offset outside of file")
	}

	parser.rs.Seek(offsetXref, io.SeekStart)
	parser.reader = bufio.NewReader(parser.rs)

	bb, _ := parser.reader.Peek(20)
	if !reXrefTable.Match(bb) {
		return nil, errors.New("pdf: cross-reference streams are not supported")
	}
	trailerDict, err := parser.parseXrefTable()
	if err != nil {
		return nil, err
	}

	var visited []int64
	seen := func(v int64, list []int64) bool {
		for _, b := range list {
			if b == v {
				return true
			}
		}
		return false
	}

	xx := trailerDict.Get("Prev")
	for xx != nil {
		prevInt, ok := xx.(*PdfObjectInteger)
		if !ok {
			break
		}
		off := int64(*prevInt)
		if seen(off, visited) {
			break
		}
		visited = append(visited, off)

		parser.rs.Seek(off, io.SeekStart)
		parser.reader = bufio.NewReader(parser.rs)
		ptrailer, err := parser.parseXrefTable()
		if err != nil {
			break
		}
		xx = ptrailer.Get("Prev")
	}

	return trailerDict, nil
}

// ReadAtLeast reads at least n (and at most len(buf)) bytes into buf or
// returns an error.
func (parser *PdfParser) ReadAtLeast(buf []byte, n int) (int, error) {
	return io.ReadAtLeast(parser.reader, buf, n)
}

// ParseIndirectObject parses an indirect object (or stream object)
// starting at the parser's current position.
func (parser *PdfParser) ParseIndirectObject() (PdfObject, error) {
	indirect := &PdfIndirectObject{}

	bb, err := parser.reader.Peek(20)
	if err != nil && err != io.EOF {
		return indirect, err
	}

	indices := reIndirectObject.FindStringSubmatchIndex(string(bb))
	if len(indices) < 6 {
		if err == io.EOF {
			return nil, err
		}
		return indirect, errors.New("unable to detect indirect object signature")
	}
	parser.reader.Discard(indices[0])

	hlen := indices[1] - indices[0]
	hb := make([]byte, hlen)
	if _, err = parser.ReadAtLeast(hb, hlen); err != nil {
		return nil, err
	}

	result := reIndirectObject.FindStringSubmatch(string(hb))
	if len(result) < 3 {
		return indirect, errors.New("unable to detect indirect object signature")
	}
	on, _ := strconv.Atoi(result[1])
	gn, _ := strconv.Atoi(result[2])
	indirect.ObjectNumber = int64(on)
	indirect.GenerationNumber = int64(gn)

	for {
		bb, err := parser.reader.Peek(2)
		if err != nil {
			return indirect, err
		}

		switch {
		case IsWhiteSpace(bb[0]):
			parser.skipSpaces()
		case bb[0] == '%':
			parser.skipComments()
		case bb[0] == '<' && bb[1] == '<':
			indirect.PdfObject, err = parser.ParseDict()
			if err != nil {
				return indirect, err
			}
		case bb[0] == '/' || bb[0] == '(' || bb[0] == '[' || bb[0] == '<':
			indirect.PdfObject, err = parser.parseObject()
			if err != nil {
				return indirect, err
			}
		case bb[0] == ']':
			parser.reader.Discard(1)
		default:
			if bb[0] == 'e' {
				lineStr, err := parser.readTextLine()
				if err != nil {
					return nil, err
				}
				if len(lineStr) >= 6 && lineStr[0:6] == "endobj" {
					if indirect.PdfObject == nil {
						indirect.PdfObject = MakeNull()
					}
					return indirect, nil
				}
				continue
			} else if bb[0] == 's' {
				bb, _ = parser.reader.Peek(10)
				if len(bb) >= 6 && string(bb[:6]) == "stream" {
					return parser.finishParsingStream(indirect)
				}
			}

			indirect.PdfObject, err = parser.parseObject()
			if indirect.PdfObject == nil {
				indirect.PdfObject = MakeNull()
			}
			return indirect, err
		}
	}
}

func (parser *PdfParser) finishParsingStream(indirect *PdfIndirectObject) (PdfObject, error) {
	bb, _ := parser.reader.Peek(10)
	discardBytes := 6
	if len(bb) > discardBytes && IsWhiteSpace(bb[discardBytes]) && bb[discardBytes] != '\r' && bb[discardBytes] != '\n' {
		discardBytes++
	}
	if len(bb) > discardBytes && bb[discardBytes] == '\r' {
		discardBytes++
		if len(bb) > discardBytes && bb[discardBytes] == '\n' {
			discardBytes++
		}
	} else if len(bb) > discardBytes && bb[discardBytes] == '\n' {
		discardBytes++
	}
	parser.reader.Discard(discardBytes)

	dict, isDict := indirect.PdfObject.(*PdfObjectDictionary)
	if !isDict {
		return nil, errors.New("pdf: stream object missing dictionary")
	}

	lengthObj, err := parser.Resolve(dict.Get("Length"))
	if err != nil {
		return nil, fmt.Errorf("pdf: failed to resolve stream Length: %w", err)
	}
	pstreamLength, ok := lengthObj.(*PdfObjectInteger)
	if !ok {
		return nil, errors.New("pdf: stream Length must be an integer")
	}
	streamLength := int64(*pstreamLength)
	if streamLength < 0 || streamLength > parser.fileSize {
		return nil, errors.New("pdf: invalid stream length")
	}

	stream := make([]byte, streamLength)
	if _, err = parser.ReadAtLeast(stream, int(streamLength)); err != nil {
		return nil, err
	}

	streamobj := &PdfObjectStream{
		PdfObjectDictionary: dict,
		Stream:              stream,
		ObjectNumber:        indirect.ObjectNumber,
		GenerationNumber:    indirect.GenerationNumber,
	}

	parser.skipSpaces()
	parser.reader.Discard(9) // "endstream"
	parser.skipSpaces()
	return streamobj, nil
}

// NewParserFromString builds a parser over an in-memory string, for tests.
func NewParserFromString(txt string) *PdfParser {
	bufReader := bytes.NewReader([]byte(txt))
	parser := &PdfParser{
		rs:       bufReader,
		reader:   bufio.NewReader(bufReader),
		fileSize: int64(len(txt)),
		objCache: map[int]PdfObject{},
	}
	parser.xrefs.ObjectMap = make(map[int]XrefObject)
	return parser
}

// NewParser creates a parser for a PDF file, loading its classic
// cross-reference table and trailer. Returns ErrEncrypted if the
// trailer names an /Encrypt dictionary.
func NewParser(rs io.ReadSeeker) (*PdfParser, error) {
	parser := &PdfParser{
		rs:       rs,
		objCache: map[int]PdfObject{},
	}

	major, minor, err := parser.parsePdfVersion()
	if err != nil {
		common.Log.Debug("unable to parse PDF version: %v", err)
		return nil, err
	}
	parser.version = Version{Major: major, Minor: minor}

	if parser.trailer, err = parser.loadXrefs(); err != nil {
		common.Log.Debug("failed to load xref table: %v", err)
		return nil, err
	}
	if len(parser.xrefs.ObjectMap) == 0 {
		return nil, errors.New("pdf: empty cross-reference table")
	}

	if parser.trailer.Get("Encrypt") != nil {
		return nil, ErrEncrypted
	}

	return parser, nil
}

// LookupByNumber parses and returns the object with the given object
// number, consulting and populating the parser's object cache.
func (parser *PdfParser) LookupByNumber(objNum int) (PdfObject, error) {
	if cached, ok := parser.objCache[objNum]; ok {
		return cached, nil
	}
	xref, ok := parser.xrefs.ObjectMap[objNum]
	if !ok {
		return nil, fmt.Errorf("pdf: object %d not found in cross-reference table", objNum)
	}

	parser.rs.Seek(xref.Offset, io.SeekStart)
	parser.reader = bufio.NewReader(parser.rs)

	obj, err := parser.ParseIndirectObject()
	if err != nil {
		return nil, err
	}
	parser.objCache[objNum] = obj
	return obj, nil
}

// Resolve follows a *PdfObjectReference to its target object, returning
// any other object unchanged.
func (parser *PdfParser) Resolve(obj PdfObject) (PdfObject, error) {
	ref, isRef := obj.(*PdfObjectReference)
	if !isRef {
		return obj, nil
	}
	resolved, err := parser.LookupByNumber(int(ref.ObjectNumber))
	if err != nil {
		return nil, err
	}
	return TraceToDirectObject(resolved), nil
}

// GetObjectNums returns the object numbers present in the cross-reference table.
func (parser *PdfParser) GetObjectNums() []int {
	nums := make([]int, 0, len(parser.xrefs.ObjectMap))
	for n := range parser.xrefs.ObjectMap {
		nums = append(nums, n)
	}
	return nums
}
