/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package contentstream

import (
	"strconv"

	"github.com/herryqg/pdf-parser/core"
	"github.com/herryqg/pdf-parser/internal/cmap"
)

// FontLookup resolves a font alias (as it appears after `/` in a Tf
// operator) to the CMap that decodes its single-byte codes. It returns
// ok=false for a font outside the page's resources, in which case the
// tokenizer still emits the FontSelect item and every byte of the
// following show operators decodes to MissingCodeRune.
type FontLookup func(alias string) (cm *cmap.CMap, ok bool)

// tokenizer scans a content stream byte slice by index, recognizing
// just enough lexical structure (names, numbers, literal strings,
// arrays, bare-word operators) to find Tf/Tm/Tj/TJ and bound their
// exact source span, without building a general object tree.
type tokenizer struct {
	data       []byte
	pos        int
	currentCM  *cmap.CMap
	currentAls string
	lookup     FontLookup
}

// Tokenize scans a page content stream and returns the sequence of
// passthrough spans and salient operators found in it. lookup resolves
// a Tf operator's font alias to the CMap used to decode subsequent
// show operators; pass nil if decoding is not needed (e.g. pure
// passthrough round-tripping).
func Tokenize(data []byte, lookup FontLookup) ([]*Item, error) {
	t := &tokenizer{data: data, lookup: lookup}
	return t.run()
}

type tok struct {
	kind       tokKind
	start, end int
	name       string
	num        float64
	str        []byte // unescaped literal-string bytes
	elems      []arrElem
}

type tokKind int

const (
	tkName tokKind = iota
	tkNumber
	tkString
	tkArray
	tkOperand
	tkOther // dict, bool, null, hex string: parsed and skipped, never salient
)

// arrElem is one element of a TJ array: either a literal string
// (IsStr true, Bytes populated) or a numeric adjustment.
type arrElem struct {
	IsStr bool
	Bytes []byte
	Num   float64
}

func (t *tokenizer) run() ([]*Item, error) {
	var items []*Item
	passStart := 0
	var pending []tok

	flushPassthrough := func(upto int) {
		if upto > passStart {
			items = append(items, &Item{Kind: Passthrough, Raw: t.data[passStart:upto]})
		}
		passStart = upto
	}

	for t.pos < len(t.data) {
		tk, err := t.next()
		if err != nil {
			break
		}
		if tk.kind != tkOperand {
			pending = append(pending, tk)
			continue
		}

		op := tk.name
		switch op {
		case "BI":
			end, err := t.skipInlineImage()
			if err != nil {
				return items, err
			}
			pending = nil
			flushPassthrough(end)
			continue
		case "Tf":
			if item, ok := t.matchTf(pending, tk.start, tk.end); ok {
				flushPassthrough(firstStart(pending, tk.start))
				items = append(items, item)
				passStart = tk.end
				pending = nil
				continue
			}
		case "Tm":
			if item, ok := matchTm(pending, t.data, firstStart(pending, tk.start), tk.end); ok {
				flushPassthrough(firstStart(pending, tk.start))
				items = append(items, item)
				passStart = tk.end
				pending = nil
				continue
			}
		case "Tj":
			if item, ok := t.matchTj(pending, t.data, firstStart(pending, tk.start), tk.end); ok {
				flushPassthrough(firstStart(pending, tk.start))
				items = append(items, item)
				passStart = tk.end
				pending = nil
				continue
			}
		case "TJ":
			if item, ok := t.matchTJ(pending, t.data, firstStart(pending, tk.start), tk.end); ok {
				flushPassthrough(firstStart(pending, tk.start))
				items = append(items, item)
				passStart = tk.end
				pending = nil
				continue
			}
		}

		// Not a recognized salient operator (or operands didn't match the
		// expected shape) — everything since the last flush, including
		// this operator, stays passthrough.
		pending = nil
	}

	flushPassthrough(len(t.data))
	return items, nil
}

func firstStart(pending []tok, fallback int) int {
	if len(pending) == 0 {
		return fallback
	}
	return pending[0].start
}

func (t *tokenizer) matchTf(pending []tok, opStart, opEnd int) (*Item, bool) {
	if len(pending) != 2 || pending[0].kind != tkName || pending[1].kind != tkNumber {
		return nil, false
	}
	alias := pending[0].name
	size := pending[1].num
	t.currentAls = alias
	t.currentCM = nil
	if t.lookup != nil {
		if cm, ok := t.lookup(alias); ok {
			t.currentCM = cm
		}
	}
	return &Item{
		Kind:      FontSelect,
		Raw:       t.data[pending[0].start:opEnd],
		FontAlias: alias,
		FontSize:  size,
	}, true
}

func matchTm(pending []tok, data []byte, start, end int) (*Item, bool) {
	if len(pending) != 6 {
		return nil, false
	}
	for _, p := range pending {
		if p.kind != tkNumber {
			return nil, false
		}
	}
	return &Item{Kind: TextMatrix, Raw: data[start:end]}, true
}

func (t *tokenizer) matchTj(pending []tok, data []byte, start, end int) (*Item, bool) {
	if len(pending) != 1 || pending[0].kind != tkString {
		return nil, false
	}
	run := t.decodeRun("Tj", pending[0].str)
	return &Item{Kind: TextShow, Raw: data[start:end], Run: run}, true
}

func (t *tokenizer) matchTJ(pending []tok, data []byte, start, end int) (*Item, bool) {
	if len(pending) != 1 || pending[0].kind != tkArray {
		return nil, false
	}
	var codes []byte
	for _, el := range pending[0].elems {
		if el.IsStr {
			codes = append(codes, el.Bytes...)
		}
	}
	run := t.decodeRun("TJ", codes)
	return &Item{Kind: TextShow, Raw: data[start:end], Run: run}, true
}

func (t *tokenizer) decodeRun(operator string, codes []byte) *TextRun {
	run := &TextRun{Font: t.currentAls, Operator: operator, Codes: codes}
	if codes == nil {
		codes = []byte{}
		run.Codes = codes
	}
	runes := make([]rune, len(codes))
	for i, b := range codes {
		if t.currentCM != nil {
			if r, ok := t.currentCM.Decode(b); ok {
				runes[i] = r
				continue
			}
		}
		runes[i] = MissingCodeRune
	}
	run.Text = string(runes)
	return run
}

// next scans the single next lexical token starting at t.pos,
// advancing t.pos past it.
func (t *tokenizer) next() (tok, error) {
	t.skipSpacesAndComments()
	start := t.pos
	if t.pos >= len(t.data) {
		return tok{}, errEOF
	}
	b := t.data[t.pos]
	switch {
	case b == '/':
		name := t.readName()
		return tok{kind: tkName, start: start, end: t.pos, name: name}, nil
	case b == '(':
		str := t.readLiteralString()
		return tok{kind: tkString, start: start, end: t.pos, str: str}, nil
	case b == '<' && t.peek(1) == '<':
		t.skipDict()
		return tok{kind: tkOther, start: start, end: t.pos}, nil
	case b == '<':
		t.readHexString()
		return tok{kind: tkOther, start: start, end: t.pos}, nil
	case b == '[':
		elems := t.readArray()
		return tok{kind: tkArray, start: start, end: t.pos, elems: elems}, nil
	case core.IsFloatDigit(b) || (b == '-' && core.IsFloatDigit(t.peek(1))) || (b == '+' && core.IsFloatDigit(t.peek(1))):
		num := t.readNumber()
		return tok{kind: tkNumber, start: start, end: t.pos, num: num}, nil
	default:
		word := t.readWord()
		if word == "" {
			// Unrecognized delimiter byte on its own (}, {, ), >, ]) — treat as
			// a one-byte "other" token so the scanner always makes progress.
			t.pos++
			return tok{kind: tkOther, start: start, end: t.pos}, nil
		}
		return tok{kind: tkOperand, start: start, end: t.pos, name: word}, nil
	}
}

var errEOF = &eofError{}

type eofError struct{}

func (*eofError) Error() string { return "contentstream: end of data" }

func (t *tokenizer) peek(off int) byte {
	if t.pos+off >= len(t.data) {
		return 0
	}
	return t.data[t.pos+off]
}

func (t *tokenizer) skipSpacesAndComments() {
	for t.pos < len(t.data) {
		b := t.data[t.pos]
		if core.IsWhiteSpace(b) {
			t.pos++
			continue
		}
		if b == '%' {
			for t.pos < len(t.data) && t.data[t.pos] != '\r' && t.data[t.pos] != '\n' {
				t.pos++
			}
			continue
		}
		break
	}
}

func (t *tokenizer) readName() string {
	t.pos++ // consume '/'
	var name []byte
	for t.pos < len(t.data) {
		b := t.data[t.pos]
		if core.IsWhiteSpace(b) || core.IsDelimiter(b) {
			break
		}
		if b == '#' && t.pos+2 < len(t.data) {
			if v, err := strconv.ParseUint(string(t.data[t.pos+1:t.pos+3]), 16, 8); err == nil {
				name = append(name, byte(v))
				t.pos += 3
				continue
			}
		}
		name = append(name, b)
		t.pos++
	}
	return string(name)
}

func (t *tokenizer) readWord() string {
	start := t.pos
	for t.pos < len(t.data) {
		b := t.data[t.pos]
		if core.IsWhiteSpace(b) || core.IsDelimiter(b) {
			break
		}
		t.pos++
	}
	return string(t.data[start:t.pos])
}

func (t *tokenizer) readNumber() float64 {
	start := t.pos
	if t.data[t.pos] == '-' || t.data[t.pos] == '+' {
		t.pos++
	}
	for t.pos < len(t.data) && (core.IsDecimalDigit(t.data[t.pos]) || t.data[t.pos] == '.') {
		t.pos++
	}
	v, _ := strconv.ParseFloat(string(t.data[start:t.pos]), 64)
	return v
}

// readLiteralString parses a `( ... )` string starting at t.pos,
// honoring \(, \), \\, \r, \n, \t, \b, \f and octal escapes, and
// balanced unescaped parentheses. Returns the unescaped byte content.
func (t *tokenizer) readLiteralString() []byte {
	t.pos++ // consume '('
	depth := 1
	var out []byte
	for t.pos < len(t.data) {
		b := t.data[t.pos]
		if b == '\\' {
			t.pos++
			if t.pos >= len(t.data) {
				break
			}
			e := t.data[t.pos]
			if core.IsOctalDigit(e) {
				n := []byte{e}
				t.pos++
				for len(n) < 3 && t.pos < len(t.data) && core.IsOctalDigit(t.data[t.pos]) {
					n = append(n, t.data[t.pos])
					t.pos++
				}
				if v, err := strconv.ParseUint(string(n), 8, 32); err == nil {
					out = append(out, byte(v))
				}
				continue
			}
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '(':
				out = append(out, '(')
			case ')':
				out = append(out, ')')
			case '\\':
				out = append(out, '\\')
			case '\r', '\n':
				// Line continuation: escaped EOL contributes no byte.
			default:
				out = append(out, e)
			}
			t.pos++
			continue
		}
		if b == '(' {
			depth++
		} else if b == ')' {
			depth--
			if depth == 0 {
				t.pos++
				break
			}
		}
		out = append(out, b)
		t.pos++
	}
	return out
}

func (t *tokenizer) readHexString() {
	t.pos++ // consume '<'
	for t.pos < len(t.data) && t.data[t.pos] != '>' {
		t.pos++
	}
	if t.pos < len(t.data) {
		t.pos++ // consume '>'
	}
}

// skipDict consumes a `<< ... >>` dictionary, whose values are parsed
// generically via next() (which recurses into skipDict for any nested
// dictionary), so only the top-level "<<"/">>" pair needs matching here.
func (t *tokenizer) skipDict() {
	t.pos += 2 // consume '<<'
	for t.pos < len(t.data) {
		t.skipSpacesAndComments()
		if t.pos+1 < len(t.data) && t.data[t.pos] == '>' && t.data[t.pos+1] == '>' {
			t.pos += 2
			return
		}
		if t.pos >= len(t.data) {
			return
		}
		tk, err := t.next()
		if err != nil {
			return
		}
		if tk.end == tk.start {
			t.pos++
		}
	}
}

func (t *tokenizer) readArray() []arrElem {
	t.pos++ // consume '['
	var elems []arrElem
	for t.pos < len(t.data) {
		t.skipSpacesAndComments()
		if t.pos >= len(t.data) {
			break
		}
		if t.data[t.pos] == ']' {
			t.pos++
			break
		}
		tk, err := t.next()
		if err != nil {
			break
		}
		switch tk.kind {
		case tkString:
			elems = append(elems, arrElem{IsStr: true, Bytes: tk.str})
		case tkNumber:
			elems = append(elems, arrElem{Num: tk.num})
		}
	}
	return elems
}

// skipInlineImage consumes a `BI ... ID <binary> EI` sequence that has
// already had its "BI" keyword read, returning the offset just past
// the EI operator. The binary section between ID and EI cannot be
// lexed as PDF objects (arbitrary image bytes), so this mirrors the
// teacher's whitespace/EI state-machine scan rather than the object
// parser used everywhere else in this file.
func (t *tokenizer) skipInlineImage() (int, error) {
	// Skip the BI...ID parameter dictionary (key/value name pairs).
	for t.pos < len(t.data) {
		t.skipSpacesAndComments()
		if t.pos >= len(t.data) {
			return 0, ErrUnterminatedInlineImage
		}
		if t.data[t.pos] != '/' {
			// Not a parameter name: must be the "ID" operand.
			word := t.readWord()
			if word == "ID" {
				break
			}
			continue
		}
		t.readName() // key
		tk, err := t.next()
		if err != nil {
			return 0, ErrUnterminatedInlineImage
		}
		_ = tk
	}

	// Exactly one whitespace byte separates ID from the binary data.
	if t.pos < len(t.data) && core.IsWhiteSpace(t.data[t.pos]) {
		t.pos++
	}

	state := 0
	for t.pos < len(t.data) {
		b := t.data[t.pos]
		t.pos++
		switch state {
		case 0:
			if core.IsWhiteSpace(b) {
				state = 1
			} else if b == 'E' {
				state = 2
			}
		case 1:
			if b == 'E' {
				state = 2
			} else if !core.IsWhiteSpace(b) {
				state = 0
			}
		case 2:
			if b == 'I' {
				if t.pos >= len(t.data) || core.IsWhiteSpace(t.data[t.pos]) || core.IsDelimiter(t.data[t.pos]) {
					return t.pos, nil
				}
				state = 0
			} else if b != 'E' {
				state = 0
			}
		}
	}
	return 0, ErrUnterminatedInlineImage
}
