/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package contentstream

import "bytes"

// Render re-serializes a tokenized item sequence to content-stream
// bytes. Untouched items are copied from their Raw span verbatim;
// a TextShow item whose Run has been rewritten is re-emitted per
// §4.5.5's operand-rewrite rule: a Tj becomes `(new)Tj`, a TJ becomes
// `[(new)]TJ` regardless of how many string elements or numeric
// kerning adjustments the original array held.
func Render(items []*Item) []byte {
	var buf bytes.Buffer
	for _, item := range items {
		if item.Kind != TextShow || !item.Run.Rewritten() {
			buf.Write(item.Raw)
			continue
		}
		lit := EscapeLiteral(item.Run.EncodedCodes())
		switch item.Run.Operator {
		case "TJ":
			buf.WriteByte('[')
			buf.WriteByte('(')
			buf.Write(lit)
			buf.WriteString(")]TJ")
		default: // "Tj"
			buf.WriteByte('(')
			buf.Write(lit)
			buf.WriteString(")Tj")
		}
	}
	return buf.Bytes()
}

// EscapeLiteral re-escapes raw bytes for use inside a PDF literal
// string: '(', ')' and '\' are backslash-escaped; newline, carriage
// return and tab become \n, \r and \t; any other byte outside the
// printable ASCII range is emitted as a three-digit octal escape so
// the result is unambiguous regardless of surrounding content.
func EscapeLiteral(data []byte) []byte {
	var out []byte
	for _, b := range data {
		switch b {
		case '(', ')', '\\':
			out = append(out, '\\', b)
		case '\n':
			out = append(out, '\\', 'n')
		case '\r':
			out = append(out, '\\', 'r')
		case '\t':
			out = append(out, '\\', 't')
		default:
			if b < 0x20 || b >= 0x7F {
				out = append(out, '\\', octalDigit(b, 2), octalDigit(b, 1), octalDigit(b, 0))
			} else {
				out = append(out, b)
			}
		}
	}
	if out == nil {
		out = []byte{}
	}
	return out
}

func octalDigit(b byte, shift uint) byte {
	return '0' + (b>>(3*shift))&0x7
}
