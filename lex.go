package bindexpr

import (
	"io"
	"strings"
)

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isLetter(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z'
}

// scanNum scans a decimal number: digits with an optional fraction and an
// optional exponent. The caller has peeked a digit or '.'. Errors are
// positioned at the rune that made the number invalid, or just past the
// number if it ended too early.
func scanNum(c *cursor) (string, error) {
	var b strings.Builder
	var dig, dot, e, le, ed bool
scan:
	for {
		r, err := c.peek()
		if err != nil {
			if err == io.EOF {
				break scan
			}
			return "", err
		}
		if r == '+' || r == '-' {
			// A sign anywhere other than immediately following an exponent
			// marker is an operator.
			if !le {
				break scan
			}
			le = false
			b.WriteRune(r)
			c.advance()
			continue
		}
		switch r {
		case '.':
			if dot || e {
				col := c.pos()
				b.WriteRune(r)
				return "", &SyntaxError{Col: col, Text: b.String(), Want: "number"}
			}
			dot = true
			le = false
		case 'e', 'E':
			if !dig || e {
				col := c.pos()
				b.WriteRune(r)
				return "", &SyntaxError{Col: col, Text: b.String(), Want: "number"}
			}
			e = true
			le = true
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			if e {
				ed = true
			} else {
				dig = true
			}
			le = false
		default:
			break scan
		}
		b.WriteRune(r)
		c.advance()
	}
	if (!dig && !ed) || (e && !ed) {
		return "", &SyntaxError{Col: c.pos(), Text: b.String(), Want: "number"}
	}
	return b.String(), nil
}

// scanIdent scans a letter followed by any letters and digits. The caller has
// peeked a letter.
func scanIdent(c *cursor) (string, error) {
	var b strings.Builder
	for {
		r, err := c.peek()
		if err != nil {
			if err == io.EOF {
				return b.String(), nil
			}
			return "", err
		}
		if !isLetter(r) && !isDigit(r) {
			return b.String(), nil
		}
		b.WriteRune(r)
		c.advance()
	}
}
