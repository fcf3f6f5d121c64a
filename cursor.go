package bindexpr

import (
	"io"
	"unicode"
)

// cursor reads runes from a source and counts how many it has consumed.
type cursor struct {
	src io.RuneScanner
	// n is the number of runes consumed so far.
	n int
}

func newCursor(src io.RuneScanner) *cursor {
	return &cursor{src: src}
}

// peek returns the next rune without consuming it. At the end of the input,
// the error is io.EOF.
func (c *cursor) peek() (rune, error) {
	r, _, err := c.src.ReadRune()
	if err != nil {
		return 0, err
	}
	if err := c.src.UnreadRune(); err != nil {
		panic(err)
	}
	return r, nil
}

// advance consumes the next rune. At the end of the input, the error is
// io.EOF.
func (c *cursor) advance() (rune, error) {
	r, sz, err := c.src.ReadRune()
	if err != nil {
		return 0, err
	}
	if sz > 0 {
		c.n++
	}
	return r, nil
}

// empty reports whether the input is exhausted. Errors other than io.EOF are
// reported as not empty so that the next peek returns them.
func (c *cursor) empty() bool {
	_, err := c.peek()
	return err == io.EOF
}

// pos returns the 1-based position of the next rune.
func (c *cursor) pos() int {
	return c.n + 1
}

// skipSpace consumes whitespace.
func (c *cursor) skipSpace() error {
	for {
		r, err := c.peek()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if !unicode.IsSpace(r) {
			return nil
		}
		c.advance()
	}
}
