package bindexpr

import "strconv"

// SyntaxError is an error indicating malformed input. It implements
// InputError.
type SyntaxError struct {
	// Col is the 1-based position of the rune at which the parser failed.
	Col int
	// Text is the text that was not understood. It is empty if the input
	// ended unexpectedly.
	Text string
	// Want describes what the parser expected at Col, e.g. "expression",
	// "number", or "close bracket".
	Want string
}

func (err *SyntaxError) Error() string {
	if err.Want == "number" {
		return errpos(err.Col, "invalid number "+strconv.Quote(err.Text))
	}
	got := "end of input"
	if err.Text != "" {
		got = strconv.Quote(err.Text)
	}
	if err.Want == "" {
		return errpos(err.Col, "unexpected "+got)
	}
	return errpos(err.Col, "unexpected "+got+", want "+err.Want)
}

func (err *SyntaxError) Pos() int {
	return err.Col
}

// EOF reports whether the error is due to the input ending too early.
func (err *SyntaxError) EOF() bool {
	return err.Text == ""
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// invalid input implements InputError.
type InputError interface {
	error
	// Pos returns the 1-based position of the rune that caused the error.
	Pos() int
}

var _ InputError = (*SyntaxError)(nil)
