package imagepkg

import (
	"fmt"
	"strconv"
	"strings"
)

// Symbol is a single digit cell: '0'..'9' or Blank.
type Symbol byte

// Blank fills unused leading cells.
const Blank Symbol = '_'

// Digits is the fixed number of cells in a rendered count.
const Digits = 5

func (s Symbol) Valid() bool {
	return s == Blank || (s >= '0' && s <= '9')
}

func (s Symbol) String() string { return string(rune(s)) }

// Sequence is a padded count, always exactly Digits long.
type Sequence [Digits]Symbol

func (q Sequence) String() string {
	var b strings.Builder
	for _, s := range q {
		b.WriteByte(byte(s))
	}
	return b.String()
}

// StepIndex addresses one position of a Sequence.
type StepIndex uint8

// LastStep is the index of the final strip.
const LastStep StepIndex = Digits - 1

func (i StepIndex) Valid() bool { return i <= LastStep }

// Pad renders n as decimal, left-pads with Blank and keeps the last
// Digits characters, so 123456 becomes 23456.
func Pad(n int64) (Sequence, error) {
	var q Sequence
	if n < 0 {
		return q, newError("pad", ErrInvalidInput, fmt.Errorf("negative count %d", n))
	}
	s := strings.Repeat(string(Blank), Digits) + strconv.FormatInt(n, 10)
	s = s[len(s)-Digits:]
	for i := range q {
		q[i] = Symbol(s[i])
	}
	return q, nil
}

// ParseCount turns user input into a count, rejecting anything that is
// not a non-negative decimal integer.
func ParseCount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, newError("parse count", ErrInvalidInput, err)
	}
	if n < 0 {
		return 0, newError("parse count", ErrInvalidInput, fmt.Errorf("negative count %d", n))
	}
	return n, nil
}
