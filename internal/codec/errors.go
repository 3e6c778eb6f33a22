package codec

import "errors"

// Codec errors.
var (
	// ErrBadDigit is returned when a byte outside '0'..'9' (or a leading
	// '-') is encountered where a digit was required.
	ErrBadDigit = errors.New("codec: bad digit")

	// ErrOverflow is returned by PutNatural when a value does not fit
	// the requested field width. The decoders do not check for overflow
	// and never return it.
	ErrOverflow = errors.New("codec: overflow")

	// ErrEmptyRange is returned when a [start, end) range contains no
	// bytes to decode.
	ErrEmptyRange = errors.New("codec: empty range")
)
