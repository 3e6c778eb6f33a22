package codec

import "math"

// PutAsciiInt emits the decimal representation of v into buf starting at
// offset, right-to-left, and returns the number of bytes written. v ==
// math.MinInt32 emits the pre-computed literal to avoid negating a value
// with no positive counterpart of the same width; other negatives are
// handled via PutAsciiLong on the widened value.
func PutAsciiInt(buf []byte, offset int, v int32) int {
	if v == math.MinInt32 {
		copy(buf[offset:], minInt32Literal)
		return len(minInt32Literal)
	}
	return PutAsciiLong(buf, offset, int64(v))
}

// PutAsciiLong emits the decimal representation of v into buf starting
// at offset, right-to-left, and returns the number of bytes written.
// v == 0 emits a single '0'. v == math.MinInt64 emits the pre-computed
// literal, since -v overflows int64 for that one value; every other
// negative is written by emitting '-' and then writing |v| via the
// identity -(-v), which never overflows because |MinInt64| is the only
// magnitude that does not fit.
func PutAsciiLong(buf []byte, offset int, v int64) int {
	if v == 0 {
		buf[offset] = '0'
		return 1
	}
	if v == math.MinInt64 {
		copy(buf[offset:], minInt64Literal)
		return len(minInt64Literal)
	}

	negative := v < 0
	start := offset
	if negative {
		start++
	}

	// Write digits right-to-left into scratch, then copy into place.
	var scratch [20]byte
	pos := len(scratch)
	n := v
	if negative {
		n = -n
	}
	for n > 0 {
		pos--
		scratch[pos] = byte('0' + n%10)
		n /= 10
	}
	digits := scratch[pos:]
	copy(buf[start:], digits)

	written := len(digits)
	if negative {
		buf[offset] = '-'
		written++
	}
	return written
}

// PutAsciiFloat emits DecimalFloat f into buf starting at offset and
// returns the number of bytes written. When f.Scale == 0 no decimal
// point is written. The mantissa is emitted into a tail scratch area
// first so the sign and decimal point can be inserted without a second
// pass over the digit buffer.
func PutAsciiFloat(buf []byte, offset int, f DecimalFloat) int {
	var raw [24]byte
	n := PutAsciiLong(raw[:], 0, f.Value)
	digits := raw[:n]

	negative := false
	if len(digits) > 0 && digits[0] == '-' {
		negative = true
		digits = digits[1:]
	}

	if f.Scale <= 0 {
		pos := offset
		if negative {
			buf[pos] = '-'
			pos++
		}
		copy(buf[pos:], digits)
		return pos + len(digits) - offset
	}

	scale := int(f.Scale)
	// Left-pad the mantissa with zeros into padded so there are at
	// least scale+1 digits (e.g. Value=5, Scale=2 -> "005" -> "0.05").
	var padded [26]byte
	if pad := scale + 1 - len(digits); pad > 0 {
		for i := 0; i < pad; i++ {
			padded[i] = '0'
		}
		copy(padded[pad:], digits)
		digits = padded[:pad+len(digits)]
	}

	intLen := len(digits) - scale
	pos := offset
	if negative {
		buf[pos] = '-'
		pos++
	}
	copy(buf[pos:], digits[:intLen])
	pos += intLen
	buf[pos] = '.'
	pos++
	copy(buf[pos:], digits[intLen:])
	pos += scale

	return pos - offset
}

// PutNatural emits v right-justified, zero-padded to exactly width
// bytes, starting at offset. It fails with ErrOverflow if v needs more
// than width digits.
func PutNatural(buf []byte, offset, width int, v uint32) error {
	for i := width - 1; i >= 0; i-- {
		buf[offset+i] = byte('0' + v%10)
		v /= 10
	}
	if v != 0 {
		return ErrOverflow
	}
	return nil
}
