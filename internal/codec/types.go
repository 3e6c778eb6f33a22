package codec

// SOH is the FIX field delimiter, ASCII 0x01.
const SOH byte = 0x01

// minInt32Literal is the pre-computed ASCII text of math.MinInt32,
// used by PutAsciiInt to avoid negating a value that has no positive
// counterpart in the same width.
const minInt32Literal = "-2147483648"

// minInt64Literal is the pre-computed ASCII text of math.MinInt64, used
// by PutAsciiLong for the same reason.
const minInt64Literal = "-9223372036854775808"

// DecimalFloat is a fixed-point decimal used for FIX "Price" fields:
// the decoded value is Value * 10^-Scale. Using an integer mantissa
// instead of a float64 keeps replicated state bit-for-bit identical
// across nodes regardless of floating point rounding.
type DecimalFloat struct {
	Value int64
	Scale int32
}

// Equal reports whether two DecimalFloat values represent the same
// number after normalising away a difference in scale that is purely
// trailing zeros (e.g. {120, 2} == {12, 1}, both meaning 1.20 == 1.2).
func (d DecimalFloat) Equal(o DecimalFloat) bool {
	a, b := d, o
	for a.Scale > b.Scale {
		b.Value *= 10
		b.Scale++
	}
	for b.Scale > a.Scale {
		a.Value *= 10
		a.Scale++
	}
	return a.Value == b.Value
}
