package codec

// GetNatural decodes an unsigned decimal integer from buf[start:end].
// No sign and no separators are permitted; any byte outside '0'..'9'
// fails with ErrBadDigit.
func GetNatural(buf []byte, start, end int) (uint32, error) {
	if end <= start || end > len(buf) || start < 0 {
		return 0, ErrEmptyRange
	}
	var value uint32
	for i := start; i < end; i++ {
		b := buf[i]
		if b < '0' || b > '9' {
			return 0, ErrBadDigit
		}
		value = value*10 + uint32(b-'0')
	}
	return value, nil
}

// GetInt decodes a signed decimal integer from buf[start:end], with an
// optional leading '-'.
func GetInt(buf []byte, start, end int) (int32, error) {
	if end <= start || end > len(buf) || start < 0 {
		return 0, ErrEmptyRange
	}
	negative := false
	i := start
	if buf[i] == '-' {
		negative = true
		i++
	}
	if i >= end {
		return 0, ErrBadDigit
	}
	var value int32
	for ; i < end; i++ {
		b := buf[i]
		if b < '0' || b > '9' {
			return 0, ErrBadDigit
		}
		value = value*10 + int32(b-'0')
	}
	if negative {
		value = -value
	}
	return value, nil
}

// isDispensable reports whether b is a character GetFloat trims from
// the edges of a numeric field: a zero or a blank. Trimming only ever
// walks in from the two edges of the field, so this never touches a
// byte between the first and last significant digit.
func isDispensable(b byte) bool {
	return b == '0' || b == ' '
}

// GetFloat decodes a FIX "Price" field from buf[start:start+length] into
// dst. Trailing ' ' bytes are trimmed first and then, only if the field
// contains a '.', trailing '0' bytes (always leaving at least the byte
// at start in place); then a leading '-' is consumed,
// then leading runs of '0' or ' ' are trimmed from what remains — so
// "  12.340 " and "0000123.45" both decode to their canonical value.
// Trimming only ever removes bytes from the two edges, never from
// between the first and last significant digit. dst.Scale is set to the
// count of bytes following the '.', if any.
func GetFloat(dst *DecimalFloat, buf []byte, start, length int) error {
	end := start + length
	if length <= 0 || end > len(buf) || start < 0 {
		return ErrEmptyRange
	}

	for end-1 > start && buf[end-1] == ' ' {
		end--
	}
	hasDot := false
	for i := start; i < end; i++ {
		if buf[i] == '.' {
			hasDot = true
			break
		}
	}
	if hasDot {
		for end-1 > start && buf[end-1] == '0' {
			end--
		}
	}

	negative := buf[start] == '-'
	offset := start
	if negative {
		offset++
	}

	for offset < end && isDispensable(buf[offset]) {
		offset++
	}

	var value int64
	var scale int32
	for i := offset; i < end; i++ {
		b := buf[i]
		if b == '.' {
			scale = int32(end - (i + 1))
			continue
		}
		if b < '0' || b > '9' {
			return ErrBadDigit
		}
		value = value*10 + int64(b-'0')
	}

	if negative {
		value = -value
	}
	dst.Value = value
	dst.Scale = scale
	return nil
}

// Scan searches buf[from:to+1] for byte, returning the leftmost index
// at which it is found, or -1 if it does not occur.
func Scan(buf []byte, from, toIncl int, needle byte) int {
	if from < 0 {
		from = 0
	}
	if toIncl >= len(buf) {
		toIncl = len(buf) - 1
	}
	for i := from; i <= toIncl; i++ {
		if buf[i] == needle {
			return i
		}
	}
	return -1
}

// ScanBack searches buf[from:to+1] for byte, returning the rightmost
// index at which it is found, or -1 if it does not occur.
func ScanBack(buf []byte, from, toIncl int, needle byte) int {
	if from < 0 {
		from = 0
	}
	if toIncl >= len(buf) {
		toIncl = len(buf) - 1
	}
	for i := toIncl; i >= from; i-- {
		if buf[i] == needle {
			return i
		}
	}
	return -1
}

// ComputeChecksum computes the FIX tag-10 checksum over buf[start:end]:
// the sum of all bytes in the range, modulo 256.
func ComputeChecksum(buf []byte, start, end int) uint8 {
	var sum uint32
	for i := start; i < end; i++ {
		sum += uint32(buf[i])
	}
	return uint8(sum % 256)
}
