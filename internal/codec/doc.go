// Package codec implements the zero-copy ASCII/decimal wire codec used on
// the FIX hot path.
//
// FIX tag=value pairs are plain ASCII digits inside a caller-owned byte
// window; this package never allocates and never keeps a reference to the
// window between calls. Every decode takes an explicit [start, end) range
// and every encode takes a destination offset, matching the FIX canonical
// form: for any value v accepted by this package, decode(encode(v)) == v.
//
// # Integers and naturals
//
//	n, err := codec.GetNatural(buf, 0, 3)     // "123" -> 123
//	i, err := codec.GetInt(buf, 0, 4)         // "-123" -> -123
//	n := codec.PutAsciiInt(buf, 0, -123)      // writes "-123", returns 4
//
// # Prices
//
// FIX "Price" fields decode into a fixed-point DecimalFloat rather than a
// floating point type, so replicated state never depends on floating point
// rounding:
//
//	var f codec.DecimalFloat
//	codec.GetFloat(&f, buf, 0, len(buf))      // "  0012.340 " -> {1234, 2}
//	n := codec.PutAsciiFloat(buf, 0, f)       // writes "12.34"
//
// # Delimiters and checksums
//
//	codec.Scan(buf, 0, len(buf)-1, codec.SOH)
//	codec.ComputeChecksum(buf, 0, end)        // FIX tag-10 algorithm
package codec
