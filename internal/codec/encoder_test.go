package codec

import (
	"math"
	"testing"
)

func TestPutAsciiInt_RoundTrip(t *testing.T) {
	values := []int32{0, 1, -1, 123, -123, math.MaxInt32, math.MinInt32}
	for _, v := range values {
		buf := make([]byte, 16)
		n := PutAsciiInt(buf, 0, v)
		got, err := GetInt(buf, 0, n)
		if err != nil {
			t.Fatalf("v=%d: unexpected error: %v", v, err)
		}
		if got != v {
			t.Errorf("v=%d: got %d", v, got)
		}
	}
}

func TestPutAsciiLong_RoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 123456789, -123456789, math.MaxInt64, math.MinInt64}
	for _, v := range values {
		buf := make([]byte, 24)
		n := PutAsciiLong(buf, 0, v)
		got, err := getLong(buf, 0, n)
		if err != nil {
			t.Fatalf("v=%d: unexpected error: %v", v, err)
		}
		if got != v {
			t.Errorf("v=%d: got %d", v, got)
		}
	}
}

// getLong is a signed-int64 counterpart to GetInt, used only by tests
// exercising the long-form encoder.
func getLong(buf []byte, start, end int) (int64, error) {
	negative := false
	i := start
	if i < end && buf[i] == '-' {
		negative = true
		i++
	}
	var value int64
	for ; i < end; i++ {
		b := buf[i]
		if b < '0' || b > '9' {
			return 0, ErrBadDigit
		}
		value = value*10 + int64(b-'0')
	}
	if negative {
		value = -value
	}
	return value, nil
}

func TestPutAsciiInt_MinLiteral(t *testing.T) {
	buf := make([]byte, 16)
	n := PutAsciiInt(buf, 0, math.MinInt32)
	if string(buf[:n]) != minInt32Literal {
		t.Errorf("got %q, want %q", buf[:n], minInt32Literal)
	}
}

func TestPutAsciiLong_MinLiteral(t *testing.T) {
	buf := make([]byte, 24)
	n := PutAsciiLong(buf, 0, math.MinInt64)
	if string(buf[:n]) != minInt64Literal {
		t.Errorf("got %q, want %q", buf[:n], minInt64Literal)
	}
}

func TestPutAsciiFloat_RoundTrip(t *testing.T) {
	cases := []DecimalFloat{
		{Value: 12345, Scale: 2},
		{Value: 0, Scale: 0},
		{Value: 5, Scale: 2},
		{Value: -125, Scale: 1},
		{Value: 42, Scale: 0},
		{Value: -1, Scale: 0},
	}
	for _, f := range cases {
		buf := make([]byte, 32)
		n := PutAsciiFloat(buf, 0, f)
		var got DecimalFloat
		if err := GetFloat(&got, buf, 0, n); err != nil {
			t.Fatalf("%+v: unexpected error: %v", f, err)
		}
		if !got.Equal(f) {
			t.Errorf("%+v: got %+v (%q)", f, got, buf[:n])
		}
	}
}

func TestPutAsciiFloat_Canonical(t *testing.T) {
	buf := make([]byte, 32)
	n := PutAsciiFloat(buf, 0, DecimalFloat{Value: 12345, Scale: 2})
	if string(buf[:n]) != "123.45" {
		t.Errorf("got %q, want %q", buf[:n], "123.45")
	}
}

func TestPutNatural(t *testing.T) {
	buf := make([]byte, 8)
	if err := PutNatural(buf, 0, 5, 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(buf[:5]) != "00042" {
		t.Errorf("got %q, want %q", buf[:5], "00042")
	}
}

func TestPutNatural_Overflow(t *testing.T) {
	buf := make([]byte, 8)
	if err := PutNatural(buf, 0, 2, 1000); err != ErrOverflow {
		t.Errorf("got %v, want ErrOverflow", err)
	}
}
