package fastpath

import "testing"

func TestFirstNonZero(t *testing.T) {
	cases := []struct {
		in   []byte
		want int
	}{
		{nil, 0},
		{[]byte{0, 0, 0}, 3},
		{[]byte{0, 0, 1, 0}, 2},
		{[]byte{1}, 0},
		{make([]byte, 20), 20},
		{append(make([]byte, 17), 5), 17},
	}
	for i, c := range cases {
		if got := FirstNonZero(c.in); got != c.want {
			t.Errorf("case %d: FirstNonZero(%v) = %d, want %d", i, c.in, got, c.want)
		}
	}
}
