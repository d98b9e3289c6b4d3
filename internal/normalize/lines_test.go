package normalize

import (
	"reflect"
	"testing"
)

func TestSplitLines(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{in: "", want: []string{""}},
		{in: "one", want: []string{"one"}},
		{in: "a\nb", want: []string{"a", "b"}},
		{in: "a\r\nb\r\n", want: []string{"a", "b", ""}},
		{in: "a\rb\nc", want: []string{"a", "b", "c"}},
		{in: "a\n\nb", want: []string{"a", "", "b"}},
	}

	for _, tc := range cases {
		got := SplitLines(tc.in)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("SplitLines(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
