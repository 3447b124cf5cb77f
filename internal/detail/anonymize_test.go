package detail

import "testing"

func TestMaskReviewer(t *testing.T) {
	cases := []struct {
		identity string
		want     string
	}{
		{"johndoe@example.com", "jo***oe"},
		{"alexander@shop.io", "al***nder"},
		{"ab@example.com", "ab***"},
		{"plainusername", "pl***username"},
		{"abcde", "ab***"},
		{"abcdef", "ab***f"},
		{"ab", "ab***"},
		{"a", "a***"},
		{"", "***"},
		// '@' first means the local part is empty; the whole identity is
		// masked instead.
		{"@example.com", "@e***ple.com"},
		{"bücherwurm@mail.de", "bü***rwurm"},
	}
	for _, tc := range cases {
		if got := MaskReviewer(tc.identity); got != tc.want {
			t.Fatalf("MaskReviewer(%q) = %q, want %q", tc.identity, got, tc.want)
		}
	}
}
