package phone

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0812-345-678", "62812345678"},
		{"", ""},
		{"abc", ""},
		{"628123", "628123"},
		{"+62 812 3456 7890", "6281234567890"},
		{"(021) 555 0101", "62215550101"},
		{"0", "62"},
		{"N/A", ""},
		// Full-width digits are kept; only an ASCII leading zero is rewritten.
		{"tel: ８１２-３", "８１２３"},
		{"０８１２", "０８１２"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"", "0", "00", "0812-345-678", "628123", "62-0812", "abc0def", "+6281 000", "０８１２", "0８１２",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize(Normalize(%q)) = %q, want %q", in, twice, once)
		}
	}
}
