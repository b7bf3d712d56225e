package digest

import "testing"

func TestSum_KnownVectors(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "d41d8cd98f00b204e9800998ecf8427e"},
		{"alice", "6384e2b2184bcbf58eccf10ca7a6563c"},
		{"password", "5f4dcc3b5aa765d61d8327deb882cf99"},
		{"The quick brown fox jumps over the lazy dog", "9e107d9d372bb6826bd81d3542a419d6"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Sum(tt.input); got != tt.want {
				t.Errorf("Sum(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSum_Deterministic(t *testing.T) {
	for _, s := range []string{"", "secret1", "ünïcödé", "with\nnewline"} {
		if Sum(s) != Sum(s) {
			t.Errorf("Sum(%q) not deterministic", s)
		}
	}
}

func TestSum_DistinctInputs(t *testing.T) {
	if Sum("pw1") == Sum("pw2") {
		t.Error("distinct inputs produced the same digest")
	}
	if Sum("alice") == Sum("Alice") {
		t.Error("digest must be case-sensitive")
	}
}

func TestSum_ShapeIsValid(t *testing.T) {
	for _, s := range []string{"", "a", "日本語"} {
		d := Sum(s)
		if len(d) != Size {
			t.Errorf("len(Sum(%q)) = %d, want %d", s, len(d), Size)
		}
		if !Valid(d) {
			t.Errorf("Valid(Sum(%q)) = false", s)
		}
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"valid", "5f4dcc3b5aa765d61d8327deb882cf99", true},
		{"empty", "", false},
		{"too short", "5f4dcc3b", false},
		{"uppercase", "5F4DCC3B5AA765D61D8327DEB882CF99", false},
		{"non-hex", "zf4dcc3b5aa765d61d8327deb882cf99", false},
		{"sha1 length", "5baa61e4c9b93f3f0682250b6cf8331b7ee68fd8", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Valid(tt.in); got != tt.want {
				t.Errorf("Valid(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	a := Sum("secret1")
	if !Equal(a, Sum("secret1")) {
		t.Error("Equal() = false for identical digests")
	}
	if Equal(a, Sum("secret2")) {
		t.Error("Equal() = true for different digests")
	}
	if Equal(a, "") {
		t.Error("Equal() = true against empty string")
	}
}
