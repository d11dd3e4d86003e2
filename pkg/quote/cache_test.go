package quote

import "testing"

func TestCacheKeyNormalizesSymbol(t *testing.T) {
	cases := map[string]string{
		"ACME":   "quote:ACME",
		"acme":   "quote:ACME",
		" acme ": "quote:ACME",
	}
	for in, want := range cases {
		if got := cacheKey(in); got != want {
			t.Errorf("cacheKey(%q) = %q, want %q", in, got, want)
		}
	}
}
