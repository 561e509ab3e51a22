package match

import (
	"testing"
)

func FuzzWildcardReconstruction(f *testing.F) {
	// Seed corpus
	f.Add("aaa", "garbage goes here", "zzz")
	f.Add("a*b", "?", "[c]")
	f.Add("", "", "")
	f.Add(`\`, "{x,y}", "!")
	f.Add("}", "", "}")
	f.Add("ab", "", "ab")

	f.Fuzz(func(t *testing.T, prefix, middle, suffix string) {
		query := prefix + middle + suffix

		ok, err := Wildcard([]string{prefix, suffix}, query)
		if err != nil {
			t.Fatalf("segments %q failed to compile: %v", []string{prefix, suffix}, err)
		}
		if !ok {
			t.Fatalf("%q does not accept %q", []string{prefix, suffix}, query)
		}

		// A hole-free template only matches itself.
		ok, err = Wildcard([]string{prefix + middle}, query)
		if err != nil {
			t.Fatal(err)
		}
		if ok != (suffix == "") {
			t.Fatalf("exact %q vs %q: got %v", prefix+middle, query, ok)
		}

		// Prefix and suffix may not share bytes of the query.
		if prefix != "" {
			ok, err = Wildcard([]string{prefix, prefix}, prefix)
			if err != nil {
				t.Fatal(err)
			}
			if ok {
				t.Fatalf("%q accepted as both prefix and suffix of itself", prefix)
			}
		}
	})
}
