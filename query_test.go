package cql

import "testing"

func TestParseUseKeyspace(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name         string
		content      string
		wantKeyspace string
		wantCase     bool
		wantOk       bool
	}{
		{name: "lowercase", content: "use benchks", wantKeyspace: "benchks", wantOk: true},
		{name: "uppercase keyword", content: "USE benchks", wantKeyspace: "benchks", wantOk: true},
		{name: "mixed case keyword", content: "Use benchks", wantKeyspace: "benchks", wantOk: true},
		{name: "trailing semicolon", content: "use benchks;", wantKeyspace: "benchks", wantOk: true},
		{name: "surrounding whitespace", content: "  use   benchks  ", wantKeyspace: "benchks", wantOk: true},
		{name: "quoted is case sensitive", content: `USE "BenchKs"`, wantKeyspace: "BenchKs", wantCase: true, wantOk: true},
		{name: "not a use statement", content: "SELECT * FROM benchks.t", wantOk: false},
		{name: "use-prefixed identifier isn't a keyword match", content: "useless_view", wantOk: false},
		{name: "empty keyspace", content: "use ", wantOk: false},
		{name: "empty content", content: "", wantOk: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ks, caseSensitive, ok := parseUseKeyspace(tc.content)
			if ok != tc.wantOk {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOk)
			}
			if !tc.wantOk {
				return
			}
			if ks != tc.wantKeyspace {
				t.Errorf("keyspace = %q, want %q", ks, tc.wantKeyspace)
			}
			if caseSensitive != tc.wantCase {
				t.Errorf("caseSensitive = %v, want %v", caseSensitive, tc.wantCase)
			}
		})
	}
}
