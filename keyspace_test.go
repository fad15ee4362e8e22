package cql

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateKeyspaceName(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name          string
		input         string
		caseSensitive bool
		reason        BadKeyspaceNameReason
		char          rune
		ok            bool
	}{
		{name: "valid simple", input: "benchks", ok: true},
		{name: "valid with underscore and digits", input: "bench_ks_1", ok: true},
		{name: "empty", input: "", reason: KeyspaceEmpty},
		{name: "too long", input: strings.Repeat("a", 49), reason: KeyspaceTooLong},
		{name: "illegal character", input: "bad-name", reason: KeyspaceIllegalCharacter, char: '-'},
		{name: "illegal character space", input: "bench ks", reason: KeyspaceIllegalCharacter, char: ' '},
		{name: "quoted allows punctuation", input: "bad-name", caseSensitive: true, ok: true},
		{name: "quoted rejects embedded quote", input: `bad"name`, caseSensitive: true, reason: KeyspaceIllegalCharacter, char: '"'},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := validateKeyspaceName(tc.input, tc.caseSensitive)
			if tc.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var bad *BadKeyspaceName
			if !errors.As(err, &bad) {
				t.Fatalf("expected *BadKeyspaceName, got %T (%v)", err, err)
			}
			if bad.Reason != tc.reason {
				t.Fatalf("got reason %v, want %v", bad.Reason, tc.reason)
			}
			if tc.reason == KeyspaceIllegalCharacter && bad.Char != tc.char {
				t.Fatalf("got offending char %q, want %q", bad.Char, tc.char)
			}
		})
	}
}
