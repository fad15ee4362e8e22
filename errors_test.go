package cql

import "testing"

func TestParseWriteType(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		input string
		want  WriteType
	}{
		{"SIMPLE", WriteTypeSimple},
		{"BATCH", WriteTypeBatch},
		{"UNLOGGED_BATCH", WriteTypeUnloggedBatch},
		{"COUNTER", WriteTypeCounter},
		{"BATCH_LOG", WriteTypeBatchLog},
		{"CAS", WriteTypeCas},
		{"VIEW", WriteTypeView},
		{"CDC", WriteTypeCdc},
		{"OTHER", WriteTypeOther},
		{"SOMETHING_FUTURE_SERVERS_ADD", WriteType("SOMETHING_FUTURE_SERVERS_ADD")},
		{"", WriteType("")},
	}

	for _, tc := range testCases {
		if got := ParseWriteType(tc.input); got != tc.want {
			t.Errorf("ParseWriteType(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}
