package cql

// validateKeyspaceName enforces the same rules Cassandra's CREATE
// KEYSPACE/USE statements enforce server-side, checked client-side so a
// typo fails fast with a BadKeyspaceName instead of a round trip (spec §6).
// A quoted (caseSensitive) identifier only forbids the quote character
// itself; an unquoted one is restricted to alphanumerics and underscore.
func validateKeyspaceName(name string, caseSensitive bool) error {
	if len(name) == 0 {
		return &BadKeyspaceName{Reason: KeyspaceEmpty, Name: name}
	}
	if len(name) > 48 {
		return &BadKeyspaceName{Reason: KeyspaceTooLong, Name: name}
	}
	if caseSensitive {
		for _, r := range name {
			if r == '"' {
				return &BadKeyspaceName{Reason: KeyspaceIllegalCharacter, Name: name, Char: r}
			}
		}
		return nil
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return &BadKeyspaceName{Reason: KeyspaceIllegalCharacter, Name: name, Char: r}
		}
	}
	return nil
}
