package machine

// ObjString is an interned, immutable string. Every ObjString reachable
// from Lox code passed through Table.findString first (see table.go), so
// two Lox strings with the same contents are always the same *ObjString,
// making Equal a pointer comparison in the common case (objectsEqual still
// falls back to a content compare for strings built outside interning,
// e.g. during tests).
type ObjString struct {
	Chars string
	hash  uint32
}

// hashString is FNV-1a, exactly as clox's table.c hashString computes it,
// so that golden bytecode/constant dumps produced against the reference
// implementation stay comparable.
func hashString(s string) uint32 {
	var hash uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		hash ^= uint32(s[i])
		hash *= 16777619
	}
	return hash
}
