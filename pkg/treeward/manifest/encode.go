package manifest

import (
	"fmt"
	"sort"
	"strings"
)

// Encode renders m to its canonical byte form. Encode is a total function:
// it never fails, and two manifests with equal contents always produce
// identical bytes, because child names are sorted by the lexicographic
// order of their byte representation and every field is written in a fixed
// order with no implementation-dependent whitespace.
//
// The format is TOML, written by hand rather than through a generic
// marshaler so that section ordering, quoting, and whitespace are under
// treeward's control rather than a library's default key ordering (map
// iteration order is not guaranteed, and TOML marshalers are not obliged
// to preserve insertion order either). Decode uses go-toml/v2; Encode does
// not need it, because the output is always this package's own fixed
// shape.
func Encode(m *Manifest) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "[metadata]\nversion = %d\n", m.Version)

	names := make([]string, 0, len(m.Entries))
	for name := range m.Entries {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entry := m.Entries[name]
		b.WriteString("\n")
		fmt.Fprintf(&b, "[entries.%s]\n", quoteTOMLKey(name))

		switch entry.Kind {
		case File:
			fmt.Fprintf(&b, "type = %q\n", "File")
			fmt.Fprintf(&b, "sha256 = %q\n", entry.Digest)
			fmt.Fprintf(&b, "mtime_nanos = %d\n", entry.MtimeNanos)
			fmt.Fprintf(&b, "size = %d\n", entry.Size)
		case Dir:
			fmt.Fprintf(&b, "type = %q\n", "Dir")
		case Symlink:
			fmt.Fprintf(&b, "type = %q\n", "Symlink")
			fmt.Fprintf(&b, "symlink_target = %s\n", quoteTOMLString(entry.SymlinkTarget))
		}
	}

	return []byte(b.String())
}

// quoteTOMLKey renders name as a quoted TOML key: entries."name". Every
// name is quoted, regardless of whether it would be a legal bare TOML key,
// so that encode is a single uniform rule rather than a bare/quoted
// branch, and so arbitrary bytes (dots, spaces, unicode) round-trip
// without special-casing.
func quoteTOMLKey(name string) string {
	return quoteTOMLString(name)
}

// quoteTOMLString renders s as a TOML basic (double-quoted) string,
// escaping backslash, double quote, and control characters per the TOML
// basic string grammar.
func quoteTOMLString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
