package manifest

import (
	"fmt"
	"sort"

	"github.com/jamesainslie/treeward/pkg/treeward/errs"
	toml "github.com/pelletier/go-toml/v2"
)

// Decode parses a manifest's canonical text form. It fails with
// errs.CorruptedManifest on malformed syntax, an unsupported version,
// an unknown top-level section, unknown fields within a section, or an
// entry whose field set doesn't match its declared type.
//
// Decoding goes through go-toml/v2's generic map form rather than a typed
// struct: the entries section is keyed by arbitrary child names with a
// field set that depends on a "type" discriminator, which doesn't map onto
// go-toml's DisallowUnknownFields (that only rejects unknown struct
// fields, and a map accepts any key by definition). So the shape and
// per-type field-set checks below are treeward's own invariant, applied
// after a generic decode, with the version checked before anything else
// in the document is trusted.
func Decode(path string, data []byte) (*Manifest, error) {
	var doc map[string]interface{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, errs.New(errs.CorruptedManifest, path, err)
	}

	if err := checkNoExtraKeys(doc, "metadata", "entries"); err != nil {
		return nil, errs.New(errs.CorruptedManifest, path, err)
	}

	version, err := decodeMetadata(doc)
	if err != nil {
		return nil, errs.New(errs.CorruptedManifest, path, err)
	}
	if version != SupportedVersion {
		return nil, errs.New(errs.CorruptedManifest, path,
			fmt.Errorf("unsupported manifest version %d (want %d)", version, SupportedVersion))
	}

	entries, err := decodeEntries(doc)
	if err != nil {
		return nil, errs.New(errs.CorruptedManifest, path, err)
	}

	return &Manifest{Version: version, Entries: entries}, nil
}

func decodeMetadata(doc map[string]interface{}) (int, error) {
	rawMeta, ok := doc["metadata"]
	if !ok {
		return 0, fmt.Errorf("missing required [metadata] section")
	}
	meta, ok := rawMeta.(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("[metadata] must be a table")
	}
	if err := checkNoExtraKeys(meta, "version"); err != nil {
		return 0, fmt.Errorf("metadata: %w", err)
	}

	rawVersion, ok := meta["version"]
	if !ok {
		return 0, fmt.Errorf("metadata: missing required field 'version'")
	}
	version, ok := asInt(rawVersion)
	if !ok {
		return 0, fmt.Errorf("metadata: 'version' must be an integer")
	}
	return version, nil
}

func decodeEntries(doc map[string]interface{}) (map[string]Entry, error) {
	result := make(map[string]Entry)

	rawEntries, ok := doc["entries"]
	if !ok {
		return result, nil
	}
	entriesTable, ok := rawEntries.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("[entries] must be a table")
	}

	for name, rawEntry := range entriesTable {
		entryTable, ok := rawEntry.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("entries.%q must be a table", name)
		}
		entry, err := decodeEntry(entryTable)
		if err != nil {
			return nil, fmt.Errorf("entries.%q: %w", name, err)
		}
		result[name] = entry
	}

	return result, nil
}

func decodeEntry(t map[string]interface{}) (Entry, error) {
	rawType, ok := t["type"]
	if !ok {
		return Entry{}, fmt.Errorf("missing required field 'type'")
	}
	typeName, ok := rawType.(string)
	if !ok {
		return Entry{}, fmt.Errorf("'type' must be a string")
	}

	switch typeName {
	case "File":
		if err := checkNoExtraKeys(t, "type", "sha256", "mtime_nanos", "size"); err != nil {
			return Entry{}, err
		}
		sha256Val, ok := t["sha256"].(string)
		if !ok {
			return Entry{}, fmt.Errorf("File entry missing string field 'sha256'")
		}
		mtimeVal, ok := asInt(t["mtime_nanos"])
		if !ok {
			return Entry{}, fmt.Errorf("File entry missing integer field 'mtime_nanos'")
		}
		sizeVal, ok := asInt(t["size"])
		if !ok {
			return Entry{}, fmt.Errorf("File entry missing integer field 'size'")
		}
		return Entry{
			Kind:       File,
			Digest:     sha256Val,
			MtimeNanos: uint64(mtimeVal),
			Size:       int64(sizeVal),
		}, nil

	case "Dir":
		if err := checkNoExtraKeys(t, "type"); err != nil {
			return Entry{}, err
		}
		return Entry{Kind: Dir}, nil

	case "Symlink":
		if err := checkNoExtraKeys(t, "type", "symlink_target"); err != nil {
			return Entry{}, err
		}
		target, ok := t["symlink_target"].(string)
		if !ok {
			return Entry{}, fmt.Errorf("Symlink entry missing string field 'symlink_target'")
		}
		return Entry{Kind: Symlink, SymlinkTarget: target}, nil

	default:
		return Entry{}, fmt.Errorf("unknown entry type %q", typeName)
	}
}

// asInt accepts any of the integer representations go-toml/v2 can produce
// for a generic interface{} decode target.
func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case int:
		return n, true
	case uint64:
		return int(n), true
	default:
		return 0, false
	}
}

// checkNoExtraKeys fails if m contains any key not in allowed. Unknown
// fields are a hard decode error; forward compatibility is handled by the
// version bump, never by silently ignoring fields a future version added.
func checkNoExtraKeys(m map[string]interface{}, allowed ...string) error {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, k := range allowed {
		allowedSet[k] = struct{}{}
	}
	var extra []string
	for k := range m {
		if _, ok := allowedSet[k]; !ok {
			extra = append(extra, k)
		}
	}
	if len(extra) == 0 {
		return nil
	}
	sort.Strings(extra)
	return fmt.Errorf("unknown field(s): %v", extra)
}
