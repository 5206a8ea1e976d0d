// Package persist implements the on-disk mirror described in spec §4.7 and
// §6: a JSON file mapping resource_key to a tagged-union entry, loaded back
// through a per-type_tag decoder registry so that older payload shapes can
// still be migrated forward, and written with a temp-file-then-rename
// sequence so a crash mid-write can never leave a corrupt mirror behind.
//
// The temp-then-rename idiom is grounded on
// score-spec-score-compose/internal/project/project.go's StateDirectory.Persist,
// which writes to "<file>.temp" and renames over the target for exactly the
// same reason ("important that we overwrite this file atomically via an
// inode move").
package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/go-version"

	"github.com/schell/teleform/tferr"
)

// Decoder turns the raw JSON payload of a stored entry, plus the schema
// version it was written with, into a concrete resource value. A Decoder
// that cannot make sense of data should return a non-nil error; Load then
// keeps the entry as Inert rather than failing the whole load (spec §4.7).
type Decoder func(schemaVersion string, data json.RawMessage) (any, error)

// Registry maps type_tag to the Decoder that knows how to load it. An
// unregistered type_tag is not an error: its entries load as Inert, exactly
// like an entry whose Decoder returned an error, consistent with spec §4.7
// ("An unmigratable entry loads as an opaque inert record").
type Registry struct {
	decoders map[string]Decoder
}

// NewRegistry constructs an empty decoder registry.
func NewRegistry() *Registry {
	return &Registry{decoders: make(map[string]Decoder)}
}

// Register associates typeTag with the decoder used to load its entries.
func (r *Registry) Register(typeTag string, dec Decoder) {
	r.decoders[typeTag] = dec
}

// Entry is one stored resource in the mirror.
type Entry struct {
	TypeTag       string
	SchemaVersion string
	Payload       any             // decoded concrete value; nil if Inert
	Inert         bool            // true if Payload could not be decoded
	Raw           json.RawMessage // original "data" bytes, always preserved so an inert entry round-trips unchanged
}

// Mirror is the in-memory form of the store file: resource_key to Entry.
type Mirror map[string]Entry

type wireEntry struct {
	Type          string          `json:"type"`
	SchemaVersion string          `json:"schema_version,omitempty"`
	Data          json.RawMessage `json:"data"`
}

// Load reads the mirror file at path, decoding each entry through reg.
// A missing file is not an error: it is treated as an empty mirror, matching
// the reference pack's LoadStateDirectory convention of distinguishing
// "no file yet" from an I/O failure.
//
// A non-nil Mirror returned alongside a non-nil error means every entry
// still loaded (inert entries included); the error is a *multierror.Error
// collecting one *tferr.SchemaMigrationError per entry whose Decoder
// rejected its stored payload (spec §7), for the caller to log or surface
// without that failure aborting the rest of the load. A nil Mirror means the
// read or top-level unmarshal itself failed, which is fatal.
func Load(path string, reg *Registry) (Mirror, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Mirror{}, nil
		}
		return nil, &tferr.PersistenceError{Op: "load", Path: path, Cause: err}
	}

	var wire map[string]wireEntry
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, &tferr.PersistenceError{Op: "load", Path: path, Cause: err}
	}

	mirror := make(Mirror, len(wire))
	var migrationErrs *multierror.Error
	for key, we := range wire {
		entry := Entry{TypeTag: we.Type, SchemaVersion: we.SchemaVersion, Raw: we.Data}
		dec, ok := reg.decoders[we.Type]
		if !ok {
			entry.Inert = true
			mirror[key] = entry
			continue
		}
		payload, err := dec(we.SchemaVersion, we.Data)
		if err != nil {
			entry.Inert = true
			mirror[key] = entry
			migrationErrs = multierror.Append(migrationErrs, &tferr.SchemaMigrationError{
				Key:     key,
				TypeTag: we.Type,
				Detail:  "decoder rejected stored payload",
				Cause:   err,
			})
			continue
		}
		entry.Payload = payload
		mirror[key] = entry
	}
	return mirror, migrationErrs.ErrorOrNil()
}

// Save writes mirror to path atomically: it marshals to a temp file in the
// same directory and renames it over path, so a reader never observes a
// partially-written file (spec §4.7 "Atomicity").
//
// Output is sorted by resource_key (spec §4.7 "Determinism").
func Save(path string, mirror Mirror) error {
	keys := make([]string, 0, len(mirror))
	for k := range mirror {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	wire := make(map[string]wireEntry, len(mirror))
	for _, k := range keys {
		e := mirror[k]
		data := e.Raw
		if !e.Inert {
			marshaled, err := json.Marshal(e.Payload)
			if err != nil {
				return &tferr.PersistenceError{Op: "save", Path: path, Cause: err}
			}
			data = marshaled
		}
		wire[k] = wireEntry{Type: e.TypeTag, SchemaVersion: e.SchemaVersion, Data: data}
	}

	// encoding/json sorts map keys for us on marshal, but we build the
	// ordered slice above too so the shape of this function matches the
	// deterministic-output contract explicitly rather than relying on that
	// incidental behavior.
	out, err := json.MarshalIndent(wire, "", "  ")
	if err != nil {
		return &tferr.PersistenceError{Op: "save", Path: path, Cause: err}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".teleform-store-*.tmp")
	if err != nil {
		return &tferr.PersistenceError{Op: "save", Path: path, Cause: err}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		return &tferr.PersistenceError{Op: "save", Path: path, Cause: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &tferr.PersistenceError{Op: "save", Path: path, Cause: err}
	}
	if err := tmp.Close(); err != nil {
		return &tferr.PersistenceError{Op: "save", Path: path, Cause: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return &tferr.PersistenceError{Op: "save", Path: path, Cause: err}
	}
	return nil
}

// SchemaAtLeast reports whether schemaVersion satisfies ">= min", used by a
// type's Decoder to decide whether an entry needs its legacy migration path.
// An empty schemaVersion is treated as older than any min (version 0.0.0),
// since entries written before this mechanism existed never carried one.
func SchemaAtLeast(schemaVersion, min string) (bool, error) {
	if schemaVersion == "" {
		return false, nil
	}
	got, err := version.NewVersion(schemaVersion)
	if err != nil {
		return false, fmt.Errorf("persist: parsing schema version %q: %w", schemaVersion, err)
	}
	want, err := version.NewVersion(min)
	if err != nil {
		return false, fmt.Errorf("persist: parsing minimum version %q: %w", min, err)
	}
	return got.GreaterThanOrEqual(want), nil
}
