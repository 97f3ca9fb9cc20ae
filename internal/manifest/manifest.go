package manifest

import (
	"encoding/json"
	"errors"
	"fmt"

	"sb3slim/internal/contenthash"
)

// Filename is the archive entry that holds the manifest.
const Filename = "project.json"

// assetLists names the per-target lists whose entries are rewritten.
var assetLists = []string{"costumes", "sounds"}

// ErrInvalid reports a manifest that is not a JSON object with a targets list.
var ErrInvalid = errors.New("invalid project manifest")

// Lookup resolves an original asset name to its replacement filename.
type Lookup interface {
	Lookup(originalPath string) (string, bool)
}

// Manifest is a parsed project.json.
type Manifest struct {
	root    object
	targets []json.RawMessage
}

// Parse decodes a manifest. The document must be an object whose "targets"
// member is an array.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m.root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	raw, ok := m.root.get("targets")
	if !ok {
		return nil, fmt.Errorf("%w: missing targets", ErrInvalid)
	}
	if err := json.Unmarshal(raw, &m.targets); err != nil {
		return nil, fmt.Errorf("%w: targets: %v", ErrInvalid, err)
	}
	return &m, nil
}

// Reference is one costume or sound entry.
type Reference struct {
	Target     int
	List       string
	Index      int
	MD5Ext     string
	AssetID    string
	DataFormat string
}

type identity struct {
	AssetID    string `json:"assetId"`
	DataFormat string `json:"dataFormat"`
	MD5Ext     string `json:"md5ext"`
}

// References lists every costume and sound entry in target order. Entries
// that are not objects are skipped.
func (m *Manifest) References() ([]Reference, error) {
	var refs []Reference
	err := m.walk(func(ti int, list string, idx int, elem json.RawMessage) (json.RawMessage, error) {
		var id identity
		if err := json.Unmarshal(elem, &id); err != nil {
			return elem, nil
		}
		refs = append(refs, Reference{
			Target:     ti,
			List:       list,
			Index:      idx,
			MD5Ext:     id.MD5Ext,
			AssetID:    id.AssetID,
			DataFormat: id.DataFormat,
		})
		return elem, nil
	})
	return refs, err
}

// Rewrite replaces the identity fields of every costume and sound entry whose
// md5ext is known to lookup. The three fields are derived from the same new
// filename; entries that are unknown are left untouched. It returns the number
// of entries rewritten.
func (m *Manifest) Rewrite(lookup Lookup) (int, error) {
	rewritten := 0
	err := m.walk(func(_ int, _ string, _ int, elem json.RawMessage) (json.RawMessage, error) {
		var id identity
		if err := json.Unmarshal(elem, &id); err != nil || id.MD5Ext == "" {
			return elem, nil
		}
		newName, ok := lookup.Lookup(id.MD5Ext)
		if !ok {
			return elem, nil
		}
		updated, err := rewriteElement(elem, newName)
		if err != nil {
			return nil, fmt.Errorf("rewrite %s: %w", id.MD5Ext, err)
		}
		rewritten++
		return updated, nil
	})
	return rewritten, err
}

// Marshal serializes the manifest compactly.
func (m *Manifest) Marshal() ([]byte, error) {
	targets, err := marshalCompact(m.targets)
	if err != nil {
		return nil, err
	}
	m.root.set("targets", targets)
	return marshalCompact(m.root)
}

func rewriteElement(elem json.RawMessage, newName string) (json.RawMessage, error) {
	var obj object
	if err := json.Unmarshal(elem, &obj); err != nil {
		return nil, err
	}
	assetID, ext := contenthash.SplitFilename(newName)
	fields := [][2]string{{"assetId", assetID}, {"dataFormat", ext}, {"md5ext", newName}}
	for _, f := range fields {
		if err := obj.setString(f[0], f[1]); err != nil {
			return nil, err
		}
	}
	return marshalCompact(obj)
}

type visitFunc func(target int, list string, index int, elem json.RawMessage) (json.RawMessage, error)

// walk visits each costume and sound entry and stores whatever the visitor
// returns back into its list. Lists are re-encoded only when an entry changed.
func (m *Manifest) walk(visit visitFunc) error {
	for ti, rawTarget := range m.targets {
		var target object
		if err := json.Unmarshal(rawTarget, &target); err != nil {
			continue
		}
		targetChanged := false
		for _, list := range assetLists {
			rawList, ok := target.get(list)
			if !ok {
				continue
			}
			var elems []json.RawMessage
			if err := json.Unmarshal(rawList, &elems); err != nil {
				continue
			}
			listChanged := false
			for idx, elem := range elems {
				next, err := visit(ti, list, idx, elem)
				if err != nil {
					return err
				}
				if string(next) != string(elem) {
					elems[idx] = next
					listChanged = true
				}
			}
			if listChanged {
				encoded, err := marshalCompact(elems)
				if err != nil {
					return err
				}
				target.set(list, encoded)
				targetChanged = true
			}
		}
		if targetChanged {
			encoded, err := marshalCompact(target)
			if err != nil {
				return err
			}
			m.targets[ti] = encoded
		}
	}
	return nil
}
