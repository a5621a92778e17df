package jpt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Cybersecurity-LINKS/json-proof-token/errs"
)

// Leaf is one (path, value) pair produced by Flatten, in source-order
// depth-first traversal order.
type Leaf struct {
	Path  string
	Value interface{} // string, json.Number, bool, or nil
}

// Flatten walks a JSON object's leaves in source order, producing dotted
// (object) and bracket-indexed (array) paths down to scalar leaves. Empty
// objects and empty arrays are dropped entirely rather than emitting a leaf
// for them — this recurses fully rather than treating any nested object as
// an opaque unit, matching the reference flattener this behavior is
// grounded on.
func Flatten(claimsJSON []byte) ([]Leaf, error) {
	dec := json.NewDecoder(bytes.NewReader(claimsJSON))
	dec.UseNumber()

	var out []Leaf
	if err := flattenValue(dec, "", &out); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrEncoding, err)
	}
	return out, nil
}

func flattenValue(dec *json.Decoder, path string, out *[]Leaf) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	delim, isDelim := tok.(json.Delim)
	if !isDelim {
		*out = append(*out, Leaf{Path: path, Value: tok})
		return nil
	}

	switch delim {
	case '{':
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return err
			}
			key, ok := keyTok.(string)
			if !ok {
				return fmt.Errorf("object key is not a string")
			}
			childPath := key
			if path != "" {
				childPath = path + "." + key
			}
			if err := flattenValue(dec, childPath, out); err != nil {
				return err
			}
		}
		_, err := dec.Token() // consume '}'
		return err
	case '[':
		i := 0
		for dec.More() {
			childPath := fmt.Sprintf("%s[%d]", path, i)
			if err := flattenValue(dec, childPath, out); err != nil {
				return err
			}
			i++
		}
		_, err := dec.Token() // consume ']'
		return err
	default:
		return fmt.Errorf("unexpected delimiter %q", delim)
	}
}

// pathElem is one accessor in a parsed leaf path: either an object key or
// an array index.
type pathElem struct {
	key     string
	index   int
	isIndex bool
}

func parsePath(path string) ([]pathElem, error) {
	var elems []pathElem
	for _, segment := range strings.Split(path, ".") {
		name, indices, err := splitIndices(segment)
		if err != nil {
			return nil, err
		}
		if name != "" {
			elems = append(elems, pathElem{key: name})
		}
		for _, idx := range indices {
			elems = append(elems, pathElem{index: idx, isIndex: true})
		}
	}
	return elems, nil
}

// splitIndices splits a path segment like "friends[0][1]" into its
// leading key name ("friends") and its bracket indices ([0, 1]).
func splitIndices(segment string) (string, []int, error) {
	bracket := strings.IndexByte(segment, '[')
	if bracket == -1 {
		return segment, nil, nil
	}
	name := segment[:bracket]
	rest := segment[bracket:]

	var indices []int
	for len(rest) > 0 {
		if rest[0] != '[' {
			return "", nil, fmt.Errorf("malformed path segment %q", segment)
		}
		end := strings.IndexByte(rest, ']')
		if end == -1 {
			return "", nil, fmt.Errorf("unterminated index in path segment %q", segment)
		}
		idx, err := strconv.Atoi(rest[1:end])
		if err != nil {
			return "", nil, fmt.Errorf("non-numeric index in path segment %q", segment)
		}
		indices = append(indices, idx)
		rest = rest[end+1:]
	}
	return name, indices, nil
}

// Unflatten rebuilds a sparse JSON object from a set of (path, value)
// leaves. Paths absent from leaves are simply absent from the result.
func Unflatten(leaves []Leaf) (map[string]interface{}, error) {
	var root interface{} = map[string]interface{}{}

	for _, leaf := range leaves {
		elems, err := parsePath(leaf.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrEncoding, err)
		}
		if err := setPath(&root, elems, leaf.Value); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrEncoding, err)
		}
	}

	out, _ := root.(map[string]interface{})
	return out, nil
}

func setPath(container *interface{}, elems []pathElem, value interface{}) error {
	if len(elems) == 0 {
		*container = value
		return nil
	}

	head, rest := elems[0], elems[1:]

	if head.isIndex {
		slice, ok := (*container).([]interface{})
		if !ok {
			if *container != nil {
				return fmt.Errorf("path conflict: expected array")
			}
			slice = nil
		}
		for len(slice) <= head.index {
			slice = append(slice, nil)
		}
		child := slice[head.index]
		if err := setPath(&child, rest, value); err != nil {
			return err
		}
		slice[head.index] = child
		*container = slice
		return nil
	}

	m, ok := (*container).(map[string]interface{})
	if !ok {
		if *container != nil {
			return fmt.Errorf("path conflict: expected object")
		}
		m = map[string]interface{}{}
	}
	child := m[head.key]
	if err := setPath(&child, rest, value); err != nil {
		return err
	}
	m[head.key] = child
	*container = m
	return nil
}
