package permissions

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPathNotFound means a path the schema enumerates could not be resolved
	// in the state. The schema and the state were built from different
	// versions; this is a defect, not a user error.
	ErrPathNotFound = errors.New("permission path not found in state")

	// ErrUnknownPath means a caller tried to set or toggle a path that does
	// not exist in the state. Writes to unknown paths always fail explicitly,
	// they are never a silent no-op.
	ErrUnknownPath = errors.New("unknown permission path")
)

// Leaf is a single boolean permission setting at the end of a dotted path.
type Leaf struct {
	Key     string
	Label   string
	Default bool
}

// Section is a named group of leaves. Key may itself be dotted
// (e.g. "analytics.sms"); the full path of a leaf is Section.Key + "." + Leaf.Key.
type Section struct {
	Key    string
	Label  string
	Leaves []Leaf
}

// Schema is the static, versioned definition of which sections and leaves
// exist, their labels and their default values. The content is configuration
// owned by the application; the operations below are driven by it.
type Schema []Section

// State is a nested permission tree: each value is either a bool leaf or a
// further State. Callers treat a State as immutable and replace their held
// reference with the value returned by SetLeaf/ToggleLeaf.
type State map[string]any

// Flat is the wire representation: fully-qualified dotted path -> bool.
type Flat map[string]bool

// LeafPaths returns every fully-qualified leaf path the schema defines,
// in section/leaf declaration order.
func (s Schema) LeafPaths() []string {
	var paths []string
	for _, section := range s {
		for _, leaf := range section.Leaves {
			paths = append(paths, section.Key+"."+leaf.Key)
		}
	}
	return paths
}

// GetLeaf resolves a dotted path one segment at a time and returns the bool
// at the end of it. Any missing or non-bool terminal segment yields
// ErrPathNotFound.
func GetLeaf(state State, path string) (bool, error) {
	value, err := resolve(state, path)
	if err != nil {
		return false, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	return value, nil
}

// SetLeaf returns a new state with exactly the target leaf replaced. The
// input state is never mutated; the whole tree is copied, which is fine for
// a human-scale schema of a few dozen leaves. Setting a path that does not
// resolve to an existing leaf fails with ErrUnknownPath.
func SetLeaf(state State, path string, value bool) (State, error) {
	if _, err := resolve(state, path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPath, path)
	}

	next := deepCopy(state)
	node := next
	segments := strings.Split(path, ".")
	for _, seg := range segments[:len(segments)-1] {
		node = node[seg].(State)
	}
	node[segments[len(segments)-1]] = value
	return next, nil
}

// ToggleLeaf flips the leaf at path and returns the new state.
func ToggleLeaf(state State, path string) (State, error) {
	current, err := resolve(state, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPath, path)
	}
	return SetLeaf(state, path, !current)
}

// Flatten emits path -> value for every leaf path the schema defines, and
// only those. Leaves present in the state but absent from the schema are
// never emitted, so stale keys from an older schema version cannot leak onto
// the wire. A schema path missing from the state is ErrPathNotFound.
func Flatten(state State, schema Schema) (Flat, error) {
	flat := make(Flat)
	for _, path := range schema.LeafPaths() {
		value, err := GetLeaf(state, path)
		if err != nil {
			return nil, err
		}
		flat[path] = value
	}
	return flat, nil
}

// Unflatten builds a state from the flat wire form. Every schema leaf is
// populated: from flat when the key is present, from the leaf's declared
// default otherwise. Missing keys are not an error. Keys in flat that the
// schema does not define are ignored.
func Unflatten(flat Flat, schema Schema) State {
	state := make(State)
	for _, section := range schema {
		for _, leaf := range section.Leaves {
			path := section.Key + "." + leaf.Key
			value, ok := flat[path]
			if !ok {
				value = leaf.Default
			}
			insert(state, path, value)
		}
	}
	return state
}

// DefaultState produces the initial state with every leaf at its declared
// default.
func DefaultState(schema Schema) State {
	return Unflatten(nil, schema)
}

// resolve walks the nested state. It returns an error for any missing
// segment, a non-State intermediate, or a non-bool terminal.
func resolve(state State, path string) (bool, error) {
	segments := strings.Split(path, ".")
	node := state
	for _, seg := range segments[:len(segments)-1] {
		child, ok := node[seg]
		if !ok {
			return false, fmt.Errorf("missing segment %q", seg)
		}
		node, ok = child.(State)
		if !ok {
			return false, fmt.Errorf("segment %q is not a subtree", seg)
		}
	}
	last := segments[len(segments)-1]
	child, ok := node[last]
	if !ok {
		return false, fmt.Errorf("missing leaf %q", last)
	}
	value, ok := child.(bool)
	if !ok {
		return false, fmt.Errorf("leaf %q is not a bool", last)
	}
	return value, nil
}

func insert(state State, path string, value bool) {
	segments := strings.Split(path, ".")
	node := state
	for _, seg := range segments[:len(segments)-1] {
		child, ok := node[seg].(State)
		if !ok {
			child = make(State)
			node[seg] = child
		}
		node = child
	}
	node[segments[len(segments)-1]] = value
}

func deepCopy(state State) State {
	next := make(State, len(state))
	for key, value := range state {
		if child, ok := value.(State); ok {
			next[key] = deepCopy(child)
			continue
		}
		next[key] = value
	}
	return next
}
