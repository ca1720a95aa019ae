// Package jsondoc is the built-in archive analyzer for JSON and YAML
// documents. Each archive parses into a document tree whose leaves carry
// canonical scalar values; the value check reports added, removed and
// changed nodes.
package jsondoc

import (
	"fmt"
	"sort"
	"strconv"

	"golang.org/x/text/unicode/norm"

	"apidrift/internal/model"
)

// Element kinds of the document tree.
var (
	KindDocument = model.NewKind("document")
	KindObject   = model.NewKind("object")
	KindArray    = model.NewKind("array")
	KindField    = model.NewKind("field")
	KindItem     = model.NewKind("item")
	KindValue    = model.NewKind("value")
)

// Payload is the per-node state of a document element.
type Payload struct {
	// File is the logical archive name the node came from.
	File string
	// Path is the node's slash path inside the document.
	Path string
	// Value is the canonical scalar rendering; only meaningful for value
	// nodes.
	Value string
	// IsValue marks leaf scalar nodes.
	IsValue bool
}

func payloadOf(e *model.Element) Payload {
	if p, ok := e.Payload.(Payload); ok {
		return p
	}
	return Payload{}
}

// buildTree converts a decoded document into elements under parent.
// Ordering falls out of the element model: object fields sort by key, array
// items by their zero-padded index.
func buildTree(parent *model.Element, file, path string, node any, arch string, role model.Role) {
	switch v := node.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			key := norm.NFC.String(k)
			childPath := path + "/" + key
			field := model.New(KindField, key, file+":"+childPath, arch)
			field.SetRole(role)
			field.Payload = Payload{File: file, Path: childPath}
			field = parent.AddChild(field)
			parent.AddReference(model.RefContains, field)
			buildValue(field, file, childPath, v[k], arch, role)
		}
	case []any:
		for i, item := range v {
			// Zero-padded so signature order matches index order.
			sig := fmt.Sprintf("%09d", i)
			childPath := path + "/" + strconv.Itoa(i)
			it := model.New(KindItem, sig, file+":"+childPath, arch)
			it.SetRole(role)
			it.Payload = Payload{File: file, Path: childPath}
			it = parent.AddChild(it)
			parent.AddReference(model.RefContains, it)
			buildValue(it, file, childPath, item, arch, role)
		}
	default:
		// Scalar document roots and field-less scalars are handled by
		// buildValue on the parent.
	}
}

// buildValue attaches the node's value child to owner: a nested container
// or a scalar leaf.
func buildValue(owner *model.Element, file, path string, node any, arch string, role model.Role) {
	switch node.(type) {
	case map[string]any:
		obj := model.New(KindObject, "object", file+":"+path+" (object)", arch)
		obj.SetRole(role)
		obj.Payload = Payload{File: file, Path: path}
		obj = owner.AddChild(obj)
		owner.AddReference(model.RefContains, obj)
		buildTree(obj, file, path, node, arch, role)
	case []any:
		arr := model.New(KindArray, "array", file+":"+path+" (array)", arch)
		arr.SetRole(role)
		arr.Payload = Payload{File: file, Path: path}
		arr = owner.AddChild(arr)
		owner.AddReference(model.RefContains, arr)
		buildTree(arr, file, path, node, arch, role)
	default:
		// The signature is the fixed "value" slot, not the value itself:
		// a changed scalar must pair up across the two forests so the
		// check can report a change rather than a remove plus an add.
		val := canonicalValue(node)
		leaf := model.New(KindValue, "value", file+":"+path+" = "+val, arch)
		leaf.SetRole(role)
		leaf.Payload = Payload{File: file, Path: path, Value: val, IsValue: true}
		leaf = owner.AddChild(leaf)
		owner.AddReference(model.RefContains, leaf)
	}
}

// canonicalValue renders a scalar deterministically across the JSON and
// YAML decoders.
func canonicalValue(node any) string {
	switch v := node.(type) {
	case nil:
		return "null"
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
