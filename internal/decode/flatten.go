package decode

import (
	"strconv"

	"github.com/tidwall/gjson"
)

// MaxFlattenDepth bounds how deep the generic flattener descends into nested
// objects. Payload nesting depth is input-controlled, so traversal uses an
// explicit worklist with a depth guard instead of recursion.
const MaxFlattenDepth = 16

type flattenItem struct {
	value  gjson.Result
	prefix string
	depth  int
}

// joinName builds a channel name from a prefix and key. An empty prefix
// yields the bare key.
func joinName(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "_" + key
}

// Flatten reduces an arbitrary JSON value to channels: numbers become
// channels named by their key path joined with underscores, nested objects
// descend, arrays contribute only their numeric elements as {name}_{index},
// and strings, booleans and nulls are ignored. Arrays are not descended
// into, so arrays of objects produce nothing. Returns the channels and the
// number of nodes dropped by the depth guard.
func Flatten(value gjson.Result, prefix string) (*ChannelMap, int) {
	channels := NewChannelMap()
	truncated := 0

	stack := []flattenItem{{value: value, prefix: prefix, depth: 0}}
	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch {
		case item.value.Type == gjson.Number:
			name := item.prefix
			if name == "" {
				name = "value"
			}
			channels.Set(name, item.value.Float())

		case item.value.IsArray():
			flattenArray(channels, item.value, item.prefix)

		case item.value.IsObject():
			if item.depth >= MaxFlattenDepth {
				truncated++
				continue
			}
			// Children push in reverse so the stack pops them in document
			// order, keeping channel insertion order deterministic.
			var children []flattenItem
			item.value.ForEach(func(key, child gjson.Result) bool {
				name := joinName(item.prefix, key.String())
				switch {
				case child.Type == gjson.Number:
					children = append(children, flattenItem{value: child, prefix: name, depth: item.depth + 1})
				case child.IsObject():
					children = append(children, flattenItem{value: child, prefix: name, depth: item.depth + 1})
				case child.IsArray():
					children = append(children, flattenItem{value: child, prefix: name, depth: item.depth + 1})
				}
				return true
			})
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, children[i])
			}
		}
	}

	return channels, truncated
}

// flattenArray emits the numeric elements of an array as {prefix}_{index}.
// Non-numeric elements, including nested objects and arrays, are skipped.
func flattenArray(channels *ChannelMap, array gjson.Result, prefix string) {
	index := 0
	array.ForEach(func(_, element gjson.Result) bool {
		if element.Type == gjson.Number {
			channels.Set(joinName(prefix, strconv.Itoa(index)), element.Float())
		}
		index++
		return true
	})
}
