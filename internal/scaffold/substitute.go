package scaffold

import (
	"sort"
	"strings"
)

// Tags is an ordered set of placeholder values.
type Tags interface {
	Keys() []string
	Get(key string) (string, bool)
}

// Map adapts a plain map to Tags.
type Map map[string]string

// Keys implements Tags.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get implements Tags.
func (m Map) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Substitute replaces every "%KEY" in text with its value. Longer keys are
// tried first, so %SERVICE_NAME never consumes the prefix of a longer
// placeholder. Inserted values are not scanned again. Placeholders without
// a tag are left as they are.
func Substitute(text string, tags Tags) string {
	r := replacer(tags)
	if r == nil {
		return text
	}
	return r.Replace(text)
}

func replacer(tags Tags) *strings.Replacer {
	keys := tags.Keys()
	if len(keys) == 0 {
		return nil
	}

	ordered := append([]string(nil), keys...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if len(ordered[i]) != len(ordered[j]) {
			return len(ordered[i]) > len(ordered[j])
		}
		return ordered[i] < ordered[j]
	})

	pairs := make([]string, 0, len(ordered)*2)
	for _, k := range ordered {
		if k == "" {
			continue
		}
		v, _ := tags.Get(k)
		pairs = append(pairs, "%"+k, v)
	}
	if len(pairs) == 0 {
		return nil
	}
	return strings.NewReplacer(pairs...)
}
