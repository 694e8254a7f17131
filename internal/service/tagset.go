package service

// Placeholder names substituted into templates.
const (
	TagServiceName        = "SERVICE_NAME"
	TagServiceClassName   = "SERVICE_CLASS_NAME"
	TagServiceVersion     = "SERVICE_VERSION"
	TagServiceDescription = "SERVICE_DESCRIPTION"
	TagServiceRepo        = "SERVICE_REPO"
	TagServiceGitURL      = "SERVICE_GIT_URL"
	TagServiceHomepage    = "SERVICE_HOMEPAGE"
	TagServiceBugs        = "SERVICE_BUGS"
	TagAuthorName         = "SERVICE_AUTHOR_NAME"
	TagAuthorEmail        = "SERVICE_AUTHOR_EMAIL"
	TagLicenseID          = "LICENSE_ID"
	TagLicenseName        = "LICENSE_NAME"
	TagLicenseHeader      = "LICENSE_HEADER"
	TagLicenseText        = "LICENSE_TEXT"
	TagYear               = "YEAR"

	TagNodeVersion      = "NODE_VERSION"
	TagTravisNodeTags   = "TRAVIS_NODE_TAGS"
	TagDockerNamespace  = "DOCKER_NAMESPACE"
	TagDockerImage      = "DOCKER_IMAGE"
	TagDockerUserSecret = "DOCKER_USER_SECRET"
	TagDockerPassSecret = "DOCKER_PASS_SECRET"
)

// TagSet is an ordered, immutable mapping of placeholder names to values.
type TagSet struct {
	keys   []string
	values map[string]string
}

// NewTagSet builds a TagSet from key/value pairs. A repeated key keeps its
// first position and its last value.
func NewTagSet(pairs ...string) TagSet {
	var t TagSet
	for i := 0; i+1 < len(pairs); i += 2 {
		t = t.With(pairs[i], pairs[i+1])
	}
	return t
}

// Get returns the value of key.
func (t TagSet) Get(key string) (string, bool) {
	v, ok := t.values[key]
	return v, ok
}

// Value returns the value of key or "".
func (t TagSet) Value(key string) string {
	return t.values[key]
}

// Keys returns the keys in insertion order.
func (t TagSet) Keys() []string {
	return append([]string(nil), t.keys...)
}

// Len returns the number of tags.
func (t TagSet) Len() int {
	return len(t.keys)
}

// With returns a copy of t with key set to value.
func (t TagSet) With(key, value string) TagSet {
	out := TagSet{
		keys:   make([]string, len(t.keys), len(t.keys)+1),
		values: make(map[string]string, len(t.values)+1),
	}
	copy(out.keys, t.keys)
	for k, v := range t.values {
		out.values[k] = v
	}
	if _, ok := out.values[key]; !ok {
		out.keys = append(out.keys, key)
	}
	out.values[key] = value
	return out
}

// Merge returns a copy of t with every tag of other applied.
func (t TagSet) Merge(other TagSet) TagSet {
	out := t
	for _, k := range other.keys {
		out = out.With(k, other.values[k])
	}
	return out
}
