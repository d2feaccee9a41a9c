package tpc

import (
	"regexp"
	"strconv"
	"strings"
)

// SchemaKind classifies the key-naming schema of a bundle.
type SchemaKind int

const (
	SchemaUnknown SchemaKind = iota
	SchemaFrame              // frame_<tag>_<n>, channels_<tag>_<n>, tickinfo_<tag>_<n>
	SchemaTensor             // tensor_<n>_<plane>_array, tensor_<n>_<plane>_metadata.json
)

func (k SchemaKind) String() string {
	switch k {
	case SchemaFrame:
		return "frame"
	case SchemaTensor:
		return "tensor"
	}
	return "unknown"
}

var tensorArrayRe = regexp.MustCompile(`^tensor_(\d+)_(\d+)_array$`)

// DetectSchema classifies a key set. The tensor pattern is checked first;
// the two patterns are disjoint by their literal prefixes so order only
// matters for bundles that contain both, where tensor wins. Pure and total.
func DetectSchema(keys []string) SchemaKind {
	for _, k := range keys {
		if tensorArrayRe.MatchString(k) {
			return SchemaTensor
		}
	}
	for _, k := range keys {
		if _, _, ok := parseFrameKey(k, "frame"); ok {
			return SchemaFrame
		}
	}
	return SchemaUnknown
}

// parseFrameKey splits "<category>_<tag>_<event>" greedily: the digits
// after the last underscore are the event number and everything between
// the category prefix and that suffix is the tag, which may itself contain
// underscores.
func parseFrameKey(key, category string) (tag string, event int, ok bool) {
	rest, found := strings.CutPrefix(key, category+"_")
	if !found {
		return "", 0, false
	}
	i := strings.LastIndexByte(rest, '_')
	if i <= 0 || i == len(rest)-1 {
		return "", 0, false
	}
	suffix := rest[i+1:]
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return "", 0, false
		}
	}
	event, err := strconv.Atoi(suffix)
	if err != nil {
		return "", 0, false
	}
	return rest[:i], event, true
}

// parseTensorArrayKey extracts the event and plane ordinals from a tensor
// array key.
func parseTensorArrayKey(key string) (event, plane int, ok bool) {
	m := tensorArrayRe.FindStringSubmatch(key)
	if m == nil {
		return 0, 0, false
	}
	event, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	plane, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}
	return event, plane, true
}
