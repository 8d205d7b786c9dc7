package rewrite

import (
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

var scalarTypes = map[string]string{
	"f32":     "f32",
	"f16":     "f16",
	"i32":     "i32",
	"u32":     "u32",
	"bool":    "bool",
	"PodF16":  "f16",
	"PodBool": "bool",
}

var vectorElems = map[string]string{
	"F32":  "f32",
	"F16":  "f16",
	"I32":  "i32",
	"U32":  "u32",
	"Bool": "bool",
}

// MapType returns the WGSL spelling of a built-in authored type name.
// User-declared names are not known here.
func MapType(name string) (string, bool) {
	if t, ok := scalarTypes[name]; ok {
		return t, true
	}
	if rest, ok := strings.CutPrefix(name, "Vec"); ok && len(rest) > 1 {
		n := rest[0]
		if elem, ok := vectorElems[rest[1:]]; ok && n >= '2' && n <= '4' {
			return "vec" + string(n) + "<" + elem + ">", true
		}
	}
	if rest, ok := strings.CutPrefix(name, "Mat"); ok && len(rest) == 6 && rest[1] == 'x' && rest[3:] == "F32" {
		c, r := rest[0], rest[2]
		if c >= '2' && c <= '4' && r >= '2' && r <= '4' {
			return "mat" + string(c) + "x" + string(r) + "<f32>", true
		}
	}
	return "", false
}

// builtinTypeNames lists every authored name MapType accepts.
func builtinTypeNames() []string {
	names := make([]string, 0, 64)
	for n := range scalarTypes {
		names = append(names, n)
	}
	for _, n := range "234" {
		for suffix := range vectorElems {
			names = append(names, "Vec"+string(n)+suffix)
		}
	}
	for _, c := range "234" {
		for _, r := range "234" {
			names = append(names, "Mat"+string(c)+"x"+string(r)+"F32")
		}
	}
	return names
}

const (
	suggestionThreshold = 0.6
	maxSuggestions      = 3
)

// suggest returns up to three candidates close to name, best first.
func suggest(name string, candidates []string) []string {
	type scored struct {
		name  string
		score float64
	}
	metric := metrics.NewLevenshtein()
	metric.CaseSensitive = false

	var hits []scored
	for _, c := range candidates {
		if s := strutil.Similarity(name, c, metric); s >= suggestionThreshold {
			hits = append(hits, scored{c, s})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].name < hits[j].name
	})

	out := make([]string, 0, maxSuggestions)
	for i := 0; i < len(hits) && i < maxSuggestions; i++ {
		out = append(out, hits[i].name)
	}
	return out
}
