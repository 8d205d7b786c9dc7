package rewrite

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// EntrySpelling is the accepted spellings of the entry-function parameter
// list for one grammar revision, and the WGSL text substituted for them.
type EntrySpelling struct {
	Since       *semver.Version
	Accepted    []string
	Replacement string
}

// EntrySpellings is ordered oldest first. A grammar version uses the newest
// table whose Since it has reached within the same major version.
var EntrySpellings = []EntrySpelling{
	{
		Since:       semver.MustParse("1.0.0"),
		Accepted:    spacedSpellings("global_id", ":", "WgslGlobalId", 2),
		Replacement: "@builtin(global_invocation_id) global_id: vec3<u32>",
	},
}

// spacedSpellings returns name+sep+typ with 0..maxSpaces spaces on each side
// of sep.
func spacedSpellings(name, sep, typ string, maxSpaces int) []string {
	var out []string
	for before := 0; before <= maxSpaces; before++ {
		for after := 0; after <= maxSpaces; after++ {
			out = append(out, name+strings.Repeat(" ", before)+sep+strings.Repeat(" ", after)+typ)
		}
	}
	return out
}

// SpellingFor selects the spelling table for grammar version v.
func SpellingFor(v *semver.Version) (EntrySpelling, error) {
	var found *EntrySpelling
	for i := range EntrySpellings {
		s := &EntrySpellings[i]
		if s.Since.Major() == v.Major() && !v.LessThan(s.Since) {
			found = s
		}
	}
	if found == nil {
		return EntrySpelling{}, fmt.Errorf("no entry spelling table for grammar %s", v)
	}
	return *found, nil
}

// Match reports whether text, trimmed of surrounding whitespace, is one of
// the accepted spellings.
func (s EntrySpelling) Match(text string) bool {
	text = strings.TrimSpace(text)
	for _, a := range s.Accepted {
		if a == text {
			return true
		}
	}
	return false
}
