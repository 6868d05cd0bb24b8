package table

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Suggest ranks candidate values for a filter being typed. Candidates
// containing query as a substring come first, then fuzzy matches by edit
// distance. At most limit distinct values are returned.
func Suggest(query string, values []string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	candidates := distinct(values)
	query = strings.TrimSpace(query)
	if query == "" {
		if len(candidates) > limit {
			candidates = candidates[:limit]
		}
		return candidates
	}

	ranks := fuzzy.RankFindFold(query, candidates)
	sort.SliceStable(ranks, func(i, j int) bool {
		ci := strings.Contains(strings.ToLower(ranks[i].Target), strings.ToLower(query))
		cj := strings.Contains(strings.ToLower(ranks[j].Target), strings.ToLower(query))
		if ci != cj {
			return ci
		}
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})

	out := make([]string, 0, min(limit, len(ranks)))
	for _, r := range ranks {
		if len(out) == limit {
			break
		}
		out = append(out, r.Target)
	}
	return out
}

func distinct(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
