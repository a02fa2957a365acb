package research

import "deepresearch/model"

// DedupeCitations returns one citation per distinct URL in order of first
// appearance. The first title seen for a URL wins; an empty title falls back
// to the URL.
func DedupeCitations(citations []model.Citation) []model.Citation {
	seen := make(map[string]struct{}, len(citations))
	out := make([]model.Citation, 0, len(citations))
	for _, c := range citations {
		if _, ok := seen[c.URL]; ok {
			continue
		}
		seen[c.URL] = struct{}{}
		out = append(out, model.Citation{URL: c.URL, Title: c.Label()})
	}
	return out
}
