package resolve

import (
	"context"
	"sort"
	"strings"

	"github.com/jward/lattice/internal/model"
)

// SearchSymbols finds declarations whose names match the pattern, ranked.
// Names are enumerated by kind — types first, then methods/functions, then
// fields — and enumeration short-circuits as soon as the limit is reached,
// so type matches are always attempted before descending into the larger
// namespaces.
func (r *Resolver) SearchSymbols(ctx context.Context, pattern string, scope model.Scope, limit int) ([]SymbolMatch, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	matches := []SymbolMatch{}
	kinds := []model.NameKind{model.TypeNames, model.CallableNames, model.FieldNames}

	for _, kind := range kinds {
		if len(matches) >= limit {
			break
		}
		var resolveErr error
		err := r.Model.EachDeclaredName(ctx, kind, scope, r.Profile.Languages, func(name string) bool {
			if !MatchesPattern(pattern, name) {
				return true
			}
			decls, err := r.Model.DeclarationsNamed(ctx, name, kind, scope, r.Profile.Languages)
			if err != nil {
				resolveErr = err
				return false
			}
			for _, d := range decls {
				matches = append(matches, newSymbolMatch(d))
				if len(matches) >= limit {
					return false
				}
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		if resolveErr != nil {
			return nil, resolveErr
		}
	}

	RankMatches(pattern, matches)
	return matches, nil
}

// RankMatches orders search results in place: exact case-insensitive name
// equality first, then ascending edit distance between the lower-cased
// pattern and candidate name prefix. The sort is stable so enumeration
// order breaks ties.
func RankMatches(pattern string, matches []SymbolMatch) {
	p := strings.ToLower(pattern)
	sort.SliceStable(matches, func(i, j int) bool {
		ni := strings.ToLower(matches[i].Name)
		nj := strings.ToLower(matches[j].Name)
		ei, ej := ni == p, nj == p
		if ei != ej {
			return ei
		}
		return rankDistance(p, ni) < rankDistance(p, nj)
	})
}
