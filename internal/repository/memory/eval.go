package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/anas6925/Backend-Project-IR-Solutions/internal/domain"
	"github.com/anas6925/Backend-Project-IR-Solutions/internal/repository/pipeline"
)

// Aggregate implements repository.Store by evaluating the pipeline in process
// against a snapshot of the target collection. Lookups read a snapshot of the
// foreign collection at the moment the stage runs; there is no cross-stage
// transactional guarantee, matching the contract's read-committed semantics.
func (s *Store) Aggregate(ctx context.Context, col domain.Collection, p pipeline.Pipeline) ([]pipeline.Doc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := s.col(col)
	if err != nil {
		return nil, err
	}
	docs := c.snapshot()
	for _, st := range p {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		switch st := st.(type) {
		case pipeline.Match:
			docs = applyMatch(docs, st)
		case pipeline.Group:
			docs = applyGroup(docs, st)
		case pipeline.Lookup:
			foreign, err := s.col(st.From)
			if err != nil {
				return nil, err
			}
			docs = applyLookup(docs, foreign.snapshot(), st)
		case pipeline.Unwind:
			docs = applyUnwind(docs, st)
		case pipeline.Project:
			docs = applyProject(docs, st)
		case pipeline.Sort:
			applySort(docs, st)
		default:
			return nil, fmt.Errorf("memory: unsupported pipeline stage %T", st)
		}
	}
	return docs, nil
}

func applyMatch(docs []pipeline.Doc, m pipeline.Match) []pipeline.Doc {
	out := docs[:0]
	for _, d := range docs {
		if matchesAll(d, m.Predicates) {
			out = append(out, d)
		}
	}
	return out
}

func matchesAll(d pipeline.Doc, preds []pipeline.Predicate) bool {
	for _, p := range preds {
		switch p := p.(type) {
		case pipeline.Eq:
			if !valuesEqual(d[p.Field], p.Value) {
				return false
			}
		case pipeline.Ne:
			if valuesEqual(d[p.Field], p.Value) {
				return false
			}
		case pipeline.Lt:
			if !valueLess(d[p.Field], p.Value) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func valuesEqual(a, b any) bool {
	at, aok := a.(time.Time)
	bt, bok := b.(time.Time)
	if aok && bok {
		return at.Equal(bt)
	}
	return a == b
}

func valueLess(a, b any) bool {
	switch av := a.(type) {
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Before(bv)
	case string:
		bv, ok := b.(string)
		return ok && av < bv
	case int64:
		bv, ok := b.(int64)
		return ok && av < bv
	case float64:
		bv, ok := b.(float64)
		return ok && av < bv
	}
	return false
}

func applyGroup(docs []pipeline.Doc, g pipeline.Group) []pipeline.Doc {
	counts := make(map[string]int64)
	for _, d := range docs {
		counts[stringify(d[g.By])]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]pipeline.Doc, len(keys))
	for i, k := range keys {
		out[i] = pipeline.Doc{domain.FieldID: k, g.CountAs: counts[k]}
	}
	return out
}

func applyLookup(docs, foreign []pipeline.Doc, l pipeline.Lookup) []pipeline.Doc {
	for _, d := range docs {
		keys := localKeys(d[l.LocalField])
		matches := make([]pipeline.Doc, 0)
		for _, fd := range foreign {
			if _, ok := keys[stringify(fd[l.ForeignField])]; ok {
				matches = append(matches, fd)
			}
		}
		d[l.As] = matches
	}
	return docs
}

func localKeys(v any) map[string]struct{} {
	keys := make(map[string]struct{})
	switch v := v.(type) {
	case nil:
	case []string:
		for _, s := range v {
			keys[s] = struct{}{}
		}
	case []any:
		for _, item := range v {
			keys[stringify(item)] = struct{}{}
		}
	default:
		keys[stringify(v)] = struct{}{}
	}
	return keys
}

func applyUnwind(docs []pipeline.Doc, u pipeline.Unwind) []pipeline.Doc {
	out := make([]pipeline.Doc, 0, len(docs))
	for _, d := range docs {
		arr, _ := d[u.Path].([]pipeline.Doc)
		for _, elem := range arr {
			flat := copyDoc(d)
			flat[u.Path] = elem
			out = append(out, flat)
		}
	}
	return out
}

func applyProject(docs []pipeline.Doc, p pipeline.Project) []pipeline.Doc {
	out := make([]pipeline.Doc, len(docs))
	for i, d := range docs {
		nd := make(pipeline.Doc, len(p.Fields))
		for _, f := range p.Fields {
			v := resolvePath(d, f.Source())
			if f.Size {
				nd[f.As] = int64(arrayLen(v))
			} else {
				nd[f.As] = v
			}
		}
		out[i] = nd
	}
	return out
}

func resolvePath(d pipeline.Doc, path string) any {
	var cur any = d
	for len(path) > 0 {
		key := path
		if i := strings.IndexByte(path, '.'); i >= 0 {
			key, path = path[:i], path[i+1:]
		} else {
			path = ""
		}
		doc, ok := cur.(pipeline.Doc)
		if !ok {
			return nil
		}
		cur = doc[key]
	}
	return cur
}

func arrayLen(v any) int {
	switch v := v.(type) {
	case []pipeline.Doc:
		return len(v)
	case []any:
		return len(v)
	case []string:
		return len(v)
	}
	return 0
}

func applySort(docs []pipeline.Doc, s pipeline.Sort) {
	sort.SliceStable(docs, func(i, j int) bool {
		return stringify(docs[i][s.By]) < stringify(docs[j][s.By])
	})
}

func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	}
	return fmt.Sprint(v)
}
