package core

import "strings"

// DBOrdering represents a single ORDER BY clause entry bound from an
// API `ordering` query param; a leading "-" means descending.
type DBOrdering struct {
	Field string
	Desc  bool
}

func (o DBOrdering) String() string {
	if o.Desc {
		return o.Field + " DESC"
	}
	return o.Field + " ASC"
}

// ParseOrdering parses a comma-separated ordering expression,
// eg. "is_active,-created_at", keeping only fields present in allowed.
func ParseOrdering(expr string, allowed ...string) []DBOrdering {
	if expr == "" {
		return nil
	}
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, f := range allowed {
		allowedSet[f] = struct{}{}
	}

	var ords []DBOrdering
	for _, part := range strings.Split(expr, ",") {
		part = CleanString(part)
		desc := strings.HasPrefix(part, "-")
		field := strings.TrimPrefix(part, "-")
		if field == "" {
			continue
		}
		if _, ok := allowedSet[field]; !ok {
			continue
		}
		ords = append(ords, DBOrdering{Field: field, Desc: desc})
	}
	return ords
}
