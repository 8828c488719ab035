// Package query turns flat URL query parameters into pagination options and
// Mongo filter documents. List endpoints compose their predicates here so
// search, enum filtering and paging behave the same everywhere.
package query

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

type Options struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// ParseOptions reads page/limit/sortBy/sortOrder with defaults page=1,
// limit=10. Invalid numbers fall back to the defaults.
func ParseOptions(r *http.Request) Options {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = DefaultPage
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = DefaultLimit
	}

	return Options{
		Page:      page,
		Limit:     limit,
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}
}

func (o Options) Skip() int64 {
	return int64((o.Page - 1) * o.Limit)
}

// Sort returns the explicit sortBy/sortOrder pair when both are present,
// otherwise the caller's entity-specific default.
func (o Options) Sort(def bson.D) bson.D {
	if o.SortBy == "" || o.SortOrder == "" {
		return def
	}
	dir := 1
	if strings.EqualFold(o.SortOrder, "desc") {
		dir = -1
	}
	return bson.D{{Key: o.SortBy, Value: dir}}
}

// Pick extracts the named keys from the URL query, skipping empty values.
func Pick(r *http.Request, keys []string) map[string]string {
	out := map[string]string{}
	q := r.URL.Query()
	for _, k := range keys {
		if v := q.Get(k); v != "" {
			out[k] = v
		}
	}
	return out
}

// Contains builds a case-insensitive substring predicate for one field.
func Contains(field, term string) bson.M {
	return bson.M{field: bson.M{"$regex": regexp.QuoteMeta(term), "$options": "i"}}
}

// ExactInsensitive builds a case-insensitive whole-value predicate for one
// field. Regex metacharacters in term match literally.
func ExactInsensitive(field, term string) bson.M {
	return bson.M{field: bson.M{"$regex": "^" + regexp.QuoteMeta(term) + "$", "$options": "i"}}
}

// MatchEnum returns the declared enum value that equals candidate
// case-insensitively. A miss means the filter is silently dropped, never an
// error.
func MatchEnum(values []string, candidate string) (string, bool) {
	for _, v := range values {
		if strings.EqualFold(v, candidate) {
			return v, true
		}
	}
	return "", false
}

// Search composes the free-text predicate: an OR of substring matches over
// the string fields, plus exact matches for each enum field whose declared
// values contain the term.
func Search(term string, stringFields []string, enumFields map[string][]string) bson.M {
	if term == "" {
		return nil
	}

	var or []bson.M
	for _, f := range stringFields {
		or = append(or, Contains(f, term))
	}
	for field, values := range enumFields {
		if matched, ok := MatchEnum(values, term); ok {
			or = append(or, bson.M{field: matched})
		}
	}
	if len(or) == 0 {
		return nil
	}
	return bson.M{"$or": or}
}

// Filters converts exact-match filter keys into predicates: substring match
// for string fields, exact match for enum fields (dropped when the value is
// not a declared enum value).
func Filters(data map[string]string, enumFields map[string][]string) []bson.M {
	var conds []bson.M
	for key, value := range data {
		if values, isEnum := enumFields[key]; isEnum {
			if matched, ok := MatchEnum(values, value); ok {
				conds = append(conds, bson.M{key: matched})
			}
			continue
		}
		conds = append(conds, Contains(key, value))
	}
	return conds
}

// And combines predicate groups. An empty set yields the match-all filter.
func And(conds ...bson.M) bson.M {
	var nonNil []bson.M
	for _, c := range conds {
		if len(c) > 0 {
			nonNil = append(nonNil, c)
		}
	}
	switch len(nonNil) {
	case 0:
		return bson.M{}
	case 1:
		return nonNil[0]
	default:
		return bson.M{"$and": nonNil}
	}
}
