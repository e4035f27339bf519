package blogcms

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrUnsupportedQuery is returned for /posts query strings other than none,
// a single category or a single minDate.
var ErrUnsupportedQuery = errors.New("unsupported query")

// PostQueryKind selects which listing /posts shows.
type PostQueryKind int

const (
	PostQueryAll PostQueryKind = iota
	PostQueryByCategory
	PostQueryByMinDate
)

// PostQuery is the parsed /posts query string.
type PostQuery struct {
	Kind     PostQueryKind
	Category int64
	MinDate  time.Time
}

// ParsePostQuery resolves the query string once at the boundary. Anything but
// an empty query, exactly one positive category id, or exactly one minDate is
// rejected with ErrUnsupportedQuery.
func ParsePostQuery(q url.Values) (PostQuery, error) {
	if len(q) == 0 {
		return PostQuery{Kind: PostQueryAll}, nil
	}
	if len(q) > 1 {
		return PostQuery{}, ErrUnsupportedQuery
	}
	if vals, ok := q["category"]; ok {
		if len(vals) != 1 {
			return PostQuery{}, ErrUnsupportedQuery
		}
		id, err := parseID(vals[0])
		if err != nil {
			return PostQuery{}, ErrUnsupportedQuery
		}
		return PostQuery{Kind: PostQueryByCategory, Category: id}, nil
	}
	if vals, ok := q["minDate"]; ok {
		if len(vals) != 1 {
			return PostQuery{}, ErrUnsupportedQuery
		}
		t, err := parseDate(vals[0])
		if err != nil {
			return PostQuery{}, ErrUnsupportedQuery
		}
		return PostQuery{Kind: PostQueryByMinDate, MinDate: t}, nil
	}
	return PostQuery{}, ErrUnsupportedQuery
}

// parseDate accepts YYYY-MM-DD (midnight UTC) or RFC 3339.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

var errInvalidID = errors.New("invalid id")

// parseID parses a positive decimal id.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}
