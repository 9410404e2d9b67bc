package blogservice

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

type SortField string

type SortDirection string

const (
	SortByCreatedAt   SortField = "createdAt"
	SortByReadCount   SortField = "read_count"
	SortByReadingTime SortField = "reading_time"

	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"

	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
	// MaxPage keeps (page-1)*limit inside a Postgres bigint OFFSET.
	MaxPage = math.MaxInt32
)

var sortColumns = map[SortField]string{
	SortByCreatedAt:   "b.created_at",
	SortByReadCount:   "b.read_count",
	SortByReadingTime: "b.reading_time",
}

// ListFilter is the validated form of the listing query string.
type ListFilter struct {
	Page    int
	Limit   int
	State   string
	Search  string
	OrderBy SortField
	Order   SortDirection
}

func DefaultListFilter() ListFilter {
	return ListFilter{
		Page:    DefaultPage,
		Limit:   DefaultLimit,
		OrderBy: SortByCreatedAt,
		Order:   SortDesc,
	}
}

func (f ListFilter) offset() int {
	return (f.Page - 1) * f.Limit
}

// orderBy always ends with the id so that ties come back in a stable order.
func (f ListFilter) orderBy() string {
	direction := "DESC"
	if f.Order == SortAsc {
		direction = "ASC"
	}
	return fmt.Sprintf("%s %s, b.id ASC", sortColumns[f.OrderBy], direction)
}

type ListResult struct {
	Blogs       []*Blog `json:"blogs"`
	Total       int     `json:"total"`
	CurrentPage int     `json:"currentPage"`
	TotalPages  int     `json:"totalPages"`
}

func totalPages(total, limit int) int {
	if limit < 1 {
		return 0
	}
	return (total + limit - 1) / limit
}

// scope restricts a listing. A zero state or a nil author means "any".
type scope struct {
	state    State
	authorID uuid.UUID
}

// visibilityScope decides what a requester may list:
//   - anonymous: published only, whatever was asked for
//   - authenticated without a state: published from every author
//   - authenticated with "mine": every state, own blogs only
//   - authenticated with draft or published: that state, own blogs only
func visibilityScope(requester uuid.UUID, stateFilter string) scope {
	if requester == uuid.Nil || stateFilter == "" {
		return scope{state: StatePublished}
	}

	if stateFilter == StateMine || stateFilter == StateMyBlogs {
		return scope{authorID: requester}
	}

	return scope{state: State(stateFilter), authorID: requester}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern turns a search term into an ILIKE substring pattern with wildcards escaped.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// whereClause renders the scope and search as a WHERE clause with positional arguments.
func whereClause(sc scope, search string) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if sc.state != "" {
		args = append(args, string(sc.state))
		conds = append(conds, fmt.Sprintf("b.state = $%d", len(args)))
	}

	if sc.authorID != uuid.Nil {
		args = append(args, sc.authorID)
		conds = append(conds, fmt.Sprintf("b.author_id = $%d", len(args)))
	}

	if search = strings.TrimSpace(search); search != "" {
		args = append(args, likePattern(search))
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(b.title ILIKE $%d OR b.description ILIKE $%d OR EXISTS (SELECT 1 FROM unnest(b.tags) AS tag WHERE tag ILIKE $%d))",
			n, n, n))
	}

	if len(conds) == 0 {
		return "", args
	}

	return "WHERE " + strings.Join(conds, " AND "), args
}
