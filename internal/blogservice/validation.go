package blogservice

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/sushihentaime/blogapi/internal/common"
)

func validateTitle(v *common.Validator, title string) {
	v.Check(title != "", "title", "must be provided")
	v.Check(v.MaxChars(title, 200), "title", "must not be more than 200 characters long")
}

func validateDescription(v *common.Validator, description string) {
	v.Check(v.MaxChars(description, 500), "description", "must not be more than 500 characters long")
}

func validateBody(v *common.Validator, body string) {
	v.Check(strings.TrimSpace(body) != "", "body", "must be provided")
}

func validateState(v *common.Validator, state string) {
	v.Check(common.PermittedValue(State(state), StateDraft, StatePublished), "state", "must be one of [draft, published]")
}

func validateTags(v *common.Validator, tags []string) {
	for _, tag := range tags {
		v.Check(strings.TrimSpace(tag) != "", "tags", "must not contain empty values")
	}
}

func validateUUID(v *common.Validator, id uuid.UUID, name string) {
	v.Check(id != uuid.Nil, name, "must be provided")
}

func validateCreateRequest(v *common.Validator, req *CreateBlogRequest) {
	validateTitle(v, strings.TrimSpace(req.Title))
	if req.Description != nil {
		validateDescription(v, strings.TrimSpace(*req.Description))
	}
	validateTags(v, req.Tags)
	validateBody(v, req.Body)
	if req.State != nil {
		validateState(v, *req.State)
	}
	validateUUID(v, req.AuthorID, "author")
}

func validateUpdateRequest(v *common.Validator, req *UpdateBlogRequest) {
	if req.Title != nil {
		validateTitle(v, strings.TrimSpace(*req.Title))
	}
	if req.Description != nil {
		validateDescription(v, strings.TrimSpace(*req.Description))
	}
	validateTags(v, req.Tags)
	if req.Body != nil {
		validateBody(v, *req.Body)
	}
	if req.State != nil {
		validateState(v, *req.State)
	}
}

// validateListFilter checks paging and sorting; allowMine permits the "mine" state sentinel.
func validateListFilter(v *common.Validator, f ListFilter, allowMine bool) {
	v.Check(f.Page >= 1, "page", "must be greater than or equal to 1")
	v.Check(f.Page <= MaxPage, "page", "must be less than or equal to 2147483647")
	v.Check(f.Limit >= 1, "limit", "must be greater than or equal to 1")
	v.Check(f.Limit <= MaxLimit, "limit", "must be less than or equal to 100")

	if f.State != "" {
		switch {
		case allowMine:
			v.Check(common.PermittedValue(f.State, string(StateDraft), string(StatePublished), StateMine, StateMyBlogs), "state", "must be one of [draft, published, mine]")
		default:
			validateState(v, f.State)
		}
	}

	_, ok := sortColumns[f.OrderBy]
	v.Check(ok, "orderBy", "must be one of [read_count, reading_time, createdAt]")
	v.Check(common.PermittedValue(f.Order, SortAsc, SortDesc), "order", "must be one of [asc, desc]")
	v.Check(utf8.ValidString(f.Search), "search", "must be valid UTF-8")
}
