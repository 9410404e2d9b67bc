package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/sushihentaime/blogapi/internal/common"
)

var ErrForbidden = errors.New("forbidden")

func NewBlogService(db *sql.DB) *BlogService {
	return &BlogService{m: newBlogModel(db)}
}

func cleanTags(tags []string) []string {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		cleaned = append(cleaned, strings.TrimSpace(tag))
	}
	return cleaned
}

// newBlog builds a validated create request into a storable blog with its derived fields set.
func newBlog(req *CreateBlogRequest) *Blog {
	blog := &Blog{
		Title:    strings.TrimSpace(req.Title),
		AuthorID: req.AuthorID,
		State:    StateDraft,
		Tags:     cleanTags(req.Tags),
		Body:     sanitizeMarkdown(req.Body),
	}

	if req.Description != nil {
		blog.Description = strings.TrimSpace(*req.Description)
	}

	if req.State != nil {
		blog.State = State(*req.State)
	}

	blog.ReadingTime = ReadingTime(blog.Body)

	return blog
}

// CreateBlog stores a new blog owned by req.AuthorID. New blogs are drafts unless a state is given.
func (s *BlogService) CreateBlog(ctx context.Context, req *CreateBlogRequest) (*Blog, error) {
	v := common.NewValidator()
	validateCreateRequest(v, req)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.insert(ctx, newBlog(req))
}

// GetBlogByID returns a blog and counts the read.
func (s *BlogService) GetBlogByID(ctx context.Context, id uuid.UUID) (*Blog, error) {
	v := common.NewValidator()
	validateUUID(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.viewBlog(ctx, id)
}

// UpdateBlog applies the supplied fields of req. Only the author of the blog can update it.
func (s *BlogService) UpdateBlog(ctx context.Context, id, requester uuid.UUID, req *UpdateBlogRequest) (*Blog, error) {
	v := common.NewValidator()
	validateUUID(v, id, "id")
	validateUpdateRequest(v, req)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	blog, err := s.m.getBlogById(ctx, id)
	if err != nil {
		return nil, err
	}

	if blog.AuthorID != requester {
		return nil, ErrForbidden
	}

	if req.Title != nil {
		blog.Title = strings.TrimSpace(*req.Title)
	}

	if req.Description != nil {
		blog.Description = strings.TrimSpace(*req.Description)
	}

	if req.Tags != nil {
		blog.Tags = cleanTags(req.Tags)
	}

	if req.Body != nil {
		blog.Body = sanitizeMarkdown(*req.Body)
		blog.ReadingTime = ReadingTime(blog.Body)
	}

	if req.State != nil {
		blog.State = State(*req.State)
	}

	return s.m.updateBlog(ctx, blog)
}

// DeleteBlog removes a blog. Only the author of the blog can delete it.
func (s *BlogService) DeleteBlog(ctx context.Context, id, requester uuid.UUID) error {
	v := common.NewValidator()
	validateUUID(v, id, "id")
	if !v.Valid() {
		return v.ValidationError()
	}

	blog, err := s.m.getBlogById(ctx, id)
	if err != nil {
		return err
	}

	if blog.AuthorID != requester {
		return ErrForbidden
	}

	return s.m.deleteBlog(ctx, id, requester)
}

// ListBlogs returns a page of the blogs visible to requester. Pass uuid.Nil for an anonymous requester.
func (s *BlogService) ListBlogs(ctx context.Context, requester uuid.UUID, f ListFilter) (*ListResult, error) {
	v := common.NewValidator()
	validateListFilter(v, f, true)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.list(ctx, visibilityScope(requester, f.State), f)
}

// ListUserBlogs returns a page of the author's own blogs, optionally narrowed to one state.
// Search terms are ignored.
func (s *BlogService) ListUserBlogs(ctx context.Context, author uuid.UUID, f ListFilter) (*ListResult, error) {
	v := common.NewValidator()
	validateUUID(v, author, "author")
	validateListFilter(v, f, false)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	f.Search = ""

	return s.list(ctx, scope{state: State(f.State), authorID: author}, f)
}

func (s *BlogService) list(ctx context.Context, sc scope, f ListFilter) (*ListResult, error) {
	blogs, total, err := s.m.listBlogs(ctx, sc, f)
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Blogs:       blogs,
		Total:       total,
		CurrentPage: f.Page,
		TotalPages:  totalPages(total, f.Limit),
	}, nil
}
