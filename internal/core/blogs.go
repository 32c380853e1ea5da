package core

import (
	"context"
	"database/sql"
	"errors"
	"github.com/mdobak/go-xerrors"
	"github.com/rowhe/blogdata/internal/filter"
	"github.com/rowhe/blogdata/internal/utils/databaseutils"
	"github.com/rowhe/blogdata/internal/validator"
	"github.com/rowhe/blogdata/models"
	"strings"
)

var (
	ErrDuplicateBlogName = xerrors.Message("Duplicate blog name")
	ErrDuplicateBlogSlug = xerrors.Message("Duplicate blog slug")
	ErrDuplicateBlog     = xerrors.Message("Duplicate blog")
)

func validateBlog(blog *models.Blog) *validator.Validator {
	v := validator.New()

	v.CheckNotBlank(blog.Name, "name", "must be provided")
	v.CheckMaxLength(blog.Name, 100, "name", "must not be more than 100 characters long")
	v.CheckNotBlank(blog.SlugName, "slug_name", "must be provided")
	v.CheckMaxLength(blog.SlugName, 50, "slug_name", "must not be more than 50 characters long")
	if blog.SlugName != "" {
		v.CheckMatch(blog.SlugName, validator.SlugRX, "slug_name", "must consist of letters, numbers, underscores or hyphens")
	}
	if blog.Headline != nil {
		v.CheckMaxLength(*blog.Headline, 255, "headline", "must not be more than 255 characters long")
	}

	return v
}

func (c *Core) CreateBlog(context context.Context, blog *models.Blog) (*models.Blog, error) {
	if err := validateBlog(blog).Err(); err != nil {
		return nil, xerrors.New(err)
	}

	query := `
		INSERT INTO blogs (name, slug_name, headline, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, slug_name, headline, description
	`

	args := []any{blog.Name, blog.SlugName, blog.Headline, blog.Description}
	createdBlog, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, context, query, func(rows *sql.Rows) (*models.Blog, error) {
		var blog = &models.Blog{}

		if err := rows.Scan(
			&blog.ID,
			&blog.Name,
			&blog.SlugName,
			&blog.Headline,
			&blog.Description,
		); err != nil {
			return nil, xerrors.New(err)
		}
		return blog, nil
	}, args...)

	if err != nil {
		switch {
		case err.Error() == `pq: duplicate key value violates unique constraint "blogs_name_key"`:
			return nil, xerrors.New(ErrDuplicateBlogName)
		case err.Error() == `pq: duplicate key value violates unique constraint "blogs_slug_name_key"`:
			return nil, xerrors.New(ErrDuplicateBlogSlug)
		case strings.Contains(err.Error(), `duplicate key value violates unique constraint`):
			return nil, xerrors.New(ErrDuplicateBlog)
		default:
			return nil, xerrors.New(err)
		}
	}

	return createdBlog, nil
}

func (c *Core) GetBlogBySlug(context context.Context, slugName string) (*models.Blog, error) {
	query := `
		SELECT id, name, slug_name, headline, description
		FROM blogs
		WHERE slug_name = $1
	`

	blog, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, context, query, func(rows *sql.Rows) (*models.Blog, error) {
		var blog = &models.Blog{}

		if err := rows.Scan(
			&blog.ID,
			&blog.Name,
			&blog.SlugName,
			&blog.Headline,
			&blog.Description,
		); err != nil {
			return nil, xerrors.New(err)
		}
		return blog, nil
	}, slugName)

	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(NoRecordFound)
		default:
			return nil, xerrors.New(err)
		}
	}

	return blog, nil
}

func (c *Core) GetBlogByID(context context.Context, id int64) (*models.Blog, error) {
	query := `
		SELECT id, name, slug_name, headline, description
		FROM blogs
		WHERE id = $1
	`

	blog, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, context, query, func(rows *sql.Rows) (*models.Blog, error) {
		var blog = &models.Blog{}

		if err := rows.Scan(
			&blog.ID,
			&blog.Name,
			&blog.SlugName,
			&blog.Headline,
			&blog.Description,
		); err != nil {
			return nil, xerrors.New(err)
		}
		return blog, nil
	}, id)

	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(NoRecordFound)
		default:
			return nil, xerrors.New(err)
		}
	}

	return blog, nil
}

func (c *Core) ListBlogs(context context.Context, filters filter.Filter) ([]*models.Blog, error) {
	if err := filter.ValidateFilters(filters).Err(); err != nil {
		return nil, xerrors.New(err)
	}

	query := `
		SELECT id, name, slug_name, headline, description
		FROM blogs
		ORDER BY name, id
		LIMIT $1 OFFSET $2
	`

	queryResultList, err := databaseutils.ExecuteQuery(c.sqlTemplate, context, query, func(rows *sql.Rows) (*models.Blog, error) {
		var blog = &models.Blog{}

		if err := rows.Scan(&blog.ID,
			&blog.Name,
			&blog.SlugName,
			&blog.Headline,
			&blog.Description); err != nil {
			return nil, xerrors.New(err)
		}
		return blog, nil
	}, filters.Limit, filters.Offset)

	if err != nil {
		return nil, xerrors.New(err)
	}

	return queryResultList, nil
}

func (c *Core) UpdateBlog(context context.Context, blog *models.Blog) (*models.Blog, error) {
	if err := validateBlog(blog).Err(); err != nil {
		return nil, xerrors.New(err)
	}

	query := `
		UPDATE blogs
		SET name = $1, slug_name = $2, headline = $3, description = $4
		WHERE id = $5
		RETURNING id, name, slug_name, headline, description
	`

	args := []any{blog.Name, blog.SlugName, blog.Headline, blog.Description, blog.ID}
	returningBlog, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, context, query, func(rows *sql.Rows) (*models.Blog, error) {
		var blog = &models.Blog{}

		if err := rows.Scan(&blog.ID,
			&blog.Name,
			&blog.SlugName,
			&blog.Headline,
			&blog.Description); err != nil {
			return nil, xerrors.New(err)
		}
		return blog, nil
	}, args...)

	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(NoRecordFound)
		case err.Error() == `pq: duplicate key value violates unique constraint "blogs_name_key"`:
			return nil, xerrors.New(ErrDuplicateBlogName)
		case err.Error() == `pq: duplicate key value violates unique constraint "blogs_slug_name_key"`:
			return nil, xerrors.New(ErrDuplicateBlogSlug)
		case strings.Contains(err.Error(), `duplicate key value violates unique constraint`):
			return nil, xerrors.New(ErrDuplicateBlog)
		default:
			return nil, xerrors.New(err)
		}
	}

	return returningBlog, nil
}

func (c *Core) DeleteBlog(context context.Context, id int64) error {
	query := `
		DELETE FROM blogs
		WHERE id = $1
	`

	affected, err := databaseutils.ExecuteUpdate(c.sqlTemplate, context, query, id)
	if err != nil {
		return xerrors.New(err)
	}

	if affected == 0 {
		return xerrors.New(NoRecordFound)
	}

	return nil
}

func (c *Core) CreateSlug(title string) string {
	slug := strings.ToLower(title)

	slug = strings.ReplaceAll(slug, " ", "-")
	// Remove common punctuation
	replacements := []string{".", ",", "!", "?", ":", ";", "'", "\"", "(", ")", "[", "]", "{", "}", "/", "\\"}
	for _, char := range replacements {
		slug = strings.ReplaceAll(slug, char, "")
	}

	// Replace multiple consecutive hyphens with single hyphen
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}

	slug = strings.Trim(slug, "-")

	return slug
}
