package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rowhe/blogdata/internal/filter"
	"github.com/rowhe/blogdata/internal/validator"
	"github.com/rowhe/blogdata/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blogRows(blogs ...*models.Blog) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "name", "slug_name", "headline", "description"})
	for _, blog := range blogs {
		rows.AddRow(blog.ID, blog.Name, blog.SlugName, blog.Headline, blog.Description)
	}
	return rows
}

func TestCreateBlog(t *testing.T) {
	c, mock := newTestCore(t)

	headline := "All about Go"
	mock.ExpectQuery(`(?s)INSERT INTO blogs.*RETURNING`).
		WithArgs("Tech", "tech", &headline, nil).
		WillReturnRows(blogRows(&models.Blog{ID: 1, Name: "Tech", SlugName: "tech", Headline: &headline}))

	created, err := c.CreateBlog(context.Background(), &models.Blog{Name: "Tech", SlugName: "tech", Headline: &headline})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "tech", created.SlugName)
	require.NotNil(t, created.Headline)
	assert.Equal(t, "All about Go", *created.Headline)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBlogDuplicateName(t *testing.T) {
	c, mock := newTestCore(t)

	mock.ExpectQuery(`(?s)INSERT INTO blogs.*RETURNING`).
		WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "blogs_name_key"`))

	_, err := c.CreateBlog(context.Background(), &models.Blog{Name: "Tech", SlugName: "tech"})
	assert.ErrorIs(t, err, ErrDuplicateBlogName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBlogDuplicateSlug(t *testing.T) {
	c, mock := newTestCore(t)

	mock.ExpectQuery(`(?s)INSERT INTO blogs.*RETURNING`).
		WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "blogs_slug_name_key"`))

	_, err := c.CreateBlog(context.Background(), &models.Blog{Name: "Tech Weekly", SlugName: "tech"})
	assert.ErrorIs(t, err, ErrDuplicateBlogSlug)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBlogDuplicatePair(t *testing.T) {
	c, mock := newTestCore(t)

	mock.ExpectQuery(`(?s)INSERT INTO blogs.*RETURNING`).
		WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "blogs_name_slug_name_key"`))

	_, err := c.CreateBlog(context.Background(), &models.Blog{Name: "Tech", SlugName: "tech"})
	assert.ErrorIs(t, err, ErrDuplicateBlog)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBlogValidation(t *testing.T) {
	c, mock := newTestCore(t)

	tests := []struct {
		name  string
		blog  *models.Blog
		field string
	}{
		{"blank name", &models.Blog{SlugName: "tech"}, "name"},
		{"blank slug", &models.Blog{Name: "Tech"}, "slug_name"},
		{"slug with spaces", &models.Blog{Name: "Tech", SlugName: "tech news"}, "slug_name"},
		{"slug with unicode", &models.Blog{Name: "Tech", SlugName: "тех"}, "slug_name"},
		{"name too long", &models.Blog{Name: strings.Repeat("a", 101), SlugName: "tech"}, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.CreateBlog(context.Background(), tt.blog)
			require.Error(t, err)

			var validationErr *validator.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Contains(t, validationErr.Fields, tt.field)
		})
	}

	// Nothing may reach the database when validation fails.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBlogBySlug(t *testing.T) {
	c, mock := newTestCore(t)

	mock.ExpectQuery(`(?s)SELECT.*FROM blogs.*WHERE slug_name`).
		WithArgs("tech").
		WillReturnRows(blogRows(&models.Blog{ID: 3, Name: "Tech", SlugName: "tech"}))

	blog, err := c.GetBlogBySlug(context.Background(), "tech")
	require.NoError(t, err)
	assert.Equal(t, int64(3), blog.ID)
	assert.Nil(t, blog.Headline)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBlogBySlugNotFound(t *testing.T) {
	c, mock := newTestCore(t)

	mock.ExpectQuery(`(?s)SELECT.*FROM blogs.*WHERE slug_name`).
		WithArgs("missing").
		WillReturnRows(blogRows())

	_, err := c.GetBlogBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, NoRecordFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBlogByIDNotFound(t *testing.T) {
	c, mock := newTestCore(t)

	mock.ExpectQuery(`(?s)SELECT.*FROM blogs.*WHERE id`).
		WithArgs(int64(42)).
		WillReturnRows(blogRows())

	_, err := c.GetBlogByID(context.Background(), 42)
	assert.ErrorIs(t, err, NoRecordFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListBlogs(t *testing.T) {
	c, mock := newTestCore(t)

	mock.ExpectQuery(`(?s)SELECT.*FROM blogs.*ORDER BY name.*LIMIT`).
		WithArgs(int64(20), int64(0)).
		WillReturnRows(blogRows(
			&models.Blog{ID: 1, Name: "Cooking", SlugName: "cooking"},
			&models.Blog{ID: 2, Name: "Tech", SlugName: "tech"},
		))

	blogs, err := c.ListBlogs(context.Background(), filter.NewFilter(20, 0))
	require.NoError(t, err)
	require.Len(t, blogs, 2)
	assert.Equal(t, "Cooking", blogs[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListBlogsRejectsBadFilter(t *testing.T) {
	c, mock := newTestCore(t)

	_, err := c.ListBlogs(context.Background(), filter.NewFilter(0, 0))
	require.Error(t, err)

	var validationErr *validator.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "limit")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBlogNotFound(t *testing.T) {
	c, mock := newTestCore(t)

	mock.ExpectQuery(`(?s)UPDATE blogs.*RETURNING`).
		WillReturnRows(blogRows())

	_, err := c.UpdateBlog(context.Background(), &models.Blog{ID: 99, Name: "Tech", SlugName: "tech"})
	assert.ErrorIs(t, err, NoRecordFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBlogDuplicateName(t *testing.T) {
	c, mock := newTestCore(t)

	mock.ExpectQuery(`(?s)UPDATE blogs.*RETURNING`).
		WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "blogs_name_key"`))

	_, err := c.UpdateBlog(context.Background(), &models.Blog{ID: 1, Name: "Tech", SlugName: "tech"})
	assert.ErrorIs(t, err, ErrDuplicateBlogName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBlog(t *testing.T) {
	c, mock := newTestCore(t)

	mock.ExpectExec(`DELETE FROM blogs`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, c.DeleteBlog(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBlogNotFound(t *testing.T) {
	c, mock := newTestCore(t)

	mock.ExpectExec(`DELETE FROM blogs`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := c.DeleteBlog(context.Background(), 5)
	assert.ErrorIs(t, err, NoRecordFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSlug(t *testing.T) {
	c, _ := newTestCore(t)

	tests := []struct {
		title string
		want  string
	}{
		{"Hello World", "hello-world"},
		{"Go, the Language!", "go-the-language"},
		{"  spaced  out  ", "spaced-out"},
		{"Dots.and/slashes\\here", "dotsandslasheshere"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, c.CreateSlug(tt.title))
	}
}
