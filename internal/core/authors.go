package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/mdobak/go-xerrors"
	"github.com/rowhe/blogdata/internal/filter"
	"github.com/rowhe/blogdata/internal/utils/databaseutils"
	"github.com/rowhe/blogdata/internal/utils/stringutils"
	"github.com/rowhe/blogdata/internal/validator"
	"github.com/rowhe/blogdata/models"
	"strings"
)

var (
	ErrDuplicateEmail = xerrors.Message("Duplicate email")
	ErrAuthorNotFound = xerrors.Message("Author not found")
)

func validateAuthor(author *models.Author) *validator.Validator {
	v := validator.New()

	v.CheckNotBlank(author.Name, "name", "must be provided")
	v.CheckMaxLength(author.Name, 200, "name", "must not be more than 200 characters long")
	v.CheckNotBlank(author.Email, "email", "must be provided")
	if author.Email != "" {
		v.CheckMaxLength(author.Email, 254, "email", "must not be more than 254 characters long")
		v.CheckEmail(author.Email, "email", "must be a valid email address")
	}

	return v
}

func (c *Core) CreateAuthor(context context.Context, author *models.Author) error {
	if err := validateAuthor(author).Err(); err != nil {
		return xerrors.New(err)
	}

	query := `
		INSERT INTO authors (name, email)
		VALUES ($1, $2)
		RETURNING id
`
	args := []any{author.Name, author.Email}
	_, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, context, query, func(rows *sql.Rows) (*models.Author, error) {
		if err := rows.Scan(&author.ID); err != nil {
			return nil, xerrors.New(err)
		}
		return author, nil
	}, args...)

	if err != nil {
		switch {
		case err.Error() == `pq: duplicate key value violates unique constraint "authors_email_key"`:
			return xerrors.New(ErrDuplicateEmail)
		default:
			return xerrors.New(err)
		}
	}

	return nil
}

func (c *Core) GetAuthorByID(context context.Context, id int64) (*models.Author, error) {
	query := `
		SELECT id, name, email
		FROM authors
		WHERE id = $1
	`

	author, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, context, query, func(rows *sql.Rows) (*models.Author, error) {
		var author = &models.Author{}

		if err := rows.Scan(
			&author.ID,
			&author.Name,
			&author.Email,
		); err != nil {
			return nil, xerrors.New(err)
		}
		return author, nil
	}, id)

	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(NoRecordFound)
		default:
			return nil, xerrors.New(err)
		}
	}

	return author, nil
}

func (c *Core) GetAuthorByEmail(context context.Context, email string) (*models.Author, error) {
	query := `
		SELECT id, name, email
		FROM authors
		WHERE email = $1
	`

	author, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, context, query, func(rows *sql.Rows) (*models.Author, error) {
		var author = &models.Author{}

		if err := rows.Scan(
			&author.ID,
			&author.Name,
			&author.Email,
		); err != nil {
			return nil, xerrors.New(err)
		}
		return author, nil
	}, email)

	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(NoRecordFound)
		default:
			return nil, xerrors.New(err)
		}
	}

	return author, nil
}

func (c *Core) GetAuthorsByIdList(context context.Context, authorIdList []int64) ([]*models.Author, error) {
	if len(authorIdList) == 0 {
		return []*models.Author{}, nil
	}

	placeholders, args := stringutils.INCluse(authorIdList)
	query := fmt.Sprintf(`
		SELECT id, name, email
		FROM authors
		WHERE id in (%s)
	`, strings.Join(placeholders, ", "))

	queryResultList, err := databaseutils.ExecuteQuery(c.sqlTemplate, context, query, func(rows *sql.Rows) (*models.Author, error) {
		var author = &models.Author{}

		if err := rows.Scan(&author.ID,
			&author.Name,
			&author.Email); err != nil {
			return nil, xerrors.New(err)
		}
		return author, nil
	}, args...)

	if err != nil {
		return nil, xerrors.New(err)
	}

	return queryResultList, nil
}

func (c *Core) ListAuthors(context context.Context, filters filter.Filter) ([]*models.Author, error) {
	if err := filter.ValidateFilters(filters).Err(); err != nil {
		return nil, xerrors.New(err)
	}

	query := `
		SELECT id, name, email
		FROM authors
		ORDER BY id
		LIMIT $1 OFFSET $2
	`

	queryResultList, err := databaseutils.ExecuteQuery(c.sqlTemplate, context, query, func(rows *sql.Rows) (*models.Author, error) {
		var author = &models.Author{}

		if err := rows.Scan(&author.ID,
			&author.Name,
			&author.Email); err != nil {
			return nil, xerrors.New(err)
		}
		return author, nil
	}, filters.Limit, filters.Offset)

	if err != nil {
		return nil, xerrors.New(err)
	}

	return queryResultList, nil
}

func (c *Core) UpdateAuthor(context context.Context, author *models.Author) (*models.Author, error) {
	if err := validateAuthor(author).Err(); err != nil {
		return nil, xerrors.New(err)
	}

	query := `
		UPDATE authors
		SET name = $1, email = $2
		WHERE id = $3
		RETURNING id, name, email
	`

	args := []any{author.Name, author.Email, author.ID}
	returningAuthor, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, context, query, func(rows *sql.Rows) (*models.Author, error) {
		var author = &models.Author{}

		if err := rows.Scan(&author.ID,
			&author.Name,
			&author.Email); err != nil {
			return nil, xerrors.New(err)
		}
		return author, nil
	}, args...)

	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(NoRecordFound)
		case err.Error() == `pq: duplicate key value violates unique constraint "authors_email_key"`:
			return nil, xerrors.New(ErrDuplicateEmail)
		default:
			return nil, xerrors.New(err)
		}
	}

	c.log.Info("Author updated Successfully", "author_id", returningAuthor.ID, "email", returningAuthor.Email)
	return returningAuthor, nil
}

func (c *Core) DeleteAuthor(context context.Context, id int64) error {
	query := `
		DELETE FROM authors
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
