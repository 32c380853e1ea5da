package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/mdobak/go-xerrors"
	"github.com/rowhe/blogdata/internal/filter"
	"github.com/rowhe/blogdata/internal/utils/collectionutils"
	"github.com/rowhe/blogdata/internal/utils/databaseutils"
	"github.com/rowhe/blogdata/internal/utils/functional"
	"github.com/rowhe/blogdata/internal/utils/stringutils"
	"github.com/rowhe/blogdata/internal/validator"
	"github.com/rowhe/blogdata/models"
	"strings"
	"time"
)

var (
	ErrDuplicateEntrySlug = xerrors.Message("Duplicate entry slug")
	ErrDuplicateEntry     = xerrors.Message("Duplicate entry")
	ErrBlogNotFound       = xerrors.Message("Blog not found")
	AuthorIsAlreadyLinked = xerrors.Message("Author is already linked")
	AuthorIsNotLinked     = xerrors.Message("Author is not linked")
)

func validateEntry(entry *models.Entry) *validator.Validator {
	v := validator.New()

	v.CheckNotBlank(entry.SlugHeadline, "slug_headline", "must be provided")
	v.CheckMaxLength(entry.SlugHeadline, 255, "slug_headline", "must not be more than 255 characters long")
	if entry.SlugHeadline != "" {
		v.CheckMatch(entry.SlugHeadline, validator.SlugRX, "slug_headline", "must consist of letters, numbers, underscores or hyphens")
	}
	v.CheckNotBlank(entry.Headline, "headline", "must be provided")
	v.CheckMaxLength(entry.Headline, 255, "headline", "must not be more than 255 characters long")
	v.CheckNotBlank(entry.Summary, "summary", "must be provided")
	v.CheckNotBlank(entry.BodyText, "body_text", "must be provided")

	return v
}

// CreateEntry inserts the entry and links it to the given authors inside a
// single transaction. The publication date is stamped with the current time
// when the caller left it zero, the modification date always starts at the
// current date.
func (c *Core) CreateEntry(ctx context.Context, entry *models.Entry, authorIdList []int64) (*models.Entry, error) {
	v := validateEntry(entry)
	v.Check(entry.BlogID > 0, "blog_id", "must be provided")
	v.Check(v.IsUnique(stringutils.ToListString(authorIdList)), "authors", "must not contain duplicate authors")
	if err := v.Err(); err != nil {
		return nil, xerrors.New(err)
	}

	if entry.PubDate.IsZero() {
		entry.PubDate = time.Now()
	}

	return databaseutils.DoTransactionally(ctx, c.session, func(txContext context.Context) (*models.Entry, error) {
		insertSQL := `
			INSERT INTO entries (slug_headline, blog_id, headline, summary, body_text, pub_date, mod_date, number_of_comments, number_of_pingbacks, rating)
			VALUES ($1, $2, $3, $4, $5, $6, CURRENT_DATE, $7, $8, $9)
			RETURNING slug_headline, blog_id, headline, summary, body_text, pub_date, mod_date, number_of_comments, number_of_pingbacks, rating
		`

		args := []any{entry.SlugHeadline, entry.BlogID, entry.Headline, entry.Summary, entry.BodyText, entry.PubDate, entry.NumberOfComments, entry.NumberOfPingbacks, entry.Rating}
		createdEntry, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, txContext, insertSQL, func(rows *sql.Rows) (*models.Entry, error) {
			var entry = &models.Entry{}

			if err := rows.Scan(
				&entry.SlugHeadline,
				&entry.BlogID,
				&entry.Headline,
				&entry.Summary,
				&entry.BodyText,
				&entry.PubDate,
				&entry.ModDate,
				&entry.NumberOfComments,
				&entry.NumberOfPingbacks,
				&entry.Rating,
			); err != nil {
				return nil, xerrors.New(err)
			}
			return entry, nil
		}, args...)

		if err != nil {
			switch {
			case err.Error() == `pq: duplicate key value violates unique constraint "entries_pkey"`:
				return nil, xerrors.New(ErrDuplicateEntrySlug)
			case strings.Contains(err.Error(), `duplicate key value violates unique constraint`):
				return nil, xerrors.New(ErrDuplicateEntry)
			case strings.Contains(err.Error(), `violates foreign key constraint "entries_blog_id_fkey"`):
				return nil, xerrors.New(ErrBlogNotFound)
			default:
				return nil, xerrors.New(err)
			}
		}

		if err := c.linkEntryAuthors(txContext, createdEntry.SlugHeadline, authorIdList); err != nil {
			return nil, err
		}

		return createdEntry, nil
	})
}

func (c *Core) linkEntryAuthors(ctx context.Context, slugHeadline string, authorIdList []int64) error {
	if len(authorIdList) == 0 {
		return nil
	}

	// The SQL statement will look like: INSERT INTO entry_authors (entry_slug, author_id) VALUES ($1, $2), ($1, $3), ...
	valueString := make([]string, 0, len(authorIdList))
	valueArgs := make([]any, 0, len(authorIdList)+1)

	valueArgs = append(valueArgs, slugHeadline)
	for i, authorId := range authorIdList {
		valueString = append(valueString, fmt.Sprintf("($1, $%d)", i+2))
		valueArgs = append(valueArgs, authorId)
	}

	valueCluses := strings.Join(valueString, ", ")

	insertSQL := fmt.Sprintf(`
			INSERT INTO entry_authors (entry_slug, author_id)
		  	VALUES %s
		  	ON CONFLICT (entry_slug, author_id) DO NOTHING
`, valueCluses)

	if _, err := databaseutils.ExecuteUpdate(c.sqlTemplate, ctx, insertSQL, valueArgs...); err != nil {
		switch {
		case strings.Contains(err.Error(), `violates foreign key constraint "entry_authors_author_id_fkey"`):
			return xerrors.New(ErrAuthorNotFound)
		default:
			return xerrors.New(err)
		}
	}

	return nil
}

func (c *Core) GetEntry(ctx context.Context, slugHeadline string) (*models.Entry, error) {
	query := `
		SELECT slug_headline, blog_id, headline, summary, body_text, pub_date, mod_date, number_of_comments, number_of_pingbacks, rating
		FROM entries
		WHERE slug_headline = $1
	`

	entry, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, func(rows *sql.Rows) (*models.Entry, error) {
		var entry = &models.Entry{}

		if err := rows.Scan(
			&entry.SlugHeadline,
			&entry.BlogID,
			&entry.Headline,
			&entry.Summary,
			&entry.BodyText,
			&entry.PubDate,
			&entry.ModDate,
			&entry.NumberOfComments,
			&entry.NumberOfPingbacks,
			&entry.Rating,
		); err != nil {
			return nil, xerrors.New(err)
		}
		return entry, nil
	}, slugHeadline)

	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(NoRecordFound)
		default:
			return nil, xerrors.New(err)
		}
	}

	return entry, nil
}

func (c *Core) ListEntriesByBlog(ctx context.Context, blogId int64, filters filter.Filter) ([]*models.Entry, filter.Metadata, error) {
	if err := filter.ValidateFilters(filters).Err(); err != nil {
		return nil, filter.Metadata{}, xerrors.New(err)
	}

	query := `
		SELECT count(*) OVER(), slug_headline, blog_id, headline, summary, body_text, pub_date, mod_date, number_of_comments, number_of_pingbacks, rating
		FROM entries
		WHERE blog_id = $1
		ORDER BY pub_date DESC, slug_headline
		LIMIT $2 OFFSET $3
	`

	var totalEntries int64
	queryResultList, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, func(rows *sql.Rows) (*models.Entry, error) {
		var entry = &models.Entry{}

		if err := rows.Scan(&totalEntries,
			&entry.SlugHeadline,
			&entry.BlogID,
			&entry.Headline,
			&entry.Summary,
			&entry.BodyText,
			&entry.PubDate,
			&entry.ModDate,
			&entry.NumberOfComments,
			&entry.NumberOfPingbacks,
			&entry.Rating); err != nil {
			return nil, xerrors.New(err)
		}
		return entry, nil
	}, blogId, filters.Limit, filters.Offset)

	if err != nil {
		return nil, filter.Metadata{}, xerrors.New(err)
	}

	return queryResultList, filter.Metadata{EntriesCount: totalEntries}, nil
}

func (c *Core) ListEntriesByAuthor(ctx context.Context, authorId int64, filters filter.Filter) ([]*models.Entry, error) {
	if err := filter.ValidateFilters(filters).Err(); err != nil {
		return nil, xerrors.New(err)
	}

	query := `
		SELECT e.slug_headline, e.blog_id, e.headline, e.summary, e.body_text, e.pub_date, e.mod_date, e.number_of_comments, e.number_of_pingbacks, e.rating
		FROM entries as e join entry_authors ea on e.slug_headline = ea.entry_slug
		WHERE ea.author_id = $1
		ORDER BY e.pub_date DESC, e.slug_headline
		LIMIT $2 OFFSET $3
	`

	queryResultList, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, func(rows *sql.Rows) (*models.Entry, error) {
		var entry = &models.Entry{}

		if err := rows.Scan(&entry.SlugHeadline,
			&entry.BlogID,
			&entry.Headline,
			&entry.Summary,
			&entry.BodyText,
			&entry.PubDate,
			&entry.ModDate,
			&entry.NumberOfComments,
			&entry.NumberOfPingbacks,
			&entry.Rating); err != nil {
			return nil, xerrors.New(err)
		}
		return entry, nil
	}, authorId, filters.Limit, filters.Offset)

	if err != nil {
		return nil, xerrors.New(err)
	}

	return queryResultList, nil
}

// UpdateEntry rewrites the mutable columns of the entry identified by
// entry.SlugHeadline. The modification date moves to the current date, the
// publication date is never touched here.
func (c *Core) UpdateEntry(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	if err := validateEntry(entry).Err(); err != nil {
		return nil, xerrors.New(err)
	}

	query := `
		UPDATE entries
		SET headline = $1, summary = $2, body_text = $3, number_of_comments = $4, number_of_pingbacks = $5, rating = $6, mod_date = CURRENT_DATE
		WHERE slug_headline = $7
		RETURNING slug_headline, blog_id, headline, summary, body_text, pub_date, mod_date, number_of_comments, number_of_pingbacks, rating
	`

	args := []any{entry.Headline, entry.Summary, entry.BodyText, entry.NumberOfComments, entry.NumberOfPingbacks, entry.Rating, entry.SlugHeadline}
	returningEntry, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, func(rows *sql.Rows) (*models.Entry, error) {
		var entry = &models.Entry{}

		if err := rows.Scan(&entry.SlugHeadline,
			&entry.BlogID,
			&entry.Headline,
			&entry.Summary,
			&entry.BodyText,
			&entry.PubDate,
			&entry.ModDate,
			&entry.NumberOfComments,
			&entry.NumberOfPingbacks,
			&entry.Rating); err != nil {
			return nil, xerrors.New(err)
		}
		return entry, nil
	}, args...)

	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(NoRecordFound)
		case strings.Contains(err.Error(), `duplicate key value violates unique constraint`):
			return nil, xerrors.New(ErrDuplicateEntry)
		default:
			return nil, xerrors.New(err)
		}
	}

	return returningEntry, nil
}

func (c *Core) DeleteEntry(ctx context.Context, slugHeadline string) error {
	query := `
		DELETE FROM entries
		WHERE slug_headline = $1
	`

	affected, err := databaseutils.ExecuteUpdate(c.sqlTemplate, ctx, query, slugHeadline)
	if err != nil {
		return xerrors.New(err)
	}

	if affected == 0 {
		return xerrors.New(NoRecordFound)
	}

	return nil
}

func (c *Core) AddEntryAuthor(ctx context.Context, slugHeadline string, authorId int64) error {
	insertSql := `
		INSERT INTO entry_authors (entry_slug, author_id)
		VALUES ($1, $2)
	`

	_, err := databaseutils.ExecuteUpdate(c.sqlTemplate, ctx, insertSql, slugHeadline, authorId)
	if err != nil {
		switch {
		case strings.Contains(err.Error(), `duplicate key value violates unique constraint`):
			return xerrors.New(AuthorIsAlreadyLinked)
		case strings.Contains(err.Error(), `violates foreign key constraint "entry_authors_entry_slug_fkey"`):
			return xerrors.New(NoRecordFound)
		case strings.Contains(err.Error(), `violates foreign key constraint "entry_authors_author_id_fkey"`):
			return xerrors.New(ErrAuthorNotFound)
		default:
			return xerrors.New(err)
		}
	}

	return nil
}

func (c *Core) RemoveEntryAuthor(ctx context.Context, slugHeadline string, authorId int64) error {
	deleteSql := `
		DELETE FROM entry_authors
		WHERE entry_slug = $1 AND author_id = $2
	`

	affected, err := databaseutils.ExecuteUpdate(c.sqlTemplate, ctx, deleteSql, slugHeadline, authorId)
	if err != nil {
		return xerrors.New(err)
	}

	if affected == 0 {
		return xerrors.New(AuthorIsNotLinked)
	}

	return nil
}

func (c *Core) IsEntryAuthor(ctx context.Context, slugHeadline string, authorId int64) (bool, error) {
	const selectSQL = `
		SELECT EXISTS(
			SELECT 1 FROM entry_authors WHERE entry_slug = $1 and author_id = $2
		)
	`

	queryCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var isAuthor bool
	err := c.db.QueryRowContext(queryCtx, selectSQL, slugHeadline, authorId).Scan(&isAuthor)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, xerrors.New(err)
	}
	return isAuthor, nil
}

func (c *Core) EntryAuthors(ctx context.Context, slugHeadline string) ([]*models.Author, error) {
	query := `
		SELECT a.id, a.name, a.email
		FROM authors as a join entry_authors ea on a.id = ea.author_id
		WHERE ea.entry_slug = $1
		ORDER BY a.id
	`

	queryResultList, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, func(rows *sql.Rows) (*models.Author, error) {
		var author = &models.Author{}

		if err := rows.Scan(&author.ID,
			&author.Name,
			&author.Email); err != nil {
			return nil, xerrors.New(err)
		}
		return author, nil
	}, slugHeadline)

	if err != nil {
		return nil, xerrors.New(err)
	}

	return queryResultList, nil
}

// AuthorsForEntries resolves the author lists for a batch of entries in one
// round trip. Slugs without any linked author are absent from the result.
func (c *Core) AuthorsForEntries(ctx context.Context, slugHeadlineList []string) (map[string][]*models.Author, error) {
	if len(slugHeadlineList) == 0 {
		return map[string][]*models.Author{}, nil
	}

	type entryAuthor struct {
		slugHeadline string
		author       *models.Author
	}

	placeholders, args := stringutils.INCluse(slugHeadlineList)
	query := fmt.Sprintf(`
		SELECT ea.entry_slug, a.id, a.name, a.email
		FROM authors as a join entry_authors ea on a.id = ea.author_id
		WHERE ea.entry_slug in (%s)
		ORDER BY ea.entry_slug, a.id
	`, strings.Join(placeholders, ", "))

	queryResultList, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, func(rows *sql.Rows) (entryAuthor, error) {
		var author = &models.Author{}
		var slugHeadline string

		if err := rows.Scan(&slugHeadline,
			&author.ID,
			&author.Name,
			&author.Email); err != nil {
			return entryAuthor{}, xerrors.New(err)
		}
		return entryAuthor{slugHeadline: slugHeadline, author: author}, nil
	}, args...)

	if err != nil {
		return nil, xerrors.New(err)
	}

	groupedBySlug := collectionutils.GroupBy(queryResultList, func(item entryAuthor) string {
		return item.slugHeadline
	})

	authorsBySlug := make(map[string][]*models.Author, len(groupedBySlug))
	for slugHeadline, items := range groupedBySlug {
		authorsBySlug[slugHeadline] = functional.Map(items, func(item entryAuthor) *models.Author {
			return item.author
		})
	}

	return authorsBySlug, nil
}
