package core

import (
	"context"
	"database/sql"
	"errors"
	"github.com/mdobak/go-xerrors"
	"github.com/rowhe/blogdata/internal/avatar"
	"github.com/rowhe/blogdata/internal/utils/databaseutils"
	"github.com/rowhe/blogdata/internal/validator"
	"github.com/rowhe/blogdata/models"
	"strings"
)

var ErrDuplicatePhoneNumber = xerrors.Message("Duplicate phone number")

func validateAuthorProfile(profile *models.AuthorProfile) *validator.Validator {
	v := validator.New()

	v.Check(profile.AuthorID > 0, "author_id", "must be provided")
	if profile.PhoneNumber != nil && *profile.PhoneNumber != "" {
		v.CheckMaxLength(*profile.PhoneNumber, 12, "phone_number", "must not be more than 12 characters long")
		v.CheckMatch(*profile.PhoneNumber, validator.PhoneRX, "phone_number", "must be entered in the format: '+79123456789'")
	}
	if profile.City != nil {
		v.CheckMaxLength(*profile.City, 120, "city", "must not be more than 120 characters long")
	}

	return v
}

// SaveAuthorProfile creates the profile row for profile.AuthorID or updates
// it when one already exists. When an upload is present the avatar key is
// derived from the author name and the upload bytes, and the original bytes
// are stored under that key before the row is written.
//
// The row write and the avatar normalization are two separate steps on
// purpose: a normalization failure does not roll the row back, the saved
// profile is returned together with the error so the caller can retry the
// image step on its own.
func (c *Core) SaveAuthorProfile(context context.Context, profile *models.AuthorProfile, upload *avatar.Upload) (*models.AuthorProfile, error) {
	if err := validateAuthorProfile(profile).Err(); err != nil {
		return nil, xerrors.New(err)
	}

	if upload != nil {
		author, err := c.GetAuthorByID(context, profile.AuthorID)
		if err != nil {
			return nil, xerrors.New(err)
		}

		key, err := c.avatars.HashedName(author.Name, upload)
		if err != nil {
			return nil, err
		}
		if err := c.avatars.Put(context, key, upload.Data); err != nil {
			return nil, err
		}
		profile.Avatar = key
	} else if profile.Avatar == "" {
		profile.Avatar = c.avatars.Placeholder()
	}

	query := `
		INSERT INTO author_profiles (author_id, bio, avatar, phone_number, city)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (author_id) DO UPDATE
		SET bio = EXCLUDED.bio, avatar = EXCLUDED.avatar, phone_number = EXCLUDED.phone_number, city = EXCLUDED.city
		RETURNING id, author_id, bio, avatar, phone_number, city
	`

	args := []any{profile.AuthorID, profile.Bio, profile.Avatar, profile.PhoneNumber, profile.City}
	savedProfile, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, context, query, func(rows *sql.Rows) (*models.AuthorProfile, error) {
		var profile = &models.AuthorProfile{}

		if err := rows.Scan(
			&profile.ID,
			&profile.AuthorID,
			&profile.Bio,
			&profile.Avatar,
			&profile.PhoneNumber,
			&profile.City,
		); err != nil {
			return nil, xerrors.New(err)
		}
		return profile, nil
	}, args...)

	if err != nil {
		switch {
		case err.Error() == `pq: duplicate key value violates unique constraint "author_profiles_phone_number_key"`:
			return nil, xerrors.New(ErrDuplicatePhoneNumber)
		case strings.Contains(err.Error(), `violates foreign key constraint "author_profiles_author_id_fkey"`):
			return nil, xerrors.New(ErrAuthorNotFound)
		default:
			return nil, xerrors.New(err)
		}
	}

	c.log.Info("Author profile saved", "author_id", savedProfile.AuthorID, "avatar", savedProfile.Avatar)

	// The row is durable at this point, failures below leave it in place.
	if err := c.avatars.Normalize(context, savedProfile.Avatar); err != nil {
		return savedProfile, err
	}

	return savedProfile, nil
}

func (c *Core) GetAuthorProfile(context context.Context, authorID int64) (*models.AuthorProfile, error) {
	query := `
		SELECT id, author_id, bio, avatar, phone_number, city
		FROM author_profiles
		WHERE author_id = $1
	`

	profile, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, context, query, func(rows *sql.Rows) (*models.AuthorProfile, error) {
		var profile = &models.AuthorProfile{}

		if err := rows.Scan(
			&profile.ID,
			&profile.AuthorID,
			&profile.Bio,
			&profile.Avatar,
			&profile.PhoneNumber,
			&profile.City,
		); err != nil {
			return nil, xerrors.New(err)
		}
		return profile, nil
	}, authorID)

	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(NoRecordFound)
		default:
			return nil, xerrors.New(err)
		}
	}

	return profile, nil
}
