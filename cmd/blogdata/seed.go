package main

import (
	"bytes"
	"context"
	"errors"
	"github.com/disintegration/imaging"
	"github.com/rowhe/blogdata/internal/avatar"
	"github.com/rowhe/blogdata/internal/core"
	"github.com/rowhe/blogdata/internal/filter"
	"github.com/rowhe/blogdata/internal/utils/collectionutils"
	"github.com/rowhe/blogdata/internal/utils/functional"
	"github.com/rowhe/blogdata/models"
	"image/color"
	"log/slog"
)

// seed inserts a small demonstration dataset. Running it twice is harmless,
// records that already exist are looked up instead of recreated.
func seed(ctx context.Context, c *core.Core, log *slog.Logger) error {
	headline := "Engineering notes"
	blog, err := c.CreateBlog(ctx, &models.Blog{
		Name:     "Tech",
		SlugName: c.CreateSlug("Tech"),
		Headline: &headline,
	})
	if err != nil {
		if !isDuplicate(err) {
			return err
		}
		blog, err = c.GetBlogBySlug(ctx, "tech")
		if err != nil {
			return err
		}
	}

	author := &models.Author{Name: "Ivan", Email: "ivan@example.com"}
	if err := c.CreateAuthor(ctx, author); err != nil {
		if !errors.Is(err, core.ErrDuplicateEmail) {
			return err
		}
		existing, err := c.GetAuthorByEmail(ctx, "ivan@example.com")
		if err != nil {
			return err
		}
		author = existing
	}

	bio := "Writes about storage engines and Go."
	city := "Novosibirsk"
	profile, err := c.SaveAuthorProfile(ctx, &models.AuthorProfile{
		AuthorID: author.ID,
		Bio:      &bio,
		City:     &city,
	}, &avatar.Upload{Filename: "ivan.png", Data: seedAvatar()})
	if err != nil {
		return err
	}

	entry := &models.Entry{
		SlugHeadline: c.CreateSlug("Going with the flow"),
		BlogID:       blog.ID,
		Headline:     "Going with the flow",
		Summary:      "Why the pipeline moved to Go.",
		BodyText:     "The long story of the migration, with numbers.",
	}
	if _, err := c.CreateEntry(ctx, entry, []int64{author.ID}); err != nil && !isDuplicate(err) {
		return err
	}

	log.Info("Demonstration data is in place",
		"blog", blog.SlugName,
		"author", author.Email,
		"avatar", profile.Avatar,
	)
	return report(ctx, c, log, blog)
}

// report reads the seeded blog back through the same operations external
// callers use and logs every entry with its authors.
func report(ctx context.Context, c *core.Core, log *slog.Logger, blog *models.Blog) error {
	entries, metadata, err := c.ListEntriesByBlog(ctx, blog.ID, filter.NewFilter(20, 0))
	if err != nil {
		return err
	}

	slugs := functional.Map(entries, func(entry *models.Entry) string { return entry.SlugHeadline })
	authorsBySlug, err := c.AuthorsForEntries(ctx, slugs)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		authors := collectionutils.GetOrDefault(authorsBySlug, entry.SlugHeadline, []*models.Author{})
		names := functional.Map(authors, func(author *models.Author) string { return author.Name })
		log.Info("Seeded entry", "slug", entry.SlugHeadline, "pub_date", entry.PubDate, "authors", names)
	}

	log.Info("Blog is ready", "blog", blog.SlugName, "entries", metadata.EntriesCount)
	return nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, core.ErrDuplicateBlogName) ||
		errors.Is(err, core.ErrDuplicateBlogSlug) ||
		errors.Is(err, core.ErrDuplicateBlog) ||
		errors.Is(err, core.ErrDuplicateEntrySlug) ||
		errors.Is(err, core.ErrDuplicateEntry)
}

// seedAvatar renders an oversized image so the save path exercises the
// resize step.
func seedAvatar() []byte {
	img := imaging.New(640, 640, color.NRGBA{R: 96, G: 140, B: 220, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
