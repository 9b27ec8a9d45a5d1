package dao

import (
	"context"
	"database/sql"
	"regexp"
	"time"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/Laisky/zine-site/internal/web/search/model"
	"github.com/Laisky/zine-site/library/bodytext"
	"github.com/Laisky/zine-site/library/contributor"
)

// PostgresSchema creates the content tables read by PostgresStore.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS contributors (
	id          TEXT PRIMARY KEY,
	name        TEXT,
	given_name  TEXT,
	middle_name TEXT,
	family_name TEXT,
	slug        TEXT,
	image_url   TEXT
);
CREATE INDEX IF NOT EXISTS contributors_order_idx ON contributors (family_name, given_name);
CREATE TABLE IF NOT EXISTS stories (
	id             TEXT PRIMARY KEY,
	title          TEXT,
	slug           TEXT,
	excerpt        TEXT,
	image_url      TEXT,
	prompted_by    TEXT,
	body           TEXT,
	body_text      TEXT,
	author_id      TEXT REFERENCES contributors (id),
	illustrator_id TEXT REFERENCES contributors (id),
	published_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS stories_published_at_idx ON stories (published_at DESC);
CREATE TABLE IF NOT EXISTS pages (
	id             TEXT PRIMARY KEY,
	title          TEXT,
	slug           TEXT,
	hero_heading   TEXT,
	hero_tagline   TEXT,
	hero_image_url TEXT,
	body           TEXT,
	body_text      TEXT,
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS pages_updated_at_idx ON pages (updated_at DESC);
ALTER TABLE stories ADD COLUMN IF NOT EXISTS body_text TEXT;
ALTER TABLE pages ADD COLUMN IF NOT EXISTS body_text TEXT;
`

const (
	sqlSearchStories = `SELECT s.id, s.title, s.slug, s.excerpt, s.image_url, s.prompted_by, s.body, s.body_text, s.published_at,
	a.name, a.given_name, a.middle_name, a.family_name,
	i.name, i.given_name, i.middle_name, i.family_name
FROM stories s
LEFT JOIN contributors a ON a.id = s.author_id
LEFT JOIN contributors i ON i.id = s.illustrator_id
WHERE s.title ~* $1 OR s.excerpt ~* $1 OR s.body_text ~* $1
	OR COALESCE(a.name, concat_ws(' ', a.given_name, a.middle_name, a.family_name)) ~* $1
	OR COALESCE(i.name, concat_ws(' ', i.given_name, i.middle_name, i.family_name)) ~* $1
ORDER BY s.published_at DESC
LIMIT $2`

	sqlSearchPages = `SELECT id, title, slug, hero_heading, hero_tagline, hero_image_url, body, body_text, updated_at
FROM pages
WHERE title ~* $1 OR body_text ~* $1 OR hero_heading ~* $1 OR hero_tagline ~* $1
ORDER BY updated_at DESC
LIMIT $2`

	sqlSearchContributors = `SELECT id, name, given_name, middle_name, family_name, slug, image_url
FROM contributors
WHERE name ~* $1 OR given_name ~* $1 OR middle_name ~* $1 OR family_name ~* $1
ORDER BY family_name ASC, given_name ASC
LIMIT $2`
)

// PostgresStore reads the content tables.
type PostgresStore struct {
	logger logSDK.Logger
	db     *sql.DB
}

// NewPostgresStore create new postgres content store
func NewPostgresStore(logger logSDK.Logger, db *sql.DB) *PostgresStore {
	return &PostgresStore{
		logger: logger,
		db:     db,
	}
}

// EnsureSchema creates the content tables when missing.
func (d *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, PostgresSchema); err != nil {
		return errors.Wrap(err, "create content tables")
	}

	return nil
}

// BackfillBodyText renders every stored markdown body into body_text
// and returns how many rows were written.
func (d *PostgresStore) BackfillBodyText(ctx context.Context) (int, error) {
	total := 0
	for _, table := range []string{"stories", "pages"} {
		bodies, err := d.loadBodies(ctx, table)
		if err != nil {
			return total, err
		}

		stmt := `UPDATE ` + table + ` SET body_text = $1 WHERE id = $2`
		for _, b := range bodies {
			if _, err = d.db.ExecContext(ctx, stmt, bodytext.FromMarkdown(b.body), b.id); err != nil {
				return total, errors.Wrapf(err, "update body text of %s `%s`", table, b.id)
			}
			total++
		}

		d.logger.Info("backfilled body text", zap.String("table", table), zap.Int("n", len(bodies)))
	}

	return total, nil
}

type storedBody struct {
	id, body string
}

func (d *PostgresStore) loadBodies(ctx context.Context, table string) ([]storedBody, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT id, body FROM `+table+` WHERE body IS NOT NULL`)
	if err != nil {
		return nil, errors.Wrapf(err, "query %s bodies", table)
	}
	defer rows.Close() // nolint: errcheck

	var bodies []storedBody
	for rows.Next() {
		var b storedBody
		if err = rows.Scan(&b.id, &b.body); err != nil {
			return nil, errors.Wrapf(err, "scan %s body", table)
		}
		bodies = append(bodies, b)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "iterate %s bodies", table)
	}

	return bodies, nil
}

// postgresWordPrefixRegex is wordPrefixRegex in postgres ARE syntax.
func postgresWordPrefixRegex(pattern string) (string, error) {
	literal, err := patternLiteral(pattern)
	if err != nil {
		return "", err
	}

	return `(^|[^[:alnum:]_])` + regexp.QuoteMeta(literal), nil
}

func imageFromURL(u *string) *model.Image {
	if u == nil || *u == "" {
		return nil
	}

	return &model.Image{URL: *u}
}

func nameIfAny(n contributor.Name) *contributor.Name {
	if n.Name == nil && n.GivenName == nil && n.MiddleName == nil && n.FamilyName == nil {
		return nil
	}

	return &n
}

// SearchStories finds stories whose title, excerpt, body or people match pattern.
func (d *PostgresStore) SearchStories(ctx context.Context, pattern string) ([]*model.Story, error) {
	re, err := postgresWordPrefixRegex(pattern)
	if err != nil {
		return nil, err
	}

	rows, err := d.db.QueryContext(ctx, sqlSearchStories, re, MaxResultsPerDomain)
	if err != nil {
		return nil, errors.Wrap(err, "query stories")
	}
	defer rows.Close() // nolint: errcheck

	stories := []*model.Story{}
	for rows.Next() {
		var (
			s                   model.Story
			imageURL, prompted  *string
			body, bodyText      *string
			author, illustrator contributor.Name
		)
		if err = rows.Scan(&s.ID, &s.Title, &s.Slug, &s.Excerpt, &imageURL, &prompted, &body, &bodyText, &s.PublishedAt,
			&author.Name, &author.GivenName, &author.MiddleName, &author.FamilyName,
			&illustrator.Name, &illustrator.GivenName, &illustrator.MiddleName, &illustrator.FamilyName,
		); err != nil {
			return nil, errors.Wrap(err, "scan story")
		}

		s.MainImage = imageFromURL(imageURL)
		if prompted != nil {
			s.PromptedBy = model.PromptedBy(*prompted)
		}
		if body != nil {
			s.Body = *body
		}
		s.BodyText = storedOrRendered(bodyText, s.Body)
		s.Author = nameIfAny(author)
		s.Illustrator = nameIfAny(illustrator)
		stories = append(stories, &s)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate stories")
	}

	d.logger.Debug("search stories", zap.String("pattern", pattern), zap.Int("n", len(stories)))
	return stories, nil
}

// SearchPages finds pages whose title, body or hero texts match pattern.
func (d *PostgresStore) SearchPages(ctx context.Context, pattern string) ([]*model.Page, error) {
	re, err := postgresWordPrefixRegex(pattern)
	if err != nil {
		return nil, err
	}

	rows, err := d.db.QueryContext(ctx, sqlSearchPages, re, MaxResultsPerDomain)
	if err != nil {
		return nil, errors.Wrap(err, "query pages")
	}
	defer rows.Close() // nolint: errcheck

	pages := []*model.Page{}
	for rows.Next() {
		var (
			p                  model.Page
			heading, tagline   *string
			heroImageURL, body *string
			bodyText           *string
			updatedAt          time.Time
		)
		if err = rows.Scan(&p.ID, &p.Title, &p.Slug, &heading, &tagline, &heroImageURL, &body, &bodyText, &updatedAt); err != nil {
			return nil, errors.Wrap(err, "scan page")
		}

		p.UpdatedAt = updatedAt
		if heading != nil || tagline != nil || heroImageURL != nil {
			p.Hero = &model.PageHero{
				Heading: heading,
				Tagline: tagline,
				Image:   imageFromURL(heroImageURL),
			}
		}
		if body != nil {
			p.Body = *body
		}
		p.BodyText = storedOrRendered(bodyText, p.Body)
		pages = append(pages, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate pages")
	}

	d.logger.Debug("search pages", zap.String("pattern", pattern), zap.Int("n", len(pages)))
	return pages, nil
}

// SearchContributors finds contributors whose name fields match pattern.
func (d *PostgresStore) SearchContributors(ctx context.Context, pattern string) ([]*model.Contributor, error) {
	re, err := postgresWordPrefixRegex(pattern)
	if err != nil {
		return nil, err
	}

	rows, err := d.db.QueryContext(ctx, sqlSearchContributors, re, MaxResultsPerDomain)
	if err != nil {
		return nil, errors.Wrap(err, "query contributors")
	}
	defer rows.Close() // nolint: errcheck

	people := []*model.Contributor{}
	for rows.Next() {
		var (
			c        model.Contributor
			imageURL *string
		)
		if err = rows.Scan(&c.ID, &c.Name.Name, &c.GivenName, &c.MiddleName, &c.FamilyName, &c.Slug, &imageURL); err != nil {
			return nil, errors.Wrap(err, "scan contributor")
		}

		c.Image = imageFromURL(imageURL)
		people = append(people, &c)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate contributors")
	}

	d.logger.Debug("search contributors", zap.String("pattern", pattern), zap.Int("n", len(people)))
	return people, nil
}
