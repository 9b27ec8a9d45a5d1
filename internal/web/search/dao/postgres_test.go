package dao

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"
)

func newMockPostgresStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close() // nolint: errcheck
	})

	return NewPostgresStore(testLogger(), db), mock
}

func TestPostgresWordPrefixRegex(t *testing.T) {
	re, err := postgresWordPrefixRegex("river*")
	require.NoError(t, err)
	require.Equal(t, `(^|[^[:alnum:]_])river`, re)

	re, err = postgresWordPrefixRegex("a.b*")
	require.NoError(t, err)
	require.Equal(t, `(^|[^[:alnum:]_])a\.b`, re)

	re, err = postgresWordPrefixRegex("river**")
	require.NoError(t, err)
	require.Equal(t, `(^|[^[:alnum:]_])river\*`, re)

	_, err = postgresWordPrefixRegex("river")
	require.ErrorIs(t, err, ErrMalformedPattern)
}

func TestPostgresSearchStories(t *testing.T) {
	store, mock := newMockPostgresStore(t)
	published := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "title", "slug", "excerpt", "image_url", "prompted_by", "body", "body_text", "published_at",
		"a_name", "a_given", "a_middle", "a_family",
		"i_name", "i_given", "i_middle", "i_family",
	}).
		AddRow("s1", "The River Bend", "river-bend", nil, "https://cdn/x.png", "art", "a *quiet* river at dawn", nil, published,
			nil, "Ann", nil, "Lee",
			nil, nil, nil, nil).
		AddRow("s2", nil, nil, "short", nil, nil, nil, nil, published,
			nil, nil, nil, nil,
			"Bo", nil, nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta("s.body_text ~* $1")).
		WithArgs(`(^|[^[:alnum:]_])river`, MaxResultsPerDomain).
		WillReturnRows(rows)

	stories, err := store.SearchStories(context.Background(), "river*")
	require.NoError(t, err)
	require.Len(t, stories, 2)

	first := stories[0]
	require.Equal(t, "s1", first.ID)
	require.Equal(t, "The River Bend", *first.Title)
	require.Equal(t, "river-bend", *first.Slug)
	require.Nil(t, first.Excerpt)
	require.Equal(t, "https://cdn/x.png", first.MainImage.URL)
	require.EqualValues(t, "art", first.PromptedBy)
	require.Equal(t, "a quiet river at dawn", *first.BodyText)
	require.Equal(t, published, first.PublishedAt)
	require.NotNil(t, first.Author)
	require.Equal(t, "Ann", *first.Author.GivenName)
	require.Nil(t, first.Illustrator)

	second := stories[1]
	require.Nil(t, second.Title)
	require.Nil(t, second.BodyText)
	require.Nil(t, second.MainImage)
	require.Nil(t, second.Author)
	require.Equal(t, "Bo", *second.Illustrator.Name)
}

func TestPostgresSearchPages(t *testing.T) {
	store, mock := newMockPostgresStore(t)
	updated := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "title", "slug", "hero_heading", "hero_tagline", "hero_image_url", "body", "body_text", "updated_at",
	}).
		AddRow("p1", "About", "about", nil, "Life by the river", nil, "We **pr**int.", "We print.", updated).
		AddRow("p2", "Contact", "contact", nil, nil, nil, nil, nil, updated)

	mock.ExpectQuery(regexp.QuoteMeta("OR body_text ~* $1")).
		WithArgs(`(^|[^[:alnum:]_])river`, MaxResultsPerDomain).
		WillReturnRows(rows)

	pages, err := store.SearchPages(context.Background(), "river*")
	require.NoError(t, err)
	require.Len(t, pages, 2)
	require.Equal(t, "Life by the river", *pages[0].HeroTagline())
	require.Nil(t, pages[0].HeroHeading())
	require.Nil(t, pages[0].HeroImage())
	require.Equal(t, "We print.", *pages[0].BodyText)
	require.Nil(t, pages[1].Hero)
	require.Equal(t, updated, pages[1].UpdatedAt)
}

func TestPostgresSearchContributors(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	rows := sqlmock.NewRows([]string{
		"id", "name", "given_name", "middle_name", "family_name", "slug", "image_url",
	}).
		AddRow("c1", nil, "Rivera", nil, "Cruz", "rivera-cruz", "https://cdn/c.png")

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY family_name ASC, given_name ASC")).
		WithArgs(`(^|[^[:alnum:]_])river`, MaxResultsPerDomain).
		WillReturnRows(rows)

	people, err := store.SearchContributors(context.Background(), "river*")
	require.NoError(t, err)
	require.Len(t, people, 1)
	require.Nil(t, people[0].Name.Name)
	require.Equal(t, "Rivera", *people[0].GivenName)
	require.Equal(t, "Cruz", *people[0].FamilyName)
	require.Equal(t, "https://cdn/c.png", people[0].Image.URL)
}

func TestPostgresSearchFailure(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM pages")).
		WillReturnError(errors.New("connection refused"))

	pages, err := store.SearchPages(context.Background(), "river*")
	require.Error(t, err)
	require.Nil(t, pages)
	require.Contains(t, err.Error(), "query pages")
}

func TestPostgresEnsureSchema(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS contributors")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
}

func TestPostgresSearchQueriesMatchBodyText(t *testing.T) {
	require.NotContains(t, sqlSearchStories, "s.body ~*")
	require.Contains(t, sqlSearchStories, "s.body_text ~* $1")
	require.NotContains(t, sqlSearchPages, " body ~*")
	require.Contains(t, sqlSearchPages, "body_text ~* $1")
}

func TestPostgresBackfillBodyText(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, body FROM stories WHERE body IS NOT NULL")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "body"}).
			AddRow("s1", "**Riv**er at [dawn](https://river.example)"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE stories SET body_text = $1 WHERE id = $2")).
		WithArgs("River at dawn", "s1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, body FROM pages WHERE body IS NOT NULL")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "body"}).
			AddRow("p1", "# About\n\nWe print."))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE pages SET body_text = $1 WHERE id = $2")).
		WithArgs("About We print.", "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := store.BackfillBodyText(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestPostgresBackfillBodyTextFailure(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, body FROM stories")).
		WillReturnError(errors.New("connection refused"))

	n, err := store.BackfillBodyText(context.Background())
	require.Error(t, err)
	require.Zero(t, n)
	require.Contains(t, err.Error(), "query stories bodies")
}
