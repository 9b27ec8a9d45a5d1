package dao

import (
	"context"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongoLib "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Laisky/zine-site/internal/web/search/model"
	"github.com/Laisky/zine-site/library/bodytext"
	"github.com/Laisky/zine-site/library/db/mongo"
)

const (
	StoryColName       = "stories"
	PageColName        = "pages"
	ContributorColName = "contributors"
)

var (
	storySearchFields = []string{
		"title", "excerpt", "body_text",
		"author.name", "author.given_name", "author.middle_name", "author.family_name",
		"illustrator.name", "illustrator.given_name", "illustrator.middle_name", "illustrator.family_name",
	}
	pageSearchFields        = []string{"title", "body_text", "hero.heading", "hero.tagline"}
	contributorSearchFields = []string{"name", "given_name", "middle_name", "family_name"}

	storySort       = bson.D{{Key: "published_at", Value: -1}}
	pageSort        = bson.D{{Key: "updated_at", Value: -1}}
	contributorSort = bson.D{{Key: "family_name", Value: 1}, {Key: "given_name", Value: 1}}
)

// MongoStore reads the content collections.
type MongoStore struct {
	logger logSDK.Logger
	db     mongo.DB
}

// NewMongoStore create new mongo content store
func NewMongoStore(logger logSDK.Logger, db mongo.DB) *MongoStore {
	return &MongoStore{
		logger: logger,
		db:     db,
	}
}

// GetStoriesCol get stories collection
func (d *MongoStore) GetStoriesCol() *mongoLib.Collection {
	return d.db.GetCol(StoryColName)
}

// GetPagesCol get pages collection
func (d *MongoStore) GetPagesCol() *mongoLib.Collection {
	return d.db.GetCol(PageColName)
}

// GetContributorsCol get contributors collection
func (d *MongoStore) GetContributorsCol() *mongoLib.Collection {
	return d.db.GetCol(ContributorColName)
}

// buildMatchFilter ORs a case-insensitive word-prefix regex across fields.
func buildMatchFilter(pattern string, fields []string) (bson.D, error) {
	literal, err := patternLiteral(pattern)
	if err != nil {
		return nil, err
	}

	re := primitive.Regex{Pattern: wordPrefixRegex(literal), Options: "i"}
	ors := make(bson.A, 0, len(fields))
	for _, f := range fields {
		ors = append(ors, bson.D{{Key: f, Value: re}})
	}

	return bson.D{{Key: "$or", Value: ors}}, nil
}

func findAll[T any](ctx context.Context, col *mongoLib.Collection, filter, sort bson.D) ([]*T, error) {
	cur, err := col.Find(ctx, filter,
		options.Find().
			SetSort(sort).
			SetLimit(MaxResultsPerDomain),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "find in `%s`", col.Name())
	}
	defer cur.Close(ctx) // nolint: errcheck

	docs := []*T{}
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrapf(err, "decode from `%s`", col.Name())
	}

	return docs, nil
}

// storedOrRendered prefers the stored body text and renders md for
// records that migrate has not reached yet.
func storedOrRendered(stored *string, md string) *string {
	if stored != nil {
		return stored
	}
	if md == "" {
		return nil
	}

	text := bodytext.FromMarkdown(md)
	return &text
}

// SearchStories finds stories whose title, excerpt, body or people match pattern.
func (d *MongoStore) SearchStories(ctx context.Context, pattern string) ([]*model.Story, error) {
	filter, err := buildMatchFilter(pattern, storySearchFields)
	if err != nil {
		return nil, err
	}

	stories, err := findAll[model.Story](ctx, d.GetStoriesCol(), filter, storySort)
	if err != nil {
		return nil, err
	}

	for _, s := range stories {
		s.BodyText = storedOrRendered(s.BodyText, s.Body)
	}

	d.logger.Debug("search stories", zap.String("pattern", pattern), zap.Int("n", len(stories)))
	return stories, nil
}

// SearchPages finds pages whose title, body or hero texts match pattern.
func (d *MongoStore) SearchPages(ctx context.Context, pattern string) ([]*model.Page, error) {
	filter, err := buildMatchFilter(pattern, pageSearchFields)
	if err != nil {
		return nil, err
	}

	pages, err := findAll[model.Page](ctx, d.GetPagesCol(), filter, pageSort)
	if err != nil {
		return nil, err
	}

	for _, p := range pages {
		p.BodyText = storedOrRendered(p.BodyText, p.Body)
	}

	d.logger.Debug("search pages", zap.String("pattern", pattern), zap.Int("n", len(pages)))
	return pages, nil
}

// SearchContributors finds contributors whose name fields match pattern.
func (d *MongoStore) SearchContributors(ctx context.Context, pattern string) ([]*model.Contributor, error) {
	filter, err := buildMatchFilter(pattern, contributorSearchFields)
	if err != nil {
		return nil, err
	}

	people, err := findAll[model.Contributor](ctx, d.GetContributorsCol(), filter, contributorSort)
	if err != nil {
		return nil, err
	}

	d.logger.Debug("search contributors", zap.String("pattern", pattern), zap.Int("n", len(people)))
	return people, nil
}

// EnsureIndexes creates the indexes backing each domain's sort order.
func (d *MongoStore) EnsureIndexes(ctx context.Context) error {
	for col, keys := range map[*mongoLib.Collection]bson.D{
		d.GetStoriesCol():      storySort,
		d.GetPagesCol():        pageSort,
		d.GetContributorsCol(): contributorSort,
	} {
		name, err := col.Indexes().CreateOne(ctx, mongoLib.IndexModel{Keys: keys})
		if err != nil {
			return errors.Wrapf(err, "create index on `%s`", col.Name())
		}

		d.logger.Info("ensured index", zap.String("col", col.Name()), zap.String("index", name))
	}

	return nil
}

// BackfillBodyText renders the markdown body of every story and page into
// body_text and returns how many documents were written.
func (d *MongoStore) BackfillBodyText(ctx context.Context) (int, error) {
	total := 0
	for _, col := range []*mongoLib.Collection{d.GetStoriesCol(), d.GetPagesCol()} {
		n, err := backfillCol(ctx, col)
		total += n
		if err != nil {
			return total, err
		}

		d.logger.Info("backfilled body text", zap.String("col", col.Name()), zap.Int("n", n))
	}

	return total, nil
}

func backfillCol(ctx context.Context, col *mongoLib.Collection) (n int, err error) {
	cur, err := col.Find(ctx,
		bson.M{"body": bson.M{"$exists": true}},
		options.Find().SetProjection(bson.M{"body": 1}),
	)
	if err != nil {
		return 0, errors.Wrapf(err, "find bodies in `%s`", col.Name())
	}
	defer cur.Close(ctx) // nolint: errcheck

	for cur.Next(ctx) {
		var doc struct {
			ID   string `bson:"_id"`
			Body string `bson:"body"`
		}
		if err = cur.Decode(&doc); err != nil {
			return n, errors.Wrapf(err, "decode body from `%s`", col.Name())
		}

		if _, err = col.UpdateByID(ctx, doc.ID,
			bson.M{"$set": bson.M{"body_text": bodytext.FromMarkdown(doc.Body)}},
		); err != nil {
			return n, errors.Wrapf(err, "update body text of `%s`", doc.ID)
		}
		n++
	}
	if err = cur.Err(); err != nil {
		return n, errors.Wrapf(err, "iterate `%s`", col.Name())
	}

	return n, nil
}
