// Package model contains the raw records the content store returns for search.
package model

import (
	"time"

	"github.com/Laisky/zine-site/library/contributor"
)

// Image is a reference to a stored asset. The search pipeline passes it through untouched.
type Image struct {
	// AssetRef asset identifier in the media store
	AssetRef string `bson:"asset_ref,omitempty" json:"asset_ref,omitempty"`
	// URL public url of the asset
	URL string `bson:"url,omitempty" json:"url,omitempty"`
	// Alt alternative text
	Alt string `bson:"alt,omitempty" json:"alt,omitempty"`
}

// PromptedBy is which half of a story came first.
type PromptedBy string

const (
	PromptedByArt     PromptedBy = "art"
	PromptedByWriting PromptedBy = "writing"
)

// Story is one published post.
type Story struct {
	// ID unique identifier for the story
	ID string `bson:"_id" json:"id"`
	// Title title of the story
	Title *string `bson:"title,omitempty" json:"title,omitempty"`
	// Slug url slug of the story
	Slug *string `bson:"slug,omitempty" json:"slug,omitempty"`
	// Excerpt hand written excerpt
	Excerpt *string `bson:"excerpt,omitempty" json:"excerpt,omitempty"`
	// MainImage cover image
	MainImage *Image `bson:"main_image,omitempty" json:"main_image,omitempty"`
	// PromptedBy art or writing
	PromptedBy PromptedBy `bson:"prompted_by,omitempty" json:"prompted_by,omitempty"`
	// Body markdown body as stored
	Body string `bson:"body,omitempty" json:"-"`
	// BodyText rendered plain text of Body, the field search matches on
	BodyText *string `bson:"body_text,omitempty" json:"body_text,omitempty"`
	// Author writer of the story
	Author *contributor.Name `bson:"author,omitempty" json:"author,omitempty"`
	// Illustrator artist of the story
	Illustrator *contributor.Name `bson:"illustrator,omitempty" json:"illustrator,omitempty"`
	// PublishedAt publish time
	PublishedAt time.Time `bson:"published_at" json:"published_at"`
}

// PageHero is the heading block at the top of a static page.
type PageHero struct {
	// Heading hero heading
	Heading *string `bson:"heading,omitempty" json:"heading,omitempty"`
	// Tagline hero tagline
	Tagline *string `bson:"tagline,omitempty" json:"tagline,omitempty"`
	// Image hero image
	Image *Image `bson:"image,omitempty" json:"image,omitempty"`
}

// Page is one informational page.
type Page struct {
	// ID unique identifier for the page
	ID string `bson:"_id" json:"id"`
	// Title title of the page
	Title *string `bson:"title,omitempty" json:"title,omitempty"`
	// Slug url slug of the page
	Slug *string `bson:"slug,omitempty" json:"slug,omitempty"`
	// Hero hero block
	Hero *PageHero `bson:"hero,omitempty" json:"hero,omitempty"`
	// Body markdown body as stored
	Body string `bson:"body,omitempty" json:"-"`
	// BodyText rendered plain text of Body, the field search matches on
	BodyText *string `bson:"body_text,omitempty" json:"body_text,omitempty"`
	// UpdatedAt last modified time
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HeroHeading returns the hero heading, or nil when the page has no hero.
func (p *Page) HeroHeading() *string {
	if p.Hero == nil {
		return nil
	}

	return p.Hero.Heading
}

// HeroTagline returns the hero tagline, or nil when the page has no hero.
func (p *Page) HeroTagline() *string {
	if p.Hero == nil {
		return nil
	}

	return p.Hero.Tagline
}

// HeroImage returns the hero image, or nil when the page has no hero.
func (p *Page) HeroImage() *Image {
	if p.Hero == nil {
		return nil
	}

	return p.Hero.Image
}

// Contributor is an author or illustrator.
type Contributor struct {
	contributor.Name `bson:",inline"`

	// ID unique identifier for the contributor
	ID string `bson:"_id" json:"id"`
	// Slug url slug of the contributor
	Slug *string `bson:"slug,omitempty" json:"slug,omitempty"`
	// Image portrait
	Image *Image `bson:"image,omitempty" json:"image,omitempty"`
}
