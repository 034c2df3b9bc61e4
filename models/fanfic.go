package models

import (
	"context"
	"encoding/hex"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/toridoriv/fangirl-toolbox/language"
)

// Paragraph is one paragraph of a chapter. Index is assigned by the owning
// chapter; Hash fingerprints the original raw text so re-scrapes can skip
// unchanged content.
type Paragraph struct {
	TranslatableText
	Index int    `json:"index"`
	Hash  string `json:"hash"`
}

// NewParagraph builds a paragraph with its content hash computed.
func NewParagraph(raw string, lang language.Language) (*Paragraph, error) {
	text, err := NewTranslatableText(raw, lang)
	if err != nil {
		return nil, err
	}
	p := &Paragraph{TranslatableText: *text}
	p.Hash = ContentHash(p.Original.Raw)
	return p, nil
}

// DetectParagraph is NewParagraph with language detection.
func DetectParagraph(raw string) (*Paragraph, error) {
	text, err := DetectTranslatableText(raw)
	if err != nil {
		return nil, err
	}
	p := &Paragraph{TranslatableText: *text}
	p.Hash = ContentHash(p.Original.Raw)
	return p, nil
}

// ContentHash is the deterministic fingerprint of paragraph content: hex
// BLAKE3 of the raw text. Language and position do not participate, so the
// same text always hashes the same.
func ContentHash(raw string) string {
	sum := blake3.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Chapter groups paragraphs under an optional title and summary. Index is
// assigned by the owning fanfiction.
type Chapter struct {
	Title      *TranslatableText `json:"title"`
	Summary    *TranslatableText `json:"summary"`
	Index      int               `json:"index"`
	Paragraphs []*Paragraph      `json:"paragraphs"`
}

// AddParagraph appends p and stamps it with its position, overwriting any
// index it already carried. The instance is inserted without copying; the
// chapter owns it from here on.
func (ch *Chapter) AddParagraph(p *Paragraph) *Paragraph {
	p.Index = len(ch.Paragraphs)
	ch.Paragraphs = append(ch.Paragraphs, p)
	return p
}

// Author identifies who wrote a fanfiction on its origin site.
type Author struct {
	Name       *LocalizedText `json:"name"`
	ProfileURL *string        `json:"profile_url"`
}

// Fanfiction is the root of the document tree. It exclusively owns its
// chapters, which exclusively own their paragraphs.
type Fanfiction struct {
	ID                     string            `json:"id"`
	OriginID               string            `json:"origin_id"`
	OriginURL              string            `json:"origin_url"`
	Source                 string            `json:"source"`
	Fandom                 string            `json:"fandom"`
	Language               language.Language `json:"language"`
	Author                 Author            `json:"author"`
	Title                  *TranslatableText `json:"title"`
	Summary                *TranslatableText `json:"summary"`
	RelationshipCharacters []string          `json:"relationship_characters"`
	Relationship           string            `json:"relationship"`
	Chapters               []*Chapter        `json:"chapters"`
	CreatedAt              time.Time         `json:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at"`
	PublishedAt            time.Time         `json:"published_at"`
}

// FanfictionInput carries the raw fields accepted at construction time, the
// de facto wire format for documents assembled from scraped pages.
type FanfictionInput struct {
	ID                     string
	OriginID               string
	OriginURL              string
	Source                 string
	Fandom                 string
	Language               string
	AuthorName             *LocalizedText
	AuthorProfileURL       *string
	Title                  *TranslatableText
	Summary                *TranslatableText
	RelationshipCharacters []string
	Relationship           string
	PublishedAt            time.Time
}

// NewFanfiction validates in and then applies the derivation steps in a fixed
// order: default id, source from origin URL, relationship from the character
// list, default timestamps. The order matters; later steps may rely on
// earlier ones having run.
func NewFanfiction(in FanfictionInput) (*Fanfiction, error) {
	if in.AuthorName == nil {
		return nil, &ValidationError{Entity: "fanfiction", Field: "author.name", Reason: "is required"}
	}
	if in.Title == nil {
		return nil, &ValidationError{Entity: "fanfiction", Field: "title", Reason: "is required"}
	}
	if in.OriginURL == "" {
		return nil, &ValidationError{Entity: "fanfiction", Field: "origin_url", Reason: "is required"}
	}

	origin, err := url.Parse(in.OriginURL)
	if err != nil || origin.Hostname() == "" {
		return nil, &ValidationError{Entity: "fanfiction", Field: "origin_url", Reason: "is not a valid URL"}
	}

	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}

	source := in.Source
	if source == "" {
		source = origin.Hostname()
	}

	relationship := in.Relationship
	if len(in.RelationshipCharacters) > 0 {
		relationship = strings.Join(in.RelationshipCharacters, "/")
	}

	now := time.Now().UTC()
	published := in.PublishedAt
	if published.IsZero() {
		published = now
	}

	return &Fanfiction{
		ID:                     id,
		OriginID:               in.OriginID,
		OriginURL:              in.OriginURL,
		Source:                 source,
		Fandom:                 in.Fandom,
		Language:               language.Resolve(in.Language),
		Author:                 Author{Name: in.AuthorName, ProfileURL: in.AuthorProfileURL},
		Title:                  in.Title,
		Summary:                in.Summary,
		RelationshipCharacters: in.RelationshipCharacters,
		Relationship:           relationship,
		CreatedAt:              now,
		UpdatedAt:              now,
		PublishedAt:            published,
	}, nil
}

// AddChapter appends ch and stamps it with its position, overwriting any
// index it already carried. The instance is inserted without copying; callers
// must not attach it to another fanfiction afterwards.
func (f *Fanfiction) AddChapter(ch *Chapter) *Chapter {
	ch.Index = len(f.Chapters)
	f.Chapters = append(f.Chapters, ch)
	f.TriggerUpdate()
	return ch
}

// SetRichTexts annotates the whole document depth-first: author name, summary,
// title, then every chapter's title, summary and paragraphs in order. Each
// step completes before the next starts so a rate-limited annotation backend
// never sees burst load, and the first failure aborts the rest of the
// cascade.
func (f *Fanfiction) SetRichTexts(ctx context.Context) error {
	if err := f.Author.Name.SetRichText(ctx); err != nil {
		return err
	}
	if f.Summary != nil {
		if err := f.Summary.SetRichText(ctx); err != nil {
			return err
		}
	}
	if err := f.Title.SetRichText(ctx); err != nil {
		return err
	}
	for _, ch := range f.Chapters {
		if ch.Title != nil {
			if err := ch.Title.SetRichText(ctx); err != nil {
				return err
			}
		}
		if ch.Summary != nil {
			if err := ch.Summary.SetRichText(ctx); err != nil {
				return err
			}
		}
		for _, p := range ch.Paragraphs {
			if err := p.SetRichText(ctx); err != nil {
				return err
			}
		}
	}
	f.TriggerUpdate()
	return nil
}

// TriggerUpdate bumps UpdatedAt. Structural mutations call it automatically.
func (f *Fanfiction) TriggerUpdate() {
	f.UpdatedAt = time.Now().UTC()
}
