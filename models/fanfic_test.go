package models

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toridoriv/fangirl-toolbox/language"
)

func validInput(t *testing.T) FanfictionInput {
	t.Helper()
	name, err := NewLocalizedText("Some Author", language.Resolve("en"))
	require.NoError(t, err)
	title, err := NewTranslatableText("A Story", language.Resolve("en"))
	require.NoError(t, err)
	return FanfictionInput{
		OriginURL:  "https://example.com/story/1",
		Language:   "en",
		AuthorName: name,
		Title:      title,
	}
}

func TestNewFanfictionDefaults(t *testing.T) {
	fic, err := NewFanfiction(validInput(t))
	require.NoError(t, err)

	assert.NotEmpty(t, fic.ID)
	assert.Equal(t, "example.com", fic.Source)
	assert.False(t, fic.CreatedAt.IsZero())
	assert.False(t, fic.UpdatedAt.IsZero())
	assert.False(t, fic.PublishedAt.IsZero())
}

func TestNewFanfictionKeepsExplicitFields(t *testing.T) {
	in := validInput(t)
	in.ID = "fixed-id"
	in.Source = "mirror.example.org"
	in.PublishedAt = time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)

	fic, err := NewFanfiction(in)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", fic.ID)
	assert.Equal(t, "mirror.example.org", fic.Source)
	assert.Equal(t, in.PublishedAt, fic.PublishedAt)
}

func TestNewFanfictionRelationship(t *testing.T) {
	in := validInput(t)
	in.RelationshipCharacters = []string{"A", "B"}
	in.Relationship = "ignored"

	fic, err := NewFanfiction(in)
	require.NoError(t, err)
	assert.Equal(t, "A/B", fic.Relationship)

	in = validInput(t)
	in.Relationship = "X/Y"
	fic, err = NewFanfiction(in)
	require.NoError(t, err)
	assert.Equal(t, "X/Y", fic.Relationship)
}

func TestNewFanfictionValidation(t *testing.T) {
	in := validInput(t)
	in.AuthorName = nil
	_, err := NewFanfiction(in)
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "author.name", vErr.Field)

	in = validInput(t)
	in.Title = nil
	_, err = NewFanfiction(in)
	require.True(t, errors.As(err, &vErr))

	in = validInput(t)
	in.OriginURL = "not a url"
	_, err = NewFanfiction(in)
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "origin_url", vErr.Field)
}

func TestAddParagraphAssignsContiguousIndexes(t *testing.T) {
	ch := &Chapter{}
	for i := 0; i < 5; i++ {
		p, err := NewParagraph(fmt.Sprintf("paragraph %d", i), language.Resolve("en"))
		require.NoError(t, err)
		p.Index = 99 // stale index from a previous parent must be overwritten
		ch.AddParagraph(p)
	}

	require.Len(t, ch.Paragraphs, 5)
	for i, p := range ch.Paragraphs {
		assert.Equal(t, i, p.Index)
	}
}

func TestAddChapterAssignsContiguousIndexes(t *testing.T) {
	fic, err := NewFanfiction(validInput(t))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		fic.AddChapter(&Chapter{Index: 42})
	}
	for i, ch := range fic.Chapters {
		assert.Equal(t, i, ch.Index)
	}
}

func TestContentHashIsContentAddressed(t *testing.T) {
	a, err := NewParagraph("the same text", language.Resolve("en"))
	require.NoError(t, err)
	b, err := NewParagraph("the same text", language.Resolve("ru"))
	require.NoError(t, err)
	c, err := NewParagraph("different text", language.Resolve("en"))
	require.NoError(t, err)

	chapterOne := &Chapter{}
	chapterTwo := &Chapter{}
	chapterOne.AddParagraph(a)
	chapterTwo.AddParagraph(b)

	assert.Equal(t, a.Hash, b.Hash)
	assert.NotEqual(t, a.Hash, c.Hash)
}

func TestTriggerUpdateOnAddChapter(t *testing.T) {
	fic, err := NewFanfiction(validInput(t))
	require.NoError(t, err)

	before := fic.UpdatedAt
	time.Sleep(time.Millisecond)
	fic.AddChapter(&Chapter{})
	assert.True(t, fic.UpdatedAt.After(before))
}

func TestSetRichTextsCascade(t *testing.T) {
	in := validInput(t)
	summary, err := NewTranslatableText("краткое содержание", language.Resolve("ru"))
	require.NoError(t, err)
	in.Summary = summary

	fic, err := NewFanfiction(in)
	require.NoError(t, err)

	ch := &Chapter{}
	p, err := NewParagraph("первый абзац", language.Resolve("ru"))
	require.NoError(t, err)
	ch.AddParagraph(p)
	fic.AddChapter(ch)

	before := fic.UpdatedAt
	time.Sleep(time.Millisecond)
	require.NoError(t, fic.SetRichTexts(context.Background()))

	assert.Empty(t, fic.Title.Original.Rich, "English title is pass-through")
	assert.NotEmpty(t, fic.Summary.Original.Rich)
	assert.NotEmpty(t, p.Original.Rich)
	assert.True(t, fic.UpdatedAt.After(before))
}

func TestSetRichTextsHonorsCancellation(t *testing.T) {
	in := validInput(t)
	fic, err := NewFanfiction(in)
	require.NoError(t, err)

	ch := &Chapter{}
	p, err := NewParagraph("ещё один абзац", language.Resolve("ru"))
	require.NoError(t, err)
	ch.AddParagraph(p)
	fic.AddChapter(ch)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, fic.SetRichTexts(ctx))
	assert.Empty(t, p.Original.Rich, "a cancelled annotation leaves rich unset")
}
