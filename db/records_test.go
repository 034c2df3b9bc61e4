package db

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&Fanfic{}, &Chapter{}, &Paragraph{}, &Translation{}))
	return conn
}

func seedFanfic(t *testing.T, conn *gorm.DB) *Fanfic {
	t.Helper()
	// Rows are inserted out of number order on purpose, so primary-key order
	// and number order disagree.
	rec := &Fanfic{
		FicID:        "rec-test-1",
		OriginURL:    "https://archiveofourown.org/works/1",
		Source:       "archiveofourown.org",
		LanguageCode: "en",
		AuthorName:   "someone",
		Title:        "a title",
		Chapters: []Chapter{
			{
				Number:             2,
				LocalizationStatus: LocalizationPending,
				Paragraphs: []Paragraph{
					{Number: 1, LanguageCode: "en", Raw: "second chapter, first paragraph"},
				},
			},
			{
				Number:             1,
				LocalizationStatus: LocalizationPending,
				Paragraphs: []Paragraph{
					{Number: 2, LanguageCode: "en", Raw: "first chapter, second paragraph"},
					{
						Number:       1,
						LanguageCode: "en",
						Raw:          "first chapter, first paragraph",
						Translations: []Translation{
							{LanguageCode: "es", Raw: "capítulo uno, párrafo uno"},
						},
					},
				},
			},
		},
	}
	require.NoError(t, conn.Create(rec).Error)
	return rec
}

func TestPreloadTreeOrdersByNumber(t *testing.T) {
	conn := openTestDB(t)
	rec := seedFanfic(t, conn)

	var loaded Fanfic
	require.NoError(t, PreloadTree(conn).First(&loaded, rec.ID).Error)

	require.Len(t, loaded.Chapters, 2)
	assert.Equal(t, 1, loaded.Chapters[0].Number)
	assert.Equal(t, 2, loaded.Chapters[1].Number)

	require.Len(t, loaded.Chapters[0].Paragraphs, 2)
	assert.Equal(t, "first chapter, first paragraph", loaded.Chapters[0].Paragraphs[0].Raw)
	assert.Equal(t, "first chapter, second paragraph", loaded.Chapters[0].Paragraphs[1].Raw)

	// Document re-stamps indexes in load order, so the rebuilt document keeps
	// the stored numbering rather than insertion order.
	fic, err := loaded.Document()
	require.NoError(t, err)
	require.Len(t, fic.Chapters, 2)
	assert.Equal(t, "first chapter, first paragraph", fic.Chapters[0].Paragraphs[0].Original.Raw)
	assert.Equal(t, "second chapter, first paragraph", fic.Chapters[1].Paragraphs[0].Original.Raw)
}

func TestDeleteFanficTreeRemovesAllRows(t *testing.T) {
	conn := openTestDB(t)
	rec := seedFanfic(t, conn)

	require.NoError(t, conn.Transaction(func(tx *gorm.DB) error {
		return DeleteFanficTree(tx, rec.ID)
	}))

	var fanfics, chapters, paragraphs, translations int64
	require.NoError(t, conn.Unscoped().Model(&Fanfic{}).Count(&fanfics).Error)
	require.NoError(t, conn.Unscoped().Model(&Chapter{}).Count(&chapters).Error)
	require.NoError(t, conn.Unscoped().Model(&Paragraph{}).Count(&paragraphs).Error)
	require.NoError(t, conn.Unscoped().Model(&Translation{}).Count(&translations).Error)

	assert.Zero(t, fanfics)
	assert.Zero(t, chapters)
	assert.Zero(t, paragraphs)
	assert.Zero(t, translations)
}
