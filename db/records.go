package db

import (
	"time"

	"gorm.io/gorm"

	"github.com/toridoriv/fangirl-toolbox/language"
	"github.com/toridoriv/fangirl-toolbox/models"
)

// Localization lifecycle of a chapter record.
const (
	LocalizationPending   = "pending"
	LocalizationCompleted = "completed"
)

// Fanfic is the relational shape of models.Fanfiction. Rich document fields
// are flattened into columns; paragraph translations keep their own table.
type Fanfic struct {
	gorm.Model
	FicID            string `gorm:"uniqueIndex"`
	OriginID         string
	OriginURL        string
	Source           string
	Fandom           string
	LanguageCode     string
	AuthorName       string
	AuthorProfileURL *string
	Title            string
	TitleRich        string
	Summary          *string
	SummaryRich      string
	Relationship     string
	PublishedAt      time.Time
	Chapters         []Chapter `gorm:"constraint:OnDelete:CASCADE"`
}

type Chapter struct {
	gorm.Model
	FanficID           uint `gorm:"index:idx_fanfic_number,uniqueComposite"`
	Number             int  `gorm:"index:idx_fanfic_number,uniqueComposite"`
	Title              *string
	Summary            *string
	LocalizationStatus string
	Paragraphs         []Paragraph `gorm:"constraint:OnDelete:CASCADE"`
}

type Paragraph struct {
	gorm.Model
	ChapterID    uint   `gorm:"index:idx_chapter_number,uniqueComposite"`
	Number       int    `gorm:"index:idx_chapter_number,uniqueComposite"`
	Hash         string `gorm:"index"`
	LanguageCode string
	Raw          string
	Rich         string
	Translations []Translation `gorm:"constraint:OnDelete:CASCADE"`
}

type Translation struct {
	gorm.Model
	ParagraphID  uint `gorm:"index"`
	LanguageCode string
	Raw          string
	Rich         string
}

// PreloadTree loads a fanfic's chapters and paragraphs ordered by their
// stored number. Document re-stamps indexes in load order, so an unordered
// preload would silently renumber the document.
func PreloadTree(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Order("number ASC")
		}).
		Preload("Chapters.Paragraphs", func(db *gorm.DB) *gorm.DB {
			return db.Order("number ASC")
		}).
		Preload("Chapters.Paragraphs.Translations")
}

// DeleteFanficTree hard-deletes a fanfic and all of its dependent rows.
// gorm's soft delete never reaches the database-level cascade, so each level
// is removed explicitly, leaves first.
func DeleteFanficTree(tx *gorm.DB, fanficID uint) error {
	var chapterIDs []uint
	if err := tx.Model(&Chapter{}).Where("fanfic_id = ?", fanficID).Pluck("id", &chapterIDs).Error; err != nil {
		return err
	}
	if len(chapterIDs) > 0 {
		var paragraphIDs []uint
		if err := tx.Model(&Paragraph{}).Where("chapter_id IN ?", chapterIDs).Pluck("id", &paragraphIDs).Error; err != nil {
			return err
		}
		if len(paragraphIDs) > 0 {
			if err := tx.Unscoped().Where("paragraph_id IN ?", paragraphIDs).Delete(&Translation{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("id IN ?", paragraphIDs).Delete(&Paragraph{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Unscoped().Where("id IN ?", chapterIDs).Delete(&Chapter{}).Error; err != nil {
			return err
		}
	}
	return tx.Unscoped().Delete(&Fanfic{}, fanficID).Error
}

// RecordFromFanfiction flattens a document into its relational shape.
func RecordFromFanfiction(f *models.Fanfiction) *Fanfic {
	rec := &Fanfic{
		FicID:            f.ID,
		OriginID:         f.OriginID,
		OriginURL:        f.OriginURL,
		Source:           f.Source,
		Fandom:           f.Fandom,
		LanguageCode:     f.Language.Code,
		AuthorName:       f.Author.Name.Raw,
		AuthorProfileURL: f.Author.ProfileURL,
		Title:            f.Title.Original.Raw,
		TitleRich:        f.Title.Original.Rich,
		Relationship:     f.Relationship,
		PublishedAt:      f.PublishedAt,
	}
	if f.Summary != nil {
		summary := f.Summary.Original.Raw
		rec.Summary = &summary
		rec.SummaryRich = f.Summary.Original.Rich
	}
	for _, ch := range f.Chapters {
		chRec := Chapter{
			Number:             ch.Index,
			LocalizationStatus: LocalizationPending,
		}
		if ch.Title != nil {
			title := ch.Title.Original.Raw
			chRec.Title = &title
		}
		if ch.Summary != nil {
			summary := ch.Summary.Original.Raw
			chRec.Summary = &summary
		}
		for _, p := range ch.Paragraphs {
			pRec := Paragraph{
				Number:       p.Index,
				Hash:         p.Hash,
				LanguageCode: p.Original.Language.Code,
				Raw:          p.Original.Raw,
				Rich:         p.Original.Rich,
			}
			for _, tr := range p.Translations {
				pRec.Translations = append(pRec.Translations, Translation{
					LanguageCode: tr.Language.Code,
					Raw:          tr.Raw,
					Rich:         tr.Rich,
				})
			}
			chRec.Paragraphs = append(chRec.Paragraphs, pRec)
		}
		rec.Chapters = append(rec.Chapters, chRec)
	}
	return rec
}

// Document rebuilds the in-memory document from a record loaded with its
// chapters, paragraphs and translations preloaded.
func (r *Fanfic) Document() (*models.Fanfiction, error) {
	title, err := models.NewTranslatableText(r.Title, language.Resolve(r.LanguageCode))
	if err != nil {
		return nil, err
	}
	title.Original.Rich = r.TitleRich

	authorName, err := models.NewLocalizedText(r.AuthorName, language.Resolve(r.LanguageCode))
	if err != nil {
		return nil, err
	}

	var summary *models.TranslatableText
	if r.Summary != nil && *r.Summary != "" {
		summary, err = models.NewTranslatableText(*r.Summary, language.Resolve(r.LanguageCode))
		if err != nil {
			return nil, err
		}
		summary.Original.Rich = r.SummaryRich
	}

	fic, err := models.NewFanfiction(models.FanfictionInput{
		ID:               r.FicID,
		OriginID:         r.OriginID,
		OriginURL:        r.OriginURL,
		Source:           r.Source,
		Fandom:           r.Fandom,
		Language:         r.LanguageCode,
		AuthorName:       authorName,
		AuthorProfileURL: r.AuthorProfileURL,
		Title:            title,
		Summary:          summary,
		Relationship:     r.Relationship,
		PublishedAt:      r.PublishedAt,
	})
	if err != nil {
		return nil, err
	}

	for _, chRec := range r.Chapters {
		ch := &models.Chapter{}
		if chRec.Title != nil && *chRec.Title != "" {
			title, err := models.NewTranslatableText(*chRec.Title, language.Resolve(r.LanguageCode))
			if err != nil {
				return nil, err
			}
			ch.Title = title
		}
		if chRec.Summary != nil && *chRec.Summary != "" {
			summary, err := models.NewTranslatableText(*chRec.Summary, language.Resolve(r.LanguageCode))
			if err != nil {
				return nil, err
			}
			ch.Summary = summary
		}
		for _, pRec := range chRec.Paragraphs {
			p, err := models.NewParagraph(pRec.Raw, language.Resolve(pRec.LanguageCode))
			if err != nil {
				return nil, err
			}
			p.Original.Rich = pRec.Rich
			for _, trRec := range pRec.Translations {
				tr, err := models.NewLocalizedText(trRec.Raw, language.Resolve(trRec.LanguageCode))
				if err != nil {
					return nil, err
				}
				tr.Rich = trRec.Rich
				p.AddTranslation(tr)
			}
			ch.AddParagraph(p)
		}
		fic.AddChapter(ch)
	}
	return fic, nil
}
