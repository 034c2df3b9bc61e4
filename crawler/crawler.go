package crawler

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"golang.org/x/exp/rand"

	"github.com/toridoriv/fangirl-toolbox/language"
	"github.com/toridoriv/fangirl-toolbox/lib"
	"github.com/toridoriv/fangirl-toolbox/models"
)

type Crawler struct{}

func NewCrawler() *Crawler {
	return &Crawler{}
}

func (c *Crawler) newCollector() *colly.Collector {
	collector := colly.NewCollector(
		colly.UserAgent(RandomUserAgent()),
	)

	collector.SetRequestTimeout(30 * time.Second)
	collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 20,
		RandomDelay: 1 * time.Second,
	})

	collector.Limit(&colly.LimitRule{
		DomainGlob:  "*archiveofourown.org*",
		RandomDelay: 3 * time.Second,
	})

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}
	httpClient := &http.Client{
		Transport: transport,
	}

	collector.WithTransport(httpClient.Transport)

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
		r.Headers.Set("Referer", "https://www.google.com/")
	})

	return collector
}

func RandomUserAgent() string {
	userAgents := []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/13.0.2 Safari/605.1.15",
		"Mozilla/5.0 (Linux; Android 10; K) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Mobile Safari/537.36,gzip(gfe)",
		"Mozilla/5.0 (Linux; Android 13; SM-S901B) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/112.0.0.0 Mobile Safari/537.36",
		"Mozilla/5.0 (Linux; Android 13; Pixel 6) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/112.0.0.0 Mobile Safari/537.36",
		"Mozilla/5.0 (Linux; Android 12; Redmi Note 9 Pro) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/112.0.0.0 Mobile Safari/537.36",
	}
	randIndex := rand.Intn(len(userAgents))
	return userAgents[randIndex]
}

var ao3WorkID = regexp.MustCompile(`/works/(\d+)`)

// AO3 renders the language label in the language itself ("Русский", "日本語"),
// which the registry only knows by English name.
var nativeLanguageLabels = map[string]string{
	"Русский":              "ru",
	"日本語":                  "ja",
	"中文":                   "zh",
	"中文-普通话 國語":            "zh",
	"Español":              "es",
	"Français":             "fr",
	"Italiano":             "it",
	"Português brasileiro": "pt",
	"Português europeu":    "pt",
	"한국어":                  "ko",
}

// resolveSiteLanguage turns a scraped language label into a registry entry.
// Labels the resolver cannot place are looked up as native names, then
// detection over the page's own text decides, then Undetermined.
func resolveSiteLanguage(label string, samples ...string) language.Language {
	if lang := language.Resolve(label); lang.Code != "" {
		return lang
	}
	if code, ok := nativeLanguageLabels[strings.TrimSpace(label)]; ok {
		return language.Resolve(code)
	}
	for _, sample := range samples {
		if strings.TrimSpace(sample) == "" {
			continue
		}
		if code, ok := lib.DetectLanguage(sample); ok {
			return language.Resolve(code)
		}
	}
	return language.Undetermined
}

// CrawlFanfiction scrapes a work page into a document. Each supported site
// gets its own adapter; the document constructors do the validation.
func (c *Crawler) CrawlFanfiction(rawURL string) (*models.Fanfiction, error) {
	if strings.Contains(rawURL, "archiveofourown.org") {
		return c.crawlAO3(rawURL)
	}
	return nil, fmt.Errorf("no crawler adapter for %s", rawURL)
}

// scrapedChapter holds raw chapter text until the work's language is known;
// the document is assembled only after the whole page has been read.
type scrapedChapter struct {
	title      string
	paragraphs []string
}

func (c *Crawler) crawlAO3(rawURL string) (*models.Fanfiction, error) {
	collector := c.newCollector()

	var (
		title       string
		authorName  string
		authorURL   string
		summary     string
		langLabel   string
		fandom      string
		published   string
		pairing     string
		scraped     []scrapedChapter
		fallbackRaw []string
	)

	collector.OnHTML("h2.title.heading", func(e *colly.HTMLElement) {
		title = strings.TrimSpace(e.Text)
	})

	collector.OnHTML("h3.byline a[rel='author']", func(e *colly.HTMLElement) {
		if authorName != "" {
			return
		}
		authorName = strings.TrimSpace(e.Text)
		authorURL = e.Request.AbsoluteURL(e.Attr("href"))
	})

	collector.OnHTML("div.summary blockquote.userstuff", func(e *colly.HTMLElement) {
		if summary == "" {
			summary = strings.TrimSpace(e.Text)
		}
	})

	collector.OnHTML("dd.fandom.tags a.tag", func(e *colly.HTMLElement) {
		if fandom == "" {
			fandom = strings.TrimSpace(e.Text)
		}
	})

	collector.OnHTML("dd.relationship.tags a.tag", func(e *colly.HTMLElement) {
		if pairing == "" {
			pairing = strings.TrimSpace(e.Text)
		}
	})

	collector.OnHTML("dd.language", func(e *colly.HTMLElement) {
		langLabel = strings.TrimSpace(e.Text)
	})

	collector.OnHTML("dd.published", func(e *colly.HTMLElement) {
		published = strings.TrimSpace(e.Text)
	})

	collector.OnHTML("#chapters div.chapter", func(e *colly.HTMLElement) {
		chapter := scrapedChapter{
			title: strings.TrimSpace(e.DOM.Find("h3.title").First().Text()),
		}

		e.DOM.Find("div.userstuff p").Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if text != "" {
				chapter.paragraphs = append(chapter.paragraphs, text)
			}
		})

		scraped = append(scraped, chapter)
	})

	// Single-chapter works render without div.chapter wrappers.
	collector.OnHTML("#chapters > div.userstuff p", func(e *colly.HTMLElement) {
		text := strings.TrimSpace(e.Text)
		if text != "" {
			fallbackRaw = append(fallbackRaw, text)
		}
	})

	workURL := rawURL
	if !strings.Contains(workURL, "view_full_work") {
		sep := "?"
		if strings.Contains(workURL, "?") {
			sep = "&"
		}
		workURL += sep + "view_adult=true&view_full_work=true"
	}

	if err := collector.Visit(workURL); err != nil {
		return nil, fmt.Errorf("visiting work page: %w", err)
	}

	if len(scraped) == 0 && len(fallbackRaw) > 0 {
		scraped = append(scraped, scrapedChapter{paragraphs: fallbackRaw})
	}

	var firstParagraph string
	if len(scraped) > 0 && len(scraped[0].paragraphs) > 0 {
		firstParagraph = scraped[0].paragraphs[0]
	}
	lang := resolveSiteLanguage(langLabel, firstParagraph, summary, title)

	titleText, err := models.NewTranslatableText(title, lang)
	if err != nil {
		return nil, fmt.Errorf("work page had no title: %w", err)
	}
	authorText, err := models.NewLocalizedText(authorName, lang)
	if err != nil {
		return nil, fmt.Errorf("work page had no author: %w", err)
	}

	var summaryText *models.TranslatableText
	if summary != "" {
		summaryText, err = models.NewTranslatableText(summary, lang)
		if err != nil {
			return nil, err
		}
	}

	var characters []string
	if pairing != "" {
		for _, name := range strings.Split(pairing, "/") {
			characters = append(characters, strings.TrimSpace(name))
		}
	}

	var publishedAt time.Time
	if published != "" {
		publishedAt, _ = time.Parse("2006-01-02", published)
	}

	var originID string
	if m := ao3WorkID.FindStringSubmatch(rawURL); m != nil {
		originID = m[1]
	}

	var profileURL *string
	if authorURL != "" {
		profileURL = &authorURL
	}

	fic, err := models.NewFanfiction(models.FanfictionInput{
		OriginID:               originID,
		OriginURL:              rawURL,
		Fandom:                 fandom,
		Language:               lang.Code,
		AuthorName:             authorText,
		AuthorProfileURL:       profileURL,
		Title:                  titleText,
		Summary:                summaryText,
		RelationshipCharacters: characters,
		PublishedAt:            publishedAt,
	})
	if err != nil {
		return nil, err
	}

	for _, sc := range scraped {
		chapter := &models.Chapter{}
		if sc.title != "" {
			if t, err := models.NewTranslatableText(sc.title, lang); err == nil {
				chapter.Title = t
			}
		}
		for _, text := range sc.paragraphs {
			p, err := models.NewParagraph(text, lang)
			if err != nil {
				continue
			}
			chapter.AddParagraph(p)
		}
		fic.AddChapter(chapter)
	}

	return fic, nil
}

// CrawlChapter scrapes a single chapter page, for incremental re-scrapes of
// works that grew since the last crawl. langLabel is the work's language as
// the caller knows it (code, registry name, or the site's native label).
func (c *Crawler) CrawlChapter(chapterURL string, langLabel string) (*models.Chapter, error) {
	if !strings.Contains(chapterURL, "archiveofourown.org") {
		return nil, fmt.Errorf("no crawler adapter for %s", chapterURL)
	}

	collector := c.newCollector()
	var scraped scrapedChapter

	collector.OnHTML("h3.title", func(e *colly.HTMLElement) {
		if scraped.title == "" {
			scraped.title = strings.TrimSpace(e.Text)
		}
	})

	collector.OnHTML("div.userstuff p", func(e *colly.HTMLElement) {
		text := strings.TrimSpace(e.Text)
		if text != "" {
			scraped.paragraphs = append(scraped.paragraphs, text)
		}
	})

	if err := collector.Visit(chapterURL); err != nil {
		return nil, fmt.Errorf("visiting chapter page: %w", err)
	}

	if len(scraped.paragraphs) == 0 {
		return nil, fmt.Errorf("no paragraphs found at %s", chapterURL)
	}

	lang := resolveSiteLanguage(langLabel, scraped.paragraphs[0])

	chapter := &models.Chapter{}
	if scraped.title != "" {
		if t, err := models.NewTranslatableText(scraped.title, lang); err == nil {
			chapter.Title = t
		}
	}
	for _, text := range scraped.paragraphs {
		p, err := models.NewParagraph(text, lang)
		if err != nil {
			continue
		}
		chapter.AddParagraph(p)
	}

	return chapter, nil
}
