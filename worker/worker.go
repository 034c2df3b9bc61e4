package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/semaphore"
	"gorm.io/gorm"

	"github.com/toridoriv/fangirl-toolbox/crawler"
	"github.com/toridoriv/fangirl-toolbox/db"
	"github.com/toridoriv/fangirl-toolbox/language"
	"github.com/toridoriv/fangirl-toolbox/lib"
	"github.com/toridoriv/fangirl-toolbox/models"
)

const (
	fanficQueueKey   = "fanfic_queue"
	localizeQueueKey = "localize_queue"
	retryQueueKey    = "retry_queue"
	maxRetries       = 5
	maxConcurrent    = 4
)

type Worker struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Crawler   *crawler.Crawler
	semaphore *semaphore.Weighted
}

type Job interface {
	GetRetries() int
	IncrementRetries()
}

type FanficJob struct {
	URL     string `json:"url"`
	Retries int    `json:"retries"`
}

func (fj *FanficJob) GetRetries() int   { return fj.Retries }
func (fj *FanficJob) IncrementRetries() { fj.Retries++ }

type LocalizeJob struct {
	FanficID uint   `json:"fanfic_id"`
	Target   string `json:"target"`
	Retries  int    `json:"retries"`
}

func (lj *LocalizeJob) GetRetries() int   { return lj.Retries }
func (lj *LocalizeJob) IncrementRetries() { lj.Retries++ }

func NewWorker(crawler *crawler.Crawler, db *gorm.DB, redis *redis.Client) *Worker {
	if crawler == nil {
		log.Fatal("Crawler cannot be nil")
	}
	return &Worker{
		DB:        db,
		Redis:     redis,
		Crawler:   crawler,
		semaphore: semaphore.NewWeighted(maxConcurrent),
	}
}

func (w *Worker) Start(ctx context.Context) {
	if w.Redis == nil {
		log.Fatal("Redis client is nil. Worker not properly initialized.")
	}

	go w.processQueue(ctx, fanficQueueKey, w.processFanfic)
	go w.processLocalizeQueue(ctx)
	go w.processRetryQueue(ctx)
}

func (w *Worker) processQueue(ctx context.Context, queueKey string, processor func(context.Context, string) error) {
	for {
		select {
		case <-ctx.Done():
			log.Printf("Stopping %s queue processing", queueKey)
			return
		default:
			result, err := w.Redis.BLPop(ctx, 5*time.Second, queueKey).Result()
			if err == redis.Nil {
				continue
			} else if err != nil {
				log.Printf("Error popping from %s queue: %v", queueKey, err)
				continue
			}

			if err := processor(ctx, result[1]); err != nil {
				log.Printf("Error processing %s: %v", queueKey, err)
			}
		}
	}
}

func (w *Worker) processFanfic(ctx context.Context, jobData string) error {
	var job FanficJob
	if err := json.Unmarshal([]byte(jobData), &job); err != nil {
		return fmt.Errorf("unmarshalling fanfic job: %w", err)
	}

	log.Printf("Crawling fanfiction: %s", job.URL)
	fic, err := w.Crawler.CrawlFanfiction(job.URL)
	if err != nil {
		log.Printf("Error crawling fanfiction: %v", err)
		return w.enqueueForRetry(&job)
	}

	log.Printf("Crawled %q by %s (%d chapters)", fic.Title.Original.Raw, fic.Author.Name.Raw, len(fic.Chapters))

	record := db.RecordFromFanfiction(fic)

	// Re-scrapes of the same work replace the whole stored tree.
	err = w.DB.Transaction(func(tx *gorm.DB) error {
		var existing db.Fanfic
		result := tx.Where("origin_url = ?", fic.OriginURL).First(&existing)
		if result.Error == nil {
			if err := db.DeleteFanficTree(tx, existing.ID); err != nil {
				return err
			}
		} else if result.Error != gorm.ErrRecordNotFound {
			return result.Error
		}
		return tx.Create(record).Error
	})
	if err != nil {
		log.Printf("Error saving fanfiction: %v", err)
		return w.enqueueForRetry(&job)
	}

	if err := w.EnqueueLocalization(record.ID, "en"); err != nil {
		log.Printf("Error enqueueing localization: %v", err)
	}

	return nil
}

func (w *Worker) processLocalizeQueue(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Println("Stopping localize queue processing")
			return
		default:
			result, err := w.Redis.BLPop(ctx, 5*time.Second, localizeQueueKey).Result()
			if err == redis.Nil {
				continue
			} else if err != nil {
				log.Printf("Error popping from localize queue: %v", err)
				continue
			}

			var job LocalizeJob
			if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
				log.Printf("Error unmarshalling localize job: %v", err)
				continue
			}

			if err := w.semaphore.Acquire(ctx, 1); err != nil {
				log.Printf("Failed to acquire semaphore: %v", err)
				continue
			}

			go func(job LocalizeJob) {
				defer w.semaphore.Release(1)
				if err := w.localizeFanfic(ctx, job); err != nil {
					log.Printf("Error localizing fanfic %d: %v", job.FanficID, err)
					w.enqueueForRetry(&job)
				}
			}(job)
		}
	}
}

// localizeFanfic annotates and translates one document. Work within a
// document stays strictly sequential so the translation endpoint never sees
// burst load from a single fanfic; concurrency happens only across documents,
// bounded by the semaphore.
func (w *Worker) localizeFanfic(ctx context.Context, job LocalizeJob) error {
	var record db.Fanfic
	if err := db.PreloadTree(w.DB).First(&record, job.FanficID).Error; err != nil {
		return fmt.Errorf("loading fanfic %d: %w", job.FanficID, err)
	}

	fic, err := record.Document()
	if err != nil {
		return fmt.Errorf("rebuilding document: %w", err)
	}

	if err := fic.SetRichTexts(ctx); err != nil {
		return fmt.Errorf("annotating document: %w", err)
	}

	target := job.Target
	if target == "" {
		target = "en"
	}

	// Works whose language never resolved carry an empty code; let the
	// translation endpoint detect the source instead of sending "".
	from := fic.Language.Code
	if from == "" {
		from = "auto"
	}

	if fic.Language.Code != target {
		for _, ch := range fic.Chapters {
			for _, p := range ch.Paragraphs {
				if p.TranslationByCode(target) != nil {
					continue
				}
				translated, err := lib.Translate(p.Original.Raw, from, target)
				if err != nil {
					return fmt.Errorf("translating paragraph %d: %w", p.Index, err)
				}
				if _, err := p.AddTranslationString(translated, language.Resolve(target)); err != nil {
					return err
				}
			}
		}
	}

	return w.persistLocalization(fic, &record)
}

func (w *Worker) persistLocalization(fic *models.Fanfiction, record *db.Fanfic) error {
	return w.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"title_rich":   fic.Title.Original.Rich,
			"summary_rich": "",
		}
		if fic.Summary != nil {
			updates["summary_rich"] = fic.Summary.Original.Rich
		}
		if err := tx.Model(record).Updates(updates).Error; err != nil {
			return err
		}

		for i, ch := range fic.Chapters {
			if i >= len(record.Chapters) {
				break
			}
			chRec := record.Chapters[i]
			for j, p := range ch.Paragraphs {
				if j >= len(chRec.Paragraphs) {
					break
				}
				pRec := chRec.Paragraphs[j]
				if err := tx.Model(&pRec).Update("rich", p.Original.Rich).Error; err != nil {
					return err
				}
				for _, tr := range p.Translations[len(pRec.Translations):] {
					if err := tx.Create(&db.Translation{
						ParagraphID:  pRec.ID,
						LanguageCode: tr.Language.Code,
						Raw:          tr.Raw,
						Rich:         tr.Rich,
					}).Error; err != nil {
						return err
					}
				}
			}
			if err := tx.Model(&chRec).Update("localization_status", db.LocalizationCompleted).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (w *Worker) processRetryQueue(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Println("Stopping retry queue processing")
			return
		default:
			result, err := w.Redis.BLPop(ctx, 30*time.Second, retryQueueKey).Result()
			if err == redis.Nil {
				continue
			} else if err != nil {
				log.Printf("Error popping from retry queue: %v", err)
				continue
			}

			var rawJob map[string]interface{}
			if err := json.Unmarshal([]byte(result[1]), &rawJob); err != nil {
				log.Printf("Error unmarshalling retry job: %v", err)
				continue
			}

			// Job type is sniffed from its fields.
			if _, ok := rawJob["fanfic_id"]; ok {
				var job LocalizeJob
				if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
					log.Printf("Error unmarshalling localize job: %v", err)
					continue
				}
				if err := w.localizeFanfic(ctx, job); err != nil {
					log.Printf("Error processing retry for fanfic %d: %v", job.FanficID, err)
					w.enqueueForRetry(&job)
				}
			} else {
				if err := w.processFanfic(ctx, result[1]); err != nil {
					log.Printf("Error processing fanfic retry: %v", err)
				}
			}
		}
	}
}

func (w *Worker) enqueueForRetry(job Job) error {
	job.IncrementRetries()
	if job.GetRetries() >= maxRetries {
		log.Printf("Dropping job after %d attempts", job.GetRetries())
		return nil
	}
	log.Printf("Retrying job (attempt %d)", job.GetRetries())

	jobData, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshalling retry job: %w", err)
	}

	return w.enqueue(retryQueueKey, string(jobData))
}

func (w *Worker) EnqueueFanfiction(url string) error {
	job, err := json.Marshal(FanficJob{URL: url, Retries: 0})
	if err != nil {
		return fmt.Errorf("marshalling fanfic job: %w", err)
	}
	return w.enqueue(fanficQueueKey, string(job))
}

func (w *Worker) EnqueueLocalization(fanficID uint, target string) error {
	job, err := json.Marshal(LocalizeJob{FanficID: fanficID, Target: target})
	if err != nil {
		return fmt.Errorf("marshalling localize job: %w", err)
	}
	return w.enqueue(localizeQueueKey, string(job))
}

func (w *Worker) enqueue(queueKey string, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := w.Redis.RPush(ctx, queueKey, value).Err(); err != nil {
		return fmt.Errorf("enqueueing to %s: %w", queueKey, err)
	}
	return nil
}
