package gallery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"galleryscraper/internal/core/extract"
	"galleryscraper/internal/logger"

	"github.com/google/uuid"
)

// Extractor yields the matching carousel images for a listing page.
type Extractor interface {
	Extract(targetURL, pattern string) ([]extract.Candidate, error)
}

// Fetcher retrieves the bytes behind a resolved image URL.
type Fetcher interface {
	Fetch(url string) ([]byte, error)
}

type Service struct {
	log       *logger.Logger
	extractor Extractor
	fetcher   Fetcher
	imageRoot string
}

func New(extractor Extractor, fetcher Fetcher, imageRoot string) *Service {
	return &Service{
		log:       logger.New("Gallery"),
		extractor: extractor,
		fetcher:   fetcher,
		imageRoot: imageRoot,
	}
}

// Run processes the tasks strictly in input order and returns the output
// items. Any single task's failure degrades to a warning; cancellation stops
// between tasks so the completed portion can still be written out.
func (s *Service) Run(ctx context.Context, tasks []Task) []Item {
	runID := uuid.NewString()
	s.log.Info().Str("run_id", runID).Int("tasks", len(tasks)).Msg("gallery run start")

	items := make([]Item, 0, len(tasks))
	for i, task := range tasks {
		if ctx.Err() != nil {
			s.log.LogWarnf("run interrupted, skipping %d remaining task(s)", len(tasks)-i)
			break
		}
		if item, ok := s.processTask(task); ok {
			items = append(items, item)
		}
	}

	s.log.Info().Str("run_id", runID).Int("items", len(items)).Msg("gallery run complete")
	return items
}

func (s *Service) processTask(task Task) (Item, bool) {
	if task.TargetURL == "" {
		s.log.LogWarn("skipping task missing target_url")
		return Item{}, false
	}
	if task.Pattern == "" {
		s.log.LogWarnf("skipping task missing pattern: %s", task.TargetURL)
		return Item{}, false
	}
	id := itemID(task.TargetURL)
	if id == "" {
		s.log.LogWarnf("could not extract item id from URL: %s", task.TargetURL)
		return Item{}, false
	}

	s.log.Info().Str("url", task.TargetURL).Str("item_id", id).Str("pattern", task.Pattern).Msg("processing listing")

	candidates, err := s.extractor.Extract(task.TargetURL, task.Pattern)
	if err != nil {
		s.log.LogWarnf("extraction failed for %s: %v", task.TargetURL, err)
		return Item{}, false
	}
	if len(candidates) == 0 {
		s.log.LogWarnf("no matching images found for %s", task.TargetURL)
		return Item{}, false
	}
	s.log.LogInfof("found %d matching image(s) for item %s", len(candidates), id)

	dir := filepath.Join(s.imageRoot, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.log.LogErrorf("create image directory %s: %v", dir, err)
		return Item{}, false
	}

	downloaded := []string{}
	skipped := []string{}
	for idx, cand := range candidates {
		name := fmt.Sprintf("%s-%03d.jpg", id, idx+1)
		path := filepath.Join(dir, name)

		if _, err := os.Stat(path); err == nil {
			s.log.LogDebugf("skipping existing image %s (alt: %s)", name, truncate(cand.Alt, 50))
			skipped = append(skipped, name)
			continue
		}

		body, err := s.fetcher.Fetch(cand.URL)
		if err != nil {
			s.log.LogWarnf("download failed for %s: %v", cand.URL, err)
			continue
		}
		if err := os.WriteFile(path, body, 0o644); err != nil {
			s.log.LogWarnf("write %s: %v", path, err)
			continue
		}
		s.log.LogDebugf("saved %s (alt: %s)", path, truncate(cand.Alt, 50))
		downloaded = append(downloaded, name)
	}

	if len(downloaded) == 0 && len(skipped) == 0 {
		return Item{}, false
	}
	return Item{Task: task, Downloaded: downloaded, Skipped: skipped, TotalMatched: len(candidates)}, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
