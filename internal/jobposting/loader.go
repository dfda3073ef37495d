package jobposting

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-tailor/internal/headhunter"
	"github.com/spigell/resume-tailor/internal/logger"
)

// PageFetcher downloads a page body.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// VacancyGetter reads hh.ru vacancies through the API.
type VacancyGetter interface {
	GetVacancy(ctx context.Context, id string) (*headhunter.Vacancy, error)
}

// Loader resolves a job argument into a Posting. hh.ru vacancy links go through the API,
// other http(s) links are fetched and run through the extractor, anything else is a file.
type Loader struct {
	fetcher   PageFetcher
	extractor Extractor
	vacancies VacancyGetter
	logger    *zap.Logger
}

// NewLoader creates a Loader. A nil vacancies getter makes hh.ru links go through the
// page fetcher like any other site.
func NewLoader(fetcher PageFetcher, extractor Extractor, vacancies VacancyGetter, log *zap.Logger) *Loader {
	if extractor == nil {
		extractor = NewCascade(log)
	}
	return &Loader{
		fetcher:   fetcher,
		extractor: extractor,
		vacancies: vacancies,
		logger:    logger.OrNop(log),
	}
}

func (l *Loader) Load(ctx context.Context, arg string) (*Posting, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return nil, errors.New("job posting argument is empty")
	}

	if id, ok := headhunter.VacancyIDFromURL(arg); ok && l.vacancies != nil {
		vacancy, err := l.vacancies.GetVacancy(ctx, id)
		if err != nil {
			return nil, err
		}
		posting := FromVacancy(vacancy)
		if posting == nil {
			return nil, fmt.Errorf("vacancy %s not found", id)
		}
		if posting.URL == "" {
			posting.URL = arg
		}
		l.logger.Debug("loaded hh.ru vacancy", logger.JobFields(arg, posting.Title)...)
		return posting, nil
	}

	if isHTTP(arg) {
		if l.fetcher == nil {
			return nil, fmt.Errorf("cannot fetch %s: no fetcher configured", arg)
		}
		page, err := l.fetcher.Fetch(ctx, arg)
		if err != nil {
			return nil, err
		}
		return l.extractor.Extract(arg, page)
	}

	return l.loadFile(arg)
}

func (l *Loader) loadFile(path string) (*Posting, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading job posting %q: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		posting, err := l.extractor.Extract("file://"+filepath.ToSlash(abs), data)
		if err != nil {
			return nil, err
		}
		posting.Source = SourceFile + "+" + posting.Source
		return posting, nil
	}

	text := cleanText(string(data))
	if text == "" {
		return nil, fmt.Errorf("job posting file %q is empty", path)
	}

	return &Posting{
		URL:         path,
		Title:       firstLine(text),
		Description: strings.TrimSpace(string(data)),
		Source:      SourceFile,
	}, nil
}

func isHTTP(arg string) bool {
	lower := strings.ToLower(arg)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// firstLine is the title of a plain text posting, with markdown heading marks removed.
func firstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	return strings.TrimSpace(strings.TrimLeft(line, "# "))
}
