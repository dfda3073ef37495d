package jobposting

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/spigell/resume-tailor/internal/logger"
)

// ErrNoPosting is returned when no strategy found a job description on the page.
var ErrNoPosting = errors.New("no job posting found on page")

// Extractor turns a fetched page into a Posting.
type Extractor interface {
	Extract(url string, html []byte) (*Posting, error)
}

// Strategy recovers what it can from a parsed page. It returns nil when it found nothing
// and may return a partial posting without a description.
type Strategy interface {
	Name() string
	Extract(doc *goquery.Document, url string) *Posting
}

// DefaultStrategies returns the strategies in the order the cascade tries them.
func DefaultStrategies() []Strategy {
	return []Strategy{
		jsonLDStrategy{},
		openGraphStrategy{},
		readableStrategy{},
	}
}

// Cascade tries strategies in order. The first one producing a description wins, and
// fields it left empty are filled from partial results of earlier strategies.
type Cascade struct {
	strategies []Strategy
	logger     *zap.Logger
}

func NewCascade(log *zap.Logger, strategies ...Strategy) *Cascade {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Cascade{strategies: strategies, logger: logger.OrNop(log)}
}

func (c *Cascade) Extract(url string, html []byte) (*Posting, error) {
	if len(bytes.TrimSpace(html)) == 0 {
		return nil, fmt.Errorf("%s: %w", url, ErrNoPosting)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html of %s: %w", url, err)
	}

	partial := &Posting{}
	for _, strategy := range c.strategies {
		found := strategy.Extract(doc, url)
		if found == nil {
			continue
		}

		if found.Description == "" {
			partial.fill(found)
			continue
		}

		found.fill(partial)
		if found.URL == "" {
			found.URL = url
		}
		found.Source = strategy.Name()

		c.logger.Debug("job posting extracted",
			append(logger.JobFields(url, found.Title), zap.String("source", found.Source))...,
		)
		return found, nil
	}

	c.logger.Warn("no job posting found", logger.JobFields(url, partial.Title)...)
	return nil, fmt.Errorf("%s: %w", url, ErrNoPosting)
}
