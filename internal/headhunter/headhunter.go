package headhunter

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spigell/resume-tailor/internal/logger"
)

const (
	apiURL    = "https://api.hh.ru"
	userAgent = "spigell/resume-tailor (spigelly@gmail.com)"
	// hh.ru allows a few requests per second for anonymous clients.
	requestsPerSecond = 2
)

type Client struct {
	token      string
	logger     *zap.Logger
	limiter    *rate.Limiter
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

// New creates a client. The token is optional: public vacancies are readable anonymously.
func New(logger *zap.Logger, token string) *Client {
	return &Client{
		token:  strings.TrimSpace(token),
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		logger:    logger,
		UserAgent: userAgent,
	}
}

// GetVacancy returns the full vacancy including its HTML description and key skills.
func (c *Client) GetVacancy(ctx context.Context, id string) (*Vacancy, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("vacancy id is required")
	}

	var raw map[string]any
	if err := c.getJSON(ctx, fmt.Sprintf("%s/vacancies/%s", c.APIURL, id), nil, &raw); err != nil {
		return nil, fmt.Errorf("getting vacancy %s: %w", id, err)
	}

	var vacancy *Vacancy
	cfg := &mapstructure.DecoderConfig{
		Result:           &vacancy,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding vacancy %s: %w", id, err)
	}
	if vacancy == nil || vacancy.ID == "" {
		return nil, fmt.Errorf("vacancy %s: empty response", id)
	}

	logger.OrNop(c.logger).Debug("got vacancy from HH.ru",
		zap.String("vacancy_id", vacancy.ID),
		zap.String("vacancy_name", vacancy.Name),
		zap.Int("key_skills", len(vacancy.KeySkills)),
	)

	return vacancy, nil
}
