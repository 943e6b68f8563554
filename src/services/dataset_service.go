package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"github.com/username/medrates/backend/src/database"
	"github.com/username/medrates/backend/src/logger"
	"github.com/username/medrates/backend/src/models"
)

// sqliteRecordSource reads the persisted dataset.
type sqliteRecordSource struct {
	db *sql.DB
}

func NewSQLiteRecordSource(db *sql.DB) RecordSource {
	return &sqliteRecordSource{db: db}
}

func (s *sqliteRecordSource) FetchAll() ([]models.RateRecord, error) {
	return database.FetchAllRates(s.db)
}

type datasetServiceImpl struct {
	db        *sql.DB
	sourceURL string
	client    *http.Client
	rates     RatesService
}

// NewDatasetService builds the upstream fetcher. The HTTP client carries a
// cookie jar because the dataset host sets a session cookie on redirect and
// refuses jarless clients.
func NewDatasetService(db *sql.DB, sourceURL string, timeout time.Duration, rates RatesService) DatasetService {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("failed to create cookie jar for dataset client", "error", err)
		jar = nil
	}
	return &datasetServiceImpl{
		db:        db,
		sourceURL: sourceURL,
		client:    &http.Client{Timeout: timeout, Jar: jar},
		rates:     rates,
	}
}

func (s *datasetServiceImpl) Refresh(ctx context.Context) (int, error) {
	if s.sourceURL == "" {
		return 0, fmt.Errorf("%w: no dataset source URL configured", ErrDatasetFetchFailed)
	}

	logger.L.Info("refreshing rate dataset", "url", s.sourceURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.sourceURL, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: creating request: %v", ErrDatasetFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatasetFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: upstream returned status %d", ErrDatasetFetchFailed, resp.StatusCode)
	}

	var records []models.RateRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return 0, fmt.Errorf("%w: decoding response: %v", ErrDatasetFetchFailed, err)
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("%w: upstream returned an empty dataset", ErrDatasetFetchFailed)
	}

	batchID := uuid.New().String()
	if err := database.ReplaceAllRates(s.db, batchID, records); err != nil {
		return 0, fmt.Errorf("replacing rate dataset: %w", err)
	}

	s.rates.Reload()
	logger.L.Info("rate dataset refreshed", "batch_id", batchID, "count", len(records))
	return len(records), nil
}
