package seeding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, url string, body any) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// marshalSubmission marshals a submission to JSON
func marshalSubmission(sub Submission) ([]byte, error) {
	return json.Marshal(sub)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// fetchEntities retrieves the registered entities from the service.
func fetchEntities(ctx context.Context, client *HTTPClient, config *Config, stats *Stats) ([]entityInfo, error) {
	resp, err := client.Get(ctx, config.BaseURL+"/api/entities")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entities: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read entity listing: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("entity listing failed with status: %d", resp.StatusCode)
	}

	var entities []entityInfo
	if err := json.Unmarshal(body, &entities); err != nil {
		return nil, fmt.Errorf("failed to parse entity listing: %w", err)
	}

	stats.EntitiesFound = len(entities)
	return entities, nil
}

// submitScores submits score submissions concurrently using worker pools
func submitScores(ctx context.Context, config *Config, submissions []Submission, stats *Stats) error {
	log.Printf("📤 Submitting %d scores with %d workers...", len(submissions), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/api/score"

	// Counters for statistics
	var (
		created   int64
		duplicate int64
		failed    int64
		submitted int64
	)

	// Progress reporting
	var lastReport time.Time
	reportInterval := 1 * time.Second

	// Create worker pool
	subChan := make(chan Submission, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for sub := range subChan {
				select {
				case <-ctx.Done():
					return
				default:
					result := submitSingleScore(ctx, client, url, sub)

					// Update counters
					atomic.AddInt64(&submitted, 1)
					switch result {
					case "created":
						atomic.AddInt64(&created, 1)
					case "duplicate":
						atomic.AddInt64(&duplicate, 1)
					case "failed":
						atomic.AddInt64(&failed, 1)
					}

					// Progress reporting
					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						total := atomic.LoadInt64(&submitted)
						cr := atomic.LoadInt64(&created)
						dup := atomic.LoadInt64(&duplicate)
						fail := atomic.LoadInt64(&failed)

						if config.Verbose {
							log.Printf("📊 Progress: %d/%d submitted (created: %d, duplicate: %d, failed: %d)",
								total, len(submissions), cr, dup, fail)
						} else {
							fmt.Printf("\r📤 Submitted: %d/%d (created: %d, duplicate: %d, failed: %d)",
								total, len(submissions), cr, dup, fail)
						}
					}
				}
			}
		}()
	}

	// Send submissions to workers
	go func() {
		defer close(subChan)
		for _, sub := range submissions {
			select {
			case <-ctx.Done():
				return
			case subChan <- sub:
			}
		}
	}()

	// Wait for all workers to complete
	wg.Wait()

	// Final progress report
	if !config.Verbose {
		fmt.Println() // New line after progress indicator
	}

	// Update stats
	stats.ScoresSubmitted = int(atomic.LoadInt64(&submitted))
	stats.ScoresCreated = int(atomic.LoadInt64(&created))
	stats.ScoresDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.ScoresFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`✅ Score submission completed:
   Created: %d
   Duplicate: %d
   Failed: %d
`, stats.ScoresCreated, stats.ScoresDuplicate, stats.ScoresFailed)

	return nil
}

// submitSingleScore submits a single score and returns the result
func submitSingleScore(ctx context.Context, client *HTTPClient, url string, sub Submission) string {
	resp, err := client.Post(ctx, url, sub)
	if err != nil {
		return "failed"
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return "failed"
	}

	switch resp.StatusCode {
	case StatusCreated:
		return "created"
	case StatusOK:
		// OK with already_exists status means the id was replayed
		var status statusResponse
		if err := json.Unmarshal(body, &status); err == nil && status.Status == "already_exists" {
			return "duplicate"
		}
		return "duplicate"
	default:
		return "failed"
	}
}
