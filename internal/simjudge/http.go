package simjudge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/bakeboard/pkg/logger"
)

type client struct {
	http *http.Client
	base string
}

func newClient(cfg *Config) *client {
	return &client{
		http: &http.Client{Timeout: cfg.Timeout},
		base: cfg.BaseURL,
	}
}

func (c *client) postJSON(ctx context.Context, path string, body any, out any) (int, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("marshal body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(raw))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}
	if out != nil {
		_ = json.Unmarshal(data, out)
	}
	return resp.StatusCode, nil
}

func (c *client) putJSON(ctx context.Context, path string, body any) (int, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("marshal body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.base+path, bytes.NewReader(raw))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func (c *client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, path)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// submitAll posts submissions concurrently through a fixed worker pool.
func submitAll(ctx context.Context, cfg *Config, c *client, subs []Submission, stats *Stats) {
	log := logger.Named("simjudge")
	log.Info(ctx, "submitting scores",
		logger.Int("submissions", len(subs)),
		logger.Int("workers", cfg.Workers),
	)

	var successful, rejected, failed, submitted int64

	jobs := make(chan Submission, cfg.Workers*2)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sub := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				status, err := c.postJSON(ctx, "/api/scores", sub, nil)
				atomic.AddInt64(&submitted, 1)
				switch {
				case err != nil || status >= http.StatusInternalServerError:
					atomic.AddInt64(&failed, 1)
				case status == http.StatusOK:
					atomic.AddInt64(&successful, 1)
				default:
					atomic.AddInt64(&rejected, 1)
					if cfg.Verbose {
						log.Debug(ctx, "submission rejected",
							logger.String("judge", sub.JudgeName),
							logger.Int64("participant", sub.ParticipantID),
							logger.Int("status", status),
						)
					}
				}
			}
		}()
	}

	start := time.Now()
feed:
	for _, sub := range subs {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- sub:
		}
	}
	close(jobs)
	wg.Wait()

	stats.Submitted = int(atomic.LoadInt64(&submitted))
	stats.Successful = int(atomic.LoadInt64(&successful))
	stats.Rejected = int(atomic.LoadInt64(&rejected))
	stats.Failed = int(atomic.LoadInt64(&failed))
	stats.Duration = time.Since(start)
}
