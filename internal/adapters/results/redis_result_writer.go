package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"site-selection-service/internal/api/dto"
	"site-selection-service/internal/domain"
	"site-selection-service/internal/platform/obs"

	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "siteselect"
	defaultHistory   = 50
)

// RedisResultWriter publishes the latest solution per scenario as JSON and keeps
// a bounded history of run ids.
type RedisResultWriter struct {
	Client *redis.Client
	Prefix string
	// History bounds the per-scenario run id list.
	History int
	TTL     time.Duration
}

func NewRedisResultWriter(client *redis.Client) *RedisResultWriter {
	return &RedisResultWriter{Client: client, Prefix: defaultKeyPrefix, History: defaultHistory}
}

func (w *RedisResultWriter) latestKey(scenario string) string {
	return fmt.Sprintf("%s:latest:%s", w.Prefix, scenario)
}

func (w *RedisResultWriter) runKey(runID string) string {
	return fmt.Sprintf("%s:run:%s", w.Prefix, runID)
}

func (w *RedisResultWriter) historyKey(scenario string) string {
	return fmt.Sprintf("%s:runs:%s", w.Prefix, scenario)
}

func (w *RedisResultWriter) WriteRun(ctx context.Context, run domain.SelectionRun) (err error) {
	defer obs.Time(ctx, "results.redis.write")(&err)

	if w.Client == nil {
		return errors.New("redis result writer: client is nil")
	}
	if run.Solution == nil {
		return fmt.Errorf("publish run %s: solution is nil", run.RunID)
	}

	payload, err := json.Marshal(dto.NewRunResponse(run))
	if err != nil {
		return fmt.Errorf("publish run %s: encode: %w", run.RunID, err)
	}

	history := w.History
	if history <= 0 {
		history = defaultHistory
	}

	_, err = w.Client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, w.runKey(run.RunID), payload, w.TTL)
		p.Set(ctx, w.latestKey(run.Scenario), payload, w.TTL)
		p.LPush(ctx, w.historyKey(run.Scenario), run.RunID)
		p.LTrim(ctx, w.historyKey(run.Scenario), 0, int64(history-1))
		return nil
	})
	if err != nil {
		return fmt.Errorf("publish run %s: %w", run.RunID, err)
	}

	return nil
}

// Latest returns the last published run of a scenario.
func (w *RedisResultWriter) Latest(ctx context.Context, scenario string) (dto.RunResponse, error) {
	raw, err := w.Client.Get(ctx, w.latestKey(scenario)).Bytes()
	if err != nil {
		return dto.RunResponse{}, fmt.Errorf("latest run %q: %w", scenario, err)
	}

	var res dto.RunResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return dto.RunResponse{}, fmt.Errorf("latest run %q: decode: %w", scenario, err)
	}
	return res, nil
}

// RunIDs lists published run ids of a scenario, newest first.
func (w *RedisResultWriter) RunIDs(ctx context.Context, scenario string) ([]string, error) {
	ids, err := w.Client.LRange(ctx, w.historyKey(scenario), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("run ids %q: %w", scenario, err)
	}
	return ids, nil
}
