package sink

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/livp123/logship/internal/metrics"
	liberrors "github.com/livp123/logship/pkg/errors"
)

// RetryOptions tunes the throttling retry loop. The zero MaxAttempts keeps
// the historical contract of retrying forever; Multiplier above 1.0 turns
// the fixed interval into bounded exponential backoff.
// RetryOptions 调节节流重试循环。MaxAttempts 为零保持无限重试的历史契约；
// Multiplier 大于 1.0 时固定间隔变为指数退避。
type RetryOptions struct {
	Interval    time.Duration
	MaxAttempts int
	Multiplier  float64
}

// Retrier wraps a Sink's PutEvents with throttling-aware retry. Non-throttling
// failures are returned immediately with the caller's token unchanged so the
// pipeline can abandon the batch and keep appending from the last good cursor.
// Retrier 为 Sink 的 PutEvents 提供节流感知重试。非节流失败立即返回且令牌不变，
// 以便管道放弃该批次并从最后一个有效游标继续追加。
type Retrier struct {
	sink  Sink
	opts  RetryOptions
	log   *zap.SugaredLogger
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetrier builds a Retrier around the given sink.
// NewRetrier 围绕给定 sink 构建 Retrier。
func NewRetrier(s Sink, opts RetryOptions, log *zap.SugaredLogger) *Retrier {
	if opts.Interval <= 0 {
		opts.Interval = 2 * time.Second
	}
	if opts.Multiplier < 1.0 {
		opts.Multiplier = 1.0
	}
	return &Retrier{
		sink:  s,
		opts:  opts,
		log:   log,
		sleep: sleepCtx,
	}
}

// Push appends the batch, retrying in place while the store throttles.
// The same batch and token are resubmitted on every attempt, in an explicit
// loop so sustained throttling cannot grow the call stack.
// Push 追加批次，在存储节流期间原地重试。每次尝试重新提交相同的批次和令牌，
// 使用显式循环避免持续节流导致调用栈增长。
func (r *Retrier) Push(ctx context.Context, group string, stream string, batch Batch, token string) (string, error) {
	if len(batch) == 0 {
		return token, nil
	}

	interval := r.opts.Interval
	for attempt := 1; ; attempt++ {
		next, err := r.sink.PutEvents(ctx, group, stream, batch, token)
		if err == nil {
			if attempt > 1 {
				r.log.Infof("✅ Append recovered after %d throttled attempts (%s/%s)", attempt-1, group, stream)
			}
			return next, nil
		}

		if !errors.Is(err, liberrors.ErrThrottled) {
			return token, err
		}

		metrics.ThrottleRetries.Inc()
		if r.opts.MaxAttempts > 0 && attempt >= r.opts.MaxAttempts {
			return token, liberrors.NewRetryError(attempt, err)
		}

		r.log.Warnf("⚠️  Throttled by remote store, backing off %s (attempt %d, %s/%s)", interval, attempt, group, stream)
		if err := r.sleep(ctx, interval); err != nil {
			return token, err
		}
		if r.opts.Multiplier > 1.0 {
			interval = time.Duration(float64(interval) * r.opts.Multiplier)
		}
	}
}

// sleepCtx waits for d, aborting early when the context ends.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
