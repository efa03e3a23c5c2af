package sink

import (
	"context"
	"time"
)

// Event is one log line with the wall-clock UTC instant it was accepted.
// Immutable once created.
// Event 是一条日志行及其被接受时的 UTC 时刻。创建后不可变。
type Event struct {
	Timestamp time.Time
	Message   string
}

// Batch is an ordered group of events submitted together. Insertion order is
// arrival order.
// Batch 是一起提交的有序事件组，插入顺序即到达顺序。
type Batch []Event

// Sink is the remote append-only log store. Appends to one stream are
// strictly sequential: the token returned by one PutEvents call must be
// passed to the next call on the same stream.
// Sink 是远程追加日志存储。对同一流的追加严格串行：上一次 PutEvents 返回的
// 令牌必须传递给对同一流的下一次调用。
type Sink interface {
	// EnsureGroup creates the log group. An already existing group is success.
	EnsureGroup(ctx context.Context, group string) error

	// EnsureStream creates the log stream. An already existing stream is success.
	EnsureStream(ctx context.Context, group string, stream string) error

	// PutEvents appends the batch under the given sequence token and returns
	// the token for the next append. An empty batch is a no-op: the token is
	// returned unchanged and no remote call is made. A throttling rejection
	// is reported as errors.ErrThrottled.
	PutEvents(ctx context.Context, group string, stream string, batch Batch, token string) (string, error)
}
