package pipeline

import (
	"strings"
	"time"

	"github.com/livp123/logship/internal/metrics"
	"github.com/livp123/logship/internal/sink"
)

// DefaultBatchSize matches the remote store's comfortable append granularity.
const DefaultBatchSize = 10

// Batcher buffers accepted lines into ordered, size-bounded batches. Blank
// and whitespace-only lines are discarded without creating an event; every
// accepted line is timestamped with wall-clock UTC at acceptance.
// Batcher 将接受的行缓冲为有序、大小受限的批次。空行和纯空白行直接丢弃，
// 不创建事件；每条被接受的行在接受时打上 UTC 墙钟时间戳。
type Batcher struct {
	size int
	buf  sink.Batch
}

// NewBatcher creates a Batcher emitting batches of the given size.
// NewBatcher 创建发出给定大小批次的 Batcher。
func NewBatcher(size int) *Batcher {
	if size <= 0 {
		size = DefaultBatchSize
	}
	return &Batcher{
		size: size,
		buf:  make(sink.Batch, 0, size),
	}
}

// Add accepts one raw line. When the buffer reaches the batch size the
// completed batch is returned and the buffer resets; otherwise ok is false.
// Add 接受一条原始行。缓冲达到批大小时返回完成的批次并重置缓冲，否则 ok 为 false。
func (b *Batcher) Add(line string) (sink.Batch, bool) {
	message := strings.TrimSpace(line)
	if message == "" {
		metrics.LinesDiscarded.Inc()
		return nil, false
	}

	b.buf = append(b.buf, sink.Event{
		Timestamp: time.Now().UTC(),
		Message:   message,
	})

	if len(b.buf) < b.size {
		return nil, false
	}
	return b.take(), true
}

// Flush drains any partial buffer, used at stream end. The final batch of a
// session may be smaller than the batch size.
// Flush 排空任何未满的缓冲，在流结束时使用。会话的最后一批可能小于批大小。
func (b *Batcher) Flush() (sink.Batch, bool) {
	if len(b.buf) == 0 {
		return nil, false
	}
	return b.take(), true
}

// Len reports the number of buffered events.
func (b *Batcher) Len() int {
	return len(b.buf)
}

func (b *Batcher) take() sink.Batch {
	batch := b.buf
	b.buf = make(sink.Batch, 0, b.size)
	return batch
}
