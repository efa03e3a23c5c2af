package source

import "context"

// Source produces a lazy, ordered sequence of raw text lines. Next blocks
// until a line is available and reports io.EOF when the source is exhausted;
// exhaustion is a normal terminal condition, not an error.
// Source 产生惰性有序的原始文本行序列。Next 阻塞直到有行可用，源耗尽时报告
// io.EOF；耗尽是正常的终止条件，不是错误。
type Source interface {
	// Next returns the next raw line without its trailing newline.
	Next(ctx context.Context) (string, error)

	// Drain returns any output buffered between the last Next and source
	// exit. Lines already delivered by Next are never repeated. Sources
	// without a post-exit buffer return nothing.
	// Drain 返回最后一次 Next 与源退出之间缓冲的输出。Next 已交付的行不会
	// 重复。没有退出后缓冲的源返回空。
	Drain(ctx context.Context) ([]string, error)

	// Close releases the underlying reader.
	Close() error
}
