package source

import (
	"bufio"
	"context"
	"io"

	"github.com/livp123/logship/internal/container"
)

// scanBufSize is the initial scanner buffer; maxLineSize bounds one log line.
const (
	scanBufSize = 64 * 1024
	maxLineSize = 1024 * 1024
)

// ContainerSource streams lines from a running container's combined
// stdout+stderr. The primary pass follows the stream until the container
// exits; the drain pass re-reads the engine's full log buffer and skips the
// lines the primary pass already delivered, so the two passes are provably
// disjoint.
// ContainerSource 从运行中容器的合并 stdout+stderr 流式读取行。主读取跟随流
// 直到容器退出；排空读取重新读取引擎的完整日志缓冲并跳过主读取已交付的行，
// 因此两次读取可证明不相交。
type ContainerSource struct {
	handle    container.Handle
	rc        io.ReadCloser
	scanner   *bufio.Scanner
	delivered int
}

// FromHandle attaches to the handle's follow-mode log stream.
// FromHandle 附加到句柄的跟随模式日志流。
func FromHandle(ctx context.Context, h container.Handle) (*ContainerSource, error) {
	rc, err := h.Logs(ctx, true)
	if err != nil {
		return nil, err
	}
	return &ContainerSource{
		handle:  h,
		rc:      rc,
		scanner: newLineScanner(rc),
	}, nil
}

// Next blocks until the container produces a line or exits.
func (s *ContainerSource) Next(ctx context.Context) (string, error) {
	if s.scanner.Scan() {
		s.delivered++
		return s.scanner.Text(), nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// Drain performs the secondary read pass: a one-shot log read covering the
// container's full output, with the primary pass's line count as the split
// watermark.
// Drain 执行二次读取：一次性读取容器的完整输出，以主读取的行数作为分割水位线。
func (s *ContainerSource) Drain(ctx context.Context) ([]string, error) {
	rc, err := s.handle.Logs(ctx, false)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var lines []string
	n := 0
	sc := newLineScanner(rc)
	for sc.Scan() {
		n++
		if n <= s.delivered {
			// Already shipped by the primary pass
			// 已由主读取交付
			continue
		}
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

func (s *ContainerSource) Close() error {
	return s.rc.Close()
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, scanBufSize), maxLineSize)
	return sc
}
