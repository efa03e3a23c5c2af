package source

import (
	"context"
	"io"

	"github.com/nxadm/tail"
)

// FileSource streams lines from a log file via tail. In follow mode it keeps
// reading across rotation until the context ends; otherwise it stops at the
// current end of file. Files have no post-exit buffer, so Drain is empty.
// FileSource 通过 tail 从日志文件流式读取行。跟随模式下跨轮转持续读取直到
// context 结束；否则在当前文件末尾停止。文件没有退出后缓冲，Drain 为空。
type FileSource struct {
	t *tail.Tail
}

// NewFileSource opens path for tailing.
// NewFileSource 打开 path 进行 tail 读取。
func NewFileSource(path string, follow bool) (*FileSource, error) {
	t, err := tail.TailFile(path, tail.Config{
		Follow:    follow,
		ReOpen:    follow, // Handle log rotation
		MustExist: true,
		Poll:      true, // Fallback if inotify fails
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return nil, err
	}
	return &FileSource{t: t}, nil
}

// Next blocks until a line arrives, the file ends, or the context ends.
func (s *FileSource) Next(ctx context.Context) (string, error) {
	select {
	case line, ok := <-s.t.Lines:
		if !ok {
			return "", io.EOF
		}
		if line.Err != nil {
			return "", line.Err
		}
		return line.Text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Drain is a no-op: tail delivers every line through Next.
func (s *FileSource) Drain(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (s *FileSource) Close() error {
	err := s.t.Stop()
	s.t.Cleanup()
	return err
}
