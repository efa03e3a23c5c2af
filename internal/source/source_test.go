package source

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHandle serves a follow stream and a separate full log buffer, like the
// container engine does.
// fakeHandle 提供跟随流和独立的完整日志缓冲，如同容器引擎。
type fakeHandle struct {
	followed string
	full     string
}

func (f *fakeHandle) ID() string { return "fake0000000000" }

func (f *fakeHandle) Logs(ctx context.Context, follow bool) (io.ReadCloser, error) {
	if follow {
		return io.NopCloser(strings.NewReader(f.followed)), nil
	}
	return io.NopCloser(strings.NewReader(f.full)), nil
}

func (f *fakeHandle) Stop(ctx context.Context, timeout time.Duration) error { return nil }

func (f *fakeHandle) Remove(ctx context.Context) error { return nil }

// TestContainerSourceNext tests ordered line delivery and EOF on exhaustion
// TestContainerSourceNext 测试有序行交付和耗尽时的 EOF
func TestContainerSourceNext(t *testing.T) {
	h := &fakeHandle{followed: "one\ntwo\nthree\n"}
	src, err := FromHandle(context.Background(), h)
	require.NoError(t, err)
	defer src.Close()

	var got []string
	for {
		line, err := src.Next(context.Background())
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, line)
	}
	assert.Equal(t, []string{"one", "two", "three"}, got)
}

// TestContainerSourceDrainWatermark tests that the drain pass skips exactly
// the lines the primary pass delivered
// TestContainerSourceDrainWatermark 测试排空读取恰好跳过主读取已交付的行
func TestContainerSourceDrainWatermark(t *testing.T) {
	// The engine buffered five lines; the follow stream only saw three
	// before the container exited.
	// 引擎缓冲了五行；跟随流在容器退出前只看到三行。
	h := &fakeHandle{
		followed: "one\ntwo\nthree\n",
		full:     "one\ntwo\nthree\nfour\nfive\n",
	}
	src, err := FromHandle(context.Background(), h)
	require.NoError(t, err)
	defer src.Close()

	// 1. Exhaust the primary pass
	// 1. 耗尽主读取
	for {
		if _, err := src.Next(context.Background()); err == io.EOF {
			break
		}
	}

	// 2. Drain returns only the unseen tail
	// 2. Drain 只返回未见过的尾部
	lines, err := src.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"four", "five"}, lines)
}

// TestContainerSourceDrainNothingBuffered tests an empty drain pass
// TestContainerSourceDrainNothingBuffered 测试空的排空读取
func TestContainerSourceDrainNothingBuffered(t *testing.T) {
	h := &fakeHandle{
		followed: "one\ntwo\n",
		full:     "one\ntwo\n",
	}
	src, err := FromHandle(context.Background(), h)
	require.NoError(t, err)
	defer src.Close()

	for {
		if _, err := src.Next(context.Background()); err == io.EOF {
			break
		}
	}

	lines, err := src.Drain(context.Background())
	require.NoError(t, err)
	assert.Empty(t, lines)
}

// TestFileSource tests reading an existing file to EOF without follow
// TestFileSource 测试不跟随地读取现有文件直到 EOF
func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte("alpha\nbeta\n"), 0644))

	src, err := NewFileSource(path, false)
	require.NoError(t, err)
	defer src.Close()

	var got []string
	for {
		line, err := src.Next(context.Background())
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, line)
	}
	assert.Equal(t, []string{"alpha", "beta"}, got)

	// Files have no post-exit buffer
	// 文件没有退出后缓冲
	lines, err := src.Drain(context.Background())
	require.NoError(t, err)
	assert.Empty(t, lines)
}

// TestFileSourceMissing tests that a missing file is an immediate error
// TestFileSourceMissing 测试文件缺失立即报错
func TestFileSourceMissing(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "absent.log"), false)
	assert.Error(t, err)
}

// TestFileSourceContextCanceled tests that cancellation unblocks Next
// TestFileSourceContextCanceled 测试取消会解除 Next 的阻塞
func TestFileSourceContextCanceled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte(""), 0644))

	src, err := NewFileSource(path, true)
	require.NoError(t, err)
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = src.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
