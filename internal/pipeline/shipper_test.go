package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/livp123/logship/internal/container"
	"github.com/livp123/logship/internal/sink"
)

// errReader fails the stream after its prefix has been consumed.
// errReader 在前缀内容被消费后使流失败。
type errReader struct {
	err error
}

func (r *errReader) Read(p []byte) (int, error) {
	return 0, r.err
}

// fakeHandle is a container handle over canned log content, counting
// teardown calls.
// fakeHandle 是基于预置日志内容的容器句柄，统计清理调用次数。
type fakeHandle struct {
	followed  string
	full      string
	followErr error
	midErr    error

	stops   int
	removes int
}

func (h *fakeHandle) ID() string { return "deadbeef0000" }

func (h *fakeHandle) Logs(ctx context.Context, follow bool) (io.ReadCloser, error) {
	if follow {
		if h.followErr != nil {
			return nil, h.followErr
		}
		r := io.Reader(strings.NewReader(h.followed))
		if h.midErr != nil {
			r = io.MultiReader(r, &errReader{h.midErr})
		}
		return io.NopCloser(r), nil
	}
	return io.NopCloser(strings.NewReader(h.full)), nil
}

func (h *fakeHandle) Stop(ctx context.Context, timeout time.Duration) error {
	h.stops++
	return nil
}

func (h *fakeHandle) Remove(ctx context.Context) error {
	h.removes++
	return nil
}

// fakeRuntime hands out one fakeHandle.
type fakeRuntime struct {
	handle   container.Handle
	startErr error
	starts   int
}

func (r *fakeRuntime) Start(ctx context.Context, image string, command string) (container.Handle, error) {
	r.starts++
	if r.startErr != nil {
		return nil, r.startErr
	}
	return r.handle, nil
}

// recordSink records provisioning and append calls and issues tok-N tokens.
// recordSink 记录准备与追加调用并签发 tok-N 令牌。
type recordSink struct {
	groupErr  error
	streamErr error
	putScript map[int]error // 1-based call index → error / 以 1 起始的调用序号 → 错误

	groups  []string
	streams []string
	calls   int
	batches []sink.Batch
	tokens  []string
}

func (r *recordSink) EnsureGroup(ctx context.Context, group string) error {
	r.groups = append(r.groups, group)
	return r.groupErr
}

func (r *recordSink) EnsureStream(ctx context.Context, group string, stream string) error {
	r.streams = append(r.streams, stream)
	return r.streamErr
}

func (r *recordSink) PutEvents(ctx context.Context, group string, stream string, batch sink.Batch, token string) (string, error) {
	r.calls++
	r.batches = append(r.batches, batch)
	r.tokens = append(r.tokens, token)
	if err := r.putScript[r.calls]; err != nil {
		return token, err
	}
	return fmt.Sprintf("tok-%d", r.calls), nil
}

func numberedLines(n int) string {
	var sb strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&sb, "line-%d\n", i)
	}
	return sb.String()
}

func newTestShipper(rt container.Runtime, snk sink.Sink, batchSize int) *Shipper {
	opts := Options{
		Image:       "ubuntu:24.04",
		Command:     "do-work",
		Group:       "grp",
		Stream:      "strm",
		BatchSize:   batchSize,
		StopTimeout: time.Second,
	}
	retry := sink.RetryOptions{Interval: time.Millisecond}
	return New(rt, snk, retry, opts, zap.NewNop().Sugar())
}

// TestShipperFullSession tests the 25-line scenario: two full batches during
// streaming, one partial batch while draining, three chained cursors, and
// exactly one stop-then-remove
// TestShipperFullSession 测试 25 行场景：流式期间两个满批，排空期间一个
// 未满批，三个串接的游标，以及恰好一次先停止后删除
func TestShipperFullSession(t *testing.T) {
	content := numberedLines(25)
	handle := &fakeHandle{followed: content, full: content}
	rt := &fakeRuntime{handle: handle}
	snk := &recordSink{}

	s := newTestShipper(rt, snk, 10)
	require.NoError(t, s.Run(context.Background()))

	// 1. Provisioning hit both ensure operations once
	// 1. 准备阶段各执行一次 ensure 操作
	assert.Equal(t, []string{"grp"}, snk.groups)
	assert.Equal(t, []string{"strm"}, snk.streams)

	// 2. Exactly three batches: 10, 10, then the 5-event drain flush
	// 2. 恰好三个批次：10、10，然后是排空刷出的 5 个事件
	require.Equal(t, 3, snk.calls)
	assert.Len(t, snk.batches[0], 10)
	assert.Len(t, snk.batches[1], 10)
	assert.Len(t, snk.batches[2], 5)

	// 3. Cursor chaining: each append used the token the previous one returned
	// 3. 游标串接：每次追加使用上一次返回的令牌
	assert.Equal(t, []string{"", "tok-1", "tok-2"}, snk.tokens)

	// 4. Concatenating all batches reproduces the original order exactly
	// 4. 连接所有批次精确重现原始顺序
	var all []string
	for _, b := range snk.batches {
		for _, ev := range b {
			all = append(all, ev.Message)
		}
	}
	require.Len(t, all, 25)
	for i, msg := range all {
		assert.Equal(t, fmt.Sprintf("line-%d", i+1), msg)
	}

	// 5. Stop-then-remove ran exactly once and the pipeline finished
	// 5. 先停止后删除恰好执行一次，管道正常结束
	assert.Equal(t, 1, handle.stops)
	assert.Equal(t, 1, handle.removes)
	assert.Equal(t, StateDone, s.State())
}

// TestShipperAbandonedBatchKeepsCursor tests that a failed batch 2 of 3 is
// abandoned and batch 3 still ships using batch 1's cursor
// TestShipperAbandonedBatchKeepsCursor 测试第 2/3 批失败被放弃，第 3 批仍
// 使用第 1 批的游标发送
func TestShipperAbandonedBatchKeepsCursor(t *testing.T) {
	content := numberedLines(30)
	handle := &fakeHandle{followed: content, full: content}
	rt := &fakeRuntime{handle: handle}
	snk := &recordSink{putScript: map[int]error{2: errors.New("access denied")}}

	s := newTestShipper(rt, snk, 10)
	require.NoError(t, s.Run(context.Background()))

	require.Equal(t, 3, snk.calls)

	// Batch 3 reuses the last known-good cursor from batch 1
	// 第 3 批复用第 1 批的最后一个有效游标
	assert.Equal(t, []string{"", "tok-1", "tok-1"}, snk.tokens)

	// Failure did not fail the pipeline, and cleanup still ran once
	// 失败未使管道失败，清理仍执行一次
	assert.Equal(t, StateDone, s.State())
	assert.Equal(t, 1, handle.stops)
	assert.Equal(t, 1, handle.removes)
}

// TestShipperDrainPass tests that lines buffered past the primary stream are
// shipped by the drain pass without duplication
// TestShipperDrainPass 测试主流之后缓冲的行由排空读取发送且不重复
func TestShipperDrainPass(t *testing.T) {
	handle := &fakeHandle{
		followed: numberedLines(3),
		full:     numberedLines(5),
	}
	rt := &fakeRuntime{handle: handle}
	snk := &recordSink{}

	s := newTestShipper(rt, snk, 10)
	require.NoError(t, s.Run(context.Background()))

	require.Equal(t, 1, snk.calls)
	require.Len(t, snk.batches[0], 5)
	for i, ev := range snk.batches[0] {
		assert.Equal(t, fmt.Sprintf("line-%d", i+1), ev.Message)
	}
}

// TestShipperMidStreamErrorCleanup tests that a source failure stops the
// pump but still releases the container
// TestShipperMidStreamErrorCleanup 测试源失败停止泵循环但仍释放容器
func TestShipperMidStreamErrorCleanup(t *testing.T) {
	boom := errors.New("transport broken")
	handle := &fakeHandle{followed: numberedLines(3), midErr: boom}
	rt := &fakeRuntime{handle: handle}
	snk := &recordSink{}

	s := newTestShipper(rt, snk, 10)
	err := s.Run(context.Background())
	require.Error(t, err)

	assert.Equal(t, StateFailed, s.State())
	assert.Equal(t, 1, handle.stops)
	assert.Equal(t, 1, handle.removes)

	// No drain pass after a mid-stream failure
	// 中途失败后不执行排空读取
	assert.Zero(t, snk.calls)
}

// TestShipperLogAttachErrorCleanup tests cleanup when the handle was
// acquired but its log stream never opened
// TestShipperLogAttachErrorCleanup 测试句柄已获得但日志流未能打开时的清理
func TestShipperLogAttachErrorCleanup(t *testing.T) {
	handle := &fakeHandle{followErr: errors.New("attach refused")}
	rt := &fakeRuntime{handle: handle}
	snk := &recordSink{}

	s := newTestShipper(rt, snk, 10)
	require.Error(t, s.Run(context.Background()))

	assert.Equal(t, StateFailed, s.State())
	assert.Equal(t, 1, handle.stops)
	assert.Equal(t, 1, handle.removes)
}

// TestShipperProvisionErrorNoStart tests that a store provisioning failure
// prevents the container from ever starting
// TestShipperProvisionErrorNoStart 测试存储准备失败时容器根本不会启动
func TestShipperProvisionErrorNoStart(t *testing.T) {
	rt := &fakeRuntime{handle: &fakeHandle{}}
	snk := &recordSink{groupErr: errors.New("access denied")}

	s := newTestShipper(rt, snk, 10)
	require.Error(t, s.Run(context.Background()))

	assert.Equal(t, StateFailed, s.State())
	assert.Zero(t, rt.starts)
}

// TestShipperStartError tests the terminal state when the container cannot start
// TestShipperStartError 测试容器无法启动时的终止状态
func TestShipperStartError(t *testing.T) {
	rt := &fakeRuntime{startErr: errors.New("image not found")}
	snk := &recordSink{}

	s := newTestShipper(rt, snk, 10)
	require.Error(t, s.Run(context.Background()))
	assert.Equal(t, StateFailed, s.State())
}

// stubSource feeds canned lines for RunFrom.
type stubSource struct {
	lines  []string
	i      int
	closed bool
}

func (s *stubSource) Next(ctx context.Context) (string, error) {
	if s.i >= len(s.lines) {
		return "", io.EOF
	}
	line := s.lines[s.i]
	s.i++
	return line, nil
}

func (s *stubSource) Drain(ctx context.Context) ([]string, error) { return nil, nil }

func (s *stubSource) Close() error {
	s.closed = true
	return nil
}

// TestShipperRunFrom tests shipping an external source without any container
// lifecycle
// TestShipperRunFrom 测试在没有容器生命周期的情况下传送外部源
func TestShipperRunFrom(t *testing.T) {
	snk := &recordSink{}
	s := newTestShipper(nil, snk, 2)

	src := &stubSource{lines: []string{"a", "b", "c"}}
	require.NoError(t, s.RunFrom(context.Background(), src))

	require.Equal(t, 2, snk.calls)
	assert.Len(t, snk.batches[0], 2)
	assert.Len(t, snk.batches[1], 1)
	assert.Equal(t, []string{"", "tok-1"}, snk.tokens)
	assert.Equal(t, StateDone, s.State())
}
