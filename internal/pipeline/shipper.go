package pipeline

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/livp123/logship/internal/container"
	"github.com/livp123/logship/internal/metrics"
	"github.com/livp123/logship/internal/sink"
	"github.com/livp123/logship/internal/source"
)

// Options names the workload and its destination. The pipeline treats all
// four strings as opaque; presence validation belongs to the CLI layer.
// Options 命名工作负载及其目的地。管道将四个字符串视为不透明值；
// 存在性验证属于 CLI 层。
type Options struct {
	Image       string
	Command     string
	Group       string
	Stream      string
	BatchSize   int
	StopTimeout time.Duration
}

// Shipper drives the pump loop: source lines into the batcher, completed
// batches through the retrier into the sink, threading one sequence token
// per stream. Everything runs on a single goroutine, so there is only ever
// one in-flight append and the token needs no locking.
// Shipper 驱动泵循环：源的行进入批处理器，完成的批次经重试器进入 sink，
// 每个流串接一个序列令牌。全部运行在单个 goroutine 上，因此任何时刻只有
// 一个进行中的追加，令牌无需加锁。
type Shipper struct {
	runtime container.Runtime
	sink    sink.Sink
	retrier *sink.Retrier
	opts    Options
	log     *zap.SugaredLogger

	batcher *Batcher
	token   string
	state   State
}

// New builds a Shipper. The runtime may be nil when only RunFrom is used.
// New 构建 Shipper。仅使用 RunFrom 时 runtime 可以为 nil。
func New(rt container.Runtime, snk sink.Sink, retry sink.RetryOptions, opts Options, log *zap.SugaredLogger) *Shipper {
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = 10 * time.Second
	}
	return &Shipper{
		runtime: rt,
		sink:    snk,
		retrier: sink.NewRetrier(snk, retry, log),
		opts:    opts,
		log:     log,
		batcher: NewBatcher(opts.BatchSize),
		state:   StateIdle,
	}
}

// State returns the current lifecycle position.
func (s *Shipper) State() State {
	return s.state
}

// Run executes the full container pipeline: provision the remote store,
// start the container, pump its output, drain the tail, and always release
// the container before returning.
// Run 执行完整的容器管道：准备远程存储，启动容器，泵送其输出，排空尾部，
// 并在返回前始终释放容器。
func (s *Shipper) Run(ctx context.Context) error {
	return s.finish(s.runContainer(ctx))
}

// RunFrom ships an externally supplied source through the same pipeline.
// There is no process lifecycle to manage, so no cleanup phase runs.
// RunFrom 将外部提供的源通过同一管道传送。没有要管理的进程生命周期，
// 因此不执行清理阶段。
func (s *Shipper) RunFrom(ctx context.Context, src source.Source) error {
	return s.finish(func() error {
		if err := s.provision(ctx); err != nil {
			return err
		}
		return s.ship(ctx, src)
	}())
}

func (s *Shipper) runContainer(ctx context.Context) error {
	if err := s.provision(ctx); err != nil {
		return err
	}

	handle, err := s.runtime.Start(ctx, s.opts.Image, s.opts.Command)
	if err != nil {
		// No handle was acquired, so there is nothing to release.
		// 未获得句柄，因此没有需要释放的资源。
		return err
	}
	defer s.cleanup(handle)

	src, err := source.FromHandle(ctx, handle)
	if err != nil {
		return err
	}
	defer src.Close()

	return s.ship(ctx, src)
}

// provision ensures the log group and stream exist. Already-existing
// resources are success; anything else aborts before streaming starts.
// provision 确保日志组和流存在。已存在的资源视为成功；其他错误在流式
// 传输开始前中止。
func (s *Shipper) provision(ctx context.Context) error {
	s.setState(StateProvisioning)
	if err := s.sink.EnsureGroup(ctx, s.opts.Group); err != nil {
		return err
	}
	return s.sink.EnsureStream(ctx, s.opts.Group, s.opts.Stream)
}

func (s *Shipper) ship(ctx context.Context, src source.Source) error {
	s.setState(StateRunning)

	if err := s.pump(ctx, src); err != nil {
		if errors.Is(err, context.Canceled) {
			// Interrupted: deliver what is buffered, then leave cleanly.
			// 被中断：交付已缓冲的内容，然后干净退出。
			s.log.Warnf("🛑 Interrupted, flushing %d buffered events", s.batcher.Len())
			s.setState(StateDraining)
			s.flushFinal(context.WithoutCancel(ctx))
			return nil
		}
		return err
	}

	s.setState(StateDraining)
	s.drain(ctx, src)
	return nil
}

// pump is the single-threaded read/batch/append loop. It ends on source
// exhaustion (nil) or a source-level error.
// pump 是单线程的读取/批处理/追加循环。在源耗尽（返回 nil）或源级错误时结束。
func (s *Shipper) pump(ctx context.Context, src source.Source) error {
	for {
		line, err := src.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		metrics.LinesRead.Inc()
		batch, ok := s.batcher.Add(line)
		if !ok {
			continue
		}
		if err := s.push(ctx, batch); err != nil {
			return err
		}
	}
}

// drain performs the secondary read pass and flushes the final partial
// batch through the same append path. Drain failures lose only the tail;
// they never fail a pipeline whose primary pass completed.
// drain 执行二次读取并通过同一追加路径刷出最后的未满批次。排空失败只丢
// 失尾部，不会使主读取已完成的管道失败。
func (s *Shipper) drain(ctx context.Context, src source.Source) {
	lines, err := src.Drain(ctx)
	if err != nil {
		s.log.Warnf("⚠️  Drain pass failed (%s/%s): %v", s.opts.Group, s.opts.Stream, err)
	}
	for _, line := range lines {
		batch, ok := s.batcher.Add(line)
		if !ok {
			continue
		}
		if s.push(ctx, batch) != nil {
			return
		}
	}
	s.flushFinal(ctx)
}

func (s *Shipper) flushFinal(ctx context.Context) {
	if batch, ok := s.batcher.Flush(); ok {
		_ = s.push(ctx, batch)
	}
}

// push submits one batch and advances the held token. A non-throttling sink
// failure abandons the batch: it is logged, counted, and the pipeline keeps
// appending from the last known-good token. Only cancellation is propagated.
// push 提交一个批次并推进持有的令牌。非节流的 sink 失败会放弃该批次：
// 记录日志、计数，管道从最后一个已知有效令牌继续追加。只有取消会向上传播。
func (s *Shipper) push(ctx context.Context, batch sink.Batch) error {
	next, err := s.retrier.Push(ctx, s.opts.Group, s.opts.Stream, batch, s.token)
	s.token = next
	if err == nil {
		metrics.BatchesShipped.Inc()
		metrics.EventsShipped.Add(float64(len(batch)))
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	metrics.BatchesAbandoned.Inc()
	s.log.Errorf("❌ Abandoning batch of %d events (%s/%s): %v", len(batch), s.opts.Group, s.opts.Stream, err)
	return nil
}

// cleanup releases the container: stop then remove, exactly once, on every
// exit path that acquired a handle. It uses a fresh context so teardown
// still runs when the pipeline's context is already gone.
// cleanup 释放容器：在每个获得句柄的退出路径上恰好执行一次先停止后删除。
// 它使用新的 context，以便管道的 context 已结束时清理仍能进行。
func (s *Shipper) cleanup(h container.Handle) {
	s.setState(StateCleanup)

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.StopTimeout+30*time.Second)
	defer cancel()

	if err := h.Stop(ctx, s.opts.StopTimeout); err != nil {
		s.log.Warnf("⚠️  %v", err)
	}
	if err := h.Remove(ctx); err != nil {
		s.log.Warnf("⚠️  %v", err)
	}
}

func (s *Shipper) finish(err error) error {
	if err != nil {
		s.setState(StateFailed)
		s.log.Errorf("❌ Pipeline failed (%s/%s): %v", s.opts.Group, s.opts.Stream, err)
		return err
	}
	s.setState(StateDone)
	s.log.Infof("✅ Pipeline finished (%s/%s)", s.opts.Group, s.opts.Stream)
	return nil
}

func (s *Shipper) setState(st State) {
	s.state = st
	metrics.PipelineState.Set(float64(st))
	s.log.Debugf("Pipeline state: %s", st)
}
