package container

import (
	"context"
	"io"
	"time"
)

// Runtime starts workload containers. It is the only entry point the
// pipeline has into the container engine.
// Runtime 启动工作负载容器，是管道进入容器引擎的唯一入口。
type Runtime interface {
	// Start creates and starts a container running the given command in the
	// given image, returning a handle to the running process.
	// Start 创建并启动容器，返回运行进程的句柄。
	Start(ctx context.Context, image string, command string) (Handle, error)
}

// Handle is an exclusive reference to one running container. The owner must
// call Stop then Remove exactly once before discarding it.
// Handle 是对一个运行中容器的独占引用。所有者在丢弃前必须依次调用一次 Stop 和 Remove。
type Handle interface {
	// ID returns the container identifier.
	ID() string

	// Logs returns a combined stdout+stderr line stream. With follow=true the
	// reader blocks until the container exits; with follow=false it returns
	// everything the engine has buffered so far and then EOF (the drain pass).
	// Logs 返回合并的 stdout+stderr 流。follow=true 时阻塞直到容器退出；
	// follow=false 时返回引擎已缓冲的全部输出然后 EOF（排空读取）。
	Logs(ctx context.Context, follow bool) (io.ReadCloser, error)

	// Stop stops the container, giving it the grace period before killing.
	Stop(ctx context.Context, timeout time.Duration) error

	// Remove deletes the stopped container.
	Remove(ctx context.Context) error
}
