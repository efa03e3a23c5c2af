package container

import (
	"context"
	"io"
	"time"

	containertypes "github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"go.uber.org/zap"

	liberrors "github.com/livp123/logship/pkg/errors"
)

// DockerRuntime implements Runtime on top of the Docker Engine API.
// DockerRuntime 在 Docker Engine API 之上实现 Runtime。
type DockerRuntime struct {
	cli *client.Client
	log *zap.SugaredLogger
}

// NewDockerRuntime connects to the local Docker daemon using the standard
// environment configuration (DOCKER_HOST etc.).
// NewDockerRuntime 使用标准环境配置连接本地 Docker 守护进程。
func NewDockerRuntime(log *zap.SugaredLogger) (*DockerRuntime, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, err
	}
	return &DockerRuntime{cli: cli, log: log}, nil
}

// Start creates and starts a container running `/bin/bash -c <command>` in
// the given image.
// Start 创建并启动容器，在给定镜像中运行 `/bin/bash -c <command>`。
func (r *DockerRuntime) Start(ctx context.Context, image string, command string) (Handle, error) {
	resp, err := r.cli.ContainerCreate(ctx, &containertypes.Config{
		Image: image,
		Cmd:   []string{"/bin/bash", "-c", command},
	}, nil, nil, nil, "")
	if err != nil {
		return nil, liberrors.NewContainerError(liberrors.ErrContainerCreate, image, err)
	}

	if err := r.cli.ContainerStart(ctx, resp.ID, containertypes.StartOptions{}); err != nil {
		// The container exists but never ran; remove it so the failed start
		// leaves nothing behind.
		// 容器已创建但从未运行；删除它以免失败的启动留下残留。
		if rmErr := r.cli.ContainerRemove(context.WithoutCancel(ctx), resp.ID, containertypes.RemoveOptions{}); rmErr != nil {
			r.log.Warnf("⚠️  Failed to remove container %s after start failure: %v", shortID(resp.ID), rmErr)
		}
		return nil, liberrors.NewContainerError(liberrors.ErrContainerStart, shortID(resp.ID), err)
	}

	r.log.Infof("🚀 Started container %s (image %s)", shortID(resp.ID), image)
	return &dockerHandle{cli: r.cli, id: resp.ID, log: r.log}, nil
}

// dockerHandle is the Handle for one container managed by DockerRuntime.
type dockerHandle struct {
	cli *client.Client
	id  string
	log *zap.SugaredLogger
}

func (h *dockerHandle) ID() string {
	return h.id
}

// Logs attaches to the container's output. The engine multiplexes stdout and
// stderr into one stream for non-TTY containers, so both are demuxed into a
// single pipe in arrival order.
// Logs 附加到容器输出。非 TTY 容器的 stdout 和 stderr 被引擎复用为一个流，
// 因此按到达顺序解复用到同一个管道。
func (h *dockerHandle) Logs(ctx context.Context, follow bool) (io.ReadCloser, error) {
	rc, err := h.cli.ContainerLogs(ctx, h.id, containertypes.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     follow,
	})
	if err != nil {
		return nil, liberrors.NewContainerError(liberrors.ErrContainerLogs, shortID(h.id), err)
	}

	pr, pw := io.Pipe()
	go func() {
		_, copyErr := stdcopy.StdCopy(pw, pw, rc)
		rc.Close()
		pw.CloseWithError(copyErr)
	}()
	return pr, nil
}

func (h *dockerHandle) Stop(ctx context.Context, timeout time.Duration) error {
	seconds := int(timeout.Seconds())
	if err := h.cli.ContainerStop(ctx, h.id, containertypes.StopOptions{Timeout: &seconds}); err != nil {
		return liberrors.NewContainerError(liberrors.ErrContainerStop, shortID(h.id), err)
	}
	h.log.Infof("🛑 Stopped container %s", shortID(h.id))
	return nil
}

func (h *dockerHandle) Remove(ctx context.Context) error {
	if err := h.cli.ContainerRemove(ctx, h.id, containertypes.RemoveOptions{}); err != nil {
		return liberrors.NewContainerError(liberrors.ErrContainerRemove, shortID(h.id), err)
	}
	h.log.Infof("🧹 Removed container %s", shortID(h.id))
	return nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
