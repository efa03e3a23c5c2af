package sink

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	cwl "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	cwltypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	liberrors "github.com/livp123/logship/pkg/errors"
)

// cloudWatchAPI is the subset of the CloudWatch Logs client the sink uses.
// cloudWatchAPI 是 sink 使用的 CloudWatch Logs 客户端子集。
type cloudWatchAPI interface {
	CreateLogGroup(ctx context.Context, in *cwl.CreateLogGroupInput, opts ...func(*cwl.Options)) (*cwl.CreateLogGroupOutput, error)
	CreateLogStream(ctx context.Context, in *cwl.CreateLogStreamInput, opts ...func(*cwl.Options)) (*cwl.CreateLogStreamOutput, error)
	PutLogEvents(ctx context.Context, in *cwl.PutLogEventsInput, opts ...func(*cwl.Options)) (*cwl.PutLogEventsOutput, error)
}

// AWSOptions carries the connection settings for the CloudWatch Logs client.
// All values are passed through unchanged.
// AWSOptions 携带 CloudWatch Logs 客户端的连接设置。所有值原样传递。
type AWSOptions struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
}

// CloudWatch implements Sink against AWS CloudWatch Logs.
// CloudWatch 基于 AWS CloudWatch Logs 实现 Sink。
type CloudWatch struct {
	client cloudWatchAPI
	log    *zap.SugaredLogger
}

// NewCloudWatch builds a CloudWatch sink. Static credentials take precedence
// when provided; otherwise the default AWS credential chain applies.
// NewCloudWatch 构建 CloudWatch sink。提供静态凭证时优先使用，否则采用默认凭证链。
func NewCloudWatch(ctx context.Context, opts AWSOptions, log *zap.SugaredLogger) (*CloudWatch, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	var clientOpts []func(*cwl.Options)
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *cwl.Options) {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		})
	}

	return &CloudWatch{
		client: cwl.NewFromConfig(cfg, clientOpts...),
		log:    log,
	}, nil
}

// EnsureGroup creates the log group, treating an existing group as success.
// EnsureGroup 创建日志组，已存在的组视为成功。
func (c *CloudWatch) EnsureGroup(ctx context.Context, group string) error {
	_, err := c.client.CreateLogGroup(ctx, &cwl.CreateLogGroupInput{
		LogGroupName: aws.String(group),
	})
	if err != nil {
		var exists *cwltypes.ResourceAlreadyExistsException
		if errors.As(err, &exists) {
			c.log.Infof("ℹ️  Log group %s already exists", group)
			return nil
		}
		return fmt.Errorf("create log group %s: %w", group, err)
	}
	c.log.Infof("✅ Created log group %s", group)
	return nil
}

// EnsureStream creates the log stream, treating an existing stream as success.
// EnsureStream 创建日志流，已存在的流视为成功。
func (c *CloudWatch) EnsureStream(ctx context.Context, group string, stream string) error {
	_, err := c.client.CreateLogStream(ctx, &cwl.CreateLogStreamInput{
		LogGroupName:  aws.String(group),
		LogStreamName: aws.String(stream),
	})
	if err != nil {
		var exists *cwltypes.ResourceAlreadyExistsException
		if errors.As(err, &exists) {
			c.log.Infof("ℹ️  Log stream %s already exists", stream)
			return nil
		}
		return fmt.Errorf("create log stream %s/%s: %w", group, stream, err)
	}
	c.log.Infof("✅ Created log stream %s", stream)
	return nil
}

// PutEvents appends the batch under the given sequence token. Empty batches
// return the token unchanged without a remote call.
// PutEvents 在给定序列令牌下追加批次。空批次不发起远程调用，原样返回令牌。
func (c *CloudWatch) PutEvents(ctx context.Context, group string, stream string, batch Batch, token string) (string, error) {
	if len(batch) == 0 {
		return token, nil
	}

	events := make([]cwltypes.InputLogEvent, 0, len(batch))
	for _, ev := range batch {
		events = append(events, cwltypes.InputLogEvent{
			Timestamp: aws.Int64(ev.Timestamp.UnixMilli()),
			Message:   aws.String(ev.Message),
		})
	}

	in := &cwl.PutLogEventsInput{
		LogGroupName:  aws.String(group),
		LogStreamName: aws.String(stream),
		LogEvents:     events,
	}
	if token != "" {
		in.SequenceToken = aws.String(token)
	}

	resp, err := c.client.PutLogEvents(ctx, in)
	if err != nil {
		return token, classify(err)
	}

	next := aws.ToString(resp.NextSequenceToken)
	if next == "" {
		// Newer store generations no longer issue tokens; keep threading the
		// last known one.
		// 新版存储不再签发令牌；继续沿用上一个已知令牌。
		next = token
	}
	return next, nil
}

// classify maps a remote rejection onto the pipeline's error taxonomy:
// throttling is recoverable, everything else abandons the batch.
// classify 将远程拒绝映射到管道错误分类：节流可恢复，其余放弃批次。
func classify(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "Throttling", "TooManyRequestsException":
			return liberrors.NewThrottleError(err)
		}
	}
	return err
}
