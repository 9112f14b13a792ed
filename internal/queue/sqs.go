package queue

import (
	"context"

	"github.com/openstax/rope/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
)

type SQSClient struct {
	client   *sqs.SQS
	queueURL string
	cfg      *config.Config
}

func NewSQSClient(cfg *config.Config) (*SQSClient, error) {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.SQS.Region),
	}
	if cfg.SQS.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.SQS.Endpoint)
	}
	if cfg.SQS.AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.SQS.AccessKey, cfg.SQS.SecretKey, "")
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, err
	}

	client := sqs.New(sess)

	urlOutput, err := client.GetQueueUrl(&sqs.GetQueueUrlInput{
		QueueName: aws.String(cfg.SQS.QueueName),
	})
	if err != nil {
		return nil, err
	}

	return &SQSClient{
		client:   client,
		queueURL: *urlOutput.QueueUrl,
		cfg:      cfg,
	}, nil
}

func (c *SQSClient) QueueURL() string {
	return c.queueURL
}

func (c *SQSClient) Client() *sqs.SQS {
	return c.client
}

// ReceiveMessages long-polls the queue for up to the configured batch size.
func (c *SQSClient) ReceiveMessages(ctx context.Context) ([]*sqs.Message, error) {
	output, err := c.client.ReceiveMessageWithContext(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.queueURL),
		MaxNumberOfMessages: aws.Int64(c.cfg.SQS.MaxMessages),
		WaitTimeSeconds:     aws.Int64(c.cfg.SQS.WaitTime),
	})
	if err != nil {
		return nil, err
	}
	return output.Messages, nil
}

func (c *SQSClient) DeleteMessage(ctx context.Context, receiptHandle string) error {
	_, err := c.client.DeleteMessageWithContext(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	return err
}
