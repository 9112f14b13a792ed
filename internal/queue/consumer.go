package queue

import (
	"context"

	"github.com/aws/aws-sdk-go/service/sqs"
)

// Consumer is what the build worker polls. The concrete implementation is
// SQSClient; tests substitute a fake.
type Consumer interface {
	ReceiveMessages(ctx context.Context) ([]*sqs.Message, error)
	DeleteMessage(ctx context.Context, receiptHandle string) error
}

var _ Consumer = (*SQSClient)(nil)
