package queue

import (
	"context"
	"encoding/json"

	"github.com/openstax/rope/internal/model"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/sqs"
)

// Sender is the slice of the SQS API the producer needs.
type Sender interface {
	SendMessageWithContext(ctx aws.Context, input *sqs.SendMessageInput, opts ...request.Option) (*sqs.SendMessageOutput, error)
}

type Producer struct {
	sender   Sender
	queueURL string
}

func NewProducer(sqsClient *SQSClient) *Producer {
	return &Producer{
		sender:   sqsClient.Client(),
		queueURL: sqsClient.QueueURL(),
	}
}

// NewProducerWith wires an explicit sender, used by tests.
func NewProducerWith(sender Sender, queueURL string) *Producer {
	return &Producer{sender: sender, queueURL: queueURL}
}

func (p *Producer) EnqueueBuildWorkItem(ctx context.Context, item model.BuildWorkItem) error {
	body, err := json.Marshal(item)
	if err != nil {
		return err
	}

	_, err = p.sender.SendMessageWithContext(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
	})
	return err
}
