package queue

import (
	"context"
	"strconv"

	Logger "github.com/Luismorlan/feedcast/utils/log"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	// SQS limits.
	MaxBatchEntries     = 10
	MaxReadTimeoutSec   = 20
	MaxReceivedMessages = 10
)

// NewSQSClient builds a client from the shared AWS config
// (~/.aws/credentials and AWS_* env).
func NewSQSClient() sqsiface.SQSAPI {
	sess := session.Must(session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	}))
	return sqs.New(sess)
}

func queueURL(ctx context.Context, client sqsiface.SQSAPI, queueName string) (string, error) {
	if queueName == "" {
		return "", errors.New("please specify queue name")
	}
	out, err := client.GetQueueUrlWithContext(ctx, &sqs.GetQueueUrlInput{
		QueueName: aws.String(queueName),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == sqs.ErrCodeQueueDoesNotExist {
			return "", errors.Errorf("unable to find queue %q", queueName)
		}
		return "", errors.Wrapf(err, "unable to resolve queue %q", queueName)
	}
	return aws.StringValue(out.QueueUrl), nil
}

// SQSWriter sends feed insertions to SQS, one message per insertion, in
// batches of at most MaxBatchEntries.
type SQSWriter struct {
	client    sqsiface.SQSAPI
	queueName string
	url       string
}

func NewSQSWriter(ctx context.Context, client sqsiface.SQSAPI, queueName string) (*SQSWriter, error) {
	url, err := queueURL(ctx, client, queueName)
	if err != nil {
		return nil, err
	}
	return &SQSWriter{client: client, queueName: queueName, url: url}, nil
}

func (w *SQSWriter) EnqueueBulk(ctx context.Context, items []FeedInsertion) error {
	for start := 0; start < len(items); start += MaxBatchEntries {
		end := start + MaxBatchEntries
		if end > len(items) {
			end = len(items)
		}
		if err := w.sendBatch(ctx, items[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (w *SQSWriter) sendBatch(ctx context.Context, items []FeedInsertion) error {
	entries := make([]*sqs.SendMessageBatchRequestEntry, 0, len(items))
	for _, item := range items {
		body, err := EncodeFeedInsertion(item)
		if err != nil {
			return err
		}
		entries = append(entries, &sqs.SendMessageBatchRequestEntry{
			Id:          aws.String(uuid.NewString()),
			MessageBody: aws.String(body),
		})
	}
	out, err := w.client.SendMessageBatchWithContext(ctx, &sqs.SendMessageBatchInput{
		QueueUrl: aws.String(w.url),
		Entries:  entries,
	})
	if err != nil {
		return errors.Wrapf(err, "send batch to %q", w.queueName)
	}
	if len(out.Failed) > 0 {
		return errors.Errorf("%d of %d entries rejected by %q: %s",
			len(out.Failed), len(entries), w.queueName, aws.StringValue(out.Failed[0].Message))
	}
	return nil
}

// SendDistributionJob enqueues a single distribution job.
func (w *SQSWriter) SendDistributionJob(ctx context.Context, job DistributionJob) error {
	body, err := EncodeDistributionJob(job)
	if err != nil {
		return err
	}
	_, err = w.client.SendMessageWithContext(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(w.url),
		MessageBody: aws.String(body),
	})
	return errors.Wrapf(err, "send distribution job to %q", w.queueName)
}

// SQSReader long-polls an SQS queue.
type SQSReader struct {
	client      sqsiface.SQSAPI
	readTimeout int64
	queueName   string
	url         string
}

func NewSQSReader(ctx context.Context, client sqsiface.SQSAPI, queueName string, readTimeout int64) (*SQSReader, error) {
	if readTimeout < 0 || readTimeout > MaxReadTimeoutSec {
		return nil, errors.Errorf("readTimeout should be >= 0 and <= %d", MaxReadTimeoutSec)
	}
	url, err := queueURL(ctx, client, queueName)
	if err != nil {
		return nil, err
	}
	return &SQSReader{
		client:      client,
		readTimeout: readTimeout,
		queueName:   queueName,
		url:         url,
	}, nil
}

func (r *SQSReader) ReceiveMessages(ctx context.Context, maxNumberOfMessages int64) ([]*Message, error) {
	if maxNumberOfMessages < 1 || maxNumberOfMessages > MaxReceivedMessages {
		return nil, errors.Errorf("maxNumberOfMessages should be >= 1 and <= %d", MaxReceivedMessages)
	}

	result, err := r.client.ReceiveMessageWithContext(ctx, &sqs.ReceiveMessageInput{
		QueueUrl: aws.String(r.url),
		AttributeNames: aws.StringSlice([]string{
			sqs.MessageSystemAttributeNameSentTimestamp,
			sqs.MessageSystemAttributeNameApproximateReceiveCount,
		}),
		MaxNumberOfMessages: aws.Int64(maxNumberOfMessages),
		WaitTimeSeconds:     aws.Int64(r.readTimeout),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read %q", r.queueName)
	}
	Logger.Log.Debugf("received %d messages from queue %s", len(result.Messages), r.queueName)

	res := make([]*Message, 0, len(result.Messages))
	for _, msg := range result.Messages {
		var count, sentTime int
		if val, ok := msg.Attributes[sqs.MessageSystemAttributeNameApproximateReceiveCount]; ok {
			count, _ = strconv.Atoi(aws.StringValue(val))
		}
		if val, ok := msg.Attributes[sqs.MessageSystemAttributeNameSentTimestamp]; ok {
			sentTime, _ = strconv.Atoi(aws.StringValue(val))
		}
		res = append(res, &Message{
			Body:          aws.StringValue(msg.Body),
			MessageID:     aws.StringValue(msg.MessageId),
			ReceivedTimes: count,
			SentTimestamp: sentTime,
			ReceiptHandle: aws.StringValue(msg.ReceiptHandle),
		})
	}
	return res, nil
}

func (r *SQSReader) DeleteMessage(ctx context.Context, msg *Message) error {
	_, err := r.client.DeleteMessageWithContext(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(r.url),
		ReceiptHandle: aws.String(msg.ReceiptHandle),
	})
	return errors.Wrapf(err, "delete message %s from %q", msg.MessageID, r.queueName)
}
