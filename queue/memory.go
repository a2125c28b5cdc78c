package queue

import (
	"context"
	"strconv"
	"sync"
)

// MemoryQueue is an in-process FeedInsertionQueue and MessageReader. Enqueued
// insertions can be read back as messages, which lets a feed insertion worker
// consume what a dispatcher produced without SQS.
type MemoryQueue struct {
	mu      sync.Mutex
	calls   [][]FeedInsertion
	pending []*Message
	nextID  int
	// Err, when set, fails every EnqueueBulk call.
	Err error
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

func (q *MemoryQueue) EnqueueBulk(ctx context.Context, items []FeedInsertion) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.Err != nil {
		return q.Err
	}
	q.calls = append(q.calls, append([]FeedInsertion{}, items...))
	for _, item := range items {
		body, err := EncodeFeedInsertion(item)
		if err != nil {
			return err
		}
		q.push(body)
	}
	return nil
}

// Push appends a raw message body.
func (q *MemoryQueue) Push(body string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.push(body)
}

func (q *MemoryQueue) push(body string) {
	q.nextID++
	id := strconv.Itoa(q.nextID)
	q.pending = append(q.pending, &Message{Body: body, MessageID: id, ReceiptHandle: id})
}

// Calls returns the item slices of every EnqueueBulk call, in order.
func (q *MemoryQueue) Calls() [][]FeedInsertion {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([][]FeedInsertion{}, q.calls...)
}

// Items flattens Calls.
func (q *MemoryQueue) Items() []FeedInsertion {
	res := []FeedInsertion{}
	for _, c := range q.Calls() {
		res = append(res, c...)
	}
	return res
}

// ReceiveMessages returns up to maxNumberOfMessages undeleted messages. A
// message stays pending until deleted.
func (q *MemoryQueue) ReceiveMessages(ctx context.Context, maxNumberOfMessages int64) ([]*Message, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := int(maxNumberOfMessages)
	if n > len(q.pending) {
		n = len(q.pending)
	}
	res := make([]*Message, 0, n)
	for _, msg := range q.pending[:n] {
		msg.ReceivedTimes++
		res = append(res, msg)
	}
	return res, nil
}

func (q *MemoryQueue) DeleteMessage(ctx context.Context, msg *Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, m := range q.pending {
		if m.ReceiptHandle == msg.ReceiptHandle {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return nil
		}
	}
	return nil
}

// Pending is the number of undeleted messages.
func (q *MemoryQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
