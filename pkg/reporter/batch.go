package reporter

import "github.com/greener-hub/greener-reporter/pkg/ingress"

// batchBuffer holds pending testcases in submission order.
// It is not safe for concurrent use; Reporter guards it with its mutex.
type batchBuffer struct {
	pending  []ingress.Testcase
	capacity int
}

func newBatchBuffer(capacity int) batchBuffer {
	return batchBuffer{
		pending:  make([]ingress.Testcase, 0, capacity),
		capacity: capacity,
	}
}

// add appends tc and reports whether the buffer reached capacity.
func (b *batchBuffer) add(tc ingress.Testcase) bool {
	b.pending = append(b.pending, tc)
	return len(b.pending) >= b.capacity
}

// swap returns the pending testcases and leaves the buffer empty.
// It returns nil when there is nothing to flush.
func (b *batchBuffer) swap() []ingress.Testcase {
	if len(b.pending) == 0 {
		return nil
	}
	batch := b.pending
	b.pending = make([]ingress.Testcase, 0, b.capacity)
	return batch
}

func (b *batchBuffer) len() int {
	return len(b.pending)
}
