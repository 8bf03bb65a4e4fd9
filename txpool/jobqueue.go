// Copyright 2024 The txtabs Authors
// This file is part of the txtabs library.
//
// The txtabs library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The txtabs library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the txtabs library. If not, see <http://www.gnu.org/licenses/>.

package txpool

import (
	"context"
	"sync"
)

// TxJobIdMax is the wrapping ring allocator's ceiling: job IDs run
// 1..TxJobIdMax inclusive, then wrap back to 1.
const TxJobIdMax = 999_999

// JobQueue is a two-tier FIFO: priority jobs jump the head, regular jobs
// append the tail. Submission is safe from any goroutine; Pop is meant
// to be called by exactly one worker (txpool.Pool.Run), since only one
// goroutine is ever meant to dispatch jobs against a given TxTabs.
type JobQueue struct {
	mu       sync.Mutex
	priority []*Job
	normal   []*Job
	nextID   uint64
	notify   chan struct{}
}

// NewJobQueue constructs an empty queue.
func NewJobQueue() *JobQueue {
	return &JobQueue{nextID: 1, notify: make(chan struct{}, 1)}
}

func (q *JobQueue) allocID() uint64 {
	id := q.nextID
	q.nextID++
	if q.nextID > TxJobIdMax {
		q.nextID = 1
	}
	return id
}

// wake signals a blocked Pop without blocking itself if one is already
// pending.
func (q *JobQueue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Submit enqueues job, returning its allocated ID. A priority job is
// appended to the priority tier and is popped before any normal job
// already queued; it never preempts a job already being executed.
func (q *JobQueue) Submit(job *Job) uint64 {
	q.mu.Lock()
	id := q.allocID()
	if job.Priority {
		q.priority = append(q.priority, job)
	} else {
		q.normal = append(q.normal, job)
	}
	q.mu.Unlock()
	q.wake()
	return id
}

// tryPop returns the next job without blocking, or nil if the queue is
// empty.
func (q *JobQueue) tryPop() *Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.priority) > 0 {
		job := q.priority[0]
		q.priority = q.priority[1:]
		return job
	}
	if len(q.normal) > 0 {
		job := q.normal[0]
		q.normal = q.normal[1:]
		return job
	}
	return nil
}

// Pop blocks until a job is available or ctx is done, returning
// (nil, false) in the latter case.
func (q *JobQueue) Pop(ctx context.Context) (*Job, bool) {
	for {
		if job := q.tryPop(); job != nil {
			return job, true
		}
		select {
		case <-q.notify:
			continue
		case <-ctx.Done():
			return nil, false
		}
	}
}

// Len reports the total number of jobs currently queued, priority and
// normal combined.
func (q *JobQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.priority) + len(q.normal)
}
