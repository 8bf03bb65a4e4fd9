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

import "sync/atomic"

// Metrics is a small in-process counter snapshot — not an exporter —
// kept so cmd/txpoolsim can print throughput figures without a
// monitoring backend.
type Metrics struct {
	inserted  atomic.Int64
	rejected  atomic.Int64
	evicted   atomic.Int64
	replaced  atomic.Int64
	jobsTotal atomic.Int64
}

// MetricsSnapshot is a read-only copy of Metrics at one instant.
type MetricsSnapshot struct {
	Inserted  int64
	Rejected  int64
	Evicted   int64
	Replaced  int64
	JobsTotal int64
}

// Snapshot reads every counter. It may observe counters updated after
// one another mid-read; the pool's single-threaded job dispatch makes
// this only theoretically possible from concurrent snapshot readers, not
// a correctness concern for the counters themselves.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Inserted:  m.inserted.Load(),
		Rejected:  m.rejected.Load(),
		Evicted:   m.evicted.Load(),
		Replaced:  m.replaced.Load(),
		JobsTotal: m.jobsTotal.Load(),
	}
}
