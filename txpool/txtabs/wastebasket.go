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

package txtabs

import "container/list"

// wastebasket is a bounded FIFO: a short-lived record of recently
// rejected items, kept around so callers (and diagnostics endpoints)
// can ask "why was my transaction dropped" shortly after the fact.
// Pushing past capacity evicts the oldest entry first.
type wastebasket struct {
	cap   int
	items *list.List // of *ItemRef, oldest at Front
}

func newWastebasket(capacity int) *wastebasket {
	return &wastebasket{cap: capacity, items: list.New()}
}

// Push records item as rejected, evicting the oldest entry if the
// wastebasket is already at capacity. A capacity of zero discards every
// push silently.
func (w *wastebasket) Push(item *ItemRef) {
	if w.cap <= 0 {
		return
	}
	w.items.PushBack(item)
	for w.items.Len() > w.cap {
		w.items.Remove(w.items.Front())
	}
}

// Len returns the number of rejected items currently retained.
func (w *wastebasket) Len() int { return w.items.Len() }

// Cap returns the wastebasket's configured capacity.
func (w *wastebasket) Cap() int { return w.cap }

// Flush drains and returns every retained item, oldest first, leaving
// the wastebasket empty.
func (w *wastebasket) Flush() []*ItemRef {
	out := make([]*ItemRef, 0, w.items.Len())
	for e := w.items.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*ItemRef))
	}
	w.items.Init()
	return out
}

// Ascend visits every retained item, oldest first, without draining.
func (w *wastebasket) Ascend(fn func(*ItemRef) bool) {
	for e := w.items.Front(); e != nil; e = e.Next() {
		if !fn(e.Value.(*ItemRef)) {
			return
		}
	}
}
