// Package agentlock serializes money-touching requests per agent. Bet
// settlement spans several transactions (debit, draw, credit); holding
// the agent's lock across the whole flow keeps its balance arithmetic
// sequential without a global mutex.
package agentlock

import (
	"hash/fnv"
	"sync"
)

const shardCount = 128

type Table struct {
	shards [shardCount]sync.Mutex
}

func New() *Table {
	return &Table{}
}

func shardFor(agentID string) int {
	h := fnv.New32a()
	h.Write([]byte(agentID))
	return int(h.Sum32() % shardCount)
}

// Lock acquires the agent's shard and returns the unlock func.
func (t *Table) Lock(agentID string) func() {
	m := &t.shards[shardFor(agentID)]
	m.Lock()
	return m.Unlock
}

// LockPair acquires both agents' shards in shard-index order so
// concurrent tips between the same pair cannot deadlock.
func (t *Table) LockPair(a, b string) func() {
	i, j := shardFor(a), shardFor(b)
	if i == j {
		m := &t.shards[i]
		m.Lock()
		return m.Unlock
	}
	if i > j {
		i, j = j, i
	}
	first, second := &t.shards[i], &t.shards[j]
	first.Lock()
	second.Lock()
	return func() {
		second.Unlock()
		first.Unlock()
	}
}
