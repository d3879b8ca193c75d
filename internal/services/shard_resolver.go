package services

import (
	"hash/fnv"
)

// ResolveShard maps key onto one of shardCount shards. The mapping is stable
// for a given shard count.
func ResolveShard(key string, shardCount int) int {
	if shardCount <= 1 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(shardCount))
}
