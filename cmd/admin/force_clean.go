package main

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
)

// Quick escape hatch: arm the force-clean marker directly in Redis when the
// sentinel binary itself cannot start.
func main() {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/0"
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		panic(err)
	}
	rdb := redis.NewClient(opts)
	defer rdb.Close()

	namespace := os.Getenv("SENTINEL_NAMESPACE")
	if namespace == "" {
		namespace = "sentinel"
	}

	key := fmt.Sprintf("%s:kv:gatherly:force_clean", namespace)
	if err := rdb.Set(context.Background(), key, "true", 0).Err(); err != nil {
		panic(err)
	}

	fmt.Println("Force-clean armed for the next load")
}
