package idempotency

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewStoreWithoutClient(t *testing.T) {
	assert.Nil(t, NewStore(nil, time.Hour))
}

func TestRedisKey(t *testing.T) {
	assert.Equal(t, "idempotency:retry-1", redisKey("retry-1"))
}
