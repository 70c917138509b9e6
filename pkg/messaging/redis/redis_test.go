package redis

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/clinic-api/pkg/messaging"
)

var _ messaging.Broker = (*RedisBroker)(nil)

func TestNewRedisBrokerRejectsBadURL(t *testing.T) {
	_, err := NewRedisBroker(context.Background(), Config{URL: "http://not-redis"}, zerolog.Nop())
	assert.ErrorContains(t, err, "failed to parse Redis URL")
}
