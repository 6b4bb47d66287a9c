package adapter

import (
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanaksh-py/startup-backend/internal/infrastructure/queue/port"
)

func TestToAsynqOptionsMapsFields(t *testing.T) {
	opts := toAsynqOptions([]port.EnqueueOption{{
		Queue:     "lifecycle",
		TaskID:    "warn:startup:1:2026-01-01",
		MaxRetry:  5,
		Timeout:   time.Minute,
		UniqueTTL: time.Hour,
	}})

	types := make(map[asynq.OptionType]any, len(opts))
	for _, o := range opts {
		types[o.Type()] = o.Value()
	}
	assert.Equal(t, "lifecycle", types[asynq.QueueOpt])
	assert.Equal(t, "warn:startup:1:2026-01-01", types[asynq.TaskIDOpt])
	assert.Equal(t, 5, types[asynq.MaxRetryOpt])
	assert.Equal(t, time.Minute, types[asynq.TimeoutOpt])
	assert.Equal(t, time.Hour, types[asynq.UniqueOpt])
}

func TestToAsynqOptionsEmpty(t *testing.T) {
	assert.Empty(t, toAsynqOptions(nil))
	assert.Empty(t, toAsynqOptions([]port.EnqueueOption{{}}))
}

func TestParseRedisRequiresURL(t *testing.T) {
	_, err := parseRedis("")
	require.Error(t, err)

	opt, err := parseRedis("redis://localhost:6379/2")
	require.NoError(t, err)
	assert.NotNil(t, opt)
}
