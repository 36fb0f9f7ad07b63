package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveChatOperation(t *testing.T) {
	before := testutil.CollectAndCount(ChatOperationDuration)
	ObserveChatOperation("test_op_unique", time.Now(), nil)
	ObserveChatOperation("test_op_unique", time.Now(), errors.New("boom"))
	assert.Equal(t, before+2, testutil.CollectAndCount(ChatOperationDuration))
}

func TestCacheCounters(t *testing.T) {
	RecordCacheHit("test_cache")
	RecordCacheHit("test_cache")
	RecordCacheMiss("test_cache")
	RecordCacheError("test_cache")

	assert.Equal(t, 2.0, testutil.ToFloat64(CacheRequests.WithLabelValues("test_cache", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(CacheRequests.WithLabelValues("test_cache", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(CacheRequests.WithLabelValues("test_cache", "error")))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "error", Outcome(errors.New("x")))
}
