package metric

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skbidisigma1/groupme-cli/errors"
)

func newCounter(name string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "test",
		Name:      name,
	})
}

func TestRegisterAndServe(t *testing.T) {
	r := NewRegistry()
	c := newCounter("frames_total")
	require.NoError(t, r.Register("push", "frames_total", c))
	c.Add(3)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "groupme_test_frames_total 3")
}

func TestRegisterDuplicateKey(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("push", "frames_total", newCounter("frames_total")))
	err := r.Register("push", "frames_total", newCounter("frames_total_2"))
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestRegisterPrometheusConflict(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("a", "m", newCounter("same_name")))
	err := r.Register("b", "m", newCounter("same_name"))
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestUnregister(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("push", "frames_total", newCounter("frames_total")))
	assert.True(t, r.Unregister("push", "frames_total"))
	assert.False(t, r.Unregister("push", "frames_total"))

	// Re-registration after unregister must succeed.
	require.NoError(t, r.Register("push", "frames_total", newCounter("frames_total")))
}
