// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"io"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopByDefault(t *testing.T) {
	// all meter calls are safe before initialization
	Counter("noop_count").Add(1)
	CounterVec("noop_count_vec", []string{"a"}).AddWithLabel(1, map[string]string{"a": "b"})
	Gauge("noop_gauge").Set(1)
	GaugeVec("noop_gauge_vec", []string{"a"}).SetWithLabel(1, map[string]string{"a": "b"})
	Histogram("noop_hist", nil).Observe(1)
}

func TestPrometheusMetrics(t *testing.T) {
	InitializePrometheusMetrics()

	Counter("test_count").Add(3)
	Counter("test_count").Add(2)
	CounterVec("test_count_vec", []string{"kind"}).AddWithLabel(4, map[string]string{"kind": "x"})
	Gauge("test_gauge").Set(7)
	GaugeVec("test_gauge_vec", []string{"kind"}).SetWithLabel(8, map[string]string{"kind": "y"})
	Histogram("test_hist", BucketHTTPReqs).Observe(50)

	rec := httptest.NewRecorder()
	HTTPHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "meridian_test_count 5")
	assert.Contains(t, string(body), `meridian_test_count_vec{kind="x"} 4`)
	assert.Contains(t, string(body), "meridian_test_gauge 7")
	assert.Contains(t, string(body), `meridian_test_gauge_vec{kind="y"} 8`)
	assert.Contains(t, string(body), "meridian_test_hist_count 1")
}

func TestLazyLoad(t *testing.T) {
	var created int32
	load := LazyLoad(func() int32 {
		return atomic.AddInt32(&created, 1)
	})

	assert.Equal(t, int32(1), load())
	assert.Equal(t, int32(1), load())
	assert.Equal(t, int32(1), atomic.LoadInt32(&created))
}
