package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/celerix-dev/firmdesk/internal/documents"
)

func TestObserveTransition(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveTransition(documents.Submit, documents.ResultOK)
	m.ObserveTransition(documents.Submit, documents.ResultOK)
	m.ObserveTransition(documents.Sign, documents.ResultRejected)
	m.ObserveTransition(documents.Approve, documents.ResultError)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("submit", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("sign", ResultRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("approve", ResultError)))
}

func TestObserveBackup(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveBackup("create", 512, time.Now(), nil)
	m.ObserveBackup("restore", 0, time.Now(), errors.New("bad input"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.backups.WithLabelValues("create", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.backups.WithLabelValues("restore", ResultError)))
	assert.Equal(t, 512.0, testutil.ToFloat64(m.backupSize))
}

func TestDecodeFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.DecodeFailure("firmdesk:documents", errors.New("unexpected EOF"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.decodeFailures.WithLabelValues("firmdesk:documents")))
	n, err := testutil.GatherAndCount(reg, "firmdesk_store_decode_failures_total")
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
}
