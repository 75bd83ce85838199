package exporter

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/SyntropyNet/nwswitch/agent/client"
	"github.com/SyntropyNet/nwswitch/pkg/nwconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInstance struct {
	name   string
	status client.Status
	stats  client.Stats
}

func (f fakeInstance) Name() string          { return f.name }
func (f fakeInstance) Status() client.Status { return f.status }
func (f fakeInstance) Stats() client.Stats   { return f.stats }

func TestMetrics(t *testing.T) {
	wifi := fakeInstance{
		name:   "wifi",
		status: client.Status{State: nwconn.KindReady},
		stats:  client.Stats{Sent: 12, Echoes: 11, Restarts: 2},
	}
	wired := fakeInstance{
		name:   "wired",
		status: client.Status{State: nwconn.KindWaiting},
		stats:  client.Stats{SendErrors: 1, PathChanges: 3, PathUpdates: 4},
	}

	exp, err := New(9999, NewCollector(wifi, wired))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)

	assert.Contains(t, text, `nwswitch_connection_state{instance="wifi",state="ready"} 1`)
	assert.Contains(t, text, `nwswitch_connection_state{instance="wifi",state="waiting"} 0`)
	assert.Contains(t, text, `nwswitch_connection_state{instance="wired",state="waiting"} 1`)
	assert.Contains(t, text, `nwswitch_messages_sent_total{instance="wifi"} 12`)
	assert.Contains(t, text, `nwswitch_echoes_received_total{instance="wifi"} 11`)
	assert.Contains(t, text, `nwswitch_restarts_total{instance="wifi"} 2`)
	assert.Contains(t, text, `nwswitch_send_errors_total{instance="wired"} 1`)
	assert.Contains(t, text, `nwswitch_path_changes_total{instance="wired"} 3`)
	assert.Contains(t, text, `nwswitch_path_updates_total{instance="wired"} 4`)
}
