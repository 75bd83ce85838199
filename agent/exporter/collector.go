package exporter

import (
	"github.com/SyntropyNet/nwswitch/agent/client"
	"github.com/SyntropyNet/nwswitch/pkg/nwconn"
	"github.com/prometheus/client_golang/prometheus"
)

// Instance is a monitored connection. client.Manager implements it.
type Instance interface {
	Name() string
	Status() client.Status
	Stats() client.Stats
}

type instancesCollector struct {
	instances []Instance
}

// NewCollector creates prometheus collector over all instances
func NewCollector(instances ...Instance) prometheus.Collector {
	return &instancesCollector{instances: instances}
}

var (
	descState = prometheus.NewDesc(
		"nwswitch_connection_state",
		"Connection state of an instance, 1 for the current state",
		[]string{"instance", "state"}, nil,
	)
	descSent = prometheus.NewDesc(
		"nwswitch_messages_sent_total",
		"Heartbeat messages sent",
		[]string{"instance"}, nil,
	)
	descEchoes = prometheus.NewDesc(
		"nwswitch_echoes_received_total",
		"Echo responses received",
		[]string{"instance"}, nil,
	)
	descSendErrors = prometheus.NewDesc(
		"nwswitch_send_errors_total",
		"Failed heartbeat sends",
		[]string{"instance"}, nil,
	)
	descRestarts = prometheus.NewDesc(
		"nwswitch_restarts_total",
		"Restarts of a waiting connection",
		[]string{"instance"}, nil,
	)
	descCancels = prometheus.NewDesc(
		"nwswitch_cancels_total",
		"Cancels of a failed connection",
		[]string{"instance"}, nil,
	)
	descReconnects = prometheus.NewDesc(
		"nwswitch_reconnects_total",
		"New connections set up after cancel",
		[]string{"instance"}, nil,
	)
	descPathChanges = prometheus.NewDesc(
		"nwswitch_path_changes_total",
		"Interface label changes",
		[]string{"instance"}, nil,
	)
	descPathUpdates = prometheus.NewDesc(
		"nwswitch_path_updates_total",
		"Distinct path snapshots processed",
		[]string{"instance"}, nil,
	)
)

func (ic *instancesCollector) Describe(ch chan<- *prometheus.Desc) {
	prometheus.DescribeByCollect(ic, ch)
}

func (ic *instancesCollector) Collect(ch chan<- prometheus.Metric) {
	for _, inst := range ic.instances {
		name := inst.Name()
		current := inst.Status().State

		for _, kind := range nwconn.Kinds() {
			val := 0.0
			if kind == current {
				val = 1
			}
			ch <- prometheus.MustNewConstMetric(descState, prometheus.GaugeValue, val, name, kind.String())
		}

		stats := inst.Stats()
		counters := []struct {
			desc *prometheus.Desc
			val  uint64
		}{
			{descSent, stats.Sent},
			{descEchoes, stats.Echoes},
			{descSendErrors, stats.SendErrors},
			{descRestarts, stats.Restarts},
			{descCancels, stats.Cancels},
			{descReconnects, stats.Reconnects},
			{descPathChanges, stats.PathChanges},
			{descPathUpdates, stats.PathUpdates},
		}
		for _, c := range counters {
			ch <- prometheus.MustNewConstMetric(c.desc, prometheus.CounterValue, float64(c.val), name)
		}
	}
}
