package agent

import (
	"context"

	"github.com/SyntropyNet/nwswitch/agent/client"
	"github.com/SyntropyNet/nwswitch/agent/common"
	"github.com/SyntropyNet/nwswitch/agent/exporter"
	"github.com/SyntropyNet/nwswitch/agent/statussrv"
	"github.com/SyntropyNet/nwswitch/internal/config"
	"github.com/SyntropyNet/nwswitch/internal/env"
	"github.com/SyntropyNet/nwswitch/internal/logger"
	"github.com/SyntropyNet/nwswitch/pkg/linkinfo"
	"github.com/SyntropyNet/nwswitch/pkg/netpath"
	"github.com/SyntropyNet/nwswitch/pkg/pubip"
	"github.com/SyntropyNet/nwswitch/pkg/slock"
)

const pkgName = "NWSwitch Agent. "

type Agent struct {
	slock.AtomicServiceLock
	ctx       context.Context
	source    netpath.Source
	instances []*client.Manager
	services  []common.Service
}

// New allocates agent with one connection manager per configured
// interface constraint, plus optional metrics exporter and status server.
func New(ctx context.Context) (*Agent, error) {
	return newAgent(ctx, netpath.NewWatcher(), client.NewTCPConnection)
}

func newAgent(ctx context.Context, source netpath.Source, factory client.Factory) (*Agent, error) {
	a := &Agent{
		ctx:    ctx,
		source: source,
	}

	for _, constraint := range config.Instances() {
		m := client.New(client.Config{
			Name:          constraint.String(),
			Address:       config.GetEchoAddress(),
			Constraint:    constraint,
			Interval:      config.EchoInterval(),
			DropTime:      config.DropTime(),
			LogSize:       config.LogBufferSize(),
			Interfaces:    source,
			Info:          infoProvider(constraint),
			NewConnection: factory,
		})
		a.instances = append(a.instances, m)
		a.addService(m)
	}

	if config.MetricsExporterEnabled() {
		instances := make([]exporter.Instance, 0, len(a.instances))
		for _, m := range a.instances {
			instances = append(instances, m)
		}
		exp, err := exporter.New(config.MetricsExporterPort(), exporter.NewCollector(instances...))
		if err != nil {
			return nil, err
		}
		a.addService(exp)
	}

	if config.StatusServerEnabled() {
		instances := make([]statussrv.Instance, 0, len(a.instances))
		for _, m := range a.instances {
			instances = append(instances, m)
		}
		a.addService(statussrv.New(config.StatusServerPort(), config.EchoInterval(), instances...))
	}

	return a, nil
}

// Each instance has its own resolver, instances share nothing mutable
func infoProvider(constraint netpath.InterfaceType) linkinfo.Provider {
	public := linkinfo.PublicIP{
		Resolver: pubip.New(config.StunServers(), env.PublicIPUpdatePeriod),
	}
	if constraint == netpath.Wireless {
		return linkinfo.Multi{linkinfo.Wireless{}, public}
	}
	return public
}

func (a *Agent) Instances() []*client.Manager {
	return a.instances
}

// Run starts all services. Agent stops when its context is done.
func (a *Agent) Run() error {
	if !a.TryLock() {
		logger.Warning().Println(pkgName, "agent is already running")
		return nil
	}
	return a.startServices()
}

// Wait blocks until all instances have stopped
func (a *Agent) Wait() {
	for _, m := range a.instances {
		<-m.Done()
	}
}
