package agent

import (
	"github.com/SyntropyNet/nwswitch/agent/common"
	"github.com/SyntropyNet/nwswitch/internal/logger"
)

func (a *Agent) addService(s common.Service) {
	a.services = append(a.services, s)
}

func (a *Agent) startServices() error {
	for _, s := range a.services {
		logger.Info().Printf("%s Starting %s service.\n", pkgName, s.Name())
		err := s.Run(a.ctx)
		if err != nil {
			logger.Error().Printf("%s Service %s: %s\n", pkgName, s.Name(), err.Error())
			return err
		}
	}
	return nil
}
