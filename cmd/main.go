package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/SyntropyNet/nwswitch/agent"
	"github.com/SyntropyNet/nwswitch/internal/config"
	"github.com/SyntropyNet/nwswitch/internal/logger"
	_ "go.uber.org/automaxprocs"
)

const fullAppName = "NWSwitch Agent. "

var lockFile = filepath.Join(os.TempDir(), "nwswitch.lock")

func agentLock() {
	pidStr, _ := os.ReadFile(lockFile)
	pid, _ := strconv.Atoi(strings.TrimSpace(string(pidStr)))

	if pid > 0 {
		_, err := os.Stat(fmt.Sprintf("/proc/%d", pid))
		if err == nil {
			// Another agent instance is running. Exit.
			logger.Error().Println(fullAppName, "Another agent instance is running")
			logger.Error().Println(fullAppName, "check lock file", lockFile)
			os.Exit(-16) // errno.h -EBUSY
		} else {
			// Agent is not running. Just for some reasons lock file is present. Continue.
			logger.Warning().Println(fullAppName, "residual lock file found. An agent was killed or crashed before?")
		}
	}

	os.WriteFile(lockFile, []byte(strconv.Itoa(os.Getpid())), 0644)
}

func agentUnlock() {
	os.Remove(lockFile)
}

func setupLogging() io.Closer {
	writers := []io.Writer{os.Stdout}

	var logFile io.WriteCloser
	if path := config.GetLogFile(); path != "" {
		logFile = logger.RotatingFile(path)
		writers = append(writers, logger.JSONWriter(logFile))
	}

	logger.SetupGlobalLoger(config.GetDebugLevel(), writers...)
	return logFile
}

func main() {
	exitCode := 0
	defer func() { os.Exit(exitCode) }()

	execName := os.Args[0]

	showVersionAndExit := flag.Bool("version", false, "Show version and exit")

	flag.Parse()
	if *showVersionAndExit {
		fmt.Printf("%s (%s):\t%s\n\n", fullAppName, execName, config.GetFullVersion())
		return
	}

	config.Init()
	defer config.Close()

	if logFile := setupLogging(); logFile != nil {
		defer logFile.Close()
	}

	agentLock()
	defer agentUnlock()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	nwswitch, err := agent.New(ctx)
	if err != nil {
		logger.Error().Println(fullAppName, "Could not create agent", err)
		exitCode = -12 // errno.h -ENOMEM
		return
	}

	logger.Info().Println(fullAppName, execName, config.GetFullVersion(), "started.")
	logger.Info().Println(fullAppName, "Echo endpoint", config.GetEchoAddress(), "instances", config.Instances())

	if err := nwswitch.Run(); err != nil {
		logger.Error().Println(fullAppName, "Could not start agent", err)
		exitCode = -5 // errno.h -EIO
		return
	}

	// Wait for SIGINT or SIGTERM to terminate app
	terminate := make(chan os.Signal, 1)
	signal.Notify(terminate, os.Interrupt, syscall.SIGTERM)
	<-terminate
	logger.Info().Println(fullAppName, "terminating")

	cancel()
	nwswitch.Wait()
}
