package cliconfig

import (
	"os"
	"runtime"
)

// AgentInfo identifies the machine the agent runs on. Sinks send it with
// every batch.
type AgentInfo struct {
	Hostname string
	OSArch   string
}

// LoadAgentInfo fills AgentInfo from the OS. An unknown hostname becomes
// "unknown".
func LoadAgentInfo() AgentInfo {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	return AgentInfo{
		Hostname: host,
		OSArch:   runtime.GOOS + "/" + runtime.GOARCH,
	}
}
