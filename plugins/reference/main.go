package main

import (
	"context"
	"fmt"
	"strings"

	pluginrpc "cgmlens/internal/modules/plugin/adapter/out/rpc"

	"github.com/hashicorp/go-plugin"
)

const (
	lowerBound = 40.0
	upperBound = 400.0
)

type server struct{}

func (s *server) GetMetadata(_ context.Context, _ *pluginrpc.Empty) (*pluginrpc.Metadata, error) {
	return &pluginrpc.Metadata{
		Name:         "reference",
		Version:      "1.0.0",
		Capabilities: []string{"command", "detect"},
	}, nil
}

func (s *server) ListCommands(_ context.Context, _ *pluginrpc.Empty) (*pluginrpc.ListCommandsResponse, error) {
	return &pluginrpc.ListCommandsResponse{Commands: []pluginrpc.CommandDescriptor{
		{ID: "echo", Title: "Echo", Description: "Echoes provided input", Kind: "command", TimeoutMS: 2000},
		{ID: "absolute-bounds", Title: "Absolute Bounds", Description: "Flags readings outside the sensor's reportable range", Kind: "detect", TimeoutMS: 2500},
	}}, nil
}

func (s *server) Execute(_ context.Context, in *pluginrpc.ExecuteRequest) (*pluginrpc.ExecuteResponse, error) {
	switch in.CommandID {
	case "echo":
		if strings.TrimSpace(in.InputJSON) == "" {
			return &pluginrpc.ExecuteResponse{Stdout: "echo", OutputJSON: `{"echo":""}`, ExitCode: 0}, nil
		}
		return &pluginrpc.ExecuteResponse{Stdout: in.InputJSON, OutputJSON: fmt.Sprintf(`{"echo":%q}`, in.InputJSON), ExitCode: 0}, nil
	default:
		return nil, fmt.Errorf("unknown command: %s", in.CommandID)
	}
}

// Detect flags readings outside the reportable 40-400 mg/dL range. Missing
// samples (null on the wire) are left to the host's built-in dropout rule.
func (s *server) Detect(_ context.Context, in *pluginrpc.DetectRequest) (*pluginrpc.DetectResponse, error) {
	mask := make([]bool, len(in.Series))
	for i, v := range in.Series {
		if v == nil {
			continue
		}
		if *v < lowerBound || *v > upperBound {
			mask[i] = true
		}
	}
	return &pluginrpc.DetectResponse{Detector: "absolute_bounds", Mask: mask}, nil
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: pluginrpc.HandshakeConfig,
		Plugins:         pluginrpc.PluginMap(&server{}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
