package out

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	triggerrpc "activitylog/internal/modules/trigger/adapter/out/rpc"
	"activitylog/internal/modules/trigger/domain"
	triggerout "activitylog/internal/modules/trigger/port/out"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 2 * time.Second
)

// GRPCHost runs listeners as go-plugin child processes. Plugin stderr is
// routed through pluginLogger.
type GRPCHost struct {
	pluginLogger hclog.Logger
}

func NewGRPCHost(pluginLogger hclog.Logger) triggerout.Host {
	if pluginLogger == nil {
		pluginLogger = hclog.NewNullLogger()
	}
	return &GRPCHost{pluginLogger: pluginLogger}
}

func (h *GRPCHost) Launch(_ context.Context, manifest domain.Manifest) (triggerout.Listener, error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  triggerrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          triggerrpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger:           h.pluginLogger.Named(manifest.Name),
	})
	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("start plugin %s: %w", manifest.Name, err)
	}
	raw, err := rpcClient.Dispense(triggerrpc.PluginMapKey)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("dispense plugin %s: %w", manifest.Name, err)
	}
	typed, ok := raw.(triggerrpc.TriggerClient)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("plugin %s: rpc client type mismatch", manifest.Name)
	}
	return &grpcListener{client: client, rpc: typed}, nil
}

// grpcListener keeps one plugin process alive across polls.
type grpcListener struct {
	client *plugin.Client
	rpc    triggerrpc.TriggerClient
}

func (l *grpcListener) Metadata(ctx context.Context) (domain.Metadata, error) {
	callCtx, cancel := callContext(ctx)
	defer cancel()
	meta, err := l.rpc.GetMetadata(callCtx)
	if err != nil {
		return domain.Metadata{}, err
	}
	return domain.Metadata{Name: meta.Name, Version: meta.Version}, nil
}

func (l *grpcListener) Configure(ctx context.Context, settings map[string]string) error {
	callCtx, cancel := callContext(ctx)
	defer cancel()
	return l.rpc.Configure(callCtx, &triggerrpc.ConfigureRequest{Settings: settings})
}

func (l *grpcListener) Poll(ctx context.Context) ([]domain.Event, error) {
	if l.client.Exited() {
		return nil, fmt.Errorf("plugin process exited")
	}
	callCtx, cancel := callContext(ctx)
	defer cancel()
	resp, err := l.rpc.Poll(callCtx)
	if err != nil {
		return nil, fmt.Errorf("poll: %w", err)
	}
	events := make([]domain.Event, 0, len(resp.Events))
	for _, e := range resp.Events {
		events = append(events, domain.Event{Action: domain.Action(e.Action), Name: e.Name, At: e.At})
	}
	return events, nil
}

func (l *grpcListener) Close() {
	l.client.Kill()
}

func callContext(parent context.Context) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, defaultCallTimeout)
}
