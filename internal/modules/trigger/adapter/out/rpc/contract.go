package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey      = "trigger"
	serviceName       = "activitylog.trigger.v1.Trigger"
	jsonCodecName     = "json"
	methodGetMetadata = "/" + serviceName + "/GetMetadata"
	methodConfigure   = "/" + serviceName + "/Configure"
	methodPoll        = "/" + serviceName + "/Poll"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "ACTIVITYLOG_TRIGGER",
	MagicCookieValue: "activitylog",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return jsonCodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Metadata struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type ConfigureRequest struct {
	Settings map[string]string `json:"settings"`
}

// TriggerEvent is one shortcut press. Action is "switch" or "stop"; a zero At
// lets the host stamp the event.
type TriggerEvent struct {
	Action string    `json:"action"`
	Name   string    `json:"name,omitempty"`
	At     time.Time `json:"at,omitempty"`
}

type PollResponse struct {
	Events []TriggerEvent `json:"events"`
}

type TriggerServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	Configure(ctx context.Context, in *ConfigureRequest) (*Empty, error)
	Poll(ctx context.Context, in *Empty) (*PollResponse, error)
}

type TriggerClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	Configure(ctx context.Context, in *ConfigureRequest) error
	Poll(ctx context.Context) (*PollResponse, error)
}

type triggerClient struct {
	conn *grpc.ClientConn
}

func NewTriggerClient(conn *grpc.ClientConn) TriggerClient {
	return &triggerClient{conn: conn}
}

func (c *triggerClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.invoke(ctx, methodGetMetadata, &Empty{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *triggerClient) Configure(ctx context.Context, in *ConfigureRequest) error {
	return c.invoke(ctx, methodConfigure, in, &Empty{})
}

func (c *triggerClient) Poll(ctx context.Context) (*PollResponse, error) {
	out := &PollResponse{}
	if err := c.invoke(ctx, methodPoll, &Empty{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *triggerClient) invoke(ctx context.Context, method string, in, out any) error {
	return c.conn.Invoke(ctx, method, in, out, grpc.CallContentSubtype(jsonCodecName))
}

// unary builds a method handler that decodes Req and honours interceptors.
func unary[Req any](name, fullMethod string, call func(context.Context, *Req) (any, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				typed, ok := req.(*Req)
				if !ok {
					return nil, fmt.Errorf("invalid request type %T", req)
				}
				return call(ctx, typed)
			})
		},
	}
}

func RegisterTriggerServer(server grpc.ServiceRegistrar, impl TriggerServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*TriggerServer)(nil),
		Methods: []grpc.MethodDesc{
			unary("GetMetadata", methodGetMetadata, func(ctx context.Context, in *Empty) (any, error) {
				return impl.GetMetadata(ctx, in)
			}),
			unary("Configure", methodConfigure, func(ctx context.Context, in *ConfigureRequest) (any, error) {
				return impl.Configure(ctx, in)
			}),
			unary("Poll", methodPoll, func(ctx context.Context, in *Empty) (any, error) {
				return impl.Poll(ctx, in)
			}),
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "trigger-rpc-v1",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl TriggerServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterTriggerServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewTriggerClient(conn), nil
}

func PluginMap(impl TriggerServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
