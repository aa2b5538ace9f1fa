package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey       = "cgmlens"
	serviceName        = "cgmlens.plugin.v1.CgmlensPlugin"
	jsonCodecName      = "json"
	methodGetMetadata  = "/" + serviceName + "/GetMetadata"
	methodListCommands = "/" + serviceName + "/ListCommands"
	methodExecute      = "/" + serviceName + "/Execute"
	methodDetect       = "/" + serviceName + "/Detect"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "CGMLENS_PLUGIN",
	MagicCookieValue: "cgmlens",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Metadata struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Capabilities []string `json:"capabilities"`
}

type CommandDescriptor struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Kind            string `json:"kind"`
	InputSchemaJSON string `json:"input_schema_json"`
	TimeoutMS       int32  `json:"timeout_ms"`
}

type ListCommandsResponse struct {
	Commands []CommandDescriptor `json:"commands"`
}

type ExecuteContext struct {
	DataPath string            `json:"data_path"`
	UploadID string            `json:"upload_id"`
	Cwd      string            `json:"cwd"`
	Env      map[string]string `json:"env"`
}

type ExecuteRequest struct {
	CommandID string         `json:"command_id"`
	InputJSON string         `json:"input_json"`
	Context   ExecuteContext `json:"context"`
}

type ExecuteResponse struct {
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	OutputJSON string `json:"output_json"`
	ExitCode   int32  `json:"exit_code"`
}

// DetectRequest carries the series with missing samples as null entries,
// since JSON has no NaN literal.
type DetectRequest struct {
	Series      []*float64 `json:"series"`
	IntervalMin float64    `json:"interval_min"`
}

type DetectResponse struct {
	Detector string `json:"detector"`
	Mask     []bool `json:"mask"`
}

type CgmlensPluginServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	ListCommands(ctx context.Context, in *Empty) (*ListCommandsResponse, error)
	Execute(ctx context.Context, in *ExecuteRequest) (*ExecuteResponse, error)
	Detect(ctx context.Context, in *DetectRequest) (*DetectResponse, error)
}

type CgmlensPluginClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	ListCommands(ctx context.Context) (*ListCommandsResponse, error)
	Execute(ctx context.Context, in *ExecuteRequest) (*ExecuteResponse, error)
	Detect(ctx context.Context, in *DetectRequest) (*DetectResponse, error)
}

type cgmlensPluginClient struct {
	conn *grpc.ClientConn
}

func NewCgmlensPluginClient(conn *grpc.ClientConn) CgmlensPluginClient {
	return &cgmlensPluginClient{conn: conn}
}

func (c *cgmlensPluginClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.conn.Invoke(ctx, methodGetMetadata, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *cgmlensPluginClient) ListCommands(ctx context.Context) (*ListCommandsResponse, error) {
	out := &ListCommandsResponse{}
	if err := c.conn.Invoke(ctx, methodListCommands, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *cgmlensPluginClient) Execute(ctx context.Context, in *ExecuteRequest) (*ExecuteResponse, error) {
	out := &ExecuteResponse{}
	if err := c.conn.Invoke(ctx, methodExecute, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *cgmlensPluginClient) Detect(ctx context.Context, in *DetectRequest) (*DetectResponse, error) {
	out := &DetectResponse{}
	if err := c.conn.Invoke(ctx, methodDetect, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterCgmlensPluginServer(server grpc.ServiceRegistrar, impl CgmlensPluginServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*CgmlensPluginServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "GetMetadata",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.GetMetadata(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetMetadata}
					handler := func(ctx context.Context, req any) (any, error) {
						empty, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.GetMetadata(ctx, empty)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "ListCommands",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.ListCommands(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodListCommands}
					handler := func(ctx context.Context, req any) (any, error) {
						empty, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.ListCommands(ctx, empty)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "Execute",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &ExecuteRequest{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.Execute(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodExecute}
					handler := func(ctx context.Context, req any) (any, error) {
						inReq, ok := req.(*ExecuteRequest)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.Execute(ctx, inReq)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "Detect",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &DetectRequest{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.Detect(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodDetect}
					handler := func(ctx context.Context, req any) (any, error) {
						inReq, ok := req.(*DetectRequest)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.Detect(ctx, inReq)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "schemas/plugin-rpc-v1.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl CgmlensPluginServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterCgmlensPluginServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewCgmlensPluginClient(conn), nil
}

func PluginMap(impl CgmlensPluginServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
