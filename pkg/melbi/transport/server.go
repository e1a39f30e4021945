// Package transport exposes melbi's embedding API (pkg/melbi) as a gRPC
// service, melbi.v1.CoreService, for hosts that cannot link the Go core
// directly (SPEC_FULL.md §4 domain stack). The service contract is checked
// in as proto/melbi.proto and can be loaded via protoreflect
// (descriptor.go); request/response transport uses hand-written Go structs
// carried over a JSON-backed grpc.Codec (codec.go, jsonCodec below) rather
// than protoc-generated message types, since no protoc toolchain runs here.
// Only the Value/env fields that need protobuf's canonical JSON-ish shape
// go through google.protobuf.Struct/Value (structpb); everything else is
// ordinary encoding/json over plain structs.
package transport

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/melbi-lang/melbi/internal/config"
	"github.com/melbi-lang/melbi/pkg/melbi"
)

// Diagnostic mirrors the wire message of the same name in melbi.proto.
type Diagnostic struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Span     Span   `json:"span"`
	Help     string `json:"help,omitempty"`
}

// Span mirrors melbi.proto's Span message.
type Span struct {
	Start  int `json:"start"`
	End    int `json:"end"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

// CompileRequest mirrors melbi.proto's CompileRequest message.
type CompileRequest struct {
	Source        string            `json:"source"`
	GlobalsSchema map[string]string `json:"globals_schema,omitempty"`
}

// CompileResponse mirrors melbi.proto's CompileResponse message.
type CompileResponse struct {
	ID          string       `json:"id"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
	Type        string       `json:"type"`
}

// EvaluateRequest mirrors melbi.proto's EvaluateRequest message.
type EvaluateRequest struct {
	ID              string           `json:"id"`
	Env             *structpb.Struct `json:"env,omitempty"`
	MaxCallDepth    int              `json:"max_call_depth,omitempty"`
	MaxValueBytes   int              `json:"max_value_bytes,omitempty"`
	MaxInstructions int              `json:"max_instructions,omitempty"`
}

// EvaluateResponse mirrors melbi.proto's EvaluateResponse message.
type EvaluateResponse struct {
	Value        *structpb.Value `json:"value,omitempty"`
	IsError      bool            `json:"is_error"`
	ErrorKind    string          `json:"error_kind,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

// CoreServer adapts a *melbi.Core to the melbi.v1.CoreService contract.
// Compiled expressions are cached by their CompiledExpression.ID (a uuid,
// see pkg/melbi.CompiledExpression) between a Compile call and the
// Evaluate calls that follow it, since the wire protocol only carries the
// id string, not the compiled handle itself.
type CoreServer struct {
	core     *melbi.Core
	compiled map[string]*melbi.CompiledExpression
}

// NewCoreServer wraps core for gRPC serving.
func NewCoreServer(core *melbi.Core) *CoreServer {
	return &CoreServer{core: core, compiled: make(map[string]*melbi.CompiledExpression)}
}

func (s *CoreServer) Compile(_ context.Context, req *CompileRequest) (*CompileResponse, error) {
	compiled, err := s.core.Compile(req.Source)
	if compiled == nil {
		return nil, status.Errorf(codes.Internal, "transport: compile returned no handle: %v", err)
	}
	s.compiled[compiled.ID.String()] = compiled

	resp := &CompileResponse{ID: compiled.ID.String()}
	if compiled.Type() != nil {
		resp.Type = compiled.Type().String()
	}
	for _, d := range compiled.Diagnostics() {
		resp.Diagnostics = append(resp.Diagnostics, Diagnostic{
			Severity: d.Severity.String(),
			Code:     string(d.Code),
			Message:  d.Message,
			Span: Span{
				Start:  d.Span.Start,
				End:    d.Span.End,
				Line:   d.Span.Line,
				Column: d.Span.Column,
			},
			Help: d.Help,
		})
	}
	return resp, nil
}

func (s *CoreServer) Evaluate(ctx context.Context, req *EvaluateRequest) (*EvaluateResponse, error) {
	compiled, ok := s.compiled[req.ID]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "transport: no compiled expression with id %q (Compile it first)", req.ID)
	}

	limits := config.DefaultLimits()
	if req.MaxCallDepth > 0 {
		limits.MaxCallDepth = req.MaxCallDepth
	}
	if req.MaxValueBytes > 0 {
		limits.MaxValueBytes = req.MaxValueBytes
	}
	if req.MaxInstructions > 0 {
		limits.MaxInstructions = req.MaxInstructions
	}

	result, err := s.core.Evaluate(ctx, compiled, envFromStruct(req.Env), limits)
	if err != nil {
		return nil, status.Errorf(codes.ResourceExhausted, "%v", err)
	}

	resp := &EvaluateResponse{}
	if result.IsError() {
		tag, _ := result.ErrorTag()
		resp.IsError = true
		resp.ErrorKind = tag.Kind.String()
		resp.ErrorMessage = tag.Message
		return resp, nil
	}

	goVal, err := result.ToGo()
	if err != nil {
		return nil, status.Errorf(codes.Internal, "transport: converting result: %v", err)
	}
	pv, err := valueToProto(goVal)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "%v", err)
	}
	resp.Value = pv
	return resp, nil
}

// ServiceDesc is melbi.v1.CoreService's grpc.ServiceDesc. It is written by
// hand rather than generated by protoc-gen-go-grpc: MethodDesc.Handler only
// needs to satisfy grpc.methodHandler's signature, which does not require
// proto.Message request/response types, so a plain Go struct carried by
// jsonCodec (registered in init below) is a legitimate substitute for a
// generated stub.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: "melbi.v1.CoreService",
	HandlerType: (*interface{})(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Compile",
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				req := new(CompileRequest)
				if err := dec(req); err != nil {
					return nil, err
				}
				s := srv.(*CoreServer)
				if interceptor == nil {
					return s.Compile(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: s, FullMethod: "/melbi.v1.CoreService/Compile"}
				handler := func(ctx context.Context, req interface{}) (interface{}, error) {
					return s.Compile(ctx, req.(*CompileRequest))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
		{
			MethodName: "Evaluate",
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				req := new(EvaluateRequest)
				if err := dec(req); err != nil {
					return nil, err
				}
				s := srv.(*CoreServer)
				if interceptor == nil {
					return s.Evaluate(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: s, FullMethod: "/melbi.v1.CoreService/Evaluate"}
				handler := func(ctx context.Context, req interface{}) (interface{}, error) {
					return s.Evaluate(ctx, req.(*EvaluateRequest))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "melbi.proto",
}

// Register attaches core to s under melbi.v1.CoreService.
func Register(s *grpc.Server, core *melbi.Core) {
	s.RegisterService(&ServiceDesc, NewCoreServer(core))
}

// jsonCodecName is registered as a distinct grpc content-subtype so a
// client dialing with grpc.CallContentSubtype(jsonCodecName) interoperates
// without any protoc-generated code on either side.
const jsonCodecName = "melbi-json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("transport: %s codec: %w", jsonCodecName, err)
	}
	return nil
}
func (jsonCodec) Name() string { return jsonCodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
