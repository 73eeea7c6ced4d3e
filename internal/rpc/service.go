package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region service-desc

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "scoring.v1.ScoringService"

const (
	evaluateMethod       = "/" + ServiceName + "/Evaluate"
	listObjectivesMethod = "/" + ServiceName + "/ListObjectives"
)

// ScoringServer is the server-side contract. Payloads are google.protobuf.Struct
// so clients in any language can call it without generated stubs.
type ScoringServer interface {
	Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListObjectives(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// RegisterScoringServer attaches srv to a gRPC server.
func RegisterScoringServer(s grpc.ServiceRegistrar, srv ScoringServer) {
	s.RegisterService(&ScoringServiceDesc, srv)
}

// ScoringServiceDesc describes the service for grpc.Server.RegisterService.
var ScoringServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ScoringServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Evaluate", Handler: evaluateHandler},
		{MethodName: "ListObjectives", Handler: listObjectivesHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "scoring/v1/scoring.proto",
}

// #endregion service-desc

// #region handlers

func evaluateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ScoringServer).Evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: evaluateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ScoringServer).Evaluate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func listObjectivesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ScoringServer).ListObjectives(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listObjectivesMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ScoringServer).ListObjectives(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// #endregion handlers
