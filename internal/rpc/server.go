package rpc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/objective-scoring/scorer/internal/logging"
	"github.com/danielpatrickdp/objective-scoring/scorer/internal/objective"
	"github.com/danielpatrickdp/objective-scoring/scorer/internal/pipeline"
)

var tracer = otel.Tracer("scorer.rpc")

// #region server-struct

// Server answers ScoringService calls from an objective catalog and a pipeline.
type Server struct {
	catalog  *objective.Catalog
	pipeline *pipeline.Pipeline
	logger   *slog.Logger
}

var _ ScoringServer = (*Server)(nil)

// NewServer wires a Server. A nil logger uses the "rpc" component logger and a
// nil pipeline scores with default collector settings and no publishers.
func NewServer(catalog *objective.Catalog, p *pipeline.Pipeline, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.New("rpc")
	}
	if p == nil {
		p = pipeline.New(nil, pipeline.Config{Logger: logger})
	}
	return &Server{catalog: catalog, pipeline: p, logger: logger}
}

// NewGRPCServer returns a grpc.Server with the service registered and the
// tracing interceptor installed.
func NewGRPCServer(srv *Server, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(UnaryInterceptor(srv.logger)))
	gs := grpc.NewServer(opts...)
	RegisterScoringServer(gs, srv)
	return gs
}

// #endregion server-struct

// #region evaluate

// Evaluate resolves the objective from the catalog and scores the checks.
func (s *Server) Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in EvaluateRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if in.ObjectiveID == "" {
		return nil, status.Error(codes.InvalidArgument, "objective_id is required")
	}
	spec, ok := s.catalog.Get(in.ObjectiveID, in.ObjectiveVersion)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "objective %s@%s not found", in.ObjectiveID, versionOrLatest(in.ObjectiveVersion))
	}

	result := s.pipeline.Run(ctx, in.Checks, spec)
	out, err := toStruct(result)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// #endregion evaluate

// #region list-objectives

// ListObjectives returns every catalog entry ordered by id then version.
func (s *Server) ListObjectives(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	resp := listObjectivesResponse{Objectives: []ObjectiveInfo{}}
	for _, spec := range s.catalog.List() {
		resp.Objectives = append(resp.Objectives, ObjectiveInfo{
			ObjectiveID: spec.ObjectiveID(),
			Version:     spec.Version(),
			Gates:       len(spec.Gates()),
			ShapedTerms: len(spec.ShapedTerms()),
		})
	}
	out, err := toStruct(resp)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// #endregion list-objectives

// #region interceptor

// UnaryInterceptor opens a span per call and logs method, status code and duration.
func UnaryInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx, span := tracer.Start(ctx, info.FullMethod, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		span.SetAttributes(attribute.String("rpc.grpc.status_code", code.String()))
		if err != nil {
			span.SetStatus(otelcodes.Error, err.Error())
		}

		level := slog.LevelDebug
		if err != nil && !isClientError(code) {
			level = slog.LevelError
		}
		logger.Log(ctx, level, "rpc", "method", info.FullMethod, "code", code.String(), "duration", time.Since(start))
		return resp, err
	}
}

// #endregion interceptor

// #region helpers
func isClientError(c codes.Code) bool {
	return c == codes.InvalidArgument || c == codes.NotFound
}

func versionOrLatest(v string) string {
	if v == "" {
		return "latest"
	}
	return v
}

// ErrNoCatalog is returned by NewServerFromDir when the directory holds no objectives.
var ErrNoCatalog = errors.New("no objectives loaded")

// NewServerFromDir loads every objective under dir into a catalog and wires a Server.
func NewServerFromDir(dir string, p *pipeline.Pipeline, logger *slog.Logger) (*Server, error) {
	catalog, err := objective.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	if catalog.Len() == 0 {
		return nil, ErrNoCatalog
	}
	return NewServer(catalog, p, logger), nil
}

// #endregion helpers
