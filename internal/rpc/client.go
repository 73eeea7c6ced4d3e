package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/objective-scoring/scorer/internal/evidence"
	"github.com/danielpatrickdp/objective-scoring/scorer/internal/scoring"
)

// #region client-struct
// Client wraps a gRPC connection to a ScoringService.
type Client struct {
	conn *grpc.ClientConn
	cc   grpc.ClientConnInterface
}

// #endregion client-struct

// #region constructor
// NewClient connects to a ScoringService at addr.
func NewClient(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn, cc: conn}, nil
}

// NewClientWithConn creates a Client over an existing connection. Close does
// not close cc.
func NewClientWithConn(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Close shuts down the gRPC connection when the client owns it.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion constructor

// #region evaluate
// Evaluate scores checks against objectiveID at version (empty means latest).
func (c *Client) Evaluate(ctx context.Context, objectiveID, version string, checks evidence.SessionCheckResults) (scoring.Result, error) {
	req, err := toStruct(EvaluateRequest{ObjectiveID: objectiveID, ObjectiveVersion: version, Checks: checks})
	if err != nil {
		return scoring.Result{}, err
	}
	resp := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, evaluateMethod, req, resp); err != nil {
		return scoring.Result{}, fmt.Errorf("evaluate rpc: %w", err)
	}
	var result scoring.Result
	if err := fromStruct(resp, &result); err != nil {
		return scoring.Result{}, fmt.Errorf("evaluate rpc: %w", err)
	}
	return result, nil
}

// #endregion evaluate

// #region list-objectives
// ListObjectives returns the server's catalog.
func (c *Client) ListObjectives(ctx context.Context) ([]ObjectiveInfo, error) {
	resp := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, listObjectivesMethod, &structpb.Struct{}, resp); err != nil {
		return nil, fmt.Errorf("list objectives rpc: %w", err)
	}
	var out listObjectivesResponse
	if err := fromStruct(resp, &out); err != nil {
		return nil, fmt.Errorf("list objectives rpc: %w", err)
	}
	return out.Objectives, nil
}

// #endregion list-objectives
