package rpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/objective-scoring/scorer/internal/evidence"
)

// #region types

// EvaluateRequest names the objective to score against and carries the raw checks.
// An empty ObjectiveVersion selects the catalog's latest version.
type EvaluateRequest struct {
	ObjectiveID      string                       `json:"objective_id"`
	ObjectiveVersion string                       `json:"objective_version,omitempty"`
	Checks           evidence.SessionCheckResults `json:"checks"`
}

// ObjectiveInfo summarizes one catalog entry.
type ObjectiveInfo struct {
	ObjectiveID string `json:"objective_id"`
	Version     string `json:"version"`
	Gates       int    `json:"gates"`
	ShapedTerms int    `json:"shaped_terms"`
}

type listObjectivesResponse struct {
	Objectives []ObjectiveInfo `json:"objectives"`
}

// #endregion types

// #region struct-codec

// toStruct converts any JSON-taggable value into a google.protobuf.Struct.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("payload to struct: %w", err)
	}
	return out, nil
}

// fromStruct decodes a google.protobuf.Struct into v through its JSON form.
func fromStruct(s *structpb.Struct, v any) error {
	if s == nil {
		s = &structpb.Struct{}
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("struct to json: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

// #endregion struct-codec
