package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/2beens/protocolengine/internal/protocol"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// protocolService is the matching service used by the tools (for dependency injection and testing).
type protocolService interface {
	Match(ctx context.Context, raw protocol.RawProfile) (*protocol.Record, error)
	Recommend(ctx context.Context, raw protocol.RawProfile) *protocol.Recommendation
}

// Handler adapts MCP tool calls to the protocol service.
type Handler struct {
	service protocolService
}

func NewHandler(service protocolService) *Handler {
	return &Handler{
		service: service,
	}
}

// ProfileInput is the questionnaire profile accepted by the matching tools.
type ProfileInput struct {
	AgeBracket         string `json:"age_bracket" jsonschema:"Age bracket, e.g. 6–9, 10–13, 14–18"`
	Gender             string `json:"gender" jsonschema:"Gender, e.g. Male or Female"`
	PrimarySport       string `json:"primary_sport,omitempty" jsonschema:"Primary sport (currently always matched as Soccer)"`
	TrainingFrequency  string `json:"training_frequency" jsonschema:"Primary sport sessions per week, e.g. 1-2"`
	TrainingIntensity  string `json:"training_intensity" jsonschema:"Primary sport intensity: Low, Moderate or High"`
	CoachingSessions   string `json:"coaching_sessions" jsonschema:"Coaching sessions per week, e.g. 0"`
	YearsOfPractice    string `json:"years_of_practice" jsonschema:"Years of practice, e.g. <1"`
	SecondarySport     string `json:"secondary_sport,omitempty" jsonschema:"Secondary sport; leave empty when there is none"`
	TrainingFrequency2 string `json:"training_frequency_2,omitempty" jsonschema:"Secondary sport sessions per week"`
	TrainingIntensity2 string `json:"training_intensity_2,omitempty" jsonschema:"Secondary sport intensity"`
	CoachingSessions2  string `json:"coaching_sessions_2,omitempty" jsonschema:"Secondary sport coaching sessions per week"`
	YearsOfPractice2   string `json:"years_of_practice_2,omitempty" jsonschema:"Secondary sport years of practice"`
	Allergens          string `json:"allergens,omitempty" jsonschema:"Known allergens, defaults to None"`
	MedicalHistory     string `json:"medical_history,omitempty" jsonschema:"Relevant medical history, defaults to None"`
	Handedness         string `json:"handedness" jsonschema:"Left-handed or Right-handed"`
	Target             string `json:"target" jsonschema:"Goal: Basic, Recovery, Endurance or Performance"`
}

// Raw converts the tool input to a raw questionnaire profile.
func (in ProfileInput) Raw() protocol.RawProfile {
	return protocol.RawProfile{
		"Age Bracket":          in.AgeBracket,
		"Gender":               in.Gender,
		"Primary Sport":        in.PrimarySport,
		"Training Frequency":   in.TrainingFrequency,
		"Training Intensity":   in.TrainingIntensity,
		"Coaching Sessions":    in.CoachingSessions,
		"Years of Practice":    in.YearsOfPractice,
		"Secondary Sport":      in.SecondarySport,
		"Training Frequency 2": in.TrainingFrequency2,
		"Training Intensity 2": in.TrainingIntensity2,
		"Coaching Sessions 2":  in.CoachingSessions2,
		"Years of Practice 2":  in.YearsOfPractice2,
		"Allergens":            in.Allergens,
		"Medical History":      in.MedicalHistory,
		"Handedness":           in.Handedness,
		"Target":               in.Target,
	}
}

// MatchProtocolTool returns the MCP tool handler for match_protocol (strict, no fallback).
func (h *Handler) MatchProtocolTool() func(context.Context, *mcp.CallToolRequest, ProfileInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in ProfileInput) (*mcp.CallToolResult, any, error) {
		record, err := h.service.Match(ctx, in.Raw())
		if errors.Is(err, protocol.ErrNotFound) {
			return errorResult("Protocol not found"), nil, nil
		}
		if err != nil {
			return errorResult("Failed to find protocol: " + err.Error()), nil, nil
		}
		return jsonResult(record), nil, nil
	}
}

// RecommendProtocolTool returns the MCP tool handler for recommend_protocol (falls back by target).
func (h *Handler) RecommendProtocolTool() func(context.Context, *mcp.CallToolRequest, ProfileInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in ProfileInput) (*mcp.CallToolResult, any, error) {
		return jsonResult(h.service.Recommend(ctx, in.Raw())), nil, nil
	}
}

// FallbackInput is the input for get_fallback_protocol.
type FallbackInput struct {
	Target string `json:"target" jsonschema:"Goal: Basic, Recovery, Endurance or Performance; anything else returns Basic"`
}

// FallbackProtocolTool returns the MCP tool handler for get_fallback_protocol.
func (h *Handler) FallbackProtocolTool() func(context.Context, *mcp.CallToolRequest, FallbackInput) (*mcp.CallToolResult, any, error) {
	return func(_ context.Context, _ *mcp.CallToolRequest, in FallbackInput) (*mcp.CallToolResult, any, error) {
		return jsonResult(protocol.Fallback(in.Target)), nil, nil
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error encoding response: " + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}
