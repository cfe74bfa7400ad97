package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"mathsolver-agent/internal/usecase"
)

const correlationHeader = "X-Correlation-Id"

const (
	msgMethodNotAllowed = "Method Not Allowed"
	msgConfigError      = "Server configuration error: API Key missing."
	msgInternalError    = "Internal server error during computation."
)

// Solver is the use case consumed by the handler.
type Solver interface {
	Solve(ctx context.Context, in usecase.SolveInput) (usecase.SolveOutput, error)
}

// solveRequest is the inbound request body.
type solveRequest struct {
	UserQuery   string `json:"userQuery"`
	Base64Image string `json:"base64Image,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

type solutionResponse struct {
	Solution string `json:"solution"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Handler adapts API Gateway proxy events to the solve use case and maps its
// error taxonomy onto HTTP statuses and response bodies.
type Handler struct {
	svc Solver
}

func NewHandler(svc Solver) (*Handler, error) {
	if svc == nil {
		return nil, errors.New("handler: solver must not be nil")
	}
	return &Handler{svc: svc}, nil
}

// Handle processes one request. Every failure mode is terminal: errors are
// logged once and converted to a response, never returned to the runtime.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	cid := correlationID(event.Headers)

	if event.HTTPMethod != http.MethodPost {
		return respond(http.StatusMethodNotAllowed, messageResponse{Message: msgMethodNotAllowed}, cid), nil
	}

	var in solveRequest
	if err := json.Unmarshal([]byte(event.Body), &in); err != nil {
		slog.Error("failed to decode request body", "err", err, "correlation_id", cid)
		return respond(http.StatusInternalServerError, messageResponse{Message: msgInternalError}, cid), nil
	}

	out, err := h.svc.Solve(ctx, usecase.SolveInput{
		Query:     in.UserQuery,
		ImageData: in.Base64Image,
		MimeType:  in.MimeType,
	})
	if err != nil {
		return errorResponse(err, cid), nil
	}

	return respond(http.StatusOK, solutionResponse{Solution: out.Solution}, cid), nil
}

// errorResponse maps a use case error to its response shape. Configuration
// and upstream-content errors carry distinct bodies; everything else gets the
// generic internal message.
func errorResponse(err error, cid string) events.APIGatewayProxyResponse {
	var uErr *usecase.Error
	if errors.As(err, &uErr) {
		switch uErr.Code {
		case usecase.ErrorConfig:
			slog.Error("API key is not configured", "reason", uErr.Reason, "correlation_id", cid)
			return respond(http.StatusInternalServerError, messageResponse{Message: msgConfigError}, cid)
		case usecase.ErrorUpstream:
			slog.Error("upstream returned no usable content", "reason", uErr.Reason, "err", err, "correlation_id", cid)
			return respond(http.StatusInternalServerError, solutionResponse{Solution: uErr.Solution}, cid)
		}
	}
	slog.Error("solve failed", "err", err, "correlation_id", cid)
	return respond(http.StatusInternalServerError, messageResponse{Message: msgInternalError}, cid)
}

func respond(status int, body any, cid string) events.APIGatewayProxyResponse {
	buf, err := json.Marshal(body)
	if err != nil {
		// Only reachable if a response type becomes unmarshalable.
		slog.Error("failed to encode response body", "err", err, "correlation_id", cid)
		buf = []byte(`{"message":"` + msgInternalError + `"}`)
		status = http.StatusInternalServerError
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			correlationHeader: cid,
		},
		Body: string(buf),
	}
}

// correlationID returns the caller-provided correlation ID header
// (case-insensitive) or generates a new one.
func correlationID(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, correlationHeader) && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return uuid.NewString()
}
