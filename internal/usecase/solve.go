package usecase

import (
	"context"
	"errors"

	"mathsolver-agent/internal/domain"
)

// LLMClient is the generation client consumed by SolveService.
type LLMClient interface {
	GenerateContent(ctx context.Context, p domain.Problem) (string, error)
}

// credentialError matches errors reporting an absent API key, without
// coupling this package to the integration's concrete error type.
type credentialError interface {
	MissingCredential() bool
}

// upstreamContentError matches errors carrying an upstream-reported message
// for a transport-successful call that produced no usable answer.
type upstreamContentError interface {
	UpstreamMessage() string
}

// SolveService forwards one math problem to the generation client and maps
// the outcome to the response taxonomy: config error, upstream-degraded with
// a markup-wrapped message, or internal error. Each request is independent;
// nothing is retried and nothing is persisted.
type SolveService struct {
	llm LLMClient
}

type SolveInput struct {
	Query     string
	ImageData string
	MimeType  string
}

type SolveOutput struct {
	Solution string
}

func NewSolveService(llm LLMClient) (*SolveService, error) {
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	return &SolveService{llm: llm}, nil
}

func (s *SolveService) Solve(ctx context.Context, in SolveInput) (SolveOutput, error) {
	text, err := s.llm.GenerateContent(ctx, domain.Problem{
		Query:     in.Query,
		ImageData: in.ImageData,
		MimeType:  in.MimeType,
	})
	if err != nil {
		if isMissingCredential(err) {
			return SolveOutput{}, newError(ErrorConfig, "api_key_missing", err)
		}
		if msg, ok := upstreamMessage(err); ok {
			e := newError(ErrorUpstream, "no_usable_content", err)
			e.Solution = errorSolution(msg)
			return SolveOutput{}, e
		}
		return SolveOutput{}, newError(ErrorInternal, "gemini_request_error", err)
	}

	// The answer is assumed to already be in the required markup notation
	// and is passed through unmodified.
	return SolveOutput{Solution: text}, nil
}

func isMissingCredential(err error) bool {
	var ce credentialError
	return errors.As(err, &ce) && ce.MissingCredential()
}

func upstreamMessage(err error) (string, bool) {
	var ue upstreamContentError
	if !errors.As(err, &ue) {
		return "", false
	}
	return ue.UpstreamMessage(), true
}
