package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"mathsolver-agent/handler"
	"mathsolver-agent/internal/integrations/gemini"
	"mathsolver-agent/internal/integrations/paramstore"
	"mathsolver-agent/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	// A missing API key must not crash the process: the handler fails closed
	// with a configuration error on each request instead.
	apiKey := os.Getenv("GEMINI_API_KEY")
	keyParam := os.Getenv("GEMINI_API_KEY_PARAM")
	model := envDefault("GEMINI_MODEL", gemini.DefaultModel)

	// ---- Optional SSM key source ----
	var params gemini.Getter
	if keyParam != "" {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			slog.Error("failed to load AWS config, SSM key source disabled", "err", err)
		} else {
			ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
			if err != nil {
				slog.Error("failed to create SSM client, SSM key source disabled", "err", err)
			} else {
				params = ssmClient
			}
		}
	}

	// ---- Clients ----
	geminiClient, err := gemini.NewClient(
		gemini.KeyConfig{Value: apiKey, ParameterName: keyParam},
		params,
		gemini.WithModel(model),
	)
	if err != nil {
		slog.Error("failed to create gemini client", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	solveService, err := usecase.NewSolveService(geminiClient)
	if err != nil {
		slog.Error("failed to create solve service", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(solveService)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
