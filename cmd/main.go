package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"
	"github.com/presenca-digital/lista-presenca/analysis"
	"github.com/presenca-digital/lista-presenca/api"
	"github.com/presenca-digital/lista-presenca/blob"
	"github.com/presenca-digital/lista-presenca/dynamo"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	settings := getServerSettingsFromEnv()
	ctx := context.Background()

	db, err := makeDB(ctx, settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up the roster store: %s\n", err)
		os.Exit(1)
	}

	if settings.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY is not set, attendance analysis will answer with a fallback message")
	}
	analyzer, err := analysis.NewGeminiAnalyzer(ctx, settings.GeminiAPIKey, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up the analyzer: %s\n", err)
		os.Exit(1)
	}

	if settings.AdminAccessCode == "" {
		logger.Warn("ADMIN_ACCESS_CODE is not set, every admin login will be rejected")
	}

	rosterAPI := api.NewAPI(db, analyzer, logger, api.Config{
		Env:             settings.Env,
		AdminAccessCode: settings.AdminAccessCode,
		AllowedOrigin:   settings.AllowedOrigin,
	})

	s := &http.Server{
		Handler: rosterAPI.Handler(),
		Addr:    net.JoinHostPort(settings.Host, settings.Port),
	}

	logger.Info("Server is listening",
		slog.String("addr", s.Addr),
		slog.String("store-backend", settings.StoreBackend),
		slog.String("env", string(settings.Env)),
	)
	log.Fatal(s.ListenAndServe())
}

func makeDB(ctx context.Context, settings ServerSettings) (api.DB, error) {
	switch settings.StoreBackend {
	case "file":
		return blob.NewStore(blob.NewFileBucket(settings.StorePath)), nil
	case "dynamo":
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load aws config: %w", err)
		}

		client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
			if settings.DynamoEndpoint != "" {
				o.BaseEndpoint = aws.String(settings.DynamoEndpoint)
			}
		})
		return dynamo.NewDB(client, settings.DynamoTableName), nil
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q, want file or dynamo", settings.StoreBackend)
	}
}

type ServerSettings struct {
	Env             api.Env
	Host            string
	Port            string
	StoreBackend    string
	StorePath       string
	DynamoTableName string
	DynamoEndpoint  string
	AdminAccessCode string
	GeminiAPIKey    string
	AllowedOrigin   string
}

func getServerSettingsFromEnv() ServerSettings {
	return ServerSettings{
		Env:             api.Env(getEnvOrDefault("ENV", string(api.LOCAL))),
		Host:            getEnvOrDefault("HOST", "0.0.0.0"),
		Port:            getEnvOrDefault("PORT", "8080"),
		StoreBackend:    getEnvOrDefault("STORE_BACKEND", "file"),
		StorePath:       getEnvOrDefault("STORE_PATH", "data/roster.json"),
		DynamoTableName: getEnvOrDefault("DYNAMO_TABLE_NAME", "ListaPresenca"),
		DynamoEndpoint:  os.Getenv("AWS_ENDPOINT_URL"),
		AdminAccessCode: os.Getenv("ADMIN_ACCESS_CODE"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		AllowedOrigin:   getEnvOrDefault("ALLOWED_ORIGIN", "https://presenca.digital"),
	}
}

func getEnvOrDefault(key string, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}

	return defaultVal
}
