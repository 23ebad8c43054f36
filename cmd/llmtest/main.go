// Command llmtest runs a single desk-assistant turn against the configured
// reasoning backend. Useful for checking credentials and prompt behavior
// without starting the API server.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/joho/godotenv"

	"github.com/cityclinic/desk-assistant/cmd/mainconfig"
	"github.com/cityclinic/desk-assistant/internal/chat"
	appconfig "github.com/cityclinic/desk-assistant/internal/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := appconfig.Load()

	utterance := "Hi, I would like to book an appointment with the doctor."
	if len(os.Args) > 1 {
		utterance = os.Args[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	chatter, err := buildChatter(ctx, cfg)
	if err != nil {
		log.Fatalf("build chatter: %v", err)
	}

	fmt.Printf("provider: %s\n", cfg.LLMProvider)
	fmt.Printf("utterance: %s\n\n", utterance)

	start := time.Now()
	raw, err := chatter.Send(ctx, chat.SeedHistory(), utterance)
	elapsed := time.Since(start)
	if err != nil {
		log.Fatalf("send: %v", err)
	}

	fmt.Printf("raw response (%v):\n%s\n\n", elapsed.Round(time.Millisecond), raw)

	reply := chat.ParseReply(raw)
	fmt.Printf("reply: %s\n", reply.Reply)
	fmt.Printf("query: %s\n", string(reply.Query))
	fmt.Printf("decision: %v\n", reply.Decision().Kind)
}

func buildChatter(ctx context.Context, cfg *appconfig.Config) (chat.Chatter, error) {
	if cfg.LLMProvider == "bedrock" {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return chat.NewBedrockClient(
			bedrockruntime.NewFromConfig(awsCfg),
			cfg.BedrockModelID,
			chat.CurrentInstructions,
			float32(cfg.LLMTemperature),
		)
	}
	return chat.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID, chat.CurrentInstructions, float32(cfg.LLMTemperature))
}
