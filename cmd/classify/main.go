// Command classify runs the rating classifier against a message from the
// command line, for prompt tuning without a running server.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/providoor/whatsapp-bot/internal/conversation"
	"github.com/providoor/whatsapp-bot/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if len(os.Args) < 2 {
		log.Fatal("usage: classify <message text>")
	}
	text := strings.Join(os.Args[1:], " ")

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY is required")
	}
	modelID := os.Getenv("GEMINI_MODEL_ID")
	if modelID == "" {
		modelID = "gemini-2.5-flash"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	llm, err := conversation.NewGeminiLLMClient(ctx, apiKey, modelID)
	if err != nil {
		log.Fatalf("create client: %v", err)
	}
	defer func() { _ = llm.Close() }()

	classifier := conversation.NewRatingClassifier(llm, 15*time.Second, logging.Default(), nil)

	intent, err := classifier.Classify(ctx, text)
	if err != nil {
		log.Fatalf("classify: %v", err)
	}

	switch intent.Kind {
	case conversation.IntentUserRating:
		fmt.Printf("rating intent: %d\n", *intent.Rating)
	default:
		fmt.Println("no rating intent")
	}
}
