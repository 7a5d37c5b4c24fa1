package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/RoGogDBD/inventory/internal/config"
)

func main() {
	count := flag.Int("count", 1, "Number of test items to send")
	invalid := flag.Bool("invalid", false, "Send items that fail validation")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if !cfg.Kafka.Enabled() || cfg.Kafka.ImportTopic == "" {
		log.Fatal("Kafka brokers or import topic not configured")
	}

	w := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Kafka.Brokers...),
		Topic:    cfg.Kafka.ImportTopic,
		Balancer: &kafka.LeastBytes{},
	}
	defer func() {
		if err := w.Close(); err != nil {
			log.Printf("kafka writer close error: %v", err)
		}
	}()

	categories := []string{"Electronics", "Kitchen", "Books", "Office"}
	for i := 0; i < *count; i++ {
		key := uuid.NewString()
		item := map[string]any{
			"name":        "Test item " + key[:8],
			"description": fmt.Sprintf("Imported at %s", time.Now().Format(time.RFC3339)),
			"category":    categories[rand.IntN(len(categories))],
			"price":       float64(rand.IntN(10000)) / 100,
			"quantity":    rand.IntN(100),
		}
		if *invalid {
			item["name"] = ""
			item["price"] = "free"
		}

		data, err := json.Marshal(item)
		if err != nil {
			log.Fatalf("Failed to marshal item: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = w.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: data})
		cancel()
		if err != nil {
			log.Fatalf("Failed to send item %s: %v", key, err)
		}
		log.Printf("Sent item %s", key)
	}
}
