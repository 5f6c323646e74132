// Command notepipe-cli runs one processing job from the terminal, against
// the real collaborators. Intended for local smoke testing:
//
//	notepipe-cli -user <userId> -path <objectPath>
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path"

	"github.com/joho/godotenv"

	"github.com/techfourbate/MindSpero-V1/internal/models"
	"github.com/techfourbate/MindSpero-V1/internal/services"
)

func main() {
	userID := flag.String("user", "", "caller user ID")
	filePath := flag.String("path", "", "source object path in the notes bucket")
	flag.Parse()

	if *userID == "" || *filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	ctx := context.Background()
	processor, err := services.NewProcessor(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize processor: %v", err)
	}
	defer processor.Close()

	res, err := processor.Process(ctx, &models.ProcessRequest{
		UserID:   *userID,
		FilePath: *filePath,
		FileName: path.Base(*filePath),
	})
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}

	fmt.Println("\n=== Run Summary ===")
	fmt.Printf("Status:  %s\n", res.Status)
	fmt.Printf("PDF:     %s\n", res.PdfPath)
	fmt.Printf("Audio:   %s\n", res.AudioPath)
	fmt.Printf("Preview: %.200s\n", res.SimplifiedTextPreview)
}
