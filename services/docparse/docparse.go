// Package docparse extracts shipment fields from uploaded bill-of-lading
// documents using the Gemini API. The extracted values are suggestions for
// the admin UI; nothing here writes to the store.
package docparse

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

// Extracted holds the fields recognized on a bill of lading.
type Extracted struct {
	BLNumber       string `json:"bl_number"`
	ClientName     string `json:"client_name"`
	Origin         string `json:"origin"`
	Destination    string `json:"destination"`
	Carrier        string `json:"carrier"`
	ContainerCount int    `json:"container_count"`
	BookingRef     string `json:"booking_ref"`
}

const extractPrompt = `Analyze this bill of lading document and extract the following information. Return ONLY valid JSON.

Extract these fields from the document. If a field is missing or unclear, use an empty string (or 0 for numbers).

Required JSON format:
{
"bl_number": string,        // Bill of lading number
"client_name": string,      // Shipper / client name
"origin": string,           // Port of loading
"destination": string,      // Port of discharge
"carrier": string,          // Carrier / shipping line
"container_count": number,  // Number of containers
"booking_ref": string       // Booking reference if present
}`

// ExtractFromDocument sends the document to Gemini and parses the response.
func ExtractFromDocument(ctx context.Context, docBytes []byte, mimeType string) (*Extracted, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	content := &genai.Content{
		Parts: []*genai.Part{
			{Text: extractPrompt},
			{InlineData: &genai.Blob{
				MIMEType: mimeType,
				Data:     docBytes,
			}},
		},
	}

	result, err := client.Models.GenerateContent(
		ctx,
		"gemini-2.5-flash-lite",
		[]*genai.Content{content},
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr(float32(0.1)),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no content generated")
	}

	responseText := result.Candidates[0].Content.Parts[0].Text
	if responseText == "" {
		return nil, fmt.Errorf("empty response from model")
	}

	var extracted Extracted
	if err := json.Unmarshal([]byte(extractJSONFromMarkdown(responseText)), &extracted); err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}
	return &extracted, nil
}

// extractJSONFromMarkdown strips a ```json fence when the model wraps its
// answer in one.
func extractJSONFromMarkdown(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		lines := strings.Split(text, "\n")
		if len(lines) > 2 {
			text = strings.Join(lines[1:len(lines)-1], "\n")
		}
	}
	return strings.TrimSpace(text)
}
