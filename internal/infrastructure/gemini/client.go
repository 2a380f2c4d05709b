package gemini

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/yourusername/shelfsync/internal/domain/constants"
	"github.com/yourusername/shelfsync/internal/domain/entity"
	"google.golang.org/api/option"
)

// maxPromptMismatches promptga kiritiladigan mismatch qatorlari
const maxPromptMismatches = 15

const systemInstruction = `You are an inventory analyst for a retail warehouse.
You receive the result of comparing the warehouse spreadsheet with the online store catalog.
Write a short plain-text summary (at most 6 lines) for the store manager:
- overall health of the stock data
- the largest quantity differences by SKU
- products that exist only in the spreadsheet or only in the store
Do not invent SKUs or numbers that are not in the input. No markdown tables, no emoji.`

type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Client solishtirish hisobotidan qisqa xulosa yaratadi
type Client struct {
	client     *genai.Client
	model      contentGenerator
	maxRetries int
	retryDelay time.Duration
}

// NewClient yangi Gemini client yaratish
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(constants.GeminiModelName)
	model.SetTemperature(constants.AITemperature)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction)},
	}

	return &Client{
		client:     client,
		model:      model,
		maxRetries: constants.MaxRetries,
		retryDelay: constants.RetryDelay,
	}, nil
}

// Summarize hisobot bo'yicha xulosa; bo'sh hisobot uchun AI chaqirilmaydi
func (c *Client) Summarize(ctx context.Context, report entity.ReconciliationReport) (string, error) {
	if isEmptyReport(report) {
		return "", nil
	}
	prompt := buildPrompt(report)

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
		switch {
		case err != nil:
			lastErr = err
			log.Printf("[gemini] urinish %d/%d xato: %v", attempt, c.maxRetries, err)
		case resp == nil || len(resp.Candidates) == 0:
			lastErr = fmt.Errorf("no response candidates")
			log.Printf("[gemini] urinish %d/%d: javob kandidatlari yo'q", attempt, c.maxRetries)
		case resp.Candidates[0].FinishReason == genai.FinishReasonSafety:
			return "", fmt.Errorf("summary blocked by safety filter")
		default:
			text := strings.TrimSpace(extractText(resp))
			if text != "" {
				return text, nil
			}
			lastErr = fmt.Errorf("empty response")
			log.Printf("[gemini] urinish %d/%d: bo'sh javob", attempt, c.maxRetries)
		}

		if attempt < c.maxRetries {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}
	}
	return "", fmt.Errorf("summary failed after %d attempts: %w", c.maxRetries, lastErr)
}

// Close client ni yopish
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func isEmptyReport(r entity.ReconciliationReport) bool {
	return len(r.PerfectMatches) == 0 && len(r.Mismatches) == 0 && len(r.SheetOnly) == 0 && len(r.ExternalOnly) == 0
}

// buildPrompt hisobotni modelga yuboriladigan matnga aylantiradi
func buildPrompt(r entity.ReconciliationReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Perfect matches: %d\n", len(r.PerfectMatches))
	fmt.Fprintf(&b, "Quantity mismatches: %d\n", len(r.Mismatches))
	fmt.Fprintf(&b, "Only in spreadsheet: %d\n", len(r.SheetOnly))
	fmt.Fprintf(&b, "Only in store: %d\n", len(r.ExternalOnly))

	if len(r.Mismatches) > 0 {
		b.WriteString("\nMismatches (sku | name | sheet qty | store qty):\n")
		for i, m := range r.Mismatches {
			if i == maxPromptMismatches {
				fmt.Fprintf(&b, "... and %d more\n", len(r.Mismatches)-maxPromptMismatches)
				break
			}
			store := 0
			if m.ExternalQuantity != nil {
				store = *m.ExternalQuantity
			}
			fmt.Fprintf(&b, "%s | %s | %d | %d\n", m.SKU, m.SheetProduct.ProductName, m.SheetQuantity, store)
		}
	}
	if len(r.SheetOnly) > 0 {
		b.WriteString("\nOnly in spreadsheet: ")
		b.WriteString(joinSKUs(len(r.SheetOnly), func(i int) string { return r.SheetOnly[i].SKU }))
		b.WriteString("\n")
	}
	if len(r.ExternalOnly) > 0 {
		b.WriteString("\nOnly in store: ")
		b.WriteString(joinSKUs(len(r.ExternalOnly), func(i int) string { return r.ExternalOnly[i].SKU }))
		b.WriteString("\n")
	}
	return b.String()
}

func joinSKUs(n int, sku func(int) string) string {
	limit := n
	if limit > maxPromptMismatches {
		limit = maxPromptMismatches
	}
	parts := make([]string, 0, limit+1)
	for i := 0; i < limit; i++ {
		parts = append(parts, sku(i))
	}
	if n > limit {
		parts = append(parts, fmt.Sprintf("+%d more", n-limit))
	}
	return strings.Join(parts, ", ")
}

// extractText javobdan textni ajratib olish
func extractText(resp *genai.GenerateContentResponse) string {
	var result strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					result.WriteString(string(text))
				}
			}
		}
	}
	return result.String()
}
