package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/yourusername/shelfsync/internal/domain/entity"
)

type fakeModel struct {
	responses []*genai.GenerateContentResponse
	errs      []error
	calls     int
	prompts   []string
}

func (f *fakeModel) GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	i := f.calls
	f.calls++
	for _, p := range parts {
		if text, ok := p.(genai.Text); ok {
			f.prompts = append(f.prompts, string(text))
		}
	}
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var resp *genai.GenerateContentResponse
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	return resp, err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{}
	for _, p := range parts {
		content.Parts = append(content.Parts, genai.Text(p))
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func intPtr(v int) *int { return &v }

func sampleReport() entity.ReconciliationReport {
	return entity.ReconciliationReport{
		PerfectMatches: []entity.MatchRecord{{SKU: "P-1"}},
		Mismatches: []entity.MatchRecord{
			{SKU: "X-1", SheetProduct: entity.Product{ProductName: "Xylophone"}, SheetQuantity: 5, ExternalQuantity: intPtr(3)},
		},
		SheetOnly:    []entity.MatchRecord{{SKU: "S-1"}, {SKU: "S-2"}},
		ExternalOnly: []entity.ExternalProduct{{SKU: "E-1"}},
	}
}

func newTestClient(model contentGenerator) *Client {
	return &Client{model: model, maxRetries: 3}
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt(sampleReport())
	for _, want := range []string{
		"Perfect matches: 1",
		"Quantity mismatches: 1",
		"X-1 | Xylophone | 5 | 3",
		"Only in spreadsheet: S-1, S-2",
		"Only in store: E-1",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildPrompt_TruncatesLongLists(t *testing.T) {
	var report entity.ReconciliationReport
	for i := 0; i < maxPromptMismatches+3; i++ {
		report.Mismatches = append(report.Mismatches, entity.MatchRecord{SKU: "M", SheetQuantity: 1})
		report.SheetOnly = append(report.SheetOnly, entity.MatchRecord{SKU: "S"})
	}
	prompt := buildPrompt(report)
	if !strings.Contains(prompt, "... and 3 more") || !strings.Contains(prompt, "+3 more") {
		t.Fatalf("prompt not truncated:\n%s", prompt)
	}
}

func TestExtractText(t *testing.T) {
	resp := textResponse("Stock looks ", "healthy.")
	if got := extractText(resp); got != "Stock looks healthy." {
		t.Fatalf("extractText() = %q", got)
	}
	if got := extractText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}); got != "" {
		t.Fatalf("extractText(nil content) = %q, want empty", got)
	}
}

func TestSummarize_RetriesThenSucceeds(t *testing.T) {
	model := &fakeModel{
		errs:      []error{errors.New("503 unavailable"), nil, nil},
		responses: []*genai.GenerateContentResponse{nil, textResponse("   "), textResponse("  One mismatch: X-1.  ")},
	}
	c := newTestClient(model)

	got, err := c.Summarize(context.Background(), sampleReport())
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "One mismatch: X-1." {
		t.Fatalf("Summarize() = %q", got)
	}
	if model.calls != 3 {
		t.Fatalf("calls = %d, want 3", model.calls)
	}
	if !strings.Contains(model.prompts[0], "X-1") {
		t.Fatalf("prompt = %q", model.prompts[0])
	}
}

func TestSummarize_GivesUp(t *testing.T) {
	model := &fakeModel{errs: []error{errors.New("a"), errors.New("b"), errors.New("c")}}
	c := newTestClient(model)
	if _, err := c.Summarize(context.Background(), sampleReport()); err == nil {
		t.Fatalf("Summarize() error = nil, want error")
	}
	if model.calls != 3 {
		t.Fatalf("calls = %d, want 3", model.calls)
	}
}

func TestSummarize_SafetyBlockAndEmptyReport(t *testing.T) {
	blocked := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}}}
	model := &fakeModel{responses: []*genai.GenerateContentResponse{blocked}}
	c := newTestClient(model)
	if _, err := c.Summarize(context.Background(), sampleReport()); err == nil {
		t.Fatalf("Summarize() error = nil, want safety error")
	}
	if model.calls != 1 {
		t.Fatalf("calls = %d, want 1", model.calls)
	}

	idle := &fakeModel{}
	got, err := newTestClient(idle).Summarize(context.Background(), entity.ReconciliationReport{})
	if err != nil || got != "" || idle.calls != 0 {
		t.Fatalf("Summarize(empty) = (%q, %v) after %d calls", got, err, idle.calls)
	}
}
