// Package summary turns the fetched dashboard into a short natural
// language digest and writes it to a Notion page.
package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"argosync/lib/gemini"
	"argosync/lib/notion"
	"argosync/lib/scrapers/argo"
	"argosync/lib/timezone"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/summary")

const prompt = `Sei un assistente scolastico. Ti fornisco i dati del registro
elettronico di uno studente in formato JSON: voti, promemoria, compiti
assegnati, assenze e circolari. Scrivi un riepilogo breve e chiaro in
italiano, rivolto allo studente, che evidenzi i voti recenti, le scadenze
imminenti e qualsiasi cosa richieda attenzione. Non inventare dati che non
sono presenti.`

type Service struct {
	gemini *gemini.Client
	notion *notion.Client
	// the generated page is created under this page, either an id or
	// a title to resolve through search
	parentPage string
}

func New(geminiClient *gemini.Client, notionClient *notion.Client, parentPage string) *Service {
	return &Service{gemini: geminiClient, notion: notionClient, parentPage: parentPage}
}

// notion page ids are 32 hex digits, with or without uuid hyphens
func looksLikePageId(s string) bool {
	hex := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
			hex++
		case r == '-':
		default:
			return false
		}
	}
	return hex == 32
}

func (s *Service) resolveParent(ctx context.Context) (string, error) {
	if looksLikePageId(s.parentPage) {
		return s.parentPage, nil
	}
	page, err := s.notion.SearchPage(ctx, s.parentPage)
	if err != nil {
		return "", fmt.Errorf("failed to resolve parent page %q: %w", s.parentPage, err)
	}
	return page.Id, nil
}

// Run generates the digest for the given dashboard and creates the
// summary page. Returns the created page id.
func (s *Service) Run(ctx context.Context, dash *argo.Dashboard) (string, error) {
	ctx, span := tracer.Start(ctx, "summary:Run")
	defer span.End()

	parent, err := s.resolveParent(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to resolve parent page")
		return "", err
	}

	payload, err := json.Marshal(dash)
	if err != nil {
		return "", err
	}

	text, err := s.gemini.GenerateContent(ctx, prompt+"\n\n"+string(payload))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}

	title := fmt.Sprintf("🤖 Riepilogo AI — %s", timezone.Now().Format("02/01/2006"))
	page, err := s.notion.CreatePage(ctx, notion.CreatePageRequest{
		Parent: notion.Parent{PageId: parent},
		Properties: map[string]notion.Property{
			"title": notion.Title(title),
		},
		Children: paragraphs(text),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create summary page")
		return "", fmt.Errorf("failed to write summary page: %w", err)
	}
	return page.Id, nil
}

// notion caps a rich text span at 2000 characters, paragraphs split on
// blank lines stay far under it in practice but long ones are chunked
// anyway. the limit counts characters, so chunks are cut on rune
// boundaries, a byte cut would mangle accented output mid-rune
const maxSpan = 2000

func paragraphs(text string) []notion.Block {
	var blocks []notion.Block
	for _, chunk := range strings.Split(text, "\n\n") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		runes := []rune(chunk)
		for len(runes) > maxSpan {
			blocks = append(blocks, notion.ParagraphBlock(string(runes[:maxSpan])))
			runes = runes[maxSpan:]
		}
		blocks = append(blocks, notion.ParagraphBlock(string(runes)))
	}
	return blocks
}
