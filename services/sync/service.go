// Package sync reconciles the portal's record categories into Notion
// databases. Writes are create-only and keyed, running the sync twice
// over the same data creates nothing the second time.
package sync

import (
	"context"
	"log/slog"

	"argosync/lib/notion"
	"argosync/lib/scrapers/argo"
	"argosync/lib/timezone"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/sync")

// every synced page carries its upstream key in this rich text
// property, the reconciler reads it back to decide what already exists
const keyProperty = "pk"

// Store is the slice of the Notion client the reconciler needs.
type Store interface {
	PropertyValues(ctx context.Context, databaseId, property string) (map[string]struct{}, error)
	CreatePage(ctx context.Context, req notion.CreatePageRequest) (*notion.Page, error)
}

// Category declares how one record stream maps onto one database.
type Category struct {
	Name     string
	Database string
	// ordered pk candidates, a record missing them all falls back to
	// its own serialized form as key
	KeyChain []string
	Fields   []Field
	// date candidates, when set only today-or-later records are
	// written and records with unparseable dates are skipped
	DateGate []string
	// title property to dedup on by full text equality, empty disables
	TitleDedup string
	// pulls this category's records out of the dashboard
	Extract func(*argo.Dashboard) []argo.Record
}

// Report is the per-category outcome. Failed counts records whose page
// creation failed after the skip checks passed.
type Report struct {
	Category string
	Created  int
	Skipped  int
	Failed   int
}

type Service struct {
	store Store
	// subject spellings seen so far, shared across categories so the
	// same select option comes out everywhere
	subjects []string
}

func New(store Store) *Service {
	return &Service{store: store}
}

// Reconcile writes the records missing from the category's database.
// Existing keys are collected up front, so a record is skipped rather
// than duplicated no matter how often it shows up upstream. A failed
// page creation is logged and counted, the remaining records still
// run.
func (s *Service) Reconcile(ctx context.Context, cat Category, records []argo.Record) (Report, error) {
	ctx, span := tracer.Start(ctx, "sync:Reconcile")
	span.SetAttributes(attribute.String("category", cat.Name))
	defer span.End()

	report := Report{Category: cat.Name}

	existing, err := s.store.PropertyValues(ctx, cat.Database, keyProperty)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load existing keys")
		return report, err
	}

	var titles map[string]struct{}
	if cat.TitleDedup != "" {
		titles, err = s.store.PropertyValues(ctx, cat.Database, cat.TitleDedup)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to load existing titles")
			return report, err
		}
	}

	today := timezone.StartOfDay(timezone.Now())

	for _, record := range records {
		key := record.Key(cat.KeyChain...)
		if key == "" {
			report.Skipped++
			continue
		}
		if _, ok := existing[key]; ok {
			report.Skipped++
			continue
		}

		if len(cat.DateGate) > 0 {
			date, ok := parseDate(record.Text(cat.DateGate...))
			if !ok || date.Before(today) {
				report.Skipped++
				continue
			}
		}

		properties := s.renderProperties(cat, record, key)

		if titles != nil {
			title := properties[titleProperty(cat)].PlainText()
			if _, ok := titles[title]; ok {
				report.Skipped++
				continue
			}
		}

		_, err := s.store.CreatePage(ctx, notion.CreatePageRequest{
			Parent:     notion.Parent{DatabaseId: cat.Database},
			Properties: properties,
		})
		if err != nil {
			slog.WarnContext(ctx, "failed to create page",
				"category", cat.Name, "key", key, "err", err)
			report.Failed++
			continue
		}

		report.Created++
		// guards against the same record appearing twice in one run
		existing[key] = struct{}{}
		if titles != nil {
			titles[properties[titleProperty(cat)].PlainText()] = struct{}{}
		}
	}

	span.SetAttributes(
		attribute.Int("created", report.Created),
		attribute.Int("skipped", report.Skipped),
		attribute.Int("failed", report.Failed),
	)
	slog.InfoContext(ctx, "category reconciled", "category", cat.Name,
		"created", report.Created, "skipped", report.Skipped, "failed", report.Failed)
	return report, nil
}

func titleProperty(cat Category) string {
	for _, field := range cat.Fields {
		if field.Kind == KindTitle {
			return field.Property
		}
	}
	return ""
}

func (s *Service) renderProperties(cat Category, record argo.Record, key string) map[string]notion.Property {
	properties := map[string]notion.Property{
		keyProperty: notion.Text(key),
	}

	for _, field := range cat.Fields {
		switch field.Kind {
		case KindTitle:
			text := record.Text(field.Candidates...)
			if field.StripHTML {
				text = stripHTML(text)
			}
			if text == "" {
				text = field.Default
			}
			if text == "" {
				// a page needs a title, the key always exists
				text = key
			}
			properties[field.Property] = notion.Title(truncate(text, field.Truncate))

		case KindText:
			text := record.Text(field.Candidates...)
			if field.StripHTML {
				text = stripHTML(text)
			}
			if text == "" {
				text = field.Default
			}
			if text != "" {
				properties[field.Property] = notion.Text(text)
			}

		case KindNumber:
			if _, ok := record.Get(field.Candidates...); ok {
				properties[field.Property] = notion.Number(record.Number(field.Candidates...))
			}

		case KindSelect:
			value := record.Text(field.Candidates...)
			if value == "" {
				value = field.Default
			}
			if field.Normalize {
				value = s.normalizeSubject(value)
			}
			if value != "" {
				properties[field.Property] = notion.Select(value)
			}

		case KindDate:
			if date, ok := parseDate(record.Text(field.Candidates...)); ok {
				properties[field.Property] = notion.DateStart(date.Format("2006-01-02"))
			}

		case KindCheckbox:
			properties[field.Property] = notion.Checkbox(record.Flag(field.Candidates...))
		}
	}
	return properties
}

// Run reconciles every category against the given dashboard snapshot,
// sequentially. Categories are independent, a category whose key
// preload fails is reported with every record failed and the rest
// still run.
func (s *Service) Run(ctx context.Context, dash *argo.Dashboard, categories []Category) []Report {
	ctx, span := tracer.Start(ctx, "sync:Run")
	defer span.End()

	var reports []Report
	for _, cat := range categories {
		records := cat.Extract(dash)
		report, err := s.Reconcile(ctx, cat, records)
		if err != nil {
			slog.WarnContext(ctx, "category aborted", "category", cat.Name, "err", err)
			report.Failed += len(records) - report.Created - report.Skipped - report.Failed
		}
		reports = append(reports, report)
	}
	return reports
}
