package notion

import "strings"

type TextContent struct {
	Content string `json:"content"`
}

type RichText struct {
	Type      string       `json:"type,omitempty"`
	Text      *TextContent `json:"text,omitempty"`
	PlainText string       `json:"plain_text,omitempty"`
}

type SelectOption struct {
	Name string `json:"name"`
}

type Date struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// Property is the subset of Notion property payloads the sync writes
// and reads back. Exactly one field is set per value.
type Property struct {
	Type     string         `json:"type,omitempty"`
	Title    []RichText     `json:"title,omitempty"`
	RichText []RichText     `json:"rich_text,omitempty"`
	Number   *float64       `json:"number,omitempty"`
	Select   *SelectOption  `json:"select,omitempty"`
	Date     *Date          `json:"date,omitempty"`
	Checkbox *bool          `json:"checkbox,omitempty"`
}

func textOf(content string) []RichText {
	return []RichText{{Text: &TextContent{Content: content}}}
}

func Title(content string) Property {
	return Property{Title: textOf(content)}
}

func Text(content string) Property {
	return Property{RichText: textOf(content)}
}

func Number(value float64) Property {
	return Property{Number: &value}
}

func Select(name string) Property {
	return Property{Select: &SelectOption{Name: name}}
}

func DateStart(start string) Property {
	return Property{Date: &Date{Start: start}}
}

func Checkbox(value bool) Property {
	return Property{Checkbox: &value}
}

// PlainText flattens a title or rich_text value to its string form,
// preferring the API's plain_text rendering when present.
func (p Property) PlainText() string {
	spans := p.Title
	if len(spans) == 0 {
		spans = p.RichText
	}

	var b strings.Builder
	for _, span := range spans {
		if span.PlainText != "" {
			b.WriteString(span.PlainText)
		} else if span.Text != nil {
			b.WriteString(span.Text.Content)
		}
	}
	return b.String()
}

type Page struct {
	Id         string              `json:"id"`
	Properties map[string]Property `json:"properties"`
}

type Parent struct {
	DatabaseId string `json:"database_id,omitempty"`
	PageId     string `json:"page_id,omitempty"`
}

type Paragraph struct {
	RichText []RichText `json:"rich_text"`
}

type Block struct {
	Object    string     `json:"object"`
	Type      string     `json:"type"`
	Paragraph *Paragraph `json:"paragraph,omitempty"`
}

func ParagraphBlock(content string) Block {
	return Block{
		Object:    "block",
		Type:      "paragraph",
		Paragraph: &Paragraph{RichText: textOf(content)},
	}
}
