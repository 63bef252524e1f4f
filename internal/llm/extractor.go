// Package llm - extractor.go builds prompts for structured JSON output.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the structure for LLM-based content extraction.
// It provides a reusable way to define what information to extract from text.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "JobRequirements", "BrandVoice")
	Description string        // System prompt preamble describing the extraction task
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", "[]string", "map[string]string"
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	// System description
	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	// Output schema
	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	// Instructions
	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Base every field on the input text; do not invent facts.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	// Input text
	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// --- Predefined Schemas ---

// ComplianceReviewSchema returns the extraction schema for reviewing marketing
// copy against financial-services advertising rules.
func ComplianceReviewSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "ComplianceReview",
		Description: `You are a compliance reviewer for a wealth-management recruiting firm.
Review the marketing copy below for statements a financial-services regulator would flag:
promissory or guaranteed performance claims, specific investment advice, unsourced statistics,
testimonials without disclosure, and misleading comparisons.
Quote the offending text exactly. Do not flag ordinary recruiting language.`,
		Fields: []SchemaField{
			{
				Name:        "compliant",
				Type:        "boolean",
				Description: "true when nothing in the copy needs to change",
				Required:    true,
			},
			{
				Name:        "findings",
				Type:        "[{\"rule\": \"string\", \"quote\": \"string\", \"suggestion\": \"string\"}]",
				Description: "One entry per problem: short rule name, verbatim quote, and a compliant rewrite",
				Required:    true,
			},
		},
	}
}

// DesignSpecSchema returns the extraction schema for a visual design
// specification of a piece of branded content.
func DesignSpecSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "DesignSpec",
		Description: `You are a brand designer. Propose a visual treatment for the content below
for the requested medium. Use only the brand colors listed in the brief; give every color as a #RRGGBB hex value.`,
		Fields: []SchemaField{
			{
				Name:        "layout",
				Type:        "\"string\"",
				Description: "One-sentence layout description",
				Required:    true,
			},
			{
				Name:        "headline",
				Type:        "\"string\"",
				Description: "Suggested headline, at most 10 words",
				Required:    true,
			},
			{
				Name:        "background_color",
				Type:        "\"string\"",
				Description: "Background color hex",
				Required:    true,
			},
			{
				Name:        "accent_color",
				Type:        "\"string\"",
				Description: "Accent color hex for highlights and buttons",
				Required:    true,
			},
			{
				Name:        "text_color",
				Type:        "\"string\"",
				Description: "Body text color hex",
				Required:    true,
			},
			{
				Name:        "chart",
				Type:        "{\"type\": \"bar|line|pie\", \"labels\": [\"string\"], \"values\": [number]}",
				Description: "Optional chart that supports the message",
				Required:    false,
			},
			{
				Name:        "notes",
				Type:        "[\"string\"]",
				Description: "Additional design guidance",
				Required:    false,
			},
		},
	}
}

// ResearchSummarySchema returns the extraction schema for condensing research
// sources into talking points.
func ResearchSummarySchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "ResearchSummary",
		Description: `You are a research analyst for a wealth-management recruiting firm.
Summarize the sources below for a content author. Only state facts the sources support.`,
		Fields: []SchemaField{
			{
				Name:        "summary",
				Type:        "\"string\"",
				Description: "Two or three sentence overview",
				Required:    true,
			},
			{
				Name:        "talking_points",
				Type:        "[\"string\"]",
				Description: "Short points an author could cite, each ending with the source URL in parentheses",
				Required:    true,
			},
		},
	}
}
