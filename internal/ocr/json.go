package ocr

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jackzampolin/adrbuch/internal/types"
)

//go:embed schemas/page.schema.json
var schemaFS embed.FS

var (
	pageSchemaOnce sync.Once
	pageSchema     *jsonschema.Schema
	pageSchemaErr  error
)

// jsonPage is the JSON OCR page format.
type jsonPage struct {
	PageID int        `json:"page_id"`
	Lines  []jsonLine `json:"lines"`
}

type jsonLine struct {
	Text   string `json:"text"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func compiledPageSchema() (*jsonschema.Schema, error) {
	pageSchemaOnce.Do(func() {
		raw, err := schemaFS.ReadFile("schemas/page.schema.json")
		if err != nil {
			pageSchemaErr = fmt.Errorf("failed to read page schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("page.schema.json", bytes.NewReader(raw)); err != nil {
			pageSchemaErr = fmt.Errorf("failed to load page schema: %w", err)
			return
		}
		pageSchema, pageSchemaErr = compiler.Compile("page.schema.json")
	})
	return pageSchema, pageSchemaErr
}

// ParseJSON reads a JSON OCR page after validating it against the page schema.
func ParseJSON(r io.Reader) ([]types.TextBox, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading JSON page: %w", err)
	}

	schema, err := compiledPageSchema()
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON page: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("JSON page does not match schema: %w", err)
	}

	var page jsonPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("decoding JSON page: %w", err)
	}
	boxes := make([]types.TextBox, len(page.Lines))
	for i, l := range page.Lines {
		boxes[i] = types.TextBox{
			Box:  types.Box{X: l.X, Y: l.Y, Width: l.Width, Height: l.Height},
			Text: l.Text,
		}
	}
	return boxes, nil
}
