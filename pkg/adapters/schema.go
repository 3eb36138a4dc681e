package adapters

import (
	"github.com/invopop/jsonschema"
	"google.golang.org/genai"
)

// stringListSchema は {field: string[]} を表す厳格な JSON スキーマを組み立てます。
// count が正なら配列長を count に固定します。
func stringListSchema(field, itemDescription string, count int) *jsonschema.Schema {
	items := &jsonschema.Schema{Type: "string", Description: itemDescription}
	list := &jsonschema.Schema{Type: "array", Items: items}
	if count > 0 {
		n := uint64(count)
		list.MinItems = &n
		list.MaxItems = &n
	}

	props := jsonschema.NewProperties()
	props.Set(field, list)

	return &jsonschema.Schema{
		Type:                 "object",
		Properties:           props,
		Required:             []string{field},
		AdditionalProperties: jsonschema.FalseSchema,
	}
}

// stringListGenaiSchema は stringListSchema と同じ制約を genai の Schema で表します。
func stringListGenaiSchema(field, itemDescription string, count int) *genai.Schema {
	list := &genai.Schema{
		Type:  genai.TypeArray,
		Items: &genai.Schema{Type: genai.TypeString, Description: itemDescription},
	}
	if count > 0 {
		n := int64(count)
		list.MinItems = &n
		list.MaxItems = &n
	}
	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: map[string]*genai.Schema{field: list},
		Required:   []string{field},
	}
}
