package agent

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/lexandro/fileassistant/llm"
)

// ErrUnknownTool is returned when a call names a tool outside the catalog.
var ErrUnknownTool = errors.New("unknown tool")

// DefaultDestination is where moveFileByName puts files when no destination is given.
const DefaultDestination = "Desktop"

// Tool is one catalog entry: the contract surfaced to the model.
type Tool struct {
	Name        string
	Description string
	Schema      *jsonschema.Schema

	resolved *jsonschema.Resolved
	decode   func(json.RawMessage) (Call, error)
}

var catalog = mustBuildCatalog()

func mustBuildCatalog() []Tool {
	tools := []Tool{
		newTool(ToolSearchFiles, "Searches files whose names match a given query.",
			SearchFiles{}, nil),
		newTool(ToolGetMetadata, "Gets metadata (path, size, dates, etc.) of a file.",
			GetMetadata{}, nil),
		newTool(ToolReadFile, "Reads the content of a file.",
			ReadFile{}, nil),
		newTool(ToolWriteFile, "Writes or appends content to a file.",
			WriteFile{}, map[string]any{"append": false}),
		newTool(ToolDeleteFile, "Deletes a file or directory at the given path, with confirmation.",
			DeleteFile{}, nil),
		newTool(ToolFindLatestFile, "Finds the most recently modified file whose name matches a given query.",
			FindLatestFile{}, nil),
		newTool(ToolMoveFileByName, "Finds a file by name and moves it to a destination folder like Desktop or Documents.",
			MoveFileByName{Destination: DefaultDestination}, map[string]any{"destination": DefaultDestination}),
		newTool(ToolCreateEmptyFile, "Creates an empty file at the specified path.",
			CreateEmptyFile{}, nil),
	}
	return tools
}

// newTool infers the parameter schema from the argument type and records the
// given defaults in it. zero holds the defaults applied before decoding.
func newTool[T Call](name, description string, zero T, defaults map[string]any) Tool {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		panic(fmt.Sprintf("inferring schema for %s: %v", name, err))
	}
	for property, value := range defaults {
		raw, err := json.Marshal(value)
		if err != nil {
			panic(fmt.Sprintf("encoding default %s.%s: %v", name, property, err))
		}
		schema.Properties[property].Default = raw
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		panic(fmt.Sprintf("resolving schema for %s: %v", name, err))
	}

	return Tool{
		Name:        name,
		Description: description,
		Schema:      schema,
		resolved:    resolved,
		decode: func(raw json.RawMessage) (Call, error) {
			args := zero
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, err
			}
			return args, nil
		},
	}
}

// Catalog returns the fixed tool catalog in declaration order.
func Catalog() []Tool {
	result := make([]Tool, len(catalog))
	copy(result, catalog)
	return result
}

// LookupTool finds a catalog entry by name.
func LookupTool(name string) (Tool, bool) {
	for _, tool := range catalog {
		if tool.Name == name {
			return tool, true
		}
	}
	return Tool{}, false
}

// Declarations renders the catalog as model function declarations.
func Declarations() []llm.FunctionDeclaration {
	declarations := make([]llm.FunctionDeclaration, 0, len(catalog))
	for _, tool := range catalog {
		params, err := json.Marshal(tool.Schema)
		if err != nil {
			panic(fmt.Sprintf("encoding schema for %s: %v", tool.Name, err))
		}
		declarations = append(declarations, llm.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  params,
		})
	}
	return declarations
}

// Decode turns a named call with raw JSON arguments into a typed Call.
// Arguments are validated against the tool's schema, so unknown or
// mistyped parameters are rejected.
func Decode(name string, args json.RawMessage) (Call, error) {
	tool, ok := LookupTool(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	var instance map[string]any
	if err := json.Unmarshal(args, &instance); err != nil {
		return nil, fmt.Errorf("parsing arguments: %w", err)
	}
	if instance == nil {
		instance = map[string]any{}
	}
	if err := tool.resolved.Validate(instance); err != nil {
		return nil, fmt.Errorf("validating arguments: %w", err)
	}

	call, err := tool.decode(args)
	if err != nil {
		return nil, fmt.Errorf("decoding arguments: %w", err)
	}
	return call, nil
}
