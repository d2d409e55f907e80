// Package llm talks to the language model that decides which file operation a
// prompt maps to.
package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNoCandidates is returned when the model response carries no candidate.
var ErrNoCandidates = errors.New("no candidates in response")

// FunctionDeclaration advertises one callable tool to the model.
type FunctionDeclaration struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parametersJsonSchema,omitempty"`
}

// FunctionCall is a tool invocation chosen by the model.
type FunctionCall struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

// Decision is the model's answer to a prompt: either a function call or plain text.
type Decision struct {
	Text string
	Call *FunctionCall
}

// Model decides how to answer a single prompt given the available tools.
type Model interface {
	Name() string
	Decide(ctx context.Context, prompt string, tools []FunctionDeclaration) (Decision, error)
}
