package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/lexandro/fileassistant/agent"
	"github.com/lexandro/fileassistant/tools"
)

// promptHandler is the part of the agent the REPL needs.
type promptHandler interface {
	HandlePrompt(ctx context.Context, session *agent.Session, prompt string) any
}

// runChat reads prompts line by line until "exit", "quit", end of input or cancellation.
// Every prompt is handled to completion before the next one is read.
func runChat(ctx context.Context, handler promptHandler, session *agent.Session, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Gemini File Assistant (type 'exit' to quit)")

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(out, "\nYou: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return nil
		}

		prompt := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(prompt) {
		case "exit", "quit":
			return nil
		case "":
			continue
		}

		text, _ := tools.FormatResult(handler.HandlePrompt(ctx, session, prompt))
		fmt.Fprintf(out, "Agent: %s\n", text)
	}
}
