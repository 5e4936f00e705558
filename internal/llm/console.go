package llm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
)

// ConsoleDecider reads each action from an interactive console instead of
// a model.
type ConsoleDecider struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

func NewConsoleDecider(in io.Reader, out io.Writer) *ConsoleDecider {
	return &ConsoleDecider{in: bufio.NewReader(in), out: out}
}

// Decide prints "next action:" and returns the next input line.
func (d *ConsoleDecider) Decide(ctx context.Context, req Request) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(d.out, "next action:")
	line, err := d.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read action: %w", err)
	}
	return trimReply(line), nil
}
