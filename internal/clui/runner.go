package clui

import (
	"bufio"
	"fmt"
	"io"

	"github.com/yirenWang/myVelib/internal/logger"
)

// RunScript feeds every line of r to the interpreter and writes each
// command's message to w, one block per command. Empty lines and comments
// produce no output.
func (i *Interpreter) RunScript(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		msg := i.Execute(scanner.Text())
		if msg == "" {
			continue
		}
		if _, err := fmt.Fprintln(w, msg); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Errorf("reading scenario input failed at line %d: %v", line, err)
		return err
	}
	return nil
}
