package tcp

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"academic-records/pkg/apperror"
)

const (
	Greeting = "OK:Conectado ao Sistema Academico"

	paramSep = ","
)

// Request is one parsed COMMAND[:params] line.
type Request struct {
	Command string
	Params  string
}

// ParseRequest splits a wire line into its command and raw parameter text.
// The command is matched case-insensitively.
func ParseRequest(line string) (Request, error) {
	line = strings.TrimSpace(strings.TrimRight(line, "\r\n"))
	if line == "" {
		return Request{}, fmt.Errorf("%w: empty command", apperror.ErrInvalidArgument)
	}

	cmd, params, _ := strings.Cut(line, ":")
	cmd = strings.ToUpper(strings.TrimSpace(cmd))
	if cmd == "" {
		return Request{}, fmt.Errorf("%w: empty command", apperror.ErrInvalidArgument)
	}
	return Request{Command: cmd, Params: params}, nil
}

// Fields splits the parameters into exactly n trimmed values. The last value
// keeps any remaining separators.
func (r Request) Fields(n int) ([]string, error) {
	parts := strings.SplitN(r.Params, paramSep, n)
	if len(parts) != n {
		return nil, fmt.Errorf("%w: %s expects %d parameters", apperror.ErrInvalidArgument, r.Command, n)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, nil
}

// Int parses the whole parameter text as one integer.
func (r Request) Int(name string) (int, error) {
	return parseInt(name, r.Params)
}

func parseInt(name, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", apperror.ErrInvalidArgument, name)
	}
	return n, nil
}

// Response is what the server writes back for one command. Close asks the
// server to end the connection once the response is written.
type Response struct {
	Lines []string
	Close bool
}

// OK builds "OK" or "OK:a:b:..." from the payload parts.
func OK(payload ...string) Response {
	if len(payload) == 0 {
		return Response{Lines: []string{"OK"}}
	}
	return Response{Lines: []string{"OK:" + strings.Join(payload, ":")}}
}

// List builds "OK:<n>" followed by one line per row.
func List(rows []string) Response {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, "OK:"+strconv.Itoa(len(rows)))
	lines = append(lines, rows...)
	return Response{Lines: lines}
}

// Fail builds "ERRO:<CODE>:<message>".
func Fail(err error) Response {
	return Response{Lines: []string{"ERRO:" + apperror.Code(err) + ":" + errorMessage(err)}}
}

func errorMessage(err error) string {
	msg := err.Error()
	// Drop the sentinel prefix when it only repeats the code.
	for _, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			msg = strings.TrimPrefix(msg, sentinel.Error()+": ")
			break
		}
	}
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(msg)
}

var sentinels = []error{
	apperror.ErrInvalidArgument,
	apperror.ErrDuplicateKey,
	apperror.ErrNotFound,
	apperror.ErrCapacityExceeded,
	apperror.ErrStorageUnavailable,
	apperror.ErrValidationFailed,
	apperror.ErrSessionExpired,
	apperror.ErrUnauthorized,
	apperror.ErrForbidden,
}

// WriteTo writes every line of r terminated by '\n' and flushes w.
func (r Response) WriteTo(w *bufio.Writer) error {
	for _, line := range r.Lines {
		if _, err := w.WriteString(line); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Status is the first line of r, used for logging.
func (r Response) Status() string {
	if len(r.Lines) == 0 {
		return ""
	}
	return r.Lines[0]
}

// Failed reports whether r is an error response.
func (r Response) Failed() bool {
	return strings.HasPrefix(r.Status(), "ERRO:")
}
