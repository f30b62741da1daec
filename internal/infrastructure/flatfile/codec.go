// Package flatfile reads and writes entity collections as comma separated
// text files: one header line, then one record per line in column order.
// Fields are never quoted or escaped.
package flatfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"academic-records/pkg/apperror"
	"academic-records/pkg/logger"

	"github.com/sirupsen/logrus"
)

const Delimiter = ","

const maxLineBytes = 1 << 20

// Schema describes the column layout of one entity file.
type Schema struct {
	Header string
	// GreedyTail lets the last column keep any delimiters it contains.
	GreedyTail bool
}

// Columns returns the number of fields per row.
func (s Schema) Columns() int {
	return strings.Count(s.Header, Delimiter) + 1
}

// Codec converts one entity type to and from a row of text fields.
type Codec[T any] interface {
	Schema() Schema
	Encode(rec T) []string
	Decode(fields []string) (T, error)
}

// DecodeResult is the outcome of reading a collection.
type DecodeResult[T any] struct {
	Records []T
	Parsed  int
	Skipped int
	// Truncated is set when rows remained after max records were read.
	Truncated bool
	// Retained holds the text of skipped rows and of rows past max, in file
	// order. Saves write them back so a rewrite never loses them.
	Retained []string
}

// RowError describes a row that could not be decoded.
type RowError struct {
	Line   int
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// SplitRow cuts a line into fields according to the schema.
func SplitRow(line string, schema Schema) []string {
	if schema.GreedyTail {
		return strings.SplitN(line, Delimiter, schema.Columns())
	}
	return strings.Split(line, Delimiter)
}

// Decode reads rows from r until EOF or until max records have been parsed
// (max <= 0 reads everything).
// The first line is the header and is skipped. Rows with the wrong number of
// fields or unparsable values are skipped and counted. Both kinds of unread
// rows are kept verbatim in Retained.
func Decode[T any](r io.Reader, codec Codec[T], max int) (DecodeResult[T], error) {
	result := DecodeResult[T]{Records: make([]T, 0)}
	schema := codec.Schema()
	columns := schema.Columns()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo == 1 {
			continue
		}

		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if max > 0 && len(result.Records) >= max {
			result.Truncated = true
			result.Retained = append(result.Retained, line)
			continue
		}

		fields := SplitRow(line, schema)
		if len(fields) != columns {
			result.Skipped++
			result.Retained = append(result.Retained, line)
			logRowError(schema, &RowError{
				Line:   lineNo,
				Reason: fmt.Sprintf("expected %d fields, got %d", columns, len(fields)),
			})
			continue
		}

		rec, err := codec.Decode(fields)
		if err != nil {
			result.Skipped++
			result.Retained = append(result.Retained, line)
			logRowError(schema, &RowError{Line: lineNo, Reason: err.Error()})
			continue
		}

		result.Records = append(result.Records, rec)
		result.Parsed++
	}

	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("%w: %v", apperror.ErrStorageUnavailable, err)
	}

	return result, nil
}

// Encode writes the header followed by one row per record.
// A field holding the delimiter or a line break is written as-is and the
// row will not decode back to the same record.
func Encode[T any](w io.Writer, codec Codec[T], records []T) error {
	return EncodeRetaining(w, codec, records, nil)
}

// EncodeRetaining works like Encode and then appends the retained lines
// unchanged.
func EncodeRetaining[T any](w io.Writer, codec Codec[T], records []T, retained []string) error {
	schema := codec.Schema()
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(schema.Header + "\n"); err != nil {
		return err
	}

	for i, rec := range records {
		fields := codec.Encode(rec)
		for col, f := range fields {
			if !unsafeField(f, col, len(fields), schema) {
				continue
			}
			logger.WithFields(logrus.Fields{
				"header": schema.Header,
				"row":    i + 1,
				"column": col + 1,
			}).Warn("Field contains a delimiter or line break and will corrupt its row")
		}

		if _, err := bw.WriteString(strings.Join(fields, Delimiter) + "\n"); err != nil {
			return err
		}
	}

	for _, line := range retained {
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func unsafeField(f string, col, total int, schema Schema) bool {
	if strings.ContainsAny(f, "\r\n") {
		return true
	}
	if schema.GreedyTail && col == total-1 {
		return false
	}
	return strings.Contains(f, Delimiter)
}

// ReadFile decodes the collection stored at path. A missing file is an empty
// collection; any other failure is ErrStorageUnavailable.
func ReadFile[T any](path string, codec Codec[T], max int) (DecodeResult[T], error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DecodeResult[T]{Records: make([]T, 0)}, nil
		}
		logger.Error("Failed to open %s: %v", path, err)
		return DecodeResult[T]{}, fmt.Errorf("%w: %v", apperror.ErrStorageUnavailable, err)
	}
	defer f.Close()

	result, err := Decode(f, codec, max)
	if err != nil {
		logger.Error("Failed to read %s: %v", path, err)
		return result, err
	}

	if result.Skipped > 0 {
		logger.WithFields(logrus.Fields{
			"path":    path,
			"parsed":  result.Parsed,
			"skipped": result.Skipped,
		}).Warn("Skipped malformed rows")
	}
	if result.Truncated {
		logger.Warn("%s holds more than %d records; extra rows ignored", path, max)
	}

	return result, nil
}

// WriteFile replaces the file at path with the encoded collection followed
// by the retained lines. Data is written to a temporary file in the same
// directory and renamed over path.
func WriteFile[T any](path string, codec Codec[T], records []T, retained []string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrStorageUnavailable, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		logger.Error("Failed to create temp file for %s: %v", path, err)
		return fmt.Errorf("%w: %v", apperror.ErrStorageUnavailable, err)
	}
	tmpName := tmp.Name()

	if err := EncodeRetaining(tmp, codec, records, retained); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", apperror.ErrStorageUnavailable, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", apperror.ErrStorageUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", apperror.ErrStorageUnavailable, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", apperror.ErrStorageUnavailable, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		logger.Error("Failed to replace %s: %v", path, err)
		return fmt.Errorf("%w: %v", apperror.ErrStorageUnavailable, err)
	}

	return nil
}

func logRowError(schema Schema, err *RowError) {
	logger.WithFields(logrus.Fields{
		"header": schema.Header,
		"line":   err.Line,
	}).Warnf("Skipping malformed row: %s", err.Reason)
}

// Exists reports whether path exists. Errors other than absence are
// ErrStorageUnavailable.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", apperror.ErrStorageUnavailable, err)
}

// Stats summarizes one entity file as of its last load.
type Stats struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Records   int    `json:"records"`
	Skipped   int    `json:"skipped"`
	Capacity  int    `json:"capacity"`
	Truncated bool   `json:"truncated"`
}
