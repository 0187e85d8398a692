package db

import (
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/nickyhof/SnapDB/core"
	"github.com/nickyhof/SnapDB/ps"
)

type ResultType int

const (
	QueryResultType ResultType = iota
	CommitResultType
	ErrorResultType
)

// Result is the outcome of one statement. Value returns the form used at
// the JSON boundary: the row list for queries and a status string
// otherwise.
type Result interface {
	Type() ResultType
	Display(w io.Writer)
	Value() any
}

type QueryResult struct {
	Columns          []string
	Rows             []core.Row
	ExecutionTimeSec float64
}

type CommitResult struct {
	Message          string
	Transaction      ps.Transaction
	TablesCreated    int
	TablesDeleted    int
	RowsInserted     int
	RowsUpdated      int
	RowsDeleted      int
	ExecutionTimeSec float64
}

// ErrorResult carries a failed statement inside a Batch.
type ErrorResult struct {
	Err error
}

func (result QueryResult) Type() ResultType {
	return QueryResultType
}

func (result CommitResult) Type() ResultType {
	return CommitResultType
}

func (result ErrorResult) Type() ResultType {
	return ErrorResultType
}

func (result QueryResult) Value() any {
	return result
}

func (result CommitResult) Value() any {
	return result.Message
}

func (result ErrorResult) Value() any {
	return result.String()
}

func (result ErrorResult) String() string {
	return "Error: " + result.Err.Error()
}

// MarshalJSON renders the rows as a list of objects whose keys follow the
// column order.
func (result QueryResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range result.Rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, column := range result.Columns {
			if j > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(column)
			if err != nil {
				return nil, err
			}
			value, err := json.Marshal(row[column])
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(value)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// Data formats the rows as strings in column order.
func (result QueryResult) Data() [][]string {
	data := make([][]string, len(result.Rows))
	for i, row := range result.Rows {
		values := make([]string, len(result.Columns))
		for j, column := range result.Columns {
			values[j] = core.FormatValue(row[column])
		}
		data[i] = values
	}
	return data
}

// formatDuration formats a duration in human-readable form
func formatDuration(secs float64) string {
	if secs < 0.001 {
		return "<1ms"
	} else if secs < 1 {
		ms := secs * 1000
		if ms < 10 {
			return fmt.Sprintf("%.1fms", ms)
		}
		return fmt.Sprintf("%dms", int(ms))
	} else if secs < 60 {
		if secs < 10 {
			return fmt.Sprintf("%.1fs", secs)
		}
		return fmt.Sprintf("%ds", int(secs))
	}
	mins := int(secs / 60)
	remainSecs := int(secs) % 60
	if remainSecs == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dm%ds", mins, remainSecs)
}

func (result QueryResult) ExecutionTime() string {
	return formatDuration(result.ExecutionTimeSec)
}

func (result CommitResult) ExecutionTime() string {
	return formatDuration(result.ExecutionTimeSec)
}

func (result QueryResult) Display(w io.Writer) {
	if len(result.Rows) == 0 {
		fmt.Fprintf(w, "Empty set (%s)\n", result.ExecutionTime())
		return
	}

	data := NewTable(w)
	data.Header(result.Columns)
	data.Bulk(result.Data())
	data.Render()

	if len(result.Rows) == 1 {
		fmt.Fprintf(w, "1 row (%s)\n", result.ExecutionTime())
	} else {
		fmt.Fprintf(w, "%d rows (%s)\n", len(result.Rows), result.ExecutionTime())
	}
}

func (result CommitResult) Display(w io.Writer) {
	fmt.Fprintf(w, "%s (%s)\n", result.Message, result.ExecutionTime())
}

func (result ErrorResult) Display(w io.Writer) {
	fmt.Fprintln(w, result.String())
}

// Batch holds the results of a statement batch in submission order.
type Batch []Result

// Value returns the single result value of a one-statement batch and the
// list of values otherwise.
func (batch Batch) Value() any {
	if len(batch) == 1 {
		return batch[0].Value()
	}
	values := make([]any, len(batch))
	for i, result := range batch {
		values[i] = result.Value()
	}
	return values
}

// Err returns the error of the first failed statement.
func (batch Batch) Err() error {
	for _, result := range batch {
		if failed, ok := result.(ErrorResult); ok {
			return failed.Err
		}
	}
	return nil
}

func (batch Batch) Display(w io.Writer) {
	for _, result := range batch {
		result.Display(w)
	}
}
