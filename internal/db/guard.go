package db

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"querymap/internal/descriptor"
)

// ErrNotReadOnly is matched by every rejection from CheckReadOnly.
var ErrNotReadOnly = errors.New("query is not read-only")

type Reason string

const (
	ReasonEmpty          Reason = "empty query"
	ReasonMultiStatement Reason = "more than one statement"
	ReasonComment        Reason = "comment in query"
	ReasonNotSelect      Reason = "query does not start with SELECT or WITH"
	ReasonWriteKeyword   Reason = "query contains a writing keyword"
)

// ReadOnlyError reports why a declared query was refused. Operation is set
// when the query came from a registry.
type ReadOnlyError struct {
	Operation string
	Reason    Reason
	Word      string
}

func (e *ReadOnlyError) Error() string {
	var b strings.Builder
	b.WriteString("db: ")
	if e.Operation != "" {
		fmt.Fprintf(&b, "operation %q: ", e.Operation)
	}
	b.WriteString(string(e.Reason))
	if e.Word != "" {
		fmt.Fprintf(&b, " (%s)", e.Word)
	}
	return b.String()
}

func (e *ReadOnlyError) Unwrap() error { return ErrNotReadOnly }

// Words that change data or schema, or run arbitrary code. INTO covers
// SELECT ... INTO on SQL Server and MySQL.
var writeKeywords = map[string]struct{}{
	"INSERT": {}, "UPDATE": {}, "DELETE": {}, "MERGE": {}, "UPSERT": {},
	"TRUNCATE": {}, "DROP": {}, "ALTER": {}, "CREATE": {}, "RENAME": {},
	"EXEC": {}, "EXECUTE": {}, "CALL": {}, "GRANT": {}, "REVOKE": {},
	"INTO": {}, "COPY": {}, "ATTACH": {}, "DETACH": {}, "PRAGMA": {},
}

// CheckReadOnly accepts a single SELECT or WITH statement that names no
// writing keyword outside of string literals and quoted identifiers.
func CheckReadOnly(query string) error {
	if e := inspect(query); e != nil {
		return e
	}
	return nil
}

// CheckOperations runs CheckReadOnly over every descriptor in reg and
// reports all refused operations at once.
func CheckOperations(reg *descriptor.Registry) error {
	var err error
	for _, name := range reg.Names() {
		d, _ := reg.Lookup(name)
		if e := inspect(d.Query()); e != nil {
			e.Operation = name
			err = multierr.Append(err, e)
		}
	}
	return err
}

func inspect(query string) *ReadOnlyError {
	toks, reason := words(query)
	if reason != "" {
		return &ReadOnlyError{Reason: reason}
	}
	if len(toks) == 0 {
		return &ReadOnlyError{Reason: ReasonEmpty}
	}
	if toks[0] != "SELECT" && toks[0] != "WITH" {
		return &ReadOnlyError{Reason: ReasonNotSelect, Word: toks[0]}
	}
	for _, w := range toks[1:] {
		if _, ok := writeKeywords[w]; ok {
			return &ReadOnlyError{Reason: ReasonWriteKeyword, Word: w}
		}
	}
	return nil
}

// words splits query into upper-cased bare words, skipping string literals
// and quoted identifiers ('..', "..", [..], `..`). A single trailing
// semicolon is tolerated.
func words(query string) ([]string, Reason) {
	var (
		out   []string
		start = -1
		quote byte
	)
	flush := func(i int) {
		if start >= 0 {
			out = append(out, strings.ToUpper(query[start:i]))
			start = -1
		}
	}

	for i := 0; i < len(query); i++ {
		c := query[i]
		if quote != 0 {
			if c == quote {
				// doubled quote is an escaped quote
				if i+1 < len(query) && query[i+1] == quote {
					i++
					continue
				}
				quote = 0
			}
			continue
		}

		switch {
		case isWordByte(c):
			if start < 0 {
				start = i
			}
			continue
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '[':
			quote = ']'
		case c == '-' && i+1 < len(query) && query[i+1] == '-',
			c == '/' && i+1 < len(query) && query[i+1] == '*':
			return nil, ReasonComment
		case c == ';':
			if strings.TrimSpace(query[i+1:]) != "" {
				return nil, ReasonMultiStatement
			}
		}
		flush(i)
	}
	flush(len(query))
	return out, ""
}

func isWordByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
