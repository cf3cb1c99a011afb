package compdb

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// Database is a compile database in input order.
type Database []Entry

// Load reads and parses the compile database at path.
func Load(path string) (Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	db, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return db, nil
}

// Parse parses a compile database from JSON. The input must be an array of
// objects, each carrying a non-empty string "file" field.
func Parse(data []byte) (Database, error) {
	if !gjson.ValidBytes(data) {
		return nil, parseError(data)
	}

	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, &SchemaError{Index: -1, Reason: "top-level value is not an array"}
	}

	db := Database{}
	var schemaErr error
	i := 0
	root.ForEach(func(_, value gjson.Result) bool {
		entry, err := parseEntry(i, value)
		if err != nil {
			schemaErr = err
			return false
		}
		db = append(db, entry)
		i++
		return true
	})
	if schemaErr != nil {
		return nil, schemaErr
	}

	return db, nil
}

func parseEntry(i int, value gjson.Result) (Entry, error) {
	if !value.IsObject() {
		return Entry{}, &SchemaError{Index: i, Reason: "entry is not an object"}
	}

	file := value.Get("file")
	switch {
	case !file.Exists():
		return Entry{}, &SchemaError{Index: i, Reason: `missing "file" field`}
	case file.Type != gjson.String:
		return Entry{}, &SchemaError{Index: i, Reason: `"file" is not a string`}
	case file.Str == "":
		return Entry{}, &SchemaError{Index: i, Reason: `"file" is empty`}
	}

	return Entry{
		File: file.Str,
		Raw:  json.RawMessage(value.Raw),
	}, nil
}

// parseError locates the syntax error for the diagnostic.
func parseError(data []byte) error {
	var syntaxErr *json.SyntaxError
	err := json.Unmarshal(data, new(json.RawMessage))
	if errors.As(err, &syntaxErr) {
		return fmt.Errorf("%w: offset %d: %s", ErrParse, syntaxErr.Offset, syntaxErr.Error())
	}
	if err != nil {
		return fmt.Errorf("%w: %s", ErrParse, err.Error())
	}
	return ErrParse
}
