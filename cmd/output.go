package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/s0up4200/openstates/collection"
)

var (
	labelFields = []string{"full_name", "title", "committee", "name"}
	idFields    = []string{"leg_id", "bill_id", "id"}
)

// writeOutput prints data as indented JSON or as a readable listing
func writeOutput(w io.Writer, data *collection.Collection, format string) error {
	switch format {
	case "json":
		raw, err := data.MarshalJSON()
		if err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		buf.WriteByte('\n')
		_, err = buf.WriteTo(w)
		return err
	case "console", "":
		return writeConsole(w, data)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

func writeConsole(w io.Writer, data *collection.Collection) error {
	switch data.Kind() {
	case collection.Array:
		if data.Len() == 0 {
			_, err := fmt.Fprintln(w, "No results.")
			return err
		}
		fmt.Fprintf(w, "Found %d results:\n", data.Len())
		fmt.Fprintln(w, strings.Repeat("-", 80))
		for _, item := range data.Items() {
			if item.Kind() == collection.Object {
				writeRecord(w, item)
				continue
			}
			fmt.Fprintf(w, "• %s\n", item.String())
		}
		return nil
	case collection.Object:
		writeRecord(w, data)
		return nil
	default:
		_, err := fmt.Fprintln(w, data.String())
		return err
	}
}

// writeRecord prints a headline from well known fields followed by the
// record's scalar fields. Nested values are summarized by size.
func writeRecord(w io.Writer, record *collection.Collection) {
	headline := firstString(record, labelFields)
	if id := firstString(record, idFields); id != "" {
		if headline == "" {
			headline = id
		} else {
			headline += " (" + id + ")"
		}
	}
	fmt.Fprintf(w, "• %s\n", headline)

	for _, key := range record.Keys() {
		value, _ := record.Get(key)
		switch value.Kind() {
		case collection.Null:
			continue
		case collection.Array:
			fmt.Fprintf(w, "  %s: [%d items]\n", key, value.Len())
		case collection.Object:
			fmt.Fprintf(w, "  %s: {%d fields}\n", key, value.Len())
		default:
			fmt.Fprintf(w, "  %s: %s\n", key, value.String())
		}
	}
}

func firstString(record *collection.Collection, keys []string) string {
	for _, key := range keys {
		if value, ok := record.Get(key); ok {
			if s, ok := value.Str(); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
