package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// textView is implemented by results with a compact line-oriented form.
type textView interface {
	Lines() []string
}

func Write(w io.Writer, format Format, v any) error {
	if format == FormatText {
		if tv, ok := v.(textView); ok {
			_, err := fmt.Fprintln(w, strings.Join(tv.Lines(), "\n"))
			return err
		}
		if m, ok := v.(map[string]string); ok {
			keys := make([]string, 0, len(m))
			for k := range m {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if _, err := fmt.Fprintf(w, "%s=%s\n", k, m[k]); err != nil {
					return err
				}
			}
			return nil
		}
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
