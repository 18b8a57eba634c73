package common

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dtnitsch/whatif/models"
	"gopkg.in/yaml.v3"
)

// Output formats for article listings.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// FilterFields converts v to a map keyed by its JSON names, keeping only the
// comma separated fields. An empty list keeps everything.
func FilterFields(v interface{}, fieldsStr string) map[string]interface{} {
	full := structToMap(v)
	if fieldsStr == "" {
		return full
	}

	include := make(map[string]bool)
	for _, f := range strings.Split(fieldsStr, ",") {
		include[strings.TrimSpace(f)] = true
	}

	filtered := make(map[string]interface{})
	for key, value := range full {
		if include[key] {
			filtered[key] = value
		}
	}
	return filtered
}

// structToMap converts a struct to map[string]interface{} using JSON marshaling.
func structToMap(obj interface{}) map[string]interface{} {
	data, _ := json.Marshal(obj)
	var result map[string]interface{}
	_ = json.Unmarshal(data, &result)
	return result
}

// PrintArticles writes articles as a table, JSON or YAML.
func PrintArticles(w io.Writer, articles []models.Article, format, fields string) error {
	switch strings.ToLower(format) {
	case "", FormatTable:
		printTable(w, articles)
		return nil
	case FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
	}

	rows := make([]map[string]interface{}, len(articles))
	for i, a := range articles {
		rows[i] = FilterFields(a, fields)
	}

	var (
		data []byte
		err  error
	)
	if strings.ToLower(format) == FormatYAML {
		data, err = yaml.Marshal(rows)
	} else {
		data, err = json.MarshalIndent(rows, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal articles: %w", err)
	}
	_, err = fmt.Fprintln(w, strings.TrimRight(string(data), "\n"))
	return err
}

func printTable(w io.Writer, articles []models.Article) {
	if len(articles) == 0 {
		fmt.Fprintln(w, "No articles found")
		return
	}

	fmt.Fprintf(w, "%-6s %-4s %-4s %s\n", "#", "Fav", "Read", "Title")
	fmt.Fprintln(w, strings.Repeat("-", 60))
	for _, a := range articles {
		fmt.Fprintf(w, "%-6s %-4s %-4s %s\n", strconv.Itoa(a.Number), mark(a.Favorite, "*"), mark(a.Read, "x"), a.Title)
	}
	fmt.Fprintf(w, "\nTotal: %d articles\n", len(articles))
}

func mark(set bool, symbol string) string {
	if set {
		return symbol
	}
	return ""
}
