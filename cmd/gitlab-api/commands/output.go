package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/fivetwenty-io/gitlab-client/internal/constants"
	"github.com/itchyny/gojq"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// preferredColumns are shown first, in this order, when present on list items.
var preferredColumns = []string{ //nolint:gochecknoglobals // read-only column order
	"id", "iid", "name", "username", "title", "path_with_namespace", "ref", "state", "status", "url", "web_url",
}

const maxTableColumns = 6

func validFormat(format string) bool {
	switch format {
	case constants.FormatJSON, constants.FormatYAML, constants.FormatTable:
		return true
	default:
		return false
	}
}

// outputFormat returns --output, or table on a terminal and json otherwise.
func outputFormat(out io.Writer) (string, error) {
	format := viper.GetString("output")
	if format == "" {
		if file, ok := out.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
			return constants.FormatTable, nil
		}

		return constants.FormatJSON, nil
	}

	if !validFormat(format) {
		return "", fmt.Errorf("%w: %s", constants.ErrUnknownOutputFormat, format)
	}

	return format, nil
}

// toGeneric converts any JSON-serializable value into the plain maps and
// slices gojq and the table renderer operate on.
func toGeneric(value interface{}) (interface{}, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode output: %w", err)
	}

	var generic interface{}

	err = json.Unmarshal(data, &generic)
	if err != nil {
		return nil, fmt.Errorf("failed to decode output: %w", err)
	}

	return generic, nil
}

// applyJQ runs expression over value. A single result is returned as is and
// several results as a slice.
func applyJQ(ctx context.Context, expression string, value interface{}) (interface{}, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}

	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}

	var results []interface{}

	iter := code.RunWithContext(ctx, value)

	for {
		result, ok := iter.Next()
		if !ok {
			break
		}

		if runErr, isErr := result.(error); isErr {
			return nil, fmt.Errorf("jq: %w", runErr)
		}

		results = append(results, result)
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

// render writes value in the selected output format after applying --jq.
func render(ctx context.Context, out io.Writer, value interface{}) error {
	format, err := outputFormat(out)
	if err != nil {
		return err
	}

	generic, err := toGeneric(value)
	if err != nil {
		return err
	}

	expression := viper.GetString("jq")
	if expression != "" {
		generic, err = applyJQ(ctx, expression, generic)
		if err != nil {
			return err
		}
	}

	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		return encoder.Encode(generic)
	case constants.FormatYAML:
		return yaml.NewEncoder(out).Encode(generic)
	default:
		return renderTable(out, generic)
	}
}

func renderTable(out io.Writer, value interface{}) error {
	table := tablewriter.NewWriter(out)

	switch typed := value.(type) {
	case []interface{}:
		columns := tableColumns(typed)
		if len(columns) == 0 {
			table.Header("Value")

			for _, item := range typed {
				_ = table.Append([]string{cell(item)})
			}

			break
		}

		header := make([]interface{}, len(columns))
		for i, column := range columns {
			header[i] = column
		}

		table.Header(header...)

		for _, item := range typed {
			object, _ := item.(map[string]interface{})
			row := make([]string, len(columns))

			for i, column := range columns {
				row[i] = cell(object[column])
			}

			_ = table.Append(row)
		}
	case map[string]interface{}:
		table.Header("Property", "Value")

		for _, key := range sortedKeys(typed) {
			_ = table.Append([]string{key, cell(typed[key])})
		}
	default:
		table.Header("Value")
		_ = table.Append([]string{cell(typed)})
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// tableColumns picks the columns for a list of objects from its first item.
func tableColumns(items []interface{}) []string {
	if len(items) == 0 {
		return nil
	}

	first, ok := items[0].(map[string]interface{})
	if !ok {
		return nil
	}

	var columns []string

	for _, key := range preferredColumns {
		if _, present := first[key]; present {
			columns = append(columns, key)
		}
	}

	if len(columns) > 0 {
		return columns
	}

	for _, key := range sortedKeys(first) {
		if len(columns) == maxTableColumns {
			break
		}

		if isScalar(first[key]) {
			columns = append(columns, key)
		}
	}

	return columns
}

func sortedKeys(object map[string]interface{}) []string {
	keys := make([]string, 0, len(object))
	for key := range object {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

func isScalar(value interface{}) bool {
	switch value.(type) {
	case map[string]interface{}, []interface{}:
		return false
	default:
		return true
	}
}

func cell(value interface{}) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case map[string]interface{}, []interface{}:
		data, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprint(typed)
		}

		return string(data)
	default:
		return fmt.Sprint(typed)
	}
}
