package gitlab

import (
	"bytes"
	"context"
	"encoding/json"
	"reflect"
)

var jsonNull = json.RawMessage("null")

// Execute performs one round trip and decodes a successful response into T.
//
// The body is parsed as JSON regardless of status. Failure statuses return a
// *GitlabError carrying the body's "message" string, or UnknownErrorMessage
// when there is none. Invalid JSON returns a *DecodeError and a shape that does
// not fit T returns a *DataTypeError naming T.
func Execute[T any](ctx context.Context, client Client, endpoint *Endpoint) (T, error) {
	var result T

	raw, err := Raw(ctx, client, endpoint)
	if err != nil {
		return result, err
	}

	err = decodeInto(raw, &result)
	if err != nil {
		return result, err
	}

	return result, nil
}

// Raw performs one round trip and returns the validated JSON body of a
// successful response without decoding it further.
func Raw(ctx context.Context, client Client, endpoint *Endpoint) (json.RawMessage, error) {
	resp, err := client.Do(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	return classify(resp)
}

// NoAnswer performs one round trip for endpoints whose success body carries
// nothing of interest. Failure statuses are classified exactly as in Execute;
// success bodies are discarded unparsed.
func NoAnswer(ctx context.Context, client Client, endpoint *Endpoint) error {
	resp, err := client.Do(ctx, endpoint)
	if err != nil {
		return err
	}

	if resp.IsSuccess() {
		return nil
	}

	raw := json.RawMessage(bytes.TrimSpace(resp.Body))
	if !json.Valid(raw) {
		raw = nil
	}

	return &GitlabError{
		StatusCode: resp.StatusCode,
		Message:    errorMessage(raw),
		Body:       raw,
	}
}

// classify parses the body and turns failure statuses into *GitlabError.
func classify(resp *RawResponse) (json.RawMessage, error) {
	raw, err := parseJSON(resp)
	if err != nil {
		return nil, err
	}

	if !resp.IsSuccess() {
		return nil, &GitlabError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw),
			Body:       raw,
		}
	}

	return raw, nil
}

// parseJSON validates the body. An empty body is treated as null.
func parseJSON(resp *RawResponse) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(resp.Body)
	if len(trimmed) == 0 {
		return jsonNull, nil
	}

	var raw json.RawMessage

	err := json.Unmarshal(trimmed, &raw)
	if err != nil {
		return nil, &DecodeError{StatusCode: resp.StatusCode, Err: err}
	}

	return raw, nil
}

func decodeInto[T any](raw json.RawMessage, target *T) error {
	err := json.Unmarshal(raw, target)
	if err != nil {
		return &DataTypeError{
			TypeName: typeName[T](),
			Raw:      raw,
			Err:      err,
		}
	}

	return nil
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
