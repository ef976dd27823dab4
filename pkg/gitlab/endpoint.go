package gitlab

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/schema"
)

// Content types used for request bodies.
const (
	ContentTypeForm = "application/x-www-form-urlencoded"
	ContentTypeJSON = "application/json"
)

// QueryParam is a single query key/value pair.
type QueryParam struct {
	Key   string
	Value string
}

// QueryParams is an insertion-ordered query multimap. Encode preserves the
// order parameters were added in.
type QueryParams []QueryParam

// Add appends a pair, keeping any existing values for key.
func (q QueryParams) Add(key, value string) QueryParams {
	return append(q, QueryParam{Key: key, Value: value})
}

// Set replaces every value for key with a single value. The new pair takes
// the position of the first existing occurrence, or is appended.
func (q QueryParams) Set(key, value string) QueryParams {
	out := make(QueryParams, 0, len(q)+1)
	placed := false

	for _, param := range q {
		if param.Key != key {
			out = append(out, param)

			continue
		}

		if !placed {
			out = append(out, QueryParam{Key: key, Value: value})
			placed = true
		}
	}

	if !placed {
		out = append(out, QueryParam{Key: key, Value: value})
	}

	return out
}

// Del removes every value for key.
func (q QueryParams) Del(key string) QueryParams {
	out := make(QueryParams, 0, len(q))

	for _, param := range q {
		if param.Key != key {
			out = append(out, param)
		}
	}

	return out
}

// Get returns the first value for key.
func (q QueryParams) Get(key string) (string, bool) {
	for _, param := range q {
		if param.Key == key {
			return param.Value, true
		}
	}

	return "", false
}

// Has reports whether key is present.
func (q QueryParams) Has(key string) bool {
	_, ok := q.Get(key)

	return ok
}

// Encode renders the parameters in query form ("a=1&b=x+y").
func (q QueryParams) Encode() string {
	var builder strings.Builder

	for index, param := range q {
		if index > 0 {
			builder.WriteByte('&')
		}

		builder.WriteString(url.QueryEscape(param.Key))
		builder.WriteByte('=')
		builder.WriteString(url.QueryEscape(param.Value))
	}

	return builder.String()
}

// Body is a request payload with its content type.
type Body struct {
	ContentType string
	Data        []byte
}

// FormValues encodes values as an application/x-www-form-urlencoded body.
func FormValues(values url.Values) *Body {
	return &Body{ContentType: ContentTypeForm, Data: []byte(values.Encode())}
}

var formEncoder = newFormEncoder()

func newFormEncoder() *schema.Encoder {
	encoder := schema.NewEncoder()
	encoder.SetAliasTag("url")

	return encoder
}

// FormBody encodes a struct as a form body using its `url` tags. Fields
// tagged `url:"name,omitempty"` are skipped when zero.
func FormBody(value interface{}) (*Body, error) {
	values := url.Values{}

	err := formEncoder.Encode(value, values)
	if err != nil {
		return nil, fmt.Errorf("failed to encode form body: %w", err)
	}

	return FormValues(values), nil
}

// JSONBody encodes value as a JSON body.
func JSONBody(value interface{}) (*Body, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON body: %w", err)
	}

	return &Body{ContentType: ContentTypeJSON, Data: data}, nil
}

// Endpoint describes one API call: method, path relative to /api/v4,
// ordered query parameters and an optional body. Endpoints are immutable;
// the With* methods return modified copies.
type Endpoint struct {
	method string
	path   string
	query  QueryParams
	body   *Body
}

// NewEndpoint creates an endpoint. Path segments must already be escaped;
// use NameOrID.PathSegment or url.PathEscape when building them. A query
// string inside path ("projects?owned=true") is moved into the endpoint's
// query parameters, keeping its order.
func NewEndpoint(method, path string) *Endpoint {
	path, rawQuery, _ := strings.Cut(path, "?")

	return &Endpoint{
		method: method,
		path:   strings.TrimPrefix(path, "/"),
		query:  parseQuery(rawQuery),
	}
}

// parseQuery splits a raw query string into ordered parameters. Pairs that
// cannot be unescaped are kept verbatim.
func parseQuery(rawQuery string) QueryParams {
	var params QueryParams

	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}

		key, value, _ := strings.Cut(pair, "=")

		if unescaped, err := url.QueryUnescape(key); err == nil {
			key = unescaped
		}

		if unescaped, err := url.QueryUnescape(value); err == nil {
			value = unescaped
		}

		params = append(params, QueryParam{Key: key, Value: value})
	}

	return params
}

// Get creates a GET endpoint.
func Get(path string) *Endpoint {
	return NewEndpoint(http.MethodGet, path)
}

// Post creates a POST endpoint.
func Post(path string) *Endpoint {
	return NewEndpoint(http.MethodPost, path)
}

// Put creates a PUT endpoint.
func Put(path string) *Endpoint {
	return NewEndpoint(http.MethodPut, path)
}

// Delete creates a DELETE endpoint.
func Delete(path string) *Endpoint {
	return NewEndpoint(http.MethodDelete, path)
}

// Pathf builds an endpoint path. NameOrID segments are path-escaped; string
// segments are inserted as given and must already be escaped.
func Pathf(format string, segments ...interface{}) string {
	args := make([]interface{}, len(segments))

	for i, segment := range segments {
		if ref, ok := segment.(NameOrID); ok {
			args[i] = ref.PathSegment()

			continue
		}

		args[i] = segment
	}

	return fmt.Sprintf(format, args...)
}

// Method returns the HTTP method.
func (e *Endpoint) Method() string {
	return e.method
}

// Path returns the escaped path relative to the API root.
func (e *Endpoint) Path() string {
	return e.path
}

// Query returns a copy of the query parameters.
func (e *Endpoint) Query() QueryParams {
	out := make(QueryParams, len(e.query))
	copy(out, e.query)

	return out
}

// Body returns the request body, or nil.
func (e *Endpoint) Body() *Body {
	return e.body
}

// String renders "METHOD path?query" for logs.
func (e *Endpoint) String() string {
	if len(e.query) == 0 {
		return e.method + " " + e.path
	}

	return e.method + " " + e.path + "?" + e.query.Encode()
}

func (e *Endpoint) clone() *Endpoint {
	return &Endpoint{
		method: e.method,
		path:   e.path,
		query:  e.Query(),
		body:   e.body,
	}
}

// WithParam returns a copy with key=value appended.
func (e *Endpoint) WithParam(key, value string) *Endpoint {
	out := e.clone()
	out.query = out.query.Add(key, value)

	return out
}

// WithOptionalParam appends key=value only when value is not empty.
func (e *Endpoint) WithOptionalParam(key, value string) *Endpoint {
	if value == "" {
		return e
	}

	return e.WithParam(key, value)
}

// WithParams returns a copy with every pair appended in order.
func (e *Endpoint) WithParams(params ...QueryParam) *Endpoint {
	out := e.clone()
	out.query = append(out.query, params...)

	return out
}

// SetParam returns a copy with key replaced by a single value.
func (e *Endpoint) SetParam(key, value string) *Endpoint {
	out := e.clone()
	out.query = out.query.Set(key, value)

	return out
}

// WithoutParam returns a copy with key removed.
func (e *Endpoint) WithoutParam(key string) *Endpoint {
	out := e.clone()
	out.query = out.query.Del(key)

	return out
}

// WithBody returns a copy carrying body.
func (e *Endpoint) WithBody(body *Body) *Endpoint {
	out := e.clone()
	out.body = body

	return out
}

// WithSudo returns a copy that performs the request as user.
func (e *Endpoint) WithSudo(user string) *Endpoint {
	return e.SetParam("sudo", user)
}
