package gitlab

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fivetwenty-io/gitlab-client/internal/constants"
	"github.com/zeebo/blake3"
)

// MaxPageSize is the largest per_page value the API honors.
const MaxPageSize = constants.MaxPageSize

// OrderByID is the only ordering key that supports keyset pagination.
const OrderByID = "id"

// Strategy is the pagination mechanism a Pager committed to.
type Strategy int

const (
	// StrategyOffset walks page=1,2,... with a fixed per_page.
	StrategyOffset Strategy = iota
	// StrategyKeyset follows opaque cursors from the Link header.
	StrategyKeyset
)

func (s Strategy) String() string {
	if s == StrategyKeyset {
		return "keyset"
	}

	return "offset"
}

// Ordering is the caller's declared result ordering.
type Ordering struct {
	Key  string
	Sort SortOrder
}

// PageOption configures a paginated call.
type PageOption func(*pageOptions)

type pageOptions struct {
	ordering Ordering
	perPage  int
	maxPages int
	limit    int
}

func defaultPageOptions() pageOptions {
	return pageOptions{
		perPage:  MaxPageSize,
		maxPages: constants.DefaultMaxPages,
	}
}

// WithOrdering sets order_by and sort. Ordering by "id" selects keyset pagination.
func WithOrdering(key string, sort SortOrder) PageOption {
	return func(o *pageOptions) {
		o.ordering = Ordering{Key: key, Sort: sort}
	}
}

// WithPerPage sets the offset page size, clamped to [1, MaxPageSize].
func WithPerPage(perPage int) PageOption {
	return func(o *pageOptions) {
		switch {
		case perPage < 1:
			o.perPage = 1
		case perPage > MaxPageSize:
			o.perPage = MaxPageSize
		default:
			o.perPage = perPage
		}
	}
}

// WithMaxPages bounds the number of requests a single walk may issue.
func WithMaxPages(maxPages int) PageOption {
	return func(o *pageOptions) {
		if maxPages > 0 {
			o.maxPages = maxPages
		}
	}
}

// WithLimit stops collecting once n items have been gathered.
func WithLimit(n int) PageOption {
	return func(o *pageOptions) {
		if n > 0 {
			o.limit = n
		}
	}
}

// Pager walks a paginated endpoint one page at a time. The strategy is
// chosen once at construction from the ordering key and never changes.
// A Pager is not safe for concurrent use.
type Pager[T any] struct {
	client   Client
	endpoint *Endpoint
	opts     pageOptions
	strategy Strategy

	page        int
	cursor      string
	requests    int
	fingerprint [32]byte
	done        bool
}

// NewPager prepares a walk over endpoint. The endpoint itself carries no
// pagination state; the pager injects page/per_page or pagination/cursor.
func NewPager[T any](client Client, endpoint *Endpoint, opts ...PageOption) *Pager[T] {
	options := defaultPageOptions()
	for _, opt := range opts {
		opt(&options)
	}

	pager := &Pager[T]{
		client: client,
		opts:   options,
		page:   1,
	}

	base := endpoint.WithoutParam("page").WithoutParam("per_page").WithoutParam("cursor")

	if options.ordering.Key == OrderByID {
		sort := options.ordering.Sort
		if sort == "" {
			sort = SortDescending
		}

		pager.strategy = StrategyKeyset
		pager.endpoint = base.
			SetParam("pagination", "keyset").
			SetParam("order_by", OrderByID).
			SetParam("sort", string(sort))

		return pager
	}

	pager.strategy = StrategyOffset
	pager.endpoint = base.WithoutParam("pagination")

	if options.ordering.Key != "" {
		pager.endpoint = pager.endpoint.SetParam("order_by", options.ordering.Key)
	}

	if options.ordering.Sort != "" {
		pager.endpoint = pager.endpoint.SetParam("sort", string(options.ordering.Sort))
	}

	return pager
}

// Strategy reports the pagination mechanism in use.
func (p *Pager[T]) Strategy() Strategy {
	return p.strategy
}

// HasNext reports whether another page may be fetched.
func (p *Pager[T]) HasNext() bool {
	return !p.done
}

// Requests returns the number of requests issued so far.
func (p *Pager[T]) Requests() int {
	return p.requests
}

// NextPage fetches the next page. It returns nil, nil once the walk is done.
// Any error ends the walk.
func (p *Pager[T]) NextPage(ctx context.Context) ([]T, error) {
	if p.done {
		return nil, nil
	}

	if p.requests >= p.opts.maxPages {
		p.done = true

		return nil, &PaginationError{Page: p.page, Err: ErrPaginationLimit}
	}

	var (
		items []T
		err   error
	)

	if p.strategy == StrategyKeyset {
		items, err = p.nextKeyset(ctx)
	} else {
		items, err = p.nextOffset(ctx)
	}

	if err != nil {
		p.done = true

		return nil, err
	}

	return items, nil
}

func (p *Pager[T]) nextOffset(ctx context.Context) ([]T, error) {
	endpoint := p.endpoint.
		SetParam("page", strconv.Itoa(p.page)).
		SetParam("per_page", strconv.Itoa(p.opts.perPage))

	resp, err := p.fetch(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	items, raw, err := decodePage[T](resp, p.page)
	if err != nil {
		return nil, err
	}

	err = p.checkStalled(resp.Header, raw, len(items))
	if err != nil {
		return nil, err
	}

	switch {
	case len(items) < p.opts.perPage:
		p.done = true
	case lastPageByTotal(resp.Header, p.page):
		p.done = true
	}

	p.page++

	return items, nil
}

func (p *Pager[T]) nextKeyset(ctx context.Context) ([]T, error) {
	endpoint := p.endpoint
	if p.cursor != "" {
		endpoint = endpoint.SetParam("cursor", p.cursor)
	}

	resp, err := p.fetch(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	items, _, err := decodePage[T](resp, p.page)
	if err != nil {
		return nil, err
	}

	next, ok := NextLink(resp.Header)
	if !ok {
		p.done = true

		return items, nil
	}

	cursor, err := cursorFromLink(next)
	if err != nil {
		return nil, &PaginationError{Page: p.page, Err: err}
	}

	if cursor == p.cursor {
		return nil, &PaginationError{Page: p.page, Err: ErrPaginationStalled}
	}

	p.cursor = cursor
	p.page++

	return items, nil
}

func (p *Pager[T]) fetch(ctx context.Context, endpoint *Endpoint) (*RawResponse, error) {
	p.requests++

	return p.client.Do(ctx, endpoint)
}

// checkStalled detects a server that ignores the page parameter. When the
// response carries X-Page it is authoritative; otherwise a non-empty payload
// identical to the previous page's counts as a stall.
func (p *Pager[T]) checkStalled(header http.Header, raw json.RawMessage, count int) error {
	sum := blake3.Sum256(raw)
	previous := p.fingerprint
	p.fingerprint = sum

	if value := header.Get(constants.HeaderPage); value != "" {
		served, err := strconv.Atoi(value)
		if err == nil && served != p.page {
			return &PaginationError{Page: p.page, Err: ErrPaginationStalled}
		}

		return nil
	}

	if p.page > 1 && count > 0 && sum == previous {
		return &PaginationError{Page: p.page, Err: ErrPaginationStalled}
	}

	return nil
}

// lastPageByTotal uses X-Total-Pages, when present, to skip the empty probe
// after an exactly-full last page.
func lastPageByTotal(header http.Header, page int) bool {
	value := header.Get(constants.HeaderTotalPages)
	if value == "" {
		return false
	}

	total, err := strconv.Atoi(value)
	if err != nil || total <= 0 {
		return false
	}

	return page >= total
}

func cursorFromLink(link string) (string, error) {
	parsed, err := url.Parse(link)
	if err != nil {
		return "", ErrMissingCursor
	}

	cursor := parsed.Query().Get("cursor")
	if cursor == "" {
		return "", ErrMissingCursor
	}

	return cursor, nil
}

func decodePage[T any](resp *RawResponse, page int) ([]T, json.RawMessage, error) {
	raw, err := classify(resp)
	if err != nil {
		return nil, nil, err
	}

	if len(raw) == 0 || raw[0] != '[' {
		return nil, nil, &PaginationError{Page: page, Err: ErrPageNotArray}
	}

	var items []T

	err = json.Unmarshal(raw, &items)
	if err != nil {
		return nil, nil, &DataTypeError{
			TypeName: typeName[T](),
			Raw:      raw,
			Err:      err,
		}
	}

	return items, raw, nil
}

// IsPaginationGuard reports whether err came from a loop guard rather than a
// failed request. Results returned alongside such an error are valid but
// possibly incomplete.
//
// Offset stall detection trusts the X-Page response header, which GitLab
// sends on every offset-paginated list. Without it, two consecutive
// non-empty pages with byte-identical bodies are treated as a stall, so a
// list whose neighbouring pages really are identical (per_page=1 over
// repeated plain values) also trips the guard when the header is missing.
func IsPaginationGuard(err error) bool {
	return errors.Is(err, ErrPaginationStalled) || errors.Is(err, ErrPaginationLimit)
}

// CollectAll fetches every page of endpoint and returns the items in
// response order. No reordering or deduplication is performed.
//
// A failed request aborts the call and no items are returned. When a loop
// guard trips (a server that ignores paging, or more than the allowed number
// of pages) the items gathered so far are returned together with a
// *PaginationError; use IsPaginationGuard to tell the two apart.
func CollectAll[T any](ctx context.Context, client Client, endpoint *Endpoint, opts ...PageOption) ([]T, error) {
	pager := NewPager[T](client, endpoint, opts...)
	limit := pager.opts.limit
	all := make([]T, 0)

	for pager.HasNext() {
		items, err := pager.NextPage(ctx)
		if err != nil {
			if IsPaginationGuard(err) {
				return all, err
			}

			return nil, err
		}

		all = append(all, items...)

		if limit > 0 && len(all) >= limit {
			return all[:limit], nil
		}
	}

	return all, nil
}

// ForEach calls fn for every item across all pages, stopping at the first
// error from either the walk or fn.
func ForEach[T any](ctx context.Context, client Client, endpoint *Endpoint, fn func(T) error, opts ...PageOption) error {
	pager := NewPager[T](client, endpoint, opts...)

	for pager.HasNext() {
		items, err := pager.NextPage(ctx)
		if err != nil {
			return err
		}

		for _, item := range items {
			err = fn(item)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// PageResult is one page delivered by StreamPages.
type PageResult[T any] struct {
	Page  int
	Items []T
	Err   error
}

// StreamPages walks endpoint in a goroutine and delivers pages in order.
// The channel is closed after the last page or the first error.
func StreamPages[T any](ctx context.Context, client Client, endpoint *Endpoint, opts ...PageOption) <-chan PageResult[T] {
	out := make(chan PageResult[T], 1)

	go func() {
		defer close(out)

		pager := NewPager[T](client, endpoint, opts...)

		for page := 1; pager.HasNext(); page++ {
			items, err := pager.NextPage(ctx)

			select {
			case out <- PageResult[T]{Page: page, Items: items, Err: err}:
			case <-ctx.Done():
				return
			}

			if err != nil {
				return
			}
		}
	}()

	return out
}
