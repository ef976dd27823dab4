package gitlab

import (
	"context"
	"strconv"
	"time"
)

// Project is the subset of project fields most callers need.
type Project struct {
	ID                ProjectID  `json:"id"                  yaml:"id"`
	Name              string     `json:"name"                yaml:"name"`
	Path              string     `json:"path"                yaml:"path"`
	PathWithNamespace string     `json:"path_with_namespace" yaml:"path_with_namespace"`
	Description       *string    `json:"description"         yaml:"description,omitempty"`
	DefaultBranch     *string    `json:"default_branch"      yaml:"default_branch,omitempty"`
	Visibility        string     `json:"visibility"          yaml:"visibility"`
	WebURL            string     `json:"web_url"             yaml:"web_url"`
	Archived          bool       `json:"archived"            yaml:"archived"`
	CreatedAt         time.Time  `json:"created_at"          yaml:"created_at"`
	LastActivityAt    *time.Time `json:"last_activity_at"    yaml:"last_activity_at,omitempty"`
}

// ProjectHook is a webhook configured on a project.
type ProjectHook struct {
	ID                  HookID    `json:"id"                      yaml:"id"`
	URL                 string    `json:"url"                     yaml:"url"`
	ProjectID           ProjectID `json:"project_id"              yaml:"project_id"`
	PushEvents          bool      `json:"push_events"             yaml:"push_events"`
	TagPushEvents       bool      `json:"tag_push_events"         yaml:"tag_push_events"`
	IssuesEvents        bool      `json:"issues_events"           yaml:"issues_events"`
	MergeRequestsEvents bool      `json:"merge_requests_events"   yaml:"merge_requests_events"`
	NoteEvents          bool      `json:"note_events"             yaml:"note_events"`
	JobEvents           bool      `json:"job_events"              yaml:"job_events"`
	PipelineEvents      bool      `json:"pipeline_events"         yaml:"pipeline_events"`
	WikiPageEvents      bool      `json:"wiki_page_events"        yaml:"wiki_page_events"`
	EnableSSLVerify     bool      `json:"enable_ssl_verification" yaml:"enable_ssl_verification"`
	CreatedAt           time.Time `json:"created_at"              yaml:"created_at"`
}

// CreateProjectHookRequest is sent form-encoded.
type CreateProjectHookRequest struct {
	URL                 string `url:"url"`
	Token               string `url:"token,omitempty"`
	PushEvents          bool   `url:"push_events"`
	TagPushEvents       bool   `url:"tag_push_events"`
	IssuesEvents        bool   `url:"issues_events"`
	MergeRequestsEvents bool   `url:"merge_requests_events"`
	NoteEvents          bool   `url:"note_events"`
	JobEvents           bool   `url:"job_events"`
	PipelineEvents      bool   `url:"pipeline_events"`
	WikiPageEvents      bool   `url:"wiki_page_events"`
	EnableSSLVerify     bool   `url:"enable_ssl_verification"`
}

// ListProjectsOptions filters GET /projects.
type ListProjectsOptions struct {
	Search         string
	Owned          bool
	Membership     bool
	Visibility     string
	MinAccessLevel AccessLevel
	// OrderBy "id" switches the listing to keyset pagination.
	OrderBy string
	Sort    SortOrder
	// Limit stops after this many projects. Zero means all.
	Limit int
}

func (o *ListProjectsOptions) endpoint() *Endpoint {
	endpoint := Get("projects")
	if o == nil {
		return endpoint
	}

	endpoint = endpoint.WithOptionalParam("search", o.Search)

	if o.Owned {
		endpoint = endpoint.WithParam("owned", "true")
	}

	if o.Membership {
		endpoint = endpoint.WithParam("membership", "true")
	}

	endpoint = endpoint.WithOptionalParam("visibility", o.Visibility)

	if o.MinAccessLevel > 0 {
		endpoint = endpoint.WithParam("min_access_level", strconv.Itoa(int(o.MinAccessLevel)))
	}

	return endpoint
}

func (o *ListProjectsOptions) pageOptions() []PageOption {
	if o == nil {
		return nil
	}

	var opts []PageOption

	if o.OrderBy != "" || o.Sort != "" {
		opts = append(opts, WithOrdering(o.OrderBy, o.Sort))
	}

	if o.Limit > 0 {
		opts = append(opts, WithLimit(o.Limit))
	}

	return opts
}

// ListPipelinesOptions filters GET /projects/:id/pipelines.
type ListPipelinesOptions struct {
	Ref     string
	Status  string
	OrderBy string
	Sort    SortOrder
	Limit   int
}

// ProjectsService groups project endpoints.
type ProjectsService struct {
	client Client
}

// NewProjectsService creates a ProjectsService.
func NewProjectsService(client Client) *ProjectsService {
	return &ProjectsService{client: client}
}

// List returns every visible project matching opts.
func (s *ProjectsService) List(ctx context.Context, opts *ListProjectsOptions) ([]Project, error) {
	return CollectAll[Project](ctx, s.client, opts.endpoint(), opts.pageOptions()...)
}

// Get returns a single project.
func (s *ProjectsService) Get(ctx context.Context, project NameOrID) (*Project, error) {
	return Execute[*Project](ctx, s.client, Get("projects/"+project.PathSegment()))
}

// ListHooks returns the project's webhooks.
func (s *ProjectsService) ListHooks(ctx context.Context, project NameOrID) ([]ProjectHook, error) {
	return CollectAll[ProjectHook](ctx, s.client, Get(Pathf("projects/%s/hooks", project)))
}

// CreateHook adds a webhook to the project.
func (s *ProjectsService) CreateHook(ctx context.Context, project NameOrID, req *CreateProjectHookRequest) (*ProjectHook, error) {
	body, err := FormBody(req)
	if err != nil {
		return nil, err
	}

	endpoint := Post(Pathf("projects/%s/hooks", project)).WithBody(body)

	return Execute[*ProjectHook](ctx, s.client, endpoint)
}

// DeleteHook removes a webhook. The API answers with an empty body.
func (s *ProjectsService) DeleteHook(ctx context.Context, project NameOrID, hook HookID) error {
	return NoAnswer(ctx, s.client, Delete(Pathf("projects/%s/hooks/%s", project, hook)))
}

// ListPipelines returns the project's pipelines.
func (s *ProjectsService) ListPipelines(ctx context.Context, project NameOrID, opts *ListPipelinesOptions) ([]Pipeline, error) {
	endpoint := Get(Pathf("projects/%s/pipelines", project))

	var pageOpts []PageOption

	if opts != nil {
		endpoint = endpoint.
			WithOptionalParam("ref", opts.Ref).
			WithOptionalParam("status", opts.Status)

		if opts.OrderBy != "" || opts.Sort != "" {
			pageOpts = append(pageOpts, WithOrdering(opts.OrderBy, opts.Sort))
		}

		if opts.Limit > 0 {
			pageOpts = append(pageOpts, WithLimit(opts.Limit))
		}
	}

	return CollectAll[Pipeline](ctx, s.client, endpoint, pageOpts...)
}

// Pipeline is a CI pipeline summary.
type Pipeline struct {
	ID        PipelineID `json:"id"         yaml:"id"`
	ProjectID ProjectID  `json:"project_id" yaml:"project_id"`
	Ref       string     `json:"ref"        yaml:"ref"`
	SHA       string     `json:"sha"        yaml:"sha"`
	Status    string     `json:"status"     yaml:"status"`
	Source    string     `json:"source"     yaml:"source"`
	WebURL    string     `json:"web_url"    yaml:"web_url"`
	CreatedAt time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" yaml:"updated_at"`
}
