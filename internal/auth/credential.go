package auth

import (
	"net/http"

	"github.com/fivetwenty-io/gitlab-client/internal/constants"
	"github.com/fivetwenty-io/gitlab-client/pkg/gitlab"
	"golang.org/x/net/http/httpguts"
	"golang.org/x/oauth2"
)

// Header names used for the two credential variants.
const (
	HeaderPrivateToken  = "PRIVATE-TOKEN"
	HeaderAuthorization = "Authorization"
	bearerPrefix        = "Bearer "
)

// Kind selects how a token is presented to the API.
type Kind int

const (
	// KindPrivateToken sends the token in the PRIVATE-TOKEN header.
	KindPrivateToken Kind = iota + 1
	// KindOAuth2 sends the token as a Bearer authorization.
	KindOAuth2
)

func (k Kind) String() string {
	switch k {
	case KindPrivateToken:
		return "private-token"
	case KindOAuth2:
		return "oauth2"
	default:
		return "none"
	}
}

// Credential is an immutable API credential. The zero value is not usable.
type Credential struct {
	kind  Kind
	token string
}

// NewPrivateToken wraps a personal, project or group access token.
func NewPrivateToken(token string) Credential {
	return Credential{kind: KindPrivateToken, token: token}
}

// NewOAuth2 wraps an OAuth2 access token.
func NewOAuth2(token string) Credential {
	return Credential{kind: KindOAuth2, token: token}
}

// FromOAuth2Token wraps the access token of an oauth2.Token.
func FromOAuth2Token(token *oauth2.Token) Credential {
	return NewOAuth2(token.AccessToken)
}

// Kind returns the credential variant.
func (c Credential) Kind() Kind {
	return c.kind
}

// IsZero reports whether no credential was configured.
func (c Credential) IsZero() bool {
	return c.kind == 0
}

// HeaderName returns the header the credential is sent in.
func (c Credential) HeaderName() string {
	if c.kind == KindOAuth2 {
		return HeaderAuthorization
	}

	return HeaderPrivateToken
}

func (c Credential) headerValue() string {
	if c.kind == KindOAuth2 {
		return bearerPrefix + c.token
	}

	return c.token
}

// Sign sets the credential header on header. A token that is not a valid
// header value fails with *gitlab.AuthError and leaves header untouched.
func (c Credential) Sign(header http.Header) error {
	value := c.headerValue()

	if !httpguts.ValidHeaderFieldValue(value) {
		return &gitlab.AuthError{
			Kind:   gitlab.AuthErrorHeaderValue,
			Header: c.HeaderName(),
		}
	}

	header.Set(c.HeaderName(), value)

	return nil
}

// String never reveals the token.
func (c Credential) String() string {
	return c.kind.String() + ":" + constants.MaskedSecret
}

// GoString never reveals the token.
func (c Credential) GoString() string {
	return "auth.Credential{" + c.String() + "}"
}

// IsSensitiveHeader reports whether a header carries a credential and must
// be redacted from logs.
func IsSensitiveHeader(name string) bool {
	canonical := http.CanonicalHeaderKey(name)

	return canonical == http.CanonicalHeaderKey(HeaderPrivateToken) || canonical == HeaderAuthorization
}
