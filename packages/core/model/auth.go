package model

// AuthType names an Auth variant.
type AuthType string

const (
	AuthNone   AuthType = "none"
	AuthBasic  AuthType = "basic"
	AuthBearer AuthType = "bearer"
	AuthAPIKey AuthType = "api-key"
)

// APIKeyLocation says where an API key is sent.
type APIKeyLocation string

const (
	APIKeyInHeader APIKeyLocation = "header"
	APIKeyInQuery  APIKeyLocation = "query"
)

// Auth is one of *BasicAuth, *BearerAuth or *APIKeyAuth. nil means no auth.
type Auth interface {
	Type() AuthType
	isAuth()
}

type BasicAuth struct {
	Username string
	Password string
}

type BearerAuth struct {
	Token string
}

type APIKeyAuth struct {
	Key   string
	Value string
	AddTo APIKeyLocation
}

func (*BasicAuth) Type() AuthType  { return AuthBasic }
func (*BearerAuth) Type() AuthType { return AuthBearer }
func (*APIKeyAuth) Type() AuthType { return AuthAPIKey }

func (*BasicAuth) isAuth()  {}
func (*BearerAuth) isAuth() {}
func (*APIKeyAuth) isAuth() {}

// AuthTypeOf returns the variant name of a, AuthNone for nil.
func AuthTypeOf(a Auth) AuthType {
	if a == nil {
		return AuthNone
	}
	return a.Type()
}
