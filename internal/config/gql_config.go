package config

type GQLConfig interface {
	GetGQLConnectionLimit() int
	GetGQLMaxSize() int
	GetGQLMaxDefinitions() int
	GetGQLMaxDepth() int
	GetGQLMaxFields() int
	GetGQLIntrospection() bool
}

type PaginationConfig interface {
	GetPageSize() int
	GetMaxPageSize() int
}

type GQL struct{}

var _ GQLConfig = GQL{}

// GetGQLConnectionLimit caps first/last on every connection field.
func (GQL) GetGQLConnectionLimit() int {
	return GetEnvInt("GQL_CONNECTION_LIMIT", 50)
}

func (GQL) GetGQLMaxSize() int {
	return GetEnvInt("GQL_MAX_SIZE", 2048)
}

func (GQL) GetGQLMaxDefinitions() int {
	return GetEnvInt("GQL_MAX_DEFINITIONS", 10)
}

func (GQL) GetGQLMaxDepth() int {
	return GetEnvInt("GQL_MAX_DEPTH", 10)
}

func (GQL) GetGQLMaxFields() int {
	return GetEnvInt("GQL_MAX_FIELDS", 2)
}

func (GQL) GetGQLIntrospection() bool {
	return GetEnvBool("GQL_INTROSPECTION", true)
}

type Pagination struct{}

var _ PaginationConfig = Pagination{}

func (Pagination) GetPageSize() int {
	return GetEnvInt("PI_PAGE_SIZE", 10)
}

func (Pagination) GetMaxPageSize() int {
	return GetEnvInt("PI_MAX_PAGE_SIZE", 50)
}
