package test_internals

import "github.com/testcontainers/testcontainers-go"

type EnvCustomizer struct {
	varName  string
	varValue string
}

var _ testcontainers.ContainerCustomizer = (*EnvCustomizer)(nil)

func WithEnvironment(name string, value string) *EnvCustomizer {
	return &EnvCustomizer{
		varName:  name,
		varValue: value,
	}
}

func (c *EnvCustomizer) Customize(req *testcontainers.GenericContainerRequest) {
	if req.Env == nil {
		req.Env = make(map[string]string)
	}
	req.Env[c.varName] = c.varValue
}

func customize(req *testcontainers.GenericContainerRequest, opts ...testcontainers.ContainerCustomizer) {
	for _, opt := range opts {
		opt.Customize(req)
	}
}
