package test_internals

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// AnvilDep is a development chain preloaded with the well-known dev accounts.
type AnvilDep struct {
	ctx       context.Context
	container testcontainers.Container

	RpcUrl  string
	ChainId int64
}

func MakeAnvil(depNet *NetworkDep) (*AnvilDep, error) {
	ctx := context.Background()

	rpcPort, _ := nat.NewPort("tcp", "8545")
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "ghcr.io/foundry-rs/foundry:latest",
			ExposedPorts: []string{"8545/tcp"},
			Entrypoint:   []string{"anvil"},
			Cmd:          []string{"--host", "0.0.0.0", "--chain-id", "31337", "--block-time", "1"},
			WaitingFor:   wait.ForLog("Listening on").WithStartupTimeout(120 * time.Second),
			Networks:     []string{depNet.NetId},
		},
		Started: true,
	})
	if err != nil {
		return nil, err
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, err
	}
	port, err := container.MappedPort(ctx, rpcPort)
	if err != nil {
		return nil, err
	}

	//goland:noinspection HttpUrlsUsage
	return &AnvilDep{
		ctx:       ctx,
		container: container,
		RpcUrl:    fmt.Sprintf("http://%s:%d", host, port.Int()),
		ChainId:   31337,
	}, nil
}

func (a *AnvilDep) Teardown() {
	if err := a.container.Terminate(a.ctx); err != nil {
		log.Fatalf("Error shutting down anvil container: %s", err.Error())
	}
}
