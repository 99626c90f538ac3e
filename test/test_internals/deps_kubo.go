package test_internals

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type KuboDep struct {
	ctx       context.Context
	container testcontainers.Container

	// ApiAddress is host:port of the RPC API, reachable from the test process.
	ApiAddress string
}

func MakeKubo(depNet *NetworkDep) (*KuboDep, error) {
	ctx := context.Background()

	apiPort, _ := nat.NewPort("tcp", "5001")
	req := testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "docker.io/ipfs/kubo:v0.29.0",
			ExposedPorts: []string{"5001/tcp"},
			// the RPC API only answers POST
			WaitingFor: wait.ForHTTP("/api/v0/version").WithPort(apiPort).WithMethod(http.MethodPost),
			Networks:   []string{depNet.NetId},
			// we don't bind any volumes because we don't care if we lose the data
		},
		Started: true,
	}
	// offline profile: no bootstrap peers, no public DHT
	customize(&req, WithEnvironment("IPFS_PROFILE", "test"))
	container, err := testcontainers.GenericContainer(ctx, req)
	if err != nil {
		return nil, err
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, err
	}
	port, err := container.MappedPort(ctx, apiPort)
	if err != nil {
		return nil, err
	}

	return &KuboDep{
		ctx:        ctx,
		container:  container,
		ApiAddress: fmt.Sprintf("%s:%d", host, port.Int()),
	}, nil
}

func (k *KuboDep) Teardown() {
	if err := k.container.Terminate(k.ctx); err != nil {
		log.Fatalf("Error shutting down kubo container: %s", err.Error())
	}
}
