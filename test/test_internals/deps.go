package test_internals

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/testcontainers/testcontainers-go"
)

// ContainerDeps is a Kubo daemon and an Anvil development chain sharing one
// docker network.
type ContainerDeps struct {
	ctx    context.Context
	depNet *NetworkDep

	Kubo  *KuboDep
	Chain *AnvilDep
}

func MakeTestDeps() (*ContainerDeps, error) {
	ctx := context.Background()

	// Create a network
	depNet, err := MakeNetwork()
	if err != nil {
		return nil, err
	}

	kubo, err := MakeKubo(depNet)
	if err != nil {
		depNet.Teardown()
		return nil, err
	}

	chain, err := MakeAnvil(depNet)
	if err != nil {
		kubo.Teardown()
		depNet.Teardown()
		return nil, err
	}

	return &ContainerDeps{
		ctx:    ctx,
		depNet: depNet,
		Kubo:   kubo,
		Chain:  chain,
	}, nil
}

func (c *ContainerDeps) Teardown() {
	c.Chain.Teardown()
	c.Kubo.Teardown()
	c.depNet.Teardown()
}

func (c *ContainerDeps) Debug() {
	printLogs(c.ctx, "Kubo", c.Kubo.container)
	printLogs(c.ctx, "Anvil", c.Chain.container)
}

func printLogs(ctx context.Context, name string, container testcontainers.Container) {
	logs, err := container.Logs(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer logs.Close()
	b, err := io.ReadAll(logs)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("[ExplorMate Deps] Logs from %s", name)
	fmt.Println()
	fmt.Println(string(b))
}
