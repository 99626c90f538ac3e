package test_internals

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/testcontainers/testcontainers-go"
)

type NetworkDep struct {
	ctx       context.Context
	dockerNet testcontainers.Network

	NetId string
}

func MakeNetwork() (*NetworkDep, error) {
	ctx := context.Background()

	netId := fmt.Sprintf("explormate-%d", time.Now().UnixNano())
	dockerNet, err := testcontainers.GenericNetwork(ctx, testcontainers.GenericNetworkRequest{
		NetworkRequest: testcontainers.NetworkRequest{
			Name: netId,
		},
		ProviderType: testcontainers.ProviderDocker,
	})
	if err != nil {
		return nil, err
	}

	return &NetworkDep{
		ctx:       ctx,
		dockerNet: dockerNet,
		NetId:     netId,
	}, nil
}

func (n *NetworkDep) Teardown() {
	if err := n.dockerNet.Remove(n.ctx); err != nil {
		log.Fatalf("Error cleaning up docker network '%s': %s", n.NetId, err.Error())
	}
}
