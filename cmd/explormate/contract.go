package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/explormate/explormate-chain/common/config"
	"github.com/explormate/explormate-chain/common/rcontext"
	"github.com/explormate/explormate-chain/contract"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type contractFlags struct {
	network  string
	artifact string
	address  string
}

func newContractCommand(cli *CLI) *cobra.Command {
	flags := &contractFlags{}
	cmd := &cobra.Command{
		Use:   "contract",
		Short: "Deploy and exercise the marketplace contract",
	}
	cmd.PersistentFlags().StringVar(&flags.network, "network", "", "Network name from the configuration (defaults to contract.defaultNetwork)")
	cmd.PersistentFlags().StringVar(&flags.artifact, "artifact", "", "Path to the compiled contract artifact (defaults to contract.artifactPath)")

	cmd.AddCommand(&cobra.Command{
		Use:   "deploy",
		Short: "Deploy the marketplace contract",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cli.requestContext(cmd)
			session, client, artifact, err := cli.openSession(ctx, flags)
			if err != nil {
				return err
			}
			defer client.Close()

			address, err := contract.Deploy(ctx, session.Backend, session.Deployer, artifact)
			if err != nil {
				return err
			}
			printField(cmd.OutOrStdout(), artifact.ContractName+" deployed to:", green(address.Hex()))
			return nil
		},
	})

	smokeCmd := &cobra.Command{
		Use:   "smoke",
		Short: "Drive registration, listing and booking against the contract",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cli.requestContext(cmd)
			session, client, artifact, err := cli.openSession(ctx, flags)
			if err != nil {
				return err
			}
			defer client.Close()

			actors, err := cli.smokeActors(ctx, session)
			if err != nil {
				return err
			}

			var address common.Address
			if flags.address != "" {
				if !common.IsHexAddress(flags.address) {
					return errors.Errorf("invalid contract address %q", flags.address)
				}
				address = common.HexToAddress(flags.address)
			} else {
				ctx.Log.Info("No address given, deploying a fresh contract for the smoke run")
				if address, err = contract.Deploy(ctx, session.Backend, session.Deployer, artifact); err != nil {
					return err
				}
			}

			ctx = ctx.LogWithFields(logrus.Fields{"address": address.Hex()})
			marketplace := contract.NewBoundMarketplace(address, artifact, session.Backend)
			if err = contract.RunSmoke(ctx, marketplace, actors); err != nil {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), red("Smoke run failed"))
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), green("Smoke run passed against "+address.Hex()))
			return nil
		},
	}
	smokeCmd.Flags().StringVar(&flags.address, "address", "", "Address of an already deployed contract")
	cmd.AddCommand(smokeCmd)

	return cmd
}

func (cli *CLI) resolveNetwork(name string) (string, config.NetworkConfig, error) {
	if name == "" {
		name = cli.conf.Contract.DefaultNetwork
	}
	network, ok := cli.conf.Network(name)
	if !ok {
		return name, network, errors.Errorf("network %q is not configured", name)
	}
	return name, network, nil
}

func (cli *CLI) openSession(ctx rcontext.RequestContext, flags *contractFlags) (*contract.Session, *ethclient.Client, *contract.Artifact, error) {
	artifactPath := flags.artifact
	if artifactPath == "" {
		artifactPath = cli.conf.Contract.ArtifactPath
	}
	artifact, err := contract.LoadArtifact(artifactPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if artifact.ContractName == "" {
		artifact.ContractName = cli.conf.Contract.Name
	}

	name, network, err := cli.resolveNetwork(flags.network)
	if err != nil {
		return nil, nil, nil, err
	}
	ctx.Log.WithFields(logrus.Fields{"network": name, "url": network.Url}).Info("Connecting to network")

	client, err := contract.Dial(ctx, network)
	if err != nil {
		return nil, nil, nil, err
	}

	key := cli.conf.Deployer.PrivateKey
	if key == "" && name == config.NetworkLocalhost {
		ctx.Log.Warn("No deployer key configured, using the first development account")
		key = contract.DevKeys[0]
	}
	session, err := contract.NewSession(ctx, client, network, key)
	if err != nil {
		client.Close()
		return nil, nil, nil, err
	}
	return session, client, artifact, nil
}

func (cli *CLI) smokeActors(ctx rcontext.RequestContext, session *contract.Session) (contract.Actors, error) {
	touristKey := cli.conf.Smoke.TouristKey
	guideKey := cli.conf.Smoke.GuideKey
	if contract.IsDevChain(session.ChainId) {
		if touristKey == "" {
			touristKey = contract.DevKeys[1]
		}
		if guideKey == "" {
			guideKey = contract.DevKeys[2]
		}
	}
	if touristKey == "" || guideKey == "" {
		return contract.Actors{}, errors.New("smoke.touristKey and smoke.guideKey must be configured outside a development chain")
	}

	tourist, err := session.Signer(ctx, touristKey)
	if err != nil {
		return contract.Actors{}, errors.Wrap(err, "tourist")
	}
	guide, err := session.Signer(ctx, guideKey)
	if err != nil {
		return contract.Actors{}, errors.Wrap(err, "guide")
	}
	return contract.Actors{Owner: session.Deployer, Tourist: tourist, Guide: guide}, nil
}
