package contract

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/explormate/explormate-chain/common/rcontext"
	"github.com/explormate/explormate-chain/metrics"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Deploy sends the artifact's creation code and waits until the contract is
// mined, returning its address.
func Deploy(ctx rcontext.RequestContext, backend Backend, deployer *bind.TransactOpts, artifact *Artifact, params ...interface{}) (common.Address, error) {
	code, err := artifact.DeployCode()
	if err != nil {
		return common.Address{}, err
	}

	name := artifact.ContractName
	if name == "" {
		name = "contract"
	}
	ctx = ctx.LogWithFields(logrus.Fields{"contract": name, "deployer": deployer.From.Hex()})
	ctx.Log.Infof("Deploying %s contract...", name)

	opts := withContext(deployer, ctx)
	_, tx, _, err := bind.DeployContract(opts, artifact.Abi, code, backend, params...)
	if err != nil {
		metrics.ContractTransactions.WithLabelValues("deploy", "error").Inc()
		return common.Address{}, errors.Wrap(err, "sending deployment")
	}
	ctx.Log.Debug("Deployment transaction: ", tx.Hash().Hex())

	address, err := bind.WaitDeployed(ctx, backend, tx)
	if err != nil {
		metrics.ContractTransactions.WithLabelValues("deploy", "error").Inc()
		return common.Address{}, errors.Wrap(err, "waiting for deployment")
	}

	metrics.ContractTransactions.WithLabelValues("deploy", "ok").Inc()
	ctx.Log.Infof("%s deployed to: %s", name, address.Hex())
	return address, nil
}

func withContext(opts *bind.TransactOpts, ctx context.Context) *bind.TransactOpts {
	c := *opts
	c.Context = ctx
	return &c
}
