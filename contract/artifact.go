package contract

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

var ErrNoBytecode = errors.New("artifact has no deployable bytecode")

// Artifact is the subset of a Hardhat compiler artifact needed to deploy and
// talk to a contract.
type Artifact struct {
	ContractName string          `json:"contractName"`
	SourceName   string          `json:"sourceName"`
	RawAbi       json.RawMessage `json:"abi"`
	Bytecode     string          `json:"bytecode"`

	Abi abi.ABI `json:"-"`
}

func LoadArtifact(path string) (*Artifact, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading artifact")
	}
	a, err := ParseArtifact(b)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return a, nil
}

func ParseArtifact(b []byte) (*Artifact, error) {
	a := &Artifact{}
	if err := json.Unmarshal(b, a); err != nil {
		return nil, errors.Wrap(err, "decoding artifact")
	}
	if len(a.RawAbi) == 0 {
		return nil, errors.New("artifact has no abi")
	}
	parsed, err := abi.JSON(bytes.NewReader(a.RawAbi))
	if err != nil {
		return nil, errors.Wrap(err, "parsing abi")
	}
	a.Abi = parsed
	return a, nil
}

// DeployCode returns the creation bytecode.
func (a *Artifact) DeployCode() ([]byte, error) {
	code := common.FromHex(a.Bytecode)
	if len(code) == 0 {
		return nil, ErrNoBytecode
	}
	return code, nil
}
