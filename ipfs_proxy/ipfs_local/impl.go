package ipfs_local

import (
	"bytes"
	"io"

	"github.com/explormate/explormate-chain/common/rcontext"
	"github.com/explormate/explormate-chain/ipfs_proxy/ipfs_models"
	"github.com/gabriel-vasile/mimetype"
	"github.com/ipfs/go-cid"
	httpapi "github.com/ipfs/go-ipfs-api"
	"github.com/pkg/errors"
)

// IPFSLocal talks to a Kubo daemon's HTTP API, for development without a
// Pinata account.
type IPFSLocal struct {
	client *httpapi.Shell
}

func NewLocalIPFSImplementation(apiAddress string) (*IPFSLocal, error) {
	var client *httpapi.Shell
	if apiAddress == "" {
		client = httpapi.NewLocalShell()
		if client == nil {
			return nil, errors.New("no local IPFS API found")
		}
	} else {
		client = httpapi.NewShell(apiAddress)
	}
	return &IPFSLocal{
		client: client,
	}, nil
}

func (i *IPFSLocal) GetObject(ctx rcontext.RequestContext, contentId string) (*ipfs_models.IPFSObject, error) {
	ipfsCid, err := cid.Decode(contentId)
	if err != nil {
		return nil, errors.Wrap(err, "invalid content id")
	}

	ctx.Log.Debug("Fetching ", ipfsCid.String(), " from local IPFS node")
	c, err := i.client.Cat(ipfsCid.String())
	if err != nil {
		return nil, err
	}
	defer c.Close()

	b, err := io.ReadAll(c)
	if err != nil {
		return nil, err
	}

	return &ipfs_models.IPFSObject{
		ContentId:   ipfsCid.String(),
		ContentType: mimetype.Detect(b).String(),
		FileName:    ipfsCid.String(),
		SizeBytes:   int64(len(b)),
		Data:        io.NopCloser(bytes.NewReader(b)),
	}, nil
}

func (i *IPFSLocal) PutObject(ctx rcontext.RequestContext, data io.Reader) (string, error) {
	p, err := i.client.Add(data)
	if err != nil {
		return "", err
	}
	ctx.Log.Info("Added to local IPFS node: ", p)
	return p, nil
}

func (i *IPFSLocal) Stop() {
	// Nothing to do
}
