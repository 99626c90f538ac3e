package ipfs_proxy

import (
	"bytes"
	"encoding/json"
	"os"
	"time"

	"github.com/explormate/explormate-chain/common/config"
	"github.com/explormate/explormate-chain/common/rcontext"
	"github.com/explormate/explormate-chain/ipfs_proxy/ipfs_local"
	"github.com/explormate/explormate-chain/ipfs_proxy/ipfs_models"
	"github.com/explormate/explormate-chain/ipfs_proxy/ipfs_pinata"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var _ IPFSImplementation = (*ipfs_pinata.Client)(nil)
var _ FileUploader = (*ipfs_pinata.Client)(nil)
var _ JSONUploader = (*ipfs_pinata.Client)(nil)
var _ IPFSImplementation = (*ipfs_local.IPFSLocal)(nil)

// New returns the backend selected by conf.IPFS.Backend. Unknown backends use Pinata.
func New(conf *config.MainConfig) (IPFSImplementation, error) {
	if conf.IPFS.Backend == config.BackendLocal {
		logrus.Info("Using localhost IPFS HTTP agent...")
		return ipfs_local.NewLocalIPFSImplementation(conf.IPFS.LocalApi)
	}
	logrus.Info("Using Pinata pinning service...")
	return ipfs_pinata.New(conf.Pinata), nil
}

// PutFile uploads the file at filePath, letting the backend attach its own
// metadata when it knows how to.
func PutFile(ctx rcontext.RequestContext, impl IPFSImplementation, filePath string) (string, error) {
	if uploader, ok := impl.(FileUploader); ok {
		return uploader.UploadFile(ctx, filePath)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return "", errors.Wrap(err, "opening "+filePath)
	}
	defer f.Close()
	return impl.PutObject(ctx, f)
}

// PutJSON pins document. Backends without a JSON endpoint store the encoded
// document as a plain object.
func PutJSON(ctx rcontext.RequestContext, impl IPFSImplementation, document interface{}) (string, error) {
	if uploader, ok := impl.(JSONUploader); ok {
		return uploader.UploadJSON(ctx, document)
	}

	b, err := json.Marshal(document)
	if err != nil {
		return "", errors.Wrap(err, "encoding document")
	}
	return impl.PutObject(ctx, bytes.NewReader(b))
}

// PutUserProfile pins profile with the same stamps on every backend.
func PutUserProfile(ctx rcontext.RequestContext, impl IPFSImplementation, profile ipfs_models.UserProfile) (string, error) {
	if uploader, ok := impl.(JSONUploader); ok {
		return uploader.UploadUserProfile(ctx, profile)
	}

	doc, err := ipfs_pinata.ProfileDocument(profile, time.Now().UnixMilli())
	if err != nil {
		return "", err
	}
	return PutJSON(ctx, impl, doc)
}
