package ipfs_proxy

import (
	"io"

	"github.com/explormate/explormate-chain/common/rcontext"
	"github.com/explormate/explormate-chain/ipfs_proxy/ipfs_models"
)

type IPFSImplementation interface {
	GetObject(ctx rcontext.RequestContext, contentId string) (*ipfs_models.IPFSObject, error)
	PutObject(ctx rcontext.RequestContext, data io.Reader) (string, error)
	Stop()
}

// FileUploader is implemented by backends that attach their own metadata when
// pinning a file from disk.
type FileUploader interface {
	UploadFile(ctx rcontext.RequestContext, filePath string) (string, error)
}

// JSONUploader is implemented by backends with a native JSON pinning endpoint.
type JSONUploader interface {
	UploadJSON(ctx rcontext.RequestContext, document interface{}) (string, error)
	UploadUserProfile(ctx rcontext.RequestContext, profile ipfs_models.UserProfile) (string, error)
}
