package ipfs_pinata

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/explormate/explormate-chain/common/rcontext"
	"github.com/explormate/explormate-chain/ipfs_proxy/ipfs_models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// GatewayUrlFor returns the URL GetData reads contentId from.
func (c *Client) GatewayUrlFor(contentId string) string {
	return c.gatewayUrl + gatewayPath + url.PathEscape(contentId)
}

// GetData fetches contentId from the gateway and decodes it as JSON. Nothing
// is cached; every call goes to the network.
func (c *Client) GetData(ctx rcontext.RequestContext, contentId string) (interface{}, error) {
	var v interface{}
	if err := c.GetDataInto(ctx, contentId, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// GetDataInto is GetData decoding into v.
func (c *Client) GetDataInto(ctx rcontext.RequestContext, contentId string, v interface{}) error {
	ctx = ctx.LogWithFields(logrus.Fields{"cid": contentId})
	err := c.doJSON(ctx, c.gatewayRequest(contentId), v)
	if err != nil {
		ctx.Log.Error("Error fetching from IPFS: ", err)
		return err
	}
	return nil
}

// GetObject fetches the raw bytes of contentId from the gateway.
func (c *Client) GetObject(ctx rcontext.RequestContext, contentId string) (*ipfs_models.IPFSObject, error) {
	ctx = ctx.LogWithFields(logrus.Fields{"cid": contentId})
	res, err := c.do(ctx, c.gatewayRequest(contentId))
	if err != nil {
		ctx.Log.Error("Error fetching from IPFS: ", err)
		return nil, err
	}

	contentType := res.contentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &ipfs_models.IPFSObject{
		ContentId:   contentId,
		ContentType: contentType,
		FileName:    contentId,
		SizeBytes:   int64(len(res.body)),
		Data:        io.NopCloser(bytes.NewReader(res.body)),
	}, nil
}

// PutObject streams everything read from data as a file with a generated name.
func (c *Client) PutObject(ctx rcontext.RequestContext, data io.Reader) (string, error) {
	res, err := c.pinStream(ctx, "upload.dat", data, -1)
	if err != nil {
		return "", err
	}
	return res.IpfsHash, nil
}

// Public gateways get no credentials: the gateway host is configurable and may
// be a third-party mirror.
func (c *Client) gatewayRequest(contentId string) request {
	return request{
		operation: "gateway_get",
		method:    http.MethodGet,
		url:       c.GatewayUrlFor(contentId),
	}
}

// DecodeObject is a convenience for callers holding an IPFSObject with JSON content.
func DecodeObject(obj *ipfs_models.IPFSObject, v interface{}) error {
	defer obj.Data.Close()
	return errors.Wrap(json.NewDecoder(obj.Data).Decode(v), "decoding "+obj.ContentId)
}
