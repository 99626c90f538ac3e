package ipfs_pinata

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/explormate/explormate-chain/common/rcontext"
	"github.com/explormate/explormate-chain/ipfs_proxy/ipfs_models"
	"github.com/explormate/explormate-chain/metrics"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// UploadJSON pins document and returns its content id.
func (c *Client) UploadJSON(ctx rcontext.RequestContext, document interface{}) (string, error) {
	res, err := c.PinJSON(ctx, document)
	if err != nil {
		return "", err
	}
	return res.IpfsHash, nil
}

// PinJSON is UploadJSON with the full pinning response.
func (c *Client) PinJSON(ctx rcontext.RequestContext, document interface{}) (*ipfs_models.PinResponse, error) {
	payload := ipfs_models.PinJSONRequest{
		PinataMetadata: ipfs_models.PinataMetadata{
			Name: fmt.Sprintf("%s-Data-%d", ipfs_models.AppTag, c.millis()),
			KeyValues: map[string]string{
				"app":  ipfs_models.MetadataAppTag,
				"type": "metadata",
			},
		},
		PinataContent: document,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "encoding document")
	}

	ctx = ctx.LogWithFields(logrus.Fields{"pinName": payload.PinataMetadata.Name})
	ctx.Log.Debug("Pinning JSON document (", humanize.Bytes(uint64(len(b))), ")")

	res := &ipfs_models.PinResponse{}
	err = c.doJSON(ctx, request{
		operation:     "pin_json",
		method:        http.MethodPost,
		url:           c.apiUrl + pinJSONPath,
		body:          bytesBody(b),
		contentType:   "application/json",
		authenticated: true,
	}, res)
	if err != nil {
		ctx.Log.Error("Error uploading JSON to IPFS: ", err)
		return nil, err
	}
	if res.IpfsHash == "" {
		return nil, &TransportError{Operation: "pin_json", Url: c.apiUrl + pinJSONPath, StatusCode: http.StatusOK, Err: ErrMissingContentId}
	}

	metrics.PinnedBytes.WithLabelValues("json").Add(float64(len(b)))
	ctx.Log.Info("JSON uploaded to IPFS: ", res.IpfsHash)
	return res, nil
}
