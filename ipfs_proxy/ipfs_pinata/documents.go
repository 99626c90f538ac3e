package ipfs_pinata

import (
	"encoding/json"

	"github.com/explormate/explormate-chain/common/rcontext"
	"github.com/explormate/explormate-chain/ipfs_proxy/ipfs_models"
	"github.com/pkg/errors"
)

// UploadUserProfile pins profile stamped with the application tag and the
// current time in unix millis. The stamps win over same-named extra fields.
func (c *Client) UploadUserProfile(ctx rcontext.RequestContext, profile ipfs_models.UserProfile) (string, error) {
	doc, err := ProfileDocument(profile, c.millis())
	if err != nil {
		return "", err
	}
	return c.UploadJSON(ctx, doc)
}

// UploadChatMessage pins message stamped with the application tag and the
// document version. A zero timestamp is replaced with the current time.
func (c *Client) UploadChatMessage(ctx rcontext.RequestContext, message ipfs_models.ChatMessage) (string, error) {
	doc, err := ChatMessageDocument(message, c.millis())
	if err != nil {
		return "", err
	}
	return c.UploadJSON(ctx, doc)
}

func ProfileDocument(profile ipfs_models.UserProfile, nowMillis int64) (map[string]interface{}, error) {
	doc, err := flatten(profile, profile.Extra)
	if err != nil {
		return nil, err
	}
	doc["timestamp"] = nowMillis
	doc["app"] = ipfs_models.AppTag
	return doc, nil
}

func ChatMessageDocument(message ipfs_models.ChatMessage, nowMillis int64) (map[string]interface{}, error) {
	if message.Timestamp == 0 {
		message.Timestamp = nowMillis
	}
	doc, err := flatten(message, message.Extra)
	if err != nil {
		return nil, err
	}
	doc["timestamp"] = message.Timestamp
	doc["app"] = ipfs_models.AppTag
	doc["version"] = ipfs_models.ChatMessageVersion
	return doc, nil
}

// flatten merges the JSON form of v over extra into one object.
func flatten(v interface{}, extra map[string]interface{}) (map[string]interface{}, error) {
	doc := make(map[string]interface{}, len(extra)+8)
	for k, val := range extra {
		doc[k] = val
	}

	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encoding document")
	}
	fields := make(map[string]interface{})
	if err = json.Unmarshal(b, &fields); err != nil {
		return nil, errors.Wrap(err, "encoding document")
	}
	for k, val := range fields {
		doc[k] = val
	}
	return doc, nil
}
