package ipfs_pinata

import (
	"net/http"

	"github.com/explormate/explormate-chain/common/rcontext"
	"github.com/explormate/explormate-chain/ipfs_proxy/ipfs_models"
)

// CheckAuthentication probes the credential check endpoint. It returns nil only
// on HTTP 200. Like every other operation it propagates failures: missing
// credentials yield ErrMissingCredentials, a rejected key pair a TransportError
// wrapping ErrAuthenticationFailed.
func (c *Client) CheckAuthentication(ctx rcontext.RequestContext) error {
	if !c.conf.HasCredentials() {
		return ErrMissingCredentials
	}

	res, err := c.do(ctx, request{
		operation:     "test_authentication",
		method:        http.MethodGet,
		url:           c.apiUrl + testAuthPath,
		authenticated: true,
	})
	if err != nil {
		return err
	}
	if res.statusCode != http.StatusOK {
		return &TransportError{Operation: "test_authentication", Url: c.apiUrl + testAuthPath, StatusCode: res.statusCode, Err: ErrAuthenticationFailed}
	}
	return nil
}

// TestAuthentication is the boolean form of CheckAuthentication: failures are
// logged and reported as false, never returned.
func (c *Client) TestAuthentication(ctx rcontext.RequestContext) bool {
	if err := c.CheckAuthentication(ctx); err != nil {
		ctx.Log.Error("Pinata authentication failed: ", err)
		return false
	}
	ctx.Log.Info("Pinata authentication successful")
	return true
}

// AuthenticationMessage returns the greeting of the credential check endpoint.
func (c *Client) AuthenticationMessage(ctx rcontext.RequestContext) (string, error) {
	if !c.conf.HasCredentials() {
		return "", ErrMissingCredentials
	}
	res := &ipfs_models.AuthenticationResponse{}
	err := c.doJSON(ctx, request{
		operation:     "test_authentication",
		method:        http.MethodGet,
		url:           c.apiUrl + testAuthPath,
		authenticated: true,
	}, res)
	if err != nil {
		return "", err
	}
	return res.Message, nil
}
