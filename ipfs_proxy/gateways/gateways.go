// Package gateways maps content ids to public HTTP gateway URLs. Nothing here
// touches the network.
package gateways

type Gateway string

const (
	Pinata     Gateway = "pinata"
	Cloudflare Gateway = "cloudflare"
	IPFS       Gateway = "ipfs"
	Dweb       Gateway = "dweb"
)

const Default = Pinata

var prefixes = map[Gateway]string{
	Pinata:     "https://gateway.pinata.cloud/ipfs/",
	Cloudflare: "https://cloudflare-ipfs.com/ipfs/",
	IPFS:       "https://ipfs.io/ipfs/",
	Dweb:       "https://dweb.link/ipfs/",
}

// Known lists the supported gateways, default first.
func Known() []Gateway {
	return []Gateway{Pinata, Cloudflare, IPFS, Dweb}
}

// Parse reports whether name is a supported gateway.
func Parse(name string) (Gateway, bool) {
	g := Gateway(name)
	_, ok := prefixes[g]
	return g, ok
}

// Prefix returns the URL prefix of g. Unknown gateways resolve to the default.
func (g Gateway) Prefix() string {
	if p, ok := prefixes[g]; ok {
		return p
	}
	return prefixes[Default]
}

// GatewayURL builds the URL for contentId on the given gateway. Unknown
// gateways fall back to the pinning provider's own gateway.
func GatewayURL(contentId string, gateway Gateway) string {
	return gateway.Prefix() + contentId
}

// FormatIPFSUrl is the URL handed to the mobile client.
func FormatIPFSUrl(contentId string) string {
	return GatewayURL(contentId, Default)
}
