package config

type GeneralConfig struct {
	LogDirectory string `yaml:"logDirectory"`
	LogColors    bool   `yaml:"logColors"`
	JsonLogs     bool   `yaml:"jsonLogs"`
	LogLevel     string `yaml:"logLevel"`
}

type IPFSConfig struct {
	Backend  string `yaml:"backend"`
	LocalApi string `yaml:"localApi"`
}

// PinataConfig holds the credential set for the pinning service. Secrets are
// normally supplied through the environment rather than the YAML file.
type PinataConfig struct {
	ApiKey         string `yaml:"apiKey"`
	SecretApiKey   string `yaml:"secretApiKey"`
	Jwt            string `yaml:"jwt"`
	ApiUrl         string `yaml:"apiUrl"`
	GatewayUrl     string `yaml:"gatewayUrl"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
	BackoffAt      int    `yaml:"backoffAt"`
}

func (c PinataConfig) HasKeyPair() bool {
	return c.ApiKey != "" && c.SecretApiKey != ""
}

func (c PinataConfig) HasCredentials() bool {
	return c.HasKeyPair() || c.Jwt != ""
}

type NetworkConfig struct {
	Url            string `yaml:"url"`
	ChainId        int64  `yaml:"chainId"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

type DeployerConfig struct {
	PrivateKey string `yaml:"privateKey"`
}

type ContractConfig struct {
	Name           string `yaml:"name"`
	ArtifactPath   string `yaml:"artifactPath"`
	DefaultNetwork string `yaml:"defaultNetwork"`
}

// SmokeConfig names the extra accounts the smoke run signs with. Empty keys on
// a local development chain fall back to the node's well-known dev accounts.
type SmokeConfig struct {
	TouristKey string `yaml:"touristKey"`
	GuideKey   string `yaml:"guideKey"`
}

type EtherscanConfig struct {
	ApiKey string `yaml:"apiKey"`
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

type SentryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Dsn         string `yaml:"dsn"`
	Environment string `yaml:"environment"`
	Debug       bool   `yaml:"debug"`
}

type MainConfig struct {
	General   GeneralConfig            `yaml:"general"`
	IPFS      IPFSConfig               `yaml:"ipfs"`
	Pinata    PinataConfig             `yaml:"pinata"`
	Networks  map[string]NetworkConfig `yaml:"networks"`
	Deployer  DeployerConfig           `yaml:"deployer"`
	Contract  ContractConfig           `yaml:"contract"`
	Smoke     SmokeConfig              `yaml:"smoke"`
	Etherscan EtherscanConfig          `yaml:"etherscan"`
	Metrics   MetricsConfig            `yaml:"metrics"`
	Sentry    SentryConfig             `yaml:"sentry"`
}

// Network returns the named network, or false if it is not configured.
func (c *MainConfig) Network(name string) (NetworkConfig, bool) {
	n, ok := c.Networks[name]
	return n, ok
}
