package config

import (
	"os"
	"path"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	EnvPinataApiKey    = "PINATA_API_KEY"
	EnvPinataSecretKey = "PINATA_SECRET_API_KEY"
	EnvPinataJwt       = "PINATA_JWT"
	EnvSepoliaRpcUrl   = "SEPOLIA_RPC_URL"
	EnvPrivateKey      = "PRIVATE_KEY"
	EnvEtherscanApiKey = "ETHERSCAN_API_KEY"
	EnvConfigPath      = "EXPLORMATE_CONFIG"
)

const DefaultPath = "explormate.yaml"
const DefaultEnvFile = ".env"

// Load builds a configuration from the defaults, the YAML file(s) at configPath,
// the dotenv file at envFile and finally the process environment. Missing files
// are skipped. The returned value is never shared by this package.
func Load(configPath string, envFile string) (*MainConfig, error) {
	c := NewDefaultMainConfig()

	paths, err := configFiles(configPath)
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		logrus.Debug("Loading config file: ", p)
		buffer, err := os.ReadFile(p)
		if err != nil {
			return nil, errors.Wrap(err, "reading "+p)
		}
		if err = yaml.Unmarshal(buffer, &c); err != nil {
			return nil, errors.Wrap(err, "parsing "+p)
		}
	}

	if envFile != "" {
		if _, err = os.Stat(envFile); err == nil {
			// godotenv.Load never overrides variables already set in the process
			if err = godotenv.Load(envFile); err != nil {
				return nil, errors.Wrap(err, "loading "+envFile)
			}
		}
	}

	applyEnv(&c, os.LookupEnv)

	for _, w := range c.Warnings() {
		logrus.Warn(w)
	}

	return &c, nil
}

func configFiles(configPath string) ([]string, error) {
	if configPath == "" {
		return nil, nil
	}
	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{configPath}, nil
	}

	logrus.Debug("Config is a directory - loading all files over top of each other")
	entries, err := os.ReadDir(configPath)
	if err != nil {
		return nil, err
	}
	pathsOrdered := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		pathsOrdered = append(pathsOrdered, path.Join(configPath, e.Name()))
	}
	sort.Strings(pathsOrdered)
	return pathsOrdered, nil
}

func applyEnv(c *MainConfig, lookup func(string) (string, bool)) {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvPinataApiKey); ok {
		c.Pinata.ApiKey = v
	}
	if v, ok := get(EnvPinataSecretKey); ok {
		c.Pinata.SecretApiKey = v
	}
	if v, ok := get(EnvPinataJwt); ok {
		c.Pinata.Jwt = v
	}
	if v, ok := get(EnvPrivateKey); ok {
		c.Deployer.PrivateKey = v
	}
	if v, ok := get(EnvEtherscanApiKey); ok {
		c.Etherscan.ApiKey = v
	}
	if v, ok := get(EnvSepoliaRpcUrl); ok {
		if c.Networks == nil {
			c.Networks = make(map[string]NetworkConfig)
		}
		n := c.Networks[NetworkSepolia]
		n.Url = v
		c.Networks[NetworkSepolia] = n
	}

	// YAML values may carry stray whitespace as well
	for name, n := range c.Networks {
		n.Url = strings.TrimSpace(n.Url)
		c.Networks[name] = n
	}
}

// Warnings lists configuration problems that degrade functionality without
// preventing startup.
func (c *MainConfig) Warnings() []string {
	warnings := make([]string, 0)
	if c.IPFS.Backend != BackendLocal && !c.Pinata.HasKeyPair() {
		if c.Pinata.Jwt != "" {
			warnings = append(warnings, "Pinata API keys not found, falling back to the JWT for authentication.")
		} else {
			warnings = append(warnings, "Pinata API keys not found. IPFS functionality will be limited.")
		}
	}
	if c.IPFS.Backend != BackendPinata && c.IPFS.Backend != BackendLocal {
		warnings = append(warnings, "Unknown IPFS backend '"+c.IPFS.Backend+"', using pinata.")
	}
	return warnings
}
