package config

const (
	BackendPinata = "pinata"
	BackendLocal  = "local"

	NetworkSepolia   = "sepolia"
	NetworkLocalhost = "localhost"
)

func NewDefaultMainConfig() MainConfig {
	return MainConfig{
		General: GeneralConfig{
			LogDirectory: "-",
			LogColors:    false,
			JsonLogs:     false,
			LogLevel:     "info",
		},
		IPFS: IPFSConfig{
			Backend:  BackendPinata,
			LocalApi: "localhost:5001",
		},
		Pinata: PinataConfig{
			ApiUrl:         "https://api.pinata.cloud",
			GatewayUrl:     "https://gateway.pinata.cloud",
			TimeoutSeconds: 60,
			BackoffAt:      0, // disabled
		},
		Networks: map[string]NetworkConfig{
			NetworkSepolia: {
				Url:            "https://eth-sepolia.g.alchemy.com/v2/demo",
				ChainId:        11155111,
				TimeoutSeconds: 60,
			},
			NetworkLocalhost: {
				Url:            "http://127.0.0.1:8545",
				ChainId:        31337,
				TimeoutSeconds: 60,
			},
		},
		Contract: ContractConfig{
			Name:           "ExplorMate",
			ArtifactPath:   "artifacts/contracts/ExplorMate.sol/ExplorMate.json",
			DefaultNetwork: NetworkLocalhost,
		},
		Sentry: SentryConfig{
			Enabled:     false,
			Dsn:         "not supplied",
			Environment: "",
			Debug:       false,
		},
	}
}
