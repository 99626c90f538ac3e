package ipfs_models

type PinataMetadata struct {
	Name      string            `json:"name"`
	KeyValues map[string]string `json:"keyvalues"`
}

type PinataOptions struct {
	CidVersion int `json:"cidVersion"`
}

type PinJSONRequest struct {
	PinataMetadata PinataMetadata `json:"pinataMetadata"`
	PinataContent  interface{}    `json:"pinataContent"`
}

type PinResponse struct {
	IpfsHash    string `json:"IpfsHash"`
	PinSize     int64  `json:"PinSize"`
	Timestamp   string `json:"Timestamp"`
	IsDuplicate bool   `json:"isDuplicate,omitempty"`
}

type AuthenticationResponse struct {
	Message string `json:"message"`
}
