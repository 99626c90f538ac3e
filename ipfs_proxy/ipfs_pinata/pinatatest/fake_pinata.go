package pinatatest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/explormate/explormate-chain/ipfs_proxy/ipfs_models"
	"github.com/gorilla/mux"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// RecordedPin is one request the fake pinning service accepted.
type RecordedPin struct {
	Path            string
	Header          http.Header
	Metadata        ipfs_models.PinataMetadata
	Options         *ipfs_models.PinataOptions
	Content         json.RawMessage // JSON pins only
	FileName        string          // file pins only
	FileContentType string          // file pins only
	Data            []byte
	ContentId       string
}

type storedObject struct {
	contentType string
	data        []byte
}

// FakePinata is an in-memory stand-in for the Pinata API and its gateway. It
// serves both from one httptest server and computes real CIDv0 identifiers.
type FakePinata struct {
	ApiKey       string
	SecretApiKey string
	Jwt          string

	server  *httptest.Server
	lock    sync.Mutex
	objects map[string]storedObject
	pins    []RecordedPin
	hits    map[string]int
}

func NewFakePinata(apiKey string, secretApiKey string) *FakePinata {
	f := &FakePinata{
		ApiKey:       apiKey,
		SecretApiKey: secretApiKey,
		objects:      make(map[string]storedObject),
		pins:         make([]RecordedPin, 0),
		hits:         make(map[string]int),
	}

	rtr := mux.NewRouter()
	rtr.HandleFunc("/pinning/pinJSONToIPFS", f.authed(f.pinJSON)).Methods(http.MethodPost)
	rtr.HandleFunc("/pinning/pinFileToIPFS", f.authed(f.pinFile)).Methods(http.MethodPost)
	rtr.HandleFunc("/data/testAuthentication", f.authed(f.testAuthentication)).Methods(http.MethodGet)
	rtr.HandleFunc("/ipfs/{cid}", f.gateway).Methods(http.MethodGet)
	f.server = httptest.NewServer(rtr)
	return f
}

func (f *FakePinata) URL() string {
	return f.server.URL
}

func (f *FakePinata) Close() {
	f.server.Close()
}

// Pins returns a copy of every accepted pin request, oldest first.
func (f *FakePinata) Pins() []RecordedPin {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]RecordedPin(nil), f.pins...)
}

// LastPin returns the most recent pin request, or nil.
func (f *FakePinata) LastPin() *RecordedPin {
	pins := f.Pins()
	if len(pins) == 0 {
		return nil
	}
	return &pins[len(pins)-1]
}

// Hits counts requests per route path template.
func (f *FakePinata) Hits(path string) int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.hits[path]
}

// Store places data on the fake gateway without recording a pin.
func (f *FakePinata) Store(contentType string, data []byte) string {
	id := ContentIdFor(data)
	f.lock.Lock()
	defer f.lock.Unlock()
	f.objects[id] = storedObject{contentType: contentType, data: data}
	return id
}

// ContentIdFor computes the CIDv0 of data, as a single raw block.
func ContentIdFor(data []byte) string {
	h, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		panic(err)
	}
	return cid.NewCidV0(h).String()
}

func (f *FakePinata) hit(path string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.hits[path]++
}

func (f *FakePinata) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.hit(r.URL.Path)
		keyOk := f.ApiKey != "" && r.Header.Get("pinata_api_key") == f.ApiKey && r.Header.Get("pinata_secret_api_key") == f.SecretApiKey
		jwtOk := f.Jwt != "" && r.Header.Get("Authorization") == "Bearer "+f.Jwt
		if !keyOk && !jwtOk {
			writeJson(w, http.StatusUnauthorized, map[string]interface{}{
				"error": map[string]string{
					"reason":  "INVALID_CREDENTIALS",
					"details": "Invalid API key",
				},
			})
			return
		}
		next(w, r)
	}
}

func (f *FakePinata) testAuthentication(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, ipfs_models.AuthenticationResponse{
		Message: "Congratulations! You are communicating with the Pinata API!",
	})
}

func (f *FakePinata) pinJSON(w http.ResponseWriter, r *http.Request) {
	req := struct {
		PinataMetadata ipfs_models.PinataMetadata `json:"pinataMetadata"`
		PinataContent  json.RawMessage            `json:"pinataContent"`
	}{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJson(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if len(req.PinataContent) == 0 {
		writeJson(w, http.StatusBadRequest, map[string]string{"error": "pinataContent is required"})
		return
	}

	id := f.Store("application/json", req.PinataContent)
	f.record(RecordedPin{
		Path:      r.URL.Path,
		Header:    r.Header.Clone(),
		Metadata:  req.PinataMetadata,
		Content:   req.PinataContent,
		Data:      req.PinataContent,
		ContentId: id,
	})
	writePinResponse(w, id, len(req.PinataContent))
}

func (f *FakePinata) pinFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJson(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJson(w, http.StatusBadRequest, map[string]string{"error": "file is required"})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeJson(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	pin := RecordedPin{
		Path:            r.URL.Path,
		Header:          r.Header.Clone(),
		FileName:        header.Filename,
		FileContentType: header.Header.Get("Content-Type"),
		Data:            data,
	}
	if raw := r.FormValue("pinataMetadata"); raw != "" {
		if err = json.Unmarshal([]byte(raw), &pin.Metadata); err != nil {
			writeJson(w, http.StatusBadRequest, map[string]string{"error": "invalid pinataMetadata"})
			return
		}
	}
	if raw := r.FormValue("pinataOptions"); raw != "" {
		pin.Options = &ipfs_models.PinataOptions{}
		if err = json.Unmarshal([]byte(raw), pin.Options); err != nil {
			writeJson(w, http.StatusBadRequest, map[string]string{"error": "invalid pinataOptions"})
			return
		}
	}

	pin.ContentId = f.Store(pin.FileContentType, data)
	f.record(pin)
	writePinResponse(w, pin.ContentId, len(data))
}

func (f *FakePinata) gateway(w http.ResponseWriter, r *http.Request) {
	f.hit("/ipfs/{cid}")
	id := mux.Vars(r)["cid"]

	f.lock.Lock()
	obj, ok := f.objects[id]
	f.lock.Unlock()
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	if obj.contentType != "" {
		w.Header().Set("Content-Type", obj.contentType)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(obj.data)
}

func (f *FakePinata) record(pin RecordedPin) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.pins = append(f.pins, pin)
}

func writePinResponse(w http.ResponseWriter, id string, size int) {
	writeJson(w, http.StatusOK, ipfs_models.PinResponse{
		IpfsHash:  id,
		PinSize:   int64(size),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJson(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// HasHeader reports whether the recorded request carried header name.
func (p RecordedPin) HasHeader(name string) bool {
	return strings.TrimSpace(p.Header.Get(name)) != ""
}
