package ipfs_pinata

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/explormate/explormate-chain/common/config"
	"github.com/explormate/explormate-chain/common/rcontext"
	"github.com/explormate/explormate-chain/ipfs_proxy/ipfs_models"
	"github.com/explormate/explormate-chain/ipfs_proxy/ipfs_pinata/pinatatest"
	"github.com/explormate/explormate-chain/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rubyist/circuitbreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-api-key"
const testSecret = "test-api-secret"

var fixedNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time {
	return fixedNow
}

func fixedMillis() int64 {
	return fixedNow.UnixNano() / int64(time.Millisecond)
}

func newTestClient(t *testing.T, conf config.PinataConfig) (*Client, *pinatatest.FakePinata) {
	fake := pinatatest.NewFakePinata(testKey, testSecret)
	t.Cleanup(fake.Close)
	conf.ApiUrl = fake.URL()
	conf.GatewayUrl = fake.URL()
	return New(conf, WithClock(fixedClock)), fake
}

func validConf() config.PinataConfig {
	return config.PinataConfig{ApiKey: testKey, SecretApiKey: testSecret, TimeoutSeconds: 5}
}

func asMap(t *testing.T, raw []byte) map[string]interface{} {
	m := make(map[string]interface{})
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func TestUploadUserProfile(t *testing.T) {
	client, fake := newTestClient(t, validConf())

	id, err := client.UploadUserProfile(rcontext.Initial(), ipfs_models.UserProfile{
		Name:  "John Doe Tourist",
		Email: "john@explormate.com",
	})
	require.NoError(t, err)

	pin := fake.LastPin()
	require.NotNil(t, pin)
	assert.Equal(t, "/pinning/pinJSONToIPFS", pin.Path)
	assert.Equal(t, pin.ContentId, id)
	assert.Equal(t, testKey, pin.Header.Get("pinata_api_key"))
	assert.Equal(t, testSecret, pin.Header.Get("pinata_secret_api_key"))

	content := asMap(t, pin.Content)
	assert.Equal(t, "John Doe Tourist", content["name"])
	assert.Equal(t, "john@explormate.com", content["email"])
	assert.Equal(t, "ExplorMate", content["app"])
	assert.Equal(t, float64(fixedMillis()), content["timestamp"])
	assert.NotContains(t, content, "bio")

	assert.Equal(t, "ExplorMate-Data-"+strconv.FormatInt(fixedMillis(), 10), pin.Metadata.Name)
	assert.Equal(t, map[string]string{"app": "explormate", "type": "metadata"}, pin.Metadata.KeyValues)
}

func TestUploadUserProfileStampsWin(t *testing.T) {
	client, fake := newTestClient(t, validConf())

	_, err := client.UploadUserProfile(rcontext.Initial(), ipfs_models.UserProfile{
		Name:  "John Doe Tourist",
		Email: "john@explormate.com",
		Bio:   "Adventure seeker and nature lover",
		Extra: map[string]interface{}{
			"app":                  "SomethingElse",
			"timestamp":            "yesterday",
			"languages":            []string{"English", "Indonesian"},
			"favoriteDestinations": []string{"Bali", "Yogyakarta", "Raja Ampat"},
		},
	})
	require.NoError(t, err)

	content := asMap(t, fake.LastPin().Content)
	assert.Equal(t, "ExplorMate", content["app"])
	assert.Equal(t, float64(fixedMillis()), content["timestamp"])
	assert.Equal(t, "Adventure seeker and nature lover", content["bio"])
	assert.Equal(t, []interface{}{"English", "Indonesian"}, content["languages"])
	assert.Len(t, content["favoriteDestinations"], 3)
}

func TestUploadChatMessage(t *testing.T) {
	client, fake := newTestClient(t, validConf())

	_, err := client.UploadChatMessage(rcontext.Initial(), ipfs_models.ChatMessage{
		Text:      "Meet at the temple gate",
		Location:  &ipfs_models.Location{Lat: -8.5069, Lng: 115.2625},
		Timestamp: 1700000000000,
		Extra:     map[string]interface{}{"version": "0.1"},
	})
	require.NoError(t, err)

	content := asMap(t, fake.LastPin().Content)
	assert.Equal(t, "Meet at the temple gate", content["text"])
	assert.Equal(t, "ExplorMate", content["app"])
	assert.Equal(t, "1.0", content["version"])
	assert.Equal(t, float64(1700000000000), content["timestamp"])
	assert.Equal(t, map[string]interface{}{"lat": -8.5069, "lng": 115.2625}, content["location"])
	assert.NotContains(t, content, "mediaType")
}

func TestUploadChatMessageWithoutTimestamp(t *testing.T) {
	client, fake := newTestClient(t, validConf())

	_, err := client.UploadChatMessage(rcontext.Initial(), ipfs_models.ChatMessage{Text: "hi", MediaType: "image/jpeg"})
	require.NoError(t, err)

	content := asMap(t, fake.LastPin().Content)
	assert.Equal(t, float64(fixedMillis()), content["timestamp"])
	assert.Equal(t, "image/jpeg", content["mediaType"])
}

func TestUploadJSONRoundTrip(t *testing.T) {
	client, fake := newTestClient(t, validConf())
	ctx := rcontext.Initial()

	doc, err := ProfileDocument(ipfs_models.UserProfile{
		Name:           "Alice Guide",
		Email:          "alice@email.com",
		Certifications: []string{"First Aid"},
	}, fixedMillis())
	require.NoError(t, err)

	id, err := client.UploadJSON(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, pinatatest.ContentIdFor(fake.LastPin().Content), id)

	got, err := client.GetData(ctx, id)
	require.NoError(t, err)

	expected := map[string]interface{}{
		"name":           "Alice Guide",
		"email":          "alice@email.com",
		"certifications": []interface{}{"First Aid"},
		"timestamp":      float64(fixedMillis()),
		"app":            "ExplorMate",
	}
	assert.Equal(t, expected, got)
	assert.Equal(t, 1, fake.Hits("/ipfs/{cid}"))
}

func TestGetDataInto(t *testing.T) {
	client, _ := newTestClient(t, validConf())
	ctx := rcontext.Initial()

	id, err := client.UploadJSON(ctx, ipfs_models.UserProfile{Name: "John", Email: "john@email.com"})
	require.NoError(t, err)

	profile := ipfs_models.UserProfile{}
	require.NoError(t, client.GetDataInto(ctx, id, &profile))
	assert.Equal(t, "John", profile.Name)
	assert.Equal(t, "john@email.com", profile.Email)
}

func TestGetDataUnknownContentId(t *testing.T) {
	client, _ := newTestClient(t, validConf())

	_, err := client.GetData(rcontext.Initial(), pinatatest.ContentIdFor([]byte("never pinned")))
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusNotFound, te.StatusCode)
	assert.Equal(t, "gateway_get", te.Operation)
}

func TestGetDataDoesNotCache(t *testing.T) {
	client, fake := newTestClient(t, validConf())
	ctx := rcontext.Initial()
	id := fake.Store("application/json", []byte(`{"a":1}`))

	for i := 0; i < 3; i++ {
		_, err := client.GetData(ctx, id)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, fake.Hits("/ipfs/{cid}"))
}

func TestUploadFile(t *testing.T) {
	client, fake := newTestClient(t, validConf())

	data := []byte("Sunrise over Mount Batur, trip notes")
	p := filepath.Join(t.TempDir(), "batur.txt")
	require.NoError(t, os.WriteFile(p, data, 0644))

	id, err := client.UploadFile(rcontext.Initial(), p)
	require.NoError(t, err)
	assert.Equal(t, pinatatest.ContentIdFor(data), id)

	pin := fake.LastPin()
	require.NotNil(t, pin)
	assert.Equal(t, "/pinning/pinFileToIPFS", pin.Path)
	assert.Equal(t, "batur.txt", pin.FileName)
	assert.Equal(t, "text/plain; charset=utf-8", pin.FileContentType)
	assert.Equal(t, data, pin.Data)
	require.NotNil(t, pin.Options)
	assert.Equal(t, 0, pin.Options.CidVersion)

	millis := strconv.FormatInt(fixedMillis(), 10)
	assert.Equal(t, "ExplorMate-"+millis, pin.Metadata.Name)
	assert.Equal(t, map[string]string{"app": "explormate", "timestamp": millis}, pin.Metadata.KeyValues)

	// larger than any sniffing or buffering window
	large := make([]byte, 8<<20)
	for i := range large {
		large[i] = byte(i*31 + i>>10)
	}
	p = filepath.Join(t.TempDir(), "tour.mp4")
	require.NoError(t, os.WriteFile(p, large, 0644))

	id, err = client.UploadFile(rcontext.Initial(), p)
	require.NoError(t, err)
	assert.Equal(t, pinatatest.ContentIdFor(large), id)

	pin = fake.LastPin()
	require.NotNil(t, pin)
	assert.Equal(t, "tour.mp4", pin.FileName)
	assert.Equal(t, len(large), len(pin.Data))
	assert.True(t, bytes.Equal(large, pin.Data), "uploaded bytes differ from the file")
	assert.Equal(t, "ExplorMate-"+millis, pin.Metadata.Name)
}

func TestUploadFileMissing(t *testing.T) {
	client, fake := newTestClient(t, validConf())

	_, err := client.UploadFile(rcontext.Initial(), filepath.Join(t.TempDir(), "nope.jpg"))
	require.Error(t, err)
	assert.False(t, IsTransportError(err))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Empty(t, fake.Pins())
}

func TestRejectedCredentials(t *testing.T) {
	client, fake := newTestClient(t, config.PinataConfig{ApiKey: "wrong", SecretApiKey: "wrong"})

	_, err := client.UploadJSON(rcontext.Initial(), map[string]string{"a": "b"})
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusUnauthorized, te.StatusCode)
	assert.Contains(t, te.Body, "INVALID_CREDENTIALS")
	assert.True(t, errors.Is(err, ErrAuthenticationFailed))
	assert.Empty(t, fake.Pins())
}

func TestNetworkFailurePropagatesCause(t *testing.T) {
	fake := pinatatest.NewFakePinata(testKey, testSecret)
	url := fake.URL()
	fake.Close()

	conf := validConf()
	conf.ApiUrl = url
	client := New(conf)

	_, err := client.UploadJSON(rcontext.Initial(), map[string]string{"a": "b"})
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 0, te.StatusCode)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestTestAuthentication(t *testing.T) {
	client, fake := newTestClient(t, validConf())
	ctx := rcontext.Initial()

	assert.True(t, client.TestAuthentication(ctx))
	assert.NoError(t, client.CheckAuthentication(ctx))

	msg, err := client.AuthenticationMessage(ctx)
	require.NoError(t, err)
	assert.Contains(t, msg, "Congratulations")
	assert.Equal(t, 3, fake.Hits("/data/testAuthentication"))
}

func TestTestAuthenticationEmptyCredentials(t *testing.T) {
	client, fake := newTestClient(t, config.PinataConfig{})
	ctx := rcontext.Initial()

	assert.False(t, client.TestAuthentication(ctx))
	assert.Equal(t, ErrMissingCredentials, client.CheckAuthentication(ctx))
	assert.Equal(t, 0, fake.Hits("/data/testAuthentication"))
}

func TestTestAuthenticationRejected(t *testing.T) {
	client, _ := newTestClient(t, config.PinataConfig{ApiKey: testKey, SecretApiKey: "stale"})
	ctx := rcontext.Initial()

	assert.False(t, client.TestAuthentication(ctx))
	assert.True(t, errors.Is(client.CheckAuthentication(ctx), ErrAuthenticationFailed))
}

func TestTestAuthenticationUnreachable(t *testing.T) {
	fake := pinatatest.NewFakePinata(testKey, testSecret)
	conf := validConf()
	conf.ApiUrl = fake.URL()
	fake.Close()

	client := New(conf)
	assert.False(t, client.TestAuthentication(rcontext.Initial()))
}

func TestTestAuthenticationNon200Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	conf := validConf()
	conf.ApiUrl = srv.URL
	client := New(conf)
	assert.False(t, client.TestAuthentication(rcontext.Initial()))
}

func TestJwtCredentials(t *testing.T) {
	client, fake := newTestClient(t, config.PinataConfig{Jwt: "jwt-token"})
	fake.Jwt = "jwt-token"

	assert.True(t, client.TestAuthentication(rcontext.Initial()))

	_, err := client.UploadJSON(rcontext.Initial(), map[string]string{"a": "b"})
	require.NoError(t, err)
	pin := fake.LastPin()
	assert.Equal(t, "Bearer jwt-token", pin.Header.Get("Authorization"))
	assert.False(t, pin.HasHeader("pinata_api_key"))
}

func TestGatewayRequestsCarryNoCredentials(t *testing.T) {
	var seen http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	t.Cleanup(srv.Close)

	client := New(validConf(), WithGatewayUrl(srv.URL+"/"))
	got, err := client.GetData(rcontext.Initial(), "QmSomething")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"ok": true}, got)
	assert.Empty(t, seen.Get("pinata_api_key"))
	assert.Empty(t, seen.Get("pinata_secret_api_key"))
	assert.Contains(t, seen.Get("User-Agent"), "explormate-chain/")
}

func TestBreakerFastFails(t *testing.T) {
	fake := pinatatest.NewFakePinata(testKey, testSecret)
	conf := validConf()
	conf.ApiUrl = fake.URL()
	conf.BackoffAt = 1
	fake.Close()

	client := New(conf)
	ctx := rcontext.Initial()

	_, err := client.UploadJSON(ctx, map[string]string{"a": "b"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, circuit.ErrBreakerOpen))

	_, err = client.UploadJSON(ctx, map[string]string{"a": "b"})
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
	assert.True(t, errors.Is(err, circuit.ErrBreakerOpen))
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	conf := validConf()
	conf.BackoffAt = 2
	client, fake := newTestClient(t, conf)
	ctx := rcontext.Initial()

	for i := 0; i < 3; i++ {
		_, err := client.GetData(ctx, "QmUnknownContent")
		var te *TransportError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, http.StatusNotFound, te.StatusCode)
	}

	_, err := client.UploadJSON(ctx, map[string]string{"a": "b"})
	require.NoError(t, err)
	assert.True(t, client.TestAuthentication(ctx))
	assert.Len(t, fake.Pins(), 1)
}

func TestBreakerIgnoresRejectedCredentials(t *testing.T) {
	conf := config.PinataConfig{ApiKey: "wrong", SecretApiKey: "wrong", BackoffAt: 1}
	client, fake := newTestClient(t, conf)
	ctx := rcontext.Initial()

	for i := 0; i < 3; i++ {
		err := client.CheckAuthentication(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrAuthenticationFailed))
		assert.False(t, errors.Is(err, circuit.ErrBreakerOpen))
	}
	assert.Equal(t, 3, fake.Hits("/data/testAuthentication"))
}

func TestBreakerCountsServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	conf := validConf()
	conf.BackoffAt = 2
	client := New(conf, WithApiUrl(srv.URL))
	ctx := rcontext.Initial()

	for i := 0; i < 2; i++ {
		_, err := client.UploadJSON(ctx, map[string]string{"a": "b"})
		var te *TransportError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, http.StatusBadGateway, te.StatusCode)
	}

	_, err := client.UploadJSON(ctx, map[string]string{"a": "b"})
	assert.True(t, errors.Is(err, circuit.ErrBreakerOpen))
	assert.EqualValues(t, 2, calls.Load())
}

func TestGatewayBreakerIsSeparate(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	downUrl := down.URL
	down.Close()

	conf := validConf()
	conf.BackoffAt = 1
	client, _ := newTestClient(t, conf)
	client.gatewayUrl = downUrl
	ctx := rcontext.Initial()

	_, err := client.GetData(ctx, "QmHash")
	require.Error(t, err)
	_, err = client.GetData(ctx, "QmHash")
	assert.True(t, errors.Is(err, circuit.ErrBreakerOpen))

	_, err = client.UploadJSON(ctx, map[string]string{"a": "b"})
	assert.NoError(t, err)
	assert.True(t, client.TestAuthentication(ctx))
}

func TestTruncateKeepsRunes(t *testing.T) {
	s := strings.Repeat("a", 9) + "é"
	assert.Equal(t, s, truncate(s, 11))
	assert.Equal(t, strings.Repeat("a", 9)+"...", truncate(s, 10))
	assert.True(t, utf8.ValidString(truncate(strings.Repeat("ü", 400), maxErrorBody)))
	assert.Equal(t, "abc...", truncate("abcdef", 3))
}

func TestMissingContentIdInResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"PinSize":10}`)
	}))
	t.Cleanup(srv.Close)

	client := New(validConf(), WithApiUrl(srv.URL))
	_, err := client.UploadJSON(rcontext.Initial(), map[string]string{"a": "b"})
	assert.True(t, errors.Is(err, ErrMissingContentId))
}

func TestObjects(t *testing.T) {
	client, fake := newTestClient(t, validConf())
	ctx := rcontext.Initial()
	data := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

	id, err := client.PutObject(ctx, bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "image/png", fake.LastPin().FileContentType)

	obj, err := client.GetObject(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, obj.ContentId)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.EqualValues(t, len(data), obj.SizeBytes)

	b, err := io.ReadAll(obj.Data)
	require.NoError(t, err)
	assert.Equal(t, data, b)
}

func TestMetricsCountRequests(t *testing.T) {
	client, _ := newTestClient(t, validConf())
	before := testutil.ToFloat64(metrics.PinataRequests.WithLabelValues("pin_json"))

	_, err := client.UploadJSON(rcontext.Initial(), map[string]string{"a": "b"})
	require.NoError(t, err)

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.PinataRequests.WithLabelValues("pin_json")))
}

func TestNewAppliesDefaults(t *testing.T) {
	client := New(config.PinataConfig{})
	assert.Equal(t, "https://gateway.pinata.cloud/ipfs/QmHash", client.GatewayUrlFor("QmHash"))
	assert.Equal(t, "https://api.pinata.cloud", client.apiUrl)
	assert.Nil(t, client.apiBreaker)
	assert.Nil(t, client.gatewayBreaker)
	assert.False(t, client.HasCredentials())
}
