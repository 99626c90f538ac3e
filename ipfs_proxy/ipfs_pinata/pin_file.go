package ipfs_pinata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/explormate/explormate-chain/common/rcontext"
	"github.com/explormate/explormate-chain/ipfs_proxy/ipfs_models"
	"github.com/explormate/explormate-chain/metrics"
	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// UploadFile pins the file at filePath and returns its content id. Errors
// reading the file are returned as-is; request failures are TransportErrors.
func (c *Client) UploadFile(ctx rcontext.RequestContext, filePath string) (string, error) {
	res, err := c.PinFile(ctx, filePath)
	if err != nil {
		return "", err
	}
	return res.IpfsHash, nil
}

// PinFile streams the file at filePath to the pinning service. The file is
// never held in memory as a whole.
func (c *Client) PinFile(ctx rcontext.RequestContext, filePath string) (*ipfs_models.PinResponse, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "reading "+filePath)
	}
	defer f.Close()

	size := int64(-1)
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}
	return c.pinStream(ctx, filepath.Base(filePath), f, size)
}

// pinStream uploads data as a file part. size is only used for logging and
// may be -1 when unknown.
func (c *Client) pinStream(ctx rcontext.RequestContext, fileName string, data io.Reader, size int64) (*ipfs_models.PinResponse, error) {
	millis := c.millis()
	metadata := ipfs_models.PinataMetadata{
		Name: fmt.Sprintf("%s-%d", ipfs_models.AppTag, millis),
		KeyValues: map[string]string{
			"app":       ipfs_models.MetadataAppTag,
			"timestamp": strconv.FormatInt(millis, 10),
		},
	}

	// sniff the type from the head of the stream, then put the head back
	head := &bytes.Buffer{}
	mtype, err := mimetype.DetectReader(io.TeeReader(data, head))
	if err != nil {
		return nil, errors.Wrap(err, "reading "+fileName)
	}
	contentType := mtype.String()

	ctx = ctx.LogWithFields(logrus.Fields{
		"pinName":     metadata.Name,
		"fileName":    fileName,
		"contentType": contentType,
	})
	if size >= 0 {
		ctx.Log.Info("Uploading file to IPFS (", humanize.Bytes(uint64(size)), ")")
	} else {
		ctx.Log.Info("Uploading file to IPFS")
	}

	form, err := newFileForm(fileName, contentType, io.MultiReader(head, data), metadata)
	if err != nil {
		return nil, errors.Wrap(err, "building upload form")
	}

	res := &ipfs_models.PinResponse{}
	err = c.doJSON(ctx, request{
		operation:     "pin_file",
		method:        http.MethodPost,
		url:           c.apiUrl + pinFilePath,
		contentType:   form.ContentType(),
		body:          form.Open,
		authenticated: true,
	}, res)
	if err != nil {
		ctx.Log.Error("Error uploading to IPFS: ", err)
		return nil, err
	}
	if res.IpfsHash == "" {
		return nil, &TransportError{Operation: "pin_file", Url: c.apiUrl + pinFilePath, StatusCode: http.StatusOK, Err: ErrMissingContentId}
	}

	metrics.PinnedBytes.WithLabelValues("file").Add(float64(form.Written()))
	ctx.Log.Info("File uploaded to IPFS: ", res.IpfsHash)
	return res, nil
}

// fileForm is the multipart body Pinata expects: the file itself, then
// pinataMetadata and pinataOptions as JSON encoded fields. It can be opened once.
type fileForm struct {
	fileName    string
	contentType string
	data        io.Reader
	metadata    []byte
	options     []byte
	boundary    string
	written     atomic.Int64
}

func newFileForm(fileName string, contentType string, data io.Reader, metadata ipfs_models.PinataMetadata) (*fileForm, error) {
	metadataJson, err := json.Marshal(metadata)
	if err != nil {
		return nil, err
	}
	optionsJson, err := json.Marshal(ipfs_models.PinataOptions{CidVersion: 0})
	if err != nil {
		return nil, err
	}
	return &fileForm{
		fileName:    fileName,
		contentType: contentType,
		data:        data,
		metadata:    metadataJson,
		options:     optionsJson,
		boundary:    multipart.NewWriter(io.Discard).Boundary(),
	}, nil
}

func (f *fileForm) ContentType() string {
	return "multipart/form-data; boundary=" + f.boundary
}

// Written is the number of file bytes copied into the body so far.
func (f *fileForm) Written() int64 {
	return f.written.Load()
}

// Open starts writing the form into a pipe and returns its read side. Closing
// the reader early stops the writer.
func (f *fileForm) Open() io.ReadCloser {
	r, w := io.Pipe()
	go func() {
		mpw := multipart.NewWriter(w)
		if err := mpw.SetBoundary(f.boundary); err != nil {
			_ = w.CloseWithError(err)
			return
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(f.fileName)))
		h.Set("Content-Type", f.contentType)
		part, err := mpw.CreatePart(h)
		if err != nil {
			_ = w.CloseWithError(err)
			return
		}
		n, err := io.Copy(part, f.data)
		f.written.Store(n)
		if err != nil {
			_ = w.CloseWithError(err)
			return
		}

		if err = mpw.WriteField("pinataMetadata", string(f.metadata)); err != nil {
			_ = w.CloseWithError(err)
			return
		}
		if err = mpw.WriteField("pinataOptions", string(f.options)); err != nil {
			_ = w.CloseWithError(err)
			return
		}
		if err = mpw.Close(); err != nil {
			_ = w.CloseWithError(err)
			return
		}
		_ = w.Close()
	}()
	return r
}
