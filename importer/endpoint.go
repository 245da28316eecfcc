package importer

import (
	"context"
	"os"
	"path/filepath"

	"github.com/hazyhaar/quizdoc/kit"
)

// UploadRequest is the transport-neutral upload operation. DryRun extracts
// without persisting.
type UploadRequest struct {
	Upload
	DryRun bool
}

func (im *Importer) endpoint(name string, e kit.Endpoint) kit.Endpoint {
	return kit.Chain(kit.Logging(im.logger, name))(e)
}

// UploadEndpoint returns the upload operation as a kit.Endpoint taking an
// *UploadRequest. It yields an *Extraction for dry runs and a *Summary
// otherwise.
func (im *Importer) UploadEndpoint() kit.Endpoint {
	return im.endpoint("upload", func(ctx context.Context, req any) (any, error) {
		r := req.(*UploadRequest)
		if r.DryRun {
			return im.Preview(ctx, r.Upload)
		}
		return im.Import(ctx, r.Upload)
	})
}

// OpenUpload opens a local file as an Upload. The caller closes the file.
func OpenUpload(path string) (Upload, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return Upload{}, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return Upload{}, nil, err
	}
	return Upload{Filename: filepath.Base(path), Size: info.Size(), Body: f}, f, nil
}
