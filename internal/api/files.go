package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/reslab-bio/omics-console/internal/models"
	appErrors "github.com/reslab-bio/omics-console/pkg/errors"
)

// UploadFile attaches a data file to an existing sample via multipart POST.
// Click-to-browse and drag-and-drop flows both converge here; there is no
// cancellation once the request is on the wire.
func (c *Client) UploadFile(ctx context.Context, sampleID int64, fileType models.FileType, filename string, payload io.Reader) (*models.OmicsFile, error) {
	if sampleID == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "sample id is required for upload")
	}
	if !fileType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown file type %q", fileType))
	}
	if filename == "" || payload == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a file must be selected before uploading")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("sample", strconv.FormatInt(sampleID, 10)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, 0, "build multipart body")
	}
	if err := writer.WriteField("file_type", string(fileType)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, 0, "build multipart body")
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, 0, "build multipart body")
	}
	if _, err := io.Copy(part, payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, 0, "read upload payload")
	}
	if err := writer.Close(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, 0, "finalise multipart body")
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/files/", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var created models.OmicsFile
	if err := c.do(req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
