package backend

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/UnknownOlympus/verdeando/internal/models"
)

const (
	endpointListGreenPoints  = "puntos-verdes.list"
	endpointCreateGreenPoint = "puntos-verdes.create"
	endpointUpdateGreenPoint = "puntos-verdes.update"
	endpointDeleteGreenPoint = "puntos-verdes.delete"
)

// ListGreenPoints returns the full green point collection in backend order.
func (c *Client) ListGreenPoints(ctx context.Context) ([]models.GreenPoint, error) {
	req := request{endpoint: endpointListGreenPoints, method: http.MethodGet, path: "/puntos-verdes"}

	return decodeList(ctx, c, req, greenPointWire.toModel)
}

// CreateGreenPoint submits a new point owned by collaboratorID. The draft must carry coordinates.
func (c *Client) CreateGreenPoint(
	ctx context.Context,
	token, collaboratorID string,
	draft models.GreenPointDraft,
) error {
	if draft.Location == nil {
		return fmt.Errorf("green point %q has no coordinates", draft.Name)
	}

	form := newMultipartForm()
	form.field("nombre", draft.Name)
	form.field("descripcion", draft.Description)
	form.field("direccion", draft.Address)
	form.field("latitud", strconv.FormatFloat(draft.Location.Latitude, 'f', -1, 64))
	form.field("longitud", strconv.FormatFloat(draft.Location.Longitude, 'f', -1, 64))
	form.field("diasHorarioAtencion", draft.OpeningHours)
	form.field("colaboradorId", collaboratorID)
	for _, material := range draft.AcceptedMaterials {
		form.field("residuosAceptados", material)
	}
	if draft.Image != nil {
		form.file("imagen", draft.Image)
	}

	req, err := form.request(endpointCreateGreenPoint, http.MethodPost, "/puntos-verdes", token)
	if err != nil {
		return err
	}

	return c.do(ctx, req, nil)
}

// UpdateGreenPoint changes the editable fields of a point owned by collaboratorID.
func (c *Client) UpdateGreenPoint(
	ctx context.Context,
	token, id, collaboratorID string,
	patch models.GreenPointPatch,
) error {
	form := newMultipartForm()
	form.field("nombre", patch.Name)
	form.field("descripcion", patch.Description)
	form.field("diasHorarioAtencion", patch.OpeningHours)

	target := "/puntos-verdes/" + url.PathEscape(id) + "/" + url.PathEscape(collaboratorID)
	req, err := form.request(endpointUpdateGreenPoint, http.MethodPut, target, token)
	if err != nil {
		return err
	}

	return c.do(ctx, req, nil)
}

// DeleteGreenPoint removes a point.
func (c *Client) DeleteGreenPoint(ctx context.Context, token, id string) error {
	return c.do(ctx, request{
		endpoint: endpointDeleteGreenPoint,
		method:   http.MethodDelete,
		path:     "/puntos-verdes/" + url.PathEscape(id),
		token:    token,
	}, nil)
}

// multipartForm collects fields, skipping empty values like the mobile client does.
type multipartForm struct {
	buf    bytes.Buffer
	writer *multipart.Writer
	err    error
}

func newMultipartForm() *multipartForm {
	form := &multipartForm{}
	form.writer = multipart.NewWriter(&form.buf)

	return form
}

func (f *multipartForm) field(name, value string) {
	if f.err != nil || value == "" {
		return
	}
	f.err = f.writer.WriteField(name, value)
}

func (f *multipartForm) file(name string, upload *models.Upload) {
	if f.err != nil || len(upload.Content) == 0 {
		return
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, name, upload.Filename))
	header.Set("Content-Type", imageMIME(upload.Filename))

	part, err := f.writer.CreatePart(header)
	if err != nil {
		f.err = err
		return
	}
	_, f.err = part.Write(upload.Content)
}

func (f *multipartForm) request(endpoint, method, target, token string) (request, error) {
	if f.err != nil {
		return request{}, fmt.Errorf("failed to build %s form: %w", endpoint, f.err)
	}
	if err := f.writer.Close(); err != nil {
		return request{}, fmt.Errorf("failed to close %s form: %w", endpoint, err)
	}

	return request{
		endpoint:    endpoint,
		method:      method,
		path:        target,
		token:       token,
		body:        bytes.NewReader(f.buf.Bytes()),
		contentType: f.writer.FormDataContentType(),
	}, nil
}

func imageMIME(filename string) string {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(filename), ".")) {
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
