package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/UnknownOlympus/verdeando/internal/models"
)

const (
	endpointConfirmExchange = "intercambios.confirm"
	endpointListExchanges   = "intercambios.list"
	endpointCreateExchange  = "intercambios.create"
	endpointListMaterials   = "residuos.list"
)

// ConfirmExchange marks the exchange behind a scanned token as delivered at a green point.
func (c *Client) ConfirmExchange(ctx context.Context, token string, confirmation models.Confirmation) error {
	req, err := jsonRequest(endpointConfirmExchange, http.MethodPost, "/intercambios/confirmar", token, confirmation)
	if err != nil {
		return err
	}

	return c.do(ctx, req, nil)
}

// ListExchanges returns every exchange of a user.
func (c *Client) ListExchanges(ctx context.Context, token, userID string) ([]models.Exchange, error) {
	req := request{
		endpoint: endpointListExchanges,
		method:   http.MethodGet,
		path:     "/intercambios/usuario/" + url.PathEscape(userID),
		token:    token,
	}

	return decodeList(ctx, c, req, exchangeWire.toModel)
}

type exchangeLineWire struct {
	ResiduoID  string  `json:"residuoId"`
	PesoGramos float64 `json:"pesoGramos"`
}

type createExchangeWire struct {
	UsuarioID   string             `json:"usuarioId"`
	CodigoCupon string             `json:"codigoCupon,omitempty"`
	Detalles    []exchangeLineWire `json:"detalles"`
}

// CreateExchange opens a pending exchange and returns it with its token.
func (c *Client) CreateExchange(
	ctx context.Context,
	token, userID string,
	exchange models.ExchangeRequest,
) (models.Exchange, error) {
	payload := createExchangeWire{
		UsuarioID:   userID,
		CodigoCupon: exchange.CouponCode,
		Detalles:    make([]exchangeLineWire, 0, len(exchange.Lines)),
	}
	for _, line := range exchange.Lines {
		payload.Detalles = append(payload.Detalles, exchangeLineWire{
			ResiduoID:  line.MaterialID,
			PesoGramos: line.WeightGrams,
		})
	}

	req, err := jsonRequest(endpointCreateExchange, http.MethodPost, "/intercambios", token, payload)
	if err != nil {
		return models.Exchange{}, err
	}

	return decode(ctx, c, req, func(w exchangeWire) (models.Exchange, error) {
		return w.toModel(endpointCreateExchange)
	})
}

// ListMaterials returns the recyclable materials and their points per unit.
func (c *Client) ListMaterials(ctx context.Context) ([]models.Material, error) {
	req := request{endpoint: endpointListMaterials, method: http.MethodGet, path: "/residuos"}

	return decodeList(ctx, c, req, materialWire.toModel)
}
