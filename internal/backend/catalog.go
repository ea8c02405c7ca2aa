package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/UnknownOlympus/verdeando/internal/models"
)

const (
	endpointListArticles    = "newsletter.list"
	endpointListRewards     = "recompensas.list"
	endpointRedeemReward    = "recompensas.redeem"
	endpointListRedemptions = "recompensas.history"
	endpointListEvents      = "eventos.list"
)

// ListArticles returns the community newsletter.
func (c *Client) ListArticles(ctx context.Context) ([]models.Article, error) {
	req := request{endpoint: endpointListArticles, method: http.MethodGet, path: "/newsletter"}

	return decodeList(ctx, c, req, articleWire.toModel)
}

// ListRewards returns the reward catalog.
func (c *Client) ListRewards(ctx context.Context, token string) ([]models.Reward, error) {
	req := request{endpoint: endpointListRewards, method: http.MethodGet, path: "/recompensas", token: token}

	return decodeList(ctx, c, req, rewardWire.toModel)
}

// RedeemReward spends the user's points on a reward.
func (c *Client) RedeemReward(ctx context.Context, token, userID, rewardID string) error {
	payload := struct {
		RecompensaID string `json:"recompensaId"`
		UsuarioID    string `json:"usuarioId"`
	}{RecompensaID: rewardID, UsuarioID: userID}

	req, err := jsonRequest(endpointRedeemReward, http.MethodPost, "/recompensas/canjear", token, payload)
	if err != nil {
		return err
	}

	return c.do(ctx, req, nil)
}

// ListRedemptions returns the rewards a user already redeemed.
func (c *Client) ListRedemptions(ctx context.Context, token, userID string) ([]models.Redemption, error) {
	req := request{
		endpoint: endpointListRedemptions,
		method:   http.MethodGet,
		path:     "/recompensas/canjes/" + url.PathEscape(userID),
		token:    token,
	}

	return decodeList(ctx, c, req, redemptionWire.toModel)
}

// ListEvents returns the community events, past and upcoming.
func (c *Client) ListEvents(ctx context.Context) ([]models.Event, error) {
	req := request{endpoint: endpointListEvents, method: http.MethodGet, path: "/eventos"}

	return decodeList(ctx, c, req, eventWire.toModel)
}
