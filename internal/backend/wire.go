package backend

import (
	"time"

	"github.com/UnknownOlympus/verdeando/internal/models"
)

// The backend speaks Spanish field names and leaves most fields optional. Every payload is
// decoded into one of these wire structs and converted to a model, failing on missing
// required fields so that no half-filled value reaches business logic.

type greenPointWire struct {
	ID                  string   `json:"id"`
	Latitud             *float64 `json:"latitud"`
	Longitud            *float64 `json:"longitud"`
	Direccion           string   `json:"direccion"`
	Nombre              string   `json:"nombre"`
	Descripcion         string   `json:"descripcion"`
	Imagen              string   `json:"imagen"`
	DiasHorarioAtencion string   `json:"diasHorarioAtencion"`
	IsDeleted           bool     `json:"isDeleted"`
	ColaboradorID       string   `json:"colaboradorId"`
	ResiduosAceptados   []string `json:"residuosAceptados"`
}

func (w greenPointWire) toModel(endpoint string) (models.GreenPoint, error) {
	if w.ID == "" {
		return models.GreenPoint{}, malformed(endpoint, "green point without id")
	}
	if w.Latitud == nil || w.Longitud == nil {
		return models.GreenPoint{}, malformed(endpoint, "green point %s without coordinates", w.ID)
	}

	materials := w.ResiduosAceptados
	if materials == nil {
		materials = []string{}
	}

	return models.GreenPoint{
		ID:                  w.ID,
		Location:            models.Coordinates{Latitude: *w.Latitud, Longitude: *w.Longitud},
		Address:             w.Direccion,
		Name:                w.Nombre,
		Description:         w.Descripcion,
		OpeningHours:        w.DiasHorarioAtencion,
		ImageURL:            w.Imagen,
		AcceptedMaterials:   materials,
		OwnerCollaboratorID: w.ColaboradorID,
		IsDeleted:           w.IsDeleted,
	}, nil
}

type materialWire struct {
	ID       string `json:"id"`
	Material string `json:"material"`
	Puntos   int    `json:"puntos"`
}

func (w materialWire) toModel(endpoint string) (models.Material, error) {
	if w.ID == "" || w.Material == "" {
		return models.Material{}, malformed(endpoint, "material without id or name")
	}

	return models.Material{ID: w.ID, Name: w.Material, Points: w.Puntos}, nil
}

type exchangeDetailWire struct {
	PesoGramos  float64       `json:"pesoGramos"`
	PuntosTotal int           `json:"puntosTotal"`
	Residuo     *materialWire `json:"residuo"`
}

type exchangeWire struct {
	ID                 string               `json:"id"`
	PesoTotal          float64              `json:"pesoTotal"`
	TotalPuntos        int                  `json:"totalPuntos"`
	Fecha              *time.Time           `json:"fecha"`
	FechaLimite        *time.Time           `json:"fechaLimite"`
	FechaRealizado     *time.Time           `json:"fechaRealizado"`
	Estado             string               `json:"estado"`
	Token              string               `json:"token"`
	UsuarioID          string               `json:"usuarioId"`
	PuntoVerdeID       string               `json:"puntoVerdeId"`
	CodigoCupon        string               `json:"codigoCupon"`
	EventoID           string               `json:"eventoId"`
	DetalleIntercambio []exchangeDetailWire `json:"detalleIntercambio"`
}

func (w exchangeWire) toModel(endpoint string) (models.Exchange, error) {
	if w.ID == "" {
		return models.Exchange{}, malformed(endpoint, "exchange without id")
	}

	// States other than REALIZADO are kept verbatim; the backend owns the lifecycle.
	state := models.ExchangeState(w.Estado)
	if state == "" {
		state = models.ExchangeStateUnknown
	}

	details := make([]models.ExchangeDetail, 0, len(w.DetalleIntercambio))
	for _, d := range w.DetalleIntercambio {
		if d.Residuo == nil {
			return models.Exchange{}, malformed(endpoint, "exchange %s has a detail without material", w.ID)
		}
		material, err := d.Residuo.toModel(endpoint)
		if err != nil {
			return models.Exchange{}, err
		}
		details = append(details, models.ExchangeDetail{
			Material:    material,
			WeightGrams: d.PesoGramos,
			Points:      d.PuntosTotal,
		})
	}

	exchange := models.Exchange{
		ID:           w.ID,
		State:        state,
		TotalWeight:  w.PesoTotal,
		TotalPoints:  w.TotalPuntos,
		Details:      details,
		Token:        w.Token,
		UserID:       w.UsuarioID,
		GreenPointID: w.PuntoVerdeID,
		CouponCode:   w.CodigoCupon,
		EventID:      w.EventoID,
		Deadline:     w.FechaLimite,
		CompletedAt:  w.FechaRealizado,
	}
	if w.Fecha != nil {
		exchange.CreatedAt = *w.Fecha
	}

	return exchange, nil
}

type collaboratorWire struct {
	ID              string `json:"id"`
	CVU             string `json:"cvu"`
	DomicilioFiscal string `json:"domicilioFiscal"`
	CuitCuil        string `json:"cuitCuil"`
}

type userWire struct {
	ID          string            `json:"id"`
	Nombre      string            `json:"nombre"`
	Apellido    string            `json:"apellido"`
	Email       string            `json:"email"`
	Puntos      int               `json:"puntos"`
	Direccion   string            `json:"direccion"`
	Rol         string            `json:"rol"`
	Colaborador *collaboratorWire `json:"colaborador"`
}

func (w userWire) toModel(endpoint string) (models.User, error) {
	if w.ID == "" {
		return models.User{}, malformed(endpoint, "user without id")
	}

	role := models.Role(w.Rol)
	switch role {
	case models.RoleAdmin, models.RoleUser, models.RoleCollaborator:
	default:
		return models.User{}, malformed(endpoint, "user %s has unknown role %q", w.ID, w.Rol)
	}

	user := models.User{
		ID:        w.ID,
		FirstName: w.Nombre,
		LastName:  w.Apellido,
		Email:     w.Email,
		Points:    w.Puntos,
		Address:   w.Direccion,
		Role:      role,
	}
	if w.Colaborador != nil && w.Colaborador.ID != "" {
		user.Collaborator = &models.Collaborator{
			ID:            w.Colaborador.ID,
			CVU:           w.Colaborador.CVU,
			FiscalAddress: w.Colaborador.DomicilioFiscal,
			CUIT:          w.Colaborador.CuitCuil,
		}
	}

	return user, nil
}

type loginWire struct {
	User  *userWire `json:"user"`
	Token *struct {
		AccessToken string `json:"accessToken"`
	} `json:"token"`
}

type articleWire struct {
	ID            string     `json:"id"`
	Titulo        string     `json:"titulo"`
	Descripcion   string     `json:"descripcion"`
	Image         string     `json:"image"`
	URL           string     `json:"url"`
	Tag           string     `json:"tag"`
	FechaCreacion *time.Time `json:"fechaCreacion"`
	Views         *int       `json:"views"`
}

func (w articleWire) toModel(endpoint string) (models.Article, error) {
	if w.ID == "" {
		return models.Article{}, malformed(endpoint, "article without id")
	}
	if w.FechaCreacion == nil {
		return models.Article{}, malformed(endpoint, "article %s without publication date", w.ID)
	}

	article := models.Article{
		ID:          w.ID,
		Title:       w.Titulo,
		Description: w.Descripcion,
		ImageURL:    w.Image,
		URL:         w.URL,
		Tag:         w.Tag,
		PublishedAt: *w.FechaCreacion,
	}
	if w.Views != nil {
		article.Views = *w.Views
	}

	return article, nil
}

type rewardWire struct {
	ID          string `json:"id"`
	Titulo      string `json:"titulo"`
	Descripcion string `json:"descripcion"`
	Foto        string `json:"foto"`
	Puntos      int    `json:"puntos"`
	Cantidad    int    `json:"cantidad"`
}

func (w rewardWire) toModel(endpoint string) (models.Reward, error) {
	if w.ID == "" {
		return models.Reward{}, malformed(endpoint, "reward without id")
	}

	return models.Reward{
		ID:          w.ID,
		Title:       w.Titulo,
		Description: w.Descripcion,
		PhotoURL:    w.Foto,
		Points:      w.Puntos,
		Stock:       w.Cantidad,
	}, nil
}

type redemptionWire struct {
	ID            string      `json:"id"`
	FechaDeCanjeo *time.Time  `json:"fechaDeCanjeo"`
	Recompensa    *rewardWire `json:"recompensa"`
}

func (w redemptionWire) toModel(endpoint string) (models.Redemption, error) {
	if w.ID == "" || w.Recompensa == nil {
		return models.Redemption{}, malformed(endpoint, "redemption without id or reward")
	}

	reward, err := w.Recompensa.toModel(endpoint)
	if err != nil {
		return models.Redemption{}, err
	}

	redemption := models.Redemption{ID: w.ID, Reward: reward}
	if w.FechaDeCanjeo != nil {
		redemption.RedeemedAt = *w.FechaDeCanjeo
	}

	return redemption, nil
}

type eventWire struct {
	ID                     string     `json:"id"`
	Titulo                 string     `json:"titulo"`
	Descripcion            string     `json:"descripcion"`
	Imagen                 string     `json:"imagen"`
	FechaInicio            *time.Time `json:"fechaInicio"`
	FechaFin               *time.Time `json:"fechaFin"`
	Codigo                 string     `json:"codigo"`
	Multiplicador          *float64   `json:"multiplicador"`
	PuntosVerdesPermitidos []string   `json:"puntosVerdesPermitidos"`
}

func (w eventWire) toModel(endpoint string) (models.Event, error) {
	if w.ID == "" {
		return models.Event{}, malformed(endpoint, "event without id")
	}
	if w.FechaInicio == nil || w.FechaFin == nil {
		return models.Event{}, malformed(endpoint, "event %s without start or end date", w.ID)
	}

	event := models.Event{
		ID:          w.ID,
		Title:       w.Titulo,
		Description: w.Descripcion,
		ImageURL:    w.Imagen,
		Code:        w.Codigo,
		StartsAt:    *w.FechaInicio,
		EndsAt:      *w.FechaFin,
		Multiplier:  1,
		GreenPoints: w.PuntosVerdesPermitidos,
	}
	if w.Multiplicador != nil && *w.Multiplicador > 0 {
		event.Multiplier = *w.Multiplicador
	}
	if event.GreenPoints == nil {
		event.GreenPoints = []string{}
	}

	return event, nil
}
