// Package users expone el repositorio de usuarios como API HTTP (/api/users),
// la misma que consume el cliente userapi cuando corre en otro proceso.
package users

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kjun-ai/authgate/internal/domain/repository"
	"github.com/kjun-ai/authgate/internal/domain/types"
	dto "github.com/kjun-ai/authgate/internal/http/dto/user"
	httperrors "github.com/kjun-ai/authgate/internal/http/errors"
	"github.com/kjun-ai/authgate/internal/http/helpers"
	"github.com/kjun-ai/authgate/internal/observability/logger"
)

// Controller maneja /api/users.
type Controller struct {
	repo repository.UserRepository
}

func NewController(repo repository.UserRepository) *Controller {
	return &Controller{repo: repo}
}

func writeUser(w http.ResponseWriter, u *repository.User) {
	m := dto.FromUser(u)
	helpers.WriteJSON(w, http.StatusOK, dto.Response{Success: true, User: &m})
}

// FindByOAuth maneja GET /api/users/oauth?provider=KAKAO&oauthId=123
func (c *Controller) FindByOAuth(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := types.ParseProvider(q.Get("provider"))
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrUnknownProvider)
		return
	}
	oauthID := strings.TrimSpace(q.Get("oauthId"))
	if oauthID == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("oauthId is required"))
		return
	}

	u, err := c.repo.FindByProvider(r.Context(), p, oauthID)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	writeUser(w, u)
}

// SaveOrUpdate maneja POST /api/users/oauth
func (c *Controller) SaveOrUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("UsersController.SaveOrUpdate"))

	var req dto.SaveRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.Provider == "" || strings.TrimSpace(req.OAuthID) == "" || req.Email == "" || req.Nickname == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("provider, oauthId, email and nickname are required"))
		return
	}
	p, err := types.ParseProvider(req.Provider)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrUnknownProvider)
		return
	}

	u, err := c.repo.FindOrCreate(ctx, repository.FindOrCreateInput{
		Provider:  p,
		OAuthID:   strings.TrimSpace(req.OAuthID),
		Email:     req.Email,
		Nickname:  req.Nickname,
		AvatarURL: req.ProfileImageURL,
	})
	if err != nil {
		log.Error("user upsert failed", logger.Provider(p.String()), logger.Err(err))
		httperrors.WriteError(w, err)
		return
	}
	writeUser(w, u)
}

// FindByID maneja GET /api/users/{id}
func (c *Controller) FindByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("invalid user id"))
		return
	}

	u, err := c.repo.FindByID(r.Context(), id)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	writeUser(w, u)
}
