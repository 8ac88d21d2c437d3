// Package oauth contiene el controller de login social y sesión (/oauth).
package oauth

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kjun-ai/authgate/internal/auth"
	"github.com/kjun-ai/authgate/internal/domain/types"
	dto "github.com/kjun-ai/authgate/internal/http/dto/oauth"
	httperrors "github.com/kjun-ai/authgate/internal/http/errors"
	"github.com/kjun-ai/authgate/internal/http/helpers"
	mw "github.com/kjun-ai/authgate/internal/http/middlewares"
	"github.com/kjun-ai/authgate/internal/observability/logger"
)

// Controller maneja las rutas /oauth.
type Controller struct {
	service     auth.Service
	available   func() []types.Provider
	frontendURL string
}

// NewController crea el controller. available lista los proveedores
// configurados; frontendURL es la base de las redirecciones del callback.
func NewController(service auth.Service, available func() []types.Provider, frontendURL string) *Controller {
	return &Controller{
		service:     service,
		available:   available,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

func providerParam(r *http.Request) (types.Provider, error) {
	p, err := types.ParseProvider(chi.URLParam(r, "provider"))
	if err != nil {
		return "", httperrors.ErrUnknownProvider.WithDetail(err.Error())
	}
	return p, nil
}

// Providers maneja GET /oauth/providers
func (c *Controller) Providers(w http.ResponseWriter, r *http.Request) {
	resp := dto.ProvidersResponse{Providers: []string{}}
	if c.available != nil {
		for _, p := range c.available() {
			resp.Providers = append(resp.Providers, p.Slug())
		}
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// LoginURL maneja GET|POST /oauth/{provider}/login
func (c *Controller) LoginURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("OAuthController.LoginURL"))

	p, err := providerParam(r)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	loginURL, err := c.service.LoginURL(ctx, p)
	if err != nil {
		log.Warn("login url failed", logger.Provider(p.String()), logger.Err(err))
		httperrors.WriteError(w, err)
		return
	}

	helpers.NoStore(w)
	helpers.WriteJSON(w, http.StatusOK, dto.LoginURLResponse{Success: true, LoginURL: loginURL})
}

// CodeLogin maneja POST /oauth/{provider} con {code, state}.
// Sin code devuelve la URL de login.
func (c *Controller) CodeLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("OAuthController.CodeLogin"))

	p, err := providerParam(r)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	var req dto.CodeLoginRequest
	if r.ContentLength != 0 {
		if !helpers.ReadJSON(w, r, &req) {
			return
		}
	}

	if strings.TrimSpace(req.Code) == "" {
		c.LoginURL(w, r)
		return
	}

	res, err := c.service.Login(ctx, p, req.Code, req.State)
	if err != nil {
		log.Info("code login failed", logger.Provider(p.String()), logger.Err(err))
		httperrors.WriteError(w, err)
		return
	}

	helpers.NoStore(w)
	helpers.WriteJSON(w, http.StatusOK, loginResponse(res))
}

// Callback maneja GET /oauth/{provider}/callback y redirige al frontend.
func (c *Controller) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("OAuthController.Callback"))

	slug := strings.ToLower(chi.URLParam(r, "provider"))
	p, err := providerParam(r)
	if err != nil {
		c.redirectError(w, r, slug, "unknown_provider")
		return
	}

	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		log.Info("provider returned error", logger.Provider(p.String()), logger.String("error", e))
		c.redirectError(w, r, p.Slug(), e)
		return
	}
	code := strings.TrimSpace(q.Get("code"))
	if code == "" {
		c.redirectError(w, r, p.Slug(), "no_code")
		return
	}

	res, err := c.service.Login(ctx, p, code, q.Get("state"))
	if err != nil {
		log.Info("callback login failed", logger.Provider(p.String()), logger.Err(err))
		c.redirectError(w, r, p.Slug(), strings.ToLower(httperrors.FromError(err).Code))
		return
	}

	v := url.Values{}
	v.Set("token", res.AccessToken)
	v.Set("refreshToken", res.RefreshToken)
	v.Set("id", strconv.FormatInt(res.User.ID, 10))
	v.Set("email", res.User.Email)
	v.Set("nickname", res.User.Nickname)

	helpers.NoStore(w)
	http.Redirect(w, r, c.frontendURL+"/oauth/"+p.Slug()+"/success?"+v.Encode(), http.StatusFound)
}

func (c *Controller) redirectError(w http.ResponseWriter, r *http.Request, slug, reason string) {
	v := url.Values{}
	v.Set("error", reason)
	http.Redirect(w, r, c.frontendURL+"/auth/"+url.PathEscape(slug)+"/error?"+v.Encode(), http.StatusFound)
}

// Refresh maneja POST /oauth/refresh
func (c *Controller) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.RefreshRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if !req.UserID.Set {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("userId is required"))
		return
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("refreshToken is required"))
		return
	}

	res, err := c.service.Refresh(ctx, req.UserID.Value, req.RefreshToken)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	helpers.NoStore(w)
	helpers.WriteJSON(w, http.StatusOK, dto.RefreshResponse{
		Success:      true,
		Token:        res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresAt:    res.ExpiresAt,
	})
}

// Logout maneja POST /oauth/logout. Si el body no trae accessToken se usa
// el bearer del header, si lo hay.
func (c *Controller) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.LogoutRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if !req.UserID.Set {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("userId is required"))
		return
	}

	token := strings.TrimSpace(req.AccessToken)
	if token == "" {
		token, _ = mw.BearerToken(r)
	}

	if err := c.service.Logout(ctx, req.UserID.Value, token); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Success: true, Message: "logged out"})
}

// Me maneja GET /oauth/me (detrás de RequireAuth).
func (c *Controller) Me(w http.ResponseWriter, r *http.Request) {
	claims := mw.GetClaims(r.Context())
	if claims == nil {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	resp := dto.MeResponse{
		Success:  true,
		UserID:   claims.UserID,
		Email:    claims.Email,
		Nickname: claims.Nickname,
		TokenID:  claims.TokenID(),
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}
	helpers.NoStore(w)
	helpers.WriteJSON(w, http.StatusOK, resp)
}

func loginResponse(res *auth.LoginResult) dto.LoginResponse {
	return dto.LoginResponse{
		Success:      true,
		Token:        res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresAt:    res.ExpiresAt,
		User: dto.UserInfo{
			ID:           res.User.ID,
			Email:        res.User.Email,
			Nickname:     res.User.Nickname,
			ProfileImage: res.User.AvatarURL,
			Provider:     string(res.User.Provider),
			Role:         string(res.User.Role),
		},
	}
}
