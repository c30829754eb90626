package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gin-gorm-auth/internal/service"
	httpez "gin-gorm-auth/internal/transport/http/ez"
)

type signupIn struct {
	Email    string `json:"email"    binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=100,password"`
	Nickname string `json:"nickname" binding:"required,min=2,max=20"`
}

type loginIn struct {
	Email    string `json:"email"    binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,max=100"`
}

type AuthHandler struct {
	svc *service.CredentialService
}

func NewAuthHandler(svc *service.CredentialService) *AuthHandler {
	RegisterValidators()
	return &AuthHandler{svc: svc}
}

// Mount public 挂 /auth/*，authed 需已挂 AuthJWT
func (h *AuthHandler) Mount(public, authed *gin.RouterGroup) {
	ezPublic := httpez.New(public)

	httpez.RegisterAction[signupIn, *service.SignupResult](ezPublic, httpez.Action[signupIn, *service.SignupResult]{
		Method:  http.MethodPost,
		Path:    "/auth/signup",
		Binder:  httpez.BindJSON,
		Status:  http.StatusCreated,
		Handler: h.signup,
	})

	httpez.RegisterAction[loginIn, *service.TokenPair](ezPublic, httpez.Action[loginIn, *service.TokenPair]{
		Method:  http.MethodPost,
		Path:    "/auth/login",
		Binder:  httpez.BindJSON,
		Handler: h.login,
	})

	httpez.RegisterAction[struct{}, *service.Profile](httpez.New(authed), httpez.Action[struct{}, *service.Profile]{
		Method:  http.MethodGet,
		Path:    "/me",
		Binder:  httpez.BindNone,
		Auth:    true,
		Handler: h.me,
	})
}

func (h *AuthHandler) signup(c *gin.Context, in *signupIn) (*service.SignupResult, error) {
	return h.svc.Signup(c.Request.Context(), in.Email, in.Password, in.Nickname)
}

func (h *AuthHandler) login(c *gin.Context, in *loginIn) (*service.TokenPair, error) {
	return h.svc.Login(c.Request.Context(), in.Email, in.Password)
}

func (h *AuthHandler) me(c *gin.Context, _ *struct{}) (*service.Profile, error) {
	return h.svc.Profile(c.Request.Context(), c.GetString(httpez.KeyUserID))
}
