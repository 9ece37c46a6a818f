package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/realtruedate/backend/internal/db"
	"github.com/realtruedate/backend/internal/middleware"
	"github.com/realtruedate/backend/internal/response"
	"github.com/realtruedate/backend/internal/server"
)

// Handler exposes registration, verification and the token lifecycle.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes() []server.Route {
	authed := []db.Role{db.RoleUser, db.RoleAdmin}
	return []server.Route{
		{Method: http.MethodPost, Path: "/api/auth/register", Handler: h.register},
		{Method: http.MethodPost, Path: "/api/auth/verify-otp", Handler: h.verifyOTP},
		{Method: http.MethodPost, Path: "/api/auth/resend-otp", Handler: h.resendOTP},
		{Method: http.MethodPost, Path: "/api/auth/login", Handler: h.login},
		{Method: http.MethodPost, Path: "/api/auth/refresh", Handler: h.refresh},
		{Method: http.MethodPost, Path: "/api/auth/change-password", Roles: authed, Handler: h.changePassword},
		{Method: http.MethodPost, Path: "/api/auth/password-reset/request", Handler: h.requestReset},
		{Method: http.MethodPost, Path: "/api/auth/password-reset", Handler: h.reset},
		{Method: http.MethodPost, Path: "/api/admin/auth/register", Handler: h.registerAdmin},
		{Method: http.MethodPost, Path: "/api/admin/auth/login", Handler: h.loginAdmin},
	}
}

type registerRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	Name         string `json:"name" binding:"required"`
	Phone        string `json:"phone"`
	Dob          string `json:"dob" binding:"required"`
	Gender       string `json:"gender" binding:"required"`
	InterestedIn string `json:"interested_in" binding:"required"`
	ZipCode      string `json:"zip_code"`
	TimeZone     string `json:"time_zone"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	dob, err := time.Parse("2006-01-02", req.Dob)
	if err != nil {
		response.Error(c, "Date of birth must be YYYY-MM-DD", nil, http.StatusBadRequest)
		return
	}

	user, err := h.svc.Register(c.Request.Context(), RegisterInput{
		Email:        req.Email,
		Password:     req.Password,
		Name:         req.Name,
		Phone:        req.Phone,
		Dob:          dob,
		Gender:       req.Gender,
		InterestedIn: req.InterestedIn,
		ZipCode:      req.ZipCode,
		TimeZone:     req.TimeZone,
	})
	if err != nil {
		response.Err(c, err)
		return
	}
	response.Created(c, gin.H{"user_id": user.ID, "email": user.Email},
		"Registration successful, verification code sent")
}

type otpRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

func (h *Handler) verifyOTP(c *gin.Context) {
	var req otpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.svc.VerifyOTP(c.Request.Context(), req.Email, req.Code); err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, nil, "Account verified successfully")
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *Handler) resendOTP(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.svc.ResendOTP(c.Request.Context(), req.Email); err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, nil, "Verification code sent")
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	DeviceID string `json:"device_id"`
}

func (h *Handler) login(c *gin.Context) {
	h.handleLogin(c, db.RoleUser)
}

func (h *Handler) loginAdmin(c *gin.Context) {
	h.handleLogin(c, db.RoleAdmin)
}

func (h *Handler) handleLogin(c *gin.Context, role db.Role) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	pair, user, err := h.svc.Login(c.Request.Context(), req.Email, req.Password, req.DeviceID, role)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"user_id":       user.ID,
		"role":          user.Role,
	}, "Login successful")
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *Handler) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	pair, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, pair, "Token refreshed successfully")
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

func (h *Handler) changePassword(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), user, req.CurrentPassword, req.NewPassword); err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, nil, "Password changed successfully")
}

func (h *Handler) requestReset(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.svc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, nil, "If the account exists, a reset code has been sent")
}

type resetRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,len=6"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

func (h *Handler) reset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.svc.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, nil, "Password reset successfully")
}

type adminRegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

func (h *Handler) registerAdmin(c *gin.Context) {
	var req adminRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	user, err := h.svc.RegisterAdmin(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.Created(c, gin.H{"user_id": user.ID, "email": user.Email},
		"Admin account created successfully")
}
