package handlers

import (
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"timeclock/config"
	"timeclock/database"
	"timeclock/middleware"
	"timeclock/models"
)

type AuthHandler struct {
	config *config.Config
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{config: cfg}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	var user models.User
	if err := database.GetDB().Where("username = ?", req.Username).First(&user).Error; err != nil {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "Invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "Invalid credentials")
		return
	}

	token, err := middleware.GenerateToken(&user, h.config.JWTExpiration)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to generate token", err)
		return
	}

	h.setTokenCookie(w, token)
	respondJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=5"`
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "Authentication required")
		return
	}

	var req changePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "Current password is incorrect")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to hash password", err)
		return
	}

	user.PasswordHash = string(hashedPassword)
	user.MustChangePassword = false
	if err := database.GetDB().Save(user).Error; err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to update password", err)
		return
	}

	// Regenerate the token so the session outlives the change.
	token, err := middleware.GenerateToken(user, h.config.JWTExpiration)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to generate token", err)
		return
	}
	h.setTokenCookie(w, token)
	respondJSON(w, http.StatusOK, map[string]any{"token": token})
}

type registerRequest struct {
	Code     string `json:"code" validate:"required"`
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=5"`
}

// Register consumes a single-use invite. The invite fixes the role, store
// and department; the new hire only picks credentials.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	db := database.GetDB()

	var invite models.Invite
	if err := db.Where("code = ?", req.Code).First(&invite).Error; err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeNotFound, "Invalid invite code")
		return
	}
	if !invite.IsValid() {
		respondError(w, http.StatusBadRequest, ErrCodeConflict, "Invite code has expired or already been used")
		return
	}

	var existing models.User
	if err := db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		respondError(w, http.StatusConflict, ErrCodeConflict, "Username already exists")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to create account", err)
		return
	}

	user := models.User{
		Username:           req.Username,
		FullName:           invite.FullName,
		PasswordHash:       string(hashedPassword),
		Role:               invite.Role,
		MustChangePassword: false,
		StoreID:            invite.StoreID,
		DepartmentID:       invite.DepartmentID,
	}
	if err := db.Create(&user).Error; err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to create account", err)
		return
	}

	invite.Used = true
	db.Save(&invite)

	token, err := middleware.GenerateToken(&user, h.config.JWTExpiration)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to generate token", err)
		return
	}
	h.setTokenCookie(w, token)
	respondJSON(w, http.StatusCreated, map[string]any{
		"token": token,
		"user":  user,
	})
}

func (h *AuthHandler) ListInvites(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if !user.CanCreateInvites() {
		respondError(w, http.StatusForbidden, ErrCodeForbidden, "Admin access required")
		return
	}

	var invites []models.Invite
	database.GetDB().Preload("Store").Preload("Department").
		Where("created_by = ?", user.ID).Order("created_at desc").Find(&invites)
	respondJSON(w, http.StatusOK, invites)
}

type createInviteRequest struct {
	FullName     string `json:"full_name" validate:"required"`
	Role         string `json:"role" validate:"required,oneof=MANAGER EMPLOYEE"`
	StoreID      *uint  `json:"store_id"`
	DepartmentID *uint  `json:"department_id"`
}

func (h *AuthHandler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if !user.CanCreateInvites() {
		respondError(w, http.StatusForbidden, ErrCodeForbidden, "Admin access required")
		return
	}

	var req createInviteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	code, err := models.GenerateInviteCode()
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to generate invite code", err)
		return
	}

	invite := models.Invite{
		Code:         code,
		FullName:     req.FullName,
		Role:         models.Role(req.Role),
		CreatedBy:    user.ID,
		ExpiresAt:    time.Now().Add(h.config.InviteExpiration),
		StoreID:      req.StoreID,
		DepartmentID: req.DepartmentID,
	}
	if err := database.GetDB().Create(&invite).Error; err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to create invite", err)
		return
	}

	respondJSON(w, http.StatusCreated, invite)
}

func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.config.JWTExpiration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
