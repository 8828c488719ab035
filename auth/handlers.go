package auth

import (
	"encoding/json"
	"log"
	"net/http"

	"tripmate/apperrors"
	"tripmate/globals"
	"tripmate/models"
	"tripmate/mq"
	"tripmate/rdx"
	"tripmate/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apperrors.Write(w, apperrors.BadRequest("Invalid input"))
		return
	}

	user, err := h.Service.Register(r.Context(), input, models.RoleUser)
	if err != nil {
		apperrors.Write(w, err)
		return
	}

	if err := rdx.RdxSet("users:"+user.UserID, user.Name); err != nil {
		log.Printf("Failed to cache user name: %v", err)
	}
	go mq.Emit("user-registered", models.Index{
		EntityType: "user",
		EntityId:   user.UserID,
		Method:     "POST",
	})

	utils.SendResponse(w, http.StatusCreated, user, "Registration successful", nil)
}

// CreateAdmin mints an ADMIN account. Route-level role checks keep it
// admin-only.
func (h *Handler) CreateAdmin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apperrors.Write(w, apperrors.BadRequest("Invalid input"))
		return
	}

	user, err := h.Service.Register(r.Context(), input, models.RoleAdmin)
	if err != nil {
		apperrors.Write(w, err)
		return
	}

	utils.SendResponse(w, http.StatusCreated, user, "Admin created", nil)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apperrors.Write(w, apperrors.BadRequest("Invalid input"))
		return
	}

	result, err := h.Service.Login(r.Context(), input.Email, input.Password)
	if err != nil {
		apperrors.Write(w, err)
		return
	}

	if err := rdx.RdxHset("tokki", result.UserID, result.Token); err != nil {
		log.Printf("Redis token storage failed: %v", err)
	}

	utils.SendResponse(w, http.StatusOK, result, "Login successful", nil)
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		UserID       string `json:"userid"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apperrors.Write(w, apperrors.BadRequest("Invalid input"))
		return
	}

	result, err := h.Service.Refresh(r.Context(), input.UserID, input.RefreshToken)
	if err != nil {
		apperrors.Write(w, err)
		return
	}

	if err := rdx.RdxHset("tokki", result.UserID, result.Token); err != nil {
		log.Printf("Redis token storage failed: %v", err)
	}

	utils.SendResponse(w, http.StatusOK, result, "Token refreshed", nil)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, _ := r.Context().Value(globals.UserIDKey).(string)
	if userID == "" {
		apperrors.Write(w, apperrors.Unauthorized("Invalid user"))
		return
	}

	if err := h.Service.Logout(r.Context(), userID); err != nil {
		apperrors.Write(w, err)
		return
	}

	if err := rdx.RdxHdel("tokki", userID); err != nil {
		log.Printf("Error removing token from Redis: %v", err)
	}

	go mq.Emit("user-loggedout", models.Index{
		EntityType: "user",
		EntityId:   userID,
		Method:     "POST",
	})

	utils.SendResponse(w, http.StatusOK, nil, "User logged out", nil)
}
