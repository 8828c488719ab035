package users

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"tripmate/apperrors"
	"tripmate/filemgr"
	"tripmate/globals"
	"tripmate/models"
	"tripmate/mq"
	"tripmate/query"
	"tripmate/rdx"
	"tripmate/utils"

	"github.com/julienschmidt/httprouter"
)

const profileCacheTTL = 10 * time.Minute

type Handler struct {
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) ListTravelers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	opts := query.ParseOptions(r)
	filters := query.Pick(r, []string{"name", "email"})
	searchTerm := r.URL.Query().Get("searchTerm")

	travelers, meta, err := h.Service.ListTravelers(r.Context(), searchTerm, filters, opts)
	if err != nil {
		apperrors.Write(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"data": travelers,
		"meta": meta,
	})
}

// GetUser serves a single profile through the Redis cache. A cache miss or a
// broken payload falls back to Mongo.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := ps.ByName("id")

	if cached, err := rdx.RdxGet("user:" + userID); err == nil && cached != "" {
		var user models.User
		if err := json.Unmarshal([]byte(cached), &user); err == nil {
			utils.RespondWithJSON(w, http.StatusOK, user)
			return
		}
	}

	user, err := h.Service.GetUser(r.Context(), userID)
	if err != nil {
		apperrors.Write(w, err)
		return
	}

	if data, err := json.Marshal(user); err == nil {
		if err := rdx.RdxSetWithTTL("user:"+userID, string(data), profileCacheTTL); err != nil {
			log.Printf("Failed to cache user %s: %v", userID, err)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, user)
}

func (h *Handler) GetMyProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, _ := r.Context().Value(globals.UserIDKey).(string)
	if userID == "" {
		apperrors.Write(w, apperrors.Unauthorized("Invalid user"))
		return
	}

	user, err := h.Service.GetUser(r.Context(), userID)
	if err != nil {
		apperrors.Write(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, user)
}

// UpdateMyProfile accepts JSON or multipart form data. An image that fails
// to store degrades to a profile-only update instead of failing the request.
func (h *Handler) UpdateMyProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, _ := r.Context().Value(globals.UserIDKey).(string)
	if userID == "" {
		apperrors.Write(w, apperrors.Unauthorized("Invalid user"))
		return
	}

	var input UpdateProfileInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(filemgr.MaxUploadSize()); err != nil {
			apperrors.Write(w, apperrors.BadRequest("Unable to parse form"))
			return
		}
		input.Name = r.FormValue("name")
		input.Bio = r.FormValue("bio")
		input.ContactNumber = r.FormValue("contactNumber")
		input.TravelInterests = splitList(r.FormValue("travelInterests"))
		input.VisitedCountries = splitList(r.FormValue("visitedCountries"))

		if file, header, err := r.FormFile("avatar"); err == nil {
			defer file.Close()
			if !utils.ValidateImageFileType(w, header) {
				return
			}
			fileName, err := filemgr.SaveImageWithThumb(file, header, userID)
			if err != nil {
				log.Printf("Profile image upload failed for %s: %v", userID, err)
			} else {
				input.ProfileImage = fileName
				input.ProfileThumb = fileName
			}
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			apperrors.Write(w, apperrors.BadRequest("Invalid input"))
			return
		}
	}

	user, err := h.Service.UpdateProfile(r.Context(), userID, input)
	if err != nil {
		apperrors.Write(w, err)
		return
	}

	if _, err := rdx.RdxDel("user:" + userID); err != nil {
		log.Printf("Cache invalidation failed for %s: %v", userID, err)
	}
	go mq.Emit("user-updated", models.Index{
		EntityType: "user",
		EntityId:   userID,
		Method:     "PUT",
	})

	utils.SendResponse(w, http.StatusOK, user, "Profile updated", nil)
}

func (h *Handler) DeactivateUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	role, _ := r.Context().Value(globals.RoleKey).(string)
	targetID := ps.ByName("id")

	if err := h.Service.Deactivate(r.Context(), role, targetID); err != nil {
		apperrors.Write(w, err)
		return
	}

	if _, err := rdx.RdxDel("user:" + targetID); err != nil {
		log.Printf("Cache invalidation failed for %s: %v", targetID, err)
	}
	go mq.Emit("user-deactivated", models.Index{
		EntityType: "user",
		EntityId:   targetID,
		Method:     "DELETE",
	})

	utils.SendResponse(w, http.StatusOK, nil, "User deactivated", nil)
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
