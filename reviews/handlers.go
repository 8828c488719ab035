package reviews

import (
	"encoding/json"
	"fmt"
	"net/http"

	"tripmate/apperrors"
	"tripmate/globals"
	"tripmate/models"
	"tripmate/mq"
	"tripmate/query"
	"tripmate/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	email, _ := r.Context().Value(globals.EmailKey).(string)
	if email == "" {
		apperrors.Write(w, apperrors.Unauthorized("Invalid user"))
		return
	}

	// Rating arrives as a number or a string depending on the client.
	var payload struct {
		TravelPlanID string `json:"travelPlanId"`
		ReviewedID   string `json:"reviewedId"`
		Rating       any    `json:"rating"`
		Comment      string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apperrors.Write(w, apperrors.BadRequest("Invalid input"))
		return
	}

	input := CreateReviewInput{
		TravelPlanID: payload.TravelPlanID,
		ReviewedID:   payload.ReviewedID,
		Comment:      payload.Comment,
	}
	if payload.Rating != nil {
		input.Rating = fmt.Sprint(payload.Rating)
	}

	review, err := h.Service.CreateReview(r.Context(), email, input)
	if err != nil {
		apperrors.Write(w, err)
		return
	}

	go mq.Emit("review-created", models.Index{
		EntityType: "review",
		EntityId:   review.ReviewID,
		Method:     "POST",
		ItemId:     review.ReviewedID,
		ItemType:   "user",
	})

	utils.SendResponse(w, http.StatusCreated, review, "Review created", nil)
}

func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	opts := query.ParseOptions(r)
	filters := query.Pick(r, []string{"reviewerId", "reviewedId", "travelPlanId"})
	searchTerm := r.URL.Query().Get("searchTerm")

	reviews, meta, err := h.Service.ListReviews(r.Context(), searchTerm, filters, opts)
	if err != nil {
		apperrors.Write(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"data": reviews,
		"meta": meta,
	})
}

func (h *Handler) Testimonials(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	testimonials, err := h.Service.Testimonials(r.Context())
	if err != nil {
		apperrors.Write(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, testimonials)
}
