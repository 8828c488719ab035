package travelplans

import (
	"encoding/json"
	"net/http"
	"strconv"

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

func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, _ := r.Context().Value(globals.UserIDKey).(string)
	if userID == "" {
		apperrors.Write(w, apperrors.Unauthorized("Invalid user"))
		return
	}

	var input CreatePlanInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apperrors.Write(w, apperrors.BadRequest("Invalid input"))
		return
	}

	plan, err := h.Service.CreatePlan(r.Context(), userID, input)
	if err != nil {
		apperrors.Write(w, err)
		return
	}

	go mq.Emit("travelplan-created", models.Index{
		EntityType: "travelplan",
		EntityId:   plan.PlanID,
		Method:     "POST",
	})

	utils.SendResponse(w, http.StatusCreated, plan, "Travel plan created", nil)
}

func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	plan, err := h.Service.GetPlan(r.Context(), ps.ByName("id"))
	if err != nil {
		apperrors.Write(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, plan)
}

func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	opts := query.ParseOptions(r)
	filters := query.Pick(r, []string{"destination", "budgetRange", "travelType", "visibility"})
	searchTerm := r.URL.Query().Get("searchTerm")

	plans, meta, err := h.Service.ListPlans(r.Context(), searchTerm, filters, opts)
	if err != nil {
		apperrors.Write(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"data": plans,
		"meta": meta,
	})
}

func (h *Handler) MyPlans(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, _ := r.Context().Value(globals.UserIDKey).(string)
	if userID == "" {
		apperrors.Write(w, apperrors.Unauthorized("Invalid user"))
		return
	}

	opts := query.ParseOptions(r)
	var isCompleted *bool
	if v := r.URL.Query().Get("isCompleted"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			apperrors.Write(w, apperrors.BadRequest("isCompleted must be true or false"))
			return
		}
		isCompleted = &parsed
	}

	plans, meta, err := h.Service.MyPlans(r.Context(), userID, isCompleted, opts)
	if err != nil {
		apperrors.Write(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"data": plans,
		"meta": meta,
	})
}

func (h *Handler) MatchedTravelers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, _ := r.Context().Value(globals.UserIDKey).(string)
	if userID == "" {
		apperrors.Write(w, apperrors.Unauthorized("Invalid user"))
		return
	}

	opts := query.ParseOptions(r)
	q := r.URL.Query()
	params := MatchParams{
		Destination:    q.Get("destination"),
		TravelType:     q.Get("travelType"),
		StartDateTime:  q.Get("startDateTime"),
		EndDateTime:    q.Get("endDateTime"),
		TravelInterest: q.Get("travelInterests"),
	}

	plans, meta, err := h.Service.MatchedTravelers(r.Context(), userID, params, opts)
	if err != nil {
		apperrors.Write(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"data": plans,
		"meta": meta,
	})
}

func (h *Handler) UpdatePlan(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, _ := r.Context().Value(globals.UserIDKey).(string)
	if userID == "" {
		apperrors.Write(w, apperrors.Unauthorized("Invalid user"))
		return
	}

	var input UpdatePlanInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apperrors.Write(w, apperrors.BadRequest("Invalid input"))
		return
	}

	plan, err := h.Service.UpdatePlan(r.Context(), userID, ps.ByName("id"), input)
	if err != nil {
		apperrors.Write(w, err)
		return
	}

	go mq.Emit("travelplan-updated", models.Index{
		EntityType: "travelplan",
		EntityId:   plan.PlanID,
		Method:     "PUT",
	})

	utils.SendResponse(w, http.StatusOK, plan, "Travel plan updated", nil)
}

func (h *Handler) DeletePlan(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, _ := r.Context().Value(globals.UserIDKey).(string)
	role, _ := r.Context().Value(globals.RoleKey).(string)
	if userID == "" {
		apperrors.Write(w, apperrors.Unauthorized("Invalid user"))
		return
	}

	planID := ps.ByName("id")
	if err := h.Service.DeletePlan(r.Context(), userID, role, planID); err != nil {
		apperrors.Write(w, err)
		return
	}

	go mq.Emit("travelplan-deleted", models.Index{
		EntityType: "travelplan",
		EntityId:   planID,
		Method:     "DELETE",
	})

	utils.SendResponse(w, http.StatusOK, nil, "Travel plan deleted", nil)
}
