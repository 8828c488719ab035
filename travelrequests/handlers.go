package travelrequests

import (
	"encoding/json"
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

func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, _ := r.Context().Value(globals.UserIDKey).(string)
	if userID == "" {
		apperrors.Write(w, apperrors.Unauthorized("Invalid user"))
		return
	}

	var input struct {
		PlanID string `json:"planid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apperrors.Write(w, apperrors.BadRequest("Invalid input"))
		return
	}

	req, err := h.Service.CreateRequest(r.Context(), userID, input.PlanID)
	if err != nil {
		apperrors.Write(w, err)
		return
	}

	go mq.Notify("request-created", models.Index{
		EntityType: "travelrequest",
		EntityId:   req.RequestID,
		Method:     "POST",
		ItemId:     req.ReceiverID,
		ItemType:   "user",
	})

	utils.SendResponse(w, http.StatusCreated, req, "Request sent", nil)
}

func (h *Handler) RespondToRequest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, _ := r.Context().Value(globals.UserIDKey).(string)
	if userID == "" {
		apperrors.Write(w, apperrors.Unauthorized("Invalid user"))
		return
	}

	var input struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apperrors.Write(w, apperrors.BadRequest("Invalid input"))
		return
	}

	result, err := h.Service.Respond(r.Context(), userID, ps.ByName("id"), input.Status)
	if err != nil {
		apperrors.Write(w, err)
		return
	}

	// A repeat response is not an error at the transport level: the body
	// carries the failure, the status stays 200.
	if result.AlreadyProcessed {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{
			"status":  http.StatusBadRequest,
			"success": false,
			"message": "Request already processed",
		})
		return
	}

	go mq.Notify("request-answered", models.Index{
		EntityType: "travelrequest",
		EntityId:   result.Request.RequestID,
		Method:     "PUT",
		ItemId:     result.Request.RequesterID,
		ItemType:   "user",
	})

	utils.SendResponse(w, http.StatusOK, result.Request, "Request "+result.Request.Status, nil)
}

func (h *Handler) MyRequests(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, _ := r.Context().Value(globals.UserIDKey).(string)
	if userID == "" {
		apperrors.Write(w, apperrors.Unauthorized("Invalid user"))
		return
	}

	opts := query.ParseOptions(r)
	requests, meta, err := h.Service.MyRequests(r.Context(), userID, opts)
	if err != nil {
		apperrors.Write(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"data": requests,
		"meta": meta,
	})
}

func (h *Handler) PlanRequests(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, _ := r.Context().Value(globals.UserIDKey).(string)
	if userID == "" {
		apperrors.Write(w, apperrors.Unauthorized("Invalid user"))
		return
	}

	requests, err := h.Service.PlanRequests(r.Context(), userID, ps.ByName("id"))
	if err != nil {
		apperrors.Write(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, requests)
}
