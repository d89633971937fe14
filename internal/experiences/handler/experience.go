package handler

import (
	"net/http"

	"experia/internal/experiences/service"
	httputil "experia/pkg/http"
	"experia/pkg/logger"
	"experia/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ExperienceHandler struct {
	service service.ExperienceService
	log     *logger.Logger
}

func NewExperienceHandler(service service.ExperienceService, log *logger.Logger) *ExperienceHandler {
	return &ExperienceHandler{
		service: service,
		log:     log,
	}
}

// experienceDetail is the public detail view: the raw slot counters stay
// internal, only remaining availability is exposed.
type experienceDetail struct {
	*model.Experience
	Slots          []model.Slot             `json:"slots,omitempty"`
	AvailableSlots []model.SlotAvailability `json:"availableSlots"`
}

func (h *ExperienceHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, limit, err := httputil.ExtractPageLimit(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	search := r.URL.Query().Get("search")

	experiences, total, err := h.service.GetAll(r.Context(), search, limit, httputil.PageOffset(page, limit))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, experiences, len(experiences), total, page, limit); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *ExperienceHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	exp, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	detail := experienceDetail{
		Experience:     exp,
		AvailableSlots: exp.AvailableSlots(),
	}

	if err := httputil.WriteSuccess(w, detail); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ExperienceHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/experiences", h.GetAll)
	router.GET("/api/v1/experiences/:id", h.GetByID)
}
