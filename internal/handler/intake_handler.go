package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/homeolab/homeoagent/internal/model"
	"github.com/homeolab/homeoagent/internal/pkg/errcode"
	"github.com/homeolab/homeoagent/internal/pkg/response"
	"github.com/homeolab/homeoagent/internal/service"
)

type IntakeHandler struct {
	intakes *service.IntakeService
}

func NewIntakeHandler(intakes *service.IntakeService) *IntakeHandler {
	return &IntakeHandler{intakes: intakes}
}

type intakeSubmitRequest struct {
	model.PatientIntake
	Polish bool `json:"polish"`
}

func (h *IntakeHandler) Submit(c *gin.Context) {
	var req intakeSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	intake, err := h.intakes.Submit(c.Request.Context(), &req.PatientIntake, req.Polish)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"id":      intake.ID,
		"intake":  intake,
		"summary": intake.Summary,
	})
}

func (h *IntakeHandler) Get(c *gin.Context) {
	intake, err := h.intakes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, intake)
}

func (h *IntakeHandler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		// Unparseable limits fall through to the repo default.
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}
	intakes, err := h.intakes.List(c.Request.Context(), limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": intakes})
}
