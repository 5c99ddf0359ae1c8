package http

import (
	"net/http"

	"github.com/AlibekovAA/credauth/internal/auth/service"
	authdto "github.com/AlibekovAA/credauth/internal/auth/service/dto"
	commonhttp "github.com/AlibekovAA/credauth/internal/common/http"
	"github.com/AlibekovAA/credauth/internal/common/logger"
)

type registerRequest struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type registerResponse struct {
	User authdto.RegisteredUser `json:"user"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.WithFields(r.Context(), logger.Fields{
			"action": "register_decode",
		}).Warnf("register failed: %v", err)
		h.errors.HandleError(w, r, err)
		return
	}

	user, err := h.registrar.Register(r.Context(), service.RegisterInput{
		Email:       req.Email,
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, registerResponse{User: user})
}
