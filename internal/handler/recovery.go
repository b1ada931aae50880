package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
)

// RecoveryRequest is the direct-invoke payload of the recovery function.
type RecoveryRequest struct {
	Email string `json:"email"`
}

// Recoverer finds accounts for an address and emails them.
type Recoverer interface {
	Recover(ctx context.Context, email string) (int, error)
}

// Recovery handles username recovery requests.
type Recovery struct {
	svc    Recoverer
	logger *zap.Logger
}

// NewRecovery returns a Recovery handler.
func NewRecovery(svc Recoverer, logger *zap.Logger) *Recovery {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recovery{svc: svc, logger: logger}
}

// Handle sends the recovery email for req.Email.
func (h *Recovery) Handle(ctx context.Context, req RecoveryRequest) events.APIGatewayProxyResponse {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		h.logger.Warn("recovery request without email")
		return jsonNoCORS(http.StatusNotFound, "FAILED: MissingParameters")
	}

	found, err := h.svc.Recover(ctx, email)
	if err != nil {
		h.logger.Error("username recovery failed", zap.Error(err))
		return jsonNoCORS(http.StatusInternalServerError, fmt.Sprintf("CAUGHT ERROR: %v", err))
	}

	h.logger.Info("username recovery email sent", zap.Int("accounts", found))
	return jsonNoCORS(http.StatusOK, "Email sent successfully")
}

// jsonNoCORS encodes a JSON string body; this function is invoked directly,
// never through API Gateway.
func jsonNoCORS(status int, message string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(message)
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Body:       string(body),
	}
}
