package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Keoroanthony/go-food-delivery/internal/logging"
	"github.com/Keoroanthony/go-food-delivery/internal/orders"
)

// Rejections counts requests the order rules turned down.
type Rejections interface {
	Reject(code string)
}

type responder struct {
	log     *zap.Logger
	rejects Rejections
}

var statusByKind = map[orders.Kind]int{
	orders.KindValidation:    http.StatusBadRequest,
	orders.KindNotFound:      http.StatusNotFound,
	orders.KindAuthorization: http.StatusForbidden,
	orders.KindConflict:      http.StatusConflict,
	orders.KindBusinessRule:  http.StatusUnprocessableEntity,
	orders.KindConcurrency:   http.StatusConflict,
}

func (r responder) writeError(c *gin.Context, err error) {
	var oe *orders.Error
	if !errors.As(err, &oe) {
		r.log.Error("request failed",
			zap.String("request_id", logging.RequestID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "code": "INTERNAL"})
		return
	}

	if r.rejects != nil {
		r.rejects.Reject(oe.Code)
	}
	body := gin.H{"error": oe.Reason, "code": oe.Code}
	if oe.Retryable() {
		body["retryable"] = true
	}
	status, ok := statusByKind[oe.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	c.JSON(status, body)
}

func (r responder) badRequest(c *gin.Context, err error) {
	if r.rejects != nil {
		r.rejects.Reject(orders.ErrInvalidInput.Code)
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": orders.ErrInvalidInput.Code})
}
