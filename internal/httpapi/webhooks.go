package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/notify"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/validate"
)

// orderWebhook relays whatever the storefront posts about an order to the
// configured notifiers.
func (a *api) orderWebhook(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil || len(payload) == 0 {
		badRequest(c, "Payload inválido")
		return
	}
	id := uuid.NewString()
	for _, k := range []string{"order_number", "number", "id"} {
		if v, ok := payload[k]; ok && v != nil {
			id = fmt.Sprint(v)
			break
		}
	}
	a.Dispatcher.Dispatch(notify.NewEvent(notify.EventOrderWebhook, id, payload))
	c.JSON(http.StatusAccepted, gin.H{"received": true, "id": id})
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func (r *contactRequest) validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	r.Message = strings.TrimSpace(r.Message)
	errs := []error{
		validate.Required("name", r.Name, "Nome é obrigatório"),
		validate.Email("email", r.Email),
	}
	if r.Phone != "" {
		errs = append(errs, validate.Phone("phone", r.Phone))
	}
	errs = append(errs, validate.Required("message", r.Message, "Mensagem é obrigatória"))
	return validate.First(errs...)
}

func (a *api) contactWebhook(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Payload inválido")
		return
	}
	if err := req.validate(); err != nil {
		a.fail(c, err)
		return
	}
	id := uuid.NewString()
	a.Dispatcher.Dispatch(notify.NewEvent(notify.EventContactCreated, id, req))
	c.JSON(http.StatusAccepted, gin.H{"received": true, "message": "Mensagem enviada com sucesso"})
}
