package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"corail-backend/internal/format"
	"corail-backend/internal/links"
	"corail-backend/internal/models"
	"corail-backend/internal/services"
	"corail-backend/internal/validation"
)

func (d *Deps) quoteResponse(q *models.Quote) models.QuoteResponse {
	url := links.QuoteURL(d.Config.QuotesBaseURL, q.Token)
	message := links.QuoteMessage(*q, url)
	return models.QuoteResponse{
		Quote:           *q,
		PriceLabel:      format.FormatPrice(q.PriceCents),
		QuoteURL:        url,
		WhatsAppMessage: message,
		WhatsAppURL:     links.WhatsAppApp(q.ClientPhone, message),
	}
}

// QuoteCreate - POST /api/quotes. С send_via_whatsapp сообщение уходит через Green API,
// иначе клиент открывает whatsapp:// ссылку сам.
func QuoteCreate(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form validation.QuoteForm
		if err := c.ShouldBindJSON(&form); err != nil {
			badRequest(c, validation.MsgRequiredFields)
			return
		}
		cents, err := validation.Quote(&form)
		if err != nil {
			d.respondError(c, err)
			return
		}

		userID := currentUserID(c)
		quote, err := d.Store.CreateQuote(c.Request.Context(), userID, &models.Quote{
			ClientName:     form.ClientName,
			ClientPhone:    form.ClientPhone,
			PickupAddress:  form.PickupAddress,
			DropoffAddress: form.DropoffAddress,
			ScheduledDate:  form.ScheduledDate,
			ScheduledTime:  form.ScheduledTime,
			PriceCents:     cents,
			Notes:          form.Notes,
		})
		if err != nil {
			d.respondError(c, err)
			return
		}
		resp := d.quoteResponse(quote)

		ctx := background(c)
		if form.SendViaWhatsApp && d.WhatsApp != nil && d.WhatsApp.Enabled() {
			if _, err := d.WhatsApp.SendMessage(ctx, quote.ClientPhone, resp.WhatsAppMessage); err != nil {
				d.Logger.Warn("Не удалось отправить смету в WhatsApp", zap.String("quote_id", quote.ID), zap.Error(err))
			} else {
				resp.WhatsAppSent = true
			}
		}
		d.afterActivity(ctx, userID)

		c.JSON(http.StatusCreated, resp)
	}
}

func QuoteList(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		quotes, err := d.Store.ListQuotes(c.Request.Context(), currentUserID(c))
		if err != nil {
			d.respondError(c, err)
			return
		}
		out := make([]models.QuoteResponse, 0, len(quotes))
		for i := range quotes {
			out = append(out, d.quoteResponse(&quotes[i]))
		}
		c.JSON(http.StatusOK, out)
	}
}

// QuotePublicGet - страница сметы для клиента, без авторизации
func QuotePublicGet(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		quote, driver, err := d.Store.QuoteByToken(c.Request.Context(), c.Param("token"))
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PublicQuote{
			Token:          quote.Token,
			DriverName:     driver.FullName,
			DriverPhone:    driver.Phone,
			PickupAddress:  quote.PickupAddress,
			DropoffAddress: quote.DropoffAddress,
			ScheduledDate:  quote.ScheduledDate,
			ScheduledTime:  quote.ScheduledTime,
			PriceCents:     quote.PriceCents,
			PriceLabel:     format.FormatPrice(quote.PriceCents),
			Notes:          quote.Notes,
			Status:         quote.Status,
		})
	}
}

type quoteRespondRequest struct {
	Accepted *bool `json:"accepted" binding:"required"`
}

// QuoteRespond - ответ клиента; водитель получает push
func QuoteRespond(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req quoteRespondRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Réponse invalide")
			return
		}

		quote, err := d.Store.RespondQuote(c.Request.Context(), c.Param("token"), *req.Accepted)
		if err != nil {
			d.respondError(c, err)
			return
		}

		verb := "refusé"
		if quote.Status == models.QuoteAccepted {
			verb = "accepté"
		}
		_, err = d.Notifications.NotifyUser(background(c), quote.DriverID, services.KindGeneral,
			"📩 Réponse au devis", quote.ClientName+" a "+verb+" votre devis",
			map[string]string{"quote_id": quote.ID})
		if err != nil {
			d.Logger.Warn("Не удалось оповестить водителя об ответе на смету", zap.String("quote_id", quote.ID), zap.Error(err))
		}

		c.JSON(http.StatusOK, gin.H{"status": quote.Status})
	}
}
