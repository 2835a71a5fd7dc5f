package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corail-backend/internal/models"
	"corail-backend/internal/validation"
)

func TestQuoteLifecycle(t *testing.T) {
	env := newEnv(t, 0)
	env.verified(t, "alice")
	env.do(t, http.MethodPut, "/api/profile/fcm-token", "alice", gin.H{"fcm_token": "device-alice"})

	w := env.do(t, http.MethodPost, "/api/quotes", "alice", gin.H{
		"client_name":     "Mme Durand",
		"client_phone":    "06 11 22 33 44",
		"pickup_address":  "Hôtel Lutetia",
		"dropoff_address": "CDG T2",
		"price":           "80",
		"scheduled_date":  "2025-03-15",
		"scheduled_time":  "07:30",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var quote models.QuoteResponse
	decode(t, w, &quote)

	assert.Equal(t, models.QuotePending, quote.Status)
	assert.Equal(t, "07:30:00", quote.ScheduledTime)
	assert.Equal(t, "80.00€", quote.PriceLabel)
	assert.Equal(t, "https://quotes.test/q/"+quote.Token, quote.QuoteURL)
	assert.Contains(t, quote.WhatsAppMessage, "le 15/3 à 07h30")
	assert.Contains(t, quote.WhatsAppMessage, "Montant : 80 €.")
	assert.True(t, strings.HasPrefix(quote.WhatsAppURL, "whatsapp://send?phone=0611223344&text="), quote.WhatsAppURL)
	assert.False(t, quote.WhatsAppSent)

	var list []models.QuoteResponse
	decode(t, env.do(t, http.MethodGet, "/api/quotes", "alice", nil), &list)
	require.Len(t, list, 1)
	decode(t, env.do(t, http.MethodGet, "/api/quotes", "bob", nil), &list)
	assert.Empty(t, list)

	// публичная страница без токена авторизации
	w = env.do(t, http.MethodGet, "/api/quotes/public/"+quote.Token, "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var public models.PublicQuote
	decode(t, w, &public)
	assert.Equal(t, "Chauffeur alice", public.DriverName)
	assert.Equal(t, "+33 6 12 34 56 78", public.DriverPhone)
	assert.Equal(t, int64(8000), public.PriceCents)

	w = env.do(t, http.MethodPost, "/api/quotes/public/"+quote.Token+"/respond", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/quotes/public/"+quote.Token+"/respond", "", gin.H{"accepted": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		Status models.QuoteStatus `json:"status"`
	}
	decode(t, w, &res)
	assert.Equal(t, models.QuoteAccepted, res.Status)
	assert.Contains(t, env.pusher.sent(), "📩 Réponse au devis")

	w = env.do(t, http.MethodPost, "/api/quotes/public/"+quote.Token+"/respond", "", gin.H{"accepted": false})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Ce devis a déjà reçu une réponse", errorMessage(t, w))

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/quotes/public/unknown", "", nil).Code)
}

func TestQuoteValidation(t *testing.T) {
	env := newEnv(t, 0)

	tests := []struct {
		name  string
		body  gin.H
		field string
		msg   string
	}{
		{
			name:  "missing client",
			body:  gin.H{"client_phone": "06", "pickup_address": "A", "dropoff_address": "B", "price": "10"},
			field: "client_name",
			msg:   "Veuillez saisir le nom du client",
		},
		{
			name:  "bad price",
			body:  gin.H{"client_name": "X", "client_phone": "06", "pickup_address": "A", "dropoff_address": "B", "price": "dix"},
			field: "price",
			msg:   validation.MsgInvalidPrice,
		},
		{
			name: "bad date",
			body: gin.H{"client_name": "X", "client_phone": "06", "pickup_address": "A", "dropoff_address": "B", "price": "10",
				"scheduled_date": "15/03/2025"},
			field: "scheduled_date",
			msg:   "Date invalide",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/quotes", "alice", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			var body struct {
				Error string `json:"error"`
				Field string `json:"field"`
			}
			decode(t, w, &body)
			assert.Equal(t, tt.msg, body.Error)
			assert.Equal(t, tt.field, body.Field)
		})
	}
}
