package main

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"chershare/internal/utils"
)

var validate = validator.New()

// bookingWindow carries the overlap window query params. Both bounds must be
// well-formed RFC3339 timestamps before any query runs; malformed values are
// a client error, not a storage error.
type bookingWindow struct {
	From  string `validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Until string `validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

func (app *App) handleResourceBookings(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["resourceName"]

	window := bookingWindow{
		From:  r.URL.Query().Get("from"),
		Until: r.URL.Query().Get("until"),
	}
	if err := validate.Struct(window); err != nil {
		utils.BadRequestError(w, "from and until must be RFC3339 timestamps")
		return
	}

	bookings, err := app.Store.BookingsForResource(name, window.From, window.Until)
	if err != nil {
		log.WithError(err).WithField("resource", name).Error("Failed to query resource bookings")
		utils.DatabaseError(w)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, bookings)
}

func (app *App) handleAccountBookings(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("accountId")
	if accountID == "" {
		utils.BadRequestError(w, "accountId query parameter is required")
		return
	}

	bookings, err := app.Store.BookingsForAccount(accountID)
	if err != nil {
		log.WithError(err).WithField("account", accountID).Error("Failed to query account bookings")
		utils.DatabaseError(w)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, bookings)
}
