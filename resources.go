package main

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"chershare/internal/store"
	"chershare/internal/utils"
)

func (app *App) handleListResources(w http.ResponseWriter, r *http.Request) {
	filter := store.ResourceFilter{
		Name:           r.URL.Query().Get("name"),
		OwnerAccountID: r.URL.Query().Get("creatorAccountId"),
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			utils.BadRequestError(w, "limit must be a positive integer")
			return
		}
		filter.Limit = limit
	}

	views, err := app.Store.ListResources(filter)
	if err != nil {
		log.WithError(err).Error("Failed to list resources")
		utils.DatabaseError(w)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, views)
}

func (app *App) handleGetResource(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["resourceName"]

	view, err := app.Store.GetResource(name)
	if err != nil {
		log.WithError(err).WithField("resource", name).Error("Failed to look up resource")
		utils.DatabaseError(w)
		return
	}
	if view == nil {
		utils.NotFoundError(w, "Resource")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, view)
}

func (app *App) handleResourceImages(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["resourceName"]

	images, err := app.Store.ResourceImages(name)
	if err != nil {
		log.WithError(err).WithField("resource", name).Error("Failed to query resource images")
		utils.DatabaseError(w)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, images)
}
