package main

import (
	"io"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"chershare/internal/images"
	"chershare/internal/utils"
)

// Room for multipart framing on top of the field size limit.
const multipartOverhead = 64 * 1024

func (app *App) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	log.Info("received image upload")

	r.Body = http.MaxBytesReader(w, r.Body, images.MaxFieldSize+multipartOverhead)
	if err := r.ParseMultipartForm(images.MaxFieldSize); err != nil {
		utils.RespondWithError(w, http.StatusRequestEntityTooLarge, "upload exceeds the 10 MiB limit or is malformed")
		return
	}

	if r.MultipartForm != nil {
		for name := range r.MultipartForm.Value {
			if len(name) > images.MaxFieldNameSize {
				utils.BadRequestError(w, "field name too long")
				return
			}
		}
		for name := range r.MultipartForm.File {
			if len(name) > images.MaxFieldNameSize {
				utils.BadRequestError(w, "field name too long")
				return
			}
		}
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		utils.RespondWithJSON(w, http.StatusBadRequest, images.Result{OK: false, Error: "no image"})
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		utils.BadRequestError(w, "failed to read upload")
		return
	}

	result, err := app.Images.Process(raw)
	if err != nil {
		log.WithError(err).Error("Failed to persist uploaded image")
		utils.InternalServerError(w, "failed to store image")
		return
	}
	if !result.OK {
		utils.RespondWithJSON(w, http.StatusBadRequest, result)
		return
	}

	log.WithField("relative_url", result.RelativeURL).Info("stored resized image")
	utils.RespondWithJSON(w, http.StatusOK, result)
}

func (app *App) handleServeImage(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	file, err := app.Images.Open(key)
	if err != nil {
		switch {
		case errors.Is(err, images.ErrBadKey):
			utils.BadRequestError(w, "invalid image key")
		case os.IsNotExist(err):
			utils.NotFoundError(w, "Image")
		default:
			log.WithError(err).WithField("key", key).Error("Failed to open stored image")
			utils.InternalServerError(w, "failed to open image")
		}
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", "image/jpeg")
	if _, err := io.Copy(w, file); err != nil {
		log.WithError(err).WithField("key", key).Warn("Image stream interrupted")
	}
}
