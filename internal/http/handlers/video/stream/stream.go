// Package stream реализует отдачу видео диапазонами байт через прокси.
package stream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tutoring-platform/internal/http/response"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/httprange"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/sl"
	"github.com/magabrotheeeer/tutoring-platform/internal/mediahost"
	streamsvc "github.com/magabrotheeeer/tutoring-platform/internal/services/stream"
)

// Handler обрабатывает запрос диапазона видео.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает прокси видеопотока.
type Service interface {
	Open(ctx context.Context, req streamsvc.Request) (*streamsvc.Stream, error)
	Copy(dst io.Writer, st *streamsvc.Stream) (int64, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Поток видео
// @Description Отдаёт запрошенный диапазон байт видео. Заголовок Range обязателен.
// @Tags Videos
// @Produce  video/mp4
// @Param publicId path string true "Идентификатор видео на хостинге"
// @Param quality path string false "Качество" Enums(360p, 480p, 720p, 1080p)
// @Param Range header string true "Диапазон, например bytes=0-1048575"
// @Success 206 {file} binary "Часть видео"
// @Failure 400 {object} response.ErrorResponse "Нет диапазона или он некорректен"
// @Failure 404 {object} response.ErrorResponse "Видео не найдено"
// @Failure 416 {object} response.ErrorResponse "Диапазон вне видео"
// @Failure 502 {object} response.ErrorResponse "Хостинг недоступен"
// @Router /feat/stream/{publicId} [get]
// @Router /feat/stream/{publicId}/{quality} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.video.stream"

	publicID := chi.URLParam(r, "publicId")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("public_id", publicID),
	)

	st, err := h.service.Open(r.Context(), streamsvc.Request{
		PublicID: publicID,
		Quality:  chi.URLParam(r, "quality"),
		Range:    r.Header.Get("Range"),
	})
	if err != nil {
		var unsatisfiable *streamsvc.UnsatisfiableError
		switch {
		case errors.Is(err, streamsvc.ErrMissingInput):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("publicId and Range header are required"))
		case errors.Is(err, httprange.ErrMalformed):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid range header"))
		case errors.Is(err, mediahost.ErrNotFound):
			log.Warn("video probe failed", sl.Err(err))
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("video not found"))
		case errors.As(err, &unsatisfiable):
			w.Header().Set("Content-Range", httprange.Unsatisfied(unsatisfiable.Size))
			render.Status(r, http.StatusRequestedRangeNotSatisfiable)
			render.JSON(w, r, response.Error("range not satisfiable"))
		case errors.Is(err, mediahost.ErrUpstream):
			log.Error("upstream fetch failed", sl.Err(err))
			render.Status(r, http.StatusBadGateway)
			render.JSON(w, r, response.Error("upstream unavailable"))
		default:
			log.Error("failed to open stream", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	hdr := w.Header()
	hdr.Set("Content-Range", st.Range.ContentRange())
	hdr.Set("Accept-Ranges", "bytes")
	hdr.Set("Content-Length", strconv.FormatInt(st.Range.Length(), 10))
	hdr.Set("Content-Type", st.ContentType)
	hdr.Set("Cross-Origin-Resource-Policy", "cross-origin")
	hdr.Set("Access-Control-Allow-Origin", "*")
	hdr.Set("Access-Control-Allow-Headers", "Range")
	w.WriteHeader(http.StatusPartialContent)

	n, err := h.service.Copy(w, st)
	if err != nil {
		// заголовки уже отправлены, остаётся только оборвать ответ
		log.Warn("stream aborted", sl.Err(err), slog.Int64("written", n))
		return
	}
	log.Debug("range served", slog.String("range", st.Range.ContentRange()), slog.Int64("written", n))
}
