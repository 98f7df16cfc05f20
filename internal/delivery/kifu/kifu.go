package kifu

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"kifudb/internal/bootstrap"
	errs "kifudb/internal/errors"
	"kifudb/internal/httpresponse"
	kifuuc "kifudb/internal/usecase/kifu"
	"kifudb/internal/utils"
)

const sgfContentType = "application/x-go-sgf; charset=utf-8"

type KifuHandler struct {
	cfg    bootstrap.Config
	log    *zap.SugaredLogger
	kifuUC *kifuuc.KifuUseCase
}

type ImportResponse struct {
	ID        string `json:"id"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

func NewKifuHandler(cfg bootstrap.Config, log *zap.SugaredLogger, kifuUC *kifuuc.KifuUseCase) *KifuHandler {
	return &KifuHandler{
		cfg:    cfg,
		log:    log,
		kifuUC: kifuUC,
	}
}

// statusOf переводит ошибку домена в HTTP статус.
func statusOf(err error) int {
	switch {
	case errors.Is(err, errs.ErrKifuNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrMalformedRecord),
		errors.Is(err, errs.ErrUnsupportedGameType),
		errors.Is(err, errs.ErrInvalidSize),
		errors.Is(err, errs.ErrEmptyRecord),
		errors.Is(err, errs.ErrUnknownCharset):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (k *KifuHandler) writeError(w http.ResponseWriter, op string, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		k.log.Errorw(op+": internal error", "error", err)
		httpresponse.WriteResponseWithStatus(w, status,
			httpresponse.ErrorResponse{ErrorDescription: "Internal server error"})
		return
	}
	k.log.Infow(op+": request rejected", "status", status, "error", err)
	httpresponse.WriteResponseWithStatus(w, status,
		httpresponse.ErrorResponse{ErrorDescription: err.Error()})
}

func (k *KifuHandler) readRecord(w http.ResponseWriter, r *http.Request, op string) ([]byte, bool) {
	body, err := utils.ReadRequestBody(r)
	if err != nil {
		k.log.Error(op+": failed to read request body: ", err)
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest,
			httpresponse.ErrorResponse{ErrorDescription: "Failed to read request body"})
		return nil, false
	}
	return body, true
}

// HandleImport godoc
// @Summary Импорт партии
// @Description Принимает SGF в любой кодировке, проверяет его и сохраняет в архив
// @Tags kifu
// @Accept plain
// @Produce json
// @Param charset query string false "Кодировка тела, например gb18030"
// @Success 200 {object} ImportResponse
// @Failure 400 {object} httpresponse.ErrorResponse
// @Failure 500 {object} httpresponse.ErrorResponse
// @Router /kifu [post]
func (k *KifuHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	body, ok := k.readRecord(w, r, "Import")
	if !ok {
		return
	}

	id, err := k.kifuUC.Import(r.Context(), body, r.URL.Query().Get("charset"))
	if errors.Is(err, errs.ErrKifuExists) {
		httpresponse.WriteResponseWithStatus(w, http.StatusOK, ImportResponse{ID: id, Duplicate: true})
		return
	}
	if err != nil {
		k.writeError(w, "Import", err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, ImportResponse{ID: id})
}

// HandleGetKifu godoc
// @Summary Партия целиком
// @Tags kifu
// @Produce json
// @Param id path string true "ID партии"
// @Success 200 {object} kifu.GameRecord
// @Failure 404 {object} httpresponse.ErrorResponse
// @Router /kifu/{id} [get]
func (k *KifuHandler) HandleGetKifu(w http.ResponseWriter, r *http.Request) {
	record, err := k.kifuUC.GetRecord(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		k.writeError(w, "GetKifu", err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, record)
}

// HandleGetSGF godoc
// @Summary Текст SGF партии
// @Tags kifu
// @Produce plain
// @Param id path string true "ID партии"
// @Success 200 {string} string
// @Failure 404 {object} httpresponse.ErrorResponse
// @Router /kifu/{id}/sgf [get]
func (k *KifuHandler) HandleGetSGF(w http.ResponseWriter, r *http.Request) {
	text, err := k.kifuUC.GetSGF(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		k.writeError(w, "GetSGF", err)
		return
	}
	httpresponse.WriteText(w, http.StatusOK, sgfContentType, text)
}

// @Summary Заголовок партии
// @Tags kifu
// @Produce json
// @Param id path string true "ID партии"
// @Success 200 {object} kifu.GameInfo
// @Router /kifu/{id}/header [get]
func (k *KifuHandler) HandleGetHeader(w http.ResponseWriter, r *http.Request) {
	info, err := k.kifuUC.GetHeader(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		k.writeError(w, "GetHeader", err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, info)
}

// HandleArchive godoc
// @Summary Архив партий по игроку или году
// @Tags kifu
// @Produce json
// @Param player query string false "Имя игрока"
// @Param year query int false "Год"
// @Param page query int false "Номер страницы"
// @Success 200 {object} archive.Page
// @Failure 400 {object} httpresponse.ErrorResponse
// @Router /archive [get]
func (k *KifuHandler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	page, err := utils.QueryInt(r, "page", 1)
	if err != nil || page < 1 {
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest,
			httpresponse.ErrorResponse{ErrorDescription: "page must be a positive number"})
		return
	}
	year, err := utils.QueryInt(r, "year", 0)
	if err != nil {
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest,
			httpresponse.ErrorResponse{ErrorDescription: "year must be a number"})
		return
	}
	player := r.URL.Query().Get("player")

	ctx := r.Context()
	switch {
	case player != "":
		resp, err := k.kifuUC.ListByPlayer(ctx, player, page)
		if err != nil {
			k.writeError(w, "Archive", err)
			return
		}
		httpresponse.WriteResponseWithStatus(w, http.StatusOK, resp)
	case year != 0:
		resp, err := k.kifuUC.ListByYear(ctx, year, page)
		if err != nil {
			k.writeError(w, "Archive", err)
			return
		}
		httpresponse.WriteResponseWithStatus(w, http.StatusOK, resp)
	default:
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest,
			httpresponse.ErrorResponse{ErrorDescription: "player or year is required"})
	}
}

// HandleDecodeHeader godoc
// @Summary Разбор только заголовка SGF
// @Tags kifu
// @Accept plain
// @Produce json
// @Param charset query string false "Кодировка тела"
// @Success 200 {object} kifu.GameInfo
// @Failure 400 {object} httpresponse.ErrorResponse
// @Router /kifu/header [post]
func (k *KifuHandler) HandleDecodeHeader(w http.ResponseWriter, r *http.Request) {
	body, ok := k.readRecord(w, r, "DecodeHeader")
	if !ok {
		return
	}
	info, err := k.kifuUC.DecodeHeader(body, r.URL.Query().Get("charset"))
	if err != nil {
		k.writeError(w, "DecodeHeader", err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, info)
}

// HandleNormalize godoc
// @Summary Перевод SGF в UTF-8 и каноничный вид
// @Tags kifu
// @Accept plain
// @Produce plain
// @Param charset query string false "Кодировка тела"
// @Success 200 {string} string
// @Failure 400 {object} httpresponse.ErrorResponse
// @Router /kifu/normalize [post]
func (k *KifuHandler) HandleNormalize(w http.ResponseWriter, r *http.Request) {
	body, ok := k.readRecord(w, r, "Normalize")
	if !ok {
		return
	}
	text, err := k.kifuUC.Normalize(body, r.URL.Query().Get("charset"))
	if err != nil {
		k.writeError(w, "Normalize", err)
		return
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(text)))
	httpresponse.WriteText(w, http.StatusOK, sgfContentType, text)
}

func (k *KifuHandler) Routes(r chi.Router) {
	r.Post("/kifu", k.HandleImport)
	r.Post("/kifu/header", k.HandleDecodeHeader)
	r.Post("/kifu/normalize", k.HandleNormalize)
	r.Get("/kifu/{id}", k.HandleGetKifu)
	r.Get("/kifu/{id}/sgf", k.HandleGetSGF)
	r.Get("/kifu/{id}/header", k.HandleGetHeader)
	r.Get("/archive", k.HandleArchive)
}
