package handlercred

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"
	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/pnscred/internal/svc/credsvc"
	"github.com/yusufsyaifudin/pnscred/pkg/respbuilder"
	"github.com/yusufsyaifudin/pnscred/pkg/validator"
	"github.com/yusufsyaifudin/pnscred/pnscred"
	"github.com/yusufsyaifudin/pnscred/transport/restapi/httptyped"
	"github.com/yusufsyaifudin/ylog"
)

type HandlerConfig struct {
	CredService credsvc.Service `validate:"required"`
}

type Handler struct {
	Config HandlerConfig
	query  *schema.Decoder
}

func NewHandler(conf HandlerConfig) (*Handler, error) {
	err := validator.Validate(conf)
	if err != nil {
		return nil, err
	}

	queryDec := schema.NewDecoder()
	queryDec.IgnoreUnknownKeys(true)

	return &Handler{Config: conf, query: queryDec}, nil
}

// CredentialReq carries the credential either as a JSON object or as the XML data contract.
type CredentialReq struct {
	Platform      string          `json:"platform"`
	Label         string          `json:"label"`
	Credential    json.RawMessage `json:"credential"`
	CredentialXML string          `json:"credential_xml"`
}

func (c CredentialReq) document() (credsvc.Format, []byte) {
	if strings.TrimSpace(c.CredentialXML) != "" {
		return credsvc.FormatXML, []byte(c.CredentialXML)
	}

	return credsvc.FormatJSON, c.Credential
}

type ClientQueryParam struct {
	ClientID string `schema:"client_id"`
	Platform string `schema:"platform"`
}

type CreateResp struct {
	Credential httptyped.CredentialEntity `json:"credential"`
}

func (h *Handler) Create() func(http.ResponseWriter, *http.Request) {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		query, ok := h.decodeQuery(w, r)
		if !ok {
			return
		}

		reqBody, ok := h.decodeBody(w, r)
		if !ok {
			return
		}

		format, doc := reqBody.document()
		out, err := h.Config.CredService.Create(ctx, credsvc.InCreate{
			ClientID: query.ClientID,
			Platform: reqBody.Platform,
			Label:    reqBody.Label,
			Format:   format,
			Document: doc,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		resp := respbuilder.Success(ctx, CreateResp{
			Credential: httptyped.CredentialEntityFromSvc(out.Credential),
		})
		respbuilder.WriteJSON(http.StatusCreated, w, r, resp)
	}

	return fn
}

type ValidateResp struct {
	Valid        bool               `json:"valid"`
	Platform     string             `json:"platform"`
	Properties   []pnscred.Property `json:"properties"`
	MockEndpoint bool               `json:"mock_endpoint"`
	ETag         string             `json:"etag"`
}

func (h *Handler) Validate() func(http.ResponseWriter, *http.Request) {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		reqBody, ok := h.decodeBody(w, r)
		if !ok {
			return
		}

		format, doc := reqBody.document()
		out, err := h.Config.CredService.Validate(ctx, credsvc.InValidate{
			Platform: reqBody.Platform,
			Format:   format,
			Document: doc,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		resp := respbuilder.Success(ctx, ValidateResp{
			Valid:        true,
			Platform:     out.Platform,
			Properties:   out.Credential.Properties(),
			MockEndpoint: out.MockEndpoint,
			ETag:         out.ETag,
		})
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}

	return fn
}

type ListResp struct {
	Items []httptyped.CredentialEntity `json:"items"`
}

func (h *Handler) List() func(http.ResponseWriter, *http.Request) {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		query, ok := h.decodeQuery(w, r)
		if !ok {
			return
		}

		out, err := h.Config.CredService.List(ctx, credsvc.InList{
			ClientID: query.ClientID,
			Platform: query.Platform,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		resp := respbuilder.Success(ctx, ListResp{
			Items: httptyped.CredentialEntitiesFromSvc(out.Credentials),
		})
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}

	return fn
}

type GetResp struct {
	Credential httptyped.CredentialEntity `json:"credential"`
}

// Get answers 304 when If-None-Match carries the current ETag.
func (h *Handler) Get() func(http.ResponseWriter, *http.Request) {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		query, ok := h.decodeQuery(w, r)
		if !ok {
			return
		}

		out, err := h.Config.CredService.Get(ctx, credsvc.InGet{
			ClientID: query.ClientID,
			Platform: chi.URLParam(r, "platform"),
			Label:    chi.URLParam(r, "label"),
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		etag := fmt.Sprintf(`"%s"`, out.Credential.ETag)
		w.Header().Set("ETag", etag)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		resp := respbuilder.Success(ctx, GetResp{
			Credential: httptyped.CredentialEntityFromSvc(out.Credential),
		})
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}

	return fn
}

type DeleteResp struct {
	Credential httptyped.CredentialEntity `json:"credential"`
}

func (h *Handler) Delete() func(http.ResponseWriter, *http.Request) {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		query, ok := h.decodeQuery(w, r)
		if !ok {
			return
		}

		out, err := h.Config.CredService.Delete(ctx, credsvc.InDelete{
			ClientID: query.ClientID,
			Platform: chi.URLParam(r, "platform"),
			Label:    chi.URLParam(r, "label"),
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		resp := respbuilder.Success(ctx, DeleteResp{
			Credential: httptyped.CredentialEntityFromSvc(out.Credential),
		})
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}

	return fn
}

type ExamplesResp struct {
	Items []credsvc.Example `json:"items"`
}

func (h *Handler) Examples() func(http.ResponseWriter, *http.Request) {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		examples := h.Config.CredService.Examples(ctx)
		resp := respbuilder.Success(ctx, ExamplesResp{
			Items: examples.Items,
		})
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}

	return fn
}

func (h *Handler) decodeQuery(w http.ResponseWriter, r *http.Request) (query ClientQueryParam, ok bool) {
	ctx := r.Context()

	err := h.query.Decode(&query, r.URL.Query())
	if err != nil {
		err = fmt.Errorf("failed decode query params: %w", err)
		resp := respbuilder.Error(ctx, respbuilder.ErrValidation, err)
		respbuilder.WriteJSON(http.StatusBadRequest, w, r, resp)
		return
	}

	return query, true
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request) (reqBody CredentialReq, ok bool) {
	ctx := r.Context()

	if r.Body == nil || r.Body == http.NoBody {
		err := fmt.Errorf("request body is empty")
		resp := respbuilder.Error(ctx, respbuilder.ErrValidation, err)
		respbuilder.WriteJSON(http.StatusBadRequest, w, r, resp)
		return
	}

	defer func() {
		if _err := r.Body.Close(); _err != nil {
			ylog.Error(ctx, "cannot close request body", ylog.KV("error", _err))
		}
	}()

	err := json.NewDecoder(r.Body).Decode(&reqBody)
	if err != nil {
		resp := respbuilder.Error(ctx, respbuilder.ErrValidation, err)
		respbuilder.WriteJSON(http.StatusBadRequest, w, r, resp)
		return
	}

	return reqBody, true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := errKind(err)
	if kind == respbuilder.ErrUnhandled {
		ylog.Error(r.Context(), "credential request failed", ylog.KV("error", err))
	}

	resp := respbuilder.Error(r.Context(), kind, err)
	respbuilder.WriteJSON(kind.Status(), w, r, resp)
}

func errKind(err error) respbuilder.ErrKind {
	switch {
	case errors.Is(err, pnscred.ErrUnsupportedPlatform):
		return respbuilder.ErrUnsupportedPlatform
	case errors.Is(err, pnscred.ErrInvalidDataContract):
		return respbuilder.ErrInvalidDataContract
	case errors.Is(err, credsvc.ErrValidation):
		return respbuilder.ErrValidation
	case errors.Is(err, credsvc.ErrDuplicate):
		return respbuilder.ErrDuplicateEntries
	case errors.Is(err, credsvc.ErrNotFound):
		return respbuilder.ErrResourceNotFound
	default:
		return respbuilder.ErrUnhandled
	}
}
