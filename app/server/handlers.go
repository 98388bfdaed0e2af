package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"

	"github.com/qrseal/qrseal/app/alert"
	"github.com/qrseal/qrseal/app/payload"
	"github.com/qrseal/qrseal/app/sealer"
	"github.com/qrseal/qrseal/app/server/validator"
	"github.com/qrseal/qrseal/app/store"
)

const (
	maxNameLen        = 100
	defaultListLimit  = 100
	maxListLimit      = 1000
	alertSendTimeout  = 30 * time.Second
	outcomeSuccess    = "success"
	errRenderFailed   = "render_failed"
	shortIDPatternStr = "^[A-Z0-9]{6}$"
)

type generateRequest struct {
	Content string `json:"content"`
	Type    string `json:"type"`
	Name    string `json:"name"`
}

type verifyRequest struct {
	Data string `json:"data"`
}

// GET /api/v1/params
func (s *Server) paramsCtrl(w http.ResponseWriter, _ *http.Request) {
	params := struct {
		KeysConfigured bool     `json:"keysConfigured"`
		Types          []string `json:"types"`
		ShortIDPattern string   `json:"shortIdPattern"`
		MaxContent     int      `json:"maxContent"`
	}{
		KeysConfigured: s.sealer.Ready() == nil,
		Types:          []string{string(payload.KindURL), string(payload.KindText)},
		ShortIDPattern: shortIDPatternStr,
		MaxContent:     s.cfg.MaxContent,
	}
	_ = rest.EncodeJSON(w, http.StatusOK, params)
}

// POST /api/v1/generate, seals content without saving it
func (s *Server) generateCtrl(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeGenerate(w, r, false)
	if !ok {
		return
	}

	gen, err := s.sealer.Generate(r.Context(), sealer.GenerateReq{Content: req.Content, Kind: payload.Kind(req.Type)})
	if err != nil {
		s.renderSealerError(w, err)
		return
	}

	qr, ok := s.renderQR(w, gen)
	if !ok {
		return
	}
	_ = rest.EncodeJSON(w, http.StatusOK, generatedResponse(gen, qr))
}

// POST /api/v1/codes, seals content and saves it for the authenticated owner
func (s *Server) createCodeCtrl(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeGenerate(w, r, true)
	if !ok {
		return
	}

	gen, err := s.sealer.Generate(r.Context(), sealer.GenerateReq{Content: req.Content, Kind: payload.Kind(req.Type)})
	if err != nil {
		s.renderSealerError(w, err)
		return
	}

	qr, ok := s.renderQR(w, gen)
	if !ok {
		return
	}

	code := &store.Code{
		ID:        gen.Record.ID.String(),
		ShortID:   gen.Record.ShortID,
		Owner:     getOwner(r),
		Name:      req.Name,
		Kind:      string(gen.Record.Kind),
		Token:     gen.Token,
		Status:    store.StatusActive,
		CreatedAt: gen.Record.Created(),
	}
	if err := s.store.Save(r.Context(), code); err != nil {
		// the token is valid even if not saved, return it so the caller doesn't lose it
		log.Printf("[ERROR] can't save code %s, %v", code.ShortID, err)
		res := generatedResponse(gen, qr)
		res["error"] = "store_failed"
		res["message"] = "code generated but not saved"
		_ = rest.EncodeJSON(w, http.StatusInternalServerError, res)
		return
	}

	log.Printf("[INFO] saved code %s for %s", code.ShortID, code.Owner)
	res := generatedResponse(gen, qr)
	res["name"] = code.Name
	res["status"] = code.Status
	_ = rest.EncodeJSON(w, http.StatusCreated, res)
}

// GET /api/v1/codes
func (s *Server) listCodesCtrl(w http.ResponseWriter, r *http.Request) {
	codes, err := s.store.List(r.Context(), getOwner(r))
	if err != nil {
		log.Printf("[ERROR] can't list codes, %v", err)
		_ = rest.EncodeJSON(w, http.StatusInternalServerError, rest.JSON{"error": "store_failed", "message": "can't list codes"})
		return
	}
	if codes == nil {
		codes = []store.Code{}
	}
	_ = rest.EncodeJSON(w, http.StatusOK, codes)
}

// DELETE /api/v1/codes/{id}, archived codes can't be resolved by short id
func (s *Server) archiveCodeCtrl(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := s.store.SetStatus(r.Context(), getOwner(r), id, store.StatusArchived)
	switch {
	case errors.Is(err, store.ErrNotFound):
		_ = rest.EncodeJSON(w, http.StatusNotFound, rest.JSON{"error": "not_found", "message": "code not found"})
		return
	case err != nil:
		log.Printf("[ERROR] can't archive code %s, %v", id, err)
		_ = rest.EncodeJSON(w, http.StatusInternalServerError, rest.JSON{"error": "store_failed", "message": "can't archive code"})
		return
	}
	log.Printf("[INFO] archived code %s", id)
	_ = rest.EncodeJSON(w, http.StatusOK, rest.JSON{"uuid": id, "status": store.StatusArchived})
}

// GET /api/v1/verifications?limit=N
func (s *Server) listVerificationsCtrl(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			_ = rest.EncodeJSON(w, http.StatusBadRequest, rest.JSON{"error": "invalid_input", "message": "limit must be a positive number"})
			return
		}
		limit = min(n, maxListLimit)
	}

	events, err := s.store.ListVerifications(r.Context(), getOwner(r), limit)
	if err != nil {
		log.Printf("[ERROR] can't list verifications, %v", err)
		_ = rest.EncodeJSON(w, http.StatusInternalServerError, rest.JSON{"error": "store_failed", "message": "can't list verifications"})
		return
	}
	if events == nil {
		events = []store.VerificationEvent{}
	}
	_ = rest.EncodeJSON(w, http.StatusOK, events)
}

// GET /api/v1/stats, verification outcomes of the owner's codes
func (s *Server) statsCtrl(w http.ResponseWriter, r *http.Request) {
	outcomes, err := s.store.VerificationStats(r.Context(), getOwner(r))
	if err != nil {
		log.Printf("[ERROR] can't count verifications, %v", err)
		_ = rest.EncodeJSON(w, http.StatusInternalServerError, rest.JSON{"error": "store_failed", "message": "can't count verifications"})
		return
	}
	if outcomes == nil {
		outcomes = map[string]int{}
	}
	total := 0
	for _, n := range outcomes {
		total += n
	}
	_ = rest.EncodeJSON(w, http.StatusOK, rest.JSON{
		"total":    total,
		"success":  outcomes[outcomeSuccess],
		"failed":   total - outcomes[outcomeSuccess],
		"outcomes": outcomes,
	})
}

// POST /api/v1/verify, data is either a scanned token or a short id
func (s *Server) verifyCtrl(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := rest.DecodeJSON(r, &req); err != nil {
		log.Printf("[WARN] can't decode verify request, %v", err)
		_ = rest.EncodeJSON(w, http.StatusBadRequest, rest.JSON{"success": false, "error": string(sealer.KindInvalidInput),
			"message": "request body is not valid json"})
		return
	}
	if req.Data == "" {
		_ = rest.EncodeJSON(w, http.StatusBadRequest, rest.JSON{"success": false, "error": string(sealer.KindInvalidInput),
			"message": "data is required"})
		return
	}

	client := GetHashedIP(r)
	res, err := s.sealer.Verify(r.Context(), req.Data)
	if err != nil {
		var se *sealer.Error
		if !errors.As(err, &se) {
			se = &sealer.Error{Kind: "internal_error", Message: "verification failed", Err: err}
		}
		s.logVerification(r.Context(), &store.VerificationEvent{CodeID: se.ID, ShortID: se.ShortID,
			Outcome: string(se.Kind), Client: client})
		if se.Kind == sealer.KindTampered {
			s.sendAlert(alert.Event{Kind: string(se.Kind), ID: se.ID, ShortID: se.ShortID, Client: client, Time: time.Now()})
		}

		body := rest.JSON{"success": false, "error": string(se.Kind), "message": se.Message}
		if se.ID != "" {
			body["uuid"] = se.ID
		}
		if se.ShortID != "" {
			body["shortId"] = se.ShortID
		}
		if se.Raw != nil {
			body["raw"] = string(se.Raw)
		}
		_ = rest.EncodeJSON(w, statusFor(se.Kind), body)
		return
	}

	rec := res.Record
	scans := 0
	if n, err := s.store.IncScans(r.Context(), rec.ID.String()); err == nil {
		scans = n
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Printf("[WARN] can't count scan of %s, %v", rec.ShortID, err)
	}
	s.logVerification(r.Context(), &store.VerificationEvent{CodeID: rec.ID.String(), ShortID: rec.ShortID,
		Outcome: outcomeSuccess, Client: client})

	body := rest.JSON{
		"success":   true,
		"content":   rec.Content,
		"type":      rec.Kind,
		"uuid":      rec.ID.String(),
		"shortId":   rec.ShortID,
		"timestamp": rec.CreatedAt,
		"scans":     scans,
	}
	if res.ResolvedFrom != "" {
		body["resolvedFrom"] = res.ResolvedFrom
	}
	_ = rest.EncodeJSON(w, http.StatusOK, body)
}

// decodeGenerate reads and validates generation request, renders 400 on failure
func (s *Server) decodeGenerate(w http.ResponseWriter, r *http.Request, named bool) (generateRequest, bool) {
	var req generateRequest
	if err := rest.DecodeJSON(r, &req); err != nil {
		log.Printf("[WARN] can't decode generate request, %v", err)
		_ = rest.EncodeJSON(w, http.StatusBadRequest, rest.JSON{"error": string(sealer.KindInvalidInput), "message": "request body is not valid json"})
		return req, false
	}

	v := validator.Validator{}
	v.CheckField(validator.NotBlank(req.Content), "content", "content is required")
	v.CheckField(validator.MaxChars(req.Content, s.cfg.MaxContent), "content", "content is too long")
	v.CheckField(validator.PermittedValue(req.Type, string(payload.KindURL), string(payload.KindText)), "type",
		"type must be url or text")
	if req.Type == string(payload.KindURL) {
		v.CheckField(validator.IsHTTPURL(req.Content), "content", "content must be an http(s) url")
	}
	if named {
		req.Name = validator.StripTags(req.Name)
		v.CheckField(validator.NotBlank(req.Name), "name", "name is required")
		v.CheckField(validator.MaxChars(req.Name, maxNameLen), "name", "name is too long")
	}

	if !v.Valid() {
		_ = rest.EncodeJSON(w, http.StatusBadRequest, rest.JSON{"error": string(sealer.KindInvalidInput), "message": "invalid request",
			"fields": v.FieldErrors})
		return req, false
	}
	return req, true
}

// renderQR makes qr image for the generated token, renders 422 if the token doesn't fit in a qr code.
// Content limit is in characters while qr capacity is in bytes, multibyte or escaped content can overflow it.
func (s *Server) renderQR(w http.ResponseWriter, gen *sealer.Generated) (string, bool) {
	qr, err := s.renderer.DataURL(gen.Token)
	if err != nil {
		log.Printf("[WARN] can't render qr for %s, token %d bytes, %v", gen.Record.ShortID, len(gen.Token), err)
		_ = rest.EncodeJSON(w, http.StatusUnprocessableEntity, rest.JSON{"error": errRenderFailed,
			"message": "sealed content doesn't fit in a qr code, shorten it"})
		return "", false
	}
	return qr, true
}

func (s *Server) renderSealerError(w http.ResponseWriter, err error) {
	var se *sealer.Error
	if !errors.As(err, &se) {
		log.Printf("[ERROR] unexpected generation error, %v", err)
		_ = rest.EncodeJSON(w, http.StatusInternalServerError, rest.JSON{"error": "internal_error", "message": "generation failed"})
		return
	}
	_ = rest.EncodeJSON(w, statusFor(se.Kind), rest.JSON{"error": string(se.Kind), "message": se.Message})
}

// logVerification records attempt, failures are logged and ignored
func (s *Server) logVerification(ctx context.Context, ev *store.VerificationEvent) {
	if err := s.store.LogVerification(ctx, ev); err != nil {
		log.Printf("[WARN] can't log verification, %v", err)
	}
}

// sendAlert runs in background, verification response doesn't wait for alert delivery
func (s *Server) sendAlert(ev alert.Event) {
	if s.alerter == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), alertSendTimeout)
		defer cancel()
		if err := s.alerter.Send(ctx, ev); err != nil {
			log.Printf("[WARN] can't send alert for %s, %v", ev.ShortID, err)
		}
	}()
}

func generatedResponse(gen *sealer.Generated, qr string) rest.JSON {
	res := rest.JSON{
		"token":     gen.Token,
		"uuid":      gen.Record.ID.String(),
		"shortId":   gen.Record.ShortID,
		"type":      gen.Record.Kind,
		"content":   gen.Record.Content,
		"timestamp": gen.Record.CreatedAt,
		"qr":        qr,
	}
	if gen.Verdict != nil {
		res["analysis"] = gen.Verdict
	}
	return res
}

// statusFor maps sealer error kind to http status
func statusFor(kind sealer.Kind) int {
	switch kind {
	case sealer.KindConfig:
		return http.StatusServiceUnavailable
	case sealer.KindInvalidInput, sealer.KindInvalidStructure:
		return http.StatusBadRequest
	case sealer.KindTampered, sealer.KindDecryptionFailed, sealer.KindMalformedContent:
		return http.StatusUnprocessableEntity
	case sealer.KindLookupUnresolved:
		return http.StatusNotFound
	case sealer.KindAssessmentRefused:
		return http.StatusForbidden
	case sealer.KindAssessmentFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
