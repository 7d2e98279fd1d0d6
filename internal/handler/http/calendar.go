package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/aqlhr/aqlhr-backend-go/internal/domain/calendar"
	"github.com/aqlhr/aqlhr-backend-go/internal/handler/http/middleware"
	"github.com/aqlhr/aqlhr-backend-go/internal/handler/http/response"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/hijri"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/jwt"
)

const keepaliveInterval = 30 * time.Second

type CalendarHandler interface {
	Today(w http.ResponseWriter, r *http.Request)
	Convert(w http.ResponseWriter, r *http.Request)
	ConvertBatch(w http.ResponseWriter, r *http.Request)
	ToGregorian(w http.ResponseWriter, r *http.Request)
	SourceStatus(w http.ResponseWriter, r *http.Request)
	Sync(w http.ResponseWriter, r *http.Request)

	// SSE
	StreamToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type calendarHandlerImpl struct {
	calendarService calendar.CalendarService
	jwtService      jwt.Service
	keepalive       time.Duration
}

func NewCalendarHandler(calendarService calendar.CalendarService, jwtService jwt.Service) CalendarHandler {
	return &calendarHandlerImpl{
		calendarService: calendarService,
		jwtService:      jwtService,
		keepalive:       keepaliveInterval,
	}
}

// langFromRequest prefers ?lang= and falls back to Accept-Language.
func langFromRequest(r *http.Request) hijri.Lang {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return hijri.ParseLang(lang)
	}
	return hijri.ParseLang(r.Header.Get("Accept-Language"))
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// Today is public. A verified access token adds the caller's company holidays.
func (h *calendarHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	resp := h.calendarService.Today(r.Context(), calendar.TodayRequest{
		CompanyID: claims.CompanyID,
		Lang:      langFromRequest(r),
	})
	response.Success(w, resp)
}

func (h *calendarHandlerImpl) Convert(w http.ResponseWriter, r *http.Request) {
	req := calendar.ConvertRequest{
		Date: r.URL.Query().Get("date"),
		Lang: langFromRequest(r),
	}

	resp, err := h.calendarService.Convert(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

func (h *calendarHandlerImpl) ConvertBatch(w http.ResponseWriter, r *http.Request) {
	var req calendar.BatchConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.Lang = hijri.ParseLang(string(req.Lang))
	if r.URL.Query().Get("lang") != "" {
		req.Lang = langFromRequest(r)
	}

	resp, err := h.calendarService.ConvertBatch(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, resp, &response.Meta{TotalItems: len(resp)})
}

func (h *calendarHandlerImpl) ToGregorian(w http.ResponseWriter, r *http.Request) {
	req := calendar.ToGregorianRequest{
		Year:  getIntQueryParam(r, "year", 0),
		Month: getIntQueryParam(r, "month", 0),
		Day:   getIntQueryParam(r, "day", 0),
	}

	resp, err := h.calendarService.ToGregorian(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// SourceStatus runs a live connection test against the Umm al-Qura source.
func (h *calendarHandlerImpl) SourceStatus(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.calendarService.SourceStatus(r.Context()))
}

func (h *calendarHandlerImpl) Sync(w http.ResponseWriter, r *http.Request) {
	resp, err := h.calendarService.Refresh(r.Context())
	if err != nil {
		slog.Warn("Manual hijri sync fell back", "error", err, "source", resp.HijriDate.Source)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Hijri date synchronized", resp)
}

// StreamToken issues a short-lived token for the SSE endpoint.
func (h *calendarHandlerImpl) StreamToken(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(claims)
	if err != nil {
		slog.Error("Failed to generate SSE token", "error", err)
		response.InternalServerError(w, "Failed to generate SSE token")
		return
	}

	response.Success(w, calendar.StreamTokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

// Stream pushes calendar events for the token's company.
func (h *calendarHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// EventSource cannot set headers, so the token travels in the query.
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}

	claims, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		response.Unauthorized(w, "Invalid token")
		return
	}
	if claims.CompanyID == "" {
		response.Forbidden(w, "Company membership required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.calendarService.Subscribe(claims.CompanyID)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"company_id\":%q}\n\n", claims.CompanyID)
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				slog.Warn("Dropping unencodable SSE event", "event", event.Event, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
