package web

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/surveyviz/internal/logging"
	"github.com/JonMunkholm/surveyviz/internal/questionnaire"
)

// handleSMS is the Twilio inbound message webhook. The reply goes back as
// TwiML in the response body.
func (s *Server) handleSMS(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid request.", http.StatusBadRequest)
		return
	}

	reply, err := s.flow.Handle(r.Context(), r.PostForm.Get("From"), r.PostForm.Get("Body"))
	switch {
	case errors.Is(err, questionnaire.ErrNoSender):
		logging.FromContext(r.Context()).Warn("sms without sender")
		http.Error(w, "Invalid request.", http.StatusBadRequest)
		return
	case err != nil:
		logging.FromContext(r.Context()).Error("questionnaire state error", "error", err)
		if reply == "" {
			reply = questionnaire.ReplyStateCorrupt
		}
	}

	body, err := questionnaire.TwiML(reply)
	if err != nil {
		http.Error(w, "Internal error.", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write(body)
}

// handleSurveyStart texts the consent question to the "to" number.
func (s *Server) handleSurveyStart(w http.ResponseWriter, r *http.Request) {
	to := r.FormValue("to")
	if to == "" {
		writeJSONStatus(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Missing 'to' parameter.",
			Message: "Missing 'to' parameter.",
			Action:  "Provide the recipient's phone number in E.164 format",
			Code:    "VAL002",
		})
		return
	}

	if err := s.flow.Start(r.Context(), s.messenger, to); err != nil {
		respondError(w, r, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, map[string]string{"status": "sent", "to": to})
}

// handleSurveyExport downloads completed questionnaires as CSV.
func (s *Server) handleSurveyExport(w http.ResponseWriter, r *http.Request) {
	if s.responses == nil {
		respondError(w, r, errors.New("response collection is not enabled"), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="survey-responses.csv"`)
	if err := s.responses.WriteCSV(w); err != nil {
		logging.FromContext(r.Context()).Error("export survey responses", "error", err)
	}
}
