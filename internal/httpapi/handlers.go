package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/blackwell-systems/birthlog/internal/achievement"
	"github.com/blackwell-systems/birthlog/internal/records"
	"github.com/blackwell-systems/birthlog/internal/store"
	"github.com/blackwell-systems/birthlog/internal/streak"
	"github.com/blackwell-systems/birthlog/internal/tracker"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

type streakResponse struct {
	Data streak.Data `json:"streakData"`
	streak.Summary
}

type achievementView struct {
	achievement.Achievement
	Unlocked bool    `json:"unlocked"`
	Progress float64 `json:"progress"`
}

type achievementsResponse struct {
	Achievements []achievementView `json:"achievements"`
	Stats        achievement.Stats `json:"stats"`
}

type goalRequest struct {
	WeeklyGoal int `json:"weeklyGoal"`
}

type preferencesResponse struct {
	Preferences records.UserPreferences    `json:"preferences"`
	Unlocked    []achievement.Achievement `json:"newAchievements"`
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	recs, err := s.tracker.Records(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	if recs == nil {
		recs = []records.BirthRecord{}
	}
	respondWithJSON(w, http.StatusOK, recs)
}

func (s *Server) createRecord(w http.ResponseWriter, r *http.Request) {
	var rec records.BirthRecord
	if !decode(w, r, &rec) {
		return
	}
	rec.ID = ""
	if rec.Timestamp == nil {
		now := s.tracker.Now()
		rec.Timestamp = &now
	}

	out, err := s.tracker.Save(r.Context(), rec)
	if err != nil {
		if out.Record.ID != "" {
			s.metrics.ObserveSave(out)
		}
		s.fail(w, err)
		return
	}
	s.metrics.ObserveSave(out)
	respondWithJSON(w, http.StatusCreated, out)
}

func (s *Server) updateRecord(w http.ResponseWriter, r *http.Request) {
	var rec records.BirthRecord
	if !decode(w, r, &rec) {
		return
	}
	rec.ID = mux.Vars(r)["id"]

	out, err := s.tracker.Update(r.Context(), rec)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.metrics.observeUnlocks(out)
	respondWithJSON(w, http.StatusOK, out)
}

func (s *Server) deleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getStreak(w http.ResponseWriter, r *http.Request) {
	d, _, err := s.tracker.Reconcile(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, streakResponse{Data: d, Summary: streak.Summarize(d, s.tracker.Now())})
}

func (s *Server) setGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if !decode(w, r, &req) {
		return
	}
	if req.WeeklyGoal == 0 {
		respondWithError(w, http.StatusBadRequest, "weeklyGoal is required")
		return
	}
	d, err := s.tracker.SetWeeklyGoal(r.Context(), req.WeeklyGoal)
	if err != nil {
		s.fail(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, streakResponse{Data: d, Summary: streak.Summarize(d, s.tracker.Now())})
}

func (s *Server) listAchievements(w http.ResponseWriter, r *http.Request) {
	engine := s.tracker.Achievements()
	ua := engine.Load(r.Context())
	catalog := engine.Catalog()

	resp := achievementsResponse{
		Achievements: make([]achievementView, 0, len(catalog)),
		Stats:        ua.Stats,
	}
	for _, a := range catalog {
		resp.Achievements = append(resp.Achievements, achievementView{
			Achievement: a,
			Unlocked:    ua.IsUnlocked(a.ID),
			Progress:    catalog.Progress(ua, a.ID),
		})
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) getPreferences(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, s.tracker.Preferences(r.Context()))
}

func (s *Server) putPreferences(w http.ResponseWriter, r *http.Request) {
	var prefs records.UserPreferences
	if !decode(w, r, &prefs) {
		return
	}
	unlocked, err := s.tracker.SavePreferences(r.Context(), prefs)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.metrics.observeUnlocks(tracker.Outcome{Unlocked: unlocked})
	if unlocked == nil {
		unlocked = []achievement.Achievement{}
	}
	respondWithJSON(w, http.StatusOK, preferencesResponse{
		Preferences: s.tracker.Preferences(r.Context()),
		Unlocked:    unlocked,
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		if err := s.ping(r.Context()); err != nil {
			s.logger.Error("health check failed", "error", err)
			respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "birthlog"})
}

// fail maps domain errors to status codes.
func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, records.ErrInvalidRecord):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrRecordNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "internal error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
