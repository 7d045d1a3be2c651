package server

import (
	"net/http"

	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
)

type updateScoreRequest struct {
	Score     sharedtypes.Score      `json:"score"`
	TagNumber *sharedtypes.TagNumber `json:"tag_number,omitempty"`
}

func (s *Server) getRoundScores(w http.ResponseWriter, r *http.Request) {
	roundID, err := roundIDParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	scores, err := s.scores.GetScoresForRound(r.Context(), roundID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scores)
}

func (s *Server) getUserScore(w http.ResponseWriter, r *http.Request) {
	roundID, err := roundIDParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	score, err := s.scores.GetUserScore(r.Context(), discordIDParam(r), roundID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if score == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "score not found"})
		return
	}
	writeJSON(w, http.StatusOK, score)
}

func (s *Server) updateScore(w http.ResponseWriter, r *http.Request) {
	roundID, err := roundIDParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req updateScoreRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.scores.UpdateScore(r.Context(), roundID, discordIDParam(r), req.Score, req.TagNumber); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) processRoundScores(w http.ResponseWriter, r *http.Request) {
	roundID, err := roundIDParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req processScoresRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.scores.ProcessScores(r.Context(), roundID, req.Scores); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
