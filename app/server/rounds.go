package server

import (
	"net/http"

	roundservice "github.com/Black-And-White-Club/tcr-bot/app/modules/round/application"
	roundtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/round"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
)

type scheduleRoundRequest struct {
	Title     string  `json:"title"`
	Location  string  `json:"location"`
	EventType *string `json:"event_type,omitempty"`
	Date      string  `json:"date"`
	Time      string  `json:"time"`
}

type editRoundRequest struct {
	Title     *string `json:"title,omitempty"`
	Location  *string `json:"location,omitempty"`
	EventType *string `json:"event_type,omitempty"`
	Date      *string `json:"date,omitempty"`
	Time      *string `json:"time,omitempty"`
}

type joinRoundRequest struct {
	Response  roundtypes.Response    `json:"response"`
	TagNumber *sharedtypes.TagNumber `json:"tag_number,omitempty"`
}

type responseRequest struct {
	Response roundtypes.Response `json:"response"`
}

type submitScoreRequest struct {
	UserID    sharedtypes.DiscordID  `json:"user_id,omitempty"`
	Score     sharedtypes.Score      `json:"score"`
	TagNumber *sharedtypes.TagNumber `json:"tag_number,omitempty"`
}

func (s *Server) listRounds(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	rounds, err := s.rounds.GetRounds(r.Context(), limit, offset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rounds)
}

func (s *Server) getRound(w http.ResponseWriter, r *http.Request) {
	roundID, err := roundIDParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	round, err := s.rounds.GetRound(r.Context(), roundID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

func (s *Server) scheduleRound(w http.ResponseWriter, r *http.Request) {
	var req scheduleRoundRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	requester, _ := RequesterFromContext(r.Context())

	round, err := s.rounds.ScheduleRound(r.Context(), roundservice.ScheduleRoundInput{
		Title:     req.Title,
		Location:  req.Location,
		EventType: req.EventType,
		Date:      req.Date,
		Time:      req.Time,
		CreatorID: requester,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, round)
}

func (s *Server) editRound(w http.ResponseWriter, r *http.Request) {
	roundID, err := roundIDParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req editRoundRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	requester, _ := RequesterFromContext(r.Context())

	round, err := s.rounds.EditRound(r.Context(), roundID, roundservice.EditRoundInput{
		RequesterID: requester,
		Title:       req.Title,
		Location:    req.Location,
		EventType:   req.EventType,
		Date:        req.Date,
		Time:        req.Time,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

func (s *Server) deleteRound(w http.ResponseWriter, r *http.Request) {
	roundID, err := roundIDParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	requester, _ := RequesterFromContext(r.Context())

	if _, err := s.rounds.DeleteRound(r.Context(), roundID, requester); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) joinRound(w http.ResponseWriter, r *http.Request) {
	roundID, err := roundIDParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req joinRoundRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	requester, _ := RequesterFromContext(r.Context())

	round, err := s.rounds.JoinRound(r.Context(), roundservice.JoinRoundInput{
		RoundID:   roundID,
		UserID:    requester,
		Response:  req.Response,
		TagNumber: req.TagNumber,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

func (s *Server) updateParticipant(w http.ResponseWriter, r *http.Request) {
	roundID, err := roundIDParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req responseRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	userID := discordIDParam(r)
	if !s.authorizeForRound(w, r, roundID, userID) {
		return
	}

	round, err := s.rounds.UpdateParticipantResponse(r.Context(), roundID, userID, req.Response)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

func (s *Server) startRound(w http.ResponseWriter, r *http.Request) {
	roundID, err := roundIDParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if !s.authorizeForRound(w, r, roundID, "") {
		return
	}

	round, err := s.rounds.StartRound(r.Context(), roundID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

func (s *Server) submitScore(w http.ResponseWriter, r *http.Request) {
	roundID, err := roundIDParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req submitScoreRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	requester, _ := RequesterFromContext(r.Context())
	userID := req.UserID
	if userID == "" {
		userID = requester
	}
	if !s.authorizeForRound(w, r, roundID, userID) {
		return
	}

	round, err := s.rounds.SubmitScore(r.Context(), roundservice.SubmitScoreInput{
		RoundID:   roundID,
		UserID:    userID,
		Score:     req.Score,
		TagNumber: req.TagNumber,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

func (s *Server) finalizeRound(w http.ResponseWriter, r *http.Request) {
	roundID, err := roundIDParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if !s.authorizeForRound(w, r, roundID, "") {
		return
	}

	result, err := s.rounds.FinalizeAndProcessScores(r.Context(), roundID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// authorizeForRound lets the request through when the requester is self (a
// non-empty subject equal to the requester), the round's creator, or holds a
// round-managing role. It writes the error response otherwise.
func (s *Server) authorizeForRound(w http.ResponseWriter, r *http.Request, roundID sharedtypes.RoundID, self sharedtypes.DiscordID) bool {
	requester, _ := RequesterFromContext(r.Context())
	if self != "" && self == requester {
		return true
	}
	round, err := s.rounds.GetRound(r.Context(), roundID)
	if err != nil {
		s.writeError(w, r, err)
		return false
	}
	ok, err := s.canManageRound(r.Context(), round, requester)
	if err != nil {
		s.writeError(w, r, err)
		return false
	}
	if !ok {
		writeJSON(w, http.StatusForbidden, errorBody{Error: "only the round creator or an editor can do this"})
		return false
	}
	return true
}
