package server

import (
	"net/http"
	"strconv"

	"github.com/Black-And-White-Club/tcr-bot/app/modules/leaderboard/infrastructure/swap"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/go-chi/chi/v5"
)

type tagRequest struct {
	TagNumber sharedtypes.TagNumber `json:"tag_number"`
}

type linkTagRequest struct {
	UserID    sharedtypes.DiscordID `json:"user_id"`
	TagNumber sharedtypes.TagNumber `json:"tag_number"`
}

type processScoresRequest struct {
	Scores []sharedtypes.ScoreInfo `json:"scores"`
}

type swapRequest struct {
	TargetTag sharedtypes.TagNumber `json:"target_tag"`
}

func (s *Server) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	entries, err := s.leaderboard.GetLeaderboard(r.Context(), page, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) getUserTag(w http.ResponseWriter, r *http.Request) {
	entry, err := s.leaderboard.GetUserTag(r.Context(), discordIDParam(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if entry == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "user holds no tag"})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) getTagHolder(w http.ResponseWriter, r *http.Request) {
	tag, err := strconv.Atoi(chi.URLParam(r, "tag"))
	if err != nil {
		badRequest(w, "invalid tag number")
		return
	}
	entry, err := s.leaderboard.GetUserByTagNumber(r.Context(), sharedtypes.TagNumber(tag))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if entry == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "tag is not assigned"})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) updateTag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	entry, err := s.leaderboard.UpdateTag(r.Context(), discordIDParam(r), req.TagNumber)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) linkTag(w http.ResponseWriter, r *http.Request) {
	var req linkTagRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	entry, err := s.leaderboard.LinkTag(r.Context(), req.UserID, req.TagNumber)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) processLeaderboard(w http.ResponseWriter, r *http.Request) {
	var req processScoresRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	changes, err := s.leaderboard.ProcessScores(r.Context(), req.Scores)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, changes)
}

func (s *Server) requestSwap(w http.ResponseWriter, r *http.Request) {
	if s.swaps == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "tag swaps are not enabled"})
		return
	}
	var req swapRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	requester, _ := RequesterFromContext(r.Context())

	submitted, err := swap.Submit(s.swaps, requester, req.TargetTag)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, submitted)
}
