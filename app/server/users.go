package server

import (
	"net/http"

	usertypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/user"
)

type createUserRequest struct {
	Name string `json:"name"`
}

type roleRequest struct {
	Role usertypes.UserRoleEnum `json:"role"`
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetUserByDiscordID(r.Context(), discordIDParam(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if user == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "user not found"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// createUser registers the requester. New users always start as Rattlers.
func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	requester, _ := RequesterFromContext(r.Context())

	user, err := s.users.CreateUser(r.Context(), usertypes.UserData{
		UserID: requester,
		Name:   req.Name,
		Role:   usertypes.UserRoleRattler,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) updateUserRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	requester, _ := RequesterFromContext(r.Context())

	if err := s.users.UpdateUserRole(r.Context(), requester, discordIDParam(r), req.Role); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
