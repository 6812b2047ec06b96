package router

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type RoomHandler struct {
	dir   *app.Directory
	relay *app.Relay
}

func NewRoomHandler(dir *app.Directory, relay *app.Relay) *RoomHandler {
	return &RoomHandler{dir: dir, relay: relay}
}

type CreateRoomRequest struct {
	Password string `json:"password"`
}

type JoinRoomRequest struct {
	RoomID   string `json:"roomId" binding:"required"`
	Password string `json:"password"`
}

// RoomView is the public shape of a room. Peers is the live presence.
type RoomView struct {
	RoomID       domain.RoomID   `json:"roomId"`
	OwnerID      domain.UserID   `json:"ownerId"`
	IsActive     bool            `json:"isActive"`
	HasPassword  bool            `json:"hasPassword"`
	Participants []domain.UserID `json:"participants"`
	Peers        []core.Peer     `json:"peers"`
	CreatedAt    time.Time       `json:"createdAt"`
}

func (h *RoomHandler) view(room *domain.Room) RoomView {
	return RoomView{
		RoomID:       room.ID,
		OwnerID:      room.OwnerID,
		IsActive:     room.IsActive,
		HasPassword:  room.HasPassword(),
		Participants: room.Participants,
		Peers:        h.relay.Peers(room.ID),
		CreatedAt:    room.CreatedAt,
	}
}

func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	id := identityFrom(c)
	room, err := h.dir.Create(c.Request.Context(), id.UserID, req.Password)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	log.Info().Str("module", "adapters.http").Str("room", string(room.ID)).Str("owner", string(id.UserID)).Msg("room created")
	c.JSON(http.StatusCreated, h.view(room))
}

// GetRoom serves active rooms to anyone signed in; the owner may also
// inspect a room after it ended.
func (h *RoomHandler) GetRoom(c *gin.Context) {
	roomID := domain.RoomID(c.Param("roomId"))
	room, err := h.dir.Get(c.Request.Context(), roomID)
	if errors.Is(err, core.ErrRoomNotFound) {
		inspected, ierr := h.dir.Inspect(c.Request.Context(), roomID)
		if ierr == nil && inspected.IsOwner(identityFrom(c).UserID) {
			room, err = inspected, nil
		}
	}
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view(room))
}

// JoinRoom checks the password and records durable membership under the
// room's transition lock. Live presence starts only when the client joins
// over the signaling channel.
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	var req JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "roomId is required")
		return
	}
	roomID := domain.RoomID(req.RoomID)
	if err := h.relay.Admit(c.Request.Context(), roomID, identityFrom(c).UserID, req.Password); err != nil {
		HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roomId": roomID})
}

func (h *RoomHandler) EndRoom(c *gin.Context) {
	roomID := domain.RoomID(c.Param("roomId"))
	if err := h.relay.End(c.Request.Context(), identityFrom(c).UserID, roomID); err != nil {
		HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "room ended"})
}

func (h *RoomHandler) KickUser(c *gin.Context) {
	roomID := domain.RoomID(c.Param("roomId"))
	target := domain.UserID(c.Param("userId"))
	if err := h.relay.Kick(c.Request.Context(), identityFrom(c).UserID, roomID, target); err != nil {
		HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "participant removed"})
}
