package httpHandler

import (
	"net/http"

	"asp-server/usecases"

	"github.com/gin-gonic/gin"
)

type ControlHandler struct {
	useCase *usecases.ControlUseCase
}

func NewControlHandler(useCase *usecases.ControlUseCase) *ControlHandler {
	return &ControlHandler{
		useCase: useCase,
	}
}

type addRoomRequest struct {
	RoomTitle string `json:"roomTitle"`
}

type addASPRequest struct {
	DeviceName string `json:"deviceName"`
	State      string `json:"state"`
}

type updateStateRequest struct {
	State string `json:"state"`
}

// callerID checks that the :userId path segment names the caller. A
// mismatch is a permission problem, not a routing one.
func (h *ControlHandler) callerID(c *gin.Context) (string, bool) {
	id := authedUserID(c)
	if id == "" || id != c.Param("userId") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
		return "", false
	}
	return id, true
}

// AddRoom handles POST /control/add-room/:userId
func (h *ControlHandler) AddRoom(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	var req addRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	room, err := h.useCase.AddRoom(userID, req.RoomTitle)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Room added and assigned to the user successfully",
		"room":    room,
	})
}

// AddASP handles POST /control/add-asp/:userId/:roomId
func (h *ControlHandler) AddASP(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	var req addASPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	asp, err := h.useCase.AddASP(userID, c.Param("roomId"), req.DeviceName, req.State)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "ASP added to the room successfully",
		"asp":     asp,
	})
}

// RoomsWithASPs handles GET /control/get-rooms-with-asps/:userId
func (h *ControlHandler) RoomsWithASPs(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	rooms, err := h.useCase.RoomsWithASPs(userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Rooms with relevant ASPs retrieved",
		"roomsWithASPs": rooms,
	})
}

// RoomDevices handles GET /control/get-devices/:userId/:roomId
func (h *ControlHandler) RoomDevices(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	devices, err := h.useCase.RoomASPs(userID, c.Param("roomId"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Devices in the current room retrieved",
		"devices": devices,
	})
}

// UpdateRoomTitle handles PUT /control/update-room-title/:userId/:roomId
func (h *ControlHandler) UpdateRoomTitle(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	var req addRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if _, err := h.useCase.RenameRoom(userID, c.Param("roomId"), req.RoomTitle); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Room title updated successfully"})
}

// UpdateDeviceName handles PUT /control/update-device-name/:userId/:roomId/:aspId
func (h *ControlHandler) UpdateDeviceName(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	var req addASPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if _, err := h.useCase.RenameASP(userID, c.Param("roomId"), c.Param("aspId"), req.DeviceName); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Device name updated successfully"})
}

// UpdateASPState handles POST /control/update-asp-state/:userId/:roomId/:aspId
func (h *ControlHandler) UpdateASPState(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	var req updateStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if _, err := h.useCase.WriteState(userID, c.Param("roomId"), c.Param("aspId"), req.State); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "ASP state updated successfully"})
}

// ReadASPState handles GET /control/read-asp-state/:userId/:roomId/:aspId
func (h *ControlHandler) ReadASPState(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	state, err := h.useCase.ReadState(userID, c.Param("roomId"), c.Param("aspId"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": state})
}

// DeleteRoom handles DELETE /control/delete-room/:userId/:roomId
func (h *ControlHandler) DeleteRoom(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	if err := h.useCase.DeleteRoom(userID, c.Param("roomId")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Room deleted successfully"})
}

// DeleteASP handles DELETE /control/delete-asp/:userId/:roomId/:aspId
func (h *ControlHandler) DeleteASP(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	if err := h.useCase.DeleteASP(userID, c.Param("roomId"), c.Param("aspId")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "ASP deleted successfully"})
}
