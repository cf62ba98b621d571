package usecases

import (
	"errors"
	"fmt"

	"asp-server/entities"
	"asp-server/repositories"

	"gorm.io/gorm"
)

// StatePusher delivers a state change to a connected device, if any.
type StatePusher interface {
	PushState(asp *entities.ASP)
}

// RoomWithASPs pairs a room with its resolved device set.
type RoomWithASPs struct {
	Room entities.Room  `json:"room"`
	ASPs []entities.ASP `json:"asps"`
}

// ControlUseCase holds the ownership rules: the caller must own the
// addressed room, and a device is only reachable through its own room.
// Concurrent writes to the same ASP are last-write-wins; conflicts are
// rare and inconsequential for a light toggle system.
type ControlUseCase struct {
	Rooms  repositories.RoomRepository
	ASPs   repositories.ASPRepository
	Pusher StatePusher // optional
}

func NewControlUseCase(rooms repositories.RoomRepository, asps repositories.ASPRepository) *ControlUseCase {
	return &ControlUseCase{
		Rooms: rooms,
		ASPs:  asps,
	}
}

// ownedRoom resolves a room the caller owns: absent rooms are 404,
// someone else's rooms are 403.
func (uc *ControlUseCase) ownedRoom(ownerID, roomID string) (*entities.Room, error) {
	room, err := uc.Rooms.GetByID(roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: room", ErrNotFound)
		}
		return nil, err
	}
	if room.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return room, nil
}

// roomASP resolves an ASP through its room. Addressing a real ASP via
// the wrong room looks the same as an absent one.
func (uc *ControlUseCase) roomASP(room *entities.Room, aspID string) (*entities.ASP, error) {
	asp, err := uc.ASPs.GetByID(aspID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: ASP", ErrNotFound)
		}
		return nil, err
	}
	if asp.RoomID != room.ID {
		return nil, fmt.Errorf("%w: ASP not in room", ErrNotFound)
	}
	return asp, nil
}

// ResolveOwnedASP walks ASP -> room -> owner. Used by the websocket
// channel, which addresses devices without a room in the path.
func (uc *ControlUseCase) ResolveOwnedASP(ownerID, aspID string) (*entities.ASP, error) {
	asp, err := uc.ASPs.GetByID(aspID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: ASP", ErrNotFound)
		}
		return nil, err
	}
	if _, err := uc.ownedRoom(ownerID, asp.RoomID); err != nil {
		return nil, err
	}
	return asp, nil
}

// AddRoom creates a room owned by the caller. Ownership is a column on
// the room, so parent/child linkage is a single atomic insert.
func (uc *ControlUseCase) AddRoom(ownerID, roomTitle string) (*entities.Room, error) {
	if roomTitle == "" {
		return nil, fmt.Errorf("%w: roomTitle is required", ErrValidation)
	}
	room := &entities.Room{
		RoomTitle: roomTitle,
		OwnerID:   ownerID,
	}
	if err := uc.Rooms.Create(room); err != nil {
		return nil, err
	}
	return room, nil
}

// AddASP creates a device in an owned room. State defaults to "off".
func (uc *ControlUseCase) AddASP(ownerID, roomID, deviceName, state string) (*entities.ASP, error) {
	if deviceName == "" {
		return nil, fmt.Errorf("%w: deviceName is required", ErrValidation)
	}
	room, err := uc.ownedRoom(ownerID, roomID)
	if err != nil {
		return nil, err
	}

	asp := &entities.ASP{
		DeviceName: deviceName,
		State:      state,
		RoomID:     room.ID,
	}
	if err := uc.ASPs.Create(asp); err != nil {
		return nil, err
	}
	return asp, nil
}

// RoomsWithASPs returns every owned room joined with its devices.
func (uc *ControlUseCase) RoomsWithASPs(ownerID string) ([]RoomWithASPs, error) {
	rooms, err := uc.Rooms.GetByOwnerID(ownerID)
	if err != nil {
		return nil, err
	}

	result := make([]RoomWithASPs, 0, len(rooms))
	for _, room := range rooms {
		asps, err := uc.ASPs.GetByRoomID(room.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, RoomWithASPs{Room: room, ASPs: asps})
	}
	return result, nil
}

// RoomASPs returns the devices of one owned room.
func (uc *ControlUseCase) RoomASPs(ownerID, roomID string) ([]entities.ASP, error) {
	room, err := uc.ownedRoom(ownerID, roomID)
	if err != nil {
		return nil, err
	}
	return uc.ASPs.GetByRoomID(room.ID)
}

// RenameRoom replaces the room title.
func (uc *ControlUseCase) RenameRoom(ownerID, roomID, roomTitle string) (*entities.Room, error) {
	if roomTitle == "" {
		return nil, fmt.Errorf("%w: roomTitle is required", ErrValidation)
	}
	room, err := uc.ownedRoom(ownerID, roomID)
	if err != nil {
		return nil, err
	}
	room.RoomTitle = roomTitle
	if err := uc.Rooms.Update(room); err != nil {
		return nil, err
	}
	return room, nil
}

// RenameASP replaces the device name.
func (uc *ControlUseCase) RenameASP(ownerID, roomID, aspID, deviceName string) (*entities.ASP, error) {
	if deviceName == "" {
		return nil, fmt.Errorf("%w: deviceName is required", ErrValidation)
	}
	room, err := uc.ownedRoom(ownerID, roomID)
	if err != nil {
		return nil, err
	}
	asp, err := uc.roomASP(room, aspID)
	if err != nil {
		return nil, err
	}
	asp.DeviceName = deviceName
	if err := uc.ASPs.Update(asp); err != nil {
		return nil, err
	}
	return asp, nil
}

// ReadState returns the current state string.
func (uc *ControlUseCase) ReadState(ownerID, roomID, aspID string) (string, error) {
	room, err := uc.ownedRoom(ownerID, roomID)
	if err != nil {
		return "", err
	}
	asp, err := uc.roomASP(room, aspID)
	if err != nil {
		return "", err
	}
	return asp.State, nil
}

// WriteState replaces the state unconditionally (state is free-form)
// and notifies the device's websocket connection when one exists.
func (uc *ControlUseCase) WriteState(ownerID, roomID, aspID, state string) (*entities.ASP, error) {
	room, err := uc.ownedRoom(ownerID, roomID)
	if err != nil {
		return nil, err
	}
	asp, err := uc.roomASP(room, aspID)
	if err != nil {
		return nil, err
	}
	asp.State = state
	if err := uc.ASPs.Update(asp); err != nil {
		return nil, err
	}
	if uc.Pusher != nil {
		uc.Pusher.PushState(asp)
	}
	return asp, nil
}

// ReportState persists a state the device itself announced over the
// websocket channel. The connection was authenticated at upgrade, but
// ownership is re-checked in case the room changed hands meanwhile.
func (uc *ControlUseCase) ReportState(ownerID, aspID, state string) (*entities.ASP, error) {
	asp, err := uc.ResolveOwnedASP(ownerID, aspID)
	if err != nil {
		return nil, err
	}
	asp.State = state
	if err := uc.ASPs.Update(asp); err != nil {
		return nil, err
	}
	return asp, nil
}

// DeleteRoom removes the room and, in the same transaction, its ASPs.
func (uc *ControlUseCase) DeleteRoom(ownerID, roomID string) error {
	room, err := uc.ownedRoom(ownerID, roomID)
	if err != nil {
		return err
	}
	return uc.Rooms.DeleteCascade(room.ID)
}

// DeleteASP removes one device from an owned room.
func (uc *ControlUseCase) DeleteASP(ownerID, roomID, aspID string) error {
	room, err := uc.ownedRoom(ownerID, roomID)
	if err != nil {
		return err
	}
	asp, err := uc.roomASP(room, aspID)
	if err != nil {
		return err
	}
	return uc.ASPs.Delete(asp.ID)
}
